package syncing

import (
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/0xFlo/prism-sub007/infrastructure/repository"
	"github.com/0xFlo/prism-sub007/internal/domain"
	"github.com/sirupsen/logrus"
)

const (
	defaultChunkSize     = 500
	defaultStalenessDays = 7
	topQueriesPerURL     = 10
)

// DayPersistResult resume o que foi absorvido para um dia
type DayPersistResult struct {
	URLCount   int
	QueryCount int
}

// Persister absorve de forma durável e incremental as linhas buscadas de
// um dia: upsert das métricas por URL, atualização do agregado vitalício
// apenas das URLs tocadas e enfileiramento limitado de verificações de
// saúde
type Persister interface {
	PersistDayResults(accountID, siteURL string, date time.Time, rows *QueryAccumulator) (*DayPersistResult, error)
}

// PersisterConfig ajusta os tamanhos de lote e a janela de obsolescência
type PersisterConfig struct {
	ChunkSize     int
	StalenessDays int
}

type persister struct {
	metricRepo    repository.SearchMetricRepository
	lifetimeRepo  repository.LifetimeStatRepository
	healthRepo    repository.HealthCheckRepository
	chunkSize     int
	stalenessDays int
}

// NewPersister cria o serviço de persistência de sincronização
func NewPersister(
	metricRepo repository.SearchMetricRepository,
	lifetimeRepo repository.LifetimeStatRepository,
	healthRepo repository.HealthCheckRepository,
	cfg PersisterConfig,
) Persister {
	if cfg.ChunkSize < 1 {
		cfg.ChunkSize = defaultChunkSize
	}
	if cfg.StalenessDays < 1 {
		cfg.StalenessDays = defaultStalenessDays
	}

	return &persister{
		metricRepo:    metricRepo,
		lifetimeRepo:  lifetimeRepo,
		healthRepo:    healthRepo,
		chunkSize:     cfg.ChunkSize,
		stalenessDays: cfg.StalenessDays,
	}
}

// urlAggregate acumula as métricas de uma URL durante a agregação por dia
type urlAggregate struct {
	clicks         int64
	impressions    int64
	positionWeight float64
	queries        []domain.QueryStat
}

// PersistDayResults agrega as linhas cruas por URL, grava as métricas em
// lotes, atualiza o agregado vitalício das URLs tocadas e enfileira
// verificações de saúde com controle de admissão. Falhas de enfileiramento
// são registradas e engolidas; nunca falham a sincronização.
func (p *persister) PersistDayResults(accountID, siteURL string, date time.Time, rows *QueryAccumulator) (*DayPersistResult, error) {
	entries := aggregateByURL(accountID, siteURL, date, rows, p.chunkSize)

	// Upsert em lotes para limitar o tamanho de cada instrução
	for start := 0; start < len(entries); start += p.chunkSize {
		end := start + p.chunkSize
		if end > len(entries) {
			end = len(entries)
		}

		if err := p.metricRepo.SaveBatch(entries[start:end]); err != nil {
			return nil, fmt.Errorf("erro ao persistir métricas do dia %s: %w", date.Format(time.DateOnly), err)
		}
	}

	urls := make([]string, len(entries))
	for i, entry := range entries {
		urls[i] = entry.URL
	}

	// Agregado vitalício apenas das URLs tocadas por este lote, também em
	// pedaços para limitar o tamanho das instruções
	for start := 0; start < len(urls); start += p.chunkSize {
		end := start + p.chunkSize
		if end > len(urls) {
			end = len(urls)
		}

		if err := p.lifetimeRepo.RefreshForURLs(accountID, siteURL, urls[start:end]); err != nil {
			return nil, fmt.Errorf("erro ao atualizar estatísticas vitalícias do dia %s: %w", date.Format(time.DateOnly), err)
		}
	}

	p.scheduleHealthChecks(accountID, siteURL, urls)

	return &DayPersistResult{
		URLCount:   len(entries),
		QueryCount: rows.RowCount(),
	}, nil
}

// scheduleHealthChecks enfileira verificações de saúde para as URLs
// obsoletas, com prioridade e atraso degradando conforme o tamanho do
// lote para não inundar a fila de trabalho
func (p *persister) scheduleHealthChecks(accountID, siteURL string, urls []string) {
	stale, err := p.healthRepo.FilterStale(accountID, siteURL, urls, p.stalenessDays)
	if err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"site_url": siteURL,
			"urls":     len(urls),
		}).Warn("Erro ao identificar URLs obsoletas para verificação de saúde")
		return
	}

	if len(stale) == 0 {
		return
	}

	priority, maxDelay := HealthCheckAdmission(len(stale))
	scheduleIn := randomDelay(maxDelay)

	if err := p.healthRepo.EnqueueNewURLs(accountID, siteURL, stale, priority, scheduleIn); err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"site_url": siteURL,
			"urls":     len(stale),
			"priority": priority,
		}).Warn("Erro ao enfileirar verificações de saúde")
		return
	}

	logrus.WithFields(logrus.Fields{
		"site_url":    siteURL,
		"urls":        len(stale),
		"priority":    priority,
		"schedule_in": scheduleIn.String(),
	}).Info("Verificações de saúde enfileiradas")
}

// HealthCheckAdmission é a função pura de controle de admissão: mapeia o
// tamanho do lote de candidatas para (prioridade, atraso máximo). Lotes
// pequenos recebem agendamento quase imediato e prioritário; lotes muito
// grandes recebem prioridade baixa e atraso de até 30 minutos.
func HealthCheckAdmission(count int) (priority int, maxDelay time.Duration) {
	switch {
	case count <= 100:
		return 1, 30 * time.Second
	case count <= 1000:
		return 2, 5 * time.Minute
	case count <= 5000:
		return 3, 15 * time.Minute
	default:
		return 4, 30 * time.Minute
	}
}

func randomDelay(maxDelay time.Duration) time.Duration {
	if maxDelay <= 0 {
		return 0
	}
	return time.Duration(rand.Int63n(int64(maxDelay)))
}

// aggregateByURL reduz as linhas cruas (página, consulta) de um dia a uma
// entrada de métricas por URL, com posição ponderada por impressões e as
// principais consultas por cliques. As linhas são drenadas do acumulador
// em pedaços, sem materializar o dia inteiro de uma vez.
func aggregateByURL(accountID, siteURL string, date time.Time, rows *QueryAccumulator, chunkSize int) []*domain.SearchMetricEntry {
	aggregates := make(map[string]*urlAggregate)
	order := make([]string, 0)

	_ = rows.Drain(chunkSize, func(chunk []domain.QueryRow) error {
		for _, row := range chunk {
			agg, ok := aggregates[row.URL]
			if !ok {
				agg = &urlAggregate{}
				aggregates[row.URL] = agg
				order = append(order, row.URL)
			}

			agg.clicks += row.Clicks
			agg.impressions += row.Impressions
			agg.positionWeight += row.Position * float64(row.Impressions)
			if row.Query != "" {
				agg.queries = append(agg.queries, domain.QueryStat{
					Query:       row.Query,
					Clicks:      row.Clicks,
					Impressions: row.Impressions,
				})
			}
		}
		return nil
	})

	entries := make([]*domain.SearchMetricEntry, 0, len(order))
	for _, url := range order {
		agg := aggregates[url]

		entry := &domain.SearchMetricEntry{
			AccountID:   accountID,
			SiteURL:     siteURL,
			URL:         url,
			Date:        date,
			Clicks:      agg.clicks,
			Impressions: agg.impressions,
			TopQueries:  topQueries(agg.queries),
			PeriodType:  domain.PeriodTypeDaily,
		}
		if agg.impressions > 0 {
			entry.CTR = float64(agg.clicks) / float64(agg.impressions)
			entry.Position = agg.positionWeight / float64(agg.impressions)
		}

		entries = append(entries, entry)
	}

	return entries
}

// topQueries retorna as consultas mais clicadas de uma URL, limitadas para
// manter o JSON armazenado pequeno
func topQueries(queries []domain.QueryStat) []domain.QueryStat {
	if len(queries) == 0 {
		return nil
	}

	sort.SliceStable(queries, func(i, j int) bool {
		if queries[i].Clicks != queries[j].Clicks {
			return queries[i].Clicks > queries[j].Clicks
		}
		return queries[i].Impressions > queries[j].Impressions
	})

	if len(queries) > topQueriesPerURL {
		queries = queries[:topQueriesPerURL]
	}
	return queries
}
