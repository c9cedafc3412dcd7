package syncing

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/0xFlo/prism-sub007/infrastructure/repository/mocks"
	"github.com/0xFlo/prism-sub007/internal/domain"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

const (
	testAccountID = "ACC001"
	testSiteURL   = "https://example.com"
)

func accumulatorWith(rows ...domain.QueryRow) *QueryAccumulator {
	acc := NewAccumulator()
	acc.IngestChunk(rows)
	return acc
}

func TestPersister_PersistDayResults(t *testing.T) {
	date := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		cfg      PersisterConfig
		rows     []domain.QueryRow
		setup    func(metricRepo *mocks.MockSearchMetricRepository, lifetimeRepo *mocks.MockLifetimeStatRepository, healthRepo *mocks.MockHealthCheckRepository)
		validate func(t *testing.T, result *DayPersistResult, err error)
	}{
		{
			name: "Dia com duas URLs agrega métricas e persiste em um único lote",
			rows: []domain.QueryRow{
				{URL: "https://example.com/a", Query: "óculos de sol", Clicks: 10, Impressions: 100, Position: 2.0},
				{URL: "https://example.com/a", Query: "óculos de grau", Clicks: 30, Impressions: 300, Position: 4.0},
				{URL: "https://example.com/b", Query: "lentes", Clicks: 5, Impressions: 50, Position: 1.5},
			},
			setup: func(metricRepo *mocks.MockSearchMetricRepository, lifetimeRepo *mocks.MockLifetimeStatRepository, healthRepo *mocks.MockHealthCheckRepository) {
				metricRepo.EXPECT().
					SaveBatch(gomock.Any()).
					DoAndReturn(func(entries []*domain.SearchMetricEntry) error {
						assert.Len(t, entries, 2)

						a := entries[0]
						assert.Equal(t, testAccountID, a.AccountID)
						assert.Equal(t, testSiteURL, a.SiteURL)
						assert.Equal(t, "https://example.com/a", a.URL)
						assert.Equal(t, date, a.Date)
						assert.Equal(t, int64(40), a.Clicks)
						assert.Equal(t, int64(400), a.Impressions)
						assert.Equal(t, 0.1, a.CTR)
						// Posição ponderada por impressões: (2*100 + 4*300) / 400
						assert.InDelta(t, 3.5, a.Position, 0.0001)
						assert.Equal(t, domain.PeriodTypeDaily, a.PeriodType)
						// Consultas ordenadas por cliques
						assert.Equal(t, "óculos de grau", a.TopQueries[0].Query)
						assert.Equal(t, "óculos de sol", a.TopQueries[1].Query)

						b := entries[1]
						assert.Equal(t, "https://example.com/b", b.URL)
						assert.Equal(t, int64(5), b.Clicks)
						return nil
					})

				lifetimeRepo.EXPECT().
					RefreshForURLs(testAccountID, testSiteURL, []string{"https://example.com/a", "https://example.com/b"}).
					Return(nil)

				healthRepo.EXPECT().
					FilterStale(testAccountID, testSiteURL, gomock.Any(), defaultStalenessDays).
					Return([]string{"https://example.com/a"}, nil)

				healthRepo.EXPECT().
					EnqueueNewURLs(testAccountID, testSiteURL, []string{"https://example.com/a"}, 1, gomock.Any()).
					Return(nil)
			},
			validate: func(t *testing.T, result *DayPersistResult, err error) {
				assert.NoError(t, err)
				assert.Equal(t, 2, result.URLCount)
				assert.Equal(t, 3, result.QueryCount)
			},
		},
		{
			name: "URLs além do tamanho do pedaço são persistidas em múltiplos lotes",
			cfg:  PersisterConfig{ChunkSize: 2, StalenessDays: 14},
			rows: []domain.QueryRow{
				{URL: "https://example.com/1", Query: "q1", Clicks: 1, Impressions: 10, Position: 1},
				{URL: "https://example.com/2", Query: "q2", Clicks: 1, Impressions: 10, Position: 1},
				{URL: "https://example.com/3", Query: "q3", Clicks: 1, Impressions: 10, Position: 1},
			},
			setup: func(metricRepo *mocks.MockSearchMetricRepository, lifetimeRepo *mocks.MockLifetimeStatRepository, healthRepo *mocks.MockHealthCheckRepository) {
				gomock.InOrder(
					metricRepo.EXPECT().
						SaveBatch(gomock.Len(2)).
						Return(nil),
					metricRepo.EXPECT().
						SaveBatch(gomock.Len(1)).
						Return(nil),
				)

				gomock.InOrder(
					lifetimeRepo.EXPECT().
						RefreshForURLs(testAccountID, testSiteURL, []string{"https://example.com/1", "https://example.com/2"}).
						Return(nil),
					lifetimeRepo.EXPECT().
						RefreshForURLs(testAccountID, testSiteURL, []string{"https://example.com/3"}).
						Return(nil),
				)

				healthRepo.EXPECT().
					FilterStale(testAccountID, testSiteURL, gomock.Any(), 14).
					Return(nil, nil)
			},
			validate: func(t *testing.T, result *DayPersistResult, err error) {
				assert.NoError(t, err)
				assert.Equal(t, 3, result.URLCount)
			},
		},
		{
			name: "Dia sem linhas persiste lote vazio e não enfileira nada",
			rows: nil,
			setup: func(metricRepo *mocks.MockSearchMetricRepository, lifetimeRepo *mocks.MockLifetimeStatRepository, healthRepo *mocks.MockHealthCheckRepository) {
				healthRepo.EXPECT().
					FilterStale(testAccountID, testSiteURL, gomock.Len(0), defaultStalenessDays).
					Return(nil, nil)
			},
			validate: func(t *testing.T, result *DayPersistResult, err error) {
				assert.NoError(t, err)
				assert.Equal(t, 0, result.URLCount)
				assert.Equal(t, 0, result.QueryCount)
			},
		},
		{
			name: "Erro ao salvar lote interrompe a persistência do dia",
			rows: []domain.QueryRow{
				{URL: "https://example.com/a", Query: "q", Clicks: 1, Impressions: 10, Position: 1},
			},
			setup: func(metricRepo *mocks.MockSearchMetricRepository, lifetimeRepo *mocks.MockLifetimeStatRepository, healthRepo *mocks.MockHealthCheckRepository) {
				metricRepo.EXPECT().
					SaveBatch(gomock.Any()).
					Return(errors.New("conexão recusada"))
			},
			validate: func(t *testing.T, result *DayPersistResult, err error) {
				assert.Error(t, err)
				assert.Nil(t, result)
				assert.Contains(t, err.Error(), "2024-03-10")
				assert.Contains(t, err.Error(), "conexão recusada")
			},
		},
		{
			name: "Erro ao atualizar agregado vitalício interrompe a persistência do dia",
			rows: []domain.QueryRow{
				{URL: "https://example.com/a", Query: "q", Clicks: 1, Impressions: 10, Position: 1},
			},
			setup: func(metricRepo *mocks.MockSearchMetricRepository, lifetimeRepo *mocks.MockLifetimeStatRepository, healthRepo *mocks.MockHealthCheckRepository) {
				metricRepo.EXPECT().
					SaveBatch(gomock.Any()).
					Return(nil)

				lifetimeRepo.EXPECT().
					RefreshForURLs(testAccountID, testSiteURL, gomock.Any()).
					Return(errors.New("tabela bloqueada"))
			},
			validate: func(t *testing.T, result *DayPersistResult, err error) {
				assert.Error(t, err)
				assert.Nil(t, result)
				assert.Contains(t, err.Error(), "estatísticas vitalícias")
			},
		},
		{
			name: "Erro ao filtrar URLs obsoletas não falha a persistência",
			rows: []domain.QueryRow{
				{URL: "https://example.com/a", Query: "q", Clicks: 1, Impressions: 10, Position: 1},
			},
			setup: func(metricRepo *mocks.MockSearchMetricRepository, lifetimeRepo *mocks.MockLifetimeStatRepository, healthRepo *mocks.MockHealthCheckRepository) {
				metricRepo.EXPECT().SaveBatch(gomock.Any()).Return(nil)
				lifetimeRepo.EXPECT().RefreshForURLs(testAccountID, testSiteURL, gomock.Any()).Return(nil)

				healthRepo.EXPECT().
					FilterStale(testAccountID, testSiteURL, gomock.Any(), defaultStalenessDays).
					Return(nil, errors.New("timeout"))
			},
			validate: func(t *testing.T, result *DayPersistResult, err error) {
				assert.NoError(t, err)
				assert.Equal(t, 1, result.URLCount)
			},
		},
		{
			name: "Erro ao enfileirar verificações de saúde não falha a persistência",
			rows: []domain.QueryRow{
				{URL: "https://example.com/a", Query: "q", Clicks: 1, Impressions: 10, Position: 1},
			},
			setup: func(metricRepo *mocks.MockSearchMetricRepository, lifetimeRepo *mocks.MockLifetimeStatRepository, healthRepo *mocks.MockHealthCheckRepository) {
				metricRepo.EXPECT().SaveBatch(gomock.Any()).Return(nil)
				lifetimeRepo.EXPECT().RefreshForURLs(testAccountID, testSiteURL, gomock.Any()).Return(nil)

				healthRepo.EXPECT().
					FilterStale(testAccountID, testSiteURL, gomock.Any(), defaultStalenessDays).
					Return([]string{"https://example.com/a"}, nil)

				healthRepo.EXPECT().
					EnqueueNewURLs(testAccountID, testSiteURL, gomock.Any(), 1, gomock.Any()).
					Return(errors.New("fila cheia"))
			},
			validate: func(t *testing.T, result *DayPersistResult, err error) {
				assert.NoError(t, err)
				assert.Equal(t, 1, result.URLCount)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			metricRepo := mocks.NewMockSearchMetricRepository(ctrl)
			lifetimeRepo := mocks.NewMockLifetimeStatRepository(ctrl)
			healthRepo := mocks.NewMockHealthCheckRepository(ctrl)

			tt.setup(metricRepo, lifetimeRepo, healthRepo)

			p := NewPersister(metricRepo, lifetimeRepo, healthRepo, tt.cfg)
			result, err := p.PersistDayResults(testAccountID, testSiteURL, date, accumulatorWith(tt.rows...))

			tt.validate(t, result, err)
		})
	}
}

func TestPersister_TopQueriesLimitadas(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	metricRepo := mocks.NewMockSearchMetricRepository(ctrl)
	lifetimeRepo := mocks.NewMockLifetimeStatRepository(ctrl)
	healthRepo := mocks.NewMockHealthCheckRepository(ctrl)

	// 15 consultas para a mesma URL, cliques crescentes
	rows := make([]domain.QueryRow, 0, 15)
	for i := 1; i <= 15; i++ {
		rows = append(rows, domain.QueryRow{
			URL:         "https://example.com/a",
			Query:       fmt.Sprintf("consulta-%02d", i),
			Clicks:      int64(i),
			Impressions: int64(i * 10),
			Position:    1,
		})
	}

	metricRepo.EXPECT().
		SaveBatch(gomock.Any()).
		DoAndReturn(func(entries []*domain.SearchMetricEntry) error {
			assert.Len(t, entries, 1)
			assert.Len(t, entries[0].TopQueries, topQueriesPerURL)
			assert.Equal(t, "consulta-15", entries[0].TopQueries[0].Query)
			assert.Equal(t, "consulta-06", entries[0].TopQueries[topQueriesPerURL-1].Query)
			return nil
		})
	lifetimeRepo.EXPECT().RefreshForURLs(testAccountID, testSiteURL, gomock.Any()).Return(nil)
	healthRepo.EXPECT().FilterStale(testAccountID, testSiteURL, gomock.Any(), defaultStalenessDays).Return(nil, nil)

	p := NewPersister(metricRepo, lifetimeRepo, healthRepo, PersisterConfig{})
	result, err := p.PersistDayResults(testAccountID, testSiteURL, time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), accumulatorWith(rows...))

	assert.NoError(t, err)
	assert.Equal(t, 1, result.URLCount)
	assert.Equal(t, 15, result.QueryCount)
}

func TestHealthCheckAdmission(t *testing.T) {
	tests := []struct {
		name         string
		count        int
		wantPriority int
		wantMaxDelay time.Duration
	}{
		{"Lote pequeno recebe prioridade máxima", 1, 1, 30 * time.Second},
		{"Limite do primeiro nível", 100, 1, 30 * time.Second},
		{"Acima de 100 cai para o segundo nível", 101, 2, 5 * time.Minute},
		{"Limite do segundo nível", 1000, 2, 5 * time.Minute},
		{"Acima de 1000 cai para o terceiro nível", 1001, 3, 15 * time.Minute},
		{"Limite do terceiro nível", 5000, 3, 15 * time.Minute},
		{"Lotes muito grandes recebem prioridade mínima", 5001, 4, 30 * time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			priority, maxDelay := HealthCheckAdmission(tt.count)

			assert.Equal(t, tt.wantPriority, priority)
			assert.Equal(t, tt.wantMaxDelay, maxDelay)
		})
	}
}
