package syncing

import (
	"fmt"
	"time"

	"github.com/0xFlo/prism-sub007/infrastructure/repository"
	"github.com/0xFlo/prism-sub007/internal/domain"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Motivos de interrupção originados no orquestrador
var (
	errSyncCancelled = errors.New("sincronização cancelada pelo operador")
	errDayEmpty      = errors.New("dia sem linhas retornadas")
)

// dayFailedError identifica o dia cuja persistência falhou
type dayFailedError struct {
	Date time.Time
	Err  error
}

func (e *dayFailedError) Error() string {
	return fmt.Sprintf("falha ao processar o dia %s: %v", e.Date.Format(time.DateOnly), e.Err)
}

func (e *dayFailedError) Unwrap() error { return e.Err }

// SyncOptions configura uma execução de sincronização
type SyncOptions struct {
	BatchSize      int
	MaxConcurrency int
	MaxQueueSize   int
	MaxInFlight    int
	RowLimit       int
	Force          bool
	StopOnEmpty    bool
}

// SyncReport é o desfecho de uma execução
type SyncReport struct {
	JobID   string      `json:"job_id"`
	Status  JobStatus   `json:"status"`
	Summary *JobSummary `json:"summary,omitempty"`
}

// Syncer executa a sincronização de um intervalo de datas de uma
// propriedade
type Syncer interface {
	Run(accountID, siteURL string, startDate, endDate time.Time, opts SyncOptions) (*SyncReport, error)
}

// Service compõe paginador, persistência, registro de dias e progresso
// para sincronizar um intervalo de datas
type Service struct {
	paginator   *QueryPaginator
	persister   Persister
	syncDayRepo repository.SyncDayRepository
	progress    *SyncProgress
	rateLimiter RateLimiter
}

// NewService cria o orquestrador de sincronização
func NewService(
	fetcher QueryFetcher,
	persister Persister,
	syncDayRepo repository.SyncDayRepository,
	progress *SyncProgress,
	rateLimiter RateLimiter,
) *Service {
	return &Service{
		paginator:   NewQueryPaginator(fetcher),
		persister:   persister,
		syncDayRepo: syncDayRepo,
		progress:    progress,
		rateLimiter: rateLimiter,
	}
}

// Progress expõe o rastreador do job para o transporte (consultas e
// assinaturas)
func (s *Service) Progress() *SyncProgress {
	return s.progress
}

// Run sincroniza as datas do intervalo, da mais recente para a mais
// antiga. Dias já completos são pulados, a menos que Force esteja ativo,
// mas ainda consomem um passo do progresso para que o percentual fique
// estável entre novas execuções e repetições.
func (s *Service) Run(accountID, siteURL string, startDate, endDate time.Time, opts SyncOptions) (*SyncReport, error) {
	dates := datesNewestFirst(startDate, endDate)
	if len(dates) == 0 {
		return nil, errors.New("intervalo de datas vazio")
	}

	completed, err := s.completedDates(accountID, siteURL, startDate, endDate, opts.Force)
	if err != nil {
		return nil, err
	}

	jobID, err := s.progress.StartJob(JobMeta{
		AccountID:  accountID,
		SiteURL:    siteURL,
		TotalSteps: len(dates),
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"site_url":   siteURL,
		"start_date": startDate.Format(time.DateOnly),
		"end_date":   endDate.Format(time.DateOnly),
		"total_days": len(dates),
		"skipped":    len(completed),
		"force":      opts.Force,
	}).Info("Iniciando sincronização de métricas de busca")

	// Passos na ordem de processamento, dias pulados incluídos
	stepByDate := make(map[string]int, len(dates))
	fetchDates := make([]time.Time, 0, len(dates))
	summary := &JobSummary{}

	for i, date := range dates {
		key := date.Format(time.DateOnly)
		stepByDate[key] = i + 1

		if completed[key] {
			// Dias já sincronizados avançam o progresso imediatamente
			_ = s.progress.DayStarted(jobID, DayStart{Date: date, Step: i + 1})
			_ = s.progress.DayCompleted(jobID, DayEnd{Date: date, Step: i + 1, Outcome: DayOutcomeSkipped})
			summary.DatesSkipped++
			continue
		}

		fetchDates = append(fetchDates, date)
	}

	startedAt := time.Now()
	onComplete := s.dayCompletionHandler(jobID, accountID, siteURL, stepByDate, summary, opts.StopOnEmpty)

	var result *PaginationResult
	if len(fetchDates) > 0 {
		result, err = s.paginator.FetchAllQueries(accountID, siteURL, fetchDates, PaginatorOptions{
			BatchSize:      opts.BatchSize,
			MaxConcurrency: maxConcurrency(opts),
			MaxQueueSize:   opts.MaxQueueSize,
			RowLimit:       opts.RowLimit,
			Operation:      "sync",
			OnComplete:     onComplete,
			RateLimiter:    s.rateLimiter,
		})
	}

	report := s.finishRun(jobID, siteURL, summary, result, err, startedAt)
	return report, nil
}

// maxConcurrency resolve o teto de lotes em voo: MaxInFlight, quando
// informado, prevalece sobre MaxConcurrency
func maxConcurrency(opts SyncOptions) int {
	if opts.MaxInFlight > 0 {
		return opts.MaxInFlight
	}
	return opts.MaxConcurrency
}

// dayCompletionHandler devolve o callback invocado pelo paginador a cada
// dia concluído: honra pausa e cancelamento, persiste as linhas e reporta
// o progresso
func (s *Service) dayCompletionHandler(jobID, accountID, siteURL string, stepByDate map[string]int, summary *JobSummary, stopOnEmpty bool) func(DateCompletion) Decision {
	return func(completion DateCompletion) Decision {
		key := completion.Date.Format(time.DateOnly)
		step := stepByDate[key]

		// Pausa cooperativa: nenhum dia novo é processado enquanto o job
		// estiver pausado; lotes em andamento terminam normalmente
		for {
			state := s.progress.CurrentState()
			if state == nil || state.ID != jobID {
				return HaltWith(errSyncCancelled)
			}
			if state.Status == JobStatusCancelling {
				return HaltWith(errSyncCancelled)
			}
			if state.Status != JobStatusPaused {
				break
			}
			time.Sleep(200 * time.Millisecond)
		}

		_ = s.progress.DayStarted(jobID, DayStart{Date: completion.Date, Step: step})

		if err := s.syncDayRepo.MarkRunning(accountID, siteURL, completion.Date); err != nil {
			logrus.WithError(err).WithFields(logrus.Fields{
				"site_url": siteURL,
				"date":     key,
			}).Warn("Erro ao registrar início do dia de sincronização")
		}

		persisted, err := s.persister.PersistDayResults(accountID, siteURL, completion.Date, completion.Rows)
		if err != nil {
			if markErr := s.syncDayRepo.MarkFailed(accountID, siteURL, completion.Date, err.Error()); markErr != nil {
				logrus.WithError(markErr).WithField("date", key).Warn("Erro ao registrar falha do dia de sincronização")
			}

			_ = s.progress.DayCompleted(jobID, DayEnd{
				Date:    completion.Date,
				Step:    step,
				Outcome: DayOutcomeError,
				Error:   err.Error(),
			})
			summary.DatesFailed++

			return HaltWith(&dayFailedError{Date: completion.Date, Err: err})
		}

		// O dia só é reportado completo com as linhas persistidas de
		// forma durável
		if err := s.syncDayRepo.MarkComplete(accountID, siteURL, completion.Date, persisted.URLCount, persisted.QueryCount); err != nil {
			logrus.WithError(err).WithField("date", key).Warn("Erro ao registrar conclusão do dia de sincronização")
		}

		_ = s.progress.DayCompleted(jobID, DayEnd{
			Date:     completion.Date,
			Step:     step,
			Outcome:  DayOutcomeOK,
			URLs:     persisted.URLCount,
			Rows:     completion.Rows.RowCount(),
			APICalls: completion.APICalls,
		})
		summary.DatesProcessed++

		logrus.WithFields(logrus.Fields{
			"site_url":  siteURL,
			"date":      key,
			"urls":      persisted.URLCount,
			"rows":      persisted.QueryCount,
			"api_calls": completion.APICalls,
		}).Info("Dia de métricas de busca sincronizado")

		if stopOnEmpty && completion.Rows.RowCount() == 0 {
			return HaltWith(errDayEmpty)
		}

		return Continue()
	}
}

// finishRun decide o estado final do job a partir do desfecho da
// paginação e publica o término
func (s *Service) finishRun(jobID, siteURL string, summary *JobSummary, result *PaginationResult, err error, startedAt time.Time) *SyncReport {
	if result != nil {
		summary.TotalAPICalls = result.TotalAPICalls
	}

	finish := JobFinish{Status: JobStatusCompleted, Summary: summary}

	var haltErr *HaltError
	if err != nil && errors.As(err, &haltErr) {
		reason := haltErr.Reason

		switch {
		case errors.Is(reason, errSyncCancelled):
			finish.Status = JobStatusCancelled
		case errors.Is(reason, errDayEmpty):
			finish.Status = JobStatusCompletedWithWarnings
			finish.Error = reason.Error()
		default:
			finish.Status = JobStatusFailed
			finish.Error = reason.Error()
			finish.HaltReason = haltReasonLabel(reason)

			var dayErr *dayFailedError
			if errors.As(reason, &dayErr) {
				finish.FailedOn = dayErr.Date.Format(time.DateOnly)
			}
		}
	} else if err != nil {
		finish.Status = JobStatusFailed
		finish.Error = err.Error()
	}

	if finishErr := s.progress.FinishJob(jobID, finish); finishErr != nil {
		logrus.WithError(finishErr).Warn("Erro ao finalizar o job de sincronização")
	}

	logrus.WithFields(logrus.Fields{
		"site_url": siteURL,
		"status":   string(finish.Status),
		"duration": time.Since(startedAt).String(),
	}).Info("Sincronização de métricas de busca finalizada")

	snapshot := s.progress.CurrentState()
	report := &SyncReport{JobID: jobID, Status: finish.Status}
	if snapshot != nil && snapshot.ID == jobID {
		report.Summary = snapshot.Summary
	}
	return report
}

// haltReasonLabel reduz o motivo da interrupção a um rótulo estável para
// diagnóstico
func haltReasonLabel(reason error) string {
	var fetchErr *QueryFetchError
	if errors.As(reason, &fetchErr) {
		return "query_fetch_failed"
	}

	var cbErr *CallbackError
	if errors.As(reason, &cbErr) {
		return "callback_error"
	}

	var mismatchErr *BatchMismatchError
	if errors.As(reason, &mismatchErr) {
		return mismatchErr.Kind
	}

	var dayErr *dayFailedError
	if errors.As(reason, &dayErr) {
		return "day_persist_failed"
	}

	return "halted"
}

// completedDates retorna o conjunto de dias já completos do intervalo, ou
// vazio quando Force está ativo
func (s *Service) completedDates(accountID, siteURL string, startDate, endDate time.Time, force bool) (map[string]bool, error) {
	completed := make(map[string]bool)
	if force {
		return completed, nil
	}

	days, err := s.syncDayRepo.GetByDateRange(accountID, siteURL, startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("erro ao consultar dias já sincronizados: %w", err)
	}

	for _, day := range days {
		if day.Status == domain.SyncDayStatusComplete {
			completed[day.Date.Format(time.DateOnly)] = true
		}
	}

	return completed, nil
}

// datesNewestFirst gera os dias do intervalo, do mais recente para o mais
// antigo
func datesNewestFirst(startDate, endDate time.Time) []time.Time {
	start := truncateDay(startDate)
	end := truncateDay(endDate)
	if end.Before(start) {
		return nil
	}

	dates := make([]time.Time, 0, int(end.Sub(start).Hours()/24)+1)
	for d := end; !d.Before(start); d = d.AddDate(0, 0, -1) {
		dates = append(dates, d)
	}
	return dates
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
