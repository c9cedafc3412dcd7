package syncing

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/0xFlo/prism-sub007/infrastructure/repository/mocks"
	"github.com/0xFlo/prism-sub007/internal/domain"
)

// fakePersister registra os dias persistidos e permite simular falhas
type fakePersister struct {
	persisted []string
	fail      func(date time.Time) error
}

func (f *fakePersister) PersistDayResults(accountID, siteURL string, date time.Time, rows *QueryAccumulator) (*DayPersistResult, error) {
	if f.fail != nil {
		if err := f.fail(date); err != nil {
			return nil, err
		}
	}

	f.persisted = append(f.persisted, date.Format(time.DateOnly))

	urls := 0
	if rows.RowCount() > 0 {
		urls = 1
	}
	return &DayPersistResult{URLCount: urls, QueryCount: rows.RowCount()}, nil
}

func newTestService(t *testing.T, fetcher QueryFetcher, persister Persister) (*Service, *mocks.MockSyncDayRepository) {
	t.Helper()

	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	syncDayRepo := mocks.NewMockSyncDayRepository(ctrl)
	service := NewService(fetcher, persister, syncDayRepo, NewSyncProgress(), NewRateLimiter())
	return service, syncDayRepo
}

func TestService_Run(t *testing.T) {
	t.Run("Sincroniza os dias pendentes e pula os já completos", func(t *testing.T) {
		fetcher := &fakeFetcher{rowsByDate: map[string]int{
			"2024-01-03": 10,
			"2024-01-01": 5,
		}}
		persister := &fakePersister{}
		service, syncDayRepo := newTestService(t, fetcher, persister)

		// O dia do meio já foi sincronizado em uma execução anterior
		syncDayRepo.EXPECT().
			GetByDateRange(testAccountID, testSiteURL, day("2024-01-01"), day("2024-01-03")).
			Return([]*domain.SyncDay{
				{Date: day("2024-01-02"), Status: domain.SyncDayStatusComplete},
			}, nil)

		syncDayRepo.EXPECT().MarkRunning(testAccountID, testSiteURL, day("2024-01-03")).Return(nil)
		syncDayRepo.EXPECT().MarkRunning(testAccountID, testSiteURL, day("2024-01-01")).Return(nil)
		syncDayRepo.EXPECT().MarkComplete(testAccountID, testSiteURL, day("2024-01-03"), 1, 10).Return(nil)
		syncDayRepo.EXPECT().MarkComplete(testAccountID, testSiteURL, day("2024-01-01"), 1, 5).Return(nil)

		report, err := service.Run(testAccountID, testSiteURL, day("2024-01-01"), day("2024-01-03"), SyncOptions{
			BatchSize:      5,
			MaxConcurrency: 1,
		})
		require.NoError(t, err)

		assert.Equal(t, JobStatusCompleted, report.Status)
		require.NotNil(t, report.Summary)
		assert.Equal(t, 2, report.Summary.DatesProcessed)
		assert.Equal(t, 1, report.Summary.DatesSkipped)
		assert.Equal(t, 0, report.Summary.DatesFailed)
		assert.Equal(t, 2, report.Summary.TotalAPICalls)
		assert.Equal(t, 15, report.Summary.TotalRows)

		assert.ElementsMatch(t, []string{"2024-01-03", "2024-01-01"}, persister.persisted)

		// Todos os passos contam, inclusive o dia pulado
		state := service.Progress().CurrentState()
		require.NotNil(t, state)
		assert.Equal(t, 3, state.TotalSteps)
		assert.Equal(t, 3, state.CompletedSteps)
		assert.Equal(t, float64(100), state.Percent())
	})

	t.Run("Força reprocessa dias já completos sem consultar o registro", func(t *testing.T) {
		fetcher := &fakeFetcher{rowsByDate: map[string]int{
			"2024-01-02": 3,
			"2024-01-01": 3,
		}}
		persister := &fakePersister{}
		service, syncDayRepo := newTestService(t, fetcher, persister)

		syncDayRepo.EXPECT().MarkRunning(testAccountID, testSiteURL, gomock.Any()).Return(nil).Times(2)
		syncDayRepo.EXPECT().MarkComplete(testAccountID, testSiteURL, gomock.Any(), 1, 3).Return(nil).Times(2)

		report, err := service.Run(testAccountID, testSiteURL, day("2024-01-01"), day("2024-01-02"), SyncOptions{
			BatchSize:      5,
			MaxConcurrency: 1,
			Force:          true,
		})
		require.NoError(t, err)

		assert.Equal(t, JobStatusCompleted, report.Status)
		assert.Equal(t, 2, report.Summary.DatesProcessed)
		assert.Equal(t, 0, report.Summary.DatesSkipped)
	})

	t.Run("Falha na persistência interrompe a execução e marca o dia como falho", func(t *testing.T) {
		fetcher := &fakeFetcher{rowsByDate: map[string]int{
			"2024-01-02": 4,
			"2024-01-01": 4,
		}}
		persister := &fakePersister{
			fail: func(date time.Time) error {
				return errors.New("disco cheio")
			},
		}
		service, syncDayRepo := newTestService(t, fetcher, persister)

		syncDayRepo.EXPECT().
			GetByDateRange(testAccountID, testSiteURL, gomock.Any(), gomock.Any()).
			Return(nil, nil)

		// Apenas o dia mais recente chega à persistência antes da interrupção
		syncDayRepo.EXPECT().MarkRunning(testAccountID, testSiteURL, day("2024-01-02")).Return(nil)
		syncDayRepo.EXPECT().
			MarkFailed(testAccountID, testSiteURL, day("2024-01-02"), gomock.Any()).
			Return(nil)

		report, err := service.Run(testAccountID, testSiteURL, day("2024-01-01"), day("2024-01-02"), SyncOptions{
			BatchSize:      1,
			MaxConcurrency: 1,
		})
		require.NoError(t, err)

		assert.Equal(t, JobStatusFailed, report.Status)
		require.NotNil(t, report.Summary)
		assert.Equal(t, 1, report.Summary.DatesFailed)
		assert.Equal(t, "day_persist_failed", report.Summary.HaltReason)
		assert.Equal(t, "2024-01-02", report.Summary.FailedOn)
		assert.Contains(t, report.Summary.Error, "disco cheio")
	})

	t.Run("Dia vazio encerra com aviso quando StopOnEmpty está ativo", func(t *testing.T) {
		fetcher := &fakeFetcher{rowsByDate: map[string]int{
			"2024-01-02": 0,
			"2024-01-01": 7,
		}}
		persister := &fakePersister{}
		service, syncDayRepo := newTestService(t, fetcher, persister)

		syncDayRepo.EXPECT().
			GetByDateRange(testAccountID, testSiteURL, gomock.Any(), gomock.Any()).
			Return(nil, nil)

		syncDayRepo.EXPECT().MarkRunning(testAccountID, testSiteURL, day("2024-01-02")).Return(nil)
		syncDayRepo.EXPECT().MarkComplete(testAccountID, testSiteURL, day("2024-01-02"), 0, 0).Return(nil)

		report, err := service.Run(testAccountID, testSiteURL, day("2024-01-01"), day("2024-01-02"), SyncOptions{
			BatchSize:      1,
			MaxConcurrency: 1,
			StopOnEmpty:    true,
		})
		require.NoError(t, err)

		assert.Equal(t, JobStatusCompletedWithWarnings, report.Status)
		assert.Equal(t, 1, report.Summary.DatesProcessed)
	})

	t.Run("Intervalo de datas invertido é rejeitado", func(t *testing.T) {
		service, _ := newTestService(t, &fakeFetcher{}, &fakePersister{})

		report, err := service.Run(testAccountID, testSiteURL, day("2024-01-05"), day("2024-01-01"), SyncOptions{})

		assert.Error(t, err)
		assert.Nil(t, report)
	})

	t.Run("Erro ao consultar dias sincronizados impede o início do job", func(t *testing.T) {
		service, syncDayRepo := newTestService(t, &fakeFetcher{}, &fakePersister{})

		syncDayRepo.EXPECT().
			GetByDateRange(testAccountID, testSiteURL, gomock.Any(), gomock.Any()).
			Return(nil, errors.New("conexão perdida"))

		report, err := service.Run(testAccountID, testSiteURL, day("2024-01-01"), day("2024-01-02"), SyncOptions{})

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "dias já sincronizados")
		assert.Nil(t, report)
		assert.Nil(t, service.Progress().CurrentState())
	})

	t.Run("Intervalo totalmente sincronizado termina sem buscar nada", func(t *testing.T) {
		fetcher := &fakeFetcher{}
		service, syncDayRepo := newTestService(t, fetcher, &fakePersister{})

		syncDayRepo.EXPECT().
			GetByDateRange(testAccountID, testSiteURL, gomock.Any(), gomock.Any()).
			Return([]*domain.SyncDay{
				{Date: day("2024-01-01"), Status: domain.SyncDayStatusComplete},
				{Date: day("2024-01-02"), Status: domain.SyncDayStatusComplete},
			}, nil)

		report, err := service.Run(testAccountID, testSiteURL, day("2024-01-01"), day("2024-01-02"), SyncOptions{})
		require.NoError(t, err)

		assert.Equal(t, JobStatusCompleted, report.Status)
		assert.Equal(t, 2, report.Summary.DatesSkipped)
		assert.Equal(t, 0, report.Summary.DatesProcessed)
		assert.Equal(t, 0, fetcher.totalCalls())
	})

	t.Run("Dias com status de falha anterior são reprocessados", func(t *testing.T) {
		fetcher := &fakeFetcher{rowsByDate: map[string]int{"2024-01-01": 2}}
		persister := &fakePersister{}
		service, syncDayRepo := newTestService(t, fetcher, persister)

		syncDayRepo.EXPECT().
			GetByDateRange(testAccountID, testSiteURL, gomock.Any(), gomock.Any()).
			Return([]*domain.SyncDay{
				{Date: day("2024-01-01"), Status: domain.SyncDayStatusFailed},
			}, nil)

		syncDayRepo.EXPECT().MarkRunning(testAccountID, testSiteURL, day("2024-01-01")).Return(nil)
		syncDayRepo.EXPECT().MarkComplete(testAccountID, testSiteURL, day("2024-01-01"), 1, 2).Return(nil)

		report, err := service.Run(testAccountID, testSiteURL, day("2024-01-01"), day("2024-01-01"), SyncOptions{
			BatchSize:      1,
			MaxConcurrency: 1,
		})
		require.NoError(t, err)

		assert.Equal(t, JobStatusCompleted, report.Status)
		assert.Equal(t, []string{"2024-01-01"}, persister.persisted)
	})
}

func TestService_RunCancelado(t *testing.T) {
	// O provedor segura a primeira busca até o cancelamento ser pedido,
	// garantindo que o callback observe o estado de cancelamento
	release := make(chan struct{})
	var once sync.Once

	fetcher := &fakeFetcher{
		rowsByDate: map[string]int{"2024-01-02": 2, "2024-01-01": 2},
		fail: func(req domain.QueryPageRequest) error {
			once.Do(func() { <-release })
			return nil
		},
	}
	persister := &fakePersister{}
	service, syncDayRepo := newTestService(t, fetcher, persister)

	syncDayRepo.EXPECT().
		GetByDateRange(testAccountID, testSiteURL, gomock.Any(), gomock.Any()).
		Return(nil, nil)

	done := make(chan *SyncReport, 1)
	go func() {
		report, _ := service.Run(testAccountID, testSiteURL, day("2024-01-01"), day("2024-01-02"), SyncOptions{
			BatchSize:      1,
			MaxConcurrency: 1,
		})
		done <- report
	}()

	// Espera o job existir antes de pedir o cancelamento
	var jobID string
	require.Eventually(t, func() bool {
		state := service.Progress().CurrentState()
		if state == nil {
			return false
		}
		jobID = state.ID
		return true
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, service.Progress().RequestStop(jobID))
	close(release)

	select {
	case report := <-done:
		assert.Equal(t, JobStatusCancelled, report.Status)
		assert.Empty(t, persister.persisted)
	case <-time.After(2 * time.Second):
		t.Fatal("sincronização não terminou após o cancelamento")
	}
}

func TestHaltReasonLabel(t *testing.T) {
	tests := []struct {
		name   string
		reason error
		want   string
	}{
		{
			name:   "Falha na busca de consultas",
			reason: &QueryFetchError{Err: errors.New("timeout")},
			want:   "query_fetch_failed",
		},
		{
			name:   "Pânico no callback",
			reason: &CallbackError{Message: "índice fora do intervalo"},
			want:   "callback_error",
		},
		{
			name:   "Lote com partes faltando",
			reason: &BatchMismatchError{Kind: MismatchMissingParts},
			want:   MismatchMissingParts,
		},
		{
			name:   "Falha na persistência de um dia",
			reason: &dayFailedError{Date: day("2024-01-01"), Err: errors.New("disco cheio")},
			want:   "day_persist_failed",
		},
		{
			name:   "Motivo genérico",
			reason: errors.New("qualquer coisa"),
			want:   "halted",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, haltReasonLabel(tt.reason))
		})
	}
}

func TestDatesNewestFirst(t *testing.T) {
	tests := []struct {
		name  string
		start string
		end   string
		want  []string
	}{
		{
			name:  "Intervalo de três dias em ordem decrescente",
			start: "2024-01-01",
			end:   "2024-01-03",
			want:  []string{"2024-01-03", "2024-01-02", "2024-01-01"},
		},
		{
			name:  "Dia único",
			start: "2024-01-01",
			end:   "2024-01-01",
			want:  []string{"2024-01-01"},
		},
		{
			name:  "Intervalo invertido é vazio",
			start: "2024-01-03",
			end:   "2024-01-01",
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dates := datesNewestFirst(day(tt.start), day(tt.end))

			got := make([]string, 0, len(dates))
			for _, d := range dates {
				got = append(got, d.Format(time.DateOnly))
			}
			if tt.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}
