package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/sirupsen/logrus"

	"github.com/0xFlo/prism-sub007/infrastructure/repository"
	"github.com/0xFlo/prism-sub007/internal/config"
	"github.com/0xFlo/prism-sub007/internal/domain"
	"github.com/0xFlo/prism-sub007/internal/usecases/syncing"
)

// SearchMetricsSyncConfig representa a configuração do agendador de
// sincronização de métricas de busca
type SearchMetricsSyncConfig struct {
	CronSchedule   string
	LookbackDays   int
	BatchSize      int
	MaxConcurrency int
	SyncEnabled    bool
}

// SearchMetricsSyncService gerencia o agendamento e execução da
// sincronização diária de métricas de busca de todas as propriedades
// ativas
type SearchMetricsSyncService struct {
	scheduler           *gocron.Scheduler
	config              SearchMetricsSyncConfig
	appConfig           *config.Config
	propertyRepo        repository.PropertyRepository
	syncer              syncing.Syncer
	syncRunning         bool
	syncMutex           sync.Mutex
	lastSyncStartedAt   time.Time
	lastSyncCompletedAt time.Time
}

// NewSearchMetricsSyncService cria uma nova instância do serviço de
// sincronização de métricas de busca
func NewSearchMetricsSyncService(
	propertyRepo repository.PropertyRepository,
	syncer syncing.Syncer,
	appConfig *config.Config,
) *SearchMetricsSyncService {
	syncConfig := SearchMetricsSyncConfig{
		CronSchedule:   appConfig.SearchMetricsSync.CronSchedule,
		LookbackDays:   appConfig.SearchMetricsSync.LookbackDays,
		BatchSize:      appConfig.SearchMetricsSync.BatchSize,
		MaxConcurrency: appConfig.SearchMetricsSync.MaxConcurrency,
		SyncEnabled:    appConfig.SearchMetricsSync.Enabled,
	}

	scheduler := gocron.NewScheduler(time.Local)

	logrus.WithFields(logrus.Fields{
		"cron_schedule":   syncConfig.CronSchedule,
		"lookback_days":   syncConfig.LookbackDays,
		"batch_size":      syncConfig.BatchSize,
		"max_concurrency": syncConfig.MaxConcurrency,
		"sync_enabled":    syncConfig.SyncEnabled,
	}).Info("Configuração do agendador de métricas de busca carregada")

	return &SearchMetricsSyncService{
		scheduler:    scheduler,
		config:       syncConfig,
		appConfig:    appConfig,
		propertyRepo: propertyRepo,
		syncer:       syncer,
		syncRunning:  false,
	}
}

// Start inicia o agendador
func (s *SearchMetricsSyncService) Start(ctx context.Context) error {
	if !s.config.SyncEnabled {
		logrus.Info("Sincronização de métricas de busca desabilitada por configuração")
		return nil
	}

	logrus.WithField("cron", s.config.CronSchedule).Info("Iniciando agendador de sincronização de métricas de busca")

	_, err := s.scheduler.Cron(s.config.CronSchedule).Do(func() {
		s.syncAllProperties()
	})
	if err != nil {
		return fmt.Errorf("erro ao agendar sincronização de métricas de busca: %w", err)
	}

	s.scheduler.StartAsync()

	go func() {
		<-ctx.Done()
		logrus.Info("Parando agendador de sincronização de métricas de busca")
		s.scheduler.Stop()
	}()

	return nil
}

// syncAllProperties sincroniza as métricas de busca de todas as
// propriedades ativas, uma por vez; a concorrência acontece dentro de
// cada propriedade, nos lotes de páginas
func (s *SearchMetricsSyncService) syncAllProperties() {
	s.syncMutex.Lock()
	if s.syncRunning {
		s.syncMutex.Unlock()
		logrus.Info("Sincronização de métricas de busca já em andamento, ignorando")
		return
	}
	s.syncRunning = true
	s.syncMutex.Unlock()

	startTime := time.Now()
	s.lastSyncStartedAt = startTime

	defer func() {
		s.syncMutex.Lock()
		s.syncRunning = false
		s.syncMutex.Unlock()
	}()

	logrus.Info("Iniciando sincronização de métricas de busca para todas as propriedades ativas")

	activeProperties, err := s.getActiveProperties()
	if err != nil {
		logrus.WithError(err).Error("Erro ao buscar lista de propriedades para sincronização de métricas de busca")
		return
	}

	if len(activeProperties) == 0 {
		logrus.Info("Nenhuma propriedade ativa encontrada para sincronização de métricas de busca")
		return
	}

	startDate, endDate := s.getDateRange()
	logrus.WithFields(logrus.Fields{
		"days":       s.config.LookbackDays,
		"start_date": startDate.Format(time.DateOnly),
		"end_date":   endDate.Format(time.DateOnly),
	}).Info("Período para sincronização de métricas de busca")

	for _, property := range activeProperties {
		s.syncProperty(property, startDate, endDate)
	}

	duration := time.Since(startTime)
	logrus.WithFields(logrus.Fields{
		"duration":   duration.String(),
		"properties": len(activeProperties),
		"days":       s.config.LookbackDays,
	}).Info("Sincronização de métricas de busca concluída")

	s.lastSyncCompletedAt = time.Now()
}

// getActiveProperties busca e filtra propriedades ativas
func (s *SearchMetricsSyncService) getActiveProperties() ([]*domain.Property, error) {
	activeProperties, err := s.propertyRepo.ListProperties([]domain.PropertyStatus{domain.PropertyStatusActive})
	if err != nil {
		return nil, err
	}

	if len(activeProperties) == 0 {
		logrus.Info("Nenhuma propriedade encontrada para sincronização de métricas de busca")
		return []*domain.Property{}, nil
	}

	logrus.WithFields(logrus.Fields{
		"active_properties": len(activeProperties),
	}).Info("Propriedades encontradas para sincronização de métricas de busca")

	return activeProperties, nil
}

// getDateRange calcula o intervalo de datas a sincronizar, terminando em
// ontem
func (s *SearchMetricsSyncService) getDateRange() (time.Time, time.Time) {
	endDate := time.Now().AddDate(0, 0, -1)
	startDate := endDate.AddDate(0, 0, -(s.config.LookbackDays - 1))
	return startDate, endDate
}

// syncProperty executa a sincronização de uma propriedade para o intervalo
// de datas
func (s *SearchMetricsSyncService) syncProperty(property *domain.Property, startDate, endDate time.Time) {
	logrus.WithFields(logrus.Fields{
		"property_id": property.ID,
		"account_id":  property.AccountID,
		"site_url":    property.SiteURL,
	}).Info("Sincronizando métricas de busca da propriedade")

	report, err := s.syncer.Run(property.AccountID, property.SiteURL, startDate, endDate, syncing.SyncOptions{
		BatchSize:      s.config.BatchSize,
		MaxConcurrency: s.config.MaxConcurrency,
		RowLimit:       s.appConfig.SearchConsole.RowLimit,
	})
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"property_id": property.ID,
			"site_url":    property.SiteURL,
			"error":       err.Error(),
		}).Error("Erro na sincronização de métricas de busca da propriedade")
		return
	}

	logrus.WithFields(logrus.Fields{
		"property_id": property.ID,
		"site_url":    property.SiteURL,
		"job_id":      report.JobID,
		"status":      report.Status,
	}).Info("Sincronização de métricas de busca da propriedade concluída")
}

// TriggerManualSync inicia manualmente uma sincronização de métricas de
// busca
func (s *SearchMetricsSyncService) TriggerManualSync() {
	s.syncMutex.Lock()
	if s.syncRunning {
		s.syncMutex.Unlock()
		logrus.Info("Sincronização de métricas de busca já em andamento, ignorando solicitação manual")
		return
	}
	s.syncMutex.Unlock()

	logrus.Info("Iniciando sincronização manual de métricas de busca")
	go s.syncAllProperties()
}

// GetStatus retorna o status atual do agendador
func (s *SearchMetricsSyncService) GetStatus() map[string]any {
	return map[string]any{
		"sync_enabled":           s.config.SyncEnabled,
		"sync_cron":              s.config.CronSchedule,
		"sync_lookback_days":     s.config.LookbackDays,
		"sync_batch_size":        s.config.BatchSize,
		"sync_max_concurrency":   s.config.MaxConcurrency,
		"last_sync_started_at":   s.lastSyncStartedAt,
		"last_sync_completed_at": s.lastSyncCompletedAt,
	}
}
