package main

import (
	"context"
	"os"
	"path"
	"runtime"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/0xFlo/prism-sub007/infrastructure/database/postgres"
	"github.com/0xFlo/prism-sub007/infrastructure/integrator/searchconsole"
	"github.com/0xFlo/prism-sub007/infrastructure/integrator/searchconsole/gscclient"
	"github.com/0xFlo/prism-sub007/infrastructure/repository"
	"github.com/0xFlo/prism-sub007/internal/api"
	"github.com/0xFlo/prism-sub007/internal/config"
	"github.com/0xFlo/prism-sub007/internal/scheduler"
	"github.com/0xFlo/prism-sub007/internal/usecases/syncing"
)

func main() {
	// Inicializa configuração de logs
	configureLogger()

	cfg, err := config.NewConfig()
	if err != nil {
		logrus.Fatal(err)
	}

	// Define o nível de log com base na configuração
	logLevel, err := logrus.ParseLevel(cfg.App.LogLevel)
	if err != nil {
		logrus.Warnf("Nível de log inválido: %s, usando 'info'", cfg.App.LogLevel)
		logLevel = logrus.InfoLevel
	}
	logrus.SetLevel(logLevel)
	logrus.Infof("Nível de log configurado para: %s", logLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pgConn := pgconn(ctx, cfg.Database)
	defer pgConn.Close()

	propertyRepo := repository.NewPropertyRepository(pgConn)
	metricRepo := repository.NewSearchMetricRepository(pgConn)
	lifetimeRepo := repository.NewLifetimeStatRepository(pgConn)
	syncDayRepo := repository.NewSyncDayRepository(pgConn)
	healthRepo := repository.NewHealthCheckRepository(pgConn)

	gscClient := gscclient.NewClient(cfg)
	gscIntegrator := searchconsole.New(cfg, gscClient)

	persister := syncing.NewPersister(metricRepo, lifetimeRepo, healthRepo, syncing.PersisterConfig{
		ChunkSize:     cfg.SearchMetricsSync.ChunkSize,
		StalenessDays: cfg.HealthCheck.StalenessDays,
	})

	syncService := syncing.NewService(
		gscIntegrator,
		persister,
		syncDayRepo,
		syncing.NewSyncProgress(),
		syncing.NewRateLimiter(),
	)

	// Inicializa o agendador de sincronização diária
	searchMetricsSyncService := scheduler.NewSearchMetricsSyncService(
		propertyRepo,
		syncService,
		cfg,
	)

	if err := searchMetricsSyncService.Start(ctx); err != nil {
		logrus.WithError(err).Error("Erro ao iniciar o agendador de sincronização de métricas de busca")
	} else {
		logrus.Info("Agendador de sincronização de métricas de busca iniciado com sucesso")
	}

	server, err := api.New(
		cfg,
		syncService,
		searchMetricsSyncService,
		metricRepo,
		lifetimeRepo,
		propertyRepo,
	)
	if err != nil {
		logrus.Fatal(err)
	}

	if err := server.Run(ctx); err != nil {
		logrus.Error(err)
	}
}

// configureLogger configura o formato e comportamento dos logs
func configureLogger() {
	_, file, _, _ := runtime.Caller(0)
	dir := path.Dir(file)
	os.Chdir(dir)

	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})
}

// pgconn cria uma conexão com o banco de dados
func pgconn(ctx context.Context, dbConfig config.Database) *postgres.Connection {
	conn, err := postgres.NewConnection(ctx, dbConfig)
	if err != nil {
		logrus.WithError(err).Fatal("Erro ao conectar ao PostgreSQL")
	}

	err = conn.Ping(ctx)
	if err != nil {
		logrus.WithError(err).Fatal("Erro ao testar conexão com PostgreSQL")
	}

	logrus.Info("Conexão com PostgreSQL estabelecida com sucesso")
	return conn
}
