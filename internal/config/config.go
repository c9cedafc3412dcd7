package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

type Config struct {
	App               App               `mapstructure:",squash"`
	Server            Server            `mapstructure:",squash"`
	Database          Database          `mapstructure:",squash"`
	SearchConsole     SearchConsole     `mapstructure:",squash"`
	SearchMetricsSync SearchMetricsSync `mapstructure:",squash"`
	HealthCheck       HealthCheck       `mapstructure:",squash"`
}

type App struct {
	LogLevel string `mapstructure:"log_level"`
}

type Server struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
}

type Database struct {
	DSN      string `mapstructure:"-"`
	Driver   string `mapstructure:"database_driver"`
	Password string `mapstructure:"database_password"`
	URL      string `mapstructure:"database_url"`
	User     string `mapstructure:"database_user"`
}

type SearchConsole struct {
	BaseURL     string `mapstructure:"gsc_base_url"`
	AccessToken string `mapstructure:"gsc_access_token"`
	RowLimit    int    `mapstructure:"gsc_row_limit"`
}

type SearchMetricsSync struct {
	CronSchedule   string `mapstructure:"search_metrics_sync_cron"`
	LookbackDays   int    `mapstructure:"search_metrics_sync_lookback_days"`
	BatchSize      int    `mapstructure:"search_metrics_sync_batch_size"`
	MaxConcurrency int    `mapstructure:"search_metrics_sync_max_concurrency"`
	ChunkSize      int    `mapstructure:"search_metrics_sync_chunk_size"`
	Enabled        bool   `mapstructure:"search_metrics_sync_enabled"`
}

type HealthCheck struct {
	StalenessDays int `mapstructure:"health_check_staleness_days"`
}

func SetDefaults() {
	viper.SetDefault("HOST", "localhost")
	viper.SetDefault("PORT", 8000)

	viper.SetDefault("DATABASE_DRIVER", "postgres")
	viper.SetDefault("DATABASE_URL", "localhost:5432/prism")
	viper.SetDefault("DATABASE_USER", "postgres")
	viper.SetDefault("DATABASE_PASSWORD", "root")

	viper.SetDefault("GSC_BASE_URL", "https://www.googleapis.com/webmasters/v3")
	viper.SetDefault("GSC_ACCESS_TOKEN", "your_access_token") // ONLY LOCAL
	viper.SetDefault("GSC_ROW_LIMIT", 25000)                  // Limite de linhas por página da API

	// Defaults para sincronização de métricas de busca
	viper.SetDefault("SEARCH_METRICS_SYNC_CRON", "0 3 * * *")  // Todos os dias às 3h da manhã
	viper.SetDefault("SEARCH_METRICS_SYNC_LOOKBACK_DAYS", 7)   // 7 dias para buscar dados
	viper.SetDefault("SEARCH_METRICS_SYNC_BATCH_SIZE", 5)      // 5 páginas por chamada em lote
	viper.SetDefault("SEARCH_METRICS_SYNC_MAX_CONCURRENCY", 3) // 3 lotes concorrentes
	viper.SetDefault("SEARCH_METRICS_SYNC_CHUNK_SIZE", 500)    // 500 linhas por upsert
	viper.SetDefault("SEARCH_METRICS_SYNC_ENABLED", false)     // Habilitar sincronização agendada

	viper.SetDefault("HEALTH_CHECK_STALENESS_DAYS", 7) // URLs sem verificação há mais de 7 dias

	viper.SetDefault("LOG_LEVEL", "debug")
}

func NewConfig() (*Config, error) {
	// Primeiro carregar o arquivo .env usando godotenv
	loadEnvFile() // ONLY LOCAL

	config := &Config{}

	// Configurar valores padrão
	SetDefaults()

	// Configurar o Viper
	viper.SetConfigType("env")
	viper.SetConfigFile(".env")
	viper.AutomaticEnv() // Isso permite que o Viper leia variáveis de ambiente

	// Tentar ler o arquivo .env com o Viper (opcional, já que usamos godotenv)
	if err := viper.ReadInConfig(); err != nil {
		logrus.Info("Usando variáveis carregadas pelo godotenv (viper não conseguiu ler .env):", err)
	} else {
		logrus.Info("Arquivo .env lido pelo Viper com sucesso")
	}

	err := viper.Unmarshal(&config, viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	))
	if err != nil {
		return nil, err
	}

	config.Database.DSN = fmt.Sprintf(
		"%s://%s:%s@%s",
		config.Database.Driver,
		config.Database.User,
		config.Database.Password,
		config.Database.URL,
	)

	return config, nil
}

// Função auxiliar para carregar o arquivo .env usando godotenv
func loadEnvFile() {
	// Obter diretório atual
	cwd, err := os.Getwd()
	if err != nil {
		logrus.Warn("Não foi possível obter o diretório atual:", err)
		return
	}

	// Tentar várias localizações possíveis para o arquivo .env
	locations := []string{
		filepath.Join(cwd, ".env"),               // Diretório atual
		filepath.Join(filepath.Dir(cwd), ".env"), // Diretório pai
		filepath.Join(cwd, "../.env"),            // Diretório acima
		filepath.Join(cwd, "../../.env"),         // Dois diretórios acima
	}

	for _, location := range locations {
		err := godotenv.Load(location)
		if err == nil {
			logrus.Info("Arquivo .env carregado com sucesso de:", location)
			return
		}
	}

	logrus.Warn("Não foi possível carregar o arquivo .env de nenhuma localização conhecida")
}
