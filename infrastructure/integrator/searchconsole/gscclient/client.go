package gscclient

import (
	"net/http"
	"time"

	"github.com/0xFlo/prism-sub007/internal/config"
)

type Client interface {
	QuerySearchAnalytics(siteURL string, params SearchAnalyticsParams) (*SearchAnalyticsResponse, error)
}

type GSCClient struct {
	httpClient *http.Client
	config     *config.Config
}

// NewClient cria uma nova instância do cliente da API de análise de busca
func NewClient(cfg *config.Config) Client {
	return &GSCClient{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		config: cfg,
	}
}
