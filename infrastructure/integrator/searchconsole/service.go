package searchconsole

import (
	"math"

	"github.com/sirupsen/logrus"

	"github.com/0xFlo/prism-sub007/infrastructure/integrator/searchconsole/gscclient"
	"github.com/0xFlo/prism-sub007/internal/config"
	"github.com/0xFlo/prism-sub007/internal/domain"
)

type SearchConsoleIntegrator struct {
	cfg    *config.Config
	Client gscclient.Client
}

func New(cfg *config.Config, client gscclient.Client) *SearchConsoleIntegrator {
	return &SearchConsoleIntegrator{
		cfg:    cfg,
		Client: client,
	}
}

// FetchQueryBatch executa um lote de requisições de página contra a API
// externa. Cada requisição de página custa exatamente uma chamada à API;
// as respostas ecoam o ID da requisição correspondente.
func (s *SearchConsoleIntegrator) FetchQueryBatch(accountID string, requests []domain.QueryPageRequest, operation string) ([]domain.QueryPageResponse, int, error) {
	responses := make([]domain.QueryPageResponse, 0, len(requests))
	apiCalls := 0

	for _, req := range requests {
		resp, err := s.Client.QuerySearchAnalytics(req.SiteURL, gscclient.SearchAnalyticsParams{
			StartDate: req.Date,
			EndDate:   req.Date,
			StartRow:  req.StartRow,
			RowLimit:  req.RowLimit,
		})
		apiCalls++
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"account_id": accountID,
				"site_url":   req.SiteURL,
				"date":       req.Date,
				"start_row":  req.StartRow,
				"operation":  operation,
				"error":      err.Error(),
			}).Error("search-console: falha ao buscar página de consultas")
			return nil, apiCalls, err
		}

		responses = append(responses, domain.QueryPageResponse{
			ID:     req.ID,
			Status: 200,
			Rows:   factoryQueryRows(resp.Rows),
		})
	}

	logrus.WithFields(logrus.Fields{
		"account_id": accountID,
		"requests":   len(requests),
		"api_calls":  apiCalls,
		"operation":  operation,
	}).Debug("search-console: lote de páginas concluído")

	return responses, apiCalls, nil
}

// factoryQueryRows converte as linhas cruas da API, dimensionadas por
// (página, consulta), para o modelo de domínio
func factoryQueryRows(rows []gscclient.SearchAnalyticsRow) []domain.QueryRow {
	out := make([]domain.QueryRow, 0, len(rows))
	for _, row := range rows {
		var pageURL, query string
		if len(row.Keys) > 0 {
			pageURL = row.Keys[0]
		}
		if len(row.Keys) > 1 {
			query = row.Keys[1]
		}

		out = append(out, domain.QueryRow{
			URL:         pageURL,
			Query:       query,
			Clicks:      int64(math.Round(row.Clicks)),
			Impressions: int64(math.Round(row.Impressions)),
			CTR:         row.CTR,
			Position:    row.Position,
		})
	}
	return out
}
