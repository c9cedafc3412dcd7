package gscclient

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"time"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type SearchAnalyticsParams struct {
	StartDate string
	EndDate   string
	StartRow  int
	RowLimit  int
}

type searchAnalyticsRequest struct {
	StartDate  string   `json:"startDate"`
	EndDate    string   `json:"endDate"`
	Dimensions []string `json:"dimensions"`
	RowLimit   int      `json:"rowLimit"`
	StartRow   int      `json:"startRow"`
}

type SearchAnalyticsRow struct {
	Keys        []string `json:"keys"`
	Clicks      float64  `json:"clicks"`
	Impressions float64  `json:"impressions"`
	CTR         float64  `json:"ctr"`
	Position    float64  `json:"position"`
}

type SearchAnalyticsResponse struct {
	Rows []SearchAnalyticsRow `json:"rows"`
}

// QuerySearchAnalytics busca uma página de linhas (página, consulta) de um
// dia para a propriedade informada
func (c *GSCClient) QuerySearchAnalytics(siteURL string, params SearchAnalyticsParams) (*SearchAnalyticsResponse, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 45*time.Second)
	defer cancel()

	// Construir a URL da requisição
	endpoint, err := url.Parse(c.config.SearchConsole.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("erro ao analisar a URL base: %w", err)
	}
	endpoint.Path = path.Join(endpoint.Path, "/sites", url.PathEscape(siteURL), "/searchAnalytics/query")

	body, err := json.Marshal(searchAnalyticsRequest{
		StartDate:  params.StartDate,
		EndDate:    params.EndDate,
		Dimensions: []string{"page", "query"},
		RowLimit:   params.RowLimit,
		StartRow:   params.StartRow,
	})
	if err != nil {
		return nil, fmt.Errorf("erro ao codificar o corpo da requisição: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("erro ao criar a requisição: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.config.SearchConsole.AccessToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("erro ao executar a requisição: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("requisição falhou com status: %s", resp.Status)
	}

	var response SearchAnalyticsResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("erro ao decodificar a resposta: %w", err)
	}

	return &response, nil
}
