package domain

import "time"

// PeriodType indica a granularidade da métrica armazenada
type PeriodType string

const (
	PeriodTypeDaily PeriodType = "daily"
)

// QueryStat representa uma consulta de busca agregada para uma URL
type QueryStat struct {
	Query       string `json:"query"`
	Clicks      int64  `json:"clicks"`
	Impressions int64  `json:"impressions"`
}

// SearchMetricEntry representa as métricas diárias de uma URL no Search Console
type SearchMetricEntry struct {
	ID          string      `json:"id,omitempty"`
	AccountID   string      `json:"account_id"`
	SiteURL     string      `json:"site_url"`
	URL         string      `json:"url"`
	Date        time.Time   `json:"date"`
	Clicks      int64       `json:"clicks"`
	Impressions int64       `json:"impressions"`
	CTR         float64     `json:"ctr"`
	Position    float64     `json:"position"`
	TopQueries  []QueryStat `json:"top_queries,omitempty"`
	PeriodType  PeriodType  `json:"period_type"`
	CreatedAt   time.Time   `json:"created_at,omitempty"`
	UpdatedAt   time.Time   `json:"updated_at,omitempty"`
}
