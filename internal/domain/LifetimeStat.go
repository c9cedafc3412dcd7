package domain

import "time"

// LifetimeStat representa o agregado vitalício de uma URL, derivado
// exclusivamente das métricas diárias persistidas
type LifetimeStat struct {
	AccountID           string    `json:"account_id"`
	SiteURL             string    `json:"site_url"`
	URL                 string    `json:"url"`
	LifetimeClicks      int64     `json:"lifetime_clicks"`
	LifetimeImpressions int64     `json:"lifetime_impressions"`
	AvgPosition         float64   `json:"avg_position"`
	AvgCTR              float64   `json:"avg_ctr"`
	FirstSeenDate       time.Time `json:"first_seen_date"`
	LastSeenDate        time.Time `json:"last_seen_date"`
	DaysWithData        int       `json:"days_with_data"`
	RefreshedAt         time.Time `json:"refreshed_at"`
}
