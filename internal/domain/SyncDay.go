package domain

import "time"

// SyncDayStatus indica o estado de sincronização de um dia
type SyncDayStatus string

const (
	SyncDayStatusRunning  SyncDayStatus = "running"
	SyncDayStatusComplete SyncDayStatus = "complete"
	SyncDayStatusFailed   SyncDayStatus = "failed"
)

// SyncDay registra a conclusão da sincronização de um dia para uma propriedade.
// Dias com status complete são pulados em execuções seguintes, a menos que
// a sincronização seja forçada.
type SyncDay struct {
	AccountID    string        `json:"account_id"`
	SiteURL      string        `json:"site_url"`
	Date         time.Time     `json:"date"`
	Status       SyncDayStatus `json:"status"`
	URLCount     int           `json:"url_count"`
	QueryCount   int           `json:"query_count"`
	Error        string        `json:"error,omitempty"`
	LastSyncedAt time.Time     `json:"last_synced_at"`
}
