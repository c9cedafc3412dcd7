package domain

import "time"

// PropertyStatus indica se a propriedade participa das sincronizações
type PropertyStatus string

const (
	PropertyStatusActive   PropertyStatus = "ACTIVE"
	PropertyStatusInactive PropertyStatus = "INACTIVE"
)

// Property representa uma propriedade do Search Console vinculada a uma conta
type Property struct {
	ID        string         `json:"id"`
	AccountID string         `json:"account_id"`
	SiteURL   string         `json:"site_url"`
	Name      string         `json:"name"`
	Status    PropertyStatus `json:"status"`
	CreatedAt time.Time      `json:"created_at,omitempty"`
	UpdatedAt time.Time      `json:"updated_at,omitempty"`
}
