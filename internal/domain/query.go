package domain

// QueryRow é uma linha crua retornada pela API externa para um dia:
// uma combinação (página, consulta) com suas métricas
type QueryRow struct {
	URL         string  `json:"url"`
	Query       string  `json:"query"`
	Clicks      int64   `json:"clicks"`
	Impressions int64   `json:"impressions"`
	CTR         float64 `json:"ctr"`
	Position    float64 `json:"position"`
}

// QueryPageRequest é a requisição de uma página de consultas para um dia.
// O ID é opaco para o provedor e codifica (dia, linha inicial); o provedor
// apenas o ecoa na resposta correspondente.
type QueryPageRequest struct {
	ID       string `json:"id"`
	SiteURL  string `json:"site_url"`
	Date     string `json:"date"`
	StartRow int    `json:"start_row"`
	RowLimit int    `json:"row_limit"`
}

// QueryPageResponse ecoa o ID da requisição correspondente com o status e
// as linhas retornadas pela API
type QueryPageResponse struct {
	ID     string     `json:"id"`
	Status int        `json:"status"`
	Rows   []QueryRow `json:"rows"`
}
