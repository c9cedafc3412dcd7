package repository

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/0xFlo/prism-sub007/infrastructure/database/postgres"
	"github.com/0xFlo/prism-sub007/internal/domain"
	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"
)

type SearchMetricRepository interface {
	SaveBatch(entries []*domain.SearchMetricEntry) error
	GetByDateRange(accountID, siteURL string, startDate, endDate time.Time) ([]*domain.SearchMetricEntry, error)
}

type searchMetricRepository struct {
	conn *postgres.Connection
}

func NewSearchMetricRepository(conn *postgres.Connection) SearchMetricRepository {
	return &searchMetricRepository{
		conn: conn,
	}
}

// SaveBatch insere ou atualiza um lote de métricas diárias em uma única
// instrução. O conflito na chave natural substitui as colunas de métricas
// e preserva created_at.
func (r *searchMetricRepository) SaveBatch(entries []*domain.SearchMetricEntry) error {
	if len(entries) == 0 {
		return nil
	}

	builder := squirrel.StatementBuilder.
		Insert("search_metrics").
		Columns("account_id", "site_url", "url", "date", "clicks", "impressions", "ctr", "position", "top_queries", "period_type")

	for _, entry := range entries {
		var topQueriesJSON []byte
		var err error

		if entry.TopQueries != nil {
			topQueriesJSON, err = json.Marshal(entry.TopQueries)
			if err != nil {
				return fmt.Errorf("erro ao serializar top_queries para JSON: %w", err)
			}
		}

		builder = builder.Values(
			entry.AccountID,
			entry.SiteURL,
			entry.URL,
			entry.Date.Format("2006-01-02"),
			entry.Clicks,
			entry.Impressions,
			entry.CTR,
			entry.Position,
			topQueriesJSON,
			entry.PeriodType,
		)
	}

	query := builder.
		Suffix(`
			ON CONFLICT (account_id, site_url, url, date) DO UPDATE SET
				clicks = EXCLUDED.clicks,
				impressions = EXCLUDED.impressions,
				ctr = EXCLUDED.ctr,
				position = EXCLUDED.position,
				top_queries = EXCLUDED.top_queries,
				period_type = EXCLUDED.period_type,
				updated_at = NOW()
		`).
		PlaceholderFormat(squirrel.Dollar)

	sqlQuery, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("erro ao construir a query: %w", err)
	}

	_, err = r.conn.Exec(sqlQuery, args...)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			return fmt.Errorf("erro no banco de dados: %w (código: %s)", pqErr, pqErr.Code)
		}
		return fmt.Errorf("erro ao executar a query: %w", err)
	}

	return nil
}

func (r *searchMetricRepository) GetByDateRange(accountID, siteURL string, startDate, endDate time.Time) ([]*domain.SearchMetricEntry, error) {
	query, args, err := squirrel.
		Select("sm.id, sm.account_id, sm.site_url, sm.url, sm.date, sm.clicks, sm.impressions, sm.ctr, sm.position, sm.top_queries, sm.period_type, sm.created_at, sm.updated_at").
		From("search_metrics sm").
		Where(squirrel.Eq{"sm.account_id": accountID, "sm.site_url": siteURL}).
		Where(squirrel.GtOrEq{"sm.date": startDate.Format("2006-01-02")}).
		Where(squirrel.LtOrEq{"sm.date": endDate.Format("2006-01-02")}).
		OrderBy("sm.date ASC, sm.url ASC").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	rows, err := r.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("erro ao executar a query: %w", err)
	}
	defer rows.Close()

	entries := make([]*domain.SearchMetricEntry, 0)
	for rows.Next() {
		entry := &domain.SearchMetricEntry{}
		var topQueriesJSON []byte

		err := rows.Scan(
			&entry.ID,
			&entry.AccountID,
			&entry.SiteURL,
			&entry.URL,
			&entry.Date,
			&entry.Clicks,
			&entry.Impressions,
			&entry.CTR,
			&entry.Position,
			&topQueriesJSON,
			&entry.PeriodType,
			&entry.CreatedAt,
			&entry.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("erro ao escanear métricas de busca: %w", err)
		}

		if topQueriesJSON != nil {
			if err := json.Unmarshal(topQueriesJSON, &entry.TopQueries); err != nil {
				return nil, fmt.Errorf("erro ao deserializar JSON de top_queries: %w", err)
			}
		}

		entries = append(entries, entry)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("erro durante a iteração de linhas: %w", err)
	}

	return entries, nil
}
