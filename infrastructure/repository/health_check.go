package repository

import (
	"fmt"
	"time"

	"github.com/0xFlo/prism-sub007/infrastructure/database/postgres"
	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"
)

type HealthCheckRepository interface {
	FilterStale(accountID, siteURL string, urls []string, stalenessDays int) ([]string, error)
	EnqueueNewURLs(accountID, siteURL string, urls []string, priority int, scheduleIn time.Duration) error
}

type healthCheckRepository struct {
	conn *postgres.Connection
}

func NewHealthCheckRepository(conn *postgres.Connection) HealthCheckRepository {
	return &healthCheckRepository{
		conn: conn,
	}
}

// FilterStale retorna, dentre as URLs informadas, as que não possuem
// verificação de saúde nos últimos stalenessDays dias
func (r *healthCheckRepository) FilterStale(accountID, siteURL string, urls []string, stalenessDays int) ([]string, error) {
	if len(urls) == 0 {
		return nil, nil
	}

	cutoff := time.Now().AddDate(0, 0, -stalenessDays)

	query, args, err := squirrel.
		Select("hc.url").
		From("url_health_checks hc").
		Where(squirrel.Eq{"hc.account_id": accountID, "hc.site_url": siteURL}).
		Where(squirrel.Eq{"hc.url": urls}).
		Where(squirrel.GtOrEq{"hc.checked_at": cutoff}).
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

	recent := make(map[string]bool)
	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			return nil, fmt.Errorf("erro ao escanear verificações de saúde: %w", err)
		}
		recent[url] = true
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("erro durante a iteração de linhas: %w", err)
	}

	stale := make([]string, 0, len(urls))
	for _, url := range urls {
		if !recent[url] {
			stale = append(stale, url)
		}
	}

	return stale, nil
}

// EnqueueNewURLs agenda verificações de saúde para as URLs informadas.
// O contrato é fire-and-forget: a sincronização não aguarda o resultado
// das verificações enfileiradas.
func (r *healthCheckRepository) EnqueueNewURLs(accountID, siteURL string, urls []string, priority int, scheduleIn time.Duration) error {
	if len(urls) == 0 {
		return nil
	}

	scheduledAt := time.Now().Add(scheduleIn)

	builder := squirrel.StatementBuilder.
		Insert("url_health_check_queue").
		Columns("account_id", "site_url", "url", "priority", "scheduled_at")

	for _, url := range urls {
		builder = builder.Values(accountID, siteURL, url, priority, scheduledAt)
	}

	// URLs já enfileiradas e ainda pendentes não são duplicadas
	query := builder.
		Suffix("ON CONFLICT (account_id, site_url, url) DO NOTHING").
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
