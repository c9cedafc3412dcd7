package repository

import (
	"fmt"
	"time"

	"github.com/0xFlo/prism-sub007/infrastructure/database/postgres"
	"github.com/0xFlo/prism-sub007/internal/domain"
	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"
)

type SyncDayRepository interface {
	GetByDateRange(accountID, siteURL string, startDate, endDate time.Time) ([]*domain.SyncDay, error)
	MarkRunning(accountID, siteURL string, date time.Time) error
	MarkComplete(accountID, siteURL string, date time.Time, urlCount, queryCount int) error
	MarkFailed(accountID, siteURL string, date time.Time, syncErr string) error
}

type syncDayRepository struct {
	conn *postgres.Connection
}

func NewSyncDayRepository(conn *postgres.Connection) SyncDayRepository {
	return &syncDayRepository{
		conn: conn,
	}
}

func (r *syncDayRepository) GetByDateRange(accountID, siteURL string, startDate, endDate time.Time) ([]*domain.SyncDay, error) {
	query, args, err := squirrel.
		Select("sd.account_id, sd.site_url, sd.date, sd.status, sd.url_count, sd.query_count, COALESCE(sd.error, ''), sd.last_synced_at").
		From("sync_days sd").
		Where(squirrel.Eq{"sd.account_id": accountID, "sd.site_url": siteURL}).
		Where(squirrel.GtOrEq{"sd.date": startDate.Format("2006-01-02")}).
		Where(squirrel.LtOrEq{"sd.date": endDate.Format("2006-01-02")}).
		OrderBy("sd.date DESC").
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

	days := make([]*domain.SyncDay, 0)
	for rows.Next() {
		day := &domain.SyncDay{}
		err := rows.Scan(
			&day.AccountID,
			&day.SiteURL,
			&day.Date,
			&day.Status,
			&day.URLCount,
			&day.QueryCount,
			&day.Error,
			&day.LastSyncedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("erro ao escanear dias de sincronização: %w", err)
		}
		days = append(days, day)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("erro durante a iteração de linhas: %w", err)
	}

	return days, nil
}

// MarkRunning registra o início do processamento de um dia
func (r *syncDayRepository) MarkRunning(accountID, siteURL string, date time.Time) error {
	return r.upsertStatus(accountID, siteURL, date, domain.SyncDayStatusRunning, 0, 0, "")
}

// MarkComplete registra um dia como concluído. Um dia só deve ser marcado
// complete depois que suas linhas foram persistidas de forma durável.
func (r *syncDayRepository) MarkComplete(accountID, siteURL string, date time.Time, urlCount, queryCount int) error {
	return r.upsertStatus(accountID, siteURL, date, domain.SyncDayStatusComplete, urlCount, queryCount, "")
}

func (r *syncDayRepository) MarkFailed(accountID, siteURL string, date time.Time, syncErr string) error {
	return r.upsertStatus(accountID, siteURL, date, domain.SyncDayStatusFailed, 0, 0, syncErr)
}

func (r *syncDayRepository) upsertStatus(accountID, siteURL string, date time.Time, status domain.SyncDayStatus, urlCount, queryCount int, syncErr string) error {
	query := squirrel.StatementBuilder.
		Insert("sync_days").
		Columns("account_id", "site_url", "date", "status", "url_count", "query_count", "error", "last_synced_at").
		Values(
			accountID,
			siteURL,
			date.Format("2006-01-02"),
			status,
			urlCount,
			queryCount,
			syncErr,
			squirrel.Expr("NOW()"),
		).
		Suffix(`
			ON CONFLICT (account_id, site_url, date) DO UPDATE SET
				status = EXCLUDED.status,
				url_count = EXCLUDED.url_count,
				query_count = EXCLUDED.query_count,
				error = EXCLUDED.error,
				last_synced_at = NOW()
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
