package repository

import (
	"database/sql"
	"fmt"

	"github.com/0xFlo/prism-sub007/infrastructure/database/postgres"
	"github.com/0xFlo/prism-sub007/internal/domain"
	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"
)

type LifetimeStatRepository interface {
	RefreshForURLs(accountID, siteURL string, urls []string) error
	GetByURL(accountID, siteURL, url string) (*domain.LifetimeStat, error)
}

type lifetimeStatRepository struct {
	conn *postgres.Connection
}

func NewLifetimeStatRepository(conn *postgres.Connection) LifetimeStatRepository {
	return &lifetimeStatRepository{
		conn: conn,
	}
}

// RefreshForURLs recalcula o agregado vitalício apenas das URLs informadas,
// em uma única instrução de agregação com upsert. O agregado deriva
// exclusivamente das métricas diárias persistidas; recalcular a propriedade
// inteira a cada sincronização não escala.
func (r *lifetimeStatRepository) RefreshForURLs(accountID, siteURL string, urls []string) error {
	if len(urls) == 0 {
		return nil
	}

	query := `
		INSERT INTO lifetime_stats (
			account_id, site_url, url,
			lifetime_clicks, lifetime_impressions, avg_position, avg_ctr,
			first_seen_date, last_seen_date, days_with_data, refreshed_at
		)
		SELECT
			account_id, site_url, url,
			SUM(clicks), SUM(impressions), AVG(position), AVG(ctr),
			MIN(date), MAX(date), COUNT(DISTINCT date), NOW()
		FROM search_metrics
		WHERE account_id = $1 AND site_url = $2 AND url = ANY($3)
		GROUP BY account_id, site_url, url
		ON CONFLICT (account_id, site_url, url) DO UPDATE SET
			lifetime_clicks = EXCLUDED.lifetime_clicks,
			lifetime_impressions = EXCLUDED.lifetime_impressions,
			avg_position = EXCLUDED.avg_position,
			avg_ctr = EXCLUDED.avg_ctr,
			first_seen_date = EXCLUDED.first_seen_date,
			last_seen_date = EXCLUDED.last_seen_date,
			days_with_data = EXCLUDED.days_with_data,
			refreshed_at = NOW()
	`

	_, err := r.conn.Exec(query, accountID, siteURL, pq.Array(urls))
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			return fmt.Errorf("erro no banco de dados: %w (código: %s)", pqErr, pqErr.Code)
		}
		return fmt.Errorf("erro ao executar a query: %w", err)
	}

	return nil
}

func (r *lifetimeStatRepository) GetByURL(accountID, siteURL, url string) (*domain.LifetimeStat, error) {
	query, args, err := squirrel.
		Select("ls.account_id, ls.site_url, ls.url, ls.lifetime_clicks, ls.lifetime_impressions, ls.avg_position, ls.avg_ctr, ls.first_seen_date, ls.last_seen_date, ls.days_with_data, ls.refreshed_at").
		From("lifetime_stats ls").
		Where(squirrel.Eq{"ls.account_id": accountID, "ls.site_url": siteURL, "ls.url": url}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	row := r.conn.QueryRow(query, args...)

	stat := &domain.LifetimeStat{}
	err = row.Scan(
		&stat.AccountID,
		&stat.SiteURL,
		&stat.URL,
		&stat.LifetimeClicks,
		&stat.LifetimeImpressions,
		&stat.AvgPosition,
		&stat.AvgCTR,
		&stat.FirstSeenDate,
		&stat.LastSeenDate,
		&stat.DaysWithData,
		&stat.RefreshedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("erro ao escanear estatísticas vitalícias: %w", err)
	}

	return stat, nil
}
