package repository

import (
	"database/sql"
	"fmt"

	"github.com/0xFlo/prism-sub007/infrastructure/database/postgres"
	"github.com/0xFlo/prism-sub007/internal/domain"
	"github.com/Masterminds/squirrel"
)

type PropertyRepository interface {
	ListProperties(statuses []domain.PropertyStatus) ([]*domain.Property, error)
	GetByID(id string) (*domain.Property, error)
}

type propertyRepository struct {
	conn *postgres.Connection
}

func NewPropertyRepository(conn *postgres.Connection) PropertyRepository {
	return &propertyRepository{
		conn: conn,
	}
}

func (r *propertyRepository) ListProperties(statuses []domain.PropertyStatus) ([]*domain.Property, error) {
	builder := squirrel.
		Select("p.id, p.account_id, p.site_url, p.name, p.status, p.created_at, p.updated_at").
		From("properties p").
		OrderBy("p.name ASC")

	if len(statuses) > 0 {
		builder = builder.Where(squirrel.Eq{"p.status": statuses})
	}

	query, args, err := builder.
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

	properties := make([]*domain.Property, 0)
	for rows.Next() {
		property := &domain.Property{}
		err := rows.Scan(
			&property.ID,
			&property.AccountID,
			&property.SiteURL,
			&property.Name,
			&property.Status,
			&property.CreatedAt,
			&property.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("erro ao escanear propriedades: %w", err)
		}
		properties = append(properties, property)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("erro durante a iteração de linhas: %w", err)
	}

	return properties, nil
}

func (r *propertyRepository) GetByID(id string) (*domain.Property, error) {
	query, args, err := squirrel.
		Select("p.id, p.account_id, p.site_url, p.name, p.status, p.created_at, p.updated_at").
		From("properties p").
		Where(squirrel.Eq{"p.id": id}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	row := r.conn.QueryRow(query, args...)

	property := &domain.Property{}
	err = row.Scan(
		&property.ID,
		&property.AccountID,
		&property.SiteURL,
		&property.Name,
		&property.Status,
		&property.CreatedAt,
		&property.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("erro ao escanear propriedade: %w", err)
	}

	return property, nil
}
