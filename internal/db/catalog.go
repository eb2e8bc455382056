package db

import (
	"context"

	"github.com/fullon/master-api/internal/model"
)

func (db *Postgres) EnsureCatalogSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS exchanges (
			id BIGSERIAL PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`
	_, err := db.Pool.Exec(ctx, query)
	return err
}

func (db *Postgres) ListExchanges(ctx context.Context) ([]model.Exchange, error) {
	query := `
		SELECT id, name, is_active, created_at
		FROM exchanges
		ORDER BY name
	`
	rows, err := db.Pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var exchanges []model.Exchange
	for rows.Next() {
		var ex model.Exchange
		if err := rows.Scan(&ex.ID, &ex.Name, &ex.Active, &ex.CreatedAt); err != nil {
			return nil, err
		}
		exchanges = append(exchanges, ex)
	}
	return exchanges, rows.Err()
}

func (db *Postgres) GetExchangeByName(ctx context.Context, name string) (*model.Exchange, error) {
	query := `
		SELECT id, name, is_active, created_at
		FROM exchanges
		WHERE name = $1
	`
	var ex model.Exchange
	err := db.Pool.QueryRow(ctx, query, name).Scan(&ex.ID, &ex.Name, &ex.Active, &ex.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &ex, nil
}
