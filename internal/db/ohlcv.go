package db

import (
	"context"
	"time"

	"github.com/fullon/master-api/internal/model"
)

func (db *Postgres) EnsureOHLCVSchema(ctx context.Context) error {
	queries := []string{
		`
		CREATE TABLE IF NOT EXISTS candles (
			exchange TEXT NOT NULL,
			symbol TEXT NOT NULL,
			ts TIMESTAMPTZ NOT NULL,
			open DOUBLE PRECISION NOT NULL,
			high DOUBLE PRECISION NOT NULL,
			low DOUBLE PRECISION NOT NULL,
			close DOUBLE PRECISION NOT NULL,
			volume DOUBLE PRECISION NOT NULL,
			PRIMARY KEY (exchange, symbol, ts)
		)
		`,
		`
		CREATE TABLE IF NOT EXISTS trades (
			id BIGSERIAL PRIMARY KEY,
			exchange TEXT NOT NULL,
			symbol TEXT NOT NULL,
			price DOUBLE PRECISION NOT NULL,
			volume DOUBLE PRECISION NOT NULL,
			side TEXT NOT NULL,
			ts TIMESTAMPTZ NOT NULL
		)
		`,
		`CREATE INDEX IF NOT EXISTS trades_exchange_symbol_ts_idx ON trades(exchange, symbol, ts)`,
	}

	for _, query := range queries {
		if _, err := db.Pool.Exec(ctx, query); err != nil {
			return err
		}
	}
	return nil
}

func (db *Postgres) GetCandleRange(ctx context.Context, exchange, symbol string, from, to time.Time, limit int) ([]model.Candle, error) {
	query := `
		SELECT exchange, symbol, ts, open, high, low, close, volume
		FROM candles
		WHERE exchange = $1 AND symbol = $2 AND ts >= $3 AND ts < $4
		ORDER BY ts
		LIMIT $5
	`
	rows, err := db.Pool.Query(ctx, query, exchange, symbol, from, to, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var candles []model.Candle
	for rows.Next() {
		var cd model.Candle
		if err := rows.Scan(&cd.Exchange, &cd.Symbol, &cd.Timestamp, &cd.Open, &cd.High, &cd.Low, &cd.Close, &cd.Volume); err != nil {
			return nil, err
		}
		candles = append(candles, cd)
	}
	return candles, rows.Err()
}

func (db *Postgres) GetLatestCandle(ctx context.Context, exchange, symbol string) (*model.Candle, error) {
	query := `
		SELECT exchange, symbol, ts, open, high, low, close, volume
		FROM candles
		WHERE exchange = $1 AND symbol = $2
		ORDER BY ts DESC
		LIMIT 1
	`
	var cd model.Candle
	err := db.Pool.QueryRow(ctx, query, exchange, symbol).Scan(
		&cd.Exchange, &cd.Symbol, &cd.Timestamp, &cd.Open, &cd.High, &cd.Low, &cd.Close, &cd.Volume,
	)
	if err != nil {
		return nil, err
	}
	return &cd, nil
}

func (db *Postgres) GetRecentTrades(ctx context.Context, exchange, symbol string, limit int) ([]model.Trade, error) {
	query := `
		SELECT id, exchange, symbol, price, volume, side, ts
		FROM trades
		WHERE exchange = $1 AND symbol = $2
		ORDER BY ts DESC
		LIMIT $3
	`
	rows, err := db.Pool.Query(ctx, query, exchange, symbol, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trades []model.Trade
	for rows.Next() {
		var tr model.Trade
		if err := rows.Scan(&tr.ID, &tr.Exchange, &tr.Symbol, &tr.Price, &tr.Volume, &tr.Side, &tr.Timestamp); err != nil {
			return nil, err
		}
		trades = append(trades, tr)
	}
	return trades, rows.Err()
}
