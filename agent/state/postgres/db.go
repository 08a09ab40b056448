// Package postgres implements the record store and transcript on PostgreSQL via bun.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	contractx "github.com/tanpawarit/hitl-purchase-agent/agent/contract"
)

type Config struct {
	DSN             string        `envconfig:"DSN" required:"true"`
	MaxOpenConns    int           `split_words:"true" default:"10"`
	MaxIdleConns    int           `split_words:"true" default:"5"`
	ConnMaxLifetime time.Duration `split_words:"true" default:"1h"`
	DialTimeout     time.Duration `split_words:"true" default:"5s"`
}

// Open builds a bun DB over pgdriver and pings it so misconfiguration fails fast.
func Open(ctx context.Context, cfg Config) (*bun.DB, error) {
	db := newDB(cfg)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}

func newDB(cfg Config) *bun.DB {
	opts := []pgdriver.Option{pgdriver.WithDSN(cfg.DSN)}
	if cfg.DialTimeout > 0 {
		opts = append(opts, pgdriver.WithDialTimeout(cfg.DialTimeout))
	}
	sqldb := sql.OpenDB(pgdriver.NewConnector(opts...))
	if cfg.MaxOpenConns > 0 {
		sqldb.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqldb.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqldb.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
	return bun.NewDB(sqldb, pgdialect.New())
}

// Migrate creates the tables and indexes the store needs.
func Migrate(ctx context.Context, db bun.IDB) error {
	models := []any{
		(*productRow)(nil),
		(*orderRow)(nil),
		(*sessionMessageRow)(nil),
	}
	for _, m := range models {
		if _, err := db.NewCreateTable().Model(m).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("create table for %T: %w", m, err)
		}
	}

	indexes := []struct {
		model  any
		name   string
		column string
	}{
		{(*orderRow)(nil), "purchase_orders_user_id_idx", "user_id"},
		{(*orderRow)(nil), "purchase_orders_purchase_date_idx", "purchase_date"},
		{(*sessionMessageRow)(nil), "session_messages_user_id_idx", "user_id"},
	}
	for _, idx := range indexes {
		_, err := db.NewCreateIndex().
			Model(idx.model).
			Index(idx.name).
			Column(idx.column).
			IfNotExists().
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("create index %s: %w", idx.name, err)
		}
	}
	return nil
}

// mapError converts driver errors to contract errors.
// Context cancellation passes through untouched.
func mapError(err error, entity string, id string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s %s: %w", entity, id, err)
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s %s: %w", entity, id, contractx.ErrNotFound)
	}

	var pgErr pgdriver.Error
	if errors.As(err, &pgErr) {
		switch pgErr.Field('C') {
		case "23505": // unique_violation
			return fmt.Errorf("%s %s already exists: %w", entity, id, contractx.ErrValidation)
		case "23514": // check_violation
			return fmt.Errorf("%s %s: %w: %s", entity, id, contractx.ErrValidation, pgErr.Field('M'))
		}
	}
	return fmt.Errorf("%s %s: %w", entity, id, err)
}
