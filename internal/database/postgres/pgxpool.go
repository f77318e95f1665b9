// Package postgres adapts a pgxpool connection pool to the database.DB
// contract. One pool serves both the repositories (native pgx) and the
// migration runner (database/sql via stdlib).
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"

	"sharespace/internal/config"
	"sharespace/internal/database"
)

var errNilDB = errors.New("nil db")

type Store struct {
	pool  *pgxpool.Pool
	sqlDB *sql.DB
}

func Connect(ctx context.Context, cfg config.DatabaseConfig) (database.DB, error) {
	pcfg, err := pgxpool.ParseConfig(buildDSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("parse database config: %w", err)
	}
	tunePool(pcfg, cfg)

	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, err
	}

	pingCtx := ctx
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		pingCtx, cancel = context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
	}
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, err
	}

	return &Store{pool: pool, sqlDB: stdlib.OpenDBFromPool(pool)}, nil
}

func buildDSN(cfg config.DatabaseConfig) string {
	parts := []string{
		"host=" + strings.TrimSpace(cfg.DBHost),
		"port=" + strings.TrimSpace(cfg.DBPort),
		"user=" + strings.TrimSpace(cfg.DBUser),
		"password=" + cfg.DBPassword,
		"dbname=" + strings.TrimSpace(cfg.DBName),
	}
	if mode := strings.TrimSpace(cfg.DBSSLMode); mode != "" {
		parts = append(parts, "sslmode="+mode)
	}
	return strings.Join(parts, " ")
}

func tunePool(pcfg *pgxpool.Config, cfg config.DatabaseConfig) {
	if cfg.ConnectTimeout > 0 {
		pcfg.ConnConfig.ConnectTimeout = cfg.ConnectTimeout
	}
	if cfg.PoolMaxConns > 0 {
		pcfg.MaxConns = cfg.PoolMaxConns
	}
	if cfg.PoolMinConns > 0 {
		pcfg.MinConns = cfg.PoolMinConns
	}
	if cfg.PoolMaxConnLifetime > 0 {
		pcfg.MaxConnLifetime = cfg.PoolMaxConnLifetime
	}
	if cfg.PoolMaxConnIdleTime > 0 {
		pcfg.MaxConnIdleTime = cfg.PoolMaxConnIdleTime
	}
	if cfg.PoolHealthCheckPeriod > 0 {
		pcfg.HealthCheckPeriod = cfg.PoolHealthCheckPeriod
	}
}

func (s *Store) Ping(ctx context.Context) error {
	if s == nil || s.pool == nil {
		return errNilDB
	}
	return s.pool.Ping(ctx)
}

func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	if s.sqlDB != nil {
		_ = s.sqlDB.Close()
	}
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}

func (s *Store) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	if s == nil || s.pool == nil {
		return 0, errNilDB
	}
	tag, err := s.pool.Exec(ctx, query, args...)
	return tag.RowsAffected(), err
}

func (s *Store) Query(ctx context.Context, query string, args ...any) (database.Rows, error) {
	if s == nil || s.pool == nil {
		return nil, errNilDB
	}
	r, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return rowsAdapter{rows: r}, nil
}

func (s *Store) QueryRow(ctx context.Context, query string, args ...any) database.Row {
	if s == nil || s.pool == nil {
		return errRow{}
	}
	return rowAdapter{row: s.pool.QueryRow(ctx, query, args...)}
}

func (s *Store) Begin(ctx context.Context) (database.Tx, error) {
	if s == nil || s.pool == nil {
		return nil, errNilDB
	}
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return txAdapter{tx: tx}, nil
}

func (s *Store) SQLDB() *sql.DB {
	if s == nil {
		return nil
	}
	return s.sqlDB
}

type txAdapter struct {
	tx pgx.Tx
}

func (t txAdapter) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	tag, err := t.tx.Exec(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (t txAdapter) Query(ctx context.Context, query string, args ...any) (database.Rows, error) {
	r, err := t.tx.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return rowsAdapter{rows: r}, nil
}

func (t txAdapter) QueryRow(ctx context.Context, query string, args ...any) database.Row {
	return rowAdapter{row: t.tx.QueryRow(ctx, query, args...)}
}

func (t txAdapter) Commit(ctx context.Context) error   { return t.tx.Commit(ctx) }
func (t txAdapter) Rollback(ctx context.Context) error { return t.tx.Rollback(ctx) }

type rowsAdapter struct {
	rows pgx.Rows
}

func (r rowsAdapter) Close()                 { r.rows.Close() }
func (r rowsAdapter) Next() bool             { return r.rows.Next() }
func (r rowsAdapter) Scan(dest ...any) error { return r.rows.Scan(dest...) }
func (r rowsAdapter) Err() error             { return r.rows.Err() }

type rowAdapter struct {
	row pgx.Row
}

func (r rowAdapter) Scan(dest ...any) error { return r.row.Scan(dest...) }

type errRow struct{}

func (errRow) Scan(_ ...any) error { return errNilDB }
