package database

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
)

// DBTX is the subset of database/sql both *sql.DB and *sql.Tx satisfy,
// so a repository method can run inside or outside a transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Tx adds commit/rollback control. *sql.Tx implements it.
type Tx interface {
	DBTX
	Commit() error
	Rollback() error
}

// Beginner starts a transaction. Services hold one instead of *sql.DB
// so tests can swap in a fake handle.
type Beginner func(ctx context.Context) (Tx, error)

func New(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxIdleTime(90 * time.Second)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func NewBeginner(db *sql.DB) Beginner {
	return func(ctx context.Context) (Tx, error) {
		return db.BeginTx(ctx, nil)
	}
}
