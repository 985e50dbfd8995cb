package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"onehotel/pkg/db"
	apperrors "onehotel/pkg/errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const (
	pqUniqueViolation      = "23505"
	pqExclusionViolation   = "23P01"
	pqForeignKeyViolation  = "23503"
	pqSerializationFailure = "40001"
)

type txKey struct{}

// Queryer is satisfied by both *sqlx.DB and *sqlx.Tx.
type Queryer interface {
	sqlx.ExtContext
	GetContext(ctx context.Context, dest any, query string, args ...any) error
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
}

func Open(ctx context.Context, dsn string, connTimeout time.Duration) (*sqlx.DB, error) {
	ctx, cancel := context.WithTimeout(ctx, connTimeout)
	defer cancel()

	conn, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	conn.SetMaxOpenConns(25)
	conn.SetMaxIdleConns(5)
	conn.SetConnMaxLifetime(30 * time.Minute)
	return conn, nil
}

type sqlTransactionManager struct {
	db *sqlx.DB
}

func NewTransactionManager(conn *sqlx.DB) db.TransactionManager {
	return &sqlTransactionManager{db: conn}
}

func (m *sqlTransactionManager) ExecuteTransaction(ctx context.Context, fn db.TransactionFunc) error {
	if _, ok := ctx.Value(txKey{}).(*sqlx.Tx); ok {
		return fn(ctx)
	}

	tx, err := m.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		_ = tx.Rollback()
		if apperrors.IsAppError(err) {
			return err
		}
		return fmt.Errorf("transaction failed: %w", err)
	}

	if err := tx.Commit(); err != nil {
		if IsSerializationFailure(err) {
			return apperrors.Conflict("Concurrent modification detected, please retry")
		}
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Conn returns the transaction bound to ctx, or conn when there is none.
func Conn(ctx context.Context, conn *sqlx.DB) Queryer {
	if tx, ok := ctx.Value(txKey{}).(*sqlx.Tx); ok {
		return tx
	}
	return conn
}

// WithTimeout bounds ctx by timeout, keeping any bound transaction.
func WithTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) < timeout {
		return context.WithDeadline(ctx, deadline)
	}
	return context.WithTimeout(ctx, timeout)
}

func IsUniqueViolation(err error) bool {
	return hasCode(err, pqUniqueViolation)
}

func IsExclusionViolation(err error) bool {
	return hasCode(err, pqExclusionViolation)
}

func IsForeignKeyViolation(err error) bool {
	return hasCode(err, pqForeignKeyViolation)
}

func IsSerializationFailure(err error) bool {
	return hasCode(err, pqSerializationFailure)
}

func IsNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

func hasCode(err error, code string) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && string(pqErr.Code) == code
}
