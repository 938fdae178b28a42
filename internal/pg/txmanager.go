package pg

//go:generate mockgen -source=txmanager.go -destination=mock_txmanager.go -package=pg

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"

	"github.com/GlebRadaev/stockfolio/internal/domain"
)

const (
	defaultTimeout   = 5 * time.Second
	defaultRetryBase = 50 * time.Millisecond

	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeForeignKeyViolation  = "23503"
	codeUniqueViolation      = "23505"
)

type TransactionalFn func(ctx context.Context) error

type TXManager interface {
	Begin(ctx context.Context, fn TransactionalFn) error
	Run(ctx context.Context, fn TransactionalFn) error
}

// Beginner is implemented by *pgxpool.Pool and pgxmock.PgxPoolIface.
type Beginner interface {
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

type Option func(*Manager)

func WithTimeout(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.timeout = d
		}
	}
}

func WithRetryBase(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.retryBase = d
		}
	}
}

type Manager struct {
	db        Beginner
	timeout   time.Duration
	retryBase time.Duration
}

func NewTXManager(db Beginner, opts ...Option) *Manager {
	m := &Manager{
		db:        db,
		timeout:   defaultTimeout,
		retryBase: defaultRetryBase,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Begin runs fn inside a READ COMMITTED transaction bounded by the manager
// timeout. A call made while ctx already carries a transaction joins it.
// Serialization failures, deadlocks and dropped connections are retried once.
func (m *Manager) Begin(ctx context.Context, fn TransactionalFn) error {
	if inTx(ctx) {
		return fn(ctx)
	}

	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	backoff := retry.WithMaxRetries(1, retry.NewExponential(m.retryBase))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := m.run(ctx, fn)
		if isTransient(err) {
			zap.L().Warn("transient store error, retrying", zap.Error(err))
			return retry.RetryableError(err)
		}
		return err
	})
	return storeError(err)
}

// Run calls fn outside a transaction under the same timeout as Begin. Single
// statement reads and writes go through it. Inside a transaction it just calls fn.
func (m *Manager) Run(ctx context.Context, fn TransactionalFn) error {
	if inTx(ctx) {
		return fn(ctx)
	}

	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()
	return storeError(fn(ctx))
}

func storeError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, domain.ErrStoreUnavailable) {
		return fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}
	return err
}

func (m *Manager) run(ctx context.Context, fn TransactionalFn) (err error) {
	tx, err := m.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		zap.L().Error("can't begin transaction", zap.Error(err))
		return fmt.Errorf("can't begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		}
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
				zap.L().Error("can't rollback transaction", zap.Error(rbErr))
			}
			return
		}
		if cErr := tx.Commit(ctx); cErr != nil {
			zap.L().Error("can't commit transaction", zap.Error(cErr))
			err = fmt.Errorf("can't commit transaction: %w", cErr)
		}
	}()

	return fn(withTx(ctx, tx))
}

func isTransient(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == codeSerializationFailure || pgErr.Code == codeDeadlockDetected
	}
	var connErr *pgconn.ConnectError
	return errors.As(err, &connErr)
}

func IsForeignKeyViolation(err error) bool {
	return hasCode(err, codeForeignKeyViolation)
}

func IsUniqueViolation(err error) bool {
	return hasCode(err, codeUniqueViolation)
}

func hasCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}
