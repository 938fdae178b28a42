package ledgerrepo

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/GlebRadaev/stockfolio/internal/domain"
	"github.com/GlebRadaev/stockfolio/internal/pg"
)

// Income and loss entries share a shape but live in separate tables.
type ledgerTable struct {
	name   string
	amount string
}

var tables = map[domain.LedgerKind]ledgerTable{
	domain.LedgerIncome: {name: "incomes", amount: "profit"},
	domain.LedgerLoss:   {name: "losses", amount: "loss"},
}

type Repository struct {
	db pg.Database
}

func New(db pg.Database) *Repository {
	return &Repository{
		db: db,
	}
}

func tableFor(kind domain.LedgerKind) (ledgerTable, error) {
	t, ok := tables[kind]
	if !ok {
		return ledgerTable{}, fmt.Errorf("ledger kind %q: %w", kind, domain.ErrValidation)
	}
	return t, nil
}

func (r *Repository) Create(ctx context.Context, entry *domain.LedgerEntry) (*domain.LedgerEntry, error) {
	t, err := tableFor(entry.Kind)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`
		INSERT INTO %s (user_id, title, icon_company, %s)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`, t.name, t.amount)
	err = r.db.QueryRow(ctx, query, entry.UserID, entry.Title, entry.IconCompany, entry.Amount).
		Scan(&entry.ID, &entry.CreatedAt, &entry.UpdatedAt)
	if err != nil {
		zap.L().Error("can't save ledger entry", zap.String("kind", string(entry.Kind)), zap.Error(err))
		return nil, err
	}
	return entry, nil
}

// ListByUser returns the user's entries of one kind, oldest first.
func (r *Repository) ListByUser(ctx context.Context, kind domain.LedgerKind, userID int) ([]domain.LedgerEntry, error) {
	t, err := tableFor(kind)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`
		SELECT id, user_id, title, icon_company, %s, created_at, updated_at
		FROM %s
		WHERE user_id = $1
		ORDER BY created_at, id
	`, t.amount, t.name)
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		zap.L().Error("can't get ledger entries", zap.String("kind", string(kind)), zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	entries := make([]domain.LedgerEntry, 0)
	for rows.Next() {
		e := domain.LedgerEntry{Kind: kind}
		if err := rows.Scan(&e.ID, &e.UserID, &e.Title, &e.IconCompany, &e.Amount, &e.CreatedAt, &e.UpdatedAt); err != nil {
			zap.L().Error("can't scan ledger entry", zap.Error(err))
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		zap.L().Error("error iterating ledger entries", zap.Error(err))
		return nil, err
	}
	return entries, nil
}
