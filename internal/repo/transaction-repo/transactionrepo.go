package transactionrepo

import (
	"context"

	"go.uber.org/zap"

	"github.com/GlebRadaev/stockfolio/internal/domain"
	"github.com/GlebRadaev/stockfolio/internal/pg"
)

type Repository struct {
	db pg.Database
}

func New(db pg.Database) *Repository {
	return &Repository{
		db: db,
	}
}

func (r *Repository) Create(ctx context.Context, tr *domain.Transaction) (*domain.Transaction, error) {
	query := `
		INSERT INTO transactions (purchase_id, product_id, user_id, sent_to_user_id, sent_by_user_id,
			background_color, text_color, total_money_sent)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query, tr.PurchaseID, tr.ProductID, tr.UserID, tr.SentToUserID, tr.SentByUserID,
		tr.BackgroundColor, tr.TextColor, tr.TotalMoneySent).
		Scan(&tr.ID, &tr.CreatedAt, &tr.UpdatedAt)
	if err != nil {
		zap.L().Error("can't save transaction", zap.Error(err))
		return nil, err
	}
	return tr, nil
}

func (r *Repository) ListByUser(ctx context.Context, userID int) ([]domain.Transaction, error) {
	query := `
		SELECT id, purchase_id, product_id, user_id, sent_to_user_id, sent_by_user_id,
			background_color, text_color, total_money_sent, created_at, updated_at
		FROM transactions
		WHERE user_id = $1
		ORDER BY created_at, id
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		zap.L().Error("can't get transactions", zap.Int("user_id", userID), zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	transactions := make([]domain.Transaction, 0)
	for rows.Next() {
		var tr domain.Transaction
		err := rows.Scan(&tr.ID, &tr.PurchaseID, &tr.ProductID, &tr.UserID, &tr.SentToUserID, &tr.SentByUserID,
			&tr.BackgroundColor, &tr.TextColor, &tr.TotalMoneySent, &tr.CreatedAt, &tr.UpdatedAt)
		if err != nil {
			zap.L().Error("can't scan transaction", zap.Error(err))
			return nil, err
		}
		transactions = append(transactions, tr)
	}
	if err := rows.Err(); err != nil {
		zap.L().Error("error iterating transactions", zap.Error(err))
		return nil, err
	}
	return transactions, nil
}
