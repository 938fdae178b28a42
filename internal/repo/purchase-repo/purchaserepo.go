package purchaserepo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/GlebRadaev/stockfolio/internal/domain"
	"github.com/GlebRadaev/stockfolio/internal/pg"
)

const purchaseColumns = "id, product_id, user_id, new_salary, percent, quantity, available, created_at, updated_at"

type Repository struct {
	db pg.Database
}

func New(db pg.Database) *Repository {
	return &Repository{
		db: db,
	}
}

func scanPurchase(row pgx.Row) (*domain.Purchase, error) {
	var p domain.Purchase
	err := row.Scan(&p.ID, &p.ProductID, &p.UserID, &p.NewSalary, &p.Percent, &p.Quantity, &p.Available, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *Repository) findOne(ctx context.Context, query string, args ...any) (*domain.Purchase, error) {
	p, err := scanPurchase(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		zap.L().Error("can't find purchase", zap.Any("args", args), zap.Error(err))
		return nil, err
	}
	return p, nil
}

func (r *Repository) FindByID(ctx context.Context, id int) (*domain.Purchase, error) {
	return r.findOne(ctx, "SELECT "+purchaseColumns+" FROM purchases WHERE id = $1", id)
}

// LockByID re-reads the stake inside the current transaction and holds its row lock.
func (r *Repository) LockByID(ctx context.Context, id int) (*domain.Purchase, error) {
	return r.findOne(ctx, "SELECT "+purchaseColumns+" FROM purchases WHERE id = $1 FOR UPDATE", id)
}

// FindByUserAndProduct returns the user's stake in the product, preferring an
// active one, and locks it.
func (r *Repository) FindByUserAndProduct(ctx context.Context, userID, productID int) (*domain.Purchase, error) {
	query := "SELECT " + purchaseColumns + `
		FROM purchases
		WHERE user_id = $1 AND product_id = $2
		ORDER BY available DESC, id DESC
		LIMIT 1
		FOR UPDATE`
	return r.findOne(ctx, query, userID, productID)
}

func (r *Repository) Create(ctx context.Context, p *domain.Purchase) (*domain.Purchase, error) {
	query := `
		INSERT INTO purchases (product_id, user_id, new_salary, percent, quantity, available)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query, p.ProductID, p.UserID, p.NewSalary, p.Percent, p.Quantity, p.Available).
		Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		zap.L().Error("can't save purchase", zap.Error(err))
		return nil, err
	}
	return p, nil
}

// Update overwrites the mutable stake fields of p.
func (r *Repository) Update(ctx context.Context, p *domain.Purchase) (*domain.Purchase, error) {
	query := `
		UPDATE purchases
		SET new_salary = $2, percent = $3, quantity = $4, available = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + purchaseColumns
	updated, err := scanPurchase(r.db.QueryRow(ctx, query, p.ID, p.NewSalary, p.Percent, p.Quantity, p.Available))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		zap.L().Error("failed to update purchase", zap.Int("id", p.ID), zap.Error(err))
		return nil, err
	}
	return updated, nil
}

func (r *Repository) Delete(ctx context.Context, id int) (*domain.Purchase, error) {
	p, err := scanPurchase(r.db.QueryRow(ctx, "DELETE FROM purchases WHERE id = $1 RETURNING "+purchaseColumns, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		zap.L().Error("can't delete purchase", zap.Int("id", id), zap.Error(err))
		return nil, err
	}
	return p, nil
}

func (r *Repository) ListByUser(ctx context.Context, userID int) ([]domain.PurchaseView, error) {
	query := `
		SELECT p.id, p.product_id, p.user_id, p.new_salary, p.percent, p.quantity, p.available,
			p.created_at, p.updated_at, pr.title, pr.image, pr.company_icon
		FROM purchases p
		LEFT JOIN products pr ON pr.id = p.product_id
		WHERE p.user_id = $1
		ORDER BY p.id
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		zap.L().Error("can't get purchases", zap.Int("user_id", userID), zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	purchases := make([]domain.PurchaseView, 0)
	for rows.Next() {
		var v domain.PurchaseView
		err := rows.Scan(&v.ID, &v.ProductID, &v.UserID, &v.NewSalary, &v.Percent, &v.Quantity, &v.Available,
			&v.CreatedAt, &v.UpdatedAt, &v.Title, &v.Image, &v.Icon)
		if err != nil {
			zap.L().Error("can't scan purchase", zap.Error(err))
			return nil, err
		}
		purchases = append(purchases, v)
	}
	if err := rows.Err(); err != nil {
		zap.L().Error("error iterating purchases", zap.Error(err))
		return nil, err
	}
	return purchases, nil
}
