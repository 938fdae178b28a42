package productrepo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
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

func (r *Repository) FindByID(ctx context.Context, id int) (*domain.Product, error) {
	query := `
		SELECT id, title, quantity, salary, image, company_icon, created_at, updated_at
		FROM products
		WHERE id = $1
	`
	var p domain.Product
	err := r.db.QueryRow(ctx, query, id).
		Scan(&p.ID, &p.Title, &p.Quantity, &p.Salary, &p.Image, &p.CompanyIcon, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		zap.L().Error("can't find product", zap.Int("id", id), zap.Error(err))
		return nil, err
	}
	return &p, nil
}

func (r *Repository) List(ctx context.Context) ([]domain.Product, error) {
	query := `
		SELECT id, title, quantity, salary, image, company_icon, created_at, updated_at
		FROM products
		ORDER BY id
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		zap.L().Error("can't get products", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	products := make([]domain.Product, 0)
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.Title, &p.Quantity, &p.Salary, &p.Image, &p.CompanyIcon, &p.CreatedAt, &p.UpdatedAt); err != nil {
			zap.L().Error("can't scan product", zap.Error(err))
			return nil, err
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		zap.L().Error("error iterating products", zap.Error(err))
		return nil, err
	}
	return products, nil
}
