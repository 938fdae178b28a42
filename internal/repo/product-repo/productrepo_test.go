package productrepo

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/GlebRadaev/stockfolio/internal/domain"
)

var productColumns = []string{"id", "title", "quantity", "salary", "image", "company_icon", "created_at", "updated_at"}

func NewMock(t *testing.T) (*Repository, pgxmock.PgxPoolIface) {
	mockDB, err := pgxmock.NewPool()
	assert.NoError(t, err)
	repo := New(mockDB)
	t.Cleanup(mockDB.Close)

	return repo, mockDB
}

func TestRepository_FindByID(t *testing.T) {
	repo, mock := NewMock(t)
	now := time.Now()
	query := regexp.QuoteMeta("FROM products WHERE id = $1")

	tests := []struct {
		name      string
		mockSetup func()
		expectErr bool
		result    *domain.Product
	}{
		{
			name: "Product found",
			mockSetup: func() {
				mock.ExpectQuery(query).WithArgs(1).WillReturnRows(pgxmock.NewRows(productColumns).
					AddRow(1, "Designer", 800, decimal.RequireFromString("10.00"), "d.png", "i.png", now, now))
			},
			result: &domain.Product{
				ID: 1, Title: "Designer", Quantity: 800, Salary: decimal.RequireFromString("10.00"),
				Image: "d.png", CompanyIcon: "i.png", CreatedAt: now, UpdatedAt: now,
			},
		},
		{
			name: "Product not found",
			mockSetup: func() {
				mock.ExpectQuery(query).WithArgs(1).WillReturnError(pgx.ErrNoRows)
			},
		},
		{
			name: "Database error",
			mockSetup: func() {
				mock.ExpectQuery(query).WithArgs(1).WillReturnError(errors.New("database error"))
			},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockSetup()
			result, err := repo.FindByID(context.Background(), 1)
			if tt.expectErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.result, result)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRepository_List(t *testing.T) {
	repo, mock := NewMock(t)
	now := time.Now()
	query := regexp.QuoteMeta("FROM products ORDER BY id")

	mock.ExpectQuery(query).WillReturnRows(pgxmock.NewRows(productColumns).
		AddRow(1, "Designer", 800, decimal.RequireFromString("10.00"), "d.png", "i.png", now, now).
		AddRow(2, "Analyst", 600, decimal.RequireFromString("11.25"), "a.png", "j.png", now, now))

	products, err := repo.List(context.Background())
	assert.NoError(t, err)
	assert.Len(t, products, 2)
	assert.Equal(t, "Analyst", products[1].Title)
	assert.Equal(t, "11.25", domain.FormatMoney(products[1].Salary))

	mock.ExpectQuery(query).WillReturnRows(pgxmock.NewRows(productColumns))
	products, err = repo.List(context.Background())
	assert.NoError(t, err)
	assert.NotNil(t, products)
	assert.Empty(t, products)

	mock.ExpectQuery(query).WillReturnRows(pgxmock.NewRows(productColumns).
		AddRow(1, "Designer", 800, "not a number", "d.png", "i.png", now, now))
	_, err = repo.List(context.Background())
	assert.Error(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}
