package purchaserepo

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

var purchaseRowColumns = []string{"id", "product_id", "user_id", "new_salary", "percent", "quantity", "available", "created_at", "updated_at"}

func NewMock(t *testing.T) (*Repository, pgxmock.PgxPoolIface) {
	mockDB, err := pgxmock.NewPool()
	assert.NoError(t, err)
	repo := New(mockDB)
	t.Cleanup(mockDB.Close)

	return repo, mockDB
}

func testPurchase(now time.Time) *domain.Purchase {
	return &domain.Purchase{
		ID:        3,
		ProductID: 2,
		UserID:    1,
		NewSalary: decimal.RequireFromString("5.00"),
		Percent:   "100.00%",
		Quantity:  100,
		Available: 1,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func purchaseRow(p *domain.Purchase) *pgxmock.Rows {
	return pgxmock.NewRows(purchaseRowColumns).
		AddRow(p.ID, p.ProductID, p.UserID, p.NewSalary, p.Percent, p.Quantity, p.Available, p.CreatedAt, p.UpdatedAt)
}

func TestRepository_Lookups(t *testing.T) {
	repo, mock := NewMock(t)
	purchase := testPurchase(time.Now())

	tests := []struct {
		name      string
		mockSetup func()
		call      func() (*domain.Purchase, error)
		expectErr bool
		result    *domain.Purchase
	}{
		{
			name: "FindByID found",
			mockSetup: func() {
				mock.ExpectQuery(regexp.QuoteMeta("FROM purchases WHERE id = $1")).WithArgs(3).WillReturnRows(purchaseRow(purchase))
			},
			call:   func() (*domain.Purchase, error) { return repo.FindByID(context.Background(), 3) },
			result: purchase,
		},
		{
			name: "FindByID missing",
			mockSetup: func() {
				mock.ExpectQuery(regexp.QuoteMeta("FROM purchases WHERE id = $1")).WithArgs(3).WillReturnError(pgx.ErrNoRows)
			},
			call: func() (*domain.Purchase, error) { return repo.FindByID(context.Background(), 3) },
		},
		{
			name: "LockByID takes a row lock",
			mockSetup: func() {
				mock.ExpectQuery(regexp.QuoteMeta("FROM purchases WHERE id = $1 FOR UPDATE")).WithArgs(3).WillReturnRows(purchaseRow(purchase))
			},
			call:   func() (*domain.Purchase, error) { return repo.LockByID(context.Background(), 3) },
			result: purchase,
		},
		{
			name: "FindByUserAndProduct prefers the active stake",
			mockSetup: func() {
				mock.ExpectQuery(regexp.QuoteMeta("WHERE user_id = $1 AND product_id = $2 ORDER BY available DESC, id DESC LIMIT 1 FOR UPDATE")).
					WithArgs(1, 2).
					WillReturnRows(purchaseRow(purchase))
			},
			call:   func() (*domain.Purchase, error) { return repo.FindByUserAndProduct(context.Background(), 1, 2) },
			result: purchase,
		},
		{
			name: "FindByUserAndProduct database error",
			mockSetup: func() {
				mock.ExpectQuery(regexp.QuoteMeta("WHERE user_id = $1 AND product_id = $2")).
					WithArgs(1, 2).
					WillReturnError(errors.New("database error"))
			},
			call:      func() (*domain.Purchase, error) { return repo.FindByUserAndProduct(context.Background(), 1, 2) },
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockSetup()
			result, err := tt.call()
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

func TestRepository_Create(t *testing.T) {
	repo, mock := NewMock(t)
	now := time.Now()
	p := testPurchase(time.Time{})
	p.ID = 0

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO purchases (product_id, user_id, new_salary, percent, quantity, available)")).
		WithArgs(2, 1, p.NewSalary, "100.00%", 100, 1).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(9, now, now))

	result, err := repo.Create(context.Background(), p)
	assert.NoError(t, err)
	assert.Equal(t, 9, result.ID)
	assert.Equal(t, now, result.UpdatedAt)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO purchases")).
		WithArgs(2, 1, p.NewSalary, "100.00%", 100, 1).
		WillReturnError(errors.New("database error"))
	result, err = repo.Create(context.Background(), p)
	assert.Error(t, err)
	assert.Nil(t, result)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_Update(t *testing.T) {
	repo, mock := NewMock(t)
	p := testPurchase(time.Now())
	p.Quantity, p.Percent, p.Available = 60, "60.00%", 1
	query := regexp.QuoteMeta("SET new_salary = $2, percent = $3, quantity = $4, available = $5")

	mock.ExpectQuery(query).
		WithArgs(3, p.NewSalary, "60.00%", 60, 1).
		WillReturnRows(purchaseRow(p))
	result, err := repo.Update(context.Background(), p)
	assert.NoError(t, err)
	assert.Equal(t, p, result)

	mock.ExpectQuery(query).
		WithArgs(3, p.NewSalary, "60.00%", 60, 1).
		WillReturnError(pgx.ErrNoRows)
	_, err = repo.Update(context.Background(), p)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_Delete(t *testing.T) {
	repo, mock := NewMock(t)
	p := testPurchase(time.Now())
	query := regexp.QuoteMeta("DELETE FROM purchases WHERE id = $1")

	mock.ExpectQuery(query).WithArgs(3).WillReturnRows(purchaseRow(p))
	result, err := repo.Delete(context.Background(), 3)
	assert.NoError(t, err)
	assert.Equal(t, p, result)

	mock.ExpectQuery(query).WithArgs(4).WillReturnError(pgx.ErrNoRows)
	result, err = repo.Delete(context.Background(), 4)
	assert.NoError(t, err)
	assert.Nil(t, result)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_ListByUser(t *testing.T) {
	repo, mock := NewMock(t)
	now := time.Now()
	title, image, icon := "Designer", "d.png", "i.png"
	query := regexp.QuoteMeta("LEFT JOIN products pr ON pr.id = p.product_id WHERE p.user_id = $1")
	columns := append(append([]string{}, purchaseRowColumns...), "title", "image", "company_icon")

	mock.ExpectQuery(query).
		WithArgs(1).
		WillReturnRows(pgxmock.NewRows(columns).
			AddRow(3, 2, 1, decimal.RequireFromString("5.00"), "100.00%", 100, 1, now, now, &title, &image, &icon).
			AddRow(4, 7, 1, decimal.RequireFromString("2.00"), "0.00%", 0, 0, now, now, nil, nil, nil))

	views, err := repo.ListByUser(context.Background(), 1)
	assert.NoError(t, err)
	assert.Len(t, views, 2)
	assert.Equal(t, "Designer", *views[0].Title)
	assert.Equal(t, 100, views[0].Quantity)
	assert.Nil(t, views[1].Title)
	assert.Nil(t, views[1].Icon)

	mock.ExpectQuery(query).WithArgs(1).WillReturnError(errors.New("database error"))
	views, err = repo.ListByUser(context.Background(), 1)
	assert.Error(t, err)
	assert.Nil(t, views)

	assert.NoError(t, mock.ExpectationsWereMet())
}
