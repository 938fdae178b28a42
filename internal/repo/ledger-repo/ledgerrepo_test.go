package ledgerrepo

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/GlebRadaev/stockfolio/internal/domain"
)

func NewMock(t *testing.T) (*Repository, pgxmock.PgxPoolIface) {
	mockDB, err := pgxmock.NewPool()
	assert.NoError(t, err)
	repo := New(mockDB)
	t.Cleanup(mockDB.Close)

	return repo, mockDB
}

func TestRepository_Create(t *testing.T) {
	repo, mock := NewMock(t)
	now := time.Now()

	tests := []struct {
		name      string
		kind      domain.LedgerKind
		mockSetup func(e *domain.LedgerEntry)
		expectErr error
	}{
		{
			name: "Income goes to incomes.profit",
			kind: domain.LedgerIncome,
			mockSetup: func(e *domain.LedgerEntry) {
				mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO incomes (user_id, title, icon_company, profit)")).
					WithArgs(1, e.Title, e.IconCompany, e.Amount).
					WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(4, now, now))
			},
		},
		{
			name: "Loss goes to losses.loss",
			kind: domain.LedgerLoss,
			mockSetup: func(e *domain.LedgerEntry) {
				mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO losses (user_id, title, icon_company, loss)")).
					WithArgs(1, e.Title, e.IconCompany, e.Amount).
					WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(4, now, now))
			},
		},
		{
			name:      "Unknown kind",
			kind:      domain.LedgerKind("refund"),
			mockSetup: func(*domain.LedgerEntry) {},
			expectErr: domain.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry := &domain.LedgerEntry{
				Kind:        tt.kind,
				UserID:      1,
				Title:       "Sale of Designer",
				IconCompany: "i.png",
				Amount:      decimal.RequireFromString("200.00"),
			}
			tt.mockSetup(entry)

			result, err := repo.Create(context.Background(), entry)
			if tt.expectErr != nil {
				assert.ErrorIs(t, err, tt.expectErr)
				assert.Nil(t, result)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, 4, result.ID)
				assert.Equal(t, now, result.CreatedAt)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRepository_ListByUser(t *testing.T) {
	repo, mock := NewMock(t)
	now := time.Now()
	columns := []string{"id", "user_id", "title", "icon_company", "loss", "created_at", "updated_at"}
	query := regexp.QuoteMeta("FROM losses WHERE user_id = $1 ORDER BY created_at, id")

	mock.ExpectQuery(query).
		WithArgs(1).
		WillReturnRows(pgxmock.NewRows(columns).
			AddRow(1, 1, "Purchase of Designer", "i.png", decimal.RequireFromString("37.50"), now.Add(-time.Hour), now).
			AddRow(2, 1, "Purchase of Analyst", "j.png", decimal.RequireFromString("11.25"), now, now))

	entries, err := repo.ListByUser(context.Background(), domain.LedgerLoss, 1)
	assert.NoError(t, err)
	assert.Len(t, entries, 2)
	assert.Equal(t, domain.LedgerLoss, entries[0].Kind)
	assert.Equal(t, "37.50", domain.FormatMoney(entries[0].Amount))
	assert.True(t, entries[0].CreatedAt.Before(entries[1].CreatedAt))

	mock.ExpectQuery(regexp.QuoteMeta("FROM incomes")).WithArgs(1).WillReturnError(errors.New("database error"))
	entries, err = repo.ListByUser(context.Background(), domain.LedgerIncome, 1)
	assert.Error(t, err)
	assert.Nil(t, entries)

	_, err = repo.ListByUser(context.Background(), domain.LedgerKind("refund"), 1)
	assert.ErrorIs(t, err, domain.ErrValidation)

	assert.NoError(t, mock.ExpectationsWereMet())
}
