package purchase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomock "go.uber.org/mock/gomock"

	"github.com/GlebRadaev/stockfolio/internal/domain"
	"github.com/GlebRadaev/stockfolio/internal/dto"
)

func NewMock(t *testing.T) (http.Handler, *MockService, *MockQueryService) {
	ctrl := gomock.NewController(t)
	service := NewMockService(ctrl)
	query := NewMockQueryService(ctrl)
	h := New(service, query)

	r := chi.NewRouter()
	r.Post("/purchase", h.CreatePurchase)
	r.Delete("/purchase/{id}", h.DeletePurchase)
	r.Get("/purchase/{id}", h.GetPurchases)
	return r, service, query
}

func stakeResult(created bool) *domain.StakeResult {
	return &domain.StakeResult{
		Purchase: &domain.Purchase{ID: 5, ProductID: 1, UserID: 1, NewSalary: decimal.NewFromInt(5), Percent: "100.00%", Quantity: 100, Available: 1},
		Loss:     &domain.LedgerEntry{ID: 9, Kind: domain.LedgerLoss, UserID: 1, Title: "Purchase of Designer", Amount: decimal.NewFromInt(500)},
		Created:  created,
	}
}

func TestCreatePurchaseHandler(t *testing.T) {
	const body = `{"product_id":1,"user_id":"1","percent":"100%","quantity":100,"new_salary":"5.00","available":1}`
	expectedOrder := domain.StakeOrder{UserID: 1, ProductID: 1, Percent: "100.00%", Quantity: 100, NewSalary: decimal.RequireFromString("5.00")}

	tests := []struct {
		name          string
		body          string
		prepareMock   func(s *MockService)
		expectedCode  int
		expectedError string
	}{
		{
			name: "Stake opened",
			body: body,
			prepareMock: func(s *MockService) {
				s.EXPECT().Open(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, order domain.StakeOrder) (*domain.StakeResult, error) {
					assert.True(t, expectedOrder.NewSalary.Equal(order.NewSalary))
					order.NewSalary = expectedOrder.NewSalary
					assert.Equal(t, expectedOrder, order)
					return stakeResult(true), nil
				})
			},
			expectedCode: http.StatusCreated,
		},
		{
			name: "Closed stake refilled",
			body: body,
			prepareMock: func(s *MockService) {
				s.EXPECT().Open(gomock.Any(), gomock.Any()).Return(stakeResult(false), nil)
			},
			expectedCode: http.StatusOK,
		},
		{
			name:          "Missing fields",
			body:          `{"product_id":1}`,
			prepareMock:   func(*MockService) {},
			expectedCode:  http.StatusBadRequest,
			expectedError: dto.ErrAllFieldsRequired.Error(),
		},
		{
			name:         "Not json",
			body:         `product_id=1`,
			prepareMock:  func(*MockService) {},
			expectedCode: http.StatusBadRequest,
		},
		{
			name: "Insufficient funds",
			body: body,
			prepareMock: func(s *MockService) {
				s.EXPECT().Open(gomock.Any(), gomock.Any()).Return(nil, fmt.Errorf("balance 10.00, cost 500.00: %w", domain.ErrInsufficientFunds))
			},
			expectedCode:  http.StatusBadRequest,
			expectedError: "balance 10.00, cost 500.00: insufficient funds",
		},
		{
			name: "Active stake exists",
			body: body,
			prepareMock: func(s *MockService) {
				s.EXPECT().Open(gomock.Any(), gomock.Any()).Return(nil, domain.ErrDuplicateActivePosition)
			},
			expectedCode: http.StatusBadRequest,
		},
		{
			name: "Unknown product",
			body: body,
			prepareMock: func(s *MockService) {
				s.EXPECT().Open(gomock.Any(), gomock.Any()).Return(nil, fmt.Errorf("product 1: %w", domain.ErrNotFound))
			},
			expectedCode: http.StatusNotFound,
		},
		{
			name: "Store unavailable",
			body: body,
			prepareMock: func(s *MockService) {
				s.EXPECT().Open(gomock.Any(), gomock.Any()).Return(nil, domain.ErrStoreUnavailable)
			},
			expectedCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, service, _ := NewMock(t)
			tt.prepareMock(service)

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/purchase", strings.NewReader(tt.body)))

			assert.Equal(t, tt.expectedCode, w.Code)
			if tt.expectedError != "" {
				assert.Contains(t, w.Body.String(), tt.expectedError)
			}
			if w.Code == http.StatusCreated || w.Code == http.StatusOK {
				var resp dto.CreatePurchaseResponseDTO
				require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
				assert.Equal(t, "5.00", resp.Purchase.NewSalary)
				assert.Equal(t, "500.00", resp.Loss.Loss)
			}
		})
	}
}

func TestDeletePurchaseHandler(t *testing.T) {
	router, service, _ := NewMock(t)

	service.EXPECT().Delete(gomock.Any(), 5).Return(stakeResult(true).Purchase, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/purchase/5", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	var resp dto.DeletePurchaseResponseDTO
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, 5, resp.Deleted.ID)

	service.EXPECT().Delete(gomock.Any(), 6).Return(nil, fmt.Errorf("purchase 6: %w", domain.ErrNotFound))
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/purchase/6", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/purchase/six", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetPurchasesHandler(t *testing.T) {
	router, _, query := NewMock(t)
	title := "Designer"
	views := []domain.PurchaseView{{Purchase: *stakeResult(true).Purchase, Title: &title}}

	query.EXPECT().Purchases(gomock.Any(), 1).Return(views, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/purchase/1", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	var resp dto.PurchasesResponseDTO
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	require.Len(t, resp.Purchases, 1)
	assert.Equal(t, "Designer", *resp.Purchases[0].Title)
	assert.Nil(t, resp.Purchases[0].Image)

	query.EXPECT().Purchases(gomock.Any(), 1).Return(nil, errors.New("db error"))
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/purchase/1", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
