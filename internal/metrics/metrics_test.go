package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/GlebRadaev/stockfolio/internal/domain"
)

func TestResult(t *testing.T) {
	assert.Equal(t, ResultSuccess, Result(nil))
	assert.Equal(t, ResultRejected, Result(domain.ErrInsufficientQuantity))
	assert.Equal(t, ResultError, Result(errors.New("connection reset")))
}

func TestObserveStake(t *testing.T) {
	before := testutil.ToFloat64(stakeOperations.WithLabelValues("transfer", ResultRejected))
	ObserveStake("transfer", domain.ErrForbidden)
	after := testutil.ToFloat64(stakeOperations.WithLabelValues("transfer", ResultRejected))

	assert.Equal(t, before+1, after)
}

func TestMiddleware(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware)
	r.Get("/api/user/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	counter := requestCounter.WithLabelValues(http.MethodGet, "/api/user/{id}", "404")
	before := testutil.ToFloat64(counter)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/user/user_2abc", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, before+1, testutil.ToFloat64(counter))
}

func TestHandler(t *testing.T) {
	ObserveStake("open", nil)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `stake_operations_total{operation="open",result="success"}`))
}
