package transferservice

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GlebRadaev/stockfolio/internal/domain"
	"github.com/GlebRadaev/stockfolio/internal/events"
	"github.com/GlebRadaev/stockfolio/internal/pg"
)

// memStore is an in-memory ledger whose transactions hold one lock for their
// whole duration, the way a row lock on the stake serializes them in Postgres.
type memStore struct {
	txLock sync.Mutex
	mu     sync.Mutex

	users        map[int]domain.User
	products     map[int]domain.Product
	purchases    map[int]domain.Purchase
	transactions []domain.Transaction
	incomes      []domain.LedgerEntry
	failIncome   bool
}

type snapshot struct {
	users        map[int]domain.User
	purchases    map[int]domain.Purchase
	transactions []domain.Transaction
	incomes      []domain.LedgerEntry
}

func newMemStore() *memStore {
	return &memStore{
		users: map[int]domain.User{
			1: {ID: 1, Name: "Ann", Money: decimal.RequireFromString("100.00")},
			5: {ID: 5, Name: "Bob", Money: decimal.RequireFromString("0.00")},
		},
		products: map[int]domain.Product{
			2: {ID: 2, Title: "Designer", CompanyIcon: "i.png"},
		},
		purchases: map[int]domain.Purchase{
			3: {ID: 3, ProductID: 2, UserID: 1, NewSalary: decimal.RequireFromString("5.00"), Percent: "100.00%", Quantity: 10, Available: 1},
		},
	}
}

func (s *memStore) Begin(ctx context.Context, fn pg.TransactionalFn) error {
	s.txLock.Lock()
	defer s.txLock.Unlock()

	s.mu.Lock()
	snap := snapshot{
		users:        make(map[int]domain.User, len(s.users)),
		purchases:    make(map[int]domain.Purchase, len(s.purchases)),
		transactions: append([]domain.Transaction(nil), s.transactions...),
		incomes:      append([]domain.LedgerEntry(nil), s.incomes...),
	}
	for k, v := range s.users {
		snap.users[k] = v
	}
	for k, v := range s.purchases {
		snap.purchases[k] = v
	}
	s.mu.Unlock()

	if err := fn(ctx); err != nil {
		s.mu.Lock()
		s.users, s.purchases, s.transactions, s.incomes = snap.users, snap.purchases, snap.transactions, snap.incomes
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *memStore) Run(ctx context.Context, fn pg.TransactionalFn) error {
	return fn(ctx)
}

type memUsers struct{ *memStore }

func (r memUsers) FindByID(_ context.Context, id int) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r memUsers) LockByID(ctx context.Context, id int) (*domain.User, error) {
	return r.FindByID(ctx, id)
}

func (r memUsers) AddMoney(_ context.Context, id int, delta decimal.Decimal) (decimal.Decimal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u := r.users[id]
	u.Money = u.Money.Add(delta)
	r.users[id] = u
	return u.Money, nil
}

type memProducts struct{ *memStore }

func (r memProducts) FindByID(_ context.Context, id int) (*domain.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

type memPurchases struct{ *memStore }

func (r memPurchases) FindByID(_ context.Context, id int) (*domain.Purchase, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.purchases[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r memPurchases) LockByID(ctx context.Context, id int) (*domain.Purchase, error) {
	return r.FindByID(ctx, id)
}

func (r memPurchases) Update(_ context.Context, p *domain.Purchase) (*domain.Purchase, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.purchases[p.ID] = *p
	return p, nil
}

type memTransactions struct{ *memStore }

func (r memTransactions) Create(_ context.Context, tr *domain.Transaction) (*domain.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tr.ID = len(r.transactions) + 1
	r.transactions = append(r.transactions, *tr)
	return tr, nil
}

func (r memTransactions) ListByUser(context.Context, int) ([]domain.Transaction, error) {
	return nil, nil
}

type memLedger struct{ *memStore }

func (r memLedger) Create(_ context.Context, e *domain.LedgerEntry) (*domain.LedgerEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failIncome {
		return nil, errors.New("incomes table unavailable")
	}
	r.incomes = append(r.incomes, *e)
	return e, nil
}

func newMemService(store *memStore) *Service {
	return New(memUsers{store}, memProducts{store}, memPurchases{store}, memTransactions{store},
		memLedger{store}, store, events.Noop{})
}

func transferOrder(quantity int) domain.TransferOrder {
	return domain.TransferOrder{
		PurchaseID:   3,
		ProductID:    2,
		ActingUserID: 1,
		ToUserID:     5,
		FromUserID:   1,
		Quantity:     quantity,
	}
}

func TestTransfer_ConcurrentTransfersNeverOverdraw(t *testing.T) {
	store := newMemStore()
	service := newMemService(store)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = service.Transfer(context.Background(), transferOrder(6))
		}(i)
	}
	wg.Wait()

	succeeded, rejected := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, domain.ErrInsufficientQuantity):
			rejected++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, rejected)

	stake := store.purchases[3]
	assert.Equal(t, 4, stake.Quantity)
	assert.Equal(t, 1, stake.Available)
	assert.Equal(t, "130.00", domain.FormatMoney(store.users[1].Money))
	assert.Len(t, store.transactions, 1)
	assert.Len(t, store.incomes, 1)
}

func TestTransfer_FailedStepLeavesNoPartialWrites(t *testing.T) {
	store := newMemStore()
	store.failIncome = true
	service := newMemService(store)

	_, err := service.Transfer(context.Background(), transferOrder(4))
	require.Error(t, err)

	assert.Equal(t, 10, store.purchases[3].Quantity)
	assert.Equal(t, "100.00%", store.purchases[3].Percent)
	assert.Equal(t, "100.00", domain.FormatMoney(store.users[1].Money))
	assert.Empty(t, store.transactions)
	assert.Empty(t, store.incomes)
}

func TestTransfer_RepeatedPartialTransfersCompound(t *testing.T) {
	store := newMemStore()
	service := newMemService(store)

	first, err := service.Transfer(context.Background(), transferOrder(5))
	require.NoError(t, err)
	assert.Equal(t, "50.00%", first.NewPercent)

	second, err := service.Transfer(context.Background(), transferOrder(1))
	require.NoError(t, err)
	assert.Equal(t, 4, second.NewQuantity)
	assert.Equal(t, "80.00%", second.NewPercent)

	last, err := service.Transfer(context.Background(), transferOrder(4))
	require.NoError(t, err)
	assert.Equal(t, 0, last.NewQuantity)
	assert.Equal(t, "0.00%", last.NewPercent)
	assert.Equal(t, 0, store.purchases[3].Available)

	_, err = service.Transfer(context.Background(), transferOrder(1))
	assert.ErrorIs(t, err, domain.ErrInsufficientQuantity)
}
