package purchaseservice

//go:generate mockgen -source=purchaseservice.go -destination=mock_purchaseservice.go -package=purchaseservice

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/GlebRadaev/stockfolio/internal/domain"
	"github.com/GlebRadaev/stockfolio/internal/events"
	"github.com/GlebRadaev/stockfolio/internal/metrics"
	"github.com/GlebRadaev/stockfolio/internal/pg"
)

const operationOpen = "open"

type UserRepo interface {
	LockByID(ctx context.Context, id int) (*domain.User, error)
	AddMoney(ctx context.Context, id int, delta decimal.Decimal) (decimal.Decimal, error)
}

type ProductRepo interface {
	FindByID(ctx context.Context, id int) (*domain.Product, error)
}

type PurchaseRepo interface {
	FindByUserAndProduct(ctx context.Context, userID, productID int) (*domain.Purchase, error)
	Create(ctx context.Context, p *domain.Purchase) (*domain.Purchase, error)
	Update(ctx context.Context, p *domain.Purchase) (*domain.Purchase, error)
	Delete(ctx context.Context, id int) (*domain.Purchase, error)
}

type LedgerRepo interface {
	Create(ctx context.Context, entry *domain.LedgerEntry) (*domain.LedgerEntry, error)
}

type Publisher interface {
	Publish(ctx context.Context, e events.Event) error
}

type Service struct {
	users     UserRepo
	products  ProductRepo
	purchases PurchaseRepo
	ledger    LedgerRepo
	txManager pg.TXManager
	publisher Publisher
}

func New(users UserRepo, products ProductRepo, purchases PurchaseRepo, ledger LedgerRepo, txManager pg.TXManager, publisher Publisher) *Service {
	return &Service{
		users:     users,
		products:  products,
		purchases: purchases,
		ledger:    ledger,
		txManager: txManager,
		publisher: publisher,
	}
}

// Open debits the user for quantity units of the product and records the
// stake together with a loss entry. A stake that was fully transferred away
// is refilled in place; an active one is never topped up.
func (s *Service) Open(ctx context.Context, order domain.StakeOrder) (*domain.StakeResult, error) {
	if order.Quantity <= 0 {
		return nil, fmt.Errorf("quantity must be positive: %w", domain.ErrValidation)
	}

	var result *domain.StakeResult
	err := s.txManager.Begin(ctx, func(ctx context.Context) error {
		user, err := s.users.LockByID(ctx, order.UserID)
		if err != nil {
			return err
		}
		if user == nil {
			return fmt.Errorf("user %d: %w", order.UserID, domain.ErrNotFound)
		}
		product, err := s.products.FindByID(ctx, order.ProductID)
		if err != nil {
			return err
		}
		if product == nil {
			return fmt.Errorf("product %d: %w", order.ProductID, domain.ErrNotFound)
		}

		totalCost := domain.Cost(product.Salary, order.Quantity)

		existing, err := s.purchases.FindByUserAndProduct(ctx, user.ID, product.ID)
		if err != nil {
			return err
		}
		if existing != nil && existing.Available != 0 {
			return fmt.Errorf("purchase %d: %w", existing.ID, domain.ErrDuplicateActivePosition)
		}
		if user.Money.LessThan(totalCost) {
			return fmt.Errorf("balance %s, cost %s: %w",
				domain.FormatMoney(user.Money), domain.FormatMoney(totalCost), domain.ErrInsufficientFunds)
		}

		if _, err := s.users.AddMoney(ctx, user.ID, totalCost.Neg()); err != nil {
			return err
		}

		stake := &domain.Purchase{
			ProductID: product.ID,
			UserID:    user.ID,
			NewSalary: order.NewSalary,
			Percent:   order.Percent,
			Quantity:  order.Quantity,
			Available: domain.AvailableFor(order.Quantity),
		}
		var purchase *domain.Purchase
		if existing == nil {
			purchase, err = s.purchases.Create(ctx, stake)
		} else {
			stake.ID = existing.ID
			purchase, err = s.purchases.Update(ctx, stake)
		}
		if err != nil {
			return err
		}

		loss, err := s.ledger.Create(ctx, &domain.LedgerEntry{
			Kind:        domain.LedgerLoss,
			UserID:      user.ID,
			Title:       "Purchase of " + product.Title,
			IconCompany: product.CompanyIcon,
			Amount:      totalCost,
		})
		if err != nil {
			return err
		}

		result = &domain.StakeResult{
			Purchase: purchase,
			Loss:     loss,
			Created:  existing == nil,
		}
		return nil
	})
	metrics.ObserveStake(operationOpen, err)
	if err != nil {
		if domain.IsRejection(err) {
			zap.L().Info("purchase rejected", zap.Int("user_id", order.UserID), zap.Int("product_id", order.ProductID), zap.Error(err))
		} else {
			zap.L().Error("failed to open stake", zap.Int("user_id", order.UserID), zap.Error(err))
		}
		return nil, err
	}

	eventType := events.StakeOpened
	if !result.Created {
		eventType = events.StakeRefilled
	}
	s.publish(ctx, events.Event{
		Type:       eventType,
		PurchaseID: result.Purchase.ID,
		ProductID:  result.Purchase.ProductID,
		UserID:     result.Purchase.UserID,
		Quantity:   result.Purchase.Quantity,
		Amount:     domain.FormatMoney(result.Loss.Amount),
	})
	return result, nil
}

// Delete removes the stake row only. The debit, loss entry and transfer
// history stay as they are.
func (s *Service) Delete(ctx context.Context, id int) (*domain.Purchase, error) {
	var purchase *domain.Purchase
	err := s.txManager.Run(ctx, func(ctx context.Context) (err error) {
		purchase, err = s.purchases.Delete(ctx, id)
		return err
	})
	if err != nil {
		zap.L().Error("failed to delete purchase", zap.Int("id", id), zap.Error(err))
		return nil, err
	}
	if purchase == nil {
		return nil, fmt.Errorf("purchase %d: %w", id, domain.ErrNotFound)
	}
	return purchase, nil
}

func (s *Service) publish(ctx context.Context, e events.Event) {
	if err := s.publisher.Publish(context.WithoutCancel(ctx), e); err != nil {
		zap.L().Warn("failed to publish ledger event", zap.String("type", string(e.Type)), zap.Error(err))
	}
}
