package transferservice

//go:generate mockgen -source=transferservice.go -destination=mock_transferservice.go -package=transferservice

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/GlebRadaev/stockfolio/internal/domain"
	"github.com/GlebRadaev/stockfolio/internal/events"
	"github.com/GlebRadaev/stockfolio/internal/metrics"
	"github.com/GlebRadaev/stockfolio/internal/pg"
)

const (
	operationTransfer = "transfer"
	enrichLimit       = 8
)

type UserRepo interface {
	FindByID(ctx context.Context, id int) (*domain.User, error)
	LockByID(ctx context.Context, id int) (*domain.User, error)
	AddMoney(ctx context.Context, id int, delta decimal.Decimal) (decimal.Decimal, error)
}

type ProductRepo interface {
	FindByID(ctx context.Context, id int) (*domain.Product, error)
}

type PurchaseRepo interface {
	FindByID(ctx context.Context, id int) (*domain.Purchase, error)
	LockByID(ctx context.Context, id int) (*domain.Purchase, error)
	Update(ctx context.Context, p *domain.Purchase) (*domain.Purchase, error)
}

type TransactionRepo interface {
	Create(ctx context.Context, tr *domain.Transaction) (*domain.Transaction, error)
	ListByUser(ctx context.Context, userID int) ([]domain.Transaction, error)
}

type LedgerRepo interface {
	Create(ctx context.Context, entry *domain.LedgerEntry) (*domain.LedgerEntry, error)
}

type Publisher interface {
	Publish(ctx context.Context, e events.Event) error
}

type Service struct {
	users        UserRepo
	products     ProductRepo
	purchases    PurchaseRepo
	transactions TransactionRepo
	ledger       LedgerRepo
	txManager    pg.TXManager
	publisher    Publisher
}

func New(users UserRepo, products ProductRepo, purchases PurchaseRepo, transactions TransactionRepo,
	ledger LedgerRepo, txManager pg.TXManager, publisher Publisher) *Service {
	return &Service{
		users:        users,
		products:     products,
		purchases:    purchases,
		transactions: transactions,
		ledger:       ledger,
		txManager:    txManager,
		publisher:    publisher,
	}
}

// Transfer sells order.Quantity units of a stake at the stake's locked-in
// unit salary. The stake row is locked and re-read inside the transaction so
// concurrent transfers of one stake are serialized.
func (s *Service) Transfer(ctx context.Context, order domain.TransferOrder) (*domain.TransferResult, error) {
	if order.Quantity <= 0 {
		return nil, fmt.Errorf("quantity must be positive: %w", domain.ErrValidation)
	}

	var result *domain.TransferResult
	err := s.txManager.Begin(ctx, func(ctx context.Context) error {
		// user row before stake row, the same order Open takes them in
		seller, err := s.users.LockByID(ctx, order.FromUserID)
		if err != nil {
			return err
		}
		if seller == nil {
			return fmt.Errorf("user %d: %w", order.FromUserID, domain.ErrNotFound)
		}
		purchase, err := s.purchases.LockByID(ctx, order.PurchaseID)
		if err != nil {
			return err
		}
		if purchase == nil {
			return fmt.Errorf("purchase %d: %w", order.PurchaseID, domain.ErrNotFound)
		}
		receiver, err := s.users.FindByID(ctx, order.ToUserID)
		if err != nil {
			return err
		}
		if receiver == nil {
			return fmt.Errorf("user %d: %w", order.ToUserID, domain.ErrNotFound)
		}
		product, err := s.products.FindByID(ctx, order.ProductID)
		if err != nil {
			return err
		}
		if product == nil {
			return fmt.Errorf("product %d: %w", order.ProductID, domain.ErrNotFound)
		}
		if product.ID != purchase.ProductID {
			return fmt.Errorf("product %d is not the product of purchase %d: %w", product.ID, purchase.ID, domain.ErrValidation)
		}

		if order.ActingUserID != purchase.UserID {
			return fmt.Errorf("user %d: %w", order.ActingUserID, domain.ErrForbidden)
		}
		if order.Quantity > purchase.Quantity {
			return fmt.Errorf("requested %d of %d: %w", order.Quantity, purchase.Quantity, domain.ErrInsufficientQuantity)
		}
		if purchase.Available == 0 {
			return fmt.Errorf("purchase %d: %w", purchase.ID, domain.ErrPositionUnavailable)
		}

		change := domain.ComputeTransfer(purchase, order.Quantity)

		sellerMoney, err := s.users.AddMoney(ctx, order.FromUserID, change.TotalCost)
		if err != nil {
			return err
		}

		purchase.Percent = change.NewPercent
		purchase.Quantity = change.NewQuantity
		purchase.Available = change.NewAvailable
		if _, err := s.purchases.Update(ctx, purchase); err != nil {
			return err
		}

		purchaseID := purchase.ID
		transaction, err := s.transactions.Create(ctx, &domain.Transaction{
			PurchaseID:      &purchaseID,
			ProductID:       product.ID,
			UserID:          purchase.UserID,
			SentToUserID:    order.ToUserID,
			SentByUserID:    order.FromUserID,
			BackgroundColor: order.BackgroundColor,
			TextColor:       order.TextColor,
			TotalMoneySent:  change.TotalCost,
		})
		if err != nil {
			return err
		}

		income, err := s.ledger.Create(ctx, &domain.LedgerEntry{
			Kind:        domain.LedgerIncome,
			UserID:      order.ActingUserID,
			Title:       "Sale of " + product.Title,
			IconCompany: product.CompanyIcon,
			Amount:      change.TotalCost,
		})
		if err != nil {
			return err
		}

		result = &domain.TransferResult{
			Transaction: transaction,
			Income:      income,
			MoneyAdded:  change.TotalCost,
			NewQuantity: change.NewQuantity,
			NewPercent:  change.NewPercent,
			SellerMoney: sellerMoney,
		}
		return nil
	})
	metrics.ObserveStake(operationTransfer, err)
	if err != nil {
		if domain.IsRejection(err) {
			zap.L().Info("transfer rejected", zap.Int("purchase_id", order.PurchaseID), zap.Int("user_id", order.ActingUserID), zap.Error(err))
		} else {
			zap.L().Error("failed to transfer stake", zap.Int("purchase_id", order.PurchaseID), zap.Error(err))
		}
		return nil, err
	}

	e := events.Event{
		Type:           events.StakeTransferred,
		PurchaseID:     order.PurchaseID,
		ProductID:      order.ProductID,
		UserID:         order.FromUserID,
		CounterpartyID: order.ToUserID,
		Quantity:       order.Quantity,
		Amount:         domain.FormatMoney(result.MoneyAdded),
	}
	if err := s.publisher.Publish(context.WithoutCancel(ctx), e); err != nil {
		zap.L().Warn("failed to publish ledger event", zap.String("type", string(e.Type)), zap.Error(err))
	}
	return result, nil
}

// ListForUser returns the user's transactions decorated with product, stake
// and party display fields. A related row that can't be loaded leaves its
// fields nil instead of failing the list.
func (s *Service) ListForUser(ctx context.Context, userID int) ([]domain.TransactionView, error) {
	var views []domain.TransactionView
	err := s.txManager.Run(ctx, func(ctx context.Context) error {
		transactions, err := s.transactions.ListByUser(ctx, userID)
		if err != nil {
			return err
		}

		views = make([]domain.TransactionView, len(transactions))
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(enrichLimit)
		for i := range transactions {
			views[i].Transaction = transactions[i]
			view := &views[i]
			g.Go(func() error {
				s.enrich(gctx, view)
				return nil
			})
		}
		return g.Wait()
	})
	if err != nil {
		zap.L().Error("failed to get transactions", zap.Int("user_id", userID), zap.Error(err))
		return nil, err
	}
	return views, nil
}

func (s *Service) enrich(ctx context.Context, view *domain.TransactionView) {
	tr := view.Transaction

	if product, err := s.products.FindByID(ctx, tr.ProductID); err != nil {
		zap.L().Warn("can't load transaction product", zap.Int("transaction_id", tr.ID), zap.Error(err))
	} else if product != nil {
		view.ProductTitle = &product.Title
		view.ProductIcon = &product.CompanyIcon
	}

	if tr.PurchaseID != nil {
		if purchase, err := s.purchases.FindByID(ctx, *tr.PurchaseID); err != nil {
			zap.L().Warn("can't load transaction purchase", zap.Int("transaction_id", tr.ID), zap.Error(err))
		} else if purchase != nil {
			view.PurchasePercent = &purchase.Percent
		}
	}

	if sender, err := s.users.FindByID(ctx, tr.SentByUserID); err != nil {
		zap.L().Warn("can't load transaction sender", zap.Int("transaction_id", tr.ID), zap.Error(err))
	} else if sender != nil {
		view.SenderName = &sender.Name
		view.SenderProfilePicture = &sender.ProfilePicture
	}

	if receiver, err := s.users.FindByID(ctx, tr.SentToUserID); err != nil {
		zap.L().Warn("can't load transaction receiver", zap.Int("transaction_id", tr.ID), zap.Error(err))
	} else if receiver != nil {
		view.ReceiverName = &receiver.Name
		view.ReceiverProfilePicture = &receiver.ProfilePicture
	}
}
