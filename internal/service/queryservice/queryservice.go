package queryservice

//go:generate mockgen -source=queryservice.go -destination=mock_queryservice.go -package=queryservice

import (
	"context"

	"go.uber.org/zap"

	"github.com/GlebRadaev/stockfolio/internal/domain"
	"github.com/GlebRadaev/stockfolio/internal/pg"
)

type PurchaseRepo interface {
	ListByUser(ctx context.Context, userID int) ([]domain.PurchaseView, error)
}

type LedgerRepo interface {
	ListByUser(ctx context.Context, kind domain.LedgerKind, userID int) ([]domain.LedgerEntry, error)
}

type UserRepo interface {
	ListOthers(ctx context.Context, id int) ([]domain.UserSummary, error)
}

type ProductRepo interface {
	List(ctx context.Context) ([]domain.Product, error)
}

// Service serves the read side. Every call goes straight to the store.
type Service struct {
	purchases PurchaseRepo
	ledger    LedgerRepo
	users     UserRepo
	products  ProductRepo
	txManager pg.TXManager
}

func New(purchases PurchaseRepo, ledger LedgerRepo, users UserRepo, products ProductRepo, txManager pg.TXManager) *Service {
	return &Service{
		purchases: purchases,
		ledger:    ledger,
		users:     users,
		products:  products,
		txManager: txManager,
	}
}

func (s *Service) Purchases(ctx context.Context, userID int) ([]domain.PurchaseView, error) {
	var purchases []domain.PurchaseView
	err := s.txManager.Run(ctx, func(ctx context.Context) (err error) {
		purchases, err = s.purchases.ListByUser(ctx, userID)
		return err
	})
	if err != nil {
		zap.L().Error("failed to get purchases", zap.Int("user_id", userID), zap.Error(err))
		return nil, err
	}
	return purchases, nil
}

func (s *Service) Incomes(ctx context.Context, userID int) ([]domain.LedgerEntry, error) {
	return s.entries(ctx, domain.LedgerIncome, userID)
}

func (s *Service) Losses(ctx context.Context, userID int) ([]domain.LedgerEntry, error) {
	return s.entries(ctx, domain.LedgerLoss, userID)
}

func (s *Service) entries(ctx context.Context, kind domain.LedgerKind, userID int) ([]domain.LedgerEntry, error) {
	var entries []domain.LedgerEntry
	err := s.txManager.Run(ctx, func(ctx context.Context) (err error) {
		entries, err = s.ledger.ListByUser(ctx, kind, userID)
		return err
	})
	if err != nil {
		zap.L().Error("failed to get ledger entries", zap.String("kind", string(kind)), zap.Int("user_id", userID), zap.Error(err))
		return nil, err
	}
	return entries, nil
}

// OtherUsers lists everyone but userID without their balances.
func (s *Service) OtherUsers(ctx context.Context, userID int) ([]domain.UserSummary, error) {
	var users []domain.UserSummary
	err := s.txManager.Run(ctx, func(ctx context.Context) (err error) {
		users, err = s.users.ListOthers(ctx, userID)
		return err
	})
	if err != nil {
		zap.L().Error("failed to list users", zap.Error(err))
		return nil, err
	}
	return users, nil
}

func (s *Service) Products(ctx context.Context) ([]domain.Product, error) {
	var products []domain.Product
	err := s.txManager.Run(ctx, func(ctx context.Context) (err error) {
		products, err = s.products.List(ctx)
		return err
	})
	if err != nil {
		zap.L().Error("failed to list products", zap.Error(err))
		return nil, err
	}
	return products, nil
}
