package repo

import (
	"github.com/GlebRadaev/stockfolio/internal/pg"
	ledgerrepo "github.com/GlebRadaev/stockfolio/internal/repo/ledger-repo"
	productrepo "github.com/GlebRadaev/stockfolio/internal/repo/product-repo"
	purchaserepo "github.com/GlebRadaev/stockfolio/internal/repo/purchase-repo"
	transactionrepo "github.com/GlebRadaev/stockfolio/internal/repo/transaction-repo"
	userrepo "github.com/GlebRadaev/stockfolio/internal/repo/user-repo"
)

type Repositories struct {
	UserRepo        *userrepo.Repository
	ProductRepo     *productrepo.Repository
	PurchaseRepo    *purchaserepo.Repository
	TransactionRepo *transactionrepo.Repository
	LedgerRepo      *ledgerrepo.Repository
	TXManager       pg.TXManager
}

func New(conn pg.Database, txManager pg.TXManager) *Repositories {
	return &Repositories{
		UserRepo:        userrepo.New(conn),
		ProductRepo:     productrepo.New(conn),
		PurchaseRepo:    purchaserepo.New(conn),
		TransactionRepo: transactionrepo.New(conn),
		LedgerRepo:      ledgerrepo.New(conn),
		TXManager:       txManager,
	}
}
