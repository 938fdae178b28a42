package service

import (
	"github.com/GlebRadaev/stockfolio/internal/events"
	producthandlers "github.com/GlebRadaev/stockfolio/internal/handlers/product"
	purchasehandlers "github.com/GlebRadaev/stockfolio/internal/handlers/purchase"
	transactionhandlers "github.com/GlebRadaev/stockfolio/internal/handlers/transaction"
	userhandlers "github.com/GlebRadaev/stockfolio/internal/handlers/user"
	"github.com/GlebRadaev/stockfolio/internal/repo"
	"github.com/GlebRadaev/stockfolio/internal/service/purchaseservice"
	"github.com/GlebRadaev/stockfolio/internal/service/queryservice"
	"github.com/GlebRadaev/stockfolio/internal/service/transferservice"
	"github.com/GlebRadaev/stockfolio/internal/service/userservice"
)

// QueryService is the read side every handler group shares.
type QueryService interface {
	userhandlers.QueryService
	purchasehandlers.QueryService
	producthandlers.QueryService
}

type Services struct {
	UserService     userhandlers.Service
	PurchaseService purchasehandlers.Service
	TransferService transactionhandlers.Service
	QueryService    QueryService
}

func New(repo *repo.Repositories, images userservice.ImageHost, publisher events.Publisher) *Services {
	return &Services{
		UserService: userservice.New(repo.UserRepo, images, repo.TXManager),
		PurchaseService: purchaseservice.New(
			repo.UserRepo, repo.ProductRepo, repo.PurchaseRepo, repo.LedgerRepo, repo.TXManager, publisher,
		),
		TransferService: transferservice.New(
			repo.UserRepo, repo.ProductRepo, repo.PurchaseRepo, repo.TransactionRepo, repo.LedgerRepo, repo.TXManager, publisher,
		),
		QueryService: queryservice.New(repo.PurchaseRepo, repo.LedgerRepo, repo.UserRepo, repo.ProductRepo, repo.TXManager),
	}
}
