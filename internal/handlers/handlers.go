package handlers

//go:generate mockgen -source=handlers.go -destination=mock_handlers.go -package=handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/GlebRadaev/stockfolio/docs"
	producthandlers "github.com/GlebRadaev/stockfolio/internal/handlers/product"
	purchasehandlers "github.com/GlebRadaev/stockfolio/internal/handlers/purchase"
	transactionhandlers "github.com/GlebRadaev/stockfolio/internal/handlers/transaction"
	userhandlers "github.com/GlebRadaev/stockfolio/internal/handlers/user"
	"github.com/GlebRadaev/stockfolio/internal/metrics"
	"github.com/GlebRadaev/stockfolio/internal/service"
	"github.com/GlebRadaev/stockfolio/pkg/utils"
)

const requestTimeout = 30 * time.Second

type UserHandler interface {
	CreateUser(w http.ResponseWriter, r *http.Request)
	GetUser(w http.ResponseWriter, r *http.Request)
	UpdateUser(w http.ResponseWriter, r *http.Request)
	DeleteUser(w http.ResponseWriter, r *http.Request)
	GetIncomes(w http.ResponseWriter, r *http.Request)
	GetLosses(w http.ResponseWriter, r *http.Request)
	GetOtherUsers(w http.ResponseWriter, r *http.Request)
	UpdatePicture(w http.ResponseWriter, r *http.Request)
}

type PurchaseHandler interface {
	CreatePurchase(w http.ResponseWriter, r *http.Request)
	DeletePurchase(w http.ResponseWriter, r *http.Request)
	GetPurchases(w http.ResponseWriter, r *http.Request)
}

type TransactionHandler interface {
	CreateTransaction(w http.ResponseWriter, r *http.Request)
	GetTransactions(w http.ResponseWriter, r *http.Request)
}

type ProductHandler interface {
	GetProducts(w http.ResponseWriter, r *http.Request)
}

type Handlers struct {
	UserHandler        UserHandler
	PurchaseHandler    PurchaseHandler
	TransactionHandler TransactionHandler
	ProductHandler     ProductHandler
}

func New(s *service.Services) *Handlers {
	return &Handlers{
		UserHandler:        userhandlers.New(s.UserService, s.QueryService),
		PurchaseHandler:    purchasehandlers.New(s.PurchaseService, s.QueryService),
		TransactionHandler: transactionhandlers.New(s.TransferService),
		ProductHandler:     producthandlers.New(s.QueryService),
	}
}

func (h *Handlers) InitRoutes(r chi.Router) chi.Router {
	r.Use(
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
		middleware.Timeout(requestTimeout),
		metrics.Middleware,
	)
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("doc.json"),
	))
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/tracker", Tracker)

		r.Route("/user", func(r chi.Router) {
			r.Post("/", h.UserHandler.CreateUser)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.UserHandler.GetUser)
				r.Patch("/", h.UserHandler.UpdateUser)
				r.Delete("/", h.UserHandler.DeleteUser)
				r.Get("/incomes", h.UserHandler.GetIncomes)
				r.Get("/losses", h.UserHandler.GetLosses)
				r.Get("/others", h.UserHandler.GetOtherUsers)
				r.Patch("/picture", h.UserHandler.UpdatePicture)
			})
		})
		r.Route("/purchase", func(r chi.Router) {
			r.Post("/", h.PurchaseHandler.CreatePurchase)
			r.Delete("/{id}", h.PurchaseHandler.DeletePurchase)
			r.Get("/{id}", h.PurchaseHandler.GetPurchases)
		})
		r.Route("/transaction", func(r chi.Router) {
			r.Post("/", h.TransactionHandler.CreateTransaction)
			r.Get("/{id}", h.TransactionHandler.GetTransactions)
		})
		r.Get("/product", h.ProductHandler.GetProducts)
	})

	return r
}

// Tracker godoc
//
//	@Summary		Liveness probe
//	@Description	Pinged by the keep-alive job.
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	utils.Response
//	@Router			/api/tracker [get]
func Tracker(w http.ResponseWriter, _ *http.Request) {
	utils.RespondWithJSON(w, http.StatusOK, utils.Response{Success: true})
}
