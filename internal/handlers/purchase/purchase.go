package purchase

//go:generate mockgen -source=purchase.go -destination=mock_purchase.go -package=purchase

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/GlebRadaev/stockfolio/internal/domain"
	"github.com/GlebRadaev/stockfolio/internal/dto"
	"github.com/GlebRadaev/stockfolio/internal/handlers/httperr"
	"github.com/GlebRadaev/stockfolio/pkg/utils"
)

type Service interface {
	Open(ctx context.Context, order domain.StakeOrder) (*domain.StakeResult, error)
	Delete(ctx context.Context, id int) (*domain.Purchase, error)
}

type QueryService interface {
	Purchases(ctx context.Context, userID int) ([]domain.PurchaseView, error)
}

type PurchaseHandler struct {
	purchaseService Service
	queryService    QueryService
}

func New(purchaseService Service, queryService QueryService) *PurchaseHandler {
	return &PurchaseHandler{
		purchaseService: purchaseService,
		queryService:    queryService,
	}
}

// CreatePurchase godoc
//
//	@Summary		Buy a stake in a product
//	@Description	Debits the user and records a loss entry. A stake that was fully transferred away is refilled instead of duplicated.
//	@Tags			Purchases
//	@Accept			json
//	@Produce		json
//	@Param			request	body		dto.CreatePurchaseRequestDTO	true	"Purchase data"
//	@Success		201		{object}	dto.CreatePurchaseResponseDTO	"Stake opened"
//	@Success		200		{object}	dto.CreatePurchaseResponseDTO	"Closed stake refilled"
//	@Failure		400		{object}	utils.Response					"Invalid input, insufficient funds or active stake exists"
//	@Failure		404		{object}	utils.Response					"User or product not found"
//	@Failure		500		{object}	utils.Response					"Internal server error"
//	@Router			/api/purchase [post]
func (h *PurchaseHandler) CreatePurchase(w http.ResponseWriter, r *http.Request) {
	var req dto.CreatePurchaseRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.purchaseService.Open(r.Context(), req.ToDomain())
	if err != nil {
		httperr.Respond(w, r, err)
		return
	}
	status := http.StatusOK
	if res.Created {
		status = http.StatusCreated
	}
	utils.RespondWithJSON(w, status, dto.NewCreatePurchaseResponseDTO(res))
}

// DeletePurchase godoc
//
//	@Summary		Delete a stake
//	@Description	Removes the stake only. Debits, ledger entries and transfer history are kept.
//	@Tags			Purchases
//	@Produce		json
//	@Param			id	path		int	true	"Purchase id"
//	@Success		200	{object}	dto.DeletePurchaseResponseDTO
//	@Failure		400	{object}	utils.Response	"Invalid purchase id"
//	@Failure		404	{object}	utils.Response	"Purchase not found"
//	@Failure		500	{object}	utils.Response	"Internal server error"
//	@Router			/api/purchase/{id} [delete]
func (h *PurchaseHandler) DeletePurchase(w http.ResponseWriter, r *http.Request) {
	id, err := httperr.PathInt(r, "id")
	if err != nil {
		httperr.Respond(w, r, err)
		return
	}
	purchase, err := h.purchaseService.Delete(r.Context(), id)
	if err != nil {
		httperr.Respond(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.DeletePurchaseResponseDTO{
		Message: "Deleted successfully",
		Deleted: dto.NewPurchaseDTO(purchase),
	})
}

// GetPurchases godoc
//
//	@Summary	List stakes of a user with product details
//	@Tags		Purchases
//	@Produce	json
//	@Param		id	path		int	true	"User id"
//	@Success	200	{object}	dto.PurchasesResponseDTO
//	@Failure	400	{object}	utils.Response	"Invalid user id"
//	@Failure	500	{object}	utils.Response	"Internal server error"
//	@Router		/api/purchase/{id} [get]
func (h *PurchaseHandler) GetPurchases(w http.ResponseWriter, r *http.Request) {
	userID, err := httperr.PathInt(r, "id")
	if err != nil {
		httperr.Respond(w, r, err)
		return
	}
	purchases, err := h.queryService.Purchases(r.Context(), userID)
	if err != nil {
		httperr.Respond(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewPurchasesResponseDTO(purchases))
}
