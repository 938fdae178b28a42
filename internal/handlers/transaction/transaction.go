package transaction

//go:generate mockgen -source=transaction.go -destination=mock_transaction.go -package=transaction

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
	Transfer(ctx context.Context, order domain.TransferOrder) (*domain.TransferResult, error)
	ListForUser(ctx context.Context, userID int) ([]domain.TransactionView, error)
}

type TransactionHandler struct {
	transferService Service
}

func New(transferService Service) *TransactionHandler {
	return &TransactionHandler{
		transferService: transferService,
	}
}

// CreateTransaction godoc
//
//	@Summary		Transfer part of a stake
//	@Description	Moves quantity units of a stake to another user. The seller is credited at the stake's locked-in salary and an income entry is recorded.
//	@Tags			Transactions
//	@Accept			json
//	@Produce		json
//	@Param			request	body		dto.CreateTransactionRequestDTO		true	"Transfer data"
//	@Success		201		{object}	dto.CreateTransactionResponseDTO
//	@Failure		400		{object}	utils.Response	"Invalid input, insufficient quantity or closed stake"
//	@Failure		403		{object}	utils.Response	"Only the stake owner can transfer it"
//	@Failure		404		{object}	utils.Response	"Purchase, product or user not found"
//	@Failure		500		{object}	utils.Response	"Internal server error"
//	@Router			/api/transaction [post]
func (h *TransactionHandler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateTransactionRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.transferService.Transfer(r.Context(), req.ToDomain())
	if err != nil {
		httperr.Respond(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, dto.NewCreateTransactionResponseDTO(res))
}

// GetTransactions godoc
//
//	@Summary		List transfers of a user
//	@Description	Each transfer carries product, stake and party display fields; missing related rows yield nulls.
//	@Tags			Transactions
//	@Produce		json
//	@Param			id	path		int	true	"User id"
//	@Success		200	{object}	dto.TransactionsResponseDTO
//	@Failure		400	{object}	utils.Response	"Invalid user id"
//	@Failure		500	{object}	utils.Response	"Internal server error"
//	@Router			/api/transaction/{id} [get]
func (h *TransactionHandler) GetTransactions(w http.ResponseWriter, r *http.Request) {
	userID, err := httperr.PathInt(r, "id")
	if err != nil {
		httperr.Respond(w, r, err)
		return
	}
	views, err := h.transferService.ListForUser(r.Context(), userID)
	if err != nil {
		httperr.Respond(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewTransactionsResponseDTO(views))
}
