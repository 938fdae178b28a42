package product

//go:generate mockgen -source=product.go -destination=mock_product.go -package=product

import (
	"context"
	"net/http"

	"github.com/GlebRadaev/stockfolio/internal/domain"
	"github.com/GlebRadaev/stockfolio/internal/dto"
	"github.com/GlebRadaev/stockfolio/internal/handlers/httperr"
	"github.com/GlebRadaev/stockfolio/pkg/utils"
)

type QueryService interface {
	Products(ctx context.Context) ([]domain.Product, error)
}

type ProductHandler struct {
	queryService QueryService
}

func New(queryService QueryService) *ProductHandler {
	return &ProductHandler{
		queryService: queryService,
	}
}

// GetProducts godoc
//
//	@Summary	List products
//	@Tags		Products
//	@Produce	json
//	@Success	200	{object}	dto.ProductsResponseDTO
//	@Failure	500	{object}	utils.Response	"Internal server error"
//	@Router		/api/product [get]
func (h *ProductHandler) GetProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.queryService.Products(r.Context())
	if err != nil {
		httperr.Respond(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewProductsResponseDTO(products))
}
