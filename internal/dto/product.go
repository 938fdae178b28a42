package dto

import (
	"time"

	"github.com/GlebRadaev/stockfolio/internal/domain"
)

type ProductDTO struct {
	ID          int       `json:"id" example:"1"`
	Title       string    `json:"title" example:"Designer"`
	Quantity    int       `json:"quantity" example:"100"`
	Salary      string    `json:"salary" example:"5.00"`
	Image       string    `json:"image"`
	CompanyIcon string    `json:"company_icon"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type ProductsResponseDTO struct {
	Products []ProductDTO `json:"products"`
}

func NewProductsResponseDTO(products []domain.Product) ProductsResponseDTO {
	out := make([]ProductDTO, 0, len(products))
	for _, p := range products {
		out = append(out, ProductDTO{
			ID:          p.ID,
			Title:       p.Title,
			Quantity:    p.Quantity,
			Salary:      domain.FormatMoney(p.Salary),
			Image:       p.Image,
			CompanyIcon: p.CompanyIcon,
			CreatedAt:   p.CreatedAt,
			UpdatedAt:   p.UpdatedAt,
		})
	}
	return ProductsResponseDTO{Products: out}
}
