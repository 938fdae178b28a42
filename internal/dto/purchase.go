package dto

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/GlebRadaev/stockfolio/internal/domain"
)

type CreatePurchaseRequestDTO struct {
	ProductID *FlexInt         `json:"product_id" swaggertype:"integer" example:"1"`
	UserID    *FlexInt         `json:"user_id" swaggertype:"integer" example:"1"`
	Percent   *FlexString      `json:"percent" swaggertype:"string" example:"100%"`
	Quantity  *FlexInt         `json:"quantity" swaggertype:"integer" example:"100"`
	NewSalary *decimal.Decimal `json:"new_salary" swaggertype:"string" example:"5.00"`
	// Available is accepted for compatibility; the stored flag follows quantity.
	Available *FlexInt `json:"available,omitempty" swaggertype:"integer" example:"1"`
}

func (r CreatePurchaseRequestDTO) Validate() error {
	if r.ProductID == nil || r.UserID == nil || r.Percent == nil || r.Quantity == nil || r.NewSalary == nil {
		return ErrAllFieldsRequired
	}
	if *r.Quantity <= 0 {
		return errors.New("quantity must be a positive integer")
	}
	if r.NewSalary.IsNegative() {
		return errors.New("new_salary must not be negative")
	}
	if r.Available != nil && *r.Available != 0 && *r.Available != 1 {
		return errors.New("available must be 0 or 1")
	}
	if _, err := NormalizePercent(string(*r.Percent)); err != nil {
		return err
	}
	return nil
}

// ToDomain must only be called after Validate succeeded.
func (r CreatePurchaseRequestDTO) ToDomain() domain.StakeOrder {
	percent, _ := NormalizePercent(string(*r.Percent))
	return domain.StakeOrder{
		UserID:    int(*r.UserID),
		ProductID: int(*r.ProductID),
		Percent:   percent,
		Quantity:  int(*r.Quantity),
		NewSalary: r.NewSalary.Round(2),
	}
}

// NormalizePercent turns "60", "60.5%" or 60 into the stored "60.00%" form.
func NormalizePercent(raw string) (string, error) {
	trimmed := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(raw), "%"))
	p, err := decimal.NewFromString(trimmed)
	if err != nil {
		return "", fmt.Errorf("percent %q is not a number", raw)
	}
	if p.IsNegative() {
		return "", errors.New("percent must not be negative")
	}
	return domain.FormatPercent(p), nil
}

type PurchaseDTO struct {
	ID        int       `json:"id" example:"1"`
	ProductID int       `json:"product_id" example:"1"`
	UserID    int       `json:"user_id" example:"1"`
	NewSalary string    `json:"new_salary" example:"5.00"`
	Percent   string    `json:"percent" example:"60.00%"`
	Quantity  int       `json:"quantity" example:"60"`
	Available int       `json:"available" example:"1"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewPurchaseDTO(p *domain.Purchase) PurchaseDTO {
	return PurchaseDTO{
		ID:        p.ID,
		ProductID: p.ProductID,
		UserID:    p.UserID,
		NewSalary: domain.FormatMoney(p.NewSalary),
		Percent:   p.Percent,
		Quantity:  p.Quantity,
		Available: p.Available,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

type CreatePurchaseResponseDTO struct {
	Message  string      `json:"message" example:"Purchase created successfully"`
	Purchase PurchaseDTO `json:"purchase"`
	Loss     LossDTO     `json:"loss"`
}

func NewCreatePurchaseResponseDTO(res *domain.StakeResult) CreatePurchaseResponseDTO {
	msg := "Purchase updated successfully"
	if res.Created {
		msg = "Purchase created successfully"
	}
	return CreatePurchaseResponseDTO{
		Message:  msg,
		Purchase: NewPurchaseDTO(res.Purchase),
		Loss:     NewLossDTO(res.Loss),
	}
}

type DeletePurchaseResponseDTO struct {
	Message string      `json:"message" example:"Deleted successfully"`
	Deleted PurchaseDTO `json:"deleted"`
}

// PurchaseViewDTO is a position with its product display fields, null when
// the product is gone.
type PurchaseViewDTO struct {
	PurchaseDTO
	Title *string `json:"title"`
	Image *string `json:"image"`
	Icon  *string `json:"icon"`
}

type PurchasesResponseDTO struct {
	Purchases []PurchaseViewDTO `json:"purchases"`
}

func NewPurchasesResponseDTO(views []domain.PurchaseView) PurchasesResponseDTO {
	out := make([]PurchaseViewDTO, 0, len(views))
	for i := range views {
		out = append(out, PurchaseViewDTO{
			PurchaseDTO: NewPurchaseDTO(&views[i].Purchase),
			Title:       views[i].Title,
			Image:       views[i].Image,
			Icon:        views[i].Icon,
		})
	}
	return PurchasesResponseDTO{Purchases: out}
}
