package dto

import (
	"errors"
	"time"

	"github.com/GlebRadaev/stockfolio/internal/domain"
)

type CreateTransactionRequestDTO struct {
	PurchaseID      *FlexInt `json:"purchaseId" swaggertype:"integer" example:"1"`
	ProductID       *FlexInt `json:"productId" swaggertype:"integer" example:"1"`
	UserID          *FlexInt `json:"userId" swaggertype:"integer" example:"1"`
	SentToUserID    *FlexInt `json:"sentToUserId" swaggertype:"integer" example:"2"`
	SentByUserID    *FlexInt `json:"sentByUserId" swaggertype:"integer" example:"1"`
	BackgroundColor string   `json:"backgroundColor" example:"#1e293b"`
	TextColor       string   `json:"textColor" example:"#ffffff"`
	Quantity        *FlexInt `json:"quantity" swaggertype:"integer" example:"40"`
}

func (r CreateTransactionRequestDTO) Validate() error {
	if r.PurchaseID == nil || r.ProductID == nil || r.UserID == nil || r.SentToUserID == nil ||
		r.SentByUserID == nil || r.Quantity == nil || r.BackgroundColor == "" || r.TextColor == "" {
		return ErrAllFieldsRequired
	}
	if *r.Quantity <= 0 {
		return errors.New("quantity must be a positive integer")
	}
	return nil
}

func (r CreateTransactionRequestDTO) ToDomain() domain.TransferOrder {
	return domain.TransferOrder{
		PurchaseID:      int(*r.PurchaseID),
		ProductID:       int(*r.ProductID),
		ActingUserID:    int(*r.UserID),
		ToUserID:        int(*r.SentToUserID),
		FromUserID:      int(*r.SentByUserID),
		Quantity:        int(*r.Quantity),
		BackgroundColor: r.BackgroundColor,
		TextColor:       r.TextColor,
	}
}

type TransactionDTO struct {
	ID              int       `json:"id" example:"1"`
	PurchaseID      *int      `json:"purchase_id" example:"1"`
	ProductID       int       `json:"product_id" example:"1"`
	UserID          int       `json:"user_id" example:"1"`
	SentToUserID    int       `json:"sent_to_user_id" example:"2"`
	SentByUserID    int       `json:"sent_by_user_id" example:"1"`
	BackgroundColor string    `json:"background_color" example:"#1e293b"`
	TextColor       string    `json:"text_color" example:"#ffffff"`
	TotalMoneySent  string    `json:"total_money_sent" example:"200.00"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func NewTransactionDTO(t *domain.Transaction) TransactionDTO {
	return TransactionDTO{
		ID:              t.ID,
		PurchaseID:      t.PurchaseID,
		ProductID:       t.ProductID,
		UserID:          t.UserID,
		SentToUserID:    t.SentToUserID,
		SentByUserID:    t.SentByUserID,
		BackgroundColor: t.BackgroundColor,
		TextColor:       t.TextColor,
		TotalMoneySent:  domain.FormatMoney(t.TotalMoneySent),
		CreatedAt:       t.CreatedAt,
		UpdatedAt:       t.UpdatedAt,
	}
}

type CreateTransactionResponseDTO struct {
	Message     string         `json:"message" example:"Transaction created successfully"`
	Transaction TransactionDTO `json:"transaction"`
	Income      IncomeDTO      `json:"income"`
	MoneyAdded  string         `json:"moneyAdded" example:"200.00"`
	NewQuantity int            `json:"newQuantity" example:"60"`
	NewPercent  string         `json:"newPercent" example:"60.00%"`
	SellerMoney string         `json:"sellerMoney" example:"1200.00"`
}

func NewCreateTransactionResponseDTO(res *domain.TransferResult) CreateTransactionResponseDTO {
	return CreateTransactionResponseDTO{
		Message:     "Transaction created successfully",
		Transaction: NewTransactionDTO(res.Transaction),
		Income:      NewIncomeDTO(res.Income),
		MoneyAdded:  domain.FormatMoney(res.MoneyAdded),
		NewQuantity: res.NewQuantity,
		NewPercent:  res.NewPercent,
		SellerMoney: domain.FormatMoney(res.SellerMoney),
	}
}

type TransactionViewDTO struct {
	TransactionDTO
	ProductTitle           *string `json:"product_title"`
	ProductIcon            *string `json:"product_icon"`
	PurchasePercent        *string `json:"purchase_percent"`
	SenderName             *string `json:"sender_name"`
	SenderProfilePicture   *string `json:"sender_profile_picture"`
	ReceiverName           *string `json:"receiver_name"`
	ReceiverProfilePicture *string `json:"receiver_profile_picture"`
}

type TransactionsResponseDTO struct {
	Transactions []TransactionViewDTO `json:"transactions"`
}

func NewTransactionsResponseDTO(views []domain.TransactionView) TransactionsResponseDTO {
	out := make([]TransactionViewDTO, 0, len(views))
	for i := range views {
		v := &views[i]
		out = append(out, TransactionViewDTO{
			TransactionDTO:         NewTransactionDTO(&v.Transaction),
			ProductTitle:           v.ProductTitle,
			ProductIcon:            v.ProductIcon,
			PurchasePercent:        v.PurchasePercent,
			SenderName:             v.SenderName,
			SenderProfilePicture:   v.SenderProfilePicture,
			ReceiverName:           v.ReceiverName,
			ReceiverProfilePicture: v.ReceiverProfilePicture,
		})
	}
	return TransactionsResponseDTO{Transactions: out}
}
