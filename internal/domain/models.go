package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type User struct {
	ID             int             `db:"id"`
	ClerkID        string          `db:"clerk_id"`
	Name           string          `db:"name"`
	Email          string          `db:"email"`
	Money          decimal.Decimal `db:"money"`
	ProfilePicture string          `db:"profile_picture"`
	CreatedAt      time.Time       `db:"created_at"`
	UpdatedAt      time.Time       `db:"updated_at"`
}

// UserSummary is the public projection of a user. It never carries the balance.
type UserSummary struct {
	ID             int    `db:"id"`
	Name           string `db:"name"`
	Email          string `db:"email"`
	ProfilePicture string `db:"profile_picture"`
}

type UserUpdate struct {
	Name           *string
	Money          *decimal.Decimal
	ProfilePicture *string
}

func (u UserUpdate) Empty() bool {
	return u.Name == nil && u.Money == nil && u.ProfilePicture == nil
}

type Product struct {
	ID          int             `db:"id"`
	Title       string          `db:"title"`
	Quantity    int             `db:"quantity"`
	Salary      decimal.Decimal `db:"salary"`
	Image       string          `db:"image"`
	CompanyIcon string          `db:"company_icon"`
	CreatedAt   time.Time       `db:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at"`
}

type Purchase struct {
	ID        int             `db:"id"`
	ProductID int             `db:"product_id"`
	UserID    int             `db:"user_id"`
	NewSalary decimal.Decimal `db:"new_salary"`
	Percent   string          `db:"percent"`
	Quantity  int             `db:"quantity"`
	Available int             `db:"available"`
	CreatedAt time.Time       `db:"created_at"`
	UpdatedAt time.Time       `db:"updated_at"`
}

// PurchaseView is a purchase decorated with its product display fields.
type PurchaseView struct {
	Purchase
	Title *string `db:"title"`
	Image *string `db:"image"`
	Icon  *string `db:"icon"`
}

type Transaction struct {
	ID              int             `db:"id"`
	PurchaseID      *int            `db:"purchase_id"`
	ProductID       int             `db:"product_id"`
	UserID          int             `db:"user_id"`
	SentToUserID    int             `db:"sent_to_user_id"`
	SentByUserID    int             `db:"sent_by_user_id"`
	BackgroundColor string          `db:"background_color"`
	TextColor       string          `db:"text_color"`
	TotalMoneySent  decimal.Decimal `db:"total_money_sent"`
	CreatedAt       time.Time       `db:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at"`
}

// TransactionView decorates a transaction with related display fields.
// Any related row that can't be loaded leaves its fields nil.
type TransactionView struct {
	Transaction
	ProductTitle           *string
	ProductIcon            *string
	PurchasePercent        *string
	SenderName             *string
	SenderProfilePicture   *string
	ReceiverName           *string
	ReceiverProfilePicture *string
}

type LedgerKind string

const (
	LedgerIncome LedgerKind = "income"
	LedgerLoss   LedgerKind = "loss"
)

type LedgerEntry struct {
	ID          int             `db:"id"`
	Kind        LedgerKind      `db:"-"`
	UserID      int             `db:"user_id"`
	Title       string          `db:"title"`
	IconCompany string          `db:"icon_company"`
	Amount      decimal.Decimal `db:"amount"`
	CreatedAt   time.Time       `db:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at"`
}
