package domain

import (
	"github.com/shopspring/decimal"
)

const moneyPlaces = 2

var hundred = decimal.NewFromInt(100)

// StakeOrder asks the purchase engine to open a stake or refill a closed one.
type StakeOrder struct {
	UserID    int
	ProductID int
	Percent   string
	Quantity  int
	NewSalary decimal.Decimal
}

type StakeResult struct {
	Purchase *Purchase
	Loss     *LedgerEntry
	Created  bool
}

// TransferOrder moves part of a stake to another user.
type TransferOrder struct {
	PurchaseID      int
	ProductID       int
	ActingUserID    int
	ToUserID        int
	FromUserID      int
	Quantity        int
	BackgroundColor string
	TextColor       string
}

type TransferResult struct {
	Transaction *Transaction
	Income      *LedgerEntry
	MoneyAdded  decimal.Decimal
	NewQuantity int
	NewPercent  string
	SellerMoney decimal.Decimal
}

// StakeChange is the outcome of taking quantity units out of a stake.
type StakeChange struct {
	TotalCost    decimal.Decimal
	NewQuantity  int
	NewPercent   string
	NewAvailable int
}

// Cost prices quantity units at unit and rounds to cents.
func Cost(unit decimal.Decimal, quantity int) decimal.Decimal {
	return unit.Mul(decimal.NewFromInt(int64(quantity))).Round(moneyPlaces)
}

// ComputeTransfer applies a transfer of quantity units to a stake. The percent
// is relative to the quantity held right before this transfer, so repeated
// partial transfers compound.
func ComputeTransfer(p *Purchase, quantity int) StakeChange {
	newQuantity := p.Quantity - quantity
	percent := decimal.Zero
	if p.Quantity > 0 {
		percent = decimal.NewFromInt(int64(newQuantity)).Mul(hundred).Div(decimal.NewFromInt(int64(p.Quantity)))
	}
	return StakeChange{
		TotalCost:    Cost(p.NewSalary, quantity),
		NewQuantity:  newQuantity,
		NewPercent:   FormatPercent(percent),
		NewAvailable: AvailableFor(newQuantity),
	}
}

func AvailableFor(quantity int) int {
	if quantity > 0 {
		return 1
	}
	return 0
}

func FormatPercent(p decimal.Decimal) string {
	return p.StringFixed(moneyPlaces) + "%"
}

func FormatMoney(m decimal.Decimal) string {
	return m.StringFixed(moneyPlaces)
}
