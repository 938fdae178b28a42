package dto

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/GlebRadaev/stockfolio/internal/domain"
)

var ErrAllFieldsRequired = errors.New("all fields are required")

type CreateUserRequestDTO struct {
	ClerkID        string           `json:"clerkId" example:"user_2abc"`
	Name           string           `json:"name" example:"Ann"`
	Email          string           `json:"email" example:"ann@example.com"`
	Money          *decimal.Decimal `json:"money" swaggertype:"string" example:"1000.00"`
	ProfilePicture string           `json:"profile_picture" example:"https://img.example.com/ann.png"`
}

func (r CreateUserRequestDTO) Validate() error {
	if r.ClerkID == "" || r.Name == "" || r.Email == "" || r.Money == nil || r.ProfilePicture == "" {
		return ErrAllFieldsRequired
	}
	if r.Money.IsNegative() {
		return errors.New("money must not be negative")
	}
	return nil
}

func (r CreateUserRequestDTO) ToDomain() *domain.User {
	return &domain.User{
		ClerkID:        r.ClerkID,
		Name:           r.Name,
		Email:          r.Email,
		Money:          r.Money.Round(2),
		ProfilePicture: r.ProfilePicture,
	}
}

type UpdateUserRequestDTO struct {
	Name           *string          `json:"name,omitempty" example:"Ann"`
	Money          *decimal.Decimal `json:"money,omitempty" swaggertype:"string" example:"250.00"`
	ProfilePicture *string          `json:"profile_picture,omitempty"`
}

func (r UpdateUserRequestDTO) Validate() error {
	if r.Name == nil && r.Money == nil && r.ProfilePicture == nil {
		return errors.New("no valid fields to update")
	}
	if r.Name != nil && *r.Name == "" {
		return errors.New("name must not be empty")
	}
	if r.Money != nil && r.Money.IsNegative() {
		return errors.New("money must not be negative")
	}
	return nil
}

func (r UpdateUserRequestDTO) ToDomain() domain.UserUpdate {
	upd := domain.UserUpdate{Name: r.Name, ProfilePicture: r.ProfilePicture}
	if r.Money != nil {
		money := r.Money.Round(2)
		upd.Money = &money
	}
	return upd
}

type UserDTO struct {
	ID             int       `json:"id" example:"1"`
	ClerkID        string    `json:"clerkId" example:"user_2abc"`
	Name           string    `json:"name" example:"Ann"`
	Email          string    `json:"email" example:"ann@example.com"`
	Money          string    `json:"money" example:"1000.00"`
	ProfilePicture string    `json:"profile_picture"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func NewUserDTO(u *domain.User) UserDTO {
	return UserDTO{
		ID:             u.ID,
		ClerkID:        u.ClerkID,
		Name:           u.Name,
		Email:          u.Email,
		Money:          domain.FormatMoney(u.Money),
		ProfilePicture: u.ProfilePicture,
		CreatedAt:      u.CreatedAt,
		UpdatedAt:      u.UpdatedAt,
	}
}

type UserResponseDTO struct {
	Message string  `json:"message,omitempty" example:"User found"`
	User    UserDTO `json:"user"`
}

// UserSummaryDTO never carries the balance.
type UserSummaryDTO struct {
	ID             int    `json:"id" example:"2"`
	Name           string `json:"name" example:"Bob"`
	Email          string `json:"email" example:"bob@example.com"`
	ProfilePicture string `json:"profile_picture"`
}

type UsersResponseDTO struct {
	Users []UserSummaryDTO `json:"users"`
}

func NewUsersResponseDTO(users []domain.UserSummary) UsersResponseDTO {
	out := make([]UserSummaryDTO, 0, len(users))
	for _, u := range users {
		out = append(out, UserSummaryDTO{ID: u.ID, Name: u.Name, Email: u.Email, ProfilePicture: u.ProfilePicture})
	}
	return UsersResponseDTO{Users: out}
}

type IncomeDTO struct {
	ID          int       `json:"id" example:"1"`
	UserID      int       `json:"user_id" example:"1"`
	Title       string    `json:"title" example:"Sale of Designer"`
	IconCompany string    `json:"icon_company"`
	Profit      string    `json:"profit" example:"200.00"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type LossDTO struct {
	ID          int       `json:"id" example:"1"`
	UserID      int       `json:"user_id" example:"1"`
	Title       string    `json:"title" example:"Purchase of Designer"`
	IconCompany string    `json:"icon_company"`
	Loss        string    `json:"loss" example:"500.00"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func NewIncomeDTO(e *domain.LedgerEntry) IncomeDTO {
	return IncomeDTO{
		ID:          e.ID,
		UserID:      e.UserID,
		Title:       e.Title,
		IconCompany: e.IconCompany,
		Profit:      domain.FormatMoney(e.Amount),
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

func NewLossDTO(e *domain.LedgerEntry) LossDTO {
	return LossDTO{
		ID:          e.ID,
		UserID:      e.UserID,
		Title:       e.Title,
		IconCompany: e.IconCompany,
		Loss:        domain.FormatMoney(e.Amount),
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

type IncomesResponseDTO struct {
	Incomes []IncomeDTO `json:"incomes"`
}

type LossesResponseDTO struct {
	Losses []LossDTO `json:"losses"`
}

func NewIncomesResponseDTO(entries []domain.LedgerEntry) IncomesResponseDTO {
	out := make([]IncomeDTO, 0, len(entries))
	for i := range entries {
		out = append(out, NewIncomeDTO(&entries[i]))
	}
	return IncomesResponseDTO{Incomes: out}
}

func NewLossesResponseDTO(entries []domain.LedgerEntry) LossesResponseDTO {
	out := make([]LossDTO, 0, len(entries))
	for i := range entries {
		out = append(out, NewLossDTO(&entries[i]))
	}
	return LossesResponseDTO{Losses: out}
}
