package userrepo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/GlebRadaev/stockfolio/internal/domain"
	"github.com/GlebRadaev/stockfolio/internal/pg"
)

const userColumns = "id, clerk_id, name, email, money, profile_picture, created_at, updated_at"

type Repository struct {
	db pg.Database
}

func New(db pg.Database) *Repository {
	return &Repository{
		db: db,
	}
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var user domain.User
	err := row.Scan(&user.ID, &user.ClerkID, &user.Name, &user.Email, &user.Money, &user.ProfilePicture, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (repo *Repository) FindByID(ctx context.Context, id int) (*domain.User, error) {
	query := "SELECT " + userColumns + " FROM users WHERE id = $1"
	user, err := scanUser(repo.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		zap.L().Error("can't find user", zap.Int("id", id), zap.Error(err))
		return nil, err
	}
	return user, nil
}

// LockByID reads the user row and holds it until the surrounding transaction ends.
func (repo *Repository) LockByID(ctx context.Context, id int) (*domain.User, error) {
	query := "SELECT " + userColumns + " FROM users WHERE id = $1 FOR UPDATE"
	user, err := scanUser(repo.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		zap.L().Error("can't lock user", zap.Int("id", id), zap.Error(err))
		return nil, err
	}
	return user, nil
}

func (repo *Repository) FindByClerkID(ctx context.Context, clerkID string) (*domain.User, error) {
	query := "SELECT " + userColumns + " FROM users WHERE clerk_id = $1"
	user, err := scanUser(repo.db.QueryRow(ctx, query, clerkID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		zap.L().Error("can't find user by clerk id", zap.String("clerk_id", clerkID), zap.Error(err))
		return nil, err
	}
	return user, nil
}

func (repo *Repository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	query := `
		INSERT INTO users (clerk_id, name, email, money, profile_picture)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`
	err := repo.db.QueryRow(ctx, query, user.ClerkID, user.Name, user.Email, user.Money, user.ProfilePicture).
		Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		zap.L().Error("can't save user", zap.Error(err))
		return nil, err
	}
	return user, nil
}

// Update applies the non-nil fields of upd. It returns nil when no user has clerkID.
func (repo *Repository) Update(ctx context.Context, clerkID string, upd domain.UserUpdate) (*domain.User, error) {
	query := `
		UPDATE users
		SET name = COALESCE($2, name),
			money = COALESCE($3, money),
			profile_picture = COALESCE($4, profile_picture),
			updated_at = NOW()
		WHERE clerk_id = $1
		RETURNING ` + userColumns
	user, err := scanUser(repo.db.QueryRow(ctx, query, clerkID, upd.Name, upd.Money, upd.ProfilePicture))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		zap.L().Error("can't update user", zap.String("clerk_id", clerkID), zap.Error(err))
		return nil, err
	}
	return user, nil
}

func (repo *Repository) SetProfilePicture(ctx context.Context, id int, url string) (*domain.User, error) {
	query := `
		UPDATE users
		SET profile_picture = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + userColumns
	user, err := scanUser(repo.db.QueryRow(ctx, query, id, url))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		zap.L().Error("can't update profile picture", zap.Int("id", id), zap.Error(err))
		return nil, err
	}
	return user, nil
}

func (repo *Repository) Delete(ctx context.Context, clerkID string) (*domain.User, error) {
	query := "DELETE FROM users WHERE clerk_id = $1 RETURNING " + userColumns
	user, err := scanUser(repo.db.QueryRow(ctx, query, clerkID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		if pg.IsForeignKeyViolation(err) {
			return nil, fmt.Errorf("user %s: %w", clerkID, domain.ErrHasDependents)
		}
		zap.L().Error("can't delete user", zap.String("clerk_id", clerkID), zap.Error(err))
		return nil, err
	}
	return user, nil
}

// AddMoney shifts the balance by delta in a single statement and returns the new balance.
func (repo *Repository) AddMoney(ctx context.Context, id int, delta decimal.Decimal) (decimal.Decimal, error) {
	query := `
		UPDATE users
		SET money = money + $2, updated_at = NOW()
		WHERE id = $1
		RETURNING money
	`
	var money decimal.Decimal
	err := repo.db.QueryRow(ctx, query, id, delta).Scan(&money)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, fmt.Errorf("user %d: %w", id, domain.ErrNotFound)
		}
		zap.L().Error("failed to change user balance", zap.Int("id", id), zap.Error(err))
		return decimal.Zero, err
	}
	return money, nil
}

func (repo *Repository) ListOthers(ctx context.Context, id int) ([]domain.UserSummary, error) {
	query := "SELECT id, name, email, profile_picture FROM users WHERE id <> $1 ORDER BY id"
	rows, err := repo.db.Query(ctx, query, id)
	if err != nil {
		zap.L().Error("can't list users", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	users := make([]domain.UserSummary, 0)
	for rows.Next() {
		var u domain.UserSummary
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.ProfilePicture); err != nil {
			zap.L().Error("can't scan user", zap.Error(err))
			return nil, err
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		zap.L().Error("error iterating users", zap.Error(err))
		return nil, err
	}
	return users, nil
}
