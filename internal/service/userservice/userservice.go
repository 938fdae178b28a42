package userservice

//go:generate mockgen -source=userservice.go -destination=mock_userservice.go -package=userservice

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/GlebRadaev/stockfolio/internal/domain"
	"github.com/GlebRadaev/stockfolio/internal/pg"
)

type Repo interface {
	FindByID(ctx context.Context, id int) (*domain.User, error)
	FindByClerkID(ctx context.Context, clerkID string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	Update(ctx context.Context, clerkID string, upd domain.UserUpdate) (*domain.User, error)
	SetProfilePicture(ctx context.Context, id int, url string) (*domain.User, error)
	Delete(ctx context.Context, clerkID string) (*domain.User, error)
}

type ImageHost interface {
	Upload(ctx context.Context, filename string, file io.Reader) (string, error)
	Destroy(ctx context.Context, imageURL string) error
}

type Service struct {
	repo      Repo
	images    ImageHost
	txManager pg.TXManager
}

func New(repo Repo, images ImageHost, txManager pg.TXManager) *Service {
	return &Service{
		repo:      repo,
		images:    images,
		txManager: txManager,
	}
}

// Create registers the user unless one with the same clerk id already
// exists, in which case that user is returned with created set to false.
func (s *Service) Create(ctx context.Context, user *domain.User) (*domain.User, bool, error) {
	existing, err := s.findByClerkID(ctx, user.ClerkID)
	if err != nil {
		zap.L().Error("can't find user", zap.Error(err))
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}

	var created *domain.User
	err = s.txManager.Run(ctx, func(ctx context.Context) (err error) {
		created, err = s.repo.Create(ctx, user)
		return err
	})
	if err != nil {
		// lost a race with a concurrent create for the same clerk id
		if pg.IsUniqueViolation(err) {
			existing, findErr := s.findByClerkID(ctx, user.ClerkID)
			if findErr == nil && existing != nil {
				return existing, false, nil
			}
			return nil, false, fmt.Errorf("user with this clerk id or email: %w", domain.ErrValidation)
		}
		zap.L().Error("can't create user", zap.Error(err))
		return nil, false, err
	}
	zap.L().Info("user created", zap.Int("id", created.ID), zap.String("clerk_id", created.ClerkID))
	return created, true, nil
}

func (s *Service) Get(ctx context.Context, clerkID string) (*domain.User, error) {
	user, err := s.findByClerkID(ctx, clerkID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("user %s: %w", clerkID, domain.ErrNotFound)
	}
	return user, nil
}

func (s *Service) Update(ctx context.Context, clerkID string, upd domain.UserUpdate) (*domain.User, error) {
	if upd.Empty() {
		return nil, fmt.Errorf("no fields to update: %w", domain.ErrValidation)
	}
	var user *domain.User
	err := s.txManager.Run(ctx, func(ctx context.Context) (err error) {
		user, err = s.repo.Update(ctx, clerkID, upd)
		return err
	})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("user %s: %w", clerkID, domain.ErrNotFound)
	}
	return user, nil
}

func (s *Service) Delete(ctx context.Context, clerkID string) (*domain.User, error) {
	var user *domain.User
	err := s.txManager.Run(ctx, func(ctx context.Context) (err error) {
		user, err = s.repo.Delete(ctx, clerkID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("user %s: %w", clerkID, domain.ErrNotFound)
	}
	zap.L().Info("user deleted", zap.Int("id", user.ID), zap.String("clerk_id", clerkID))
	return user, nil
}

// UpdatePicture replaces the profile picture of userID. The old image is
// removed from the image host on a best-effort basis.
func (s *Service) UpdatePicture(ctx context.Context, userID int, filename string, file io.Reader) (*domain.User, error) {
	var user *domain.User
	err := s.txManager.Run(ctx, func(ctx context.Context) (err error) {
		user, err = s.repo.FindByID(ctx, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("user %d: %w", userID, domain.ErrNotFound)
	}

	if user.ProfilePicture != "" {
		if err := s.images.Destroy(ctx, user.ProfilePicture); err != nil {
			zap.L().Warn("failed to delete previous profile picture", zap.Int("user_id", userID), zap.Error(err))
		}
	}

	url, err := s.images.Upload(ctx, filename, file)
	if err != nil {
		zap.L().Error("failed to upload profile picture", zap.Int("user_id", userID), zap.Error(err))
		return nil, err
	}

	var updated *domain.User
	err = s.txManager.Run(ctx, func(ctx context.Context) (err error) {
		updated, err = s.repo.SetProfilePicture(ctx, userID, url)
		return err
	})
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, fmt.Errorf("user %d: %w", userID, domain.ErrNotFound)
	}
	return updated, nil
}

func (s *Service) findByClerkID(ctx context.Context, clerkID string) (user *domain.User, err error) {
	err = s.txManager.Run(ctx, func(ctx context.Context) error {
		user, err = s.repo.FindByClerkID(ctx, clerkID)
		return err
	})
	return user, err
}
