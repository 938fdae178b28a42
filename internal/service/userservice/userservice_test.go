package userservice

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	gomock "go.uber.org/mock/gomock"

	"github.com/GlebRadaev/stockfolio/internal/domain"
	"github.com/GlebRadaev/stockfolio/internal/pg"
)

func NewMock(t *testing.T) (*Service, *MockRepo, *MockImageHost) {
	ctrl := gomock.NewController(t)
	repo := NewMockRepo(ctrl)
	images := NewMockImageHost(ctrl)
	return New(repo, images, pg.NewTXManager(nil, pg.WithTimeout(time.Second))), repo, images
}

func TestCreate(t *testing.T) {
	newUser := func() *domain.User {
		return &domain.User{ClerkID: "user_1", Name: "Ann", Email: "ann@example.com", Money: decimal.RequireFromString("100.00")}
	}
	stored := &domain.User{ID: 7, ClerkID: "user_1", Name: "Ann", Email: "ann@example.com", Money: decimal.RequireFromString("100.00")}

	tests := []struct {
		name            string
		prepareMock     func(repo *MockRepo)
		expectedUser    *domain.User
		expectedCreated bool
		expectedErr     error
	}{
		{
			name: "New user",
			prepareMock: func(repo *MockRepo) {
				repo.EXPECT().FindByClerkID(gomock.Any(), "user_1").Return(nil, nil)
				repo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, u *domain.User) (*domain.User, error) {
					u.ID = 7
					return u, nil
				})
			},
			expectedUser:    stored,
			expectedCreated: true,
		},
		{
			name: "Existing user is returned",
			prepareMock: func(repo *MockRepo) {
				repo.EXPECT().FindByClerkID(gomock.Any(), "user_1").Return(stored, nil)
			},
			expectedUser: stored,
		},
		{
			name: "Concurrent create resolves to existing user",
			prepareMock: func(repo *MockRepo) {
				gomock.InOrder(
					repo.EXPECT().FindByClerkID(gomock.Any(), "user_1").Return(nil, nil),
					repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil, &pgconn.PgError{Code: "23505"}),
					repo.EXPECT().FindByClerkID(gomock.Any(), "user_1").Return(stored, nil),
				)
			},
			expectedUser: stored,
		},
		{
			name: "Email taken by another user",
			prepareMock: func(repo *MockRepo) {
				gomock.InOrder(
					repo.EXPECT().FindByClerkID(gomock.Any(), "user_1").Return(nil, nil),
					repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil, &pgconn.PgError{Code: "23505"}),
					repo.EXPECT().FindByClerkID(gomock.Any(), "user_1").Return(nil, nil),
				)
			},
			expectedErr: domain.ErrValidation,
		},
		{
			name: "Store error",
			prepareMock: func(repo *MockRepo) {
				repo.EXPECT().FindByClerkID(gomock.Any(), "user_1").Return(nil, errors.New("db error"))
			},
			expectedErr: errors.New("db error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, repo, _ := NewMock(t)
			tt.prepareMock(repo)

			user, created, err := service.Create(context.Background(), newUser())
			if tt.expectedErr != nil {
				if errors.Is(tt.expectedErr, domain.ErrValidation) {
					assert.ErrorIs(t, err, domain.ErrValidation)
				} else {
					assert.EqualError(t, err, tt.expectedErr.Error())
				}
				assert.Nil(t, user)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.expectedCreated, created)
			assert.Equal(t, tt.expectedUser, user)
		})
	}
}

func TestGet(t *testing.T) {
	service, repo, _ := NewMock(t)
	user := &domain.User{ID: 1, ClerkID: "user_1"}

	repo.EXPECT().FindByClerkID(gomock.Any(), "user_1").Return(user, nil)
	result, err := service.Get(context.Background(), "user_1")
	assert.NoError(t, err)
	assert.Equal(t, user, result)

	repo.EXPECT().FindByClerkID(gomock.Any(), "ghost").Return(nil, nil)
	_, err = service.Get(context.Background(), "ghost")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdate(t *testing.T) {
	name := "Bob"
	tests := []struct {
		name        string
		upd         domain.UserUpdate
		prepareMock func(repo *MockRepo)
		expectedErr error
	}{
		{
			name: "Name changed",
			upd:  domain.UserUpdate{Name: &name},
			prepareMock: func(repo *MockRepo) {
				repo.EXPECT().Update(gomock.Any(), "user_1", domain.UserUpdate{Name: &name}).Return(&domain.User{ID: 1, Name: name}, nil)
			},
		},
		{
			name:        "Nothing to update",
			upd:         domain.UserUpdate{},
			prepareMock: func(*MockRepo) {},
			expectedErr: domain.ErrValidation,
		},
		{
			name: "Unknown user",
			upd:  domain.UserUpdate{Name: &name},
			prepareMock: func(repo *MockRepo) {
				repo.EXPECT().Update(gomock.Any(), "user_1", gomock.Any()).Return(nil, nil)
			},
			expectedErr: domain.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, repo, _ := NewMock(t)
			tt.prepareMock(repo)

			user, err := service.Update(context.Background(), "user_1", tt.upd)
			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
				assert.Nil(t, user)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, name, user.Name)
		})
	}
}

func TestGet_SlowStore(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := NewMockRepo(ctrl)
	service := New(repo, NewMockImageHost(ctrl), pg.NewTXManager(nil, pg.WithTimeout(20*time.Millisecond)))

	repo.EXPECT().FindByClerkID(gomock.Any(), "user_1").DoAndReturn(func(ctx context.Context, _ string) (*domain.User, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})

	user, err := service.Get(context.Background(), "user_1")
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
	assert.Nil(t, user)
}

func TestDelete(t *testing.T) {
	service, repo, _ := NewMock(t)

	repo.EXPECT().Delete(gomock.Any(), "user_1").Return(&domain.User{ID: 1, ClerkID: "user_1"}, nil)
	user, err := service.Delete(context.Background(), "user_1")
	assert.NoError(t, err)
	assert.Equal(t, 1, user.ID)

	repo.EXPECT().Delete(gomock.Any(), "ghost").Return(nil, nil)
	_, err = service.Delete(context.Background(), "ghost")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	repo.EXPECT().Delete(gomock.Any(), "busy").Return(nil, domain.ErrHasDependents)
	_, err = service.Delete(context.Background(), "busy")
	assert.ErrorIs(t, err, domain.ErrHasDependents)
}

func TestUpdatePicture(t *testing.T) {
	const (
		oldURL = "https://res.cloudinary.com/demo/image/upload/v1/users/old.png"
		newURL = "https://res.cloudinary.com/demo/image/upload/v1/users/new.png"
	)

	tests := []struct {
		name        string
		prepareMock func(repo *MockRepo, images *MockImageHost)
		expectedErr error
	}{
		{
			name: "Replaces previous picture",
			prepareMock: func(repo *MockRepo, images *MockImageHost) {
				repo.EXPECT().FindByID(gomock.Any(), 1).Return(&domain.User{ID: 1, ProfilePicture: oldURL}, nil)
				images.EXPECT().Destroy(gomock.Any(), oldURL).Return(nil)
				images.EXPECT().Upload(gomock.Any(), "me.png", gomock.Any()).Return(newURL, nil)
				repo.EXPECT().SetProfilePicture(gomock.Any(), 1, newURL).Return(&domain.User{ID: 1, ProfilePicture: newURL}, nil)
			},
		},
		{
			name: "Failed destroy does not stop the upload",
			prepareMock: func(repo *MockRepo, images *MockImageHost) {
				repo.EXPECT().FindByID(gomock.Any(), 1).Return(&domain.User{ID: 1, ProfilePicture: oldURL}, nil)
				images.EXPECT().Destroy(gomock.Any(), oldURL).Return(errors.New("not found"))
				images.EXPECT().Upload(gomock.Any(), "me.png", gomock.Any()).Return(newURL, nil)
				repo.EXPECT().SetProfilePicture(gomock.Any(), 1, newURL).Return(&domain.User{ID: 1, ProfilePicture: newURL}, nil)
			},
		},
		{
			name: "No previous picture",
			prepareMock: func(repo *MockRepo, images *MockImageHost) {
				repo.EXPECT().FindByID(gomock.Any(), 1).Return(&domain.User{ID: 1}, nil)
				images.EXPECT().Upload(gomock.Any(), "me.png", gomock.Any()).Return(newURL, nil)
				repo.EXPECT().SetProfilePicture(gomock.Any(), 1, newURL).Return(&domain.User{ID: 1, ProfilePicture: newURL}, nil)
			},
		},
		{
			name: "Unknown user",
			prepareMock: func(repo *MockRepo, _ *MockImageHost) {
				repo.EXPECT().FindByID(gomock.Any(), 1).Return(nil, nil)
			},
			expectedErr: domain.ErrNotFound,
		},
		{
			name: "Upload failure",
			prepareMock: func(repo *MockRepo, images *MockImageHost) {
				repo.EXPECT().FindByID(gomock.Any(), 1).Return(&domain.User{ID: 1}, nil)
				images.EXPECT().Upload(gomock.Any(), "me.png", gomock.Any()).Return("", errors.New("upload failed"))
			},
			expectedErr: errors.New("upload failed"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, repo, images := NewMock(t)
			tt.prepareMock(repo, images)

			user, err := service.UpdatePicture(context.Background(), 1, "me.png", strings.NewReader("img"))
			if tt.expectedErr != nil {
				assert.Error(t, err)
				if errors.Is(tt.expectedErr, domain.ErrNotFound) {
					assert.ErrorIs(t, err, domain.ErrNotFound)
				} else {
					assert.EqualError(t, err, tt.expectedErr.Error())
				}
				assert.Nil(t, user)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, newURL, user.ProfilePicture)
		})
	}
}
