package imagehost

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomock "go.uber.org/mock/gomock"

	"github.com/GlebRadaev/stockfolio/internal/config"
	"github.com/GlebRadaev/stockfolio/internal/service/userservice"
)

const imageURL = "https://res.cloudinary.com/demo/image/upload/v1/users/abc.png"

var _ userservice.ImageHost = (*Cloudinary)(nil)

func NewMock(t *testing.T) (userservice.ImageHost, *MockUploader) {
	ctrl := gomock.NewController(t)
	u := NewMockUploader(ctrl)
	return NewWithUploader(u, "users"), u
}

func TestCloudinary_Upload(t *testing.T) {
	tests := []struct {
		name        string
		prepareMock func(u *MockUploader)
		expectedURL string
		expectedErr string
	}{
		{
			name: "Uploaded",
			prepareMock: func(u *MockUploader) {
				u.EXPECT().Upload(gomock.Any(), gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, file any, params uploader.UploadParams) (*uploader.UploadResult, error) {
						assert.Equal(t, "users", params.Folder)
						assert.Equal(t, uploadTransformation, params.Transformation)
						_, err := uuid.Parse(params.PublicID)
						assert.NoError(t, err)
						_, isReader := file.(io.Reader)
						assert.True(t, isReader)
						return &uploader.UploadResult{SecureURL: imageURL, PublicID: "users/abc"}, nil
					})
			},
			expectedURL: imageURL,
		},
		{
			name: "Rejected by the host",
			prepareMock: func(u *MockUploader) {
				u.EXPECT().Upload(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(&uploader.UploadResult{Error: api.ErrorResp{Message: "Invalid image file"}}, nil)
			},
			expectedErr: "image upload failed: Invalid image file",
		},
		{
			name: "No url returned",
			prepareMock: func(u *MockUploader) {
				u.EXPECT().Upload(gomock.Any(), gomock.Any(), gomock.Any()).Return(&uploader.UploadResult{}, nil)
			},
			expectedErr: "image upload failed: no url returned",
		},
		{
			name: "Transport error",
			prepareMock: func(u *MockUploader) {
				u.EXPECT().Upload(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, errors.New("connection refused"))
			},
			expectedErr: "connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			host, u := NewMock(t)
			tt.prepareMock(u)

			url, err := host.Upload(context.Background(), "avatar.png", strings.NewReader("png-bytes"))
			if tt.expectedErr != "" {
				assert.EqualError(t, err, tt.expectedErr)
				assert.Empty(t, url)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expectedURL, url)
		})
	}
}

func TestCloudinary_Destroy(t *testing.T) {
	tests := []struct {
		name        string
		url         string
		prepareMock func(u *MockUploader)
		expectedErr string
	}{
		{
			name: "Destroyed",
			url:  imageURL,
			prepareMock: func(u *MockUploader) {
				u.EXPECT().Destroy(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, params uploader.DestroyParams) (*uploader.DestroyResult, error) {
						assert.Equal(t, "users/abc", params.PublicID)
						require.NotNil(t, params.Invalidate)
						assert.True(t, *params.Invalidate)
						return &uploader.DestroyResult{Result: "ok"}, nil
					})
			},
		},
		{
			name: "Unknown image",
			url:  imageURL,
			prepareMock: func(u *MockUploader) {
				u.EXPECT().Destroy(gomock.Any(), gomock.Any()).Return(&uploader.DestroyResult{Result: "not found"}, nil)
			},
			expectedErr: "image destroy of users/abc: not found",
		},
		{
			name: "Rejected by the host",
			url:  imageURL,
			prepareMock: func(u *MockUploader) {
				u.EXPECT().Destroy(gomock.Any(), gomock.Any()).
					Return(&uploader.DestroyResult{Error: api.ErrorResp{Message: "Invalid Signature"}}, nil)
			},
			expectedErr: "image destroy failed: Invalid Signature",
		},
		{
			name:        "Url without file name",
			url:         "https://img.example.com/",
			prepareMock: func(*MockUploader) {},
			expectedErr: `image url "https://img.example.com/" has no file name`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			host, u := NewMock(t)
			tt.prepareMock(u)

			err := host.Destroy(context.Background(), tt.url)
			if tt.expectedErr != "" {
				assert.EqualError(t, err, tt.expectedErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestCloudinary_NotConfigured(t *testing.T) {
	host, err := New(&config.Config{ImageFolder: "users"})
	require.NoError(t, err)

	_, err = host.Upload(context.Background(), "avatar.png", strings.NewReader("png-bytes"))
	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.ErrorIs(t, host.Destroy(context.Background(), imageURL), ErrNotConfigured)
}

func TestNew_FromParams(t *testing.T) {
	host, err := New(&config.Config{
		CloudinaryCloudName:    "demo",
		CloudinaryAPIKey:       "key",
		CloudinaryAPISecret:    "secret",
		CloudinaryUploadPrefix: "http://localhost:9999/",
		ImageFolder:            "users",
	})
	require.NoError(t, err)

	upload, ok := host.uploader.(*uploader.API)
	require.True(t, ok)
	assert.Equal(t, "demo", upload.Config.Cloud.CloudName)
	assert.Equal(t, "http://localhost:9999", upload.Config.API.UploadPrefix)
}

func TestCloudinary_PublicID(t *testing.T) {
	host := NewWithUploader(nil, "users")

	tests := []struct {
		name      string
		url       string
		expected  string
		expectErr bool
	}{
		{name: "Versioned url", url: "https://res.cloudinary.com/demo/image/upload/v1712/users/abc.jpg", expected: "users/abc"},
		{name: "No extension", url: "https://img.example.com/pic", expected: "users/pic"},
		{name: "No file name", url: "https://img.example.com/", expectErr: true},
		{name: "Broken url", url: "://nope", expectErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := host.PublicID(tt.url)
			if tt.expectErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, id)
		})
	}
}
