package imagehost

//go:generate mockgen -source=cloudinary.go -destination=mock_cloudinary.go -package=imagehost

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/GlebRadaev/stockfolio/internal/config"
)

// Profile pictures are limited to 500x500 with automatic quality.
const uploadTransformation = "c_limit,h_500,w_500/q_auto"

const destroyOK = "ok"

var ErrNotConfigured = errors.New("image host is not configured")

// Uploader is the part of the Cloudinary upload API in use.
// *uploader.API implements it.
type Uploader interface {
	Upload(ctx context.Context, file any, uploadParams uploader.UploadParams) (*uploader.UploadResult, error)
	Destroy(ctx context.Context, params uploader.DestroyParams) (*uploader.DestroyResult, error)
}

type Cloudinary struct {
	uploader Uploader
	folder   string
}

// New builds the Cloudinary client either from a cloudinary:// URL or from
// cloud name, key and secret. Without credentials every call fails with
// ErrNotConfigured so the rest of the API keeps working.
func New(cfg *config.Config) (*Cloudinary, error) {
	host := &Cloudinary{folder: cfg.ImageFolder}

	var (
		cld *cloudinary.Cloudinary
		err error
	)
	switch {
	case strings.HasPrefix(cfg.CloudinaryURL, "cloudinary://"):
		cld, err = cloudinary.NewFromURL(cfg.CloudinaryURL)
	case cfg.CloudinaryCloudName != "":
		cld, err = cloudinary.NewFromParams(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
	default:
		zap.L().Warn("cloudinary credentials not configured, profile picture uploads disabled")
		return host, nil
	}
	if err != nil {
		return nil, fmt.Errorf("can't configure cloudinary: %w", err)
	}
	if cfg.CloudinaryUploadPrefix != "" {
		cld.Upload.Config.API.UploadPrefix = strings.TrimRight(cfg.CloudinaryUploadPrefix, "/")
	}

	host.uploader = &cld.Upload
	return host, nil
}

func NewWithUploader(u Uploader, folder string) *Cloudinary {
	return &Cloudinary{uploader: u, folder: folder}
}

// Upload stores the image under a fresh public id and returns its secure URL.
func (c *Cloudinary) Upload(ctx context.Context, filename string, file io.Reader) (string, error) {
	if c.uploader == nil {
		return "", ErrNotConfigured
	}

	res, err := c.uploader.Upload(ctx, file, uploader.UploadParams{
		PublicID:       uuid.NewString(),
		Folder:         c.folder,
		Transformation: uploadTransformation,
	})
	if err != nil {
		zap.L().Error("can't upload image", zap.String("filename", filename), zap.Error(err))
		return "", err
	}
	if res.Error.Message != "" {
		return "", fmt.Errorf("image upload failed: %s", res.Error.Message)
	}
	if res.SecureURL == "" {
		return "", errors.New("image upload failed: no url returned")
	}
	return res.SecureURL, nil
}

// Destroy deletes the image a URL from Upload points to.
func (c *Cloudinary) Destroy(ctx context.Context, imageURL string) error {
	if c.uploader == nil {
		return ErrNotConfigured
	}
	publicID, err := c.PublicID(imageURL)
	if err != nil {
		return err
	}

	res, err := c.uploader.Destroy(ctx, uploader.DestroyParams{
		PublicID:   publicID,
		Invalidate: api.Bool(true),
	})
	if err != nil {
		return err
	}
	if res.Error.Message != "" {
		return fmt.Errorf("image destroy failed: %s", res.Error.Message)
	}
	if res.Result != destroyOK {
		return fmt.Errorf("image destroy of %s: %s", publicID, res.Result)
	}
	return nil
}

// PublicID is the configured folder joined with the file name without its extension.
func (c *Cloudinary) PublicID(imageURL string) (string, error) {
	u, err := url.Parse(imageURL)
	if err != nil {
		return "", fmt.Errorf("invalid image url: %w", err)
	}
	name := path.Base(u.Path)
	if name == "." || name == "/" {
		return "", fmt.Errorf("image url %q has no file name", imageURL)
	}
	name = strings.TrimSuffix(name, path.Ext(name))
	return path.Join(c.folder, name), nil
}
