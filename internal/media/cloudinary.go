package media

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"go.uber.org/zap"

	"github.com/spec-kit/rental-service/internal/config"
)

type uploadAPI interface {
	Upload(ctx context.Context, file interface{}, params uploader.UploadParams) (*uploader.UploadResult, error)
	Destroy(ctx context.Context, params uploader.DestroyParams) (*uploader.DestroyResult, error)
}

// Cloudinary stores images in a Cloudinary folder.
type Cloudinary struct {
	api    uploadAPI
	folder string
	logger *zap.Logger
}

// NewCloudinary builds the store from credentials. Callers should check cfg.Enabled first.
func NewCloudinary(cfg config.MediaConfig, logger *zap.Logger) (*Cloudinary, error) {
	cld, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("cloudinary: %w", err)
	}
	return &Cloudinary{api: &cld.Upload, folder: cfg.Folder, logger: logger}, nil
}

func (c *Cloudinary) Upload(ctx context.Context, filename string, file io.Reader) (string, error) {
	res, err := c.api.Upload(ctx, file, uploader.UploadParams{Folder: c.folder})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", filename, err)
	}
	if res.Error.Message != "" {
		return "", fmt.Errorf("upload %s: %s", filename, res.Error.Message)
	}
	if res.SecureURL == "" {
		return "", fmt.Errorf("upload %s: no url returned", filename)
	}
	c.logger.Debug("image uploaded", zap.String("file", filename), zap.String("public_id", res.PublicID))
	return res.SecureURL, nil
}

func (c *Cloudinary) Delete(ctx context.Context, url string) error {
	publicID, err := PublicIDFromURL(url)
	if err != nil {
		return err
	}
	res, err := c.api.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	if err != nil {
		return fmt.Errorf("destroy %s: %w", publicID, err)
	}
	if res.Error.Message != "" {
		return errors.New(res.Error.Message)
	}
	// "not found" means the asset is already gone
	if res.Result != "ok" && res.Result != "not found" {
		return fmt.Errorf("destroy %s: result %q", publicID, res.Result)
	}
	return nil
}
