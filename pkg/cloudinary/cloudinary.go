package cloudinary

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/rs/zerolog"
)

// Config contains credentials required to talk to Cloudinary.
type Config struct {
	CloudName string
	APIKey    string
	APISecret string
	Folder    string
}

// Enabled reports whether every credential is present.
func (c Config) Enabled() bool {
	return c.CloudName != "" && c.APIKey != "" && c.APISecret != ""
}

// LogoUploader stores company logos on Cloudinary.
type LogoUploader struct {
	client *cloudinary.Cloudinary
	folder string
	logger zerolog.Logger
}

// New constructs a Cloudinary backed logo uploader.
func New(cfg Config, logger zerolog.Logger) (*LogoUploader, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("cloudinary credentials must be provided")
	}

	cld, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cloudinary: %w", err)
	}

	return &LogoUploader{
		client: cld,
		folder: strings.Trim(cfg.Folder, "/"),
		logger: logger.With().Str("component", "cloudinary").Logger(),
	}, nil
}

// UploadLogo uploads the image under a stable public id per company and returns its secure URL.
// Uploading again for the same company overwrites the previous logo.
func (u *LogoUploader) UploadLogo(ctx context.Context, companyID uint, reader io.Reader) (string, error) {
	params := uploader.UploadParams{
		Folder:       u.folder,
		PublicID:     LogoPublicID(companyID),
		Overwrite:    api.Bool(true),
		Invalidate:   api.Bool(true),
		ResourceType: "image",
	}

	result, err := u.client.Upload.Upload(ctx, reader, params)
	if err != nil {
		return "", fmt.Errorf("failed to upload logo: %w", err)
	}
	if result.Error.Message != "" {
		return "", fmt.Errorf("failed to upload logo: %s", result.Error.Message)
	}

	u.logger.Info().Uint("company_id", companyID).Str("public_id", result.PublicID).Msg("company logo uploaded")

	return result.SecureURL, nil
}

// LogoPublicID returns the Cloudinary public id used for a company logo.
func LogoPublicID(companyID uint) string {
	return fmt.Sprintf("company-%d-logo", companyID)
}
