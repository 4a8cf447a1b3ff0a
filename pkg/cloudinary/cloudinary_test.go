package cloudinary

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestNewRequiresCredentials(t *testing.T) {
	_, err := New(Config{CloudName: "demo"}, zerolog.Nop())
	require.Error(t, err)
}

func TestNewTrimsFolder(t *testing.T) {
	uploader, err := New(Config{CloudName: "demo", APIKey: "key", APISecret: "secret", Folder: "/stagehub/logos/"}, zerolog.Nop())
	require.NoError(t, err)
	require.Equal(t, "stagehub/logos", uploader.folder)
}

func TestLogoPublicID(t *testing.T) {
	require.Equal(t, "company-12-logo", LogoPublicID(12))
}
