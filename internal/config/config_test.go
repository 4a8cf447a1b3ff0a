package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadRequiresJWTSecret(t *testing.T) {
	t.Setenv("STAGEHUB_JWT_SECRET", "")

	_, err := Load()
	require.Error(t, err)
}

func TestLoadAppliesDefaults(t *testing.T) {
	t.Setenv("STAGEHUB_JWT_SECRET", "secret")
	t.Setenv("STAGEHUB_APP_PORT", "9090")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.HTTPAddress())
	require.Equal(t, 10, cfg.CVBatchPauseEvery)
	require.Equal(t, 3, cfg.CVRetryAttempts)
	require.Equal(t, 60*time.Second, cfg.CVRetryBackoff)
	require.Equal(t, int64(5*1024*1024), cfg.UploadMaxBytes)
}

func TestLoadRejectsInvalidDuration(t *testing.T) {
	t.Setenv("STAGEHUB_JWT_SECRET", "secret")
	t.Setenv("STAGEHUB_CV_RETRY_BACKOFF", "soon")

	_, err := Load()
	require.Error(t, err)
}
