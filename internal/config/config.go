package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service, the worker and the CLI.
type Config struct {
	AppName                string
	AppEnv                 string
	AppPort                string
	DatabaseURL            string
	RedisURL               string
	NATSURL                string
	JWTSecret              string
	StorageRoot            string
	UploadMaxBytes         int64
	CloudinaryCloudName    string
	CloudinaryAPIKey       string
	CloudinaryAPISecret    string
	CloudinaryUploadFolder string
	AIEndpoint             string
	AIModel                string
	AIAPIKey               string
	AITimeout              time.Duration
	CVBatchPause           time.Duration
	CVBatchPauseEvery      int
	CVRetryAttempts        int
	CVRetryBackoff         time.Duration
	CVQueueKey             string
	StatsCacheTTL          time.Duration
	RealtimeChannel        string
	NotificationKeepAlive  time.Duration
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("STAGEHUB")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "StageHub API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("storage.root", "./storage")
	v.SetDefault("upload.max_mb", 5)
	v.SetDefault("cloudinary.folder", "stagehub/logos")
	v.SetDefault("ai.endpoint", "https://api.openai.com/v1/chat/completions")
	v.SetDefault("ai.model", "gpt-4o-mini")
	v.SetDefault("ai.timeout", "30s")
	v.SetDefault("cv.batch_pause", "2s")
	v.SetDefault("cv.batch_pause_every", 10)
	v.SetDefault("cv.retry_attempts", 3)
	v.SetDefault("cv.retry_backoff", "60s")
	v.SetDefault("cv.queue_key", "stagehub:jobs:cv")
	v.SetDefault("cache.stats_ttl", "5m")
	v.SetDefault("realtime.channel", "stagehub:notifications")
	v.SetDefault("notifications.keepalive", "25s")

	durations := map[string]time.Duration{}
	for _, key := range []string{"ai.timeout", "cv.batch_pause", "cv.retry_backoff", "cache.stats_ttl", "notifications.keepalive"} {
		parsed, err := time.ParseDuration(v.GetString(key))
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", key, err)
		}
		durations[key] = parsed
	}

	maxMB := v.GetInt64("upload.max_mb")
	if maxMB <= 0 {
		maxMB = 5
	}

	cfg := Config{
		AppName:                v.GetString("app.name"),
		AppEnv:                 v.GetString("app.env"),
		AppPort:                v.GetString("app.port"),
		DatabaseURL:            v.GetString("database.url"),
		RedisURL:               v.GetString("redis.url"),
		NATSURL:                v.GetString("nats.url"),
		JWTSecret:              v.GetString("jwt.secret"),
		StorageRoot:            v.GetString("storage.root"),
		UploadMaxBytes:         maxMB * 1024 * 1024,
		CloudinaryCloudName:    v.GetString("cloudinary.cloud_name"),
		CloudinaryAPIKey:       v.GetString("cloudinary.api_key"),
		CloudinaryAPISecret:    v.GetString("cloudinary.api_secret"),
		CloudinaryUploadFolder: v.GetString("cloudinary.folder"),
		AIEndpoint:             v.GetString("ai.endpoint"),
		AIModel:                v.GetString("ai.model"),
		AIAPIKey:               v.GetString("ai.api_key"),
		AITimeout:              durations["ai.timeout"],
		CVBatchPause:           durations["cv.batch_pause"],
		CVBatchPauseEvery:      v.GetInt("cv.batch_pause_every"),
		CVRetryAttempts:        v.GetInt("cv.retry_attempts"),
		CVRetryBackoff:         durations["cv.retry_backoff"],
		CVQueueKey:             v.GetString("cv.queue_key"),
		StatsCacheTTL:          durations["cache.stats_ttl"],
		RealtimeChannel:        v.GetString("realtime.channel"),
		NotificationKeepAlive:  durations["notifications.keepalive"],
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	if cfg.CVBatchPauseEvery <= 0 {
		cfg.CVBatchPauseEvery = 10
	}

	if cfg.CVRetryAttempts <= 0 {
		cfg.CVRetryAttempts = 3
	}

	return cfg, nil
}
