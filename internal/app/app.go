package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/stagehub-api/internal/config"
	"github.com/noah-isme/stagehub-api/internal/database"
	"github.com/noah-isme/stagehub-api/internal/handler"
	"github.com/noah-isme/stagehub-api/internal/jobs"
	"github.com/noah-isme/stagehub-api/internal/middleware"
	"github.com/noah-isme/stagehub-api/internal/repository"
	"github.com/noah-isme/stagehub-api/internal/router"
	"github.com/noah-isme/stagehub-api/internal/service"
	"github.com/noah-isme/stagehub-api/internal/storage"
	"github.com/noah-isme/stagehub-api/pkg/ai"
	cloud "github.com/noah-isme/stagehub-api/pkg/cloudinary"
	"github.com/noah-isme/stagehub-api/pkg/pdftext"
)

// Container owns the shared infrastructure and services of one process.
type Container struct {
	Config config.Config
	Logger zerolog.Logger
	DB     *gorm.DB
	Redis  *redis.Client
	NATS   *nats.Conn

	Queue    *jobs.Queue
	Pipeline service.CVPipeline
	Runner   *jobs.BatchRunner
	Policy   jobs.RetryPolicy

	Accounts      service.AccountService
	Students      service.StudentService
	Companies     service.CompanyService
	Offers        service.OfferService
	Screening     service.ScreeningService
	Applications  service.ApplicationService
	Matching      service.MatchingService
	Messaging     service.MessagingService
	Notifications service.NotificationService
	Activity      service.ActivityService
	Admin         service.AdminService
}

// New connects to every backing service and builds the service graph.
// Connections opened before a failure are closed again.
func New(ctx context.Context, cfg config.Config, logger zerolog.Logger) (*Container, error) {
	c := &Container{
		Config: cfg,
		Logger: logger,
		Policy: jobs.RetryPolicy{MaxAttempts: cfg.CVRetryAttempts, Backoff: cfg.CVRetryBackoff},
	}

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	c.DB = db
	if err := database.Migrate(db); err != nil {
		c.Close()
		return nil, err
	}

	if c.Redis, err = database.ConnectRedis(ctx, cfg.RedisURL); err != nil {
		c.Close()
		return nil, err
	}

	if c.NATS, err = database.ConnectNATS(cfg.NATSURL, cfg.AppName); err != nil {
		c.Close()
		return nil, err
	}

	documents, err := storage.NewLocalStore(cfg.StorageRoot)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to open document store: %w", err)
	}

	c.build(documents)
	return c, nil
}

func (c *Container) build(documents storage.Store) {
	cfg := c.Config
	logger := c.Logger
	validate := validator.New(validator.WithRequiredStructEnabled())

	users := repository.NewUserRepository(c.DB)
	students := repository.NewStudentRepository(c.DB)
	companies := repository.NewCompanyRepository(c.DB)
	offers := repository.NewOfferRepository(c.DB)
	tests := repository.NewScreeningTestRepository(c.DB)
	applications := repository.NewApplicationRepository(c.DB)
	summaries := repository.NewCVSummaryRepository(c.DB)
	messages := repository.NewMessageRepository(c.DB)
	notifications := repository.NewNotificationRepository(c.DB)
	activity := repository.NewActivityLogRepository(c.DB)

	c.Queue = jobs.NewQueue(c.Redis, cfg.CVQueueKey)
	c.Notifications = service.NewNotificationService(notifications, c.Redis, cfg.RealtimeChannel, c.NATS, validate, logger)

	summarizer := ai.NewOpenAISummarizer(ai.OpenAIConfig{
		Endpoint: cfg.AIEndpoint,
		APIKey:   cfg.AIAPIKey,
		Model:    cfg.AIModel,
		Timeout:  cfg.AITimeout,
		Logger:   logger,
	})
	extractor := pdftext.NewExtractor(documents, logger)
	c.Pipeline = service.NewCVPipeline(students, summaries, extractor, summarizer, c.Notifications, service.CVPipelineConfig{
		PauseEvery: cfg.CVBatchPauseEvery,
		Pause:      cfg.CVBatchPause,
	}, logger)
	c.Runner = jobs.NewBatchRunner(c.Pipeline, c.Policy)

	var logos service.LogoUploader
	cloudCfg := cloud.Config{
		CloudName: cfg.CloudinaryCloudName,
		APIKey:    cfg.CloudinaryAPIKey,
		APISecret: cfg.CloudinaryAPISecret,
		Folder:    cfg.CloudinaryUploadFolder,
	}
	if cloudCfg.Enabled() {
		uploader, err := cloud.New(cloudCfg, logger)
		if err != nil {
			logger.Warn().Err(err).Msg("logo uploads disabled")
		} else {
			logos = uploader
		}
	}

	c.Activity = service.NewActivityService(activity, logger)
	c.Accounts = service.NewAccountService(users, validate, logger)
	c.Students = service.NewStudentService(students, summaries, documents, c.Queue, cfg.UploadMaxBytes, validate, logger)
	c.Companies = service.NewCompanyService(companies, logos, validate, logger)
	c.Offers = service.NewOfferService(offers, companies, tests, applications, validate, logger)
	c.Screening = service.NewScreeningService(applications, tests, c.Notifications, validate, logger)
	c.Applications = service.NewApplicationService(service.ApplicationDeps{
		Applications:  applications,
		Offers:        offers,
		Students:      students,
		Companies:     companies,
		Users:         users,
		Notifications: c.Notifications,
		Mailer:        service.NewLogMailer(logger),
	}, validate, logger)
	c.Matching = service.NewMatchingService(students, companies, offers, applications, logger)
	c.Messaging = service.NewMessagingService(messages, users, c.Notifications, validate, logger)
	c.Admin = service.NewAdminService(service.AdminDeps{
		Users:        users,
		Offers:       offers,
		Applications: applications,
		Summaries:    summaries,
		Activity:     c.Activity,
		Runner:       c.Runner,
		Jobs:         c.Queue,
		Cache:        c.Redis,
		StatsTTL:     cfg.StatsCacheTTL,
	}, validate, logger)
}

// Routes builds the router dependencies for the HTTP API.
func (c *Container) Routes() router.Dependencies {
	logger := c.Logger
	return router.Dependencies{
		AccountHandler:      handler.NewAccountHandler(c.Accounts, logger),
		StudentHandler:      handler.NewStudentHandler(c.Students, logger),
		CompanyHandler:      handler.NewCompanyHandler(c.Companies, logger),
		OfferHandler:        handler.NewOfferHandler(c.Offers, logger),
		ApplicationHandler:  handler.NewApplicationHandler(c.Applications, c.Screening, logger),
		MatchingHandler:     handler.NewMatchingHandler(c.Matching, logger),
		MessageHandler:      handler.NewMessageHandler(c.Messaging, logger),
		NotificationHandler: handler.NewNotificationHandler(c.Notifications, logger, c.Config.NotificationKeepAlive),
		AdminHandler:        handler.NewAdminHandler(c.Admin, logger),
		HealthProbes:        c.healthProbes(),
		JWTMiddleware:       middleware.JWTProtected(c.Config.JWTSecret),
	}
}

// Worker builds the queue consumer for CV jobs.
func (c *Container) Worker() *jobs.Worker {
	return jobs.NewWorker(c.Queue, c.Pipeline, c.Policy, c.Logger)
}

func (c *Container) healthProbes() map[string]handler.HealthProbe {
	probes := map[string]handler.HealthProbe{
		"database": func(ctx context.Context) error {
			sqlDB, err := c.DB.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
		"redis": func(ctx context.Context) error {
			return c.Redis.Ping(ctx).Err()
		},
	}
	if c.NATS != nil {
		probes["nats"] = func(context.Context) error {
			if !c.NATS.IsConnected() {
				return fmt.Errorf("nats %s", strings.ToLower(c.NATS.Status().String()))
			}
			return nil
		}
	}
	return probes
}

// Close releases the connections held by the container.
func (c *Container) Close() {
	if c.NATS != nil {
		if err := c.NATS.Drain(); err != nil {
			c.NATS.Close()
		}
	}
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			c.Logger.Warn().Err(err).Msg("failed to close redis")
		}
	}
	if c.DB != nil {
		if sqlDB, err := c.DB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
}
