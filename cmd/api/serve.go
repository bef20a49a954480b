package main

import (
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	httptransport "github.com/spec-kit/support-desk/internal/api/http"
	"github.com/spec-kit/support-desk/internal/api/http/handlers"
	"github.com/spec-kit/support-desk/internal/auth"
	"github.com/spec-kit/support-desk/internal/config"
	"github.com/spec-kit/support-desk/internal/events"
	"github.com/spec-kit/support-desk/internal/observability"
	"github.com/spec-kit/support-desk/internal/persistence"
	"github.com/spec-kit/support-desk/internal/repository"
	"github.com/spec-kit/support-desk/internal/service"
	"github.com/spec-kit/support-desk/internal/storage"
	"github.com/spec-kit/support-desk/internal/ticketkey"
	"github.com/spec-kit/support-desk/internal/worker"
)

const shutdownTimeout = 15 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := bootstrap()
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(cfg.Postgres.DSN, logger); err != nil {
			return err
		}
	}

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pg.Close()

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	files, err := storage.Open(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("open attachment storage: %w", err)
	}
	defer files.Close() //nolint:errcheck

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	staffRepo := repository.NewStaffRepository(pool)
	ticketRepo := repository.NewTicketRepository(pool)
	historyRepo := repository.NewTicketHistoryRepository(pool)
	faqRepo := repository.NewFAQRepository(pool)

	var seq ticketkey.Sequencer = ticketkey.NewPostgresSequencer(pool, ticketRepo.MaxKeySequence)
	if redis.Enabled() {
		seq = ticketkey.NewRedisSequencer(redis.Client, cfg.Redis.KeyPrefix, ticketRepo.MaxKeySequence)
	}

	metrics := observability.NewMetrics("supportdesk")

	dispatcher := events.NewInMemoryDispatcher(logger)
	var sender service.EmailSender
	if sg := service.NewSendGridSender(cfg.Notification); sg != nil {
		sender = sg
	}
	service.NewNotificationService(dispatcher, userRepo, sender, logger).RegisterHandlers()
	if len(cfg.Notification.KafkaBrokers) > 0 {
		forwarder := events.NewKafkaForwarder(cfg.Notification.KafkaBrokers, cfg.Notification.KafkaTopic)
		defer forwarder.Close() //nolint:errcheck
		events.SubscribeAll(dispatcher, forwarder.Handle)
		logger.Info("forwarding ticket events to kafka", zap.String("topic", cfg.Notification.KafkaTopic))
	}
	notifier := worker.NewNotificationWorker(dispatcher, logger, 0)

	authService := service.NewAuthService(cfg.Auth, service.AuthDependencies{
		UserRepo:  userRepo,
		StaffRepo: staffRepo,
	})
	staffService := service.NewStaffService(staffRepo, cfg.Auth.BcryptCost)
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:  ticketRepo,
		HistoryRepo: historyRepo,
		StaffRepo:   staffRepo,
		Keys:        ticketkey.NewGenerator(cfg.Tickets.KeyPrefix, seq),
		Files:       files,
		Publisher:   notifier,
		Metrics:     metrics,
		Logger:      logger,
		Limits:      cfg.Tickets,
		FilesPrefix: cfg.Storage.KeyPrefix,
	})

	app := httptransport.NewApp(cfg.App, logger, metrics)
	serveLocalAttachments(app, cfg.Storage, logger)

	deps := map[string]handlers.Pinger{"postgres": pg}
	if redis.Enabled() {
		deps["redis"] = redis
	}
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, deps),
		Auth:           handlers.NewAuthHandler(authService),
		Tickets:        handlers.NewTicketsHandler(ticketService, cfg.Tickets.MaxAttachmentBytes),
		Admin:          handlers.NewAdminHandler(ticketService, staffService),
		FAQs:           handlers.NewFAQHandler(service.NewFAQService(faqRepo)),
		AuthMiddleware: auth.NewAuthMiddleware(authService.TokenManager(), userRepo, staffRepo),
		Metrics:        metrics,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return notifier.Run(gctx)
	})
	g.Go(func() error {
		logger.Info("http server listening", zap.String("addr", cfg.App.Addr()))
		return app.Listen(cfg.App.Addr())
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		return app.ShutdownWithTimeout(shutdownTimeout)
	})
	return g.Wait()
}

// serveLocalAttachments exposes a file:// bucket under its public path so stored
// attachment URLs resolve without a separate file server.
func serveLocalAttachments(app *fiber.App, cfg config.StorageConfig, logger *zap.Logger) {
	if cfg.Driver != "blob" || !strings.HasPrefix(cfg.PublicBaseURL, "/") {
		return
	}
	u, err := url.Parse(cfg.BucketURL)
	if err != nil || u.Scheme != "file" {
		return
	}
	app.Static(cfg.PublicBaseURL, u.Path)
	logger.Info("serving local attachments", zap.String("path", cfg.PublicBaseURL), zap.String("dir", u.Path))
}
