package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/syntheses-api/internal/handler"
	"github.com/noah-isme/syntheses-api/internal/repository"
	"github.com/noah-isme/syntheses-api/internal/router"
	"github.com/noah-isme/syntheses-api/internal/service"
	"github.com/noah-isme/syntheses-api/internal/session"
	"github.com/noah-isme/syntheses-api/pkg/archive"
	"github.com/noah-isme/syntheses-api/pkg/cache"
	"github.com/noah-isme/syntheses-api/pkg/config"
	"github.com/noah-isme/syntheses-api/pkg/export"
	"github.com/noah-isme/syntheses-api/pkg/logger"
	"github.com/noah-isme/syntheses-api/pkg/notify"
	"github.com/noah-isme/syntheses-api/pkg/scheduler"
	"github.com/noah-isme/syntheses-api/pkg/storage"
)

const (
	shutdownTimeout    = 15 * time.Second
	notifyBufferSize   = 64
	uploadBodyOverhead = 1 << 20
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func runServe(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	cfg, err := config.Load()
	if err != nil {
		log.Printf("failed to load config: %v", err)
		return err
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Printf("failed to init logger: %v", err)
		return err
	}
	defer logr.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics := service.NewMetricsService()

	files, err := storage.NewLocalStorage(cfg.Upload.Root, cfg.Upload.URLPrefix)
	if err != nil {
		return fmt.Errorf("upload root: %w", err)
	}
	temp, err := storage.NewLocalStorage(cfg.Upload.TempDir, "")
	if err != nil {
		return fmt.Errorf("temp dir: %w", err)
	}

	records := repository.NewRecordRepository(filepath.Join(cfg.Data.Dir, cfg.Data.RecordsFile), metrics.ObserveStoreMutation)
	chat := repository.NewChatRepository(filepath.Join(cfg.Data.Dir, cfg.Data.ChatFile), metrics.ObserveStoreMutation)
	logs := repository.NewLogRepository(filepath.Join(cfg.Data.Dir, cfg.Data.LogsFile), metrics.ObserveStoreMutation)
	if _, err := records.LoadAll(ctx); err != nil {
		// Refuse to start on a corrupt catalogue rather than overwrite it later.
		logr.Error("record store unreadable", zap.String("path", records.Path()), zap.Error(err))
		return err
	}

	sessions, closeSessions, err := newSessionStore(ctx, cfg, logr)
	if err != nil {
		return err
	}
	defer closeSessions()

	dispatcher := notify.NewDispatcher(newSender(cfg, logr), notify.DispatcherConfig{
		Workers:    cfg.Notify.Workers,
		BufferSize: notifyBufferSize,
		Retries:    cfg.Notify.Retries,
		RetryDelay: cfg.Notify.RetryDelay,
		Logger:     logr.Named("notify"),
		OnResult:   metrics.ObserveNotification,
	})

	passwordHash, err := adminPasswordHash(cfg, logr)
	if err != nil {
		return err
	}

	validate := service.NewValidator()
	authSvc := service.NewAuthService(sessions, validate, logr.Named("auth"), service.AuthConfig{
		PasswordHash: passwordHash,
		SessionTTL:   cfg.Session.TTL,
	})
	journalSvc := service.NewJournalService(chat, logs, validate, logr.Named("journal"))
	recordSvc := service.NewRecordService(records, files, journalSvc, validate, logr.Named("records"))
	uploadSvc := service.NewUploadService(records, files, temp, archive.NewAssembler(logr.Named("archive")), dispatcher, metrics, validate, logr.Named("upload"), service.UploadConfig{
		MaxFileSize: cfg.Upload.MaxFileSizeBytes,
		MaxFiles:    cfg.Upload.MaxFiles,
	})
	contactSvc := service.NewContactService(dispatcher, validate, logr.Named("contact"))
	exportSvc := service.NewExportService(recordSvc, logr.Named("export"), export.NewCSVExporter(';'), export.NewPDFExporter())
	maintenance := service.NewMaintenanceService(sessions, temp, cfg.Upload.TempTTL, metrics, logr.Named("maintenance"))

	sched, err := scheduler.New(logr.Named("scheduler"))
	if err != nil {
		return err
	}
	if err := sched.Every("session-sweep", cfg.Session.SweepInterval, maintenance.SweepSessions); err != nil {
		return err
	}
	if err := sched.Every("temp-sweep", cfg.Upload.TempSweepInterval, maintenance.SweepTemp); err != nil {
		return err
	}

	handlers := router.Handlers{
		Upload:  handler.NewUploadHandler(uploadSvc, cfg.Upload.MaxFileSizeBytes*int64(cfg.Upload.MaxFiles)+uploadBodyOverhead),
		Records: handler.NewRecordHandler(recordSvc),
		Journal: handler.NewJournalHandler(journalSvc),
		Auth:    handler.NewAuthHandler(authSvc, handler.CookieConfig{Name: cfg.Session.CookieName, Secure: cfg.Env == config.EnvProduction}),
		Contact: handler.NewContactHandler(contactSvc),
		Export:  handler.NewExportHandler(exportSvc),
		Metrics: handler.NewMetricsHandler(metrics, map[string]handler.ReadinessCheck{
			"records": func(ctx context.Context) error {
				_, err := records.LoadAll(ctx)
				return err
			},
			"sessions": func(ctx context.Context) error {
				_, err := sessions.Count(ctx)
				return err
			},
		}),
	}
	engine := router.New(logr, metrics, authSvc, handlers, router.Options{
		Env:                cfg.Env,
		AllowedOrigins:     cfg.CORS.AllowedOrigins,
		UploadRoot:         files.Root(),
		UploadURLPrefix:    cfg.Upload.URLPrefix,
		SessionCookie:      cfg.Session.CookieName,
		RateLimit:          cfg.RateLimit,
		MaxMultipartMemory: cfg.Upload.MultipartMemory,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	dispatcher.Start(gctx)
	sched.Start()

	g.Go(func() error {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logr.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		if serr := sched.Shutdown(); serr != nil {
			logr.Warn("scheduler shutdown failed", zap.Error(serr))
		}
		dispatcher.Stop()
		return err
	})

	if err := g.Wait(); err != nil {
		logr.Error("server stopped with error", zap.Error(err))
		return err
	}
	logr.Info("server stopped")
	return nil
}

func newSessionStore(ctx context.Context, cfg *config.Config, logr *zap.Logger) (session.Store, func(), error) {
	if cfg.Session.Backend != config.SessionBackendRedis {
		return session.NewMemoryStore(), func() {}, nil
	}
	client, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		return nil, nil, err
	}
	logr.Info("sessions stored in redis", zap.String("addr", client.Options().Addr))
	return session.NewRedisStore(client), func() { _ = client.Close() }, nil
}

func newSender(cfg *config.Config, logr *zap.Logger) notify.Sender {
	if !cfg.SMTP.Enabled() {
		logr.Warn("smtp not configured, notifications are only logged")
		return notify.NewLogSender(logr.Named("notify"))
	}
	smtp, err := notify.NewSMTPSender(notify.SMTPConfig{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		User:     cfg.SMTP.User,
		Password: cfg.SMTP.Password,
		SSL:      cfg.SMTP.SSL,
		From:     cfg.SMTP.From,
		To:       cfg.SMTP.To,
	})
	if err != nil {
		logr.Warn("smtp sender unavailable, notifications are only logged", zap.Error(err))
		return notify.NewLogSender(logr.Named("notify"))
	}
	return notify.NewBreakerSender(smtp, notify.BreakerConfig{
		Name:     "smtp",
		Failures: cfg.Notify.BreakerFailures,
		Timeout:  cfg.Notify.BreakerTimeout,
	}, logr.Named("notify"))
}

func adminPasswordHash(cfg *config.Config, logr *zap.Logger) (string, error) {
	switch {
	case cfg.Admin.PasswordHash != "":
		return cfg.Admin.PasswordHash, nil
	case cfg.Admin.Password != "":
		if cfg.Env == config.EnvProduction {
			logr.Warn("ADMIN_PASSWORD is set in production; prefer ADMIN_PASSWORD_HASH")
		}
		return service.HashPassword(cfg.Admin.Password)
	default:
		logr.Warn("no admin password configured, admin login is disabled")
		return "", nil
	}
}
