package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/fuscashop/ordernotify/internal/address"
	"github.com/fuscashop/ordernotify/internal/api"
	"github.com/fuscashop/ordernotify/internal/channel"
	"github.com/fuscashop/ordernotify/internal/config"
	"github.com/fuscashop/ordernotify/internal/dispatch"
	"github.com/fuscashop/ordernotify/internal/logger"
	"github.com/fuscashop/ordernotify/internal/matcher"
	"github.com/fuscashop/ordernotify/internal/media"
	"github.com/fuscashop/ordernotify/internal/repository/postgres"
	"github.com/fuscashop/ordernotify/internal/service"
	"github.com/fuscashop/ordernotify/internal/templates"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogLevel, cfg.Environment)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Fatal("Server stopped with error", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	db, err := postgres.NewConnection(cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := postgres.RunMigrations(db, log); err != nil {
		return err
	}
	repos := postgres.NewRepositories(db, log)

	store, err := templates.NewStore(templates.Embedded(), log)
	if err != nil {
		return err
	}

	library, err := media.NewLibrary(cfg.MediaDir, log)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Channel session
	tracker := channel.NewStateTracker()
	client := channel.NewClient(cfg.Channel, tracker, log)
	go client.Watch(ctx, cfg.Channel.StatePollInterval)

	transitions, unsubscribe := tracker.Subscribe(8)
	defer unsubscribe()
	go func() {
		for t := range transitions {
			log.Info("Channel session transition",
				zap.String("from", string(t.From)),
				zap.String("to", string(t.To)),
			)
		}
	}()

	queue := dispatch.NewQueue(client, dispatch.Config{
		Delay:       cfg.Dispatch.Delay,
		SendTimeout: cfg.Dispatch.SendTimeout,
	}, log)

	// Notification flow
	normalizer := service.NewEventNormalizer(store, service.NormalizerConfig{
		Locale:      cfg.Locale,
		CartBaseURL: cfg.Store.CartBaseURL,
		TrackingURL: cfg.Store.TrackingURL,
	}, log)
	resolver := address.NewResolver(cfg.Phone.Region, cfg.Channel.AddressSuffix, log)
	notifications := service.NewNotificationService(normalizer, resolver, queue, repos.NotificationLogs, cfg.Dispatch.AlternateDelay, log)

	// Q&A flow
	settings := service.NewSettings(cfg.QA)
	var strategy matcher.Strategy = matcher.NewTriggerPhraseMatcher(log)
	if cfg.QA.Matcher == "similarity" {
		strategy = matcher.NewSimilarityMatcher(settings, log)
	}
	qa := service.NewQAService(repos.Questions, strategy, queue, library, settings, log)
	questions := service.NewQuestionService(repos.Questions, library, strategy, log)

	if cfg.Webhook.Token == "" {
		log.Warn("WEBHOOK_TOKEN is not set, webhook endpoints will answer 503")
	}

	router := api.NewRouter(cfg, &api.Services{
		Notifications: notifications,
		QA:            qa,
		Questions:     questions,
		Settings:      settings,
		Channel:       tracker,
		Queue:         queue,
	}, log)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("Starting server",
			zap.String("port", cfg.Port),
			zap.String("environment", cfg.Environment),
			zap.String("matcher", cfg.QA.Matcher),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("failed to serve: %w", err)
		}
	case <-ctx.Done():
		log.Info("Shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Failed to shut down HTTP server", zap.Error(err))
	}
	notifications.Close()
	if err := queue.Shutdown(shutdownCtx); err != nil {
		log.Error("Failed to drain dispatch queue", zap.Error(err))
	}

	log.Info("Server stopped")
	return nil
}
