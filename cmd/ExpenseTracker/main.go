package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sebuszqo/ExpenseTracker/internal/config"
	"github.com/sebuszqo/ExpenseTracker/internal/contact"
	database "github.com/sebuszqo/ExpenseTracker/internal/db"
	emailService "github.com/sebuszqo/ExpenseTracker/internal/email"
	applog "github.com/sebuszqo/ExpenseTracker/internal/log"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "expense tracker: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("missing configuration, update to start server: %w", err)
	}

	logger := applog.New(applog.Config{
		Level:     cfg.LogLevel,
		Format:    cfg.LogFormat,
		Component: applog.ComponentApp,
	})
	applog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbService, err := database.NewDBService(ctx, database.Options{
		Driver:           database.Driver(cfg.DBDriver),
		Path:             cfg.DBPath,
		ConnectionString: cfg.DBConnectionString,
		BusyTimeout:      cfg.DBBusyTimeout,
	}, logger)
	if err != nil {
		return fmt.Errorf("could not initialize database: %w", err)
	}
	defer dbService.Close()

	if err := dbService.EnsureSchema(); err != nil {
		return fmt.Errorf("could not migrate database: %w", err)
	}
	if _, err := dbService.SeedDefaultCategories(ctx); err != nil {
		return fmt.Errorf("could not seed categories: %w", err)
	}

	notifier, closeNotifier, err := newNotifier(cfg)
	if err != nil {
		return err
	}
	defer closeNotifier.Close()

	server, err := NewServer(cfg, dbService, notifier, logger)
	if err != nil {
		return err
	}
	server.RegisterRoutes()

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           server,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Server starting", "port", cfg.Port, "driver", cfg.DBDriver, "notifier", cfg.Notifier)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// newNotifier builds the contact notifier selected by cfg.Notifier. The
// returned closer releases any broker connection.
func newNotifier(cfg config.Config) (contact.Notifier, io.Closer, error) {
	switch cfg.Notifier {
	case config.NotifierAMQP:
		n, err := contact.NewAMQPNotifier(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			return nil, nil, fmt.Errorf("could not connect contact notifier: %w", err)
		}
		return n, n, nil
	case config.NotifierEmail:
		sender, err := emailService.NewEmailService(emailService.Config{
			From:     cfg.EmailAddress,
			Password: cfg.EmailPassword,
			SMTPHost: cfg.SMTPHost,
			SMTPPort: cfg.SMTPPort,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("could not create email service: %w", err)
		}
		n, err := contact.NewEmailNotifier(sender, cfg.ContactInbox)
		if err != nil {
			return nil, nil, err
		}
		return n, nopCloser{}, nil
	default:
		return contact.NoopNotifier{}, nopCloser{}, nil
	}
}
