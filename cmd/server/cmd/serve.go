package cmd

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"eventmanagement/config"
	"eventmanagement/internal/adapters/email"
	"eventmanagement/internal/adapters/pdf"
	httpdelivery "eventmanagement/internal/delivery/http"
	"eventmanagement/internal/delivery/http/controllers"
	"eventmanagement/internal/repository/postgres"
	"eventmanagement/internal/services"
)

const shutdownTimeout = 10 * time.Second

// Server flags (override config/env)
var serverPort int

func newServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Long: `Start the HTTP server and begin accepting API requests.

The server will:
- Load configuration from environment variables (and .env outside production)
- Connect to PostgreSQL
- Serve the events API, /healthz, /metrics and /swagger/
- Handle graceful shutdown on SIGINT/SIGTERM

Examples:
  # Start with configuration from env vars
  server serve

  # Start on a specific port with debug logging
  server serve --port 9090 --log-level debug`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd)
		},
	}
	cmd.Flags().IntVar(&serverPort, "port", 0, "server port (default: PORT or 8080)")
	return cmd
}

func runServer(cmd *cobra.Command) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	if serverPort > 0 {
		cfg.Port = strconv.Itoa(serverPort)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := postgres.Open(ctx, cfg.DBUrl)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	handler, err := buildHandler(cfg, logger, db)
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", "addr", server.Addr, "env", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// buildHandler wires repositories, adapters, services and controllers into the router.
func buildHandler(cfg *config.Config, logger *slog.Logger, db *sql.DB) (http.Handler, error) {
	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.Email.Provider,
		FromAddress: cfg.Email.FromAddress,
		FromName:    cfg.Email.FromName,
		SES: email.SESConfig{
			Region:             cfg.Email.AWSRegion,
			AccessKeyID:        cfg.Email.AWSAccessKeyID,
			SecretAccessKey:    cfg.Email.AWSSecretAccessKey,
			InsecureSkipVerify: cfg.Email.SESInsecureSkipVerify,
		},
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("configure mailer: %w", err)
	}
	emailService := services.NewEmailService(mailer, email.NewTemplateRenderer(), logger)

	eventService := services.NewEventService(
		postgres.NewEventRepository(db),
		postgres.NewUserRepository(db),
		pdf.NewRenderer(cfg.PDFAuthor),
		emailService,
		logger,
		cfg.ContextTimeout,
	)
	eventController := controllers.NewEventController(logger, eventService)
	return httpdelivery.NewRouter(logger, eventController, cfg.CORSAllowedOrigins), nil
}
