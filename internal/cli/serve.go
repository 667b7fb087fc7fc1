package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/tandem-app/tandem/internal/engine"
	"github.com/tandem-app/tandem/internal/httpapi"
	"github.com/tandem-app/tandem/internal/logger"
	"github.com/tandem-app/tandem/internal/notify"
)

type ServeCmd struct {
	Addr          string `help:"Listen address." default:":8080" env:"TANDEM_ADDR"`
	JWTSecret     string `help:"Secret used to verify API tokens." env:"TANDEM_JWT_SECRET"`
	WebhookURL    string `help:"Push gateway URL for partner notifications." env:"TANDEM_WEBHOOK_URL"`
	WebhookSecret string `help:"Shared secret sent to the push gateway." env:"TANDEM_WEBHOOK_SECRET"`
}

func (c *ServeCmd) Run(ctx *Context) error {
	// Optional .env next to the working directory; flags and real env win.
	_ = godotenv.Load()

	if c.JWTSecret == "" {
		return fmt.Errorf("a JWT secret is required; set --jwt-secret or TANDEM_JWT_SECRET")
	}

	if err := logger.Init(logger.Config{Debug: ctx.Debug, DataDir: ctx.DataDir}); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	log := logger.With("component", "serve")

	if err := ctx.Store.Load(); err != nil {
		return err
	}
	defer ctx.Store.Close()

	var notifier engine.Notifier = engine.NopNotifier{}
	if c.WebhookURL != "" {
		notifier = notify.NewWebhook(c.WebhookURL, c.WebhookSecret)
		log.Info("webhook notifications enabled", "url", c.WebhookURL)
	}

	eng := engine.New(ctx.Store, notifier)
	api := httpapi.NewServer(eng, c.JWTSecret)

	if !ctx.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	srv := &http.Server{
		Addr:              c.Addr,
		Handler:           api.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	pidPath := PidfilePath(ctx.DataDir)
	if err := os.WriteFile(pidPath, []byte(fmt.Sprintf("%d\n", os.Getpid())), 0644); err != nil {
		log.Warn("failed to write pidfile", "path", pidPath, "err", err)
	} else {
		defer os.Remove(pidPath)
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", c.Addr, "storage", ctx.Store.GetConfigPath())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case sig := <-stop:
		log.Info("shutting down", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}
