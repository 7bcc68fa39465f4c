package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/callsys/callboard/internal/broadcast"
	"github.com/callsys/callboard/internal/controller"
	"github.com/callsys/callboard/internal/metrics"
	boardredis "github.com/callsys/callboard/internal/repository/board/redis"
	"github.com/callsys/callboard/internal/repository/connection/inmemory"
	"github.com/callsys/callboard/internal/service/auth"
	boardsvc "github.com/callsys/callboard/internal/service/board"
	"github.com/callsys/callboard/pkg/ctxlogger"
	"github.com/callsys/callboard/pkg/redisclient"
)

type AppConfig struct {
	Secret             string `json:"-"`
	Host               string `json:"host"`
	Port               int    `json:"port"`
	LogLevel           string `json:"log_level"`
	SecureCookies      bool   `json:"secure_cookies"`
	PassedLimit        int    `json:"passed_limit"`
	LogLimit           int    `json:"log_limit"`
	FeaturedRetries    int    `json:"featured_retries"`
	SuperAdminUsername string `json:"super_admin_username"`
	SuperAdminPassword string `json:"-"`
	RedisURL           string `json:"-"`
	RedisHost          string `json:"redis_host"`
	RedisPort          int    `json:"redis_port"`
	RedisPassword      string `json:"-"`
	RedisTLS           bool   `json:"redis_tls"`
}

func (cfg *AppConfig) Validate() error {
	if cfg.Secret == "" {
		return errors.New("secret must not be empty")
	}
	if cfg.PassedLimit < 1 {
		return fmt.Errorf("passed limit must be greater than 0")
	}
	if cfg.LogLimit < 1 {
		return fmt.Errorf("log limit must be greater than 0")
	}
	if cfg.FeaturedRetries < 1 {
		return fmt.Errorf("featured retries must be greater than 0")
	}
	if cfg.SuperAdminUsername == "" || cfg.SuperAdminPassword == "" {
		return fmt.Errorf("super admin username and password must be set")
	}
	return nil
}

func newLogger(level string) (*slog.Logger, error) {
	logLevel := slog.LevelInfo
	if err := logLevel.UnmarshalText([]byte(strings.ToUpper(level))); err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	h := ctxlogger.ContextHandler{
		Handler: slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level:     logLevel,
			AddSource: true,
		}),
	}

	return slog.New(&h), nil
}

// newHandler wires the board on top of rc and starts the event subscriber,
// which runs until ctx is done.
func newHandler(ctx context.Context, cfg *AppConfig, rc *redis.Client, logger *slog.Logger) (http.Handler, error) {
	m := metrics.New()

	boardRepo, err := boardredis.NewRepo(ctx, rc, logger, &boardredis.Config{
		PassedLimit:      cfg.PassedLimit,
		LogLimit:         cfg.LogLimit,
		FeaturedAttempts: cfg.FeaturedRetries,
		Observer:         m,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create board repo: %w", err)
	}

	connectionRepo := inmemory.NewRepo[*broadcast.Client](logger)
	broadcaster := broadcast.New(rc, connectionRepo, m, logger, nil)
	if err := broadcaster.Start(ctx); err != nil {
		return nil, fmt.Errorf("failed to start broadcaster: %w", err)
	}

	boardService := boardsvc.NewService(boardRepo, broadcaster, logger, nil)
	authService := auth.NewService(boardRepo, boardService, logger, &auth.Config{
		Secret: cfg.Secret,
	})

	if err := authService.BootstrapSuperAdmin(ctx, cfg.SuperAdminUsername, cfg.SuperAdminPassword); err != nil {
		return nil, fmt.Errorf("failed to bootstrap super admin: %w", err)
	}

	controller := controller.NewController(boardService, authService, broadcaster, m, logger, &controller.Config{
		SecureCookies: cfg.SecureCookies,
	})

	return controller.GetMux(), nil
}

func Run(ctx context.Context, cfg *AppConfig) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}

	rc, err := redisclient.NewRedisClient(ctx, &redisclient.Config{
		URL:      cfg.RedisURL,
		Host:     cfg.RedisHost,
		Port:     cfg.RedisPort,
		Password: cfg.RedisPassword,
		TLS:      cfg.RedisTLS,
	})
	if err != nil {
		return fmt.Errorf("failed to create redis client: %w", err)
	}
	defer rc.Close()

	// graceful shutdown
	serverCtx, serverStopCtx := context.WithCancel(ctx)
	defer serverStopCtx()

	handler, err := newHandler(serverCtx, cfg, rc, logger)
	if err != nil {
		return err
	}

	server := &http.Server{Addr: fmt.Sprintf("%s:%d", cfg.Host, cfg.Port), Handler: handler}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer signal.Stop(sig)
	go func() {
		select {
		case <-sig:
		case <-serverCtx.Done():
		}

		shutdownCtx, c := context.WithTimeout(context.Background(), 30*time.Second)
		defer c()

		go func() {
			<-shutdownCtx.Done()
			if shutdownCtx.Err() == context.DeadlineExceeded {
				log.Fatal("graceful shutdown timed out.. forcing exit.")
			}
		}()

		err := server.Shutdown(shutdownCtx)
		if err != nil {
			log.Fatal(err)
		}
		serverStopCtx()
	}()

	logger.InfoContext(serverCtx, "starting server", "address", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	<-serverCtx.Done()

	return nil
}
