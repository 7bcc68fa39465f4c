package redisclient

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type Config struct {
	// URL takes precedence over Host/Port/Password when set, e.g. rediss://default:pw@host:6379.
	URL      string
	Host     string
	Port     int
	Password string
	TLS      bool
}

func (cfg *Config) options() (*redis.Options, error) {
	if cfg.URL != "" {
		opts, err := redis.ParseURL(cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse redis url: %w", err)
		}

		if cfg.TLS && opts.TLSConfig == nil {
			opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}

		return opts, nil
	}

	opts := &redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
	}
	if cfg.TLS {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}

	return opts, nil
}

func NewRedisClient(ctx context.Context, cfg *Config) (*redis.Client, error) {
	opts, err := cfg.options()
	if err != nil {
		return nil, err
	}

	r := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := r.Ping(pingCtx).Err(); err != nil {
		r.Close()
		return nil, err
	}

	return r, nil
}
