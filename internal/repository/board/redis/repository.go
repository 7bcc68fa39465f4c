package redis

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

const (
	keyCurrentNumber    = "callsys:number"
	keyPassedNumbers    = "callsys:passed"
	keyFeaturedContents = "callsys:featured"
	keyLastUpdated      = "callsys:updated"
	keySoundEnabled     = "callsys:soundEnabled"
	keyIsPublic         = "callsys:isPublic"
	keyAdminLog         = "callsys:admin-log"
	keyUsers            = "callsys:users"
	keyAdminLayout      = "callsys:admin-layout"
)

const (
	DefaultPassedLimit      = 20
	DefaultLogLimit         = 50
	DefaultFeaturedAttempts = 5
)

// ConflictObserver is notified about optimistic write outcomes on watched keys.
type ConflictObserver interface {
	Retried(key string)
	Exhausted(key string)
}

type Config struct {
	PassedLimit      int
	LogLimit         int
	FeaturedAttempts int
	Observer         ConflictObserver
}

type repo struct {
	rc                   *redis.Client
	logger               *slog.Logger
	decrIfPositiveScript *redis.Script
	passedLimit          int
	logLimit             int
	featuredAttempts     int
	observer             ConflictObserver
}

type nopObserver struct{}

func (nopObserver) Retried(string)   {}
func (nopObserver) Exhausted(string) {}

func NewRepo(ctx context.Context, rc *redis.Client, logger *slog.Logger, cfg *Config) (*repo, error) {
	r := &repo{
		rc:     rc,
		logger: logger,
		decrIfPositiveScript: redis.NewScript(`
			local current = redis.call('GET', KEYS[1])
			if not current then
				return {0, 0}
			end
			current = tonumber(current)
			if current == nil then
				return redis.error_reply('ERR value is not an integer')
			end
			if current > 0 then
				return {redis.call('DECR', KEYS[1]), 1}
			end
			return {current, 0}
		`),
		passedLimit:      DefaultPassedLimit,
		logLimit:         DefaultLogLimit,
		featuredAttempts: DefaultFeaturedAttempts,
		observer:         nopObserver{},
	}

	if cfg != nil {
		if cfg.PassedLimit > 0 {
			r.passedLimit = cfg.PassedLimit
		}
		if cfg.LogLimit > 0 {
			r.logLimit = cfg.LogLimit
		}
		if cfg.FeaturedAttempts > 0 {
			r.featuredAttempts = cfg.FeaturedAttempts
		}
		if cfg.Observer != nil {
			r.observer = cfg.Observer
		}
	}

	if err := r.decrIfPositiveScript.Load(ctx, rc).Err(); err != nil {
		return nil, fmt.Errorf("failed to load decrement script: %w", err)
	}

	return r, nil
}
