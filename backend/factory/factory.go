// Package factory builds backends from connection settings.
package factory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/unkn0wn-root/cachex/backend"
	"github.com/unkn0wn-root/cachex/backend/memory"
	"github.com/unkn0wn-root/cachex/backend/redis"
)

var ErrInvalidConfig = errors.New("factory: invalid backend configuration")

type Config struct {
	ConnectionString string
	DialTimeout      time.Duration // 0 => 5s
}

// Create dials the remote backend described by cfg. Failures are returned as-is
// and never retried here.
func Create(ctx context.Context, cfg Config) (backend.Backend, backend.Kind, error) {
	if strings.TrimSpace(cfg.ConnectionString) == "" {
		return nil, backend.KindRemote, fmt.Errorf("%w: connection string is empty", ErrInvalidConfig)
	}
	if _, err := redis.ParseConnectionString(cfg.ConnectionString); err != nil {
		return nil, backend.KindRemote, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	b, err := redis.Dial(ctx, cfg.ConnectionString, cfg.DialTimeout)
	if err != nil {
		return nil, backend.KindRemote, err
	}
	return b, backend.KindRemote, nil
}

// CreateFallback returns a fresh in-memory backend.
func CreateFallback() backend.Backend {
	return memory.New()
}
