package cachex

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/unkn0wn-root/cachex/backend"
	"github.com/unkn0wn-root/cachex/backend/factory"
	"github.com/unkn0wn-root/cachex/codec"
	"github.com/unkn0wn-root/cachex/config"
)

// DialFunc builds a fresh remote backend. It is called once by New (unless
// Options.Backend is set) and again on every reconnect attempt.
type DialFunc func(ctx context.Context) (backend.Backend, backend.Kind, error)

// Options tune the facade.
// Only ConnectionString (or Dial/Backend) is required; others have sensible defaults.
type Options struct {
	ConnectionString string        // see redis.ParseConnectionString
	DialTimeout      time.Duration // 0 => 5s

	RetryCount        int           // attempts per operation; 0 => 5
	ReconnectInterval time.Duration // fallback cooldown before redialing; 0 => 60m
	DefaultExpiration time.Duration // TTL for writes without one; 0 => 120s
	ErrorThreshold    int           // exhausted operations before fallback; 0 => 5

	// KeepBackendOnFallback leaves the failing backend in place when entering
	// fallback mode instead of switching to the in-memory backend.
	KeepBackendOnFallback bool

	Serializer codec.Serializer // object values; nil => JSON
	Logger     Logger           // if nil, NopLogger is used
	Hooks      Hooks            // if nil, NopHooks is used

	Backend backend.Backend // optional initial backend; skips the first dial
	Dial    DialFunc        // nil => factory.Create(ConnectionString)
}

// New builds a facade and dials the initial backend. A dial failure is returned
// to the caller; it is not retried.
func New(ctx context.Context, opts Options) (*Facade, error) {
	f := &Facade{
		retries:        coalesce(opts.RetryCount, DefaultRetryCount),
		reconnectEvery: coalesce(opts.ReconnectInterval, DefaultReconnectInterval),
		defaultTTL:     coalesce(opts.DefaultExpiration, DefaultExpiration),
		threshold:      coalesce(opts.ErrorThreshold, DefaultErrorThreshold),
		keepOnFallback: opts.KeepBackendOnFallback,
		log:            coalesce[Logger](opts.Logger, NopLogger{}),
		hooks:          coalesce[Hooks](opts.Hooks, NopHooks{}),
		ser:            coalesce[codec.Serializer](opts.Serializer, codec.JSON{}),
		fallback:       factory.CreateFallback,
		now:            time.Now,
	}
	if f.retries < 0 || f.threshold < 0 || f.reconnectEvery < 0 || f.defaultTTL < 0 {
		return nil, fmt.Errorf("cachex: negative option value")
	}

	f.dial = opts.Dial
	if f.dial == nil && strings.TrimSpace(opts.ConnectionString) != "" {
		cfg := factory.Config{ConnectionString: opts.ConnectionString, DialTimeout: opts.DialTimeout}
		f.dial = func(ctx context.Context) (backend.Backend, backend.Kind, error) {
			return factory.Create(ctx, cfg)
		}
	}

	switch {
	case opts.Backend != nil:
		f.st.active, f.st.kind = opts.Backend, opts.Backend.Kind()
	case f.dial != nil:
		b, kind, err := f.dial(ctx)
		if err != nil {
			return nil, fmt.Errorf("cachex: initial backend: %w", err)
		}
		f.st.active, f.st.kind = b, kind
	default:
		return nil, fmt.Errorf("cachex: %w: connection string is empty", factory.ErrInvalidConfig)
	}
	f.st.mode = ModeNormal
	f.st.lastChange = f.now()

	f.log.Info("cache facade ready", Fields{"backend": f.st.kind.String()})
	return f, nil
}

// OptionsFromConfig maps loaded configuration onto facade options.
func OptionsFromConfig(c config.CacheConfig) (Options, error) {
	ser, err := serializerByName(c.Serializer)
	if err != nil {
		return Options{}, err
	}
	return Options{
		ConnectionString:      c.ConnectionString,
		DialTimeout:           c.DialTimeout,
		RetryCount:            c.RetryCount,
		ReconnectInterval:     c.ReconnectInterval(),
		DefaultExpiration:     c.DefaultExpiration(),
		KeepBackendOnFallback: c.KeepBackendOnFallback,
		Serializer:            ser,
	}, nil
}

func serializerByName(name string) (codec.Serializer, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "json":
		return codec.JSON{}, nil
	case "msgpack":
		return codec.Msgpack{}, nil
	case "cbor":
		c, err := codec.NewCBOR(false)
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, fmt.Errorf("cachex: unknown serializer %q", name)
	}
}
