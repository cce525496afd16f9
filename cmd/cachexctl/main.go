// Cachexctl probes a cache through the cachex facade: it loads the cache
// configuration, connects and runs one command.
//
//	cachexctl [-config cache.yaml] ping
//	cachexctl get KEY | set KEY VALUE [TTL] | del KEY | ttl KEY
//	cachexctl keys PATTERN | drop-region REGION
//	cachexctl -metrics :9102 watch
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/unkn0wn-root/cachex"
	"github.com/unkn0wn-root/cachex/config"
	"github.com/unkn0wn-root/cachex/hooks/prom"
	cxzap "github.com/unkn0wn-root/cachex/log/zap"
	cxzerolog "github.com/unkn0wn-root/cachex/log/zerolog"
)

var version = "dev"

func main() {
	configPath := flag.String("config", "", "path to YAML config (environment and .env when empty)")
	metricsAddr := flag.String("metrics", "", "serve Prometheus metrics on this address")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println("cachexctl", version)
		os.Exit(0)
	}

	if err := run(*configPath, *metricsAddr, flag.Args()); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, metricsAddr string, args []string) error {
	if len(args) == 0 {
		return errors.New("missing command (ping, get, set, del, ttl, keys, drop-region, watch)")
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, sync, err := newLogger(cfg.Log)
	if err != nil {
		return err
	}
	defer sync()

	opts, err := cachex.OptionsFromConfig(cfg.Cache)
	if err != nil {
		return err
	}
	opts.Logger = logger

	reg := prometheus.NewRegistry()
	opts.Hooks = prom.New(reg, prometheus.Labels{"cache": coalesce(cfg.Cache.Name, "default")})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c, err := cachex.New(ctx, opts)
	if err != nil {
		return err
	}
	defer c.Close(context.Background())

	if metricsAddr != "" {
		srv := &http.Server{
			Addr:              metricsAddr,
			Handler:           promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server stopped", cachex.Fields{"err": err})
			}
		}()
		defer srv.Close()
	}

	return dispatch(ctx, c, args)
}

func dispatch(ctx context.Context, c *cachex.Facade, args []string) error {
	cmd, rest := args[0], args[1:]
	need := func(n int) error {
		if len(rest) < n {
			return fmt.Errorf("%s: expected %d argument(s)", cmd, n)
		}
		return nil
	}

	switch cmd {
	case "ping":
		ok := c.SetStringFor(ctx, "cachexctl:ping", time.Now().UTC().Format(time.RFC3339), time.Minute)
		fmt.Printf("write=%v mode=%s backend=%s\n", ok, c.Mode(), c.BackendKind())
	case "get":
		if err := need(1); err != nil {
			return err
		}
		v, ok := c.GetString(ctx, rest[0])
		if !ok {
			return fmt.Errorf("%s: not found", rest[0])
		}
		fmt.Println(v)
	case "set":
		if err := need(2); err != nil {
			return err
		}
		ok := false
		if len(rest) > 2 {
			ttl, err := time.ParseDuration(rest[2])
			if err != nil {
				return fmt.Errorf("set: ttl: %w", err)
			}
			ok = c.SetStringFor(ctx, rest[0], rest[1], ttl)
		} else {
			ok = c.SetString(ctx, rest[0], rest[1])
		}
		if !ok {
			return errors.New("set: write failed")
		}
	case "del":
		if err := need(1); err != nil {
			return err
		}
		fmt.Println(c.RemoveAll(ctx, rest))
	case "ttl":
		if err := need(1); err != nil {
			return err
		}
		if d, ok := c.KeyTimeToLive(ctx, rest[0]); ok {
			fmt.Println(d.Round(time.Millisecond))
		} else {
			fmt.Println("none")
		}
	case "keys":
		if err := need(1); err != nil {
			return err
		}
		for _, k := range c.ScanKeys(ctx, rest[0]) {
			fmt.Println(k)
		}
	case "drop-region":
		if err := need(1); err != nil {
			return err
		}
		fmt.Println(c.RemoveCacheByRegion(ctx, rest[0]))
	case "watch":
		return watch(ctx, c)
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
	return nil
}

// watch probes the cache every few seconds so mode changes show up in logs
// and metrics, until interrupted.
func watch(ctx context.Context, c *cachex.Facade) error {
	t := time.NewTicker(5 * time.Second)
	defer t.Stop()
	for {
		c.KeyExists(ctx, "cachexctl:ping")
		fmt.Printf("%s mode=%s backend=%s errors=%d\n",
			time.Now().Format(time.TimeOnly), c.Mode(), c.BackendKind(), c.ErrorCount())
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
		}
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.FromEnv()
	}
	return config.Load(path)
}

// newLogger builds a zap JSON logger or a zerolog console logger.
func newLogger(lc config.LogConfig) (cachex.Logger, func(), error) {
	if strings.EqualFold(lc.Format, "console") {
		lvl, err := zerolog.ParseLevel(strings.ToLower(lc.Level))
		if err != nil {
			return nil, nil, fmt.Errorf("log level: %w", err)
		}
		zl := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).
			Level(lvl).With().Timestamp().Logger()
		return cxzerolog.New(zl), func() {}, nil
	}

	lvl, err := zapcore.ParseLevel(lc.Level)
	if err != nil {
		return nil, nil, fmt.Errorf("log level: %w", err)
	}
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(lvl)
	zl, err := zc.Build()
	if err != nil {
		return nil, nil, err
	}
	return cxzap.New(zl), func() { _ = zl.Sync() }, nil
}

func coalesce(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
