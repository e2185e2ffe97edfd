// Package admin parses dashboard command flags and launches the admin server.
package admin

import (
	"context"
	"flag"
	"fmt"
	"time"

	entrypoint "github.com/offerboat/admin/internal/platform/cmd"
	"github.com/offerboat/admin/internal/services/admin"
)

// Config holds the admin command configuration.
type Config struct {
	HTTPAddr      string        `env:"OFFERBOAT_ADMIN_HTTP_ADDR" envDefault:":8082"`
	BackendURL    string        `env:"OFFERBOAT_ADMIN_BACKEND_URL" envDefault:"https://www.offerboats.com"`
	DBPath        string        `env:"OFFERBOAT_ADMIN_DB_PATH" envDefault:"data/admin.db"`
	CacheTTL      time.Duration `env:"OFFERBOAT_ADMIN_CACHE_TTL" envDefault:"5m"`
	SecureCookies bool          `env:"OFFERBOAT_ADMIN_SECURE_COOKIES" envDefault:"false"`
}

// ParseConfig parses environment and flags into Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "HTTP listen address")
	fs.StringVar(&cfg.BackendURL, "backend-url", cfg.BackendURL, "OfferBoat backend base URL")
	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "Path to the session sqlite database")
	fs.DurationVar(&cfg.CacheTTL, "cache-ttl", cfg.CacheTTL, "How long list snapshots stay fresh")
	fs.BoolVar(&cfg.SecureCookies, "secure-cookies", cfg.SecureCookies, "Mark session cookies Secure")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the admin server.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceAdmin, func(ctx context.Context) error {
		server, err := admin.NewServer(ctx, admin.Config{
			HTTPAddr:      cfg.HTTPAddr,
			BackendURL:    cfg.BackendURL,
			DBPath:        cfg.DBPath,
			CacheTTL:      cfg.CacheTTL,
			SecureCookies: cfg.SecureCookies,
		})
		if err != nil {
			return fmt.Errorf("init admin server: %w", err)
		}
		defer server.Close()

		if err := server.ListenAndServe(ctx); err != nil {
			return fmt.Errorf("serve admin: %w", err)
		}
		return nil
	})
}
