package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/netip"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds runtime configuration sourced from env vars.
type Config struct {
	Env         string `env:"ENV" env-default:"development"`
	Port        string `env:"PORT" env-default:"8080"`
	DatabaseURL string `env:"DATABASE_URL" env-required:"true"`
	LogLevel    string `env:"LOG_LEVEL" env-default:"info"`

	JWTSecret string        `env:"JWT_SECRET" env-required:"true"`
	JWTIssuer string        `env:"JWT_ISSUER" env-default:"electricite-backend"`
	JWTTTL    time.Duration `env:"JWT_TTL" env-default:"24h"`

	BcryptCost   int  `env:"BCRYPT_COST" env-default:"12"`
	AutoActivate bool `env:"ACCOUNTS_AUTO_ACTIVATE" env-default:"false"`

	CORSOrigins []string `env:"CORS_ALLOWED_ORIGINS" env-default:"*" env-separator:","`

	RateLimitWindow time.Duration `env:"RATE_LIMIT_WINDOW" env-default:"15m"`
	RateLimitMax    int           `env:"RATE_LIMIT_MAX_REQUESTS" env-default:"100"`

	// TrustedProxies lists the IPs or CIDRs whose forwarding headers are
	// honoured. Empty means the socket peer is always the client.
	TrustedProxies []string `env:"TRUSTED_PROXIES" env-separator:","`
}

// Load reads configuration from the environment and performs minimal validation.
func Load() (Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("read env: %w", err)
	}

	cfg.DatabaseURL = strings.TrimSpace(cfg.DatabaseURL)
	cfg.JWTSecret = strings.TrimSpace(cfg.JWTSecret)
	cfg.CORSOrigins = cleanList(cfg.CORSOrigins)

	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("DATABASE_URL is required")
	}
	if cfg.JWTSecret == "" {
		return Config{}, errors.New("JWT_SECRET is required")
	}
	if cfg.JWTTTL <= 0 {
		return Config{}, fmt.Errorf("JWT_TTL must be positive, got %s", cfg.JWTTTL)
	}
	if _, err := parsePrefixes(cfg.TrustedProxies); err != nil {
		return Config{}, fmt.Errorf("TRUSTED_PROXIES: %w", err)
	}
	if cfg.RateLimitWindow <= 0 || cfg.RateLimitMax <= 0 {
		return Config{}, errors.New("RATE_LIMIT_WINDOW and RATE_LIMIT_MAX_REQUESTS must be positive")
	}

	return cfg, nil
}

// HTTPAddress returns the host:port pair for the HTTP server to bind to.
func (c Config) HTTPAddress() string {
	return fmt.Sprintf(":%s", c.Port)
}

// SlogLevel maps LOG_LEVEL onto a slog level, defaulting to info.
func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(strings.TrimSpace(c.LogLevel)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// TrustedProxyPrefixes returns the parsed TRUSTED_PROXIES entries. Invalid
// entries are rejected by Load and skipped here.
func (c Config) TrustedProxyPrefixes() []netip.Prefix {
	prefixes, _ := parsePrefixes(c.TrustedProxies)
	return prefixes
}

func parsePrefixes(entries []string) ([]netip.Prefix, error) {
	var (
		out      []netip.Prefix
		firstErr error
	)
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if strings.Contains(entry, "/") {
			prefix, err := netip.ParsePrefix(entry)
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				continue
			}
			out = append(out, prefix.Masked())
			continue
		}
		addr, err := netip.ParseAddr(entry)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		addr = addr.Unmap()
		out = append(out, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return out, firstErr
}

func cleanList(in []string) []string {
	var out []string
	for _, part := range in {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}
