package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

// envFiles are read in order before the environment is processed. Variables
// already present in the environment always win.
var envFiles = []string{".env.local", ".env"}

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	Admin AdminConfig
	Store StoreConfig
	Redis RedisConfig

	LoginRateLimit float64 `env:"LOGIN_RATE_LIMIT, default=0.2"`
	LoginRateBurst int     `env:"LOGIN_RATE_BURST, default=5"`

	SiteURL   string `env:"SITE_URL"`
	ImagesDir string `env:"IMAGES_DIR, default=public/images"`
}

type AdminConfig struct {
	Email        string `env:"ADMIN_EMAIL"`
	Password     string `env:"ADMIN_PASSWORD"`
	PasswordHash string `env:"ADMIN_PASSWORD_HASH"`
	// OwnerEmails is the raw comma-separated allow-list; see Owners.
	OwnerEmails string `env:"ADMIN_OWNER_EMAILS"`
	JWTSecret   string `env:"JWT_SECRET"`
}

type StoreConfig struct {
	ProductsFile string        `env:"PRODUCTS_FILE,  default=data/products.json"`
	Timeout      time.Duration `env:"STORE_TIMEOUT,  default=5s"`
	Watch        bool          `env:"PRODUCTS_WATCH, default=true"`
}

type RedisConfig struct {
	// Addr enables the session denylist when set.
	Addr     string `env:"REDIS_ADDR"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB, default=0"`
}

// Problem is a configuration variable that is absent.
type Problem struct {
	Var      string
	Required bool
	Effect   string
}

// Load reads .env files (when present) and then the process environment.
func Load() *Config {
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			panic(fmt.Sprintf("config: failed to read %s: %v", f, err))
		}
	}

	cfg, err := LoadFrom(context.Background(), envconfig.OsLookuper())
	if err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return cfg
}

// LoadFrom processes configuration from an arbitrary lookuper.
func LoadFrom(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: l,
	}); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(strings.TrimSpace(c.Env), "production")
}

// Owners splits ADMIN_OWNER_EMAILS, dropping blanks.
func (a AdminConfig) Owners() []string {
	var out []string
	for _, e := range strings.Split(a.OwnerEmails, ",") {
		if e = strings.TrimSpace(e); e != "" {
			out = append(out, e)
		}
	}
	return out
}

// Problems lists the variables that are missing. The server still starts;
// the caller decides how loudly to report them.
func (c *Config) Problems() []Problem {
	var out []Problem
	if c.Admin.Email == "" {
		out = append(out, Problem{Var: "ADMIN_EMAIL", Required: true, Effect: "admin login is disabled"})
	}
	if c.Admin.Password == "" && c.Admin.PasswordHash == "" {
		out = append(out, Problem{Var: "ADMIN_PASSWORD", Required: true, Effect: "admin login is disabled"})
	}
	if c.Admin.JWTSecret == "" {
		out = append(out, Problem{Var: "JWT_SECRET", Required: true, Effect: "sessions are signed with the development secret"})
	}
	if len(c.Admin.Owners()) == 0 {
		out = append(out, Problem{Var: "ADMIN_OWNER_EMAILS", Effect: "nobody can open the admin area"})
	}
	if c.SiteURL == "" {
		out = append(out, Problem{Var: "SITE_URL", Effect: "cross-origin API calls are not allowed"})
	}
	if c.Redis.Addr == "" {
		out = append(out, Problem{Var: "REDIS_ADDR", Effect: "logout does not revoke issued sessions"})
	}
	return out
}
