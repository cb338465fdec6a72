package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/ardanlabs/conf/v3"
	"github.com/joho/godotenv"
)

const Prefix = "SHOP"

type Config struct {
	Web struct {
		Addr              string        `conf:"default:0.0.0.0:3001"`
		ReadHeaderTimeout time.Duration `conf:"default:5s"`
		ShutdownTimeout   time.Duration `conf:"default:10s"`
	}
	Log struct {
		Level      string `conf:"default:info"`
		File       string
		MaxSizeMB  int `conf:"default:100"`
		MaxBackups int `conf:"default:3"`
	}
	Data struct {
		Dir         string
		DatabaseURL string `conf:"mask"`
	}
	Auth struct {
		TokenTTL        time.Duration `conf:"default:15m"`
		MaxFailedLogins int           `conf:"default:3"`
		LoginRatePerMin int           `conf:"default:30"`
	}
	Metrics struct {
		Enabled bool   `conf:"default:true"`
		Token   string `conf:"mask"`
	}
}

// ErrHelpWanted is returned by Load after usage was requested; the usage
// text is returned alongside it.
var ErrHelpWanted = conf.ErrHelpWanted

// Load reads envFile into the environment when it exists, without
// overriding variables already set, then parses SHOP_* variables and
// command line flags into a Config.
func Load(envFile string) (Config, string, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, "", fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	var cfg Config
	help, err := conf.Parse(Prefix, &cfg)
	if err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			return Config{}, help, err
		}
		return Config{}, "", fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return Config{}, "", err
	}
	return cfg, "", nil
}

// String renders cfg with secrets masked, for startup logs.
func (c Config) String() string {
	out, err := conf.String(&c)
	if err != nil {
		return err.Error()
	}
	return out
}

func (c Config) validate() error {
	if c.Auth.TokenTTL <= 0 {
		return errors.New("SHOP_AUTH_TOKEN_TTL must be positive")
	}
	if c.Auth.MaxFailedLogins < 1 {
		return errors.New("SHOP_AUTH_MAX_FAILED_LOGINS must be at least 1")
	}
	if c.Auth.LoginRatePerMin < 0 {
		return errors.New("SHOP_AUTH_LOGIN_RATE_PER_MIN must not be negative")
	}
	return nil
}
