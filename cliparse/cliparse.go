package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	SourceHTTP = "http"
	SourceSQL  = "sql"
)

type Config struct {
	Port           int
	Source         string
	UpstreamURL    string
	DatabaseURL    string
	DatabaseType   string
	VoteNamespace  string
	AdminKeySalt   string
	IPHashSalt     string
	AcquireTimeout time.Duration
	SessionTTL     time.Duration
	MaxSessions    int
	VoteRate       float64
	LogLevel       slog.Level
}

// LoadEnvFile reads KEY=value pairs from path into the environment without
// overriding variables that are already set. A missing file is not an error.
func LoadEnvFile(path string) error {
	err := godotenv.Load(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// ParseFlags validates flags and fills the rest from the environment
func ParseFlags(args []string) (Config, error) {
	var cfg Config
	var logLevel string

	fs := flag.NewFlagSet("transit-dashboard", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.Source, "s", "", "Data source (http or sql)")
	fs.StringVar(&cfg.UpstreamURL, "u", "", "Upstream transit API base URL")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite or postgres)")
	fs.StringVar(&cfg.VoteNamespace, "namespace", "", "Vote namespace")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.AdminKeySalt, "admin-salt", "", "Admin key salt (prefer env)")
	fs.StringVar(&cfg.IPHashSalt, "ip-salt", "", "IP hash salt (prefer env)")

	// Tuning
	fs.DurationVar(&cfg.AcquireTimeout, "acquire-timeout", 0, "Timeout for loading agencies and votes")
	fs.DurationVar(&cfg.SessionTTL, "session-ttl", 0, "Idle session lifetime")
	fs.IntVar(&cfg.MaxSessions, "max-sessions", 0, "Maximum live sessions")
	fs.Float64Var(&cfg.VoteRate, "vote-rate", 0, "Votes per second per client IP")
	fs.StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	// Fall back to environment variables
	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = 3318 // default
		}
	}

	if cfg.Source == "" {
		cfg.Source = envOr("SOURCE", SourceHTTP)
	}
	switch cfg.Source {
	case SourceHTTP:
		if cfg.UpstreamURL == "" {
			cfg.UpstreamURL = os.Getenv("UPSTREAM_URL")
		}
		if cfg.UpstreamURL == "" {
			return Config{}, errors.New("upstream URL required (use -u or UPSTREAM_URL env)")
		}
	case SourceSQL:
		if cfg.DatabaseURL == "" {
			cfg.DatabaseURL = os.Getenv("DATABASE_URL")
		}
		if cfg.DatabaseURL == "" {
			return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
		}
	default:
		return Config{}, fmt.Errorf("unknown source %q (want http or sql)", cfg.Source)
	}

	if cfg.DatabaseType == "" {
		cfg.DatabaseType = envOr("DATABASE_TYPE", "sqlite")
	}
	if cfg.VoteNamespace == "" {
		cfg.VoteNamespace = envOr("VOTE_NAMESPACE", "gtfs-agencies")
	}

	// Secrets - admin salt MUST be provided
	if cfg.AdminKeySalt == "" {
		cfg.AdminKeySalt = os.Getenv("ADMIN_KEY_SALT")
	}
	if cfg.AdminKeySalt == "" {
		return Config{}, errors.New("ADMIN_KEY_SALT required")
	}
	if cfg.IPHashSalt == "" {
		cfg.IPHashSalt = envOr("IP_HASH_SALT", cfg.AdminKeySalt)
	}

	var err error
	if cfg.AcquireTimeout == 0 {
		if cfg.AcquireTimeout, err = envDuration("ACQUIRE_TIMEOUT", 30*time.Second); err != nil {
			return Config{}, err
		}
	}
	if cfg.SessionTTL == 0 {
		if cfg.SessionTTL, err = envDuration("SESSION_TTL", 2*time.Hour); err != nil {
			return Config{}, err
		}
	}
	if cfg.MaxSessions == 0 {
		if s := os.Getenv("MAX_SESSIONS"); s != "" {
			if cfg.MaxSessions, err = strconv.Atoi(s); err != nil {
				return Config{}, errors.New("invalid MAX_SESSIONS env variable")
			}
		} else {
			cfg.MaxSessions = 10000
		}
	}
	if cfg.MaxSessions <= 0 {
		return Config{}, errors.New("max sessions must be positive")
	}
	if cfg.VoteRate == 0 {
		if s := os.Getenv("VOTE_RATE"); s != "" {
			if cfg.VoteRate, err = strconv.ParseFloat(s, 64); err != nil {
				return Config{}, errors.New("invalid VOTE_RATE env variable")
			}
		} else {
			cfg.VoteRate = 2
		}
	}

	if logLevel == "" {
		logLevel = envOr("LOG_LEVEL", "info")
	}
	if err := cfg.LogLevel.UnmarshalText([]byte(strings.ToUpper(logLevel))); err != nil {
		return Config{}, fmt.Errorf("invalid log level %q", logLevel)
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s env variable: %w", key, err)
	}
	return d, nil
}
