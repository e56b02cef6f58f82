package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Defaults applied when the matching environment variable is unset.
const (
	DefaultAddr            = ":8080"
	DefaultHistoryCapacity = 15
	DefaultSettleDelay     = 800 * time.Millisecond
	DefaultMaxUploadBytes  = 10 << 20
)

// Server captures process level configuration.
type Server struct {
	Addr           string
	LogLevel       slog.Level
	MaxUploadBytes int64
	// Location is used to render check-in timestamps for display.
	Location *time.Location
	Scanner  Scanner
	History  History
}

// Scanner configures the scan session scheduling policy.
type Scanner struct {
	// Continuous resumes scanning automatically after SettleDelay.
	Continuous  bool
	SettleDelay time.Duration
	// ReadStdin feeds the session with one decoded code per stdin line.
	ReadStdin bool
}

// History bounds the rolling scan history.
type History struct {
	Capacity int
}

// FromEnv builds a Server config from environment variables so main stays lean.
// Malformed values are reported rather than silently replaced.
func FromEnv() (Server, error) {
	cfg := Server{
		Addr:           envOr("EMARGEMENT_ADDR", DefaultAddr),
		LogLevel:       slog.LevelInfo,
		MaxUploadBytes: DefaultMaxUploadBytes,
		Location:       time.Local,
		Scanner: Scanner{
			Continuous:  true,
			SettleDelay: DefaultSettleDelay,
		},
		History: History{Capacity: DefaultHistoryCapacity},
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(v)); err != nil {
			return Server{}, fmt.Errorf("LOG_LEVEL: %w", err)
		}
	}
	if v := os.Getenv("HISTORY_CAPACITY"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return Server{}, fmt.Errorf("HISTORY_CAPACITY must be a positive integer, got %q", v)
		}
		cfg.History.Capacity = n
	}
	if v := os.Getenv("SCAN_SETTLE_DELAY"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d < 0 {
			return Server{}, fmt.Errorf("SCAN_SETTLE_DELAY must be a non-negative duration, got %q", v)
		}
		cfg.Scanner.SettleDelay = d
	}
	if v := os.Getenv("SCAN_CONTINUOUS"); v != "" {
		cfg.Scanner.Continuous = strings.EqualFold(v, "true")
	}
	cfg.Scanner.ReadStdin = strings.EqualFold(os.Getenv("SCAN_STDIN"), "true")

	if v := os.Getenv("MAX_UPLOAD_BYTES"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n <= 0 {
			return Server{}, fmt.Errorf("MAX_UPLOAD_BYTES must be a positive integer, got %q", v)
		}
		cfg.MaxUploadBytes = n
	}
	if v := os.Getenv("DISPLAY_TIMEZONE"); v != "" {
		loc, err := time.LoadLocation(v)
		if err != nil {
			return Server{}, fmt.Errorf("DISPLAY_TIMEZONE: %w", err)
		}
		cfg.Location = loc
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
