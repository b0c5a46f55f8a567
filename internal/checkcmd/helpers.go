package checkcmd

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/retailops/imagecheck/internal/remote"
	"github.com/retailops/imagecheck/internal/scheduler"
)

func setupLogging(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// resolveConcurrency prefers the flag, then IMAGECHECK_CONCURRENCY, then the
// scheduler default.
func resolveConcurrency(flag int) int {
	if flag > 0 {
		return flag
	}
	if v := os.Getenv("IMAGECHECK_CONCURRENCY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
		slog.Warn("Ignoring invalid IMAGECHECK_CONCURRENCY", "value", v)
	}
	return scheduler.DefaultConcurrency
}

// resolveTimeout prefers the flag, then IMAGECHECK_TIMEOUT, then the prober
// default.
func resolveTimeout(flag time.Duration) time.Duration {
	if flag > 0 {
		return flag
	}
	if v := os.Getenv("IMAGECHECK_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
		slog.Warn("Ignoring invalid IMAGECHECK_TIMEOUT", "value", v)
	}
	return remote.DefaultTimeout
}

// newProber builds the prober from flags and environment.
func newProber(timeout time.Duration) *remote.Prober {
	baseURL := envOr("IMAGECHECK_BASE_URL", remote.DefaultBaseURL)
	placeholder := envOr("IMAGECHECK_PLACEHOLDER_MD5", remote.DefaultPlaceholderHash)
	return remote.NewProber(baseURL, placeholder, timeout)
}
