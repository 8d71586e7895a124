package config

import (
	"os"
	"strconv"
	"time"
)

// RateLimitConfig controls the fixed-window abuse guard on public and
// customer-facing routes.  A source address gets Threshold requests per
// Window; the request that pushes the counter past the threshold is
// rejected with 429 until the window rolls over.
type RateLimitConfig struct {
	Enabled   bool
	Window    time.Duration // window length; counters reset when it elapses
	Threshold int           // admitted requests per window and source
	Prefix    string        // key namespace, mainly for the Redis store
	Debug     bool
}

// LoadRateLimitConfig reads the rate-limit settings from the environment,
// falling back to the defaults of 100 requests per 60 seconds.  Floors keep
// nonsensical overrides (zero window, zero threshold) from disabling the
// guard by accident.
func LoadRateLimitConfig() RateLimitConfig {
	def := RateLimitConfig{
		Enabled:   envBool("RATE_LIMIT_ENABLED", true),
		Window:    envDur("RATE_LIMIT_WINDOW", 60*time.Second),
		Threshold: envInt("RATE_LIMIT_THRESHOLD", 100),
		Prefix:    envStr("RATE_LIMIT_PREFIX", "rl"),
		Debug:     envBool("RATE_LIMIT_DEBUG", false),
	}
	if def.Window <= 0 {
		def.Window = 60 * time.Second
	}
	if def.Threshold < 1 {
		def.Threshold = 1
	}
	return def
}

func envStr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func envBool(k string, d bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	switch v {
	case "1", "true", "TRUE", "True", "yes", "YES", "on", "ON":
		return true
	case "0", "false", "FALSE", "False", "no", "NO", "off", "OFF":
		return false
	}
	return d
}

func envInt(k string, d int) int {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	return d
}

func envDur(k string, d time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if dur, err := time.ParseDuration(v); err == nil {
		return dur
	}
	return d
}
