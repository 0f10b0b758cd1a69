// Package env provides typed helpers for reading environment variables with
// defaults. Invalid values fall back to the default instead of aborting, so a
// stray variable never prevents startup.
package env

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// String returns the value of the environment variable or the default when unset.
func String(name string, defaultValue string) string {
	if v, ok := os.LookupEnv(name); ok {
		return v
	}
	return defaultValue
}

// Int parses the environment variable as an integer.
func Int(name string, defaultValue int) int {
	v, ok := os.LookupEnv(name)
	if !ok {
		return defaultValue
	}
	parsed, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return defaultValue
	}
	return parsed
}

// Bool parses the environment variable as a boolean ("true", "1", "yes" are truthy).
func Bool(name string, defaultValue bool) bool {
	v, ok := os.LookupEnv(name)
	if !ok {
		return defaultValue
	}
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "1", "yes", "on":
		return true
	case "false", "0", "no", "off":
		return false
	default:
		return defaultValue
	}
}

// Float64 parses the environment variable as a float.
func Float64(name string, defaultValue float64) float64 {
	v, ok := os.LookupEnv(name)
	if !ok {
		return defaultValue
	}
	parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return defaultValue
	}
	return parsed
}

// Duration parses the environment variable with time.ParseDuration; a bare
// integer is interpreted as seconds.
func Duration(name string, defaultValue time.Duration) time.Duration {
	v, ok := os.LookupEnv(name)
	if !ok {
		return defaultValue
	}
	trimmed := strings.TrimSpace(v)
	if secs, err := strconv.Atoi(trimmed); err == nil {
		return time.Duration(secs) * time.Second
	}
	parsed, err := time.ParseDuration(trimmed)
	if err != nil {
		return defaultValue
	}
	return parsed
}
