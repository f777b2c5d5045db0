package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	pkgdeps "github.com/albertocavalcante/go-pkgdeps"
)

// EnvPrefix prefixes every environment variable read by ApplyEnv.
const EnvPrefix = "PKGDEPS_"

// LoadDotEnv loads the given .env files (or ./.env when none are given)
// into the process environment. Missing files are ignored and variables
// already set are not overridden.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return nil
}

// ApplyEnv overlays PKGDEPS_* variables onto cfg using lookup, which is
// usually os.LookupEnv. Malformed numeric, boolean or duration values are
// reported as *pkgdeps.ValidationError.
func ApplyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	get := func(key string) (string, bool) {
		v, ok := lookup(EnvPrefix + key)
		if !ok {
			return "", false
		}
		return strings.TrimSpace(v), true
	}

	strs := map[string]*string{
		"PACKAGE":          &cfg.Package,
		"REPOSITORY":       &cfg.Repository,
		"MODE":             &cfg.Mode,
		"VERSION":          &cfg.Version,
		"OUTPUT":           &cfg.Output,
		"FORMAT":           &cfg.Format,
		"WHY":              &cfg.Why,
		"LOG_LEVEL":        &cfg.LogLevel,
		"METRICS_TEXTFILE": &cfg.MetricsTextfile,
		"D2_BINARY":        &cfg.D2Binary,
	}
	for key, dst := range strs {
		if v, ok := get(key); ok {
			*dst = v
		}
	}

	bools := map[string]*bool{
		"ASCII":     &cfg.ASCII,
		"REVERSE":   &cfg.Reverse,
		"NO_RENDER": &cfg.NoRender,
		"STATS":     &cfg.Stats,
	}
	for key, dst := range bools {
		v, ok := get(key)
		if !ok || v == "" {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return envError(key, v, "must be a boolean")
		}
		*dst = b
	}

	if v, ok := get("DEPTH"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return envError("DEPTH", v, "must be a positive integer")
		}
		cfg.Depth = n
	}
	if v, ok := get("TIMEOUT"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return envError("TIMEOUT", v, "must be a duration such as 15s")
		}
		cfg.Timeout = d
	}
	if v, ok := get("RATE_LIMIT"); ok && v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return envError("RATE_LIMIT", v, "must be a number")
		}
		cfg.RateLimit = f
	}
	return nil
}

func envError(key, value, reason string) error {
	return &pkgdeps.ValidationError{Field: EnvPrefix + key, Value: value, Reason: reason}
}
