// Package config loads and validates pkgdeps command settings.
//
// Settings are layered: built-in defaults, then an optional YAML file,
// then PKGDEPS_* environment variables (a .env file in the working
// directory is loaded first), and finally explicit command-line flags.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	pkgdeps "github.com/albertocavalcante/go-pkgdeps"
	"github.com/albertocavalcante/go-pkgdeps/registry"
)

// Source modes.
const (
	ModeLocal  = "local"
	ModeRemote = "remote"
	ModeBCR    = "bcr"
)

// Graph formats printed to stdout with --format.
const (
	FormatD2   = "d2"
	FormatDOT  = "dot"
	FormatJSON = "json"
)

// Config holds every setting the pkgdeps command reads.
type Config struct {
	Package    string `yaml:"package" validate:"pkgname"`
	Repository string `yaml:"repository" validate:"repository"`
	Mode       string `yaml:"mode" validate:"oneof=local remote bcr"`
	Version    string `yaml:"version" validate:"pkgversion"`
	Output     string `yaml:"output" validate:"imageext"`
	Depth      int    `yaml:"depth" validate:"gt=0"`

	ASCII    bool   `yaml:"ascii"`
	Reverse  bool   `yaml:"reverse"`
	Format   string `yaml:"format" validate:"omitempty,oneof=d2 dot json"`
	NoRender bool   `yaml:"no_render"`
	Stats    bool   `yaml:"stats"`
	Why      string `yaml:"why"`

	LogLevel        string        `yaml:"log_level" validate:"oneof=debug info warn error"`
	Timeout         time.Duration `yaml:"timeout" validate:"gte=0"`
	RateLimit       float64       `yaml:"rate_limit" validate:"gte=0"`
	MetricsTextfile string        `yaml:"metrics_textfile"`
	D2Binary        string        `yaml:"d2_binary"`
}

// Defaults returns the built-in settings.
func Defaults() Config {
	return Config{
		Repository: registry.DefaultBaseURL,
		Mode:       ModeRemote,
		Version:    pkgdeps.Latest,
		Output:     "graph.png",
		Depth:      2,
		LogLevel:   "warn",
		Timeout:    registry.DefaultRequestTimeout,
		D2Binary:   "d2",
	}
}

// LoadFile overlays the YAML file at path onto cfg. A missing file leaves
// cfg untouched. Unknown keys are rejected.
func LoadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// Normalize trims whitespace from free-form fields.
func (c *Config) Normalize() {
	c.Package = strings.TrimSpace(c.Package)
	c.Repository = strings.TrimSpace(c.Repository)
	c.Mode = strings.ToLower(strings.TrimSpace(c.Mode))
	c.Version = strings.TrimSpace(c.Version)
	c.Output = strings.TrimSpace(c.Output)
	c.Format = strings.ToLower(strings.TrimSpace(c.Format))
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	if c.Version == "" {
		c.Version = pkgdeps.Latest
	}
}

// Request converts the settings into an analysis request.
func (c *Config) Request() pkgdeps.Request {
	return pkgdeps.Request{
		Package:  c.Package,
		Version:  c.Version,
		MaxDepth: c.Depth,
		Reverse:  c.Reverse,
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("pkgname", validatePackageName)
	_ = v.RegisterValidation("pkgversion", validatePackageVersion)
	_ = v.RegisterValidation("imageext", validateImageExt)
	_ = v.RegisterValidation("repository", validateRepository)
	return v
}

func validatePackageName(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

func validatePackageVersion(fl validator.FieldLevel) bool {
	v := fl.Field().String()
	return pkgdeps.IsLatest(v) || registry.IsVersion(v)
}

func validateImageExt(fl validator.FieldLevel) bool {
	switch strings.ToLower(filepath.Ext(fl.Field().String())) {
	case ".png", ".jpg", ".svg":
		return true
	}
	return false
}

// validateRepository checks the repository against the sibling Mode field:
// remote needs an http(s) URL with a host, local needs an existing file and
// bcr needs an existing directory or file:// URL.
func validateRepository(fl validator.FieldLevel) bool {
	repo := fl.Field().String()
	if repo == "" {
		return false
	}
	mode := ModeRemote
	if parent := fl.Parent(); parent.IsValid() {
		if m := parent.FieldByName("Mode"); m.IsValid() {
			mode = m.String()
		}
	}

	switch mode {
	case ModeLocal:
		info, err := os.Stat(repo)
		return err == nil && info.Mode().IsRegular()
	case ModeBCR:
		if strings.HasPrefix(repo, "file://") {
			return true
		}
		info, err := os.Stat(repo)
		return err == nil && info.IsDir()
	default:
		u, err := url.Parse(repo)
		return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
	}
}

var reasons = map[string]string{
	"pkgname":    "must not be empty",
	"pkgversion": `must be X.Y.Z or "latest"`,
	"imageext":   "must end in .png, .jpg or .svg",
	"gt":         "must be a positive integer",
	"gte":        "must not be negative",
}

// Validate checks c and returns a *pkgdeps.ValidationError describing the
// first violation.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	return &pkgdeps.ValidationError{
		Field:  fe.Field(),
		Value:  fmt.Sprint(fe.Value()),
		Reason: reason(fe, c.Mode),
	}
}

func reason(fe validator.FieldError, mode string) string {
	switch fe.Tag() {
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "repository":
		switch mode {
		case ModeLocal:
			return "must be an existing dependency listing file"
		case ModeBCR:
			return "must be an existing registry directory or file:// URL"
		}
		return "must be an http(s) URL"
	}
	if r, ok := reasons[fe.Tag()]; ok {
		return r
	}
	return "failed " + fe.Tag() + " check"
}
