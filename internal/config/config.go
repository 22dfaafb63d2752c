// Package config loads the server configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

type Environment string

const (
	Local      Environment = "local"
	Production Environment = "production"
)

func (e Environment) Valid() bool {
	switch e {
	case Local, Production:
		return true
	}
	return false
}

type Config struct {
	// Secrets. Missing values abort startup.
	HashedPassword string `env:"HASHED_PASSWORD,required,notEmpty"`
	FormPassword   string `env:"FORM_PASSWORD,required,notEmpty"`
	GitHubKey      string `env:"GITHUB_KEY,required,notEmpty"`
	GitHubRepo     string `env:"GITHUB_REPO,required,notEmpty"`
	TMDBKey        string `env:"TMDB_KEY,required,notEmpty"`
	IGDBKey        string `env:"IGDB_KEY,required,notEmpty"`
	IGDBClient     string `env:"IGDB_CLIENT,required,notEmpty"`

	Environment Environment `env:"ENV"       envDefault:"local"`
	Port        string      `env:"PORT"      envDefault:"8080"`
	LogLevel    slog.Level  `env:"LOG_LEVEL" envDefault:"info"`

	// ContentDir is the local checkout the catalogue index is built from.
	ContentDir string `env:"CONTENT_DIR" envDefault:"content"`
	// ContentPrefix is where the catalogue lives inside the remote repository.
	ContentPrefix string `env:"CONTENT_PREFIX" envDefault:"content"`
	DBPath        string `env:"DB_PATH"        envDefault:"data/catalogue.db"`

	GitHubAPIBase  string `env:"GITHUB_API_BASE" envDefault:"https://api.github.com"`
	GitHubBranch   string `env:"GITHUB_BRANCH"`
	GitHubDryRun   bool   `env:"GITHUB_DRY_RUN"  envDefault:"false"`
	CommitterName  string `env:"COMMITTER_NAME"  envDefault:"Catalogue Bot"`
	CommitterEmail string `env:"COMMITTER_EMAIL" envDefault:"catalogue@users.noreply.github.com"`

	AllowedOrigins  []string      `env:"ALLOWED_ORIGINS"  envDefault:"*" envSeparator:","`
	OutboundTimeout time.Duration `env:"OUTBOUND_TIMEOUT" envDefault:"10s"`
	IGDBRate        float64       `env:"IGDB_RATE"        envDefault:"4"`
}

// Load reads the process environment.
func Load() (*Config, error) {
	return load(env.Options{})
}

// LoadFrom reads configuration from the given variables instead of the
// process environment.
func LoadFrom(vars map[string]string) (*Config, error) {
	return load(env.Options{Environment: vars})
}

func load(opts env.Options) (*Config, error) {
	cfg, err := env.ParseAsWithOptions[Config](opts)
	if err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	var errs []error
	if !c.Environment.Valid() {
		errs = append(errs, fmt.Errorf("ENV: unknown environment %q", c.Environment))
	}
	if _, _, err := c.Repo(); err != nil {
		errs = append(errs, err)
	}
	if c.OutboundTimeout <= 0 {
		errs = append(errs, errors.New("OUTBOUND_TIMEOUT must be positive"))
	}
	if c.IGDBRate <= 0 {
		errs = append(errs, errors.New("IGDB_RATE must be positive"))
	}
	return errors.Join(errs...)
}

// Repo splits GITHUB_REPO into owner and name.
func (c *Config) Repo() (owner, name string, err error) {
	owner, name, ok := strings.Cut(strings.TrimSpace(c.GitHubRepo), "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return "", "", fmt.Errorf("GITHUB_REPO: want owner/repo, got %q", c.GitHubRepo)
	}
	return owner, name, nil
}

func (c *Config) Production() bool { return c.Environment == Production }
