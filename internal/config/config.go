// Package config loads workflow-agent settings. Sources, highest first:
// command-line flags (applied by the caller), the process environment, a
// .env file, and an optional YAML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	yaml "gopkg.in/yaml.v3"

	"github.com/yule44ka/workflow-agent/internal/logging"
	"github.com/yule44ka/workflow-agent/internal/youtrack"
)

// Environment variables.
const (
	EnvURL            = "YOUTRACK_URL"
	EnvDomain         = "DOMAIN" // older name for EnvURL
	EnvToken          = "YOUTRACK_TOKEN"
	EnvTimeout        = "WORKFLOW_AGENT_TIMEOUT"
	EnvRuleSetTimeout = "WORKFLOW_AGENT_RULESET_TIMEOUT"
	EnvParallel       = "WORKFLOW_AGENT_PARALLEL"
	EnvLogLevel       = "WORKFLOW_AGENT_LOG_LEVEL"
	EnvLogFormat      = "WORKFLOW_AGENT_LOG_FORMAT"
	EnvDocsDir        = "WORKFLOW_AGENT_DOCS_DIR"
)

// DefaultEnvFile is read when LoadOptions.EnvFile is empty.
const DefaultEnvFile = ".env"

var (
	ErrMissingBaseURL = errors.New("youtrack url is not set (set " + EnvURL + " or " + EnvDomain + ")")
	ErrMissingToken   = errors.New("youtrack token is not set (set " + EnvToken + " or token_file)")
)

// Config holds everything needed to talk to YouTrack and run investigations.
type Config struct {
	BaseURL        string        `yaml:"base_url"`
	Token          string        `yaml:"token"`
	TokenFile      string        `yaml:"token_file"`
	Timeout        time.Duration `yaml:"timeout"`
	RuleSetTimeout time.Duration `yaml:"ruleset_timeout"`
	Parallel       int           `yaml:"parallel"`
	LogLevel       string        `yaml:"log_level"`
	LogFormat      string        `yaml:"log_format"`
	DocsDir        string        `yaml:"docs_dir"`
}

// Defaults returns the configuration used when no source sets a value.
func Defaults() Config {
	return Config{
		Timeout:        30 * time.Second,
		RuleSetTimeout: 20 * time.Second,
		LogLevel:       "info",
		LogFormat:      "text",
	}
}

// LoadOptions selects the files Load reads.
type LoadOptions struct {
	// ConfigPath is an optional YAML file. When set it must exist.
	ConfigPath string
	// EnvFile is a dotenv file; a missing file is ignored.
	EnvFile string
	// LookupEnv reads the process environment. Defaults to os.LookupEnv.
	LookupEnv func(string) (string, bool)
}

// Load merges the YAML file, the .env file and the environment over
// Defaults. Credentials are not required here; see RequireCredentials.
func Load(opts LoadOptions) (*Config, error) {
	cfg := Defaults()

	if opts.ConfigPath != "" {
		data, err := os.ReadFile(opts.ConfigPath)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config yaml %s: %w", opts.ConfigPath, err)
		}
	}

	envFile := opts.EnvFile
	if envFile == "" {
		envFile = DefaultEnvFile
	}
	dotenv, err := godotenv.Read(envFile)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read env file %s: %w", envFile, err)
		}
		dotenv = map[string]string{}
	}

	lookup := opts.LookupEnv
	if lookup == nil {
		lookup = os.LookupEnv
	}
	get := func(key string) (string, bool) {
		if v, ok := lookup(key); ok && v != "" {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok && v != ""
	}

	if err := cfg.applyEnv(get); err != nil {
		return nil, err
	}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv(get func(string) (string, bool)) error {
	if v, ok := get(EnvURL); ok {
		c.BaseURL = v
	} else if v, ok := get(EnvDomain); ok {
		c.BaseURL = v
	}
	if v, ok := get(EnvToken); ok {
		c.Token = v
	}
	if v, ok := get(EnvLogLevel); ok {
		c.LogLevel = v
	}
	if v, ok := get(EnvLogFormat); ok {
		c.LogFormat = v
	}
	if v, ok := get(EnvDocsDir); ok {
		c.DocsDir = v
	}
	for _, d := range []struct {
		key string
		dst *time.Duration
	}{
		{EnvTimeout, &c.Timeout},
		{EnvRuleSetTimeout, &c.RuleSetTimeout},
	} {
		v, ok := get(d.key)
		if !ok {
			continue
		}
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", d.key, err)
		}
		*d.dst = parsed
	}
	if v, ok := get(EnvParallel); ok {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s: %w", EnvParallel, err)
		}
		c.Parallel = n
	}
	return nil
}

// normalize checks values that do not depend on credentials.
func (c *Config) normalize() error {
	c.BaseURL = youtrack.NormalizeBaseURL(c.BaseURL)
	c.Token = strings.TrimSpace(c.Token)
	if c.Timeout < 0 || c.RuleSetTimeout < 0 {
		return errors.New("timeouts must not be negative")
	}
	if c.Parallel < 0 {
		return fmt.Errorf("parallel must not be negative, got %d", c.Parallel)
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if !logging.ValidFormat(c.LogFormat) {
		return fmt.Errorf("unknown log format %q (want text or json)", c.LogFormat)
	}
	return nil
}

// RequireCredentials resolves the token file if needed and fails when the
// URL or token is missing.
func (c *Config) RequireCredentials() error {
	if c.BaseURL == "" {
		return ErrMissingBaseURL
	}
	if c.Token == "" && c.TokenFile != "" {
		tok, err := youtrack.ReadToken(c.TokenFile)
		if err != nil {
			return fmt.Errorf("read token file: %w", err)
		}
		c.Token = tok
	}
	if c.Token == "" {
		return ErrMissingToken
	}
	return nil
}

// NewClient builds a YouTrack client from c. Call RequireCredentials first.
func (c *Config) NewClient(opts ...youtrack.Option) (*youtrack.Client, error) {
	all := append([]youtrack.Option{youtrack.WithTimeout(c.Timeout)}, opts...)
	return youtrack.New(c.BaseURL, c.Token, all...)
}
