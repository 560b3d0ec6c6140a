/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package config loads and validates the process configuration from the environment.
package config

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"chainguard.dev/issueassist/agents/executor/poll"
	"github.com/sethvargo/go-envconfig"
)

// ErrInvalid is wrapped by every configuration error.
var ErrInvalid = errors.New("invalid configuration")

// Config is the process configuration.
type Config struct {
	Repository string `env:"GITHUB_REPOSITORY,required"`
	EventPath  string `env:"GITHUB_EVENT_PATH,required"`
	EventName  string `env:"GITHUB_EVENT_NAME,required"`
	// StepSummary is the file the run report is appended to, when set.
	StepSummary string `env:"GITHUB_STEP_SUMMARY"`

	AssistantID   string `env:"ASSISTANT_ID,required"`
	GitHubToken   string `env:"GITHUB_TOKEN,required"`
	OpenAIAPIKey  string `env:"OPENAI_API_KEY,required"`
	OpenAIBaseURL string `env:"OPENAI_BASE_URL"`
	GitHubAPIURL  string `env:"GITHUB_API_URL,default=https://api.github.com/"`

	PollInterval  time.Duration `env:"INDEX_POLL_INTERVAL,default=1s"`
	MaxIndexWait  time.Duration `env:"INDEX_MAX_WAIT,default=10m"`
	MaxToolRounds int           `env:"MAX_TOOL_ROUNDS,default=25"`
	MaxRelated    int           `env:"RELATED_ISSUES_MAX,default=5"`
	OverrideTools bool          `env:"ASSISTANT_OVERRIDE_TOOLS,default=false"`
}

// Load populates a Config from the process environment and validates it.
func Load(ctx context.Context) (*Config, error) {
	return load(ctx, envconfig.OsLookuper())
}

// LoadFrom is Load reading from the given variables instead of the process environment.
func LoadFrom(ctx context.Context, env map[string]string) (*Config, error) {
	return load(ctx, envconfig.MapLookuper(env))
}

func load(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: l,
	}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the values envconfig cannot.
func (c *Config) Validate() error {
	owner, repo, ok := strings.Cut(c.Repository, "/")
	if !ok || owner == "" || repo == "" || strings.Contains(repo, "/") {
		return fmt.Errorf("%w: GITHUB_REPOSITORY must be owner/repo, got %q", ErrInvalid, c.Repository)
	}

	switch c.EventName {
	case "issues", "workflow_dispatch":
	default:
		return fmt.Errorf("%w: unsupported GITHUB_EVENT_NAME %q", ErrInvalid, c.EventName)
	}

	if u, err := url.Parse(c.GitHubAPIURL); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: GITHUB_API_URL %q is not an absolute URL", ErrInvalid, c.GitHubAPIURL)
	}
	if c.OpenAIBaseURL != "" {
		if u, err := url.Parse(c.OpenAIBaseURL); err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("%w: OPENAI_BASE_URL %q is not an absolute URL", ErrInvalid, c.OpenAIBaseURL)
		}
	}

	if err := c.Poll().Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if c.MaxIndexWait <= 0 {
		return fmt.Errorf("%w: INDEX_MAX_WAIT must be positive, got %s", ErrInvalid, c.MaxIndexWait)
	}
	if c.MaxToolRounds <= 0 {
		return fmt.Errorf("%w: MAX_TOOL_ROUNDS must be positive, got %d", ErrInvalid, c.MaxToolRounds)
	}
	if c.MaxRelated <= 0 {
		return fmt.Errorf("%w: RELATED_ISSUES_MAX must be positive, got %d", ErrInvalid, c.MaxRelated)
	}
	return nil
}

// Owner returns the repository owner.
func (c *Config) Owner() string {
	owner, _, _ := strings.Cut(c.Repository, "/")
	return owner
}

// Repo returns the repository name.
func (c *Config) Repo() string {
	_, repo, _ := strings.Cut(c.Repository, "/")
	return repo
}

// Poll returns the retrieval index polling configuration.
func (c *Config) Poll() poll.Config {
	return poll.Config{
		Interval: c.PollInterval,
		MaxWait:  c.MaxIndexWait,
	}
}
