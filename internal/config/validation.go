package config

import (
	"fmt"
	"time"

	"git.home.luguber.info/inful/ncms/internal/foundation/errors"
)

// Validate checks structural settings. It does not require source
// credentials; use ValidateForRun before talking to the content source.
func (c *Config) Validate() error {
	if NormalizeRetryBackoff(string(c.Notion.Retry.Backoff)) == "" {
		return invalid("notion.retry.backoff", string(c.Notion.Retry.Backoff), "must be fixed, linear or exponential")
	}
	if c.Notion.Retry.MaxRetries < 0 {
		return invalid("notion.retry.max_retries", fmt.Sprint(c.Notion.Retry.MaxRetries), "must be a non-negative integer")
	}
	if _, _, err := c.RetryDelays(); err != nil {
		return err
	}
	if NormalizeGitBackend(string(c.Git.Backend)) == "" {
		return invalid("git.backend", string(c.Git.Backend), "must be gogit or cli")
	}
	if a := c.Git.Auth; !a.IsZero() {
		switch a.Type {
		case AuthTypeToken:
			if a.Token == "" {
				return invalid("git.auth.token", "", "token auth requires a token")
			}
		case AuthTypeBasic:
			if a.Username == "" || a.Password == "" {
				return invalid("git.auth", string(a.Type), "basic auth requires username and password")
			}
		case AuthTypeSSH:
		default:
			return invalid("git.auth.type", string(a.Type), "must be none, ssh, token or basic")
		}
	}
	return nil
}

// ValidateForRun checks what a pipeline run needs before any fetch.
func (c *Config) ValidateForRun() error {
	if c.Notion.DatabaseID == "" {
		return errors.ConfigError(EnvNotionDatabaseID + " is not set").
			WithContext("key", EnvNotionDatabaseID).
			Build()
	}
	if c.Notion.APIKey == "" {
		return errors.ConfigError(EnvNotionAPIKey + " is not set").
			WithContext("key", EnvNotionAPIKey).
			Build()
	}
	return nil
}

// RetryDelays parses the configured initial and maximum retry delays.
func (c *Config) RetryDelays() (initial, maxDelay time.Duration, err error) {
	initial, err = time.ParseDuration(c.Notion.Retry.InitialDelay)
	if err != nil {
		return 0, 0, invalid("notion.retry.initial_delay", c.Notion.Retry.InitialDelay, "must be a duration")
	}
	maxDelay, err = time.ParseDuration(c.Notion.Retry.MaxDelay)
	if err != nil {
		return 0, 0, invalid("notion.retry.max_delay", c.Notion.Retry.MaxDelay, "must be a duration")
	}
	return initial, maxDelay, nil
}

func invalid(field, value, reason string) error {
	return errors.ConfigError(fmt.Sprintf("invalid %s %q: %s", field, value, reason)).
		WithContext("field", field).
		Build()
}
