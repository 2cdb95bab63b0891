package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Environment keys recognized on top of the YAML file.
const (
	EnvNotionAPIKey         = "NOTION_API_KEY"
	EnvNotionDatabaseID     = "NOTION_DATABASE_ID"
	EnvNotionAPIURL         = "NOTION_API_URL"
	EnvNotionVersion        = "NOTION_VERSION"
	EnvNotionStatusProperty = "NOTION_STATUS_PROPERTY"
	EnvOutputDir            = "OUTPUT_DIR"
	EnvProjectDir           = "PROJECT_DIR"
	EnvSiteBaseURL          = "SITE_BASE_URL"
	EnvPublishBranch        = "NCMS_PUBLISH_BRANCH"
	EnvGitRemote            = "NCMS_GIT_REMOTE"
	EnvGitBackend           = "NCMS_GIT_BACKEND"
	EnvGitAuthType          = "GIT_AUTH_TYPE"
	EnvGitToken             = "GIT_TOKEN"
	EnvGitUsername          = "GIT_USERNAME"
	EnvGitPassword          = "GIT_PASSWORD"
	EnvGitSSHKeyPath        = "GIT_SSH_KEY_PATH"
	EnvGitAuthorName        = "GIT_AUTHOR_NAME"
	EnvGitAuthorEmail       = "GIT_AUTHOR_EMAIL"
	EnvURLSeparator         = "NCMS_URL_SEPARATOR"
	EnvLogLevel             = "NCMS_LOG_LEVEL"
	EnvLogFormat            = "NCMS_LOG_FORMAT"
	EnvStateDB              = "NCMS_STATE_DB"
	EnvMetricsFile          = "NCMS_METRICS_FILE"
	EnvNATSURL              = "NATS_URL"
	EnvNATSSubject          = "NATS_SUBJECT"
	EnvSourceMaxRetries     = "NCMS_SOURCE_MAX_RETRIES"
	EnvSourceRetryBackoff   = "NCMS_SOURCE_RETRY_BACKOFF"
)

// loadEnvFiles loads the first of .env/.env.local that exists. Variables
// already present in the process environment are not overwritten.
func loadEnvFiles() (string, error) {
	for _, path := range []string{".env", ".env.local"} {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return path, err
		}
		return path, nil
	}
	return "", nil
}

type lookupFunc func(string) (string, bool)

// applyEnv overrides file values with any non-empty environment values.
func applyEnv(cfg *Config, lookup lookupFunc) {
	set := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	set(EnvNotionAPIKey, &cfg.Notion.APIKey)
	set(EnvNotionDatabaseID, &cfg.Notion.DatabaseID)
	set(EnvNotionAPIURL, &cfg.Notion.APIURL)
	set(EnvNotionVersion, &cfg.Notion.Version)
	set(EnvNotionStatusProperty, &cfg.Notion.StatusProperty)
	set(EnvOutputDir, &cfg.Output.Directory)
	set(EnvURLSeparator, &cfg.Output.URLSeparator)
	set(EnvProjectDir, &cfg.Site.ProjectDir)
	set(EnvSiteBaseURL, &cfg.Site.BaseURL)
	set(EnvPublishBranch, &cfg.Git.Branch)
	set(EnvGitRemote, &cfg.Git.Remote)
	set(EnvGitAuthorName, &cfg.Git.AuthorName)
	set(EnvGitAuthorEmail, &cfg.Git.AuthorEmail)
	set(EnvStateDB, &cfg.State.Database)
	set(EnvMetricsFile, &cfg.Metrics.TextfilePath)
	set(EnvNATSURL, &cfg.Notify.NATSURL)
	set(EnvNATSSubject, &cfg.Notify.Subject)

	if v, ok := lookup(EnvGitBackend); ok && v != "" {
		cfg.Git.Backend = GitBackend(v)
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		cfg.Logging.Level = LogLevel(v)
	}
	if v, ok := lookup(EnvLogFormat); ok && v != "" {
		cfg.Logging.Format = LogFormat(v)
	}
	if v, ok := lookup(EnvSourceRetryBackoff); ok && v != "" {
		cfg.Notion.Retry.Backoff = RetryBackoffMode(v)
	}
	if v, ok := lookup(EnvSourceMaxRetries); ok && v != "" {
		// Unparseable values are caught by Validate via a negative sentinel.
		n, err := strconv.Atoi(v)
		if err != nil {
			n = -1
		}
		cfg.Notion.Retry.MaxRetries = n
	}

	applyAuthEnv(cfg, lookup)
}

func applyAuthEnv(cfg *Config, lookup lookupFunc) {
	authType, _ := lookup(EnvGitAuthType)
	token, _ := lookup(EnvGitToken)
	user, _ := lookup(EnvGitUsername)
	pass, _ := lookup(EnvGitPassword)
	key, _ := lookup(EnvGitSSHKeyPath)
	if authType == "" && token == "" && user == "" && pass == "" && key == "" {
		return
	}

	if cfg.Git.Auth == nil {
		cfg.Git.Auth = &AuthConfig{}
	}
	a := cfg.Git.Auth
	if authType != "" {
		a.Type = AuthType(normalize(authType))
	}
	if token != "" {
		a.Token = token
	}
	if user != "" {
		a.Username = user
	}
	if pass != "" {
		a.Password = pass
	}
	if key != "" {
		a.KeyPath = key
	}

	// Infer the method from the credentials present when no type was given.
	if a.Type == "" {
		switch {
		case a.Token != "":
			a.Type = AuthTypeToken
		case a.KeyPath != "":
			a.Type = AuthTypeSSH
		case a.Username != "" && a.Password != "":
			a.Type = AuthTypeBasic
		}
	}
}
