package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/ncms/internal/foundation/errors"
)

// Config is the single runtime configuration built at startup and injected
// into every component.
type Config struct {
	Notion  NotionConfig  `yaml:"notion"`
	Output  OutputConfig  `yaml:"output"`
	Site    SiteConfig    `yaml:"site"`
	Git     GitConfig     `yaml:"git"`
	Logging LoggingConfig `yaml:"logging"`
	State   StateConfig   `yaml:"state"`
	Metrics MetricsConfig `yaml:"metrics"`
	Notify  NotifyConfig  `yaml:"notify"`
}

// NotionConfig describes access to the content source.
type NotionConfig struct {
	APIKey         string `yaml:"api_key"`
	DatabaseID     string `yaml:"database_id"`
	APIURL         string `yaml:"api_url,omitempty"`
	Version        string `yaml:"version,omitempty"`
	StatusProperty string `yaml:"status_property,omitempty"`
	PublishValue   string `yaml:"publish_value,omitempty"`
	PublishedValue string `yaml:"published_value,omitempty"`
	Retry          Retry  `yaml:"retry,omitempty"`
}

// Retry configures retries of transient source failures. Disabled when
// MaxRetries is zero.
type Retry struct {
	MaxRetries   int              `yaml:"max_retries"`
	Backoff      RetryBackoffMode `yaml:"backoff,omitempty"`
	InitialDelay string           `yaml:"initial_delay,omitempty"`
	MaxDelay     string           `yaml:"max_delay,omitempty"`
}

// OutputConfig locates the site tree receiving generated artifacts.
type OutputConfig struct {
	Directory string `yaml:"directory"`
	// URLSeparator replaces "/" in slugs for the URL table path column.
	URLSeparator string `yaml:"url_separator,omitempty"`
}

// SiteConfig describes the deployable project wrapping the output tree.
type SiteConfig struct {
	ProjectDir string `yaml:"project_dir"`
	BaseURL    string `yaml:"base_url"`
}

// GitConfig controls the publish step.
type GitConfig struct {
	Backend       GitBackend  `yaml:"backend,omitempty"`
	Remote        string      `yaml:"remote,omitempty"`
	Branch        string      `yaml:"branch,omitempty"`
	AuthorName    string      `yaml:"author_name,omitempty"`
	AuthorEmail   string      `yaml:"author_email,omitempty"`
	CommitMessage string      `yaml:"commit_message,omitempty"`
	Auth          *AuthConfig `yaml:"auth,omitempty"`
}

// LoggingConfig selects the slog handler.
type LoggingConfig struct {
	Level  LogLevel  `yaml:"level,omitempty"`
	Format LogFormat `yaml:"format,omitempty"`
}

// StateConfig locates the SQLite run ledger. Empty disables the ledger.
type StateConfig struct {
	Database string `yaml:"database,omitempty"`
}

// MetricsConfig enables Prometheus textfile output when TextfilePath is set.
type MetricsConfig struct {
	TextfilePath string `yaml:"textfile_path,omitempty"`
}

// NotifyConfig enables NATS publish notifications when URL is set.
type NotifyConfig struct {
	NATSURL string `yaml:"nats_url,omitempty"`
	Subject string `yaml:"subject,omitempty"`
}

// Paths of the artifacts derived from the output and project directories.

func (c *Config) RegistryPath() string {
	return filepath.Join(c.Output.Directory, "Config", "ID.tsv")
}

func (c *Config) RegistryIndexPath() string {
	return filepath.Join(c.Output.Directory, "config", "IDs.tsv")
}

func (c *Config) URLTablePath() string {
	return filepath.Join(c.Output.Directory, "Config", "Url.tsv")
}

func (c *Config) SitemapPath() string {
	return filepath.Join(c.Output.Directory, "Site", "sitemap.xml")
}

func (c *Config) ComponentDir() string {
	return filepath.Join(c.Output.Directory, "HTML", "Component")
}

func (c *Config) HostingConfigPath() string {
	return filepath.Join(c.Site.ProjectDir, "build", "firebase.json")
}

// RepositoryDir is the working tree the publish step commits in.
func (c *Config) RepositoryDir() string {
	if c.Site.ProjectDir != "" {
		return c.Site.ProjectDir
	}
	return c.Output.Directory
}

// Load builds the configuration: .env files, then the optional YAML file
// (with ${VAR} expansion), then environment overrides, then defaults.
// A missing configPath is not an error; an unreadable or malformed one is.
func Load(configPath string) (*Config, error) {
	if loaded, err := loadEnvFiles(); err != nil {
		slog.Warn("Failed to load .env file", "error", err)
	} else if loaded != "" {
		slog.Debug("Loaded environment file", "path", loaded)
	}

	cfg := &Config{}
	if configPath != "" {
		if err := readYAML(configPath, cfg); err != nil {
			return nil, err
		}
	}

	applyEnv(cfg, os.LookupEnv)
	applyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func readYAML(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			slog.Debug("No configuration file, using environment only", "path", path)
			return nil
		}
		return errors.WrapError(err, errors.CategoryConfig, "failed to read config file").
			WithContext("path", path).
			Fatal().
			Build()
	}

	expanded := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return errors.WrapError(err, errors.CategoryConfig, "failed to parse config file").
			WithContext("path", path).
			Fatal().
			Build()
	}
	return nil
}

// Init writes an example configuration file. It refuses to overwrite unless force is set.
func Init(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return errors.ValidationError(fmt.Sprintf("configuration file already exists: %s (use --force to overwrite)", path)).
			WithContext("path", path).
			Build()
	}

	example := &Config{
		Notion: NotionConfig{
			APIKey:     "${NOTION_API_KEY}",
			DatabaseID: "${NOTION_DATABASE_ID}",
			Retry:      Retry{MaxRetries: 0, Backoff: RetryBackoffExponential},
		},
		Output: OutputConfig{Directory: "./site/public"},
		Site:   SiteConfig{ProjectDir: "./site", BaseURL: DefaultBaseURL},
		Git: GitConfig{
			Backend: GitBackendGoGit,
			Remote:  DefaultRemote,
			Branch:  DefaultBranch,
			Auth:    &AuthConfig{Type: AuthTypeToken, Token: "${GIT_TOKEN}"},
		},
		Logging: LoggingConfig{Level: LogLevelInfo, Format: LogFormatText},
		State:   StateConfig{Database: "./.ncms/state.db"},
	}

	data, err := yaml.Marshal(example)
	if err != nil {
		return errors.WrapError(err, errors.CategoryInternal, "failed to marshal example config").Build()
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return errors.WrapError(err, errors.CategoryFileSystem, "failed to create config directory").
				WithContext("path", dir).
				Build()
		}
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to write config file").
			WithContext("path", path).
			Build()
	}
	return nil
}
