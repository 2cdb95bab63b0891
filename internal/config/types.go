package config

import "strings"

// RetryBackoffMode enumerates supported backoff strategies for retries.
type RetryBackoffMode string

const (
	RetryBackoffFixed       RetryBackoffMode = "fixed"
	RetryBackoffLinear      RetryBackoffMode = "linear"
	RetryBackoffExponential RetryBackoffMode = "exponential"
)

// NormalizeRetryBackoff converts arbitrary user input (case-insensitive) into a typed mode, returning empty string for unknown.
func NormalizeRetryBackoff(raw string) RetryBackoffMode {
	switch RetryBackoffMode(normalize(raw)) {
	case RetryBackoffFixed:
		return RetryBackoffFixed
	case RetryBackoffLinear:
		return RetryBackoffLinear
	case RetryBackoffExponential:
		return RetryBackoffExponential
	default:
		return ""
	}
}

// LogLevel enumerates supported logging levels.
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// NormalizeLogLevel maps raw input to a level, defaulting to info.
func NormalizeLogLevel(raw string) LogLevel {
	switch normalize(raw) {
	case "debug":
		return LogLevelDebug
	case "warn", "warning":
		return LogLevelWarn
	case "error":
		return LogLevelError
	default:
		return LogLevelInfo
	}
}

// LogFormat enumerates supported log output formats.
type LogFormat string

const (
	LogFormatJSON LogFormat = "json"
	LogFormatText LogFormat = "text"
)

// NormalizeLogFormat maps raw input to a format, defaulting to text.
func NormalizeLogFormat(raw string) LogFormat {
	if normalize(raw) == string(LogFormatJSON) {
		return LogFormatJSON
	}
	return LogFormatText
}

// GitBackend selects the implementation of the publish step.
type GitBackend string

const (
	GitBackendGoGit GitBackend = "gogit"
	GitBackendCLI   GitBackend = "cli"
)

// NormalizeGitBackend returns empty string for unknown input.
func NormalizeGitBackend(raw string) GitBackend {
	switch normalize(raw) {
	case "gogit", "go-git":
		return GitBackendGoGit
	case "cli", "exec", "git":
		return GitBackendCLI
	default:
		return ""
	}
}

// AuthType enumerates supported authentication methods (stringly for YAML compatibility)
type AuthType string

const (
	AuthTypeNone  AuthType = "none"
	AuthTypeSSH   AuthType = "ssh"
	AuthTypeToken AuthType = "token"
	AuthTypeBasic AuthType = "basic"
)

// AuthConfig represents push authentication for the go-git backend.
type AuthConfig struct {
	Type     AuthType `yaml:"type"` // ssh|token|basic|none
	Username string   `yaml:"username,omitempty"`
	Password string   `yaml:"password,omitempty"`
	Token    string   `yaml:"token,omitempty"`
	KeyPath  string   `yaml:"key_path,omitempty"`
}

// IsZero reports whether no auth method specified.
func (a *AuthConfig) IsZero() bool { return a == nil || a.Type == "" || a.Type == AuthTypeNone }

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
