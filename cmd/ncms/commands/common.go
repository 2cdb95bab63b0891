package commands

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/ncms/internal/config"
	"git.home.luguber.info/inful/ncms/internal/observability"
)

// Global carries state shared by subcommands.
type Global struct {
	Logger *slog.Logger
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"ncms.yaml" type:"path"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Publish  PublishCmd  `cmd:"" default:"1" help:"Export articles marked for publishing, push the site and mark them published"`
	Export   ExportCmd   `cmd:"" help:"Regenerate the site artifacts without pushing or updating article status"`
	Schedule ScheduleCmd `cmd:"" help:"Run the publish pipeline periodically"`
	History  HistoryCmd  `cmd:"" help:"Show recent pipeline runs from the run ledger"`
	Init     InitCmd     `cmd:"" help:"Write an example configuration file"`
}

// AfterApply runs after flag parsing; sets up a default logger until the
// configuration is loaded.
func (c *CLI) AfterApply(g *Global) error {
	level := os.Getenv(config.EnvLogLevel)
	if c.Verbose {
		level = "debug"
	}
	g.Logger = observability.NewLogger(os.Stderr, level, os.Getenv(config.EnvLogFormat))
	slog.SetDefault(g.Logger)
	return nil
}

// loadConfig loads the configuration and replaces the logger with one
// honoring the configured level and format. -v always wins.
func loadConfig(g *Global, root *CLI) (*config.Config, error) {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return nil, err
	}
	level := string(cfg.Logging.Level)
	if root.Verbose {
		level = "debug"
	}
	g.Logger = observability.NewLogger(os.Stderr, level, string(cfg.Logging.Format))
	slog.SetDefault(g.Logger)
	return cfg, nil
}
