package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"git.home.luguber.info/inful/ncms/internal/config"
	"git.home.luguber.info/inful/ncms/internal/eventstore"
	"git.home.luguber.info/inful/ncms/internal/foundation/errors"
)

// HistoryCmd implements the 'history' command.
type HistoryCmd struct {
	Limit int  `short:"n" help:"Number of runs to show" default:"20"`
	JSON  bool `name:"json" help:"Print runs as JSON"`
}

func (h *HistoryCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(g, root)
	if err != nil {
		return err
	}
	return h.print(context.Background(), cfg, os.Stdout)
}

func (h *HistoryCmd) print(ctx context.Context, cfg *config.Config, w io.Writer) error {
	if cfg.State.Database == "" {
		return errors.ConfigError("state.database is not set; run history is not recorded").
			WithContext("key", "state.database").
			Build()
	}
	store, err := eventstore.NewSQLiteStore(cfg.State.Database)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	projection := eventstore.NewRunHistoryProjection(store, h.Limit)
	if err := projection.Rebuild(ctx); err != nil {
		return err
	}
	runs := projection.GetHistory()

	if h.JSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(runs)
	}

	if len(runs) == 0 {
		_, _ = fmt.Fprintln(w, "No runs recorded")
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "STARTED\tRUN\tCOMMAND\tSTATUS\tARTICLES\tPUSHED\tCOMMIT\tDURATION\tERROR")
	for _, r := range runs {
		commit := r.Commit
		if len(commit) > 8 {
			commit = commit[:8]
		}
		errText := ""
		if r.ErrorStage != "" {
			errText = r.ErrorStage + ": " + r.ErrorMessage
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%t\t%s\t%s\t%s\n",
			r.StartedAt.Local().Format(time.DateTime),
			r.RunID,
			r.Command,
			r.Status,
			r.Articles,
			r.Pushed,
			commit,
			r.Duration.Round(time.Millisecond),
			errText)
	}
	return tw.Flush()
}
