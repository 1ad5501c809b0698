package commands

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"git.home.luguber.info/inful/opsadapter/internal/eventstore"
	"git.home.luguber.info/inful/opsadapter/internal/foundation/errors"
	"git.home.luguber.info/inful/opsadapter/internal/report"
)

// ReportCmd implements the 'report' command.
type ReportCmd struct {
	Since   time.Duration `help:"Only include events newer than this age, e.g. 24h. Zero includes everything."`
	HTML    bool          `help:"Render HTML instead of markdown."`
	Summary bool          `help:"Print only the section outline."`
	Out     string        `short:"o" help:"Write the report to a file instead of stdout."`
}

func (r *ReportCmd) Run(_ *Global, root *CLI) error {
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	if cfg.EventStore.Path == "" {
		return errors.ConfigError("eventstore.path is not configured, nothing to report").Build()
	}

	store, err := eventstore.NewSQLiteStore(cfg.EventStore.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	var since time.Time
	if r.Since > 0 {
		since = time.Now().Add(-r.Since)
	}

	rep, err := report.Build(context.Background(), store, since)
	if err != nil {
		return err
	}

	output := report.RenderMarkdown(rep)
	if r.HTML || r.Summary {
		htmlDoc, err := report.RenderHTML(output)
		if err != nil {
			return err
		}
		output = htmlDoc
		if r.Summary {
			outline, err := report.Summary(htmlDoc)
			if err != nil {
				return err
			}
			output = outline
		}
	}

	if r.Out != "" {
		if err := os.WriteFile(r.Out, []byte(output), 0o644); err != nil {
			return errors.WrapError(err, errors.CategoryRuntime, "write report").
				WithContext("path", r.Out).
				Build()
		}
		return nil
	}
	fmt.Println(strings.TrimRight(output, "\n"))
	return nil
}
