package cmd

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/chris-regnier/daybook/internal/agenda"
	"github.com/chris-regnier/daybook/internal/civil"
	"github.com/chris-regnier/daybook/internal/ui"
	"github.com/spf13/cobra"
)

var (
	overviewFrom string
	overviewTo   string
)

var overviewCmd = &cobra.Command{
	Use:   "overview",
	Short: "Show work, due todos and anniversaries for a date range",
	Long: `Show the merged overview for an inclusive date range.

Without --from and --to the current Monday-to-Sunday week is shown.`,
	Example: `  daybook overview
  daybook overview --from 2026-06-01 --to 2026-06-30
  daybook overview --json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return overviewRun(os.Stdout, overviewFrom, overviewTo)
	},
}

func overviewRun(w io.Writer, from, to string) error {
	if from == "" && to == "" {
		start, end := civil.WeekOf(svc.Today())
		from, to = start.String(), end.String()
	}

	items, err := svc.Overview(context.Background(), appConfig.Owner, from, to)
	if err != nil {
		return err
	}

	if jsonOutput {
		return ui.FormatJSON(w, agenda.NewOverviewResponse(items))
	}

	theme := ui.ResolveTheme(appConfig.Theme)
	var buf bytes.Buffer
	ui.FormatOverview(&buf, items, theme)
	return ui.Page(w, buf.String(), ui.PageOptions{
		Title:    fmt.Sprintf("Overview %s to %s", from, to),
		MaxWidth: appConfig.MaxWidth,
		Theme:    theme,
	})
}

func init() {
	overviewCmd.Flags().StringVar(&overviewFrom, "from", "", "first date, YYYY-MM-DD (inclusive)")
	overviewCmd.Flags().StringVar(&overviewTo, "to", "", "last date, YYYY-MM-DD (inclusive)")
	rootCmd.AddCommand(overviewCmd)
}
