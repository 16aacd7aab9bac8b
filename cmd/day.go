package cmd

import (
	"bytes"
	"context"
	"io"
	"os"
	"strings"

	"github.com/chris-regnier/daybook/internal/agenda"
	"github.com/chris-regnier/daybook/internal/ui"
	"github.com/spf13/cobra"
)

var dayCmd = &cobra.Command{
	Use:   "day [date]",
	Short: "Show the day log and anniversaries for a date",
	Long:  "Show the day log and the recurring anniversaries falling on a date. Defaults to today.",
	Example: `  daybook day
  daybook day 2026-06-01
  daybook day 2026-06-01 --json`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		date := ""
		if len(args) == 1 {
			date = strings.TrimSpace(args[0])
		}
		return dayRun(os.Stdout, date)
	},
}

func dayRun(w io.Writer, date string) error {
	if date == "" {
		date = svc.Today().String()
	}

	detail, err := svc.Day(context.Background(), appConfig.Owner, date)
	if err != nil {
		return err
	}

	if jsonOutput {
		return ui.FormatJSON(w, agenda.NewDayResponse(detail))
	}

	theme := ui.ResolveTheme(appConfig.Theme)
	var buf bytes.Buffer
	ui.FormatDayDetail(&buf, detail, theme, markdownWidth())
	return ui.Page(w, buf.String(), ui.PageOptions{MaxWidth: appConfig.MaxWidth, Theme: theme})
}

// markdownWidth is the wrap width for rendered day logs.
func markdownWidth() int {
	if appConfig.MaxWidth > 0 && appConfig.MaxWidth < 80 {
		return appConfig.MaxWidth
	}
	return 80
}

func init() {
	rootCmd.AddCommand(dayCmd)
}
