package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/chris-regnier/daybook/internal/civil"
	"github.com/chris-regnier/daybook/internal/ical"
	"github.com/spf13/cobra"
)

var (
	exportFrom   string
	exportTo     string
	exportOutput string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export rules, work entries and todos as iCalendar",
	Long: `Export the owner's calendar as an iCalendar (.ics) document.

Rules are always exported in full as recurring all-day events. Work entries
and due todos are limited to --from/--to, which default to the configured
export window around today.`,
	Example: `  daybook export > daybook.ics
  daybook export --from 2026-01-01 --to 2026-12-31 -o 2026.ics`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		w := io.Writer(os.Stdout)
		if exportOutput != "" {
			f, err := os.Create(exportOutput)
			if err != nil {
				return fmt.Errorf("creating %s: %w", exportOutput, err)
			}
			defer f.Close()
			w = f
		}
		return exportRun(w, exportFrom, exportTo)
	},
}

func exportRun(w io.Writer, from, to string) error {
	today := svc.Today()
	start := today.AddDays(-exportPastDays())
	end := today.AddDays(exportFutureDays())
	if from != "" || to != "" {
		var err error
		start, end, err = civil.ParseRange(from, to)
		if err != nil {
			return err
		}
	}

	feed, err := svc.Feed(context.Background(), appConfig.Owner, start, end)
	if err != nil {
		return err
	}
	return ical.Write(w, feed)
}

func exportPastDays() int {
	if appConfig.Web.ExportPastDays > 0 {
		return appConfig.Web.ExportPastDays
	}
	return 90
}

func exportFutureDays() int {
	if appConfig.Web.ExportFutureDays > 0 {
		return appConfig.Web.ExportFutureDays
	}
	return 365
}

func init() {
	exportCmd.Flags().StringVar(&exportFrom, "from", "", "first date, YYYY-MM-DD")
	exportCmd.Flags().StringVar(&exportTo, "to", "", "last date, YYYY-MM-DD")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "write to file instead of stdout")
	rootCmd.AddCommand(exportCmd)
}
