package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/chris-regnier/daybook/internal/civil"
	"github.com/chris-regnier/daybook/internal/editor"
	"github.com/chris-regnier/daybook/internal/entry"
	"github.com/chris-regnier/daybook/internal/storage"
	"github.com/chris-regnier/daybook/internal/ui"
	"github.com/spf13/cobra"
)

var (
	logEdit bool
	logSet  string
)

var logCmd = &cobra.Command{
	Use:   "log [date]",
	Short: "View or write the day log for a date",
	Long: `View or write the free-form day log for a date. Defaults to today.

With --edit the log opens in $EDITOR; with --set the given text replaces it.`,
	Example: `  daybook log
  daybook log 2026-03-14 --edit
  daybook log --set "Quiet Saturday."`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		date := svc.Today()
		if len(args) == 1 {
			d, err := parseDateArg(args[0])
			if err != nil {
				return err
			}
			date = d
		}

		switch {
		case cmd.Flags().Changed("set"):
			return logSetRun(os.Stdout, date, logSet)
		case logEdit:
			return logEditRun(os.Stdout, date)
		default:
			return logShowRun(os.Stdout, date)
		}
	},
	PostRunE: invalidateCachePostRun,
}

func logShowRun(w io.Writer, date civil.Date) error {
	d, err := store.GetDayLog(context.Background(), appConfig.Owner, date)
	if errors.Is(err, storage.ErrNotFound) {
		if jsonOutput {
			return ui.FormatJSON(w, nil)
		}
		fmt.Fprintf(w, "No day log for %s.\n", date)
		return nil
	}
	if err != nil {
		return err
	}

	if jsonOutput {
		return ui.FormatJSON(w, d)
	}
	fmt.Fprintln(w, d.Content)
	return nil
}

func logSetRun(w io.Writer, date civil.Date, content string) error {
	d, err := store.PutDayLog(context.Background(), entry.DayLog{
		Owner:   appConfig.Owner,
		Date:    date,
		Content: content,
	})
	if err != nil {
		return err
	}
	return reportDayLog(w, d, true)
}

func logEditRun(w io.Writer, date civil.Date) error {
	current := ""
	existing, err := store.GetDayLog(context.Background(), appConfig.Owner, date)
	switch {
	case err == nil:
		current = existing.Content
	case !errors.Is(err, storage.ErrNotFound):
		return err
	}

	ed := editor.Session{Command: editor.Resolve(appConfig.Editor), Hint: "day log for " + date.String()}
	res, err := ed.Run(context.Background(), current)
	if err != nil {
		return fmt.Errorf("editor: %w", err)
	}
	if !res.Changed {
		if jsonOutput {
			return ui.FormatJSON(w, ui.DayLogResult{Date: date.String(), Changed: false})
		}
		fmt.Fprintf(w, "No changes to the day log for %s.\n", date)
		return nil
	}
	return logSetRun(w, date, res.Content)
}

func reportDayLog(w io.Writer, d entry.DayLog, changed bool) error {
	if jsonOutput {
		return ui.FormatJSON(w, ui.DayLogResult{Date: d.Date.String(), Preview: d.Preview(60), Changed: changed})
	}
	fmt.Fprintf(w, "Saved day log for %s: %s\n", d.Date, d.Preview(60))
	return nil
}

func init() {
	logCmd.Flags().BoolVarP(&logEdit, "edit", "e", false, "open the day log in $EDITOR")
	logCmd.Flags().StringVar(&logSet, "set", "", "replace the day log with this text")
	rootCmd.AddCommand(logCmd)
}
