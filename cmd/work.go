package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/chris-regnier/daybook/internal/civil"
	"github.com/chris-regnier/daybook/internal/entry"
	"github.com/chris-regnier/daybook/internal/ui"
	"github.com/spf13/cobra"
)

const localStampLayout = "2006-01-02 15:04"

// parseLocalTime accepts "YYYY-MM-DD HH:MM", or a bare date meaning local
// midnight, in loc.
func parseLocalTime(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.ParseInLocation(localStampLayout, s, loc); err == nil {
		return t, nil
	}
	d, err := civil.Parse(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: want \"YYYY-MM-DD HH:MM\" or YYYY-MM-DD, got %q", civil.ErrInvalidDate, s)
	}
	return d.Midnight(loc), nil
}

type workAddOptions struct {
	title string
	at    string
	end   string
	notes string
}

var workAddOpts workAddOptions

var workCmd = &cobra.Command{
	Use:   "work",
	Short: "Record and list work diary entries",
}

var workAddCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Record a work entry",
	Example: `  daybook work add "Sprint planning" --at "2026-03-09 09:30" --end "2026-03-09 10:30"
  daybook work add "Pairing on the importer"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := workAddOpts
		opts.title = args[0]
		return workAddRun(os.Stdout, opts, time.Now())
	},
	PostRunE: invalidateCachePostRun,
}

func workAddRun(w io.Writer, opts workAddOptions, now time.Time) error {
	loc := svc.Location()
	start := now.In(loc).Truncate(time.Minute)
	if opts.at != "" {
		t, err := parseLocalTime(opts.at, loc)
		if err != nil {
			return err
		}
		start = t
	}

	id, err := entry.NewID()
	if err != nil {
		return fmt.Errorf("generating ID: %w", err)
	}
	e := entry.WorkEntry{
		ID:        id,
		Owner:     appConfig.Owner,
		Title:     strings.TrimSpace(opts.title),
		Notes:     opts.notes,
		Start:     start,
		CreatedAt: now.UTC(),
		UpdatedAt: now.UTC(),
	}
	if opts.end != "" {
		t, err := parseLocalTime(opts.end, loc)
		if err != nil {
			return err
		}
		e.End = &t
	}
	if err := store.CreateWorkEntry(context.Background(), e); err != nil {
		return err
	}

	if jsonOutput {
		return ui.FormatJSON(w, e)
	}
	fmt.Fprintf(w, "Recorded work entry %s (%s)\n", e.ID, e.Start.In(loc).Format(localStampLayout))
	return nil
}

var (
	workListFrom string
	workListTo   string
)

var workListCmd = &cobra.Command{
	Use:   "list",
	Short: "List work entries in a date range",
	Long:  "List work entries whose start falls in an inclusive date range. Defaults to today.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return workListRun(os.Stdout, workListFrom, workListTo)
	},
}

func workListRun(w io.Writer, from, to string) error {
	if from == "" && to == "" {
		today := svc.Today().String()
		from, to = today, today
	} else if to == "" {
		to = from
	}
	start, end, err := civil.ParseRange(from, to)
	if err != nil {
		return err
	}

	loc := svc.Location()
	entries, err := store.ListWorkEntries(context.Background(), appConfig.Owner, start.Midnight(loc), end.AddDays(1).Midnight(loc))
	if err != nil {
		return err
	}
	if jsonOutput {
		return ui.FormatJSON(w, entries)
	}
	ui.FormatWorkList(w, entries, loc)
	return nil
}

var workDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a work entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := store.DeleteWorkEntry(context.Background(), args[0]); err != nil {
			return err
		}
		if jsonOutput {
			return ui.FormatJSON(os.Stdout, ui.DeleteResult{ID: args[0], Deleted: true})
		}
		ui.FormatDeleted(os.Stdout, "work entry", args[0])
		return nil
	},
	PostRunE: invalidateCachePostRun,
}

func init() {
	workAddCmd.Flags().StringVar(&workAddOpts.at, "at", "", `start, "YYYY-MM-DD HH:MM" (default now)`)
	workAddCmd.Flags().StringVar(&workAddOpts.end, "end", "", `end, "YYYY-MM-DD HH:MM"`)
	workAddCmd.Flags().StringVar(&workAddOpts.notes, "notes", "", "notes")

	workListCmd.Flags().StringVar(&workListFrom, "from", "", "first date, YYYY-MM-DD")
	workListCmd.Flags().StringVar(&workListTo, "to", "", "last date, YYYY-MM-DD")

	workCmd.AddCommand(workAddCmd, workListCmd, workDeleteCmd)
	rootCmd.AddCommand(workCmd)
}
