package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/chris-regnier/daybook/internal/civil"
	"github.com/chris-regnier/daybook/internal/entry"
	"github.com/chris-regnier/daybook/internal/recurrence"
	"github.com/chris-regnier/daybook/internal/storage"
	"github.com/chris-regnier/daybook/internal/ui"
	"github.com/spf13/cobra"
)

var ruleCmd = &cobra.Command{
	Use:   "rule",
	Short: "Manage recurring yearly and monthly anniversaries",
}

// ruleAddOptions holds the flags of rule add.
type ruleAddOptions struct {
	title     string
	on        string
	frequency string
	notes     string
	shared    bool
}

var ruleAddOpts ruleAddOptions

var ruleAddCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Add a recurring rule",
	Example: `  daybook rule add "Mum's birthday" --on 1961-03-11
  daybook rule add "Rent" --on 2026-01-01 --frequency monthly
  daybook rule add "Wedding anniversary" --on 2019-06-01 --shared`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := ruleAddOpts
		opts.title = args[0]
		return ruleAddRun(os.Stdout, opts)
	},
	PostRunE: invalidateCachePostRun,
}

func ruleAddRun(w io.Writer, opts ruleAddOptions) error {
	base, err := parseDateArg(opts.on)
	if err != nil {
		return err
	}
	freq, err := recurrence.ParseFrequency(opts.frequency)
	if err != nil {
		return err
	}
	id, err := entry.NewID()
	if err != nil {
		return fmt.Errorf("generating ID: %w", err)
	}

	owner := appConfig.Owner
	if opts.shared {
		owner = ""
	}
	now := time.Now().UTC()
	r := recurrence.Rule{
		ID:        id,
		Owner:     owner,
		Title:     strings.TrimSpace(opts.title),
		Notes:     opts.notes,
		BaseDate:  base,
		Frequency: freq,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := store.CreateRule(context.Background(), r); err != nil {
		return err
	}

	if jsonOutput {
		return ui.FormatJSON(w, r)
	}
	ui.FormatRuleCreated(w, r)
	return nil
}

var ruleListCmd = &cobra.Command{
	Use:   "list",
	Short: "List rules visible to the current owner",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return ruleListRun(os.Stdout)
	},
}

func ruleListRun(w io.Writer) error {
	rules, err := svc.Rules(context.Background(), appConfig.Owner)
	if err != nil {
		return err
	}
	if jsonOutput {
		return ui.FormatJSON(w, rules)
	}
	ui.FormatRuleList(w, rules)
	return nil
}

var ruleShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a rule with its skips and overrides",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return ruleShowRun(os.Stdout, args[0])
	},
}

func ruleShowRun(w io.Writer, id string) error {
	r, err := getVisibleRule(context.Background(), id)
	if err != nil {
		return err
	}
	if jsonOutput {
		return ui.FormatJSON(w, r)
	}
	ui.FormatRuleFull(w, r)
	return nil
}

// getVisibleRule fetches a rule, hiding other owners' rules as not found.
func getVisibleRule(ctx context.Context, id string) (recurrence.Rule, error) {
	r, err := store.GetRule(ctx, id)
	if err != nil {
		return recurrence.Rule{}, fmt.Errorf("rule %s: %w", id, err)
	}
	if !storage.RuleVisible(r, appConfig.Owner) {
		return recurrence.Rule{}, fmt.Errorf("rule %s: %w", id, storage.ErrNotFound)
	}
	return r, nil
}

var ruleUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Change a rule's title, notes, base date or frequency",
	Example: `  daybook rule update a3kf9x2m --title "Mum's 65th"
  daybook rule update a3kf9x2m --frequency yearly --on 2020-02-29`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := rulePatchFromFlags(cmd)
		if err != nil {
			return err
		}
		return ruleUpdateRun(os.Stdout, args[0], p)
	},
	PostRunE: invalidateCachePostRun,
}

func rulePatchFromFlags(cmd *cobra.Command) (recurrence.Patch, error) {
	var p recurrence.Patch
	flags := cmd.Flags()
	if flags.Changed("title") {
		v, _ := flags.GetString("title")
		p.Title = &v
	}
	if flags.Changed("notes") {
		v, _ := flags.GetString("notes")
		p.Notes = &v
	}
	if flags.Changed("on") {
		v, _ := flags.GetString("on")
		d, err := parseDateArg(v)
		if err != nil {
			return p, err
		}
		p.BaseDate = &d
	}
	if flags.Changed("frequency") {
		v, _ := flags.GetString("frequency")
		f, err := recurrence.ParseFrequency(v)
		if err != nil {
			return p, err
		}
		p.Frequency = &f
	}
	if p.IsEmpty() {
		return p, fmt.Errorf("nothing to update: pass --title, --notes, --on or --frequency")
	}
	return p, nil
}

func ruleUpdateRun(w io.Writer, id string, p recurrence.Patch) error {
	ctx := context.Background()
	if _, err := getVisibleRule(ctx, id); err != nil {
		return err
	}
	r, err := store.UpdateRule(ctx, id, p)
	if err != nil {
		return err
	}
	if jsonOutput {
		return ui.FormatJSON(w, r)
	}
	ui.FormatRuleUpdated(w, r)
	return nil
}

var forceDelete bool

var ruleDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a rule",
	Long:  "Permanently delete a rule with its skips and overrides. Requires confirmation unless --force is used.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := args[0]
		r, err := getVisibleRule(context.Background(), id)
		if err != nil {
			return err
		}

		if !forceDelete {
			detail := fmt.Sprintf("%s %q (%s from %s)", r.ID, r.Title, strings.ToLower(string(r.Frequency)), r.BaseDate)
			confirmed, err := ui.Confirm("Delete this rule? This cannot be undone.", detail, ui.ResolveTheme(appConfig.Theme))
			if err != nil {
				return err
			}
			if !confirmed {
				fmt.Fprintln(os.Stdout, "Cancelled.")
				return nil
			}
		}
		return ruleDeleteRun(os.Stdout, id)
	},
	PostRunE: invalidateCachePostRun,
}

func ruleDeleteRun(w io.Writer, id string) error {
	if err := store.DeleteRule(context.Background(), id); err != nil {
		return err
	}
	if jsonOutput {
		return ui.FormatJSON(w, ui.DeleteResult{ID: id, Deleted: true})
	}
	ui.FormatDeleted(w, "rule", id)
	return nil
}

// ruleDateArgs parses the "<id> <date>" arguments shared by the exception
// subcommands.
func ruleDateArgs(args []string) (string, civil.Date, error) {
	d, err := parseDateArg(args[1])
	if err != nil {
		return "", civil.Date{}, err
	}
	return args[0], d, nil
}

// ruleExceptionRun loads a visible rule, lets change edit its skips or
// overrides, and saves the result.
func ruleExceptionRun(w io.Writer, id string, change func(r *recurrence.Rule) error) error {
	ctx := context.Background()
	r, err := getVisibleRule(ctx, id)
	if err != nil {
		return err
	}
	if err := change(&r); err != nil {
		return err
	}
	skips := slices.Clone(r.Skips)
	overrides := r.Overrides
	if overrides == nil {
		overrides = map[civil.Date]recurrence.Override{}
	}
	updated, err := store.UpdateRule(ctx, id, recurrence.Patch{Skips: &skips, Overrides: &overrides})
	if err != nil {
		return err
	}
	if jsonOutput {
		return ui.FormatJSON(w, updated)
	}
	ui.FormatRuleUpdated(w, updated)
	return nil
}

var ruleSkipCmd = &cobra.Command{
	Use:   "skip <id> <date>",
	Short: "Suppress a rule on one date",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, d, err := ruleDateArgs(args)
		if err != nil {
			return err
		}
		return ruleExceptionRun(os.Stdout, id, func(r *recurrence.Rule) error {
			if !r.AddSkip(d) {
				return fmt.Errorf("rule %s already skips %s", id, d)
			}
			return nil
		})
	},
	PostRunE: invalidateCachePostRun,
}

var ruleUnskipCmd = &cobra.Command{
	Use:   "unskip <id> <date>",
	Short: "Remove a skip from a rule",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, d, err := ruleDateArgs(args)
		if err != nil {
			return err
		}
		return ruleExceptionRun(os.Stdout, id, func(r *recurrence.Rule) error {
			if !r.RemoveSkip(d) {
				return fmt.Errorf("rule %s does not skip %s", id, d)
			}
			return nil
		})
	},
	PostRunE: invalidateCachePostRun,
}

var ruleOverrideCmd = &cobra.Command{
	Use:   "override <id> <date>",
	Short: "Replace a rule's title or notes on one date",
	Long: `Replace a rule's title or notes on one date. A date off the rule's
pattern becomes a one-off occurrence.`,
	Example: `  daybook rule override a3kf9x2m 2027-06-01 --title "Anniversary!"`,
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, d, err := ruleDateArgs(args)
		if err != nil {
			return err
		}
		var o recurrence.Override
		if cmd.Flags().Changed("title") {
			v, _ := cmd.Flags().GetString("title")
			o.Title = &v
		}
		if cmd.Flags().Changed("notes") {
			v, _ := cmd.Flags().GetString("notes")
			o.Notes = &v
		}
		return ruleExceptionRun(os.Stdout, id, func(r *recurrence.Rule) error {
			r.SetOverride(d, o)
			return nil
		})
	},
	PostRunE: invalidateCachePostRun,
}

var ruleClearOverrideCmd = &cobra.Command{
	Use:   "clear-override <id> <date>",
	Short: "Remove a rule's override for one date",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, d, err := ruleDateArgs(args)
		if err != nil {
			return err
		}
		return ruleExceptionRun(os.Stdout, id, func(r *recurrence.Rule) error {
			if !r.ClearOverride(d) {
				return fmt.Errorf("rule %s has no override on %s", id, d)
			}
			return nil
		})
	},
	PostRunE: invalidateCachePostRun,
}

func init() {
	ruleAddCmd.Flags().StringVar(&ruleAddOpts.on, "on", "", "base date, YYYY-MM-DD (required)")
	ruleAddCmd.Flags().StringVar(&ruleAddOpts.frequency, "frequency", "yearly", "yearly or monthly")
	ruleAddCmd.Flags().StringVar(&ruleAddOpts.notes, "notes", "", "notes shown with every occurrence")
	ruleAddCmd.Flags().BoolVar(&ruleAddOpts.shared, "shared", false, "share the rule with every owner")
	_ = ruleAddCmd.MarkFlagRequired("on")

	ruleUpdateCmd.Flags().String("title", "", "new title")
	ruleUpdateCmd.Flags().String("notes", "", "new notes")
	ruleUpdateCmd.Flags().String("on", "", "new base date, YYYY-MM-DD")
	ruleUpdateCmd.Flags().String("frequency", "", "yearly or monthly")

	ruleDeleteCmd.Flags().BoolVar(&forceDelete, "force", false, "skip confirmation prompt")

	ruleOverrideCmd.Flags().String("title", "", "title for this date")
	ruleOverrideCmd.Flags().String("notes", "", "notes for this date")

	ruleCmd.AddCommand(ruleAddCmd, ruleListCmd, ruleShowCmd, ruleUpdateCmd, ruleDeleteCmd,
		ruleSkipCmd, ruleUnskipCmd, ruleOverrideCmd, ruleClearOverrideCmd)
	rootCmd.AddCommand(ruleCmd)
}
