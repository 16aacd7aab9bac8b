package cmd

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"os"
	"sort"
	"time"

	"github.com/chris-regnier/daybook/internal/civil"
	"github.com/chris-regnier/daybook/internal/entry"
	"github.com/chris-regnier/daybook/internal/recurrence"
	"github.com/chris-regnier/daybook/internal/ui"
	"github.com/spf13/cobra"
)

// seedRule is a recurring rule a profile installs.
type seedRule struct {
	title     string
	notes     string
	base      string
	frequency recurrence.Frequency
}

// profile defines a user archetype for seeding.
type profile struct {
	name        string
	description string
	daysBack    int
	// logChance is the probability of a day log on an eligible day.
	logChance float64
	// workdays restricts work entries and logs to Monday through Friday.
	workdays bool
	rules    []seedRule
	work     []string
	todos    []string
	logs     []string
}

var profiles = map[string]profile{
	"household": {
		name:        "household",
		description: "Family calendar: birthdays, monthly bills and chores",
		daysBack:    60,
		logChance:   0.6,
		rules: []seedRule{
			{title: "Mom's birthday", base: "1958-04-12", frequency: recurrence.Yearly},
			{title: "Wedding anniversary", notes: "Book the restaurant a week ahead.", base: "2015-09-19", frequency: recurrence.Yearly},
			{title: "Leap day party", base: "2020-02-29", frequency: recurrence.Yearly},
			{title: "Rent due", base: "2024-01-01", frequency: recurrence.Monthly},
			{title: "Credit card statement", base: "2024-01-31", frequency: recurrence.Monthly},
		},
		todos: []string{
			"Renew car registration",
			"Buy birthday present",
			"Call the plumber",
			"Schedule dentist appointment",
			"File taxes",
		},
		logs: []string{
			"Quiet evening at home. Cooked pasta and watched a documentary.",
			"Groceries, laundry, and a long walk along the river.",
			"Video call with family. The kids showed off their drawings.",
			"Cleaned out the garage. Found the old camping gear.",
			"Rainy day. Read on the couch most of the afternoon.",
		},
	},
	"dev-standup": {
		name:        "dev-standup",
		description: "Developer tracking work on weekdays",
		daysBack:    30,
		logChance:   0.8,
		workdays:    true,
		rules: []seedRule{
			{title: "Sprint review", base: "2024-01-15", frequency: recurrence.Monthly},
			{title: "Work anniversary", base: "2021-03-01", frequency: recurrence.Yearly},
			{title: "On-call handoff", notes: "Update the runbook before handing off.", base: "2024-01-01", frequency: recurrence.Monthly},
		},
		work: []string{
			"Standup",
			"Code review",
			"Debugging flaky integration test",
			"Feature work: export endpoint",
			"Planning session",
			"Pairing on storage migration",
		},
		todos: []string{
			"Update the team wiki",
			"Rotate API credentials",
			"Write the incident postmortem",
			"Upgrade CI runners",
		},
		logs: []string{
			"Yesterday: finished the review queue. Today: export endpoint. Blockers: none.",
			"Chased a race condition most of the day. Fixed with a mutex.",
			"Good pairing session. The migration plan is solid now.",
			"Too many meetings. Protected tomorrow morning for focus time.",
		},
	},
}

// seedResult summarizes what a seed run created.
type seedResult struct {
	Profile     string `json:"profile"`
	Rules       int    `json:"rules_created"`
	WorkEntries int    `json:"work_entries_created"`
	Todos       int    `json:"todos_created"`
	DayLogs     int    `json:"day_logs_created"`
}

var seedCmd = &cobra.Command{
	Use:   "seed [profile]",
	Short: "Seed the daybook with realistic sample data",
	Long: `Populate the daybook with rules, work entries, todos and day logs.

Available profiles:
  household    – Family calendar with birthdays and monthly bills
  dev-standup  – Developer work log on weekdays

If no profile is specified, "household" is used.`,
	Example: `  daybook seed
  daybook seed dev-standup
  daybook seed --list`,
	Args:     cobra.MaximumNArgs(1),
	PostRunE: invalidateCachePostRun,
	RunE: func(cmd *cobra.Command, args []string) error {
		listProfiles, _ := cmd.Flags().GetBool("list")
		if listProfiles {
			listProfilesRun(os.Stdout)
			return nil
		}

		profileName := "household"
		if len(args) > 0 {
			profileName = args[0]
		}
		rng := rand.New(rand.NewSource(time.Now().UnixNano()))
		return seedRun(os.Stdout, profileName, time.Now(), rng)
	},
}

func init() {
	seedCmd.Flags().Bool("list", false, "list available profiles")
	rootCmd.AddCommand(seedCmd)
}

func listProfilesRun(w io.Writer) {
	names := make([]string, 0, len(profiles))
	for name := range profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	fmt.Fprintln(w, "Available profiles:")
	for _, name := range names {
		fmt.Fprintf(w, "  %-14s %s\n", name, profiles[name].description)
	}
}

func seedRun(w io.Writer, profileName string, now time.Time, rng *rand.Rand) error {
	p, ok := profiles[profileName]
	if !ok {
		return fmt.Errorf("unknown profile %q (run 'daybook seed --list')", profileName)
	}
	ctx := context.Background()
	loc := svc.Location()
	owner := appConfig.Owner
	res := seedResult{Profile: p.name}

	for _, sr := range p.rules {
		id, err := entry.NewID()
		if err != nil {
			return fmt.Errorf("generating rule ID: %w", err)
		}
		r := recurrence.Rule{
			ID:        id,
			Owner:     owner,
			Title:     sr.title,
			Notes:     sr.notes,
			BaseDate:  civil.MustParse(sr.base),
			Frequency: sr.frequency,
			CreatedAt: now.UTC(),
			UpdatedAt: now.UTC(),
		}
		if err := store.CreateRule(ctx, r); err != nil {
			return fmt.Errorf("creating rule %q: %w", sr.title, err)
		}
		res.Rules++
	}

	today := civil.FromTime(now, loc)
	for day := today.AddDays(-p.daysBack); day.Compare(today) <= 0; day = day.AddDays(1) {
		if p.workdays && isWeekend(day) {
			continue
		}
		if len(p.work) > 0 {
			n := 1 + rng.Intn(3)
			for i := 0; i < n; i++ {
				id, err := entry.NewID()
				if err != nil {
					return fmt.Errorf("generating work ID: %w", err)
				}
				start := randomTimeOfDay(day, loc, rng)
				end := start.Add(time.Duration(30+rng.Intn(120)) * time.Minute)
				we := entry.WorkEntry{
					ID:        id,
					Owner:     owner,
					Title:     p.work[rng.Intn(len(p.work))],
					Start:     start,
					End:       &end,
					CreatedAt: now.UTC(),
					UpdatedAt: now.UTC(),
				}
				if err := store.CreateWorkEntry(ctx, we); err != nil {
					fmt.Fprintf(os.Stderr, "Warning: skipping work entry for %s: %v\n", day, err)
					continue
				}
				res.WorkEntries++
			}
		}
		if rng.Float64() < p.logChance {
			_, err := store.PutDayLog(ctx, entry.DayLog{
				Owner:   owner,
				Date:    day,
				Content: p.logs[rng.Intn(len(p.logs))],
			})
			if err != nil {
				fmt.Fprintf(os.Stderr, "Warning: skipping day log for %s: %v\n", day, err)
				continue
			}
			res.DayLogs++
		}
	}

	// Todos fall due over the coming two weeks; one stays undated.
	for i, title := range p.todos {
		id, err := entry.NewID()
		if err != nil {
			return fmt.Errorf("generating todo ID: %w", err)
		}
		t := entry.Todo{
			ID:        id,
			Owner:     owner,
			Title:     title,
			Priority:  []string{"high", "medium", "low"}[rng.Intn(3)],
			CreatedAt: now.UTC(),
			UpdatedAt: now.UTC(),
		}
		if i > 0 {
			due := randomTimeOfDay(today.AddDays(rng.Intn(14)), loc, rng)
			t.Due = &due
		}
		if err := store.CreateTodo(ctx, t); err != nil {
			return fmt.Errorf("creating todo %q: %w", title, err)
		}
		res.Todos++
	}

	if jsonOutput {
		return ui.FormatJSON(w, res)
	}
	fmt.Fprintf(w, "Seeded with profile %q:\n", res.Profile)
	fmt.Fprintf(w, "  Rules created:        %d\n", res.Rules)
	fmt.Fprintf(w, "  Work entries created: %d\n", res.WorkEntries)
	fmt.Fprintf(w, "  Todos created:        %d\n", res.Todos)
	fmt.Fprintf(w, "  Day logs created:     %d\n", res.DayLogs)
	return nil
}

func isWeekend(d civil.Date) bool {
	wd := d.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// randomTimeOfDay returns an instant on the given date between 7am and 10pm.
func randomTimeOfDay(d civil.Date, loc *time.Location, rng *rand.Rand) time.Time {
	hour := 7 + rng.Intn(15)
	minute := rng.Intn(60)
	return d.Midnight(loc).Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
}
