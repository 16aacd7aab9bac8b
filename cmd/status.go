package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/template"
	"time"

	"github.com/chris-regnier/daybook/internal/shell"
	"github.com/spf13/cobra"
)

// statusData holds the template data for status formatting.
type statusData struct {
	TodayIcon  string
	Streak     int
	StreakIcon string
	Items      int
	Backend    string
	Logged     bool
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show day log and agenda status for the prompt",
	Long: `Show daybook status for shell prompt integration.

Outputs whether today has a day log, the logging streak, and how many
overview items fall on today. Reads from cache when fresh, queries storage
when stale.

Use --env to output shell environment variable assignments, quoted for
the shell named by --shell.
Use --refresh to force a cache refresh.
Use --format with a Go template for custom output.`,
	Example: `  daybook status
  daybook status --env
  daybook status --env --shell fish
  daybook status --refresh
  daybook status --format "{{.TodayIcon}} {{.Streak}}{{.StreakIcon}} {{.Items}}"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		envFlag, _ := cmd.Flags().GetBool("env")
		refreshFlag, _ := cmd.Flags().GetBool("refresh")
		formatFlag, _ := cmd.Flags().GetString("format")
		shellFlag, _ := cmd.Flags().GetString("shell")

		cache, err := loadStatus(refreshFlag, time.Now())
		if err != nil {
			return fmt.Errorf("computing status: %w", err)
		}

		data := buildStatusData(cache)
		switch {
		case envFlag:
			return outputEnv(os.Stdout, data, shellFlag)
		case formatFlag != "":
			return outputTemplate(os.Stdout, data, formatFlag)
		default:
			return outputDefault(os.Stdout, data)
		}
	},
}

// loadStatus returns the cached prompt status, recomputing it when stale.
func loadStatus(refresh bool, now time.Time) (*shell.PromptCache, error) {
	today := svc.Today().String()
	cache := shell.ReadCache(appConfig.DataDir, appConfig.Owner)
	if !refresh && cache.IsFresh(now, appConfig.CacheTTL(), today) {
		return cache, nil
	}

	st, err := shell.ComputeStatus(context.Background(), svc, store, appConfig.Owner)
	if err != nil {
		return nil, err
	}
	cache = &shell.PromptCache{
		Logged:         st.Logged,
		Streak:         st.Streak,
		Items:          st.Items,
		TodayDate:      today,
		Owner:          appConfig.Owner,
		StorageBackend: appConfig.Storage,
		UpdatedAt:      now,
	}
	if err := shell.WriteCache(appConfig.DataDir, cache); err != nil {
		// Non-fatal: cache write failure shouldn't break the prompt
		fmt.Fprintln(os.Stderr, "Warning: could not write cache:", err)
	}
	return cache, nil
}

func buildStatusData(cache *shell.PromptCache) statusData {
	icon := appConfig.Shell.NoTodayIcon
	if cache.Logged {
		icon = appConfig.Shell.TodayIcon
	}

	return statusData{
		TodayIcon:  icon,
		Streak:     cache.Streak,
		StreakIcon: appConfig.Shell.StreakIcon,
		Items:      cache.Items,
		Backend:    cache.StorageBackend,
		Logged:     cache.Logged,
	}
}

func outputEnv(w io.Writer, data statusData, sh string) error {
	d, err := shell.Lookup(sh)
	if err != nil {
		return err
	}
	vars := []shell.EnvVar{
		{Name: "DAYBOOK_TODAY", Value: data.TodayIcon},
		{Name: "DAYBOOK_STREAK", Value: strconv.Itoa(data.Streak)},
		{Name: "DAYBOOK_STREAK_ICON", Value: data.StreakIcon},
		{Name: "DAYBOOK_ITEMS", Value: strconv.Itoa(data.Items)},
	}
	if data.Backend != "" {
		vars = append(vars, shell.EnvVar{Name: "DAYBOOK_BACKEND", Value: data.Backend})
	}
	return d.WriteEnv(w, vars)
}

func outputTemplate(w io.Writer, data statusData, format string) error {
	tmpl, err := template.New("status").Parse(format)
	if err != nil {
		return fmt.Errorf("invalid format template: %w", err)
	}
	if err := tmpl.Execute(w, data); err != nil {
		return fmt.Errorf("executing format template: %w", err)
	}
	fmt.Fprintln(w)
	return nil
}

func outputDefault(w io.Writer, data statusData) error {
	var parts []string

	// Today indicator + streak
	parts = append(parts, fmt.Sprintf("%s %d%s", data.TodayIcon, data.Streak, data.StreakIcon))

	if appConfig.Shell.ShowItems && data.Items > 0 {
		parts = append(parts, fmt.Sprintf("%d today", data.Items))
	}

	if appConfig.Shell.ShowBackend && data.Backend != "" {
		parts = append(parts, data.Backend)
	}

	fmt.Fprintln(w, strings.Join(parts, " "))
	return nil
}

func init() {
	statusCmd.Flags().Bool("env", false, "output shell environment variable assignments")
	statusCmd.Flags().String("shell", "bash", "shell dialect for --env (bash, zsh, fish)")
	statusCmd.Flags().Bool("refresh", false, "force cache refresh")
	statusCmd.Flags().String("format", "", "Go template format string")
	rootCmd.AddCommand(statusCmd)
}
