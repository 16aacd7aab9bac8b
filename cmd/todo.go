package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/chris-regnier/daybook/internal/entry"
	"github.com/chris-regnier/daybook/internal/overview"
	"github.com/chris-regnier/daybook/internal/storage"
	"github.com/chris-regnier/daybook/internal/ui"
	"github.com/spf13/cobra"
)

type todoAddOptions struct {
	title    string
	due      string
	priority string
}

var todoAddOpts todoAddOptions

var todoCmd = &cobra.Command{
	Use:   "todo",
	Short: "Track todos with optional due dates",
}

var todoAddCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Add a todo",
	Example: `  daybook todo add "File taxes" --due 2026-04-15 --priority high
  daybook todo add "Call the plumber" --due "2026-03-12 08:00"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := todoAddOpts
		opts.title = args[0]
		return todoAddRun(os.Stdout, opts, time.Now())
	},
	PostRunE: invalidateCachePostRun,
}

func todoAddRun(w io.Writer, opts todoAddOptions, now time.Time) error {
	id, err := entry.NewID()
	if err != nil {
		return fmt.Errorf("generating ID: %w", err)
	}
	t := entry.Todo{
		ID:        id,
		Owner:     appConfig.Owner,
		Title:     strings.TrimSpace(opts.title),
		CreatedAt: now.UTC(),
		UpdatedAt: now.UTC(),
	}
	if opts.priority != "" {
		t.Priority = string(overview.NormalizePriority(opts.priority))
	}
	if opts.due != "" {
		due, err := parseLocalTime(opts.due, svc.Location())
		if err != nil {
			return err
		}
		t.Due = &due
	}
	if err := store.CreateTodo(context.Background(), t); err != nil {
		return err
	}

	if jsonOutput {
		return ui.FormatJSON(w, t)
	}
	fmt.Fprintf(w, "Added todo %s\n", t.ID)
	return nil
}

var todoDoneCmd = &cobra.Command{
	Use:   "done <id>",
	Short: "Mark a todo as done",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return todoDoneRun(os.Stdout, args[0])
	},
	PostRunE: invalidateCachePostRun,
}

func todoDoneRun(w io.Writer, id string) error {
	ctx := context.Background()
	t, err := store.GetTodo(ctx, id)
	if err != nil {
		return fmt.Errorf("todo %s: %w", id, err)
	}
	if t.Owner != appConfig.Owner {
		return fmt.Errorf("todo %s: %w", id, storage.ErrNotFound)
	}
	t, err = store.CompleteTodo(ctx, id)
	if err != nil {
		return err
	}
	if jsonOutput {
		return ui.FormatJSON(w, t)
	}
	fmt.Fprintf(w, "Completed todo %s: %s\n", t.ID, t.Title)
	return nil
}

var todoListAll bool

var todoListCmd = &cobra.Command{
	Use:   "list",
	Short: "List open todos",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return todoListRun(os.Stdout, todoListAll)
	},
}

func todoListRun(w io.Writer, all bool) error {
	todos, err := store.ListTodos(context.Background(), appConfig.Owner, storage.TodoQuery{IncludeDone: all})
	if err != nil {
		return err
	}
	if jsonOutput {
		return ui.FormatJSON(w, todos)
	}
	ui.FormatTodoList(w, todos, svc.Location())
	return nil
}

func init() {
	todoAddCmd.Flags().StringVar(&todoAddOpts.due, "due", "", `due date, YYYY-MM-DD or "YYYY-MM-DD HH:MM"`)
	todoAddCmd.Flags().StringVar(&todoAddOpts.priority, "priority", "", "low, med or high")

	todoListCmd.Flags().BoolVar(&todoListAll, "all", false, "include completed todos")

	todoCmd.AddCommand(todoAddCmd, todoDoneCmd, todoListCmd)
	rootCmd.AddCommand(todoCmd)
}
