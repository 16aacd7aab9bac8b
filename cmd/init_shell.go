package cmd

import (
	"io"
	"os"

	"github.com/chris-regnier/daybook/internal/shell"
	"github.com/spf13/cobra"
)

var initShellCmd = &cobra.Command{
	Use:   "init <shell>",
	Short: "Output shell integration script",
	Long: `Output shell integration script for eval.

Generates shell-specific initialization code that sets up:
- Shell completions
- Prompt hook exporting day log and agenda status env vars
- daybook_prompt_info helper function

Supported shells: bash, zsh, fish`,
	Example: `  # Add to ~/.bashrc
  eval "$(daybook init bash)"

  # Add to ~/.zshrc
  eval "$(daybook init zsh)"

  # Add to ~/.config/fish/config.fish
  daybook init fish | source`,
	Args: cobra.ExactArgs(1),
	// Shell scripts need no storage.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	RunE: func(cmd *cobra.Command, args []string) error {
		return initShellRun(os.Stdout, args[0])
	},
}

func initShellRun(w io.Writer, sh string) error {
	d, err := shell.Lookup(sh)
	if err != nil {
		return err
	}
	return d.WriteInit(w)
}

func init() {
	rootCmd.AddCommand(initShellCmd)
}
