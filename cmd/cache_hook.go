package cmd

import (
	"fmt"

	"github.com/chris-regnier/daybook/internal/shell"
	"github.com/spf13/cobra"
)

// invalidateCachePostRun drops the current owner's prompt status after a
// write so the next prompt recomputes it. Failures are reported, not returned.
func invalidateCachePostRun(cmd *cobra.Command, args []string) error {
	if appConfig == nil {
		return nil
	}
	if err := shell.InvalidateCache(appConfig.DataDir, appConfig.Owner); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: could not invalidate prompt cache: %v\n", err)
	}
	return nil
}
