package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/luwei-tw/pmline/pkg/pmline/assistant"
)

// newUpdatesCmd creates the `pmline updates` command listing recorded
// update requests.
func newUpdatesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "updates",
		Short: "List recorded knowledge-update requests",
		Long: `Show the most recent update requests detected by the classifier.
Requests are recorded, not applied; this list is the review queue for
editing the knowledge files by hand.`,
		RunE: runUpdates,
	}

	cmd.Flags().Int("limit", 20, "maximum entries to show")
	return cmd
}

func runUpdates(cmd *cobra.Command, _ []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.UpdateLog.Path == "" {
		return fmt.Errorf("update log is not configured (set update_log.path)")
	}

	updateLog, err := assistant.OpenUpdateLog(cfg.UpdateLog.Path, newLogger(cmd, cfg))
	if err != nil {
		return fmt.Errorf("opening update log: %w", err)
	}
	defer updateLog.Close()

	limit, _ := cmd.Flags().GetInt("limit")
	entries, err := updateLog.Recent(limit)
	if err != nil {
		return fmt.Errorf("reading update log: %w", err)
	}
	if len(entries) == 0 {
		fmt.Println("No update requests recorded.")
		return nil
	}

	for _, e := range entries {
		fmt.Printf("[%s] #%d %s (%s)\n  %s\n", e.CreatedAt, e.ID, e.Source, e.Lang, e.Message)
	}
	return nil
}
