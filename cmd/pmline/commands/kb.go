package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/luwei-tw/pmline/pkg/pmline/knowledge"
)

// newKBCmd creates the `pmline kb` command group for knowledge-base
// inspection.
func newKBCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "kb",
		Short: "Inspect the knowledge base",
	}

	cmd.AddCommand(newKBListCmd(), newKBShowCmd())
	return cmd
}

func newKBListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List sections and their sizes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := resolveConfig(cmd)
			if err != nil {
				return err
			}
			store := knowledge.NewStore(cfg.Knowledge.Path, newLogger(cmd, cfg))
			snap := store.Load()

			fmt.Printf("Knowledge base: %s (loaded %s)\n\n", cfg.Knowledge.Path, snap.LoadedAt.Format("15:04:05"))
			for _, key := range knowledge.Sections {
				content := snap.Get(key)
				status := fmt.Sprintf("%d chars", len([]rune(content)))
				if content == "" {
					status = "empty"
				}
				fmt.Printf("  %-12s %s\n", key, status)
			}
			return nil
		},
	}
}

func newKBShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [section]",
		Short: "Print one section's content",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd)
			if err != nil {
				return err
			}
			store := knowledge.NewStore(cfg.Knowledge.Path, newLogger(cmd, cfg))
			snap := store.Load()

			for _, key := range knowledge.Sections {
				if key == args[0] {
					fmt.Println(snap.Get(key))
					return nil
				}
			}
			return fmt.Errorf("unknown section %q (sections: %v)", args[0], knowledge.Sections)
		},
	}
}
