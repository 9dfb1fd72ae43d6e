package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/luwei-tw/pmline/pkg/pmline/assistant"
	"github.com/luwei-tw/pmline/pkg/pmline/knowledge"
	"github.com/luwei-tw/pmline/pkg/pmline/ollama"
)

// newAskCmd creates the `pmline ask` command for one-shot questions.
func newAskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ask [message]",
		Short: "Send one message through the pipeline and print the reply",
		Long: `Run a single message through the full pipeline (language detection,
update-intent classification, grounded response) without the webhook.

Examples:
  pmline ask "本週的優先事項是什麼？"
  pmline ask "remember: ACME trial starts Monday"
  pmline ask --timeout 30s "What did customer Beta ask for?"`,
		Args: cobra.MinimumNArgs(1),
		RunE: runAsk,
	}

	cmd.Flags().Duration("timeout", 120*time.Second, "inference timeout")
	return cmd
}

func runAsk(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	logger := newLogger(cmd, cfg)

	store := knowledge.NewStore(cfg.Knowledge.Path, logger)
	store.Load()

	llm := ollama.New(cfg.API.BaseURL, cfg.Model, logger)
	asst := assistant.New(cfg, llm, store, logger)

	if cfg.UpdateLog.Path != "" {
		updateLog, err := assistant.OpenUpdateLog(cfg.UpdateLog.Path, logger)
		if err != nil {
			return fmt.Errorf("opening update log: %w", err)
		}
		defer updateLog.Close()
		asst.SetUpdateLog(updateLog)
	}

	timeout, _ := cmd.Flags().GetDuration("timeout")
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	reply := asst.HandleMessage(ctx, strings.Join(args, " "), "cli")
	fmt.Println(reply)
	return nil
}
