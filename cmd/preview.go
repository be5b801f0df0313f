package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/abhisek/quizbot/internal/llm"
	"github.com/abhisek/quizbot/internal/quizgen"
)

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Generate quiz questions and print them as JSON (nothing is posted)",
	Long: `Generate quiz questions with the configured LLM provider and print them.

This is a developer tool. No database, no Telegram, no events. Each record is
printed with its source, so fallback output is easy to spot.`,
	RunE: runPreview,
}

func init() {
	previewCmd.Flags().IntP("count", "c", 1, "Number of quizzes to generate")
}

// previewOutput is one printed preview entry.
type previewOutput struct {
	Source   quizgen.Source `json:"source"`
	Attempts int            `json:"attempts"`
	Error    string         `json:"error,omitempty"`
	Quiz     quizgen.Record `json:"quiz"`
}

func runPreview(cmd *cobra.Command, args []string) error {
	count, _ := cmd.Flags().GetInt("count")
	if count < 1 {
		return fmt.Errorf("--count must be at least 1")
	}

	cfg, log, err := loadConfig(cmd, false)
	if err != nil {
		return err
	}

	// No EventRepo: requests are only logged.
	ctx := llm.WithPurpose(cmd.Context(), llm.PurposePreview)
	provider, err := llm.NewProvider(ctx, cfg.LLMConfig(), nil, log)
	if err != nil {
		return fmt.Errorf("LLM provider: %w", err)
	}

	genCfg := quizgen.DefaultConfig()
	genCfg.Logger = log
	gen := quizgen.New(provider, genCfg)

	return writePreviews(ctx, cmd.OutOrStdout(), gen, count)
}

func writePreviews(ctx context.Context, w io.Writer, gen *quizgen.Generator, count int) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	for i := 0; i < count; i++ {
		res := gen.Produce(ctx)
		out := previewOutput{Source: res.Source, Attempts: res.Attempts, Quiz: res.Record}
		if res.Err != nil {
			out.Error = res.Err.Error()
		}
		if err := enc.Encode(out); err != nil {
			return err
		}
	}
	return nil
}
