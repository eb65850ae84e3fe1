package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/optima-ops/revops-cli/internal/assistant"
	"github.com/optima-ops/revops-cli/internal/config"
)

var assistantCmd = &cobra.Command{
	Use:   "assistant",
	Short: "Chat-completion API jobs",
}

// newCompleter is replaced in tests.
var newCompleter = func() (assistant.Completer, error) {
	return assistant.New(cfg.Assistant.Provider, assistant.Keys{
		OpenAI:           cfg.OpenAI.Key,
		OpenAIBaseURL:    cfg.OpenAI.BaseURL,
		Anthropic:        cfg.Anthropic.Key,
		AnthropicBaseURL: cfg.Anthropic.BaseURL,
	})
}

// assistantModel is the model for the configured provider.
func assistantModel() string {
	if cfg.Assistant.Provider == assistant.ProviderAnthropic {
		return cfg.Anthropic.Model
	}
	return cfg.Assistant.Model
}

var assistantCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Ask the model how it is and log the exchange to a worksheet",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		if err := validate(config.JobAssistant); err != nil {
			return err
		}

		llm, err := newCompleter()
		if err != nil {
			return err
		}
		sheet, err := openSheets(ctx, cfg.Sheets.SpreadsheetID)
		if err != nil {
			return err
		}

		res, err := assistant.NewCheck(sheet, llm, assistant.Config{
			InstructionsWorksheet: cfg.Assistant.InstructionsWorksheet,
			DataWorksheet:         cfg.Assistant.DataWorksheet,
			Model:                 assistantModel(),
			MaxTokens:             cfg.Assistant.MaxTokens,
		}).Run(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Q: %s\nA: %s\n(logged to %s row %d)\n",
			res.Question, res.Response, cfg.Assistant.DataWorksheet, res.Row)
		return nil
	},
}

func init() {
	assistantCmd.AddCommand(assistantCheckCmd)
	rootCmd.AddCommand(assistantCmd)
}
