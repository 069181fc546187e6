package cmd

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.PersistentFlags().BoolVar(&debugLogs, "debug", false, "Emit debug logs to stderr")
	rootCmd.PersistentFlags().StringVarP(&flagProvider, "provider", "p", "", "Provider to use (anthropic, openai, gemini), optionally provider:model")
	rootCmd.PersistentFlags().StringVarP(&flagModel, "model", "m", "", "Model override for the selected provider")
}

var rootCmd = &cobra.Command{
	Use:   "unichat",
	Short: "One chat session abstraction over multiple LLM backends",
	Long: `unichat streams chat and tool-calling conversations through a single
session API, regardless of which backend serves them.

Examples:
  unichat ask "What is the capital of France?"
  unichat ask "Explain TCP vs UDP" -p gemini
  unichat chat                          # interactive multi-turn session
  unichat config                        # view configuration`,
	CompletionOptions: cobra.CompletionOptions{DisableDefaultCmd: true},
}

var (
	debugLogs    bool
	flagProvider string
	flagModel    string
)

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newLogger builds the CLI logger. Silent unless --debug is set.
func newLogger() zerolog.Logger {
	if !debugLogs {
		return zerolog.Nop()
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
}
