package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/unichat-io/unichat/internal/config"
	"github.com/unichat-io/unichat/internal/llm"
	"github.com/unichat-io/unichat/internal/render"
	"github.com/unichat-io/unichat/internal/signal"
)

var (
	askSystem   string
	askNoStream bool
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask a question and stream the answer",
	Long: `Ask the model a question and receive a streaming response.

Examples:
  unichat ask "What is the capital of France?"
  unichat ask "How do I reverse a string in Go?" -p openai
  unichat ask "Summarize this" < notes.txt
  cat error.log | unichat ask "What went wrong?"`,
	Args: cobra.MinimumNArgs(0),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVar(&askSystem, "system", "", "System instruction for this session")
	askCmd.Flags().BoolVar(&askNoStream, "no-stream", false, "Wait for the complete answer instead of streaming")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	question := strings.Join(args, " ")

	// Piped stdin becomes context ahead of the question.
	if piped, err := readPipedInput(); err == nil && piped != "" {
		if question == "" {
			question = piped
		} else {
			question = piped + "\n\n" + question
		}
	}
	if strings.TrimSpace(question) == "" {
		return fmt.Errorf("no question provided")
	}

	ctx, stop := signal.NotifyContext()
	defer stop()

	session, err := buildSession()
	if err != nil {
		return err
	}

	opts := llm.Options{}
	if askNoStream {
		stream := false
		opts.Stream = &stream
	}

	result, err := session.Ask(ctx, question, opts)
	if err != nil {
		return err
	}
	if result.Truncated {
		fmt.Fprintln(os.Stderr, "note: answer was cut off at the output token limit")
	}
	return nil
}

// buildSession wires config, provider, renderer and session together.
func buildSession() (*llm.Session, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	provider, model := flagProvider, flagModel
	if strings.Contains(provider, ":") {
		provider, model, err = llm.ParseProviderModel(flagProvider)
		if err != nil {
			return nil, err
		}
	}
	cfg.ApplyOverrides(provider, model)

	backend, err := llm.NewProvider(cfg)
	if err != nil {
		return nil, err
	}

	defaults := llm.Options{
		MaxOutputTokens: cfg.Ask.MaxTokens,
		Temperature:     cfg.Ask.Temperature,
	}
	if cfg.Ask.Reasoning != nil || cfg.Ask.ReasoningBudget > 0 {
		reasoning := &llm.ReasoningOptions{Enabled: cfg.Ask.Reasoning}
		if cfg.Ask.ReasoningBudget > 0 {
			reasoning.BudgetTokens = &cfg.Ask.ReasoningBudget
		}
		defaults.Reasoning = reasoning
	}

	session := llm.NewSession(backend,
		llm.WithDefaults(defaults),
		llm.WithSink(render.New(os.Stdout)),
		llm.WithWarnFunc(func(message string) {
			fmt.Fprintln(os.Stderr, "warning: "+message)
		}),
		llm.WithLogger(newLogger()),
	)

	system := askSystem
	if system == "" {
		system = cfg.Ask.Instructions
	}
	if system != "" {
		session.SetSystem(system)
	}
	if cfg.Ask.Cacheable {
		session.SetCacheable(true)
	}
	return session, nil
}

func readPipedInput() (string, error) {
	info, err := os.Stdin.Stat()
	if err != nil {
		return "", err
	}
	if info.Mode()&os.ModeCharDevice != 0 {
		return "", nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
