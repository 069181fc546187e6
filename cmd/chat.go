package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/unichat-io/unichat/internal/llm"
	"github.com/unichat-io/unichat/internal/signal"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive multi-turn session",
	Long: `Start an interactive chat. Each line is one turn; the full
conversation is replayed to the backend on every turn.

Type /quit (or press Ctrl-D) to exit.`,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().StringVar(&askSystem, "system", "", "System instruction for this session")
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return errors.New("chat requires an interactive terminal, use ask for piped input")
	}

	ctx, stop := signal.NotifyContext()
	defer stop()

	session, err := buildSession()
	if err != nil {
		return err
	}

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			fmt.Println()
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "/quit" || line == "/exit" {
			return nil
		}

		if _, err := session.Ask(ctx, line, llm.Options{}); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			fmt.Fprintln(os.Stderr, "error: "+err.Error())
		}
	}
}
