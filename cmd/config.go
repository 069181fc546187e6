package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/unichat-io/unichat/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the active configuration",
	RunE:  runConfig,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter config file",
	RunE:  runConfigInit,
}

func init() {
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfig(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	path, err := config.GetConfigPath()
	if err != nil {
		return err
	}

	fmt.Printf("config file:  %s", path)
	if !config.Exists() {
		fmt.Print(" (not created, run: unichat config init)")
	}
	fmt.Println()
	fmt.Printf("provider:     %s\n", cfg.Provider)
	fmt.Printf("anthropic:    model=%s key=%s\n", cfg.Anthropic.Model, maskKey(cfg.Anthropic.APIKey))
	fmt.Printf("openai:       model=%s key=%s\n", cfg.OpenAI.Model, maskKey(cfg.OpenAI.APIKey))
	fmt.Printf("gemini:       model=%s key=%s\n", cfg.Gemini.Model, maskKey(cfg.Gemini.APIKey))
	return nil
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	if config.Exists() {
		path, _ := config.GetConfigPath()
		return fmt.Errorf("config already exists at %s", path)
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := config.Save(cfg); err != nil {
		return err
	}
	path, _ := config.GetConfigPath()
	fmt.Printf("wrote %s\n", path)
	return nil
}

func maskKey(key string) string {
	if key == "" {
		return "(unset)"
	}
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "…" + key[len(key)-4:]
}
