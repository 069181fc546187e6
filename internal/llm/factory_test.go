package llm

import (
	"testing"

	"github.com/unichat-io/unichat/internal/config"
)

func TestParseProviderModel(t *testing.T) {
	provider, model, err := ParseProviderModel("anthropic:claude-sonnet-4-5")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if provider != "anthropic" || model != "claude-sonnet-4-5" {
		t.Errorf("got %q/%q", provider, model)
	}

	provider, model, err = ParseProviderModel("gemini")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if provider != "gemini" || model != "" {
		t.Errorf("got %q/%q", provider, model)
	}

	if _, _, err := ParseProviderModel("mystery:model"); err == nil {
		t.Error("unknown provider accepted")
	}
	if _, _, err := ParseProviderModel(""); err == nil {
		t.Error("empty value accepted")
	}
}

func TestNewProviderRequiresAPIKey(t *testing.T) {
	for _, name := range ProviderNames() {
		cfg := &config.Config{Provider: name}
		if _, err := NewProvider(cfg); err == nil {
			t.Errorf("%s: provider created without api key", name)
		}
	}

	cfg := &config.Config{Provider: "mystery"}
	if _, err := NewProvider(cfg); err == nil {
		t.Error("unknown provider accepted")
	}
}

func TestNewProviderSelectsBackend(t *testing.T) {
	cfg := &config.Config{
		Provider:  "openai",
		OpenAI:    config.OpenAIConfig{APIKey: "sk-test", Model: "gpt-5.2"},
		Anthropic: config.AnthropicConfig{APIKey: "unused"},
	}
	provider, err := NewProvider(cfg)
	if err != nil {
		t.Fatalf("new provider: %v", err)
	}
	caps := provider.Capabilities()
	if caps.SupportsReasoning || caps.SupportsNativeEditor {
		t.Errorf("caps=%+v, want plain chat profile", caps)
	}
	if caps.InstructionRole != InstructionSystemMessage {
		t.Errorf("instruction role=%v", caps.InstructionRole)
	}
}
