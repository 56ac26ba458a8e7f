package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	return path
}

const singleModeYAML = `
hertz: 10
system_prompt_base: "You are a robot."
cortex_llm:
  type: openai
  config:
    model: gpt-4o-mini
agent_inputs:
  - type: vision
    config: {}
agent_actions:
  - name: speak
    llm_label: speak
    connector: tts
`

const multiModeYAML = `
hertz: 10
default_mode: idle
modes:
  idle:
    cortex_llm:
      type: openai
    agent_inputs: []
    agent_actions: []
  active:
    cortex_llm:
      type: anthropic
    agent_inputs: []
    agent_actions: []
`

func TestLoadSingleModeConfig(t *testing.T) {
	path := writeTempConfig(t, singleModeYAML)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.IsMultiMode() {
		t.Fatal("expected single-mode config")
	}
	if cfg.CortexLLM.Type != "openai" {
		t.Fatalf("unexpected llm type: %s", cfg.CortexLLM.Type)
	}
	mode, err := cfg.ActiveMode()
	if err != nil {
		t.Fatalf("unexpected error resolving active mode: %v", err)
	}
	if len(mode.AgentActions) != 1 || mode.AgentActions[0].Name != "speak" {
		t.Fatalf("unexpected actions: %+v", mode.AgentActions)
	}
}

func TestLoadMultiModeConfigSelectsDefaultMode(t *testing.T) {
	path := writeTempConfig(t, multiModeYAML)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cfg.IsMultiMode() {
		t.Fatal("expected multi-mode config")
	}
	mode, err := cfg.ActiveMode()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mode.CortexLLM.Type != "openai" {
		t.Fatalf("expected the default_mode's llm type, got %s", mode.CortexLLM.Type)
	}
}

func TestLoadRejectsMissingHertz(t *testing.T) {
	path := writeTempConfig(t, `
cortex_llm: { type: openai }
agent_inputs: []
agent_actions: []
`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected an error for a config missing hertz")
	}
}

func TestLoadRejectsSchemaViolation(t *testing.T) {
	path := writeTempConfig(t, `
hertz: 10
agent_inputs: []
agent_actions: []
`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected a schema validation error for a config missing cortex_llm")
	}
}
