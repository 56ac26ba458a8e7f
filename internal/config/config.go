// Package config loads and validates the runtime's YAML configuration
// (spec §6). It mirrors the teacher's internal/config/config.go: a single
// Config struct decoded with gopkg.in/yaml.v3, yaml struct tags throughout,
// and schema validation kept in its own file. Schema choice follows
// original_source's runtime/config.py:validate_config_schema exactly —
// single-mode vs multi-mode is decided by the presence of a top-level
// "modes" key, not by any explicit version field.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/windlgrass/om1agent/internal/errtax"
)

// PluginConfig is one `{type, name, config}` entry — a sensor, background,
// or simulator plugin reference (spec §6). Name disambiguates two entries
// of the same Type (e.g. two Telegram sensors watching different chats)
// and gives the Fuser a stable per-entry identity; it is optional, and an
// agent_inputs entry without one is named "<type>_<index>" after its
// position in the list.
type PluginConfig struct {
	Type   string         `yaml:"type"`
	Name   string         `yaml:"name"`
	Config map[string]any `yaml:"config"`
}

// LLMConfig is the `cortex_llm` block.
type LLMConfig struct {
	Type   string             `yaml:"type"`
	Config LLMBackendTunables `yaml:"config"`
}

// LLMBackendTunables holds the optional knobs under cortex_llm.config.
// Timeout and Temperature are decoded and schema-checked but not read
// anywhere else: the LLM request timeout is always
// llmadapter.DefaultTimeout (60s).
type LLMBackendTunables struct {
	BaseURL     string  `yaml:"base_url"`
	APIKey      string  `yaml:"api_key"`
	Model       string  `yaml:"model"`
	Timeout     float64 `yaml:"timeout"`
	Temperature float64 `yaml:"temperature"`
}

// ActionConfig is one `agent_actions` entry.
type ActionConfig struct {
	Name              string         `yaml:"name"`
	LLMLabel          string         `yaml:"llm_label"`
	Connector         string         `yaml:"connector"`
	Config            map[string]any `yaml:"config"`
	ExcludeFromPrompt bool           `yaml:"exclude_from_prompt"`
}

// Mode holds one named mode's full subset of runtime config, for
// multi-mode configurations (spec §6: "modes: optional -- if present, each
// mode contains the above subset and a mode-switching facility is
// enabled").
type Mode struct {
	SystemPromptBase     string         `yaml:"system_prompt_base"`
	SystemGovernance     string         `yaml:"system_governance"`
	SystemPromptExamples string         `yaml:"system_prompt_examples"`
	CortexLLM            LLMConfig      `yaml:"cortex_llm"`
	AgentInputs          []PluginConfig `yaml:"agent_inputs"`
	AgentActions         []ActionConfig `yaml:"agent_actions"`
	Simulators           []PluginConfig `yaml:"simulators"`
	Backgrounds          []PluginConfig `yaml:"backgrounds"`
}

// Config is the root of the runtime's YAML configuration.
type Config struct {
	Hertz float64 `yaml:"hertz"`

	// Single-mode fields. Empty when Modes is set.
	Mode `yaml:",inline"`

	// DefaultMode and Modes are set for multi-mode configurations.
	DefaultMode string          `yaml:"default_mode"`
	Modes       map[string]Mode `yaml:"modes"`
}

// IsMultiMode reports whether this config carries a non-empty "modes" key
// (the same test original_source's validate_config_schema uses to pick a
// schema).
func (c Config) IsMultiMode() bool {
	return len(c.Modes) > 0
}

// ActiveMode resolves the Mode to run: for single-mode config, the root
// fields; for multi-mode config, DefaultMode (or the alphabetically first
// mode name if DefaultMode is unset).
func (c Config) ActiveMode() (Mode, error) {
	if !c.IsMultiMode() {
		return c.Mode, nil
	}
	name := c.DefaultMode
	if name == "" {
		for k := range c.Modes {
			if name == "" || k < name {
				name = k
			}
		}
	}
	mode, ok := c.Modes[name]
	if !ok {
		return Mode{}, errtax.NewConfigError("config", fmt.Errorf("default_mode %q not found among configured modes", name))
	}
	return mode, nil
}

// Load reads, schema-validates, and decodes the YAML config at path.
func Load(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errtax.NewConfigError("config", fmt.Errorf("read %s: %w", path, err))
	}

	var generic map[string]any
	if err := yaml.Unmarshal(raw, &generic); err != nil {
		return Config{}, errtax.NewConfigError("config", fmt.Errorf("parse %s: %w", path, err))
	}
	if err := ValidateSchema(generic); err != nil {
		return Config{}, errtax.NewConfigError("config", fmt.Errorf("validate %s: %w", path, err))
	}

	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, errtax.NewConfigError("config", fmt.Errorf("decode %s: %w", path, err))
	}
	if cfg.Hertz <= 0 {
		return Config{}, errtax.NewConfigError("config", fmt.Errorf("hertz must be > 0, got %v", cfg.Hertz))
	}
	return cfg, nil
}
