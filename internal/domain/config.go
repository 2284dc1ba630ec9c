package domain

import "time"

// Config mirrors ~/.shellpilot/config.yaml.
type Config struct {
	ConfigFormatVersion string            `yaml:"config_format_version"`
	AI                  AISettings        `yaml:"ai"`
	Safety              SafetySettings    `yaml:"safety"`
	Execution           ExecutionSettings `yaml:"execution"`
	Patterns            PatternSettings   `yaml:"patterns"`
	Models              []ModelDefinition `yaml:"models"`
}

// AISettings controls the AI candidate requester.
type AISettings struct {
	Enabled        bool   `yaml:"enabled"`
	DefaultModel   string `yaml:"default_model"`
	TimeoutSeconds int    `yaml:"timeout"`
	CacheResponses bool   `yaml:"cache_responses"`
}

// Timeout returns the per-invocation deadline for the AI call.
func (s AISettings) Timeout() time.Duration {
	if s.TimeoutSeconds <= 0 {
		return DefaultAITimeout
	}
	return time.Duration(s.TimeoutSeconds) * time.Second
}

// SafetySettings defines guardrail behavior. Disabling safety checks never
// disables the Forbidden level; the classifier still runs for display.
type SafetySettings struct {
	Enabled   bool   `yaml:"enabled"`
	RulesFile string `yaml:"rules_file"`
}

// ExecutionSettings controls how commands run.
type ExecutionSettings struct {
	Shell       string `yaml:"shell"`
	AutoConfirm bool   `yaml:"auto_confirm"`
}

// PatternSettings configures the offline pattern engine.
type PatternSettings struct {
	RulesFile string `yaml:"rules_file"`
}

// ModelDefinition describes an AI provider configuration declared in the
// config file.
type ModelDefinition struct {
	Name       string          `yaml:"name"`
	Endpoint   string          `yaml:"endpoint"`
	AuthEnvVar string          `yaml:"auth_env_var"`
	ModelID    string          `yaml:"model_id"`
	MaxTokens  int             `yaml:"max_tokens"`
	Prompt     []PromptMessage `yaml:"prompt"`
}

// PromptMessage follows the role/content pair required by most chat APIs.
type PromptMessage struct {
	Role    string `yaml:"role"`
	Content string `yaml:"content"`
}
