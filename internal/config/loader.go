package config

import (
	"os"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// envVarPattern matches ${VAR_NAME} patterns in strings.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// expandEnvVars replaces ${VAR} patterns with environment variable values.
// Unset variables are left unchanged.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[2 : len(match)-1]
		if val, ok := os.LookupEnv(varName); ok {
			return val
		}
		return match
	})
}

// expandSensitiveFields processes environment variable references in
// credential fields so keys and tokens can be stored as ${ENV_VAR}.
func expandSensitiveFields(cfg *Config) {
	cfg.Backends.Claude.APIKey = expandEnvVars(cfg.Backends.Claude.APIKey)
	cfg.Backends.Gemini.APIKey = expandEnvVars(cfg.Backends.Gemini.APIKey)
	cfg.Gateway.Auth.Token = expandEnvVars(cfg.Gateway.Auth.Token)
	if cfg.Notify.IRC != nil {
		cfg.Notify.IRC.Password = expandEnvVars(cfg.Notify.IRC.Password)
	}
}

// Load reads the config file, applies environment overrides, and returns
// a merged Config. A missing file produces defaults only.
func Load(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			applyEnvOverrides(&cfg)
			return cfg, nil
		}
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, &ConfigError{Message: "failed to parse config: " + err.Error()}
	}

	applyDefaults(&cfg)
	applyEnvOverrides(&cfg)
	expandSensitiveFields(&cfg)
	return cfg, nil
}

// applyDefaults fills zero-value fields with sensible defaults.
func applyDefaults(cfg *Config) {
	if cfg.Gateway.Port == 0 {
		cfg.Gateway.Port = 18711
	}
	if cfg.Gateway.Bind == "" {
		cfg.Gateway.Bind = "loopback"
	}
	if cfg.Backends.Claude.Model == "" {
		cfg.Backends.Claude.Model = "claude-sonnet-4-20250514"
	}
	if cfg.Backends.Gemini.Model == "" {
		cfg.Backends.Gemini.Model = "gemini-2.0-flash"
	}
	if cfg.Backends.Ollama.Model == "" {
		cfg.Backends.Ollama.Model = "llama3"
	}
	if cfg.Office.MaxTokens == 0 {
		cfg.Office.MaxTokens = 2048
	}
	if cfg.Governance.CooldownSeconds == 0 {
		cfg.Governance.CooldownSeconds = 45
	}
	if cfg.Governance.DebounceActiveMs == 0 {
		cfg.Governance.DebounceActiveMs = 1500
	}
	if cfg.Governance.DebounceIdleMs == 0 {
		cfg.Governance.DebounceIdleMs = 8000
	}
	if cfg.Governance.RecentMessages == 0 {
		cfg.Governance.RecentMessages = 4
	}
	if cfg.Governance.RecentTurns == 0 {
		cfg.Governance.RecentTurns = 6
	}
	if cfg.Store.Driver == "" {
		cfg.Store.Driver = "sqlite"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Notify.IRC != nil && cfg.Notify.IRC.Port == 0 {
		cfg.Notify.IRC.Port = 6667
	}
}

// applyEnvOverrides reads OFFICED_* environment variables and overrides
// config values.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("OFFICED_GATEWAY_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Gateway.Port = port
		}
	}
	if v := os.Getenv("OFFICED_GATEWAY_BIND"); v != "" {
		cfg.Gateway.Bind = v
	}
	if v := os.Getenv("OFFICED_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := os.Getenv("OFFICED_CLAUDE_API_KEY"); v != "" {
		cfg.Backends.Claude.APIKey = v
	}
	if v := os.Getenv("OFFICED_GEMINI_API_KEY"); v != "" {
		cfg.Backends.Gemini.APIKey = v
	}
}
