package config

// Config is the root configuration for officed.
type Config struct {
	Backends   BackendsConfig   `yaml:"backends,omitempty"`
	Gateway    GatewayConfig    `yaml:"gateway,omitempty"`
	Office     OfficeConfig     `yaml:"office,omitempty"`
	Governance GovernanceConfig `yaml:"governance,omitempty"`
	Store      StoreConfig      `yaml:"store,omitempty"`
	Logging    LoggingConfig    `yaml:"logging,omitempty"`
	Notify     NotifyConfig     `yaml:"notify,omitempty"`
}

// BackendsConfig holds credentials and model choices for the generation
// backends. A backend with no credential is simply not registered; if
// none has one, officed runs in offline mode.
type BackendsConfig struct {
	Claude ClaudeBackend `yaml:"claude,omitempty"`
	Gemini GeminiBackend `yaml:"gemini,omitempty"`
	Ollama OllamaBackend `yaml:"ollama,omitempty"`
}

// ClaudeBackend configures the Claude API backend.
type ClaudeBackend struct {
	APIKey string `yaml:"apiKey,omitempty"`
	Model  string `yaml:"model,omitempty"`
}

// GeminiBackend configures the Gemini API backend.
type GeminiBackend struct {
	APIKey string `yaml:"apiKey,omitempty"`
	Model  string `yaml:"model,omitempty"`
}

// OllamaBackend configures a local Ollama backend.
type OllamaBackend struct {
	Enabled  bool   `yaml:"enabled,omitempty"`
	Endpoint string `yaml:"endpoint,omitempty"`
	Model    string `yaml:"model,omitempty"`
}

// GatewayConfig controls the HTTP/WebSocket server.
type GatewayConfig struct {
	Port           int         `yaml:"port,omitempty"`
	Bind           string      `yaml:"bind,omitempty"` // "loopback" | "lan" | "custom"
	CustomBindHost string      `yaml:"customBindHost,omitempty"`
	Auth           GatewayAuth `yaml:"auth,omitempty"`
}

// GatewayAuth configures gateway authentication.
type GatewayAuth struct {
	Token string `yaml:"token,omitempty"` // empty disables auth (loopback only)
}

// OfficeConfig controls workflow behavior.
type OfficeConfig struct {
	RosterPath  string   `yaml:"rosterPath,omitempty"`
	MaxTokens   int      `yaml:"maxTokens,omitempty"`
	Temperature *float64 `yaml:"temperature,omitempty"`
}

// GovernanceConfig tunes the governance watcher.
type GovernanceConfig struct {
	CooldownSeconds  int `yaml:"cooldownSeconds,omitempty"`
	DebounceActiveMs int `yaml:"debounceActiveMs,omitempty"` // while a workflow is running
	DebounceIdleMs   int `yaml:"debounceIdleMs,omitempty"`
	RecentMessages   int `yaml:"recentMessages,omitempty"`
	RecentTurns      int `yaml:"recentTurns,omitempty"`
}

// StoreConfig selects the persistence backend.
type StoreConfig struct {
	Driver string `yaml:"driver,omitempty"` // "sqlite" | "memory"
	Path   string `yaml:"path,omitempty"`   // sqlite file; defaults under the data dir
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level string `yaml:"level,omitempty"` // "silent" | "fatal" | "error" | "warn" | "info" | "debug" | "trace"
}

// NotifyConfig configures optional outbound announcements.
type NotifyConfig struct {
	IRC *IRCNotify `yaml:"irc,omitempty"`
}

// IRCNotify announces workflow completions and warnings to an IRC channel.
type IRCNotify struct {
	Server   string `yaml:"server"`
	Port     int    `yaml:"port,omitempty"`
	Nick     string `yaml:"nick"`
	Password string `yaml:"password,omitempty"`
	Channel  string `yaml:"channel"`
	UseTLS   bool   `yaml:"useTLS,omitempty"`
}
