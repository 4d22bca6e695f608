package domain

// Agent is a role in the office roster: a fixed identity with a default
// generation backend. Immutable for the process lifetime.
type Agent struct {
	ID         string `json:"id" yaml:"id"`
	Name       string `json:"name" yaml:"name"`
	Department string `json:"department" yaml:"department"`
	Backend    string `json:"backend" yaml:"backend"` // default provider tag
	Model      string `json:"model" yaml:"model"`     // default model id
	Identity   string `json:"identity" yaml:"identity"` // natural-language system prompt
	Director   bool   `json:"director,omitempty" yaml:"director,omitempty"`
	Coordinator bool  `json:"coordinator,omitempty" yaml:"coordinator,omitempty"`
}

// RuntimeConfig is a per-agent operator override for backend selection.
// Zero-value fields fall back to the Agent's static defaults.
type RuntimeConfig struct {
	AgentID  string `json:"agentId"`
	Backend  string `json:"backend,omitempty"`
	Model    string `json:"model,omitempty"`
	Endpoint string `json:"endpoint,omitempty"`
}
