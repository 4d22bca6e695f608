package config

import "fmt"

// Issue is a single validation problem.
type Issue struct {
	Path    string
	Message string
}

var validLogLevels = map[string]bool{
	"silent": true, "fatal": true, "error": true, "warn": true,
	"info": true, "debug": true, "trace": true,
}

var validBindModes = map[string]bool{
	"loopback": true, "lan": true, "custom": true,
}

var validStoreDrivers = map[string]bool{
	"sqlite": true, "memory": true,
}

// Validate checks the config for problems. It returns all issues found
// rather than stopping at the first.
func Validate(cfg *Config) []Issue {
	var issues []Issue

	if cfg.Gateway.Port < 1 || cfg.Gateway.Port > 65535 {
		issues = append(issues, Issue{
			Path:    "gateway.port",
			Message: fmt.Sprintf("port %d out of range 1-65535", cfg.Gateway.Port),
		})
	}
	if !validBindModes[cfg.Gateway.Bind] {
		issues = append(issues, Issue{
			Path:    "gateway.bind",
			Message: fmt.Sprintf("unknown bind mode %q (loopback, lan, custom)", cfg.Gateway.Bind),
		})
	}
	if cfg.Gateway.Bind == "custom" && cfg.Gateway.CustomBindHost == "" {
		issues = append(issues, Issue{
			Path:    "gateway.customBindHost",
			Message: "bind mode custom requires customBindHost",
		})
	}
	if cfg.Gateway.Bind != "loopback" && cfg.Gateway.Auth.Token == "" {
		issues = append(issues, Issue{
			Path:    "gateway.auth.token",
			Message: "non-loopback bind requires an auth token",
		})
	}
	if !validLogLevels[cfg.Logging.Level] {
		issues = append(issues, Issue{
			Path:    "logging.level",
			Message: fmt.Sprintf("unknown log level %q", cfg.Logging.Level),
		})
	}
	if !validStoreDrivers[cfg.Store.Driver] {
		issues = append(issues, Issue{
			Path:    "store.driver",
			Message: fmt.Sprintf("unknown store driver %q (sqlite, memory)", cfg.Store.Driver),
		})
	}
	if cfg.Governance.CooldownSeconds < 0 {
		issues = append(issues, Issue{
			Path:    "governance.cooldownSeconds",
			Message: "cooldown must not be negative",
		})
	}
	if cfg.Governance.DebounceActiveMs > cfg.Governance.DebounceIdleMs {
		issues = append(issues, Issue{
			Path:    "governance.debounceActiveMs",
			Message: "active debounce should not exceed idle debounce",
		})
	}
	if cfg.Notify.IRC != nil {
		if cfg.Notify.IRC.Server == "" {
			issues = append(issues, Issue{Path: "notify.irc.server", Message: "server is required"})
		}
		if cfg.Notify.IRC.Nick == "" {
			issues = append(issues, Issue{Path: "notify.irc.nick", Message: "nick is required"})
		}
		if cfg.Notify.IRC.Channel == "" {
			issues = append(issues, Issue{Path: "notify.irc.channel", Message: "channel is required"})
		}
	}

	return issues
}
