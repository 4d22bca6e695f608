package config

import (
	"os"
	"path/filepath"
)

const defaultBaseDir = ".officed"

// Paths holds resolved filesystem paths for officed data.
type Paths struct {
	Base        string // ~/.officed
	Config      string // ~/.officed/config.yaml
	Roster      string // ~/.officed/roster.yaml
	Data        string // ~/.officed/data
	Attachments string // ~/.officed/attachments
	Logs        string // ~/.officed/logs
}

// ResolvePaths computes all standard paths from the home directory.
// If OFFICED_HOME is set, it overrides the default base directory.
func ResolvePaths() (Paths, error) {
	base := os.Getenv("OFFICED_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Paths{}, err
		}
		base = filepath.Join(home, defaultBaseDir)
	}

	return Paths{
		Base:        base,
		Config:      filepath.Join(base, "config.yaml"),
		Roster:      filepath.Join(base, "roster.yaml"),
		Data:        filepath.Join(base, "data"),
		Attachments: filepath.Join(base, "attachments"),
		Logs:        filepath.Join(base, "logs"),
	}, nil
}

// EnsureDirs creates all standard directories if they don't exist.
func (p Paths) EnsureDirs() error {
	dirs := []string{p.Base, p.Data, p.Attachments, p.Logs}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0o700); err != nil {
			return err
		}
	}
	return nil
}
