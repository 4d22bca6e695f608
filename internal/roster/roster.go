// Package roster loads the fixed agent roster. The roster is read once
// at startup and is immutable afterwards.
package roster

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/officedhq/officed/internal/domain"
)

//go:embed roster.yaml
var defaultRoster []byte

// Roster is the set of agents in the office, in declaration order.
type Roster struct {
	agents []domain.Agent
	byID   map[string]domain.Agent
}

type rosterFile struct {
	Agents []domain.Agent `yaml:"agents"`
}

// Load returns the roster from the given file, or the embedded default
// roster when path is empty or the file does not exist.
func Load(path string) (*Roster, error) {
	data := defaultRoster
	if path != "" {
		b, err := os.ReadFile(path)
		if err == nil {
			data = b
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading roster: %w", err)
		}
	}

	var rf rosterFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("parsing roster: %w", err)
	}
	if len(rf.Agents) == 0 {
		return nil, fmt.Errorf("roster contains no agents")
	}

	r := &Roster{byID: make(map[string]domain.Agent, len(rf.Agents))}
	for _, a := range rf.Agents {
		if a.ID == "" {
			return nil, fmt.Errorf("roster agent with empty id")
		}
		if _, dup := r.byID[a.ID]; dup {
			return nil, fmt.Errorf("duplicate roster agent id %q", a.ID)
		}
		r.agents = append(r.agents, a)
		r.byID[a.ID] = a
	}
	return r, nil
}

// Get returns the agent with the given id.
func (r *Roster) Get(id string) (domain.Agent, bool) {
	a, ok := r.byID[id]
	return a, ok
}

// All returns every agent in declaration order.
func (r *Roster) All() []domain.Agent {
	out := make([]domain.Agent, len(r.agents))
	copy(out, r.agents)
	return out
}

// Director returns the director-facing agent.
func (r *Roster) Director() (domain.Agent, bool) {
	for _, a := range r.agents {
		if a.Director {
			return a, true
		}
	}
	return domain.Agent{}, false
}

// Coordinators returns the coordinator agents in declaration order.
// The first runs brainstorming and priority assignment, the second the
// schedule plan.
func (r *Roster) Coordinators() []domain.Agent {
	var out []domain.Agent
	for _, a := range r.agents {
		if a.Coordinator {
			out = append(out, a)
		}
	}
	return out
}

// DefaultTeam returns the fallback collaboration participants: every
// non-director, non-coordinator agent in declaration order.
func (r *Roster) DefaultTeam() []string {
	var ids []string
	for _, a := range r.agents {
		if a.Director || a.Coordinator {
			continue
		}
		ids = append(ids, a.ID)
	}
	return ids
}

// FilterKnown keeps only ids present in the roster, excluding the
// director, preserving order and dropping duplicates.
func (r *Roster) FilterKnown(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	var out []string
	for _, id := range ids {
		a, ok := r.byID[id]
		if !ok || a.Director || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
