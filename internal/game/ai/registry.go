package ai

import (
	"fmt"
	"sort"
)

// Registry indexes Profiles by ID.
//
// Invariant: each profile ID is registered at most once.
type Registry struct {
	profiles map[string]*Profile
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{profiles: make(map[string]*Profile)}
}

// Register validates and stores p.
//
// Precondition: p must not be nil.
// Postcondition: returns error on validation failure or ID collision.
func (r *Registry) Register(p *Profile) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if _, exists := r.profiles[p.ID]; exists {
		return fmt.Errorf("ai.Registry: profile %q already registered", p.ID)
	}
	r.profiles[p.ID] = p
	return nil
}

// ProfileFor returns the Profile for id, or false if not registered.
func (r *Registry) ProfileFor(id string) (*Profile, bool) {
	p, ok := r.profiles[id]
	return p, ok
}

// Len returns the number of registered profiles.
func (r *Registry) Len() int { return len(r.profiles) }

// Scopes returns the distinct non-empty script scopes named by registered
// profiles, sorted.
func (r *Registry) Scopes() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, p := range r.profiles {
		if p.ScriptScope == "" {
			continue
		}
		if _, dup := seen[p.ScriptScope]; dup {
			continue
		}
		seen[p.ScriptScope] = struct{}{}
		out = append(out, p.ScriptScope)
	}
	sort.Strings(out)
	return out
}
