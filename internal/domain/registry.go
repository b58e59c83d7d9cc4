package domain

import (
	"sync"
)

// RegistryOption configures optional behaviour for the Registry.
type RegistryOption func(*Registry)

// WithCapacityEnforcement rejects signups once an activity reaches MaxParticipants.
func WithCapacityEnforcement(enabled bool) RegistryOption {
	return func(r *Registry) {
		r.enforceCapacity = enabled
	}
}

// Registry holds the activity catalog in memory. The key set is fixed at
// construction, so only the per-activity rosters need locking.
type Registry struct {
	order           []string
	entries         map[string]*entry
	enforceCapacity bool
}

type entry struct {
	mu           sync.Mutex
	activity     Activity
	participants []string
	members      map[string]struct{}
}

// NewRegistry builds a Registry from the provided catalog. Later duplicates
// of a name are ignored.
func NewRegistry(catalog []Activity, opts ...RegistryOption) *Registry {
	r := &Registry{
		order:   make([]string, 0, len(catalog)),
		entries: make(map[string]*entry, len(catalog)),
	}
	for _, opt := range opts {
		opt(r)
	}

	for _, a := range catalog {
		if _, exists := r.entries[a.Name]; exists {
			continue
		}
		e := &entry{
			activity: Activity{
				Name:            a.Name,
				Description:     a.Description,
				Schedule:        a.Schedule,
				MaxParticipants: a.MaxParticipants,
			},
			members: make(map[string]struct{}, len(a.Participants)),
		}
		for _, email := range a.Participants {
			if _, dup := e.members[email]; dup {
				continue
			}
			e.members[email] = struct{}{}
			e.participants = append(e.participants, email)
		}
		r.entries[a.Name] = e
		r.order = append(r.order, a.Name)
	}
	return r
}

// List returns a snapshot of every activity in catalog order.
func (r *Registry) List() []Activity {
	out := make([]Activity, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.entries[name].snapshot())
	}
	return out
}

// Get returns a snapshot of a single activity.
func (r *Registry) Get(name string) (Activity, error) {
	e, ok := r.entries[name]
	if !ok {
		return Activity{}, ErrActivityNotFound
	}
	return e.snapshot(), nil
}

// Signup adds email to the named activity's roster and returns the roster after the change.
func (r *Registry) Signup(name, email string) (Activity, error) {
	e, ok := r.entries[name]
	if !ok {
		return Activity{}, ErrActivityNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if _, exists := e.members[email]; exists {
		return Activity{}, ErrAlreadySignedUp
	}
	if r.enforceCapacity && len(e.participants) >= e.activity.MaxParticipants {
		return Activity{}, ErrActivityFull
	}

	e.members[email] = struct{}{}
	e.participants = append(e.participants, email)
	return e.snapshotLocked(), nil
}

// Unregister removes email from the named activity's roster and returns the roster after the change.
func (r *Registry) Unregister(name, email string) (Activity, error) {
	e, ok := r.entries[name]
	if !ok {
		return Activity{}, ErrActivityNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if _, exists := e.members[email]; !exists {
		return Activity{}, ErrNotRegistered
	}

	delete(e.members, email)
	for i, p := range e.participants {
		if p == email {
			e.participants = append(e.participants[:i], e.participants[i+1:]...)
			break
		}
	}
	return e.snapshotLocked(), nil
}

func (e *entry) snapshot() Activity {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

func (e *entry) snapshotLocked() Activity {
	a := e.activity
	a.Participants = make([]string, len(e.participants))
	copy(a.Participants, e.participants)
	return a
}
