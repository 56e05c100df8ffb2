// Package registry holds the in-memory activity roster and the operations
// that read and mutate it.
package registry

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"activity-signup/internal/models"
)

var (
	ErrActivityNotFound = errors.New("ACTIVITY_NOT_FOUND")
	ErrDuplicateSignup  = errors.New("DUPLICATE_SIGNUP")
	ErrNotRegistered    = errors.New("NOT_REGISTERED")
	ErrCapacityExceeded = errors.New("CAPACITY_EXCEEDED")
)

// Config controls registry policy.
type Config struct {
	// EnforceCapacity rejects signups once a roster reaches MaxParticipants.
	EnforceCapacity bool
}

// Seeder is the administrative surface used at startup, by tests and by
// tooling. It is never reachable over HTTP.
type Seeder interface {
	Seed(activities map[string]models.Activity)
	Put(name string, activity models.Activity)
	Reset()
}

// Registry maps activity names to their records. All methods are safe for
// concurrent use; each mutation validates and commits under one lock.
type Registry struct {
	mu         sync.RWMutex
	activities map[string]*models.Activity
	config     Config
}

var _ Seeder = (*Registry)(nil)

func New(config Config) *Registry {
	return &Registry{
		activities: make(map[string]*models.Activity),
		config:     config,
	}
}

// List returns a deep copy of every activity.
func (r *Registry) List() map[string]models.Activity {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]models.Activity, len(r.activities))
	for name, a := range r.activities {
		out[name] = a.Clone()
	}
	return out
}

// Get returns a copy of one activity.
func (r *Registry) Get(name string) (models.Activity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.activities[name]
	if !ok {
		return models.Activity{}, fmt.Errorf("%w: %s", ErrActivityNotFound, name)
	}
	return a.Clone(), nil
}

// Names returns activity names in lexical order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.activities))
	for name := range r.activities {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Signup appends email to the roster of activity and returns the updated
// record. On error the registry is unchanged.
func (r *Registry) Signup(activity, email string) (models.Activity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.activities[activity]
	if !ok {
		return models.Activity{}, fmt.Errorf("%w: %s", ErrActivityNotFound, activity)
	}
	if a.HasParticipant(email) {
		return models.Activity{}, fmt.Errorf("%w: %s in %s", ErrDuplicateSignup, email, activity)
	}
	if r.config.EnforceCapacity && a.IsFull() {
		return models.Activity{}, fmt.Errorf("%w: %s has %d of %d", ErrCapacityExceeded, activity, len(a.Participants), a.MaxParticipants)
	}

	a.Participants = append(a.Participants, email)
	return a.Clone(), nil
}

// Unregister removes email from the roster of activity and returns the
// updated record. On error the registry is unchanged.
func (r *Registry) Unregister(activity, email string) (models.Activity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.activities[activity]
	if !ok {
		return models.Activity{}, fmt.Errorf("%w: %s", ErrActivityNotFound, activity)
	}
	idx := slices.Index(a.Participants, email)
	if idx < 0 {
		return models.Activity{}, fmt.Errorf("%w: %s in %s", ErrNotRegistered, email, activity)
	}

	a.Participants = slices.Delete(a.Participants, idx, idx+1)
	return a.Clone(), nil
}

// Seed replaces the whole registry.
func (r *Registry) Seed(activities map[string]models.Activity) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.activities = make(map[string]*models.Activity, len(activities))
	for name, a := range activities {
		c := a.Clone()
		r.activities[name] = &c
	}
}

// Put inserts or replaces a single activity.
func (r *Registry) Put(name string, activity models.Activity) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c := activity.Clone()
	r.activities[name] = &c
}

// Reset removes every activity.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.activities = make(map[string]*models.Activity)
}
