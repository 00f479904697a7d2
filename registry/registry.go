// Copyright (c) 2026 The Crowdmill developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package registry provides an in-process identity registry. It tracks
// profiles, i.e. an owner identity plus member identities, and the named
// roles that have been granted to individual identities. The crowdfund
// engine consumes it through the crowdfund Registry and Roles interfaces.
package registry

import (
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

var (
	// ErrProfileNotFound is returned when a profile is not found in the
	// registry.
	ErrProfileNotFound = errors.New("profile not found")
)

// Profile represents an identity profile. A profile is controlled by its
// owner and by each of its members.
type Profile struct {
	ID      string   `json:"id"`
	Owner   string   `json:"owner"`
	Members []string `json:"members"`
}

// Registry provides profile and role lookups. All methods are safe for
// concurrent access.
type Registry struct {
	sync.RWMutex
	profiles map[string]*Profile
	roles    map[string]map[string]struct{} // [identity][role]
}

// ProfileAdd creates a new profile and returns its id.
func (r *Registry) ProfileAdd(owner string, members []string) string {
	r.Lock()
	defer r.Unlock()

	p := Profile{
		ID:      uuid.New().String(),
		Owner:   owner,
		Members: members,
	}
	r.profiles[p.ID] = &p

	log.Debugf("Profile added %v, owner %v", p.ID, owner)

	return p.ID
}

// Profile returns the profile with the provided id.
func (r *Registry) Profile(profileID string) (*Profile, error) {
	r.RLock()
	defer r.RUnlock()

	p, ok := r.profiles[profileID]
	if !ok {
		return nil, ErrProfileNotFound
	}

	// Return a copy so that the caller cannot mutate registry state.
	c := *p
	c.Members = append([]string(nil), p.Members...)
	return &c, nil
}

// IsOwnerOrMember returns whether the provided identity is the owner of the
// profile or one of its members.
//
// This function satisfies the crowdfund Registry interface.
func (r *Registry) IsOwnerOrMember(profileID, identity string) (bool, error) {
	r.RLock()
	defer r.RUnlock()

	p, ok := r.profiles[profileID]
	if !ok {
		return false, ErrProfileNotFound
	}
	if p.Owner == identity {
		return true, nil
	}
	for _, m := range p.Members {
		if m == identity {
			return true, nil
		}
	}

	return false, nil
}

// RoleGrant grants the provided role to the identity.
func (r *Registry) RoleGrant(identity, role string) {
	r.Lock()
	defer r.Unlock()

	roles, ok := r.roles[identity]
	if !ok {
		roles = make(map[string]struct{})
		r.roles[identity] = roles
	}
	roles[role] = struct{}{}

	log.Debugf("Role %v granted to %v", role, identity)
}

// RoleRevoke removes the provided role from the identity. It is a noop when
// the role was never granted.
func (r *Registry) RoleRevoke(identity, role string) {
	r.Lock()
	defer r.Unlock()

	delete(r.roles[identity], role)

	log.Debugf("Role %v revoked from %v", role, identity)
}

// HasRole returns whether the identity holds the provided role.
//
// This function satisfies the crowdfund Roles interface.
func (r *Registry) HasRole(identity, role string) (bool, error) {
	r.RLock()
	defer r.RUnlock()

	_, ok := r.roles[identity][role]
	return ok, nil
}

// New returns a new Registry.
func New() *Registry {
	return &Registry{
		profiles: make(map[string]*Profile),
		roles:    make(map[string]map[string]struct{}),
	}
}
