// Copyright (c) 2026 The Crowdmill developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package crowdfund implements a two stage funding engine. During the
// crowdfunding stage, backers pledge value toward a project's funding
// target. The pledge that reaches the target bootstraps the release stage:
// each backer is assigned a fixed, normalized voting power derived from
// their pledge, the raised funds are moved into a custody pool, and all
// further fund movement is gated behind weighted threshold votes on the
// executor's milestones.
//
// The engine does not custody value or answer identity questions itself.
// Those concerns are injected through the Custodian, Bank, Registry, and
// Roles interfaces.
package crowdfund

import (
	"sync"

	"github.com/crowdmill/crowdmill/events"
	"github.com/crowdmill/crowdmill/store"
)

const (
	// RoleExecutor is the role that must be held by an identity in
	// order to offer milestone plans and submit milestones.
	RoleExecutor = "executor"

	// RoleSupplier is the role that must be held by an identity in
	// order to vote on plans, milestones, and project outcomes.
	RoleSupplier = "supplier"

	// DefaultThreshold is the default percentage of total voting power
	// that a tally counter must strictly exceed in order to resolve.
	DefaultThreshold uint32 = 50
)

// Custodian provides pool custody. A pool holds the raised funds of a
// bootstrapped project and releases them only through payouts.
type Custodian interface {
	// PoolCreate creates a new active pool, moving the opening
	// balance out of the funder account and into the pool.
	PoolCreate(opening uint64, funder string, governors []string) (string, error)

	// PoolFund moves value from the funder account into the pool.
	PoolFund(poolID, funder string, amount uint64) error

	// PoolBalance returns the balance of the pool.
	PoolBalance(poolID string) (uint64, error)

	// PoolSetActive sets the active flag of the pool.
	PoolSetActive(poolID string, active bool) error

	// IsPoolGovernor returns whether the identity is a governor of
	// the pool.
	IsPoolGovernor(poolID, identity string) (bool, error)

	// PoolPayout moves value out of the pool and into the provided
	// account.
	PoolPayout(poolID, to string, amount uint64) error
}

// Bank moves value between identity accounts.
type Bank interface {
	// Transfer moves value between two accounts. An insufficient
	// balance error is returned when the source account is short.
	Transfer(from, to string, amount uint64) error
}

// Registry provides identity profile lookups.
type Registry interface {
	// IsOwnerOrMember returns whether the identity is the owner of
	// the profile or one of its members.
	IsOwnerOrMember(profileID, identity string) (bool, error)
}

// Roles answers role authority checks.
type Roles interface {
	// HasRole returns whether the identity holds the named role.
	HasRole(identity, role string) (bool, error)
}

// Engine is the crowdfunding and fund release engine.
//
// All operations serialize on the engine mutex and execute as a single
// atomic unit; the mutex is held across collaborator transfers so a
// reentrant call cannot observe or corrupt in-flight tallies or balances.
type Engine struct {
	sync.Mutex
	custodian Custodian
	bank      Bank
	registry  Registry
	roles     Roles
	events    *events.Manager
	kv        store.BlobKV
	threshold uint32

	// projects contains all engine state, keyed by project id. It is
	// mirrored to the kv store after every successful mutation and
	// reloaded on startup.
	projects map[string]*project
}

// Option sets an optional engine parameter.
type Option func(*Engine)

// WithStore mirrors engine state to the provided blob kv store. Persisted
// projects are reloaded on engine creation.
func WithStore(kv store.BlobKV) Option {
	return func(e *Engine) {
		e.kv = kv
	}
}

// WithEvents emits engine events through the provided manager.
func WithEvents(m *events.Manager) Option {
	return func(e *Engine) {
		e.events = m
	}
}

// WithThreshold overrides the default vote threshold percentage.
func WithThreshold(threshold uint32) Option {
	return func(e *Engine) {
		e.threshold = threshold
	}
}

// emit emits an event if an event manager has been provided.
func (e *Engine) emit(event string, data interface{}) {
	if e.events == nil {
		return
	}
	e.events.Emit(event, data)
}

// New returns a new Engine. Any projects found in the provided store are
// loaded into the engine before it is returned.
func New(custodian Custodian, bank Bank, registry Registry, roles Roles, opts ...Option) (*Engine, error) {
	e := Engine{
		custodian: custodian,
		bank:      bank,
		registry:  registry,
		roles:     roles,
		threshold: DefaultThreshold,
		projects:  make(map[string]*project),
	}
	for _, opt := range opts {
		opt(&e)
	}

	if e.kv != nil {
		err := e.loadProjects()
		if err != nil {
			return nil, err
		}
	}

	return &e, nil
}
