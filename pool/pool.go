// Copyright (c) 2026 The Crowdmill developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package pool provides an in-process treasury that implements the value
// transfer and pool custody collaborators consumed by the crowdfund engine.
// The treasury tracks an account balance per identity and a balance,
// active flag, and governor set per pool.
package pool

import (
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

var (
	// ErrPoolNotFound is returned when a pool is not found in the
	// treasury.
	ErrPoolNotFound = errors.New("pool not found")

	// ErrInsufficientBalance is returned when an account or pool does
	// not hold enough value to cover a transfer.
	ErrInsufficientBalance = errors.New("insufficient balance")
)

// Pool represents a custody pool. Funds held by a pool belong to the pool
// itself, not to any individual account, and can only leave through a
// payout.
type Pool struct {
	ID        string
	Balance   uint64
	Active    bool
	Governors map[string]struct{}
}

// Treasury tracks account balances and custody pools. All methods are safe
// for concurrent access.
type Treasury struct {
	sync.Mutex
	balances map[string]uint64
	pools    map[string]*Pool
}

// Deposit credits the provided account. This is how value enters the
// treasury.
func (t *Treasury) Deposit(account string, amount uint64) {
	t.Lock()
	defer t.Unlock()

	t.balances[account] += amount
}

// Balance returns the balance of the provided account.
func (t *Treasury) Balance(account string) uint64 {
	t.Lock()
	defer t.Unlock()

	return t.balances[account]
}

// Transfer moves value between two accounts.
//
// This function satisfies the crowdfund Bank interface.
func (t *Treasury) Transfer(from, to string, amount uint64) error {
	t.Lock()
	defer t.Unlock()

	return t.transfer(from, to, amount)
}

// transfer moves value between two accounts. The caller must hold the
// treasury lock.
func (t *Treasury) transfer(from, to string, amount uint64) error {
	if t.balances[from] < amount {
		return ErrInsufficientBalance
	}
	t.balances[from] -= amount
	t.balances[to] += amount

	log.Tracef("Transfer %v: %v -> %v", amount, from, to)

	return nil
}

// PoolCreate creates a new active pool, moving the opening balance out of
// the funder account and into the pool. The returned pool id is used for
// all further pool operations.
//
// This function satisfies the crowdfund Custodian interface.
func (t *Treasury) PoolCreate(opening uint64, funder string, governors []string) (string, error) {
	t.Lock()
	defer t.Unlock()

	if t.balances[funder] < opening {
		return "", ErrInsufficientBalance
	}
	t.balances[funder] -= opening

	g := make(map[string]struct{}, len(governors))
	for _, v := range governors {
		g[v] = struct{}{}
	}
	p := Pool{
		ID:        uuid.New().String(),
		Balance:   opening,
		Active:    true,
		Governors: g,
	}
	t.pools[p.ID] = &p

	log.Infof("Pool %v created; opening balance %v, %v governors",
		p.ID, opening, len(governors))

	return p.ID, nil
}

// PoolFund moves value from the funder account into the pool.
//
// This function satisfies the crowdfund Custodian interface.
func (t *Treasury) PoolFund(poolID, funder string, amount uint64) error {
	t.Lock()
	defer t.Unlock()

	p, ok := t.pools[poolID]
	if !ok {
		return ErrPoolNotFound
	}
	if t.balances[funder] < amount {
		return ErrInsufficientBalance
	}
	t.balances[funder] -= amount
	p.Balance += amount

	return nil
}

// PoolBalance returns the balance of the provided pool.
//
// This function satisfies the crowdfund Custodian interface.
func (t *Treasury) PoolBalance(poolID string) (uint64, error) {
	t.Lock()
	defer t.Unlock()

	p, ok := t.pools[poolID]
	if !ok {
		return 0, ErrPoolNotFound
	}
	return p.Balance, nil
}

// PoolSetActive sets the active flag of the provided pool.
//
// This function satisfies the crowdfund Custodian interface.
func (t *Treasury) PoolSetActive(poolID string, active bool) error {
	t.Lock()
	defer t.Unlock()

	p, ok := t.pools[poolID]
	if !ok {
		return ErrPoolNotFound
	}
	p.Active = active

	log.Debugf("Pool %v active: %v", poolID, active)

	return nil
}

// IsPoolGovernor returns whether the provided identity is a governor of the
// pool.
//
// This function satisfies the crowdfund Custodian interface.
func (t *Treasury) IsPoolGovernor(poolID, identity string) (bool, error) {
	t.Lock()
	defer t.Unlock()

	p, ok := t.pools[poolID]
	if !ok {
		return false, ErrPoolNotFound
	}
	_, ok = p.Governors[identity]
	return ok, nil
}

// PoolPayout moves value out of the pool and into the provided account.
//
// This function satisfies the crowdfund Custodian interface.
func (t *Treasury) PoolPayout(poolID, to string, amount uint64) error {
	t.Lock()
	defer t.Unlock()

	p, ok := t.pools[poolID]
	if !ok {
		return ErrPoolNotFound
	}
	if p.Balance < amount {
		return ErrInsufficientBalance
	}
	p.Balance -= amount
	t.balances[to] += amount

	log.Tracef("Pool payout %v: %v -> %v", amount, poolID, to)

	return nil
}

// New returns a new Treasury.
func New() *Treasury {
	return &Treasury{
		balances: make(map[string]uint64),
		pools:    make(map[string]*Pool),
	}
}
