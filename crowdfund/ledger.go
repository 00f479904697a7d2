// Copyright (c) 2026 The Crowdmill developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package crowdfund

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// StateT represents the lifecycle state of a project.
type StateT uint32

const (
	// StateInvalid is an invalid state.
	StateInvalid StateT = 0

	// StateNone indicates a project that is still in the crowdfunding
	// stage. The release stage has not been bootstrapped.
	StateNone StateT = 1

	// StateActive indicates a bootstrapped project. This is the only
	// state in which the milestone workflow proceeds.
	StateActive StateT = 2

	// StateExecuted indicates all milestones have been accepted and
	// paid out. Terminal.
	StateExecuted StateT = 3

	// StateRejected indicates the backers voted to reject the project
	// and the remaining pool balance was refunded. Terminal.
	StateRejected StateT = 4

	// StateLast unit test only.
	StateLast StateT = 5
)

var (
	// States contains the human readable project states.
	States = map[StateT]string{
		StateInvalid:  "invalid",
		StateNone:     "none",
		StateActive:   "active",
		StateExecuted: "executed",
		StateRejected: "rejected",
	}
)

// PledgeStatusT represents the status of a pledge.
type PledgeStatusT uint32

const (
	// PledgeStatusInvalid is an invalid pledge status.
	PledgeStatusInvalid PledgeStatusT = 0

	// PledgeStatusActive indicates a live pledge that counts toward
	// the funding target.
	PledgeStatusActive PledgeStatusT = 1

	// PledgeStatusRevoked indicates the backer was refunded. A revoked
	// pledge is retained for history and the backer may not pledge
	// again.
	PledgeStatusRevoked PledgeStatusT = 2
)

var (
	// PledgeStatuses contains the human readable pledge statuses.
	PledgeStatuses = map[PledgeStatusT]string{
		PledgeStatusInvalid: "invalid",
		PledgeStatusActive:  "active",
		PledgeStatusRevoked: "revoked",
	}
)

// pledge is a backer's pledge toward a project's funding target.
type pledge struct {
	Backer string        `json:"backer"`
	Amount uint64        `json:"amount"`
	Status PledgeStatusT `json:"status"`
}

// project contains all engine state for a single project.
type project struct {
	ID       string `json:"id"`
	Owner    string `json:"owner"` // Profile id
	Executor string `json:"executor"`
	Needed   uint64 `json:"needed"`
	Raised   uint64 `json:"raised"`
	State    StateT `json:"state"`

	// Pledges contains the pledge ledger, keyed by backer. Backers
	// preserves pledge insertion order for deterministic enumeration.
	Pledges map[string]*pledge `json:"pledges"`
	Backers []string           `json:"backers"`

	// The following fields are populated at bootstrap and are
	// immutable afterward. Power contains the normalized voting power
	// of every backer whose pledge was not revoked at bootstrap time,
	// PowerOrder preserves their enumeration order, and TotalPower is
	// the fixed total that vote thresholds are evaluated against.
	PoolID     string            `json:"poolid,omitempty"`
	Power      map[string]uint64 `json:"power,omitempty"`
	PowerOrder []string          `json:"powerorder,omitempty"`
	TotalPower uint64            `json:"totalpower,omitempty"`

	// Recipients is keyed by the recipient address.
	Recipients map[string]*recipient `json:"recipients"`

	// RejectTally is the project level reject vote. A "for" vote on
	// this tally is a vote to reject the project.
	RejectTally voteTally `json:"rejecttally"`
}

// bootstrapped returns whether the release stage has been bootstrapped.
func (p *project) bootstrapped() bool {
	return p.PoolID != ""
}

// escrowAccount returns the bank account that holds a project's pledges
// until the release stage is bootstrapped.
func escrowAccount(projectID string) string {
	return "escrow-" + projectID
}

// ProjectRegister creates a new project with the provided funding target and
// returns the project id. The owner is the profile id that controls the
// executor side of the milestone workflow and the executor is the address
// that will be registered as the fund recipient at bootstrap.
func (e *Engine) ProjectRegister(owner, executor string, target uint64) (string, error) {
	e.Lock()
	defer e.Unlock()

	switch {
	case target == 0:
		return "", UserError{
			ErrorCode:    ErrorCodeInputInvalid,
			ErrorContext: "funding target cannot be zero",
		}
	case owner == "":
		return "", UserError{
			ErrorCode:    ErrorCodeInputInvalid,
			ErrorContext: "no owner profile provided",
		}
	case executor == "":
		return "", UserError{
			ErrorCode:    ErrorCodeInputInvalid,
			ErrorContext: "no executor provided",
		}
	}

	p := project{
		ID:          uuid.New().String(),
		Owner:       owner,
		Executor:    executor,
		Needed:      target,
		State:       StateNone,
		Pledges:     make(map[string]*pledge),
		Backers:     make([]string, 0, 64),
		Recipients:  make(map[string]*recipient),
		RejectTally: newVoteTally(),
	}
	e.projects[p.ID] = &p

	err := e.saveProject(&p)
	if err != nil {
		return "", err
	}

	log.Infof("Project %v registered; target %v, executor %v",
		p.ID, target, executor)

	return p.ID, nil
}

// ProjectPledge records a pledge from the backer toward the project's
// funding target. The amount is the declared pledge and the value is what
// was actually attached to the operation; the two must match. The pledged
// value is moved into the project escrow account.
//
// The pledge that first makes raised reach the funding target triggers the
// bootstrap of the release stage. Pledges are no longer accepted once that
// has happened, which is what guarantees the threshold is crossed exactly
// once.
func (e *Engine) ProjectPledge(projectID, backer string, amount, value uint64) error {
	e.Lock()
	defer e.Unlock()

	p, ok := e.projects[projectID]
	if !ok {
		return UserError{
			ErrorCode: ErrorCodeProjectNotFound,
		}
	}
	if p.bootstrapped() {
		return UserError{
			ErrorCode:    ErrorCodeProjectBootstrapped,
			ErrorContext: "funding target already reached",
		}
	}
	if amount == 0 || amount != value {
		return UserError{
			ErrorCode: ErrorCodeAmountInvalid,
			ErrorContext: fmt.Sprintf("amount %v, value %v",
				amount, value),
		}
	}
	if _, ok := p.Pledges[backer]; ok {
		// A second pledge is not allowed regardless of whether the
		// first one is still active or was revoked.
		return UserError{
			ErrorCode:    ErrorCodeAlreadyPledged,
			ErrorContext: backer,
		}
	}

	// Move the pledged value into escrow. The bank rejects this when
	// the backer's account is short.
	err := e.bank.Transfer(backer, escrowAccount(p.ID), amount)
	if err != nil {
		return UserError{
			ErrorCode:    ErrorCodeBalanceInsufficient,
			ErrorContext: err.Error(),
		}
	}

	// Record the pledge
	p.Pledges[backer] = &pledge{
		Backer: backer,
		Amount: amount,
		Status: PledgeStatusActive,
	}
	p.Backers = append(p.Backers, backer)
	p.Raised += amount

	log.Infof("Project %v pledge %v from %v; raised %v/%v",
		p.ID, amount, backer, p.Raised, p.Needed)

	e.emit(EventTypeFundingReceived, EventFundingReceived{
		ProjectID: p.ID,
		Backer:    backer,
		Amount:    amount,
		Raised:    p.Raised,
	})

	// Bootstrap the release stage when this pledge crossed the
	// funding target.
	if p.Raised >= p.Needed {
		err := e.bootstrap(p)
		if err != nil {
			return err
		}
	}

	return e.saveProject(p)
}

// bootstrap moves a fully funded project into the release stage. It
// computes each backer's normalized voting power from the non-revoked
// pledges, creates the custody pool with the raised value as the opening
// balance and the backers as governors, and registers the designated
// executor as the sole initial recipient with a placeholder zero grant.
//
// The caller must hold the engine mutex.
func (e *Engine) bootstrap(p *project) error {
	// Filter the pledge ledger down to the non-revoked pledges. The
	// revoked ones were already refunded and hold no power.
	backers := make([]string, 0, len(p.Backers))
	var total uint64
	for _, v := range p.Backers {
		pl := p.Pledges[v]
		if pl.Status != PledgeStatusActive {
			continue
		}
		backers = append(backers, v)
		total += pl.Amount
	}

	// Compute normalized voting power. Floor division leaves a
	// remainder of strictly less than len(backers) unassigned.
	power := make(map[string]uint64, len(backers))
	var totalPower uint64
	for _, v := range backers {
		share := powerShare(p.Pledges[v].Amount, total)
		power[v] = share
		totalPower += share
	}

	// Move the escrowed funds into a new custody pool governed by the
	// backers.
	poolID, err := e.custodian.PoolCreate(p.Raised, escrowAccount(p.ID), backers)
	if err != nil {
		return errors.WithStack(err)
	}

	p.PoolID = poolID
	p.Power = power
	p.PowerOrder = backers
	p.TotalPower = totalPower
	p.State = StateActive

	// Register the designated executor as the sole initial recipient.
	// The grant is a placeholder; it is finalized when a milestone
	// plan commits.
	p.Recipients[p.Executor] = newRecipient(p.Executor)

	log.Infof("Project %v bootstrapped; pool %v, %v backers, total power %v",
		p.ID, poolID, len(backers), totalPower)

	e.emit(EventTypePoolBootstrapped, EventPoolBootstrapped{
		ProjectID:      p.ID,
		PoolID:         poolID,
		OpeningBalance: p.Raised,
		Backers:        len(backers),
	})
	e.emit(EventTypeRecipientStatusChanged, EventRecipientStatusChanged{
		ProjectID: p.ID,
		Recipient: p.Executor,
		Status:    RecipientStatusAccepted,
	})

	return nil
}

// ProjectRevokePledge refunds the backer's full pledged amount, marks the
// pledge revoked, and decreases the raised total.
//
// Revocation is forbidden once the project has been bootstrapped. The
// voting power table is fixed at bootstrap, so a later revocation would
// drain escrowed funds without reducing the revoking backer's power.
func (e *Engine) ProjectRevokePledge(projectID, backer string) error {
	e.Lock()
	defer e.Unlock()

	p, ok := e.projects[projectID]
	if !ok {
		return UserError{
			ErrorCode: ErrorCodeProjectNotFound,
		}
	}
	if p.bootstrapped() {
		return UserError{
			ErrorCode:    ErrorCodeProjectBootstrapped,
			ErrorContext: "pledges are locked at bootstrap",
		}
	}
	pl, ok := p.Pledges[backer]
	if !ok || pl.Status != PledgeStatusActive {
		return UserError{
			ErrorCode:    ErrorCodePledgeNotFound,
			ErrorContext: backer,
		}
	}

	// Refund the full pledged amount
	err := e.bank.Transfer(escrowAccount(p.ID), backer, pl.Amount)
	if err != nil {
		return errors.WithStack(err)
	}

	pl.Status = PledgeStatusRevoked
	p.Raised -= pl.Amount

	log.Infof("Project %v pledge revoked by %v; raised %v/%v",
		p.ID, backer, p.Raised, p.Needed)

	return e.saveProject(p)
}
