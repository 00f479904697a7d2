// Copyright (c) 2026 The Crowdmill developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package crowdfund

import (
	"fmt"

	"github.com/pkg/errors"
)

// OutcomeT represents a vote direction for the project level outcome vote.
//
// Note the polarity: the outcome vote decides whether to reject the
// project, so OutcomeReject is the direction that accumulates on the "for"
// counter of the reject tally. The type is named for what the voter wants
// to happen, not for a generic approve/reject, precisely to keep this
// inversion unambiguous.
type OutcomeT string

const (
	// OutcomeReject votes to reject the project and refund the
	// remaining pool balance to the backers.
	OutcomeReject OutcomeT = "reject"

	// OutcomeKeep votes to keep the project alive.
	OutcomeKeep OutcomeT = "keep"
)

// ProjectOutcomeVote casts a weighted vote on whether the project should be
// rejected. A reject crossing refunds the remaining pool balance to all
// backers proportional to their voting power, moves the project to the
// rejected state, and deactivates the pool. A keep crossing clears the
// whole tally and the project stays active.
func (e *Engine) ProjectOutcomeVote(projectID, caller string, vote OutcomeT) error {
	e.Lock()
	defer e.Unlock()

	p, ok := e.projects[projectID]
	if !ok {
		return UserError{
			ErrorCode: ErrorCodeProjectNotFound,
		}
	}
	if p.State != StateActive {
		return UserError{
			ErrorCode:    ErrorCodeStateInvalid,
			ErrorContext: fmt.Sprintf("project state is %v", States[p.State]),
		}
	}
	power, err := e.voterPower(p, caller)
	if err != nil {
		return err
	}

	// Translate the outcome direction onto the tally. A vote to
	// reject the project counts on the "for" side of the reject
	// tally.
	var v VoteT
	switch vote {
	case OutcomeReject:
		v = VoteApprove
	case OutcomeKeep:
		v = VoteReject
	default:
		return UserError{
			ErrorCode:    ErrorCodeVoteInvalid,
			ErrorContext: fmt.Sprintf("%v not a valid outcome", vote),
		}
	}

	t := p.RejectTally.clone()
	crossed, err := t.cast(caller, power, v, p.TotalPower, e.threshold)
	if err != nil {
		return err
	}

	log.Debugf("Project %v outcome vote %v from %v; crossed %v",
		p.ID, vote, caller, crossed)

	switch {
	case crossed && vote == OutcomeReject:
		err = e.rejectProject(p)
		if err != nil {
			return err
		}
		p.RejectTally = t
	case crossed && vote == OutcomeKeep:
		// The project survives. The tally is cleared entirely so
		// that a future reject attempt starts from scratch.
		p.RejectTally = newVoteTally()
		e.emit(EventTypeRejectDeclined, EventRejectDeclined{
			ProjectID: p.ID,
		})
	default:
		p.RejectTally = t
	}

	return e.saveProject(p)
}

// rejectProject refunds the remaining pool balance to the backers
// proportional to their voting power and moves the project to the rejected
// terminal state. Floor division can leave a dust remainder of strictly
// less than the number of backers in the pool.
//
// The caller must hold the engine mutex.
func (e *Engine) rejectProject(p *project) error {
	balance, err := e.custodian.PoolBalance(p.PoolID)
	if err != nil {
		return errors.WithStack(err)
	}

	var refunded uint64
	for _, backer := range p.PowerOrder {
		refund := applyShare(balance, p.Power[backer])
		if refund == 0 {
			continue
		}
		err := e.custodian.PoolPayout(p.PoolID, backer, refund)
		if err != nil {
			return errors.WithStack(err)
		}
		refunded += refund
	}

	err = e.custodian.PoolSetActive(p.PoolID, false)
	if err != nil {
		return errors.WithStack(err)
	}
	p.State = StateRejected

	log.Infof("Project %v rejected; refunded %v of %v", p.ID, refunded, balance)

	e.emit(EventTypeProjectRejected, EventProjectRejected{
		ProjectID: p.ID,
		Refunded:  refunded,
	})

	return nil
}

// ThankYouDistribute distributes an externally supplied amount from the
// provided account to all backers proportional to their fixed voting
// power. It is only permitted once the project has reached a terminal
// state and does not touch pool accounting. Floor division can leave a
// dust remainder in the project escrow account.
func (e *Engine) ThankYouDistribute(projectID, from string, amount uint64) error {
	e.Lock()
	defer e.Unlock()

	p, ok := e.projects[projectID]
	if !ok {
		return UserError{
			ErrorCode: ErrorCodeProjectNotFound,
		}
	}
	switch p.State {
	case StateExecuted, StateRejected:
		// Distribution is allowed
	default:
		return UserError{
			ErrorCode:    ErrorCodeStateInvalid,
			ErrorContext: "project is not terminal",
		}
	}
	if amount == 0 {
		return UserError{
			ErrorCode:    ErrorCodeAmountInvalid,
			ErrorContext: "amount cannot be zero",
		}
	}

	// Pull the full amount into escrow first so that a short source
	// account fails the operation before any backer has been paid.
	escrow := escrowAccount(p.ID)
	err := e.bank.Transfer(from, escrow, amount)
	if err != nil {
		return UserError{
			ErrorCode:    ErrorCodeBalanceInsufficient,
			ErrorContext: err.Error(),
		}
	}
	for _, backer := range p.PowerOrder {
		share := applyShare(amount, p.Power[backer])
		if share == 0 {
			continue
		}
		err := e.bank.Transfer(escrow, backer, share)
		if err != nil {
			return errors.WithStack(err)
		}
	}

	log.Infof("Project %v thank you distribution %v from %v",
		p.ID, amount, from)

	e.emit(EventTypeThankYouDistributed, EventThankYouDistributed{
		ProjectID: p.ID,
		From:      from,
		Amount:    amount,
	})

	return nil
}
