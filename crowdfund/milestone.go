// Copyright (c) 2026 The Crowdmill developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package crowdfund

import (
	"fmt"

	"github.com/pkg/errors"
)

// RecipientStatusT represents the status of a recipient.
type RecipientStatusT uint32

const (
	// RecipientStatusInvalid is an invalid recipient status.
	RecipientStatusInvalid RecipientStatusT = 0

	// RecipientStatusPending indicates a recipient that has been
	// registered but not yet accepted.
	RecipientStatusPending RecipientStatusT = 1

	// RecipientStatusAccepted indicates a recipient that may offer
	// milestone plans and submit milestones.
	RecipientStatusAccepted RecipientStatusT = 2

	// RecipientStatusRejected indicates a recipient that has been
	// voted out of the milestone workflow.
	RecipientStatusRejected RecipientStatusT = 3
)

var (
	// RecipientStatuses contains the human readable recipient
	// statuses.
	RecipientStatuses = map[RecipientStatusT]string{
		RecipientStatusInvalid:  "invalid",
		RecipientStatusPending:  "pending",
		RecipientStatusAccepted: "accepted",
		RecipientStatusRejected: "rejected",
	}
)

// MilestoneStatusT represents the status of a milestone.
type MilestoneStatusT uint32

const (
	// MilestoneStatusInvalid is an invalid milestone status.
	MilestoneStatusInvalid MilestoneStatusT = 0

	// MilestoneStatusNone indicates a committed milestone that has not
	// been submitted yet.
	MilestoneStatusNone MilestoneStatusT = 1

	// MilestoneStatusPending indicates a submitted milestone that is
	// under review.
	MilestoneStatusPending MilestoneStatusT = 2

	// MilestoneStatusAccepted indicates a milestone whose review vote
	// crossed the approval threshold and whose payout was released.
	MilestoneStatusAccepted MilestoneStatusT = 3

	// MilestoneStatusRejected indicates a milestone whose review vote
	// crossed the rejection threshold. A rejected milestone may be
	// resubmitted.
	MilestoneStatusRejected MilestoneStatusT = 4
)

var (
	// MilestoneStatuses contains the human readable milestone
	// statuses.
	MilestoneStatuses = map[MilestoneStatusT]string{
		MilestoneStatusInvalid:  "invalid",
		MilestoneStatusNone:     "none",
		MilestoneStatusPending:  "pending",
		MilestoneStatusAccepted: "accepted",
		MilestoneStatusRejected: "rejected",
	}
)

// Milestone describes a single deliverable of an offered milestone plan.
// The percentage is the share of the recipient grant that is paid out when
// the milestone is accepted, scaled to PowerScale. The percentages of a
// plan must sum to exactly PowerScale.
type Milestone struct {
	Description string `json:"description"`
	Percentage  uint64 `json:"percentage"`
}

// milestone is a committed or offered milestone together with its review
// state.
type milestone struct {
	Description string           `json:"description"`
	Percentage  uint64           `json:"percentage"`
	Evidence    string           `json:"evidence,omitempty"`
	Status      MilestoneStatusT `json:"status"`
	Tally       voteTally        `json:"tally"`
}

// planOffer is a proposed, not yet committed milestone plan plus its
// weighted vote tally. It becomes the recipient's committed milestone list
// once the tally crosses the approval threshold and is discarded on a
// rejection crossing or when a new offer replaces it.
type planOffer struct {
	Milestones []milestone `json:"milestones"`
	Tally      voteTally   `json:"tally"`
}

// recipient is a project's fund recipient.
type recipient struct {
	Address    string           `json:"address"`
	Grant      uint64           `json:"grant"`
	Status     RecipientStatusT `json:"status"`
	Milestones []milestone      `json:"milestones,omitempty"`
	NextIndex  int              `json:"nextindex"`
	Offer      *planOffer       `json:"offer,omitempty"`
}

// newRecipient returns a new accepted recipient with a placeholder zero
// grant.
func newRecipient(address string) *recipient {
	return &recipient{
		Address: address,
		Status:  RecipientStatusAccepted,
	}
}

// executorAllowed verifies that the caller is authorized to act as the
// executor of the provided recipient: the caller must hold the executor
// role and must either be the recipient itself or an owner or member of
// the project's owner profile.
//
// The caller must hold the engine mutex.
func (e *Engine) executorAllowed(p *project, recipientID, caller string) error {
	ok, err := e.roles.HasRole(caller, RoleExecutor)
	if err != nil {
		return errors.WithStack(err)
	}
	if !ok {
		return UserError{
			ErrorCode:    ErrorCodeNotAuthorized,
			ErrorContext: "caller does not hold the executor role",
		}
	}
	if caller == recipientID {
		return nil
	}
	ok, err = e.registry.IsOwnerOrMember(p.Owner, caller)
	if err != nil {
		return errors.WithStack(err)
	}
	if !ok {
		return UserError{
			ErrorCode:    ErrorCodeNotAuthorized,
			ErrorContext: "caller is not the recipient or a profile member",
		}
	}
	return nil
}

// voterPower verifies that the caller is authorized to vote on the project
// and returns the caller's fixed voting power: the caller must hold the
// supplier role, be a governor of the project pool, and hold non-zero
// voting power.
//
// The caller must hold the engine mutex.
func (e *Engine) voterPower(p *project, caller string) (uint64, error) {
	ok, err := e.roles.HasRole(caller, RoleSupplier)
	if err != nil {
		return 0, errors.WithStack(err)
	}
	if !ok {
		return 0, UserError{
			ErrorCode:    ErrorCodeNotAuthorized,
			ErrorContext: "caller does not hold the supplier role",
		}
	}
	ok, err = e.custodian.IsPoolGovernor(p.PoolID, caller)
	if err != nil {
		return 0, errors.WithStack(err)
	}
	if !ok {
		return 0, UserError{
			ErrorCode:    ErrorCodeNotAuthorized,
			ErrorContext: "caller is not a pool governor",
		}
	}
	power := p.Power[caller]
	if power == 0 {
		return 0, UserError{
			ErrorCode:    ErrorCodeNotAuthorized,
			ErrorContext: "caller holds no voting power",
		}
	}
	return power, nil
}

// findRecipient returns the recipient of an active project.
//
// The caller must hold the engine mutex.
func (e *Engine) findRecipient(projectID, recipientID string) (*project, *recipient, error) {
	p, ok := e.projects[projectID]
	if !ok {
		return nil, nil, UserError{
			ErrorCode: ErrorCodeProjectNotFound,
		}
	}
	if p.State != StateActive {
		return nil, nil, UserError{
			ErrorCode:    ErrorCodeStateInvalid,
			ErrorContext: fmt.Sprintf("project state is %v", States[p.State]),
		}
	}
	r, ok := p.Recipients[recipientID]
	if !ok {
		return nil, nil, UserError{
			ErrorCode:    ErrorCodeRecipientNotFound,
			ErrorContext: recipientID,
		}
	}
	return p, r, nil
}

// MilestonePlanOffer stores a proposed milestone plan for the recipient.
// Only the executor may offer a plan, the recipient must be accepted, and
// the recipient must not already have a committed plan. No single
// percentage may exceed PowerScale; the percentage sum is validated at
// commit time. Any prior offer is replaced and its tally is reset.
func (e *Engine) MilestonePlanOffer(projectID, recipientID, caller string, milestones []Milestone) error {
	e.Lock()
	defer e.Unlock()

	p, r, err := e.findRecipient(projectID, recipientID)
	if err != nil {
		return err
	}
	err = e.executorAllowed(p, recipientID, caller)
	if err != nil {
		return err
	}
	if r.Status != RecipientStatusAccepted {
		return UserError{
			ErrorCode: ErrorCodeRecipientStatusInvalid,
			ErrorContext: fmt.Sprintf("recipient status is %v",
				RecipientStatuses[r.Status]),
		}
	}
	if len(r.Milestones) != 0 {
		return UserError{
			ErrorCode: ErrorCodePlanAlreadyCommitted,
		}
	}
	if len(milestones) == 0 {
		return UserError{
			ErrorCode:    ErrorCodeInputInvalid,
			ErrorContext: "no milestones provided",
		}
	}
	for i, v := range milestones {
		if v.Percentage > PowerScale {
			return UserError{
				ErrorCode: ErrorCodePercentageInvalid,
				ErrorContext: fmt.Sprintf("milestone %v percentage "+
					"%v exceeds the scale %v", i, v.Percentage,
					PowerScale),
			}
		}
	}

	// Store the offer. A prior offer, along with all votes that were
	// cast on it, is superseded.
	ms := make([]milestone, 0, len(milestones))
	for _, v := range milestones {
		ms = append(ms, milestone{
			Description: v.Description,
			Percentage:  v.Percentage,
			Status:      MilestoneStatusNone,
			Tally:       newVoteTally(),
		})
	}
	r.Offer = &planOffer{
		Milestones: ms,
		Tally:      newVoteTally(),
	}

	log.Infof("Project %v plan offered for %v; %v milestones",
		p.ID, recipientID, len(ms))

	e.emit(EventTypeMilestoneOffered, EventMilestoneOffered{
		ProjectID:  p.ID,
		Recipient:  recipientID,
		Milestones: len(ms),
	})

	return e.saveProject(p)
}

// MilestonePlanReview casts a weighted vote on the recipient's offered
// plan. An approval crossing validates that the plan percentages sum to
// exactly PowerScale, commits the plan as the recipient's milestone list,
// and finalizes the recipient grant to the current pool balance. A
// rejection crossing discards the offer.
func (e *Engine) MilestonePlanReview(projectID, recipientID, caller string, vote VoteT) error {
	e.Lock()
	defer e.Unlock()

	p, r, err := e.findRecipient(projectID, recipientID)
	if err != nil {
		return err
	}
	power, err := e.voterPower(p, caller)
	if err != nil {
		return err
	}
	if r.Offer == nil {
		return UserError{
			ErrorCode: ErrorCodePlanNotOffered,
		}
	}

	// Cast against a clone so that a failed commit does not leave a
	// partial vote behind.
	t := r.Offer.Tally.clone()
	crossed, err := t.cast(caller, power, vote, p.TotalPower, e.threshold)
	if err != nil {
		return err
	}

	log.Debugf("Project %v plan vote %v from %v; crossed %v",
		p.ID, vote, caller, crossed)

	var committed, discarded bool
	switch {
	case crossed && vote == VoteApprove:
		err = e.commitPlan(p, r)
		if err != nil {
			return err
		}
		committed = true
	case crossed && vote == VoteReject:
		// Discard the offer and all votes that were cast on it.
		r.Offer = nil
		discarded = true
	default:
		r.Offer.Tally = t
	}

	e.emit(EventTypeMilestonePlanReviewed, EventMilestonePlanReviewed{
		ProjectID: p.ID,
		Recipient: recipientID,
		Voter:     caller,
		Vote:      vote,
		Committed: committed,
		Discarded: discarded,
	})

	return e.saveProject(p)
}

// commitPlan commits the recipient's offered plan as its milestone list and
// finalizes the grant. The percentage validation happens here, at commit
// time, so an offer with bad percentages can be voted on but never commit.
//
// The caller must hold the engine mutex.
func (e *Engine) commitPlan(p *project, r *recipient) error {
	// The sum is computed with big integers; a plain uint64
	// accumulation would let a sum that wraps modulo 2^64 to exactly
	// PowerScale commit a plan whose payouts exceed the grant.
	percentages := make([]uint64, 0, len(r.Offer.Milestones))
	for _, v := range r.Offer.Milestones {
		percentages = append(percentages, v.Percentage)
	}
	if !percentageSumValid(percentages) {
		return UserError{
			ErrorCode: ErrorCodePercentageInvalid,
			ErrorContext: fmt.Sprintf("percentages must sum to %v",
				PowerScale),
		}
	}

	// Finalize the grant. The recipient is allocated the full pool
	// balance at commit time.
	grant, err := e.custodian.PoolBalance(p.PoolID)
	if err != nil {
		return errors.WithStack(err)
	}
	if grant == 0 {
		return UserError{
			ErrorCode:    ErrorCodeAllocationInvalid,
			ErrorContext: "pool is empty",
		}
	}

	r.Milestones = r.Offer.Milestones
	r.Offer = nil
	r.Grant = grant
	r.NextIndex = 0

	log.Infof("Project %v plan committed for %v; grant %v, %v milestones",
		p.ID, r.Address, grant, len(r.Milestones))

	e.emit(EventTypeRecipientStatusChanged, EventRecipientStatusChanged{
		ProjectID: p.ID,
		Recipient: r.Address,
		Status:    r.Status,
		Grant:     grant,
	})

	return nil
}

// MilestoneSubmit submits a committed milestone for review, attaching the
// provided supporting evidence. Only the executor may submit. A rejected
// milestone may be resubmitted; its prior review votes are cleared.
func (e *Engine) MilestoneSubmit(projectID, recipientID string, index int, caller, evidence string) error {
	e.Lock()
	defer e.Unlock()

	p, r, err := e.findRecipient(projectID, recipientID)
	if err != nil {
		return err
	}
	err = e.executorAllowed(p, recipientID, caller)
	if err != nil {
		return err
	}
	if r.Status != RecipientStatusAccepted {
		return UserError{
			ErrorCode: ErrorCodeRecipientStatusInvalid,
			ErrorContext: fmt.Sprintf("recipient status is %v",
				RecipientStatuses[r.Status]),
		}
	}
	if index < 0 || index >= len(r.Milestones) {
		return UserError{
			ErrorCode:    ErrorCodeMilestoneNotFound,
			ErrorContext: fmt.Sprintf("index %v", index),
		}
	}
	m := &r.Milestones[index]
	if m.Status == MilestoneStatusAccepted {
		return UserError{
			ErrorCode:    ErrorCodeMilestoneStatusInvalid,
			ErrorContext: "milestone already accepted",
		}
	}

	// Clear any prior review votes and move the milestone to pending.
	// This is what makes a rejected milestone eligible for a fresh
	// review.
	m.Tally.reset()
	m.Status = MilestoneStatusPending
	m.Evidence = evidence

	log.Infof("Project %v milestone %v submitted for %v",
		p.ID, index, recipientID)

	e.emit(EventTypeMilestoneSubmitted, EventMilestoneSubmitted{
		ProjectID: p.ID,
		Recipient: recipientID,
		Index:     index,
		Evidence:  evidence,
	})

	return e.saveProject(p)
}

// MilestoneReview casts a weighted vote on a pending milestone. An
// approval crossing accepts the milestone and immediately pays out
// grant*percentage/PowerScale from the pool to the recipient; accepting
// the final milestone moves the project to the executed state and
// deactivates the pool. A rejection crossing marks the milestone rejected
// and clears its tally so that it can be resubmitted.
func (e *Engine) MilestoneReview(projectID, recipientID string, index int, caller string, vote VoteT) error {
	e.Lock()
	defer e.Unlock()

	p, r, err := e.findRecipient(projectID, recipientID)
	if err != nil {
		return err
	}
	power, err := e.voterPower(p, caller)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(r.Milestones) {
		return UserError{
			ErrorCode:    ErrorCodeMilestoneNotFound,
			ErrorContext: fmt.Sprintf("index %v", index),
		}
	}
	m := &r.Milestones[index]
	if m.Status != MilestoneStatusPending {
		return UserError{
			ErrorCode: ErrorCodeMilestoneStatusInvalid,
			ErrorContext: fmt.Sprintf("milestone status is %v",
				MilestoneStatuses[m.Status]),
		}
	}

	// Cast against a clone so that a failed payout does not leave a
	// partial vote behind.
	t := m.Tally.clone()
	crossed, err := t.cast(caller, power, vote, p.TotalPower, e.threshold)
	if err != nil {
		return err
	}

	log.Debugf("Project %v milestone %v vote %v from %v; crossed %v",
		p.ID, index, vote, caller, crossed)

	switch {
	case crossed && vote == VoteApprove:
		err = e.acceptMilestone(p, r, index)
		if err != nil {
			return err
		}
		m.Tally = t
	case crossed && vote == VoteReject:
		m.Status = MilestoneStatusRejected
		m.Tally.reset()
		e.emit(EventTypeMilestoneStatusChanged,
			EventMilestoneStatusChanged{
				ProjectID: p.ID,
				Recipient: recipientID,
				Index:     index,
				Status:    MilestoneStatusRejected,
			})
	default:
		m.Tally = t
	}

	return e.saveProject(p)
}

// acceptMilestone accepts a milestone, releases its payout, and advances
// the milestone pointer. Percentages were validated to sum to exactly
// PowerScale at commit time, so the cumulative payouts can never exceed
// the grant.
//
// The caller must hold the engine mutex.
func (e *Engine) acceptMilestone(p *project, r *recipient, index int) error {
	m := &r.Milestones[index]
	payout := applyShare(r.Grant, m.Percentage)

	err := e.custodian.PoolPayout(p.PoolID, r.Address, payout)
	if err != nil {
		return errors.WithStack(err)
	}

	m.Status = MilestoneStatusAccepted
	if index >= r.NextIndex {
		r.NextIndex = index + 1
	}

	log.Infof("Project %v milestone %v accepted; payout %v to %v",
		p.ID, index, payout, r.Address)

	e.emit(EventTypeMilestoneStatusChanged, EventMilestoneStatusChanged{
		ProjectID: p.ID,
		Recipient: r.Address,
		Index:     index,
		Status:    MilestoneStatusAccepted,
		Payout:    payout,
	})

	// Accepting the final milestone completes the project.
	done := true
	for _, v := range r.Milestones {
		if v.Status != MilestoneStatusAccepted {
			done = false
			break
		}
	}
	if done {
		err := e.custodian.PoolSetActive(p.PoolID, false)
		if err != nil {
			return errors.WithStack(err)
		}
		p.State = StateExecuted

		log.Infof("Project %v executed", p.ID)
	}

	return nil
}
