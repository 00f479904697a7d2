// Copyright (c) 2026 The Crowdmill developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package crowdfund

import (
	"testing"
)

func TestProjectOutcomeVote(t *testing.T) {
	h := newTestHarness(t)
	projectID, alice, bob := h.activeProject(t)

	// Unknown project and invalid outcome
	err := h.engine.ProjectOutcomeVote("unknown", alice, OutcomeReject)
	assertUserErr(t, err, ErrorCodeProjectNotFound)
	err = h.engine.ProjectOutcomeVote(projectID, alice, OutcomeT("burn"))
	assertUserErr(t, err, ErrorCodeVoteInvalid)

	// Voting requires the supplier role and voting power
	err = h.engine.ProjectOutcomeVote(projectID, h.executor, OutcomeReject)
	assertUserErr(t, err, ErrorCodeNotAuthorized)

	// Bob's 40% reject does not cross
	err = h.engine.ProjectOutcomeVote(projectID, bob, OutcomeReject)
	if err != nil {
		t.Fatal(err)
	}
	p, err := h.engine.Project(projectID)
	if err != nil {
		t.Fatal(err)
	}
	if p.State != StateActive {
		t.Fatalf("project rejected below the threshold")
	}

	// Alice's 60% keep crossing clears the whole tally and the project
	// stays active.
	err = h.engine.ProjectOutcomeVote(projectID, alice, OutcomeKeep)
	if err != nil {
		t.Fatal(err)
	}

	// The cleared tally means both may vote again
	err = h.engine.ProjectOutcomeVote(projectID, bob, OutcomeReject)
	if err != nil {
		t.Fatal(err)
	}
	err = h.engine.ProjectOutcomeVote(projectID, alice, OutcomeReject)
	if err != nil {
		t.Fatal(err)
	}

	// The reject crossing refunded the full pool balance proportional
	// to voting power. The pledges were 600 and 400, so the refunds
	// restore the original balances.
	if got := h.treasury.Balance(alice); got != 1000 {
		t.Fatalf("alice balance %v, want 1000", got)
	}
	if got := h.treasury.Balance(bob); got != 1000 {
		t.Fatalf("bob balance %v, want 1000", got)
	}
	p, err = h.engine.Project(projectID)
	if err != nil {
		t.Fatal(err)
	}
	if p.State != StateRejected {
		t.Fatalf("project state %v, want %v",
			States[p.State], States[StateRejected])
	}
	balance, err := h.treasury.PoolBalance(p.PoolID)
	if err != nil {
		t.Fatal(err)
	}
	if balance != 0 {
		t.Fatalf("pool balance %v, want 0", balance)
	}

	// The rejected state is terminal
	err = h.engine.ProjectOutcomeVote(projectID, alice, OutcomeReject)
	assertUserErr(t, err, ErrorCodeStateInvalid)
	err = h.engine.MilestonePlanOffer(projectID, h.executor, h.executor, testPlan())
	assertUserErr(t, err, ErrorCodeStateInvalid)
}

// TestProjectRejectPartialPool verifies that a rejection that happens
// after a milestone payout refunds only the remaining pool balance,
// proportional to the fixed voting powers.
func TestProjectRejectPartialPool(t *testing.T) {
	h := newTestHarness(t)
	projectID, alice, bob := h.activeProject(t)
	h.committedPlan(t, projectID, alice, testPlan())

	// Pay out the first milestone, 400 of the 1000 unit grant
	err := h.engine.MilestoneSubmit(projectID, h.executor, 0, h.executor, "v1")
	if err != nil {
		t.Fatal(err)
	}
	err = h.engine.MilestoneReview(projectID, h.executor, 0, alice, VoteApprove)
	if err != nil {
		t.Fatal(err)
	}

	// Reject the project. The remaining 600 is refunded 60/40.
	err = h.engine.ProjectOutcomeVote(projectID, alice, OutcomeReject)
	if err != nil {
		t.Fatal(err)
	}
	if got := h.treasury.Balance(alice); got != 400+360 {
		t.Fatalf("alice balance %v, want 760", got)
	}
	if got := h.treasury.Balance(bob); got != 600+240 {
		t.Fatalf("bob balance %v, want 840", got)
	}
}

func TestThankYouDistribute(t *testing.T) {
	h := newTestHarness(t)
	projectID, alice, bob := h.activeProject(t)

	h.treasury.Deposit(h.owner, 500)

	// Distribution requires a terminal project
	err := h.engine.ThankYouDistribute(projectID, h.owner, 100)
	assertUserErr(t, err, ErrorCodeStateInvalid)

	// Reject the project to reach a terminal state
	err = h.engine.ProjectOutcomeVote(projectID, alice, OutcomeReject)
	if err != nil {
		t.Fatal(err)
	}

	// Zero amounts and short source accounts are rejected before any
	// backer is paid.
	err = h.engine.ThankYouDistribute(projectID, h.owner, 0)
	assertUserErr(t, err, ErrorCodeAmountInvalid)
	err = h.engine.ThankYouDistribute(projectID, h.owner, 600)
	assertUserErr(t, err, ErrorCodeBalanceInsufficient)
	if got := h.treasury.Balance(alice); got != 1000 {
		t.Fatalf("failed distribution paid a backer")
	}

	// A valid distribution splits the amount 60/40
	err = h.engine.ThankYouDistribute(projectID, h.owner, 500)
	if err != nil {
		t.Fatal(err)
	}
	if got := h.treasury.Balance(alice); got != 1300 {
		t.Fatalf("alice balance %v, want 1300", got)
	}
	if got := h.treasury.Balance(bob); got != 1200 {
		t.Fatalf("bob balance %v, want 1200", got)
	}
	if got := h.treasury.Balance(h.owner); got != 0 {
		t.Fatalf("owner balance %v, want 0", got)
	}
}

// TestEngineEndToEnd walks a project through the full lifecycle: funding,
// bootstrap, plan commit, milestone payouts, execution, and a thank you
// distribution.
func TestEngineEndToEnd(t *testing.T) {
	h := newTestHarness(t)
	em := h.engine // Shorthand

	alice := h.backer("alice", 600)
	bob := h.backer("bob", 400)
	projectID := h.register(t, 1000)

	h.pledge(t, projectID, alice, 600)
	h.pledge(t, projectID, bob, 400)

	// Commit a two milestone plan. Bob votes first and does not
	// cross; alice's vote commits.
	err := em.MilestonePlanOffer(projectID, h.executor, h.executor, testPlan())
	if err != nil {
		t.Fatal(err)
	}
	err = em.MilestonePlanReview(projectID, h.executor, bob, VoteApprove)
	if err != nil {
		t.Fatal(err)
	}
	err = em.MilestonePlanReview(projectID, h.executor, alice, VoteApprove)
	if err != nil {
		t.Fatal(err)
	}

	// Work through both milestones
	for i := 0; i < 2; i++ {
		err = em.MilestoneSubmit(projectID, h.executor, i, h.executor, "done")
		if err != nil {
			t.Fatal(err)
		}
		err = em.MilestoneReview(projectID, h.executor, i, alice, VoteApprove)
		if err != nil {
			t.Fatal(err)
		}
	}

	// The executor received the full grant and the project executed
	if got := h.treasury.Balance(h.executor); got != 1000 {
		t.Fatalf("executor balance %v, want 1000", got)
	}
	p, err := em.Project(projectID)
	if err != nil {
		t.Fatal(err)
	}
	if p.State != StateExecuted {
		t.Fatalf("project state %v, want %v",
			States[p.State], States[StateExecuted])
	}

	// The executor thanks the backers with half the grant
	err = em.ThankYouDistribute(projectID, h.executor, 500)
	if err != nil {
		t.Fatal(err)
	}
	if got := h.treasury.Balance(alice); got != 300 {
		t.Fatalf("alice balance %v, want 300", got)
	}
	if got := h.treasury.Balance(bob); got != 200 {
		t.Fatalf("bob balance %v, want 200", got)
	}
	if got := h.treasury.Balance(h.executor); got != 500 {
		t.Fatalf("executor balance %v, want 500", got)
	}
}
