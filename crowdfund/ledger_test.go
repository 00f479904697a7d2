// Copyright (c) 2026 The Crowdmill developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package crowdfund

import (
	"testing"

	"github.com/go-test/deep"
)

func TestProjectRegister(t *testing.T) {
	h := newTestHarness(t)

	// Invalid inputs
	_, err := h.engine.ProjectRegister(h.profile, h.executor, 0)
	assertUserErr(t, err, ErrorCodeInputInvalid)
	_, err = h.engine.ProjectRegister("", h.executor, 1000)
	assertUserErr(t, err, ErrorCodeInputInvalid)
	_, err = h.engine.ProjectRegister(h.profile, "", 1000)
	assertUserErr(t, err, ErrorCodeInputInvalid)

	// Valid registration
	projectID, err := h.engine.ProjectRegister(h.profile, h.executor, 1000)
	if err != nil {
		t.Fatal(err)
	}
	p, err := h.engine.Project(projectID)
	if err != nil {
		t.Fatal(err)
	}
	want := ProjectDetails{
		ID:       projectID,
		Owner:    h.profile,
		Executor: h.executor,
		Needed:   1000,
		State:    StateNone,
	}
	if diff := deep.Equal(*p, want); diff != nil {
		t.Fatalf("project differs: %v", diff)
	}
}

func TestProjectPledge(t *testing.T) {
	h := newTestHarness(t)
	alice := h.backer("alice", 500)
	projectID := h.register(t, 1000)

	// Unknown project
	err := h.engine.ProjectPledge("unknown", alice, 100, 100)
	assertUserErr(t, err, ErrorCodeProjectNotFound)

	// Zero amount and amount/value mismatch
	err = h.engine.ProjectPledge(projectID, alice, 0, 0)
	assertUserErr(t, err, ErrorCodeAmountInvalid)
	err = h.engine.ProjectPledge(projectID, alice, 100, 99)
	assertUserErr(t, err, ErrorCodeAmountInvalid)

	// Backer account is short
	err = h.engine.ProjectPledge(projectID, alice, 600, 600)
	assertUserErr(t, err, ErrorCodeBalanceInsufficient)

	// Valid pledge moves the value into escrow
	h.pledge(t, projectID, alice, 300)
	if got := h.treasury.Balance(alice); got != 200 {
		t.Fatalf("backer balance %v, want 200", got)
	}
	if got := h.treasury.Balance(escrowAccount(projectID)); got != 300 {
		t.Fatalf("escrow balance %v, want 300", got)
	}
	p, err := h.engine.Project(projectID)
	if err != nil {
		t.Fatal(err)
	}
	if p.Raised != 300 {
		t.Fatalf("raised %v, want 300", p.Raised)
	}

	// A second pledge from the same backer is rejected
	err = h.engine.ProjectPledge(projectID, alice, 100, 100)
	assertUserErr(t, err, ErrorCodeAlreadyPledged)
}

func TestBootstrap(t *testing.T) {
	h := newTestHarness(t)
	projectID, alice, bob := h.activeProject(t)

	p, err := h.engine.Project(projectID)
	if err != nil {
		t.Fatal(err)
	}
	if !p.Bootstrapped || p.PoolID == "" {
		t.Fatalf("project was not bootstrapped")
	}

	// The raised funds were moved out of escrow and into the pool
	if got := h.treasury.Balance(escrowAccount(projectID)); got != 0 {
		t.Fatalf("escrow balance %v, want 0", got)
	}
	balance, err := h.treasury.PoolBalance(p.PoolID)
	if err != nil {
		t.Fatal(err)
	}
	if balance != 1000 {
		t.Fatalf("pool balance %v, want 1000", balance)
	}

	// Voting power was normalized from the pledges
	backers, err := h.engine.ProjectBackers(projectID)
	if err != nil {
		t.Fatal(err)
	}
	want := []BackerDetails{
		{
			Identity: alice,
			Amount:   600,
			Status:   PledgeStatusActive,
			Power:    PowerScale / 100 * 60,
		},
		{
			Identity: bob,
			Amount:   400,
			Status:   PledgeStatusActive,
			Power:    PowerScale / 100 * 40,
		},
	}
	if diff := deep.Equal(backers, want); diff != nil {
		t.Fatalf("backers differ: %v", diff)
	}
	if p.TotalPower != PowerScale {
		t.Fatalf("total power %v, want %v", p.TotalPower, PowerScale)
	}

	// The backers govern the pool
	for _, v := range []string{alice, bob} {
		ok, err := h.treasury.IsPoolGovernor(p.PoolID, v)
		if err != nil {
			t.Fatal(err)
		}
		if !ok {
			t.Fatalf("%v is not a pool governor", v)
		}
	}

	// The executor was registered as an accepted recipient with a
	// placeholder grant.
	r, err := h.engine.Recipient(projectID, h.executor)
	if err != nil {
		t.Fatal(err)
	}
	if r.Status != RecipientStatusAccepted {
		t.Fatalf("recipient status %v, want %v",
			RecipientStatuses[r.Status],
			RecipientStatuses[RecipientStatusAccepted])
	}
	if r.Grant != 0 {
		t.Fatalf("recipient grant %v, want 0", r.Grant)
	}

	// Pledges are refused once the project has been bootstrapped. The
	// funding threshold can only be crossed once.
	carol := h.backer("carol", 1000)
	err = h.engine.ProjectPledge(projectID, carol, 100, 100)
	assertUserErr(t, err, ErrorCodeProjectBootstrapped)
}

// TestBootstrapOvershoot verifies that the pledge that overshoots the
// funding target is banked in full and grants power proportional to the
// full pledged amount.
func TestBootstrapOvershoot(t *testing.T) {
	h := newTestHarness(t)
	alice := h.backer("alice", 1000)
	bob := h.backer("bob", 1000)
	projectID := h.register(t, 1000)

	h.pledge(t, projectID, alice, 400)
	h.pledge(t, projectID, bob, 900)

	p, err := h.engine.Project(projectID)
	if err != nil {
		t.Fatal(err)
	}
	if p.Raised != 1300 {
		t.Fatalf("raised %v, want 1300", p.Raised)
	}
	balance, err := h.treasury.PoolBalance(p.PoolID)
	if err != nil {
		t.Fatal(err)
	}
	if balance != 1300 {
		t.Fatalf("pool balance %v, want 1300", balance)
	}

	backers, err := h.engine.ProjectBackers(projectID)
	if err != nil {
		t.Fatal(err)
	}
	if backers[1].Power != powerShare(900, 1300) {
		t.Fatalf("overshoot power %v, want %v",
			backers[1].Power, powerShare(900, 1300))
	}
}

func TestProjectRevokePledge(t *testing.T) {
	h := newTestHarness(t)
	alice := h.backer("alice", 1000)
	bob := h.backer("bob", 1000)
	projectID := h.register(t, 1000)
	h.pledge(t, projectID, alice, 600)

	// Revoking without a pledge fails
	err := h.engine.ProjectRevokePledge(projectID, bob)
	assertUserErr(t, err, ErrorCodePledgeNotFound)

	// Revocation refunds the full pledged amount
	err = h.engine.ProjectRevokePledge(projectID, alice)
	if err != nil {
		t.Fatal(err)
	}
	if got := h.treasury.Balance(alice); got != 1000 {
		t.Fatalf("backer balance %v, want 1000", got)
	}
	p, err := h.engine.Project(projectID)
	if err != nil {
		t.Fatal(err)
	}
	if p.Raised != 0 {
		t.Fatalf("raised %v, want 0", p.Raised)
	}

	// The revoked pledge remains in the ledger and a revoked backer
	// may not pledge again.
	backers, err := h.engine.ProjectBackers(projectID)
	if err != nil {
		t.Fatal(err)
	}
	if len(backers) != 1 || backers[0].Status != PledgeStatusRevoked {
		t.Fatalf("revoked pledge missing from the ledger")
	}
	err = h.engine.ProjectPledge(projectID, alice, 600, 600)
	assertUserErr(t, err, ErrorCodeAlreadyPledged)

	// Revoking twice fails
	err = h.engine.ProjectRevokePledge(projectID, alice)
	assertUserErr(t, err, ErrorCodePledgeNotFound)

	// Bootstrap with the remaining backer and verify that revocation
	// is locked out afterward.
	h.pledge(t, projectID, bob, 1000)
	err = h.engine.ProjectRevokePledge(projectID, bob)
	assertUserErr(t, err, ErrorCodeProjectBootstrapped)
}

// TestRevokedPledgeHoldsNoPower verifies that a pledge that was revoked
// before bootstrap grants no voting power and no pool governorship.
func TestRevokedPledgeHoldsNoPower(t *testing.T) {
	h := newTestHarness(t)
	alice := h.backer("alice", 1000)
	bob := h.backer("bob", 1000)
	projectID := h.register(t, 1000)

	h.pledge(t, projectID, alice, 500)
	err := h.engine.ProjectRevokePledge(projectID, alice)
	if err != nil {
		t.Fatal(err)
	}
	h.pledge(t, projectID, bob, 1000)

	p, err := h.engine.Project(projectID)
	if err != nil {
		t.Fatal(err)
	}
	if p.TotalPower != PowerScale {
		t.Fatalf("total power %v, want %v", p.TotalPower, PowerScale)
	}
	ok, err := h.treasury.IsPoolGovernor(p.PoolID, alice)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatalf("revoked backer is a pool governor")
	}
	backers, err := h.engine.ProjectBackers(projectID)
	if err != nil {
		t.Fatal(err)
	}
	if backers[0].Power != 0 {
		t.Fatalf("revoked backer power %v, want 0", backers[0].Power)
	}
}
