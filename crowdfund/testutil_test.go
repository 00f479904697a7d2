// Copyright (c) 2026 The Crowdmill developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package crowdfund

import (
	"testing"

	"github.com/crowdmill/crowdmill/pool"
	"github.com/crowdmill/crowdmill/registry"
)

// testHarness bundles an engine with its in-process collaborators and the
// identities that the tests act as.
type testHarness struct {
	engine   *Engine
	treasury *pool.Treasury
	registry *registry.Registry

	owner    string // Identity that owns the project profile
	profile  string // Owner profile id
	executor string // Fund recipient
}

// newTestHarness returns a harness with an owner profile and an executor
// that holds the executor role. No projects are registered.
func newTestHarness(t *testing.T, opts ...Option) *testHarness {
	t.Helper()

	tr := pool.New()
	reg := registry.New()
	e, err := New(tr, tr, reg, reg, opts...)
	if err != nil {
		t.Fatal(err)
	}

	h := testHarness{
		engine:   e,
		treasury: tr,
		registry: reg,
		owner:    "owner",
		executor: "executor",
	}
	h.profile = reg.ProfileAdd(h.owner, nil)
	reg.RoleGrant(h.executor, RoleExecutor)

	return &h
}

// backer funds an identity and grants it the supplier role.
func (h *testHarness) backer(identity string, balance uint64) string {
	h.treasury.Deposit(identity, balance)
	h.registry.RoleGrant(identity, RoleSupplier)
	return identity
}

// register registers a project with the provided funding target.
func (h *testHarness) register(t *testing.T, target uint64) string {
	t.Helper()

	projectID, err := h.engine.ProjectRegister(h.profile, h.executor, target)
	if err != nil {
		t.Fatal(err)
	}
	return projectID
}

// pledge pledges amount from the backer with a matching value.
func (h *testHarness) pledge(t *testing.T, projectID, backer string, amount uint64) {
	t.Helper()

	err := h.engine.ProjectPledge(projectID, backer, amount, amount)
	if err != nil {
		t.Fatal(err)
	}
}

// activeProject registers a 1000 unit project and bootstraps it with a 600
// unit pledge from alice and a 400 unit pledge from bob. Alice alone can
// cross the default 50% threshold; bob alone cannot.
func (h *testHarness) activeProject(t *testing.T) (projectID, alice, bob string) {
	t.Helper()

	alice = h.backer("alice", 1000)
	bob = h.backer("bob", 1000)
	projectID = h.register(t, 1000)
	h.pledge(t, projectID, alice, 600)
	h.pledge(t, projectID, bob, 400)

	p, err := h.engine.Project(projectID)
	if err != nil {
		t.Fatal(err)
	}
	if p.State != StateActive {
		t.Fatalf("project state %v, want %v",
			States[p.State], States[StateActive])
	}

	return projectID, alice, bob
}

// testPlan returns a two milestone plan that pays out 40% then 60%.
func testPlan() []Milestone {
	return []Milestone{
		{
			Description: "prototype",
			Percentage:  PowerScale / 100 * 40,
		},
		{
			Description: "delivery",
			Percentage:  PowerScale / 100 * 60,
		},
	}
}

// committedPlan offers and commits the provided plan for the executor.
func (h *testHarness) committedPlan(t *testing.T, projectID, voter string, plan []Milestone) {
	t.Helper()

	err := h.engine.MilestonePlanOffer(projectID, h.executor, h.executor, plan)
	if err != nil {
		t.Fatal(err)
	}
	err = h.engine.MilestonePlanReview(projectID, h.executor, voter, VoteApprove)
	if err != nil {
		t.Fatal(err)
	}
}

// assertUserErr fails the test unless err is a UserError with the provided
// error code.
func assertUserErr(t *testing.T, err error, code ErrorCodeT) {
	t.Helper()

	ue, ok := err.(UserError)
	if !ok {
		t.Fatalf("got err %v, want user error %v", err, ErrorCodes[code])
	}
	if ue.ErrorCode != code {
		t.Fatalf("got user error %v, want %v",
			ErrorCodes[ue.ErrorCode], ErrorCodes[code])
	}
}
