// Copyright (c) 2026 The Crowdmill developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package crowdfund

import (
	"testing"

	"github.com/crowdmill/crowdmill/store/localdb"
	"github.com/go-test/deep"
)

// TestEngineReload verifies that engine state survives a restart when a
// store is plugged in. The first engine mutates state through the store;
// the second engine is created on top of the same store and must come up
// with identical projects.
func TestEngineReload(t *testing.T) {
	dir := t.TempDir()
	kv, err := localdb.New(dir, dir)
	if err != nil {
		t.Fatal(err)
	}
	defer kv.Close()

	h := newTestHarness(t, WithStore(kv))
	projectID, _, _ := h.activeProject(t)

	before, err := h.engine.Project(projectID)
	if err != nil {
		t.Fatal(err)
	}
	backersBefore, err := h.engine.ProjectBackers(projectID)
	if err != nil {
		t.Fatal(err)
	}

	// Bring up a second engine on the same store. The treasury and
	// registry are not persisted; only the engine state is under
	// test.
	e2, err := New(h.treasury, h.treasury, h.registry, h.registry,
		WithStore(kv))
	if err != nil {
		t.Fatal(err)
	}

	after, err := e2.Project(projectID)
	if err != nil {
		t.Fatal(err)
	}
	if diff := deep.Equal(after, before); diff != nil {
		t.Fatalf("reloaded project differs: %v", diff)
	}
	backersAfter, err := e2.ProjectBackers(projectID)
	if err != nil {
		t.Fatal(err)
	}
	if diff := deep.Equal(backersAfter, backersBefore); diff != nil {
		t.Fatalf("reloaded backers differ: %v", diff)
	}

	// The reloaded engine keeps on working
	err = e2.MilestonePlanOffer(projectID, h.executor, h.executor, testPlan())
	if err != nil {
		t.Fatal(err)
	}
}
