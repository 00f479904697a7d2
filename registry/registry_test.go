// Copyright (c) 2026 The Crowdmill developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package registry

import (
	"testing"

	"github.com/go-test/deep"
	"github.com/pkg/errors"
)

func TestProfile(t *testing.T) {
	r := New()

	_, err := r.Profile("unknown")
	if !errors.Is(err, ErrProfileNotFound) {
		t.Fatalf("got err %v, want %v", err, ErrProfileNotFound)
	}

	profileID := r.ProfileAdd("alice", []string{"bob", "carol"})
	p, err := r.Profile(profileID)
	if err != nil {
		t.Fatal(err)
	}
	want := Profile{
		ID:      profileID,
		Owner:   "alice",
		Members: []string{"bob", "carol"},
	}
	if diff := deep.Equal(*p, want); diff != nil {
		t.Fatalf("profile differs: %v", diff)
	}

	// The returned profile is a copy; mutating it must not affect the
	// registry.
	p.Members[0] = "mallory"
	ok, err := r.IsOwnerOrMember(profileID, "bob")
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatalf("registry profile was mutated through a copy")
	}
}

func TestIsOwnerOrMember(t *testing.T) {
	r := New()
	profileID := r.ProfileAdd("alice", []string{"bob"})

	tests := []struct {
		identity string
		want     bool
	}{
		{"alice", true},
		{"bob", true},
		{"carol", false},
	}
	for _, test := range tests {
		ok, err := r.IsOwnerOrMember(profileID, test.identity)
		if err != nil {
			t.Fatal(err)
		}
		if ok != test.want {
			t.Fatalf("%v: got %v, want %v", test.identity, ok, test.want)
		}
	}

	_, err := r.IsOwnerOrMember("unknown", "alice")
	if !errors.Is(err, ErrProfileNotFound) {
		t.Fatalf("got err %v, want %v", err, ErrProfileNotFound)
	}
}

func TestRoles(t *testing.T) {
	r := New()

	ok, err := r.HasRole("alice", "executor")
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatalf("role held before being granted")
	}

	r.RoleGrant("alice", "executor")
	r.RoleGrant("alice", "supplier")
	ok, err = r.HasRole("alice", "executor")
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatalf("granted role not held")
	}

	// Revoking one role leaves the other intact
	r.RoleRevoke("alice", "executor")
	ok, err = r.HasRole("alice", "executor")
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatalf("revoked role still held")
	}
	ok, err = r.HasRole("alice", "supplier")
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatalf("unrelated role was revoked")
	}

	// Revoking a role that was never granted is a noop
	r.RoleRevoke("bob", "executor")
}
