// Copyright (c) 2026 The Crowdmill developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package crowdfund

import (
	"testing"

	"github.com/go-test/deep"
)

func TestTallyCast(t *testing.T) {
	// A total of 1000 with a 50% threshold means a counter must reach
	// 501 to cross.
	const (
		total     uint64 = 1000
		threshold uint32 = 50
	)

	tally := newVoteTally()

	// First vote does not cross
	crossed, err := tally.cast("alice", 400, VoteApprove, total, threshold)
	if err != nil {
		t.Fatal(err)
	}
	if crossed {
		t.Fatalf("400/1000 crossed the 50%% threshold")
	}

	// Double vote is rejected, regardless of direction
	_, err = tally.cast("alice", 400, VoteApprove, total, threshold)
	assertUserErr(t, err, ErrorCodeAlreadyVoted)
	_, err = tally.cast("alice", 400, VoteReject, total, threshold)
	assertUserErr(t, err, ErrorCodeAlreadyVoted)

	// Invalid vote direction is rejected and not recorded
	_, err = tally.cast("bob", 300, VoteT("abstain"), total, threshold)
	assertUserErr(t, err, ErrorCodeVoteInvalid)
	if tally.Ledger["bob"] != 0 {
		t.Fatalf("invalid vote was recorded in the ledger")
	}

	// An opposing vote counts on the other counter and does not cross
	crossed, err = tally.cast("bob", 300, VoteReject, total, threshold)
	if err != nil {
		t.Fatal(err)
	}
	if crossed {
		t.Fatalf("300/1000 against crossed the 50%% threshold")
	}

	// This vote pushes the approve counter to 501 and crosses
	crossed, err = tally.cast("carol", 101, VoteApprove, total, threshold)
	if err != nil {
		t.Fatal(err)
	}
	if !crossed {
		t.Fatalf("501/1000 did not cross the 50%% threshold")
	}

	if tally.For != 501 || tally.Against != 300 {
		t.Fatalf("counters %v/%v, want 501/300", tally.For, tally.Against)
	}
}

func TestTallyClone(t *testing.T) {
	tally := newVoteTally()
	_, err := tally.cast("alice", 400, VoteApprove, 1000, 50)
	if err != nil {
		t.Fatal(err)
	}

	// The clone must match the original
	clone := tally.clone()
	if diff := deep.Equal(clone, tally); diff != nil {
		t.Fatalf("clone differs: %v", diff)
	}

	// Casting on the clone must not touch the original
	_, err = clone.cast("bob", 300, VoteReject, 1000, 50)
	if err != nil {
		t.Fatal(err)
	}
	if tally.Against != 0 {
		t.Fatalf("cast on clone mutated the original counters")
	}
	if tally.Ledger["bob"] != 0 {
		t.Fatalf("cast on clone mutated the original ledger")
	}
}

func TestTallyReset(t *testing.T) {
	tally := newVoteTally()
	_, err := tally.cast("alice", 400, VoteApprove, 1000, 50)
	if err != nil {
		t.Fatal(err)
	}

	tally.reset()

	if diff := deep.Equal(tally, newVoteTally()); diff != nil {
		t.Fatalf("reset tally differs from empty: %v", diff)
	}

	// Alice can vote again after a reset
	_, err = tally.cast("alice", 400, VoteReject, 1000, 50)
	if err != nil {
		t.Fatal(err)
	}
}
