// Copyright (c) 2026 The Crowdmill developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package crowdfund

import (
	"fmt"
)

// VoteT represents a vote direction for plan and milestone reviews.
type VoteT string

const (
	// VoteApprove votes to approve the subject of the tally.
	VoteApprove VoteT = "approve"

	// VoteReject votes to reject the subject of the tally.
	VoteReject VoteT = "reject"
)

// voteTally is a reusable weighted vote counter. Each voter may contribute
// at most once; the ledger records the voting power a voter has already
// spent, with 0 meaning the voter has not voted yet.
//
// A tally is reset whenever its subject is superseded, e.g. a new plan
// offer replaces a prior one or a rejected milestone is resubmitted.
type voteTally struct {
	For     uint64            `json:"for"`
	Against uint64            `json:"against"`
	Ledger  map[string]uint64 `json:"ledger"` // [voter]power
}

// newVoteTally returns an empty voteTally.
func newVoteTally() voteTally {
	return voteTally{
		Ledger: make(map[string]uint64),
	}
}

// reset clears the ledger and zeroes the counters.
func (t *voteTally) reset() {
	t.For = 0
	t.Against = 0
	t.Ledger = make(map[string]uint64)
}

// clone returns a deep copy of the tally. Reviews cast votes against a
// clone and only write it back once every side effect of the cast has
// succeeded, which keeps a failed operation from leaving a partial vote
// behind.
func (t *voteTally) clone() voteTally {
	ledger := make(map[string]uint64, len(t.Ledger))
	for k, v := range t.Ledger {
		ledger[k] = v
	}
	return voteTally{
		For:     t.For,
		Against: t.Against,
		Ledger:  ledger,
	}
}

// cast records the voter's power in the ledger, adds it to the counter that
// corresponds to the vote direction, and returns whether the updated
// counter now strictly exceeds total*threshold/100.
//
// Crossing is evaluated on every cast, not just the final one. The tally
// itself carries no notion of being resolved; it is the caller's
// responsibility to stop casting votes once a crossing has been consumed,
// which the workflow layer does by checking the subject's status before
// calling in.
func (t *voteTally) cast(voter string, power uint64, vote VoteT, total uint64, threshold uint32) (bool, error) {
	if t.Ledger[voter] != 0 {
		return false, UserError{
			ErrorCode:    ErrorCodeAlreadyVoted,
			ErrorContext: voter,
		}
	}

	var count uint64
	switch vote {
	case VoteApprove:
		t.For += power
		count = t.For
	case VoteReject:
		t.Against += power
		count = t.Against
	default:
		return false, UserError{
			ErrorCode:    ErrorCodeVoteInvalid,
			ErrorContext: fmt.Sprintf("%v not a valid vote", vote),
		}
	}
	t.Ledger[voter] = power

	return thresholdMet(count, total, threshold), nil
}
