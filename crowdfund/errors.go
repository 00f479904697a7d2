// Copyright (c) 2026 The Crowdmill developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package crowdfund

import (
	"fmt"
)

// ErrorCodeT represents an engine error that was caused by the user.
type ErrorCodeT uint32

const (
	// ErrorCodeInvalid is an invalid error code.
	ErrorCodeInvalid ErrorCodeT = 0

	// ErrorCodeInputInvalid is returned when a user provided input is
	// malformed, e.g. a zero funding target or an empty identity.
	ErrorCodeInputInvalid ErrorCodeT = 1

	// ErrorCodeProjectNotFound is returned when a project is not found.
	ErrorCodeProjectNotFound ErrorCodeT = 2

	// ErrorCodeAmountInvalid is returned when a pledge amount is zero
	// or does not match the value that was actually transferred.
	ErrorCodeAmountInvalid ErrorCodeT = 3

	// ErrorCodeAlreadyPledged is returned when a backer that already
	// holds a non-revoked pledge attempts to pledge again.
	ErrorCodeAlreadyPledged ErrorCodeT = 4

	// ErrorCodePledgeNotFound is returned when a backer attempts to
	// revoke a pledge that does not exist or was already revoked.
	ErrorCodePledgeNotFound ErrorCodeT = 5

	// ErrorCodeProjectBootstrapped is returned when a pledge or a
	// pledge revocation is attempted after the funding target has been
	// reached and the custody pool has been created.
	ErrorCodeProjectBootstrapped ErrorCodeT = 6

	// ErrorCodeNotAuthorized is returned when the caller does not hold
	// the role or the identity that the operation requires.
	ErrorCodeNotAuthorized ErrorCodeT = 7

	// ErrorCodeStateInvalid is returned when the project lifecycle
	// state does not allow the operation, e.g. milestone workflow on a
	// project that is not active or a thank you distribution on a
	// project that is not terminal.
	ErrorCodeStateInvalid ErrorCodeT = 8

	// ErrorCodeRecipientNotFound is returned when a recipient is not
	// found.
	ErrorCodeRecipientNotFound ErrorCodeT = 9

	// ErrorCodeRecipientStatusInvalid is returned when the recipient
	// status does not allow the operation.
	ErrorCodeRecipientStatusInvalid ErrorCodeT = 10

	// ErrorCodePlanAlreadyCommitted is returned when a plan is offered
	// for a recipient that already has a committed milestone plan.
	ErrorCodePlanAlreadyCommitted ErrorCodeT = 11

	// ErrorCodePlanNotOffered is returned when a plan review is cast
	// for a recipient that has no offered plan.
	ErrorCodePlanNotOffered ErrorCodeT = 12

	// ErrorCodeMilestoneNotFound is returned when a milestone index is
	// out of range.
	ErrorCodeMilestoneNotFound ErrorCodeT = 13

	// ErrorCodeMilestoneStatusInvalid is returned when the milestone
	// status does not allow the operation, e.g. reviewing a milestone
	// that is not pending.
	ErrorCodeMilestoneStatusInvalid ErrorCodeT = 14

	// ErrorCodePercentageInvalid is returned when the percentages of
	// an offered milestone plan do not sum to exactly the power scale.
	ErrorCodePercentageInvalid ErrorCodeT = 15

	// ErrorCodeAlreadyVoted is returned when a voter casts a second
	// vote against the same tally.
	ErrorCodeAlreadyVoted ErrorCodeT = 16

	// ErrorCodeAllocationInvalid is returned when the internal grant
	// allocation of a committed plan cannot be satisfied by the pool.
	ErrorCodeAllocationInvalid ErrorCodeT = 17

	// ErrorCodeBalanceInsufficient is returned when the caller's
	// account does not hold enough value to cover a transfer.
	ErrorCodeBalanceInsufficient ErrorCodeT = 18

	// ErrorCodeVoteInvalid is returned when a vote direction is not
	// one of the allowed options.
	ErrorCodeVoteInvalid ErrorCodeT = 19

	// ErrorCodeLast unit test only.
	ErrorCodeLast ErrorCodeT = 20
)

var (
	// ErrorCodes contains the human readable error messages.
	ErrorCodes = map[ErrorCodeT]string{
		ErrorCodeInvalid:                "error code invalid",
		ErrorCodeInputInvalid:           "input invalid",
		ErrorCodeProjectNotFound:        "project not found",
		ErrorCodeAmountInvalid:          "amount invalid",
		ErrorCodeAlreadyPledged:         "already pledged",
		ErrorCodePledgeNotFound:         "no active pledge",
		ErrorCodeProjectBootstrapped:    "project already bootstrapped",
		ErrorCodeNotAuthorized:          "not authorized",
		ErrorCodeStateInvalid:           "project state invalid",
		ErrorCodeRecipientNotFound:      "recipient not found",
		ErrorCodeRecipientStatusInvalid: "recipient status invalid",
		ErrorCodePlanAlreadyCommitted:   "plan already committed",
		ErrorCodePlanNotOffered:         "no plan offered",
		ErrorCodeMilestoneNotFound:      "milestone not found",
		ErrorCodeMilestoneStatusInvalid: "milestone status invalid",
		ErrorCodePercentageInvalid:      "milestone percentage invalid",
		ErrorCodeAlreadyVoted:           "already voted",
		ErrorCodeAllocationInvalid:      "allocation invalid",
		ErrorCodeBalanceInsufficient:    "balance insufficient",
		ErrorCodeVoteInvalid:            "vote invalid",
	}
)

// UserError represents an error that was caused by the user. The operation
// that returned it was aborted with no state changes.
type UserError struct {
	ErrorCode    ErrorCodeT
	ErrorContext string
}

// Error satisfies the error interface.
func (e UserError) Error() string {
	if e.ErrorContext == "" {
		return fmt.Sprintf("crowdfund error %v: %v",
			uint32(e.ErrorCode), ErrorCodes[e.ErrorCode])
	}
	return fmt.Sprintf("crowdfund error %v: %v, %v",
		uint32(e.ErrorCode), ErrorCodes[e.ErrorCode], e.ErrorContext)
}
