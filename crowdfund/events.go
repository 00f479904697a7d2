// Copyright (c) 2026 The Crowdmill developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package crowdfund

// Engine event types. Events are emitted through the events manager that
// was provided on engine creation; a listener registers a channel for an
// event type and receives the corresponding payload struct below.
const (
	EventTypeFundingReceived        = "fundingreceived"
	EventTypePoolBootstrapped       = "poolbootstrapped"
	EventTypeRecipientStatusChanged = "recipientstatuschanged"
	EventTypeMilestoneOffered       = "milestoneoffered"
	EventTypeMilestonePlanReviewed  = "milestoneplanreviewed"
	EventTypeMilestoneSubmitted     = "milestonesubmitted"
	EventTypeMilestoneStatusChanged = "milestonestatuschanged"
	EventTypeProjectRejected        = "projectrejected"
	EventTypeRejectDeclined         = "rejectdeclined"
	EventTypeThankYouDistributed    = "thankyoudistributed"
)

// EventFundingReceived is the event data for EventTypeFundingReceived.
type EventFundingReceived struct {
	ProjectID string
	Backer    string
	Amount    uint64
	Raised    uint64
}

// EventPoolBootstrapped is the event data for EventTypePoolBootstrapped.
type EventPoolBootstrapped struct {
	ProjectID      string
	PoolID         string
	OpeningBalance uint64
	Backers        int
}

// EventRecipientStatusChanged is the event data for
// EventTypeRecipientStatusChanged.
type EventRecipientStatusChanged struct {
	ProjectID string
	Recipient string
	Status    RecipientStatusT
	Grant     uint64
}

// EventMilestoneOffered is the event data for EventTypeMilestoneOffered.
type EventMilestoneOffered struct {
	ProjectID  string
	Recipient  string
	Milestones int
}

// EventMilestonePlanReviewed is the event data for
// EventTypeMilestonePlanReviewed.
type EventMilestonePlanReviewed struct {
	ProjectID string
	Recipient string
	Voter     string
	Vote      VoteT
	Committed bool
	Discarded bool
}

// EventMilestoneSubmitted is the event data for EventTypeMilestoneSubmitted.
type EventMilestoneSubmitted struct {
	ProjectID string
	Recipient string
	Index     int
	Evidence  string
}

// EventMilestoneStatusChanged is the event data for
// EventTypeMilestoneStatusChanged. Payout is only populated when the
// milestone was accepted.
type EventMilestoneStatusChanged struct {
	ProjectID string
	Recipient string
	Index     int
	Status    MilestoneStatusT
	Payout    uint64
}

// EventProjectRejected is the event data for EventTypeProjectRejected.
type EventProjectRejected struct {
	ProjectID string
	Refunded  uint64
}

// EventRejectDeclined is the event data for EventTypeRejectDeclined.
type EventRejectDeclined struct {
	ProjectID string
}

// EventThankYouDistributed is the event data for
// EventTypeThankYouDistributed.
type EventThankYouDistributed struct {
	ProjectID string
	From      string
	Amount    uint64
}
