// Copyright (c) 2026 The Crowdmill developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package v1 contains the wire types for the crowdmilld JSON API. Each
// write route accepts a JSON encoded request body and replies with the
// corresponding reply struct; failures reply with an ErrorReply carrying
// the crowdfund error code that caused the abort.
package v1

import (
	"github.com/crowdmill/crowdmill/crowdfund"
)

const (
	// APIVersion is the current version of the crowdmilld API.
	APIVersion = 1

	// Routes
	RouteVersion         = "/v1/version"
	RouteProjectNew      = "/v1/project/new"
	RouteProjectPledge   = "/v1/project/pledge"
	RouteProjectRevoke   = "/v1/project/revoke"
	RouteProjectDetails  = "/v1/project/details"
	RouteProjectBackers  = "/v1/project/backers"
	RoutePlanOffer       = "/v1/plan/offer"
	RoutePlanReview      = "/v1/plan/review"
	RouteMilestoneSubmit = "/v1/milestone/submit"
	RouteMilestoneReview = "/v1/milestone/review"
	RouteRecipient       = "/v1/recipient"
	RouteOutcomeVote     = "/v1/outcome/vote"
	RouteThankYou        = "/v1/thankyou"

	// Host routes. These seed the in-process collaborators: identity
	// profiles, role grants, and account deposits.
	RouteProfileNew = "/v1/profile/new"
	RouteRoleGrant  = "/v1/role/grant"
	RouteDeposit    = "/v1/deposit"
)

// ErrorReply is returned for all failed requests. ErrorCode is a crowdfund
// error code for user errors and zero for internal server errors.
type ErrorReply struct {
	ErrorCode    crowdfund.ErrorCodeT `json:"errorcode"`
	ErrorContext string               `json:"errorcontext,omitempty"`
}

// Version requests the API version.
type Version struct{}

// VersionReply is the reply to the Version command.
type VersionReply struct {
	Version uint32 `json:"version"`
}

// ProjectNew registers a new crowdfunding project.
type ProjectNew struct {
	Owner    string `json:"owner"`    // Owner profile id
	Executor string `json:"executor"` // Fund recipient address
	Target   uint64 `json:"target"`   // Funding target
}

// ProjectNewReply is the reply to the ProjectNew command.
type ProjectNewReply struct {
	ProjectID string `json:"projectid"`
}

// ProjectPledge pledges value toward a project's funding target. Amount is
// the declared pledge; Value is the value attached to the request. The two
// must match.
type ProjectPledge struct {
	ProjectID string `json:"projectid"`
	Backer    string `json:"backer"`
	Amount    uint64 `json:"amount"`
	Value     uint64 `json:"value"`
}

// ProjectPledgeReply is the reply to the ProjectPledge command.
type ProjectPledgeReply struct {
	Project crowdfund.ProjectDetails `json:"project"`
}

// ProjectRevoke revokes the backer's pledge and refunds the full pledged
// amount. Not permitted once the project has been bootstrapped.
type ProjectRevoke struct {
	ProjectID string `json:"projectid"`
	Backer    string `json:"backer"`
}

// ProjectRevokeReply is the reply to the ProjectRevoke command.
type ProjectRevokeReply struct {
	Project crowdfund.ProjectDetails `json:"project"`
}

// ProjectDetails requests a project snapshot.
type ProjectDetails struct {
	ProjectID string `json:"projectid" schema:"projectid"`
}

// ProjectDetailsReply is the reply to the ProjectDetails command.
type ProjectDetailsReply struct {
	Project crowdfund.ProjectDetails `json:"project"`
}

// ProjectBackers requests the pledge ledger of a project.
type ProjectBackers struct {
	ProjectID string `json:"projectid" schema:"projectid"`
}

// ProjectBackersReply is the reply to the ProjectBackers command.
type ProjectBackersReply struct {
	Backers []crowdfund.BackerDetails `json:"backers"`
}

// PlanOffer offers a milestone plan for a recipient.
type PlanOffer struct {
	ProjectID  string                `json:"projectid"`
	Recipient  string                `json:"recipient"`
	Caller     string                `json:"caller"`
	Milestones []crowdfund.Milestone `json:"milestones"`
}

// PlanOfferReply is the reply to the PlanOffer command.
type PlanOfferReply struct{}

// PlanReview casts a weighted vote on a recipient's offered plan. Vote is
// one of the crowdfund vote directions, i.e. "approve" or "reject".
type PlanReview struct {
	ProjectID string          `json:"projectid"`
	Recipient string          `json:"recipient"`
	Caller    string          `json:"caller"`
	Vote      crowdfund.VoteT `json:"vote"`
}

// PlanReviewReply is the reply to the PlanReview command.
type PlanReviewReply struct {
	Recipient crowdfund.RecipientDetails `json:"recipient"`
}

// MilestoneSubmit submits a committed milestone for review.
type MilestoneSubmit struct {
	ProjectID string `json:"projectid"`
	Recipient string `json:"recipient"`
	Index     int    `json:"index"`
	Caller    string `json:"caller"`
	Evidence  string `json:"evidence"`
}

// MilestoneSubmitReply is the reply to the MilestoneSubmit command.
type MilestoneSubmitReply struct{}

// MilestoneReview casts a weighted vote on a pending milestone.
type MilestoneReview struct {
	ProjectID string          `json:"projectid"`
	Recipient string          `json:"recipient"`
	Index     int             `json:"index"`
	Caller    string          `json:"caller"`
	Vote      crowdfund.VoteT `json:"vote"`
}

// MilestoneReviewReply is the reply to the MilestoneReview command.
type MilestoneReviewReply struct {
	Recipient crowdfund.RecipientDetails `json:"recipient"`
}

// Recipient requests a recipient snapshot.
type Recipient struct {
	ProjectID string `json:"projectid" schema:"projectid"`
	Recipient string `json:"recipient" schema:"recipient"`
}

// RecipientReply is the reply to the Recipient command.
type RecipientReply struct {
	Recipient crowdfund.RecipientDetails `json:"recipient"`
}

// OutcomeVote casts a weighted vote on whether the project should be
// rejected. Vote is one of the crowdfund outcome directions, i.e. "reject"
// or "keep".
type OutcomeVote struct {
	ProjectID string             `json:"projectid"`
	Caller    string             `json:"caller"`
	Vote      crowdfund.OutcomeT `json:"vote"`
}

// OutcomeVoteReply is the reply to the OutcomeVote command.
type OutcomeVoteReply struct {
	Project crowdfund.ProjectDetails `json:"project"`
}

// ThankYou distributes an amount from the provided account to all backers
// proportional to their voting power. Terminal projects only.
type ThankYou struct {
	ProjectID string `json:"projectid"`
	From      string `json:"from"`
	Amount    uint64 `json:"amount"`
}

// ThankYouReply is the reply to the ThankYou command.
type ThankYouReply struct{}

// ProfileNew creates an identity profile.
type ProfileNew struct {
	Owner   string   `json:"owner"`
	Members []string `json:"members,omitempty"`
}

// ProfileNewReply is the reply to the ProfileNew command.
type ProfileNewReply struct {
	ProfileID string `json:"profileid"`
}

// RoleGrant grants a named role to an identity.
type RoleGrant struct {
	Identity string `json:"identity"`
	Role     string `json:"role"`
}

// RoleGrantReply is the reply to the RoleGrant command.
type RoleGrantReply struct{}

// Deposit credits an identity account with value.
type Deposit struct {
	Account string `json:"account"`
	Amount  uint64 `json:"amount"`
}

// DepositReply is the reply to the Deposit command.
type DepositReply struct {
	Balance uint64 `json:"balance"`
}
