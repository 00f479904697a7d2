// Copyright (c) 2026 The Crowdmill developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package crowdfund

// ProjectDetails is a read only snapshot of a project.
type ProjectDetails struct {
	ID           string `json:"id"`
	Owner        string `json:"owner"`
	Executor     string `json:"executor"`
	Needed       uint64 `json:"needed"`
	Raised       uint64 `json:"raised"`
	State        StateT `json:"state"`
	Bootstrapped bool   `json:"bootstrapped"`
	PoolID       string `json:"poolid,omitempty"`
	TotalPower   uint64 `json:"totalpower,omitempty"`
}

// BackerDetails is a read only snapshot of a single backer's pledge and
// voting power. Power is zero until the project has been bootstrapped.
type BackerDetails struct {
	Identity string        `json:"identity"`
	Amount   uint64        `json:"amount"`
	Status   PledgeStatusT `json:"status"`
	Power    uint64        `json:"power,omitempty"`
}

// MilestoneDetails is a read only snapshot of a committed milestone.
type MilestoneDetails struct {
	Description  string           `json:"description"`
	Percentage   uint64           `json:"percentage"`
	Evidence     string           `json:"evidence,omitempty"`
	Status       MilestoneStatusT `json:"status"`
	VotesFor     uint64           `json:"votesfor"`
	VotesAgainst uint64           `json:"votesagainst"`
}

// RecipientDetails is a read only snapshot of a recipient.
type RecipientDetails struct {
	Address    string             `json:"address"`
	Grant      uint64             `json:"grant"`
	Status     RecipientStatusT   `json:"status"`
	Milestones []MilestoneDetails `json:"milestones,omitempty"`
	NextIndex  int                `json:"nextindex"`

	// Offered contains the currently offered, not yet committed
	// milestone plan, if there is one.
	Offered []Milestone `json:"offered,omitempty"`
}

// Project returns a snapshot of the project with the provided id.
func (e *Engine) Project(projectID string) (*ProjectDetails, error) {
	e.Lock()
	defer e.Unlock()

	p, ok := e.projects[projectID]
	if !ok {
		return nil, UserError{
			ErrorCode: ErrorCodeProjectNotFound,
		}
	}

	return &ProjectDetails{
		ID:           p.ID,
		Owner:        p.Owner,
		Executor:     p.Executor,
		Needed:       p.Needed,
		Raised:       p.Raised,
		State:        p.State,
		Bootstrapped: p.bootstrapped(),
		PoolID:       p.PoolID,
		TotalPower:   p.TotalPower,
	}, nil
}

// ProjectBackers returns a snapshot of all pledges of the project, in
// pledge insertion order. Revoked pledges are included; pledge history is
// never deleted.
func (e *Engine) ProjectBackers(projectID string) ([]BackerDetails, error) {
	e.Lock()
	defer e.Unlock()

	p, ok := e.projects[projectID]
	if !ok {
		return nil, UserError{
			ErrorCode: ErrorCodeProjectNotFound,
		}
	}

	backers := make([]BackerDetails, 0, len(p.Backers))
	for _, v := range p.Backers {
		pl := p.Pledges[v]
		backers = append(backers, BackerDetails{
			Identity: v,
			Amount:   pl.Amount,
			Status:   pl.Status,
			Power:    p.Power[v],
		})
	}

	return backers, nil
}

// Recipient returns a snapshot of the provided recipient.
func (e *Engine) Recipient(projectID, recipientID string) (*RecipientDetails, error) {
	e.Lock()
	defer e.Unlock()

	p, ok := e.projects[projectID]
	if !ok {
		return nil, UserError{
			ErrorCode: ErrorCodeProjectNotFound,
		}
	}
	r, ok := p.Recipients[recipientID]
	if !ok {
		return nil, UserError{
			ErrorCode:    ErrorCodeRecipientNotFound,
			ErrorContext: recipientID,
		}
	}

	d := RecipientDetails{
		Address:    r.Address,
		Grant:      r.Grant,
		Status:     r.Status,
		NextIndex:  r.NextIndex,
		Milestones: make([]MilestoneDetails, 0, len(r.Milestones)),
	}
	for _, m := range r.Milestones {
		d.Milestones = append(d.Milestones, MilestoneDetails{
			Description:  m.Description,
			Percentage:   m.Percentage,
			Evidence:     m.Evidence,
			Status:       m.Status,
			VotesFor:     m.Tally.For,
			VotesAgainst: m.Tally.Against,
		})
	}
	if r.Offer != nil {
		d.Offered = make([]Milestone, 0, len(r.Offer.Milestones))
		for _, m := range r.Offer.Milestones {
			d.Offered = append(d.Offered, Milestone{
				Description: m.Description,
				Percentage:  m.Percentage,
			})
		}
	}

	return &d, nil
}
