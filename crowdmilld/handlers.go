// Copyright (c) 2026 The Crowdmill developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"encoding/json"
	"errors"
	"net/http"

	v1 "github.com/crowdmill/crowdmill/api/v1"
	"github.com/crowdmill/crowdmill/crowdfund"
	"github.com/crowdmill/crowdmill/pool"
	"github.com/crowdmill/crowdmill/registry"
	"github.com/crowdmill/crowdmill/util"
	"github.com/gorilla/mux"
	"github.com/gorilla/schema"
)

// crowdmilld is the application context.
type crowdmilld struct {
	cfg      *config
	router   *mux.Router
	engine   *crowdfund.Engine
	treasury *pool.Treasury
	registry *registry.Registry
}

// queryDecoder decodes GET query parameters into request structs.
var queryDecoder = schema.NewDecoder()

// respondWithError replies with an ErrorReply. User errors are returned
// with a 400 and carry the crowdfund error code that caused the abort;
// everything else is treated as an internal server error.
func respondWithError(w http.ResponseWriter, r *http.Request, err error) {
	var ue crowdfund.UserError
	if errors.As(err, &ue) {
		util.RespondWithJSON(w, http.StatusBadRequest, v1.ErrorReply{
			ErrorCode:    ue.ErrorCode,
			ErrorContext: ue.ErrorContext,
		})
		return
	}

	log.Errorf("%v %v: %v", r.Method, r.URL.Path, err)
	util.RespondWithJSON(w, http.StatusInternalServerError, v1.ErrorReply{})
}

// decodeBody decodes a JSON request body into the provided request struct.
func decodeBody(r *http.Request, req interface{}) error {
	err := json.NewDecoder(r.Body).Decode(req)
	if err != nil {
		return crowdfund.UserError{
			ErrorCode:    crowdfund.ErrorCodeInputInvalid,
			ErrorContext: "could not decode request body",
		}
	}
	return nil
}

// decodeQuery decodes GET query parameters into the provided request
// struct.
func decodeQuery(r *http.Request, req interface{}) error {
	err := r.ParseForm()
	if err == nil {
		err = queryDecoder.Decode(req, r.Form)
	}
	if err != nil {
		return crowdfund.UserError{
			ErrorCode:    crowdfund.ErrorCodeInputInvalid,
			ErrorContext: "could not decode query parameters",
		}
	}
	return nil
}

func (c *crowdmilld) handleVersion(w http.ResponseWriter, r *http.Request) {
	util.RespondWithJSON(w, http.StatusOK, v1.VersionReply{
		Version: v1.APIVersion,
	})
}

func (c *crowdmilld) handleProjectNew(w http.ResponseWriter, r *http.Request) {
	var pn v1.ProjectNew
	err := decodeBody(r, &pn)
	if err != nil {
		respondWithError(w, r, err)
		return
	}

	projectID, err := c.engine.ProjectRegister(pn.Owner, pn.Executor,
		pn.Target)
	if err != nil {
		respondWithError(w, r, err)
		return
	}

	util.RespondWithJSON(w, http.StatusOK, v1.ProjectNewReply{
		ProjectID: projectID,
	})
}

func (c *crowdmilld) handleProjectPledge(w http.ResponseWriter, r *http.Request) {
	var pp v1.ProjectPledge
	err := decodeBody(r, &pp)
	if err != nil {
		respondWithError(w, r, err)
		return
	}

	err = c.engine.ProjectPledge(pp.ProjectID, pp.Backer, pp.Amount,
		pp.Value)
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	p, err := c.engine.Project(pp.ProjectID)
	if err != nil {
		respondWithError(w, r, err)
		return
	}

	util.RespondWithJSON(w, http.StatusOK, v1.ProjectPledgeReply{
		Project: *p,
	})
}

func (c *crowdmilld) handleProjectRevoke(w http.ResponseWriter, r *http.Request) {
	var pr v1.ProjectRevoke
	err := decodeBody(r, &pr)
	if err != nil {
		respondWithError(w, r, err)
		return
	}

	err = c.engine.ProjectRevokePledge(pr.ProjectID, pr.Backer)
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	p, err := c.engine.Project(pr.ProjectID)
	if err != nil {
		respondWithError(w, r, err)
		return
	}

	util.RespondWithJSON(w, http.StatusOK, v1.ProjectRevokeReply{
		Project: *p,
	})
}

func (c *crowdmilld) handleProjectDetails(w http.ResponseWriter, r *http.Request) {
	var pd v1.ProjectDetails
	err := decodeQuery(r, &pd)
	if err != nil {
		respondWithError(w, r, err)
		return
	}

	p, err := c.engine.Project(pd.ProjectID)
	if err != nil {
		respondWithError(w, r, err)
		return
	}

	util.RespondWithJSON(w, http.StatusOK, v1.ProjectDetailsReply{
		Project: *p,
	})
}

func (c *crowdmilld) handleProjectBackers(w http.ResponseWriter, r *http.Request) {
	var pb v1.ProjectBackers
	err := decodeQuery(r, &pb)
	if err != nil {
		respondWithError(w, r, err)
		return
	}

	backers, err := c.engine.ProjectBackers(pb.ProjectID)
	if err != nil {
		respondWithError(w, r, err)
		return
	}

	util.RespondWithJSON(w, http.StatusOK, v1.ProjectBackersReply{
		Backers: backers,
	})
}

func (c *crowdmilld) handlePlanOffer(w http.ResponseWriter, r *http.Request) {
	var po v1.PlanOffer
	err := decodeBody(r, &po)
	if err != nil {
		respondWithError(w, r, err)
		return
	}

	err = c.engine.MilestonePlanOffer(po.ProjectID, po.Recipient,
		po.Caller, po.Milestones)
	if err != nil {
		respondWithError(w, r, err)
		return
	}

	util.RespondWithJSON(w, http.StatusOK, v1.PlanOfferReply{})
}

func (c *crowdmilld) handlePlanReview(w http.ResponseWriter, r *http.Request) {
	var pr v1.PlanReview
	err := decodeBody(r, &pr)
	if err != nil {
		respondWithError(w, r, err)
		return
	}

	err = c.engine.MilestonePlanReview(pr.ProjectID, pr.Recipient,
		pr.Caller, pr.Vote)
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	rd, err := c.engine.Recipient(pr.ProjectID, pr.Recipient)
	if err != nil {
		respondWithError(w, r, err)
		return
	}

	util.RespondWithJSON(w, http.StatusOK, v1.PlanReviewReply{
		Recipient: *rd,
	})
}

func (c *crowdmilld) handleMilestoneSubmit(w http.ResponseWriter, r *http.Request) {
	var ms v1.MilestoneSubmit
	err := decodeBody(r, &ms)
	if err != nil {
		respondWithError(w, r, err)
		return
	}

	err = c.engine.MilestoneSubmit(ms.ProjectID, ms.Recipient, ms.Index,
		ms.Caller, ms.Evidence)
	if err != nil {
		respondWithError(w, r, err)
		return
	}

	util.RespondWithJSON(w, http.StatusOK, v1.MilestoneSubmitReply{})
}

func (c *crowdmilld) handleMilestoneReview(w http.ResponseWriter, r *http.Request) {
	var mr v1.MilestoneReview
	err := decodeBody(r, &mr)
	if err != nil {
		respondWithError(w, r, err)
		return
	}

	err = c.engine.MilestoneReview(mr.ProjectID, mr.Recipient, mr.Index,
		mr.Caller, mr.Vote)
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	rd, err := c.engine.Recipient(mr.ProjectID, mr.Recipient)
	if err != nil {
		respondWithError(w, r, err)
		return
	}

	util.RespondWithJSON(w, http.StatusOK, v1.MilestoneReviewReply{
		Recipient: *rd,
	})
}

func (c *crowdmilld) handleRecipient(w http.ResponseWriter, r *http.Request) {
	var req v1.Recipient
	err := decodeQuery(r, &req)
	if err != nil {
		respondWithError(w, r, err)
		return
	}

	rd, err := c.engine.Recipient(req.ProjectID, req.Recipient)
	if err != nil {
		respondWithError(w, r, err)
		return
	}

	util.RespondWithJSON(w, http.StatusOK, v1.RecipientReply{
		Recipient: *rd,
	})
}

func (c *crowdmilld) handleOutcomeVote(w http.ResponseWriter, r *http.Request) {
	var ov v1.OutcomeVote
	err := decodeBody(r, &ov)
	if err != nil {
		respondWithError(w, r, err)
		return
	}

	err = c.engine.ProjectOutcomeVote(ov.ProjectID, ov.Caller, ov.Vote)
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	p, err := c.engine.Project(ov.ProjectID)
	if err != nil {
		respondWithError(w, r, err)
		return
	}

	util.RespondWithJSON(w, http.StatusOK, v1.OutcomeVoteReply{
		Project: *p,
	})
}

func (c *crowdmilld) handleThankYou(w http.ResponseWriter, r *http.Request) {
	var ty v1.ThankYou
	err := decodeBody(r, &ty)
	if err != nil {
		respondWithError(w, r, err)
		return
	}

	err = c.engine.ThankYouDistribute(ty.ProjectID, ty.From, ty.Amount)
	if err != nil {
		respondWithError(w, r, err)
		return
	}

	util.RespondWithJSON(w, http.StatusOK, v1.ThankYouReply{})
}

func (c *crowdmilld) handleProfileNew(w http.ResponseWriter, r *http.Request) {
	var pn v1.ProfileNew
	err := decodeBody(r, &pn)
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	if pn.Owner == "" {
		respondWithError(w, r, crowdfund.UserError{
			ErrorCode:    crowdfund.ErrorCodeInputInvalid,
			ErrorContext: "no owner provided",
		})
		return
	}

	profileID := c.registry.ProfileAdd(pn.Owner, pn.Members)

	util.RespondWithJSON(w, http.StatusOK, v1.ProfileNewReply{
		ProfileID: profileID,
	})
}

func (c *crowdmilld) handleRoleGrant(w http.ResponseWriter, r *http.Request) {
	var rg v1.RoleGrant
	err := decodeBody(r, &rg)
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	if rg.Identity == "" || rg.Role == "" {
		respondWithError(w, r, crowdfund.UserError{
			ErrorCode:    crowdfund.ErrorCodeInputInvalid,
			ErrorContext: "identity and role are required",
		})
		return
	}

	c.registry.RoleGrant(rg.Identity, rg.Role)

	util.RespondWithJSON(w, http.StatusOK, v1.RoleGrantReply{})
}

func (c *crowdmilld) handleDeposit(w http.ResponseWriter, r *http.Request) {
	var d v1.Deposit
	err := decodeBody(r, &d)
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	if d.Account == "" || d.Amount == 0 {
		respondWithError(w, r, crowdfund.UserError{
			ErrorCode:    crowdfund.ErrorCodeInputInvalid,
			ErrorContext: "account and amount are required",
		})
		return
	}

	c.treasury.Deposit(d.Account, d.Amount)

	util.RespondWithJSON(w, http.StatusOK, v1.DepositReply{
		Balance: c.treasury.Balance(d.Account),
	})
}

// closeBody closes the request body after the provided handler is called.
func closeBody(f http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f(w, r)
		r.Body.Close()
	}
}

// logging logs all incoming commands before calling the next function.
func logging(f http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Infof("%v %v %v", r.RemoteAddr, r.Method, r.URL)
		f(w, r)
	}
}

func (c *crowdmilld) addRoute(method string, route string, handler http.HandlerFunc) {
	handler = closeBody(logging(handler))
	c.router.StrictSlash(true).HandleFunc(route, handler).Methods(method)
}

// setupRoutes sets up the router for the crowdmilld API.
func (c *crowdmilld) setupRoutes() {
	c.router = mux.NewRouter()

	c.addRoute(http.MethodGet, v1.RouteVersion, c.handleVersion)
	c.addRoute(http.MethodPost, v1.RouteProjectNew, c.handleProjectNew)
	c.addRoute(http.MethodPost, v1.RouteProjectPledge, c.handleProjectPledge)
	c.addRoute(http.MethodPost, v1.RouteProjectRevoke, c.handleProjectRevoke)
	c.addRoute(http.MethodGet, v1.RouteProjectDetails, c.handleProjectDetails)
	c.addRoute(http.MethodGet, v1.RouteProjectBackers, c.handleProjectBackers)
	c.addRoute(http.MethodPost, v1.RoutePlanOffer, c.handlePlanOffer)
	c.addRoute(http.MethodPost, v1.RoutePlanReview, c.handlePlanReview)
	c.addRoute(http.MethodPost, v1.RouteMilestoneSubmit, c.handleMilestoneSubmit)
	c.addRoute(http.MethodPost, v1.RouteMilestoneReview, c.handleMilestoneReview)
	c.addRoute(http.MethodGet, v1.RouteRecipient, c.handleRecipient)
	c.addRoute(http.MethodPost, v1.RouteOutcomeVote, c.handleOutcomeVote)
	c.addRoute(http.MethodPost, v1.RouteThankYou, c.handleThankYou)
	c.addRoute(http.MethodPost, v1.RouteProfileNew, c.handleProfileNew)
	c.addRoute(http.MethodPost, v1.RouteRoleGrant, c.handleRoleGrant)
	c.addRoute(http.MethodPost, v1.RouteDeposit, c.handleDeposit)
}
