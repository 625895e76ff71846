package rest

import (
	"net/http"

	"bidding-service/internal/domain/bidding"
	"bidding-service/internal/ports/inbound"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type statusRequest struct {
	Status string `json:"status"`
	Reason string `json:"reason"`
}

type inviteRequest struct {
	SupplierID uuid.UUID `json:"supplier_id"`
}

type respondRequest struct {
	Accept  bool   `json:"accept"`
	Comment string `json:"comment"`
}

type participationRequest struct {
	SupplierID *uuid.UUID       `json:"supplier_id,omitempty"`
	UnitPrice  *decimal.Decimal `json:"unit_price,omitempty"`
	Quantity   int64            `json:"quantity"`
	Comment    string           `json:"comment"`
}

type withdrawRequest struct {
	Reason string `json:"reason"`
}

type evaluationRequest struct {
	Scores  bidding.Scores `json:"scores"`
	Comment string         `json:"comment"`
}

func (api *API) createBidding(w http.ResponseWriter, r *http.Request) {
	var req inbound.CreateBiddingRequest
	if err := decode(r, &req); err != nil {
		writeError(w, api.logger, err)
		return
	}

	b, _, err := api.biddings.CreateBidding(r.Context(), req, actorFrom(r.Context()))
	if err != nil {
		writeError(w, api.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

func (api *API) listBiddings(w http.ResponseWriter, r *http.Request) {
	req := inbound.ListBiddingsRequest{
		Page:     queryInt(r, "page", 1),
		PageSize: queryInt(r, "page_size", 20),
	}
	for _, s := range r.URL.Query()["status"] {
		req.Statuses = append(req.Statuses, bidding.Status(s))
	}

	biddings, err := api.biddings.ListBiddings(r.Context(), req)
	if err != nil {
		writeError(w, api.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, biddings)
}

func (api *API) getBidding(w http.ResponseWriter, r *http.Request) {
	biddingID, ok := api.pathID(w, r, "biddingID")
	if !ok {
		return
	}

	b, err := api.biddings.GetBidding(r.Context(), biddingID)
	if err != nil {
		writeError(w, api.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (api *API) updateBidding(w http.ResponseWriter, r *http.Request) {
	biddingID, ok := api.pathID(w, r, "biddingID")
	if !ok {
		return
	}
	var req inbound.UpdateBiddingRequest
	if err := decode(r, &req); err != nil {
		writeError(w, api.logger, err)
		return
	}

	b, _, err := api.biddings.UpdateBidding(r.Context(), biddingID, req, actorFrom(r.Context()))
	if err != nil {
		writeError(w, api.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (api *API) changeBiddingStatus(w http.ResponseWriter, r *http.Request) {
	biddingID, ok := api.pathID(w, r, "biddingID")
	if !ok {
		return
	}
	var req statusRequest
	if err := decode(r, &req); err != nil {
		writeError(w, api.logger, err)
		return
	}

	b, _, err := api.biddings.ChangeBiddingStatus(r.Context(), biddingID, bidding.Status(req.Status), req.Reason, actorFrom(r.Context()))
	if err != nil {
		writeError(w, api.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (api *API) biddingHistory(w http.ResponseWriter, r *http.Request) {
	biddingID, ok := api.pathID(w, r, "biddingID")
	if !ok {
		return
	}

	history, err := api.biddings.GetBiddingHistory(r.Context(), biddingID)
	if err != nil {
		writeError(w, api.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, history)
}

func (api *API) inviteSupplier(w http.ResponseWriter, r *http.Request) {
	biddingID, ok := api.pathID(w, r, "biddingID")
	if !ok {
		return
	}
	var req inviteRequest
	if err := decode(r, &req); err != nil {
		writeError(w, api.logger, err)
		return
	}

	inv, _, err := api.invitations.InviteSupplier(r.Context(), biddingID, req.SupplierID, actorFrom(r.Context()))
	if err != nil {
		writeError(w, api.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, inv)
}

func (api *API) listInvitations(w http.ResponseWriter, r *http.Request) {
	biddingID, ok := api.pathID(w, r, "biddingID")
	if !ok {
		return
	}

	invitations, err := api.invitations.ListInvitations(r.Context(), biddingID)
	if err != nil {
		writeError(w, api.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, invitations)
}

func (api *API) respondToInvitation(w http.ResponseWriter, r *http.Request) {
	biddingID, ok := api.pathID(w, r, "biddingID")
	if !ok {
		return
	}
	supplierID, ok := api.pathID(w, r, "supplierID")
	if !ok {
		return
	}
	var req respondRequest
	if err := decode(r, &req); err != nil {
		writeError(w, api.logger, err)
		return
	}

	inv, _, err := api.invitations.RespondToInvitation(r.Context(), inbound.RespondToInvitationRequest{
		BiddingID:  biddingID,
		SupplierID: supplierID,
		Accept:     req.Accept,
		Comment:    req.Comment,
	}, actorFrom(r.Context()))
	if err != nil {
		writeError(w, api.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, inv)
}

func (api *API) submitParticipation(w http.ResponseWriter, r *http.Request) {
	biddingID, ok := api.pathID(w, r, "biddingID")
	if !ok {
		return
	}
	var req participationRequest
	if err := decode(r, &req); err != nil {
		writeError(w, api.logger, err)
		return
	}

	actor := actorFrom(r.Context())
	supplierID := actor.ID
	if req.SupplierID != nil {
		supplierID = *req.SupplierID
	}

	p, _, err := api.participations.SubmitParticipation(r.Context(), inbound.SubmitParticipationRequest{
		BiddingID:  biddingID,
		SupplierID: supplierID,
		UnitPrice:  req.UnitPrice,
		Quantity:   req.Quantity,
		Comment:    req.Comment,
	}, actor)
	if err != nil {
		writeError(w, api.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (api *API) listParticipations(w http.ResponseWriter, r *http.Request) {
	biddingID, ok := api.pathID(w, r, "biddingID")
	if !ok {
		return
	}

	participations, err := api.participations.ListParticipations(r.Context(), biddingID)
	if err != nil {
		writeError(w, api.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, participations)
}

func (api *API) confirmParticipation(w http.ResponseWriter, r *http.Request) {
	participationID, ok := api.pathID(w, r, "participationID")
	if !ok {
		return
	}

	p, _, err := api.participations.ConfirmParticipation(r.Context(), participationID, actorFrom(r.Context()))
	if err != nil {
		writeError(w, api.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (api *API) withdrawParticipation(w http.ResponseWriter, r *http.Request) {
	participationID, ok := api.pathID(w, r, "participationID")
	if !ok {
		return
	}
	var req withdrawRequest
	if err := decode(r, &req); err != nil {
		writeError(w, api.logger, err)
		return
	}

	if _, err := api.participations.WithdrawParticipation(r.Context(), participationID, req.Reason, actorFrom(r.Context())); err != nil {
		writeError(w, api.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (api *API) evaluate(w http.ResponseWriter, r *http.Request) {
	participationID, ok := api.pathID(w, r, "participationID")
	if !ok {
		return
	}
	var req evaluationRequest
	if err := decode(r, &req); err != nil {
		writeError(w, api.logger, err)
		return
	}

	e, _, err := api.awards.Evaluate(r.Context(), inbound.EvaluateRequest{
		ParticipationID: participationID,
		Scores:          req.Scores,
		Comment:         req.Comment,
	}, actorFrom(r.Context()))
	if err != nil {
		writeError(w, api.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, e)
}

func (api *API) listEvaluations(w http.ResponseWriter, r *http.Request) {
	biddingID, ok := api.pathID(w, r, "biddingID")
	if !ok {
		return
	}

	evaluations, err := api.awards.ListEvaluations(r.Context(), biddingID)
	if err != nil {
		writeError(w, api.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, evaluations)
}

func (api *API) selectWinner(w http.ResponseWriter, r *http.Request) {
	biddingID, ok := api.pathID(w, r, "biddingID")
	if !ok {
		return
	}

	e, _, err := api.awards.SelectWinner(r.Context(), biddingID, actorFrom(r.Context()))
	if err != nil {
		writeError(w, api.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}
