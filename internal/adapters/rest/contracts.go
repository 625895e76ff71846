package rest

import (
	"net/http"

	"bidding-service/internal/domain/contract"
	"bidding-service/internal/ports/inbound"
)

type signRequest struct {
	Role      contract.Role `json:"role"`
	Signature string        `json:"signature"`
}

type decisionRequest struct {
	Approve bool   `json:"approve"`
	Comment string `json:"comment"`
}

func (api *API) draftContract(w http.ResponseWriter, r *http.Request) {
	var req inbound.DraftContractRequest
	if err := decode(r, &req); err != nil {
		writeError(w, api.logger, err)
		return
	}

	c, _, err := api.contracts.DraftContract(r.Context(), req, actorFrom(r.Context()))
	if err != nil {
		writeError(w, api.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (api *API) getContract(w http.ResponseWriter, r *http.Request) {
	contractID, ok := api.pathID(w, r, "contractID")
	if !ok {
		return
	}

	c, err := api.contracts.GetContract(r.Context(), contractID)
	if err != nil {
		writeError(w, api.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (api *API) changeContractStatus(w http.ResponseWriter, r *http.Request) {
	contractID, ok := api.pathID(w, r, "contractID")
	if !ok {
		return
	}
	var req statusRequest
	if err := decode(r, &req); err != nil {
		writeError(w, api.logger, err)
		return
	}

	c, _, err := api.contracts.ChangeContractStatus(r.Context(), contractID, contract.Status(req.Status), req.Reason, actorFrom(r.Context()))
	if err != nil {
		writeError(w, api.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (api *API) signContract(w http.ResponseWriter, r *http.Request) {
	contractID, ok := api.pathID(w, r, "contractID")
	if !ok {
		return
	}
	var req signRequest
	if err := decode(r, &req); err != nil {
		writeError(w, api.logger, err)
		return
	}

	c, _, err := api.contracts.SignContract(r.Context(), contractID, req.Role, req.Signature, actorFrom(r.Context()))
	if err != nil {
		writeError(w, api.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (api *API) contractHistory(w http.ResponseWriter, r *http.Request) {
	contractID, ok := api.pathID(w, r, "contractID")
	if !ok {
		return
	}

	history, err := api.contracts.GetContractHistory(r.Context(), contractID)
	if err != nil {
		writeError(w, api.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, history)
}

func (api *API) issueOrder(w http.ResponseWriter, r *http.Request) {
	contractID, ok := api.pathID(w, r, "contractID")
	if !ok {
		return
	}

	o, _, err := api.orders.IssueOrder(r.Context(), contractID, actorFrom(r.Context()))
	if err != nil {
		writeError(w, api.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, o)
}

func (api *API) getOrder(w http.ResponseWriter, r *http.Request) {
	orderID, ok := api.pathID(w, r, "orderID")
	if !ok {
		return
	}

	o, err := api.orders.GetOrder(r.Context(), orderID)
	if err != nil {
		writeError(w, api.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (api *API) decideOrder(w http.ResponseWriter, r *http.Request) {
	orderID, ok := api.pathID(w, r, "orderID")
	if !ok {
		return
	}
	var req decisionRequest
	if err := decode(r, &req); err != nil {
		writeError(w, api.logger, err)
		return
	}

	o, _, err := api.orders.ApproveOrder(r.Context(), orderID, req.Approve, req.Comment, actorFrom(r.Context()))
	if err != nil {
		writeError(w, api.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}
