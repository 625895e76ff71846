package rest

import (
	"net/http"
	"time"

	"bidding-service/internal/domain/shared"

	"github.com/google/uuid"
)

type memberRequest struct {
	Name         string           `json:"name"`
	Kind         shared.ActorKind `json:"kind"`
	Rank         shared.Rank      `json:"rank"`
	DepartmentID uuid.UUID        `json:"department_id"`
	IsAdmin      bool             `json:"is_admin"`
}

func (req memberRequest) validate() error {
	if req.Name == "" {
		return shared.Validation("name is required")
	}
	switch req.Kind {
	case shared.ActorInternal:
		if req.Rank < shared.RankStaff || req.Rank > shared.RankDirector {
			return shared.Validation("rank must be between %d and %d", shared.RankStaff, shared.RankDirector)
		}
	case shared.ActorSupplier:
		if req.Rank != shared.RankNone || req.IsAdmin {
			return shared.Validation("suppliers carry no rank")
		}
	default:
		return shared.Validation("kind must be %s or %s", shared.ActorInternal, shared.ActorSupplier)
	}
	return nil
}

// createMember registers staff or supplier accounts; administrators only
func (api *API) createMember(w http.ResponseWriter, r *http.Request) {
	caller := memberFrom(r.Context())
	if caller == nil || !caller.IsAdmin {
		writeError(w, api.logger, shared.Permission("only administrators may register members"))
		return
	}

	var req memberRequest
	if err := decode(r, &req); err != nil {
		writeError(w, api.logger, err)
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, api.logger, err)
		return
	}

	m := &shared.Member{
		ID:           uuid.New(),
		Name:         req.Name,
		Kind:         req.Kind,
		Rank:         req.Rank,
		DepartmentID: req.DepartmentID,
		IsAdmin:      req.IsAdmin,
		CreatedAt:    time.Now().UTC(),
	}
	if err := api.members.Create(r.Context(), m); err != nil {
		writeError(w, api.logger, err)
		return
	}

	api.logger.Info().
		Str("member_id", m.ID.String()).
		Str("kind", string(m.Kind)).
		Str("rank", m.Rank.String()).
		Str("created_by", caller.ID.String()).
		Msg("Member registered")
	writeJSON(w, http.StatusCreated, m)
}

func (api *API) me(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, memberFrom(r.Context()))
}
