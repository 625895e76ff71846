package rest

import (
	"net/http"
	"strconv"
	"time"

	"bidding-service/internal/ports/inbound"
	"bidding-service/internal/ports/outbound"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// API exposes the lifecycle operations over HTTP
type API struct {
	biddings       inbound.BiddingService
	invitations    inbound.InvitationService
	participations inbound.ParticipationService
	awards         inbound.AwardService
	contracts      inbound.ContractService
	orders         inbound.OrderService
	members        outbound.MemberRepository
	logger         zerolog.Logger
}

type APIParams struct {
	BiddingService       inbound.BiddingService
	InvitationService    inbound.InvitationService
	ParticipationService inbound.ParticipationService
	AwardService         inbound.AwardService
	ContractService      inbound.ContractService
	OrderService         inbound.OrderService
	MemberRepo           outbound.MemberRepository
	Logger               zerolog.Logger
}

func NewAPI(params APIParams) *API {
	return &API{
		biddings:       params.BiddingService,
		invitations:    params.InvitationService,
		participations: params.ParticipationService,
		awards:         params.AwardService,
		contracts:      params.ContractService,
		orders:         params.OrderService,
		members:        params.MemberRepo,
		logger:         params.Logger.With().Str("component", "rest_api").Logger(),
	}
}

// Routes builds the router. Every route requires an authenticated member.
func (api *API) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer)
	r.Use(middleware.Timeout(15 * time.Second))
	r.Use(authenticate(api.members, api.logger))

	r.Route("/members", func(r chi.Router) {
		r.Post("/", api.createMember)
		r.Get("/me", api.me)
	})

	r.Route("/biddings", func(r chi.Router) {
		r.Post("/", api.createBidding)
		r.Get("/", api.listBiddings)
		r.Route("/{biddingID}", func(r chi.Router) {
			r.Get("/", api.getBidding)
			r.Patch("/", api.updateBidding)
			r.Post("/status", api.changeBiddingStatus)
			r.Get("/history", api.biddingHistory)
			r.Post("/invitations", api.inviteSupplier)
			r.Get("/invitations", api.listInvitations)
			r.Post("/invitations/{supplierID}/response", api.respondToInvitation)
			r.Post("/participations", api.submitParticipation)
			r.Get("/participations", api.listParticipations)
			r.Get("/evaluations", api.listEvaluations)
			r.Post("/winner", api.selectWinner)
		})
	})

	r.Route("/participations/{participationID}", func(r chi.Router) {
		r.Post("/confirm", api.confirmParticipation)
		r.Post("/withdraw", api.withdrawParticipation)
		r.Post("/evaluations", api.evaluate)
	})

	r.Route("/contracts", func(r chi.Router) {
		r.Post("/", api.draftContract)
		r.Route("/{contractID}", func(r chi.Router) {
			r.Get("/", api.getContract)
			r.Post("/status", api.changeContractStatus)
			r.Post("/signatures", api.signContract)
			r.Get("/history", api.contractHistory)
			r.Post("/order", api.issueOrder)
		})
	})

	r.Route("/orders/{orderID}", func(r chi.Router) {
		r.Get("/", api.getOrder)
		r.Post("/decision", api.decideOrder)
	})

	return r
}

func (api *API) pathID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid " + name, Kind: "validation"})
		return uuid.Nil, false
	}
	return id, true
}

func queryInt(r *http.Request, name string, fallback int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil {
		return fallback
	}
	return v
}
