package rest

import (
	"context"
	"net/http"

	"bidding-service/internal/domain/shared"
	"bidding-service/internal/ports/outbound"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const memberHeader = "X-Member-ID"

type memberKey struct{}

// authenticate resolves the member named by the X-Member-ID header and
// stores it in the request context
func authenticate(members outbound.MemberRepository, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := r.Header.Get(memberHeader)
			if raw == "" {
				writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: memberHeader + " header is required"})
				return
			}

			memberID, err := uuid.Parse(raw)
			if err != nil {
				writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "invalid " + memberHeader})
				return
			}

			member, err := members.GetByID(r.Context(), memberID)
			if err != nil {
				if shared.IsKind(err, shared.KindNotFound) {
					writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "unknown member"})
					return
				}
				writeError(w, logger, err)
				return
			}

			ctx := context.WithValue(r.Context(), memberKey{}, member)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func memberFrom(ctx context.Context) *shared.Member {
	member, _ := ctx.Value(memberKey{}).(*shared.Member)
	return member
}

func actorFrom(ctx context.Context) shared.Actor {
	member := memberFrom(ctx)
	if member == nil {
		return shared.Actor{}
	}
	return shared.ActorFromMember(member)
}
