package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"clubhouse/internal/domain/person"
	"clubhouse/internal/domain/schedule"
)

// contextKey is an unexported type for context keys in this package.
type contextKey string

const actorContextKey contextKey = "actor"

// ActorHeader names the caller. Authentication happens upstream; this service only
// checks the named person's directory role.
const ActorHeader = "X-Actor-ID"

// ActorLookup resolves a caller ID to its directory entry.
type ActorLookup func(ctx context.Context, id string) (person.Person, error)

// RequireRole returns middleware that blocks callers without one of the specified roles.
// POST: 401 when the header is missing or names nobody, 403 for any other role;
// admitted requests carry the actor in their context
func RequireRole(lookup ActorLookup, roles ...person.Role) func(http.Handler) http.Handler {
	roleSet := make(map[person.Role]bool, len(roles))
	for _, r := range roles {
		roleSet[r] = true
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := strings.TrimSpace(r.Header.Get(ActorHeader))
			if id == "" {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			actor, err := lookup(r.Context(), id)
			switch {
			case errors.Is(err, schedule.ErrNotFound):
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			case err != nil:
				http.Error(w, "internal server error", http.StatusInternalServerError)
				return
			}
			if !roleSet[actor.Role] {
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}
			ctx := context.WithValue(r.Context(), actorContextKey, actor)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ActorFromContext extracts the admitted actor from the request context.
func ActorFromContext(ctx context.Context) (person.Person, bool) {
	actor, ok := ctx.Value(actorContextKey).(person.Person)
	return actor, ok
}
