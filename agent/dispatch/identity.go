package dispatch

import (
	"context"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
)

const (
	HeaderUserID = "X-User-Id"

	bearerPrefix = "bearer "
)

// Identity is the caller principal as presented. It is never verified.
type Identity struct {
	UserID      string
	BearerToken string
}

// Principal prefers the explicit user id over the bearer token.
func (i Identity) Principal() string {
	if i.UserID != "" {
		return i.UserID
	}
	return i.BearerToken
}

func (i Identity) empty() bool {
	return i.UserID == "" && i.BearerToken == ""
}

type identityKey struct{}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}

func identityFromRequest(r *http.Request) Identity {
	var id Identity
	id.UserID = strings.TrimSpace(r.Header.Get(HeaderUserID))
	auth := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(auth) > len(bearerPrefix) && strings.EqualFold(auth[:len(bearerPrefix)], bearerPrefix) {
		id.BearerToken = strings.TrimSpace(auth[len(bearerPrefix):])
	}
	return id
}

// identityMiddleware places the presented identity and a request logger in the context.
func identityMiddleware(agent string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := identityFromRequest(r)
		logCtx := log.Logger.With().Str("agent", agent)
		if !id.empty() {
			logCtx = logCtx.Str("principal", mask(id))
		}
		ctx := logCtx.Logger().WithContext(r.Context())
		if !id.empty() {
			ctx = WithIdentity(ctx, id)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// mask keeps bearer tokens out of the logs beyond a short prefix.
func mask(id Identity) string {
	if id.UserID != "" {
		return id.UserID
	}
	if len(id.BearerToken) <= 4 {
		return "bearer:****"
	}
	return "bearer:" + id.BearerToken[:4] + "****"
}
