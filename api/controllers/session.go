package controllers

import (
	"context"
	"net/http"

	"github.com/angelmondragon/storefront/api/middleware"
	"github.com/angelmondragon/storefront/internal/session"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
)

// SessionResolver hands out the per-shopper state behind X-Session-Id.
type SessionResolver interface {
	Get(ctx context.Context, id string) (*session.Session, error)
}

func currentSession(r *http.Request, sessions SessionResolver) (*session.Session, error) {
	if sessions == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "session manager unavailable")
	}
	id := middleware.SessionIDFromContext(r.Context())
	if id == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session id missing").WithDetails(map[string]any{
			"header": session.Header,
		})
	}
	return sessions.Get(r.Context(), id)
}
