package controllers

import (
	"context"
	"net/http"
	"net/url"

	"github.com/angelmondragon/storefront/api/responses"
	"github.com/angelmondragon/storefront/api/validators"
	"github.com/angelmondragon/storefront/internal/session"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/logger"
)

const maxCartKeyLength = 1024

// CartGet returns the cart with its derived totals and checkout status.
func CartGet(sessions SessionResolver, logg *logger.Logger) http.HandlerFunc {
	return withSession(sessions, logg, func(_ context.Context, _ *session.Session) {})
}

// CartClear empties the cart.
func CartClear(sessions SessionResolver, logg *logger.Logger) http.HandlerFunc {
	return withSession(sessions, logg, func(ctx context.Context, sess *session.Session) {
		sess.Cart.Clear(ctx)
	})
}

func CartOpen(sessions SessionResolver, logg *logger.Logger) http.HandlerFunc {
	return withSession(sessions, logg, func(_ context.Context, sess *session.Session) {
		sess.Cart.Open()
	})
}

func CartClose(sessions SessionResolver, logg *logger.Logger) http.HandlerFunc {
	return withSession(sessions, logg, func(_ context.Context, sess *session.Session) {
		sess.Cart.Close()
	})
}

func CartToggle(sessions SessionResolver, logg *logger.Logger) http.HandlerFunc {
	return withSession(sessions, logg, func(_ context.Context, sess *session.Session) {
		sess.Cart.Toggle()
	})
}

// CartItemIncrease adds one unit to a line. Unknown keys leave the cart as is.
func CartItemIncrease(sessions SessionResolver, logg *logger.Logger) http.HandlerFunc {
	return withCartItem(sessions, logg, func(ctx context.Context, sess *session.Session, key string) {
		sess.Cart.IncreaseQuantity(ctx, key)
	})
}

// CartItemDecrease removes one unit; the line disappears at zero.
func CartItemDecrease(sessions SessionResolver, logg *logger.Logger) http.HandlerFunc {
	return withCartItem(sessions, logg, func(ctx context.Context, sess *session.Session, key string) {
		sess.Cart.DecreaseQuantity(ctx, key)
	})
}

func CartItemRemove(sessions SessionResolver, logg *logger.Logger) http.HandlerFunc {
	return withCartItem(sessions, logg, func(ctx context.Context, sess *session.Session, key string) {
		sess.Cart.RemoveItem(ctx, key)
	})
}

func withSession(sessions SessionResolver, logg *logger.Logger, apply func(context.Context, *session.Session)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := currentSession(r, sessions)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		apply(r.Context(), sess)
		responses.WriteSuccess(w, newCartResponse(sess.Cart.Snapshot(), sess.Checkout.State()))
	}
}

func withCartItem(sessions SessionResolver, logg *logger.Logger, apply func(context.Context, *session.Session, string)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw, err := validators.PathParam(r, "key", maxCartKeyLength)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		// keys carry "|" so clients send them escaped
		key, err := url.PathUnescape(raw)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cart item key"))
			return
		}
		withSession(sessions, logg, func(ctx context.Context, sess *session.Session) {
			apply(ctx, sess, key)
		})(w, r)
	}
}
