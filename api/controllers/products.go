package controllers

import (
	"net/http"

	"github.com/angelmondragon/storefront/api/responses"
	"github.com/angelmondragon/storefront/api/validators"
	"github.com/angelmondragon/storefront/internal/catalog"
	"github.com/angelmondragon/storefront/internal/checkout"
	"github.com/angelmondragon/storefront/internal/session"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/logger"
)

const maxProductIDLength = 128

// ProductDetail returns the product with the shopper's current selection.
func ProductDetail(svc catalog.Service, sessions SessionResolver, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		product, _, view, err := productView(r, svc, sessions)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, productDetailResponse{Product: newProductDetail(product), Selection: view.State()})
	}
}

// ProductSelect records an attribute choice on the product page.
func ProductSelect(svc catalog.Service, sessions SessionResolver, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload selectionRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		_, _, view, err := productView(r, svc, sessions)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		state, err := view.Select(payload.AttributeID, payload.ItemID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, state)
	}
}

// ProductAddToCart adds the product with the current selection and opens the
// cart overlay.
func ProductAddToCart(svc catalog.Service, sessions SessionResolver, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		product, sess, view, err := productView(r, svc, sessions)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithProductID(ctx, product.ID)
		}

		line, err := view.AddToCart(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		item := cartItemResponse{LineItem: line, Subtotal: line.Subtotal()}
		if price, ok := line.UnitPrice(); ok {
			item.UnitPrice = &price
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, addToCartResponse{
			Item: item,
			Cart: newCartResponse(sess.Cart.Snapshot(), sess.Checkout.State()),
		})
	}
}

// productView loads the product fresh from the catalog and binds it to the
// session's page state for that product.
func productView(r *http.Request, svc catalog.Service, sessions SessionResolver) (catalog.Product, *session.Session, *checkout.ProductView, error) {
	if svc == nil {
		return catalog.Product{}, nil, nil, pkgerrors.New(pkgerrors.CodeInternal, "catalog unavailable")
	}
	productID, err := validators.PathParam(r, "productId", maxProductIDLength)
	if err != nil {
		return catalog.Product{}, nil, nil, err
	}

	sess, err := currentSession(r, sessions)
	if err != nil {
		return catalog.Product{}, nil, nil, err
	}

	product, err := svc.FetchProductByID(r.Context(), productID)
	if err != nil {
		return catalog.Product{}, nil, nil, err
	}

	view, err := sessionView(sess, *product)
	if err != nil {
		return catalog.Product{}, nil, nil, err
	}
	return *product, sess, view, nil
}

func sessionView(sess *session.Session, product catalog.Product) (*checkout.ProductView, error) {
	view, err := sess.View(product)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStateConflict, err, "session closed")
	}
	return view, nil
}
