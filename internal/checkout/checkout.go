package checkout

import (
	"context"
	"errors"
	"sync"

	"github.com/angelmondragon/storefront/internal/cart"
	"github.com/angelmondragon/storefront/internal/orders"
	"github.com/angelmondragon/storefront/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/graphql"
)

const (
	DefaultFailureMessage = "Failed to place order. Please try again."

	outcomeSuccess = "success"
	outcomeFailed  = "failed"
)

var (
	// ErrCartEmpty is returned when an order is placed with nothing in the cart.
	ErrCartEmpty = pkgerrors.New(pkgerrors.CodeStateConflict, "cart is empty")
	// ErrClosed is returned once the owning session has been torn down.
	ErrClosed = pkgerrors.New(pkgerrors.CodeStateConflict, "checkout closed")
)

// OrderSubmitter places an order with the remote order API.
type OrderSubmitter interface {
	SubmitOrder(ctx context.Context, items []orders.OrderItemInput) (*orders.OrderResult, error)
}

// State is the observable checkout status of a cart overlay.
type State struct {
	Status       enums.CheckoutStatus `json:"status"`
	Order        *orders.OrderResult  `json:"order,omitempty"`
	ErrorMessage string               `json:"errorMessage,omitempty"`
	ClearPending bool                 `json:"clearPending"`
}

// Checkout drives order placement for one cart: Idle -> Submitting ->
// Success | Failed. After a success the cart is cleared and the overlay
// closed once the success delay elapses.
type Checkout struct {
	mu        sync.Mutex
	cart      *cart.Store
	submitter OrderSubmitter
	opts      options

	status  enums.CheckoutStatus
	order   *orders.OrderResult
	errMsg  string
	pending Handle
	closed  bool
}

func New(store *cart.Store, submitter OrderSubmitter, opts ...Option) *Checkout {
	return &Checkout{
		cart:      store,
		submitter: submitter,
		opts:      buildOptions(opts),
		status:    enums.CheckoutStatusIdle,
	}
}

// State returns the current checkout status.
func (c *Checkout) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked()
}

// PlaceOrder submits the cart. While a submission is in flight, or a success
// is waiting to clear the cart, the call is a no-op returning the current
// state. The submission is not cancelled when ctx is; only its effects are
// dropped if the checkout is closed in the meantime.
func (c *Checkout) PlaceOrder(ctx context.Context) (State, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return State{}, ErrClosed
	}
	if c.status == enums.CheckoutStatusSubmitting || c.pending != nil {
		state := c.stateLocked()
		c.mu.Unlock()
		return state, nil
	}
	items := c.cart.Items()
	if len(items) == 0 {
		state := c.stateLocked()
		c.mu.Unlock()
		return state, ErrCartEmpty
	}
	c.status = enums.CheckoutStatusSubmitting
	c.order = nil
	c.errMsg = ""
	c.mu.Unlock()

	result, err := c.submitter.SubmitOrder(context.WithoutCancel(ctx), orders.FormatForOrder(items))
	if err == nil && result == nil {
		err = pkgerrors.New(pkgerrors.CodeDependency, "order api returned no order")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return c.stateLocked(), nil
	}

	if err != nil {
		c.status = enums.CheckoutStatusFailed
		c.errMsg = failureMessage(err)
		c.opts.metrics.IncOrderSubmission(outcomeFailed)
		c.opts.logger.WarnErr(ctx, "order submission failed", err)
		return c.stateLocked(), nil
	}

	c.status = enums.CheckoutStatusSuccess
	c.order = result
	c.opts.metrics.IncOrderSubmission(outcomeSuccess)
	c.opts.logger.Info(c.opts.logger.WithField(ctx, "order_id", string(result.ID)), "order placed")

	logCtx := context.WithoutCancel(ctx)
	c.pending = c.opts.scheduler.After(c.opts.successDelay, func() {
		c.finishSuccess(logCtx)
	})
	return c.stateLocked(), nil
}

// Busy reports whether a submission is in flight or a success is still
// waiting to clear the cart.
func (c *Checkout) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status == enums.CheckoutStatusSubmitting || c.pending != nil
}

// Close cancels the pending success transition. Late timer callbacks are
// ignored.
func (c *Checkout) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	if c.pending != nil {
		c.pending.Cancel()
		c.pending = nil
	}
}

func (c *Checkout) finishSuccess(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.pending == nil {
		return
	}
	c.pending = nil

	c.cart.Clear(ctx)
	c.status = enums.CheckoutStatusIdle
	c.order = nil
	c.cart.Close()
}

func (c *Checkout) stateLocked() State {
	return State{
		Status:       c.status,
		Order:        c.order,
		ErrorMessage: c.errMsg,
		ClearPending: c.pending != nil,
	}
}

// failureMessage surfaces the order API's own message when it sent one, then
// the message of a client-actionable typed error. Dependency and transport
// failures keep the generic text.
func failureMessage(err error) string {
	var gqlErrs graphql.Errors
	if errors.As(err, &gqlErrs) && gqlErrs.Error() != "" {
		return gqlErrs.Error()
	}
	if typed := pkgerrors.As(err); typed != nil {
		switch typed.Code() {
		case pkgerrors.CodeValidation, pkgerrors.CodeStateConflict, pkgerrors.CodeNotFound:
			if m := typed.Message(); m != "" {
				return m
			}
		}
	}
	return DefaultFailureMessage
}
