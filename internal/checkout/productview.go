package checkout

import (
	"context"
	"sync"

	"github.com/angelmondragon/storefront/internal/cart"
	"github.com/angelmondragon/storefront/internal/catalog"
	"github.com/angelmondragon/storefront/internal/selection"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
)

const (
	MsgIncompleteSelection = "Please select all required attributes"
	MsgOutOfStock          = "Product is out of stock"
)

// ViewState is what a product page renders from.
type ViewState struct {
	ProductID    string                     `json:"productId"`
	Selected     catalog.SelectedAttributes `json:"selectedAttributes"`
	Missing      []string                   `json:"missingAttributes"`
	Complete     bool                       `json:"complete"`
	CanAddToCart bool                       `json:"canAddToCart"`
	Added        bool                       `json:"added"`
}

// ProductView holds the attribute selection of one product page and gates
// add-to-cart on it.
type ProductView struct {
	mu      sync.Mutex
	product catalog.Product
	state   selection.State
	cart    *cart.Store
	opts    options

	added    bool
	flashGen uint64
	pending  Handle
	closed   bool
}

func NewProductView(product catalog.Product, store *cart.Store, opts ...Option) *ProductView {
	return &ProductView{
		product: product,
		state:   selection.Initial(),
		cart:    store,
		opts:    buildOptions(opts),
	}
}

// Refresh swaps in a newer catalog copy of the product; choices are kept.
func (v *ProductView) Refresh(product catalog.Product) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.product = product
}

// Select records a choice for one attribute.
func (v *ProductView) Select(attributeID, itemID string) (ViewState, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	action := selection.AttributeSelected{AttributeID: attributeID, ItemID: itemID}
	if err := selection.Validate(v.product, action); err != nil {
		return v.viewLocked(), err
	}
	v.state = selection.Reduce(v.state, action)
	return v.viewLocked(), nil
}

func (v *ProductView) CanAddToCart() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.canAddLocked()
}

// AddToCart adds the product with the current selection, flashes the added
// flag and opens the cart overlay. Nothing is mutated when the selection is
// incomplete or the product is out of stock.
func (v *ProductView) AddToCart(ctx context.Context) (cart.LineItem, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.closed {
		return cart.LineItem{}, ErrClosed
	}
	if !selection.IsComplete(v.product, v.state) {
		return cart.LineItem{}, pkgerrors.New(pkgerrors.CodeValidation, MsgIncompleteSelection).WithDetails(map[string]any{
			"missingAttributes": selection.Missing(v.product, v.state),
		})
	}
	if !v.product.InStock {
		return cart.LineItem{}, pkgerrors.New(pkgerrors.CodeValidation, MsgOutOfStock).WithDetails(map[string]any{
			"productId": v.product.ID,
		})
	}

	line := v.cart.AddItem(ctx, v.product, v.state.Selected())

	v.added = true
	if v.pending != nil {
		v.pending.Cancel()
	}
	v.flashGen++
	gen := v.flashGen
	v.pending = v.opts.scheduler.After(v.opts.flashDelay, func() {
		v.resetAdded(gen)
	})

	v.cart.Open()
	return line, nil
}

// State returns the current view.
func (v *ProductView) State() ViewState {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.viewLocked()
}

// Close cancels the pending flash reset.
func (v *ProductView) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.closed = true
	if v.pending != nil {
		v.pending.Cancel()
		v.pending = nil
	}
}

func (v *ProductView) resetAdded(gen uint64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	// a newer add owns the flag now
	if v.closed || gen != v.flashGen {
		return
	}
	v.pending = nil
	v.added = false
}

func (v *ProductView) canAddLocked() bool {
	return v.product.InStock && selection.IsComplete(v.product, v.state)
}

func (v *ProductView) viewLocked() ViewState {
	complete := selection.IsComplete(v.product, v.state)
	return ViewState{
		ProductID:    v.product.ID,
		Selected:     v.state.Selected(),
		Missing:      selection.Missing(v.product, v.state),
		Complete:     complete,
		CanAddToCart: complete && v.product.InStock,
		Added:        v.added,
	}
}
