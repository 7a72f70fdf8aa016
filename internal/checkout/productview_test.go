package checkout

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront/internal/cart"
	"github.com/angelmondragon/storefront/internal/catalog"
	"github.com/angelmondragon/storefront/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
)

func shirt(inStock bool) catalog.Product {
	return catalog.Product{
		ID:      "shirt",
		Name:    "Shirt",
		InStock: inStock,
		Prices:  []catalog.Price{{Amount: decimal.RequireFromString("19.99"), CurrencyLabel: "USD", CurrencySymbol: "$"}},
		Attributes: []catalog.Attribute{
			{ID: "Size", Name: "Size", Type: enums.AttributeTypeText, Items: []catalog.AttributeItem{
				{ID: "S", Value: "S", DisplayValue: "Small"},
				{ID: "M", Value: "M", DisplayValue: "Medium"},
			}},
			{ID: "Color", Name: "Color", Type: enums.AttributeTypeSwatch, Items: []catalog.AttributeItem{
				{ID: "Black", Value: "#000000", DisplayValue: "Black"},
			}},
		},
	}
}

func TestAddToCartRequiresCompleteSelection(t *testing.T) {
	store := cart.NewStore(nil, "")
	view := NewProductView(shirt(true), store, WithScheduler(&manualScheduler{}))

	if _, err := view.Select("Size", "M"); err != nil {
		t.Fatalf("select: %v", err)
	}
	if view.CanAddToCart() {
		t.Fatal("color is still missing")
	}

	_, err := view.AddToCart(context.Background())
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Message() != MsgIncompleteSelection {
		t.Fatalf("unexpected error %v", err)
	}
	if !store.IsEmpty() || store.IsOpen() {
		t.Fatal("incomplete selection must not touch the cart")
	}
	if got := view.State().Missing; len(got) != 1 || got[0] != "Color" {
		t.Fatalf("expected Color missing, got %v", got)
	}
}

func TestAddToCartRejectsOutOfStock(t *testing.T) {
	store := cart.NewStore(nil, "")
	view := NewProductView(shirt(false), store, WithScheduler(&manualScheduler{}))
	_, _ = view.Select("Size", "S")
	_, _ = view.Select("Color", "Black")

	state := view.State()
	if !state.Complete || state.CanAddToCart {
		t.Fatalf("complete but out of stock, got %+v", state)
	}

	_, err := view.AddToCart(context.Background())
	if typed := pkgerrors.As(err); typed == nil || typed.Message() != MsgOutOfStock {
		t.Fatalf("expected out of stock error, got %v", err)
	}
	if !store.IsEmpty() {
		t.Fatal("out of stock product must not be added")
	}
}

func TestSelectRejectsUnknownChoice(t *testing.T) {
	view := NewProductView(shirt(true), cart.NewStore(nil, ""), WithScheduler(&manualScheduler{}))
	_, _ = view.Select("Size", "S")

	state, err := view.Select("Size", "XXL")
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if state.Selected["Size"] != "S" {
		t.Fatalf("rejected choice must keep the previous one, got %v", state.Selected)
	}
}

func TestAddToCartOpensCartAndFlashes(t *testing.T) {
	store := cart.NewStore(nil, "")
	sched := &manualScheduler{}
	view := NewProductView(shirt(true), store, WithScheduler(sched), WithFlashDelay(DefaultFlashDelay))
	_, _ = view.Select("Size", "S")
	_, _ = view.Select("Color", "Black")

	line, err := view.AddToCart(context.Background())
	if err != nil {
		t.Fatalf("add to cart: %v", err)
	}
	if line.Key != "shirt_Color:Black|Size:S" || line.Quantity != 1 {
		t.Fatalf("unexpected line %+v", line)
	}
	if !store.IsOpen() || store.Count() != 1 {
		t.Fatal("successful add must open the cart overlay")
	}
	if !view.State().Added {
		t.Fatal("added flag should be set")
	}

	sched.fireAll()
	if view.State().Added {
		t.Fatal("added flag should reset after the flash delay")
	}
}

func TestAddToCartRepeatedKeepsNewestFlash(t *testing.T) {
	store := cart.NewStore(nil, "")
	sched := &manualScheduler{}
	view := NewProductView(shirt(true), store, WithScheduler(sched))
	_, _ = view.Select("Size", "S")
	_, _ = view.Select("Color", "Black")

	if _, err := view.AddToCart(context.Background()); err != nil {
		t.Fatalf("first add: %v", err)
	}
	if _, err := view.AddToCart(context.Background()); err != nil {
		t.Fatalf("second add: %v", err)
	}
	if store.Count() != 2 || len(store.Items()) != 1 {
		t.Fatalf("expected one line with quantity 2, got %d lines count %d", len(store.Items()), store.Count())
	}
	if !sched.tasks[0].cancelled {
		t.Fatal("older flash reset should be cancelled")
	}

	// a stale callback that slipped past Cancel must not clear the newer flash
	sched.tasks[0].fn()
	if !view.State().Added {
		t.Fatal("stale reset cleared the newest flash")
	}

	sched.fireAll()
	if view.State().Added {
		t.Fatal("newest reset should clear the flag")
	}
}

func TestProductViewClose(t *testing.T) {
	sched := &manualScheduler{}
	view := NewProductView(shirt(true), cart.NewStore(nil, ""), WithScheduler(sched))
	_, _ = view.Select("Size", "S")
	_, _ = view.Select("Color", "Black")
	if _, err := view.AddToCart(context.Background()); err != nil {
		t.Fatalf("add: %v", err)
	}

	view.Close()
	if !sched.tasks[0].cancelled {
		t.Fatal("close should cancel the flash reset")
	}
	if _, err := view.AddToCart(context.Background()); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}

func TestAddToCartWithoutAttributes(t *testing.T) {
	product := catalog.Product{ID: "card", InStock: true}
	store := cart.NewStore(nil, "")
	view := NewProductView(product, store, WithScheduler(&manualScheduler{}))

	if !view.CanAddToCart() {
		t.Fatal("a product without attributes is always complete")
	}
	line, err := view.AddToCart(context.Background())
	if err != nil || line.Key != "card_" {
		t.Fatalf("unexpected result %+v err=%v", line, err)
	}
}

func TestAddToCartZeroFlashDelayConcurrent(t *testing.T) {
	store := cart.NewStore(nil, "")
	view := NewProductView(shirt(true), store, WithScheduler(TimerScheduler{}), WithFlashDelay(0))
	_, _ = view.Select("Size", "S")
	_, _ = view.Select("Color", "Black")

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 25; i++ {
				if _, err := view.AddToCart(context.Background()); err != nil {
					t.Errorf("add: %v", err)
					return
				}
			}
		}()
	}
	wg.Wait()

	if store.Count() != 200 {
		t.Fatalf("expected 200 units, got %d", store.Count())
	}

	deadline := time.Now().Add(2 * time.Second)
	for view.State().Added {
		if time.Now().After(deadline) {
			t.Fatal("the newest flash reset never ran")
		}
		time.Sleep(time.Millisecond)
	}
}
