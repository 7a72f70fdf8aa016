package orders

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront/internal/cart"
	"github.com/angelmondragon/storefront/internal/catalog"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/graphql"
)

func TestFormatForOrderTwoItems(t *testing.T) {
	store := cart.NewStore(nil, "")
	ctx := context.Background()
	shoes := catalog.Product{ID: "huarache-x-stussy-le", Prices: []catalog.Price{{Amount: decimal.NewFromInt(144)}}}
	ps5 := catalog.Product{ID: "ps-5", Prices: []catalog.Price{{Amount: decimal.NewFromInt(844)}}}

	store.AddItem(ctx, shoes, catalog.SelectedAttributes{"Size": "40", "Color": "Green"})
	store.AddItem(ctx, shoes, catalog.SelectedAttributes{"Color": "Green", "Size": "40"})
	store.AddItem(ctx, ps5, nil)

	out := FormatForOrder(store.Items())
	if len(out) != 2 {
		t.Fatalf("expected 2 order items, got %d", len(out))
	}
	if out[0].ProductID != "huarache-x-stussy-le" || out[0].Quantity != 2 {
		t.Fatalf("unexpected first item %+v", out[0])
	}
	want := []SelectedAttribute{{AttributeID: "Color", AttributeItemID: "Green"}, {AttributeID: "Size", AttributeItemID: "40"}}
	if len(out[0].SelectedAttributes) != 2 || out[0].SelectedAttributes[0] != want[0] || out[0].SelectedAttributes[1] != want[1] {
		t.Fatalf("attributes must be sorted by id, got %+v", out[0].SelectedAttributes)
	}
	if out[1].ProductID != "ps-5" || out[1].Quantity != 1 {
		t.Fatalf("unexpected second item %+v", out[1])
	}
}

func TestFormatForOrderEmptySelectionSerializesList(t *testing.T) {
	out := FormatForOrder([]cart.LineItem{{Key: "a_", Product: catalog.Product{ID: "a"}, Quantity: 1, AddedAt: time.Now()}})

	payload, err := json.Marshal(out)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(payload) != `[{"productId":"a","quantity":1,"selectedAttributes":[]}]` {
		t.Fatalf("unexpected payload %s", payload)
	}
	if got := FormatForOrder(nil); got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", got)
	}
}

func TestSubmitOrder(t *testing.T) {
	gql := &stubQuerier{data: `{"createOrder":{"id":42,"totalAmount":288.5,"currency":"USD","status":"pending","itemCount":2}}`}
	client, err := NewClient(gql)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	items := []OrderItemInput{{ProductID: "a", Quantity: 2, SelectedAttributes: []SelectedAttribute{}}}
	result, err := client.SubmitOrder(context.Background(), items)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result.ID != "42" || result.ItemCount != 2 || !result.TotalAmount.Equal(decimal.RequireFromString("288.5")) {
		t.Fatalf("unexpected result %+v", result)
	}
	if gql.last.OperationName != "CreateOrder" {
		t.Fatalf("unexpected operation %q", gql.last.OperationName)
	}
	sent, ok := gql.last.Variables["items"].([]OrderItemInput)
	if !ok || len(sent) != 1 {
		t.Fatalf("unexpected variables %+v", gql.last.Variables)
	}
}

func TestOrderIDAcceptsStrings(t *testing.T) {
	var result OrderResult
	if err := json.Unmarshal([]byte(`{"id":"ord_7"}`), &result); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if result.ID != "ord_7" {
		t.Fatalf("unexpected id %q", result.ID)
	}
}

func TestSubmitOrderFailures(t *testing.T) {
	items := []OrderItemInput{{ProductID: "a", Quantity: 1, SelectedAttributes: []SelectedAttribute{}}}

	cases := []struct {
		name string
		gql  *stubQuerier
		code pkgerrors.Code
	}{
		{name: "null result", gql: &stubQuerier{data: `{"createOrder":null}`}, code: pkgerrors.CodeDependency},
		{name: "transport error", gql: &stubQuerier{err: errors.New("connection reset")}, code: pkgerrors.CodeDependency},
		{name: "typed error kept", gql: &stubQuerier{err: pkgerrors.New(pkgerrors.CodeValidation, "bad input")}, code: pkgerrors.CodeValidation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client, _ := NewClient(tc.gql)
			_, err := client.SubmitOrder(context.Background(), items)
			if !pkgerrors.IsCode(err, tc.code) {
				t.Fatalf("expected %s, got %v", tc.code, err)
			}
		})
	}

	client, _ := NewClient(&stubQuerier{})
	if _, err := client.SubmitOrder(context.Background(), nil); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for empty order, got %v", err)
	}
}

type stubQuerier struct {
	data string
	err  error
	last graphql.Request
}

func (s *stubQuerier) Do(_ context.Context, req graphql.Request, out any) error {
	s.last = req
	if s.err != nil {
		return s.err
	}
	return json.Unmarshal([]byte(s.data), out)
}
