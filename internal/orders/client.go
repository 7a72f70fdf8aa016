package orders

import (
	"bytes"
	"context"
	"encoding/json"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/graphql"
)

const mutationCreateOrder = `mutation CreateOrder($items: [OrderItemInput]!) {
  createOrder(items: $items) {
    id
    totalAmount
    currency
    status
    itemCount
  }
}`

// OrderResult is the order confirmation returned by the order API.
type OrderResult struct {
	ID          OrderID         `json:"id"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	Currency    string          `json:"currency"`
	Status      string          `json:"status"`
	ItemCount   int             `json:"itemCount"`
}

// OrderID accepts both string and numeric ids from the order API.
type OrderID string

func (id *OrderID) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*id = OrderID(s)
		return nil
	}
	if bytes.Equal(trimmed, []byte("null")) {
		*id = ""
		return nil
	}
	*id = OrderID(trimmed)
	return nil
}

type querier interface {
	Do(ctx context.Context, req graphql.Request, out any) error
}

// Client submits orders through the createOrder mutation.
type Client struct {
	gql querier
}

func NewClient(gql querier) (*Client, error) {
	if gql == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "graphql client required")
	}
	return &Client{gql: gql}, nil
}

// SubmitOrder places the order. A response without data is an error.
func (c *Client) SubmitOrder(ctx context.Context, items []OrderItemInput) (*OrderResult, error) {
	if len(items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order has no items")
	}

	var resp struct {
		CreateOrder *OrderResult `json:"createOrder"`
	}
	err := c.gql.Do(ctx, graphql.Request{
		OperationName: "CreateOrder",
		Query:         mutationCreateOrder,
		Variables:     map[string]any{"items": items},
	}, &resp)
	if err != nil {
		if pkgerrors.As(err) == nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "submit order")
		}
		return nil, err
	}
	if resp.CreateOrder == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "order api returned no order")
	}
	return resp.CreateOrder, nil
}
