package catalog

import (
	"context"
	"strings"
	"time"

	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/graphql"
)

// Service is the read-only catalog surface consumed by the storefront.
type Service interface {
	FetchCategories(ctx context.Context) ([]Category, error)
	FetchProductsByCategory(ctx context.Context, category string) ([]Product, error)
	FetchProductByID(ctx context.Context, id string) (*Product, error)
}

type querier interface {
	Do(ctx context.Context, req graphql.Request, out any) error
}

type observer interface {
	ObserveCatalogCall(op string, duration time.Duration, err error)
}

// Client reads categories and products from the remote GraphQL API.
type Client struct {
	gql     querier
	metrics observer
}

// NewClient wraps a GraphQL client. metrics may be nil.
func NewClient(gql querier, metrics observer) (*Client, error) {
	if gql == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "graphql client required")
	}
	return &Client{gql: gql, metrics: metrics}, nil
}

// FetchCategories lists categories with their routing slugs.
func (c *Client) FetchCategories(ctx context.Context) ([]Category, error) {
	var resp struct {
		Categories []struct {
			Name string `json:"name"`
		} `json:"categories"`
	}
	err := c.do(ctx, graphql.Request{OperationName: "GetAllCategories", Query: queryAllCategories}, &resp)
	if err != nil {
		return nil, err
	}

	categories := make([]Category, 0, len(resp.Categories))
	for _, cat := range resp.Categories {
		if strings.TrimSpace(cat.Name) == "" {
			continue
		}
		categories = append(categories, NewCategory(cat.Name))
	}
	return categories, nil
}

// FetchProductsByCategory lists the products of a category; the "all" slug or
// an empty category returns every product.
func (c *Client) FetchProductsByCategory(ctx context.Context, category string) ([]Product, error) {
	category = strings.ToLower(strings.TrimSpace(category))

	req := graphql.Request{OperationName: "GetProductsByCategory", Query: queryProductsByCategory, Variables: map[string]any{"category": category}}
	if category == "" || category == AllCategory {
		req = graphql.Request{OperationName: "GetAllProducts", Query: queryAllProducts}
	}

	var resp struct {
		Products []WireProduct `json:"products"`
	}
	if err := c.do(ctx, req, &resp); err != nil {
		return nil, err
	}
	return NormalizeAll(resp.Products), nil
}

// FetchProductByID returns a single product or a not-found error.
func (c *Client) FetchProductByID(ctx context.Context, id string) (*Product, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}

	var resp struct {
		Product *WireProduct `json:"product"`
	}
	err := c.do(ctx, graphql.Request{OperationName: "GetProduct", Query: queryProductByID, Variables: map[string]any{"id": id}}, &resp)
	if err != nil {
		return nil, err
	}
	if resp.Product == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found").WithDetails(map[string]any{"product_id": id})
	}
	product := Normalize(*resp.Product)
	return &product, nil
}

func (c *Client) do(ctx context.Context, req graphql.Request, out any) error {
	start := time.Now()
	err := c.gql.Do(ctx, req, out)
	if c.metrics != nil {
		c.metrics.ObserveCatalogCall(req.OperationName, time.Since(start), err)
	}
	if err != nil && pkgerrors.As(err) == nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "catalog request failed")
	}
	return err
}
