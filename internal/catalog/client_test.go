package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/graphql"
)

func TestFetchCategoriesBuildsSlugs(t *testing.T) {
	gql := &stubQuerier{responses: map[string]string{
		"GetAllCategories": `{"categories":[{"name":"all"},{"name":"Clothes"},{"name":""}]}`,
	}}
	client := newTestCatalogClient(t, gql, nil)

	categories, err := client.FetchCategories(context.Background())
	if err != nil {
		t.Fatalf("fetch categories: %v", err)
	}
	if len(categories) != 2 {
		t.Fatalf("expected blank names to be skipped, got %+v", categories)
	}
	if categories[1].Slug != "clothes" {
		t.Fatalf("unexpected slug %q", categories[1].Slug)
	}
}

func TestFetchProductsByCategoryRoutesAll(t *testing.T) {
	gql := &stubQuerier{responses: map[string]string{
		"GetAllProducts":        `{"products":[{"id":"a"},{"id":"b"}]}`,
		"GetProductsByCategory": `{"products":[{"id":"c"}]}`,
	}}
	client := newTestCatalogClient(t, gql, nil)

	all, err := client.FetchProductsByCategory(context.Background(), "All")
	if err != nil {
		t.Fatalf("fetch all: %v", err)
	}
	if len(all) != 2 || gql.last.OperationName != "GetAllProducts" {
		t.Fatalf("expected all products query, got %s with %d products", gql.last.OperationName, len(all))
	}

	tech, err := client.FetchProductsByCategory(context.Background(), "Tech")
	if err != nil {
		t.Fatalf("fetch tech: %v", err)
	}
	if len(tech) != 1 || gql.last.Variables["category"] != "tech" {
		t.Fatalf("unexpected category request %+v", gql.last)
	}
}

func TestFetchProductByIDNotFound(t *testing.T) {
	gql := &stubQuerier{responses: map[string]string{"GetProduct": `{"product":null}`}}
	client := newTestCatalogClient(t, gql, nil)

	_, err := client.FetchProductByID(context.Background(), "missing")
	if !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	if _, err := client.FetchProductByID(context.Background(), " "); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for blank id, got %v", err)
	}
}

func TestFetchProductByIDNormalizes(t *testing.T) {
	gql := &stubQuerier{responses: map[string]string{
		"GetProduct": `{"product":{"id":"ps5","inStock":true,"prices":[{"amount":10,"currency":"EUR","currencySymbol":"€"}]}}`,
	}}
	client := newTestCatalogClient(t, gql, nil)

	product, err := client.FetchProductByID(context.Background(), "ps5")
	if err != nil {
		t.Fatalf("fetch product: %v", err)
	}
	if product.Prices[0].CurrencyLabel != "EUR" || gql.last.Variables["id"] != "ps5" {
		t.Fatalf("unexpected product %+v", product)
	}
}

func TestClientWrapsTransportErrorsAndRecordsMetrics(t *testing.T) {
	gql := &stubQuerier{err: errors.New("connection refused")}
	obs := &stubObserver{}
	client := newTestCatalogClient(t, gql, obs)

	_, err := client.FetchCategories(context.Background())
	if !pkgerrors.IsCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency error, got %v", err)
	}
	if len(obs.calls) != 1 || obs.calls[0] != "GetAllCategories" || obs.errs != 1 {
		t.Fatalf("unexpected observations %+v", obs)
	}
}

func TestNewClientRequiresQuerier(t *testing.T) {
	if _, err := NewClient(nil, nil); err == nil {
		t.Fatal("expected error")
	}
}

func newTestCatalogClient(t *testing.T, gql querier, obs observer) *Client {
	t.Helper()
	client, err := NewClient(gql, obs)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

type stubQuerier struct {
	responses map[string]string
	err       error
	last      graphql.Request
	calls     int
}

func (s *stubQuerier) Do(_ context.Context, req graphql.Request, out any) error {
	s.calls++
	s.last = req
	if s.err != nil {
		return s.err
	}
	data, ok := s.responses[req.OperationName]
	if !ok {
		return pkgerrors.New(pkgerrors.CodeDependency, "unexpected operation "+req.OperationName)
	}
	return json.Unmarshal([]byte(data), out)
}

type stubObserver struct {
	calls []string
	errs  int
}

func (s *stubObserver) ObserveCatalogCall(op string, _ time.Duration, err error) {
	s.calls = append(s.calls, op)
	if err != nil {
		s.errs++
	}
}
