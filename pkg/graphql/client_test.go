package graphql

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"

	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
)

func TestClientDoDecodesData(t *testing.T) {
	var captured Request
	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		if req.Method != http.MethodPost {
			t.Fatalf("expected POST, got %s", req.Method)
		}
		if req.Header.Get("Content-Type") != "application/json" {
			t.Fatalf("missing content type header")
		}
		body, err := io.ReadAll(req.Body)
		if err != nil {
			t.Fatalf("read body: %v", err)
		}
		if err := json.Unmarshal(body, &captured); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		return jsonResponse(http.StatusOK, `{"data":{"categories":[{"name":"tech"}]}}`), nil
	})

	client := newTestClient(t, rt)

	var out struct {
		Categories []struct {
			Name string `json:"name"`
		} `json:"categories"`
	}
	err := client.Do(context.Background(), Request{
		OperationName: "GetAllCategories",
		Query:         "query GetAllCategories { categories { name } }",
		Variables:     map[string]any{"x": 1},
	}, &out)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	if captured.OperationName != "GetAllCategories" {
		t.Fatalf("unexpected operation %q", captured.OperationName)
	}
	if len(out.Categories) != 1 || out.Categories[0].Name != "tech" {
		t.Fatalf("unexpected data %+v", out)
	}
}

func TestClientDoSurfacesGraphQLErrors(t *testing.T) {
	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, `{"data":null,"errors":[{"message":"product out of stock"}]}`), nil
	})
	client := newTestClient(t, rt)

	err := client.Do(context.Background(), Request{Query: "mutation { createOrder }"}, nil)
	if err == nil {
		t.Fatal("expected error")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
	if !strings.Contains(typed.Message(), "product out of stock") {
		t.Fatalf("expected graphql message, got %q", typed.Message())
	}
}

func TestClientDoRejectsEmptyQuery(t *testing.T) {
	client := newTestClient(t, roundTripFunc(func(*http.Request) (*http.Response, error) {
		t.Fatal("transport should not be called")
		return nil, nil
	}))
	if err := client.Do(context.Background(), Request{}, nil); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestClientBreakerOpensAfterFailures(t *testing.T) {
	calls := 0
	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		calls++
		return jsonResponse(http.StatusBadGateway, `upstream down`), nil
	})
	var transitions []gobreaker.State
	client, err := NewClient("http://catalog.test/graphql",
		WithHTTPClient(&http.Client{Transport: rt}),
		WithBreaker(BreakerSettings{
			MaxFailures: 2,
			OpenDelay:   time.Minute,
			OnStateChange: func(_ string, _, to gobreaker.State) {
				transitions = append(transitions, to)
			},
		}),
	)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	req := Request{Query: "query { categories { name } }"}
	for i := 0; i < 2; i++ {
		if err := client.Do(context.Background(), req, nil); err == nil {
			t.Fatalf("call %d: expected failure", i)
		}
	}
	if client.State() != gobreaker.StateOpen {
		t.Fatalf("expected open breaker, got %s", client.State())
	}

	err = client.Do(context.Background(), req, nil)
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Fatalf("expected open state error, got %v", err)
	}
	if calls != 2 {
		t.Fatalf("open breaker should short-circuit, transport called %d times", calls)
	}
	if len(transitions) != 1 || transitions[0] != gobreaker.StateOpen {
		t.Fatalf("unexpected transitions %v", transitions)
	}
}

func TestNewClientRequiresEndpoint(t *testing.T) {
	if _, err := NewClient("  "); err == nil {
		t.Fatal("expected error for empty endpoint")
	}
}

func newTestClient(t *testing.T, rt http.RoundTripper) *Client {
	t.Helper()
	client, err := NewClient("http://catalog.test/graphql", WithHTTPClient(&http.Client{Transport: rt}))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
	}
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}
