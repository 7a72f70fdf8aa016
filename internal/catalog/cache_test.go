package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/storefront/pkg/redis"
)

func setupCache(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	srv := miniredis.RunT(t)
	client := redis.Wrap(goredis.NewClient(&goredis.Options{Addr: srv.Addr()}), "sf")
	t.Cleanup(func() { _ = client.Close() })
	return srv, client
}

func TestCachedCatalogHitAvoidsRemoteCall(t *testing.T) {
	_, cache := setupCache(t)
	gql := &stubQuerier{responses: map[string]string{
		"GetProduct": `{"product":{"id":"ps5","name":"PlayStation 5","prices":[{"amount":844.02,"currency":{"label":"USD","symbol":"$"}}]}}`,
	}}
	remote, err := NewClient(gql, nil)
	require.NoError(t, err)

	cached := NewCachedCatalog(remote, cache, time.Minute, nil)

	first, err := cached.FetchProductByID(context.Background(), "ps5")
	require.NoError(t, err)
	second, err := cached.FetchProductByID(context.Background(), "ps5")
	require.NoError(t, err)

	assert.Equal(t, 1, gql.calls)
	assert.Equal(t, first.Name, second.Name)
	assert.True(t, first.Prices[0].Amount.Equal(second.Prices[0].Amount))
}

func TestCachedCatalogExpires(t *testing.T) {
	srv, cache := setupCache(t)
	gql := &stubQuerier{responses: map[string]string{"GetAllCategories": `{"categories":[{"name":"tech"}]}`}}
	remote, err := NewClient(gql, nil)
	require.NoError(t, err)

	cached := NewCachedCatalog(remote, cache, time.Minute, nil)

	_, err = cached.FetchCategories(context.Background())
	require.NoError(t, err)
	assert.True(t, srv.Exists("sf:catalog:categories"))

	srv.FastForward(2 * time.Minute)

	_, err = cached.FetchCategories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, gql.calls)
}

func TestCachedCatalogDegradesWhenCacheDown(t *testing.T) {
	srv, cache := setupCache(t)
	srv.Close()

	gql := &stubQuerier{responses: map[string]string{"GetAllProducts": `{"products":[{"id":"a"}]}`}}
	remote, err := NewClient(gql, nil)
	require.NoError(t, err)

	cached := NewCachedCatalog(remote, cache, time.Minute, nil)
	products, err := cached.FetchProductsByCategory(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, products, 1)
}

func TestCachedCatalogDoesNotCacheErrors(t *testing.T) {
	srv, cache := setupCache(t)
	gql := &stubQuerier{responses: map[string]string{"GetProduct": `{"product":null}`}}
	remote, err := NewClient(gql, nil)
	require.NoError(t, err)

	cached := NewCachedCatalog(remote, cache, time.Minute, nil)
	_, err = cached.FetchProductByID(context.Background(), "missing")
	require.Error(t, err)
	assert.False(t, srv.Exists("sf:catalog:product:missing"))
}

func TestCachedCatalogWithoutCachePassesThrough(t *testing.T) {
	gql := &stubQuerier{responses: map[string]string{"GetAllCategories": `{"categories":[]}`}}
	remote, err := NewClient(gql, nil)
	require.NoError(t, err)

	cached := NewCachedCatalog(remote, nil, time.Minute, nil)
	for i := 0; i < 2; i++ {
		_, err := cached.FetchCategories(context.Background())
		require.NoError(t, err)
	}
	assert.Equal(t, 2, gql.calls)
}
