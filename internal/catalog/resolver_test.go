package catalog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"santa-agent-service/internal/domain"
)

func writeProducts(t *testing.T, w http.ResponseWriter, products ...domain.CatalogProduct) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]any{"products": products}); err != nil {
		t.Fatalf("encode products: %v", err)
	}
}

func newResolver(t *testing.T, handler http.Handler) (*Resolver, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client := NewClient(server.URL, time.Second)
	return NewResolver(client, zap.NewNop()), server
}

func TestResolvePrefersTitleMatch(t *testing.T) {
	resolver, _ := newResolver(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/products/search", r.URL.Path)
		writeProducts(t, w,
			domain.CatalogProduct{Title: "USB Cable"},
			domain.CatalogProduct{Title: "Gaming Laptop Pro", Category: "laptops"},
		)
	}))

	product, err := resolver.Resolve(context.Background(), "laptop")
	require.NoError(t, err)
	assert.Equal(t, "Gaming Laptop Pro", product.Title)
}

func TestResolveFallsBackToFirstCandidate(t *testing.T) {
	resolver, _ := newResolver(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeProducts(t, w,
			domain.CatalogProduct{Title: "Something Else"},
			domain.CatalogProduct{Title: "Another Thing"},
		)
	}))

	product, err := resolver.Resolve(context.Background(), "teddy bear")
	require.NoError(t, err)
	assert.Equal(t, "Something Else", product.Title)
}

func TestResolveCategoryFallback(t *testing.T) {
	var categoryHits []string
	resolver, _ := newResolver(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/products/search":
			writeProducts(t, w) // search finds nothing
		case r.URL.Path == "/products/category/smartphones":
			categoryHits = append(categoryHits, r.URL.Path)
			writeProducts(t, w, domain.CatalogProduct{Title: "iPhone 15", Category: "smartphones"})
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}))

	product, err := resolver.Resolve(context.Background(), "a new iPhone")
	require.NoError(t, err)
	assert.Equal(t, "iPhone 15", product.Title)
	assert.Len(t, categoryHits, 1)
}

func TestResolveCatalogWideScan(t *testing.T) {
	resolver, _ := newResolver(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/products/search":
			writeProducts(t, w)
		case "/products":
			writeProducts(t, w,
				domain.CatalogProduct{Title: "Kitchen Knife"},
				domain.CatalogProduct{Title: "Wooden Toy", Description: "a teddy bear for kids"},
			)
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}))

	product, err := resolver.Resolve(context.Background(), "teddy bear")
	require.NoError(t, err)
	assert.Equal(t, "Wooden Toy", product.Title)
}

func TestResolveUnconditionalFallback(t *testing.T) {
	resolver, _ := newResolver(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/products/search":
			writeProducts(t, w)
		case "/products":
			writeProducts(t, w, domain.CatalogProduct{Title: "Kitchen Knife"})
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}))

	product, err := resolver.Resolve(context.Background(), "zzzz")
	require.NoError(t, err)
	assert.Equal(t, "Kitchen Knife", product.Title, "a non-empty catalog must always resolve")
}

func TestResolveUnreachableCatalog(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	server.Close() // every call now fails at the transport level
	client := NewClient(server.URL, 200*time.Millisecond)
	resolver := NewResolver(client, zap.NewNop())

	_, err := resolver.Resolve(context.Background(), "laptop")
	assert.ErrorIs(t, err, domain.ErrCatalogUnavailable)
}

func TestResolveEmptyCatalogIsTrueMiss(t *testing.T) {
	resolver, _ := newResolver(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeProducts(t, w)
	}))

	_, err := resolver.Resolve(context.Background(), "zzzz")
	assert.ErrorIs(t, err, domain.ErrNoMatch)
}

func TestResolveServerErrorsAreSwallowedPerTier(t *testing.T) {
	var searchCalls int
	resolver, _ := newResolver(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/products/search":
			searchCalls++
			http.Error(w, "boom", http.StatusInternalServerError)
		case "/products":
			writeProducts(t, w, domain.CatalogProduct{Title: "Spare Gift"})
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}))

	product, err := resolver.Resolve(context.Background(), "mystery box")
	require.NoError(t, err)
	assert.Equal(t, "Spare Gift", product.Title)
	assert.Equal(t, 4, searchCalls, "every search variant should be tried before falling through")
}
