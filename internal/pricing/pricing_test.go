package pricing

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRatesForFamilies(t *testing.T) {
	testCases := []struct {
		model    string
		expected ModelPricing
	}{
		{"claude-opus-4-6", ModelPricing{InputPrice: 5.0, CacheCreatePrice: 6.25, CacheReadPrice: 0.50, OutputPrice: 25.0}},
		{"claude-opus-4-5-20251101", ModelPricing{InputPrice: 5.0, CacheCreatePrice: 6.25, CacheReadPrice: 0.50, OutputPrice: 25.0}},
		{"claude-opus-4-1-20250805", ModelPricing{InputPrice: 15.0, CacheCreatePrice: 18.75, CacheReadPrice: 1.50, OutputPrice: 75.0}},
		{"claude-haiku-4-5-20251001", ModelPricing{InputPrice: 1.0, CacheCreatePrice: 1.25, CacheReadPrice: 0.10, OutputPrice: 5.0}},
		{"claude-3-5-haiku-20241022", ModelPricing{InputPrice: 0.80, CacheCreatePrice: 1.00, CacheReadPrice: 0.08, OutputPrice: 4.0}},
		{"claude-sonnet-4-5-20250929", ModelPricing{InputPrice: 3.0, CacheCreatePrice: 3.75, CacheReadPrice: 0.30, OutputPrice: 15.0}},
		{"", ModelPricing{InputPrice: 3.0, CacheCreatePrice: 3.75, CacheReadPrice: 0.30, OutputPrice: 15.0}},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.expected, RatesFor(tc.model), "model %q", tc.model)
	}
}

func TestEstimateCost(t *testing.T) {
	// Sonnet rates: 1M input at $3 plus 2M output at $15.
	cost := EstimateCost("claude-sonnet-4-5-20250929", 1_000_000, 0, 0, 2_000_000)
	assert.InDelta(t, 33.0, cost, 1e-9)

	assert.Zero(t, EstimateCost("claude-sonnet-4-5-20250929", 0, 0, 0, 0))
}

func TestEstimateCostCacheTokens(t *testing.T) {
	cost := EstimateCost("claude-opus-4-6", 0, 1_000_000, 10_000_000, 0)
	assert.InDelta(t, 6.25+5.0, cost, 1e-9)
}

func setPricingURL(t *testing.T, url string) {
	t.Helper()
	old := pricingURL
	pricingURL = url
	t.Cleanup(func() { pricingURL = old })
}

func TestServiceUsesFetchedRates(t *testing.T) {
	fetches := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fetches++
		require.NoError(t, json.NewEncoder(w).Encode(liteLLMResponse{
			Data: map[string]ModelPricing{
				"claude-sonnet-4-5-20250929": {InputPrice: 2.0, OutputPrice: 10.0},
			},
		}))
	}))
	defer srv.Close()
	setPricingURL(t, srv.URL)

	s := NewService()
	ctx := context.Background()

	cost := s.EstimateCost(ctx, "claude-sonnet-4-5-20250929", 1_000_000, 0, 0, 1_000_000)
	assert.InDelta(t, 12.0, cost, 1e-9)

	// Second call within the TTL hits the cache, not the server.
	s.EstimateCost(ctx, "claude-sonnet-4-5-20250929", 1, 0, 0, 0)
	assert.Equal(t, 1, fetches)
}

func TestServiceFallsBackOnServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()
	setPricingURL(t, srv.URL)

	s := NewService()
	cost := s.EstimateCost(context.Background(), "claude-sonnet-4-5-20250929", 1_000_000, 0, 0, 0)
	assert.InDelta(t, 3.0, cost, 1e-9)
}

func TestServiceFallsBackWhenUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()
	setPricingURL(t, srv.URL)

	s := NewService()
	rates := s.Rates(context.Background(), "claude-opus-4-6")
	assert.Equal(t, RatesFor("claude-opus-4-6"), rates)
}

func TestServiceFetchedTableMissingModel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewEncoder(w).Encode(liteLLMResponse{
			Data: map[string]ModelPricing{"other-model": {InputPrice: 1.0}},
		}))
	}))
	defer srv.Close()
	setPricingURL(t, srv.URL)

	s := NewService()
	rates := s.Rates(context.Background(), "claude-haiku-4-5-20251001")
	assert.Equal(t, RatesFor("claude-haiku-4-5-20251001"), rates)
}
