// Package pricing estimates API cost from token counts. Rates come from the
// LiteLLM pricing endpoint when it is reachable, with an embedded per-family
// table as the fallback.
package pricing

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"
)

// ModelPricing is a rate card in dollars per million tokens.
type ModelPricing struct {
	InputPrice       float64 `json:"input_price"`
	CacheCreatePrice float64 `json:"cache_create_price"`
	CacheReadPrice   float64 `json:"cache_read_price"`
	OutputPrice      float64 `json:"output_price"`
}

type liteLLMResponse struct {
	Data map[string]ModelPricing `json:"data"`
}

// Overridable in tests.
var pricingURL = "https://litellm-api.com/pricing"

// Service resolves model rates, preferring fetched data over the embedded
// table when available.
type Service struct {
	client    *http.Client
	cache     map[string]ModelPricing
	cacheMux  sync.RWMutex
	cacheTime time.Time
	cacheTTL  time.Duration
}

func NewService() *Service {
	return &Service{
		client:   &http.Client{Timeout: 10 * time.Second},
		cache:    make(map[string]ModelPricing),
		cacheTTL: 1 * time.Hour,
	}
}

// Rates returns the rate card for a model: a fresh cached entry if present,
// otherwise one refresh attempt, otherwise the embedded table.
func (s *Service) Rates(ctx context.Context, model string) ModelPricing {
	s.cacheMux.RLock()
	rates, exists := s.cache[model]
	fresh := time.Since(s.cacheTime) < s.cacheTTL
	s.cacheMux.RUnlock()

	if exists && fresh {
		return rates
	}

	if err := s.refreshCache(ctx); err != nil {
		return RatesFor(model)
	}

	s.cacheMux.RLock()
	rates, exists = s.cache[model]
	s.cacheMux.RUnlock()
	if exists {
		return rates
	}
	return RatesFor(model)
}

func (s *Service) refreshCache(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, "GET", pricingURL, nil)
	if err != nil {
		return err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("pricing API returned status %d", resp.StatusCode)
	}

	var response liteLLMResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return err
	}

	s.cacheMux.Lock()
	s.cache = response.Data
	s.cacheTime = time.Now()
	s.cacheMux.Unlock()

	return nil
}

// EstimateCost returns the dollar cost for the given token counts under the
// model's resolved rate card.
func (s *Service) EstimateCost(ctx context.Context, model string, input, cacheCreate, cacheRead, output int64) float64 {
	return cost(s.Rates(ctx, model), input, cacheCreate, cacheRead, output)
}

// EstimateCost computes cost from the embedded rate table only.
func EstimateCost(model string, input, cacheCreate, cacheRead, output int64) float64 {
	return cost(RatesFor(model), input, cacheCreate, cacheRead, output)
}

func cost(r ModelPricing, input, cacheCreate, cacheRead, output int64) float64 {
	const mtok = 1_000_000.0
	return float64(input)*r.InputPrice/mtok +
		float64(cacheCreate)*r.CacheCreatePrice/mtok +
		float64(cacheRead)*r.CacheReadPrice/mtok +
		float64(output)*r.OutputPrice/mtok
}

// RatesFor returns the embedded rate card for a model, matched by family.
// Unknown models fall back to Sonnet rates, the most common case.
func RatesFor(model string) ModelPricing {
	switch {
	case strings.Contains(model, "opus"):
		if strings.Contains(model, "opus-4-5") || strings.Contains(model, "opus-4-6") {
			return ModelPricing{InputPrice: 5.0, CacheCreatePrice: 6.25, CacheReadPrice: 0.50, OutputPrice: 25.0}
		}
		return ModelPricing{InputPrice: 15.0, CacheCreatePrice: 18.75, CacheReadPrice: 1.50, OutputPrice: 75.0}
	case strings.Contains(model, "haiku"):
		if strings.Contains(model, "haiku-4-5") {
			return ModelPricing{InputPrice: 1.0, CacheCreatePrice: 1.25, CacheReadPrice: 0.10, OutputPrice: 5.0}
		}
		return ModelPricing{InputPrice: 0.80, CacheCreatePrice: 1.00, CacheReadPrice: 0.08, OutputPrice: 4.0}
	}
	return ModelPricing{InputPrice: 3.0, CacheCreatePrice: 3.75, CacheReadPrice: 0.30, OutputPrice: 15.0}
}
