package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenTotalsAdd(t *testing.T) {
	total := TokenTotals{Model: "claude-sonnet-4-5", InputTokens: 100, OutputTokens: 50, APICalls: 1}
	total.Add(TokenTotals{InputTokens: 20, OutputTokens: 10, CacheReadTokens: 5, APICalls: 1})

	assert.Equal(t, "claude-sonnet-4-5", total.Model, "model survives a delta without one")
	assert.Equal(t, int64(120), total.InputTokens)
	assert.Equal(t, int64(60), total.OutputTokens)
	assert.Equal(t, int64(5), total.CacheReadTokens)
	assert.Equal(t, int64(2), total.APICalls)
}

func TestTokenTotalsAddModelDiscovered(t *testing.T) {
	total := TokenTotals{Model: "claude-sonnet-4-5"}
	total.Add(TokenTotals{Model: "claude-opus-4-6", APICalls: 1})

	assert.Equal(t, "claude-opus-4-6", total.Model, "a delta that found a model wins")
}

func TestTokenTotalsIsZero(t *testing.T) {
	assert.True(t, TokenTotals{}.IsZero())
	assert.False(t, TokenTotals{APICalls: 1}.IsZero())
	assert.False(t, TokenTotals{Model: "claude-sonnet-4-5"}.IsZero())
}
