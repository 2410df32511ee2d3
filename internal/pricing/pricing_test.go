package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTierFor(t *testing.T) {
	tests := []struct {
		country string
		want    int
	}{
		{"US", Tier1},
		{"gb", Tier1},
		{" de ", Tier1},
		{"BR", Tier2},
		{"KR", Tier2},
		{"NG", Tier3},
		{"IN", Tier3},
		{"", Tier3},
		{"XX", Tier3},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TierFor(tt.country), "country %q", tt.country)
	}
}

func TestCurrencyForFallsBackToUSD(t *testing.T) {
	assert.Equal(t, "EUR", CurrencyFor("de"))
	assert.Equal(t, "JPY", CurrencyFor("JP"))
	assert.Equal(t, "USD", CurrencyFor("XX"))
	assert.Equal(t, "USD", CurrencyFor(""))
	// Tiered country with no currency mapping still prices in USD.
	assert.Equal(t, "USD", CurrencyFor("SE"))
}

func TestDiscountBpsFor(t *testing.T) {
	tests := []struct {
		days int
		want int64
	}{
		{1, 0},
		{6, 0},
		{7, 500},
		{29, 500},
		{30, 1200},
		{89, 1200},
		{90, 2000},
		{364, 2000},
		{365, 3000},
		{1094, 3000},
		{1095, 4000},
		{5000, 4000},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DiscountBpsFor(tt.days), "days %d", tt.days)
	}
}

func TestQuoteForSingleDayPhotoTier1(t *testing.T) {
	q := QuoteFor("US", "photo", 1)
	assert.Equal(t, Tier1, q.Tier)
	assert.Equal(t, "USD", q.Currency)
	// 500 cents/day * 1.0 multiplier, no discount.
	assert.Equal(t, 5.00, q.AmountUSD)
	assert.Equal(t, 5.00, q.Amount)
	assert.Equal(t, 0.0, q.DiscountPct)
}

func TestQuoteForAppliesKindMultiplier(t *testing.T) {
	photo := QuoteFor("US", "photo", 1)
	video := QuoteFor("US", "video", 1)
	text := QuoteFor("US", "text", 1)
	assert.Equal(t, 9.00, video.AmountUSD) // 1.8x
	assert.Equal(t, 3.00, text.AmountUSD)  // 0.6x
	assert.Greater(t, video.AmountUSD, photo.AmountUSD)
	assert.Less(t, text.AmountUSD, photo.AmountUSD)
}

func TestQuoteForAppliesDurationDiscount(t *testing.T) {
	q := QuoteFor("US", "photo", 30)
	// 500 * 30 = 15000 cents gross, 12% off => 13200 cents.
	assert.Equal(t, 132.00, q.AmountUSD)
	assert.Equal(t, 12.0, q.DiscountPct)
}

func TestQuoteForConvertsToLocalCurrency(t *testing.T) {
	q := QuoteFor("JP", "photo", 1)
	assert.Equal(t, "JPY", q.Currency)
	assert.Equal(t, 5.00, q.AmountUSD)
	// 5 USD at 149 JPY/USD.
	assert.Equal(t, 745.00, q.Amount)
}

func TestQuoteForUnknownCountryUsesBaseline(t *testing.T) {
	q := QuoteFor("ZZ", "photo", 1)
	assert.Equal(t, Tier3, q.Tier)
	assert.Equal(t, "USD", q.Currency)
	assert.Equal(t, 1.50, q.AmountUSD)
}

func TestQuoteForClampsAndDefaults(t *testing.T) {
	q := QuoteFor("US", "hologram", 0)
	assert.Equal(t, 1, q.Days)
	assert.Equal(t, KindPhoto, q.Kind, "unknown kinds price as photo")
}
