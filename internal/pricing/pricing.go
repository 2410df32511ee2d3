package pricing

import (
	"math"
	"strings"
)

// Creative-asset kinds that can be priced.
const (
	KindPhoto = "photo"
	KindVideo = "video"
	KindAudio = "audio"
	KindText  = "text"
)

// Country tiers. Tier 1 is the highest-priced bucket; unknown countries
// fall back to tier 3.
const (
	Tier1 = 1
	Tier2 = 2
	Tier3 = 3
)

// Per-day base rate in USD cents by tier.
var tierBaseCents = map[int]int64{
	Tier1: 500,
	Tier2: 300,
	Tier3: 150,
}

var tier1Countries = map[string]bool{
	"US": true, "CA": true, "GB": true, "DE": true, "FR": true,
	"AU": true, "JP": true, "CH": true, "SE": true, "NO": true,
	"NL": true, "DK": true, "IE": true, "SG": true, "AE": true,
}

var tier2Countries = map[string]bool{
	"ES": true, "IT": true, "PT": true, "PL": true, "CZ": true,
	"KR": true, "TW": true, "SA": true, "QA": true, "IL": true,
	"BR": true, "MX": true, "AR": true, "CL": true, "ZA": true,
	"TR": true, "MY": true, "TH": true, "CN": true, "RU": true,
}

// Per-kind price multipliers, in basis points of the base rate.
var kindMultiplierBps = map[string]int64{
	KindPhoto: 10000,
	KindVideo: 18000,
	KindAudio: 14000,
	KindText:  6000,
}

// discountStep is one knee of the duration discount curve.
type discountStep struct {
	minDays     int
	discountBps int64
}

// Longer bookings earn deeper discounts. Steps are checked from the
// longest threshold down.
var discountCurve = []discountStep{
	{1095, 4000},
	{365, 3000},
	{90, 2000},
	{30, 1200},
	{7, 500},
}

// Static exchange rates from USD, in rate-per-USD scaled by 1e6.
// Unknown currencies fall back to USD.
var fxMicrosPerUSD = map[string]int64{
	"USD": 1_000_000,
	"EUR": 920_000,
	"GBP": 790_000,
	"CAD": 1_360_000,
	"AUD": 1_520_000,
	"JPY": 149_000_000,
	"BRL": 5_120_000,
	"MXN": 17_100_000,
	"INR": 83_200_000,
	"NGN": 1_540_000_000,
	"ZAR": 18_700_000,
	"KRW": 1_330_000_000,
	"TRY": 32_400_000,
	"SGD": 1_340_000,
	"AED": 3_670_000,
}

// Local display currency per country. Anything missing is priced in USD.
var countryCurrency = map[string]string{
	"US": "USD", "CA": "CAD", "GB": "GBP", "AU": "AUD", "JP": "JPY",
	"DE": "EUR", "FR": "EUR", "ES": "EUR", "IT": "EUR", "NL": "EUR",
	"IE": "EUR", "PT": "EUR", "BR": "BRL", "MX": "MXN", "IN": "INR",
	"NG": "NGN", "ZA": "ZAR", "KR": "KRW", "TR": "TRY", "SG": "SGD",
	"AE": "AED",
}

// Quote is a fully resolved price for one asset kind over a duration.
type Quote struct {
	Country     string  `json:"country"`
	Tier        int     `json:"tier"`
	Kind        string  `json:"kind"`
	Days        int     `json:"days"`
	Currency    string  `json:"currency"`
	Amount      float64 `json:"amount"`
	AmountUSD   float64 `json:"amountUSD"`
	DiscountPct float64 `json:"discountPct"`
}

// TierFor buckets a two-letter country code. Unknown codes land in
// tier 3.
func TierFor(country string) int {
	cc := strings.ToUpper(strings.TrimSpace(country))
	switch {
	case tier1Countries[cc]:
		return Tier1
	case tier2Countries[cc]:
		return Tier2
	default:
		return Tier3
	}
}

// CurrencyFor returns the display currency for a country, defaulting to
// USD.
func CurrencyFor(country string) string {
	cc := strings.ToUpper(strings.TrimSpace(country))
	if cur, ok := countryCurrency[cc]; ok {
		if _, known := fxMicrosPerUSD[cur]; known {
			return cur
		}
	}
	return "USD"
}

// DiscountBpsFor returns the duration discount in basis points for a
// booking of the given length.
func DiscountBpsFor(days int) int64 {
	for _, step := range discountCurve {
		if days >= step.minDays {
			return step.discountBps
		}
	}
	return 0
}

// QuoteFor computes the price of one asset kind for one country over a
// duration in days. Days below 1 are clamped to 1; unknown kinds price
// as photo.
func QuoteFor(country, kind string, days int) Quote {
	if days < 1 {
		days = 1
	}
	kind = strings.ToLower(strings.TrimSpace(kind))
	multBps, ok := kindMultiplierBps[kind]
	if !ok {
		kind = KindPhoto
		multBps = kindMultiplierBps[KindPhoto]
	}

	tier := TierFor(country)
	base := tierBaseCents[tier]
	discBps := DiscountBpsFor(days)

	// All intermediate math stays in integer cents * bps to keep the
	// table deterministic; rounding happens once at the end.
	grossCents := base * int64(days) * multBps / 10000
	netCents := grossCents * (10000 - discBps) / 10000

	currency := CurrencyFor(country)
	rateMicros := fxMicrosPerUSD[currency]

	usd := float64(netCents) / 100
	local := usd * float64(rateMicros) / 1e6

	return Quote{
		Country:     strings.ToUpper(strings.TrimSpace(country)),
		Tier:        tier,
		Kind:        kind,
		Days:        days,
		Currency:    currency,
		Amount:      math.Round(local*100) / 100,
		AmountUSD:   math.Round(usd*100) / 100,
		DiscountPct: float64(discBps) / 100,
	}
}
