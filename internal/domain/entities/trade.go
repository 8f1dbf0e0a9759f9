package entities

import (
	"time"
)

// SignificantTradeUSD is the minimum quote value for a trade to count in a summary
const SignificantTradeUSD = 1000.0

// TradeType classifies a balance change
type TradeType string

const (
	TradeTypeBuy     TradeType = "buy"
	TradeTypeSell    TradeType = "sell"
	TradeTypeUnknown TradeType = "unknown"
)

// Trade is a balance change of the analyzed token for the analyzed wallet
type Trade struct {
	Signature string    `json:"signature"`
	Timestamp time.Time `json:"timestamp"`
	Type      TradeType `json:"type"`
	Amount    float64   `json:"amount"`     // token units, never negative
	Price     float64   `json:"price"`      // quote currency per token unit
	USDValue  float64   `json:"usd_value"`  // Amount * Price
	MarketCap float64   `json:"market_cap"` // Price * total supply
}

// IsSignificant reports whether the trade meets the materiality threshold (inclusive)
func (t Trade) IsSignificant() bool {
	return t.USDValue >= SignificantTradeUSD
}
