package entities

import (
	"time"
)

// AnalysisWindowDuration is the look-back period of a single analysis
const AnalysisWindowDuration = 24 * time.Hour

// AnalysisWindow is the closed time range covered by one analysis run
type AnalysisWindow struct {
	From time.Time
	To   time.Time
}

// NewAnalysisWindow returns [now - 24h, now]
func NewAnalysisWindow(now time.Time) AnalysisWindow {
	return AnalysisWindow{
		From: now.Add(-AnalysisWindowDuration),
		To:   now,
	}
}

// Includes reports whether a block time in seconds is at or after the window start
func (w AnalysisWindow) Includes(blockTime int64) bool {
	return !time.Unix(blockTime, 0).Before(w.From)
}

// Summary aggregates the significant trades of a window.
// Market caps are expressed in millions of the quote currency.
type Summary struct {
	TotalBuyVolume        float64 `json:"total_buy_volume"`
	TotalSellVolume       float64 `json:"total_sell_volume"`
	CurrentPosition       float64 `json:"current_position"`
	AvgEntryPrice         float64 `json:"avg_entry_price"`
	AvgExitPrice          float64 `json:"avg_exit_price"`
	AvgEntryMarketCap     float64 `json:"avg_entry_market_cap"`
	AvgExitMarketCap      float64 `json:"avg_exit_market_cap"`
	SignificantTradeCount int     `json:"significant_trade_count"`
}
