package services

import (
	"github.com/shopspring/decimal"

	"github.com/bimakw/wallet-analyzer/internal/domain/entities"
)

var marketCapUnit = decimal.NewFromInt(1_000_000)

// IsSignificant reports whether a trade meets the materiality threshold
func IsSignificant(trade entities.Trade) bool {
	return trade.IsSignificant()
}

// FilterSignificant returns the significant trades, keeping their order
func FilterSignificant(trades []entities.Trade) []entities.Trade {
	significant := make([]entities.Trade, 0, len(trades))
	for _, t := range trades {
		if IsSignificant(t) {
			significant = append(significant, t)
		}
	}
	return significant
}

// tradeSide accumulates one side of the book
type tradeSide struct {
	volume    decimal.Decimal
	notional  decimal.Decimal // sum(price * amount)
	marketCap decimal.Decimal
	count     int64
}

func (s *tradeSide) add(t entities.Trade) {
	amount := decimal.NewFromFloat(t.Amount)
	s.volume = s.volume.Add(amount)
	s.notional = s.notional.Add(decimal.NewFromFloat(t.Price).Mul(amount))
	s.marketCap = s.marketCap.Add(decimal.NewFromFloat(t.MarketCap))
	s.count++
}

// avgPrice is the volume-weighted mean price, 0 without volume
func (s *tradeSide) avgPrice() decimal.Decimal {
	if s.volume.IsZero() {
		return decimal.Zero
	}
	return s.notional.Div(s.volume)
}

// avgMarketCap is the unweighted mean market cap in millions, 0 without trades
func (s *tradeSide) avgMarketCap() decimal.Decimal {
	if s.count == 0 {
		return decimal.Zero
	}
	return s.marketCap.Div(decimal.NewFromInt(s.count)).Div(marketCapUnit)
}

// AggregateTrades summarizes trades that were already filtered for significance.
// Accumulation is exact, so the result does not depend on the order of trades.
// Values are not rounded; see RoundSummary.
func AggregateTrades(trades []entities.Trade) entities.Summary {
	var buys, sells tradeSide

	for _, t := range trades {
		switch t.Type {
		case entities.TradeTypeBuy:
			buys.add(t)
		case entities.TradeTypeSell:
			sells.add(t)
		}
	}

	return entities.Summary{
		TotalBuyVolume:        buys.volume.InexactFloat64(),
		TotalSellVolume:       sells.volume.InexactFloat64(),
		CurrentPosition:       buys.volume.Sub(sells.volume).InexactFloat64(),
		AvgEntryPrice:         buys.avgPrice().InexactFloat64(),
		AvgExitPrice:          sells.avgPrice().InexactFloat64(),
		AvgEntryMarketCap:     buys.avgMarketCap().InexactFloat64(),
		AvgExitMarketCap:      sells.avgMarketCap().InexactFloat64(),
		SignificantTradeCount: len(trades),
	}
}

// RoundSummary applies presentation precision: 4 decimals for prices, 2 for everything else
func RoundSummary(s entities.Summary) entities.Summary {
	return entities.Summary{
		TotalBuyVolume:        round(s.TotalBuyVolume, 2),
		TotalSellVolume:       round(s.TotalSellVolume, 2),
		CurrentPosition:       round(s.CurrentPosition, 2),
		AvgEntryPrice:         round(s.AvgEntryPrice, 4),
		AvgExitPrice:          round(s.AvgExitPrice, 4),
		AvgEntryMarketCap:     round(s.AvgEntryMarketCap, 2),
		AvgExitMarketCap:      round(s.AvgExitMarketCap, 2),
		SignificantTradeCount: s.SignificantTradeCount,
	}
}

func round(v float64, places int32) float64 {
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}
