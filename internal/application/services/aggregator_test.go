package services

import (
	"testing"

	"github.com/bimakw/wallet-analyzer/internal/domain/entities"
	"github.com/bimakw/wallet-analyzer/internal/testutil"
)

func TestFilterSignificant(t *testing.T) {
	trades := []entities.Trade{
		testutil.CreateTestTrade(testutil.WithTradeSignature("a"), testutil.WithUSDValue(999.99)),
		testutil.CreateTestTrade(testutil.WithTradeSignature("b"), testutil.WithUSDValue(1000)),
		testutil.CreateTestTrade(testutil.WithTradeSignature("c"), testutil.WithUSDValue(0)),
		testutil.CreateTestTrade(testutil.WithTradeSignature("d"), testutil.WithUSDValue(25000)),
	}

	got := FilterSignificant(trades)

	if len(got) != 2 || got[0].Signature != "b" || got[1].Signature != "d" {
		t.Errorf("expected trades b and d, got %+v", got)
	}
}

func TestFilterSignificant_Empty(t *testing.T) {
	got := FilterSignificant(nil)
	if got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil slice, got %v", got)
	}
}

func TestAggregateTrades(t *testing.T) {
	buy := entities.TradeTypeBuy
	sell := entities.TradeTypeSell

	tests := []struct {
		name     string
		trades   []entities.Trade
		expected entities.Summary
	}{
		{
			name:     "no trades",
			trades:   nil,
			expected: entities.Summary{},
		},
		{
			name: "one buy and one sell",
			trades: []entities.Trade{
				testutil.CreateTestTrade(testutil.WithTradeType(buy), testutil.WithFill(1000, 5.0), testutil.WithMarketCap(5_000_000)),
				testutil.CreateTestTrade(testutil.WithTradeType(sell), testutil.WithFill(400, 6.0), testutil.WithMarketCap(6_000_000)),
			},
			expected: entities.Summary{
				TotalBuyVolume:        1000,
				TotalSellVolume:       400,
				CurrentPosition:       600,
				AvgEntryPrice:         5.0,
				AvgExitPrice:          6.0,
				AvgEntryMarketCap:     5,
				AvgExitMarketCap:      6,
				SignificantTradeCount: 2,
			},
		},
		{
			name: "volume weighted prices, unweighted market caps",
			trades: []entities.Trade{
				testutil.CreateTestTrade(testutil.WithTradeType(buy), testutil.WithFill(100, 10), testutil.WithMarketCap(10_000_000)),
				testutil.CreateTestTrade(testutil.WithTradeType(buy), testutil.WithFill(300, 20), testutil.WithMarketCap(30_000_000)),
			},
			expected: entities.Summary{
				TotalBuyVolume:        400,
				CurrentPosition:       400,
				AvgEntryPrice:         17.5,
				AvgEntryMarketCap:     20,
				SignificantTradeCount: 2,
			},
		},
		{
			name: "net selling gives negative position",
			trades: []entities.Trade{
				testutil.CreateTestTrade(testutil.WithTradeType(sell), testutil.WithFill(500, 4), testutil.WithMarketCap(2_500_000)),
			},
			expected: entities.Summary{
				TotalSellVolume:       500,
				CurrentPosition:       -500,
				AvgExitPrice:          4,
				AvgExitMarketCap:      2.5,
				SignificantTradeCount: 1,
			},
		},
		{
			name: "unknown trades only counted",
			trades: []entities.Trade{
				testutil.CreateTestTrade(testutil.WithTradeType(entities.TradeTypeUnknown)),
			},
			expected: entities.Summary{SignificantTradeCount: 1},
		},
		{
			name: "zero-amount buys do not divide by zero",
			trades: []entities.Trade{
				testutil.CreateTestTrade(testutil.WithTradeType(buy), testutil.WithFill(0, 3), testutil.WithUSDValue(1000), testutil.WithMarketCap(0)),
			},
			expected: entities.Summary{SignificantTradeCount: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AggregateTrades(tt.trades)
			if got != tt.expected {
				t.Errorf("expected %+v, got %+v", tt.expected, got)
			}
		})
	}
}

func TestAggregateTrades_OrderIndependent(t *testing.T) {
	trades := []entities.Trade{
		testutil.CreateTestTrade(testutil.WithTradeType(entities.TradeTypeBuy), testutil.WithFill(0.1, 12345.6789), testutil.WithMarketCap(1234567.891)),
		testutil.CreateTestTrade(testutil.WithTradeType(entities.TradeTypeBuy), testutil.WithFill(0.2, 9876.54321), testutil.WithMarketCap(7654321.123)),
		testutil.CreateTestTrade(testutil.WithTradeType(entities.TradeTypeBuy), testutil.WithFill(0.3, 1111.1111), testutil.WithMarketCap(3333333.333)),
		testutil.CreateTestTrade(testutil.WithTradeType(entities.TradeTypeSell), testutil.WithFill(0.7, 2222.2222), testutil.WithMarketCap(999999.999)),
		testutil.CreateTestTrade(testutil.WithTradeType(entities.TradeTypeSell), testutil.WithFill(1e-7, 3e6), testutil.WithMarketCap(1e12)),
	}

	expected := AggregateTrades(trades)

	permutations := [][]int{
		{4, 3, 2, 1, 0},
		{2, 0, 4, 1, 3},
		{1, 4, 0, 3, 2},
		{3, 1, 2, 0, 4},
	}

	for _, perm := range permutations {
		permuted := make([]entities.Trade, len(trades))
		for i, idx := range perm {
			permuted[i] = trades[idx]
		}

		if got := AggregateTrades(permuted); got != expected {
			t.Errorf("permutation %v: expected %+v, got %+v", perm, expected, got)
		}
	}
}

func TestAggregateTrades_PositionIsExactDifference(t *testing.T) {
	trades := []entities.Trade{
		testutil.CreateTestTrade(testutil.WithTradeType(entities.TradeTypeBuy), testutil.WithFill(0.1, 20000)),
		testutil.CreateTestTrade(testutil.WithTradeType(entities.TradeTypeBuy), testutil.WithFill(0.2, 20000)),
		testutil.CreateTestTrade(testutil.WithTradeType(entities.TradeTypeSell), testutil.WithFill(0.3, 20000)),
	}

	got := AggregateTrades(trades)
	if got.CurrentPosition != 0 {
		t.Errorf("expected position exactly 0, got %v", got.CurrentPosition)
	}
}

func TestRoundSummary(t *testing.T) {
	got := RoundSummary(entities.Summary{
		TotalBuyVolume:        1234.5678,
		TotalSellVolume:       0.005,
		CurrentPosition:       -1.234,
		AvgEntryPrice:         0.123456,
		AvgExitPrice:          2.00005,
		AvgEntryMarketCap:     98.765,
		AvgExitMarketCap:      1.111,
		SignificantTradeCount: 3,
	})

	expected := entities.Summary{
		TotalBuyVolume:        1234.57,
		TotalSellVolume:       0.01,
		CurrentPosition:       -1.23,
		AvgEntryPrice:         0.1235,
		AvgExitPrice:          2.0001,
		AvgEntryMarketCap:     98.77,
		AvgExitMarketCap:      1.11,
		SignificantTradeCount: 3,
	}

	if got != expected {
		t.Errorf("expected %+v, got %+v", expected, got)
	}
}
