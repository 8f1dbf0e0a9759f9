package testutil

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bimakw/wallet-analyzer/internal/domain/entities"
)

func TestMockLedgerRepository_GetSignaturesForAddress_Pages(t *testing.T) {
	mock := NewMockLedgerRepository()
	mock.AddHistory(WalletAddress,
		entities.SignatureRecord{Signature: "s1"},
		entities.SignatureRecord{Signature: "s2"},
		entities.SignatureRecord{Signature: "s3"},
	)

	ctx := context.Background()

	page, err := mock.GetSignaturesForAddress(ctx, WalletAddress, entities.SignatureQuery{Limit: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(page) != 2 || page[0].Signature != "s1" || page[1].Signature != "s2" {
		t.Fatalf("unexpected first page: %+v", page)
	}

	page, _ = mock.GetSignaturesForAddress(ctx, WalletAddress, entities.SignatureQuery{Limit: 2, Before: "s2"})
	if len(page) != 1 || page[0].Signature != "s3" {
		t.Fatalf("unexpected second page: %+v", page)
	}

	page, _ = mock.GetSignaturesForAddress(ctx, WalletAddress, entities.SignatureQuery{Limit: 2, Before: "s3"})
	if len(page) != 0 {
		t.Fatalf("expected empty page, got %+v", page)
	}

	if mock.CallCount("GetSignaturesForAddress") != 3 {
		t.Errorf("expected 3 calls, got %d", mock.CallCount("GetSignaturesForAddress"))
	}
}

func TestMockLedgerRepository_GetParsedTransaction(t *testing.T) {
	mock := NewMockLedgerRepository()
	tx := CreateTestTransaction(WithSignature("abc"))
	mock.AddTransaction(WalletAddress, tx)

	got, err := mock.GetParsedTransaction(context.Background(), "abc")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != tx {
		t.Error("expected stored transaction")
	}

	_, err = mock.GetParsedTransaction(context.Background(), "missing")
	if !errors.Is(err, ErrSignatureNotFound) {
		t.Errorf("expected ErrSignatureNotFound, got %v", err)
	}
}

func TestMockLedgerRepository_Hooks(t *testing.T) {
	mock := NewMockLedgerRepository()
	hookErr := errors.New("boom")
	mock.GetTokenSupplyFunc = func(ctx context.Context, mint string) (*entities.TokenSupply, error) {
		return nil, hookErr
	}

	if _, err := mock.GetTokenSupply(context.Background(), BonkMint); !errors.Is(err, hookErr) {
		t.Errorf("expected hook error, got %v", err)
	}
}

func TestMockPriceRepository_RecordsRequests(t *testing.T) {
	mock := NewMockPriceRepository(1.5)

	if got := mock.HistoricalPrice(context.Background(), BaseTime, BonkMint); got != 1.5 {
		t.Errorf("expected 1.5, got %v", got)
	}
	if len(mock.HistoricalRequests) != 1 || !mock.HistoricalRequests[0].Equal(BaseTime) {
		t.Errorf("unexpected requests: %v", mock.HistoricalRequests)
	}
}

func TestCreateTestTransaction_Defaults(t *testing.T) {
	tx := CreateTestTransaction()

	if tx.PrimarySignature() == "" {
		t.Error("expected a signature")
	}
	if tx.BlockTime == nil || *tx.BlockTime != BaseTime.Add(-time.Hour).Unix() {
		t.Errorf("unexpected block time %v", tx.BlockTime)
	}
	b, ok := entities.FindTokenBalance(tx.Meta.PostTokenBalances, BonkMint, WalletAddress)
	if !ok || b.UIAmount.String() != "100" {
		t.Errorf("unexpected post balance %+v", b)
	}
}

func TestMockHealthChecker_SetHealthy(t *testing.T) {
	checker := NewMockHealthChecker(true)
	if err := checker.HealthCheck(context.Background()); err != nil {
		t.Errorf("expected healthy, got %v", err)
	}

	checker.SetHealthy(false)
	if err := checker.HealthCheck(context.Background()); err == nil {
		t.Error("expected error after SetHealthy(false)")
	}
	if len(checker.Calls) != 2 {
		t.Errorf("expected 2 calls, got %d", len(checker.Calls))
	}
}
