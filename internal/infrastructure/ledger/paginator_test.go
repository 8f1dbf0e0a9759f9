/*
 * Copyright (c) 2024 Bima Kharisma Wicaksana
 * GitHub: https://github.com/bimakw
 *
 * Licensed under MIT License with Attribution Requirement.
 * See LICENSE file for details.
 */

package ledger

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/rpc"
	"go.uber.org/zap"

	"github.com/bimakw/wallet-analyzer/internal/domain/entities"
	"github.com/bimakw/wallet-analyzer/internal/infrastructure/retry"
	"github.com/bimakw/wallet-analyzer/internal/testutil"
)

// history builds n records spaced one minute apart, newest first, starting at newest
func history(n int, newest time.Time) []entities.SignatureRecord {
	records := make([]entities.SignatureRecord, n)
	for i := 0; i < n; i++ {
		records[i] = entities.SignatureRecord{
			Signature: fmt.Sprintf("sig-%03d", i),
			BlockTime: testutil.Int64Ptr(newest.Add(-time.Duration(i) * time.Minute).Unix()),
		}
	}
	return records
}

func noSleepPolicy(retries int) (retry.Policy, *[]time.Duration) {
	var slept []time.Duration
	return retry.Policy{
		MaxRetries:   retries,
		InitialDelay: time.Second,
		Sleep: func(ctx context.Context, d time.Duration) error {
			slept = append(slept, d)
			return nil
		},
	}, &slept
}

func TestHistoryPaginator_Collect(t *testing.T) {
	now := testutil.BaseTime

	tests := []struct {
		name          string
		records       []entities.SignatureRecord
		pageSize      int
		cutoff        time.Time
		expectedCount int
		expectedPages int
	}{
		{
			name:          "empty history",
			records:       nil,
			pageSize:      10,
			cutoff:        now.Add(-24 * time.Hour),
			expectedCount: 0,
			expectedPages: 1,
		},
		{
			name:          "single partial page inside window",
			records:       history(3, now),
			pageSize:      10,
			cutoff:        now.Add(-24 * time.Hour),
			expectedCount: 3,
			expectedPages: 2,
		},
		{
			name:          "cutoff falls mid page",
			records:       history(10, now),
			pageSize:      10,
			cutoff:        now.Add(-4 * time.Minute),
			expectedCount: 5,
			expectedPages: 1,
		},
		{
			name:          "walks several full pages",
			records:       history(25, now),
			pageSize:      10,
			cutoff:        now.Add(-24 * time.Hour),
			expectedCount: 25,
			expectedPages: 4,
		},
		{
			name:          "cutoff in second page",
			records:       history(25, now),
			pageSize:      10,
			cutoff:        now.Add(-14 * time.Minute),
			expectedCount: 15,
			expectedPages: 2,
		},
		{
			name:          "cutoff equal to block time is included",
			records:       history(3, now),
			pageSize:      3,
			cutoff:        now.Add(-2 * time.Minute),
			expectedCount: 3,
			expectedPages: 2,
		},
		{
			name:          "everything older than cutoff",
			records:       history(5, now.Add(-48*time.Hour)),
			pageSize:      10,
			cutoff:        now.Add(-24 * time.Hour),
			expectedCount: 0,
			expectedPages: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := testutil.NewMockLedgerRepository()
			mock.AddHistory(testWallet, tt.records...)

			policy, _ := noSleepPolicy(3)
			paginator := NewHistoryPaginator(mock, policy, tt.pageSize, zap.NewNop())

			got, err := paginator.Collect(context.Background(), testWallet, tt.cutoff)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got == nil {
				t.Fatal("expected non-nil slice")
			}
			if len(got) != tt.expectedCount {
				t.Errorf("expected %d records, got %d", tt.expectedCount, len(got))
			}
			if pages := mock.CallCount("GetSignaturesForAddress"); pages != tt.expectedPages {
				t.Errorf("expected %d page requests, got %d", tt.expectedPages, pages)
			}

			for i := 1; i < len(got); i++ {
				if got[i].BlockTimeOrZero() > got[i-1].BlockTimeOrZero() {
					t.Fatalf("records not newest first at %d", i)
				}
			}
		})
	}
}

func TestHistoryPaginator_Collect_UsesBeforeCursor(t *testing.T) {
	mock := testutil.NewMockLedgerRepository()
	mock.AddHistory(testWallet, history(5, testutil.BaseTime)...)

	policy, _ := noSleepPolicy(0)
	paginator := NewHistoryPaginator(mock, policy, 2, zap.NewNop())

	if _, err := paginator.Collect(context.Background(), testWallet, testutil.BaseTime.Add(-time.Hour)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var befores []string
	for _, c := range mock.Calls {
		if c.Method == "GetSignaturesForAddress" {
			befores = append(befores, c.Args[1].(entities.SignatureQuery).Before)
		}
	}

	expected := []string{"", "sig-001", "sig-003", "sig-004"}
	if len(befores) != len(expected) {
		t.Fatalf("expected cursors %v, got %v", expected, befores)
	}
	for i := range expected {
		if befores[i] != expected[i] {
			t.Errorf("page %d: expected before %q, got %q", i+1, expected[i], befores[i])
		}
	}
}

func TestHistoryPaginator_Collect_NilBlockTimeIsOld(t *testing.T) {
	now := testutil.BaseTime
	records := []entities.SignatureRecord{
		{Signature: "recent", BlockTime: testutil.Int64Ptr(now.Unix())},
		{Signature: "unknown", BlockTime: nil},
	}

	mock := testutil.NewMockLedgerRepository()
	mock.AddHistory(testWallet, records...)

	policy, _ := noSleepPolicy(0)
	paginator := NewHistoryPaginator(mock, policy, 10, zap.NewNop())

	got, err := paginator.Collect(context.Background(), testWallet, now.Add(-time.Hour))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].Signature != "recent" {
		t.Errorf("expected only the recent record, got %+v", got)
	}
}

func TestHistoryPaginator_Collect_RetriesRateLimit(t *testing.T) {
	mock := testutil.NewMockLedgerRepository()
	calls := 0
	mock.GetSignaturesForAddressFunc = func(ctx context.Context, account string, q entities.SignatureQuery) ([]entities.SignatureRecord, error) {
		calls++
		if calls <= 2 {
			return nil, rpc.HTTPError{StatusCode: 429, Status: "429 Too Many Requests"}
		}
		return []entities.SignatureRecord{}, nil
	}

	policy, slept := noSleepPolicy(3)
	paginator := NewHistoryPaginator(mock, policy, 10, zap.NewNop())

	got, err := paginator.Collect(context.Background(), testWallet, testutil.BaseTime)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no records, got %d", len(got))
	}
	if len(*slept) != 2 || (*slept)[0] != time.Second || (*slept)[1] != 2*time.Second {
		t.Errorf("expected waits [1s 2s], got %v", *slept)
	}
}

func TestHistoryPaginator_Collect_FailsAfterRetries(t *testing.T) {
	mock := testutil.NewMockLedgerRepository()
	mock.GetSignaturesForAddressFunc = func(ctx context.Context, account string, q entities.SignatureQuery) ([]entities.SignatureRecord, error) {
		return nil, rpc.HTTPError{StatusCode: 429, Status: "429 Too Many Requests"}
	}

	policy, slept := noSleepPolicy(3)
	paginator := NewHistoryPaginator(mock, policy, 10, zap.NewNop())

	_, err := paginator.Collect(context.Background(), testWallet, testutil.BaseTime)
	if err == nil {
		t.Fatal("expected error")
	}

	var httpErr rpc.HTTPError
	if !errors.As(err, &httpErr) || httpErr.StatusCode != 429 {
		t.Errorf("expected wrapped 429 error, got %v", err)
	}
	if mock.CallCount("GetSignaturesForAddress") != 4 {
		t.Errorf("expected 4 attempts, got %d", mock.CallCount("GetSignaturesForAddress"))
	}
	if len(*slept) != 3 {
		t.Errorf("expected 3 waits, got %d", len(*slept))
	}
}

func TestHistoryPaginator_Collect_OtherErrorNotRetried(t *testing.T) {
	mock := testutil.NewMockLedgerRepository()
	mock.GetSignaturesForAddressFunc = func(ctx context.Context, account string, q entities.SignatureQuery) ([]entities.SignatureRecord, error) {
		return nil, errors.New("connection refused")
	}

	policy, slept := noSleepPolicy(3)
	paginator := NewHistoryPaginator(mock, policy, 10, zap.NewNop())

	if _, err := paginator.Collect(context.Background(), testWallet, testutil.BaseTime); err == nil {
		t.Fatal("expected error")
	}
	if mock.CallCount("GetSignaturesForAddress") != 1 {
		t.Errorf("expected a single attempt, got %d", mock.CallCount("GetSignaturesForAddress"))
	}
	if len(*slept) != 0 {
		t.Errorf("expected no waits, got %v", *slept)
	}
}
