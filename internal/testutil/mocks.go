package testutil

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/bimakw/wallet-analyzer/internal/domain/entities"
	"github.com/bimakw/wallet-analyzer/internal/domain/repositories"
)

// ErrSignatureNotFound is returned by the mock ledger for unknown signatures
var ErrSignatureNotFound = errors.New("signature not found")

var (
	_ repositories.LedgerRepository = (*MockLedgerRepository)(nil)
	_ repositories.PriceRepository  = (*MockPriceRepository)(nil)
)

type MockCall struct {
	Method string
	Args   []interface{}
}

// MockLedgerRepository is an in-memory ledger. History is stored newest first.
type MockLedgerRepository struct {
	mu           sync.RWMutex
	supply       map[string]*entities.TokenSupply
	history      map[string][]entities.SignatureRecord
	transactions map[string]*entities.Transaction

	// Function hooks for custom behavior
	GetTokenSupplyFunc          func(ctx context.Context, mint string) (*entities.TokenSupply, error)
	GetSignaturesForAddressFunc func(ctx context.Context, account string, query entities.SignatureQuery) ([]entities.SignatureRecord, error)
	GetParsedTransactionFunc    func(ctx context.Context, signature string) (*entities.Transaction, error)

	// Call tracking
	Calls []MockCall
}

func NewMockLedgerRepository() *MockLedgerRepository {
	return &MockLedgerRepository{
		supply:       make(map[string]*entities.TokenSupply),
		history:      make(map[string][]entities.SignatureRecord),
		transactions: make(map[string]*entities.Transaction),
		Calls:        make([]MockCall, 0),
	}
}

func (m *MockLedgerRepository) record(method string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, MockCall{Method: method, Args: args})
}

// CallCount returns how many times a method was called
func (m *MockLedgerRepository) CallCount(method string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	for _, c := range m.Calls {
		if c.Method == method {
			count++
		}
	}
	return count
}

func (m *MockLedgerRepository) GetTokenSupply(ctx context.Context, mint string) (*entities.TokenSupply, error) {
	m.record("GetTokenSupply", mint)

	if m.GetTokenSupplyFunc != nil {
		return m.GetTokenSupplyFunc(ctx, mint)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if s, ok := m.supply[mint]; ok {
		return s, nil
	}
	return &entities.TokenSupply{Amount: "0"}, nil
}

func (m *MockLedgerRepository) GetSignaturesForAddress(ctx context.Context, account string, query entities.SignatureQuery) ([]entities.SignatureRecord, error) {
	m.record("GetSignaturesForAddress", account, query)

	if m.GetSignaturesForAddressFunc != nil {
		return m.GetSignaturesForAddressFunc(ctx, account, query)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	history := m.history[account]

	start := 0
	if query.Before != "" {
		start = len(history)
		for i, r := range history {
			if r.Signature == query.Before {
				start = i + 1
				break
			}
		}
	}

	end := start + query.Limit
	if end > len(history) {
		end = len(history)
	}

	page := make([]entities.SignatureRecord, end-start)
	copy(page, history[start:end])
	return page, nil
}

func (m *MockLedgerRepository) GetParsedTransaction(ctx context.Context, signature string) (*entities.Transaction, error) {
	m.record("GetParsedTransaction", signature)

	if m.GetParsedTransactionFunc != nil {
		return m.GetParsedTransactionFunc(ctx, signature)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	tx, ok := m.transactions[signature]
	if !ok {
		return nil, ErrSignatureNotFound
	}
	return tx, nil
}

// Helper methods for testing

func (m *MockLedgerRepository) SetSupply(mint string, uiAmount float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.supply[mint] = &entities.TokenSupply{UIAmount: uiAmount}
}

// AddHistory appends records to an account's history; pass them newest first
func (m *MockLedgerRepository) AddHistory(account string, records ...entities.SignatureRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.history[account] = append(m.history[account], records...)
}

// AddTransaction stores a transaction and appends its signature to the account history
func (m *MockLedgerRepository) AddTransaction(account string, tx *entities.Transaction) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sig := tx.PrimarySignature()
	m.transactions[sig] = tx
	m.history[account] = append(m.history[account], entities.SignatureRecord{
		Signature: sig,
		BlockTime: tx.BlockTime,
	})
}

// MockPriceRepository returns prices from hooks or fixed values
type MockPriceRepository struct {
	mu sync.Mutex

	Current    float64
	Historical float64

	CurrentPriceFunc    func(ctx context.Context, tokenAddress string) float64
	HistoricalPriceFunc func(ctx context.Context, ts time.Time, tokenAddress string) float64

	HistoricalRequests []time.Time
}

func NewMockPriceRepository(historical float64) *MockPriceRepository {
	return &MockPriceRepository{Historical: historical, Current: historical}
}

func (m *MockPriceRepository) CurrentPrice(ctx context.Context, tokenAddress string) float64 {
	if m.CurrentPriceFunc != nil {
		return m.CurrentPriceFunc(ctx, tokenAddress)
	}
	return m.Current
}

func (m *MockPriceRepository) HistoricalPrice(ctx context.Context, ts time.Time, tokenAddress string) float64 {
	m.mu.Lock()
	m.HistoricalRequests = append(m.HistoricalRequests, ts)
	m.mu.Unlock()

	if m.HistoricalPriceFunc != nil {
		return m.HistoricalPriceFunc(ctx, ts, tokenAddress)
	}
	return m.Historical
}

// MockHealthChecker reports a fixed health state
type MockHealthChecker struct {
	mu sync.RWMutex

	Healthy bool
	Error   error
	Calls   []MockCall
}

func NewMockHealthChecker(healthy bool) *MockHealthChecker {
	var err error
	if !healthy {
		err = errors.New("health check failed")
	}
	return &MockHealthChecker{
		Healthy: healthy,
		Error:   err,
		Calls:   make([]MockCall, 0),
	}
}

func (m *MockHealthChecker) HealthCheck(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, MockCall{Method: "HealthCheck"})
	return m.Error
}

func (m *MockHealthChecker) SetHealthy(healthy bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Healthy = healthy
	if healthy {
		m.Error = nil
	} else {
		m.Error = errors.New("health check failed")
	}
}
