package cache

import (
	"context"
	"sort"
	"sync"

	"github.com/redadb/aitrader/internal/model"
)

// Memory is a process-local quote cache.
type Memory struct {
	mu     sync.RWMutex
	quotes map[string]model.Quote
}

// NewMemory creates an empty in-memory cache.
func NewMemory() *Memory {
	return &Memory{quotes: make(map[string]model.Quote)}
}

func (m *Memory) SetQuote(_ context.Context, quote model.Quote) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.quotes[quote.Symbol] = quote
	return nil
}

func (m *Memory) GetQuote(_ context.Context, symbol string) (model.Quote, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	quote, ok := m.quotes[symbol]
	if !ok {
		return model.Quote{}, ErrQuoteNotFound
	}
	return quote, nil
}

func (m *Memory) AllQuotes(_ context.Context) ([]model.Quote, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	quotes := make([]model.Quote, 0, len(m.quotes))
	for _, quote := range m.quotes {
		quotes = append(quotes, quote)
	}
	sort.Slice(quotes, func(i, j int) bool { return quotes[i].Symbol < quotes[j].Symbol })
	return quotes, nil
}
