package market

import (
	"errors"
	"sync"
	"time"
)

// Quote is the latest observed price for a symbol.
type Quote struct {
	Symbol string
	Price  float64
	Time   time.Time
}

// QuoteStore caches the last quote per symbol.
type QuoteStore struct {
	mu     sync.RWMutex
	quotes map[string]Quote
}

func NewQuoteStore() *QuoteStore {
	return &QuoteStore{quotes: make(map[string]Quote)}
}

func (qs *QuoteStore) Set(q Quote) {
	qs.mu.Lock()
	defer qs.mu.Unlock()
	qs.quotes[q.Symbol] = q
}

func (qs *QuoteStore) Get(symbol string) (Quote, error) {
	qs.mu.RLock()
	defer qs.mu.RUnlock()
	q, ok := qs.quotes[symbol]
	if !ok {
		return Quote{}, errors.New("price not found")
	}
	return q, nil
}
