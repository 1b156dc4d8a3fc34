package broker

import (
	"context"
	"fmt"
	"sync"

	"github.com/quantish/trendbot/market"
)

// FeedPriceSource serves quotes out of a recorded bar feed, advancing through
// the feed as symbols are polled. It stands in for an exchange price client
// in paper runs and caches the newest quote per symbol so interleaved
// multi-symbol feeds work.
type FeedPriceSource struct {
	mu    sync.Mutex
	feed  market.BarFeed
	store *market.QuoteStore
	done  bool
}

func NewFeedPriceSource(feed market.BarFeed) *FeedPriceSource {
	return &FeedPriceSource{
		feed:  feed,
		store: market.NewQuoteStore(),
	}
}

// GetPrice returns the next recorded price for symbol, reading the feed
// forward as needed. Quotes for other symbols seen along the way are cached.
// When the feed is exhausted the last cached quote is served; a symbol never
// seen at all is an error.
func (s *FeedPriceSource) GetPrice(_ context.Context, symbol string) (market.Quote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for !s.done {
		b, ok, err := s.feed.Next()
		if err != nil {
			return market.Quote{}, fmt.Errorf("feed price source: %w", err)
		}
		if !ok {
			s.done = true
			break
		}
		s.store.Set(market.Quote{Symbol: b.Symbol, Price: b.Close, Time: b.Time})
		if b.Symbol == symbol {
			break
		}
	}

	q, err := s.store.Get(symbol)
	if err != nil {
		return market.Quote{}, fmt.Errorf("feed price source %s: %w", symbol, err)
	}
	return q, nil
}

func (s *FeedPriceSource) Close() error { return s.feed.Close() }
