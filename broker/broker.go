// Package broker defines the collaborator contracts the engine consumes.
// The real exchange layer (REST/WebSocket, auth, rate limits, retries) lives
// behind these interfaces and is out of the engine's scope.
package broker

import (
	"context"
	"errors"

	"github.com/quantish/trendbot/market"
)

type OrderSide string

const (
	Buy  OrderSide = "BUY"
	Sell OrderSide = "SELL"
)

type OrderStatus string

const (
	Filled   OrderStatus = "FILLED"
	Rejected OrderStatus = "REJECTED"
	Pending  OrderStatus = "PENDING"
)

var (
	ErrOrderRejected    = errors.New("order rejected")
	ErrOrderUnconfirmed = errors.New("order unconfirmed")
)

type OrderRequest struct {
	Symbol   string
	Side     OrderSide
	Quantity float64
	Type     string  // "MARKET"
	Price    float64 // reference price; simulated executors fill here
}

type OrderResult struct {
	OrderID      string
	Status       OrderStatus
	FillPrice    float64
	FillQuantity float64
}

// PriceSource supplies the latest price for a symbol (live/paper contexts).
type PriceSource interface {
	GetPrice(ctx context.Context, symbol string) (market.Quote, error)
}

// Executor realizes entry and exit actions. A result with a status other
// than Filled must leave the caller's ledger untouched.
type Executor interface {
	PlaceOrder(ctx context.Context, req OrderRequest) (OrderResult, error)
}

// AccountSource seeds or reconciles initial equity. Not consulted per bar.
type AccountSource interface {
	GetBalance(ctx context.Context) (float64, error)
}
