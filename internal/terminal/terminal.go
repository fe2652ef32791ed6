// Package terminal defines the market-data and execution collaborator the
// decision loop talks to. Implementations are broker-specific; the core
// only depends on this interface.
package terminal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tickbet/internal/market"
)

// Retcodes follow the submit/check convention: a live submission reports
// RetcodeDone on success, a dry-run check reports zero.
const (
	RetcodeCheckOK = 0
	RetcodeDone    = 10009
)

type OrderRequest struct {
	Symbol     string
	Side       market.PositionSide
	Volume     float64
	StopLoss   float64
	TakeProfit float64
	// Position carries the ticket of the position being closed; empty for
	// an opening order.
	Position string
	Comment  string
}

type OrderResult struct {
	Retcode int
	Ticket  string
	Comment string
}

// Terminal is the synchronous collaborator surface. Every call either
// returns fresh data or fails; the decision core never retries these
// itself.
type Terminal interface {
	AccountSnapshot(ctx context.Context) (market.AccountSnapshot, error)
	SymbolSnapshot(ctx context.Context, symbol string) (market.SymbolSnapshot, error)
	Positions(ctx context.Context, symbol string) ([]market.Position, error)
	Orders(ctx context.Context, symbol string) ([]market.Order, error)
	MinMargin(ctx context.Context, symbol string, side market.PositionSide) (float64, error)
	HistoryDeals(ctx context.Context, symbol string, from, to time.Time) ([]market.Deal, error)
	Ticks(ctx context.Context, symbol string, from, to time.Time) ([]market.Tick, error)
	Rates(ctx context.Context, symbol string, granularity market.Granularity, count int) ([]market.Candle, error)
	SubmitOrder(ctx context.Context, req OrderRequest) (OrderResult, error)
	CheckOrder(ctx context.Context, req OrderRequest) (OrderResult, error)
	ModifyPosition(ctx context.Context, symbol, ticket string, stopLoss, takeProfit float64) error
}

// ResponseError marks a transient collaborator failure: a missing or
// malformed snapshot, or a non-success order retcode. The loop retries
// cycles that fail with this kind before giving up.
type ResponseError struct {
	Op      string
	Comment string
}

func (e *ResponseError) Error() string {
	if e.Comment == "" {
		return fmt.Sprintf("terminal: %s failed", e.Op)
	}
	return fmt.Sprintf("terminal: %s failed <= %s", e.Op, e.Comment)
}

func NewResponseError(op, comment string) error {
	return &ResponseError{Op: op, Comment: comment}
}

// IsResponse reports whether err is (or wraps) a transient response error.
func IsResponse(err error) bool {
	var re *ResponseError
	return errors.As(err, &re)
}
