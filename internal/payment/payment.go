// Package payment charges orders. Only a deterministic stub exists: it
// accepts or declines purely on the payment method name.
package payment

import (
	"context"

	"github.com/shopspring/decimal"
)

// Processor charges amount using method and reports whether it was accepted.
// An error means the outcome is unknown, not that the charge was declined.
type Processor interface {
	Charge(ctx context.Context, method string, amount decimal.Decimal) (bool, error)
}

type StubProcessor struct {
	accepted map[string]struct{}
}

func NewStubProcessor(methods ...string) *StubProcessor {
	accepted := make(map[string]struct{}, len(methods))
	for _, m := range methods {
		accepted[m] = struct{}{}
	}
	return &StubProcessor{accepted: accepted}
}

func (p *StubProcessor) Charge(ctx context.Context, method string, amount decimal.Decimal) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	_, ok := p.accepted[method]
	return ok, nil
}
