package payment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/niksmo/stylehub/internal/core/port"
)

var _ port.PaymentProcessor = (*Simulator)(nil)

var ErrDeclined = errors.New("payment declined")

const defaultDelay = 2 * time.Second

// Simulator stands in for a payment gateway: it waits and then approves,
// or declines with the configured probability.
type Simulator struct {
	delay       time.Duration
	failureRate float64
	randFloat   func() float64
}

type Opt func(*Simulator)

func DelayOpt(d time.Duration) Opt {
	return func(s *Simulator) {
		if d >= 0 {
			s.delay = d
		}
	}
}

// FailureRateOpt sets the decline probability, clamped to [0, 1].
func FailureRateOpt(rate float64) Opt {
	return func(s *Simulator) {
		s.failureRate = min(max(rate, 0), 1)
	}
}

func New(opts ...Opt) *Simulator {
	s := &Simulator{delay: defaultDelay, randFloat: rand.Float64}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Simulator) Process(ctx context.Context, req port.PaymentRequest) error {
	const op = "Simulator.Process"
	log := slog.With("op", op, "orderID", req.OrderID)

	if s.delay > 0 {
		timer := time.NewTimer(s.delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return fmt.Errorf("%s: %w", op, ctx.Err())
		case <-timer.C:
		}
	}

	if s.failureRate > 0 && s.randFloat() < s.failureRate {
		log.Info("payment declined", "amount", req.Amount)
		return fmt.Errorf("%s: %w", op, ErrDeclined)
	}

	log.Info("payment approved", "amount", req.Amount)
	return nil
}
