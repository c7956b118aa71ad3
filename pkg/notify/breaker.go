package notify

import (
	"context"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// BreakerConfig tunes BreakerSender.
type BreakerConfig struct {
	Name string
	// Failures is the count of consecutive failures that opens the breaker.
	Failures uint32
	// Timeout is how long the breaker stays open before probing again.
	Timeout time.Duration
}

// BreakerSender short-circuits a failing sender so a dead mail server
// does not hold workers for every message.
type BreakerSender struct {
	next Sender
	cb   *gobreaker.CircuitBreaker
}

// NewBreakerSender wraps next with a circuit breaker.
func NewBreakerSender(next Sender, cfg BreakerConfig, logger *zap.Logger) *BreakerSender {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Name == "" {
		cfg.Name = "notify"
	}
	if cfg.Failures == 0 {
		cfg.Failures = 3
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = time.Minute
	}
	failures := cfg.Failures
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: 1,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("notification breaker state changed", zap.String("breaker", name), zap.String("from", from.String()), zap.String("to", to.String()))
		},
	})
	return &BreakerSender{next: next, cb: cb}
}

// Send forwards to the wrapped sender unless the breaker is open.
func (s *BreakerSender) Send(ctx context.Context, msg Message) error {
	_, err := s.cb.Execute(func() (interface{}, error) {
		return nil, s.next.Send(ctx, msg)
	})
	return err
}

// State exposes the breaker state.
func (s *BreakerSender) State() gobreaker.State {
	return s.cb.State()
}
