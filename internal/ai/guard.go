package ai

import (
	"context"
	"errors"
	"time"

	"cineverse/internal/logger"
	"cineverse/internal/metrics"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"
)

// ErrRejected means the call never reached the model: the breaker is open
// or the rate limit was not met before the context ended.
var ErrRejected = errors.New("ai: call rejected")

// guarded wraps a Model with a circuit breaker and a rate limiter.
type guarded struct {
	model   Model
	cb      *gobreaker.CircuitBreaker[string]
	limiter *rate.Limiter
}

// Guard protects m. ratePerMin <= 0 disables rate limiting.
func Guard(m Model, ratePerMin int) Model {
	name := "ai-" + m.Name()
	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)

	cb := gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Get().WithFields(logrus.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("circuit breaker state change")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateValue(to))
		},
	})

	limiter := rate.NewLimiter(rate.Inf, 0)
	if ratePerMin > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(ratePerMin)), ratePerMin)
	}

	return &guarded{model: m, cb: cb, limiter: limiter}
}

func (g *guarded) Generate(ctx context.Context, prompt string, opts *GenerationOptions) (string, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return "", errors.Join(ErrRejected, err)
	}
	out, err := g.cb.Execute(func() (string, error) {
		return g.model.Generate(ctx, prompt, opts)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return "", errors.Join(ErrRejected, err)
	}
	return out, err
}

func (g *guarded) Name() string {
	return g.model.Name()
}

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
