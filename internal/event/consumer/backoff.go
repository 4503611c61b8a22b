package consumer

import (
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// DefaultReconnectDelay is the constant wait between reconnect attempts.
const DefaultReconnectDelay = 5 * time.Second

// Strategy names a reconnect backoff policy.
type Strategy string

const (
	StrategyConstant    Strategy = "constant"
	StrategyExponential Strategy = "exponential"
)

// BackoffConfig configures the reconnect policy.
type BackoffConfig struct {
	Strategy Strategy      `env:"RECONNECT_STRATEGY" envDefault:"constant"`
	Delay    time.Duration `env:"RECONNECT_DELAY" envDefault:"5s"`
	MaxDelay time.Duration `env:"RECONNECT_MAX_DELAY" envDefault:"1m"`
}

// NewBackOff builds the reconnect policy. The constant strategy waits Delay
// every time. The exponential strategy starts at Delay, grows with jitter,
// and is capped at MaxDelay.
func NewBackOff(config BackoffConfig) (backoff.BackOff, error) {
	if config.Delay <= 0 {
		config.Delay = DefaultReconnectDelay
	}

	switch config.Strategy {
	case StrategyConstant, "":
		return backoff.NewConstantBackOff(config.Delay), nil
	case StrategyExponential:
		b := backoff.NewExponentialBackOff()
		b.InitialInterval = config.Delay
		if config.MaxDelay > config.Delay {
			b.MaxInterval = config.MaxDelay
		} else {
			b.MaxInterval = config.Delay
		}
		b.Reset()
		return b, nil
	default:
		return nil, fmt.Errorf("unknown reconnect strategy %q", config.Strategy)
	}
}
