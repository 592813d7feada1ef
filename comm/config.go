package comm

import (
	"fmt"
	"time"

	"github.com/hmolavi/PlantProtector/logger"
)

// Default transport timing and retry values, matching the reference
// firmware.
const (
	// DefaultAckTimeout is the wall-clock budget for the send-and-await-ack
	// cycle.
	DefaultAckTimeout = 10 * time.Second

	// DefaultPollInterval is the delay between bus poll attempts.
	DefaultPollInterval = 100 * time.Millisecond

	// DefaultReplyRetryLimit is the number of reply receive attempts for
	// read-type commands.
	DefaultReplyRetryLimit = 5
)

// Configuration range limits.
const (
	MinAckTimeout = 100 * time.Millisecond
	MaxAckTimeout = 120 * time.Second

	MinPollInterval = time.Millisecond
	MaxPollInterval = time.Second

	MaxReplyRetryLimit = 31
)

// TransportConfig holds the retry and timeout configuration shared by the
// initiator and responder roles. Construct it with NewTransportConfig; the
// zero value is not usable.
//
// The configuration is an explicit value owned by the transport that holds
// it; there is no package-level mutable transport state.
type TransportConfig struct {
	// ackTimeout bounds the send-and-await-ack loop.
	ackTimeout time.Duration

	// pollInterval is the delay between poll attempts.
	pollInterval time.Duration

	// replyRetryLimit bounds the reply receive loop for read commands.
	replyRetryLimit int

	logger logger.Logger
}

// NewTransportConfig creates a transport configuration with defaults
// matching the reference firmware, then applies opts in order.
func NewTransportConfig(opts ...TransportOption) (*TransportConfig, error) {
	cfg := &TransportConfig{
		ackTimeout:      DefaultAckTimeout,
		pollInterval:    DefaultPollInterval,
		replyRetryLimit: DefaultReplyRetryLimit,
		logger:          logger.GetLogger(),
	}

	for _, opt := range opts {
		if err := opt.apply(cfg); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// AckTimeout returns the wall-clock acknowledgement budget.
func (cfg *TransportConfig) AckTimeout() time.Duration { return cfg.ackTimeout }

// PollInterval returns the delay between poll attempts.
func (cfg *TransportConfig) PollInterval() time.Duration { return cfg.pollInterval }

// ReplyRetryLimit returns the reply receive attempt budget.
func (cfg *TransportConfig) ReplyRetryLimit() int { return cfg.replyRetryLimit }

// Logger returns the configured logger.
func (cfg *TransportConfig) Logger() logger.Logger { return cfg.logger }

// TransportOption configures a TransportConfig.
type TransportOption interface {
	apply(cfg *TransportConfig) error
}

type transportOptFunc func(cfg *TransportConfig) error

func (f transportOptFunc) apply(cfg *TransportConfig) error {
	return f(cfg)
}

// WithAckTimeout sets the wall-clock budget for the send-and-await-ack
// cycle. The timeout must be within [MinAckTimeout, MaxAckTimeout].
func WithAckTimeout(timeout time.Duration) TransportOption {
	return transportOptFunc(func(cfg *TransportConfig) error {
		if timeout < MinAckTimeout || timeout > MaxAckTimeout {
			return fmt.Errorf("%w: ack timeout %s out of range [%s, %s]",
				ErrInvalidParam, timeout, MinAckTimeout, MaxAckTimeout)
		}
		cfg.ackTimeout = timeout

		return nil
	})
}

// WithPollInterval sets the delay between bus poll attempts. The interval
// must be within [MinPollInterval, MaxPollInterval].
func WithPollInterval(interval time.Duration) TransportOption {
	return transportOptFunc(func(cfg *TransportConfig) error {
		if interval < MinPollInterval || interval > MaxPollInterval {
			return fmt.Errorf("%w: poll interval %s out of range [%s, %s]",
				ErrInvalidParam, interval, MinPollInterval, MaxPollInterval)
		}
		cfg.pollInterval = interval

		return nil
	})
}

// WithReplyRetryLimit sets the number of reply receive attempts for
// read-type commands. The limit must be within [1, MaxReplyRetryLimit].
func WithReplyRetryLimit(limit int) TransportOption {
	return transportOptFunc(func(cfg *TransportConfig) error {
		if limit < 1 || limit > MaxReplyRetryLimit {
			return fmt.Errorf("%w: reply retry limit %d out of range [1, %d]",
				ErrInvalidParam, limit, MaxReplyRetryLimit)
		}
		cfg.replyRetryLimit = limit

		return nil
	})
}

// WithLogger sets the logger used by the transport role.
func WithLogger(l logger.Logger) TransportOption {
	return transportOptFunc(func(cfg *TransportConfig) error {
		if l == nil {
			return fmt.Errorf("%w: logger is nil", ErrInvalidParam)
		}
		cfg.logger = l

		return nil
	})
}
