package relay

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/guirluz/rental-backend/internal/app"
	"github.com/guirluz/rental-backend/internal/utils/logger"
	"go.uber.org/zap"
)

type State string

const (
	StateStarting  State = "starting"
	StateListening State = "listening"
	StateDraining  State = "draining"
	StateStopped   State = "stopped"
)

// Source is the progress-channel subscription the relay listens on.
type Source interface {
	Subscribe(ctx context.Context) (<-chan string, error)
	Close() error
}

// Relay bridges the progress channel to live push connections. It is a single
// long-lived subscriber: each received message is decoded and forwarded
// verbatim to the broadcaster; malformed messages are logged and dropped.
// On transport loss it resubscribes with bounded exponential backoff before
// giving up.
type Relay struct {
	source      Source
	broadcaster app.Broadcaster

	maxAttempts int
	baseBackoff time.Duration

	mu    sync.Mutex
	state State
}

func CreateRelay(source Source, broadcaster app.Broadcaster) *Relay {
	return &Relay{
		source:      source,
		broadcaster: broadcaster,
		maxAttempts: 5,
		baseBackoff: 500 * time.Millisecond,
		state:       StateStarting,
	}
}

func (r *Relay) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.state
}

func (r *Relay) setState(state State) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.state = state
}

// Run blocks until ctx is cancelled or the subscription is lost beyond
// recovery. Cancellation drains in-flight messages and releases the
// subscription before returning.
func (r *Relay) Run(ctx context.Context) error {
	const funcName = "Relay.Run"

	attempt := 0
	for {
		messages, err := r.source.Subscribe(ctx)
		if err != nil {
			attempt++
			if attempt > r.maxAttempts || ctx.Err() != nil {
				logger.Error("progress channel subscription lost, giving up",
					zap.String("function", funcName),
					zap.Int("attempts", attempt),
					zap.Error(err),
				)
				r.setState(StateStopped)
				return err
			}

			backoff := r.baseBackoff << (attempt - 1)
			logger.Warn("progress channel subscribe failed, retrying",
				zap.String("function", funcName),
				zap.Int("attempt", attempt),
				zap.Duration("backoff", backoff),
				zap.Error(err),
			)

			select {
			case <-ctx.Done():
				r.setState(StateStopped)
				return ctx.Err()
			case <-time.After(backoff):
			}
			continue
		}

		attempt = 0
		r.setState(StateListening)
		logger.Info("relay subscribed to progress channel",
			zap.String("function", funcName),
		)

		lost := r.listen(ctx, messages)
		if !lost {
			return nil
		}

		attempt++
		if attempt > r.maxAttempts {
			logger.Error("progress channel connection lost, giving up",
				zap.String("function", funcName),
				zap.Int("attempts", attempt),
			)
			r.setState(StateStopped)
			return context.Canceled
		}

		backoff := r.baseBackoff << (attempt - 1)
		logger.Warn("progress channel connection lost, resubscribing",
			zap.String("function", funcName),
			zap.Duration("backoff", backoff),
		)

		select {
		case <-ctx.Done():
			r.drain(nil)
			return ctx.Err()
		case <-time.After(backoff):
		}
	}
}

// listen consumes messages until cancellation or channel loss. Returns true
// when the transport was lost and a resubscribe should be attempted.
func (r *Relay) listen(ctx context.Context, messages <-chan string) bool {
	for {
		select {
		case <-ctx.Done():
			r.drain(messages)
			return false
		case payload, ok := <-messages:
			if !ok {
				_ = r.source.Close()
				return true
			}
			r.forward(payload)
		}
	}
}

// drain closes the subscription and forwards whatever was already in flight.
func (r *Relay) drain(messages <-chan string) {
	const funcName = "Relay.drain"

	r.setState(StateDraining)
	if err := r.source.Close(); err != nil {
		logger.Warn("failed to close progress channel subscription",
			zap.String("function", funcName),
			zap.Error(err),
		)
	}

	if messages != nil {
		for payload := range messages {
			r.forward(payload)
		}
	}

	r.setState(StateStopped)
	logger.Info("relay stopped",
		zap.String("function", funcName),
	)
}

func (r *Relay) forward(payload string) {
	const funcName = "Relay.forward"

	var message map[string]any
	if err := json.Unmarshal([]byte(payload), &message); err != nil {
		logger.Error("dropping malformed progress message",
			zap.String("function", funcName),
			zap.Error(err),
		)
		return
	}

	r.broadcaster.Broadcast(message)

	logger.Debug("progress message relayed",
		zap.String("function", funcName),
	)
}
