// internal/eventlistener/listener.go
package eventlistener

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc/ws"
	"go.uber.org/zap"
)

// EventListener streams program-account notifications over a single websocket connection.
type EventListener struct {
	client    *ws.Client
	logger    *zap.Logger
	wsURL     string
	closeOnce sync.Once
}

var _ Source = (*EventListener)(nil)

// ErrSubscriptionClosed is reported when a subscription stream ends without an error.
var ErrSubscriptionClosed = errors.New("subscription closed")

// NewEventListener connects to wsURL, retrying the dial with exponential backoff.
func NewEventListener(ctx context.Context, wsURL string, opts DialOptions, logger *zap.Logger) (*EventListener, error) {
	logger = logger.Named("event-listener")

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = opts.InitialInterval
	policy.MaxInterval = opts.MaxInterval

	notify := func(err error, d time.Duration) {
		logger.Warn("Websocket dial failed, retrying",
			zap.String("url", wsURL),
			zap.Duration("backoff", d),
			zap.Error(err))
	}

	client, err := backoff.Retry(ctx, func() (*ws.Client, error) {
		return ws.Connect(ctx, wsURL)
	},
		backoff.WithBackOff(policy),
		backoff.WithMaxTries(opts.MaxTries),
		backoff.WithNotify(notify))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", wsURL, err)
	}

	logger.Info("Websocket connected", zap.String("url", wsURL))
	return &EventListener{
		client: client,
		logger: logger,
		wsURL:  wsURL,
	}, nil
}

// Subscribe registers reg and pumps its notifications into the returned channel from one goroutine.
func (el *EventListener) Subscribe(ctx context.Context, reg Registration) (<-chan Notification, error) {
	sub, err := el.client.ProgramSubscribeWithOpts(reg.ProgramID, reg.Commitment, solana.EncodingBase64, reg.Filters)
	if err != nil {
		return nil, fmt.Errorf("program subscribe %s: %w", reg.Name, err)
	}

	logger := el.logger.With(
		zap.String("registration", reg.Name),
		zap.String("program_id", reg.ProgramID.String()))
	logger.Info("Subscribed to program account changes",
		zap.String("commitment", string(reg.Commitment)),
		zap.Int("filters", len(reg.Filters)))

	var unsubscribeOnce sync.Once
	unsubscribe := func() {
		unsubscribeOnce.Do(func() {
			// the stream may already be closed by a client teardown
			defer func() { _ = recover() }()
			sub.Unsubscribe()
		})
	}

	out := make(chan Notification, notificationBuffer)
	done := make(chan struct{})

	// Recv does not observe ctx, so cancellation unblocks it by unsubscribing.
	go func() {
		select {
		case <-ctx.Done():
			unsubscribe()
		case <-done:
		}
	}()

	go func() {
		defer close(out)
		defer close(done)
		defer unsubscribe()

		for {
			if ctx.Err() != nil {
				return
			}
			got, err := recvProgram(sub)
			if err != nil {
				if ctx.Err() == nil {
					logger.Error("Subscription terminated", zap.Error(err))
				}
				return
			}
			if got == nil || got.Value.Account == nil || got.Value.Account.Data == nil {
				logger.Debug("Notification without account data")
				continue
			}

			n := Notification{
				Account: got.Value.Pubkey,
				Data:    got.Value.Account.Data.GetBinary(),
				Slot:    got.Context.Slot,
			}
			select {
			case out <- n:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, nil
}

// recvProgram waits for the next notification. Recv panics once the stream is closed,
// which is reported as ErrSubscriptionClosed.
func recvProgram(sub *ws.ProgramSubscription) (res *ws.ProgramResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			res, err = nil, ErrSubscriptionClosed
		}
	}()
	return sub.Recv()
}

// Close shuts the websocket connection down. Open subscriptions end with an error.
func (el *EventListener) Close() {
	el.closeOnce.Do(func() {
		el.client.Close()
		el.logger.Info("Websocket closed", zap.String("url", el.wsURL))
	})
}
