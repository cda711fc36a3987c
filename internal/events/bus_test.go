package events

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newPoolEvent(id string) PoolDetectedEvent {
	return PoolDetectedEvent{
		BaseEvent: BaseEvent{EventType: PoolDetected, EventTime: time.Now()},
		PoolID:    id,
	}
}

func TestBusPublishDeliversInOrder(t *testing.T) {
	bus := NewBus(zap.NewNop(), 16)

	var mu sync.Mutex
	var got []string
	bus.SubscribeFunc(PoolDetected, func(_ context.Context, e Event) error {
		mu.Lock()
		got = append(got, e.(PoolDetectedEvent).PoolID)
		mu.Unlock()
		return nil
	})

	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, bus.Publish(newPoolEvent(id)))
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, bus.Shutdown(ctx))

	assert.Equal(t, []string{"a", "b", "c"}, got)
}

func TestBusOnlyMatchingTypeReceives(t *testing.T) {
	bus := NewBus(zap.NewNop(), 4)
	defer bus.Shutdown(context.Background())

	var marketCalls int
	bus.SubscribeFunc(MarketDetected, func(context.Context, Event) error {
		marketCalls++
		return nil
	})

	require.NoError(t, bus.PublishSync(context.Background(), newPoolEvent("p")))
	assert.Equal(t, 0, marketCalls)
}

func TestBusPublishSyncCollectsErrors(t *testing.T) {
	bus := NewBus(zap.NewNop(), 4)
	defer bus.Shutdown(context.Background())

	boom := errors.New("boom")
	bus.SubscribeFunc(PoolDetected, func(context.Context, Event) error { return boom })
	bus.SubscribeFunc(PoolDetected, func(context.Context, Event) error { return nil })

	err := bus.PublishSync(context.Background(), newPoolEvent("p"))
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}

func TestBusUnsubscribe(t *testing.T) {
	bus := NewBus(zap.NewNop(), 4)
	defer bus.Shutdown(context.Background())

	sub := bus.SubscribeFunc(PoolSkipped, func(context.Context, Event) error { return nil })
	assert.Equal(t, 1, bus.SubscriberCount(PoolSkipped))

	sub.Unsubscribe()
	assert.Equal(t, 0, bus.SubscriberCount(PoolSkipped))
}

func TestBusPublishAfterShutdown(t *testing.T) {
	bus := NewBus(zap.NewNop(), 4)
	require.NoError(t, bus.Shutdown(context.Background()))

	assert.ErrorIs(t, bus.Publish(newPoolEvent("late")), ErrBusClosed)
}

func TestBusFullBufferDrops(t *testing.T) {
	bus := NewBus(zap.NewNop(), 1)
	defer bus.Shutdown(context.Background())

	release := make(chan struct{})
	started := make(chan struct{}, 1)
	bus.SubscribeFunc(PoolDetected, func(context.Context, Event) error {
		select {
		case started <- struct{}{}:
		default:
		}
		<-release
		return nil
	})

	require.NoError(t, bus.Publish(newPoolEvent("1")))
	<-started // dispatcher is now blocked in the handler
	require.NoError(t, bus.Publish(newPoolEvent("2")))

	assert.ErrorIs(t, bus.Publish(newPoolEvent("3")), ErrBusFull)
	close(release)
}

func TestBusAcceptedEventsAreHandledAcrossShutdown(t *testing.T) {
	for i := 0; i < 50; i++ {
		bus := NewBus(zap.NewNop(), 1024)

		var handled atomic.Int64
		bus.SubscribeFunc(PoolDetected, func(context.Context, Event) error {
			handled.Add(1)
			return nil
		})

		var accepted atomic.Int64
		var wg sync.WaitGroup
		for p := 0; p < 4; p++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := 0; j < 50; j++ {
					if bus.Publish(newPoolEvent("p")) == nil {
						accepted.Add(1)
					}
				}
			}()
		}

		require.NoError(t, bus.Shutdown(context.Background()))
		wg.Wait()

		assert.Equal(t, accepted.Load(), handled.Load(), "iteration %d", i)
	}
}
