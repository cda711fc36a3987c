// internal/eventlistener/types.go
package eventlistener

import (
	"context"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// Notification is one program-account change delivered by a subscription.
type Notification struct {
	Account solana.PublicKey
	Data    []byte
	Slot    uint64
}

// Registration describes a long-lived programSubscribe request.
type Registration struct {
	Name       string
	ProgramID  solana.PublicKey
	Commitment rpc.CommitmentType
	Filters    []rpc.RPCFilter
}

// Source delivers notifications for a registration, one at a time, until ctx is done
// or the transport fails. The returned channel is closed in both cases.
type Source interface {
	Subscribe(ctx context.Context, reg Registration) (<-chan Notification, error)
}

// DialOptions controls how the initial websocket connection is retried.
type DialOptions struct {
	InitialInterval time.Duration
	MaxInterval     time.Duration
	MaxTries        uint
}

const (
	defaultInitialInterval = 200 * time.Millisecond
	defaultMaxInterval     = 5 * time.Second
	defaultMaxTries        = 5
	notificationBuffer     = 128
)

// DefaultDialOptions returns the dial retry policy used by the listener binary.
func DefaultDialOptions() DialOptions {
	return DialOptions{
		InitialInterval: defaultInitialInterval,
		MaxInterval:     defaultMaxInterval,
		MaxTries:        defaultMaxTries,
	}
}

// DataSizeFilter matches accounts whose data is exactly size bytes.
func DataSizeFilter(size uint64) rpc.RPCFilter {
	return rpc.RPCFilter{DataSize: size}
}

// MemcmpFilter matches accounts holding b at offset.
func MemcmpFilter(offset uint64, b []byte) rpc.RPCFilter {
	return rpc.RPCFilter{
		Memcmp: &rpc.RPCFilterMemcmp{
			Offset: offset,
			Bytes:  solana.Base58(b),
		},
	}
}
