package eventlistener

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockWSServer struct {
	server *httptest.Server

	mu       sync.Mutex
	requests []string
}

// newMockWSServer acknowledges every programSubscribe and then pushes one notification per account.
func newMockWSServer(t *testing.T, accounts []solana.PublicKey, data []byte) *mockWSServer {
	t.Helper()
	mock := &mockWSServer{}
	upgrader := websocket.Upgrader{}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		var subID uint64 = 100
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			mock.mu.Lock()
			mock.requests = append(mock.requests, string(msg))
			mock.mu.Unlock()

			var req struct {
				ID     uint64 `json:"id"`
				Method string `json:"method"`
			}
			if err := json.Unmarshal(msg, &req); err != nil || req.Method != "programSubscribe" {
				continue
			}

			subID++
			if err := conn.WriteJSON(map[string]interface{}{
				"jsonrpc": "2.0",
				"result":  subID,
				"id":      req.ID,
			}); err != nil {
				return
			}

			for i, account := range accounts {
				notification := map[string]interface{}{
					"jsonrpc": "2.0",
					"method":  "programNotification",
					"params": map[string]interface{}{
						"subscription": subID,
						"result": map[string]interface{}{
							"context": map[string]interface{}{"slot": 1000 + i},
							"value": map[string]interface{}{
								"pubkey": account.String(),
								"account": map[string]interface{}{
									"data":       []string{base64.StdEncoding.EncodeToString(data), "base64"},
									"executable": false,
									"lamports":   6124800,
									"owner":      "675kPX9MHTjS2zt1qfr1NYHuzeLXfQM9H24wFSUt1Mp8",
									"rentEpoch":  0,
								},
							},
						},
					},
				}
				if err := conn.WriteJSON(notification); err != nil {
					return
				}
			}
		}
	}))

	return mock
}

func (m *mockWSServer) URL() string {
	return "ws" + strings.TrimPrefix(m.server.URL, "http")
}

func (m *mockWSServer) Requests() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.requests))
	copy(out, m.requests)
	return out
}

func (m *mockWSServer) Close() {
	m.server.Close()
}

func testDialOptions() DialOptions {
	return DialOptions{
		InitialInterval: time.Millisecond,
		MaxInterval:     5 * time.Millisecond,
		MaxTries:        2,
	}
}

func TestEventListenerDeliversNotifications(t *testing.T) {
	accounts := []solana.PublicKey{
		solana.NewWallet().PublicKey(),
		solana.NewWallet().PublicKey(),
	}
	payload := []byte{6, 0, 0, 0, 0, 0, 0, 0, 42}

	mock := newMockWSServer(t, accounts, payload)
	defer mock.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	listener, err := NewEventListener(ctx, mock.URL(), testDialOptions(), zap.NewNop())
	require.NoError(t, err)
	defer listener.Close()

	notifications, err := listener.Subscribe(ctx, Registration{
		Name:       "raydium",
		ProgramID:  solana.MPK("675kPX9MHTjS2zt1qfr1NYHuzeLXfQM9H24wFSUt1Mp8"),
		Commitment: rpc.CommitmentConfirmed,
		Filters: []rpc.RPCFilter{
			DataSizeFilter(752),
			MemcmpFilter(0, []byte{6, 0, 0, 0, 0, 0, 0, 0}),
		},
	})
	require.NoError(t, err)

	for i, account := range accounts {
		select {
		case n, ok := <-notifications:
			require.True(t, ok, "channel closed early")
			assert.Equal(t, account, n.Account)
			assert.Equal(t, payload, n.Data)
			assert.Equal(t, uint64(1000+i), n.Slot)
		case <-ctx.Done():
			t.Fatal("timed out waiting for notification")
		}
	}

	requests := mock.Requests()
	require.NotEmpty(t, requests)
	assert.Contains(t, requests[0], `"programSubscribe"`)
	assert.Contains(t, requests[0], `"dataSize":752`)
	assert.Contains(t, requests[0], `"memcmp"`)
	assert.Contains(t, requests[0], `"commitment":"confirmed"`)
}

func TestEventListenerChannelClosesOnCancel(t *testing.T) {
	mock := newMockWSServer(t, nil, nil)
	defer mock.Close()

	listener, err := NewEventListener(context.Background(), mock.URL(), testDialOptions(), zap.NewNop())
	require.NoError(t, err)
	defer listener.Close()

	ctx, cancel := context.WithCancel(context.Background())
	notifications, err := listener.Subscribe(ctx, Registration{
		Name:       "openbook",
		ProgramID:  solana.MPK("srmqPvymJeFKQ4zGQed1GFppgkRHL9kaELCbyksJtPX"),
		Commitment: rpc.CommitmentConfirmed,
	})
	require.NoError(t, err)

	cancel()
	select {
	case _, ok := <-notifications:
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("channel was not closed after cancellation")
	}
}

func TestEventListenerCloseThenCancel(t *testing.T) {
	mock := newMockWSServer(t, nil, nil)
	defer mock.Close()

	listener, err := NewEventListener(context.Background(), mock.URL(), testDialOptions(), zap.NewNop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	notifications, err := listener.Subscribe(ctx, Registration{
		Name:       "raydium",
		ProgramID:  solana.MPK("675kPX9MHTjS2zt1qfr1NYHuzeLXfQM9H24wFSUt1Mp8"),
		Commitment: rpc.CommitmentConfirmed,
	})
	require.NoError(t, err)

	// tear the client down first, then cancel; neither order may panic
	listener.Close()
	cancel()
	listener.Close()

	select {
	case _, ok := <-notifications:
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("channel was not closed after teardown")
	}
}

func TestNewEventListenerDialFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	srv.Close()

	_, err := NewEventListener(context.Background(), url, testDialOptions(), zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to connect")
}

func TestFilters(t *testing.T) {
	size := DataSizeFilter(388)
	assert.Equal(t, uint64(388), size.DataSize)
	assert.Nil(t, size.Memcmp)

	mint := solana.MPK("So11111111111111111111111111111111111111112")
	memcmp := MemcmpFilter(85, mint.Bytes())
	require.NotNil(t, memcmp.Memcmp)
	assert.Equal(t, uint64(85), memcmp.Memcmp.Offset)
	assert.Equal(t, solana.Base58(mint.Bytes()), memcmp.Memcmp.Bytes)
}
