package ethereum

import (
	"context"
	"errors"
	"io"
	"math/big"
	"testing"
	"time"

	"github.com/fd1az/treasury-bot/business/treasury/app"
	"github.com/fd1az/treasury-bot/business/treasury/domain"
	"github.com/fd1az/treasury-bot/internal/apperror"
	"github.com/fd1az/treasury-bot/internal/logger"
)

// dialedClient wraps fakeClient so the reported chain id can differ per
// endpoint.
type dialedClient struct {
	*fakeClient
	chainID *big.Int
}

func (c *dialedClient) ChainID(context.Context) (*big.Int, error) {
	return c.chainID, nil
}

// scriptedDialer hands out a scripted client per URL and records every dial.
type scriptedDialer struct {
	clients map[string]app.EthClient
	calls   []string
	closed  int
}

func (d *scriptedDialer) dial(_ context.Context, url string) (app.EthClient, func(), error) {
	d.calls = append(d.calls, url)
	client, ok := d.clients[url]
	if !ok {
		return nil, nil, errors.New("connection refused")
	}
	return client, func() { d.closed++ }, nil
}

func rightChainClient(pendingNonce uint64) *dialedClient {
	return &dialedClient{
		fakeClient: &fakeClient{pendingNonce: pendingNonce},
		chainID:    big.NewInt(testChainID),
	}
}

func newTestManager(t *testing.T, urls []string, dialer *scriptedDialer) (*Manager, *Sequencer) {
	t.Helper()

	pool, err := domain.NewPool(testChainID, urls)
	if err != nil {
		t.Fatal(err)
	}

	nonces := NewSequencer()
	log := logger.New(io.Discard, logger.LevelInfo, "test", nil)
	m := NewManager(ManagerConfig{
		ChainID:     testChainID,
		PrivateKey:  testKey,
		DialTimeout: time.Second,
	}, pool, nonces, log)
	m.dial = dialer.dial

	return m, nonces
}

func TestManager_AcquireFailsOverToNextEndpoint(t *testing.T) {
	dialer := &scriptedDialer{clients: map[string]app.EthClient{
		// "primary" is absent: it refuses the dial.
		"backup": rightChainClient(12),
	}}
	m, nonces := newTestManager(t, []string{"primary", "backup"}, dialer)

	conn, signer, err := m.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if conn.Endpoint.URL != "backup" {
		t.Errorf("connected to %s, want backup", conn.Endpoint.URL)
	}
	if signer == nil {
		t.Fatal("signer not derived")
	}
	if got := nonces.Current(); got != 12 {
		t.Errorf("counter after connect = %d, want 12 (resynced)", got)
	}
	if addr, ok := m.Address(); !ok || addr != signer.Address() {
		t.Errorf("Address() = %s, %t; want %s, true", addr.Hex(), ok, signer.Address().Hex())
	}

	// The connection is reused: a second Acquire must not dial again.
	dials := len(dialer.calls)
	conn2, _, err := m.Acquire(context.Background())
	if err != nil {
		t.Fatalf("second Acquire: %v", err)
	}
	if conn2 != conn {
		t.Error("second Acquire returned a different connection")
	}
	if len(dialer.calls) != dials {
		t.Errorf("second Acquire dialed %d more times", len(dialer.calls)-dials)
	}
}

func TestManager_AcquireExhaustsPool(t *testing.T) {
	dialer := &scriptedDialer{clients: map[string]app.EthClient{}}
	m, _ := newTestManager(t, []string{"a", "b"}, dialer)

	_, _, err := m.Acquire(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if !apperror.HasCode(err, apperror.CodeConnectivityError) {
		t.Errorf("err = %v, want CONNECTIVITY_ERROR", err)
	}
	// Two full passes over the pool, no more.
	if len(dialer.calls) != 4 {
		t.Errorf("dial attempts = %d, want 4", len(dialer.calls))
	}
	if _, ok := m.Address(); ok {
		t.Error("address must not be published without a connection")
	}
}

func TestManager_ChainIDMismatchRejected(t *testing.T) {
	t.Run("fails over past the wrong network", func(t *testing.T) {
		wrong := &dialedClient{fakeClient: &fakeClient{}, chainID: big.NewInt(1)}
		dialer := &scriptedDialer{clients: map[string]app.EthClient{
			"wrong-net": wrong,
			"good":      rightChainClient(3),
		}}
		m, _ := newTestManager(t, []string{"wrong-net", "good"}, dialer)

		conn, _, err := m.Acquire(context.Background())
		if err != nil {
			t.Fatalf("Acquire: %v", err)
		}
		if conn.Endpoint.URL != "good" {
			t.Errorf("connected to %s, want good", conn.Endpoint.URL)
		}
		if dialer.closed != 1 {
			t.Errorf("rejected client closed %d times, want 1", dialer.closed)
		}
	})

	t.Run("only wrong networks is fatal", func(t *testing.T) {
		wrong := &dialedClient{fakeClient: &fakeClient{}, chainID: big.NewInt(1)}
		dialer := &scriptedDialer{clients: map[string]app.EthClient{"wrong-net": wrong}}
		m, _ := newTestManager(t, []string{"wrong-net"}, dialer)

		_, _, err := m.Acquire(context.Background())
		if !apperror.HasCode(err, apperror.CodeConnectivityError) {
			t.Errorf("err = %v, want CONNECTIVITY_ERROR", err)
		}
		if dialer.closed != 2 {
			t.Errorf("rejected clients closed %d times, want 2", dialer.closed)
		}
	})
}

func TestManager_NonceResyncOnReconnect(t *testing.T) {
	dialer := &scriptedDialer{clients: map[string]app.EthClient{
		"a": rightChainClient(5),
		"b": rightChainClient(9),
	}}
	m, nonces := newTestManager(t, []string{"a", "b"}, dialer)

	conn, _, err := m.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if got := nonces.Current(); got != 5 {
		t.Errorf("counter = %d, want 5", got)
	}

	// Dropping the connection advances the cursor; the next Acquire lands
	// on the other endpoint and resyncs from its pending count.
	m.Invalidate(context.Background(), conn)
	conn2, _, err := m.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire after invalidate: %v", err)
	}
	if conn2.Endpoint.URL != "b" {
		t.Errorf("reconnected to %s, want b", conn2.Endpoint.URL)
	}
	if got := nonces.Current(); got != 9 {
		t.Errorf("counter after reconnect = %d, want 9 (resynced)", got)
	}
}

func TestManager_InvalidateStaleIsNoOp(t *testing.T) {
	dialer := &scriptedDialer{clients: map[string]app.EthClient{
		"a": rightChainClient(1),
		"b": rightChainClient(2),
	}}
	m, _ := newTestManager(t, []string{"a", "b"}, dialer)

	conn, _, err := m.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}

	stale := &Connection{Endpoint: conn.Endpoint, Client: conn.Client}
	m.Invalidate(context.Background(), stale)

	dials := len(dialer.calls)
	conn2, _, err := m.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if conn2 != conn {
		t.Error("stale invalidation replaced the active connection")
	}
	if len(dialer.calls) != dials {
		t.Error("stale invalidation forced a redial")
	}
}
