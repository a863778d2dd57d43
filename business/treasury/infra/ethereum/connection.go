package ethereum

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/treasury-bot/business/treasury/app"
	"github.com/fd1az/treasury-bot/business/treasury/domain"
	"github.com/fd1az/treasury-bot/internal/apperror"
	"github.com/fd1az/treasury-bot/internal/logger"
)

const (
	tracerName = "github.com/fd1az/treasury-bot/business/treasury/infra/ethereum"
	meterName  = "github.com/fd1az/treasury-bot/business/treasury/infra/ethereum"
)

// ManagerConfig holds connection manager configuration.
type ManagerConfig struct {
	ChainID     uint64
	PrivateKey  string
	DialTimeout time.Duration
}

// Connection owns a live client bound to one endpoint. Connections are
// replaced, never mutated, when the endpoint changes.
type Connection struct {
	Endpoint domain.Endpoint
	Client   app.EthClient

	close func()
}

// Close releases the underlying client.
func (c *Connection) Close() {
	if c.close != nil {
		c.close()
	}
}

// dialFunc opens a raw client for one endpoint URL and returns it with its
// release function. Production uses ethclient; tests substitute a fake.
type dialFunc func(ctx context.Context, url string) (app.EthClient, func(), error)

func ethclientDial(ctx context.Context, url string) (app.EthClient, func(), error) {
	client, err := ethclient.DialContext(ctx, url)
	if err != nil {
		return nil, nil, err
	}
	return client, client.Close, nil
}

// Manager holds the single active connection and the signing identity bound
// to it. Failed connections are replaced by cycling through the endpoint
// pool; re-initialization is serialized so concurrent failures wait for one
// re-init instead of racing the cursor.
type Manager struct {
	config ManagerConfig
	pool   *domain.Pool
	nonces *Sequencer
	logger logger.LoggerInterface
	dial   dialFunc

	mu     sync.Mutex
	active *Connection
	signer *SigningIdentity

	tracer trace.Tracer
}

// NewManager creates a connection manager over the endpoint pool. The
// sequencer is resynchronized from the network on every (re)connect.
func NewManager(cfg ManagerConfig, pool *domain.Pool, nonces *Sequencer, log logger.LoggerInterface) *Manager {
	return &Manager{
		config: cfg,
		pool:   pool,
		nonces: nonces,
		logger: log,
		dial:   ethclientDial,
		tracer: otel.Tracer(tracerName),
	}
}

// Acquire returns the active connection and signing identity, initializing
// them lazily. Initialization tries each pool endpoint in order, up to
// 2×pool size attempts; past that the process cannot proceed without a
// signer and a fatal connectivity error is returned.
func (m *Manager) Acquire(ctx context.Context) (*Connection, *SigningIdentity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.active != nil {
		return m.active, m.signer, nil
	}

	ctx, span := m.tracer.Start(ctx, "connection.init")
	defer span.End()

	maxAttempts := 2 * m.pool.Size()
	var lastErr error

	for attempt := 0; attempt < maxAttempts; attempt++ {
		endpoint := m.pool.Current()

		conn, err := m.connect(ctx, endpoint)
		if err != nil {
			lastErr = err
			m.logger.Warn(ctx, "endpoint init failed, advancing pool",
				"endpoint", endpoint.URL, "attempt", attempt+1, "error", err)
			span.AddEvent("endpoint_failed",
				trace.WithAttributes(attribute.String("url", endpoint.URL)))
			m.pool.Advance()
			continue
		}

		m.active = conn
		span.SetAttributes(attribute.String("endpoint", endpoint.URL))
		span.SetStatus(codes.Ok, "connected")
		m.logger.Info(ctx, "treasury connection established",
			"endpoint", endpoint.URL,
			"address", m.signer.Address().Hex(),
			"next_nonce", m.nonces.Current())
		return m.active, m.signer, nil
	}

	span.SetStatus(codes.Error, "all endpoints failed")
	return nil, nil, apperror.New(apperror.CodeConnectivityError,
		apperror.WithCause(lastErr),
		apperror.WithContext(fmt.Sprintf("no endpoint reachable after %d attempts", maxAttempts)))
}

// connect dials endpoint, verifies the chain id, derives the signing
// identity on first use, and resynchronizes the nonce counter from the
// network's pending transaction count.
func (m *Manager) connect(ctx context.Context, endpoint domain.Endpoint) (*Connection, error) {
	dialCtx, cancel := context.WithTimeout(ctx, m.config.DialTimeout)
	defer cancel()

	client, closeClient, err := m.dial(dialCtx, endpoint.URL)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", endpoint.URL, err)
	}

	// Reject endpoints silently serving a different network.
	chainID, err := client.ChainID(dialCtx)
	if err != nil {
		closeClient()
		return nil, fmt.Errorf("chain id probe: %w", err)
	}
	if chainID.Cmp(new(big.Int).SetUint64(endpoint.ChainID)) != 0 {
		closeClient()
		return nil, apperror.New(apperror.CodeChainIDMismatch,
			apperror.WithContext(fmt.Sprintf("endpoint %s reports chain %s, want %d",
				endpoint.URL, chainID, endpoint.ChainID)))
	}

	if m.signer == nil {
		signer, err := NewSigningIdentity(m.config.PrivateKey, m.config.ChainID)
		if err != nil {
			closeClient()
			return nil, err
		}
		m.signer = signer
	}

	pending, err := client.PendingNonceAt(dialCtx, m.signer.Address())
	if err != nil {
		closeClient()
		return nil, fmt.Errorf("nonce sync: %w", err)
	}
	m.nonces.Resync(pending)

	return &Connection{
		Endpoint: endpoint,
		Client:   client,
		close:    closeClient,
	}, nil
}

// Invalidate drops conn if it is still the active connection and advances
// the pool cursor so the next Acquire dials the following endpoint. Stale
// invalidations (a concurrent caller already replaced the connection) are
// no-ops.
func (m *Manager) Invalidate(ctx context.Context, conn *Connection) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.active == nil || m.active != conn {
		return
	}

	m.logger.Warn(ctx, "invalidating connection", "endpoint", conn.Endpoint.URL)
	m.active.Close()
	m.active = nil
	m.pool.Advance()
}

// DialAlternate opens a one-off connection to the endpoint after the
// current cursor, for balance cross-validation against an independent
// source. The caller owns the connection and must Close it.
func (m *Manager) DialAlternate(ctx context.Context) (*Connection, error) {
	m.mu.Lock()
	endpoint := m.pool.Peek(1)
	m.mu.Unlock()

	dialCtx, cancel := context.WithTimeout(ctx, m.config.DialTimeout)
	defer cancel()

	client, closeClient, err := m.dial(dialCtx, endpoint.URL)
	if err != nil {
		return nil, apperror.New(apperror.CodeRPCError,
			apperror.WithCause(err),
			apperror.WithContext("failed to dial alternate endpoint"))
	}

	return &Connection{
		Endpoint: endpoint,
		Client:   client,
		close:    closeClient,
	}, nil
}

// Address returns the published treasury address; ok is false until the
// signing identity has been derived by the first successful Acquire.
func (m *Manager) Address() (common.Address, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.signer == nil {
		return common.Address{}, false
	}
	return m.signer.Address(), true
}

// Close releases the active connection.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.active != nil {
		m.active.Close()
		m.active = nil
	}
}
