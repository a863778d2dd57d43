package ethereum

import (
	"context"
	"errors"
	"io"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/fd1az/treasury-bot/business/treasury/domain"
	"github.com/fd1az/treasury-bot/internal/apperror"
	"github.com/fd1az/treasury-bot/internal/logger"
)

// Well-known throwaway development key, never funded on a real network.
const testKey = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"

const testChainID = 1337

func gwei(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), big.NewInt(1_000_000_000))
}

func milliEther(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), big.NewInt(1_000_000_000_000_000))
}

// fakeClient is an in-memory EthClient.
type fakeClient struct {
	balance      *big.Int
	pendingNonce uint64
	suggestedTip *big.Int
	baseFee      *big.Int
	tipErr       error
	tipCalls     int

	sendErr    error
	receipt    *types.Receipt
	receiptErr error

	sent []*types.Transaction
}

func (c *fakeClient) ChainID(context.Context) (*big.Int, error) {
	return big.NewInt(testChainID), nil
}

func (c *fakeClient) BalanceAt(context.Context, common.Address, *big.Int) (*big.Int, error) {
	return new(big.Int).Set(c.balance), nil
}

func (c *fakeClient) PendingNonceAt(context.Context, common.Address) (uint64, error) {
	return c.pendingNonce, nil
}

func (c *fakeClient) SuggestGasTipCap(context.Context) (*big.Int, error) {
	c.tipCalls++
	if c.tipErr != nil {
		return nil, c.tipErr
	}
	return c.suggestedTip, nil
}

func (c *fakeClient) HeaderByNumber(context.Context, *big.Int) (*types.Header, error) {
	return &types.Header{BaseFee: c.baseFee, Number: big.NewInt(1)}, nil
}

func (c *fakeClient) SendTransaction(_ context.Context, tx *types.Transaction) error {
	if c.sendErr != nil {
		return c.sendErr
	}
	c.sent = append(c.sent, tx)
	return nil
}

func (c *fakeClient) TransactionReceipt(context.Context, common.Hash) (*types.Receipt, error) {
	if c.receiptErr != nil {
		return nil, c.receiptErr
	}
	return c.receipt, nil
}

// fakeConns hands out one fixed connection.
type fakeConns struct {
	conn        *Connection
	signer      *SigningIdentity
	invalidated int
}

func (f *fakeConns) Acquire(context.Context) (*Connection, *SigningIdentity, error) {
	return f.conn, f.signer, nil
}

func (f *fakeConns) Invalidate(context.Context, *Connection) {
	f.invalidated++
}

func (f *fakeConns) DialAlternate(context.Context) (*Connection, error) {
	return f.conn, nil
}

func (f *fakeConns) Address() (common.Address, bool) {
	return f.signer.Address(), true
}

func newTestEngine(t *testing.T, client *fakeClient) (*Engine, *Sequencer, *fakeConns) {
	t.Helper()

	signer, err := NewSigningIdentity(testKey, testChainID)
	if err != nil {
		t.Fatal(err)
	}

	conns := &fakeConns{
		conn:   &Connection{Endpoint: domain.Endpoint{URL: "fake", ChainID: testChainID}, Client: client},
		signer: signer,
	}

	log := logger.New(io.Discard, logger.LevelInfo, "test", nil)

	fees, err := NewEstimator(EstimatorConfig{MinTipGwei: 5, DefaultGasLimit: 21000}, log)
	if err != nil {
		t.Fatal(err)
	}

	nonces := NewSequencer()
	engine, err := NewEngine(EngineConfig{
		ChainID:             testChainID,
		SafetyReserve:       milliEther(3),
		DustThreshold:       big.NewInt(100_000_000_000_000), // 0.0001 ether
		ConfirmTimeout:      200 * time.Millisecond,
		ConfirmPollInterval: 10 * time.Millisecond,
	}, conns, nonces, fees, log)
	if err != nil {
		t.Fatal(err)
	}

	return engine, nonces, conns
}

func TestEngine_MaxSendConfirmed(t *testing.T) {
	client := &fakeClient{
		balance:      milliEther(1000), // 1 ETH
		pendingNonce: 7,
		suggestedTip: gwei(2),
		receipt: &types.Receipt{
			Status:      types.ReceiptStatusSuccessful,
			BlockNumber: big.NewInt(100),
		},
	}
	engine, nonces, _ := newTestEngine(t, client)

	// Pin worst-case fees at 100 gwei × 21000 = 0.0021 ether.
	outcome := engine.Transfer(context.Background(), domain.TransferRequest{
		To:   common.HexToAddress("0x1111111111111111111111111111111111111111"),
		Fees: domain.FeeOverrides{MaxFee: gwei(100)},
	})

	if !outcome.Succeeded() {
		t.Fatalf("outcome failed: %v", outcome.Err)
	}

	// 1 − 0.0021 − 0.003 = 0.9949 ether
	want, _ := new(big.Int).SetString("994900000000000000", 10)
	if outcome.Amount.Cmp(want) != 0 {
		t.Errorf("amount sent = %s, want %s", outcome.Amount, want)
	}

	if len(client.sent) != 1 {
		t.Fatalf("submitted %d transactions, want 1", len(client.sent))
	}
	tx := client.sent[0]
	if tx.Nonce() != 7 {
		t.Errorf("tx nonce = %d, want 7", tx.Nonce())
	}
	if tx.Value().Cmp(want) != 0 {
		t.Errorf("tx value = %s, want %s", tx.Value(), want)
	}
	if got := nonces.Current(); got != 8 {
		t.Errorf("counter after confirmed transfer = %d, want 8", got)
	}
}

func TestEngine_InsufficientFunds(t *testing.T) {
	client := &fakeClient{
		balance:      milliEther(1), // 0.001 ETH, below the 0.003 reserve
		pendingNonce: 3,
		suggestedTip: gwei(2),
	}
	engine, nonces, conns := newTestEngine(t, client)

	outcome := engine.Transfer(context.Background(), domain.TransferRequest{
		To:   common.HexToAddress("0x1111111111111111111111111111111111111111"),
		Fees: domain.FeeOverrides{MaxFee: gwei(100)},
	})

	if outcome.Succeeded() {
		t.Fatal("expected failure")
	}
	if !apperror.HasCode(outcome.Err, apperror.CodeInsufficientFunds) {
		t.Errorf("err = %v, want INSUFFICIENT_FUNDS", outcome.Err)
	}
	if outcome.LeftProcess() {
		t.Error("local failure must not carry a hash")
	}
	if len(client.sent) != 0 {
		t.Error("no transaction may reach the network")
	}
	// Slot released: the counter is back at the on-chain value.
	if got := nonces.Current(); got != 3 {
		t.Errorf("counter = %d, want 3 (unchanged)", got)
	}
	if conns.invalidated != 0 {
		t.Error("local failure must not invalidate the connection")
	}
}

func TestEngine_SubmissionRejected(t *testing.T) {
	client := &fakeClient{
		balance:      milliEther(1000),
		pendingNonce: 5,
		suggestedTip: gwei(2),
		sendErr:      errors.New("txpool full"),
	}
	engine, nonces, conns := newTestEngine(t, client)

	outcome := engine.Transfer(context.Background(), domain.TransferRequest{
		To:     common.HexToAddress("0x1111111111111111111111111111111111111111"),
		Amount: milliEther(100),
		Fees:   domain.FeeOverrides{MaxFee: gwei(100)},
	})

	if outcome.Succeeded() {
		t.Fatal("expected failure")
	}
	if !apperror.HasCode(outcome.Err, apperror.CodeSubmissionRejected) {
		t.Errorf("err = %v, want SUBMISSION_REJECTED", outcome.Err)
	}
	if outcome.LeftProcess() {
		t.Error("rejected-before-inclusion failure must not carry a hash")
	}
	if got := nonces.Current(); got != 5 {
		t.Errorf("counter = %d, want 5 (released)", got)
	}
	if conns.invalidated != 1 {
		t.Errorf("invalidations = %d, want 1", conns.invalidated)
	}
}

func TestEngine_MinedReverted(t *testing.T) {
	client := &fakeClient{
		balance:      milliEther(1000),
		pendingNonce: 9,
		suggestedTip: gwei(2),
		receipt: &types.Receipt{
			Status:      types.ReceiptStatusFailed,
			BlockNumber: big.NewInt(101),
		},
	}
	engine, nonces, _ := newTestEngine(t, client)

	outcome := engine.Transfer(context.Background(), domain.TransferRequest{
		To:     common.HexToAddress("0x1111111111111111111111111111111111111111"),
		Amount: milliEther(100),
		Fees:   domain.FeeOverrides{MaxFee: gwei(100)},
	})

	if outcome.Succeeded() {
		t.Fatal("expected failure")
	}
	if !apperror.HasCode(outcome.Err, apperror.CodeMinedReverted) {
		t.Errorf("err = %v, want MINED_REVERTED", outcome.Err)
	}
	if !outcome.LeftProcess() {
		t.Error("mined-but-reverted failure must carry the hash")
	}
	// The slot was legitimately consumed on-chain.
	if got := nonces.Current(); got != 10 {
		t.Errorf("counter = %d, want 10 (consumed)", got)
	}
}

func TestEngine_OpenFeeBreakerKeepsConnection(t *testing.T) {
	client := &fakeClient{
		balance:      milliEther(1000),
		pendingNonce: 2,
		tipErr:       errors.New("rpc overloaded"),
	}
	engine, nonces, conns := newTestEngine(t, client)

	req := domain.TransferRequest{
		To:     common.HexToAddress("0x1111111111111111111111111111111111111111"),
		Amount: milliEther(100),
	}

	// Five straight fetch failures trip the fee-data breaker. Each is a
	// transport error and legitimately drops the connection.
	for i := 0; i < 5; i++ {
		outcome := engine.Transfer(context.Background(), req)
		if !apperror.HasCode(outcome.Err, apperror.CodeFeeEstimateFailed) {
			t.Fatalf("transfer %d: err = %v, want FEE_ESTIMATE_FAILED", i, outcome.Err)
		}
	}
	if conns.invalidated != 5 {
		t.Fatalf("invalidations after transport failures = %d, want 5", conns.invalidated)
	}

	// The open breaker rejects before any network call: the connection must
	// survive and no fetch may be attempted.
	outcome := engine.Transfer(context.Background(), req)
	if !apperror.HasCode(outcome.Err, apperror.CodeCircuitOpen) {
		t.Fatalf("err = %v, want CIRCUIT_OPEN", outcome.Err)
	}
	if conns.invalidated != 5 {
		t.Errorf("invalidations = %d, want 5 (unchanged)", conns.invalidated)
	}
	if client.tipCalls != 5 {
		t.Errorf("fee fetches = %d, want 5", client.tipCalls)
	}
	if got := nonces.Current(); got != 2 {
		t.Errorf("counter = %d, want 2 (released)", got)
	}
}

func TestEngine_ConfirmTimeout(t *testing.T) {
	client := &fakeClient{
		balance:      milliEther(1000),
		pendingNonce: 4,
		suggestedTip: gwei(2),
		receiptErr:   errors.New("not found"),
	}
	engine, nonces, _ := newTestEngine(t, client)

	outcome := engine.Transfer(context.Background(), domain.TransferRequest{
		To:     common.HexToAddress("0x1111111111111111111111111111111111111111"),
		Amount: milliEther(100),
		Fees:   domain.FeeOverrides{MaxFee: gwei(100)},
	})

	if outcome.Succeeded() {
		t.Fatal("expected failure")
	}
	if !apperror.HasCode(outcome.Err, apperror.CodeConfirmTimeout) {
		t.Errorf("err = %v, want CONFIRM_TIMEOUT", outcome.Err)
	}
	if !outcome.LeftProcess() {
		t.Error("post-submission timeout must carry the hash")
	}
	if got := nonces.Current(); got != 5 {
		t.Errorf("counter = %d, want 5 (consumed)", got)
	}
}
