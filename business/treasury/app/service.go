package app

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/fd1az/treasury-bot/internal/apperror"
	"github.com/fd1az/treasury-bot/internal/cache"
	"github.com/fd1az/treasury-bot/internal/logger"
)

const (
	balanceCacheKey = "treasury-balance"
	balanceCacheTTL = 5 * time.Second
)

// StatusReport is a read-only snapshot of the treasury account for
// operators and the status endpoint. Fee data is deliberately absent: it
// is quoted fresh per transfer and has no meaningful resting value.
type StatusReport struct {
	Address    common.Address
	Connected  bool
	NextNonce  int64
	BalanceWei *big.Int
}

// TreasuryService coordinates read-side treasury operations. Balance reads
// for display go through a short-lived cache so a busy status endpoint does
// not hammer the RPC endpoint; transfer-path reads never use it.
type TreasuryService struct {
	accounts AccountReader
	balances *cache.Cache[string, *big.Int]
	logger   logger.LoggerInterface
}

// NewTreasuryService creates a new TreasuryService.
func NewTreasuryService(accounts AccountReader, log logger.LoggerInterface) *TreasuryService {
	return &TreasuryService{
		accounts: accounts,
		balances: cache.New[string, *big.Int](time.Minute),
		logger:   log,
	}
}

// Status assembles the current treasury snapshot. The balance is served
// from the display cache when fresh; everything else is read live.
func (s *TreasuryService) Status(ctx context.Context) (StatusReport, error) {
	report := StatusReport{NextNonce: s.accounts.NonceValue()}

	addr, ok := s.accounts.Address()
	if !ok {
		// No connection has been established yet. Report the empty
		// snapshot rather than forcing a dial from the read path.
		return report, nil
	}
	report.Address = addr
	report.Connected = true

	if cached, hit := s.balances.Get(ctx, balanceCacheKey); hit {
		report.BalanceWei = cached
		return report, nil
	}

	balance, err := s.accounts.Balance(ctx)
	if err != nil {
		return report, err
	}
	s.balances.Set(ctx, balanceCacheKey, balance, balanceCacheTTL)
	report.BalanceWei = balance

	return report, nil
}

// VerifiedBalance reads the treasury balance from the active connection and
// from an independent pool endpoint, and fails when the two diverge by more
// than tolerance. Used by withdrawal flows that refuse to act on a single
// endpoint's view of the account.
func (s *TreasuryService) VerifiedBalance(ctx context.Context, tolerance *big.Int) (*big.Int, error) {
	primary, err := s.accounts.Balance(ctx)
	if err != nil {
		return nil, err
	}

	alternate, err := s.accounts.AlternateBalance(ctx)
	if err != nil {
		return nil, err
	}

	diff := new(big.Int).Sub(primary, alternate)
	if diff.CmpAbs(tolerance) > 0 {
		s.logger.Warn(ctx, "balance divergence between endpoints",
			"primary_wei", primary.String(), "alternate_wei", alternate.String())
		return nil, apperror.New(apperror.CodeBalanceDivergence,
			apperror.WithContext("primary "+primary.String()+" wei vs alternate "+alternate.String()+" wei"))
	}

	return primary, nil
}

// Close releases the display cache.
func (s *TreasuryService) Close() {
	s.balances.Close()
}
