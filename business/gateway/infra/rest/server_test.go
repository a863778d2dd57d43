package rest

import (
	"context"
	"io"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"

	treasuryApp "github.com/fd1az/treasury-bot/business/treasury/app"
	withdrawalApp "github.com/fd1az/treasury-bot/business/withdrawal/app"
	"github.com/fd1az/treasury-bot/internal/logger"
)

func TestServer_AppliesConfiguredTimeouts(t *testing.T) {
	log := logger.New(io.Discard, logger.LevelInfo, "test", nil)
	accounts := &fakeAccounts{
		balance: big.NewInt(1),
		address: common.HexToAddress("0x5555555555555555555555555555555555555555"),
	}
	svc := treasuryApp.NewTreasuryService(accounts, log)
	t.Cleanup(svc.Close)

	dispatcher, err := withdrawalApp.NewDispatcher(withdrawalApp.DispatcherConfig{
		BalanceTolerance: big.NewInt(1000),
		RatePerMinute:    600,
	}, &fakeTransferor{}, accounts, svc, nil, nil, log)
	if err != nil {
		t.Fatal(err)
	}

	s := NewServer(ServerConfig{
		Port:         0,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}, dispatcher, svc, log)

	ctx := context.Background()
	if err := s.Start(ctx); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = s.Stop(ctx) })

	if s.server.ReadTimeout != 10*time.Second {
		t.Errorf("ReadTimeout = %s, want 10s", s.server.ReadTimeout)
	}
	if s.server.WriteTimeout != 30*time.Second {
		t.Errorf("WriteTimeout = %s, want 30s", s.server.WriteTimeout)
	}
}
