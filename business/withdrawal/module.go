// Package withdrawal implements the withdrawal bounded context: the closed
// set of named variants dispatched over the shared transfer engine.
package withdrawal

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"

	treasuryDI "github.com/fd1az/treasury-bot/business/treasury/di"
	"github.com/fd1az/treasury-bot/business/withdrawal/app"
	withdrawalDI "github.com/fd1az/treasury-bot/business/withdrawal/di"
	"github.com/fd1az/treasury-bot/business/withdrawal/infra/approval"
	"github.com/fd1az/treasury-bot/internal/config"
	"github.com/fd1az/treasury-bot/internal/di"
	"github.com/fd1az/treasury-bot/internal/logger"
	"github.com/fd1az/treasury-bot/internal/monolith"
)

// Module implements the withdrawal bounded context.
type Module struct{}

// RegisterServices registers all withdrawal services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	// Register Approver (private - internal dependency)
	di.RegisterToken(c, withdrawalDI.Approver, func(sr di.ServiceRegistry) app.Approver {
		cfg := sr.Get("config").(*config.Config)

		if cfg.Withdrawal.ApprovalURL != "" {
			approver, err := approval.NewHTTPApprover(cfg.Withdrawal.ApprovalURL)
			if err != nil {
				panic("failed to create http approver: " + err.Error())
			}
			return approver
		}
		seed := cfg.Withdrawal.GateSeed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		return approval.NewProbabilisticApprover(cfg.Withdrawal.GateProbability, seed)
	})

	// Register Dispatcher (public - exposed to other modules)
	di.RegisterToken(c, withdrawalDI.Dispatcher, func(sr di.ServiceRegistry) *app.Dispatcher {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)
		reporter := sr.Get("reporter").(app.Reporter)

		splits := make([]common.Address, 0, len(cfg.Withdrawal.SplitDestinations))
		for _, addr := range cfg.Withdrawal.SplitDestinations {
			splits = append(splits, common.HexToAddress(addr))
		}

		dispatcher, err := app.NewDispatcher(app.DispatcherConfig{
			SplitDestinations: splits,
			RedirectAddress:   common.HexToAddress(cfg.Withdrawal.RedirectAddress),
			RedirectGasLimit:  cfg.Withdrawal.RedirectGasLimit,
			ExpressTipGwei:    cfg.Withdrawal.ExpressTipGwei,
			BalanceTolerance:  cfg.Treasury.BalanceTolerance(),
			RatePerMinute:     cfg.Withdrawal.RatePerMinute,
		},
			treasuryDI.GetTransferor(sr),
			treasuryDI.GetAccountReader(sr),
			treasuryDI.GetTreasuryService(sr),
			withdrawalDI.GetApprover(sr),
			reporter,
			log)
		if err != nil {
			panic("failed to create dispatcher: " + err.Error())
		}
		return dispatcher
	})

	return nil
}

// Startup initializes the withdrawal module.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	log := mono.Logger()

	dispatcher := withdrawalDI.GetDispatcher(mono.Services())
	log.Info(ctx, "withdrawal module started", "variants", len(dispatcher.Variants()))
	return nil
}
