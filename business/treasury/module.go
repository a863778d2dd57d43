// Package treasury implements the treasury bounded context: custody of the
// hot account, nonce sequencing, fee quoting, and the transfer engine.
package treasury

import (
	"context"

	"github.com/fd1az/treasury-bot/business/treasury/app"
	treasuryDI "github.com/fd1az/treasury-bot/business/treasury/di"
	"github.com/fd1az/treasury-bot/business/treasury/domain"
	"github.com/fd1az/treasury-bot/business/treasury/infra/ethereum"
	"github.com/fd1az/treasury-bot/internal/config"
	"github.com/fd1az/treasury-bot/internal/di"
	"github.com/fd1az/treasury-bot/internal/logger"
	"github.com/fd1az/treasury-bot/internal/monolith"
)

// Module implements the treasury bounded context.
type Module struct{}

// RegisterServices registers all treasury services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	// Register NonceSequencer (private - internal dependency)
	di.RegisterToken(c, treasuryDI.NonceSequencer, func(sr di.ServiceRegistry) *ethereum.Sequencer {
		return ethereum.NewSequencer()
	})

	// Register ConnectionManager (private - internal dependency)
	di.RegisterToken(c, treasuryDI.ConnectionManager, func(sr di.ServiceRegistry) *ethereum.Manager {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		pool, err := domain.NewPool(cfg.Ethereum.ChainID, cfg.Ethereum.Endpoints)
		if err != nil {
			panic("failed to build endpoint pool: " + err.Error())
		}

		return ethereum.NewManager(ethereum.ManagerConfig{
			ChainID:     cfg.Ethereum.ChainID,
			PrivateKey:  cfg.Ethereum.PrivateKey,
			DialTimeout: cfg.Ethereum.DialTimeout,
		}, pool, treasuryDI.GetNonceSequencer(sr), log)
	})

	// Register FeeEstimator (private - internal dependency)
	di.RegisterToken(c, treasuryDI.FeeEstimator, func(sr di.ServiceRegistry) *ethereum.Estimator {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		est, err := ethereum.NewEstimator(ethereum.EstimatorConfig{
			MinTipGwei:      cfg.Treasury.MinTipGwei,
			DefaultGasLimit: cfg.Treasury.DefaultGasLimit,
		}, log)
		if err != nil {
			panic("failed to create fee estimator: " + err.Error())
		}
		return est
	})

	// Register TransferEngine (private - internal dependency)
	di.RegisterToken(c, treasuryDI.TransferEngine, func(sr di.ServiceRegistry) *ethereum.Engine {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		engine, err := ethereum.NewEngine(ethereum.EngineConfig{
			ChainID:             cfg.Ethereum.ChainID,
			SafetyReserve:       cfg.Treasury.SafetyReserve(),
			DustThreshold:       cfg.Treasury.DustThreshold(),
			ConfirmTimeout:      cfg.Treasury.ConfirmTimeout,
			ConfirmPollInterval: cfg.Treasury.ConfirmPollInterval,
		},
			treasuryDI.GetConnectionManager(sr),
			treasuryDI.GetNonceSequencer(sr),
			treasuryDI.GetFeeEstimator(sr),
			log)
		if err != nil {
			panic("failed to create transfer engine: " + err.Error())
		}
		return engine
	})

	// Register Transferor and AccountReader (public - exposed to other modules)
	di.RegisterToken(c, treasuryDI.Transferor, func(sr di.ServiceRegistry) app.Transferor {
		return treasuryDI.GetTransferEngine(sr)
	})
	di.RegisterToken(c, treasuryDI.AccountReader, func(sr di.ServiceRegistry) app.AccountReader {
		return treasuryDI.GetTransferEngine(sr)
	})

	// Register TreasuryService (public - exposed to other modules)
	di.RegisterToken(c, treasuryDI.TreasuryService, func(sr di.ServiceRegistry) *app.TreasuryService {
		log := sr.Get("logger").(logger.LoggerInterface)
		return app.NewTreasuryService(treasuryDI.GetAccountReader(sr), log)
	})

	return nil
}

// Startup initializes the treasury module with an eager first connection so
// the signing identity and nonce counter are ready before traffic arrives.
// Without a reachable endpoint the module cannot sign or sequence anything,
// so a connectivity failure here aborts startup.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	log := mono.Logger()

	manager := treasuryDI.GetConnectionManager(mono.Services())
	if _, _, err := manager.Acquire(ctx); err != nil {
		return err
	}

	log.Info(ctx, "treasury module started")
	return nil
}

// Shutdown releases the treasury module's resources.
func (m *Module) Shutdown(ctx context.Context, mono monolith.Monolith) {
	treasuryDI.GetTreasuryService(mono.Services()).Close()
	treasuryDI.GetConnectionManager(mono.Services()).Close()
	mono.Logger().Info(ctx, "treasury module stopped")
}
