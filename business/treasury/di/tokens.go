// Package di contains dependency injection tokens for the treasury context.
package di

import (
	"github.com/fd1az/treasury-bot/business/treasury/app"
	"github.com/fd1az/treasury-bot/business/treasury/infra/ethereum"
	"github.com/fd1az/treasury-bot/internal/di"
)

// Public service tokens - exposed to other modules
var (
	Transferor      = di.NewToken[app.Transferor]("treasury.Transferor")
	AccountReader   = di.NewToken[app.AccountReader]("treasury.AccountReader")
	TreasuryService = di.NewToken[*app.TreasuryService]("treasury.TreasuryService")
)

// Private dependency tokens - internal to treasury module
var (
	ConnectionManager = di.NewToken[*ethereum.Manager]("treasury:connectionManager")
	NonceSequencer    = di.NewToken[*ethereum.Sequencer]("treasury:nonceSequencer")
	FeeEstimator      = di.NewToken[*ethereum.Estimator]("treasury:feeEstimator")
	TransferEngine    = di.NewToken[*ethereum.Engine]("treasury:transferEngine")
)

// Helper functions for type-safe access
func GetTransferor(c di.ServiceRegistry) app.Transferor {
	return di.GetToken(c, Transferor)
}

func GetAccountReader(c di.ServiceRegistry) app.AccountReader {
	return di.GetToken(c, AccountReader)
}

func GetTreasuryService(c di.ServiceRegistry) *app.TreasuryService {
	return di.GetToken(c, TreasuryService)
}

func GetConnectionManager(c di.ServiceRegistry) *ethereum.Manager {
	return di.GetToken(c, ConnectionManager)
}

func GetNonceSequencer(c di.ServiceRegistry) *ethereum.Sequencer {
	return di.GetToken(c, NonceSequencer)
}

func GetFeeEstimator(c di.ServiceRegistry) *ethereum.Estimator {
	return di.GetToken(c, FeeEstimator)
}

func GetTransferEngine(c di.ServiceRegistry) *ethereum.Engine {
	return di.GetToken(c, TransferEngine)
}
