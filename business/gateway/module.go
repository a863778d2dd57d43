// Package gateway implements the HTTP gateway bounded context.
package gateway

import (
	"context"

	gatewayDI "github.com/fd1az/treasury-bot/business/gateway/di"
	"github.com/fd1az/treasury-bot/business/gateway/infra/rest"
	treasuryDI "github.com/fd1az/treasury-bot/business/treasury/di"
	withdrawalDI "github.com/fd1az/treasury-bot/business/withdrawal/di"
	"github.com/fd1az/treasury-bot/internal/config"
	"github.com/fd1az/treasury-bot/internal/di"
	"github.com/fd1az/treasury-bot/internal/logger"
	"github.com/fd1az/treasury-bot/internal/monolith"
)

// Module implements the gateway bounded context.
type Module struct{}

// RegisterServices registers all gateway services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	// Register RestServer (public - exposed for lifecycle control)
	di.RegisterToken(c, gatewayDI.RestServer, func(sr di.ServiceRegistry) *rest.Server {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		return rest.NewServer(rest.ServerConfig{
			Port:         cfg.Gateway.Port,
			ReadTimeout:  cfg.Gateway.ReadTimeout,
			WriteTimeout: cfg.Gateway.WriteTimeout,
		},
			withdrawalDI.GetDispatcher(sr),
			treasuryDI.GetTreasuryService(sr),
			log)
	})

	return nil
}

// Startup starts the REST server.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	return gatewayDI.GetRestServer(mono.Services()).Start(ctx)
}

// Shutdown stops the REST server.
func (m *Module) Shutdown(ctx context.Context, mono monolith.Monolith) error {
	return gatewayDI.GetRestServer(mono.Services()).Stop(ctx)
}
