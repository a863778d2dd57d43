// Package di contains dependency injection tokens for the gateway context.
package di

import (
	"github.com/fd1az/treasury-bot/business/gateway/infra/rest"
	"github.com/fd1az/treasury-bot/internal/di"
)

// Public service tokens - exposed to other modules
var (
	RestServer = di.NewToken[*rest.Server]("gateway.RestServer")
)

// Helper functions for type-safe access
func GetRestServer(c di.ServiceRegistry) *rest.Server {
	return di.GetToken(c, RestServer)
}
