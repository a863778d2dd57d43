// Package di contains dependency injection tokens for the withdrawal context.
package di

import (
	"github.com/fd1az/treasury-bot/business/withdrawal/app"
	"github.com/fd1az/treasury-bot/internal/di"
)

// Public service tokens - exposed to other modules
var (
	Dispatcher = di.NewToken[*app.Dispatcher]("withdrawal.Dispatcher")
)

// Private dependency tokens - internal to withdrawal module
var (
	Approver = di.NewToken[app.Approver]("withdrawal:approver")
)

// Helper functions for type-safe access
func GetDispatcher(c di.ServiceRegistry) *app.Dispatcher {
	return di.GetToken(c, Dispatcher)
}

func GetApprover(c di.ServiceRegistry) app.Approver {
	return di.GetToken(c, Approver)
}
