// Package service adapts the gateway usecases to the HTTP surface.
package service

import "github.com/google/wire"

// ProviderSet is service providers.
var ProviderSet = wire.NewSet(NewGatewayService)
