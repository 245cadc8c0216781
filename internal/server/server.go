// Package server wires the gateway's transports: the public HTTP API, the
// gRPC health endpoint and the loyalty queue worker.
package server

import "github.com/google/wire"

// ProviderSet is server providers.
var ProviderSet = wire.NewSet(NewHTTPServer, NewGRPCServer, NewWorkerServer)
