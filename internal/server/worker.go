package server

import (
	"context"
	"sync"

	"HotelGateway/internal/biz"
	pkglog "HotelGateway/pkg/log"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/transport"
)

var _ transport.Server = (*WorkerServer)(nil)

// WorkerServer runs the loyalty queue worker under the application
// lifecycle. Stop waits for in-flight jobs to finish.
type WorkerServer struct {
	worker *biz.LoyaltyWorker
	logger *pkglog.LogHelper

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewWorkerServer creates a WorkerServer.
func NewWorkerServer(worker *biz.LoyaltyWorker, logger log.Logger) *WorkerServer {
	return &WorkerServer{
		worker: worker,
		logger: pkglog.NewLogHelper(logger),
	}
}

// Start runs the worker and blocks until Stop is called.
func (s *WorkerServer) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	s.mu.Lock()
	s.cancel = cancel
	s.done = done
	s.mu.Unlock()

	s.logger.Startup("loyalty worker server starting")
	defer close(done)
	return s.worker.Run(ctx)
}

// Stop cancels the worker and waits for it to return or for ctx to expire.
func (s *WorkerServer) Stop(ctx context.Context) error {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.mu.Unlock()
	if cancel == nil {
		return nil
	}

	cancel()
	select {
	case <-done:
		s.logger.Startup("loyalty worker server stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
