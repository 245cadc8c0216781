// Package main is the entry point of the HotelGateway service.
// It runs the HTTP gateway, the gRPC health endpoint and the loyalty queue
// worker in one Kratos application.
package main

import (
	"context"
	"flag"
	"os"

	"HotelGateway/internal/biz"
	"HotelGateway/internal/conf"
	"HotelGateway/internal/server"
	zapLogger "HotelGateway/pkg/log"

	"github.com/go-kratos/kratos/v2"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/middleware/tracing"
	"github.com/go-kratos/kratos/v2/transport/grpc"
	"github.com/go-kratos/kratos/v2/transport/http"
	"github.com/robfig/cron/v3"

	_ "go.uber.org/automaxprocs"
)

// go build -ldflags "-X main.Version=x.y.z"
var (
	// Name is the name of the compiled software.
	Name = "HotelGateway"
	// Version is the version of the compiled software.
	Version string
	// flagconf is the config flag.
	flagconf string

	id, _ = os.Hostname()
)

func init() {
	flag.StringVar(&flagconf, "conf", "../../configs/config.yaml", "config path, eg: -conf config.yaml")
}

func newApp(
	logger log.Logger,
	qc *conf.Queue,
	gs *grpc.Server,
	hs *http.Server,
	ws *server.WorkerServer,
	monitor *biz.QueueMonitor,
) *kratos.App {
	var scheduler *cron.Cron

	return kratos.New(
		kratos.ID(id),
		kratos.Name(Name),
		kratos.Version(Version),
		kratos.Metadata(map[string]string{}),
		kratos.Logger(logger),
		kratos.Server(
			gs,
			hs,
			ws,
		),
		kratos.AfterStart(func(context.Context) error {
			c, err := StartQueueMonitorCron(monitor, qc.MonitorSpec, logger)
			if err != nil {
				return err
			}
			scheduler = c
			return nil
		}),
		kratos.BeforeStop(func(context.Context) error {
			if scheduler != nil {
				<-scheduler.Stop().Done()
			}
			return nil
		}),
	)
}

func main() {
	flag.Parse()

	// Load configuration using Viper with environment variable and CLI flag support
	bc, err := conf.NewBootstrap(flagconf)
	if err != nil {
		// Use fallback logger before Zap is initialized
		log.Fatalf("failed to load configuration: %v", err)
	}

	zapLog, err := zapLogger.NewZapLogger(bc.Log)
	if err != nil {
		log.Fatalf("failed to initialize zap logger: %v", err)
	}
	defer func() { _ = zapLog.Sync() }()

	logger := zapLogger.NewKratosAdapter(zapLog)
	logger = log.With(logger,
		"service.id", id,
		"service.name", Name,
		"service.version", Version,
		"trace.id", tracing.TraceID(),
		"span.id", tracing.SpanID(),
	)

	zapLogger.NewLogHelper(logger).Startup("HotelGateway service starting",
		"log.level", bc.Log.Level,
		"log.format", bc.Log.Format,
		"http.addr", bc.Server.HTTP.Addr,
		"reservation.url", bc.Downstream.Reservation.URL,
		"payment.url", bc.Downstream.Payment.URL,
		"loyalty.url", bc.Downstream.Loyalty.URL,
		"queue.ttl", bc.Queue.TTL.String(),
	)

	app, cleanup, err := wireApp(bc.Server, bc.Data, bc.Downstream, bc.Breaker, bc.Queue, bc.HotelCache, logger)
	if err != nil {
		panic(err)
	}
	defer cleanup()

	// start and wait for stop signal
	if err := app.Run(); err != nil {
		panic(err)
	}
}
