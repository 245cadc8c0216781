package conf

import "time"

// Bootstrap is the root of the gateway configuration.
type Bootstrap struct {
	Server     *Server
	Data       *Data
	Downstream *Downstream
	Breaker    *Breaker
	Queue      *Queue
	HotelCache *HotelCache
	Log        *Log
}

// Server configures the inbound transports.
type Server struct {
	HTTP *Transport
	GRPC *Transport
}

// Transport is a listener address with a request timeout.
type Transport struct {
	Network string
	Addr    string
	Timeout time.Duration
}

// Data configures storage backends.
type Data struct {
	Database *Database
	Redis    *Redis
}

// Database is the MySQL connection used by the incident log. An empty Source
// disables it.
type Database struct {
	Driver string
	Source string
}

// Redis backs the loyalty retry queue.
type Redis struct {
	Network      string
	Addr         string
	Password     string
	DB           int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Downstream lists the services the gateway orchestrates.
type Downstream struct {
	Reservation *Endpoint
	Payment     *Endpoint
	Loyalty     *Endpoint
}

// Endpoint is a downstream base URL, e.g. http://payment:8060.
type Endpoint struct {
	URL     string
	Timeout time.Duration
}

// Breaker holds the thresholds shared by every downstream circuit breaker.
type Breaker struct {
	ProbeWindow          time.Duration
	BlockDuration        time.Duration
	FailureThreshold     int
	FailureRateThreshold int
}

// Queue configures the loyalty retry queue and its workers.
type Queue struct {
	Key         string
	TTL         time.Duration
	Workers     int
	PollTimeout time.Duration
	// Lease is how long a job may stay in flight before it is reaped.
	Lease       time.Duration
	MonitorSpec string
}

// HotelCache configures the in-process hotel lookup cache.
type HotelCache struct {
	Size int
	TTL  time.Duration
}

// Log configures the zap logger.
type Log struct {
	Level      string
	Format     string
	Env        string
	OutputFile string
}
