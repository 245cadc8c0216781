// Package conf provides configuration management using Viper.
// It supports loading configuration from YAML files and environment variables,
// with CLI flag overrides.
package conf

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// NewBootstrap creates and initializes a Bootstrap configuration.
// It loads configuration from the specified config file path, applies defaults,
// and allows overrides from environment variables prefixed with HOTELGATEWAY_.
//
// Configuration priority: Environment variables > Config file > Defaults
//
// Required settings:
//   - data.redis.addr (REDIS_ADDR or HOTELGATEWAY_DATA_REDIS_ADDR)
//   - downstream.reservation.url, downstream.payment.url, downstream.loyalty.url
//
// data.database.source (MYSQL_DSN) is optional; without it incidents are only logged.
func NewBootstrap(configPath string) (*Bootstrap, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix("HOTELGATEWAY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Short names used by the docker-compose setup
	_ = v.BindEnv("data.database.source", "MYSQL_DSN", "HOTELGATEWAY_DATA_DATABASE_SOURCE")
	_ = v.BindEnv("data.redis.addr", "REDIS_ADDR", "HOTELGATEWAY_DATA_REDIS_ADDR")
	_ = v.BindEnv("data.redis.password", "REDIS_PASSWORD", "HOTELGATEWAY_DATA_REDIS_PASSWORD")

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
		}
	}

	bc := &Bootstrap{
		Server: &Server{
			HTTP: &Transport{
				Network: v.GetString("server.http.network"),
				Addr:    v.GetString("server.http.addr"),
				Timeout: v.GetDuration("server.http.timeout"),
			},
			GRPC: &Transport{
				Network: v.GetString("server.grpc.network"),
				Addr:    v.GetString("server.grpc.addr"),
				Timeout: v.GetDuration("server.grpc.timeout"),
			},
		},
		Data: &Data{
			Database: &Database{
				Driver: v.GetString("data.database.driver"),
				Source: v.GetString("data.database.source"),
			},
			Redis: &Redis{
				Network:      v.GetString("data.redis.network"),
				Addr:         v.GetString("data.redis.addr"),
				Password:     v.GetString("data.redis.password"),
				DB:           v.GetInt("data.redis.db"),
				ReadTimeout:  v.GetDuration("data.redis.read_timeout"),
				WriteTimeout: v.GetDuration("data.redis.write_timeout"),
			},
		},
		Downstream: &Downstream{
			Reservation: endpoint(v, "reservation"),
			Payment:     endpoint(v, "payment"),
			Loyalty:     endpoint(v, "loyalty"),
		},
		Breaker: &Breaker{
			ProbeWindow:          v.GetDuration("breaker.probe_window"),
			BlockDuration:        v.GetDuration("breaker.block_duration"),
			FailureThreshold:     v.GetInt("breaker.failure_threshold"),
			FailureRateThreshold: v.GetInt("breaker.failure_rate_threshold"),
		},
		Queue: &Queue{
			Key:         v.GetString("queue.key"),
			TTL:         v.GetDuration("queue.ttl"),
			Workers:     v.GetInt("queue.workers"),
			PollTimeout: v.GetDuration("queue.poll_timeout"),
			Lease:       v.GetDuration("queue.lease"),
			MonitorSpec: v.GetString("queue.monitor_spec"),
		},
		HotelCache: &HotelCache{
			Size: v.GetInt("hotel_cache.size"),
			TTL:  v.GetDuration("hotel_cache.ttl"),
		},
		Log: &Log{
			Level:      v.GetString("log.level"),
			Format:     v.GetString("log.format"),
			Env:        v.GetString("log.env"),
			OutputFile: v.GetString("log.output_file"),
		},
	}

	if err := Validate(bc); err != nil {
		return nil, err
	}

	return bc, nil
}

func endpoint(v *viper.Viper, name string) *Endpoint {
	return &Endpoint{
		URL:     v.GetString("downstream." + name + ".url"),
		Timeout: v.GetDuration("downstream." + name + ".timeout"),
	}
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.http.network", "tcp")
	v.SetDefault("server.http.addr", ":8080")
	v.SetDefault("server.http.timeout", 30*time.Second)

	v.SetDefault("server.grpc.network", "tcp")
	v.SetDefault("server.grpc.addr", ":9000")
	v.SetDefault("server.grpc.timeout", 30*time.Second)

	// Data defaults
	v.SetDefault("data.database.driver", "mysql")
	v.SetDefault("data.redis.network", "tcp")
	v.SetDefault("data.redis.addr", "127.0.0.1:6379")
	v.SetDefault("data.redis.db", 0)
	v.SetDefault("data.redis.read_timeout", 200*time.Millisecond)
	v.SetDefault("data.redis.write_timeout", 200*time.Millisecond)

	// Downstream defaults match the service names of the compose network
	v.SetDefault("downstream.reservation.url", "http://reservation:8070")
	v.SetDefault("downstream.reservation.timeout", 5*time.Second)
	v.SetDefault("downstream.payment.url", "http://payment:8060")
	v.SetDefault("downstream.payment.timeout", 5*time.Second)
	v.SetDefault("downstream.loyalty.url", "http://loyalty:8050")
	v.SetDefault("downstream.loyalty.timeout", 5*time.Second)

	// Breaker defaults
	v.SetDefault("breaker.probe_window", 10*time.Second)
	v.SetDefault("breaker.block_duration", 5*time.Second)
	v.SetDefault("breaker.failure_threshold", 15)
	v.SetDefault("breaker.failure_rate_threshold", 50)

	// Queue defaults
	v.SetDefault("queue.key", "gateway:loyalty:jobs")
	v.SetDefault("queue.ttl", 10*time.Second)
	v.SetDefault("queue.workers", 1)
	v.SetDefault("queue.poll_timeout", time.Second)
	v.SetDefault("queue.lease", 15*time.Second)
	v.SetDefault("queue.monitor_spec", "@every 30s")

	v.SetDefault("hotel_cache.size", 256)
	v.SetDefault("hotel_cache.ttl", time.Minute)

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// Validate checks that all required configuration fields are present and valid.
// It returns an error listing all missing or invalid fields.
func Validate(bc *Bootstrap) error {
	var problems []string

	if bc.Data == nil || bc.Data.Redis == nil || bc.Data.Redis.Addr == "" {
		problems = append(problems, "data.redis.addr (REDIS_ADDR)")
	}

	if bc.Downstream == nil {
		problems = append(problems, "downstream")
	} else {
		for name, ep := range map[string]*Endpoint{
			"reservation": bc.Downstream.Reservation,
			"payment":     bc.Downstream.Payment,
			"loyalty":     bc.Downstream.Loyalty,
		} {
			if ep == nil || ep.URL == "" {
				problems = append(problems, "downstream."+name+".url")
			}
		}
	}

	if bc.Breaker != nil {
		if bc.Breaker.FailureThreshold < 1 {
			problems = append(problems, "breaker.failure_threshold (must be >= 1)")
		}
		if bc.Breaker.FailureRateThreshold < 1 || bc.Breaker.FailureRateThreshold > 100 {
			problems = append(problems, "breaker.failure_rate_threshold (must be 1..100)")
		}
	}

	if bc.Queue != nil && bc.Queue.TTL <= 0 {
		problems = append(problems, "queue.ttl (must be positive)")
	}

	if len(problems) > 0 {
		sort.Strings(problems)
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, ", "))
	}

	return nil
}
