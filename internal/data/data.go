// Package data provides data access layer implementations: the downstream
// service clients, the Redis backed loyalty queue and the incident log.
package data

import (
	"HotelGateway/internal/conf"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/wire"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// ProviderSet is data providers.
var ProviderSet = wire.NewSet(
	NewData,
	NewRedisClient,
	NewMySQLClient,
	NewMetrics,
	NewNoopWebhookService,
	NewBreakerGroup,
	NewHotelCache,
	NewDownstreamClients,
	NewCatalogRepo,
	NewPaymentRepo,
	NewLoyaltyRepo,
	NewLoyaltyQueue,
	NewIncidentLog,
)

// Data contains the shared storage handles.
type Data struct {
	rdb *redis.Client
	// db is nil when no MySQL DSN is configured
	db *gorm.DB
}

// NewData creates a new Data instance.
func NewData(_ *conf.Data, logger log.Logger, rdb *redis.Client, db *gorm.DB) (*Data, func(), error) {
	helper := log.NewHelper(logger)

	if db == nil {
		helper.Warn("MySQL is not configured, saga incidents are only logged")
	}

	d := &Data{
		rdb: rdb,
		db:  db,
	}

	cleanup := func() {
		helper.Info("closing the data resources")
	}

	return d, cleanup, nil
}

// RedisClient returns the Redis client.
func (d *Data) RedisClient() *redis.Client {
	return d.rdb
}

// DB returns the GORM handle, or nil.
func (d *Data) DB() *gorm.DB {
	return d.db
}
