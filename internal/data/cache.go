package data

import (
	"time"

	"HotelGateway/internal/conf"
	"HotelGateway/internal/model"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	defaultHotelCacheSize = 256
	defaultHotelCacheTTL  = time.Minute
)

// HotelCache keeps recently fetched hotels in memory. Hotel records rarely
// change, and the create saga reads one on every booking.
type HotelCache struct {
	lru *expirable.LRU[string, *model.Hotel]
}

// NewHotelCache creates the cache from config; zero values fall back to
// defaults.
func NewHotelCache(c *conf.HotelCache) *HotelCache {
	size, ttl := defaultHotelCacheSize, defaultHotelCacheTTL
	if c != nil {
		if c.Size > 0 {
			size = c.Size
		}
		if c.TTL > 0 {
			ttl = c.TTL
		}
	}
	return &HotelCache{lru: expirable.NewLRU[string, *model.Hotel](size, nil, ttl)}
}

// Get returns a copy of the cached hotel.
func (c *HotelCache) Get(hotelUID string) (*model.Hotel, bool) {
	h, ok := c.lru.Get(hotelUID)
	if !ok {
		return nil, false
	}
	cp := *h
	return &cp, true
}

// Add stores a copy of h.
func (c *HotelCache) Add(h *model.Hotel) {
	if h == nil || h.HotelUID == "" {
		return
	}
	cp := *h
	c.lru.Add(h.HotelUID, &cp)
}

// Purge drops every entry.
func (c *HotelCache) Purge() {
	c.lru.Purge()
}

// Len returns the number of cached hotels.
func (c *HotelCache) Len() int {
	return c.lru.Len()
}
