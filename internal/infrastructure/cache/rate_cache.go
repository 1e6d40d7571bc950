// Package cache memoizes exchange rate lookups. RateCache keeps them in
// process memory and drops a tenant when PostgreSQL announces a change on
// the exchange_rates_changed channel; RedisRateCache shares them between
// instances.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"pgcledger/internal/core/id"
	"pgcledger/internal/domain/exchange"
	"pgcledger/pkg/logger"
)

// RatesChannel is raised by the exchange_rates trigger with the tenant id.
const RatesChannel = "exchange_rates_changed"

// RateCache is a thread-safe in-process exchange.Cache.
type RateCache struct {
	pool  *pgxpool.Pool
	mu    sync.RWMutex
	rates map[id.ID]map[string]decimal.Decimal

	listeners   []InvalidationListener
	listenersMu sync.RWMutex

	// Lifecycle
	lifecycleMu sync.Mutex
	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	started     bool
}

var _ exchange.Cache = (*RateCache)(nil)

// InvalidationListener is called after a tenant was dropped. tenantID is
// nil when the whole cache was cleared.
type InvalidationListener func(tenantID *id.ID)

// NewRateCache creates an empty cache. pool may be nil, in which case only
// local Invalidate calls clear entries.
func NewRateCache(pool *pgxpool.Pool) *RateCache {
	return &RateCache{
		pool:  pool,
		rates: make(map[id.ID]map[string]decimal.Decimal),
	}
}

func dayKey(day time.Time) string {
	return day.Format(time.DateOnly)
}

func (c *RateCache) Get(_ context.Context, tenantID id.ID, day time.Time) (decimal.Decimal, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	rate, ok := c.rates[tenantID][dayKey(day)]
	return rate, ok, nil
}

func (c *RateCache) Set(_ context.Context, tenantID id.ID, day time.Time, rate decimal.Decimal) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	days, ok := c.rates[tenantID]
	if !ok {
		days = make(map[string]decimal.Decimal)
		c.rates[tenantID] = days
	}
	days[dayKey(day)] = rate
	return nil
}

func (c *RateCache) Invalidate(_ context.Context, tenantID id.ID) error {
	c.drop(&tenantID)
	return nil
}

func (c *RateCache) drop(tenantID *id.ID) {
	c.mu.Lock()
	if tenantID == nil {
		c.rates = make(map[id.ID]map[string]decimal.Decimal)
	} else {
		delete(c.rates, *tenantID)
	}
	c.mu.Unlock()

	c.listenersMu.RLock()
	defer c.listenersMu.RUnlock()
	for _, listener := range c.listeners {
		func(l InvalidationListener) {
			defer func() {
				if r := recover(); r != nil {
					logger.Error(context.Background(), "rate cache listener panic recovered", "panic", r)
				}
			}()
			l(tenantID)
		}(listener)
	}
}

// OnInvalidation registers a callback for invalidation events.
func (c *RateCache) OnInvalidation(listener InvalidationListener) {
	c.listenersMu.Lock()
	c.listeners = append(c.listeners, listener)
	c.listenersMu.Unlock()
}

// Len returns the number of cached (tenant, day) pairs.
func (c *RateCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	n := 0
	for _, days := range c.rates {
		n += len(days)
	}
	return n
}

// Start begins listening for rate changes. It is a no-op without a pool.
func (c *RateCache) Start(ctx context.Context) error {
	if c.pool == nil {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	c.lifecycleMu.Lock()
	defer c.lifecycleMu.Unlock()
	if c.started {
		return nil
	}
	c.ctx, c.cancel = context.WithCancel(ctx)
	c.started = true

	c.wg.Add(1)
	go c.listenLoop()
	logger.Info(c.ctx, "rate cache started")
	return nil
}

// Stop ends the listener and waits for it.
func (c *RateCache) Stop() {
	c.lifecycleMu.Lock()
	if !c.started {
		c.lifecycleMu.Unlock()
		return
	}
	cancel := c.cancel
	c.started = false
	c.cancel = nil
	c.lifecycleMu.Unlock()

	if cancel != nil {
		cancel()
	}
	c.wg.Wait()
	logger.Info(context.Background(), "rate cache stopped")
}

func (c *RateCache) listenLoop() {
	defer c.wg.Done()

	for {
		select {
		case <-c.ctx.Done():
			return
		default:
		}

		conn, err := c.pool.Acquire(c.ctx)
		if err != nil {
			logger.Error(c.ctx, "failed to acquire connection for LISTEN", "error", err)
			time.Sleep(time.Second)
			continue
		}

		if _, err = conn.Exec(c.ctx, "LISTEN "+RatesChannel); err != nil {
			logger.Error(c.ctx, "failed to LISTEN", "error", err)
			conn.Release()
			time.Sleep(time.Second)
			continue
		}

		// Changes missed while reconnecting are unknown.
		c.drop(nil)
		logger.Info(c.ctx, "listening for rate changes", "channel", RatesChannel)

		c.waitForNotifications(conn)
		conn.Release()
	}
}

func (c *RateCache) waitForNotifications(conn *pgxpool.Conn) {
	for {
		select {
		case <-c.ctx.Done():
			return
		default:
		}

		ctx, cancel := context.WithTimeout(c.ctx, 30*time.Second)
		notification, err := conn.Conn().WaitForNotification(ctx)
		cancel()

		if err != nil {
			if c.ctx.Err() != nil {
				return
			}
			if conn.Conn().IsClosed() {
				return
			}
			continue
		}

		logger.Debug(c.ctx, "received notification",
			"channel", notification.Channel,
			"payload", notification.Payload)
		c.handleNotification(notification.Channel, notification.Payload)
	}
}

// handleNotification drops the tenant named by payload, or everything when
// the payload is not a tenant id.
func (c *RateCache) handleNotification(channel, payload string) {
	if channel != RatesChannel {
		return
	}
	tenantID, err := id.Parse(payload)
	if err != nil {
		c.drop(nil)
		return
	}
	c.drop(&tenantID)
}
