package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/AlexandruValeanu/IceBook/pkg/core"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisOptions represents configuration options for Redis connection
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
}

var defaultOptions = &RedisOptions{
	Addr:     "localhost:6379",
	Password: "",
	DB:       0,
}

// SetDefaultRedisOptions sets the default options for Redis connections
func SetDefaultRedisOptions(options *RedisOptions) {
	defaultOptions = options
}

// GetRedisClient creates a new Redis client using the default options
func GetRedisClient() *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     defaultOptions.Addr,
		Password: defaultOptions.Password,
		DB:       defaultOptions.DB,
	})
}

// RedisBackend implements the BookBackend interface with Redis storage.
//
// Each side is a price-scored sorted set of price levels plus one
// timestamp-scored sorted set of order IDs per level, so price-time priority
// survives the round trip through Redis exactly. Orders themselves are stored
// as JSON values and deserialized on peek; Reinsert persists the caller's
// mutated copy back.
type RedisBackend struct {
	sync.RWMutex
	client      *redis.Client
	ctx         context.Context
	orderPrefix string
	bidsKey     string
	asksKey     string
	clock       core.Clock
	logger      *zap.Logger
}

// NewRedisBackend creates a new instance of RedisBackend
func NewRedisBackend(client *redis.Client, orderPrefix string, clock core.Clock, logger *zap.Logger) *RedisBackend {
	return &RedisBackend{
		client:      client,
		ctx:         context.Background(),
		orderPrefix: orderPrefix,
		bidsKey:     fmt.Sprintf("%s:bids", orderPrefix),
		asksKey:     fmt.Sprintf("%s:asks", orderPrefix),
		clock:       clock,
		logger:      logger,
	}
}

// Flush removes every key this backend has written
func (b *RedisBackend) Flush() error {
	b.Lock()
	defer b.Unlock()

	var cursor uint64
	for {
		keys, next, err := b.client.Scan(b.ctx, cursor, b.orderPrefix+":*", 100).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := b.client.Del(b.ctx, keys...).Err(); err != nil {
				return err
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}

// Insert queues an order on its side, renewing an iceberg's timestamp first
func (b *RedisBackend) Insert(order *core.Order) {
	b.Lock()
	defer b.Unlock()

	if order.IsIcebergOrder() {
		order.SetTimestamp(b.clock.Tick())
	}

	b.addOrder(order)
}

// PeekBestBuy returns the highest-priority buy order without removing it
func (b *RedisBackend) PeekBestBuy() *core.Order {
	b.RLock()
	defer b.RUnlock()
	return b.peekBest(core.Buy)
}

// PeekBestSell returns the highest-priority sell order without removing it
func (b *RedisBackend) PeekBestSell() *core.Order {
	b.RLock()
	defer b.RUnlock()
	return b.peekBest(core.Sell)
}

// RemoveBestBuy removes and returns the highest-priority buy order
func (b *RedisBackend) RemoveBestBuy() *core.Order {
	b.Lock()
	defer b.Unlock()
	return b.removeBest(core.Buy)
}

// RemoveBestSell removes and returns the highest-priority sell order
func (b *RedisBackend) RemoveBestSell() *core.Order {
	b.Lock()
	defer b.Unlock()
	return b.removeBest(core.Sell)
}

// ReinsertBestBuy replaces the best buy order with the caller's mutated copy
func (b *RedisBackend) ReinsertBestBuy(order *core.Order) {
	b.Lock()
	defer b.Unlock()
	b.removeBest(core.Buy)
	b.addOrder(order)
}

// ReinsertBestSell replaces the best sell order with the caller's mutated copy
func (b *RedisBackend) ReinsertBestSell(order *core.Order) {
	b.Lock()
	defer b.Unlock()
	b.removeBest(core.Sell)
	b.addOrder(order)
}

// BuyOrders returns the resting buy orders in priority order
func (b *RedisBackend) BuyOrders() []*core.Order {
	b.RLock()
	defer b.RUnlock()
	return b.sideOrders(core.Buy)
}

// SellOrders returns the resting sell orders in priority order
func (b *RedisBackend) SellOrders() []*core.Order {
	b.RLock()
	defer b.RUnlock()
	return b.sideOrders(core.Sell)
}

// addOrder persists the order and queues it without touching its timestamp
func (b *RedisBackend) addOrder(order *core.Order) {
	data, err := json.Marshal(order)
	if err != nil {
		b.logger.Error("failed to marshal order",
			zap.String("orderID", order.ID()),
			zap.Error(err))
		return
	}

	sideKey := b.getSideKey(order.Side())
	priceStr := order.Price().String()
	levelKey := b.getLevelKey(sideKey, priceStr)

	pipe := b.client.Pipeline()
	pipe.Set(b.ctx, b.getOrderKey(order.ID()), data, 0)
	pipe.ZAdd(b.ctx, sideKey, redis.Z{
		Score:  order.Price().Float64(),
		Member: priceStr,
	})
	pipe.ZAdd(b.ctx, levelKey, redis.Z{
		Score:  float64(order.Timestamp()),
		Member: order.ID(),
	})

	if _, err := pipe.Exec(b.ctx); err != nil {
		b.logger.Error("failed to queue order",
			zap.String("orderID", order.ID()),
			zap.Error(err))
	}
}

// bestLocation returns the best price level and first order ID of a side
func (b *RedisBackend) bestLocation(side core.Side) (priceStr, orderID string, ok bool) {
	sideKey := b.getSideKey(side)

	var prices []string
	var err error
	if side == core.Buy {
		prices, err = b.client.ZRevRange(b.ctx, sideKey, 0, 0).Result()
	} else {
		prices, err = b.client.ZRange(b.ctx, sideKey, 0, 0).Result()
	}
	if err != nil || len(prices) == 0 {
		if err != nil && err != redis.Nil {
			b.logger.Error("failed to read best price level",
				zap.String("side", side.String()),
				zap.Error(err))
		}
		return "", "", false
	}

	priceStr = prices[0]
	ids, err := b.client.ZRange(b.ctx, b.getLevelKey(sideKey, priceStr), 0, 0).Result()
	if err != nil || len(ids) == 0 {
		if err != nil && err != redis.Nil {
			b.logger.Error("failed to read best price level orders",
				zap.String("side", side.String()),
				zap.Error(err))
		}
		return "", "", false
	}

	return priceStr, ids[0], true
}

func (b *RedisBackend) peekBest(side core.Side) *core.Order {
	_, orderID, ok := b.bestLocation(side)
	if !ok {
		return nil
	}
	return b.getOrder(orderID)
}

func (b *RedisBackend) removeBest(side core.Side) *core.Order {
	priceStr, orderID, ok := b.bestLocation(side)
	if !ok {
		return nil
	}

	order := b.getOrder(orderID)

	sideKey := b.getSideKey(side)
	levelKey := b.getLevelKey(sideKey, priceStr)

	pipe := b.client.Pipeline()
	pipe.ZRem(b.ctx, levelKey, orderID)
	pipe.Del(b.ctx, b.getOrderKey(orderID))
	remaining := pipe.ZCard(b.ctx, levelKey)

	if _, err := pipe.Exec(b.ctx); err != nil {
		b.logger.Error("failed to remove best order",
			zap.String("orderID", orderID),
			zap.String("side", side.String()),
			zap.Error(err))
		return order
	}

	if remaining.Val() == 0 {
		pipe = b.client.Pipeline()
		pipe.ZRem(b.ctx, sideKey, priceStr)
		pipe.Del(b.ctx, levelKey)
		if _, err := pipe.Exec(b.ctx); err != nil {
			b.logger.Error("failed to clean up empty price level",
				zap.String("price", priceStr),
				zap.Error(err))
		}
	}

	return order
}

func (b *RedisBackend) sideOrders(side core.Side) []*core.Order {
	sideKey := b.getSideKey(side)

	var prices []string
	var err error
	if side == core.Buy {
		prices, err = b.client.ZRevRange(b.ctx, sideKey, 0, -1).Result()
	} else {
		prices, err = b.client.ZRange(b.ctx, sideKey, 0, -1).Result()
	}
	if err != nil && err != redis.Nil {
		b.logger.Error("failed to read price levels",
			zap.String("side", side.String()),
			zap.Error(err))
		return nil
	}

	orders := make([]*core.Order, 0)
	for _, priceStr := range prices {
		ids, err := b.client.ZRange(b.ctx, b.getLevelKey(sideKey, priceStr), 0, -1).Result()
		if err != nil {
			b.logger.Error("failed to read price level orders",
				zap.String("price", priceStr),
				zap.Error(err))
			continue
		}
		for _, id := range ids {
			if order := b.getOrder(id); order != nil {
				orders = append(orders, order)
			}
		}
	}

	return orders
}

func (b *RedisBackend) getOrder(orderID string) *core.Order {
	data, err := b.client.Get(b.ctx, b.getOrderKey(orderID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			b.logger.Error("failed to get order",
				zap.String("orderID", orderID),
				zap.Error(err))
		}
		return nil
	}

	var order core.Order
	if err := json.Unmarshal(data, &order); err != nil {
		b.logger.Error("failed to unmarshal order",
			zap.String("orderID", orderID),
			zap.Error(err))
		return nil
	}

	return &order
}

func (b *RedisBackend) getOrderKey(orderID string) string {
	return fmt.Sprintf("%s:order:%s", b.orderPrefix, orderID)
}

func (b *RedisBackend) getSideKey(side core.Side) string {
	if side == core.Buy {
		return b.bidsKey
	}
	return b.asksKey
}

func (b *RedisBackend) getLevelKey(sideKey, priceStr string) string {
	return fmt.Sprintf("%s:%s", sideKey, priceStr)
}

// Ensure RedisBackend implements BookBackend
var _ core.BookBackend = (*RedisBackend)(nil)
