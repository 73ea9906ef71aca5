package integration

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/nikolaydubina/fpdecimal"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	redisbackend "github.com/AlexandruValeanu/IceBook/pkg/backend/redis"
	"github.com/AlexandruValeanu/IceBook/pkg/core"
	"github.com/AlexandruValeanu/IceBook/pkg/db/queue"
	"github.com/AlexandruValeanu/IceBook/pkg/messaging"
	kafkasender "github.com/AlexandruValeanu/IceBook/pkg/messaging/kafka"
	"github.com/AlexandruValeanu/IceBook/pkg/testutil"
)

const (
	testRedisAddr = "localhost:6379"
	testKafkaAddr = "localhost:9092"
)

func setupRedisEngine(t *testing.T) (*core.MatchingEngine, core.Clock) {
	t.Helper()

	client := redis.NewClient(&redis.Options{Addr: testRedisAddr})
	t.Cleanup(func() { _ = client.Close() })

	clock := core.NewLogicalClock()
	prefix := fmt.Sprintf("icebook-test-%d", time.Now().UnixNano())
	backend := redisbackend.NewRedisBackend(client, prefix, clock, zap.NewNop())
	t.Cleanup(func() { _ = backend.Flush() })

	return core.NewMatchingEngine(backend, clock), clock
}

func mustLimit(t *testing.T, clock core.Clock, id string, side core.Side, qty, price int) *core.Order {
	t.Helper()
	order, err := core.NewLimitOrder(id, side, fpdecimal.FromInt(qty), fpdecimal.FromInt(price), clock)
	require.NoError(t, err)
	return order
}

func mustIceberg(t *testing.T, clock core.Clock, id string, side core.Side, qty, price, peak int) *core.Order {
	t.Helper()
	order, err := core.NewIcebergOrder(id, side, fpdecimal.FromInt(qty), fpdecimal.FromInt(price), fpdecimal.FromInt(peak), clock)
	require.NoError(t, err)
	return order
}

// TestRedisIntegration_BasicFlow drives a full match through the Redis-backed
// book and checks what survives in the store afterwards.
func TestRedisIntegration_BasicFlow(t *testing.T) {
	testutil.SkipIfRedisUnavailable(t, testRedisAddr)

	engine, clock := setupRedisEngine(t)
	ctx := context.Background()

	_, err := engine.Submit(ctx, mustLimit(t, clock, "sell-1", core.Sell, 10, 100))
	require.NoError(t, err)

	done, err := engine.Submit(ctx, mustLimit(t, clock, "buy-1", core.Buy, 4, 105))
	require.NoError(t, err)

	require.Len(t, done.Trades, 1)
	assert.Equal(t, "buy-1", done.Trades[0].BuyOrderID)
	assert.Equal(t, "sell-1", done.Trades[0].SellOrderID)
	assert.True(t, done.Trades[0].Price.Equal(fpdecimal.FromInt(100)), "trade executes at the resting sell price")
	assert.True(t, done.Trades[0].Quantity.Equal(fpdecimal.FromInt(4)))
	assert.True(t, done.Left.Equal(fpdecimal.Zero))
	assert.False(t, done.Stored)

	sells := engine.SellOrders()
	require.Len(t, sells, 1)
	assert.Equal(t, "sell-1", sells[0].ID())
	assert.True(t, sells[0].VisibleQuantity().Equal(fpdecimal.FromInt(6)))
	assert.Empty(t, engine.BuyOrders())
}

// TestRedisIntegration_IcebergRefill checks that a resting iceberg keeps
// refilling out of Redis state as successive orders chip away at it.
func TestRedisIntegration_IcebergRefill(t *testing.T) {
	testutil.SkipIfRedisUnavailable(t, testRedisAddr)

	engine, clock := setupRedisEngine(t)
	ctx := context.Background()

	_, err := engine.Submit(ctx, mustIceberg(t, clock, "ice-1", core.Sell, 30, 100, 10))
	require.NoError(t, err)

	// First buy exhausts the visible slice; the iceberg must refill.
	done, err := engine.Submit(ctx, mustLimit(t, clock, "buy-1", core.Buy, 10, 100))
	require.NoError(t, err)
	require.Len(t, done.Trades, 1)
	assert.True(t, done.Trades[0].Quantity.Equal(fpdecimal.FromInt(10)))

	sells := engine.SellOrders()
	require.Len(t, sells, 1)
	assert.True(t, sells[0].VisibleQuantity().Equal(fpdecimal.FromInt(10)))
	assert.True(t, sells[0].HiddenReserve().Equal(fpdecimal.FromInt(10)))

	// A sweep through the remaining 20 terminates the iceberg entirely.
	done, err = engine.Submit(ctx, mustLimit(t, clock, "buy-2", core.Buy, 20, 100))
	require.NoError(t, err)
	require.Len(t, done.Trades, 1)
	assert.True(t, done.Trades[0].Quantity.Equal(fpdecimal.FromInt(20)), "refills against one counterparty aggregate into a single trade")
	assert.Empty(t, engine.SellOrders())
}

// TestRedisIntegration_LostTimePriority verifies that an iceberg refill
// requeues the order behind same-price arrivals, with the new position
// persisted in Redis.
func TestRedisIntegration_LostTimePriority(t *testing.T) {
	testutil.SkipIfRedisUnavailable(t, testRedisAddr)

	engine, clock := setupRedisEngine(t)
	ctx := context.Background()

	_, err := engine.Submit(ctx, mustIceberg(t, clock, "ice-1", core.Sell, 40, 100, 10))
	require.NoError(t, err)
	_, err = engine.Submit(ctx, mustLimit(t, clock, "sell-2", core.Sell, 5, 100))
	require.NoError(t, err)

	// Exhausting the visible slice forces a refill, which moves the
	// iceberg behind sell-2 at the same price.
	_, err = engine.Submit(ctx, mustLimit(t, clock, "buy-1", core.Buy, 10, 100))
	require.NoError(t, err)

	done, err := engine.Submit(ctx, mustLimit(t, clock, "buy-2", core.Buy, 5, 100))
	require.NoError(t, err)
	require.Len(t, done.Trades, 1)
	assert.Equal(t, "sell-2", done.Trades[0].SellOrderID)
}

// TestKafkaIntegration_ExecutionPublishing submits a crossing pair and waits
// for the execution report to come back off the queue.
func TestKafkaIntegration_ExecutionPublishing(t *testing.T) {
	testutil.SkipIfDependenciesUnavailable(t, testRedisAddr, testKafkaAddr)

	queue.SetBrokerList(testKafkaAddr)
	queue.SetTopic("icebook-executions")

	consumer, err := queue.NewQueueMessageConsumer()
	require.NoError(t, err)
	defer consumer.Close()

	engine, clock := setupRedisEngine(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	received := make(chan string, 8)
	go func() {
		_ = consumer.ConsumeExecutionMessages(ctx, func(msg *messaging.ExecutionMessage) error {
			received <- msg.OrderID
			return nil
		})
	}()

	// Give the consumer a moment to land on the newest offset before the
	// engine publishes.
	time.Sleep(time.Second)

	_, err = engine.Submit(ctx, mustLimit(t, clock, "sell-k1", core.Sell, 10, 100))
	require.NoError(t, err)
	_, err = engine.Submit(ctx, mustLimit(t, clock, "buy-k1", core.Buy, 10, 100))
	require.NoError(t, err)

	for {
		select {
		case id := <-received:
			if id == "buy-k1" {
				return
			}
		case <-ctx.Done():
			t.Fatal("timed out waiting for execution message")
		}
	}
}

// TestKafkaIntegration_SenderRoundTrip wires the kafka-go sender into the
// engine, as the main binary does, and reads the report back off the queue.
func TestKafkaIntegration_SenderRoundTrip(t *testing.T) {
	testutil.SkipIfDependenciesUnavailable(t, testRedisAddr, testKafkaAddr)

	queue.SetBrokerList(testKafkaAddr)
	queue.SetTopic("icebook-executions")

	consumer, err := queue.NewQueueMessageConsumer()
	require.NoError(t, err)
	defer consumer.Close()

	engine, clock := setupRedisEngine(t)

	sender, err := kafkasender.NewKafkaMessageSender(testKafkaAddr, "icebook-executions")
	require.NoError(t, err)
	defer sender.Close()
	engine.SetMessageSender(sender)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	received := make(chan *messaging.ExecutionMessage, 8)
	go func() {
		_ = consumer.ConsumeExecutionMessages(ctx, func(msg *messaging.ExecutionMessage) error {
			received <- msg
			return nil
		})
	}()

	// Give the consumer a moment to land on the newest offset before the
	// engine publishes.
	time.Sleep(time.Second)

	_, err = engine.Submit(ctx, mustLimit(t, clock, "sell-s1", core.Sell, 10, 100))
	require.NoError(t, err)
	_, err = engine.Submit(ctx, mustLimit(t, clock, "buy-s1", core.Buy, 10, 100))
	require.NoError(t, err)

	for {
		select {
		case msg := <-received:
			if msg.OrderID != "buy-s1" {
				continue
			}
			assert.Equal(t, "10.000", msg.ExecutedQty)
			require.Len(t, msg.Trades, 1)
			assert.Equal(t, "sell-s1", msg.Trades[0].SellOrderID)
			return
		case <-ctx.Done():
			t.Fatal("timed out waiting for execution message")
		}
	}
}
