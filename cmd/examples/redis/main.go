package main

import (
	"context"
	"fmt"
	"time"

	redisbackend "github.com/AlexandruValeanu/IceBook/pkg/backend/redis"
	"github.com/AlexandruValeanu/IceBook/pkg/core"
	"github.com/nikolaydubina/fpdecimal"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	redisAddr = "localhost:6379"
	redisDB   = 0
	prefix    = "icebook"
)

func main() {
	ctx := context.Background()

	// Connect to Redis
	client := redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		Password: "", // no password set
		DB:       redisDB,
	})

	// Check Redis connection
	pong, err := client.Ping(ctx).Result()
	if err != nil {
		panic(fmt.Sprintf("Failed to connect to Redis: %v", err))
	}
	fmt.Printf("Redis connection established: %s\n", pong)

	// Flush the database to start fresh
	client.FlushDB(ctx)

	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}

	// Initialize the matching engine with a Redis backend
	clock := core.NewLogicalClock()
	backend := redisbackend.NewRedisBackend(client, prefix, clock, logger)
	engine := core.NewMatchingEngine(backend, clock)

	// Create order IDs with timestamp to ensure uniqueness
	sellOrderID := fmt.Sprintf("sell_%d", time.Now().UnixMilli())
	buyOrderID := fmt.Sprintf("buy_%d", time.Now().UnixMilli())

	// Rest a sell limit order
	sellOrder, err := core.NewLimitOrder(sellOrderID, core.Sell,
		fpdecimal.FromInt(10), fpdecimal.FromInt(10), clock)
	if err != nil {
		panic(err)
	}

	if _, err := engine.Submit(ctx, sellOrder); err != nil {
		panic(err)
	}
	fmt.Printf("Created sell order: %s\n", sellOrder.ID())

	// Cross it partially with a buy order
	buyOrder, err := core.NewLimitOrder(buyOrderID, core.Buy,
		fpdecimal.FromInt(5), fpdecimal.FromInt(10), clock)
	if err != nil {
		panic(err)
	}

	buyDone, err := engine.Submit(ctx, buyOrder)
	if err != nil {
		panic(err)
	}

	// Retrieve the updated sell order from Redis
	updatedSellOrder := backend.PeekBestSell()

	// Print the results
	fmt.Printf("Processing buy order: %s\n", buyOrder.ID())
	for _, trade := range buyDone.Trades {
		fmt.Printf("Trade executed: %s\n", trade)
	}
	fmt.Printf("Sell order remaining quantity: %s\n", updatedSellOrder.VisibleQuantity().String())
	fmt.Printf("Buy order processed quantity: %s\n", buyDone.Processed.String())

	// Print Redis storage details
	fmt.Println("\nOrders stored in Redis:")
	jsonData, _ := client.Get(ctx, fmt.Sprintf("%s:order:%s", prefix, sellOrderID)).Result()
	fmt.Printf("- Sell Order Redis data: %s\n", jsonData)
}
