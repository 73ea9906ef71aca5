package main

import (
	"context"
	"fmt"
	"time"

	"github.com/AlexandruValeanu/IceBook/pkg/backend/memory"
	"github.com/AlexandruValeanu/IceBook/pkg/core"
	"github.com/AlexandruValeanu/IceBook/pkg/render"
	"github.com/nikolaydubina/fpdecimal"
)

func main() {
	ctx := context.Background()

	// Initialize the matching engine with an in-memory backend
	clock := core.NewLogicalClock()
	engine := core.NewMatchingEngine(memory.NewMemoryBackend(clock), clock)

	// Create order IDs
	sellOrderID := fmt.Sprintf("sell_%d", time.Now().UnixMilli())
	buyOrderID := fmt.Sprintf("buy_%d", time.Now().UnixMilli())

	// Rest a sell iceberg: 100 total, showing slices of 25
	sellOrder, err := core.NewIcebergOrder(sellOrderID, core.Sell,
		fpdecimal.FromInt(100), fpdecimal.FromInt(10), fpdecimal.FromInt(25), clock)
	if err != nil {
		panic(err)
	}

	if _, err := engine.Submit(ctx, sellOrder); err != nil {
		panic(err)
	}

	fmt.Printf("Created sell iceberg: %s (visible %s of %s)\n",
		sellOrder.ID(), sellOrder.VisibleQuantity(), fpdecimal.FromInt(100))

	// Cross it with a buy for 40: consumes one full slice and part of the next
	buyOrder, err := core.NewLimitOrder(buyOrderID, core.Buy,
		fpdecimal.FromInt(40), fpdecimal.FromInt(10), clock)
	if err != nil {
		panic(err)
	}

	buyDone, err := engine.Submit(ctx, buyOrder)
	if err != nil {
		panic(err)
	}

	// Print the results
	fmt.Printf("Processing buy order: %s\n", buyOrder.ID())
	for _, trade := range buyDone.Trades {
		fmt.Printf("Trade executed: %s\n", trade)
	}
	fmt.Printf("Buy order processed quantity: %s\n", buyDone.Processed.String())
	fmt.Printf("Sell iceberg remaining: visible=%s hidden=%s\n",
		sellOrder.VisibleQuantity(), sellOrder.HiddenReserve())

	// Show the book
	fmt.Println()
	fmt.Print(render.BookTable(engine.BuyOrders(), engine.SellOrders()))
}
