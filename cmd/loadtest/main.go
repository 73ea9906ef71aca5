package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"sync"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
	"golang.org/x/time/rate"

	"github.com/AlexandruValeanu/IceBook/pkg/backend/memory"
	"github.com/AlexandruValeanu/IceBook/pkg/core"
	"github.com/nikolaydubina/fpdecimal"
)

const (
	numWorkers      = 8
	ordersPerWorker = 50000
	maxOrdersPerSec = 200000
)

func main() {
	icebergRatio := flag.Float64("iceberg-ratio", 0.2, "Fraction of orders submitted as icebergs")
	priceLevels := flag.Int("price-levels", 20, "Number of distinct price levels around the mid")
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)
	go func() {
		<-sigChan
		log.Println("Received interrupt signal, cleaning up...")
		cancel()
	}()

	clock := core.NewLogicalClock()
	engine := core.NewMatchingEngine(memory.NewMemoryBackend(clock), clock)

	// The engine owns its book exclusively, so the workers only generate;
	// a single consumer loop performs every submission.
	orderCh := make(chan *core.Order, 1024)
	limiter := rate.NewLimiter(rate.Limit(maxOrdersPerSec), maxOrdersPerSec/10)

	var wg sync.WaitGroup
	log.Printf("Starting %d generator workers, %d orders per worker...", numWorkers, ordersPerWorker)

	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(time.Now().UnixNano() + int64(workerID)))
			for j := 0; j < ordersPerWorker; j++ {
				if err := limiter.Wait(ctx); err != nil {
					return
				}

				order, err := generateRandomOrder(rng, clock, workerID*ordersPerWorker+j, *icebergRatio, *priceLevels)
				if err != nil {
					log.Printf("Failed to generate order: %v", err)
					continue
				}

				select {
				case orderCh <- order:
				case <-ctx.Done():
					return
				}
			}
		}(i)
	}

	go func() {
		wg.Wait()
		close(orderCh)
	}()

	// Submission latencies from 1us up to 1s, 3 significant figures
	hist := hdrhistogram.New(1, int64(time.Second/time.Microsecond), 3)
	var submitted, traded int
	start := time.Now()

	for order := range orderCh {
		submitStart := time.Now()
		done, err := engine.Submit(ctx, order)
		elapsed := time.Since(submitStart)

		if err != nil {
			log.Printf("Submit failed: %v", err)
			continue
		}

		_ = hist.RecordValue(int64(elapsed / time.Microsecond))
		submitted++
		traded += len(done.Trades)
	}

	duration := time.Since(start)

	log.Printf("Load test completed in %v", duration)
	log.Printf("Orders submitted: %d (%.0f orders/sec)", submitted, float64(submitted)/duration.Seconds())
	log.Printf("Trades reported: %d", traded)
	log.Printf("Resting orders: %d buys, %d sells", len(engine.BuyOrders()), len(engine.SellOrders()))

	fmt.Println("\nSubmission latency (us):")
	fmt.Printf("  p50:   %d\n", hist.ValueAtQuantile(50))
	fmt.Printf("  p90:   %d\n", hist.ValueAtQuantile(90))
	fmt.Printf("  p99:   %d\n", hist.ValueAtQuantile(99))
	fmt.Printf("  p99.9: %d\n", hist.ValueAtQuantile(99.9))
	fmt.Printf("  max:   %d\n", hist.Max())
}

func generateRandomOrder(rng *rand.Rand, clock core.Clock, orderNum int, icebergRatio float64, priceLevels int) (*core.Order, error) {
	side := core.Buy
	if rng.Float64() < 0.5 {
		side = core.Sell
	}

	// Cluster prices around a mid of 10000 for a high matching probability
	price := fpdecimal.FromInt(int64(10000 - priceLevels/2 + rng.Intn(priceLevels)))
	quantity := fpdecimal.FromInt(int64(1 + rng.Intn(100)))
	orderID := fmt.Sprintf("order-%d", orderNum)

	if rng.Float64() < icebergRatio {
		total := quantity.Mul(fpdecimal.FromInt(4))
		return core.NewIcebergOrder(orderID, side, total, price, quantity, clock)
	}

	return core.NewLimitOrder(orderID, side, quantity, price, clock)
}
