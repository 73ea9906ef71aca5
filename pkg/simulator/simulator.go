// Package simulator generates synthetic order flow against a matching engine.
package simulator

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/AlexandruValeanu/IceBook/pkg/core"
)

// Simulator drives a matching engine with randomized order flow. The mid
// price follows a bounded random walk; every tick it submits one batch of
// quotes around the current mid.
type Simulator struct {
	cfg       *Config
	logger    *slog.Logger
	engine    *core.MatchingEngine
	generator OrderGenerator
	rng       *rand.Rand
	midPrice  float64
	stopCh    chan struct{}
	wg        sync.WaitGroup
}

// NewSimulator creates a new simulator feeding the given engine
func NewSimulator(cfg *Config, logger *slog.Logger, engine *core.MatchingEngine, generator OrderGenerator, rng *rand.Rand) *Simulator {
	return &Simulator{
		cfg:       cfg,
		logger:    logger.With("component", "Simulator"),
		engine:    engine,
		generator: generator,
		rng:       rng,
		midPrice:  cfg.StartPrice,
		stopCh:    make(chan struct{}),
	}
}

// Start begins the simulation loop
func (s *Simulator) Start(ctx context.Context) error {
	s.logger.Info("Starting order-flow simulator",
		"start_price", s.cfg.StartPrice,
		"update_interval", s.cfg.UpdateInterval)

	s.wg.Add(1)
	go s.run(ctx)

	return nil
}

// Stop gracefully shuts down the simulator
func (s *Simulator) Stop(ctx context.Context) error {
	s.logger.Info("Stopping order-flow simulator")

	close(s.stopCh)

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Simulator stopped successfully")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("timeout waiting for simulator to stop: %w", ctx.Err())
	}
}

// run is the main simulation loop
func (s *Simulator) run(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.cfg.UpdateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Context cancelled, stopping simulation loop")
			return
		case <-s.stopCh:
			s.logger.Info("Stop signal received, stopping simulation loop")
			return
		case <-ticker.C:
			if err := s.tick(ctx); err != nil {
				s.logger.Error("Failed to submit batch", "error", err)
				// Continue running despite errors
			}
		}
	}
}

// tick performs a single iteration: walk the mid price, generate a batch and
// submit it to the engine
func (s *Simulator) tick(ctx context.Context) error {
	s.midPrice = s.walk(s.midPrice)

	orders, err := s.generator.GenerateOrders(ctx, s.midPrice)
	if err != nil {
		return fmt.Errorf("failed to generate orders: %w", err)
	}

	for _, order := range orders {
		done, err := s.engine.Submit(ctx, order)
		if err != nil {
			s.logger.Error("Failed to submit order",
				"order_id", order.ID(),
				"side", order.Side().String(),
				"error", err)
			continue
		}

		if len(done.Trades) > 0 {
			s.logger.Info("Batch order traded",
				"order_id", order.ID(),
				"trades", len(done.Trades),
				"executed", done.Processed,
				"remaining", done.Left)
		}
	}

	s.logger.Debug("Submitted batch",
		"mid_price", s.midPrice,
		"orders", len(orders),
		"resting_buys", len(s.engine.BuyOrders()),
		"resting_sells", len(s.engine.SellOrders()))

	return nil
}

// walk moves the mid price by a random fraction of MaxDriftPct, floored at 1
func (s *Simulator) walk(price float64) float64 {
	drift := (s.rng.Float64()*2 - 1) * (s.cfg.MaxDriftPct / 100)
	next := price * (1 + drift)
	if next < 1 {
		next = 1
	}
	return next
}
