package simulator

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand"

	"github.com/AlexandruValeanu/IceBook/pkg/core"
	"github.com/google/uuid"
	"github.com/nikolaydubina/fpdecimal"
)

// OrderGenerator defines the interface for order-flow generation strategies
type OrderGenerator interface {
	// GenerateOrders produces the next batch of orders around the current mid price
	GenerateOrders(ctx context.Context, midPrice float64) ([]*core.Order, error)
}

// LayeredRandomFlow quotes symmetric buy and sell levels around the mid price
// with randomized sizes, hiding a configurable fraction of them as icebergs
type LayeredRandomFlow struct {
	cfg    *Config
	logger *slog.Logger
	clock  core.Clock
	rng    *rand.Rand
}

// NewLayeredRandomFlow creates a new LayeredRandomFlow strategy
func NewLayeredRandomFlow(cfg *Config, logger *slog.Logger, clock core.Clock, rng *rand.Rand) OrderGenerator {
	return &LayeredRandomFlow{
		cfg:    cfg,
		logger: logger.With("component", "LayeredRandomFlow"),
		clock:  clock,
		rng:    rng,
	}
}

// GenerateOrders implements OrderGenerator
func (s *LayeredRandomFlow) GenerateOrders(_ context.Context, midPrice float64) ([]*core.Order, error) {
	halfSpread := midPrice * (s.cfg.SpreadPct / 2 / 100)
	levelStep := midPrice * (s.cfg.LevelStepPct / 100)

	// Buy and sell order per level
	orders := make([]*core.Order, 0, s.cfg.NumLevels*2)

	for i := 1; i <= s.cfg.NumLevels; i++ {
		bidPrice := midPrice - halfSpread - float64(i-1)*levelStep
		askPrice := midPrice + halfSpread + float64(i-1)*levelStep

		buyOrder, err := s.newOrder(core.Buy, bidPrice, i)
		if err != nil {
			return nil, err
		}
		orders = append(orders, buyOrder)

		sellOrder, err := s.newOrder(core.Sell, askPrice, i)
		if err != nil {
			return nil, err
		}
		orders = append(orders, sellOrder)

		s.logger.Debug("Generated order pair",
			"level", i,
			"bid_price", buyOrder.Price(),
			"ask_price", sellOrder.Price())
	}

	return orders, nil
}

func (s *LayeredRandomFlow) newOrder(side core.Side, price float64, level int) (*core.Order, error) {
	orderID := fmt.Sprintf("%s-%s-%d-%s", s.cfg.SimulatorID, side, level, uuid.NewString())

	size := s.cfg.MinOrderSize + s.rng.Int63n(s.cfg.MaxOrderSize-s.cfg.MinOrderSize+1)
	quantity := fpdecimal.FromInt(size)
	priceDec := fpdecimal.FromFloat(math.Max(price, 1))

	if s.rng.Float64() < s.cfg.IcebergRatio {
		peak := int64(math.Ceil(float64(size) * s.cfg.PeakFraction))
		return core.NewIcebergOrder(orderID, side, quantity, priceDec, fpdecimal.FromInt(peak), s.clock)
	}

	return core.NewLimitOrder(orderID, side, quantity, priceDec, s.clock)
}
