package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/fatih/color"
	"github.com/google/uuid"

	"github.com/AlexandruValeanu/IceBook/config"
	"github.com/AlexandruValeanu/IceBook/pkg/backend/memory"
	redisbackend "github.com/AlexandruValeanu/IceBook/pkg/backend/redis"
	"github.com/AlexandruValeanu/IceBook/pkg/core"
	"github.com/AlexandruValeanu/IceBook/pkg/feed"
	"github.com/AlexandruValeanu/IceBook/pkg/logging"
	"github.com/AlexandruValeanu/IceBook/pkg/messaging/kafka"
	"github.com/AlexandruValeanu/IceBook/pkg/otel"
	"github.com/AlexandruValeanu/IceBook/pkg/render"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Setup logging. Logs go to stderr: stdout carries the book tables and
	// trade report lines.
	logging.Setup(logging.Config{
		Level:  cfg.Engine.LogLevel,
		Pretty: cfg.Engine.LogFormat == "pretty",
	})

	ctx := logging.WithSessionID(context.Background(), uuid.NewString())
	logger := logging.FromContext(ctx)
	ctx = logger.WithContext(ctx)

	// Initialize OpenTelemetry
	cleanup, err := otel.Init(otel.Config{
		ServiceName:    otel.ServiceMatchingEngine,
		ServiceVersion: "1.0.0",
	})
	if err != nil {
		log.Fatalf("Failed to initialize OpenTelemetry: %v", err)
	}
	defer cleanup()

	clock := core.NewLogicalClock()

	backend, err := setupBackend(ctx, cfg, clock)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to set up book backend")
	}

	engine := core.NewMatchingEngine(backend, clock)
	logger.Info().Str("backend", cfg.Engine.Backend).Msg("Matching engine ready")

	// Publish execution reports to Kafka (optional). The consumer is for
	// developer purpose which helps pretty print the execution messages in
	// the queue.
	if cfg.Engine.PublishExec {
		sender, err := kafka.NewKafkaMessageSender(cfg.Kafka.BrokerAddr, cfg.Kafka.Topic)
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to create Kafka sender")
		}
		defer sender.Close()
		engine.SetMessageSender(sender)

		kafkaConsumer, err := kafka.SetupConsumer(ctx, logger)
		if err == nil && kafkaConsumer != nil {
			defer kafkaConsumer.Close()
		}
	}

	parser, err := feed.NewParser(clock)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create feed parser")
	}

	// Orders come from stdin, or from a file named as the first positional
	// argument.
	input := io.Reader(os.Stdin)
	if args := flag.Args(); len(args) > 0 {
		f, err := os.Open(args[0])
		if err != nil {
			logger.Fatal().Err(err).Str("path", args[0]).Msg("Failed to open order feed")
		}
		defer f.Close()
		input = f
	}

	tradeColor := color.New(color.FgGreen)

	err = parser.Each(input, func(order *core.Order) error {
		done, err := engine.Submit(ctx, order)
		if err != nil {
			return err
		}

		for _, trade := range done.Trades {
			tradeColor.Println(trade.String())
		}
		fmt.Print(render.BookTable(engine.BuyOrders(), engine.SellOrders()))

		return nil
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("Feed processing failed")
	}

	logger.Info().Msg("Feed exhausted, shutting down")
}

// setupBackend builds the configured book backend
func setupBackend(ctx context.Context, cfg *config.Config, clock core.Clock) (core.BookBackend, error) {
	switch cfg.Engine.Backend {
	case "memory":
		return memory.NewMemoryBackend(clock), nil
	case "redis":
		redisbackend.SetDefaultRedisOptions(&redisbackend.RedisOptions{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		client := redisbackend.GetRedisClient()
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.Redis.Addr, err)
		}

		zapLogger, err := zap.NewProduction()
		if err != nil {
			return nil, fmt.Errorf("failed to create zap logger: %w", err)
		}

		return redisbackend.NewRedisBackend(client, cfg.Redis.Prefix, clock, zapLogger), nil
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Engine.Backend)
	}
}
