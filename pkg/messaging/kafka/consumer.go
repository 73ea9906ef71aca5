package kafka

import (
	"context"

	"github.com/AlexandruValeanu/IceBook/pkg/db/queue"
	"github.com/AlexandruValeanu/IceBook/pkg/messaging"
	"github.com/rs/zerolog"
)

// SetupConsumer initializes and starts the Kafka consumer for logging
// execution messages as they appear on the queue
func SetupConsumer(ctx context.Context, logger zerolog.Logger) (*queue.QueueMessageConsumer, error) {
	kafkaConsumer, err := queue.NewQueueMessageConsumer()
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to create Kafka consumer - continuing without Kafka support")
		return nil, err
	}

	go func() {
		logger.Info().Msg("Starting Kafka consumer")
		err := kafkaConsumer.ConsumeExecutionMessages(ctx, func(msg *messaging.ExecutionMessage) error {
			logger.Info().
				Str("order_id", msg.OrderID).
				Str("side", msg.Side).
				Str("executed_qty", msg.ExecutedQty).
				Str("remaining_qty", msg.RemainingQty).
				Bool("stored", msg.Stored).
				Interface("trades", msg.Trades).
				Msg("Received execution message")
			return nil
		})
		if err != nil {
			logger.Error().Err(err).Msg("Kafka consumer error")
		}
	}()

	return kafkaConsumer, nil
}
