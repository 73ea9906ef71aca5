package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/AlexandruValeanu/IceBook/pkg/messaging"
	"github.com/IBM/sarama"
)

var (
	brokerList = "localhost:9092"
	topic      = "icebook-executions"
)

// SetBrokerList overrides the Kafka broker address
func SetBrokerList(brokers string) {
	brokerList = brokers
}

// SetTopic overrides the Kafka topic for execution messages
func SetTopic(t string) {
	topic = t
}

// newSyncProducer creates the sarama producer; tests swap this out
var newSyncProducer = func() (sarama.SyncProducer, error) {
	return sarama.NewSyncProducer([]string{brokerList}, nil)
}

// QueueMessageSender implements the MessageSender interface
// for sending messages to Kafka
type QueueMessageSender struct {
	producer sarama.SyncProducer
}

// NewQueueMessageSender creates a sender backed by a sarama sync producer
func NewQueueMessageSender() (*QueueMessageSender, error) {
	producer, err := newSyncProducer()
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}

	return &QueueMessageSender{producer: producer}, nil
}

// SendExecutionMessage sends the ExecutionMessage to the Kafka queue
func (q *QueueMessageSender) SendExecutionMessage(_ context.Context, msg *messaging.ExecutionMessage) error {
	messageBytes, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal execution message: %w", err)
	}

	producerMsg := &sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.StringEncoder(msg.OrderID),
		Value: sarama.ByteEncoder(messageBytes),
	}

	if _, _, err := q.producer.SendMessage(producerMsg); err != nil {
		return fmt.Errorf("failed to send message to Kafka: %w", err)
	}

	return nil
}

// Close closes the underlying producer
func (q *QueueMessageSender) Close() error {
	return q.producer.Close()
}

// Ensure QueueMessageSender implements MessageSender
var _ messaging.MessageSender = (*QueueMessageSender)(nil)

// QueueMessageConsumer reads execution messages back off the Kafka queue
type QueueMessageConsumer struct {
	consumer sarama.Consumer
}

// NewQueueMessageConsumer creates a consumer for the execution topic
func NewQueueMessageConsumer() (*QueueMessageConsumer, error) {
	consumer, err := sarama.NewConsumer([]string{brokerList}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka consumer: %w", err)
	}

	return &QueueMessageConsumer{consumer: consumer}, nil
}

// ConsumeExecutionMessages consumes the execution topic from the newest
// offset, invoking the handler for every decoded message until the context is
// canceled
func (c *QueueMessageConsumer) ConsumeExecutionMessages(ctx context.Context, handler func(*messaging.ExecutionMessage) error) error {
	partitionConsumer, err := c.consumer.ConsumePartition(topic, 0, sarama.OffsetNewest)
	if err != nil {
		return fmt.Errorf("failed to consume partition: %w", err)
	}
	defer partitionConsumer.Close()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-partitionConsumer.Errors():
			return err
		case kafkaMsg := <-partitionConsumer.Messages():
			var msg messaging.ExecutionMessage
			if err := json.Unmarshal(kafkaMsg.Value, &msg); err != nil {
				return fmt.Errorf("failed to unmarshal execution message: %w", err)
			}
			if err := handler(&msg); err != nil {
				return err
			}
		}
	}
}

// Close closes the underlying consumer
func (c *QueueMessageConsumer) Close() error {
	return c.consumer.Close()
}
