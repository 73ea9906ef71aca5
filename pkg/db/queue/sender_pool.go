package queue

import (
	"context"
	"fmt"
	"sync"

	"github.com/AlexandruValeanu/IceBook/pkg/messaging"
)

var (
	senderPool   chan messaging.MessageSender
	poolInitOnce sync.Once
	maxPoolSize  = 32
)

// initSenderPool initializes the sender pool
func initSenderPool() {
	poolInitOnce.Do(func() {
		senderPool = make(chan messaging.MessageSender, maxPoolSize)
		// Pre-populate the entire pool
		for i := 0; i < maxPoolSize; i++ {
			sender, err := NewQueueMessageSender()
			if err != nil {
				continue
			}
			if sender != nil {
				senderPool <- sender
			}
		}
	})
}

// GetSender gets a sender from the pool
func GetSender() messaging.MessageSender {
	initSenderPool()

	select {
	case sender := <-senderPool:
		return sender
	default:
		// Pool exhausted or the broker was unreachable at init
		return nil
	}
}

// ReturnSender returns a sender to the pool
func ReturnSender(sender messaging.MessageSender) {
	if sender == nil {
		return
	}

	select {
	case senderPool <- sender:
	default:
		_ = sender.Close()
	}
}

// SendMessage sends a message using a pooled sender
func SendMessage(ctx context.Context, msg *messaging.ExecutionMessage) error {
	sender := GetSender()
	if sender == nil {
		return fmt.Errorf("failed to get message sender from pool")
	}

	if err := sender.SendExecutionMessage(ctx, msg); err != nil {
		// A failed sender is likely a dead connection; drop it instead
		// of returning it to the pool
		_ = sender.Close()
		return err
	}

	ReturnSender(sender)
	return nil
}

// resetSenderPoolForTesting empties the pool so tests can re-init it with a
// mock producer
func resetSenderPoolForTesting() {
	poolInitOnce = sync.Once{}
	senderPool = nil
}
