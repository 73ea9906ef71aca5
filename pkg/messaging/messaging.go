package messaging

import "context"

// MessageSender defines an interface for sending messages
// This helps decouple the core package from specific implementations
// like Kafka in the queue package
type MessageSender interface {
	SendExecutionMessage(ctx context.Context, msg *ExecutionMessage) error
	Close() error
}

// ExecutionMessage represents the downstream-facing result of one order
// submission
type ExecutionMessage struct {
	OrderID      string
	Side         string
	ExecutedQty  string
	RemainingQty string
	Stored       bool
	Trades       []Trade
}

// Trade represents one reported trade: the aggregated volume matched between
// a specific buy order and a specific sell order
type Trade struct {
	BuyOrderID  string
	SellOrderID string
	Price       string
	Quantity    string
}
