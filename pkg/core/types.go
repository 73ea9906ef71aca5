package core

import (
	"encoding/json"
	"strings"

	"github.com/AlexandruValeanu/IceBook/pkg/messaging"
	"github.com/nikolaydubina/fpdecimal"
)

// Done contains the result of one order submission
type Done struct {
	// Initial order submitted
	Order *Order
	// Original total quantity of the order
	Quantity fpdecimal.Decimal
	// Trades drained and reported during this submission, in emission order
	Trades []*Trade
	// Remaining quantity left for the initial order, visible plus hidden
	Left fpdecimal.Decimal
	// Total quantity matched for the initial order
	Processed fpdecimal.Decimal
	// Whether the order is resting in the book after the submission
	Stored bool
}

// newDone creates a new Done object for the given order
func newDone(order *Order) *Done {
	return &Done{
		Order:    order,
		Quantity: order.TotalQuantity(),
		Trades:   make([]*Trade, 0),
	}
}

// appendTrades adds drained ledger entries to the result
func (d *Done) appendTrades(trades []*Trade) {
	d.Trades = append(d.Trades, trades...)
}

// ToMessagingExecutionMessage converts the Done object to a
// messaging.ExecutionMessage.
func (d *Done) ToMessagingExecutionMessage() *messaging.ExecutionMessage {
	if d == nil || d.Order == nil {
		return nil
	}

	msgTrades := make([]messaging.Trade, len(d.Trades))
	for i, trade := range d.Trades {
		msgTrades[i] = messaging.Trade{
			BuyOrderID:  trade.BuyOrderID,
			SellOrderID: trade.SellOrderID,
			Price:       formatDecimal(trade.Price),
			Quantity:    formatDecimal(trade.Quantity),
		}
	}

	return &messaging.ExecutionMessage{
		OrderID:      d.Order.ID(),
		Side:         d.Order.Side().String(),
		ExecutedQty:  formatDecimal(d.Processed),
		RemainingQty: formatDecimal(d.Left),
		Stored:       d.Stored,
		Trades:       msgTrades,
	}
}

// formatDecimal renders a decimal with exactly 3 decimal places, the fixed
// format used on the queue.
func formatDecimal(d fpdecimal.Decimal) string {
	val := d.String()
	parts := strings.Split(val, ".")
	if len(parts) == 1 {
		return val + ".000"
	}
	if len(parts[1]) < 3 {
		return val + strings.Repeat("0", 3-len(parts[1]))
	}
	return val
}

// MarshalJSON implements json.Marshaler interface for Done
func (d *Done) MarshalJSON() ([]byte, error) {
	trades := make([]string, len(d.Trades))
	for i, trade := range d.Trades {
		trades[i] = trade.String()
	}

	return json.Marshal(struct {
		OrderID   string   `json:"orderID"`
		Trades    []string `json:"trades"`
		Left      string   `json:"left"`
		Processed string   `json:"processed"`
		Stored    bool     `json:"stored"`
	}{
		OrderID:   d.Order.ID(),
		Trades:    trades,
		Left:      d.Left.String(),
		Processed: d.Processed.String(),
		Stored:    d.Stored,
	})
}
