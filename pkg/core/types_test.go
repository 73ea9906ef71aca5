package core

import (
	"encoding/json"
	"testing"

	"github.com/nikolaydubina/fpdecimal"
)

func TestFormatDecimal(t *testing.T) {
	tests := []struct {
		name string
		in   fpdecimal.Decimal
		want string
	}{
		{"integer", fpdecimal.FromInt(100), "100.000"},
		{"zero", fpdecimal.Zero, "0.000"},
		{"fraction", fpdecimal.FromFloat(10.5), "10.500"},
		{"three places", fpdecimal.FromFloat(1.234), "1.234"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatDecimal(tt.in); got != tt.want {
				t.Errorf("formatDecimal(%v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestDone_ToMessagingExecutionMessage(t *testing.T) {
	clock := NewLogicalClock()
	order, _ := NewLimitOrder("order-1", Buy, fpdecimal.FromInt(10), fpdecimal.FromInt(100), clock)

	done := newDone(order)
	done.appendTrades([]*Trade{
		{BuyOrderID: "order-1", SellOrderID: "s-1", Price: fpdecimal.FromInt(100), Quantity: fpdecimal.FromInt(4)},
	})
	done.Processed = fpdecimal.FromInt(4)
	done.Left = fpdecimal.FromInt(6)
	done.Stored = true

	msg := done.ToMessagingExecutionMessage()
	if msg == nil {
		t.Fatal("Expected non-nil message")
	}

	if msg.OrderID != "order-1" {
		t.Errorf("Expected OrderID order-1, got %s", msg.OrderID)
	}
	if msg.Side != "BUY" {
		t.Errorf("Expected Side BUY, got %s", msg.Side)
	}
	if msg.ExecutedQty != "4.000" {
		t.Errorf("Expected ExecutedQty 4.000, got %s", msg.ExecutedQty)
	}
	if msg.RemainingQty != "6.000" {
		t.Errorf("Expected RemainingQty 6.000, got %s", msg.RemainingQty)
	}
	if !msg.Stored {
		t.Error("Expected Stored to be true")
	}
	if len(msg.Trades) != 1 {
		t.Fatalf("Expected 1 trade, got %d", len(msg.Trades))
	}
	if msg.Trades[0].Price != "100.000" || msg.Trades[0].Quantity != "4.000" {
		t.Errorf("Unexpected trade formatting: %+v", msg.Trades[0])
	}
}

func TestDone_ToMessagingExecutionMessage_Nil(t *testing.T) {
	var done *Done
	if msg := done.ToMessagingExecutionMessage(); msg != nil {
		t.Error("Expected nil message for nil Done")
	}

	done = &Done{}
	if msg := done.ToMessagingExecutionMessage(); msg != nil {
		t.Error("Expected nil message for Done without an order")
	}
}

func TestDone_MarshalJSON(t *testing.T) {
	clock := NewLogicalClock()
	order, _ := NewLimitOrder("order-1", Sell, fpdecimal.FromInt(10), fpdecimal.FromInt(100), clock)

	done := newDone(order)
	done.appendTrades([]*Trade{
		{BuyOrderID: "b-1", SellOrderID: "order-1", Price: fpdecimal.FromInt(100), Quantity: fpdecimal.FromInt(10)},
	})
	done.Processed = fpdecimal.FromInt(10)
	done.Left = fpdecimal.Zero

	data, err := json.Marshal(done)
	if err != nil {
		t.Fatalf("Marshal returned an error: %v", err)
	}

	var decoded struct {
		OrderID   string   `json:"orderID"`
		Trades    []string `json:"trades"`
		Left      string   `json:"left"`
		Processed string   `json:"processed"`
		Stored    bool     `json:"stored"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal returned an error: %v", err)
	}

	if decoded.OrderID != "order-1" {
		t.Errorf("Expected orderID order-1, got %s", decoded.OrderID)
	}
	if len(decoded.Trades) != 1 || decoded.Trades[0] != "b-1,order-1,100,10" {
		t.Errorf("Unexpected trades: %v", decoded.Trades)
	}
}
