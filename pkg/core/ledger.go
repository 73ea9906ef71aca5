package core

import (
	"fmt"

	"github.com/nikolaydubina/fpdecimal"
)

// Trade is the aggregated matched volume between one buy order and one sell
// order. The price is fixed at the first match between the pair; later matches
// of the same pair only grow the quantity.
type Trade struct {
	BuyOrderID  string
	SellOrderID string
	Price       fpdecimal.Decimal
	Quantity    fpdecimal.Decimal
}

// String renders the trade as a report line: buyID,sellID,price,quantity
func (t *Trade) String() string {
	return fmt.Sprintf("%s,%s,%s,%s", t.BuyOrderID, t.SellOrderID, t.Price.String(), t.Quantity.String())
}

// TradeLedger collects trades awaiting report. At most one live entry exists
// per (buy, sell) pair; entries keep their creation order until drained.
//
// Lookups are linear scans. The ledger only holds entries for orders still in
// flight, so it stays small, and the scan preserves the exact emission order
// the reports require.
type TradeLedger struct {
	trades []*Trade
}

// NewTradeLedger creates an empty TradeLedger
func NewTradeLedger() *TradeLedger {
	return &TradeLedger{
		trades: make([]*Trade, 0),
	}
}

// Record aggregates a match into the live entry for (buyID, sellID), creating
// the entry on the first match of the pair. The stored price is the price of
// that first match.
func (l *TradeLedger) Record(buyID, sellID string, price, quantity fpdecimal.Decimal) {
	for _, trade := range l.trades {
		if trade.BuyOrderID == buyID && trade.SellOrderID == sellID {
			trade.Quantity = trade.Quantity.Add(quantity)
			return
		}
	}

	l.trades = append(l.trades, &Trade{
		BuyOrderID:  buyID,
		SellOrderID: sellID,
		Price:       price,
		Quantity:    quantity,
	})
}

// DrainBuy removes and returns, in ledger order, every entry whose buy side is
// orderID. A drained pair is gone for good: each trade pair is reported
// exactly once, when whichever side terminates first.
func (l *TradeLedger) DrainBuy(orderID string) []*Trade {
	return l.drain(func(t *Trade) bool { return t.BuyOrderID == orderID })
}

// DrainSell removes and returns, in ledger order, every entry whose sell side
// is orderID
func (l *TradeLedger) DrainSell(orderID string) []*Trade {
	return l.drain(func(t *Trade) bool { return t.SellOrderID == orderID })
}

func (l *TradeLedger) drain(match func(*Trade) bool) []*Trade {
	drained := make([]*Trade, 0)
	kept := l.trades[:0]

	for _, trade := range l.trades {
		if match(trade) {
			drained = append(drained, trade)
		} else {
			kept = append(kept, trade)
		}
	}

	l.trades = kept
	return drained
}

// Len returns the number of live entries
func (l *TradeLedger) Len() int {
	return len(l.trades)
}
