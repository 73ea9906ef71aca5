package core

import (
	"encoding/json"
	"fmt"

	"github.com/nikolaydubina/fpdecimal"
)

// Side represents buy or sell side of the order
type Side int

// Order sides
const (
	Sell Side = iota
	Buy
)

// String returns side as string
func (s Side) String() string {
	switch s {
	case Buy:
		return "BUY"
	case Sell:
		return "SELL"
	default:
		return "UNKNOWN"
	}
}

// Opposite returns the other side
func (s Side) Opposite() Side {
	if s == Buy {
		return Sell
	}
	return Buy
}

// OrderKind represents the kind of the order
type OrderKind string

// Order kinds
const (
	KindLimit   OrderKind = "LIMIT"
	KindIceberg OrderKind = "ICEBERG"
)

// Order stores information about a single resting or incoming order.
//
// The visible quantity is all the matching engine ever sees. An iceberg order
// additionally carries a hidden reserve that is disclosed in slices of at most
// peakCap; a limit order has no hidden state.
type Order struct {
	id        string
	kind      OrderKind
	side      Side
	price     fpdecimal.Decimal
	visible   fpdecimal.Decimal
	reserve   fpdecimal.Decimal
	peakCap   fpdecimal.Decimal
	timestamp int64
}

// NewLimitOrder creates new constant object Order
func NewLimitOrder(orderID string, side Side, quantity, price fpdecimal.Decimal, clock Clock) (*Order, error) {
	if quantity.LessThanOrEqual(fpdecimal.Zero) {
		return nil, ErrInvalidQuantity
	}

	if price.LessThanOrEqual(fpdecimal.Zero) {
		return nil, ErrInvalidPrice
	}

	if clock == nil {
		return nil, ErrNilClock
	}

	return &Order{
		id:        orderID,
		kind:      KindLimit,
		side:      side,
		price:     price,
		visible:   quantity,
		timestamp: clock.Tick(),
	}, nil
}

// NewIcebergOrder creates new constant object Order with a hidden reserve.
// The peak cap is carved out of the total quantity up front: the order enters
// the book showing peakCap and concealing quantity-peakCap.
func NewIcebergOrder(orderID string, side Side, quantity, price, peakCap fpdecimal.Decimal, clock Clock) (*Order, error) {
	if quantity.LessThanOrEqual(fpdecimal.Zero) {
		return nil, ErrInvalidQuantity
	}

	if price.LessThanOrEqual(fpdecimal.Zero) {
		return nil, ErrInvalidPrice
	}

	if peakCap.LessThanOrEqual(fpdecimal.Zero) || quantity.LessThan(peakCap) {
		return nil, ErrInvalidPeak
	}

	if clock == nil {
		return nil, ErrNilClock
	}

	return &Order{
		id:        orderID,
		kind:      KindIceberg,
		side:      side,
		price:     price,
		visible:   peakCap,
		reserve:   quantity.Sub(peakCap),
		peakCap:   peakCap,
		timestamp: clock.Tick(),
	}, nil
}

// ID returns OrderID field copy
func (o *Order) ID() string {
	return o.id
}

// Kind returns the order kind
func (o *Order) Kind() OrderKind {
	return o.kind
}

// Side returns side of the Order
func (o *Order) Side() Side {
	return o.side
}

// Price returns Price field copy
func (o *Order) Price() fpdecimal.Decimal {
	return o.price
}

// VisibleQuantity returns the quantity exposed to matching
func (o *Order) VisibleQuantity() fpdecimal.Decimal {
	return o.visible
}

// HiddenReserve returns the concealed remainder of an iceberg order. It is
// zero for limit orders.
func (o *Order) HiddenReserve() fpdecimal.Decimal {
	return o.reserve
}

// PeakCap returns the disclosure cap of an iceberg order
func (o *Order) PeakCap() fpdecimal.Decimal {
	return o.peakCap
}

// TotalQuantity returns the full remaining size, visible plus hidden
func (o *Order) TotalQuantity() fpdecimal.Decimal {
	return o.visible.Add(o.reserve)
}

// Timestamp returns the priority timestamp
func (o *Order) Timestamp() int64 {
	return o.timestamp
}

// SetTimestamp assigns a new priority timestamp. The book uses this when an
// iceberg order enters it, and the refill path uses it when a fresh slice is
// disclosed.
func (o *Order) SetTimestamp(now int64) {
	o.timestamp = now
}

// IsLimitOrder returns true if Order is LIMIT
func (o *Order) IsLimitOrder() bool {
	return o.kind == KindLimit
}

// IsIcebergOrder returns true if Order is ICEBERG
func (o *Order) IsIcebergOrder() bool {
	return o.kind == KindIceberg
}

// IsTerminated returns true once the order has no matchable quantity left.
// For an iceberg order a zero visible quantity implies an empty reserve,
// because the inside-book refill rule replenishes the slice whenever reserve
// remains.
func (o *Order) IsTerminated() bool {
	return o.visible.Equal(fpdecimal.Zero)
}

// DecreaseOutsideBook debits a matched amount from an order that is not yet
// resting in the book. A limit order just shrinks its visible quantity. An
// iceberg order depletes its hidden reserve first and only then its displayed
// slice: outside the book there is no display priority to protect.
//
// The amount must not exceed the matchable quantity; a violation is an engine
// defect, not a recoverable condition.
func (o *Order) DecreaseOutsideBook(amount fpdecimal.Decimal) {
	if o.kind == KindLimit {
		if amount.GreaterThan(o.visible) {
			panic(fmt.Sprintf("order %s: outside-book decrease %s exceeds visible %s", o.id, amount, o.visible))
		}
		o.visible = o.visible.Sub(amount)
		return
	}

	if amount.GreaterThan(o.TotalQuantity()) {
		panic(fmt.Sprintf("order %s: outside-book decrease %s exceeds total %s", o.id, amount, o.TotalQuantity()))
	}

	fromReserve := min(o.reserve, amount)
	o.reserve = o.reserve.Sub(fromReserve)
	o.visible = o.visible.Sub(amount.Sub(fromReserve))
}

// DecreaseInsideBook debits a matched amount from an order resting in the
// book. A limit order behaves as outside the book. An iceberg order shrinks
// its displayed slice; when the slice hits zero it is refilled from the
// reserve up to the peak cap and the order gets a new priority timestamp,
// queueing the fresh slice behind existing orders at its price.
func (o *Order) DecreaseInsideBook(amount fpdecimal.Decimal, now int64) {
	if amount.GreaterThan(o.visible) {
		panic(fmt.Sprintf("order %s: inside-book decrease %s exceeds visible %s", o.id, amount, o.visible))
	}

	o.visible = o.visible.Sub(amount)

	if o.kind == KindIceberg && o.visible.Equal(fpdecimal.Zero) {
		peak := min(o.peakCap, o.reserve)
		o.reserve = o.reserve.Sub(peak)
		o.visible = peak
		o.timestamp = now
	}
}

// String implements Stringer interface
func (o *Order) String() string {
	j, _ := o.MarshalJSON()
	return string(j)
}

// orderJSON is the serialized shape of an Order, used by storage backends
type orderJSON struct {
	ID        string    `json:"id"`
	Kind      OrderKind `json:"kind"`
	Side      Side      `json:"side"`
	Price     string    `json:"price"`
	Visible   string    `json:"visible"`
	Reserve   string    `json:"reserve"`
	PeakCap   string    `json:"peakCap"`
	Timestamp int64     `json:"timestamp"`
}

// MarshalJSON implements custom JSON marshaling for Order
func (o *Order) MarshalJSON() ([]byte, error) {
	return json.Marshal(orderJSON{
		ID:        o.id,
		Kind:      o.kind,
		Side:      o.side,
		Price:     o.price.String(),
		Visible:   o.visible.String(),
		Reserve:   o.reserve.String(),
		PeakCap:   o.peakCap.String(),
		Timestamp: o.timestamp,
	})
}

// UnmarshalJSON implements custom JSON unmarshaling for Order
func (o *Order) UnmarshalJSON(data []byte) error {
	var oj orderJSON
	if err := json.Unmarshal(data, &oj); err != nil {
		return err
	}

	var err error

	o.id = oj.ID
	o.kind = oj.Kind
	o.side = oj.Side

	o.price, err = fpdecimal.FromString(oj.Price)
	if err != nil {
		o.price = fpdecimal.Zero
	}

	o.visible, err = fpdecimal.FromString(oj.Visible)
	if err != nil {
		o.visible = fpdecimal.Zero
	}

	o.reserve, err = fpdecimal.FromString(oj.Reserve)
	if err != nil {
		o.reserve = fpdecimal.Zero
	}

	o.peakCap, err = fpdecimal.FromString(oj.PeakCap)
	if err != nil {
		o.peakCap = fpdecimal.Zero
	}

	o.timestamp = oj.Timestamp

	return nil
}

// min returns the minimum of two decimals
func min(a, b fpdecimal.Decimal) fpdecimal.Decimal {
	if a.LessThan(b) {
		return a
	}
	return b
}
