package core

// BookBackend defines the interface for the two priority structures holding
// resting orders, one per side. Backends keep each side in strict price-time
// priority: buys by price descending, sells by price ascending, earlier
// timestamps winning ties.
type BookBackend interface {
	// Insert queues an order on its side. An iceberg order is assigned a
	// fresh priority timestamp first: entering the book always resets
	// display priority.
	Insert(order *Order)

	// Peek operations return the highest-priority resting order without
	// removing it, or nil if the side is empty.
	PeekBestBuy() *Order
	PeekBestSell() *Order

	// Remove operations remove and return the highest-priority order, or
	// nil if the side is empty.
	RemoveBestBuy() *Order
	RemoveBestSell() *Order

	// Reinsert operations replace the current best order with the given
	// one, re-deriving its position from the current price and timestamp.
	// Required after an in-place mutation of the best order, since the
	// priority structure does not observe key changes. The given order
	// must be the side's current best.
	ReinsertBestBuy(order *Order)
	ReinsertBestSell(order *Order)

	// Snapshot operations return the current resting orders of a side in
	// priority order, for rendering and inspection.
	BuyOrders() []*Order
	SellOrders() []*Order
}
