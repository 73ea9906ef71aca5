package memory

import (
	"container/heap"
	"sort"
	"sync"

	"github.com/AlexandruValeanu/IceBook/pkg/core"
)

// orderHeap is a priority queue of orders. The less function encodes the
// side's price-time priority; an order whose price or timestamp is mutated in
// place must be removed and reinserted for the heap to notice.
type orderHeap struct {
	orders []*core.Order
	less   func(a, b *core.Order) bool
}

func (h *orderHeap) Len() int { return len(h.orders) }

func (h *orderHeap) Less(i, j int) bool { return h.less(h.orders[i], h.orders[j]) }

func (h *orderHeap) Swap(i, j int) { h.orders[i], h.orders[j] = h.orders[j], h.orders[i] }

func (h *orderHeap) Push(x any) {
	h.orders = append(h.orders, x.(*core.Order))
}

func (h *orderHeap) Pop() any {
	old := h.orders
	n := len(old)
	order := old[n-1]
	old[n-1] = nil
	h.orders = old[:n-1]
	return order
}

// buyLess orders buys by price descending, then timestamp ascending
func buyLess(a, b *core.Order) bool {
	if a.Price().Equal(b.Price()) {
		return a.Timestamp() < b.Timestamp()
	}
	return a.Price().GreaterThan(b.Price())
}

// sellLess orders sells by price ascending, then timestamp ascending
func sellLess(a, b *core.Order) bool {
	if a.Price().Equal(b.Price()) {
		return a.Timestamp() < b.Timestamp()
	}
	return a.Price().LessThan(b.Price())
}

// MemoryBackend implements the BookBackend interface with in-memory priority
// queues
type MemoryBackend struct {
	sync.RWMutex
	buys  *orderHeap
	sells *orderHeap
	clock core.Clock
}

// NewMemoryBackend creates new instance of MemoryBackend. The clock supplies
// the fresh priority timestamps handed to iceberg orders on insertion.
func NewMemoryBackend(clock core.Clock) *MemoryBackend {
	return &MemoryBackend{
		buys:  &orderHeap{less: buyLess},
		sells: &orderHeap{less: sellLess},
		clock: clock,
	}
}

// Insert queues an order on its side, renewing an iceberg's timestamp first
func (b *MemoryBackend) Insert(order *core.Order) {
	b.Lock()
	defer b.Unlock()

	if order.IsIcebergOrder() {
		order.SetTimestamp(b.clock.Tick())
	}

	heap.Push(b.sideOf(order.Side()), order)
}

// PeekBestBuy returns the highest-priority buy order without removing it
func (b *MemoryBackend) PeekBestBuy() *core.Order {
	b.RLock()
	defer b.RUnlock()
	return peek(b.buys)
}

// PeekBestSell returns the highest-priority sell order without removing it
func (b *MemoryBackend) PeekBestSell() *core.Order {
	b.RLock()
	defer b.RUnlock()
	return peek(b.sells)
}

// RemoveBestBuy removes and returns the highest-priority buy order
func (b *MemoryBackend) RemoveBestBuy() *core.Order {
	b.Lock()
	defer b.Unlock()
	return remove(b.buys)
}

// RemoveBestSell removes and returns the highest-priority sell order
func (b *MemoryBackend) RemoveBestSell() *core.Order {
	b.Lock()
	defer b.Unlock()
	return remove(b.sells)
}

// ReinsertBestBuy re-derives the position of the mutated best buy order
func (b *MemoryBackend) ReinsertBestBuy(order *core.Order) {
	b.Lock()
	defer b.Unlock()
	reinsert(b.buys, order)
}

// ReinsertBestSell re-derives the position of the mutated best sell order
func (b *MemoryBackend) ReinsertBestSell(order *core.Order) {
	b.Lock()
	defer b.Unlock()
	reinsert(b.sells, order)
}

// BuyOrders returns the resting buy orders in priority order
func (b *MemoryBackend) BuyOrders() []*core.Order {
	b.RLock()
	defer b.RUnlock()
	return snapshot(b.buys)
}

// SellOrders returns the resting sell orders in priority order
func (b *MemoryBackend) SellOrders() []*core.Order {
	b.RLock()
	defer b.RUnlock()
	return snapshot(b.sells)
}

func (b *MemoryBackend) sideOf(side core.Side) *orderHeap {
	if side == core.Buy {
		return b.buys
	}
	return b.sells
}

func peek(h *orderHeap) *core.Order {
	if h.Len() == 0 {
		return nil
	}
	return h.orders[0]
}

func remove(h *orderHeap) *core.Order {
	if h.Len() == 0 {
		return nil
	}
	return heap.Pop(h).(*core.Order)
}

func reinsert(h *orderHeap, order *core.Order) {
	if h.Len() == 0 {
		return
	}
	heap.Pop(h)
	heap.Push(h, order)
}

func snapshot(h *orderHeap) []*core.Order {
	orders := make([]*core.Order, len(h.orders))
	copy(orders, h.orders)
	sort.Slice(orders, func(i, j int) bool {
		return h.less(orders[i], orders[j])
	})
	return orders
}

// Ensure MemoryBackend implements BookBackend
var _ core.BookBackend = (*MemoryBackend)(nil)
