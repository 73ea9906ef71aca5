package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/AlexandruValeanu/IceBook/pkg/db/queue"
	"github.com/AlexandruValeanu/IceBook/pkg/messaging"
	"github.com/AlexandruValeanu/IceBook/pkg/otel"
	"github.com/nikolaydubina/fpdecimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// MatchingEngine matches incoming orders against a book under strict
// price-time priority and keeps the trade ledger.
//
// One engine instance exclusively owns its backend and ledger. Submit runs to
// completion before returning and must not be called concurrently; callers
// that want concurrent submission have to serialize whole Submit calls.
type MatchingEngine struct {
	backend BookBackend
	ledger  *TradeLedger
	clock   Clock
	sender  messaging.MessageSender
}

// NewMatchingEngine creates a MatchingEngine on top of a backend. The clock
// must be the same one used to timestamp the orders submitted to this engine.
func NewMatchingEngine(backend BookBackend, clock Clock) *MatchingEngine {
	return &MatchingEngine{
		backend: backend,
		ledger:  NewTradeLedger(),
		clock:   clock,
	}
}

// SetMessageSender routes execution reports through the given sender instead
// of the default Kafka producer pool. Must be called before the first Submit.
func (e *MatchingEngine) SetMessageSender(sender messaging.MessageSender) {
	e.sender = sender
}

// Submit matches the order against the book, rests whatever remains of it and
// reports the trades of every order the submission terminated.
func (e *MatchingEngine) Submit(ctx context.Context, order *Order) (*Done, error) {
	if order == nil {
		return nil, ErrNilOrder
	}

	ctx, span := otel.StartOrderSpan(ctx, otel.SpanSubmitOrder,
		attribute.String(otel.AttributeOrderID, order.ID()),
		attribute.String(otel.AttributeOrderSide, order.Side().String()),
		attribute.String(otel.AttributeOrderKind, string(order.Kind())),
		attribute.String(otel.AttributeOrderQuantity, order.TotalQuantity().String()),
		attribute.String(otel.AttributeOrderPrice, order.Price().String()),
	)
	defer span.End()

	start := time.Now()
	done := newDone(order)

	e.match(ctx, order, done)

	// The incoming order enters the book even when it is already fully
	// filled. That routes it through the same termination pathway as
	// resting orders, so its trades are drained and reported exactly once.
	e.backend.Insert(order)
	e.clearTerminated(done)

	done.Left = order.TotalQuantity()
	done.Processed = done.Quantity.Sub(done.Left)
	done.Stored = !order.IsTerminated()

	otel.AddAttributes(span,
		attribute.String(otel.AttributeExecutedQuantity, done.Processed.String()),
		attribute.String(otel.AttributeRemainingQuantity, done.Left.String()),
		attribute.Int(otel.AttributeTradeCount, len(done.Trades)),
	)
	span.SetStatus(codes.Ok, "order submitted")

	otel.GetEngineMetrics().RecordSubmit(ctx, string(order.Kind()), time.Since(start))
	otel.GetEngineMetrics().RecordReportedTrades(ctx, int64(len(done.Trades)))

	if len(done.Trades) > 0 || done.Processed.GreaterThan(fpdecimal.Zero) {
		e.publish(ctx, done)
	}

	return done, nil
}

// match runs the crossing loop against the opposite side of the book
func (e *MatchingEngine) match(ctx context.Context, order *Order, done *Done) {
	ctx, span := otel.StartOrderSpan(ctx, otel.SpanMatchOrder,
		attribute.String(otel.AttributeOrderID, order.ID()),
		attribute.String(otel.AttributeOrderSide, order.Side().String()),
	)
	defer span.End()

	for !order.IsTerminated() {
		var buy, sell *Order
		if order.Side() == Buy {
			buy, sell = order, e.backend.PeekBestSell()
		} else {
			buy, sell = e.backend.PeekBestBuy(), order
		}

		if buy == nil || sell == nil {
			break
		}

		if buy.Price().LessThan(sell.Price()) {
			break
		}

		// Trades print at the resting side's sell price, never an
		// average of the crossing prices.
		tradePrice := sell.Price()
		tradeQuantity := min(buy.VisibleQuantity(), sell.VisibleQuantity())
		if tradeQuantity.LessThanOrEqual(fpdecimal.Zero) {
			panic(fmt.Sprintf("matched zero quantity between %s and %s", buy.ID(), sell.ID()))
		}

		e.ledger.Record(buy.ID(), sell.ID(), tradePrice, tradeQuantity)

		if buy == order {
			buy.DecreaseOutsideBook(tradeQuantity)
		} else {
			buy.DecreaseInsideBook(tradeQuantity, e.clock.Tick())
			e.backend.ReinsertBestBuy(buy)
		}

		if sell == order {
			sell.DecreaseOutsideBook(tradeQuantity)
		} else {
			sell.DecreaseInsideBook(tradeQuantity, e.clock.Tick())
			e.backend.ReinsertBestSell(sell)
		}

		// A match may have terminated a resting order; it has to leave
		// the book before the next crossing check.
		e.clearTerminated(done)
	}

	span.SetStatus(codes.Ok, "matching complete")
}

// clearTerminated removes every terminated order from the top of each side and
// drains its ledger entries into the result. Termination only ever happens at
// the top: matching touches nothing below the best order of a side.
func (e *MatchingEngine) clearTerminated(done *Done) {
	for {
		top := e.backend.PeekBestBuy()
		if top == nil || !top.IsTerminated() {
			break
		}

		e.backend.RemoveBestBuy()
		done.appendTrades(e.ledger.DrainBuy(top.ID()))
	}

	for {
		top := e.backend.PeekBestSell()
		if top == nil || !top.IsTerminated() {
			break
		}

		e.backend.RemoveBestSell()
		done.appendTrades(e.ledger.DrainSell(top.ID()))
	}
}

// BuyOrders returns the resting buy orders in priority order
func (e *MatchingEngine) BuyOrders() []*Order {
	return e.backend.BuyOrders()
}

// SellOrders returns the resting sell orders in priority order
func (e *MatchingEngine) SellOrders() []*Order {
	return e.backend.SellOrders()
}

// OpenTrades returns the number of trades still awaiting report
func (e *MatchingEngine) OpenTrades() int {
	return e.ledger.Len()
}

// String implements fmt.Stringer interface
func (e *MatchingEngine) String() string {
	builder := strings.Builder{}

	builder.WriteString("Bid:")
	for _, order := range e.backend.BuyOrders() {
		builder.WriteString(fmt.Sprintf("\n%s x %s (%s)", order.Price().String(), order.VisibleQuantity().String(), order.ID()))
	}
	builder.WriteString("\nAsk:")
	for _, order := range e.backend.SellOrders() {
		builder.WriteString(fmt.Sprintf("\n%s x %s (%s)", order.Price().String(), order.VisibleQuantity().String(), order.ID()))
	}

	return builder.String()
}

// publish sends the submission result out as an execution report, through the
// configured sender or the default Kafka producer pool.
func (e *MatchingEngine) publish(ctx context.Context, done *Done) {
	if done == nil {
		return
	}

	ctx, span := otel.StartOrderSpan(ctx, otel.SpanPublishTrades,
		attribute.String(otel.AttributeOrderID, done.Order.ID()),
		attribute.Int(otel.AttributeTradeCount, len(done.Trades)),
	)
	defer span.End()

	msg := done.ToMessagingExecutionMessage()
	if msg == nil {
		span.SetStatus(codes.Error, "failed to convert result to message format")
		return
	}

	var err error
	if e.sender != nil {
		err = e.sender.SendExecutionMessage(ctx, msg)
	} else {
		err = queue.SendMessage(ctx, msg)
	}
	if err != nil {
		span.SetStatus(codes.Error, fmt.Sprintf("failed to send execution message: %v", err))
		return
	}

	span.SetStatus(codes.Ok, "execution message sent")
}
