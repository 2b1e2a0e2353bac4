package engine

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"clob/internal/account"
	"clob/internal/common"

	"github.com/google/uuid"
	"github.com/tidwall/btree"
)

var (
	ErrInvalidOrder = errors.New("invalid order")
)

// PriceLevel is a FIFO queue of the resting orders sharing one price, sorted
// by time added as they will be push-back'd.
type PriceLevel struct {
	priceLevel uint64
	orders     []*common.Order
}

type PriceLevels = btree.BTreeG[*PriceLevel]

// Reporter receives trade executions as they happen, before the submission
// that produced them returns. Implementations must not call back into the
// book.
type Reporter interface {
	ReportTrade(trade common.Trade)
}

// MatchOutcome summarises a single submission: the id assigned to the
// incoming order, how much traded, against whom, and how much was left to
// rest on the book.
type MatchOutcome struct {
	OrderID   string
	Filled    uint64
	Remaining uint64
	Trades    []common.Trade
}

// OrderBook holds the resting liquidity for a single instrument.
//
// One mutex guards both sides jointly: matching reads one side while it may
// mutate the other, and the uncrossed invariant spans both, so the sides
// must never be lockable independently. Every submission runs to completion
// as one atomic step under that mutex.
type OrderBook struct {
	mu sync.Mutex

	// Price levels to orders sat on the price level.
	bids *PriceLevels
	asks *PriceLevels

	// Arrival sequence counter for resting orders.
	nextSeq uint64

	reporter Reporter

	// Some book keeping
	nBuyOrders   uint64 // Track the number of bids in the book.
	nSellOrders  uint64 // Track the number of asks in the book.
	buyQuantity  uint64 // Track the bid-side liquidity of the book.
	sellQuantity uint64 // Track the ask-side liquidity of the book.
}

func NewOrderBook() *OrderBook {
	// Sorted greatest first.
	bids := btree.NewBTreeG(func(a, b *PriceLevel) bool {
		return a.priceLevel > b.priceLevel
	})
	// Sorted least first.
	asks := btree.NewBTreeG(func(a, b *PriceLevel) bool {
		return a.priceLevel < b.priceLevel
	})
	return &OrderBook{
		bids: bids,
		asks: asks,
	}
}

func (book *OrderBook) SetReporter(reporter Reporter) {
	book.reporter = reporter
}

// SubmitBid places a buy order limited to the given price. Crossing ask
// liquidity is consumed first; any remainder rests on the bid side.
func (book *OrderBook) SubmitBid(limitPrice, quantity uint64, acct *account.Account) (MatchOutcome, error) {
	return book.submit(common.Buy, limitPrice, quantity, acct)
}

// SubmitAsk places a sell order limited to the given price. Crossing bid
// liquidity is consumed first; any remainder rests on the ask side.
func (book *OrderBook) SubmitAsk(limitPrice, quantity uint64, acct *account.Account) (MatchOutcome, error) {
	return book.submit(common.Sell, limitPrice, quantity, acct)
}

// submit validates, matches against the opposite side and rests any
// remainder. It either completes the whole walk or rejects before any
// mutation; there is no partial-failure state in between.
func (book *OrderBook) submit(side common.Side, limitPrice, quantity uint64, acct *account.Account) (MatchOutcome, error) {
	if quantity == 0 {
		return MatchOutcome{}, fmt.Errorf("zero quantity: %w", ErrInvalidOrder)
	}

	book.mu.Lock()
	defer book.mu.Unlock()

	order := &common.Order{
		UUID:          uuid.New().String(),
		Side:          side,
		LimitPrice:    limitPrice,
		Quantity:      quantity,
		TotalQuantity: quantity,
		AccountID:     acct.ID(),
		Timestamp:     time.Now(),
	}

	trades := book.match(order)
	if order.Quantity > 0 {
		book.rest(order)
	}
	book.assertUncrossed()

	return MatchOutcome{
		OrderID:   order.UUID,
		Filled:    quantity - order.Quantity,
		Remaining: order.Quantity,
		Trades:    trades,
	}, nil
}

// match consumes opposite-side liquidity while prices stay compatible,
// walking levels from best to worst and orders within a level oldest first.
// Levels are price-ordered, so the walk stops at the first incompatible
// level. Trades execute at the resting order's price.
func (book *OrderBook) match(order *common.Order) []common.Trade {
	levels := book.asks
	if order.Side == common.Sell {
		levels = book.bids
	}

	var trades []common.Trade
	for order.Quantity > 0 {
		// Min here accounts for bids and asks being in inverse order, based
		// on their comparison method.
		level, ok := levels.MinMut()
		if !ok || !compatible(order.Side, order.LimitPrice, level.priceLevel) {
			break
		}

		var i int
		var resting *common.Order
		for i, resting = range level.orders {
			matchQty := min(order.Quantity, resting.Quantity)
			order.Quantity -= matchQty
			resting.Quantity -= matchQty
			book.lifted(resting.Side, matchQty, resting.Quantity == 0)

			trade := common.Trade{
				MakerID:   resting.UUID,
				TakerID:   order.UUID,
				Price:     level.priceLevel,
				Quantity:  matchQty,
				Timestamp: time.Now(),
			}
			trades = append(trades, trade)
			if book.reporter != nil {
				book.reporter.ReportTrade(trade)
			}

			// Break out if the incoming quantity is exhausted.
			if order.Quantity == 0 {
				break
			}
		}

		// Resizing logic.
		if resting.Quantity == 0 {
			// The last order we touched was consumed.
			// If we consumed the whole level (i is the last index), delete level.
			if i == len(level.orders)-1 {
				levels.Delete(level)
			} else {
				// Otherwise, slice off the consumed orders (0 to i).
				level.orders = level.orders[i+1:]
			}
		} else {
			// We partially filled 'resting'.
			// We remove all orders strictly *before* i.
			level.orders = level.orders[i:]
		}
	}
	return trades
}

// rest inserts the unfilled remainder at the tail of its own-side price
// level, creating the level if absent. The arrival sequence is assigned
// here, fixing the order's time priority at that price.
func (book *OrderBook) rest(order *common.Order) {
	levels := book.bids
	if order.Side == common.Sell {
		levels = book.asks
	}

	book.nextSeq++
	order.Seq = book.nextSeq

	// Levels comparator only accounts for price levels, so we create a dummy
	// price level for the search.
	level, ok := levels.GetMut(&PriceLevel{priceLevel: order.LimitPrice})
	if ok {
		// If the price level already exists, just append onto the existing orders.
		level.orders = append(level.orders, order)
	} else {
		// Otherwise, if the price level does not exist, create the price level.
		levels.Set(&PriceLevel{
			priceLevel: order.LimitPrice,
			orders:     []*common.Order{order},
		})
	}

	switch order.Side {
	case common.Buy:
		book.nBuyOrders++
		book.buyQuantity += order.Quantity
	case common.Sell:
		book.nSellOrders++
		book.sellQuantity += order.Quantity
	}
}

// compatible reports whether an incoming order may trade against a level at
// levelPrice: bids take asks priced at or below their limit, asks take bids
// priced at or above it.
func compatible(side common.Side, limitPrice, levelPrice uint64) bool {
	if side == common.Buy {
		return levelPrice <= limitPrice
	}
	return levelPrice >= limitPrice
}

// lifted tracks resting liquidity consumed off the book.
func (book *OrderBook) lifted(side common.Side, quantity uint64, consumed bool) {
	switch side {
	case common.Buy:
		book.buyQuantity -= quantity
		if consumed {
			book.nBuyOrders--
		}
	case common.Sell:
		book.sellQuantity -= quantity
		if consumed {
			book.nSellOrders--
		}
	}
}

// assertUncrossed panics if the best bid meets or exceeds the best ask. A
// crossed book surviving past a submission boundary is a programming error,
// not a condition the caller can recover from.
func (book *OrderBook) assertUncrossed() {
	bestBid, bidOk := book.bids.Min()
	bestAsk, askOk := book.asks.Min()
	if bidOk && askOk && bestBid.priceLevel >= bestAsk.priceLevel {
		panic(fmt.Sprintf(
			"invariant violation: crossed book, best bid %d >= best ask %d",
			bestBid.priceLevel, bestAsk.priceLevel,
		))
	}
}

// Depth reports the number of resting orders and the total resting quantity
// per side.
func (book *OrderBook) Depth() (bidOrders, askOrders, bidQuantity, askQuantity uint64) {
	book.mu.Lock()
	defer book.mu.Unlock()
	return book.nBuyOrders, book.nSellOrders, book.buyQuantity, book.sellQuantity
}
