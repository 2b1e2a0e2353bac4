package engine

import (
	"clob/internal/common"
)

// FlatPriceLevel is a detached, read-only copy of one price level, best for
// printing and asserting against.
type FlatPriceLevel struct {
	PriceLevel uint64
	Orders     []*common.Order
}

// Snapshot returns both sides of the book ordered best price first, bids
// highest first and asks lowest first. The returned levels and orders are
// copies; mutating them does not touch the book, and taking a snapshot never
// mutates it.
func (book *OrderBook) Snapshot() (bids, asks []FlatPriceLevel) {
	book.mu.Lock()
	defer book.mu.Unlock()
	return flattenLevels(book.bids), flattenLevels(book.asks)
}

func flattenLevels(levels *PriceLevels) []FlatPriceLevel {
	flat := make([]FlatPriceLevel, 0, levels.Len())
	levels.Scan(func(level *PriceLevel) bool {
		orders := make([]*common.Order, len(level.orders))
		for i, order := range level.orders {
			dup := *order
			orders[i] = &dup
		}
		flat = append(flat, FlatPriceLevel{
			PriceLevel: level.priceLevel,
			Orders:     orders,
		})
		return true
	})
	return flat
}
