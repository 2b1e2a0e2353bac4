package common

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Order struct {
	UUID          string    // Order tracked uuid
	Side          Side      // Order side
	LimitPrice    uint64    // Limiting price, fixed for the life of the order
	Quantity      uint64    // Remaining quantity
	TotalQuantity uint64    // Total volume requested
	Seq           uint64    // Arrival sequence, assigned when the order rests
	AccountID     uuid.UUID // Who owns this order
	Timestamp     time.Time // Time of arrival of order into the book
}

func (order Order) String() string {
	return fmt.Sprintf(
		`UUID:       %v
Side:       %v
LimitPrice: %d
Quantity:   %d (Total: %d)
Seq:        %d
Timestamp:  %v
AccountID:  %s`,
		order.UUID,
		order.Side,
		order.LimitPrice,
		order.Quantity,
		order.TotalQuantity,
		order.Seq,
		order.Timestamp.Format(time.RFC3339), // Formatted for readability
		order.AccountID,
	)
}
