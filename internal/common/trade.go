package common

import (
	"fmt"
	"time"
)

// Trade accounts for the two orders which matched. The maker is the resting
// order; executions always happen at the maker's quoted price.
type Trade struct {
	MakerID   string
	TakerID   string
	Timestamp time.Time
	Quantity  uint64
	Price     uint64
}

func (t Trade) String() string {
	return fmt.Sprintf(
		`MakerID:   %s
TakerID:   %s
Timestamp: %v
Quantity:  %d
Price:     %d`,
		t.MakerID,
		t.TakerID,
		t.Timestamp.Format(time.RFC3339),
		t.Quantity,
		t.Price,
	)
}
