package common

type Side int

const (
	// Buy orders ("bids") take asks priced at or below their limit.
	Buy Side = iota
	// Sell orders ("asks") take bids priced at or above their limit.
	Sell
)

var sideName = map[Side]string{
	Buy:  "buy",
	Sell: "sell",
}

func (s Side) String() string {
	return sideName[s]
}
