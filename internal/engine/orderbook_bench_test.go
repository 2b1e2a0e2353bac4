package engine_test

import (
	"math/rand"
	"testing"

	"clob/internal/account"
	"clob/internal/engine"
)

// BenchmarkSubmit measures a randomised submission stream: prices 1..99,
// quantities 10..999, one ask for every two bids.
func BenchmarkSubmit(b *testing.B) {
	r := rand.New(rand.NewSource(1))
	acct := account.New()
	book := engine.NewOrderBook()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		price := uint64(r.Intn(99) + 1)
		quantity := uint64(r.Intn(990) + 10)
		if r.Intn(3) == 0 {
			_, _ = book.SubmitAsk(price, quantity, acct)
		} else {
			_, _ = book.SubmitBid(price, quantity, acct)
		}
	}
}

func BenchmarkSnapshot(b *testing.B) {
	r := rand.New(rand.NewSource(1))
	acct := account.New()
	book := engine.NewOrderBook()
	for i := 0; i < 10000; i++ {
		price := uint64(r.Intn(99) + 1)
		quantity := uint64(r.Intn(990) + 10)
		if i%2 == 0 {
			_, _ = book.SubmitAsk(price+100, quantity, acct)
		} else {
			_, _ = book.SubmitBid(price, quantity, acct)
		}
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = book.Snapshot()
	}
}
