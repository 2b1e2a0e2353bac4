package gateway_test

import (
	"context"
	"math/rand"
	"sync"
	"testing"

	"clob/internal/account"
	"clob/internal/engine"
	"clob/internal/gateway"

	"github.com/stretchr/testify/assert"
)

func startTestGateway(t *testing.T) (*gateway.Gateway, <-chan error) {
	t.Helper()

	gw := gateway.New(engine.NewOrderBook())
	done := make(chan error, 1)
	go func() {
		done <- gw.Run(context.Background())
	}()
	return gw, done
}

func TestGateway_SubmitAndSnapshot(t *testing.T) {
	gw, done := startTestGateway(t)

	outcome, err := gw.SubmitAsk(110, 9, account.New())
	assert.NoError(t, err)
	assert.Equal(t, uint64(9), outcome.Remaining)

	outcome, err = gw.SubmitBid(110, 10, account.New())
	assert.NoError(t, err)
	assert.Equal(t, uint64(9), outcome.Filled)
	assert.Equal(t, uint64(1), outcome.Remaining)

	bids, asks := gw.Snapshot()
	assert.Len(t, bids, 1)
	assert.Empty(t, asks)

	gw.Shutdown()
	assert.NoError(t, <-done)
}

func TestGateway_RejectsInvalidOrder(t *testing.T) {
	gw, done := startTestGateway(t)

	_, err := gw.SubmitBid(100, 0, account.New())
	assert.ErrorIs(t, err, engine.ErrInvalidOrder)

	gw.Shutdown()
	assert.NoError(t, <-done)
}

// Concurrent submitters all observe consistent outcomes: every submission is
// conserved and the book never stays crossed.
func TestGateway_ConcurrentSubmissions(t *testing.T) {
	gw, done := startTestGateway(t)

	const submitters = 8
	const perSubmitter = 200

	var wg sync.WaitGroup
	for s := 0; s < submitters; s++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			r := rand.New(rand.NewSource(seed))
			acct := account.New()

			for i := 0; i < perSubmitter; i++ {
				price := uint64(r.Intn(50) + 1)
				quantity := uint64(r.Intn(20) + 1)

				var outcome engine.MatchOutcome
				var err error
				if r.Intn(2) == 0 {
					outcome, err = gw.SubmitBid(price, quantity, acct)
				} else {
					outcome, err = gw.SubmitAsk(price, quantity, acct)
				}
				assert.NoError(t, err)
				assert.Equal(t, quantity, outcome.Filled+outcome.Remaining)
			}
		}(int64(s))
	}
	wg.Wait()

	bids, asks := gw.Snapshot()
	if len(bids) > 0 && len(asks) > 0 {
		assert.Less(t, bids[0].PriceLevel, asks[0].PriceLevel)
	}

	gw.Shutdown()
	assert.NoError(t, <-done)
}

func TestGateway_SubmitAfterShutdown(t *testing.T) {
	gw, done := startTestGateway(t)

	gw.Shutdown()
	assert.NoError(t, <-done)

	_, err := gw.SubmitBid(100, 1, account.New())
	assert.ErrorIs(t, err, gateway.ErrShuttingDown)
}
