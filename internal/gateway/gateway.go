package gateway

import (
	"context"
	"errors"
	"sync"

	"clob/internal/account"
	"clob/internal/common"
	"clob/internal/engine"

	"github.com/rs/zerolog/log"
	tomb "gopkg.in/tomb.v2"
)

const SUBMISSION_CHAN_SIZE = 100

var ErrShuttingDown = errors.New("gateway shutting down")

// submission links an order request to the channel its caller waits on.
type submission struct {
	side       common.Side
	limitPrice uint64
	quantity   uint64
	acct       *account.Account
	reply      chan result
}

type result struct {
	outcome engine.MatchOutcome
	err     error
}

// Gateway serialises submissions from any number of goroutines through one
// loop that owns the book. Acceptance order into that loop is exactly the
// order that fixes each resting order's time priority, so FIFO priority is
// globally consistent with submission order.
type Gateway struct {
	book        *engine.OrderBook
	submissions chan submission
	kill        chan struct{}
	killOnce    sync.Once
	done        chan struct{}
	t           *tomb.Tomb
}

func New(book *engine.OrderBook) *Gateway {
	return &Gateway{
		book:        book,
		submissions: make(chan submission, SUBMISSION_CHAN_SIZE),
		kill:        make(chan struct{}),
		done:        make(chan struct{}),
	}
}

// Run starts the submission loop and blocks until it stops. An in-flight
// submission always completes; only queued, unstarted submissions are
// rejected on shutdown.
func (g *Gateway) Run(ctx context.Context) error {
	g.t, _ = tomb.WithContext(ctx)
	g.t.Go(g.loop)

	log.Info().Msg("gateway running")
	return g.t.Wait()
}

// Shutdown signals the submission loop to stop once the current submission
// finishes. Safe to call at any time, from any goroutine, more than once.
func (g *Gateway) Shutdown() {
	g.killOnce.Do(func() {
		log.Info().Msg("gateway shutting down")
		close(g.kill)
	})
}

func (g *Gateway) loop() error {
	defer close(g.done)
	for {
		select {
		case <-g.t.Dying():
			return nil
		case <-g.kill:
			return nil
		case sub := <-g.submissions:
			outcome, err := g.handle(sub)
			sub.reply <- result{outcome: outcome, err: err}
		}
	}
}

func (g *Gateway) handle(sub submission) (engine.MatchOutcome, error) {
	var outcome engine.MatchOutcome
	var err error
	switch sub.side {
	case common.Buy:
		outcome, err = g.book.SubmitBid(sub.limitPrice, sub.quantity, sub.acct)
	case common.Sell:
		outcome, err = g.book.SubmitAsk(sub.limitPrice, sub.quantity, sub.acct)
	}
	if err != nil {
		log.Error().
			Err(err).
			Str("side", sub.side.String()).
			Uint64("price", sub.limitPrice).
			Uint64("quantity", sub.quantity).
			Msg("submission rejected")
		return outcome, err
	}

	log.Info().
		Str("side", sub.side.String()).
		Uint64("price", sub.limitPrice).
		Uint64("filled", outcome.Filled).
		Uint64("remaining", outcome.Remaining).
		Int("trades", len(outcome.Trades)).
		Msg("submission matched")
	return outcome, nil
}

// SubmitBid queues a buy order and waits for its outcome.
func (g *Gateway) SubmitBid(limitPrice, quantity uint64, acct *account.Account) (engine.MatchOutcome, error) {
	return g.enqueue(submission{
		side:       common.Buy,
		limitPrice: limitPrice,
		quantity:   quantity,
		acct:       acct,
	})
}

// SubmitAsk queues a sell order and waits for its outcome.
func (g *Gateway) SubmitAsk(limitPrice, quantity uint64, acct *account.Account) (engine.MatchOutcome, error) {
	return g.enqueue(submission{
		side:       common.Sell,
		limitPrice: limitPrice,
		quantity:   quantity,
		acct:       acct,
	})
}

func (g *Gateway) enqueue(sub submission) (engine.MatchOutcome, error) {
	sub.reply = make(chan result, 1)

	select {
	case g.submissions <- sub:
	case <-g.done:
		return engine.MatchOutcome{}, ErrShuttingDown
	}

	select {
	case res := <-sub.reply:
		return res.outcome, res.err
	case <-g.done:
		// The loop replies before it exits, so a submission it picked up may
		// still have a buffered result waiting.
		select {
		case res := <-sub.reply:
			return res.outcome, res.err
		default:
		}
		return engine.MatchOutcome{}, ErrShuttingDown
	}
}

// Snapshot reads the book between submissions. Safe to call concurrently
// with the loop; the book serialises it against any in-flight match.
func (g *Gateway) Snapshot() (bids, asks []engine.FlatPriceLevel) {
	return g.book.Snapshot()
}
