package main

import (
	"context"
	"os"

	"clob/internal/account"
	"clob/internal/engine"
	"clob/internal/gateway"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Small demo: seed both sides of the book, cross them, then settle the
// reported trades against the participants' ledgers.
func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	book := engine.NewOrderBook()
	gw := gateway.New(book)

	// Startup the gateway.
	go func() {
		if err := gw.Run(ctx); err != nil {
			log.Error().Err(err).Msg("gateway stopped")
		}
	}()
	defer gw.Shutdown()

	alice := account.New()
	bob := account.New()
	carol := account.New()

	// Fund the buyer up front so the settlement below can succeed.
	if err := carol.Mint(10_000); err != nil {
		log.Fatal().Err(err).Msg("funding buyer")
	}

	// Track which account owns which order, for settlement.
	owners := make(map[string]*account.Account)

	askA, err := gw.SubmitAsk(120, 10, alice)
	if err != nil {
		log.Fatal().Err(err).Msg("submitting ask")
	}
	owners[askA.OrderID] = alice

	askB, err := gw.SubmitAsk(110, 9, bob)
	if err != nil {
		log.Fatal().Err(err).Msg("submitting ask")
	}
	owners[askB.OrderID] = bob

	bid, err := gw.SubmitBid(110, 10, carol)
	if err != nil {
		log.Fatal().Err(err).Msg("submitting bid")
	}

	// Settle: the buyer burns the notional of each fill, the maker's owner
	// mints it. The engine never moves funds on its own.
	for _, trade := range bid.Trades {
		notional := trade.Price * trade.Quantity
		if err := carol.Burn(notional); err != nil {
			log.Fatal().Err(err).Msg("settling buyer")
		}
		if err := owners[trade.MakerID].Mint(notional); err != nil {
			log.Fatal().Err(err).Msg("settling seller")
		}
		log.Info().
			Str("maker", trade.MakerID).
			Uint64("price", trade.Price).
			Uint64("quantity", trade.Quantity).
			Uint64("notional", notional).
			Msg("trade settled")
	}

	printBook(gw)

	for name, acct := range map[string]*account.Account{
		"alice": alice, "bob": bob, "carol": carol,
	} {
		log.Info().
			Str("name", name).
			Stringer("id", acct.ID()).
			Uint64("balance", acct.Balance()).
			Msg("account")
	}
}

func printBook(gw *gateway.Gateway) {
	bids, asks := gw.Snapshot()
	for _, level := range bids {
		logLevel("bid", level)
	}
	for _, level := range asks {
		logLevel("ask", level)
	}
}

func logLevel(side string, level engine.FlatPriceLevel) {
	var total uint64
	for _, order := range level.Orders {
		total += order.Quantity
	}
	log.Info().
		Str("side", side).
		Uint64("price", level.PriceLevel).
		Int("orders", len(level.Orders)).
		Uint64("quantity", total).
		Msg("resting level")
}
