// apitest exercises the Upbit REST client against the live API and
// prints the results. Public endpoints always run; account and order
// checks run only when credentials are configured.
//
// Usage: go run ./cmd/apitest --config configs/streamer.local.yaml --market KRW-BTC
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/djdlzl/crypto-trading/internal/api"
	"github.com/djdlzl/crypto-trading/internal/auth"
	"github.com/djdlzl/crypto-trading/internal/config"
)

func main() {
	configPath := flag.String("config", "configs/streamer.local.yaml", "path to config file")
	market := flag.String("market", "KRW-BTC", "market code for quote checks")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	cfg, err := config.LoadWithDefaults(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	var signer api.Signer
	if cfg.Upbit.AccessKey != "" && cfg.Upbit.SecretKey != "" {
		signer = auth.NewSigner(cfg.Upbit.AccessKey, cfg.Upbit.SecretKey)
	}

	client := api.NewClient(
		cfg.Upbit.RestURL,
		signer,
		api.WithLogger(logger),
		api.WithTimeout(cfg.Upbit.Timeout),
		api.WithRetries(uint(cfg.Upbit.MaxRetries), cfg.Upbit.RetryDelay),
	)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	fmt.Println("== public endpoints ==")

	markets, err := client.GetMarkets(ctx)
	if err != nil {
		logger.Error("GetMarkets failed", "error", err)
		os.Exit(1)
	}
	fmt.Printf("markets: %d pairs\n", len(markets))

	quotes, err := client.GetTickers(ctx, *market)
	if err != nil {
		logger.Error("GetTickers failed", "error", err)
		os.Exit(1)
	}
	for _, q := range quotes {
		fmt.Printf("ticker %s: price=%.0f change=%s rate=%+.4f\n",
			q.Market, q.TradePrice, q.Change, q.SignedChangeRate)
	}

	books, err := client.GetOrderbooks(ctx, *market)
	if err != nil {
		logger.Error("GetOrderbooks failed", "error", err)
		os.Exit(1)
	}
	for _, b := range books {
		if len(b.Units) == 0 {
			continue
		}
		fmt.Printf("orderbook %s: best_bid=%.0f best_ask=%.0f levels=%d\n",
			b.Market, b.Units[0].BidPrice, b.Units[0].AskPrice, len(b.Units))
	}

	candles, err := client.GetMinuteCandles(ctx, *market, 5, api.CandleOptions{Count: 3})
	if err != nil {
		logger.Error("GetMinuteCandles failed", "error", err)
		os.Exit(1)
	}
	for _, c := range candles {
		fmt.Printf("candle %s %s: o=%.0f h=%.0f l=%.0f c=%.0f\n",
			c.Market, c.CandleDateTimeUTC, c.OpeningPrice, c.HighPrice, c.LowPrice, c.TradePrice)
	}

	if signer == nil {
		fmt.Println("no credentials configured, skipping private endpoints")
		return
	}

	fmt.Println("== private endpoints ==")

	accounts, err := client.GetAccounts(ctx)
	if err != nil {
		logger.Error("GetAccounts failed", "error", err)
		os.Exit(1)
	}
	for _, a := range accounts {
		fmt.Printf("balance %s: %s (locked %s)\n", a.Currency, a.Balance, a.Locked)
	}

	chance, err := client.GetOrderChance(ctx, *market)
	if err != nil {
		logger.Error("GetOrderChance failed", "error", err)
		os.Exit(1)
	}
	fmt.Printf("order chance %s: bid_fee=%s ask_fee=%s\n", *market, chance.BidFee, chance.AskFee)

	orders, err := client.GetOrders(ctx, *market, "wait")
	if err != nil {
		logger.Error("GetOrders failed", "error", err)
		os.Exit(1)
	}
	fmt.Printf("open orders %s: %d\n", *market, len(orders))

	deposits, err := client.GetDeposits(ctx, api.TransferOptions{Limit: 10})
	if err != nil {
		logger.Error("GetDeposits failed", "error", err)
		os.Exit(1)
	}
	fmt.Printf("recent deposits: %d\n", len(deposits))

	addrs, err := client.GetDepositAddresses(ctx)
	if err != nil {
		logger.Error("GetDepositAddresses failed", "error", err)
		os.Exit(1)
	}
	fmt.Printf("deposit addresses: %d\n", len(addrs))
}
