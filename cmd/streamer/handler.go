package main

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/djdlzl/crypto-trading/internal/model"
	"github.com/djdlzl/crypto-trading/internal/store"
)

// eventHandler routes decoded stream events. Market data goes to the
// log; private order and asset updates are persisted.
type eventHandler struct {
	store  *store.Store
	logger *slog.Logger
}

const persistTimeout = 5 * time.Second

func (h *eventHandler) handle(ev model.Event) {
	switch ev.Type {
	case "ticker":
		h.onTicker(ev)
	case "trade":
		h.onTrade(ev)
	case "orderbook":
		h.onOrderbook(ev)
	case "myOrder":
		h.onMyOrder(ev)
	case "myAsset":
		h.onMyAsset(ev)
	default:
		h.logger.Debug("unhandled event type", "type", ev.Type, "code", ev.Code)
	}
}

func (h *eventHandler) onTicker(ev model.Event) {
	t, err := ev.Ticker()
	if err != nil {
		h.logger.Warn("bad ticker payload", "code", ev.Code, "error", err)
		return
	}
	h.logger.Info("ticker",
		"code", t.Code,
		"price", t.TradePrice,
		"change", t.Change,
		"rate", t.SignedChangeRate,
	)
}

func (h *eventHandler) onTrade(ev model.Event) {
	t, err := ev.Trade()
	if err != nil {
		h.logger.Warn("bad trade payload", "code", ev.Code, "error", err)
		return
	}
	h.logger.Info("trade",
		"code", t.Code,
		"price", t.TradePrice,
		"volume", t.TradeVolume,
		"side", t.AskBid,
	)
}

func (h *eventHandler) onOrderbook(ev model.Event) {
	o, err := ev.Orderbook()
	if err != nil {
		h.logger.Warn("bad orderbook payload", "code", ev.Code, "error", err)
		return
	}
	if len(o.Units) == 0 {
		return
	}
	top := o.Units[0]
	h.logger.Info("orderbook",
		"code", o.Code,
		"best_bid", top.BidPrice,
		"best_ask", top.AskPrice,
		"levels", len(o.Units),
	)
}

func (h *eventHandler) onMyOrder(ev model.Event) {
	o, err := ev.MyOrder()
	if err != nil {
		h.logger.Warn("bad myOrder payload", "code", ev.Code, "error", err)
		return
	}

	rec := model.TradeRecord{
		Market:         o.Code,
		UUID:           o.UUID,
		Side:           strings.ToLower(o.AskBid),
		Price:          o.Price,
		Volume:         o.Volume,
		ExecutedVolume: o.ExecutedVolume,
		ExecutedPrice:  o.Price,
		OrderState:     o.State,
		CreatedAt:      time.UnixMilli(o.OrderTimestamp),
		TradeTimestamp: time.UnixMilli(o.Timestamp),
	}

	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	if err := h.store.SaveTrade(ctx, rec); err != nil {
		h.logger.Error("persist order failed",
			"market", rec.Market,
			"uuid", rec.UUID,
			"error", err,
		)
		return
	}
	h.logger.Info("order update",
		"market", rec.Market,
		"uuid", rec.UUID,
		"state", rec.OrderState,
		"executed", rec.ExecutedVolume,
	)
}

func (h *eventHandler) onMyAsset(ev model.Event) {
	a, err := ev.MyAsset()
	if err != nil {
		h.logger.Warn("bad myAsset payload", "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	for _, item := range a.Assets {
		bal := model.Balance{
			Currency: item.Currency,
			Balance:  item.Balance,
			Locked:   item.Locked,
		}
		if err := h.store.UpdateBalance(ctx, bal); err != nil {
			h.logger.Error("persist balance failed",
				"currency", bal.Currency,
				"error", err,
			)
		}
	}
	h.logger.Info("balance update", "currencies", len(a.Assets))
}
