package feed

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/matchcore/orderbook/internal/api/logger"
	"github.com/matchcore/orderbook/internal/types"
)

// TradeMessage is the wire format for a broadcast trade event
type TradeMessage struct {
	Type         string    `json:"type"`
	TradeID      uint64    `json:"trade_id"`
	BuyOrderID   uint64    `json:"buy_order_id"`
	SellOrderID  uint64    `json:"sell_order_id"`
	MakerOrderID uint64    `json:"maker_order_id"`
	TakerOrderID uint64    `json:"taker_order_id"`
	Price        string    `json:"price"`
	Quantity     int64     `json:"quantity"`
	Timestamp    time.Time `json:"timestamp"`
}

// Quote is one side of a top-of-book message
type Quote struct {
	Price    string `json:"price"`
	Quantity int64  `json:"quantity"`
}

// BookMessage is the wire format for a top-of-book update
type BookMessage struct {
	Type    string `json:"type"`
	BestBid *Quote `json:"best_bid,omitempty"`
	BestAsk *Quote `json:"best_ask,omitempty"`
}

// Feed streams trade events and top-of-book updates to websocket subscribers
type Feed struct {
	tradeHub     *hub[TradeMessage]
	bookHub      *hub[BookMessage]
	upgrader     websocket.Upgrader
	scale        types.PriceScale
	clientBuffer int
}

// NewFeed creates a market-data feed. clientBuffer is the per-subscriber
// channel depth before messages are dropped.
func NewFeed(scale types.PriceScale, clientBuffer int) *Feed {
	if clientBuffer <= 0 {
		clientBuffer = 32
	}
	return &Feed{
		tradeHub:     newHub[TradeMessage](),
		bookHub:      newHub[BookMessage](),
		upgrader:     websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }},
		scale:        scale,
		clientBuffer: clientBuffer,
	}
}

// Publish broadcasts one trade event to every subscriber. It is wired into
// the engine as a trade listener and must never block.
func (f *Feed) Publish(trade *types.Trade) {
	f.tradeHub.Broadcast(TradeMessage{
		Type:         "trade",
		TradeID:      trade.TradeID,
		BuyOrderID:   trade.BuyOrderID,
		SellOrderID:  trade.SellOrderID,
		MakerOrderID: trade.MakerOrderID,
		TakerOrderID: trade.TakerOrderID,
		Price:        f.scale.FormatPrice(trade.Price),
		Quantity:     int64(trade.Quantity),
		Timestamp:    trade.Timestamp,
	})
}

// PublishBook broadcasts a top-of-book update. Either quote may be nil when
// that side of the book is empty.
func (f *Feed) PublishBook(bestBid, bestAsk *Quote) {
	f.bookHub.Broadcast(BookMessage{
		Type:    "book",
		BestBid: bestBid,
		BestAsk: bestAsk,
	})
}

// ServeTradesWS upgrades the connection and streams trades until the client
// disconnects or a write fails.
func (f *Feed) ServeTradesWS(w http.ResponseWriter, r *http.Request) {
	conn, err := f.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("Websocket upgrade failed", map[string]interface{}{
			"remote": r.RemoteAddr,
			"error":  err.Error(),
		})
		return
	}
	defer conn.Close()

	sub := f.tradeHub.Subscribe(f.clientBuffer)
	defer f.tradeHub.Unsubscribe(sub)

	logger.Info("Trade feed subscriber connected", map[string]interface{}{
		"remote": r.RemoteAddr,
	})

	for msg := range sub.ch {
		if err := conn.WriteJSON(msg); err != nil {
			return
		}
	}
}

// ServeBookWS upgrades the connection and streams top-of-book updates.
func (f *Feed) ServeBookWS(w http.ResponseWriter, r *http.Request) {
	conn, err := f.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("Websocket upgrade failed", map[string]interface{}{
			"remote": r.RemoteAddr,
			"error":  err.Error(),
		})
		return
	}
	defer conn.Close()

	sub := f.bookHub.Subscribe(f.clientBuffer)
	defer f.bookHub.Unsubscribe(sub)

	logger.Info("Book feed subscriber connected", map[string]interface{}{
		"remote": r.RemoteAddr,
	})

	for msg := range sub.ch {
		if err := conn.WriteJSON(msg); err != nil {
			return
		}
	}
}
