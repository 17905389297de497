package handlers

import (
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/matchcore/orderbook/internal/api/logger"
	"github.com/matchcore/orderbook/internal/api/models"
	"github.com/matchcore/orderbook/internal/types"
)

// aggregateLevels buckets raw price levels into multiples of bucketTicks.
// Bids are floored and asks are ceiled so aggregated quotes never look
// tighter than the real book.
func aggregateLevels(levels []types.BookLevel, bucketTicks types.Price, side types.SideType) []types.BookLevel {
	if bucketTicks <= 0 || len(levels) == 0 {
		return levels
	}

	buckets := make(map[types.Price]*types.BookLevel)
	for _, lvl := range levels {
		bucket := (lvl.Price / bucketTicks) * bucketTicks
		if side == types.Sell && lvl.Price%bucketTicks != 0 {
			bucket += bucketTicks
		}

		agg := buckets[bucket]
		if agg == nil {
			agg = &types.BookLevel{Price: bucket}
			buckets[bucket] = agg
		}
		agg.Quantity += lvl.Quantity
		agg.OrderCount += lvl.OrderCount
	}

	out := make([]types.BookLevel, 0, len(buckets))
	for _, agg := range buckets {
		out = append(out, *agg)
	}
	sort.Slice(out, func(i, j int) bool {
		if side == types.Buy {
			return out[i].Price > out[j].Price
		}
		return out[i].Price < out[j].Price
	})
	return out
}

// levelsToDTO renders book levels with formatted prices
func (eh *EngineHolder) levelsToDTO(levels []types.BookLevel) []models.PriceLevel {
	dtos := make([]models.PriceLevel, len(levels))
	for i, lvl := range levels {
		dtos[i] = models.PriceLevel{
			Price:      eh.Scale.FormatPrice(lvl.Price),
			Quantity:   int64(lvl.Quantity),
			OrderCount: lvl.OrderCount,
		}
	}
	return dtos
}

// spreadAndMid formats the spread and mid price between the best quotes.
// The mid may fall on a half tick, so it is computed in decimal space.
func (eh *EngineHolder) spreadAndMid(bestBid, bestAsk types.Price) (string, string) {
	spread := eh.Scale.FormatPrice(bestAsk - bestBid)
	mid := eh.Scale.PriceToDecimal(bestBid).
		Add(eh.Scale.PriceToDecimal(bestAsk)).
		Div(decimal.NewFromInt(2))
	return spread, mid.String()
}

// GetOrderBookHandler handles full order book snapshot requests
func (eh *EngineHolder) GetOrderBookHandler(w http.ResponseWriter, r *http.Request) {
	depthStr := r.URL.Query().Get("depth")
	aggregateStr := r.URL.Query().Get("aggregate")

	// Default depth: 10, max: 100 levels per side
	depth := 10
	if depthStr != "" {
		parsedDepth, err := strconv.Atoi(depthStr)
		if err == nil && parsedDepth > 0 {
			depth = parsedDepth
			if depth > 100 {
				depth = 100
			}
		}
	}

	// The aggregate parameter is a decimal bucket width ("0.50") converted
	// to ticks at the same scale as order prices.
	var bucketTicks types.Price
	if aggregateStr != "" {
		parsed, err := eh.Scale.PriceFromString(aggregateStr)
		if err != nil || parsed <= 0 {
			writeErrorResponse(w, models.ErrInvalidPriceError(aggregateStr))
			return
		}
		bucketTicks = parsed
	}

	bids := aggregateLevels(eh.Engine.BidLevels(0), bucketTicks, types.Buy)
	asks := aggregateLevels(eh.Engine.AskLevels(0), bucketTicks, types.Sell)
	if len(bids) > depth {
		bids = bids[:depth]
	}
	if len(asks) > depth {
		asks = asks[:depth]
	}

	var spread, midPrice string
	if len(bids) > 0 && len(asks) > 0 {
		spread, midPrice = eh.spreadAndMid(bids[0].Price, asks[0].Price)
	}

	logger.Info("Order book snapshot retrieved", map[string]interface{}{
		"bid_levels": len(bids),
		"ask_levels": len(asks),
		"aggregate":  aggregateStr,
	})

	response := models.OrderBookResponse{
		BaseResponse: models.BaseResponse{
			Success:   true,
			Timestamp: time.Now().UTC(),
		},
		Symbol:   eh.Symbol,
		Bids:     eh.levelsToDTO(bids),
		Asks:     eh.levelsToDTO(asks),
		Spread:   spread,
		MidPrice: midPrice,
	}
	writeJSON(w, http.StatusOK, response)
}

// GetTopOfBookHandler handles best bid/ask requests
func (eh *EngineHolder) GetTopOfBookHandler(w http.ResponseWriter, r *http.Request) {
	var bestBid, bestAsk *models.BestQuote
	var spread, midPrice string

	bidPrice, hasBid := eh.Engine.BestBid()
	if hasBid {
		bestBid = &models.BestQuote{
			Price:    eh.Scale.FormatPrice(bidPrice),
			Quantity: int64(eh.Engine.DepthAt(types.Buy, bidPrice)),
		}
	}

	askPrice, hasAsk := eh.Engine.BestAsk()
	if hasAsk {
		bestAsk = &models.BestQuote{
			Price:    eh.Scale.FormatPrice(askPrice),
			Quantity: int64(eh.Engine.DepthAt(types.Sell, askPrice)),
		}
	}

	if hasBid && hasAsk {
		spread, midPrice = eh.spreadAndMid(bidPrice, askPrice)
	}

	logger.Info("Top of book retrieved", map[string]interface{}{
		"has_bid": hasBid,
		"has_ask": hasAsk,
	})

	response := models.TopOfBookResponse{
		BaseResponse: models.BaseResponse{
			Success:   true,
			Timestamp: time.Now().UTC(),
		},
		Symbol:   eh.Symbol,
		BestBid:  bestBid,
		BestAsk:  bestAsk,
		Spread:   spread,
		MidPrice: midPrice,
	}
	writeJSON(w, http.StatusOK, response)
}

// GetDepthHandler reports the aggregate resting quantity at a single price level
func (eh *EngineHolder) GetDepthHandler(w http.ResponseWriter, r *http.Request) {
	sideStr := r.URL.Query().Get("side")
	priceStr := r.URL.Query().Get("price")

	side := convertSide(sideStr)
	if side == types.NoActionSide {
		writeErrorResponse(w, models.ErrInvalidSideError(sideStr))
		return
	}

	if strings.TrimSpace(priceStr) == "" {
		writeErrorResponse(w, models.ErrMissingPriceError())
		return
	}

	price, err := eh.Scale.PriceFromString(priceStr)
	if err != nil || price <= 0 {
		writeErrorResponse(w, models.ErrInvalidPriceError(priceStr))
		return
	}

	quantity := eh.Engine.DepthAt(side, price)

	response := models.DepthResponse{
		BaseResponse: models.BaseResponse{
			Success:   true,
			Timestamp: time.Now().UTC(),
		},
		Symbol:   eh.Symbol,
		Side:     sideString(side),
		Price:    eh.Scale.FormatPrice(price),
		Quantity: int64(quantity),
	}
	writeJSON(w, http.StatusOK, response)
}
