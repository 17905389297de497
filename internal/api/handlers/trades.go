package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/matchcore/orderbook/internal/api/logger"
	"github.com/matchcore/orderbook/internal/api/models"
)

// GetTradesHandler handles retrieving recent trades
func (eh *EngineHolder) GetTradesHandler(w http.ResponseWriter, r *http.Request) {
	limitStr := r.URL.Query().Get("limit")

	// Default limit: 100, max: 1000
	limit := 100
	if limitStr != "" {
		parsedLimit, err := strconv.Atoi(limitStr)
		if err == nil && parsedLimit > 0 {
			limit = parsedLimit
			if limit > 1000 {
				limit = 1000
			}
		}
	}

	trades, err := eh.Engine.GetRecentTrades(limit)
	if err != nil {
		logger.Error("Failed to fetch trades", map[string]interface{}{
			"error": err.Error(),
		})
		writeErrorResponse(w, models.ErrInternal("Failed to fetch trades"))
		return
	}

	tradeDTOs := eh.convertTradesToDTO(trades)

	logger.Info("Retrieved trades", map[string]interface{}{
		"count": len(tradeDTOs),
		"limit": limit,
	})

	response := models.GetTradesResponse{
		BaseResponse: models.BaseResponse{
			Success:   true,
			Timestamp: time.Now().UTC(),
		},
		Trades: tradeDTOs,
		Count:  len(tradeDTOs),
	}
	writeJSON(w, http.StatusOK, response)
}
