package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/matchcore/orderbook/internal/api/logger"
	"github.com/matchcore/orderbook/internal/api/models"
	"github.com/matchcore/orderbook/internal/matching"
	"github.com/matchcore/orderbook/internal/types"
)

// EngineHolder wraps the matching engine and the instrument's price scale
// for dependency injection into the handlers.
type EngineHolder struct {
	Engine *matching.Engine
	Symbol string
	Scale  types.PriceScale
}

// NewEngineHolder creates a new engine holder
func NewEngineHolder(engine *matching.Engine, symbol string, scale types.PriceScale) *EngineHolder {
	return &EngineHolder{Engine: engine, Symbol: symbol, Scale: scale}
}

// writeJSON writes a JSON response with the given status code
func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// writeErrorResponse writes an error response
func writeErrorResponse(w http.ResponseWriter, httpErr *models.HTTPError) {
	logger.Warn("Request failed", map[string]interface{}{
		"error_code": httpErr.Error.Code,
		"status":     httpErr.StatusCode,
	})

	response := models.BaseResponse{
		Success:   false,
		Timestamp: time.Now().UTC(),
		Message:   httpErr.Error.Message,
		Error:     &httpErr.Error,
	}
	writeJSON(w, httpErr.StatusCode, response)
}

// convertOrderType converts string to OrderType
func convertOrderType(orderType string) types.OrderType {
	switch strings.ToLower(strings.TrimSpace(orderType)) {
	case "market":
		return types.MarketOrder
	case "limit":
		return types.LimitOrder
	default:
		return types.NoActionOrder
	}
}

// convertSide converts string to SideType
func convertSide(side string) types.SideType {
	switch strings.ToLower(strings.TrimSpace(side)) {
	case "buy":
		return types.Buy
	case "sell":
		return types.Sell
	default:
		return types.NoActionSide
	}
}

func sideString(side types.SideType) string {
	switch side {
	case types.Buy:
		return "buy"
	case types.Sell:
		return "sell"
	default:
		return "unknown"
	}
}

func orderTypeString(orderType types.OrderType) string {
	switch orderType {
	case types.MarketOrder:
		return "market"
	case types.LimitOrder:
		return "limit"
	default:
		return "unknown"
	}
}

// convertTradesToDTO converts trade events to DTO trades
func (eh *EngineHolder) convertTradesToDTO(trades []*types.Trade) []models.TradeDTO {
	dtos := make([]models.TradeDTO, len(trades))
	for i, trade := range trades {
		dtos[i] = models.TradeDTO{
			TradeID:      trade.TradeID,
			BuyOrderID:   trade.BuyOrderID,
			SellOrderID:  trade.SellOrderID,
			MakerOrderID: trade.MakerOrderID,
			TakerOrderID: trade.TakerOrderID,
			Price:        eh.Scale.FormatPrice(trade.Price),
			Quantity:     int64(trade.Quantity),
			Timestamp:    trade.Timestamp,
		}
	}
	return dtos
}

// convertOrderToDTO converts an order to its DTO
func (eh *EngineHolder) convertOrderToDTO(order *types.Order) *models.OrderDTO {
	return &models.OrderDTO{
		OrderID:           order.ID,
		UserID:            order.UserID,
		Symbol:            order.Symbol,
		OrderType:         orderTypeString(order.OrderType),
		Side:              sideString(order.Side),
		Price:             eh.Scale.FormatPrice(order.Price),
		Quantity:          int64(order.Quantity),
		FilledQuantity:    int64(order.Filled()),
		RemainingQuantity: int64(order.Remaining),
		Status:            string(order.Status),
		Timestamp:         order.Timestamp,
	}
}

// buildOrder converts a validated request into an engine order, or returns
// an HTTP error when the price cannot be expressed in ticks.
func (eh *EngineHolder) buildOrder(req *models.SubmitOrderRequest) (*types.Order, *models.HTTPError) {
	orderType := convertOrderType(req.OrderType)

	var price types.Price
	if orderType == types.LimitOrder {
		parsed, err := eh.Scale.PriceFromString(req.Price)
		if err != nil {
			if errors.Is(err, types.ErrOverflow) {
				return nil, models.ErrPriceOverflowError(req.Price)
			}
			return nil, models.ErrInvalidPriceError(req.Price)
		}
		if parsed <= 0 {
			return nil, models.ErrInvalidPriceError(req.Price)
		}
		price = parsed
	}

	order := types.NewOrder(
		eh.Engine.GenerateOrderID(),
		req.UserID,
		orderType,
		convertSide(req.Side),
		price,
		types.Quantity(req.Quantity),
	)
	order.Symbol = eh.Symbol
	return order, nil
}

// SubmitOrderHandler handles single order submission
func (eh *EngineHolder) SubmitOrderHandler(w http.ResponseWriter, r *http.Request) {
	var req models.SubmitOrderRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, models.ErrBadRequest("Invalid JSON format", map[string]interface{}{"error": err.Error()}))
		return
	}

	if httpErr := req.Validate(); httpErr != nil {
		writeErrorResponse(w, httpErr)
		return
	}

	if req.IntentID == "" {
		req.IntentID = uuid.NewString()
	}

	order, httpErr := eh.buildOrder(&req)
	if httpErr != nil {
		writeErrorResponse(w, httpErr)
		return
	}

	result := eh.Engine.PlaceOrder(order)
	if result.Disposition == types.DispositionRejected {
		writeErrorResponse(w, models.ErrBadRequest("Order rejected", map[string]interface{}{"reason": result.Err.Error()}))
		return
	}

	logger.Info("Order submitted", map[string]interface{}{
		"order_id":    result.OrderID,
		"intent_id":   req.IntentID,
		"user_id":     req.UserID,
		"type":        req.OrderType,
		"side":        req.Side,
		"disposition": result.Disposition,
		"trades":      len(result.Trades),
	})

	response := models.SubmitOrderResponse{
		BaseResponse: models.BaseResponse{
			Success:   true,
			Timestamp: time.Now().UTC(),
			Message:   "Order submitted successfully",
		},
		OrderID:     result.OrderID,
		IntentID:    req.IntentID,
		Disposition: string(result.Disposition),
		Remaining:   int64(result.Remaining),
		Trades:      eh.convertTradesToDTO(result.Trades),
	}
	writeJSON(w, http.StatusOK, response)
}

// BatchOrderHandler handles batch order submission
func (eh *EngineHolder) BatchOrderHandler(w http.ResponseWriter, r *http.Request) {
	var req models.BatchOrderRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, models.ErrBadRequest("Invalid JSON format", map[string]interface{}{"error": err.Error()}))
		return
	}

	if httpErr := req.Validate(); httpErr != nil {
		writeErrorResponse(w, httpErr)
		return
	}

	results := make([]models.BatchOrderResult, len(req.Orders))
	successful := 0
	failed := 0

	for i := range req.Orders {
		orderReq := &req.Orders[i]
		result := models.BatchOrderResult{Index: i}

		httpErr := orderReq.Validate()
		var order *types.Order
		if httpErr == nil {
			order, httpErr = eh.buildOrder(orderReq)
		}

		if httpErr != nil {
			result.Success = false
			result.Error = &httpErr.Error
			failed++
		} else {
			if orderReq.IntentID == "" {
				orderReq.IntentID = uuid.NewString()
			}
			placed := eh.Engine.PlaceOrder(order)
			result.Success = true
			result.OrderID = placed.OrderID
			result.IntentID = orderReq.IntentID
			result.Disposition = string(placed.Disposition)
			result.Trades = eh.convertTradesToDTO(placed.Trades)
			successful++
		}

		results[i] = result
	}

	logger.Info("Batch order processed", map[string]interface{}{
		"total":      len(req.Orders),
		"successful": successful,
		"failed":     failed,
	})

	response := models.BatchOrderResponse{
		BaseResponse: models.BaseResponse{
			Success:   true,
			Timestamp: time.Now().UTC(),
		},
		Results: results,
		Summary: models.BatchOrderSummary{
			Total:      len(req.Orders),
			Successful: successful,
			Failed:     failed,
		},
	}
	writeJSON(w, http.StatusOK, response)
}

// orderIDFromPath extracts the trailing order id from the request path
func orderIDFromPath(r *http.Request) (uint64, *models.HTTPError) {
	pathParts := strings.Split(strings.TrimSuffix(r.URL.Path, "/"), "/")
	if len(pathParts) < 5 {
		return 0, models.ErrBadRequest("Invalid order ID", nil)
	}

	orderIDStr := pathParts[len(pathParts)-1]
	orderID, err := strconv.ParseUint(orderIDStr, 10, 64)
	if err != nil {
		return 0, models.ErrBadRequest("Invalid order ID format", map[string]interface{}{"provided_value": orderIDStr})
	}
	return orderID, nil
}

// CancelOrderHandler handles order cancellation
func (eh *EngineHolder) CancelOrderHandler(w http.ResponseWriter, r *http.Request) {
	orderID, httpErr := orderIDFromPath(r)
	if httpErr != nil {
		writeErrorResponse(w, httpErr)
		return
	}

	if err := eh.Engine.CancelOrder(orderID); err != nil {
		writeErrorResponse(w, models.ErrOrderNotFoundError(orderID))
		return
	}

	logger.Info("Order cancelled", map[string]interface{}{
		"order_id": orderID,
	})

	response := models.CancelOrderResponse{
		BaseResponse: models.BaseResponse{
			Success:   true,
			Timestamp: time.Now().UTC(),
			Message:   "Order cancelled successfully",
		},
		OrderID: orderID,
	}
	writeJSON(w, http.StatusOK, response)
}

// ModifyOrderHandler handles cancel-and-replace of a resting order
func (eh *EngineHolder) ModifyOrderHandler(w http.ResponseWriter, r *http.Request) {
	orderID, httpErr := orderIDFromPath(r)
	if httpErr != nil {
		writeErrorResponse(w, httpErr)
		return
	}

	var req models.ModifyOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, models.ErrBadRequest("Invalid JSON format", map[string]interface{}{"error": err.Error()}))
		return
	}

	if httpErr := req.Validate(); httpErr != nil {
		writeErrorResponse(w, httpErr)
		return
	}

	var newPrice *types.Price
	if strings.TrimSpace(req.Price) != "" {
		parsed, err := eh.Scale.PriceFromString(req.Price)
		if err != nil || parsed <= 0 {
			writeErrorResponse(w, models.ErrInvalidPriceError(req.Price))
			return
		}
		newPrice = &parsed
	}

	result, err := eh.Engine.ModifyOrder(orderID, newPrice, types.Quantity(req.Quantity))
	if err != nil {
		if errors.Is(err, types.ErrUnknownOrder) {
			writeErrorResponse(w, models.ErrOrderNotFoundError(orderID))
		} else {
			writeErrorResponse(w, models.ErrBadRequest("Modify rejected", map[string]interface{}{"reason": err.Error()}))
		}
		return
	}

	logger.Info("Order modified", map[string]interface{}{
		"order_id":     orderID,
		"new_order_id": result.OrderID,
		"disposition":  result.Disposition,
	})

	response := models.ModifyOrderResponse{
		BaseResponse: models.BaseResponse{
			Success:   true,
			Timestamp: time.Now().UTC(),
			Message:   "Order modified successfully",
		},
		OrderID:     orderID,
		NewOrderID:  result.OrderID,
		Disposition: string(result.Disposition),
		Remaining:   int64(result.Remaining),
		Trades:      eh.convertTradesToDTO(result.Trades),
	}
	writeJSON(w, http.StatusOK, response)
}

// GetOrderHandler handles retrieving a single order
func (eh *EngineHolder) GetOrderHandler(w http.ResponseWriter, r *http.Request) {
	orderID, httpErr := orderIDFromPath(r)
	if httpErr != nil {
		writeErrorResponse(w, httpErr)
		return
	}

	order := eh.Engine.GetOrder(orderID)
	if order == nil {
		writeErrorResponse(w, models.ErrOrderNotFoundError(orderID))
		return
	}

	response := models.GetOrderResponse{
		BaseResponse: models.BaseResponse{
			Success:   true,
			Timestamp: time.Now().UTC(),
		},
		Order: eh.convertOrderToDTO(order),
	}
	writeJSON(w, http.StatusOK, response)
}

// GetAllOrdersHandler handles retrieving all open orders
func (eh *EngineHolder) GetAllOrdersHandler(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	sideStr := r.URL.Query().Get("side")
	limitStr := r.URL.Query().Get("limit")

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

	var orders []*types.Order
	if userID != "" {
		orders = eh.Engine.GetOrdersByUser(userID)
	} else if side := convertSide(sideStr); side != types.NoActionSide {
		orders = eh.Engine.GetOrdersBySide(side)
	} else {
		orders = eh.Engine.GetAllOrders()
	}

	if len(orders) > limit {
		orders = orders[:limit]
	}

	orderDTOs := make([]models.OrderDTO, len(orders))
	for i, order := range orders {
		orderDTOs[i] = *eh.convertOrderToDTO(order)
	}

	logger.Info("Retrieved orders", map[string]interface{}{
		"count": len(orderDTOs),
	})

	response := models.GetOrdersResponse{
		BaseResponse: models.BaseResponse{
			Success:   true,
			Timestamp: time.Now().UTC(),
		},
		Orders: orderDTOs,
		Count:  len(orderDTOs),
	}
	writeJSON(w, http.StatusOK, response)
}
