package testutils

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/matchcore/orderbook/internal/api/handlers"
	"github.com/matchcore/orderbook/internal/api/models"
	"github.com/matchcore/orderbook/internal/api/routes"
	"github.com/matchcore/orderbook/internal/matching"
	"github.com/matchcore/orderbook/internal/storage"
	"github.com/matchcore/orderbook/internal/types"
)

// TestServer wraps a test HTTP server with the matching engine
type TestServer struct {
	Server *httptest.Server
	Engine *matching.Engine
	Scale  types.PriceScale
	t      testing.TB
}

// NewTestServer creates a new test server with a fresh engine backed by
// in-memory stores and a 2-decimal price scale.
func NewTestServer(t testing.TB) *TestServer {
	orderStore := storage.NewInMemoryOrderStore(0)
	tradeStore := storage.NewInMemoryTradeStore(1000)

	engine := matching.NewEngineWithStores(orderStore, tradeStore)
	scale := types.NewPriceScale(2)

	engineHolder := handlers.NewEngineHolder(engine, "TEST", scale)
	handler := routes.SetupRoutes(engineHolder, nil)
	server := httptest.NewServer(handler)

	return &TestServer{
		Server: server,
		Engine: engine,
		Scale:  scale,
		t:      t,
	}
}

// Close cleans up the test server
func (ts *TestServer) Close() {
	ts.Server.Close()
	ts.Engine.Close()
}

// URL returns the base URL for the test server
func (ts *TestServer) URL() string {
	return ts.Server.URL
}

// Get makes a GET request to the test server
func (ts *TestServer) Get(path string) *http.Response {
	resp, err := http.Get(ts.URL() + path)
	require.NoError(ts.t, err, "GET request failed")
	return resp
}

// Post makes a POST request with JSON body
func (ts *TestServer) Post(path string, body interface{}) *http.Response {
	jsonBody, err := json.Marshal(body)
	require.NoError(ts.t, err, "Failed to marshal request body")

	resp, err := http.Post(ts.URL()+path, "application/json", bytes.NewBuffer(jsonBody))
	require.NoError(ts.t, err, "POST request failed")
	return resp
}

// Put makes a PUT request with JSON body
func (ts *TestServer) Put(path string, body interface{}) *http.Response {
	jsonBody, err := json.Marshal(body)
	require.NoError(ts.t, err, "Failed to marshal request body")

	req, err := http.NewRequest(http.MethodPut, ts.URL()+path, bytes.NewBuffer(jsonBody))
	require.NoError(ts.t, err, "Failed to create PUT request")
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(ts.t, err, "PUT request failed")
	return resp
}

// Delete makes a DELETE request
func (ts *TestServer) Delete(path string) *http.Response {
	req, err := http.NewRequest(http.MethodDelete, ts.URL()+path, nil)
	require.NoError(ts.t, err, "Failed to create DELETE request")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(ts.t, err, "DELETE request failed")
	return resp
}

// DecodeJSON decodes JSON response into target
func DecodeJSON(t testing.TB, resp *http.Response, target interface{}) {
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "Failed to read response body")

	err = json.Unmarshal(body, target)
	require.NoError(t, err, "Failed to decode JSON response: %s", string(body))
}

// NewLimitBuyOrder builds a limit buy request
func NewLimitBuyOrder(userID, price string, quantity int64) models.SubmitOrderRequest {
	return models.SubmitOrderRequest{
		UserID:    userID,
		OrderType: "limit",
		Side:      "buy",
		Price:     price,
		Quantity:  quantity,
	}
}

// NewLimitSellOrder builds a limit sell request
func NewLimitSellOrder(userID, price string, quantity int64) models.SubmitOrderRequest {
	return models.SubmitOrderRequest{
		UserID:    userID,
		OrderType: "limit",
		Side:      "sell",
		Price:     price,
		Quantity:  quantity,
	}
}

// NewMarketBuyOrder builds a market buy request
func NewMarketBuyOrder(userID string, quantity int64) models.SubmitOrderRequest {
	return models.SubmitOrderRequest{
		UserID:    userID,
		OrderType: "market",
		Side:      "buy",
		Quantity:  quantity,
	}
}

// NewMarketSellOrder builds a market sell request
func NewMarketSellOrder(userID string, quantity int64) models.SubmitOrderRequest {
	return models.SubmitOrderRequest{
		UserID:    userID,
		OrderType: "market",
		Side:      "sell",
		Quantity:  quantity,
	}
}

// GetOrderBookDepth returns the current number of price levels per side
func (ts *TestServer) GetOrderBookDepth() (bidLevels, askLevels int) {
	return len(ts.Engine.BidLevels(0)), len(ts.Engine.AskLevels(0))
}
