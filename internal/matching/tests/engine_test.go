package matching

import (
	"errors"
	"testing"

	"github.com/matchcore/orderbook/internal/matching"
	"github.com/matchcore/orderbook/internal/types"
)

// TestNewEngine tests the Engine constructor
func TestNewEngine(t *testing.T) {
	engine := matching.NewEngine()

	if engine == nil {
		t.Fatal("NewEngine() returned nil")
	}
}

// TestPlaceMarketOrderBuy tests placing a market buy order
func TestPlaceMarketOrderBuy(t *testing.T) {
	engine := matching.NewEngine()

	// Add some ask orders (liquidity to buy against)
	ask1 := matching.NewOrder(engine.GenerateOrderID(), "alice", matching.LimitOrder, matching.Sell, 10100, 10)
	ask2 := matching.NewOrder(engine.GenerateOrderID(), "alice", matching.LimitOrder, matching.Sell, 10200, 20)
	ask3 := matching.NewOrder(engine.GenerateOrderID(), "alice", matching.LimitOrder, matching.Sell, 10300, 15)

	engine.PlaceOrder(ask1)
	engine.PlaceOrder(ask2)
	engine.PlaceOrder(ask3)

	// Place market buy order that fully fills against best ask
	marketBuy := matching.NewOrder(engine.GenerateOrderID(), "bob", matching.MarketOrder, matching.Buy, 0, 10)
	result := engine.PlaceOrder(marketBuy)

	if len(result.Trades) != 1 {
		t.Fatalf("Expected 1 trade, got %d", len(result.Trades))
	}
	if result.Disposition != types.DispositionFilled {
		t.Errorf("Expected FILLED, got %s", result.Disposition)
	}

	trade := result.Trades[0]
	if trade.Price != 10100 {
		t.Errorf("Expected trade price 10100, got %d", trade.Price)
	}
	if trade.Quantity != 10 {
		t.Errorf("Expected trade quantity 10, got %d", trade.Quantity)
	}
	if trade.BuyOrderID != marketBuy.ID || trade.SellOrderID != ask1.ID {
		t.Errorf("Trade order IDs incorrect: buy=%d, sell=%d", trade.BuyOrderID, trade.SellOrderID)
	}
	if trade.MakerOrderID != ask1.ID || trade.TakerOrderID != marketBuy.ID {
		t.Errorf("Maker/taker incorrect: maker=%d, taker=%d", trade.MakerOrderID, trade.TakerOrderID)
	}
}

// TestPlaceMarketOrderSell tests placing a market sell order
func TestPlaceMarketOrderSell(t *testing.T) {
	engine := matching.NewEngine()

	bid1 := matching.NewOrder(engine.GenerateOrderID(), "alice", matching.LimitOrder, matching.Buy, 10000, 10)
	bid2 := matching.NewOrder(engine.GenerateOrderID(), "alice", matching.LimitOrder, matching.Buy, 9900, 20)

	engine.PlaceOrder(bid1)
	engine.PlaceOrder(bid2)

	marketSell := matching.NewOrder(engine.GenerateOrderID(), "bob", matching.MarketOrder, matching.Sell, 0, 10)
	result := engine.PlaceOrder(marketSell)

	if len(result.Trades) != 1 {
		t.Fatalf("Expected 1 trade, got %d", len(result.Trades))
	}
	if result.Trades[0].Price != 10000 {
		t.Errorf("Expected trade at best bid 10000, got %d", result.Trades[0].Price)
	}
	if result.Trades[0].SellOrderID != marketSell.ID || result.Trades[0].BuyOrderID != bid1.ID {
		t.Errorf("Trade order IDs incorrect")
	}
}

// TestMarketOrderWalksLevels tests a market order sweeping multiple levels
func TestMarketOrderWalksLevels(t *testing.T) {
	engine := matching.NewEngine()

	engine.PlaceOrder(matching.NewOrder(engine.GenerateOrderID(), "alice", matching.LimitOrder, matching.Sell, 10100, 10))
	engine.PlaceOrder(matching.NewOrder(engine.GenerateOrderID(), "alice", matching.LimitOrder, matching.Sell, 10200, 10))
	engine.PlaceOrder(matching.NewOrder(engine.GenerateOrderID(), "alice", matching.LimitOrder, matching.Sell, 10300, 10))

	marketBuy := matching.NewOrder(engine.GenerateOrderID(), "bob", matching.MarketOrder, matching.Buy, 0, 25)
	result := engine.PlaceOrder(marketBuy)

	if len(result.Trades) != 3 {
		t.Fatalf("Expected 3 trades, got %d", len(result.Trades))
	}

	// Fills happen at successively worse prices, each at the resting price
	wantPrices := []types.Price{10100, 10200, 10300}
	wantQtys := []types.Quantity{10, 10, 5}
	for i, trade := range result.Trades {
		if trade.Price != wantPrices[i] {
			t.Errorf("Trade %d: expected price %d, got %d", i, wantPrices[i], trade.Price)
		}
		if trade.Quantity != wantQtys[i] {
			t.Errorf("Trade %d: expected quantity %d, got %d", i, wantQtys[i], trade.Quantity)
		}
	}

	// The partially consumed ask stays with its reduced remainder
	if depth := engine.DepthAt(types.Sell, 10300); depth != 5 {
		t.Errorf("Expected 5 remaining at 10300, got %d", depth)
	}
}

// TestMarketOrderNeverRests tests that an unfilled market remainder expires
func TestMarketOrderNeverRests(t *testing.T) {
	engine := matching.NewEngine()

	engine.PlaceOrder(matching.NewOrder(engine.GenerateOrderID(), "alice", matching.LimitOrder, matching.Sell, 10100, 10))

	marketBuy := matching.NewOrder(engine.GenerateOrderID(), "bob", matching.MarketOrder, matching.Buy, 0, 25)
	result := engine.PlaceOrder(marketBuy)

	if result.Disposition != types.DispositionPartialExpired {
		t.Errorf("Expected PARTIALLY_FILLED_EXPIRED, got %s", result.Disposition)
	}
	if result.Remaining != 15 {
		t.Errorf("Expected remaining 15, got %d", result.Remaining)
	}
	if engine.OpenOrders() != 0 {
		t.Errorf("Market remainder must not rest; book has %d orders", engine.OpenOrders())
	}

	// Against an empty book the whole market order expires
	marketSell := matching.NewOrder(engine.GenerateOrderID(), "bob", matching.MarketOrder, matching.Sell, 0, 5)
	result = engine.PlaceOrder(marketSell)
	if result.Disposition != types.DispositionExpired {
		t.Errorf("Expected EXPIRED, got %s", result.Disposition)
	}
}

// TestLimitOrderRests tests that a non-crossing limit order joins the book
func TestLimitOrderRests(t *testing.T) {
	engine := matching.NewEngine()

	buy := matching.NewOrder(engine.GenerateOrderID(), "alice", matching.LimitOrder, matching.Buy, 9900, 10)
	result := engine.PlaceOrder(buy)

	if result.Disposition != types.DispositionResting {
		t.Errorf("Expected RESTING, got %s", result.Disposition)
	}
	if len(result.Trades) != 0 {
		t.Errorf("Expected no trades, got %d", len(result.Trades))
	}

	bestBid, ok := engine.BestBid()
	if !ok || bestBid != 9900 {
		t.Errorf("Expected best bid 9900, got %d (ok=%v)", bestBid, ok)
	}
}

// TestLimitOrderPartialFillRests tests a crossing limit order whose
// remainder rests at its own price
func TestLimitOrderPartialFillRests(t *testing.T) {
	engine := matching.NewEngine()

	engine.PlaceOrder(matching.NewOrder(engine.GenerateOrderID(), "alice", matching.LimitOrder, matching.Sell, 10100, 10))

	buy := matching.NewOrder(engine.GenerateOrderID(), "bob", matching.LimitOrder, matching.Buy, 10100, 25)
	result := engine.PlaceOrder(buy)

	if result.Disposition != types.DispositionPartialResting {
		t.Errorf("Expected PARTIALLY_FILLED_RESTING, got %s", result.Disposition)
	}
	if len(result.Trades) != 1 || result.Trades[0].Quantity != 10 {
		t.Fatalf("Expected one trade of 10, got %v", result.Trades)
	}
	if result.Remaining != 15 {
		t.Errorf("Expected remaining 15, got %d", result.Remaining)
	}

	bestBid, ok := engine.BestBid()
	if !ok || bestBid != 10100 {
		t.Errorf("Expected remainder resting at 10100, got %d (ok=%v)", bestBid, ok)
	}
	if depth := engine.DepthAt(types.Buy, 10100); depth != 15 {
		t.Errorf("Expected bid depth 15, got %d", depth)
	}
}

// TestLimitOrderDoesNotCrossThroughLimit tests that matching stops at the
// limit price even when deeper liquidity exists
func TestLimitOrderDoesNotCrossThroughLimit(t *testing.T) {
	engine := matching.NewEngine()

	engine.PlaceOrder(matching.NewOrder(engine.GenerateOrderID(), "alice", matching.LimitOrder, matching.Sell, 10100, 10))
	engine.PlaceOrder(matching.NewOrder(engine.GenerateOrderID(), "alice", matching.LimitOrder, matching.Sell, 10300, 10))

	buy := matching.NewOrder(engine.GenerateOrderID(), "bob", matching.LimitOrder, matching.Buy, 10200, 25)
	result := engine.PlaceOrder(buy)

	if len(result.Trades) != 1 {
		t.Fatalf("Expected 1 trade, got %d", len(result.Trades))
	}
	if result.Trades[0].Price != 10100 {
		t.Errorf("Expected fill at 10100, got %d", result.Trades[0].Price)
	}
	if result.Remaining != 15 {
		t.Errorf("Expected remaining 15, got %d", result.Remaining)
	}

	// The 10300 ask is untouched
	if depth := engine.DepthAt(types.Sell, 10300); depth != 10 {
		t.Errorf("Ask beyond the limit was consumed")
	}
}

// TestExecutionAtRestingPrice tests that trades print at the maker's price
func TestExecutionAtRestingPrice(t *testing.T) {
	engine := matching.NewEngine()

	engine.PlaceOrder(matching.NewOrder(engine.GenerateOrderID(), "alice", matching.LimitOrder, matching.Sell, 10100, 10))

	// Aggressive buy willing to pay more still executes at the resting price
	buy := matching.NewOrder(engine.GenerateOrderID(), "bob", matching.LimitOrder, matching.Buy, 10500, 10)
	result := engine.PlaceOrder(buy)

	if len(result.Trades) != 1 {
		t.Fatalf("Expected 1 trade, got %d", len(result.Trades))
	}
	if result.Trades[0].Price != 10100 {
		t.Errorf("Expected execution at resting price 10100, got %d", result.Trades[0].Price)
	}
}

// TestTimePriorityWithinLevel tests FIFO execution at one price
func TestTimePriorityWithinLevel(t *testing.T) {
	engine := matching.NewEngine()

	first := matching.NewOrder(engine.GenerateOrderID(), "alice", matching.LimitOrder, matching.Sell, 10100, 10)
	second := matching.NewOrder(engine.GenerateOrderID(), "bob", matching.LimitOrder, matching.Sell, 10100, 10)
	engine.PlaceOrder(first)
	engine.PlaceOrder(second)

	buy := matching.NewOrder(engine.GenerateOrderID(), "carol", matching.MarketOrder, matching.Buy, 0, 15)
	result := engine.PlaceOrder(buy)

	if len(result.Trades) != 2 {
		t.Fatalf("Expected 2 trades, got %d", len(result.Trades))
	}
	if result.Trades[0].SellOrderID != first.ID {
		t.Errorf("Oldest order must fill first: expected %d, got %d", first.ID, result.Trades[0].SellOrderID)
	}
	if result.Trades[1].SellOrderID != second.ID {
		t.Errorf("Second arrival fills second")
	}
	if result.Trades[0].Quantity != 10 || result.Trades[1].Quantity != 5 {
		t.Errorf("Expected fills 10 then 5, got %d then %d", result.Trades[0].Quantity, result.Trades[1].Quantity)
	}
}

// TestCancelOrder tests cancelling a resting order
func TestCancelOrder(t *testing.T) {
	engine := matching.NewEngine()

	buy := matching.NewOrder(engine.GenerateOrderID(), "alice", matching.LimitOrder, matching.Buy, 9900, 10)
	engine.PlaceOrder(buy)

	if err := engine.CancelOrder(buy.ID); err != nil {
		t.Fatalf("Cancel failed: %v", err)
	}

	if _, ok := engine.BestBid(); ok {
		t.Error("Cancelled order still visible in the book")
	}
	if engine.OpenOrders() != 0 {
		t.Errorf("Expected empty book, got %d orders", engine.OpenOrders())
	}
}

// TestCancelTwiceFails tests that the second cancel of the same id errors
func TestCancelTwiceFails(t *testing.T) {
	engine := matching.NewEngine()

	buy := matching.NewOrder(engine.GenerateOrderID(), "alice", matching.LimitOrder, matching.Buy, 9900, 10)
	engine.PlaceOrder(buy)

	if err := engine.CancelOrder(buy.ID); err != nil {
		t.Fatalf("First cancel failed: %v", err)
	}

	err := engine.CancelOrder(buy.ID)
	if err == nil {
		t.Fatal("Second cancel must fail")
	}
	if !errors.Is(err, types.ErrUnknownOrder) {
		t.Errorf("Expected ErrUnknownOrder, got %v", err)
	}
}

// TestCancelUnknownOrder tests cancelling an id that never existed
func TestCancelUnknownOrder(t *testing.T) {
	engine := matching.NewEngine()

	err := engine.CancelOrder(424242)
	if !errors.Is(err, types.ErrUnknownOrder) {
		t.Errorf("Expected ErrUnknownOrder, got %v", err)
	}
}

// TestCancelFilledOrderFails tests that a fully filled order cannot be cancelled
func TestCancelFilledOrderFails(t *testing.T) {
	engine := matching.NewEngine()

	ask := matching.NewOrder(engine.GenerateOrderID(), "alice", matching.LimitOrder, matching.Sell, 10100, 10)
	engine.PlaceOrder(ask)
	engine.PlaceOrder(matching.NewOrder(engine.GenerateOrderID(), "bob", matching.MarketOrder, matching.Buy, 0, 10))

	err := engine.CancelOrder(ask.ID)
	if !errors.Is(err, types.ErrUnknownOrder) {
		t.Errorf("Expected ErrUnknownOrder for filled order, got %v", err)
	}
}

// TestModifyLosesPriority tests that a modified order goes to the back of
// the queue at its price
func TestModifyLosesPriority(t *testing.T) {
	engine := matching.NewEngine()

	first := matching.NewOrder(engine.GenerateOrderID(), "alice", matching.LimitOrder, matching.Sell, 10100, 10)
	second := matching.NewOrder(engine.GenerateOrderID(), "bob", matching.LimitOrder, matching.Sell, 10100, 10)
	engine.PlaceOrder(first)
	engine.PlaceOrder(second)

	// Modify the first order: same price, new quantity
	result, err := engine.ModifyOrder(first.ID, nil, 10)
	if err != nil {
		t.Fatalf("Modify failed: %v", err)
	}
	if result.OrderID == first.ID {
		t.Error("Replacement must get a fresh order id")
	}

	// The untouched second order now has time priority
	buy := matching.NewOrder(engine.GenerateOrderID(), "carol", matching.MarketOrder, matching.Buy, 0, 10)
	fills := engine.PlaceOrder(buy)
	if len(fills.Trades) != 1 {
		t.Fatalf("Expected 1 trade, got %d", len(fills.Trades))
	}
	if fills.Trades[0].SellOrderID != second.ID {
		t.Errorf("Modified order kept priority: filled %d, expected %d", fills.Trades[0].SellOrderID, second.ID)
	}
}

// TestModifyCanExecuteImmediately tests that a repriced order re-enters
// matching and trades when it crosses
func TestModifyCanExecuteImmediately(t *testing.T) {
	engine := matching.NewEngine()

	engine.PlaceOrder(matching.NewOrder(engine.GenerateOrderID(), "alice", matching.LimitOrder, matching.Sell, 10100, 10))
	buy := matching.NewOrder(engine.GenerateOrderID(), "bob", matching.LimitOrder, matching.Buy, 9900, 10)
	engine.PlaceOrder(buy)

	newPrice := types.Price(10100)
	result, err := engine.ModifyOrder(buy.ID, &newPrice, 10)
	if err != nil {
		t.Fatalf("Modify failed: %v", err)
	}
	if result.Disposition != types.DispositionFilled {
		t.Errorf("Expected crossing modify to fill, got %s", result.Disposition)
	}
	if len(result.Trades) != 1 || result.Trades[0].Price != 10100 {
		t.Errorf("Expected one trade at 10100, got %v", result.Trades)
	}
}

// TestModifyUnknownOrderFails tests modifying a nonexistent order
func TestModifyUnknownOrderFails(t *testing.T) {
	engine := matching.NewEngine()

	_, err := engine.ModifyOrder(424242, nil, 10)
	if !errors.Is(err, types.ErrUnknownOrder) {
		t.Errorf("Expected ErrUnknownOrder, got %v", err)
	}
}

// TestModifyInvalidQuantityLeavesBookUntouched tests that a malformed
// modify does not cancel the target order
func TestModifyInvalidQuantityLeavesBookUntouched(t *testing.T) {
	engine := matching.NewEngine()

	buy := matching.NewOrder(engine.GenerateOrderID(), "alice", matching.LimitOrder, matching.Buy, 9900, 10)
	engine.PlaceOrder(buy)

	_, err := engine.ModifyOrder(buy.ID, nil, 0)
	if !errors.Is(err, types.ErrInvalidIntent) {
		t.Fatalf("Expected ErrInvalidIntent, got %v", err)
	}

	// The original order still rests
	if engine.GetOrder(buy.ID) == nil {
		t.Error("Invalid modify removed the resting order")
	}
}

// TestModifyInvalidPriceLeavesBookUntouched tests that a modify carrying a
// non-positive price is rejected before the target is cancelled
func TestModifyInvalidPriceLeavesBookUntouched(t *testing.T) {
	engine := matching.NewEngine()

	buy := matching.NewOrder(engine.GenerateOrderID(), "alice", matching.LimitOrder, matching.Buy, 9900, 10)
	engine.PlaceOrder(buy)

	badPrice := types.Price(0)
	_, err := engine.ModifyOrder(buy.ID, &badPrice, 10)
	if !errors.Is(err, types.ErrInvalidIntent) {
		t.Fatalf("Expected ErrInvalidIntent, got %v", err)
	}

	if engine.GetOrder(buy.ID) == nil {
		t.Error("Invalid modify removed the resting order")
	}
}

// TestModifyIsOneStep tests that cancel and reinsert happen as a single
// step: takers racing a stream of modifies never see the order missing
// from the book
func TestModifyIsOneStep(t *testing.T) {
	engine := matching.NewEngine()

	rest := engine.PlaceOrder(matching.NewOrder(engine.GenerateOrderID(), "alice", matching.LimitOrder, matching.Sell, 10100, 1_000_000))
	if rest.Disposition != types.DispositionResting {
		t.Fatalf("Expected RESTING, got %s", rest.Disposition)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		id := rest.OrderID
		for i := 0; i < 500; i++ {
			result, err := engine.ModifyOrder(id, nil, 1_000_000)
			if err != nil {
				t.Errorf("Modify %d failed: %v", i, err)
				return
			}
			id = result.OrderID
		}
	}()

	// Each unit buy must find the sell order resting: if a taker could
	// slip between a modify's cancel and its reinsert, the buy would
	// expire against an empty book.
	for i := 0; i < 500; i++ {
		buy := matching.NewOrder(engine.GenerateOrderID(), "bob", matching.MarketOrder, matching.Buy, 0, 1)
		result := engine.PlaceOrder(buy)
		if result.Disposition != types.DispositionFilled {
			t.Fatalf("Taker %d expired mid-modify: got %s", i, result.Disposition)
		}
	}
	<-done

	if engine.OpenOrders() != 1 {
		t.Errorf("Expected the replacement order resting, got %d open", engine.OpenOrders())
	}
}

// TestRejectedOrders tests malformed intent rejection
func TestRejectedOrders(t *testing.T) {
	engine := matching.NewEngine()

	cases := []struct {
		name  string
		order *matching.Order
	}{
		{"zero quantity", matching.NewOrder(engine.GenerateOrderID(), "alice", matching.LimitOrder, matching.Buy, 10000, 0)},
		{"negative quantity", matching.NewOrder(engine.GenerateOrderID(), "alice", matching.LimitOrder, matching.Buy, 10000, -5)},
		{"limit without price", matching.NewOrder(engine.GenerateOrderID(), "alice", matching.LimitOrder, matching.Buy, 0, 10)},
		{"no side", matching.NewOrder(engine.GenerateOrderID(), "alice", matching.LimitOrder, matching.NoActionSide, 10000, 10)},
		{"no type", matching.NewOrder(engine.GenerateOrderID(), "alice", matching.NoActionOrder, matching.Buy, 10000, 10)},
	}

	for _, tc := range cases {
		result := engine.PlaceOrder(tc.order)
		if result.Disposition != types.DispositionRejected {
			t.Errorf("%s: expected REJECTED, got %s", tc.name, result.Disposition)
		}
		if result.Err == nil {
			t.Errorf("%s: expected an error on the result", tc.name)
		}
	}

	if engine.OpenOrders() != 0 {
		t.Errorf("Rejected orders must not touch the book; got %d resting", engine.OpenOrders())
	}
}

// TestQuantityConservation tests that filled + remaining always equals the
// original quantity across a burst of orders
func TestQuantityConservation(t *testing.T) {
	engine := matching.NewEngine()

	var totalTraded types.Quantity
	var totalSubmitted types.Quantity
	var totalRemaining types.Quantity

	prices := []types.Price{10000, 10050, 10100, 10150, 10200}
	for i := 0; i < 200; i++ {
		side := matching.Buy
		if i%2 == 1 {
			side = matching.Sell
		}
		qty := types.Quantity(1 + i%7)
		order := matching.NewOrder(engine.GenerateOrderID(), "alice", matching.LimitOrder, side, prices[i%len(prices)], qty)
		result := engine.PlaceOrder(order)

		totalSubmitted += qty
		totalRemaining += result.Remaining
		for _, trade := range result.Trades {
			totalTraded += trade.Quantity
		}
	}

	// Each result's Remaining already excludes the taker-side fills, so
	// the submit-time snapshots account for every traded unit exactly once
	if totalSubmitted != totalRemaining+totalTraded {
		t.Errorf("Quantity not conserved: submitted=%d remaining=%d traded=%d",
			totalSubmitted, totalRemaining, totalTraded)
	}

	// Against the live book every traded unit consumed one unit on each side
	var liveRemaining types.Quantity
	for _, level := range engine.BidLevels(0) {
		liveRemaining += level.Quantity
	}
	for _, level := range engine.AskLevels(0) {
		liveRemaining += level.Quantity
	}
	if totalSubmitted != liveRemaining+2*totalTraded {
		t.Errorf("Book quantity not conserved: submitted=%d resting=%d traded=%d",
			totalSubmitted, liveRemaining, totalTraded)
	}
}

// TestTradeIDsMonotonic tests that trade ids strictly increase
func TestTradeIDsMonotonic(t *testing.T) {
	engine := matching.NewEngine()

	for i := 0; i < 10; i++ {
		engine.PlaceOrder(matching.NewOrder(engine.GenerateOrderID(), "alice", matching.LimitOrder, matching.Sell, 10100, 5))
	}
	result := engine.PlaceOrder(matching.NewOrder(engine.GenerateOrderID(), "bob", matching.MarketOrder, matching.Buy, 0, 50))

	if len(result.Trades) != 10 {
		t.Fatalf("Expected 10 trades, got %d", len(result.Trades))
	}
	for i := 1; i < len(result.Trades); i++ {
		if result.Trades[i].TradeID <= result.Trades[i-1].TradeID {
			t.Errorf("Trade ids not strictly increasing: %d then %d",
				result.Trades[i-1].TradeID, result.Trades[i].TradeID)
		}
	}
}
