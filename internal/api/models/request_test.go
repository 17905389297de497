package models

import "testing"

// TestSubmitOrderRequestValidate tests request-level validation
func TestSubmitOrderRequestValidate(t *testing.T) {
	valid := SubmitOrderRequest{UserID: "alice", OrderType: "limit", Side: "buy", Price: "100.00", Quantity: 10}
	if err := valid.Validate(); err != nil {
		t.Errorf("Valid request rejected: %v", err.Error.Message)
	}

	cases := []struct {
		name string
		req  SubmitOrderRequest
		code ErrorCode
	}{
		{"empty user", SubmitOrderRequest{OrderType: "limit", Side: "buy", Price: "100.00", Quantity: 10}, ErrInvalidRequest},
		{"bad type", SubmitOrderRequest{UserID: "alice", OrderType: "stop", Side: "buy", Price: "100.00", Quantity: 10}, ErrInvalidOrderType},
		{"bad side", SubmitOrderRequest{UserID: "alice", OrderType: "limit", Side: "hold", Price: "100.00", Quantity: 10}, ErrInvalidSide},
		{"zero quantity", SubmitOrderRequest{UserID: "alice", OrderType: "limit", Side: "buy", Price: "100.00", Quantity: 0}, ErrInvalidQuantity},
		{"limit without price", SubmitOrderRequest{UserID: "alice", OrderType: "limit", Side: "buy", Quantity: 10}, ErrMissingPrice},
	}

	for _, tc := range cases {
		httpErr := tc.req.Validate()
		if httpErr == nil {
			t.Errorf("%s: expected rejection", tc.name)
			continue
		}
		if httpErr.Error.Code != tc.code {
			t.Errorf("%s: expected %s, got %s", tc.name, tc.code, httpErr.Error.Code)
		}
	}

	// Market orders need no price
	market := SubmitOrderRequest{UserID: "alice", OrderType: "market", Side: "sell", Quantity: 10}
	if err := market.Validate(); err != nil {
		t.Errorf("Market order without price rejected: %v", err.Error.Message)
	}
}

// TestBatchOrderRequestValidate tests batch bounds
func TestBatchOrderRequestValidate(t *testing.T) {
	empty := BatchOrderRequest{}
	if empty.Validate() == nil {
		t.Error("Empty batch accepted")
	}

	oversized := BatchOrderRequest{Orders: make([]SubmitOrderRequest, 1001)}
	if oversized.Validate() == nil {
		t.Error("Oversized batch accepted")
	}

	ok := BatchOrderRequest{Orders: make([]SubmitOrderRequest, 3)}
	if ok.Validate() != nil {
		t.Error("Valid batch size rejected")
	}
}

// TestModifyOrderRequestValidate tests modify validation
func TestModifyOrderRequestValidate(t *testing.T) {
	if (&ModifyOrderRequest{Quantity: 10}).Validate() != nil {
		t.Error("Valid modify rejected")
	}
	if (&ModifyOrderRequest{Quantity: 0}).Validate() == nil {
		t.Error("Zero-quantity modify accepted")
	}
}
