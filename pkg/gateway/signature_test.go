package gateway

import (
	"strings"
	"testing"
)

func TestVerifyRoundTrip(t *testing.T) {
	sig := Sign("order_abc", "pay_123", "secret")
	if !Verify("order_abc", "pay_123", sig, "secret") {
		t.Fatal("valid signature rejected")
	}
}

func TestVerifyRejects(t *testing.T) {
	sig := Sign("order_abc", "pay_123", "secret")

	cases := []struct {
		name                                  string
		orderID, paymentID, signature, secret string
	}{
		{"wrong secret", "order_abc", "pay_123", sig, "other"},
		{"wrong order", "order_xyz", "pay_123", sig, "secret"},
		{"wrong payment", "order_abc", "pay_999", sig, "secret"},
		{"tampered signature", "order_abc", "pay_123", sig[:len(sig)-1] + "0", "secret"},
		{"empty signature", "order_abc", "pay_123", "", "secret"},
		{"empty order", "", "pay_123", sig, "secret"},
		{"empty payment", "order_abc", "", sig, "secret"},
		{"empty secret", "order_abc", "pay_123", sig, ""},
		{"garbage signature", "order_abc", "pay_123", "not-hex-at-all", "secret"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if Verify(tc.orderID, tc.paymentID, tc.signature, tc.secret) {
				t.Fatalf("expected rejection for %s", tc.name)
			}
		})
	}
}

func TestNewOrderID(t *testing.T) {
	id, err := NewOrderID()
	if err != nil {
		t.Fatalf("NewOrderID error: %v", err)
	}
	if !strings.HasPrefix(id, "order_") {
		t.Fatalf("unexpected order id format: %s", id)
	}

	other, err := NewOrderID()
	if err != nil {
		t.Fatalf("NewOrderID error: %v", err)
	}
	if id == other {
		t.Fatal("order ids must be unique")
	}
}
