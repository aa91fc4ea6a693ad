package gateway

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Verify reports whether the gateway callback signature is authentic. The
// gateway signs `orderID|paymentID` with HMAC-SHA256 under the shared secret
// and hex-encodes the digest. The comparison is constant-time; any malformed
// input yields false, never an error, and callers must treat false as "do not
// touch the ledger".
func Verify(orderID, paymentID, signature, secret string) bool {
	if orderID == "" || paymentID == "" || signature == "" || secret == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// Sign produces the signature the gateway would send for the given order and
// payment. Only tests and local tooling should need it.
func Sign(orderID, paymentID, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// NewOrderID reserves a gateway order identifier of the form order_<hex>.
func NewOrderID() (string, error) {
	buf := make([]byte, 12)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating order id: %w", err)
	}
	return "order_" + hex.EncodeToString(buf), nil
}
