package donations

import (
	"regexp"

	"github.com/google/uuid"
)

// panRe matches the Indian permanent account number format.
var panRe = regexp.MustCompile(`^[A-Z]{5}[0-9]{4}[A-Z]$`)

// CreateOrderInput opens a donation order. DonorID identifies a signed-in
// donor; guests either supply both identity fields or neither (anonymous
// pledge).
type CreateOrderInput struct {
	DonorID     *uuid.UUID
	GuestEmail  *string    `json:"guest_email" validate:"omitempty,email"`
	GuestPAN    *string    `json:"guest_pan"`
	CampaignID  uuid.UUID  `json:"campaign_id" validate:"required"`
	AmountPaise int64      `json:"amount_paise" validate:"required,gt=0"`
}

// ConfirmInput carries the gateway success callback.
type ConfirmInput struct {
	OrderID   string `json:"gateway_order_id" validate:"required"`
	PaymentID string `json:"gateway_payment_id" validate:"required"`
	Signature string `json:"gateway_signature" validate:"required"`
}

// FailInput carries the gateway failure callback.
type FailInput struct {
	OrderID string  `json:"gateway_order_id" validate:"required"`
	Reason  *string `json:"reason"`
}
