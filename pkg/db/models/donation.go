package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/crowdspark/crowdspark-backend/pkg/enums"
)

// Donation is the append-only ledger row for one pledge. A given
// (gateway_order_id, gateway_payment_id) pair maps to at most one verified
// donation; the unique index on gateway_order_id plus the status check in the
// confirm path enforce it.
type Donation struct {
	ID               uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	DonorID          *uuid.UUID           `gorm:"column:donor_id;type:uuid;index"`
	GuestEmail       *string              `gorm:"column:guest_email"`
	GuestPAN         *string              `gorm:"column:guest_pan"`
	CampaignID       uuid.UUID            `gorm:"column:campaign_id;type:uuid;not null;index"`
	AmountPaise      int64                `gorm:"column:amount_paise;not null"`
	GatewayOrderID   string               `gorm:"column:gateway_order_id;not null;uniqueIndex"`
	GatewayPaymentID *string              `gorm:"column:gateway_payment_id"`
	Status           enums.DonationStatus `gorm:"column:status;type:donation_status_enum;not null;default:'created'"`
	VerifiedAt       *time.Time           `gorm:"column:verified_at"`
	CreatedAt        time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}

// IsGuest reports whether the donation was made without an account.
func (d Donation) IsGuest() bool {
	return d.DonorID == nil
}
