package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/crowdspark/crowdspark-backend/pkg/enums"
)

// Withdrawal is a payout request against a campaign's raised funds.
type Withdrawal struct {
	ID          uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CampaignID  uuid.UUID            `gorm:"column:campaign_id;type:uuid;not null;index"`
	RequesterID uuid.UUID            `gorm:"column:requester_id;type:uuid;not null"`
	AmountPaise int64                `gorm:"column:amount_paise;not null"`
	Status      enums.ApprovalStatus `gorm:"column:status;type:approval_status_enum;not null;default:'pending'"`
	Notes       *string              `gorm:"column:notes"`
	CreatedAt   time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}
