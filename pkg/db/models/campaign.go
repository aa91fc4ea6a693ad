package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/crowdspark/crowdspark-backend/pkg/enums"
)

// Campaign is a student fundraising project. AmountRaisedPaise is the derived
// funding aggregate; it is mutated only through the campaigns repository's
// atomic credit and is monotonically non-decreasing while the campaign is
// approved.
type Campaign struct {
	ID                uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OwnerID           uuid.UUID            `gorm:"column:owner_id;type:uuid;not null;index"`
	ClubID            uuid.UUID            `gorm:"column:club_id;type:uuid;not null;index"`
	Title             string               `gorm:"column:title;not null"`
	Description       string               `gorm:"column:description"`
	Status            enums.ApprovalStatus `gorm:"column:status;type:approval_status_enum;not null;default:'pending'"`
	GoalPaise         int64                `gorm:"column:goal_paise;not null"`
	AmountRaisedPaise int64                `gorm:"column:amount_raised_paise;not null;default:0"`
	ReapprovalCount   int                  `gorm:"column:reapproval_count;not null;default:0"`
	RejectionReason   *string              `gorm:"column:rejection_reason"`
	Milestones        []Milestone          `gorm:"foreignKey:CampaignID;constraint:OnDelete:CASCADE"`
	CreatedAt         time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}

// Milestone is owned exclusively by one campaign.
type Milestone struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CampaignID   uuid.UUID `gorm:"column:campaign_id;type:uuid;not null;index"`
	Title        string    `gorm:"column:title;not null"`
	Description  string    `gorm:"column:description"`
	DurationDays int       `gorm:"column:duration_days;not null"`
	BudgetPaise  int64     `gorm:"column:budget_paise;not null"`
	Position     int       `gorm:"column:position;not null"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
}
