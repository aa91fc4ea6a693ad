package campaigns

import (
	"github.com/google/uuid"

	"github.com/crowdspark/crowdspark-backend/pkg/db/models"
	"github.com/crowdspark/crowdspark-backend/pkg/enums"
	"github.com/crowdspark/crowdspark-backend/pkg/pagination"
)

// MilestoneInput is one planned spending step inside a submission.
type MilestoneInput struct {
	Title        string `json:"title" validate:"required,max=200"`
	Description  string `json:"description" validate:"max=2000"`
	DurationDays int    `json:"duration_days" validate:"required,gt=0"`
	BudgetPaise  int64  `json:"budget_paise" validate:"required,gt=0"`
}

// SubmitInput carries a new campaign submission.
type SubmitInput struct {
	OwnerID     uuid.UUID
	ClubID      uuid.UUID        `json:"club_id" validate:"required"`
	Title       string           `json:"title" validate:"required,max=200"`
	Description string           `json:"description" validate:"max=5000"`
	GoalPaise   int64            `json:"goal_paise" validate:"required,gt=0"`
	Milestones  []MilestoneInput `json:"milestones" validate:"required,min=1,dive"`
}

// ResubmitInput carries a revised campaign after rejection. The revision
// replaces title, description, goal and milestones wholesale.
type ResubmitInput struct {
	CampaignID  uuid.UUID
	ActorID     uuid.UUID
	Title       string           `json:"title" validate:"required,max=200"`
	Description string           `json:"description" validate:"max=5000"`
	GoalPaise   int64            `json:"goal_paise" validate:"required,gt=0"`
	Milestones  []MilestoneInput `json:"milestones" validate:"required,min=1,dive"`
}

// ListFilters narrow campaign listings.
type ListFilters struct {
	ClubID  *uuid.UUID
	OwnerID *uuid.UUID
	Status  *enums.ApprovalStatus
}

// List is one page of campaigns.
type List struct {
	Campaigns  []models.Campaign
	NextCursor *pagination.Cursor
}
