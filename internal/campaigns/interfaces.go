package campaigns

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/crowdspark/crowdspark-backend/pkg/db/models"
	"github.com/crowdspark/crowdspark-backend/pkg/enums"
	"github.com/crowdspark/crowdspark-backend/pkg/pagination"
)

// CreditResult reports what the atomic funding update did.
type CreditResult struct {
	Applied  bool
	Found    bool
	Approved bool
}

// Repository defines persistence operations for campaigns and milestones.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, campaign *models.Campaign) (*models.Campaign, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Campaign, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Campaign, error)
	List(ctx context.Context, params pagination.Params, filters ListFilters) (*List, error)
	UpdateSubmission(ctx context.Context, id uuid.UUID, updates map[string]any) error
	ReplaceMilestones(ctx context.Context, campaignID uuid.UUID, milestones []models.Milestone) error
	SaveStatus(ctx context.Context, id uuid.UUID, status enums.ApprovalStatus, reason *string) error
	Credit(ctx context.Context, id uuid.UUID, amountPaise int64) (CreditResult, error)
	CountByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error)
}
