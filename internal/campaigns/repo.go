package campaigns

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/crowdspark/crowdspark-backend/pkg/db/models"
	"github.com/crowdspark/crowdspark-backend/pkg/enums"
	"github.com/crowdspark/crowdspark-backend/pkg/pagination"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a campaigns repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, campaign *models.Campaign) (*models.Campaign, error) {
	if err := r.db.WithContext(ctx).Create(campaign).Error; err != nil {
		return nil, err
	}
	return campaign, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Campaign, error) {
	var campaign models.Campaign
	err := r.db.WithContext(ctx).
		Preload("Milestones", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Where("id = ?", id).
		First(&campaign).Error
	if err != nil {
		return nil, err
	}
	return &campaign, nil
}

func (r *repository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Campaign, error) {
	var campaign models.Campaign
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&campaign).Error
	if err != nil {
		return nil, err
	}
	return &campaign, nil
}

func (r *repository) List(ctx context.Context, params pagination.Params, filters ListFilters) (*List, error) {
	limit := pagination.LimitWithBuffer(params.Limit)
	normalized := pagination.NormalizeLimit(params.Limit)

	query := r.db.WithContext(ctx).Model(&models.Campaign{})
	if filters.ClubID != nil {
		query = query.Where("club_id = ?", *filters.ClubID)
	}
	if filters.OwnerID != nil {
		query = query.Where("owner_id = ?", *filters.OwnerID)
	}
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}
	if cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var campaigns []models.Campaign
	if err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&campaigns).Error; err != nil {
		return nil, err
	}

	list := &List{Campaigns: campaigns}
	if len(campaigns) > normalized {
		next := campaigns[normalized]
		list.Campaigns = campaigns[:normalized]
		list.NextCursor = &pagination.Cursor{CreatedAt: next.CreatedAt, ID: next.ID}
	}
	return list, nil
}

func (r *repository) UpdateSubmission(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Campaign{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) ReplaceMilestones(ctx context.Context, campaignID uuid.UUID, milestones []models.Milestone) error {
	if err := r.db.WithContext(ctx).
		Where("campaign_id = ?", campaignID).
		Delete(&models.Milestone{}).Error; err != nil {
		return err
	}
	if len(milestones) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&milestones).Error
}

func (r *repository) SaveStatus(ctx context.Context, id uuid.UUID, status enums.ApprovalStatus, reason *string) error {
	updates := map[string]any{"status": status}
	if status == enums.ApprovalStatusRejected {
		updates["rejection_reason"] = reason
	}
	return r.db.WithContext(ctx).
		Model(&models.Campaign{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) CountByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Campaign{}).
		Where("owner_id = ?", ownerID).
		Count(&count).Error
	return count, err
}

// Credit adds a verified donation amount to the campaign's running total.
// The status guard in the WHERE clause keeps non-approved campaigns from
// accumulating funds; the single UPDATE keeps concurrent credits atomic.
func (r *repository) Credit(ctx context.Context, id uuid.UUID, amountPaise int64) (CreditResult, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Campaign{}).
		Where("id = ? AND status = ?", id, enums.ApprovalStatusApproved).
		UpdateColumn("amount_raised_paise", gorm.Expr("amount_raised_paise + ?", amountPaise))
	if result.Error != nil {
		return CreditResult{}, result.Error
	}

	credit := CreditResult{Applied: result.RowsAffected > 0}
	if credit.Applied {
		credit.Found = true
		credit.Approved = true
		return credit, nil
	}

	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Campaign{}).
		Where("id = ?", id).
		Count(&count).Error; err != nil {
		return CreditResult{}, err
	}
	credit.Found = count > 0
	return credit, nil
}
