package withdrawals

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/crowdspark/crowdspark-backend/pkg/db/models"
	"github.com/crowdspark/crowdspark-backend/pkg/enums"
	"github.com/crowdspark/crowdspark-backend/pkg/pagination"
)

// ListFilters narrow withdrawal listings.
type ListFilters struct {
	CampaignID *uuid.UUID
	Status     *enums.ApprovalStatus
}

// Repository defines persistence operations for withdrawal requests.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, withdrawal *models.Withdrawal) (*models.Withdrawal, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Withdrawal, error)
	SaveStatus(ctx context.Context, id uuid.UUID, status enums.ApprovalStatus, notes *string) error
	SumApprovedByCampaign(ctx context.Context, campaignID uuid.UUID) (int64, error)
	List(ctx context.Context, params pagination.Params, filters ListFilters) ([]models.Withdrawal, *pagination.Cursor, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a withdrawals repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, withdrawal *models.Withdrawal) (*models.Withdrawal, error) {
	if err := r.db.WithContext(ctx).Create(withdrawal).Error; err != nil {
		return nil, err
	}
	return withdrawal, nil
}

func (r *repository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Withdrawal, error) {
	var withdrawal models.Withdrawal
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&withdrawal).Error
	if err != nil {
		return nil, err
	}
	return &withdrawal, nil
}

func (r *repository) SaveStatus(ctx context.Context, id uuid.UUID, status enums.ApprovalStatus, notes *string) error {
	updates := map[string]any{"status": status}
	if notes != nil {
		updates["notes"] = notes
	}
	return r.db.WithContext(ctx).
		Model(&models.Withdrawal{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) SumApprovedByCampaign(ctx context.Context, campaignID uuid.UUID) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&models.Withdrawal{}).
		Select("COALESCE(SUM(amount_paise), 0)").
		Where("campaign_id = ? AND status = ?", campaignID, enums.ApprovalStatusApproved).
		Scan(&total).Error
	if err != nil {
		return 0, err
	}
	return total, nil
}

func (r *repository) List(ctx context.Context, params pagination.Params, filters ListFilters) ([]models.Withdrawal, *pagination.Cursor, error) {
	limit := pagination.LimitWithBuffer(params.Limit)
	normalized := pagination.NormalizeLimit(params.Limit)

	query := r.db.WithContext(ctx).Model(&models.Withdrawal{})
	if filters.CampaignID != nil {
		query = query.Where("campaign_id = ?", *filters.CampaignID)
	}
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, nil, err
	}
	if cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var withdrawals []models.Withdrawal
	if err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&withdrawals).Error; err != nil {
		return nil, nil, err
	}
	if len(withdrawals) > normalized {
		next := withdrawals[normalized]
		withdrawals = withdrawals[:normalized]
		return withdrawals, &pagination.Cursor{CreatedAt: next.CreatedAt, ID: next.ID}, nil
	}
	return withdrawals, nil, nil
}
