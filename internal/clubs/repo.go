package clubs

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/crowdspark/crowdspark-backend/pkg/db/models"
	"github.com/crowdspark/crowdspark-backend/pkg/enums"
	"github.com/crowdspark/crowdspark-backend/pkg/pagination"
)

// Repository defines persistence operations for clubs and their review
// submissions.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindClub(ctx context.Context, id uuid.UUID) (*models.Club, error)
	UpdateClub(ctx context.Context, id uuid.UUID, updates map[string]any) error
	CreateVerification(ctx context.Context, verification *models.ClubVerification) (*models.ClubVerification, error)
	FindVerificationForUpdate(ctx context.Context, id uuid.UUID) (*models.ClubVerification, error)
	SaveVerificationStatus(ctx context.Context, id uuid.UUID, status enums.ApprovalStatus, notes *string) error
	CountPendingVerifications(ctx context.Context, clubID uuid.UUID) (int64, error)
	ListVerifications(ctx context.Context, params pagination.Params, status *enums.ApprovalStatus) ([]models.ClubVerification, *pagination.Cursor, error)
	CreateReferral(ctx context.Context, referral *models.ClubReferral) (*models.ClubReferral, error)
	FindReferralForUpdate(ctx context.Context, id uuid.UUID) (*models.ClubReferral, error)
	SaveReferralStatus(ctx context.Context, id uuid.UUID, status enums.ApprovalStatus, notes *string) error
	ListReferrals(ctx context.Context, params pagination.Params, status *enums.ApprovalStatus) ([]models.ClubReferral, *pagination.Cursor, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a clubs repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindClub(ctx context.Context, id uuid.UUID) (*models.Club, error) {
	var club models.Club
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&club).Error; err != nil {
		return nil, err
	}
	return &club, nil
}

func (r *repository) UpdateClub(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Club{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) CreateVerification(ctx context.Context, verification *models.ClubVerification) (*models.ClubVerification, error) {
	if err := r.db.WithContext(ctx).Create(verification).Error; err != nil {
		return nil, err
	}
	return verification, nil
}

func (r *repository) FindVerificationForUpdate(ctx context.Context, id uuid.UUID) (*models.ClubVerification, error) {
	var verification models.ClubVerification
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&verification).Error
	if err != nil {
		return nil, err
	}
	return &verification, nil
}

func (r *repository) SaveVerificationStatus(ctx context.Context, id uuid.UUID, status enums.ApprovalStatus, notes *string) error {
	updates := map[string]any{"status": status}
	if notes != nil {
		updates["notes"] = notes
	}
	return r.db.WithContext(ctx).
		Model(&models.ClubVerification{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) CountPendingVerifications(ctx context.Context, clubID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.ClubVerification{}).
		Where("club_id = ? AND status = ?", clubID, enums.ApprovalStatusPending).
		Count(&count).Error
	return count, err
}

func (r *repository) ListVerifications(ctx context.Context, params pagination.Params, status *enums.ApprovalStatus) ([]models.ClubVerification, *pagination.Cursor, error) {
	limit := pagination.LimitWithBuffer(params.Limit)
	normalized := pagination.NormalizeLimit(params.Limit)

	query := r.db.WithContext(ctx).Model(&models.ClubVerification{})
	if status != nil {
		query = query.Where("status = ?", *status)
	}
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, nil, err
	}
	if cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var verifications []models.ClubVerification
	if err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&verifications).Error; err != nil {
		return nil, nil, err
	}
	if len(verifications) > normalized {
		next := verifications[normalized]
		verifications = verifications[:normalized]
		return verifications, &pagination.Cursor{CreatedAt: next.CreatedAt, ID: next.ID}, nil
	}
	return verifications, nil, nil
}

func (r *repository) CreateReferral(ctx context.Context, referral *models.ClubReferral) (*models.ClubReferral, error) {
	if err := r.db.WithContext(ctx).Create(referral).Error; err != nil {
		return nil, err
	}
	return referral, nil
}

func (r *repository) FindReferralForUpdate(ctx context.Context, id uuid.UUID) (*models.ClubReferral, error) {
	var referral models.ClubReferral
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&referral).Error
	if err != nil {
		return nil, err
	}
	return &referral, nil
}

func (r *repository) SaveReferralStatus(ctx context.Context, id uuid.UUID, status enums.ApprovalStatus, notes *string) error {
	updates := map[string]any{"status": status}
	if notes != nil {
		updates["notes"] = notes
	}
	return r.db.WithContext(ctx).
		Model(&models.ClubReferral{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) ListReferrals(ctx context.Context, params pagination.Params, status *enums.ApprovalStatus) ([]models.ClubReferral, *pagination.Cursor, error) {
	limit := pagination.LimitWithBuffer(params.Limit)
	normalized := pagination.NormalizeLimit(params.Limit)

	query := r.db.WithContext(ctx).Model(&models.ClubReferral{})
	if status != nil {
		query = query.Where("status = ?", *status)
	}
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, nil, err
	}
	if cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var referrals []models.ClubReferral
	if err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&referrals).Error; err != nil {
		return nil, nil, err
	}
	if len(referrals) > normalized {
		next := referrals[normalized]
		referrals = referrals[:normalized]
		return referrals, &pagination.Cursor{CreatedAt: next.CreatedAt, ID: next.ID}, nil
	}
	return referrals, nil, nil
}
