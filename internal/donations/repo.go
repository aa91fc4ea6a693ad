package donations

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/crowdspark/crowdspark-backend/pkg/db/models"
	"github.com/crowdspark/crowdspark-backend/pkg/enums"
)

// Repository defines persistence operations for the donation ledger.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, donation *models.Donation) (*models.Donation, error)
	FindByOrderID(ctx context.Context, orderID string) (*models.Donation, error)
	FindByOrderIDForUpdate(ctx context.Context, orderID string) (*models.Donation, error)
	MarkVerified(ctx context.Context, id uuid.UUID, paymentID string, verifiedAt time.Time) error
	MarkFailed(ctx context.Context, id uuid.UUID) error
	SumVerifiedByDonor(ctx context.Context, donorID uuid.UUID) (int64, error)
	FindCreatedBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.Donation, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a donations repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, donation *models.Donation) (*models.Donation, error) {
	if err := r.db.WithContext(ctx).Create(donation).Error; err != nil {
		return nil, err
	}
	return donation, nil
}

func (r *repository) FindByOrderID(ctx context.Context, orderID string) (*models.Donation, error) {
	var donation models.Donation
	err := r.db.WithContext(ctx).
		Where("gateway_order_id = ?", orderID).
		First(&donation).Error
	if err != nil {
		return nil, err
	}
	return &donation, nil
}

func (r *repository) FindByOrderIDForUpdate(ctx context.Context, orderID string) (*models.Donation, error) {
	var donation models.Donation
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("gateway_order_id = ?", orderID).
		First(&donation).Error
	if err != nil {
		return nil, err
	}
	return &donation, nil
}

func (r *repository) MarkVerified(ctx context.Context, id uuid.UUID, paymentID string, verifiedAt time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.Donation{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":             enums.DonationStatusVerified,
			"gateway_payment_id": paymentID,
			"verified_at":        verifiedAt,
		}).Error
}

func (r *repository) MarkFailed(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Donation{}).
		Where("id = ?", id).
		UpdateColumn("status", enums.DonationStatusFailed).Error
}

func (r *repository) SumVerifiedByDonor(ctx context.Context, donorID uuid.UUID) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&models.Donation{}).
		Select("COALESCE(SUM(amount_paise), 0)").
		Where("donor_id = ? AND status = ?", donorID, enums.DonationStatusVerified).
		Scan(&total).Error
	if err != nil {
		return 0, err
	}
	return total, nil
}

func (r *repository) FindCreatedBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.Donation, error) {
	var donations []models.Donation
	err := r.db.WithContext(ctx).
		Where("status = ? AND created_at < ?", enums.DonationStatusCreated, cutoff).
		Order("created_at ASC").
		Limit(limit).
		Find(&donations).Error
	if err != nil {
		return nil, err
	}
	return donations, nil
}
