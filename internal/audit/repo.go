package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/crowdspark/crowdspark-backend/pkg/db/models"
	"github.com/crowdspark/crowdspark-backend/pkg/enums"
	"github.com/crowdspark/crowdspark-backend/pkg/pagination"
)

// Filters narrow the audit listing to one entity or actor.
type Filters struct {
	Entity   *enums.AuditEntity
	EntityID *uuid.UUID
	ActorID  *uuid.UUID
	Since    *time.Time
}

// Repository defines persistence operations for the audit trail. There is no
// update or delete path on purpose.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, entry *models.AuditLog) error
	List(ctx context.Context, params pagination.Params, filters Filters) ([]models.AuditLog, *pagination.Cursor, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an audit repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, entry *models.AuditLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repository) List(ctx context.Context, params pagination.Params, filters Filters) ([]models.AuditLog, *pagination.Cursor, error) {
	limit := pagination.LimitWithBuffer(params.Limit)
	normalized := pagination.NormalizeLimit(params.Limit)

	query := r.db.WithContext(ctx).Model(&models.AuditLog{})
	if filters.Entity != nil {
		query = query.Where("entity = ?", *filters.Entity)
	}
	if filters.EntityID != nil {
		query = query.Where("entity_id = ?", *filters.EntityID)
	}
	if filters.ActorID != nil {
		query = query.Where("actor_id = ?", *filters.ActorID)
	}
	if filters.Since != nil {
		query = query.Where("created_at >= ?", *filters.Since)
	}

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, nil, err
	}
	if cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var entries []models.AuditLog
	if err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&entries).Error; err != nil {
		return nil, nil, err
	}

	if len(entries) > normalized {
		next := entries[normalized]
		entries = entries[:normalized]
		return entries, &pagination.Cursor{CreatedAt: next.CreatedAt, ID: next.ID}, nil
	}
	return entries, nil, nil
}
