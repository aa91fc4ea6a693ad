package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/crowdspark/crowdspark-backend/pkg/db/models"
	"github.com/crowdspark/crowdspark-backend/pkg/enums"
	pkgerrors "github.com/crowdspark/crowdspark-backend/pkg/errors"
	"github.com/crowdspark/crowdspark-backend/pkg/pagination"
)

// Entry is one audit record to be written. A nil ActorID records a system
// action (reconciler, gateway callback).
type Entry struct {
	Action   enums.AuditAction
	Entity   enums.AuditEntity
	EntityID uuid.UUID
	ActorID  *uuid.UUID
	Details  any
}

// Recorder writes audit entries inside a caller-owned transaction. State
// transitions call Record in the same tx that applies the transition, so a
// failed write rolls the whole action back.
type Recorder interface {
	Record(ctx context.Context, tx *gorm.DB, entry Entry) error
}

// Service exposes the audit trail: a transactional writer for other services
// and a paginated reader for admins.
type Service interface {
	Recorder
	List(ctx context.Context, params pagination.Params, filters Filters) ([]models.AuditLog, *pagination.Cursor, error)
}

type service struct {
	repo Repository
}

// NewService builds the audit service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("audit repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Record(ctx context.Context, tx *gorm.DB, entry Entry) error {
	if !entry.Action.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid audit action")
	}
	if !entry.Entity.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid audit entity")
	}
	if entry.EntityID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "audit entity id required")
	}

	var details json.RawMessage
	if entry.Details != nil {
		raw, err := json.Marshal(entry.Details)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "marshal audit details")
		}
		details = raw
	}

	row := &models.AuditLog{
		Action:   entry.Action,
		Entity:   entry.Entity,
		EntityID: entry.EntityID,
		ActorID:  entry.ActorID,
		Details:  details,
	}
	if err := s.repo.WithTx(tx).Create(ctx, row); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "write audit entry")
	}
	return nil
}

func (s *service) List(ctx context.Context, params pagination.Params, filters Filters) ([]models.AuditLog, *pagination.Cursor, error) {
	entries, cursor, err := s.repo.List(ctx, params, filters)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list audit entries")
	}
	return entries, cursor, nil
}
