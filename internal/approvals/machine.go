package approvals

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/crowdspark/crowdspark-backend/internal/audit"
	"github.com/crowdspark/crowdspark-backend/pkg/enums"
	pkgerrors "github.com/crowdspark/crowdspark-backend/pkg/errors"
)

// Record is the current approval state of one reviewable row.
type Record struct {
	ID     uuid.UUID
	Status enums.ApprovalStatus
}

// Accessor adapts one reviewable table to the machine. Load must lock the row
// for update so concurrent decisions serialize.
type Accessor interface {
	Load(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*Record, error)
	SaveStatus(ctx context.Context, tx *gorm.DB, id uuid.UUID, status enums.ApprovalStatus, reason *string) error
	AuditEntity() enums.AuditEntity
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// TransitionInput carries one admin decision into the machine. Then, when
// set, runs inside the same transaction after the status is saved; its error
// rolls the decision back.
type TransitionInput struct {
	Accessor Accessor
	EntityID uuid.UUID
	ActorID  uuid.UUID
	Reason   *string
	Then     func(ctx context.Context, tx *gorm.DB) error
}

// Machine applies admin decisions to any reviewable entity: pending rows can
// be approved or rejected, approved rows can be disabled, and every applied
// transition writes exactly one audit entry in the same transaction.
type Machine struct {
	tx    txRunner
	audit audit.Recorder
}

// NewMachine builds the approval machine.
func NewMachine(tx txRunner, recorder audit.Recorder) (*Machine, error) {
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if recorder == nil {
		return nil, fmt.Errorf("audit recorder required")
	}
	return &Machine{tx: tx, audit: recorder}, nil
}

// Approve moves a pending row to approved.
func (m *Machine) Approve(ctx context.Context, input TransitionInput) error {
	return m.transition(ctx, input, enums.ApprovalStatusApproved, enums.AuditActionApproved)
}

// Reject moves a pending row to rejected. The reason is mandatory.
func (m *Machine) Reject(ctx context.Context, input TransitionInput) error {
	if input.Reason == nil || strings.TrimSpace(*input.Reason) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "rejection reason required")
	}
	return m.transition(ctx, input, enums.ApprovalStatusRejected, enums.AuditActionRejected)
}

// Disable moves an approved row to disabled.
func (m *Machine) Disable(ctx context.Context, input TransitionInput) error {
	return m.transition(ctx, input, enums.ApprovalStatusDisabled, enums.AuditActionDisabled)
}

func (m *Machine) transition(ctx context.Context, input TransitionInput, target enums.ApprovalStatus, action enums.AuditAction) error {
	if input.Accessor == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "accessor required")
	}
	if input.EntityID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "entity id required")
	}
	if input.ActorID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "actor identity missing")
	}

	return m.tx.WithTx(ctx, func(tx *gorm.DB) error {
		record, err := input.Accessor.Load(ctx, tx, input.EntityID)
		if err != nil {
			if pkgerrors.As(err) != nil {
				return err
			}
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "record not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load record")
		}

		if !allowed(record.Status, target) {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("cannot move %s record to %s", record.Status, target))
		}

		if err := input.Accessor.SaveStatus(ctx, tx, input.EntityID, target, input.Reason); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save status")
		}

		if input.Then != nil {
			if err := input.Then(ctx, tx); err != nil {
				return err
			}
		}

		actor := input.ActorID
		details := map[string]any{"from": record.Status, "to": target}
		if input.Reason != nil {
			details["reason"] = *input.Reason
		}
		return m.audit.Record(ctx, tx, audit.Entry{
			Action:   action,
			Entity:   input.Accessor.AuditEntity(),
			EntityID: input.EntityID,
			ActorID:  &actor,
			Details:  details,
		})
	})
}

func allowed(from, to enums.ApprovalStatus) bool {
	switch to {
	case enums.ApprovalStatusApproved, enums.ApprovalStatusRejected:
		return from == enums.ApprovalStatusPending
	case enums.ApprovalStatusDisabled:
		return from == enums.ApprovalStatusApproved
	default:
		return false
	}
}
