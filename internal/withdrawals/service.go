package withdrawals

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/crowdspark/crowdspark-backend/internal/approvals"
	"github.com/crowdspark/crowdspark-backend/internal/audit"
	"github.com/crowdspark/crowdspark-backend/pkg/db/models"
	"github.com/crowdspark/crowdspark-backend/pkg/enums"
	pkgerrors "github.com/crowdspark/crowdspark-backend/pkg/errors"
	"github.com/crowdspark/crowdspark-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// CampaignSource resolves the campaign a withdrawal draws from. GetForUpdate
// must lock the campaign row so the approval-time funds check is serialized
// against concurrent credits and approvals.
type CampaignSource interface {
	Get(ctx context.Context, id uuid.UUID) (*models.Campaign, error)
	GetForUpdate(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.Campaign, error)
}

// RequestInput opens a withdrawal request.
type RequestInput struct {
	CampaignID  uuid.UUID `json:"campaign_id" validate:"required"`
	RequesterID uuid.UUID
	AmountPaise int64   `json:"amount_paise" validate:"required,gt=0"`
	Notes       *string `json:"notes"`
}

// Service defines withdrawal gate operations.
type Service interface {
	Request(ctx context.Context, input RequestInput) (*models.Withdrawal, error)
	Approve(ctx context.Context, withdrawalID, actorID uuid.UUID) error
	Reject(ctx context.Context, withdrawalID, actorID uuid.UUID, reason string) error
	List(ctx context.Context, params pagination.Params, filters ListFilters) ([]models.Withdrawal, *pagination.Cursor, error)
}

type service struct {
	repo      Repository
	campaigns CampaignSource
	tx        txRunner
	audit     audit.Recorder
	machine   *approvals.Machine
}

// NewService builds the withdrawals service.
func NewService(repo Repository, campaigns CampaignSource, tx txRunner, recorder audit.Recorder, machine *approvals.Machine) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("withdrawals repository required")
	}
	if campaigns == nil {
		return nil, fmt.Errorf("campaign source required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if recorder == nil {
		return nil, fmt.Errorf("audit recorder required")
	}
	if machine == nil {
		return nil, fmt.Errorf("approval machine required")
	}
	return &service{repo: repo, campaigns: campaigns, tx: tx, audit: recorder, machine: machine}, nil
}

// Request opens a withdrawal against an approved campaign's uncommitted
// funds. The funds check here is advisory; the binding check happens again
// under lock when an admin approves.
func (s *service) Request(ctx context.Context, input RequestInput) (*models.Withdrawal, error) {
	if input.RequesterID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "requester identity missing")
	}
	if input.AmountPaise <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "withdrawal amount must be positive")
	}

	campaign, err := s.campaigns.Get(ctx, input.CampaignID)
	if err != nil {
		return nil, err
	}
	if campaign.Status != enums.ApprovalStatusApproved {
		return nil, pkgerrors.New(pkgerrors.CodeCampaignNotApproved, "campaign is not approved")
	}
	if campaign.OwnerID != input.RequesterID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "campaign does not belong to user")
	}

	committed, err := s.repo.SumApprovedByCampaign(ctx, input.CampaignID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum approved withdrawals")
	}
	available := campaign.AmountRaisedPaise - committed
	if input.AmountPaise > available {
		return nil, pkgerrors.New(pkgerrors.CodeInsufficientFunds, "requested amount exceeds available funds").
			WithDetails(map[string]int64{"available_paise": available, "requested_paise": input.AmountPaise})
	}

	withdrawal := &models.Withdrawal{
		CampaignID:  input.CampaignID,
		RequesterID: input.RequesterID,
		AmountPaise: input.AmountPaise,
		Status:      enums.ApprovalStatusPending,
		Notes:       input.Notes,
	}
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if _, err := s.repo.WithTx(tx).Create(ctx, withdrawal); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create withdrawal")
		}
		actor := input.RequesterID
		return s.audit.Record(ctx, tx, audit.Entry{
			Action:   enums.AuditActionWithdrawalRequest,
			Entity:   enums.AuditEntityWithdrawal,
			EntityID: withdrawal.ID,
			ActorID:  &actor,
			Details:  map[string]any{"campaign_id": input.CampaignID, "amount_paise": input.AmountPaise},
		})
	})
	if err != nil {
		return nil, err
	}
	return withdrawal, nil
}

// Approve releases the funds. The campaign row is locked and the committed
// total re-summed inside the transition; overspending rolls the approval
// back.
func (s *service) Approve(ctx context.Context, withdrawalID, actorID uuid.UUID) error {
	accessor := &statusAccessor{repo: s.repo}
	return s.machine.Approve(ctx, approvals.TransitionInput{
		Accessor: accessor,
		EntityID: withdrawalID,
		ActorID:  actorID,
		Then: func(ctx context.Context, tx *gorm.DB) error {
			repo := s.repo.WithTx(tx)

			withdrawal, err := repo.FindByIDForUpdate(ctx, withdrawalID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload withdrawal")
			}
			campaign, err := s.campaigns.GetForUpdate(ctx, tx, withdrawal.CampaignID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock campaign")
			}
			committed, err := repo.SumApprovedByCampaign(ctx, withdrawal.CampaignID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum approved withdrawals")
			}
			// committed already includes this withdrawal's amount
			if committed > campaign.AmountRaisedPaise {
				return pkgerrors.New(pkgerrors.CodeInsufficientFunds, "approval would exceed raised funds")
			}
			return nil
		},
	})
}

func (s *service) Reject(ctx context.Context, withdrawalID, actorID uuid.UUID, reason string) error {
	return s.machine.Reject(ctx, approvals.TransitionInput{
		Accessor: &statusAccessor{repo: s.repo},
		EntityID: withdrawalID,
		ActorID:  actorID,
		Reason:   &reason,
	})
}

func (s *service) List(ctx context.Context, params pagination.Params, filters ListFilters) ([]models.Withdrawal, *pagination.Cursor, error) {
	withdrawals, cursor, err := s.repo.List(ctx, params, filters)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list withdrawals")
	}
	return withdrawals, cursor, nil
}

type statusAccessor struct {
	repo Repository
}

func (a *statusAccessor) Load(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*approvals.Record, error) {
	withdrawal, err := a.repo.WithTx(tx).FindByIDForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	return &approvals.Record{ID: withdrawal.ID, Status: withdrawal.Status}, nil
}

func (a *statusAccessor) SaveStatus(ctx context.Context, tx *gorm.DB, id uuid.UUID, status enums.ApprovalStatus, reason *string) error {
	return a.repo.WithTx(tx).SaveStatus(ctx, id, status, reason)
}

func (a *statusAccessor) AuditEntity() enums.AuditEntity {
	return enums.AuditEntityWithdrawal
}
