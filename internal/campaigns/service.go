package campaigns

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

// ClubFinder resolves the club a campaign is submitted under.
type ClubFinder interface {
	FindClub(ctx context.Context, id uuid.UUID) (*models.Club, error)
}

// Service defines campaign lifecycle operations.
type Service interface {
	Submit(ctx context.Context, input SubmitInput) (*models.Campaign, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Campaign, error)
	List(ctx context.Context, params pagination.Params, filters ListFilters) (*List, error)
	Resubmit(ctx context.Context, input ResubmitInput) (*models.Campaign, error)
	Approve(ctx context.Context, campaignID, actorID uuid.UUID) error
	Reject(ctx context.Context, campaignID, actorID uuid.UUID, reason string) error
	Disable(ctx context.Context, campaignID, actorID uuid.UUID) error
	Credit(ctx context.Context, tx *gorm.DB, campaignID uuid.UUID, amountPaise int64) error
	CountByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error)
}

type service struct {
	repo           Repository
	clubs          ClubFinder
	tx             txRunner
	audit          audit.Recorder
	machine        *approvals.Machine
	maxReapprovals int
}

// NewService builds the campaigns service.
func NewService(repo Repository, clubs ClubFinder, tx txRunner, recorder audit.Recorder, machine *approvals.Machine, maxReapprovals int) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("campaigns repository required")
	}
	if clubs == nil {
		return nil, fmt.Errorf("club finder required")
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
	if maxReapprovals <= 0 {
		return nil, fmt.Errorf("max reapprovals must be positive")
	}
	return &service{
		repo:           repo,
		clubs:          clubs,
		tx:             tx,
		audit:          recorder,
		machine:        machine,
		maxReapprovals: maxReapprovals,
	}, nil
}

func (s *service) Submit(ctx context.Context, input SubmitInput) (*models.Campaign, error) {
	if input.OwnerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "owner identity missing")
	}
	if err := validateBudget(input.GoalPaise, input.Milestones); err != nil {
		return nil, err
	}

	club, err := s.clubs.FindClub(ctx, input.ClubID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "club not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load club")
	}
	if !club.Verified {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "club is not verified")
	}

	campaign := &models.Campaign{
		OwnerID:     input.OwnerID,
		ClubID:      input.ClubID,
		Title:       input.Title,
		Description: input.Description,
		Status:      enums.ApprovalStatusPending,
		GoalPaise:   input.GoalPaise,
		Milestones:  buildMilestones(input.Milestones),
	}
	if _, err := s.repo.Create(ctx, campaign); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create campaign")
	}
	return campaign, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Campaign, error) {
	campaign, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "campaign not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load campaign")
	}
	return campaign, nil
}

func (s *service) List(ctx context.Context, params pagination.Params, filters ListFilters) (*List, error) {
	list, err := s.repo.List(ctx, params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list campaigns")
	}
	return list, nil
}

func (s *service) CountByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	count, err := s.repo.CountByOwner(ctx, ownerID)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count campaigns")
	}
	return count, nil
}

// Resubmit revises a rejected campaign and moves it back to pending. Each
// resubmission consumes one review attempt; once the cap is reached the
// campaign can no longer return to review.
func (s *service) Resubmit(ctx context.Context, input ResubmitInput) (*models.Campaign, error) {
	if input.ActorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "actor identity missing")
	}
	if err := validateBudget(input.GoalPaise, input.Milestones); err != nil {
		return nil, err
	}

	var revised *models.Campaign
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		campaign, err := repo.FindByIDForUpdate(ctx, input.CampaignID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "campaign not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load campaign")
		}
		if campaign.OwnerID != input.ActorID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "campaign does not belong to user")
		}
		if campaign.Status != enums.ApprovalStatusRejected {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "only rejected campaigns can be resubmitted")
		}
		if campaign.ReapprovalCount >= s.maxReapprovals {
			return pkgerrors.New(pkgerrors.CodeReapprovalExhausted, "review attempts exhausted")
		}

		updates := map[string]any{
			"title":            input.Title,
			"description":      input.Description,
			"goal_paise":       input.GoalPaise,
			"status":           enums.ApprovalStatusPending,
			"rejection_reason": nil,
			"reapproval_count": gorm.Expr("reapproval_count + 1"),
		}
		if err := repo.UpdateSubmission(ctx, campaign.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update campaign")
		}

		milestones := buildMilestones(input.Milestones)
		for i := range milestones {
			milestones[i].CampaignID = campaign.ID
		}
		if err := repo.ReplaceMilestones(ctx, campaign.ID, milestones); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "replace milestones")
		}

		actor := input.ActorID
		if err := s.audit.Record(ctx, tx, audit.Entry{
			Action:   enums.AuditActionResubmitted,
			Entity:   enums.AuditEntityCampaign,
			EntityID: campaign.ID,
			ActorID:  &actor,
			Details:  map[string]any{"attempt": campaign.ReapprovalCount + 1},
		}); err != nil {
			return err
		}

		campaign.Title = input.Title
		campaign.Description = input.Description
		campaign.GoalPaise = input.GoalPaise
		campaign.Status = enums.ApprovalStatusPending
		campaign.RejectionReason = nil
		campaign.ReapprovalCount++
		campaign.Milestones = milestones
		revised = campaign
		return nil
	})
	if err != nil {
		return nil, err
	}
	return revised, nil
}

func (s *service) Approve(ctx context.Context, campaignID, actorID uuid.UUID) error {
	return s.machine.Approve(ctx, approvals.TransitionInput{
		Accessor: &statusAccessor{repo: s.repo},
		EntityID: campaignID,
		ActorID:  actorID,
	})
}

func (s *service) Reject(ctx context.Context, campaignID, actorID uuid.UUID, reason string) error {
	return s.machine.Reject(ctx, approvals.TransitionInput{
		Accessor: &statusAccessor{repo: s.repo},
		EntityID: campaignID,
		ActorID:  actorID,
		Reason:   &reason,
	})
}

func (s *service) Disable(ctx context.Context, campaignID, actorID uuid.UUID) error {
	return s.machine.Disable(ctx, approvals.TransitionInput{
		Accessor: &statusAccessor{repo: s.repo},
		EntityID: campaignID,
		ActorID:  actorID,
	})
}

// Credit applies a verified donation to the campaign total inside the
// caller's transaction.
func (s *service) Credit(ctx context.Context, tx *gorm.DB, campaignID uuid.UUID, amountPaise int64) error {
	if amountPaise <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "credit amount must be positive")
	}
	result, err := s.repo.WithTx(tx).Credit(ctx, campaignID, amountPaise)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "credit campaign")
	}
	if !result.Found {
		return pkgerrors.New(pkgerrors.CodeNotFound, "campaign not found")
	}
	if !result.Applied {
		return pkgerrors.New(pkgerrors.CodeCampaignNotApproved, "campaign is not accepting donations")
	}
	return nil
}

// statusAccessor adapts the campaigns table to the approval machine.
type statusAccessor struct {
	repo Repository
}

func (a *statusAccessor) Load(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*approvals.Record, error) {
	campaign, err := a.repo.WithTx(tx).FindByIDForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	return &approvals.Record{ID: campaign.ID, Status: campaign.Status}, nil
}

func (a *statusAccessor) SaveStatus(ctx context.Context, tx *gorm.DB, id uuid.UUID, status enums.ApprovalStatus, reason *string) error {
	return a.repo.WithTx(tx).SaveStatus(ctx, id, status, reason)
}

func (a *statusAccessor) AuditEntity() enums.AuditEntity {
	return enums.AuditEntityCampaign
}

func validateBudget(goalPaise int64, milestones []MilestoneInput) error {
	if goalPaise <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "goal must be positive")
	}
	if len(milestones) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "at least one milestone required")
	}
	var total int64
	for _, m := range milestones {
		if m.BudgetPaise <= 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "milestone budget must be positive")
		}
		total += m.BudgetPaise
	}
	if total > goalPaise {
		return pkgerrors.New(pkgerrors.CodeBudgetExceeded, "milestone budgets exceed campaign goal").
			WithDetails(map[string]int64{"goal_paise": goalPaise, "budget_paise": total})
	}
	return nil
}

func buildMilestones(inputs []MilestoneInput) []models.Milestone {
	milestones := make([]models.Milestone, 0, len(inputs))
	for i, m := range inputs {
		milestones = append(milestones, models.Milestone{
			Title:        m.Title,
			Description:  m.Description,
			DurationDays: m.DurationDays,
			BudgetPaise:  m.BudgetPaise,
			Position:     i,
		})
	}
	return milestones
}
