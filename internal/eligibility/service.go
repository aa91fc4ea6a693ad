package eligibility

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	pkgerrors "github.com/crowdspark/crowdspark-backend/pkg/errors"
)

// DonationSummer reports a donor's lifetime verified donation total.
type DonationSummer interface {
	SumVerifiedForDonor(ctx context.Context, donorID uuid.UUID) (int64, error)
}

// ProjectCounter reports how many campaigns a donor has already created.
type ProjectCounter interface {
	CountByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error)
}

// Report is what a donor sees about their project allowance.
type Report struct {
	DonorID           uuid.UUID `json:"donor_id"`
	TotalDonatedPaise int64     `json:"total_donated_paise"`
	PerProjectCost    int64     `json:"per_project_cost_paise"`
	CreatedProjects   int64     `json:"created_projects"`
	AllowedProjects   int64     `json:"allowed_projects"`
	RemainingProjects int64     `json:"remaining_projects"`
	CanCreateProject  bool      `json:"can_create_project"`
	ToNextProject     int64     `json:"paise_to_next_project"`
}

// Service computes how many project proposals a donor has unlocked.
type Service interface {
	ForDonor(ctx context.Context, donorID uuid.UUID) (*Report, error)
}

type service struct {
	donations      DonationSummer
	projects       ProjectCounter
	perProjectCost int64
}

// NewService builds the eligibility calculator.
func NewService(donations DonationSummer, projects ProjectCounter, perProjectCost int64) (Service, error) {
	if donations == nil {
		return nil, fmt.Errorf("donation summer required")
	}
	if projects == nil {
		return nil, fmt.Errorf("project counter required")
	}
	if perProjectCost <= 0 {
		return nil, fmt.Errorf("per project cost must be positive")
	}
	return &service{donations: donations, projects: projects, perProjectCost: perProjectCost}, nil
}

func (s *service) ForDonor(ctx context.Context, donorID uuid.UUID) (*Report, error) {
	if donorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "donor identity missing")
	}
	total, err := s.donations.SumVerifiedForDonor(ctx, donorID)
	if err != nil {
		return nil, err
	}
	created, err := s.projects.CountByOwner(ctx, donorID)
	if err != nil {
		return nil, err
	}

	allowed := Allowance(total, s.perProjectCost)
	remaining := allowed - created
	if remaining < 0 {
		remaining = 0
	}
	return &Report{
		DonorID:           donorID,
		TotalDonatedPaise: total,
		PerProjectCost:    s.perProjectCost,
		CreatedProjects:   created,
		AllowedProjects:   allowed,
		RemainingProjects: remaining,
		CanCreateProject:  created < allowed,
		ToNextProject:     s.perProjectCost - total%s.perProjectCost,
	}, nil
}

// Allowance is the eligibility formula: whole multiples of the per-project
// cost covered by the donated total. Negative totals count as zero.
func Allowance(totalDonatedPaise, perProjectCostPaise int64) int64 {
	if perProjectCostPaise <= 0 || totalDonatedPaise <= 0 {
		return 0
	}
	return totalDonatedPaise / perProjectCostPaise
}
