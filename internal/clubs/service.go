package clubs

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/crowdspark/crowdspark-backend/internal/approvals"
	"github.com/crowdspark/crowdspark-backend/pkg/db/models"
	"github.com/crowdspark/crowdspark-backend/pkg/enums"
	pkgerrors "github.com/crowdspark/crowdspark-backend/pkg/errors"
	"github.com/crowdspark/crowdspark-backend/pkg/pagination"
)

// Service defines club verification and president referral operations.
type Service interface {
	FindClub(ctx context.Context, id uuid.UUID) (*models.Club, error)
	SubmitVerification(ctx context.Context, clubID, submitterID uuid.UUID, notes *string) (*models.ClubVerification, error)
	ApproveVerification(ctx context.Context, verificationID, actorID uuid.UUID) error
	RejectVerification(ctx context.Context, verificationID, actorID uuid.UUID, reason string) error
	DisableVerification(ctx context.Context, verificationID, actorID uuid.UUID) error
	ListVerifications(ctx context.Context, params pagination.Params, status *enums.ApprovalStatus) ([]models.ClubVerification, *pagination.Cursor, error)
	SubmitReferral(ctx context.Context, clubID, nomineeID, referrerID uuid.UUID, notes *string) (*models.ClubReferral, error)
	ApproveReferral(ctx context.Context, referralID, actorID uuid.UUID) error
	RejectReferral(ctx context.Context, referralID, actorID uuid.UUID, reason string) error
	ListReferrals(ctx context.Context, params pagination.Params, status *enums.ApprovalStatus) ([]models.ClubReferral, *pagination.Cursor, error)
}

type service struct {
	repo    Repository
	machine *approvals.Machine
}

// NewService builds the clubs service.
func NewService(repo Repository, machine *approvals.Machine) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("clubs repository required")
	}
	if machine == nil {
		return nil, fmt.Errorf("approval machine required")
	}
	return &service{repo: repo, machine: machine}, nil
}

func (s *service) FindClub(ctx context.Context, id uuid.UUID) (*models.Club, error) {
	return s.repo.FindClub(ctx, id)
}

// SubmitVerification opens a review asking an admin to verify the club.
// Already-verified clubs and clubs with an open submission are refused.
func (s *service) SubmitVerification(ctx context.Context, clubID, submitterID uuid.UUID, notes *string) (*models.ClubVerification, error) {
	if submitterID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "submitter identity missing")
	}

	club, err := s.repo.FindClub(ctx, clubID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "club not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load club")
	}
	if club.Verified {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "club is already verified")
	}

	pending, err := s.repo.CountPendingVerifications(ctx, clubID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count pending verifications")
	}
	if pending > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "club already has a pending verification")
	}

	verification := &models.ClubVerification{
		ClubID:    clubID,
		Submitter: submitterID,
		Status:    enums.ApprovalStatusPending,
		Notes:     notes,
	}
	if _, err := s.repo.CreateVerification(ctx, verification); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create verification")
	}
	return verification, nil
}

// ApproveVerification marks the submission approved and flips the club to
// verified in the same transaction.
func (s *service) ApproveVerification(ctx context.Context, verificationID, actorID uuid.UUID) error {
	accessor := &verificationAccessor{repo: s.repo}
	return s.machine.Approve(ctx, approvals.TransitionInput{
		Accessor: accessor,
		EntityID: verificationID,
		ActorID:  actorID,
		Then: func(ctx context.Context, tx *gorm.DB) error {
			repo := s.repo.WithTx(tx)
			verification, err := repo.FindVerificationForUpdate(ctx, verificationID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload verification")
			}
			if err := repo.UpdateClub(ctx, verification.ClubID, map[string]any{"verified": true}); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark club verified")
			}
			return nil
		},
	})
}

func (s *service) RejectVerification(ctx context.Context, verificationID, actorID uuid.UUID, reason string) error {
	return s.machine.Reject(ctx, approvals.TransitionInput{
		Accessor: &verificationAccessor{repo: s.repo},
		EntityID: verificationID,
		ActorID:  actorID,
		Reason:   &reason,
	})
}

// DisableVerification revokes an approved verification and takes the club's
// verified flag away with it.
func (s *service) DisableVerification(ctx context.Context, verificationID, actorID uuid.UUID) error {
	return s.machine.Disable(ctx, approvals.TransitionInput{
		Accessor: &verificationAccessor{repo: s.repo},
		EntityID: verificationID,
		ActorID:  actorID,
		Then: func(ctx context.Context, tx *gorm.DB) error {
			repo := s.repo.WithTx(tx)
			verification, err := repo.FindVerificationForUpdate(ctx, verificationID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload verification")
			}
			if err := repo.UpdateClub(ctx, verification.ClubID, map[string]any{"verified": false}); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoke club verification")
			}
			return nil
		},
	})
}

func (s *service) ListVerifications(ctx context.Context, params pagination.Params, status *enums.ApprovalStatus) ([]models.ClubVerification, *pagination.Cursor, error) {
	verifications, cursor, err := s.repo.ListVerifications(ctx, params, status)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list verifications")
	}
	return verifications, cursor, nil
}

// SubmitReferral nominates a member for club president.
func (s *service) SubmitReferral(ctx context.Context, clubID, nomineeID, referrerID uuid.UUID, notes *string) (*models.ClubReferral, error) {
	if referrerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "referrer identity missing")
	}
	if nomineeID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "nominee required")
	}
	if nomineeID == referrerID {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "members cannot refer themselves")
	}

	if _, err := s.repo.FindClub(ctx, clubID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "club not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load club")
	}

	referral := &models.ClubReferral{
		ClubID:   clubID,
		Nominee:  nomineeID,
		Referrer: referrerID,
		Status:   enums.ApprovalStatusPending,
		Notes:    notes,
	}
	if _, err := s.repo.CreateReferral(ctx, referral); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create referral")
	}
	return referral, nil
}

// ApproveReferral installs the nominee as club president in the same
// transaction that approves the referral.
func (s *service) ApproveReferral(ctx context.Context, referralID, actorID uuid.UUID) error {
	return s.machine.Approve(ctx, approvals.TransitionInput{
		Accessor: &referralAccessor{repo: s.repo},
		EntityID: referralID,
		ActorID:  actorID,
		Then: func(ctx context.Context, tx *gorm.DB) error {
			repo := s.repo.WithTx(tx)
			referral, err := repo.FindReferralForUpdate(ctx, referralID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload referral")
			}
			if err := repo.UpdateClub(ctx, referral.ClubID, map[string]any{"president_id": referral.Nominee}); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "install president")
			}
			return nil
		},
	})
}

func (s *service) RejectReferral(ctx context.Context, referralID, actorID uuid.UUID, reason string) error {
	return s.machine.Reject(ctx, approvals.TransitionInput{
		Accessor: &referralAccessor{repo: s.repo},
		EntityID: referralID,
		ActorID:  actorID,
		Reason:   &reason,
	})
}

func (s *service) ListReferrals(ctx context.Context, params pagination.Params, status *enums.ApprovalStatus) ([]models.ClubReferral, *pagination.Cursor, error) {
	referrals, cursor, err := s.repo.ListReferrals(ctx, params, status)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list referrals")
	}
	return referrals, cursor, nil
}

type verificationAccessor struct {
	repo Repository
}

func (a *verificationAccessor) Load(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*approvals.Record, error) {
	verification, err := a.repo.WithTx(tx).FindVerificationForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	return &approvals.Record{ID: verification.ID, Status: verification.Status}, nil
}

func (a *verificationAccessor) SaveStatus(ctx context.Context, tx *gorm.DB, id uuid.UUID, status enums.ApprovalStatus, reason *string) error {
	return a.repo.WithTx(tx).SaveVerificationStatus(ctx, id, status, reason)
}

func (a *verificationAccessor) AuditEntity() enums.AuditEntity {
	return enums.AuditEntityClubVerification
}

type referralAccessor struct {
	repo Repository
}

func (a *referralAccessor) Load(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*approvals.Record, error) {
	referral, err := a.repo.WithTx(tx).FindReferralForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	return &approvals.Record{ID: referral.ID, Status: referral.Status}, nil
}

func (a *referralAccessor) SaveStatus(ctx context.Context, tx *gorm.DB, id uuid.UUID, status enums.ApprovalStatus, reason *string) error {
	return a.repo.WithTx(tx).SaveReferralStatus(ctx, id, status, reason)
}

func (a *referralAccessor) AuditEntity() enums.AuditEntity {
	return enums.AuditEntityClubReferral
}
