package campaigns

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/crowdspark/crowdspark-backend/internal/approvals"
	"github.com/crowdspark/crowdspark-backend/internal/audit"
	"github.com/crowdspark/crowdspark-backend/pkg/db/models"
	"github.com/crowdspark/crowdspark-backend/pkg/enums"
	pkgerrors "github.com/crowdspark/crowdspark-backend/pkg/errors"
	"github.com/crowdspark/crowdspark-backend/pkg/pagination"
)

type fakeTxRunner struct{}

func (fakeTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type fakeRecorder struct {
	entries []audit.Entry
}

func (f *fakeRecorder) Record(ctx context.Context, tx *gorm.DB, entry audit.Entry) error {
	f.entries = append(f.entries, entry)
	return nil
}

type stubClubFinder struct {
	club *models.Club
	err  error
}

func (s *stubClubFinder) FindClub(ctx context.Context, id uuid.UUID) (*models.Club, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.club, nil
}

type stubCampaignRepo struct {
	campaign     *models.Campaign
	created      *models.Campaign
	updates      map[string]any
	milestones   []models.Milestone
	savedStatus  *enums.ApprovalStatus
	creditResult CreditResult
	creditAmount int64
}

func (s *stubCampaignRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubCampaignRepo) Create(ctx context.Context, campaign *models.Campaign) (*models.Campaign, error) {
	if campaign.ID == uuid.Nil {
		campaign.ID = uuid.New()
	}
	s.created = campaign
	return campaign, nil
}

func (s *stubCampaignRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Campaign, error) {
	if s.campaign == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return s.campaign, nil
}

func (s *stubCampaignRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Campaign, error) {
	return s.FindByID(ctx, id)
}

func (s *stubCampaignRepo) List(ctx context.Context, params pagination.Params, filters ListFilters) (*List, error) {
	return &List{}, nil
}

func (s *stubCampaignRepo) UpdateSubmission(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	s.updates = updates
	return nil
}

func (s *stubCampaignRepo) ReplaceMilestones(ctx context.Context, campaignID uuid.UUID, milestones []models.Milestone) error {
	s.milestones = milestones
	return nil
}

func (s *stubCampaignRepo) SaveStatus(ctx context.Context, id uuid.UUID, status enums.ApprovalStatus, reason *string) error {
	s.savedStatus = &status
	return nil
}

func (s *stubCampaignRepo) Credit(ctx context.Context, id uuid.UUID, amountPaise int64) (CreditResult, error) {
	s.creditAmount = amountPaise
	return s.creditResult, nil
}

func (s *stubCampaignRepo) CountByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	if s.campaign != nil && s.campaign.OwnerID == ownerID {
		return 1, nil
	}
	return 0, nil
}

func newTestService(t *testing.T, repo *stubCampaignRepo, clubs *stubClubFinder) (Service, *fakeRecorder) {
	t.Helper()
	recorder := &fakeRecorder{}
	machine, err := approvals.NewMachine(fakeTxRunner{}, recorder)
	if err != nil {
		t.Fatalf("new machine: %v", err)
	}
	svc, err := NewService(repo, clubs, fakeTxRunner{}, recorder, machine, 3)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, recorder
}

func verifiedClub() *stubClubFinder {
	return &stubClubFinder{club: &models.Club{ID: uuid.New(), Verified: true}}
}

func submitInput(goal int64, budgets ...int64) SubmitInput {
	input := SubmitInput{
		OwnerID:   uuid.New(),
		ClubID:    uuid.New(),
		Title:     "Robotics kit drive",
		GoalPaise: goal,
	}
	for _, b := range budgets {
		input.Milestones = append(input.Milestones, MilestoneInput{
			Title:        "phase",
			DurationDays: 14,
			BudgetPaise:  b,
		})
	}
	return input
}

func TestSubmitCreatesPendingCampaign(t *testing.T) {
	repo := &stubCampaignRepo{}
	svc, _ := newTestService(t, repo, verifiedClub())

	campaign, err := svc.Submit(context.Background(), submitInput(100000, 60000, 40000))
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if campaign.Status != enums.ApprovalStatusPending {
		t.Errorf("expected pending, got %s", campaign.Status)
	}
	if len(repo.created.Milestones) != 2 {
		t.Errorf("milestones not attached")
	}
	if repo.created.Milestones[1].Position != 1 {
		t.Errorf("milestone positions not assigned in order")
	}
}

func TestSubmitBudgetExceedingGoalIsRejected(t *testing.T) {
	repo := &stubCampaignRepo{}
	svc, _ := newTestService(t, repo, verifiedClub())

	_, err := svc.Submit(context.Background(), submitInput(100000, 60000, 50000))
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeBudgetExceeded {
		t.Fatalf("expected budget exceeded, got %v", err)
	}
	if repo.created != nil {
		t.Fatalf("campaign must not be created")
	}
}

func TestSubmitBudgetEqualToGoalIsAllowed(t *testing.T) {
	repo := &stubCampaignRepo{}
	svc, _ := newTestService(t, repo, verifiedClub())

	if _, err := svc.Submit(context.Background(), submitInput(100000, 60000, 40000)); err != nil {
		t.Fatalf("submit at exact goal: %v", err)
	}
}

func TestSubmitRejectsNonPositiveMilestoneBudget(t *testing.T) {
	repo := &stubCampaignRepo{}
	svc, _ := newTestService(t, repo, verifiedClub())

	for _, budget := range []int64{0, -1} {
		_, err := svc.Submit(context.Background(), submitInput(100000, 60000, budget))
		coded := pkgerrors.As(err)
		if coded == nil || coded.Code() != pkgerrors.CodeValidation {
			t.Fatalf("budget %d: expected validation error, got %v", budget, err)
		}
	}
	if repo.created != nil {
		t.Fatalf("campaign must not be created")
	}
}

func TestSubmitRequiresVerifiedClub(t *testing.T) {
	repo := &stubCampaignRepo{}
	clubs := &stubClubFinder{club: &models.Club{ID: uuid.New(), Verified: false}}
	svc, _ := newTestService(t, repo, clubs)

	_, err := svc.Submit(context.Background(), submitInput(100000, 100000))
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestSubmitUnknownClub(t *testing.T) {
	repo := &stubCampaignRepo{}
	svc, _ := newTestService(t, repo, &stubClubFinder{err: gorm.ErrRecordNotFound})

	_, err := svc.Submit(context.Background(), submitInput(100000, 100000))
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func resubmitInput(campaign *models.Campaign, actor uuid.UUID) ResubmitInput {
	return ResubmitInput{
		CampaignID: campaign.ID,
		ActorID:    actor,
		Title:      "Robotics kit drive v2",
		GoalPaise:  120000,
		Milestones: []MilestoneInput{{Title: "phase", DurationDays: 7, BudgetPaise: 120000}},
	}
}

func TestResubmitRejectedCampaign(t *testing.T) {
	owner := uuid.New()
	campaign := &models.Campaign{
		ID:              uuid.New(),
		OwnerID:         owner,
		Status:          enums.ApprovalStatusRejected,
		ReapprovalCount: 1,
	}
	repo := &stubCampaignRepo{campaign: campaign}
	svc, recorder := newTestService(t, repo, verifiedClub())

	revised, err := svc.Resubmit(context.Background(), resubmitInput(campaign, owner))
	if err != nil {
		t.Fatalf("resubmit: %v", err)
	}
	if revised.Status != enums.ApprovalStatusPending {
		t.Errorf("expected pending after resubmit, got %s", revised.Status)
	}
	if revised.ReapprovalCount != 2 {
		t.Errorf("expected attempt count 2, got %d", revised.ReapprovalCount)
	}
	if revised.RejectionReason != nil {
		t.Errorf("rejection reason should be cleared")
	}
	if len(recorder.entries) != 1 || recorder.entries[0].Action != enums.AuditActionResubmitted {
		t.Errorf("resubmission not audited")
	}
}

func TestResubmitExhaustedAttempts(t *testing.T) {
	owner := uuid.New()
	campaign := &models.Campaign{
		ID:              uuid.New(),
		OwnerID:         owner,
		Status:          enums.ApprovalStatusRejected,
		ReapprovalCount: 3,
	}
	repo := &stubCampaignRepo{campaign: campaign}
	svc, _ := newTestService(t, repo, verifiedClub())

	_, err := svc.Resubmit(context.Background(), resubmitInput(campaign, owner))
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeReapprovalExhausted {
		t.Fatalf("expected reapproval exhausted, got %v", err)
	}
	if repo.updates != nil {
		t.Fatalf("campaign must not change once attempts are exhausted")
	}
}

func TestResubmitNonRejectedCampaign(t *testing.T) {
	owner := uuid.New()
	campaign := &models.Campaign{ID: uuid.New(), OwnerID: owner, Status: enums.ApprovalStatusPending}
	repo := &stubCampaignRepo{campaign: campaign}
	svc, _ := newTestService(t, repo, verifiedClub())

	_, err := svc.Resubmit(context.Background(), resubmitInput(campaign, owner))
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestResubmitByNonOwnerIsForbidden(t *testing.T) {
	campaign := &models.Campaign{ID: uuid.New(), OwnerID: uuid.New(), Status: enums.ApprovalStatusRejected}
	repo := &stubCampaignRepo{campaign: campaign}
	svc, _ := newTestService(t, repo, verifiedClub())

	_, err := svc.Resubmit(context.Background(), resubmitInput(campaign, uuid.New()))
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestApproveWritesAuditEntry(t *testing.T) {
	campaign := &models.Campaign{ID: uuid.New(), Status: enums.ApprovalStatusPending}
	repo := &stubCampaignRepo{campaign: campaign}
	svc, recorder := newTestService(t, repo, verifiedClub())

	if err := svc.Approve(context.Background(), campaign.ID, uuid.New()); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if repo.savedStatus == nil || *repo.savedStatus != enums.ApprovalStatusApproved {
		t.Fatalf("status not saved")
	}
	if len(recorder.entries) != 1 || recorder.entries[0].Entity != enums.AuditEntityCampaign {
		t.Fatalf("approval not audited")
	}
}

func TestCreditMapsRepositoryOutcome(t *testing.T) {
	cases := []struct {
		name   string
		result CreditResult
		code   pkgerrors.Code
	}{
		{"applied", CreditResult{Applied: true, Found: true, Approved: true}, ""},
		{"not found", CreditResult{}, pkgerrors.CodeNotFound},
		{"not approved", CreditResult{Found: true}, pkgerrors.CodeCampaignNotApproved},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := &stubCampaignRepo{creditResult: tc.result}
			svc, _ := newTestService(t, repo, verifiedClub())

			err := svc.Credit(context.Background(), nil, uuid.New(), 5000)
			if tc.code == "" {
				if err != nil {
					t.Fatalf("credit: %v", err)
				}
				if repo.creditAmount != 5000 {
					t.Fatalf("amount not forwarded")
				}
				return
			}
			coded := pkgerrors.As(err)
			if coded == nil || coded.Code() != tc.code {
				t.Fatalf("expected %s, got %v", tc.code, err)
			}
		})
	}
}

func TestCreditRejectsNonPositiveAmount(t *testing.T) {
	repo := &stubCampaignRepo{}
	svc, _ := newTestService(t, repo, verifiedClub())

	for _, amount := range []int64{0, -100} {
		err := svc.Credit(context.Background(), nil, uuid.New(), amount)
		coded := pkgerrors.As(err)
		if coded == nil || coded.Code() != pkgerrors.CodeValidation {
			t.Fatalf("expected validation error for %d, got %v", amount, err)
		}
	}
}
