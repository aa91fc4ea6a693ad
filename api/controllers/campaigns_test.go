package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/crowdspark/crowdspark-backend/api/middleware"
	"github.com/crowdspark/crowdspark-backend/internal/campaigns"
	"github.com/crowdspark/crowdspark-backend/pkg/db/models"
	pkgerrors "github.com/crowdspark/crowdspark-backend/pkg/errors"
	"github.com/crowdspark/crowdspark-backend/pkg/pagination"
)

type testCampaignsService struct {
	submitFn   func(ctx context.Context, input campaigns.SubmitInput) (*models.Campaign, error)
	resubmitFn func(ctx context.Context, input campaigns.ResubmitInput) (*models.Campaign, error)
	listFn     func(ctx context.Context, params pagination.Params, filters campaigns.ListFilters) (*campaigns.List, error)
	approveFn  func(ctx context.Context, campaignID, actorID uuid.UUID) error
	rejectFn   func(ctx context.Context, campaignID, actorID uuid.UUID, reason string) error
}

func (s *testCampaignsService) Submit(ctx context.Context, input campaigns.SubmitInput) (*models.Campaign, error) {
	if s.submitFn != nil {
		return s.submitFn(ctx, input)
	}
	return &models.Campaign{}, nil
}

func (s *testCampaignsService) Get(ctx context.Context, id uuid.UUID) (*models.Campaign, error) {
	return &models.Campaign{ID: id}, nil
}

func (s *testCampaignsService) List(ctx context.Context, params pagination.Params, filters campaigns.ListFilters) (*campaigns.List, error) {
	if s.listFn != nil {
		return s.listFn(ctx, params, filters)
	}
	return &campaigns.List{}, nil
}

func (s *testCampaignsService) Resubmit(ctx context.Context, input campaigns.ResubmitInput) (*models.Campaign, error) {
	if s.resubmitFn != nil {
		return s.resubmitFn(ctx, input)
	}
	return &models.Campaign{}, nil
}

func (s *testCampaignsService) Approve(ctx context.Context, campaignID, actorID uuid.UUID) error {
	if s.approveFn != nil {
		return s.approveFn(ctx, campaignID, actorID)
	}
	return nil
}

func (s *testCampaignsService) Reject(ctx context.Context, campaignID, actorID uuid.UUID, reason string) error {
	if s.rejectFn != nil {
		return s.rejectFn(ctx, campaignID, actorID, reason)
	}
	return nil
}

func (s *testCampaignsService) Disable(ctx context.Context, campaignID, actorID uuid.UUID) error {
	return nil
}

func (s *testCampaignsService) Credit(ctx context.Context, tx *gorm.DB, campaignID uuid.UUID, amountPaise int64) error {
	return nil
}

func (s *testCampaignsService) CountByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	return 0, nil
}

func submitBody(clubID uuid.UUID) string {
	return `{"club_id":"` + clubID.String() + `","title":"Robotics lab","goal_paise":5000000,` +
		`"milestones":[{"title":"Parts","duration_days":30,"budget_paise":5000000}]}`
}

func TestCampaignSubmitSetsOwnerFromToken(t *testing.T) {
	ownerID := uuid.New()
	clubID := uuid.New()
	var captured campaigns.SubmitInput
	svc := &testCampaignsService{
		submitFn: func(ctx context.Context, input campaigns.SubmitInput) (*models.Campaign, error) {
			captured = input
			return &models.Campaign{ID: uuid.New()}, nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/campaigns", strings.NewReader(submitBody(clubID)))
	req = req.WithContext(middleware.WithUserID(req.Context(), ownerID.String()))
	resp := httptest.NewRecorder()
	CampaignSubmit(svc, testLogger())(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	if captured.OwnerID != ownerID {
		t.Fatalf("expected owner from token, got %s", captured.OwnerID)
	}
	if captured.ClubID != clubID {
		t.Fatalf("unexpected club %s", captured.ClubID)
	}
}

func TestCampaignSubmitRequiresAuth(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/campaigns", strings.NewReader(submitBody(uuid.New())))
	resp := httptest.NewRecorder()
	CampaignSubmit(&testCampaignsService{}, testLogger())(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestCampaignSubmitRequiresMilestones(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/campaigns",
		strings.NewReader(`{"club_id":"`+uuid.NewString()+`","title":"x","goal_paise":100,"milestones":[]}`))
	req = req.WithContext(middleware.WithUserID(req.Context(), uuid.NewString()))
	resp := httptest.NewRecorder()
	CampaignSubmit(&testCampaignsService{}, testLogger())(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestCampaignResubmitWiresPathAndActor(t *testing.T) {
	actorID := uuid.New()
	campaignID := uuid.New()
	var captured campaigns.ResubmitInput
	svc := &testCampaignsService{
		resubmitFn: func(ctx context.Context, input campaigns.ResubmitInput) (*models.Campaign, error) {
			captured = input
			return &models.Campaign{ID: campaignID}, nil
		},
	}

	body := `{"title":"Revised","goal_paise":3000000,"milestones":[{"title":"Parts","duration_days":20,"budget_paise":3000000}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/campaigns/"+campaignID.String()+"/resubmit", strings.NewReader(body))
	req = req.WithContext(middleware.WithUserID(req.Context(), actorID.String()))
	req = addRouteParam(req, "campaignId", campaignID.String())
	resp := httptest.NewRecorder()
	CampaignResubmit(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if captured.CampaignID != campaignID {
		t.Fatalf("unexpected campaign %s", captured.CampaignID)
	}
	if captured.ActorID != actorID {
		t.Fatalf("unexpected actor %s", captured.ActorID)
	}
}

func TestCampaignResubmitSurfacesExhaustion(t *testing.T) {
	svc := &testCampaignsService{
		resubmitFn: func(ctx context.Context, input campaigns.ResubmitInput) (*models.Campaign, error) {
			return nil, pkgerrors.New(pkgerrors.CodeReapprovalExhausted, "reapproval attempts exhausted")
		},
	}

	body := `{"title":"Revised","goal_paise":3000000,"milestones":[{"title":"Parts","duration_days":20,"budget_paise":3000000}]}`
	campaignID := uuid.New()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/campaigns/"+campaignID.String()+"/resubmit", strings.NewReader(body))
	req = req.WithContext(middleware.WithUserID(req.Context(), uuid.NewString()))
	req = addRouteParam(req, "campaignId", campaignID.String())
	resp := httptest.NewRecorder()
	CampaignResubmit(svc, testLogger())(resp, req)

	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 got %d", resp.Code)
	}
	var payload struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("parse error response: %v", err)
	}
	if payload.Error.Code != string(pkgerrors.CodeReapprovalExhausted) {
		t.Fatalf("expected REAPPROVAL_EXHAUSTED got %s", payload.Error.Code)
	}
}

func TestCampaignListEncodesCursor(t *testing.T) {
	next := &pagination.Cursor{ID: uuid.New()}
	svc := &testCampaignsService{
		listFn: func(ctx context.Context, params pagination.Params, filters campaigns.ListFilters) (*campaigns.List, error) {
			return &campaigns.List{Campaigns: []models.Campaign{{ID: uuid.New()}}, NextCursor: next}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/campaigns?limit=1", nil)
	resp := httptest.NewRecorder()
	CampaignList(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	var envelope struct {
		Data struct {
			NextCursor string `json:"next_cursor"`
		} `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if envelope.Data.NextCursor != pagination.EncodeCursor(*next) {
		t.Fatalf("unexpected cursor %q", envelope.Data.NextCursor)
	}
}

func TestCampaignListRejectsBadStatus(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/campaigns?status=bogus", nil)
	resp := httptest.NewRecorder()
	CampaignList(&testCampaignsService{}, testLogger())(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}
