package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/crowdspark/crowdspark-backend/api/middleware"
	"github.com/crowdspark/crowdspark-backend/internal/eligibility"
)

type testEligibilityService struct {
	forDonorFn func(ctx context.Context, donorID uuid.UUID) (*eligibility.Report, error)
}

func (s *testEligibilityService) ForDonor(ctx context.Context, donorID uuid.UUID) (*eligibility.Report, error) {
	if s.forDonorFn != nil {
		return s.forDonorFn(ctx, donorID)
	}
	return &eligibility.Report{DonorID: donorID}, nil
}

func TestEligibilityMeReturnsReport(t *testing.T) {
	donorID := uuid.New()
	svc := &testEligibilityService{
		forDonorFn: func(ctx context.Context, id uuid.UUID) (*eligibility.Report, error) {
			return &eligibility.Report{
				DonorID:           id,
				TotalDonatedPaise: 6000000,
				PerProjectCost:    2500000,
				CreatedProjects:   1,
				AllowedProjects:   2,
				RemainingProjects: 1,
				CanCreateProject:  true,
				ToNextProject:     1500000,
			}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/eligibility/me", nil)
	req = req.WithContext(middleware.WithUserID(req.Context(), donorID.String()))
	resp := httptest.NewRecorder()
	EligibilityMe(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	var envelope struct {
		Data eligibility.Report `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if envelope.Data.AllowedProjects != 2 {
		t.Fatalf("unexpected allowed projects %d", envelope.Data.AllowedProjects)
	}
	if !envelope.Data.CanCreateProject {
		t.Fatalf("expected can_create_project true")
	}
	if envelope.Data.DonorID != donorID {
		t.Fatalf("unexpected donor %s", envelope.Data.DonorID)
	}
}

func TestEligibilityMeRequiresAuth(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/eligibility/me", nil)
	resp := httptest.NewRecorder()
	EligibilityMe(&testEligibilityService{}, testLogger())(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}
