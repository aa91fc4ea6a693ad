package eligibility

import (
	"context"
	"testing"

	"github.com/google/uuid"

	pkgerrors "github.com/crowdspark/crowdspark-backend/pkg/errors"
)

type stubSummer struct {
	total int64
	err   error
}

func (s *stubSummer) SumVerifiedForDonor(ctx context.Context, donorID uuid.UUID) (int64, error) {
	return s.total, s.err
}

type stubCounter struct {
	count int64
	err   error
}

func (s *stubCounter) CountByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	return s.count, s.err
}

func TestAllowanceFloorsTheQuotient(t *testing.T) {
	cases := []struct {
		name  string
		total int64
		cost  int64
		want  int64
	}{
		{"zero donated", 0, 2500000, 0},
		{"below threshold", 2499999, 2500000, 0},
		{"exactly one", 2500000, 2500000, 1},
		{"just past one", 2500001, 2500000, 1},
		{"several", 8000000, 2500000, 3},
		{"negative total", -100, 2500000, 0},
		{"zero cost", 100, 0, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Allowance(tc.total, tc.cost); got != tc.want {
				t.Fatalf("Allowance(%d, %d) = %d, want %d", tc.total, tc.cost, got, tc.want)
			}
		})
	}
}

func TestForDonorBuildsReport(t *testing.T) {
	svc, err := NewService(&stubSummer{total: 6000000}, &stubCounter{count: 1}, 2500000)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	donor := uuid.New()
	report, err := svc.ForDonor(context.Background(), donor)
	if err != nil {
		t.Fatalf("for donor: %v", err)
	}
	if report.AllowedProjects != 2 {
		t.Errorf("expected 2 allowed projects, got %d", report.AllowedProjects)
	}
	if report.CreatedProjects != 1 {
		t.Errorf("expected 1 created project, got %d", report.CreatedProjects)
	}
	if report.RemainingProjects != 1 {
		t.Errorf("expected 1 remaining project, got %d", report.RemainingProjects)
	}
	if !report.CanCreateProject {
		t.Errorf("expected donor to be able to create a project")
	}
	if report.ToNextProject != 1500000 {
		t.Errorf("expected 1500000 to next project, got %d", report.ToNextProject)
	}
}

func TestForDonorAllowanceExhausted(t *testing.T) {
	svc, err := NewService(&stubSummer{total: 5000000}, &stubCounter{count: 2}, 2500000)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	report, err := svc.ForDonor(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("for donor: %v", err)
	}
	if report.CanCreateProject {
		t.Errorf("expected allowance to be exhausted")
	}
	if report.RemainingProjects != 0 {
		t.Errorf("expected 0 remaining projects, got %d", report.RemainingProjects)
	}
}

func TestForDonorOverdrawnClampsRemaining(t *testing.T) {
	svc, err := NewService(&stubSummer{total: 2500000}, &stubCounter{count: 5}, 2500000)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	report, err := svc.ForDonor(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("for donor: %v", err)
	}
	if report.RemainingProjects != 0 {
		t.Errorf("expected 0 remaining projects, got %d", report.RemainingProjects)
	}
	if report.CanCreateProject {
		t.Errorf("expected donor to be blocked")
	}
}

func TestForDonorRequiresIdentity(t *testing.T) {
	svc, _ := NewService(&stubSummer{}, &stubCounter{}, 2500000)

	_, err := svc.ForDonor(context.Background(), uuid.Nil)
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestNewServiceValidatesCost(t *testing.T) {
	if _, err := NewService(&stubSummer{}, &stubCounter{}, 0); err == nil {
		t.Fatalf("expected error for zero cost")
	}
}
