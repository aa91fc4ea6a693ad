package approvals

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/crowdspark/crowdspark-backend/internal/audit"
	"github.com/crowdspark/crowdspark-backend/pkg/enums"
	pkgerrors "github.com/crowdspark/crowdspark-backend/pkg/errors"
)

type fakeTxRunner struct{}

func (fakeTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type fakeRecorder struct {
	entries []audit.Entry
	fail    error
}

func (f *fakeRecorder) Record(ctx context.Context, tx *gorm.DB, entry audit.Entry) error {
	if f.fail != nil {
		return f.fail
	}
	f.entries = append(f.entries, entry)
	return nil
}

type fakeAccessor struct {
	status      enums.ApprovalStatus
	loadErr     error
	saved       *enums.ApprovalStatus
	savedReason *string
	saveErr     error
}

func (f *fakeAccessor) Load(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*Record, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return &Record{ID: id, Status: f.status}, nil
}

func (f *fakeAccessor) SaveStatus(ctx context.Context, tx *gorm.DB, id uuid.UUID, status enums.ApprovalStatus, reason *string) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = &status
	f.savedReason = reason
	return nil
}

func (f *fakeAccessor) AuditEntity() enums.AuditEntity {
	return enums.AuditEntityClubVerification
}

func newMachine(t *testing.T, recorder *fakeRecorder) *Machine {
	t.Helper()
	machine, err := NewMachine(fakeTxRunner{}, recorder)
	if err != nil {
		t.Fatalf("new machine: %v", err)
	}
	return machine
}

func TestApprovePendingRecord(t *testing.T) {
	recorder := &fakeRecorder{}
	machine := newMachine(t, recorder)
	acc := &fakeAccessor{status: enums.ApprovalStatusPending}

	err := machine.Approve(context.Background(), TransitionInput{
		Accessor: acc,
		EntityID: uuid.New(),
		ActorID:  uuid.New(),
	})
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if acc.saved == nil || *acc.saved != enums.ApprovalStatusApproved {
		t.Fatalf("status not saved as approved")
	}
	if len(recorder.entries) != 1 {
		t.Fatalf("expected exactly one audit entry, got %d", len(recorder.entries))
	}
	if recorder.entries[0].Action != enums.AuditActionApproved {
		t.Errorf("unexpected audit action %q", recorder.entries[0].Action)
	}
}

func TestApproveNonPendingIsStateConflict(t *testing.T) {
	for _, status := range []enums.ApprovalStatus{
		enums.ApprovalStatusApproved,
		enums.ApprovalStatusRejected,
		enums.ApprovalStatusDisabled,
	} {
		t.Run(string(status), func(t *testing.T) {
			recorder := &fakeRecorder{}
			machine := newMachine(t, recorder)
			acc := &fakeAccessor{status: status}

			err := machine.Approve(context.Background(), TransitionInput{
				Accessor: acc,
				EntityID: uuid.New(),
				ActorID:  uuid.New(),
			})
			coded := pkgerrors.As(err)
			if coded == nil || coded.Code() != pkgerrors.CodeStateConflict {
				t.Fatalf("expected state conflict, got %v", err)
			}
			if acc.saved != nil {
				t.Fatalf("status must not change")
			}
			if len(recorder.entries) != 0 {
				t.Fatalf("no audit entry expected for refused transition")
			}
		})
	}
}

func TestRejectRequiresReason(t *testing.T) {
	recorder := &fakeRecorder{}
	machine := newMachine(t, recorder)
	acc := &fakeAccessor{status: enums.ApprovalStatusPending}

	for _, reason := range []*string{nil, ptr(""), ptr("   ")} {
		err := machine.Reject(context.Background(), TransitionInput{
			Accessor: acc,
			EntityID: uuid.New(),
			ActorID:  uuid.New(),
			Reason:   reason,
		})
		coded := pkgerrors.As(err)
		if coded == nil || coded.Code() != pkgerrors.CodeValidation {
			t.Fatalf("expected validation error, got %v", err)
		}
	}
	if acc.saved != nil {
		t.Fatalf("status must not change without a reason")
	}
}

func TestRejectStoresReasonAndAudits(t *testing.T) {
	recorder := &fakeRecorder{}
	machine := newMachine(t, recorder)
	acc := &fakeAccessor{status: enums.ApprovalStatusPending}
	reason := "budget unclear"

	err := machine.Reject(context.Background(), TransitionInput{
		Accessor: acc,
		EntityID: uuid.New(),
		ActorID:  uuid.New(),
		Reason:   &reason,
	})
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if acc.savedReason == nil || *acc.savedReason != reason {
		t.Fatalf("reason not persisted")
	}
	details, ok := recorder.entries[0].Details.(map[string]any)
	if !ok || details["reason"] != reason {
		t.Fatalf("audit details missing reason: %v", recorder.entries[0].Details)
	}
}

func TestDisableOnlyFromApproved(t *testing.T) {
	recorder := &fakeRecorder{}
	machine := newMachine(t, recorder)

	acc := &fakeAccessor{status: enums.ApprovalStatusApproved}
	if err := machine.Disable(context.Background(), TransitionInput{
		Accessor: acc,
		EntityID: uuid.New(),
		ActorID:  uuid.New(),
	}); err != nil {
		t.Fatalf("disable approved: %v", err)
	}

	acc = &fakeAccessor{status: enums.ApprovalStatusPending}
	err := machine.Disable(context.Background(), TransitionInput{
		Accessor: acc,
		EntityID: uuid.New(),
		ActorID:  uuid.New(),
	})
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict disabling pending record, got %v", err)
	}
}

func TestAuditFailureAbortsTransition(t *testing.T) {
	recorder := &fakeRecorder{fail: errors.New("audit insert failed")}
	machine := newMachine(t, recorder)
	acc := &fakeAccessor{status: enums.ApprovalStatusPending}

	err := machine.Approve(context.Background(), TransitionInput{
		Accessor: acc,
		EntityID: uuid.New(),
		ActorID:  uuid.New(),
	})
	if err == nil {
		t.Fatalf("expected transition to fail when audit write fails")
	}
}

func TestThenHookRunsInsideTransition(t *testing.T) {
	recorder := &fakeRecorder{}
	machine := newMachine(t, recorder)
	acc := &fakeAccessor{status: enums.ApprovalStatusPending}
	ran := false

	err := machine.Approve(context.Background(), TransitionInput{
		Accessor: acc,
		EntityID: uuid.New(),
		ActorID:  uuid.New(),
		Then: func(ctx context.Context, tx *gorm.DB) error {
			ran = true
			return nil
		},
	})
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if !ran {
		t.Fatalf("then hook did not run")
	}
}

func TestNotFoundRecord(t *testing.T) {
	recorder := &fakeRecorder{}
	machine := newMachine(t, recorder)
	acc := &fakeAccessor{loadErr: gorm.ErrRecordNotFound}

	err := machine.Approve(context.Background(), TransitionInput{
		Accessor: acc,
		EntityID: uuid.New(),
		ActorID:  uuid.New(),
	})
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func ptr(s string) *string { return &s }
