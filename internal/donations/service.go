package donations

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/crowdspark/crowdspark-backend/internal/audit"
	"github.com/crowdspark/crowdspark-backend/pkg/db/models"
	"github.com/crowdspark/crowdspark-backend/pkg/enums"
	pkgerrors "github.com/crowdspark/crowdspark-backend/pkg/errors"
	"github.com/crowdspark/crowdspark-backend/pkg/gateway"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// CampaignLedger is the slice of the campaigns service donations need.
type CampaignLedger interface {
	Get(ctx context.Context, id uuid.UUID) (*models.Campaign, error)
	Credit(ctx context.Context, tx *gorm.DB, campaignID uuid.UUID, amountPaise int64) error
}

// Service defines the donation ledger operations.
type Service interface {
	CreateOrder(ctx context.Context, input CreateOrderInput) (*models.Donation, error)
	ConfirmPayment(ctx context.Context, input ConfirmInput) (*models.Donation, error)
	MarkFailed(ctx context.Context, input FailInput) (*models.Donation, error)
	SumVerifiedForDonor(ctx context.Context, donorID uuid.UUID) (int64, error)
	ExpireCreatedBefore(ctx context.Context, cutoff time.Time, limit int) (int, error)
}

type service struct {
	repo          Repository
	campaigns     CampaignLedger
	tx            txRunner
	audit         audit.Recorder
	gatewaySecret string
}

// NewService builds the donations service.
func NewService(repo Repository, campaigns CampaignLedger, tx txRunner, recorder audit.Recorder, gatewaySecret string) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("donations repository required")
	}
	if campaigns == nil {
		return nil, fmt.Errorf("campaign ledger required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if recorder == nil {
		return nil, fmt.Errorf("audit recorder required")
	}
	if gatewaySecret == "" {
		return nil, fmt.Errorf("gateway secret required")
	}
	return &service{
		repo:          repo,
		campaigns:     campaigns,
		tx:            tx,
		audit:         recorder,
		gatewaySecret: gatewaySecret,
	}, nil
}

// CreateOrder opens a ledger row in the created state against an approved
// campaign and hands back the gateway order id the client pays against.
func (s *service) CreateOrder(ctx context.Context, input CreateOrderInput) (*models.Donation, error) {
	if input.AmountPaise <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "donation amount must be positive")
	}
	if err := validateDonorIdentity(input); err != nil {
		return nil, err
	}

	campaign, err := s.campaigns.Get(ctx, input.CampaignID)
	if err != nil {
		return nil, err
	}
	if campaign.Status != enums.ApprovalStatusApproved {
		return nil, pkgerrors.New(pkgerrors.CodeCampaignNotApproved, "campaign is not accepting donations")
	}

	orderID, err := gateway.NewOrderID()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reserve order id")
	}
	donation := &models.Donation{
		DonorID:        input.DonorID,
		GuestEmail:     input.GuestEmail,
		GuestPAN:       input.GuestPAN,
		CampaignID:     input.CampaignID,
		AmountPaise:    input.AmountPaise,
		GatewayOrderID: orderID,
		Status:         enums.DonationStatusCreated,
	}
	if _, err := s.repo.Create(ctx, donation); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create donation order")
	}
	return donation, nil
}

// ConfirmPayment settles a gateway success callback: the signature must
// check out, the row is locked, the verify plus campaign credit plus audit
// entry commit together, and a repeated callback for the same payment id is
// a no-op returning the already-verified row.
func (s *service) ConfirmPayment(ctx context.Context, input ConfirmInput) (*models.Donation, error) {
	if !gateway.Verify(input.OrderID, input.PaymentID, input.Signature, s.gatewaySecret) {
		return nil, pkgerrors.New(pkgerrors.CodeSignatureInvalid, "gateway signature mismatch")
	}

	var confirmed *models.Donation
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		donation, err := repo.FindByOrderIDForUpdate(ctx, input.OrderID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "donation order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load donation order")
		}

		switch donation.Status {
		case enums.DonationStatusVerified:
			if donation.GatewayPaymentID != nil && *donation.GatewayPaymentID == input.PaymentID {
				confirmed = donation
				return nil
			}
			return pkgerrors.New(pkgerrors.CodeConflict, "order already verified with a different payment")
		case enums.DonationStatusFailed:
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order already marked failed")
		}

		now := time.Now().UTC()
		if err := repo.MarkVerified(ctx, donation.ID, input.PaymentID, now); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark donation verified")
		}
		if err := s.campaigns.Credit(ctx, tx, donation.CampaignID, donation.AmountPaise); err != nil {
			return err
		}
		if err := s.audit.Record(ctx, tx, audit.Entry{
			Action:   enums.AuditActionDonationVerified,
			Entity:   enums.AuditEntityDonation,
			EntityID: donation.ID,
			Details: map[string]any{
				"gateway_order_id":   donation.GatewayOrderID,
				"gateway_payment_id": input.PaymentID,
				"amount_paise":       donation.AmountPaise,
			},
		}); err != nil {
			return err
		}

		donation.Status = enums.DonationStatusVerified
		donation.GatewayPaymentID = &input.PaymentID
		donation.VerifiedAt = &now
		confirmed = donation
		return nil
	})
	if err != nil {
		return nil, err
	}
	return confirmed, nil
}

// MarkFailed settles a gateway failure callback. Repeating it is a no-op;
// a verified order can no longer fail.
func (s *service) MarkFailed(ctx context.Context, input FailInput) (*models.Donation, error) {
	var failed *models.Donation
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		donation, err := repo.FindByOrderIDForUpdate(ctx, input.OrderID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "donation order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load donation order")
		}

		switch donation.Status {
		case enums.DonationStatusFailed:
			failed = donation
			return nil
		case enums.DonationStatusVerified:
			return pkgerrors.New(pkgerrors.CodeStateConflict, "verified order cannot be marked failed")
		}

		if err := repo.MarkFailed(ctx, donation.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark donation failed")
		}
		details := map[string]any{"gateway_order_id": donation.GatewayOrderID}
		if input.Reason != nil {
			details["reason"] = *input.Reason
		}
		if err := s.audit.Record(ctx, tx, audit.Entry{
			Action:   enums.AuditActionDonationFailed,
			Entity:   enums.AuditEntityDonation,
			EntityID: donation.ID,
			Details:  details,
		}); err != nil {
			return err
		}

		donation.Status = enums.DonationStatusFailed
		failed = donation
		return nil
	})
	if err != nil {
		return nil, err
	}
	return failed, nil
}

func (s *service) SumVerifiedForDonor(ctx context.Context, donorID uuid.UUID) (int64, error) {
	if donorID == uuid.Nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "donor id required")
	}
	total, err := s.repo.SumVerifiedByDonor(ctx, donorID)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum verified donations")
	}
	return total, nil
}

// ExpireCreatedBefore fails stale created orders in one transaction and
// returns how many were expired. The reconciler calls this on a schedule.
func (s *service) ExpireCreatedBefore(ctx context.Context, cutoff time.Time, limit int) (int, error) {
	expired := 0
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		stale, err := repo.FindCreatedBefore(ctx, cutoff, limit)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find stale orders")
		}
		for _, donation := range stale {
			if err := repo.MarkFailed(ctx, donation.ID); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "expire donation order")
			}
			if err := s.audit.Record(ctx, tx, audit.Entry{
				Action:   enums.AuditActionReconcilerExpired,
				Entity:   enums.AuditEntityDonation,
				EntityID: donation.ID,
				Details: map[string]any{
					"gateway_order_id": donation.GatewayOrderID,
					"created_at":       donation.CreatedAt,
				},
			}); err != nil {
				return err
			}
			expired++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return expired, nil
}

func validateDonorIdentity(input CreateOrderInput) error {
	if input.DonorID != nil {
		if input.GuestEmail != nil || input.GuestPAN != nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "guest fields not allowed for signed-in donors")
		}
		return nil
	}
	// Guest identity is optional, but the two fields travel together: an
	// anonymous pledge carries neither.
	if input.GuestEmail == nil && input.GuestPAN == nil {
		return nil
	}
	if input.GuestEmail == nil || strings.TrimSpace(*input.GuestEmail) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "guest email required when guest pan is provided")
	}
	if input.GuestPAN == nil || !panRe.MatchString(*input.GuestPAN) {
		return pkgerrors.New(pkgerrors.CodeValidation, "guest pan must match AAAAA9999A")
	}
	return nil
}
