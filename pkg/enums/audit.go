package enums

import "fmt"

// AuditAction names a state-changing admin or system action.
type AuditAction string

const (
	AuditActionDonationVerified   AuditAction = "donation_verified"
	AuditActionDonationFailed     AuditAction = "donation_failed"
	AuditActionApproved           AuditAction = "approved"
	AuditActionRejected           AuditAction = "rejected"
	AuditActionDisabled           AuditAction = "disabled"
	AuditActionResubmitted        AuditAction = "resubmitted"
	AuditActionWithdrawalRequest  AuditAction = "withdrawal_requested"
	AuditActionReconcilerExpired  AuditAction = "order_expired"
)

var validAuditActions = []AuditAction{
	AuditActionDonationVerified,
	AuditActionDonationFailed,
	AuditActionApproved,
	AuditActionRejected,
	AuditActionDisabled,
	AuditActionResubmitted,
	AuditActionWithdrawalRequest,
	AuditActionReconcilerExpired,
}

// IsValid reports whether the value is a known AuditAction.
func (a AuditAction) IsValid() bool {
	for _, candidate := range validAuditActions {
		if candidate == a {
			return true
		}
	}
	return false
}

// AuditEntity names the record type an audit entry refers to.
type AuditEntity string

const (
	AuditEntityDonation         AuditEntity = "donation"
	AuditEntityCampaign         AuditEntity = "campaign"
	AuditEntityClubVerification AuditEntity = "club_verification"
	AuditEntityClubReferral     AuditEntity = "club_referral"
	AuditEntityWithdrawal       AuditEntity = "withdrawal"
)

var validAuditEntities = []AuditEntity{
	AuditEntityDonation,
	AuditEntityCampaign,
	AuditEntityClubVerification,
	AuditEntityClubReferral,
	AuditEntityWithdrawal,
}

// IsValid reports whether the value is a known AuditEntity.
func (e AuditEntity) IsValid() bool {
	for _, candidate := range validAuditEntities {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseAuditEntity converts raw input into an AuditEntity.
func ParseAuditEntity(value string) (AuditEntity, error) {
	for _, candidate := range validAuditEntities {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid audit entity %q", value)
}
