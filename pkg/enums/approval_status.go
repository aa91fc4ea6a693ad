package enums

import "fmt"

// ApprovalStatus is the shared lifecycle for every admin-reviewed record:
// campaigns, club verifications, club referrals, and withdrawals.
type ApprovalStatus string

const (
	ApprovalStatusPending  ApprovalStatus = "pending"
	ApprovalStatusApproved ApprovalStatus = "approved"
	ApprovalStatusRejected ApprovalStatus = "rejected"
	ApprovalStatusDisabled ApprovalStatus = "disabled"
)

var validApprovalStatuses = []ApprovalStatus{
	ApprovalStatusPending,
	ApprovalStatusApproved,
	ApprovalStatusRejected,
	ApprovalStatusDisabled,
}

// String implements fmt.Stringer.
func (s ApprovalStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known ApprovalStatus.
func (s ApprovalStatus) IsValid() bool {
	for _, candidate := range validApprovalStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseApprovalStatus converts raw input into an ApprovalStatus.
func ParseApprovalStatus(value string) (ApprovalStatus, error) {
	for _, candidate := range validApprovalStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid approval status %q", value)
}
