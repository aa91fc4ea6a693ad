package enums

import "fmt"

// DonationStatus maps to the donation_status_enum enum in Postgres.
type DonationStatus string

const (
	DonationStatusCreated  DonationStatus = "created"
	DonationStatusVerified DonationStatus = "verified"
	DonationStatusFailed   DonationStatus = "failed"
)

var validDonationStatuses = []DonationStatus{
	DonationStatusCreated,
	DonationStatusVerified,
	DonationStatusFailed,
}

// IsValid reports whether the value is a known DonationStatus.
func (s DonationStatus) IsValid() bool {
	for _, candidate := range validDonationStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the donation can no longer change state.
func (s DonationStatus) IsTerminal() bool {
	return s == DonationStatusVerified || s == DonationStatusFailed
}

// ParseDonationStatus converts raw input into a DonationStatus.
func ParseDonationStatus(value string) (DonationStatus, error) {
	for _, candidate := range validDonationStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid donation status %q", value)
}
