package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/crowdspark/crowdspark-backend/pkg/migrate"
)

func TestMigrationsDirIsValid(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("validate migrations dir: %v", err)
	}
}

func TestDonationsMigrationContainsConstraints(t *testing.T) {
	content := readMigration(t, "*_create_donations.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS donations",
		"gateway_order_id text NOT NULL UNIQUE",
		"CHECK (amount_paise > 0)",
		"CHECK ((guest_email IS NULL) = (guest_pan IS NULL))",
		"DROP TABLE IF EXISTS donations",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestCampaignsMigrationContainsConstraints(t *testing.T) {
	content := readMigration(t, "*_create_campaigns.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS campaigns",
		"CHECK (amount_raised_paise >= 0)",
		"CHECK (reapproval_count >= 0)",
		"FOREIGN KEY (campaign_id) REFERENCES campaigns(id) ON DELETE CASCADE",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestAuditLogsMigrationBlocksMutation(t *testing.T) {
	content := readMigration(t, "*_create_withdrawals_and_audit_logs.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS audit_logs",
		"CREATE RULE audit_logs_no_update AS ON UPDATE TO audit_logs DO INSTEAD NOTHING",
		"CREATE RULE audit_logs_no_delete AS ON DELETE TO audit_logs DO INSTEAD NOTHING",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func readMigration(t *testing.T, pattern string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join("migrations", pattern))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no migration matching %q found", pattern)
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	return string(data)
}
