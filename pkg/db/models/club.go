package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/crowdspark/crowdspark-backend/pkg/enums"
)

// Club groups student campaigns under a verified organization.
type Club struct {
	ID          uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name        string     `gorm:"column:name;not null"`
	PresidentID *uuid.UUID `gorm:"column:president_id;type:uuid"`
	Verified    bool       `gorm:"column:verified;not null;default:false"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

// ClubVerification is one submission asking an admin to verify a club.
// Terminal records are never mutated back to pending; re-applying creates a
// new row.
type ClubVerification struct {
	ID        uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ClubID    uuid.UUID            `gorm:"column:club_id;type:uuid;not null;index"`
	Submitter uuid.UUID            `gorm:"column:submitter_id;type:uuid;not null"`
	Status    enums.ApprovalStatus `gorm:"column:status;type:approval_status_enum;not null;default:'pending'"`
	Notes     *string              `gorm:"column:notes"`
	CreatedAt time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}

// ClubReferral is one submission nominating a member for club president.
type ClubReferral struct {
	ID        uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ClubID    uuid.UUID            `gorm:"column:club_id;type:uuid;not null;index"`
	Nominee   uuid.UUID            `gorm:"column:nominee_id;type:uuid;not null"`
	Referrer  uuid.UUID            `gorm:"column:referrer_id;type:uuid;not null"`
	Status    enums.ApprovalStatus `gorm:"column:status;type:approval_status_enum;not null;default:'pending'"`
	Notes     *string              `gorm:"column:notes"`
	CreatedAt time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}
