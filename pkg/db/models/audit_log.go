package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/crowdspark/crowdspark-backend/pkg/enums"
)

// AuditLog records one state-changing admin or system action. Rows are
// immutable once written; a nil ActorID means the system acted.
type AuditLog struct {
	ID        uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Action    enums.AuditAction `gorm:"column:action;not null"`
	Entity    enums.AuditEntity `gorm:"column:entity;not null;index"`
	EntityID  uuid.UUID         `gorm:"column:entity_id;type:uuid;not null;index"`
	ActorID   *uuid.UUID        `gorm:"column:actor_id;type:uuid"`
	Details   json.RawMessage   `gorm:"column:details;type:jsonb"`
	CreatedAt time.Time         `gorm:"column:created_at;autoCreateTime"`
}
