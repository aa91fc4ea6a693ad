package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/crowdspark/crowdspark-backend/pkg/enums"
)

// User is the minimal identity row the funding core needs; account management
// lives in the auth service.
type User struct {
	ID        uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Email     string         `gorm:"column:email;not null;uniqueIndex"`
	Name      string         `gorm:"column:name;not null"`
	Role      enums.UserRole `gorm:"column:role;not null;default:'student'"`
	CreatedAt time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
