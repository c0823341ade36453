package model

import (
	"time"
)

// Tenant represents a customer organization. Rows are created once at
// onboarding and never mutated structurally.
type Tenant struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	ExternalID string    `json:"external_id" gorm:"type:varchar(191);uniqueIndex;not null"` // Stable identifier issued by the auth service
	Name       string    `json:"name" gorm:"type:varchar(255);not null"`
	CreatedAt  time.Time `json:"created_at"`
}
