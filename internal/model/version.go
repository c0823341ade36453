package model

import (
	"time"
)

// EntityType names a versioned configuration lineage
type EntityType string

const (
	EntityCompanyProfile EntityType = "company_profile"
	EntityAgentConfig    EntityType = "agent_config"
)

// VersionMeta is shared by every copy-on-write configuration row.
// Activeness is decided by IsActive alone; CreatedAt is informational.
type VersionMeta struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	TenantID  uint      `json:"tenant_id" gorm:"index;not null"`
	IsActive  bool      `json:"is_active" gorm:"not null;default:false"`
	CreatedAt time.Time `json:"created_at"`
}

// Meta gives generic stores access to the embedded version columns
func (m *VersionMeta) Meta() *VersionMeta {
	return m
}
