package model

import (
	"fmt"
	"time"
)

// ScopeGlobal is the scope key shared by all tenants
const ScopeGlobal = "global"

// Scope selects where a template module applies. A nil TenantID is global.
type Scope struct {
	TenantID *uint
}

// GlobalScope returns the scope shared by every tenant
func GlobalScope() Scope {
	return Scope{}
}

// TenantScope returns the scope bound to a single tenant
func TenantScope(tenantID uint) Scope {
	return Scope{TenantID: &tenantID}
}

// IsGlobal reports whether the scope is shared by every tenant
func (s Scope) IsGlobal() bool {
	return s.TenantID == nil
}

// Key is the value stored in template_modules.scope_key
func (s Scope) Key() string {
	if s.TenantID == nil {
		return ScopeGlobal
	}
	return fmt.Sprintf("tenant:%d", *s.TenantID)
}

// TemplateModule is a named block of prompt text. Unlike the versioned
// configuration entities it is updated in place.
type TemplateModule struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	ScopeKey  string    `json:"scope" gorm:"type:varchar(64);not null;index:idx_template_lookup"`
	TenantID  *uint     `json:"tenant_id,omitempty" gorm:"index"`
	Slug      string    `json:"slug" gorm:"type:varchar(100);not null;index:idx_template_lookup"`
	Content   string    `json:"content" gorm:"type:text;not null"`
	IsActive  bool      `json:"is_active" gorm:"not null;default:false"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (TemplateModule) TableName() string {
	return "template_modules"
}
