package model

import (
	"time"
)

// TrustedSourcesFileName is reserved for the per-tenant trusted sources record
const TrustedSourcesFileName = "__trusted_sources__"

// KnowledgeDocument is a tenant reference document. Rows are soft-deleted only.
type KnowledgeDocument struct {
	ID            uint       `json:"id" gorm:"primaryKey"`
	TenantID      uint       `json:"tenant_id" gorm:"index:idx_knowledge_tenant_active;not null"`
	FileName      string     `json:"file_name" gorm:"type:varchar(255);not null"`
	RawText       string     `json:"raw_text" gorm:"type:text"`
	IsActive      bool       `json:"is_active" gorm:"index:idx_knowledge_tenant_active;not null;default:false"`
	CreatedAt     time.Time  `json:"created_at"`
	DeactivatedAt *time.Time `json:"deactivated_at,omitempty"`
}

func (KnowledgeDocument) TableName() string {
	return "knowledge_documents"
}

// IsTrustedSources reports whether the row is the reserved trusted sources record
func (d *KnowledgeDocument) IsTrustedSources() bool {
	return d.FileName == TrustedSourcesFileName
}

// KnowledgeAction names an entry in the knowledge audit log
type KnowledgeAction string

const (
	KnowledgeAdded                 KnowledgeAction = "added"
	KnowledgeDeactivated           KnowledgeAction = "deactivated"
	KnowledgeTrustedSourcesCreated KnowledgeAction = "trusted_sources_created"
	KnowledgeTrustedSourcesUpdated KnowledgeAction = "trusted_sources_updated"
)

// KnowledgeEvent is an append-only audit entry written alongside every
// knowledge write.
type KnowledgeEvent struct {
	ID         uint            `json:"id" gorm:"primaryKey"`
	TenantID   uint            `json:"tenant_id" gorm:"index;not null"`
	DocumentID uint            `json:"document_id" gorm:"index;not null"`
	Action     KnowledgeAction `json:"action" gorm:"type:varchar(50);not null"`
	CreatedAt  time.Time       `json:"created_at"`
}

func (KnowledgeEvent) TableName() string {
	return "knowledge_events"
}
