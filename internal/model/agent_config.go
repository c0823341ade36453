package model

import (
	"gorm.io/datatypes"
)

// AgentConfigVersion is one immutable snapshot of a tenant's agent settings.
// Its lineage is independent of CompanyProfileVersion.
type AgentConfigVersion struct {
	VersionMeta
	AgentName     string         `json:"agent_name" gorm:"type:varchar(100)" validate:"max=100"`
	Model         string         `json:"model" gorm:"type:varchar(100);not null" validate:"required,max=100"`
	Temperature   float64        `json:"temperature" gorm:"not null" validate:"gte=0,lte=2"`
	VoiceSettings datatypes.JSON `json:"voice_settings,omitempty"`
}

func (AgentConfigVersion) TableName() string {
	return "agent_config_versions"
}

func (AgentConfigVersion) EntityType() EntityType {
	return EntityAgentConfig
}
