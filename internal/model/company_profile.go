package model

// CompanyProfileVersion is one immutable snapshot of a tenant's company profile
type CompanyProfileVersion struct {
	VersionMeta
	Name        string  `json:"name" gorm:"type:varchar(255);not null" validate:"required,max=255"`
	Description string  `json:"description" gorm:"type:text"`
	ServiceType string  `json:"service_type" gorm:"type:varchar(100)" validate:"max=100"`
	CompanySize string  `json:"company_size" gorm:"type:varchar(50)" validate:"max=50"`
	Regions     string  `json:"regions" gorm:"type:text"`
	Language    string  `json:"language" gorm:"type:varchar(50)" validate:"max=50"`
	Personality string  `json:"personality" gorm:"type:text"`
	Temperature float64 `json:"temperature" gorm:"not null" validate:"gte=0,lte=2"`
}

func (CompanyProfileVersion) TableName() string {
	return "company_profile_versions"
}

func (CompanyProfileVersion) EntityType() EntityType {
	return EntityCompanyProfile
}
