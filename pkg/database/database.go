package database

import (
	"fmt"

	"github.com/suteetoe/receptionist/internal/model"
	"github.com/suteetoe/receptionist/pkg/config"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// InitDB opens the database configured by dbConfig and applies pool settings
func InitDB(dbConfig *config.DBConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch dbConfig.Driver {
	case config.DriverSQLite:
		dialector = sqlite.Open(dbConfig.GetDSN())
	default:
		dialector = postgres.New(postgres.Config{
			DSN:                  dbConfig.GetDSN(),
			PreferSimpleProtocol: true, // Disables implicit prepared statement usage
		})
	}

	db, err := Open(dialector, dbConfig.LogLevel)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database object: %w", err)
	}

	if dbConfig.Driver == config.DriverSQLite {
		// sqlite serializes writers; one connection avoids SQLITE_BUSY churn
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxIdleConns(dbConfig.MaxIdleConns)
		sqlDB.SetMaxOpenConns(dbConfig.MaxOpenConns)
		sqlDB.SetConnMaxLifetime(dbConfig.ConnMaxLifetime)
	}

	return db, nil
}

// Open connects through dialector with the settings every store relies on.
// TranslateError maps unique violations to gorm.ErrDuplicatedKey.
func Open(dialector gorm.Dialector, logLevel logger.LogLevel) (*gorm.DB, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// partialIndexes back the "one active row" invariants at the storage boundary
var partialIndexes = []string{
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_company_profile_active
		ON company_profile_versions (tenant_id) WHERE is_active`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_agent_config_active
		ON agent_config_versions (tenant_id) WHERE is_active`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_template_module_active
		ON template_modules (scope_key, slug) WHERE is_active`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_trusted_sources_active
		ON knowledge_documents (tenant_id) WHERE is_active AND file_name = '` + model.TrustedSourcesFileName + `'`,
}

// Models lists every table owned by the service
func Models() []interface{} {
	return []interface{}{
		&model.Tenant{},
		&model.CompanyProfileVersion{},
		&model.AgentConfigVersion{},
		&model.KnowledgeDocument{},
		&model.KnowledgeEvent{},
		&model.TemplateModule{},
	}
}

// Migrate creates or updates the schema
func Migrate(db *gorm.DB) error {
	if db == nil {
		return fmt.Errorf("database is not initialized")
	}

	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	for _, stmt := range partialIndexes {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	return nil
}
