// Package store persists tenant configuration: copy-on-write versions,
// knowledge documents and template modules.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/suteetoe/receptionist/internal/apperror"
	"github.com/suteetoe/receptionist/internal/model"
	"github.com/suteetoe/receptionist/pkg/logger"
	"github.com/suteetoe/receptionist/pkg/metrics"
	"github.com/suteetoe/receptionist/pkg/validation"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Versioned is implemented by pointers to the copy-on-write configuration models
type Versioned[T any] interface {
	*T
	Meta() *model.VersionMeta
	EntityType() model.EntityType
}

// VersionOption customizes CreateNewVersion
type VersionOption func(*versionOptions)

type versionOptions struct {
	supersedes uint
	enclosed   bool
}

// Supersedes makes CreateNewVersion fail with a version conflict unless the
// currently active version is id.
func Supersedes(id uint) VersionOption {
	return func(o *versionOptions) {
		o.supersedes = id
	}
}

// Enclosed marks the store's db as a caller-owned transaction. The
// created-version metric and log are left to the caller, to emit once that
// transaction commits.
func Enclosed() VersionOption {
	return func(o *versionOptions) {
		o.enclosed = true
	}
}

// VersionStore keeps exactly one active row per tenant for a versioned entity.
// Rows are never updated except for the one-way is_active true -> false flip.
type VersionStore[T any, PT Versioned[T]] struct {
	db *gorm.DB
}

// CompanyProfileStore versions company profiles
type CompanyProfileStore = VersionStore[model.CompanyProfileVersion, *model.CompanyProfileVersion]

// AgentConfigStore versions agent configurations
type AgentConfigStore = VersionStore[model.AgentConfigVersion, *model.AgentConfigVersion]

func NewCompanyProfileStore(db *gorm.DB) *CompanyProfileStore {
	return &CompanyProfileStore{db: db}
}

func NewAgentConfigStore(db *gorm.DB) *AgentConfigStore {
	return &AgentConfigStore{db: db}
}

func (s *VersionStore[T, PT]) entity() string {
	var zero T
	return string(PT(&zero).EntityType())
}

// GetActive returns the tenant's active version
func (s *VersionStore[T, PT]) GetActive(ctx context.Context, tenantID uint) (*T, error) {
	const op = "store.GetActive"
	defer metrics.TrackDBOperation("get_active_" + s.entity())(time.Now())

	var row T
	err := s.db.WithContext(ctx).
		Where("tenant_id = ? AND is_active = ?", tenantID, true).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NotFound(op, "no active %s for tenant %d", s.entity(), tenantID)
	}
	if err != nil {
		logger.FromContext(ctx).Error("Failed to load active version",
			zap.String("entity", s.entity()),
			zap.Uint("tenant_id", tenantID),
			zap.Error(err))
		return nil, apperror.Unavailable(op, err)
	}
	return &row, nil
}

// CreateNewVersion deactivates the current version, if any, and inserts fields
// as the new active version in one transaction. A failure or cancelled context
// leaves the previous version active and unchanged.
func (s *VersionStore[T, PT]) CreateNewVersion(ctx context.Context, tenantID uint, fields T, opts ...VersionOption) (*T, error) {
	const op = "store.CreateNewVersion"
	entity := s.entity()
	log := logger.FromContext(ctx)
	defer metrics.TrackDBOperation("create_version_" + entity)(time.Now())

	if tenantID == 0 {
		return nil, apperror.Validation(op, "tenant id is required")
	}
	if err := validation.Struct(fields); err != nil {
		return nil, apperror.Validation(op, "%s", err.Error())
	}

	var options versionOptions
	for _, opt := range opts {
		opt(&options)
	}

	row := fields
	meta := PT(&row).Meta()
	*meta = model.VersionMeta{TenantID: tenantID, IsActive: true}

	var previousID uint
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current T
		err := tx.Where("tenant_id = ? AND is_active = ?", tenantID, true).Take(&current).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			if options.supersedes != 0 {
				return apperror.Conflict(op, "%s version %d is no longer active", entity, options.supersedes)
			}
		case err != nil:
			return err
		default:
			previousID = PT(&current).Meta().ID
			if options.supersedes != 0 && options.supersedes != previousID {
				return apperror.Conflict(op, "%s version %d is no longer active", entity, options.supersedes)
			}

			// Must flip exactly this row; zero rows means another writer won.
			result := tx.Model(new(T)).
				Where("id = ? AND is_active = ?", previousID, true).
				Update("is_active", false)
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected != 1 {
				return apperror.Conflict(op, "%s version %d was superseded concurrently", entity, previousID)
			}
		}

		if err := tx.Create(PT(&row)).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperror.Conflict(op, "another %s version was activated concurrently", entity)
			}
			return err
		}
		return nil
	})

	if err != nil {
		if errors.Is(err, apperror.ErrVersionConflict) {
			metrics.RecordVersionConflict(entity)
			log.Warn("Version conflict",
				zap.String("entity", entity),
				zap.Uint("tenant_id", tenantID),
				zap.Error(err))
			return nil, err
		}
		log.Error("Failed to create version",
			zap.String("entity", entity),
			zap.Uint("tenant_id", tenantID),
			zap.Error(err))
		return nil, apperror.Unavailable(op, err)
	}

	if options.enclosed {
		return &row, nil
	}
	metrics.RecordVersionCreated(entity)
	log.Info("Version created",
		zap.String("entity", entity),
		zap.Uint("tenant_id", tenantID),
		zap.Uint("version_id", meta.ID),
		zap.Uint("previous_version_id", previousID))
	return &row, nil
}

// History returns every version of the tenant, newest first
func (s *VersionStore[T, PT]) History(ctx context.Context, tenantID uint) ([]T, error) {
	const op = "store.History"
	defer metrics.TrackDBOperation("history_" + s.entity())(time.Now())

	var rows []T
	if err := s.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("id DESC").
		Find(&rows).Error; err != nil {
		return nil, apperror.Unavailable(op, err)
	}
	return rows, nil
}
