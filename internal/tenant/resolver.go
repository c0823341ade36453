// Package tenant maps authenticated identifiers to tenants and onboards new ones.
package tenant

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/suteetoe/receptionist/internal/apperror"
	"github.com/suteetoe/receptionist/internal/model"
	"github.com/suteetoe/receptionist/internal/store"
	"github.com/suteetoe/receptionist/pkg/config"
	"github.com/suteetoe/receptionist/pkg/logger"
	"github.com/suteetoe/receptionist/pkg/metrics"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Resolver maps the opaque identifier issued by the auth service to a tenant.
// Tenants never change structurally, so hits are cached until the TTL expires.
type Resolver struct {
	db    *gorm.DB
	cache *expirable.LRU[string, model.Tenant]
}

func NewResolver(db *gorm.DB, cfg config.TenantConfig) *Resolver {
	return &Resolver{
		db:    db,
		cache: expirable.NewLRU[string, model.Tenant](cfg.CacheSize, nil, cfg.CacheTTL),
	}
}

// Resolve returns the tenant for externalID
func (r *Resolver) Resolve(ctx context.Context, externalID string) (*model.Tenant, error) {
	const op = "tenant.Resolve"

	externalID = strings.TrimSpace(externalID)
	if externalID == "" {
		return nil, apperror.Validation(op, "tenant identifier is required")
	}
	if t, ok := r.cache.Get(externalID); ok {
		return &t, nil
	}

	defer metrics.TrackDBOperation("tenant_resolve")(time.Now())

	var t model.Tenant
	err := r.db.WithContext(ctx).Where("external_id = ?", externalID).Take(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NotFound(op, "tenant not found")
	}
	if err != nil {
		logger.FromContext(ctx).Error("Failed to resolve tenant",
			zap.String("external_id", externalID),
			zap.Error(err))
		return nil, apperror.Unavailable(op, err)
	}

	r.cache.Add(externalID, t)
	return &t, nil
}

// OnboardRequest is the outcome of the onboarding wizard
type OnboardRequest struct {
	ExternalID string                      `json:"external_id" validate:"required,max=191"`
	Company    model.CompanyProfileVersion `json:"company"`
	Agent      model.AgentConfigVersion    `json:"agent"`
}

// OnboardResult holds the rows created for a new tenant
type OnboardResult struct {
	Tenant  model.Tenant                `json:"tenant"`
	Company model.CompanyProfileVersion `json:"company"`
	Agent   model.AgentConfigVersion    `json:"agent"`
}

// Onboard creates the tenant with its first company profile and agent
// configuration versions in one transaction.
func (r *Resolver) Onboard(ctx context.Context, req OnboardRequest) (*OnboardResult, error) {
	const op = "tenant.Onboard"
	log := logger.FromContext(ctx)

	req.ExternalID = strings.TrimSpace(req.ExternalID)
	if req.ExternalID == "" {
		return nil, apperror.Validation(op, "tenant identifier is required")
	}
	if len(req.ExternalID) > 191 {
		return nil, apperror.Validation(op, "tenant identifier must be at most 191 characters")
	}

	var result OnboardResult
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result.Tenant = model.Tenant{ExternalID: req.ExternalID, Name: req.Company.Name}
		if err := tx.Create(&result.Tenant).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperror.Conflict(op, "tenant is already onboarded")
			}
			return err
		}

		company, err := store.NewCompanyProfileStore(tx).CreateNewVersion(ctx, result.Tenant.ID, req.Company, store.Enclosed())
		if err != nil {
			return err
		}
		agent, err := store.NewAgentConfigStore(tx).CreateNewVersion(ctx, result.Tenant.ID, req.Agent, store.Enclosed())
		if err != nil {
			return err
		}
		result.Company = *company
		result.Agent = *agent
		return nil
	})
	if err != nil {
		var appErr *apperror.Error
		if errors.As(err, &appErr) {
			return nil, err
		}
		log.Error("Failed to onboard tenant", zap.String("external_id", req.ExternalID), zap.Error(err))
		return nil, apperror.Unavailable(op, err)
	}

	metrics.RecordVersionCreated(string(model.EntityCompanyProfile))
	metrics.RecordVersionCreated(string(model.EntityAgentConfig))
	r.cache.Add(result.Tenant.ExternalID, result.Tenant)
	log.Info("Tenant onboarded",
		zap.String("external_id", result.Tenant.ExternalID),
		zap.Uint("tenant_id", result.Tenant.ID),
		zap.Uint("company_version_id", result.Company.ID),
		zap.Uint("agent_version_id", result.Agent.ID))
	return &result, nil
}
