package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/suteetoe/receptionist/internal/apperror"
	"github.com/suteetoe/receptionist/internal/model"
	"github.com/suteetoe/receptionist/internal/prompt"
	"github.com/suteetoe/receptionist/pkg/logger"
	"github.com/suteetoe/receptionist/pkg/metrics"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrNoBuiltinTemplate means a slug has neither a stored module nor a
// built-in default. This is a programming error, not a missing resource.
var ErrNoBuiltinTemplate = errors.New("no built-in template for slug")

// Tier names the level that answered a template lookup
type Tier string

const (
	TierTenant  Tier = "tenant"
	TierGlobal  Tier = "global"
	TierBuiltin Tier = "builtin"
)

// Resolution is the effective content of a template slug for a tenant
type Resolution struct {
	Slug    string `json:"slug"`
	Content string `json:"content"`
	Tier    Tier   `json:"tier"`
}

// TemplateRegistry stores template modules at global or tenant scope.
// Modules are updated in place; only the latest content is kept.
type TemplateRegistry struct {
	db *gorm.DB
}

func NewTemplateRegistry(db *gorm.DB) *TemplateRegistry {
	return &TemplateRegistry{db: db}
}

// GetEffectiveTemplate resolves slug for the tenant: the tenant's active
// module, else the active global module, else the built-in default.
func (r *TemplateRegistry) GetEffectiveTemplate(ctx context.Context, tenantID uint, slug string) (Resolution, error) {
	const op = "store.GetEffectiveTemplate"
	defer metrics.TrackDBOperation("template_resolve")(time.Now())

	scopes := []string{model.GlobalScope().Key()}
	if tenantID != 0 {
		scopes = append(scopes, model.TenantScope(tenantID).Key())
	}

	var modules []model.TemplateModule
	if err := r.db.WithContext(ctx).
		Where("scope_key IN ? AND slug = ? AND is_active = ?", scopes, slug, true).
		Find(&modules).Error; err != nil {
		return Resolution{}, apperror.Unavailable(op, err)
	}

	var global *model.TemplateModule
	for i := range modules {
		if modules[i].ScopeKey != model.ScopeGlobal {
			return r.resolved(ctx, slug, modules[i].Content, TierTenant), nil
		}
		global = &modules[i]
	}
	if global != nil {
		return r.resolved(ctx, slug, global.Content, TierGlobal), nil
	}

	content, ok := prompt.BuiltinTemplate(slug)
	if !ok {
		logger.FromContext(ctx).Error("No template available for slug", zap.String("slug", slug))
		return Resolution{}, apperror.Internal(op, fmt.Errorf("%w %q", ErrNoBuiltinTemplate, slug))
	}
	return r.resolved(ctx, slug, content, TierBuiltin), nil
}

func (r *TemplateRegistry) resolved(ctx context.Context, slug, content string, tier Tier) Resolution {
	metrics.RecordTemplateResolution(string(tier))
	logger.FromContext(ctx).Debug("Template resolved", zap.String("slug", slug), zap.String("tier", string(tier)))
	return Resolution{Slug: slug, Content: content, Tier: tier}
}

// Upsert replaces the content of the active (scope, slug) module, or inserts
// one. Content that does not parse is rejected.
func (r *TemplateRegistry) Upsert(ctx context.Context, scope model.Scope, slug, content string) (*model.TemplateModule, error) {
	const op = "store.UpsertTemplate"
	defer metrics.TrackDBOperation("template_upsert")(time.Now())

	slug = strings.TrimSpace(slug)
	if err := validateModule(slug, content); err != nil {
		return nil, apperror.Validation(op, "%s", err.Error())
	}

	var module *model.TemplateModule
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		module, err = upsertModule(tx, scope, slug, content)
		return err
	})
	if err != nil {
		return nil, r.writeError(ctx, op, err)
	}

	logger.FromContext(ctx).Info("Template module stored",
		zap.String("scope", scope.Key()),
		zap.String("slug", slug))
	return module, nil
}

// SeedGlobals upserts a batch of global modules in one transaction
func (r *TemplateRegistry) SeedGlobals(ctx context.Context, modules map[string]string) (int, error) {
	const op = "store.SeedGlobals"

	slugs := make([]string, 0, len(modules))
	for slug, content := range modules {
		if err := validateModule(strings.TrimSpace(slug), content); err != nil {
			return 0, apperror.Validation(op, "%s: %s", slug, err.Error())
		}
		slugs = append(slugs, slug)
	}
	sort.Strings(slugs)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, slug := range slugs {
			if _, err := upsertModule(tx, model.GlobalScope(), strings.TrimSpace(slug), modules[slug]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, r.writeError(ctx, op, err)
	}

	logger.FromContext(ctx).Info("Global templates seeded", zap.Strings("slugs", slugs))
	return len(slugs), nil
}

// List returns the active modules of scope ordered by slug
func (r *TemplateRegistry) List(ctx context.Context, scope model.Scope) ([]model.TemplateModule, error) {
	const op = "store.ListTemplates"

	var modules []model.TemplateModule
	if err := r.db.WithContext(ctx).
		Where("scope_key = ? AND is_active = ?", scope.Key(), true).
		Order("slug ASC").
		Find(&modules).Error; err != nil {
		return nil, apperror.Unavailable(op, err)
	}
	return modules, nil
}

func (r *TemplateRegistry) writeError(ctx context.Context, op string, err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperror.Conflict(op, "template module was created concurrently")
	}
	logger.FromContext(ctx).Error("Failed to store template module", zap.String("op", op), zap.Error(err))
	return apperror.Unavailable(op, err)
}

func upsertModule(tx *gorm.DB, scope model.Scope, slug, content string) (*model.TemplateModule, error) {
	var module model.TemplateModule
	err := tx.Where("scope_key = ? AND slug = ? AND is_active = ?", scope.Key(), slug, true).Take(&module).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		module = model.TemplateModule{
			ScopeKey: scope.Key(),
			TenantID: scope.TenantID,
			Slug:     slug,
			Content:  content,
			IsActive: true,
		}
		if err := tx.Create(&module).Error; err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	default:
		if err := tx.Model(&module).Update("content", content).Error; err != nil {
			return nil, err
		}
	}
	return &module, nil
}

func validateModule(slug, content string) error {
	if slug == "" {
		return errors.New("slug is required")
	}
	if len(slug) > 100 {
		return errors.New("slug must be at most 100 characters")
	}
	if _, err := prompt.Parse(content); err != nil {
		return err
	}
	return nil
}
