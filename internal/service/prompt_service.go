// Package service assembles the system prompt from a tenant's active state.
package service

import (
	"context"
	"errors"
	"strings"

	"github.com/suteetoe/receptionist/internal/apperror"
	"github.com/suteetoe/receptionist/internal/model"
	"github.com/suteetoe/receptionist/internal/prompt"
	"github.com/suteetoe/receptionist/internal/store"
	"github.com/suteetoe/receptionist/pkg/logger"
	"github.com/suteetoe/receptionist/pkg/metrics"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

type TenantResolver interface {
	Resolve(ctx context.Context, externalID string) (*model.Tenant, error)
}

type ProfileReader interface {
	GetActive(ctx context.Context, tenantID uint) (*model.CompanyProfileVersion, error)
}

type AgentReader interface {
	GetActive(ctx context.Context, tenantID uint) (*model.AgentConfigVersion, error)
}

type KnowledgeReader interface {
	ListActive(ctx context.Context, tenantID uint) ([]model.KnowledgeDocument, error)
	GetTrustedSources(ctx context.Context, tenantID uint) ([]string, error)
}

type TemplateResolver interface {
	GetEffectiveTemplate(ctx context.Context, tenantID uint, slug string) (store.Resolution, error)
}

// ModuleTrace records which tier supplied each module of a prompt
type ModuleTrace struct {
	Slug string     `json:"slug"`
	Tier store.Tier `json:"tier"`
}

// AssembledPrompt is everything the LLM collaborator needs besides the
// conversation history.
type AssembledPrompt struct {
	TenantID      uint           `json:"tenant_id"`
	SystemPrompt  string         `json:"system_prompt"`
	Model         string         `json:"model"`
	Temperature   float64        `json:"temperature"`
	VoiceSettings datatypes.JSON `json:"voice_settings,omitempty"`
	Modules       []ModuleTrace  `json:"modules"`
}

// PromptService resolves a tenant's configuration and composes its prompt
type PromptService struct {
	tenants   TenantResolver
	profiles  ProfileReader
	agents    AgentReader
	knowledge KnowledgeReader
	templates TemplateResolver
	composer  *prompt.Composer
}

func NewPromptService(tenants TenantResolver, profiles ProfileReader, agents AgentReader, knowledge KnowledgeReader, templates TemplateResolver) *PromptService {
	return &PromptService{
		tenants:   tenants,
		profiles:  profiles,
		agents:    agents,
		knowledge: knowledge,
		templates: templates,
		composer:  prompt.NewComposer(),
	}
}

// Build composes the system prompt for the tenant identified by externalID.
// If any configuration read fails the composer is not run. No partially
// composed prompt is ever returned.
func (s *PromptService) Build(ctx context.Context, externalID, appendix string) (*AssembledPrompt, error) {
	tenant, err := s.tenants.Resolve(ctx, externalID)
	if err != nil {
		recordResult(err)
		return nil, err
	}
	return s.BuildForTenant(ctx, tenant.ID, appendix)
}

// BuildForTenant is Build for an already resolved tenant
func (s *PromptService) BuildForTenant(ctx context.Context, tenantID uint, appendix string) (*AssembledPrompt, error) {
	result, err := s.build(ctx, tenantID, appendix)
	recordResult(err)
	if err != nil {
		logger.FromContext(ctx).Warn("Prompt composition failed",
			zap.Uint("tenant_id", tenantID),
			zap.Error(err))
		return nil, err
	}
	return result, nil
}

func (s *PromptService) build(ctx context.Context, tenantID uint, appendix string) (*AssembledPrompt, error) {
	const op = "service.BuildPrompt"

	profile, err := s.profiles.GetActive(ctx, tenantID)
	if err != nil {
		return nil, unavailable(op, err)
	}
	agent, err := s.agents.GetActive(ctx, tenantID)
	if err != nil {
		return nil, unavailable(op, err)
	}
	docs, err := s.knowledge.ListActive(ctx, tenantID)
	if err != nil {
		return nil, unavailable(op, err)
	}
	trusted, err := s.knowledge.GetTrustedSources(ctx, tenantID)
	if err != nil {
		return nil, unavailable(op, err)
	}

	vars := prompt.BuildVars(profile, agent, docs, trusted)

	sections := make([]string, 0, len(prompt.ModuleOrder))
	traces := make([]ModuleTrace, 0, len(prompt.ModuleOrder))
	for _, slug := range prompt.ModuleOrder {
		res, err := s.templates.GetEffectiveTemplate(ctx, tenantID, slug)
		if err != nil {
			return nil, unavailable(op, err)
		}
		section, err := s.composer.Compose(res.Content, vars, "")
		if err != nil {
			return nil, apperror.Internal(op, err)
		}
		traces = append(traces, ModuleTrace{Slug: slug, Tier: res.Tier})
		if section = strings.TrimSpace(section); section != "" {
			sections = append(sections, section)
		}
	}

	return &AssembledPrompt{
		TenantID:      tenantID,
		SystemPrompt:  s.composer.Attach(strings.Join(sections, "\n\n"), appendix),
		Model:         agent.Model,
		Temperature:   agent.Temperature,
		VoiceSettings: agent.VoiceSettings,
		Modules:       traces,
	}, nil
}

// unavailable keeps typed errors and turns anything else into
// ErrConfigurationUnavailable.
func unavailable(op string, err error) error {
	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		return err
	}
	return apperror.Unavailable(op, err)
}

func recordResult(err error) {
	switch {
	case err == nil:
		metrics.RecordPromptComposition("ok")
	case errors.Is(err, apperror.ErrNotFound):
		metrics.RecordPromptComposition("not_found")
	case errors.Is(err, apperror.ErrConfigurationUnavailable):
		metrics.RecordPromptComposition("unavailable")
	default:
		metrics.RecordPromptComposition("error")
	}
}
