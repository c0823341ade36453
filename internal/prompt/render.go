package prompt

import (
	"strings"

	"github.com/suteetoe/receptionist/internal/model"
)

// Variable names understood by the built-in templates
const (
	VarCompanyName        = "company_name"
	VarCompanyDescription = "company_description"
	VarServiceType        = "service_type"
	VarCompanySize        = "company_size"
	VarRegions            = "regions"
	VarLanguage           = "language"
	VarPersonality        = "personality"
	VarAgentName          = "agent_name"
	VarKnowledgeBase      = "knowledge_base"
	VarTrustedSources     = "trusted_sources"
)

// RenderKnowledgeBase renders active documents as one text blob, one
// "### <file name>" section per document. The trusted sources record is skipped.
func RenderKnowledgeBase(docs []model.KnowledgeDocument) string {
	var sections []string
	for i := range docs {
		doc := &docs[i]
		if doc.IsTrustedSources() {
			continue
		}
		text := strings.TrimSpace(doc.RawText)
		if text == "" {
			continue
		}
		sections = append(sections, "### "+doc.FileName+"\n"+text)
	}
	return strings.Join(sections, "\n\n")
}

// RenderTrustedSources renders the URL list as a bulleted list
func RenderTrustedSources(urls []string) string {
	if len(urls) == 0 {
		return ""
	}
	lines := make([]string, 0, len(urls))
	for _, u := range urls {
		lines = append(lines, "- "+u)
	}
	return strings.Join(lines, "\n")
}

// BuildVars assembles the variable map from the tenant's active state
func BuildVars(profile *model.CompanyProfileVersion, agent *model.AgentConfigVersion, docs []model.KnowledgeDocument, trusted []string) Vars {
	vars := Vars{
		VarKnowledgeBase:  RenderKnowledgeBase(docs),
		VarTrustedSources: RenderTrustedSources(trusted),
	}
	if profile != nil {
		vars[VarCompanyName] = profile.Name
		vars[VarCompanyDescription] = profile.Description
		vars[VarServiceType] = profile.ServiceType
		vars[VarCompanySize] = profile.CompanySize
		vars[VarRegions] = profile.Regions
		vars[VarLanguage] = profile.Language
		vars[VarPersonality] = profile.Personality
	}
	if agent != nil {
		vars[VarAgentName] = agent.AgentName
	}
	return vars
}
