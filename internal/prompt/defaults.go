package prompt

// Template module slugs, in the order they are layered into the system prompt
const (
	SlugIdentity       = "identity"
	SlugPersonality    = "personality"
	SlugKnowledgeBase  = "knowledge_base"
	SlugTrustedSources = "trusted_sources"
	SlugGuidelines     = "guidelines"
)

// ModuleOrder is the layering order of the system prompt
var ModuleOrder = []string{
	SlugIdentity,
	SlugPersonality,
	SlugKnowledgeBase,
	SlugTrustedSources,
	SlugGuidelines,
}

var builtinTemplates = map[string]string{
	SlugIdentity: `You are the virtual receptionist for {{company_name}}.{{#if agent_name}} Your name is {{agent_name}}.{{/if}}` +
		`{{#if company_description}}

About the company: {{company_description}}{{/if}}{{#if service_type}}
Service type: {{service_type}}{{/if}}{{#if company_size}}
Company size: {{company_size}}{{/if}}{{#if regions}}
Regions served: {{regions}}{{/if}}`,

	SlugPersonality: `{{#if personality}}Personality and tone: {{personality}}
{{/if}}{{#if language}}Always answer in {{language}}, even if the caller switches language.{{/if}}`,

	SlugKnowledgeBase: `{{#if knowledge_base}}Use the following company knowledge to answer questions. ` +
		`If the answer is not covered, say so and offer to take a message.

{{knowledge_base}}{{/if}}`,

	SlugTrustedSources: `{{#if trusted_sources}}When callers need more detail, you may refer them to these trusted sources:
{{trusted_sources}}{{/if}}`,

	SlugGuidelines: `Keep answers short and conversational; callers are on the phone.
Never invent prices, availability or policies that are not stated above.
If a request needs a human, collect the caller's name and contact details and confirm that someone will follow up.`,
}

// BuiltinTemplate returns the hardcoded default for slug
func BuiltinTemplate(slug string) (string, bool) {
	content, ok := builtinTemplates[slug]
	return content, ok
}

// BuiltinTemplates returns a copy of every built-in default keyed by slug
func BuiltinTemplates() map[string]string {
	out := make(map[string]string, len(builtinTemplates))
	for slug, content := range builtinTemplates {
		out[slug] = content
	}
	return out
}
