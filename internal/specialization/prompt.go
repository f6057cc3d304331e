package specialization

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"dev.helix.dispatch/internal/knowledge"
)

// DomainSource is the slice of the knowledge-domain registry the prompt
// synthesizer consumes.
type DomainSource interface {
	Get(id string) (*knowledge.Domain, bool)
}

// PromptSynthesizer assembles the role-specific prompt an agent receives
// before executing a task. It never fails: when the agent has no
// specialization, or its role no longer resolves, a generic prompt is
// returned instead.
type PromptSynthesizer struct {
	store   *Store
	roles   RoleSource
	domains DomainSource
	log     *logrus.Logger
}

// NewPromptSynthesizer creates a synthesizer over the given store and
// registries.
func NewPromptSynthesizer(store *Store, roleSource RoleSource, domains DomainSource, log *logrus.Logger) *PromptSynthesizer {
	if log == nil {
		log = logrus.New()
	}
	return &PromptSynthesizer{
		store:   store,
		roles:   roleSource,
		domains: domains,
		log:     log,
	}
}

// Generate builds the prompt for an agent and a task description. The role
// defaults are merged with the agent's customizations (customization wins
// per field) and the resolvable knowledge domains are expanded inline.
func (p *PromptSynthesizer) Generate(agentID, taskDescription string) string {
	generic := fmt.Sprintf("You are an AI agent tasked with: %s. Complete this task to the best of your abilities.", taskDescription)

	spec, ok := p.store.Get(agentID)
	if !ok {
		return generic
	}

	role, ok := p.roles.Get(spec.RoleID)
	if !ok {
		p.log.WithFields(logrus.Fields{
			"agent": agentID,
			"role":  spec.RoleID,
		}).Debug("Role no longer resolves; falling back to generic prompt")
		return generic
	}

	sections := []string{
		spec.EffectiveSystemPrompt(role),
		"Current Task: " + taskDescription,
	}

	if block := p.domainSection(spec.EffectiveKnowledgeDomains(role)); block != "" {
		sections = append(sections, block)
	}
	if block := listSection("Your Capabilities:", spec.EffectiveCapabilities(role)); block != "" {
		sections = append(sections, block)
	}
	if block := listSection("Your Responsibilities:", spec.EffectiveResponsibilities(role)); block != "" {
		sections = append(sections, block)
	}

	return strings.Join(sections, "\n\n")
}

// domainSection expands domain ids into a name/description list, skipping
// ids that do not resolve. Returns "" when nothing resolves.
func (p *PromptSynthesizer) domainSection(domainIDs []string) string {
	if p.domains == nil || len(domainIDs) == 0 {
		return ""
	}

	lines := make([]string, 0, len(domainIDs))
	for _, id := range domainIDs {
		if domain, ok := p.domains.Get(id); ok {
			lines = append(lines, fmt.Sprintf("- %s: %s", domain.Name, domain.Description))
		}
	}
	if len(lines) == 0 {
		return ""
	}

	return "Relevant Knowledge Domains:\n" + strings.Join(lines, "\n")
}

// listSection renders a titled bullet list, or "" for an empty list.
func listSection(title string, items []string) string {
	if len(items) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(title)
	for _, item := range items {
		b.WriteString("\n- ")
		b.WriteString(item)
	}
	return b.String()
}
