// Package knowledge provides the knowledge-domain registry: the catalogue of
// domains roles and agents can reference for specialization and prompt
// context.
package knowledge

// ResourceType identifies the kind of resource attached to a domain.
type ResourceType string

const (
	ResourceDocument ResourceType = "document"
	ResourceAPI      ResourceType = "api"
	ResourceDatabase ResourceType = "database"
	ResourceModel    ResourceType = "model"
	ResourceTool     ResourceType = "tool"
)

// Resource points at an external source of domain knowledge. Resources are
// opaque to the core; order is preserved.
type Resource struct {
	Type         ResourceType `json:"type"`
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Description  string       `json:"description"`
	AccessMethod string       `json:"access_method"`
}

// Domain describes one knowledge domain. Parent and subdomain links are
// advisory back-references stored as ids only; the registry does not enforce
// graph consistency or acyclicity.
type Domain struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Description  string     `json:"description"`
	ParentDomain string     `json:"parent_domain,omitempty"`
	Subdomains   []string   `json:"subdomains,omitempty"`
	Keywords     []string   `json:"keywords,omitempty"`
	Resources    []Resource `json:"resources,omitempty"`
}

// PredefinedDomains returns the built-in domains referenced by the predefined
// roles.
func PredefinedDomains() []*Domain {
	return []*Domain{
		{
			Name:        "Project Management",
			Description: "Planning, delegation, and tracking of multi-agent work",
			Keywords:    []string{"planning", "delegation", "milestones", "coordination"},
		},
		{
			Name:        "Research Methodology",
			Description: "Finding, evaluating, and synthesizing information from sources",
			Keywords:    []string{"sources", "evidence", "citation", "synthesis"},
		},
		{
			Name:        "Content Creation",
			Description: "Drafting, editing, and adapting written and creative content",
			Keywords:    []string{"writing", "drafting", "tone", "audience"},
		},
		{
			Name:        "Quality Assurance",
			Description: "Reviewing outputs, identifying defects, and scoring quality",
			Keywords:    []string{"review", "defects", "scoring", "feedback"},
		},
		{
			Name:        "Operations",
			Description: "Executing concrete tasks with tools and reporting results",
			Keywords:    []string{"execution", "tools", "automation", "reporting"},
		},
		{
			Name:        "General Knowledge",
			Description: "Broad factual knowledge spanning common domains",
			Keywords:    []string{"facts", "definitions", "concepts"},
		},
	}
}
