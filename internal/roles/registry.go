// Package roles provides the role registry: the catalogue of role
// definitions agents can be specialized into. The registry is constructed
// once at boot with the predefined catalogue and may be extended at runtime.
package roles

import (
	"regexp"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// Role is a named bundle of capabilities, responsibilities, knowledge-domain
// references, and a system-prompt template. Roles are immutable after
// registration; re-registering the same derived id replaces the definition.
type Role struct {
	ID               string                 `json:"id"`
	Name             string                 `json:"name"`
	Description      string                 `json:"description"`
	Capabilities     []string               `json:"capabilities"`
	Responsibilities []string               `json:"responsibilities"`
	KnowledgeDomains []string               `json:"knowledge_domains"`
	SystemPrompt     string                 `json:"system_prompt"`
	DefaultPriority  int                    `json:"default_priority"`
	Metadata         map[string]interface{} `json:"metadata,omitempty"`
}

var idSanitizer = regexp.MustCompile(`[^a-z0-9_]+`)

// DeriveID derives a stable role id from a display name: lowercase, with any
// run of characters outside [a-z0-9_] collapsed to a single underscore.
func DeriveID(name string) string {
	return idSanitizer.ReplaceAllString(strings.ToLower(name), "_")
}

// Registry manages the collection of role definitions.
type Registry struct {
	mu    sync.RWMutex
	roles map[string]*Role
	order []string // registration order, for stable iteration
	log   *logrus.Logger
}

// NewRegistry creates a registry pre-populated with the predefined roles.
func NewRegistry() *Registry {
	r := &Registry{
		roles: make(map[string]*Role),
		log:   logrus.New(),
	}

	for _, role := range PredefinedRoles() {
		r.register(role)
	}

	return r
}

// SetLogger sets the logger for the registry.
func (r *Registry) SetLogger(log *logrus.Logger) {
	r.log = log
}

// Register adds a role, deriving its id from the name. An existing role with
// the same derived id is replaced in place; its iteration position is kept.
func (r *Registry) Register(role *Role) *Role {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.register(role)
}

// register requires the write lock to be held.
func (r *Registry) register(role *Role) *Role {
	role.ID = DeriveID(role.Name)

	if _, exists := r.roles[role.ID]; !exists {
		r.order = append(r.order, role.ID)
	}
	r.roles[role.ID] = role

	r.log.WithFields(logrus.Fields{
		"role":     role.ID,
		"priority": role.DefaultPriority,
	}).Debug("Role registered")

	return role
}

// Get retrieves a role by id.
func (r *Registry) Get(id string) (*Role, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	role, ok := r.roles[id]
	return role, ok
}

// List returns all roles in registration order.
func (r *Registry) List() []*Role {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*Role, 0, len(r.order))
	for _, id := range r.order {
		result = append(result, r.roles[id])
	}
	return result
}

// Count returns the number of registered roles.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.roles)
}
