package specialization

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"dev.helix.dispatch/internal/agenthost"
	"dev.helix.dispatch/internal/events"
	"dev.helix.dispatch/internal/observability/metrics"
	"dev.helix.dispatch/internal/roles"
)

// Controller performs role assignment: it validates the role and agent,
// builds the specialization record, applies the role side-effects to the
// host agent, and commits the record to the store.
type Controller struct {
	store     *Store
	roles     RoleSource
	agents    agenthost.Directory
	log       *logrus.Logger
	collector *metrics.Collector
	bus       *events.Bus
}

// NewController creates an assignment controller.
func NewController(store *Store, roleSource RoleSource, agents agenthost.Directory, log *logrus.Logger) *Controller {
	if log == nil {
		log = logrus.New()
	}
	return &Controller{
		store:  store,
		roles:  roleSource,
		agents: agents,
		log:    log,
	}
}

// Instrument attaches the metrics collector and event bus. Both are optional.
func (c *Controller) Instrument(collector *metrics.Collector, bus *events.Bus) {
	c.collector = collector
	c.bus = bus
}

// Assign binds an agent to a role. Any prior specialization for the agent is
// replaced; performance history is not carried over. When a role side-effect
// is refused by the host the store is left untouched and the error carries
// ErrRoleApplicationFailed.
func (c *Controller) Assign(ctx context.Context, agentID, roleID string, customizations *Customizations) (*AgentSpecialization, error) {
	role, ok := c.roles.Get(roleID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRoleNotFound, roleID)
	}

	agent, ok := c.agents.Resolve(agentID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrAgentNotFound, agentID)
	}

	spec, err := NewAgentSpecialization(agentID, roleID)
	if err != nil {
		return nil, err
	}
	spec.Customizations = customizations.Clone()

	if err := c.applyRole(agent, spec, role); err != nil {
		return nil, err
	}

	c.store.Put(ctx, spec)

	if c.collector != nil {
		c.collector.Assignments.WithLabelValues(roleID).Inc()
	}
	c.bus.Publish(events.NewEvent(events.EventRoleAssigned, "specialization.controller", map[string]interface{}{
		"agent_id": agentID,
		"role_id":  roleID,
	}))

	c.log.WithFields(logrus.Fields{
		"agent": agentID,
		"role":  roleID,
	}).Info("Role assigned")

	return spec, nil
}

// applyRole pushes the merged role view into the host agent through the
// capability-set interface.
func (c *Controller) applyRole(agent agenthost.Agent, spec *AgentSpecialization, role *roles.Role) error {
	if err := agent.SetRole(role.ID); err != nil {
		return fmt.Errorf("%w: set role: %w", ErrRoleApplicationFailed, err)
	}
	if err := agent.SetSystemPrompt(spec.EffectiveSystemPrompt(role)); err != nil {
		return fmt.Errorf("%w: set system prompt: %w", ErrRoleApplicationFailed, err)
	}
	if err := agent.SetCapabilities(spec.EffectiveCapabilities(role)); err != nil {
		return fmt.Errorf("%w: set capabilities: %w", ErrRoleApplicationFailed, err)
	}

	merged := map[string]interface{}{
		"role_id":           role.ID,
		"name":              role.Name,
		"description":       role.Description,
		"capabilities":      spec.EffectiveCapabilities(role),
		"responsibilities":  spec.EffectiveResponsibilities(role),
		"knowledge_domains": spec.EffectiveKnowledgeDomains(role),
		"system_prompt":     spec.EffectiveSystemPrompt(role),
		"default_priority":  role.DefaultPriority,
		"assigned_at":       spec.AssignedAt,
	}
	if err := agent.StoreInContext("role", merged); err != nil {
		return fmt.Errorf("%w: store role context: %w", ErrRoleApplicationFailed, err)
	}

	return nil
}
