package specialization

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dev.helix.dispatch/internal/agenthost"
	"dev.helix.dispatch/internal/roles"
)

// =============================================================================
// Assign Tests
// =============================================================================

func TestController_Assign(t *testing.T) {
	store, registry, directory := newTestFixture()
	agent := agenthost.NewLocalAgent("agent-1", "mission-1")
	directory.Add(agent)

	c := NewController(store, registry, directory, nil)
	spec, err := c.Assign(context.Background(), "agent-1", roles.RoleResearcher, nil)
	require.NoError(t, err)

	assert.Equal(t, "agent-1", spec.AgentID)
	assert.Equal(t, roles.RoleResearcher, spec.RoleID)
	assert.Empty(t, spec.PerformanceByTask)

	// The record is committed to the store.
	stored, ok := store.Get("agent-1")
	require.True(t, ok)
	assert.Equal(t, roles.RoleResearcher, stored.RoleID)

	// And the role side-effects were applied to the host agent.
	role, _ := registry.Get(roles.RoleResearcher)
	assert.Equal(t, roles.RoleResearcher, agent.RoleID())
	assert.Equal(t, role.SystemPrompt, agent.SystemPrompt())
	assert.Equal(t, role.Capabilities, agent.Capabilities())

	ctxValue, ok := agent.ContextValue("role")
	require.True(t, ok)
	merged, ok := ctxValue.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, roles.RoleResearcher, merged["role_id"])
	assert.Equal(t, role.Name, merged["name"])
	assert.Equal(t, role.DefaultPriority, merged["default_priority"])
}

func TestController_Assign_WithCustomizations(t *testing.T) {
	store, registry, directory := newTestFixture()
	agent := agenthost.NewLocalAgent("agent-1", "")
	directory.Add(agent)

	custom := &Customizations{
		SystemPrompt: "Custom researcher prompt.",
		Capabilities: []string{"special_cap"},
	}

	c := NewController(store, registry, directory, nil)
	spec, err := c.Assign(context.Background(), "agent-1", roles.RoleResearcher, custom)
	require.NoError(t, err)

	assert.Equal(t, "Custom researcher prompt.", agent.SystemPrompt())
	assert.Equal(t, []string{"special_cap"}, agent.Capabilities())

	// The controller stores a copy, not the caller's value.
	custom.Capabilities[0] = "mutated"
	assert.Equal(t, "special_cap", spec.Customizations.Capabilities[0])
}

func TestController_Assign_ReplacesPriorSpecialization(t *testing.T) {
	store, registry, directory := newTestFixture()
	directory.Add(agenthost.NewLocalAgent("agent-1", ""))

	c := NewController(store, registry, directory, nil)
	_, err := c.Assign(context.Background(), "agent-1", roles.RoleResearcher, nil)
	require.NoError(t, err)

	// Accumulate some history under the first role.
	a := NewAccountant(store, nil)
	require.NoError(t, a.RecordCompletion(context.Background(), "agent-1", "analyze", true, 1))

	_, err = c.Assign(context.Background(), "agent-1", roles.RoleCritic, nil)
	require.NoError(t, err)

	// Re-assignment starts fresh: no performance carry-over.
	stored, _ := store.Get("agent-1")
	assert.Equal(t, roles.RoleCritic, stored.RoleID)
	assert.Empty(t, stored.PerformanceByTask)
	assert.Equal(t, 1, store.Count())
}

// =============================================================================
// Error Path Tests
// =============================================================================

func TestController_Assign_UnknownRole(t *testing.T) {
	store, registry, directory := newTestFixture()
	directory.Add(agenthost.NewLocalAgent("agent-1", ""))

	c := NewController(store, registry, directory, nil)
	_, err := c.Assign(context.Background(), "agent-1", "no_such_role", nil)

	assert.ErrorIs(t, err, ErrRoleNotFound)
	assert.Equal(t, 0, store.Count())
}

func TestController_Assign_UnknownAgent(t *testing.T) {
	store, registry, directory := newTestFixture()

	c := NewController(store, registry, directory, nil)
	_, err := c.Assign(context.Background(), "ghost", roles.RoleResearcher, nil)

	assert.ErrorIs(t, err, ErrAgentNotFound)
	assert.Equal(t, 0, store.Count())
}

func TestController_Assign_HostRefusesSideEffect(t *testing.T) {
	for _, refuse := range []string{"role", "prompt", "capabilities", "context"} {
		t.Run(refuse, func(t *testing.T) {
			store, registry, directory := newTestFixture()
			directory.Add(&refusingAgent{
				LocalAgent: agenthost.NewLocalAgent("agent-1", ""),
				refuse:     refuse,
			})

			c := NewController(store, registry, directory, nil)
			_, err := c.Assign(context.Background(), "agent-1", roles.RoleResearcher, nil)

			require.ErrorIs(t, err, ErrRoleApplicationFailed)
			// A refused side-effect leaves the store untouched.
			assert.Equal(t, 0, store.Count())
		})
	}
}

func TestController_Assign_Flushes(t *testing.T) {
	gateway := &memGateway{}
	registry := roles.NewRegistry()
	store := NewStore(context.Background(), gateway, registry, nil)
	directory := agenthost.NewLocalDirectory()
	directory.Add(agenthost.NewLocalAgent("agent-1", ""))

	c := NewController(store, registry, directory, nil)
	_, err := c.Assign(context.Background(), "agent-1", roles.RoleExecutor, nil)
	require.NoError(t, err)

	require.Equal(t, 1, gateway.flushCount())
	flushed := gateway.lastFlush()
	require.Len(t, flushed, 1)
	assert.Equal(t, roles.RoleExecutor, flushed[0].RoleID)
}
