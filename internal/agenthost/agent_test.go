package agenthost

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Status Tests
// =============================================================================

func TestStatus_IsTerminal(t *testing.T) {
	assert.False(t, StatusIdle.IsTerminal())
	assert.False(t, StatusWorking.IsTerminal())
	assert.False(t, StatusBlocked.IsTerminal())
	assert.True(t, StatusCompleted.IsTerminal())
	assert.True(t, StatusAborted.IsTerminal())
}

// =============================================================================
// LocalAgent Tests
// =============================================================================

func TestNewLocalAgent(t *testing.T) {
	a := NewLocalAgent("agent-1", "mission-1")

	assert.Equal(t, "agent-1", a.ID())
	assert.Equal(t, "mission-1", a.MissionID())
	assert.Equal(t, StatusIdle, a.Status())
}

func TestLocalAgent_RoleSideEffects(t *testing.T) {
	a := NewLocalAgent("agent-1", "")

	require.NoError(t, a.SetRole("researcher"))
	require.NoError(t, a.SetSystemPrompt("prompt"))
	require.NoError(t, a.SetCapabilities([]string{"cap-a", "cap-b"}))
	require.NoError(t, a.StoreInContext("role", map[string]interface{}{"role_id": "researcher"}))

	assert.Equal(t, "researcher", a.RoleID())
	assert.Equal(t, "prompt", a.SystemPrompt())
	assert.Equal(t, []string{"cap-a", "cap-b"}, a.Capabilities())

	v, ok := a.ContextValue("role")
	require.True(t, ok)
	assert.Contains(t, v.(map[string]interface{}), "role_id")
}

func TestLocalAgent_Validation(t *testing.T) {
	a := NewLocalAgent("agent-1", "")

	assert.Error(t, a.SetRole(""))
	assert.Error(t, a.StoreInContext("", "value"))
}

func TestLocalAgent_CapabilitiesCopied(t *testing.T) {
	a := NewLocalAgent("agent-1", "")

	caps := []string{"original"}
	require.NoError(t, a.SetCapabilities(caps))
	caps[0] = "mutated"

	assert.Equal(t, []string{"original"}, a.Capabilities())
}

func TestLocalAgent_SetStatus(t *testing.T) {
	a := NewLocalAgent("agent-1", "")

	a.SetStatus(StatusWorking)
	assert.Equal(t, StatusWorking, a.Status())

	a.SetStatus(StatusCompleted)
	assert.True(t, a.Status().IsTerminal())
}

func TestLocalAgent_ConcurrentAccess(t *testing.T) {
	a := NewLocalAgent("agent-1", "")

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			_ = a.SetRole("researcher")
			_ = a.StoreInContext(fmt.Sprintf("key-%d", n), n)
		}(i)
		go func() {
			defer wg.Done()
			a.Status()
			a.RoleID()
			a.Capabilities()
		}()
	}
	wg.Wait()

	assert.Equal(t, "researcher", a.RoleID())
}

// =============================================================================
// LocalDirectory Tests
// =============================================================================

func TestLocalDirectory(t *testing.T) {
	d := NewLocalDirectory()

	_, ok := d.Resolve("agent-1")
	assert.False(t, ok)

	d.Add(NewLocalAgent("agent-1", "mission-1"))
	agent, ok := d.Resolve("agent-1")
	require.True(t, ok)
	assert.Equal(t, "mission-1", agent.MissionID())

	assert.Len(t, d.List(), 1)

	d.Remove("agent-1")
	_, ok = d.Resolve("agent-1")
	assert.False(t, ok)
}

func TestLocalDirectory_AddReplaces(t *testing.T) {
	d := NewLocalDirectory()

	d.Add(NewLocalAgent("agent-1", "mission-1"))
	d.Add(NewLocalAgent("agent-1", "mission-2"))

	agent, ok := d.Resolve("agent-1")
	require.True(t, ok)
	assert.Equal(t, "mission-2", agent.MissionID())
	assert.Len(t, d.List(), 1)
}

func TestLocalDirectory_ConcurrentAccess(t *testing.T) {
	d := NewLocalDirectory()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			d.Add(NewLocalAgent(fmt.Sprintf("agent-%d", n), ""))
		}(i)
		go func(n int) {
			defer wg.Done()
			d.Resolve(fmt.Sprintf("agent-%d", n))
			d.List()
		}(i)
	}
	wg.Wait()

	assert.Len(t, d.List(), 10)
}
