// Package agenthost defines the minimal contract the dispatch core requires
// from the assistant process that owns the agent pool. The core never manages
// agent lifecycle; it only resolves agents by id and applies role side-effects
// through the capability-set interface.
package agenthost

import (
	"fmt"
	"sync"
)

// Status represents an agent's execution status as reported by its host.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusWorking   Status = "working"
	StatusBlocked   Status = "blocked"
	StatusCompleted Status = "completed"
	StatusAborted   Status = "aborted"
)

// IsTerminal reports whether the agent can no longer accept work.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusAborted
}

// Agent is the capability set the assignment controller and dispatcher
// consume. Mutators return an error when the host refuses the side-effect.
type Agent interface {
	ID() string
	MissionID() string
	Status() Status

	SetRole(roleID string) error
	SetSystemPrompt(prompt string) error
	SetCapabilities(capabilities []string) error
	StoreInContext(key string, value interface{}) error
}

// Directory resolves agent ids to live agents. It is the core's only view of
// the agent pool.
type Directory interface {
	Resolve(agentID string) (Agent, bool)
}

// LocalAgent is a thread-safe in-memory Agent implementation used by
// embedders that host the pool in-process, and by tests.
type LocalAgent struct {
	id        string
	missionID string

	mu           sync.RWMutex
	status       Status
	roleID       string
	systemPrompt string
	capabilities []string
	context      map[string]interface{}
}

// NewLocalAgent creates an idle local agent bound to a mission.
func NewLocalAgent(id, missionID string) *LocalAgent {
	return &LocalAgent{
		id:        id,
		missionID: missionID,
		status:    StatusIdle,
		context:   make(map[string]interface{}),
	}
}

func (a *LocalAgent) ID() string        { return a.id }
func (a *LocalAgent) MissionID() string { return a.missionID }

func (a *LocalAgent) Status() Status {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.status
}

// SetStatus updates the agent status. Host-side only; not part of the
// capability set the core consumes.
func (a *LocalAgent) SetStatus(status Status) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.status = status
}

func (a *LocalAgent) SetRole(roleID string) error {
	if roleID == "" {
		return fmt.Errorf("role id cannot be empty")
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.roleID = roleID
	return nil
}

func (a *LocalAgent) SetSystemPrompt(prompt string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.systemPrompt = prompt
	return nil
}

func (a *LocalAgent) SetCapabilities(capabilities []string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.capabilities = append([]string(nil), capabilities...)
	return nil
}

func (a *LocalAgent) StoreInContext(key string, value interface{}) error {
	if key == "" {
		return fmt.Errorf("context key cannot be empty")
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.context[key] = value
	return nil
}

// RoleID returns the currently applied role id.
func (a *LocalAgent) RoleID() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.roleID
}

// SystemPrompt returns the currently applied system prompt.
func (a *LocalAgent) SystemPrompt() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.systemPrompt
}

// Capabilities returns a copy of the applied capability list.
func (a *LocalAgent) Capabilities() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return append([]string(nil), a.capabilities...)
}

// ContextValue returns a value previously stored via StoreInContext.
func (a *LocalAgent) ContextValue(key string) (interface{}, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	v, ok := a.context[key]
	return v, ok
}

// LocalDirectory is a thread-safe in-memory Directory.
type LocalDirectory struct {
	mu     sync.RWMutex
	agents map[string]Agent
}

// NewLocalDirectory creates an empty directory.
func NewLocalDirectory() *LocalDirectory {
	return &LocalDirectory{
		agents: make(map[string]Agent),
	}
}

// Add registers an agent. A second Add with the same id replaces the entry.
func (d *LocalDirectory) Add(agent Agent) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.agents[agent.ID()] = agent
}

// Remove drops an agent from the directory.
func (d *LocalDirectory) Remove(agentID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.agents, agentID)
}

func (d *LocalDirectory) Resolve(agentID string) (Agent, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	agent, ok := d.agents[agentID]
	return agent, ok
}

// List returns all registered agents.
func (d *LocalDirectory) List() []Agent {
	d.mu.RLock()
	defer d.mu.RUnlock()

	result := make([]Agent, 0, len(d.agents))
	for _, agent := range d.agents {
		result = append(result, agent)
	}
	return result
}
