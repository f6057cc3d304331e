package specialization

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"dev.helix.dispatch/internal/agenthost"
	"dev.helix.dispatch/internal/roles"
)

// =============================================================================
// Test Doubles
// =============================================================================

// memGateway is an in-memory CollectionStore recording every flush.
type memGateway struct {
	mu       sync.Mutex
	records  []json.RawMessage
	flushes  [][]byte
	storeErr error
}

func (g *memGateway) LoadCollection(ctx context.Context, name string) []json.RawMessage {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.records
}

func (g *memGateway) StoreCollection(ctx context.Context, name string, records interface{}) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.storeErr != nil {
		return g.storeErr
	}
	data, err := json.Marshal(records)
	if err != nil {
		return err
	}
	g.flushes = append(g.flushes, data)
	return nil
}

func (g *memGateway) flushCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.flushes)
}

func (g *memGateway) lastFlush() []*AgentSpecialization {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.flushes) == 0 {
		return nil
	}
	var specs []*AgentSpecialization
	if err := json.Unmarshal(g.flushes[len(g.flushes)-1], &specs); err != nil {
		return nil
	}
	return specs
}

// refusingAgent refuses a chosen role side-effect, for assignment failure
// paths.
type refusingAgent struct {
	*agenthost.LocalAgent
	refuse string
}

func (a *refusingAgent) SetRole(roleID string) error {
	if a.refuse == "role" {
		return errors.New("host refused role")
	}
	return a.LocalAgent.SetRole(roleID)
}

func (a *refusingAgent) SetSystemPrompt(prompt string) error {
	if a.refuse == "prompt" {
		return errors.New("host refused prompt")
	}
	return a.LocalAgent.SetSystemPrompt(prompt)
}

func (a *refusingAgent) SetCapabilities(capabilities []string) error {
	if a.refuse == "capabilities" {
		return errors.New("host refused capabilities")
	}
	return a.LocalAgent.SetCapabilities(capabilities)
}

func (a *refusingAgent) StoreInContext(key string, value interface{}) error {
	if a.refuse == "context" {
		return errors.New("host refused context")
	}
	return a.LocalAgent.StoreInContext(key, value)
}

// newTestFixture wires a store, role registry, and directory for dispatch
// tests.
func newTestFixture() (*Store, *roles.Registry, *agenthost.LocalDirectory) {
	registry := roles.NewRegistry()
	store := NewStore(context.Background(), nil, registry, nil)
	directory := agenthost.NewLocalDirectory()
	return store, registry, directory
}

// mustSpec builds a stored specialization for an agent already in the
// directory.
func mustSpec(store *Store, agentID, roleID string) *AgentSpecialization {
	spec, err := NewAgentSpecialization(agentID, roleID)
	if err != nil {
		panic(err)
	}
	store.Put(context.Background(), spec)
	return spec
}
