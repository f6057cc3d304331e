package specialization

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"dev.helix.dispatch/internal/events"
	"dev.helix.dispatch/internal/observability/metrics"
)

// CollectionName is the envelope document id under which all specializations
// are persisted.
const CollectionName = "agent_specializations"

// CollectionStore is the slice of the persistence gateway the store uses.
type CollectionStore interface {
	LoadCollection(ctx context.Context, name string) []json.RawMessage
	StoreCollection(ctx context.Context, name string, records interface{}) error
}

// Store holds all agent specializations in memory and flushes the complete
// collection to the persistence gateway after every mutation. The in-memory
// snapshot is the source of truth between flushes; flush failures are logged
// and swallowed, and the next successful flush repairs the store.
type Store struct {
	mu    sync.RWMutex
	specs map[string]*AgentSpecialization
	order []string // insertion order, the dispatch tie-break

	gateway CollectionStore
	flushMu sync.Mutex // serializes flushes; never held together with mu

	roles     RoleSource
	log       *logrus.Logger
	collector *metrics.Collector
	bus       *events.Bus
}

// NewStore creates a store hydrated from the persisted collection. The role
// source is only used to warn about dangling role references on load; it may
// be nil.
func NewStore(ctx context.Context, gateway CollectionStore, roleSource RoleSource, log *logrus.Logger) *Store {
	if log == nil {
		log = logrus.New()
	}

	s := &Store{
		specs:   make(map[string]*AgentSpecialization),
		gateway: gateway,
		roles:   roleSource,
		log:     log,
	}
	s.hydrate(ctx)

	return s
}

// Instrument attaches the metrics collector and event bus. Both are optional.
func (s *Store) Instrument(collector *metrics.Collector, bus *events.Bus) {
	s.collector = collector
	s.bus = bus
}

// hydrate loads the persisted collection. Records carrying the legacy
// top-level proficiency number instead of a performance map load with an
// empty map. Dangling role references are tolerated with a warning; such
// specializations are excluded from dispatch until the role reappears.
func (s *Store) hydrate(ctx context.Context) {
	if s.gateway == nil {
		return
	}

	records := s.gateway.LoadCollection(ctx, CollectionName)
	loaded := 0
	for _, record := range records {
		var stored struct {
			AgentSpecialization
			LegacyProficiency *float64 `json:"proficiency,omitempty"`
		}
		if err := json.Unmarshal(record, &stored); err != nil {
			s.log.WithError(err).Warn("Skipping malformed specialization record")
			continue
		}

		spec := stored.AgentSpecialization
		if spec.AgentID == "" || spec.RoleID == "" {
			s.log.Warn("Skipping specialization record with missing ids")
			continue
		}
		if spec.PerformanceByTask == nil {
			spec.PerformanceByTask = make(map[string]*TaskPerformanceMetrics)
		}
		if stored.LegacyProficiency != nil {
			s.log.WithField("agent", spec.AgentID).Debug("Legacy proficiency record loaded with empty performance map")
		}
		if s.roles != nil {
			if _, ok := s.roles.Get(spec.RoleID); !ok {
				s.log.WithFields(logrus.Fields{
					"agent": spec.AgentID,
					"role":  spec.RoleID,
				}).Warn("Specialization references unknown role; excluded from dispatch until the role is registered")
			}
		}

		s.mu.Lock()
		if _, exists := s.specs[spec.AgentID]; !exists {
			s.order = append(s.order, spec.AgentID)
		}
		s.specs[spec.AgentID] = &spec
		s.mu.Unlock()
		loaded++
	}

	if loaded > 0 {
		s.log.WithField("count", loaded).Info("Agent specializations hydrated from store")
	}
}

// Get returns a copy of the specialization for an agent.
func (s *Store) Get(agentID string) (*AgentSpecialization, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	spec, ok := s.specs[agentID]
	if !ok {
		return nil, false
	}
	return spec.Clone(), true
}

// ListByRole returns copies of all specializations bound to a role, in
// insertion order.
func (s *Store) ListByRole(roleID string) []*AgentSpecialization {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*AgentSpecialization, 0)
	for _, agentID := range s.order {
		if spec := s.specs[agentID]; spec.RoleID == roleID {
			result = append(result, spec.Clone())
		}
	}
	return result
}

// ListAll returns copies of all specializations in insertion order.
func (s *Store) ListAll() []*AgentSpecialization {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*AgentSpecialization, 0, len(s.order))
	for _, agentID := range s.order {
		result = append(result, s.specs[agentID].Clone())
	}
	return result
}

// Put stores a specialization, replacing any prior record for the same agent
// id. The replacement counts as a new insertion for tie-break purposes. The
// full collection is flushed afterwards.
func (s *Store) Put(ctx context.Context, spec *AgentSpecialization) {
	s.mu.Lock()
	if _, exists := s.specs[spec.AgentID]; exists {
		s.removeFromOrder(spec.AgentID)
	}
	s.order = append(s.order, spec.AgentID)
	s.specs[spec.AgentID] = spec.Clone()
	s.mu.Unlock()

	s.Flush(ctx)
}

// Delete removes an agent's specialization. Returns false when none existed.
func (s *Store) Delete(ctx context.Context, agentID string) bool {
	s.mu.Lock()
	_, existed := s.specs[agentID]
	if existed {
		delete(s.specs, agentID)
		s.removeFromOrder(agentID)
	}
	s.mu.Unlock()

	if existed {
		s.Flush(ctx)
	}
	return existed
}

// Update applies a read-modify-write to one specialization under the
// exclusive lock, then flushes. The record's tie-break position is kept.
func (s *Store) Update(ctx context.Context, agentID string, apply func(*AgentSpecialization)) error {
	s.mu.Lock()
	spec, ok := s.specs[agentID]
	if !ok {
		s.mu.Unlock()
		return ErrSpecializationNotFound
	}
	apply(spec)
	s.mu.Unlock()

	s.Flush(ctx)
	return nil
}

// removeFromOrder requires the write lock to be held.
func (s *Store) removeFromOrder(agentID string) {
	for i, id := range s.order {
		if id == agentID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			return
		}
	}
}

// Flush writes the complete collection to the gateway. The snapshot is
// copied under the read lock and the network call happens outside it;
// concurrent flushes are serialized so the last writer wins on the store.
// Failures are logged and swallowed.
func (s *Store) Flush(ctx context.Context) {
	if s.gateway == nil {
		return
	}

	snapshot := s.ListAll()

	s.flushMu.Lock()
	defer s.flushMu.Unlock()

	start := time.Now()
	err := s.gateway.StoreCollection(ctx, CollectionName, snapshot)
	elapsed := time.Since(start)

	if s.collector != nil {
		s.collector.FlushDuration.Observe(elapsed.Seconds())
	}

	if err != nil {
		if s.collector != nil {
			s.collector.FlushFailures.Inc()
		}
		s.log.WithError(err).Warn("Failed to flush specializations; in-memory state remains canonical")
		return
	}

	s.bus.Publish(events.NewEvent(events.EventCollectionFlushed, "specialization.store", map[string]interface{}{
		"collection": CollectionName,
		"records":    len(snapshot),
	}))
}

// Count returns the number of stored specializations.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.specs)
}
