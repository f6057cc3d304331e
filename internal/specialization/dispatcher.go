package specialization

import (
	"sort"

	"github.com/sirupsen/logrus"

	"dev.helix.dispatch/internal/agenthost"
	"dev.helix.dispatch/internal/events"
	"dev.helix.dispatch/internal/observability/metrics"
	"dev.helix.dispatch/internal/roles"
)

// Scoring weights for the per-task proficiency and the dispatch bonuses.
const (
	proficiencySuccessWeight    = 0.4
	proficiencyExperienceWeight = 0.2
	proficiencyQualityWeight    = 0.4
	experienceCeiling           = 20.0 // tasks until full experience credit
	defaultProficiency          = 50.0
	domainBonusMax              = 20.0
	missionBonus                = 30.0
)

// Request describes one dispatch query: the required role plus optional task
// verb, knowledge domains, and mission affinity.
type Request struct {
	RoleID    string   `json:"role_id"`
	TaskVerb  string   `json:"task_verb,omitempty"`
	DomainIDs []string `json:"domain_ids,omitempty"`
	MissionID string   `json:"mission_id,omitempty"`
}

// Dispatcher selects the best agent for a task. It never fails: an empty
// candidate set yields a not-found result, and candidates whose role or
// agent cannot be resolved are silently dropped.
type Dispatcher struct {
	store     *Store
	roles     RoleSource
	agents    agenthost.Directory
	log       *logrus.Logger
	collector *metrics.Collector
	bus       *events.Bus
}

// NewDispatcher creates a dispatcher over the given store, role source, and
// agent directory.
func NewDispatcher(store *Store, roleSource RoleSource, agents agenthost.Directory, log *logrus.Logger) *Dispatcher {
	if log == nil {
		log = logrus.New()
	}
	return &Dispatcher{
		store:  store,
		roles:  roleSource,
		agents: agents,
		log:    log,
	}
}

// Instrument attaches the metrics collector and event bus. Both are optional.
func (d *Dispatcher) Instrument(collector *metrics.Collector, bus *events.Bus) {
	d.collector = collector
	d.bus = bus
}

type candidate struct {
	spec  *AgentSpecialization
	agent agenthost.Agent
	score float64
}

// FindBestAgent ranks the eligible agents for the request and returns the
// winner's id. The boolean is false when no eligible agent exists. Given the
// same inputs over unchanged state the result is deterministic: ties are
// broken by the insertion order of the specialization records.
func (d *Dispatcher) FindBestAgent(req Request) (string, bool) {
	role, ok := d.roles.Get(req.RoleID)
	if !ok {
		d.observe(req, nil)
		return "", false
	}

	candidates := make([]*candidate, 0)
	for _, spec := range d.store.ListByRole(req.RoleID) {
		agent, ok := d.agents.Resolve(spec.AgentID)
		if !ok {
			continue
		}
		if agent.Status().IsTerminal() {
			continue
		}
		candidates = append(candidates, &candidate{spec: spec, agent: agent})
	}

	// Mission affinity narrows the pool but never empties it: when no
	// candidate belongs to the mission, fall back to the full set.
	if req.MissionID != "" {
		filtered := make([]*candidate, 0, len(candidates))
		for _, c := range candidates {
			if c.agent.MissionID() == req.MissionID {
				filtered = append(filtered, c)
			}
		}
		if len(filtered) > 0 {
			candidates = filtered
		}
	}

	if len(candidates) == 0 {
		d.observe(req, nil)
		return "", false
	}

	for _, c := range candidates {
		score := proficiency(c.spec, req.TaskVerb) + domainBonus(role, req.DomainIDs)

		if req.MissionID != "" && c.agent.MissionID() == req.MissionID {
			score += missionBonus
		}

		c.score = score
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	winner := candidates[0]
	d.observe(req, winner)

	d.log.WithFields(logrus.Fields{
		"agent":      winner.spec.AgentID,
		"role":       req.RoleID,
		"verb":       req.TaskVerb,
		"score":      winner.score,
		"candidates": len(candidates),
	}).Debug("Agent dispatched")

	return winner.spec.AgentID, true
}

// proficiency derives the per-task scalar in [0,100] from the agent's
// metrics for the verb, defaulting to 50 when no history exists.
func proficiency(spec *AgentSpecialization, taskVerb string) float64 {
	if taskVerb == "" {
		return defaultProficiency
	}
	m, ok := spec.PerformanceByTask[taskVerb]
	if !ok {
		return defaultProficiency
	}

	successFactor := m.SuccessRate / 100
	experienceFactor := float64(m.TaskCount) / experienceCeiling
	if experienceFactor > 1 {
		experienceFactor = 1
	}
	qualityFactor := m.QualityScore / 100

	return clampScore((proficiencySuccessWeight*successFactor +
		proficiencyExperienceWeight*experienceFactor +
		proficiencyQualityWeight*qualityFactor) * 100)
}

// domainBonus scales with the share of requested domain ids the role covers:
// full overlap earns the whole bonus, no overlap earns none.
func domainBonus(role *roles.Role, domainIDs []string) float64 {
	if len(domainIDs) == 0 {
		return 0
	}

	roleDomains := make(map[string]bool, len(role.KnowledgeDomains))
	for _, id := range role.KnowledgeDomains {
		roleDomains[id] = true
	}

	matches := 0
	for _, id := range domainIDs {
		if roleDomains[id] {
			matches++
		}
	}
	return float64(matches) / float64(len(domainIDs)) * domainBonusMax
}

func (d *Dispatcher) observe(req Request, winner *candidate) {
	if winner == nil {
		if d.collector != nil {
			d.collector.DispatchDecisions.WithLabelValues(req.RoleID, "no_candidates").Inc()
		}
		return
	}

	if d.collector != nil {
		d.collector.DispatchDecisions.WithLabelValues(req.RoleID, "selected").Inc()
		d.collector.DispatchScore.Observe(winner.score)
	}
	d.bus.Publish(events.NewEvent(events.EventAgentDispatched, "specialization.dispatcher", map[string]interface{}{
		"agent_id":  winner.spec.AgentID,
		"role_id":   req.RoleID,
		"task_verb": req.TaskVerb,
		"score":     winner.score,
	}))
}
