package specialization

import (
	"context"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"dev.helix.dispatch/internal/events"
	"dev.helix.dispatch/internal/observability/metrics"
)

// Weight of the newest observation in the exponentially weighted averages.
const (
	successWeight  = 0.1
	feedbackWeight = 0.25
)

// Accountant applies task-completion and critic-feedback events to an
// agent's performance metrics. Updates are read-modify-write operations under
// the store's exclusive lock, so events for the same (agent, verb) pair are
// applied in the order they are accepted.
type Accountant struct {
	store     *Store
	log       *logrus.Logger
	collector *metrics.Collector
	bus       *events.Bus
}

// NewAccountant creates an accountant over the given store.
func NewAccountant(store *Store, log *logrus.Logger) *Accountant {
	if log == nil {
		log = logrus.New()
	}
	return &Accountant{store: store, log: log}
}

// Instrument attaches the metrics collector and event bus. Both are optional.
func (a *Accountant) Instrument(collector *metrics.Collector, bus *events.Bus) {
	a.collector = collector
	a.bus = bus
}

// RecordCompletion folds one task completion into the metrics for the
// (agent, verb) pair and flushes. A missing metrics entry starts from the
// zero baseline with a neutral quality score of 50.
func (a *Accountant) RecordCompletion(ctx context.Context, agentID, taskVerb string, success bool, durationSeconds float64) error {
	if durationSeconds < 0 {
		durationSeconds = 0
	}

	now := time.Now().UTC()
	err := a.store.Update(ctx, agentID, func(spec *AgentSpecialization) {
		m, ok := spec.PerformanceByTask[taskVerb]
		if !ok {
			m = &TaskPerformanceMetrics{QualityScore: 50, LastEvaluation: now}
			spec.PerformanceByTask[taskVerb] = m
		}

		observed := 0.0
		if success {
			observed = 100.0
		}
		m.SuccessRate = clampScore(m.SuccessRate*(1-successWeight) + observed*successWeight)
		m.TaskCount++
		m.AverageTaskDuration = (m.AverageTaskDuration*float64(m.TaskCount-1) + durationSeconds) / float64(m.TaskCount)
		m.LastEvaluation = now
	})
	if err != nil {
		return err
	}

	if a.collector != nil {
		a.collector.TaskCompletions.WithLabelValues(taskVerb, strconv.FormatBool(success)).Inc()
	}
	a.bus.Publish(events.NewEvent(events.EventTaskCompleted, "specialization.accountant", map[string]interface{}{
		"agent_id":  agentID,
		"task_verb": taskVerb,
		"success":   success,
		"duration":  durationSeconds,
	}))

	a.log.WithFields(logrus.Fields{
		"agent":   agentID,
		"verb":    taskVerb,
		"success": success,
	}).Debug("Task completion recorded")

	return nil
}

// RecordFeedback folds one critic quality score into the metrics for the
// (agent, verb) pair and flushes. Feedback arriving before any completion
// seeds the metrics with a 75% success rate and a task count of one.
func (a *Accountant) RecordFeedback(ctx context.Context, agentID, taskVerb string, qualityScore float64) error {
	qualityScore = clampScore(qualityScore)

	now := time.Now().UTC()
	err := a.store.Update(ctx, agentID, func(spec *AgentSpecialization) {
		m, ok := spec.PerformanceByTask[taskVerb]
		if !ok {
			m = &TaskPerformanceMetrics{SuccessRate: 75, TaskCount: 1, QualityScore: 50}
			spec.PerformanceByTask[taskVerb] = m
		}

		m.QualityScore = clampScore(m.QualityScore*(1-feedbackWeight) + qualityScore*feedbackWeight)
		m.LastEvaluation = now
	})
	if err != nil {
		return err
	}

	if a.collector != nil {
		a.collector.FeedbackEvents.Inc()
	}
	a.bus.Publish(events.NewEvent(events.EventFeedbackRecorded, "specialization.accountant", map[string]interface{}{
		"agent_id":      agentID,
		"task_verb":     taskVerb,
		"quality_score": qualityScore,
	}))

	a.log.WithFields(logrus.Fields{
		"agent": agentID,
		"verb":  taskVerb,
		"score": qualityScore,
	}).Debug("Critic feedback recorded")

	return nil
}
