// Package specialization implements the agent specialization and dispatch
// core: the per-agent role binding with its performance history, the
// accountant that maintains the metrics, the dispatcher that ranks agents
// for a task, the prompt synthesizer, and the assignment controller.
package specialization

import (
	"fmt"
	"time"

	"dev.helix.dispatch/internal/roles"
)

// TaskPerformanceMetrics tracks how an agent performs on one task verb.
// SuccessRate and QualityScore are exponentially weighted percentages,
// clamped into [0,100] on every update. TaskCount never decreases.
type TaskPerformanceMetrics struct {
	SuccessRate         float64   `json:"success_rate"`
	TaskCount           int       `json:"task_count"`
	AverageTaskDuration float64   `json:"average_task_duration"`
	LastEvaluation      time.Time `json:"last_evaluation"`
	QualityScore        float64   `json:"quality_score"`
}

// Clone returns a copy of the metrics.
func (m *TaskPerformanceMetrics) Clone() *TaskPerformanceMetrics {
	if m == nil {
		return nil
	}
	clone := *m
	return &clone
}

// Customizations holds per-agent overrides of the role defaults. Each field
// is individually optional; a nil slice or empty string means "use the role's
// value".
type Customizations struct {
	Capabilities     []string `json:"capabilities,omitempty"`
	Responsibilities []string `json:"responsibilities,omitempty"`
	KnowledgeDomains []string `json:"knowledge_domains,omitempty"`
	SystemPrompt     string   `json:"system_prompt,omitempty"`
}

// Clone returns a copy of the customizations.
func (c *Customizations) Clone() *Customizations {
	if c == nil {
		return nil
	}
	return &Customizations{
		Capabilities:     append([]string(nil), c.Capabilities...),
		Responsibilities: append([]string(nil), c.Responsibilities...),
		KnowledgeDomains: append([]string(nil), c.KnowledgeDomains...),
		SystemPrompt:     c.SystemPrompt,
	}
}

// AgentSpecialization binds one agent to one role, with performance history
// bucketed by task verb and optional per-agent overrides. One record exists
// per agent id; a new assignment replaces the prior record entirely.
type AgentSpecialization struct {
	AgentID           string                             `json:"agent_id"`
	RoleID            string                             `json:"role_id"`
	AssignedAt        time.Time                          `json:"assigned_at"`
	PerformanceByTask map[string]*TaskPerformanceMetrics `json:"performance_by_task"`
	Customizations    *Customizations                    `json:"customizations,omitempty"`
}

// NewAgentSpecialization creates a fresh specialization with an empty
// performance map and AssignedAt set to now.
func NewAgentSpecialization(agentID, roleID string) (*AgentSpecialization, error) {
	if agentID == "" {
		return nil, fmt.Errorf("%w: agent id cannot be empty", ErrInvalidSpecialization)
	}
	if roleID == "" {
		return nil, fmt.Errorf("%w: role id cannot be empty", ErrInvalidSpecialization)
	}

	return &AgentSpecialization{
		AgentID:           agentID,
		RoleID:            roleID,
		AssignedAt:        time.Now().UTC(),
		PerformanceByTask: make(map[string]*TaskPerformanceMetrics),
	}, nil
}

// Clone returns a deep copy of the specialization.
func (s *AgentSpecialization) Clone() *AgentSpecialization {
	if s == nil {
		return nil
	}

	clone := &AgentSpecialization{
		AgentID:           s.AgentID,
		RoleID:            s.RoleID,
		AssignedAt:        s.AssignedAt,
		PerformanceByTask: make(map[string]*TaskPerformanceMetrics, len(s.PerformanceByTask)),
		Customizations:    s.Customizations.Clone(),
	}
	for verb, m := range s.PerformanceByTask {
		clone.PerformanceByTask[verb] = m.Clone()
	}
	return clone
}

// EffectiveSystemPrompt returns the customized system prompt when set,
// otherwise the role's.
func (s *AgentSpecialization) EffectiveSystemPrompt(role *roles.Role) string {
	if s.Customizations != nil && s.Customizations.SystemPrompt != "" {
		return s.Customizations.SystemPrompt
	}
	return role.SystemPrompt
}

// EffectiveCapabilities returns the customized capability list when set,
// otherwise the role's.
func (s *AgentSpecialization) EffectiveCapabilities(role *roles.Role) []string {
	if s.Customizations != nil && s.Customizations.Capabilities != nil {
		return s.Customizations.Capabilities
	}
	return role.Capabilities
}

// EffectiveResponsibilities returns the customized responsibility list when
// set, otherwise the role's.
func (s *AgentSpecialization) EffectiveResponsibilities(role *roles.Role) []string {
	if s.Customizations != nil && s.Customizations.Responsibilities != nil {
		return s.Customizations.Responsibilities
	}
	return role.Responsibilities
}

// EffectiveKnowledgeDomains returns the customized domain list when set,
// otherwise the role's.
func (s *AgentSpecialization) EffectiveKnowledgeDomains(role *roles.Role) []string {
	if s.Customizations != nil && s.Customizations.KnowledgeDomains != nil {
		return s.Customizations.KnowledgeDomains
	}
	return role.KnowledgeDomains
}

// RoleSource is the slice of the role registry the dispatch core consumes.
type RoleSource interface {
	Get(id string) (*roles.Role, bool)
}

// clampScore clamps a percentage score into [0,100].
func clampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
