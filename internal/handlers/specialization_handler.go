// Package handlers exposes the dispatch core over HTTP for embedders that
// want a ready-made surface. The wire protocol here is a convenience; the
// core contract is the Go API of the specialization package.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"dev.helix.dispatch/internal/agenthost"
	"dev.helix.dispatch/internal/knowledge"
	"dev.helix.dispatch/internal/roles"
	"dev.helix.dispatch/internal/specialization"
)

// SpecializationHandler handles the specialization and dispatch endpoints.
type SpecializationHandler struct {
	controller  *specialization.Controller
	store       *specialization.Store
	dispatcher  *specialization.Dispatcher
	accountant  *specialization.Accountant
	synthesizer *specialization.PromptSynthesizer
	roles       *roles.Registry
	domains     *knowledge.Registry
	directory   *agenthost.LocalDirectory
}

// NewSpecializationHandler creates the handler. The directory may be nil when
// the embedder hosts agents elsewhere; the agent-registration endpoint then
// responds 404.
func NewSpecializationHandler(
	controller *specialization.Controller,
	store *specialization.Store,
	dispatcher *specialization.Dispatcher,
	accountant *specialization.Accountant,
	synthesizer *specialization.PromptSynthesizer,
	roleRegistry *roles.Registry,
	domainRegistry *knowledge.Registry,
	directory *agenthost.LocalDirectory,
) *SpecializationHandler {
	return &SpecializationHandler{
		controller:  controller,
		store:       store,
		dispatcher:  dispatcher,
		accountant:  accountant,
		synthesizer: synthesizer,
		roles:       roleRegistry,
		domains:     domainRegistry,
		directory:   directory,
	}
}

// RegisterRoutes attaches all endpoints to the engine.
func (h *SpecializationHandler) RegisterRoutes(r *gin.Engine) {
	v1 := r.Group("/v1")

	v1.POST("/roles", h.CreateRole)
	v1.GET("/roles", h.ListRoles)
	v1.GET("/roles/:id", h.GetRole)
	v1.GET("/roles/:id/agents", h.ListAgentsWithRole)

	v1.POST("/domains", h.CreateDomain)
	v1.GET("/domains", h.ListDomains)
	v1.GET("/domains/:id", h.GetDomain)

	v1.POST("/agents", h.RegisterAgent)
	v1.POST("/agents/:id/role", h.AssignRole)
	v1.GET("/agents/:id/specialization", h.GetSpecialization)
	v1.DELETE("/agents/:id/specialization", h.DeleteSpecialization)
	v1.POST("/agents/:id/completions", h.RecordCompletion)
	v1.POST("/agents/:id/feedback", h.RecordFeedback)
	v1.POST("/agents/:id/prompt", h.GeneratePrompt)

	v1.POST("/dispatch", h.Dispatch)
}

// CreateRole registers a new role definition.
// POST /v1/roles
func (h *SpecializationHandler) CreateRole(c *gin.Context) {
	var role roles.Role
	if err := c.ShouldBindJSON(&role); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if role.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "role name is required"})
		return
	}

	c.JSON(http.StatusCreated, h.roles.Register(&role))
}

// ListRoles returns all registered roles.
// GET /v1/roles
func (h *SpecializationHandler) ListRoles(c *gin.Context) {
	list := h.roles.List()
	c.JSON(http.StatusOK, gin.H{"roles": list, "count": len(list)})
}

// GetRole returns one role by id.
// GET /v1/roles/:id
func (h *SpecializationHandler) GetRole(c *gin.Context) {
	role, ok := h.roles.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "role_not_found"})
		return
	}
	c.JSON(http.StatusOK, role)
}

// ListAgentsWithRole returns all specializations bound to a role.
// GET /v1/roles/:id/agents
func (h *SpecializationHandler) ListAgentsWithRole(c *gin.Context) {
	specs := h.store.ListByRole(c.Param("id"))
	c.JSON(http.StatusOK, gin.H{"specializations": specs, "count": len(specs)})
}

// CreateDomain registers a new knowledge domain and persists the catalogue.
// POST /v1/domains
func (h *SpecializationHandler) CreateDomain(c *gin.Context) {
	var domain knowledge.Domain
	if err := c.ShouldBindJSON(&domain); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if domain.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "domain name is required"})
		return
	}

	c.JSON(http.StatusCreated, h.domains.Create(c.Request.Context(), &domain))
}

// ListDomains returns all knowledge domains.
// GET /v1/domains
func (h *SpecializationHandler) ListDomains(c *gin.Context) {
	list := h.domains.List()
	c.JSON(http.StatusOK, gin.H{"domains": list, "count": len(list)})
}

// GetDomain returns one knowledge domain by id.
// GET /v1/domains/:id
func (h *SpecializationHandler) GetDomain(c *gin.Context) {
	domain, ok := h.domains.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "domain_not_found"})
		return
	}
	c.JSON(http.StatusOK, domain)
}

type registerAgentRequest struct {
	ID        string `json:"id" binding:"required"`
	MissionID string `json:"mission_id"`
}

// RegisterAgent adds an agent to the in-process directory.
// POST /v1/agents
func (h *SpecializationHandler) RegisterAgent(c *gin.Context) {
	if h.directory == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "agent registration is not hosted here"})
		return
	}

	var req registerAgentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.directory.Add(agenthost.NewLocalAgent(req.ID, req.MissionID))
	c.JSON(http.StatusCreated, gin.H{"id": req.ID, "mission_id": req.MissionID})
}

type assignRoleRequest struct {
	RoleID         string                         `json:"role_id" binding:"required"`
	Customizations *specialization.Customizations `json:"customizations,omitempty"`
}

// AssignRole binds an agent to a role.
// POST /v1/agents/:id/role
func (h *SpecializationHandler) AssignRole(c *gin.Context) {
	var req assignRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	spec, err := h.controller.Assign(c.Request.Context(), c.Param("id"), req.RoleID, req.Customizations)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, spec)
}

// GetSpecialization returns an agent's specialization.
// GET /v1/agents/:id/specialization
func (h *SpecializationHandler) GetSpecialization(c *gin.Context) {
	spec, ok := h.store.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "specialization_not_found"})
		return
	}
	c.JSON(http.StatusOK, spec)
}

// DeleteSpecialization removes an agent's specialization.
// DELETE /v1/agents/:id/specialization
func (h *SpecializationHandler) DeleteSpecialization(c *gin.Context) {
	if !h.store.Delete(c.Request.Context(), c.Param("id")) {
		c.JSON(http.StatusNotFound, gin.H{"error": "specialization_not_found"})
		return
	}
	c.Status(http.StatusNoContent)
}

type completionRequest struct {
	TaskVerb        string  `json:"task_verb" binding:"required"`
	Success         bool    `json:"success"`
	DurationSeconds float64 `json:"duration_seconds"`
}

// RecordCompletion records a task completion for an agent.
// POST /v1/agents/:id/completions
func (h *SpecializationHandler) RecordCompletion(c *gin.Context) {
	var req completionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.accountant.RecordCompletion(c.Request.Context(), c.Param("id"), req.TaskVerb, req.Success, req.DurationSeconds); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

type feedbackRequest struct {
	TaskVerb     string  `json:"task_verb" binding:"required"`
	QualityScore float64 `json:"quality_score"`
}

// RecordFeedback records critic feedback for an agent.
// POST /v1/agents/:id/feedback
func (h *SpecializationHandler) RecordFeedback(c *gin.Context) {
	var req feedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.accountant.RecordFeedback(c.Request.Context(), c.Param("id"), req.TaskVerb, req.QualityScore); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

type promptRequest struct {
	TaskDescription string `json:"task_description" binding:"required"`
}

// GeneratePrompt synthesizes the specialized prompt for an agent and task.
// POST /v1/agents/:id/prompt
func (h *SpecializationHandler) GeneratePrompt(c *gin.Context) {
	var req promptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	prompt := h.synthesizer.Generate(c.Param("id"), req.TaskDescription)
	c.JSON(http.StatusOK, gin.H{"prompt": prompt})
}

// Dispatch finds the best agent for a task.
// POST /v1/dispatch
func (h *SpecializationHandler) Dispatch(c *gin.Context) {
	var req specialization.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.RoleID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "role_id is required"})
		return
	}

	agentID, ok := h.dispatcher.FindBestAgent(req)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no_eligible_agent"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"agent_id": agentID})
}

// statusFor maps core errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, specialization.ErrRoleNotFound),
		errors.Is(err, specialization.ErrAgentNotFound),
		errors.Is(err, specialization.ErrSpecializationNotFound):
		return http.StatusNotFound
	case errors.Is(err, specialization.ErrInvalidSpecialization):
		return http.StatusBadRequest
	case errors.Is(err, specialization.ErrRoleApplicationFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
