package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dev.helix.dispatch/internal/agenthost"
	"dev.helix.dispatch/internal/knowledge"
	"dev.helix.dispatch/internal/roles"
	"dev.helix.dispatch/internal/specialization"
)

func newTestRouter(t *testing.T) (*gin.Engine, *agenthost.LocalDirectory) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	registry := roles.NewRegistry()
	domains := knowledge.NewRegistry(context.Background(), nil, nil)
	store := specialization.NewStore(context.Background(), nil, registry, nil)
	directory := agenthost.NewLocalDirectory()

	controller := specialization.NewController(store, registry, directory, nil)
	dispatcher := specialization.NewDispatcher(store, registry, directory, nil)
	accountant := specialization.NewAccountant(store, nil)
	synthesizer := specialization.NewPromptSynthesizer(store, registry, domains, nil)

	router := gin.New()
	handler := NewSpecializationHandler(
		controller, store, dispatcher, accountant, synthesizer,
		registry, domains, directory,
	)
	handler.RegisterRoutes(router)

	return router, directory
}

func doJSON(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// =============================================================================
// Role Endpoint Tests
// =============================================================================

func TestHandler_CreateAndGetRole(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(router, http.MethodPost, "/v1/roles", `{
		"name": "Data Scientist",
		"description": "Statistics and modeling",
		"capabilities": ["statistics"]
	}`)
	require.Equal(t, http.StatusCreated, w.Code)

	var created roles.Role
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "data_scientist", created.ID)

	w = doJSON(router, http.MethodGet, "/v1/roles/data_scientist", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(router, http.MethodGet, "/v1/roles/no_such_role", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandler_CreateRole_MissingName(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(router, http.MethodPost, "/v1/roles", `{"description": "nameless"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_ListRoles(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(router, http.MethodGet, "/v1/roles", "")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Roles []*roles.Role `json:"roles"`
		Count int           `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 6, body.Count)
	assert.Len(t, body.Roles, 6)
}

// =============================================================================
// Domain Endpoint Tests
// =============================================================================

func TestHandler_CreateAndGetDomain(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(router, http.MethodPost, "/v1/domains", `{
		"name": "Machine Learning",
		"description": "Training and evaluation"
	}`)
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(router, http.MethodGet, "/v1/domains/machine_learning", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(router, http.MethodGet, "/v1/domains/absent", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// =============================================================================
// Assignment Endpoint Tests
// =============================================================================

func TestHandler_AssignRole(t *testing.T) {
	router, directory := newTestRouter(t)
	directory.Add(agenthost.NewLocalAgent("agent-1", ""))

	w := doJSON(router, http.MethodPost, "/v1/agents/agent-1/role", `{"role_id": "researcher"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	var spec specialization.AgentSpecialization
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &spec))
	assert.Equal(t, "agent-1", spec.AgentID)
	assert.Equal(t, "researcher", spec.RoleID)

	w = doJSON(router, http.MethodGet, "/v1/agents/agent-1/specialization", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHandler_AssignRole_Errors(t *testing.T) {
	router, directory := newTestRouter(t)
	directory.Add(agenthost.NewLocalAgent("agent-1", ""))

	// Unknown role.
	w := doJSON(router, http.MethodPost, "/v1/agents/agent-1/role", `{"role_id": "ghost_role"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Unknown agent.
	w = doJSON(router, http.MethodPost, "/v1/agents/ghost/role", `{"role_id": "researcher"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Missing role_id.
	w = doJSON(router, http.MethodPost, "/v1/agents/agent-1/role", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_DeleteSpecialization(t *testing.T) {
	router, directory := newTestRouter(t)
	directory.Add(agenthost.NewLocalAgent("agent-1", ""))

	doJSON(router, http.MethodPost, "/v1/agents/agent-1/role", `{"role_id": "executor"}`)

	w := doJSON(router, http.MethodDelete, "/v1/agents/agent-1/specialization", "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(router, http.MethodDelete, "/v1/agents/agent-1/specialization", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandler_ListAgentsWithRole(t *testing.T) {
	router, directory := newTestRouter(t)
	directory.Add(agenthost.NewLocalAgent("agent-1", ""))
	directory.Add(agenthost.NewLocalAgent("agent-2", ""))

	doJSON(router, http.MethodPost, "/v1/agents/agent-1/role", `{"role_id": "critic"}`)
	doJSON(router, http.MethodPost, "/v1/agents/agent-2/role", `{"role_id": "critic"}`)

	w := doJSON(router, http.MethodGet, "/v1/roles/critic/agents", "")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 2, body.Count)
}

// =============================================================================
// Performance Endpoint Tests
// =============================================================================

func TestHandler_RecordCompletionAndFeedback(t *testing.T) {
	router, directory := newTestRouter(t)
	directory.Add(agenthost.NewLocalAgent("agent-1", ""))
	doJSON(router, http.MethodPost, "/v1/agents/agent-1/role", `{"role_id": "executor"}`)

	w := doJSON(router, http.MethodPost, "/v1/agents/agent-1/completions", `{
		"task_verb": "deploy",
		"success": true,
		"duration_seconds": 42
	}`)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(router, http.MethodPost, "/v1/agents/agent-1/feedback", `{
		"task_verb": "deploy",
		"quality_score": 85
	}`)
	assert.Equal(t, http.StatusNoContent, w.Code)

	// Metrics are visible through the specialization.
	w = doJSON(router, http.MethodGet, "/v1/agents/agent-1/specialization", "")
	require.Equal(t, http.StatusOK, w.Code)

	var spec specialization.AgentSpecialization
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &spec))
	m := spec.PerformanceByTask["deploy"]
	require.NotNil(t, m)
	assert.Equal(t, 1, m.TaskCount)
	assert.InDelta(t, 10.0, m.SuccessRate, 1e-9)
}

func TestHandler_RecordCompletion_UnknownAgent(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(router, http.MethodPost, "/v1/agents/ghost/completions", `{
		"task_verb": "deploy",
		"success": true
	}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// =============================================================================
// Prompt and Dispatch Endpoint Tests
// =============================================================================

func TestHandler_GeneratePrompt(t *testing.T) {
	router, directory := newTestRouter(t)
	directory.Add(agenthost.NewLocalAgent("agent-1", ""))
	doJSON(router, http.MethodPost, "/v1/agents/agent-1/role", `{"role_id": "researcher"}`)

	w := doJSON(router, http.MethodPost, "/v1/agents/agent-1/prompt", `{
		"task_description": "survey the literature"
	}`)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Prompt string `json:"prompt"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Contains(t, body.Prompt, "Current Task: survey the literature")
	assert.Contains(t, body.Prompt, "Your Capabilities:")
}

func TestHandler_GeneratePrompt_GenericFallback(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(router, http.MethodPost, "/v1/agents/unknown/prompt", `{
		"task_description": "do something"
	}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "You are an AI agent tasked with: do something.")
}

func TestHandler_Dispatch(t *testing.T) {
	router, directory := newTestRouter(t)
	directory.Add(agenthost.NewLocalAgent("agent-1", ""))
	doJSON(router, http.MethodPost, "/v1/agents/agent-1/role", `{"role_id": "executor"}`)

	w := doJSON(router, http.MethodPost, "/v1/dispatch", `{"role_id": "executor", "task_verb": "deploy"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		AgentID string `json:"agent_id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "agent-1", body.AgentID)
}

func TestHandler_Dispatch_NoEligibleAgent(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(router, http.MethodPost, "/v1/dispatch", `{"role_id": "executor"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(router, http.MethodPost, "/v1/dispatch", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// =============================================================================
// Agent Registration Tests
// =============================================================================

func TestHandler_RegisterAgent(t *testing.T) {
	router, directory := newTestRouter(t)

	w := doJSON(router, http.MethodPost, "/v1/agents", `{"id": "agent-9", "mission_id": "mission-1"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	agent, ok := directory.Resolve("agent-9")
	require.True(t, ok)
	assert.Equal(t, "mission-1", agent.MissionID())
}

func TestHandler_RegisterAgent_MissingID(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(router, http.MethodPost, "/v1/agents", `{"mission_id": "mission-1"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
