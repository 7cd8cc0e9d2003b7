// Package httpapi exposes the gate service over JSON HTTP.
package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/kmavego/diagnostic-gate/internal/engine"
	"github.com/kmavego/diagnostic-gate/internal/platform/id"
	"github.com/kmavego/diagnostic-gate/internal/platform/pagination"
	"github.com/kmavego/diagnostic-gate/internal/services/gate/storage"
	"github.com/kmavego/diagnostic-gate/internal/services/gate/storage/cursor"
)

const (
	ownerHeader = "X-Owner-Id"

	maxTitleLength = 200

	defaultPageLimit = 50
	maxPageLimit     = 200
)

const tracerName = "diagnostic-gate/httpapi"

// Handler serves the gate service HTTP API.
type Handler struct {
	engine *engine.Engine
	store  storage.Store
	clock  func() time.Time
	newID  func() (string, error)
}

// New builds an API handler over the engine and store.
func New(eng *engine.Engine, store storage.Store) (*Handler, error) {
	if eng == nil {
		return nil, fmt.Errorf("engine is required")
	}
	if store == nil {
		return nil, fmt.Errorf("store is required")
	}
	return &Handler{
		engine: eng,
		store:  store,
		clock:  time.Now,
		newID:  id.NewID,
	}, nil
}

// SetClock overrides the handler's time source.
func (h *Handler) SetClock(clock func() time.Time) {
	if h == nil || clock == nil {
		return
	}
	h.clock = clock
}

// SetIDGenerator overrides the handler's id source.
func (h *Handler) SetIDGenerator(generate func() (string, error)) {
	if h == nil || generate == nil {
		return
	}
	h.newID = generate
}

// Routes returns the API route table.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", h.handleHealth)
	mux.HandleFunc("/projects", h.handleProjects)
	mux.HandleFunc("/projects/", h.handleProjectSubtree)
	mux.HandleFunc("/submissions/", h.handleSubmissionDetail)
	return mux
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	encoder := json.NewEncoder(w)
	_ = encoder.Encode(payload)
}

func writeJSONError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, apiError{Code: code, Message: message})
}

// ownerID extracts the caller identity stub. There is no token validation
// here; identity arrives from the fronting proxy.
func ownerID(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get(ownerHeader))
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeJSONError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *Handler) handleProjects(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.createProject(w, r)
	case http.MethodGet:
		h.listProjects(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		writeJSONError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
	}
}

// handleProjectSubtree routes /projects/{id} and its nested resources.
func (h *Handler) handleProjectSubtree(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/projects/")
	projectID, tail, _ := strings.Cut(rest, "/")
	if strings.TrimSpace(projectID) == "" {
		writeJSONError(w, http.StatusNotFound, "NOT_FOUND", "project not found")
		return
	}
	switch tail {
	case "":
		if r.Method != http.MethodGet {
			w.Header().Set("Allow", http.MethodGet)
			writeJSONError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
			return
		}
		h.getProject(w, r, projectID)
	case "ui-schema":
		if r.Method != http.MethodGet {
			w.Header().Set("Allow", http.MethodGet)
			writeJSONError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
			return
		}
		h.getUISchema(w, r, projectID)
	case "evaluate":
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			writeJSONError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
			return
		}
		h.evaluate(w, r, projectID)
	case "submissions":
		if r.Method != http.MethodGet {
			w.Header().Set("Allow", http.MethodGet)
			writeJSONError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
			return
		}
		h.listSubmissions(w, r, projectID)
	default:
		writeJSONError(w, http.StatusNotFound, "NOT_FOUND", "unknown resource")
	}
}

type projectView struct {
	ID                 string `json:"id"`
	OwnerID            string `json:"owner_id"`
	Title              string `json:"title"`
	Description        string `json:"description,omitempty"`
	CurrentState       string `json:"current_state"`
	CurrentGateID      string `json:"current_gate_id,omitempty"`
	CurrentGateVersion string `json:"current_gate_version,omitempty"`
	Finalized          bool   `json:"finalized"`
	CreatedAt          string `json:"created_at"`
	UpdatedAt          string `json:"updated_at"`
}

func newProjectView(project storage.Project) projectView {
	view := projectView{
		ID:           project.ID,
		OwnerID:      project.OwnerID,
		Title:        project.Title,
		Description:  project.Description,
		CurrentState: project.CurrentState,
		Finalized:    engine.IsFinalState(project.CurrentState),
		CreatedAt:    project.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt:    project.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
	if ref, ok := engine.GateForState(project.CurrentState); ok {
		view.CurrentGateID = ref.GateID
		view.CurrentGateVersion = ref.GateVersion
	}
	return view
}

type createProjectRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

func (h *Handler) createProject(w http.ResponseWriter, r *http.Request) {
	owner := ownerID(r)
	if owner == "" {
		writeJSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "owner identity is required")
		return
	}

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	var req createProjectRequest
	if err := decoder.Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "INVALID_BODY", "invalid request body")
		return
	}
	title := strings.TrimSpace(req.Title)
	if title == "" || len(title) > maxTitleLength {
		writeJSONError(w, http.StatusBadRequest, "INVALID_TITLE", "title must be between 1 and 200 characters")
		return
	}

	projectID, err := h.newID()
	if err != nil {
		log.Printf("generate project id: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "ID_FAILURE", "could not allocate project id")
		return
	}
	now := h.clock().UTC()
	project := storage.Project{
		ID:           projectID,
		OwnerID:      owner,
		Title:        title,
		Description:  strings.TrimSpace(req.Description),
		CurrentState: engine.StateDraft,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := h.store.CreateProject(r.Context(), project); err != nil {
		log.Printf("create project: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "STORAGE_FAILURE", "could not create project")
		return
	}
	writeJSON(w, http.StatusCreated, newProjectView(project))
}

func (h *Handler) listProjects(w http.ResponseWriter, r *http.Request) {
	owner := ownerID(r)
	if owner == "" {
		writeJSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "owner identity is required")
		return
	}
	projects, err := h.store.ListProjects(r.Context(), owner)
	if err != nil {
		log.Printf("list projects: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "STORAGE_FAILURE", "could not list projects")
		return
	}
	items := make([]projectView, 0, len(projects))
	for _, project := range projects {
		items = append(items, newProjectView(project))
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h *Handler) getProject(w http.ResponseWriter, r *http.Request, projectID string) {
	owner := ownerID(r)
	if owner == "" {
		writeJSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "owner identity is required")
		return
	}
	project, err := h.store.GetProject(r.Context(), projectID, owner)
	if err != nil {
		// Existence is never revealed across owners: both missing and
		// foreign projects read as 404.
		if errors.Is(err, storage.ErrNotFound) {
			writeJSONError(w, http.StatusNotFound, "NOT_FOUND", "project not found")
			return
		}
		log.Printf("get project: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "STORAGE_FAILURE", "could not load project")
		return
	}
	writeJSON(w, http.StatusOK, newProjectView(project))
}

type uiSchemaView struct {
	GateID      string                  `json:"gate_id,omitempty"`
	GateVersion string                  `json:"gate_version,omitempty"`
	Scope       string                  `json:"scope,omitempty"`
	Objective   string                  `json:"objective,omitempty"`
	Fields      []registryArtifactField `json:"fields"`
	Complete    bool                    `json:"complete"`
}

type registryArtifactField struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Component   string `json:"component"`
	Required    bool   `json:"required"`
	Placeholder string `json:"placeholder,omitempty"`
	Help        string `json:"help,omitempty"`
}

// getUISchema renders the form descriptor for the project's current gate so
// the client never hardcodes artifact lists.
func (h *Handler) getUISchema(w http.ResponseWriter, r *http.Request, projectID string) {
	owner := ownerID(r)
	if owner == "" {
		writeJSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "owner identity is required")
		return
	}
	project, err := h.store.GetProject(r.Context(), projectID, owner)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeJSONError(w, http.StatusNotFound, "NOT_FOUND", "project not found")
			return
		}
		log.Printf("get project for ui schema: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "STORAGE_FAILURE", "could not load project")
		return
	}

	view := uiSchemaView{Fields: []registryArtifactField{}}
	ref, ok := engine.GateForState(project.CurrentState)
	if !ok {
		view.Complete = true
		writeJSON(w, http.StatusOK, view)
		return
	}
	doc, ok := h.engine.Registry().GateDoc(ref.GateID)
	if !ok {
		log.Printf("ui schema: gate %s has no configuration document", ref.GateID)
		writeJSONError(w, http.StatusInternalServerError, "CONFIGURATION_FAILURE", "gate configuration is missing")
		return
	}
	view.GateID = doc.GateID
	view.GateVersion = doc.Version
	view.Scope = doc.Scope
	view.Objective = doc.Objective
	for _, field := range doc.Artifacts {
		view.Fields = append(view.Fields, registryArtifactField{
			ID:          field.ID,
			Label:       field.Label,
			Component:   field.Component,
			Required:    field.Required,
			Placeholder: field.Placeholder,
			Help:        field.Help,
		})
	}
	writeJSON(w, http.StatusOK, view)
}

type evaluateRequest struct {
	Artifacts map[string]any `json:"artifacts"`
}

type evaluateResponse struct {
	Decision           string           `json:"decision"`
	NextState          string           `json:"next_state,omitempty"`
	Errors             []TransportError `json:"errors"`
	SubmissionID       string           `json:"submission_id"`
	ProjectState       string           `json:"project_state"`
	CurrentGateID      string           `json:"current_gate_id,omitempty"`
	CurrentGateVersion string           `json:"current_gate_version,omitempty"`
}

func (h *Handler) evaluate(w http.ResponseWriter, r *http.Request, projectID string) {
	owner := ownerID(r)
	if owner == "" {
		writeJSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "owner identity is required")
		return
	}
	project, err := h.store.GetProject(r.Context(), projectID, owner)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeJSONError(w, http.StatusNotFound, "NOT_FOUND", "project not found")
			return
		}
		log.Printf("get project for evaluate: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "STORAGE_FAILURE", "could not load project")
		return
	}
	if engine.IsFinalState(project.CurrentState) {
		writeJSONError(w, http.StatusConflict, "PROJECT_FINALIZED", "project has passed its final gate")
		return
	}
	ref, ok := engine.GateForState(project.CurrentState)
	if !ok {
		log.Printf("evaluate: project %s in unknown state %s", project.ID, project.CurrentState)
		writeJSONError(w, http.StatusInternalServerError, "CONFIGURATION_FAILURE", "project state has no gate")
		return
	}

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	var req evaluateRequest
	if err := decoder.Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "INVALID_BODY", "invalid request body")
		return
	}
	if req.Artifacts == nil {
		req.Artifacts = map[string]any{}
	}

	ctx, span := otel.Tracer(tracerName).Start(r.Context(), "gate.evaluate")
	span.SetAttributes(
		attribute.String("gate.id", ref.GateID),
		attribute.String("gate.version", ref.GateVersion),
		attribute.String("project.state", project.CurrentState),
	)
	result := h.engine.Evaluate(ref.GateID, req.Artifacts)
	span.SetAttributes(attribute.String("gate.decision", string(result.Decision)))
	span.End()

	// A PASS without a successor state is an engine defect, never a
	// validation outcome; nothing is recorded.
	if result.Decision == engine.DecisionPass && result.NextState == "" {
		log.Printf("evaluate: gate %s passed without a next state", ref.GateID)
		writeJSONError(w, http.StatusInternalServerError, "ENGINE_FAILURE", "evaluation produced an inconsistent result")
		return
	}

	artifactsPayload, err := json.Marshal(req.Artifacts)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "INVALID_BODY", "artifacts are not serializable")
		return
	}
	resultPayload, err := json.Marshal(result)
	if err != nil {
		log.Printf("evaluate: marshal result: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "ENGINE_FAILURE", "evaluation result is not serializable")
		return
	}

	submissionID, err := h.newID()
	if err != nil {
		log.Printf("generate submission id: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "ID_FAILURE", "could not allocate submission id")
		return
	}
	submission := storage.Submission{
		ID:               submissionID,
		ProjectID:        project.ID,
		GateID:           ref.GateID,
		GateVersion:      ref.GateVersion,
		StateBefore:      project.CurrentState,
		Decision:         string(result.Decision),
		ArtifactsPayload: string(artifactsPayload),
		ResultPayload:    string(resultPayload),
		CreatedAt:        h.clock().UTC(),
	}
	nextState := ""
	if result.Decision == engine.DecisionPass {
		nextState = result.NextState
	}
	if err := h.store.RecordEvaluation(ctx, submission, nextState); err != nil {
		log.Printf("record evaluation: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "STORAGE_FAILURE", "could not record evaluation")
		return
	}

	projectState := project.CurrentState
	if nextState != "" {
		projectState = nextState
	}
	response := evaluateResponse{
		Decision:     MapDecision(string(result.Decision)),
		NextState:    result.NextState,
		Errors:       normalizeEngineErrors(result.Errors, GateIdentity{GateID: ref.GateID, GateVersion: ref.GateVersion}),
		SubmissionID: submission.ID,
		ProjectState: projectState,
	}
	if ref, ok := engine.GateForState(projectState); ok {
		response.CurrentGateID = ref.GateID
		response.CurrentGateVersion = ref.GateVersion
	}
	writeJSON(w, http.StatusOK, response)
}

// normalizeEngineErrors routes fresh engine findings through the same
// loosely-typed normalizer the audit endpoints use, so both surfaces render
// identically.
func normalizeEngineErrors(errs []engine.Error, gate GateIdentity) []TransportError {
	raw, err := json.Marshal(errs)
	if err != nil {
		return []TransportError{}
	}
	var loose []any
	if err := json.Unmarshal(raw, &loose); err != nil {
		return []TransportError{}
	}
	return NormalizeErrors(loose, gate)
}

type submissionSummary struct {
	ID          string `json:"id"`
	ProjectID   string `json:"project_id"`
	GateID      string `json:"gate_id"`
	GateVersion string `json:"gate_version"`
	StateBefore string `json:"state_before"`
	StateAfter  string `json:"state_after"`
	Decision    string `json:"decision"`
	ErrorCount  int    `json:"error_count"`
	CreatedAt   string `json:"created_at"`
}

func (h *Handler) listSubmissions(w http.ResponseWriter, r *http.Request, projectID string) {
	owner := ownerID(r)
	if owner == "" {
		writeJSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "owner identity is required")
		return
	}
	if _, err := h.store.GetProject(r.Context(), projectID, owner); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeJSONError(w, http.StatusNotFound, "NOT_FOUND", "project not found")
			return
		}
		log.Printf("get project for submissions: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "STORAGE_FAILURE", "could not load project")
		return
	}

	query := r.URL.Query()
	limit := 0
	if rawLimit := strings.TrimSpace(query.Get("limit")); rawLimit != "" {
		parsed, err := strconv.Atoi(rawLimit)
		if err != nil || parsed <= 0 || parsed > maxPageLimit {
			writeJSONError(w, http.StatusUnprocessableEntity, "INVALID_LIMIT", "limit must be between 1 and 200")
			return
		}
		limit = parsed
	}
	limit = pagination.ClampLimit(limit, pagination.LimitConfig{Default: defaultPageLimit, Max: maxPageLimit})
	order, err := pagination.ParseOrder(strings.TrimSpace(query.Get("order")), pagination.OrderDesc)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "INVALID_ORDER", "order must be asc or desc")
		return
	}

	page, err := h.store.ListSubmissions(r.Context(), storage.ListSubmissionsRequest{
		ProjectID: projectID,
		Limit:     limit,
		Cursor:    query.Get("cursor"),
		Order:     order,
	})
	if err != nil {
		if errors.Is(err, cursor.ErrInvalid) {
			writeJSONError(w, http.StatusUnprocessableEntity, "INVALID_CURSOR", "cursor is malformed")
			return
		}
		log.Printf("list submissions: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "STORAGE_FAILURE", "could not list submissions")
		return
	}

	items := make([]submissionSummary, 0, len(page.Submissions))
	for _, submission := range page.Submissions {
		stored := decodeStoredResult(submission.ResultPayload)
		items = append(items, submissionSummary{
			ID:          submission.ID,
			ProjectID:   submission.ProjectID,
			GateID:      submission.GateID,
			GateVersion: submission.GateVersion,
			StateBefore: submission.StateBefore,
			StateAfter:  stateAfter(submission.StateBefore, stored),
			Decision:    MapDecision(submission.Decision),
			ErrorCount:  len(stored.Errors),
			CreatedAt:   submission.CreatedAt.UTC().Format(time.RFC3339Nano),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"items":       items,
		"next_cursor": page.NextCursor,
	})
}

// storedResult is the loosely-typed form of a persisted evaluation result.
type storedResult struct {
	Decision  string `json:"decision"`
	NextState string `json:"next_state"`
	Errors    []any  `json:"errors"`
}

func decodeStoredResult(resultPayload string) storedResult {
	var stored storedResult
	if err := json.Unmarshal([]byte(resultPayload), &stored); err != nil {
		return storedResult{}
	}
	return stored
}

// stateAfter resolves the project state an evaluation left behind. Only a
// passing result carries a successor state; everything else stays put.
func stateAfter(stateBefore string, stored storedResult) string {
	if stored.NextState != "" {
		return stored.NextState
	}
	return stateBefore
}

type submissionDetail struct {
	ID           string           `json:"id"`
	ProjectID    string           `json:"project_id"`
	GateID       string           `json:"gate_id"`
	GateVersion  string           `json:"gate_version"`
	StateBefore  string           `json:"state_before"`
	Decision     string           `json:"decision"`
	Artifacts    map[string]any   `json:"artifacts"`
	Result       submissionResult `json:"result"`
	Immutability immutabilityInfo `json:"immutability"`
	CreatedAt    string           `json:"created_at"`
}

type submissionResult struct {
	Decision  string           `json:"decision"`
	NextState string           `json:"next_state,omitempty"`
	Errors    []TransportError `json:"errors"`
}

type immutabilityInfo struct {
	IsImmutable bool   `json:"is_immutable"`
	StoredAt    string `json:"stored_at"`
}

// handleSubmissionDetail serves GET /submissions/{id}. Ownership is asserted
// through the parent project; every failure mode is a 404 so record existence
// never leaks.
func (h *Handler) handleSubmissionDetail(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeJSONError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
		return
	}
	owner := ownerID(r)
	if owner == "" {
		writeJSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "owner identity is required")
		return
	}
	submissionID := strings.TrimPrefix(r.URL.Path, "/submissions/")
	if strings.TrimSpace(submissionID) == "" || strings.Contains(submissionID, "/") {
		writeJSONError(w, http.StatusNotFound, "NOT_FOUND", "submission not found")
		return
	}

	submission, err := h.store.GetSubmission(r.Context(), submissionID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeJSONError(w, http.StatusNotFound, "NOT_FOUND", "submission not found")
			return
		}
		log.Printf("get submission: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "STORAGE_FAILURE", "could not load submission")
		return
	}
	if _, err := h.store.GetProject(r.Context(), submission.ProjectID, owner); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeJSONError(w, http.StatusNotFound, "NOT_FOUND", "submission not found")
			return
		}
		log.Printf("get parent project: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "STORAGE_FAILURE", "could not load submission")
		return
	}

	artifacts := map[string]any{}
	if err := json.Unmarshal([]byte(submission.ArtifactsPayload), &artifacts); err != nil {
		artifacts = map[string]any{}
	}
	stored := decodeStoredResult(submission.ResultPayload)
	if stored.Decision == "" {
		stored.Decision = submission.Decision
	}

	createdAt := submission.CreatedAt.UTC().Format(time.RFC3339Nano)
	writeJSON(w, http.StatusOK, submissionDetail{
		ID:          submission.ID,
		ProjectID:   submission.ProjectID,
		GateID:      submission.GateID,
		GateVersion: submission.GateVersion,
		StateBefore: submission.StateBefore,
		Decision:    MapDecision(submission.Decision),
		Artifacts:   artifacts,
		Result: submissionResult{
			Decision:  MapDecision(stored.Decision),
			NextState: stored.NextState,
			Errors: NormalizeErrors(stored.Errors, GateIdentity{
				GateID:      submission.GateID,
				GateVersion: submission.GateVersion,
			}),
		},
		Immutability: immutabilityInfo{IsImmutable: true, StoredAt: createdAt},
		CreatedAt:    createdAt,
	})
}
