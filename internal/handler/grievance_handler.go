// Package handler provides HTTP handlers for the grievance service.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	apperrors "github.com/gunaso-platform/grievance/pkg/errors"

	"github.com/gunaso-platform/grievance/internal/feed"
	"github.com/gunaso-platform/grievance/internal/model"
	"github.com/gunaso-platform/grievance/internal/service"
)

// GrievanceHandler handles HTTP requests for the intake pipeline.
type GrievanceHandler struct {
	service *service.IntakeService
}

// NewGrievanceHandler creates a new grievance handler.
func NewGrievanceHandler(service *service.IntakeService) *GrievanceHandler {
	return &GrievanceHandler{service: service}
}

// RegisterRoutes registers the complaint routes. Literal paths are
// registered before the {id} routes so mux never treats them as IDs.
func (h *GrievanceHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/complaints/classify", h.Classify).Methods("POST")
	r.HandleFunc("/complaints/similar", h.Similar).Methods("POST")
	r.HandleFunc("/complaints/public", h.PublicFeed).Methods("GET")
	r.HandleFunc("/complaints/leaderboard", h.Leaderboard).Methods("GET")
	r.HandleFunc("/complaints/location-summary", h.LocationSummary).Methods("GET")
	r.HandleFunc("/complaints/sla-check", h.SLACheck).Methods("GET")
	r.HandleFunc("/complaints/categories", h.Categories).Methods("GET")

	r.HandleFunc("/complaints", h.Submit).Methods("POST")
	r.HandleFunc("/complaints", h.List).Methods("GET")
	r.HandleFunc("/complaints/{id}", h.Get).Methods("GET")
	r.HandleFunc("/complaints/{id}/status", h.SetStatus).Methods("PATCH")
	r.HandleFunc("/complaints/{id}/assign", h.Assign).Methods("PATCH")
	r.HandleFunc("/complaints/{id}/escalate", h.Escalate).Methods("PATCH")
	r.HandleFunc("/complaints/{id}/upvote", h.Upvote).Methods("POST")
	r.HandleFunc("/complaints/{id}/notify", h.Notify).Methods("POST")
	r.HandleFunc("/complaints/{id}/feedback", h.Feedback).Methods("POST")
	r.HandleFunc("/complaints/{id}/citizen-history", h.CitizenHistory).Methods("GET")
}

// Submit routes a citizen report into the intake pipeline.
func (h *GrievanceHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req model.SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, apperrors.Validation("invalid request body"))
		return
	}

	result, err := h.service.Submit(r.Context(), &req)
	if err != nil {
		h.respondError(w, err)
		return
	}

	h.respondJSON(w, http.StatusCreated, result)
}

// Classify previews the classification without creating a case.
func (h *GrievanceHandler) Classify(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title       string `json:"title"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, apperrors.Validation("invalid request body"))
		return
	}

	classification, err := h.service.Classify(req.Title, req.Description)
	if err != nil {
		h.respondError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, classification)
}

// Get retrieves a case by ID.
func (h *GrievanceHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	c, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, c)
}

// List retrieves cases matching the query filters.
func (h *GrievanceHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := &model.CaseFilter{
		Status:      model.Status(query.Get("status")),
		Priority:    model.Priority(query.Get("priority")),
		CategoryKey: query.Get("category"),
		ReporterID:  query.Get("reporter_id"),
		Limit:       parseIntParam(query.Get("limit"), 0),
	}

	cases, err := h.service.List(r.Context(), filter)
	if err != nil {
		h.respondError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"count": len(cases),
		"data":  cases,
	})
}

// SetStatus moves a case through its lifecycle.
func (h *GrievanceHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req model.StatusUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, apperrors.Validation("invalid request body"))
		return
	}

	c, err := h.service.SetStatus(r.Context(), id, &req)
	if err != nil {
		h.respondError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, c)
}

// Assign hands a case to a handler.
func (h *GrievanceHandler) Assign(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req model.AssignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, apperrors.Validation("invalid request body"))
		return
	}

	c, err := h.service.Assign(r.Context(), id, &req)
	if err != nil {
		h.respondError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, c)
}

// Escalate applies a manual escalation.
func (h *GrievanceHandler) Escalate(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req model.EscalateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, apperrors.Validation("invalid request body"))
		return
	}

	c, err := h.service.Escalate(r.Context(), id, &req)
	if err != nil {
		h.respondError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, c)
}

// Upvote toggles a public upvote.
func (h *GrievanceHandler) Upvote(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req model.UpvoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, apperrors.Validation("invalid request body"))
		return
	}

	result, err := h.service.Upvote(r.Context(), id, &req)
	if err != nil {
		h.respondError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, result)
}

// Notify pushes a manual notification to a case's reporters.
func (h *GrievanceHandler) Notify(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req model.NotifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, apperrors.Validation("invalid request body"))
		return
	}

	c, err := h.service.Notify(r.Context(), id, &req)
	if err != nil {
		h.respondError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"notifications_sent": c.NotificationsSent,
		"data":               c,
	})
}

// Feedback records a citizen rating.
func (h *GrievanceHandler) Feedback(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req model.FeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, apperrors.Validation("invalid request body"))
		return
	}

	c, err := h.service.Feedback(r.Context(), id, &req)
	if err != nil {
		h.respondError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, c)
}

// SLACheck runs a deadline sweep and returns the report.
func (h *GrievanceHandler) SLACheck(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.SLACheck(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, report)
}

// PublicFeed serves the ranked public projection.
func (h *GrievanceHandler) PublicFeed(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	page, err := h.service.PublicFeed(
		r.Context(),
		feed.Mode(query.Get("sort")),
		query.Get("category"),
		model.Priority(query.Get("priority")),
		parseIntParam(query.Get("limit"), 0),
	)
	if err != nil {
		h.respondError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"count": len(page),
		"data":  page,
	})
}

// CitizenHistory aggregates the reporting record behind a case.
func (h *GrievanceHandler) CitizenHistory(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	history, err := h.service.CitizenHistory(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, history)
}

// Leaderboard serves the department leaderboard.
func (h *GrievanceHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	entries, err := h.service.Leaderboard(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"count": len(entries),
		"data":  entries,
	})
}

// LocationSummary serves open-case hotspots by district and ward.
func (h *GrievanceHandler) LocationSummary(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.service.LocationSummary(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"count": len(summaries),
		"data":  summaries,
	})
}

// Similar searches for cases resembling a draft submission.
func (h *GrievanceHandler) Similar(w http.ResponseWriter, r *http.Request) {
	var req model.SimilarRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, apperrors.Validation("invalid request body"))
		return
	}

	matches, err := h.service.Similar(r.Context(), &req)
	if err != nil {
		h.respondError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"count": len(matches),
		"data":  matches,
	})
}

// Categories lists the registered classification categories.
func (h *GrievanceHandler) Categories(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, h.service.Categories())
}

// Helper methods

func (h *GrievanceHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (h *GrievanceHandler) respondError(w http.ResponseWriter, err error) {
	status := apperrors.GetHTTPStatus(err)

	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		// Unclassified errors stay opaque to the caller.
		appErr = apperrors.Internal("internal server error")
	}

	h.respondJSON(w, status, map[string]interface{}{
		"error": appErr.Message,
		"code":  appErr.Code,
	})
}

func parseIntParam(value string, fallback int) int {
	if value == "" {
		return fallback
	}
	if n, err := strconv.Atoi(value); err == nil {
		return n
	}
	return fallback
}
