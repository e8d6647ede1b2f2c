// Package api implements the course discovery REST API using chi.
package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/hacktheburgh/coursefinder/internal/catalog"
	"github.com/hacktheburgh/coursefinder/internal/chat"
	"github.com/hacktheburgh/coursefinder/internal/model"
	"github.com/hacktheburgh/coursefinder/internal/runlog"
	"github.com/hacktheburgh/coursefinder/internal/scrape"
	"github.com/hacktheburgh/coursefinder/pkg/anthropic"
)

// Handler holds API route handlers. The catalogue is re-read from disk per
// request; the scraper rewrites those files underneath a running server and
// a stale in-memory cache would mask a fresh scrape.
type Handler struct {
	store   *catalog.Store
	advisor *chat.Advisor
	bullets *chat.Bullets
	scraper *scrape.Runner
	runs    *runlog.Store
}

// NewHandler creates a Handler over the catalogue and its collaborators.
func NewHandler(store *catalog.Store, advisor *chat.Advisor, bullets *chat.Bullets, scraper *scrape.Runner, runs *runlog.Store) *Handler {
	return &Handler{
		store:   store,
		advisor: advisor,
		bullets: bullets,
		scraper: scraper,
		runs:    runs,
	}
}

// Health handles GET /health.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ListCourses handles GET /api/courses. An empty catalogue is an empty list
// plus diagnostics, never fabricated sample data.
func (h *Handler) ListCourses(w http.ResponseWriter, r *http.Request) {
	courses, stats, err := h.store.LoadCourses(r.Context())
	if err != nil {
		zap.L().Error("load courses failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}

	criteria := criteriaFromQuery(r.URL.Query())
	filtered := criteria.Apply(courses)

	writeJSON(w, http.StatusOK, map[string]any{
		"courses":     filtered,
		"total":       len(filtered),
		"diagnostics": stats,
	})
}

// ListColleges handles GET /api/colleges.
func (h *Handler) ListColleges(w http.ResponseWriter, r *http.Request) {
	colleges, err := h.store.LoadColleges(r.Context())
	if err != nil {
		zap.L().Error("load colleges failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	if colleges == nil {
		colleges = []model.College{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"colleges": colleges})
}

// ListSubjects handles GET /api/subjects.
func (h *Handler) ListSubjects(w http.ResponseWriter, r *http.Request) {
	subjects, err := h.store.LoadSubjects(r.Context())
	if err != nil {
		zap.L().Error("load subjects failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	if subjects == nil {
		subjects = []model.Subject{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"subjects": subjects})
}

// GetCourse handles GET /api/course/{code}.
func (h *Handler) GetCourse(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	course, err := h.store.GetCourse(r.Context(), code)
	if err != nil {
		zap.L().Error("get course failed", zap.String("code", code), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	if course == nil {
		writeJSON(w, http.StatusNotFound, errorBody("course not found"))
		return
	}
	writeJSON(w, http.StatusOK, course)
}

// Chatbot handles POST /api/chatbot.
func (h *Handler) Chatbot(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req struct {
		Messages []anthropic.Message `json:"messages"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid request body"))
		return
	}

	courses, _, err := h.store.LoadCourses(r.Context())
	if err != nil {
		zap.L().Error("load courses for chat failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}

	reply := h.advisor.Reply(r.Context(), req.Messages, courses)
	matches := h.advisor.Matches(courses, req.Messages)
	if matches == nil {
		matches = []catalog.ScoredCourse{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": reply,
		"matches": matches,
	})
}

// GenerateBullets handles POST /api/generateBullets. API failures surface as
// the canned error bullets, not an HTTP error; the front end renders whatever
// three lines come back.
func (h *Handler) GenerateBullets(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req struct {
		Summary     string `json:"summary"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid request body"))
		return
	}

	points, err := h.bullets.Generate(r.Context(), req.Summary, req.Description)
	if err != nil {
		zap.L().Warn("bullet generation degraded", zap.Error(err))
	}
	writeJSON(w, http.StatusOK, map[string]any{"bulletPoints": points})
}

// Scrape handles POST /api/scrape: records a run and launches the external
// scraper in the background.
func (h *Handler) Scrape(w http.ResponseWriter, r *http.Request) {
	run, err := h.scraper.Launch(r.Context())
	if err != nil {
		zap.L().Error("launch scrape failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusAccepted, run)
}

// ListRuns handles GET /api/runs.
func (h *Handler) ListRuns(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	runs, err := h.runs.List(r.Context(), runlog.Filter{Limit: limit})
	if err != nil {
		zap.L().Error("list runs failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	if runs == nil {
		runs = []runlog.Run{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"runs": runs})
}
