package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/maltedev/gatherer-scraper/internal/database"
	"github.com/maltedev/gatherer-scraper/internal/jobs"
	"github.com/maltedev/gatherer-scraper/internal/models"
	"github.com/maltedev/gatherer-scraper/internal/parser"
)

type Crawler interface {
	FetchCardList(ctx context.Context, setName string) ([]*models.CardListRow, error)
	FetchCard(ctx context.Context, multiverseID int) ([]*models.CardFace, error)
}

type JobService interface {
	CreateJob(ctx context.Context, kind jobs.Kind, target string) (*jobs.Job, error)
	GetJob(ctx context.Context, jobID string) (*jobs.Job, error)
	ListJobs(ctx context.Context) ([]*jobs.Job, error)
	GetStats(ctx context.Context) (*jobs.Stats, error)
}

// Catalog reads previously stored crawl results.
type Catalog interface {
	GetCardSet(ctx context.Context, setName string) (*database.CardSet, error)
	GetCard(ctx context.Context, multiverseID int) (*database.Card, error)
}

type Handlers struct {
	crawler Crawler
	jobs    JobService
	catalog Catalog
	logger  *slog.Logger
}

func NewHandlers(crawler Crawler, jobs JobService, catalog Catalog, logger *slog.Logger) *Handlers {
	return &Handlers{
		crawler: crawler,
		jobs:    jobs,
		catalog: catalog,
		logger:  logger.With("component", "api"),
	}
}

// Routes mounts every endpoint below /api/v1.
func (h *Handlers) Routes(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/sets/{set}/cards", h.GetSetCards)
		r.Get("/cards/{multiverseID}", h.GetCard)

		r.Route("/catalog", func(r chi.Router) {
			r.Get("/sets/{set}", h.GetStoredSet)
			r.Get("/cards/{multiverseID}", h.GetStoredCard)
		})

		r.Post("/jobs", h.CreateJob)
		r.Get("/jobs", h.ListJobs)
		r.Get("/jobs/{jobID}", h.GetJob)

		r.Get("/stats", h.GetStats)
	})
}

type SetCardsResponse struct {
	Set   string                `json:"set"`
	Count int                   `json:"count"`
	Cards []*models.CardListRow `json:"cards"`
}

type CardResponse struct {
	MultiverseID int                `json:"multiverse_id"`
	Faces        []*models.CardFace `json:"faces"`
}

// GetSetCards crawls every list page of a set while the request waits.
func (h *Handlers) GetSetCards(w http.ResponseWriter, r *http.Request) {
	set := chi.URLParam(r, "set")
	if set == "" {
		h.respondError(w, http.StatusBadRequest, "set is required")
		return
	}

	rows, err := h.crawler.FetchCardList(r.Context(), set)
	if err != nil {
		h.respondCrawlError(w, "failed to crawl set", err)
		return
	}

	h.respondJSON(w, http.StatusOK, SetCardsResponse{Set: set, Count: len(rows), Cards: rows})
}

func (h *Handlers) GetCard(w http.ResponseWriter, r *http.Request) {
	id, ok := h.multiverseID(w, r)
	if !ok {
		return
	}

	faces, err := h.crawler.FetchCard(r.Context(), id)
	if err != nil {
		h.respondCrawlError(w, "failed to crawl card", err)
		return
	}

	h.respondJSON(w, http.StatusOK, CardResponse{MultiverseID: id, Faces: faces})
}

func (h *Handlers) GetStoredSet(w http.ResponseWriter, r *http.Request) {
	set, err := h.catalog.GetCardSet(r.Context(), chi.URLParam(r, "set"))
	if errors.Is(err, database.ErrNotFound) {
		h.respondError(w, http.StatusNotFound, "set not crawled yet")
		return
	}
	if err != nil {
		h.logger.Error("failed to read stored set", "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to read set")
		return
	}

	h.respondJSON(w, http.StatusOK, set)
}

func (h *Handlers) GetStoredCard(w http.ResponseWriter, r *http.Request) {
	id, ok := h.multiverseID(w, r)
	if !ok {
		return
	}

	card, err := h.catalog.GetCard(r.Context(), id)
	if errors.Is(err, database.ErrNotFound) {
		h.respondError(w, http.StatusNotFound, "card not crawled yet")
		return
	}
	if err != nil {
		h.logger.Error("failed to read stored card", "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to read card")
		return
	}

	h.respondJSON(w, http.StatusOK, card)
}

type CreateJobRequest struct {
	Kind   jobs.Kind `json:"kind"`
	Target string    `json:"target"`
}

type CreateJobResponse struct {
	JobID   string `json:"job_id"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

func (h *Handlers) CreateJob(w http.ResponseWriter, r *http.Request) {
	var req CreateJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	job, err := h.jobs.CreateJob(r.Context(), req.Kind, req.Target)
	if errors.Is(err, jobs.ErrInvalidJob) {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		h.logger.Error("failed to create job", "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to create job")
		return
	}

	h.respondJSON(w, http.StatusCreated, CreateJobResponse{
		JobID:   job.ID,
		Status:  job.Status,
		Message: "Job created successfully",
	})
}

func (h *Handlers) GetJob(w http.ResponseWriter, r *http.Request) {
	job, err := h.jobs.GetJob(r.Context(), chi.URLParam(r, "jobID"))
	if errors.Is(err, jobs.ErrJobNotFound) {
		h.respondError(w, http.StatusNotFound, "job not found")
		return
	}
	if err != nil {
		h.logger.Error("failed to get job", "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to get job")
		return
	}

	h.respondJSON(w, http.StatusOK, job)
}

func (h *Handlers) ListJobs(w http.ResponseWriter, r *http.Request) {
	list, err := h.jobs.ListJobs(r.Context())
	if err != nil {
		h.logger.Error("failed to list jobs", "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to list jobs")
		return
	}

	h.respondJSON(w, http.StatusOK, list)
}

func (h *Handlers) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.jobs.GetStats(r.Context())
	if err != nil {
		h.logger.Error("failed to get stats", "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to get stats")
		return
	}

	h.respondJSON(w, http.StatusOK, stats)
}

func (h *Handlers) multiverseID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "multiverseID"))
	if err != nil || id <= 0 {
		h.respondError(w, http.StatusBadRequest, "multiverse id must be a positive integer")
		return 0, false
	}
	return id, true
}

// respondCrawlError maps upstream page problems to 502; the crawl itself
// never produced partial output.
func (h *Handlers) respondCrawlError(w http.ResponseWriter, message string, err error) {
	h.logger.Error(message, "error", err)

	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		h.respondError(w, http.StatusGatewayTimeout, message)
	case errors.Is(err, parser.ErrMissingReference), errors.Is(err, parser.ErrMalformedReference):
		h.respondError(w, http.StatusBadGateway, message+": unexpected page layout")
	default:
		h.respondError(w, http.StatusBadGateway, message)
	}
}

func (h *Handlers) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handlers) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}
