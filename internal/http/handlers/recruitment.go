package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator"

	"github.com/garoui/electricite-be/internal/access"
	"github.com/garoui/electricite-be/internal/http/respond"
	"github.com/garoui/electricite-be/internal/lib/sl"
	"github.com/garoui/electricite-be/internal/middleware"
	"github.com/garoui/electricite-be/internal/models"
	"github.com/garoui/electricite-be/internal/models/dto"
	"github.com/garoui/electricite-be/internal/storage"
)

// RecruitmentHandler serves job applications for applicants and staff.
type RecruitmentHandler struct {
	apps     storage.ApplicationStore
	log      *slog.Logger
	validate *validator.Validate
}

// NewRecruitmentHandler constructs the handler.
func NewRecruitmentHandler(apps storage.ApplicationStore, log *slog.Logger) *RecruitmentHandler {
	return &RecruitmentHandler{apps: apps, log: log, validate: validator.New()}
}

// Register attaches recruitment routes to the router.
func (h *RecruitmentHandler) Register(r chi.Router, guard RouteGuard) {
	r.With(guard.Require(access.JobApplicants)).Post("/applications", h.apply)

	r.Group(func(r chi.Router) {
		r.Use(guard.Authenticate)
		r.Get("/applications/mine", h.mine)
		r.Get("/applications/{id}", h.get)
	})

	r.Route("/admin/applications", func(r chi.Router) {
		r.Use(guard.Require(access.Staff))
		r.Get("/", h.list)
		r.Put("/{id}/status", h.updateStatus)
		r.Delete("/{id}", h.deleteApplication)
	})
}

func (h *RecruitmentHandler) apply(w http.ResponseWriter, r *http.Request) {
	account, _ := middleware.AccountFromContext(r.Context())

	var req dto.ApplyRequest
	if !decode(w, r, h.validate, &req) {
		return
	}
	available, err := parseDate(req.AvailableFrom)
	if err != nil {
		respond.Error(w, r, http.StatusBadRequest, respond.KindValidation, "availableFrom must be an ISO 8601 date")
		return
	}

	created, err := h.apps.CreateApplication(r.Context(), models.Application{
		AccountID:     account.ID,
		Position:      strings.TrimSpace(req.Position),
		Experience:    *req.Experience,
		Education:     strings.TrimSpace(req.Education),
		Motivation:    strings.TrimSpace(req.Motivation),
		AvailableFrom: available,
		DesiredSalary: req.DesiredSalary,
		Status:        models.ApplicationPending,
	})
	if err != nil {
		h.log.Error("failed to create application", slog.Int64("account_id", account.ID), sl.Err(err))
		respond.Internal(w, r)
		return
	}

	h.log.Info("application submitted", slog.Int64("account_id", account.ID), slog.Int64("application_id", created.ID))
	respond.JSON(w, r, http.StatusCreated, "application submitted", created)
}

func (h *RecruitmentHandler) mine(w http.ResponseWriter, r *http.Request) {
	account, _ := middleware.AccountFromContext(r.Context())

	apps, err := h.apps.ListApplicationsByAccount(r.Context(), account.ID)
	if err != nil {
		h.log.Error("failed to list applications", slog.Int64("account_id", account.ID), sl.Err(err))
		respond.Internal(w, r)
		return
	}
	respond.JSON(w, r, http.StatusOK, "applications", apps)
}

// Owners see their own application; admins and moderators see any.
func (h *RecruitmentHandler) get(w http.ResponseWriter, r *http.Request) {
	account, _ := middleware.AccountFromContext(r.Context())
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	app, err := h.apps.FindApplicationByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respond.Error(w, r, http.StatusNotFound, respond.KindNotFound, "application not found")
			return
		}
		h.log.Error("failed to load application", slog.Int64("application_id", id), sl.Err(err))
		respond.Internal(w, r)
		return
	}
	// Foreign applications answer exactly like missing ones.
	if !access.CanAccess(account, app.AccountID) && !access.Staff.Roles.Contains(account.Role) {
		respond.Error(w, r, http.StatusNotFound, respond.KindNotFound, "application not found")
		return
	}
	respond.JSON(w, r, http.StatusOK, "application", app)
}

func (h *RecruitmentHandler) list(w http.ResponseWriter, r *http.Request) {
	page, limit := pagination(r)
	filter := storage.ApplicationFilter{Limit: limit, Offset: (page - 1) * limit}
	if raw := r.URL.Query().Get("status"); raw != "" {
		status, err := models.ParseApplicationStatus(raw)
		if err != nil {
			respond.Error(w, r, http.StatusBadRequest, respond.KindValidation, err.Error())
			return
		}
		filter.Status = status
	}

	apps, err := h.apps.ListApplications(r.Context(), filter)
	if err != nil {
		h.log.Error("failed to list applications", sl.Err(err))
		respond.Internal(w, r)
		return
	}
	respond.JSON(w, r, http.StatusOK, "applications", apps)
}

func (h *RecruitmentHandler) updateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req dto.ApplicationStatusRequest
	if !decode(w, r, h.validate, &req) {
		return
	}
	status, err := models.ParseApplicationStatus(req.Status)
	if err != nil {
		respond.Error(w, r, http.StatusBadRequest, respond.KindValidation, err.Error())
		return
	}

	if err := h.apps.UpdateApplicationStatus(r.Context(), id, status, strings.TrimSpace(req.Comment)); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respond.Error(w, r, http.StatusNotFound, respond.KindNotFound, "application not found")
			return
		}
		h.log.Error("failed to update application", slog.Int64("application_id", id), sl.Err(err))
		respond.Internal(w, r)
		return
	}
	respond.JSON(w, r, http.StatusOK, "application updated", map[string]any{"id": id, "status": status})
}

func (h *RecruitmentHandler) deleteApplication(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.apps.DeleteApplication(r.Context(), id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respond.Error(w, r, http.StatusNotFound, respond.KindNotFound, "application not found")
			return
		}
		h.log.Error("failed to delete application", slog.Int64("application_id", id), sl.Err(err))
		respond.Internal(w, r)
		return
	}
	respond.NoContent(w, r)
}

// parseDate accepts a plain date or a full RFC 3339 timestamp.
func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(time.DateOnly, raw); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, raw)
}
