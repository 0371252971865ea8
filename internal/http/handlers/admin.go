package handlers

import (
	"errors"
	"log/slog"
	"net/http"

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

// AdminHandler manages accounts on behalf of administrators.
type AdminHandler struct {
	accounts storage.AccountStore
	log      *slog.Logger
	validate *validator.Validate
}

// NewAdminHandler constructs the handler.
func NewAdminHandler(accounts storage.AccountStore, log *slog.Logger) *AdminHandler {
	return &AdminHandler{accounts: accounts, log: log, validate: validator.New()}
}

// Register attaches admin routes to the router.
func (h *AdminHandler) Register(r chi.Router, guard RouteGuard) {
	r.Use(guard.Require(access.AdminOnly))
	r.Get("/users", h.listUsers)
	r.Put("/users/{id}/status", h.updateStatus)
	r.Delete("/users/{id}", h.deleteUser)
}

func (h *AdminHandler) listUsers(w http.ResponseWriter, r *http.Request) {
	page, limit := pagination(r)
	filter := storage.AccountFilter{Limit: limit, Offset: (page - 1) * limit}

	q := r.URL.Query()
	if raw := q.Get("role"); raw != "" {
		role, err := models.ParseRole(raw)
		if err != nil {
			respond.Error(w, r, http.StatusBadRequest, respond.KindValidation, err.Error())
			return
		}
		filter.Role = role
	}
	if raw := q.Get("status"); raw != "" {
		status, err := models.ParseStatus(raw)
		if err != nil {
			respond.Error(w, r, http.StatusBadRequest, respond.KindValidation, err.Error())
			return
		}
		filter.Status = status
	}

	accounts, total, err := h.accounts.ListAccounts(r.Context(), filter)
	if err != nil {
		h.log.Error("failed to list accounts", sl.Err(err))
		respond.Internal(w, r)
		return
	}
	respond.JSON(w, r, http.StatusOK, "accounts", dto.AccountPage{
		Accounts: accounts,
		Page:     page,
		Limit:    limit,
		Total:    total,
	})
}

func (h *AdminHandler) updateStatus(w http.ResponseWriter, r *http.Request) {
	admin, _ := middleware.AccountFromContext(r.Context())
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req dto.UpdateAccountStatusRequest
	if !decode(w, r, h.validate, &req) {
		return
	}

	status, err := models.ParseStatus(req.Status)
	if err != nil {
		respond.Error(w, r, http.StatusBadRequest, respond.KindValidation, err.Error())
		return
	}
	var role *models.Role
	if req.Role != "" {
		parsed, err := models.ParseRole(req.Role)
		if err != nil {
			respond.Error(w, r, http.StatusBadRequest, respond.KindValidation, err.Error())
			return
		}
		role = &parsed
	}

	if err := h.accounts.UpdateStatusRole(r.Context(), id, status, role); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respond.Error(w, r, http.StatusNotFound, respond.KindNotFound, "account not found")
			return
		}
		h.log.Error("failed to update account", slog.Int64("account_id", id), sl.Err(err))
		respond.Internal(w, r)
		return
	}

	updated, err := h.accounts.FindAccountByID(r.Context(), id)
	if err != nil {
		h.log.Error("failed to reload account", slog.Int64("account_id", id), sl.Err(err))
		respond.Internal(w, r)
		return
	}
	h.log.Info("account updated by admin",
		slog.Int64("admin_id", admin.ID),
		slog.Int64("account_id", id),
		slog.String("status", string(updated.Status)),
		slog.String("role", updated.Role.String()),
	)
	respond.JSON(w, r, http.StatusOK, "account updated", updated)
}

func (h *AdminHandler) deleteUser(w http.ResponseWriter, r *http.Request) {
	admin, _ := middleware.AccountFromContext(r.Context())
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if id == admin.ID {
		respond.Error(w, r, http.StatusBadRequest, respond.KindBadRequest, "administrators cannot delete their own account")
		return
	}

	if err := h.accounts.DeleteAccount(r.Context(), id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respond.Error(w, r, http.StatusNotFound, respond.KindNotFound, "account not found")
			return
		}
		h.log.Error("failed to delete account", slog.Int64("account_id", id), sl.Err(err))
		respond.Internal(w, r)
		return
	}
	h.log.Info("account deleted by admin", slog.Int64("admin_id", admin.ID), slog.Int64("account_id", id))
	respond.NoContent(w, r)
}
