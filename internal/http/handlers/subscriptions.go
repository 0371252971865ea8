package handlers

import (
	"log/slog"
	"net/http"
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

// SubscriptionHandler lets accounts subscribe, inspect and cancel their plan.
type SubscriptionHandler struct {
	subs     storage.SubscriptionStore
	state    SubscriptionStater
	now      func() time.Time
	log      *slog.Logger
	validate *validator.Validate
}

// NewSubscriptionHandler constructs the handler. A nil now uses time.Now.
func NewSubscriptionHandler(subs storage.SubscriptionStore, state SubscriptionStater, now func() time.Time, log *slog.Logger) *SubscriptionHandler {
	if now == nil {
		now = time.Now
	}
	return &SubscriptionHandler{subs: subs, state: state, now: now, log: log, validate: validator.New()}
}

// Register attaches subscription routes to the router.
func (h *SubscriptionHandler) Register(r chi.Router, guard RouteGuard) {
	r.Use(guard.Authenticate)
	r.Post("/", h.subscribe)
	r.Get("/me", h.mine)
	r.Post("/cancel", h.cancel)
	r.With(guard.Require(access.SubscriptionViewers)).Get("/", h.list)
	r.With(guard.Require(access.AdminOnly)).Get("/active", h.active)
}

func (h *SubscriptionHandler) subscribe(w http.ResponseWriter, r *http.Request) {
	account, _ := middleware.AccountFromContext(r.Context())

	var req dto.SubscribeRequest
	if !decode(w, r, h.validate, &req) {
		return
	}
	plan, err := models.ParsePlan(req.Plan)
	if err != nil {
		respond.Error(w, r, http.StatusBadRequest, respond.KindValidation, err.Error())
		return
	}

	start := h.now().UTC()
	created, err := h.subs.CreateSubscription(r.Context(), models.Subscription{
		AccountID: account.ID,
		Plan:      plan,
		Status:    models.SubscriptionActive,
		StartsAt:  start,
		EndsAt:    start.Add(plan.Duration()),
	})
	if err != nil {
		h.log.Error("failed to create subscription", slog.Int64("account_id", account.ID), sl.Err(err))
		respond.Internal(w, r)
		return
	}

	h.log.Info("subscription created",
		slog.Int64("account_id", account.ID),
		slog.String("plan", string(plan)),
		slog.Time("ends_at", created.EndsAt),
	)
	respond.JSON(w, r, http.StatusCreated, "subscription created", created)
}

func (h *SubscriptionHandler) mine(w http.ResponseWriter, r *http.Request) {
	account, _ := middleware.AccountFromContext(r.Context())

	state, sub, err := h.state.SubscriptionState(r.Context(), account.ID)
	if err != nil {
		h.log.Error("failed to load subscription state", slog.Int64("account_id", account.ID), sl.Err(err))
		respond.Internal(w, r)
		return
	}
	resp := dto.SubscriptionStatusResponse{Status: state}
	if sub != nil {
		resp.StartsAt = timeString(sub.StartsAt)
		resp.EndsAt = timeString(sub.EndsAt)
	}
	respond.JSON(w, r, http.StatusOK, "subscription status", resp)
}

func (h *SubscriptionHandler) cancel(w http.ResponseWriter, r *http.Request) {
	account, _ := middleware.AccountFromContext(r.Context())

	n, err := h.subs.CancelActiveSubscriptions(r.Context(), account.ID, h.now().UTC())
	if err != nil {
		h.log.Error("failed to cancel subscriptions", slog.Int64("account_id", account.ID), sl.Err(err))
		respond.Internal(w, r)
		return
	}
	h.log.Info("subscriptions cancelled", slog.Int64("account_id", account.ID), slog.Int64("count", n))
	respond.NoContent(w, r)
}

// Admins see every subscription; partners only their own.
func (h *SubscriptionHandler) list(w http.ResponseWriter, r *http.Request) {
	account, _ := middleware.AccountFromContext(r.Context())

	var owner *int64
	if account.Role != models.RoleAdmin {
		owner = &account.ID
	}
	subs, err := h.subs.ListSubscriptions(r.Context(), owner)
	if err != nil {
		h.log.Error("failed to list subscriptions", sl.Err(err))
		respond.Internal(w, r)
		return
	}
	respond.JSON(w, r, http.StatusOK, "subscriptions", subs)
}

func (h *SubscriptionHandler) active(w http.ResponseWriter, r *http.Request) {
	subs, err := h.subs.ListActiveSubscriptions(r.Context(), h.now().UTC())
	if err != nil {
		h.log.Error("failed to list active subscriptions", sl.Err(err))
		respond.Internal(w, r)
		return
	}
	respond.JSON(w, r, http.StatusOK, "active subscriptions", subs)
}
