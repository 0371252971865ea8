package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator"

	"github.com/garoui/electricite-be/internal/auth"
	"github.com/garoui/electricite-be/internal/http/respond"
	"github.com/garoui/electricite-be/internal/lib/sl"
	"github.com/garoui/electricite-be/internal/middleware"
	"github.com/garoui/electricite-be/internal/models"
	"github.com/garoui/electricite-be/internal/models/dto"
	"github.com/garoui/electricite-be/internal/storage"
)

// SubscriptionStater resolves the effective subscription state of an account.
type SubscriptionStater interface {
	SubscriptionState(ctx context.Context, accountID int64) (models.SubscriptionState, *models.Subscription, error)
}

// AuthOptions tunes account creation.
type AuthOptions struct {
	BcryptCost   int
	AutoActivate bool
}

// AuthHandler owns registration, login and self-service profile endpoints.
type AuthHandler struct {
	accounts storage.AccountStore
	authn    *auth.Authenticator
	subs     SubscriptionStater
	opts     AuthOptions
	log      *slog.Logger
	validate *validator.Validate
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(accounts storage.AccountStore, authn *auth.Authenticator, subs SubscriptionStater, opts AuthOptions, log *slog.Logger) *AuthHandler {
	return &AuthHandler{
		accounts: accounts,
		authn:    authn,
		subs:     subs,
		opts:     opts,
		log:      log,
		validate: validator.New(),
	}
}

// Register attaches auth routes to the router.
func (h *AuthHandler) Register(r chi.Router, guard RouteGuard) {
	r.Post("/register", h.register)
	r.Post("/login", h.login)

	r.Group(func(r chi.Router) {
		r.Use(guard.Authenticate)
		r.Get("/profile", h.profile)
		r.Put("/profile", h.updateProfile)
		r.Put("/change-password", h.changePassword)
		r.Post("/logout", h.logout)
	})
}

func (h *AuthHandler) register(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.register"
	log := h.log.With(slog.String("op", op), slog.String("request_id", middleware.RequestIDFromContext(r.Context())))

	var req dto.RegisterRequest
	if !decode(w, r, h.validate, &req) {
		return
	}

	role := models.RoleCustomer
	if req.Role != "" {
		parsed, err := models.ParseRole(req.Role)
		if err != nil {
			respond.Error(w, r, http.StatusBadRequest, respond.KindValidation, err.Error())
			return
		}
		role = parsed
	}
	status := models.StatusPending
	if h.opts.AutoActivate {
		status = models.StatusActive
	}

	hash, err := auth.HashPassword(req.Password, h.opts.BcryptCost)
	if err != nil {
		log.Error("failed to hash password", sl.Err(err))
		respond.Internal(w, r)
		return
	}

	created, err := h.accounts.CreateAccount(r.Context(), models.Account{
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Phone:        strings.TrimSpace(req.Phone),
		Profession:   strings.TrimSpace(req.Profession),
		Experience:   req.Experience,
		Role:         role,
		Status:       status,
	})
	if err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			respond.Error(w, r, http.StatusConflict, respond.KindConflict, "an account with this email already exists")
			return
		}
		log.Error("failed to create account", sl.Err(err))
		respond.Internal(w, r)
		return
	}

	token, err := h.authn.Issue(created)
	if err != nil {
		log.Error("failed to issue token", sl.Err(err))
		respond.Internal(w, r)
		return
	}

	log.Info("account registered", slog.Int64("account_id", created.ID), slog.String("role", created.Role.String()))
	respond.JSON(w, r, http.StatusCreated, "account created", dto.AuthResponse{Token: token, Account: created})
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.login"
	log := h.log.With(slog.String("op", op), slog.String("request_id", middleware.RequestIDFromContext(r.Context())))

	var req dto.LoginRequest
	if !decode(w, r, h.validate, &req) {
		return
	}

	account, token, err := h.authn.Login(r.Context(), req.Email, req.Password)
	switch {
	case err == nil:
	case errors.Is(err, auth.ErrInvalidCredentials):
		respond.Error(w, r, http.StatusUnauthorized, respond.KindInvalidCredentials, "invalid email or password")
		return
	case errors.Is(err, auth.ErrAccountDisabled):
		respond.Error(w, r, http.StatusForbidden, respond.KindAccountDisabled, "this account has been deactivated")
		return
	default:
		log.Error("login failed", sl.Err(err))
		respond.Internal(w, r)
		return
	}

	respond.JSON(w, r, http.StatusOK, "login successful", dto.AuthResponse{Token: token, Account: account})
}

func (h *AuthHandler) profile(w http.ResponseWriter, r *http.Request) {
	account, _ := middleware.AccountFromContext(r.Context())

	state, sub, err := h.subs.SubscriptionState(r.Context(), account.ID)
	if err != nil {
		h.log.Error("failed to load subscription state", slog.Int64("account_id", account.ID), sl.Err(err))
		respond.Internal(w, r)
		return
	}

	resp := dto.ProfileResponse{Account: account, SubscriptionStatus: state}
	if sub != nil {
		resp.SubscriptionEndDate = timeString(sub.EndsAt)
	}
	respond.JSON(w, r, http.StatusOK, "profile", resp)
}

func (h *AuthHandler) updateProfile(w http.ResponseWriter, r *http.Request) {
	account, _ := middleware.AccountFromContext(r.Context())

	var req dto.UpdateProfileRequest
	if !decode(w, r, h.validate, &req) {
		return
	}
	update := storage.ProfileUpdate{
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Phone:     strings.TrimSpace(req.Phone),
	}
	if update == (storage.ProfileUpdate{}) {
		respond.Error(w, r, http.StatusBadRequest, respond.KindValidation, "nothing to update")
		return
	}

	if err := h.accounts.UpdateProfile(r.Context(), account.ID, update); err != nil {
		h.log.Error("failed to update profile", slog.Int64("account_id", account.ID), sl.Err(err))
		respond.Internal(w, r)
		return
	}
	updated, err := h.accounts.FindAccountByID(r.Context(), account.ID)
	if err != nil {
		h.log.Error("failed to reload account", slog.Int64("account_id", account.ID), sl.Err(err))
		respond.Internal(w, r)
		return
	}
	respond.JSON(w, r, http.StatusOK, "profile updated", updated)
}

func (h *AuthHandler) changePassword(w http.ResponseWriter, r *http.Request) {
	account, _ := middleware.AccountFromContext(r.Context())

	var req dto.ChangePasswordRequest
	if !decode(w, r, h.validate, &req) {
		return
	}
	if err := auth.CheckPassword(account.PasswordHash, req.CurrentPassword); err != nil {
		respond.Error(w, r, http.StatusBadRequest, respond.KindInvalidCredentials, "current password is incorrect")
		return
	}

	hash, err := auth.HashPassword(req.NewPassword, h.opts.BcryptCost)
	if err != nil {
		h.log.Error("failed to hash password", sl.Err(err))
		respond.Internal(w, r)
		return
	}
	if err := h.accounts.UpdatePassword(r.Context(), account.ID, hash); err != nil {
		h.log.Error("failed to update password", slog.Int64("account_id", account.ID), sl.Err(err))
		respond.Internal(w, r)
		return
	}
	respond.JSON(w, r, http.StatusOK, "password changed", nil)
}

// Tokens are stateless, so logout only acknowledges; the client drops the token.
func (h *AuthHandler) logout(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, r, http.StatusOK, "logged out", nil)
}
