package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/garoui/electricite-be/internal/access"
	"github.com/garoui/electricite-be/internal/auth"
	"github.com/garoui/electricite-be/internal/http/respond"
	"github.com/garoui/electricite-be/internal/lib/sl"
	"github.com/garoui/electricite-be/internal/models"
)

// IdentityResolver turns an Authorization header into a live account.
type IdentityResolver interface {
	VerifyAndResolve(ctx context.Context, header string) (auth.Result, error)
}

// Decider authorizes a resolved account against a guard.
type Decider interface {
	Authorize(ctx context.Context, account models.Account, guard access.Guard) (access.Decision, error)
}

// AuthRecorder receives authentication and authorization outcomes.
type AuthRecorder interface {
	RecordAuthOutcome(outcome string)
	RecordGateDecision(guard, decision string)
}

// Authorizer wires identity resolution and the authorization gate into HTTP
// middleware. Every request is evaluated afresh.
type Authorizer struct {
	resolver IdentityResolver
	decider  Decider
	recorder AuthRecorder
	logger   *slog.Logger
}

// NewAuthorizer constructs an Authorizer.
func NewAuthorizer(resolver IdentityResolver, decider Decider, recorder AuthRecorder, logger *slog.Logger) *Authorizer {
	return &Authorizer{resolver: resolver, decider: decider, recorder: recorder, logger: logger}
}

// Authenticate rejects requests without a valid token for an active account
// and stores the resolved account on the request context.
func (a *Authorizer) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		account, ok := a.resolve(w, r)
		if !ok {
			return
		}
		next.ServeHTTP(w, r.WithContext(WithAccount(r.Context(), account)))
	})
}

// Require admits requests whose account passes guard. When no earlier
// Authenticate ran it resolves the identity itself, so it can be mounted on
// its own or after Authenticate with the same result.
func (a *Authorizer) Require(guard access.Guard) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			account, ok := AccountFromContext(ctx)
			if !ok {
				if account, ok = a.resolve(w, r); !ok {
					return
				}
				ctx = WithAccount(ctx, account)
			}

			decision, err := a.decider.Authorize(ctx, account, guard)
			if err != nil {
				a.logger.Error("authorization failed",
					slog.String("guard", guard.Name),
					slog.Int64("account_id", account.ID),
					slog.String("request_id", RequestIDFromContext(ctx)),
					sl.Err(err),
				)
				a.recordDecision(guard.Name, "error")
				respond.Internal(w, r)
				return
			}
			a.recordDecision(guard.Name, decision.String())

			switch decision {
			case access.Allow:
				next.ServeHTTP(w, r.WithContext(ctx))
			case access.SubscriptionRequired:
				respond.Error(w, r, http.StatusForbidden, respond.KindSubscriptionRequired,
					"an active subscription is required for this action")
			default:
				respond.Error(w, r, http.StatusForbidden, respond.KindForbidden,
					"you do not have permission to access this resource")
			}
		})
	}
}

func (a *Authorizer) resolve(w http.ResponseWriter, r *http.Request) (models.Account, bool) {
	res, err := a.resolver.VerifyAndResolve(r.Context(), r.Header.Get("Authorization"))
	if err != nil {
		a.logger.Error("identity resolution failed",
			slog.String("request_id", RequestIDFromContext(r.Context())),
			sl.Err(err),
		)
		a.recordOutcome("error")
		respond.Internal(w, r)
		return models.Account{}, false
	}
	a.recordOutcome(res.Outcome.String())
	if res.Outcome == auth.Resolved {
		return res.Account, true
	}

	kind, message := rejection(res.Outcome)
	w.Header().Set("WWW-Authenticate", `Bearer realm="api"`)
	respond.Error(w, r, http.StatusUnauthorized, kind, message)
	return models.Account{}, false
}

func rejection(outcome auth.Outcome) (kind, message string) {
	switch outcome {
	case auth.Expired:
		return respond.KindTokenExpired, "your session has expired, please log in again"
	case auth.Invalid:
		return respond.KindTokenInvalid, "the access token is invalid"
	case auth.StaleAccount:
		return respond.KindStaleAccount, "account not found or deactivated"
	default:
		return respond.KindUnauthenticated, "an access token is required"
	}
}

func (a *Authorizer) recordOutcome(outcome string) {
	if a.recorder != nil {
		a.recorder.RecordAuthOutcome(outcome)
	}
}

func (a *Authorizer) recordDecision(guard, decision string) {
	if a.recorder != nil {
		a.recorder.RecordGateDecision(guard, decision)
	}
}
