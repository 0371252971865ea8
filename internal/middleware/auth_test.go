package middleware_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/garoui/electricite-be/internal/access"
	"github.com/garoui/electricite-be/internal/auth"
	"github.com/garoui/electricite-be/internal/http/respond"
	"github.com/garoui/electricite-be/internal/metrics"
	"github.com/garoui/electricite-be/internal/middleware"
	"github.com/garoui/electricite-be/internal/models"
	"github.com/garoui/electricite-be/internal/storage"
)

type ResolverMock struct {
	mock.Mock
}

func (m *ResolverMock) VerifyAndResolve(ctx context.Context, header string) (auth.Result, error) {
	args := m.Called(ctx, header)
	res, _ := args.Get(0).(auth.Result)
	return res, args.Error(1)
}

type DeciderMock struct {
	mock.Mock
}

func (m *DeciderMock) Authorize(ctx context.Context, account models.Account, guard access.Guard) (access.Decision, error) {
	args := m.Called(ctx, account, guard)
	d, _ := args.Get(0).(access.Decision)
	return d, args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func newCollector() *metrics.Collector {
	return metrics.NewCollector(prometheus.NewRegistry())
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) respond.Envelope {
	t.Helper()
	var body respond.Envelope
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

var customer = models.Account{ID: 9, Email: "c@example.com", Role: models.RoleCustomer, Status: models.StatusActive}

func TestAuthenticate(t *testing.T) {
	tests := []struct {
		name       string
		result     auth.Result
		err        error
		wantStatus int
		wantKind   string
		wantCalled bool
	}{
		{name: "no credential", result: auth.Result{Outcome: auth.Unauthenticated}, wantStatus: http.StatusUnauthorized, wantKind: respond.KindUnauthenticated},
		{name: "expired", result: auth.Result{Outcome: auth.Expired}, wantStatus: http.StatusUnauthorized, wantKind: respond.KindTokenExpired},
		{name: "invalid", result: auth.Result{Outcome: auth.Invalid}, wantStatus: http.StatusUnauthorized, wantKind: respond.KindTokenInvalid},
		{name: "stale account", result: auth.Result{Outcome: auth.StaleAccount}, wantStatus: http.StatusUnauthorized, wantKind: respond.KindStaleAccount},
		{name: "store failure", err: errors.New("db down"), wantStatus: http.StatusInternalServerError, wantKind: respond.KindInternal},
		{name: "resolved", result: auth.Result{Outcome: auth.Resolved, Account: customer}, wantStatus: http.StatusOK, wantCalled: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolver := new(ResolverMock)
			resolver.On("VerifyAndResolve", mock.Anything, "Bearer token").Return(tt.result, tt.err).Once()
			authz := middleware.NewAuthorizer(resolver, new(DeciderMock), newCollector(), newNoopLogger())

			called := false
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
				account, ok := middleware.AccountFromContext(r.Context())
				assert.True(t, ok)
				assert.Equal(t, customer, account)
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/api/auth/profile", nil)
			req.Header.Set("Authorization", "Bearer token")
			rec := httptest.NewRecorder()
			authz.Authenticate(next).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantCalled, called)
			if tt.wantKind != "" {
				assert.Equal(t, tt.wantKind, decodeEnvelope(t, rec).Error)
			}
			if tt.wantStatus == http.StatusUnauthorized {
				assert.NotEmpty(t, rec.Header().Get("WWW-Authenticate"))
			}
			resolver.AssertExpectations(t)
		})
	}
}

func TestRequire_Decisions(t *testing.T) {
	tests := []struct {
		name       string
		decision   access.Decision
		err        error
		wantStatus int
		wantKind   string
	}{
		{name: "allow", decision: access.Allow, wantStatus: http.StatusOK},
		{name: "forbidden", decision: access.Forbidden, wantStatus: http.StatusForbidden, wantKind: respond.KindForbidden},
		{name: "subscription required", decision: access.SubscriptionRequired, wantStatus: http.StatusForbidden, wantKind: respond.KindSubscriptionRequired},
		{name: "store failure", decision: access.Forbidden, err: errors.New("timeout"), wantStatus: http.StatusInternalServerError, wantKind: respond.KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolver := new(ResolverMock)
			resolver.On("VerifyAndResolve", mock.Anything, "Bearer token").
				Return(auth.Result{Outcome: auth.Resolved, Account: customer}, nil).Once()
			decider := new(DeciderMock)
			decider.On("Authorize", mock.Anything, customer, access.AdminOnly).Return(tt.decision, tt.err).Once()
			authz := middleware.NewAuthorizer(resolver, decider, newCollector(), newNoopLogger())

			next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
			req := httptest.NewRequest(http.MethodGet, "/api/admin/users", nil)
			req.Header.Set("Authorization", "Bearer token")
			rec := httptest.NewRecorder()
			authz.Require(access.AdminOnly)(next).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantKind != "" {
				assert.Equal(t, tt.wantKind, decodeEnvelope(t, rec).Error)
			}
			resolver.AssertExpectations(t)
			decider.AssertExpectations(t)
		})
	}
}

func TestRequire_ReusesAccountFromAuthenticate(t *testing.T) {
	resolver := new(ResolverMock)
	resolver.On("VerifyAndResolve", mock.Anything, "Bearer token").
		Return(auth.Result{Outcome: auth.Resolved, Account: customer}, nil).Once()
	decider := new(DeciderMock)
	decider.On("Authorize", mock.Anything, customer, access.Authenticated).Return(access.Allow, nil).Once()
	authz := middleware.NewAuthorizer(resolver, decider, newCollector(), newNoopLogger())

	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) })
	handler := authz.Authenticate(authz.Require(access.Authenticated)(next))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	resolver.AssertNumberOfCalls(t, "VerifyAndResolve", 1)
	decider.AssertExpectations(t)
}

func TestRequire_StandaloneRejectsUnauthenticated(t *testing.T) {
	resolver := new(ResolverMock)
	resolver.On("VerifyAndResolve", mock.Anything, "").Return(auth.Result{Outcome: auth.Unauthenticated}, nil).Once()
	decider := new(DeciderMock)
	authz := middleware.NewAuthorizer(resolver, decider, newCollector(), newNoopLogger())

	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { t.Fatal("next must not run") })
	rec := httptest.NewRecorder()
	authz.Require(access.Staff)(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, respond.KindUnauthenticated, decodeEnvelope(t, rec).Error)
	decider.AssertNotCalled(t, "Authorize", mock.Anything, mock.Anything, mock.Anything)
}

// memoryStore backs the end-to-end scenarios with the real verifier and gate.
type memoryStore struct {
	accounts map[int64]models.Account
	subs     map[int64]models.Subscription
}

func (m *memoryStore) FindAccountByID(_ context.Context, id int64) (models.Account, error) {
	a, ok := m.accounts[id]
	if !ok {
		return models.Account{}, storage.ErrNotFound
	}
	return a, nil
}

func (m *memoryStore) FindAccountByEmail(_ context.Context, _ string) (models.Account, error) {
	return models.Account{}, storage.ErrNotFound
}

func (m *memoryStore) FindLatestSubscription(_ context.Context, accountID int64) (models.Subscription, error) {
	s, ok := m.subs[accountID]
	if !ok {
		return models.Subscription{}, storage.ErrNotFound
	}
	return s, nil
}

func TestAuthorizationChain_Scenarios(t *testing.T) {
	now := time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	store := &memoryStore{
		accounts: map[int64]models.Account{
			5: {ID: 5, Email: "five@example.com", Role: models.RoleCandidate, Status: models.StatusActive},
			6: {ID: 6, Email: "six@example.com", Role: models.RoleCandidate, Status: models.StatusActive},
			7: {ID: 7, Email: "seven@example.com", Role: models.RoleCandidate, Status: models.StatusActive},
			9: {ID: 9, Email: "nine@example.com", Role: models.RoleCustomer, Status: models.StatusActive},
		},
		subs: map[int64]models.Subscription{
			5: {ID: 1, AccountID: 5, Status: models.SubscriptionCancelled, EndsAt: now.Add(20 * 24 * time.Hour)},
			6: {ID: 2, AccountID: 6, Status: models.SubscriptionActive, EndsAt: now.Add(20 * 24 * time.Hour)},
			9: {ID: 3, AccountID: 9, Status: models.SubscriptionActive, EndsAt: now.Add(20 * 24 * time.Hour)},
		},
	}
	tokens := auth.NewTokenManager("scenario-secret", "electricite-test", 24*time.Hour).WithClock(clock)
	authz := middleware.NewAuthorizer(
		auth.NewVerifier(tokens, store),
		access.NewGate(store, clock),
		newCollector(),
		newNoopLogger(),
	)
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })

	tests := []struct {
		name       string
		accountID  int64
		guard      access.Guard
		wantStatus int
		wantKind   string
	}{
		{name: "candidate without subscription applies", accountID: 7, guard: access.JobApplicants, wantStatus: http.StatusForbidden, wantKind: respond.KindSubscriptionRequired},
		{name: "candidate with cancelled subscription applies", accountID: 5, guard: access.JobApplicants, wantStatus: http.StatusForbidden, wantKind: respond.KindSubscriptionRequired},
		{name: "candidate with premium subscription applies", accountID: 6, guard: access.JobApplicants, wantStatus: http.StatusOK},
		{name: "customer on admin route", accountID: 9, guard: access.AdminOnly, wantStatus: http.StatusForbidden, wantKind: respond.KindForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := store.accounts[tt.accountID]
			raw, err := tokens.Issue(a.ID, a.Email, a.Role)
			require.NoError(t, err)

			req := httptest.NewRequest(http.MethodPost, "/", nil)
			req.Header.Set("Authorization", "Bearer "+raw)
			rec := httptest.NewRecorder()
			authz.Require(tt.guard)(ok).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantKind != "" {
				assert.Equal(t, tt.wantKind, decodeEnvelope(t, rec).Error)
			}
		})
	}
}
