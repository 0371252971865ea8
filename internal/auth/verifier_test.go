package auth

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garoui/electricite-be/internal/models"
	"github.com/garoui/electricite-be/internal/storage"
)

type fakeAccounts struct {
	mu       sync.Mutex
	accounts map[int64]models.Account
	err      error
}

func newFakeAccounts(accounts ...models.Account) *fakeAccounts {
	f := &fakeAccounts{accounts: make(map[int64]models.Account)}
	for _, a := range accounts {
		f.accounts[a.ID] = a
	}
	return f
}

func (f *fakeAccounts) FindAccountByID(_ context.Context, id int64) (models.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return models.Account{}, f.err
	}
	a, ok := f.accounts[id]
	if !ok {
		return models.Account{}, storage.ErrNotFound
	}
	return a, nil
}

func (f *fakeAccounts) FindAccountByEmail(_ context.Context, email string) (models.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return models.Account{}, f.err
	}
	for _, a := range f.accounts {
		if a.Email == email {
			return a, nil
		}
	}
	return models.Account{}, storage.ErrNotFound
}

func (f *fakeAccounts) set(a models.Account) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.accounts[a.ID] = a
}

func (f *fakeAccounts) remove(id int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.accounts, id)
}

func activeAccount(id int64, role models.Role) models.Account {
	return models.Account{
		ID:     id,
		Email:  "user@example.com",
		Role:   role,
		Status: models.StatusActive,
	}
}

func bearer(t *testing.T, tokens *TokenManager, a models.Account) string {
	t.Helper()
	raw, err := tokens.Issue(a.ID, a.Email, a.Role)
	require.NoError(t, err)
	return "Bearer " + raw
}

func TestVerifier_Outcomes(t *testing.T) {
	tokens := newTestManager(24 * time.Hour)
	accounts := newFakeAccounts(
		activeAccount(1, models.RoleCustomer),
		models.Account{ID: 2, Email: "p@example.com", Role: models.RoleCandidate, Status: models.StatusPending},
		models.Account{ID: 4, Email: "i@example.com", Role: models.RoleCandidate, Status: models.StatusInactive},
	)
	verifier := NewVerifier(tokens, accounts)

	badSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "electricite-test",
			Subject:   "not-a-number",
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(time.Hour)),
		},
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		want   Outcome
	}{
		{name: "missing header", header: "", want: Unauthenticated},
		{name: "basic scheme", header: "Basic dXNlcjpwYXNz", want: Unauthenticated},
		{name: "bearer without token", header: "Bearer ", want: Unauthenticated},
		{name: "garbage token", header: "Bearer abc.def.ghi", want: Invalid},
		{name: "non numeric subject", header: "Bearer " + badSubject, want: Invalid},
		{name: "active account", header: bearer(t, tokens, activeAccount(1, models.RoleCustomer)), want: Resolved},
		{name: "lowercase scheme", header: "bearer " + bearer(t, tokens, activeAccount(1, models.RoleCustomer))[7:], want: Resolved},
		{name: "pending account", header: bearer(t, tokens, models.Account{ID: 2, Role: models.RoleCandidate}), want: StaleAccount},
		{name: "inactive account", header: bearer(t, tokens, models.Account{ID: 4, Role: models.RoleCandidate}), want: StaleAccount},
		{name: "deleted account", header: bearer(t, tokens, activeAccount(99, models.RoleAdmin)), want: StaleAccount},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := verifier.VerifyAndResolve(context.Background(), tt.header)
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.Outcome)
			if tt.want != Resolved {
				assert.Zero(t, res.Account.ID)
			}
		})
	}
}

func TestVerifier_ExpiredToken(t *testing.T) {
	tokens := newTestManager(time.Hour)
	accounts := newFakeAccounts(activeAccount(1, models.RoleCustomer))
	header := bearer(t, tokens, activeAccount(1, models.RoleCustomer))

	later := NewVerifier(tokens.WithClock(fixedClock(issuedAt.Add(time.Hour))), accounts)
	res, err := later.VerifyAndResolve(context.Background(), header)
	require.NoError(t, err)
	assert.Equal(t, Expired, res.Outcome)
}

func TestVerifier_UsesLiveRoleNotClaim(t *testing.T) {
	tokens := newTestManager(24 * time.Hour)
	accounts := newFakeAccounts(activeAccount(3, models.RoleCandidate))
	verifier := NewVerifier(tokens, accounts)
	header := bearer(t, tokens, activeAccount(3, models.RoleCandidate))

	res, err := verifier.VerifyAndResolve(context.Background(), header)
	require.NoError(t, err)
	require.Equal(t, Resolved, res.Outcome)
	assert.Equal(t, models.RoleCandidate, res.Account.Role)

	accounts.set(activeAccount(3, models.RoleModerator))

	res, err = verifier.VerifyAndResolve(context.Background(), header)
	require.NoError(t, err)
	require.Equal(t, Resolved, res.Outcome)
	assert.Equal(t, models.RoleModerator, res.Account.Role)
}

func TestVerifier_AccountDeactivatedAfterIssue(t *testing.T) {
	tokens := newTestManager(24 * time.Hour)
	accounts := newFakeAccounts(activeAccount(5, models.RolePartner))
	verifier := NewVerifier(tokens, accounts)
	header := bearer(t, tokens, activeAccount(5, models.RolePartner))

	deactivated := activeAccount(5, models.RolePartner)
	deactivated.Status = models.StatusInactive
	accounts.set(deactivated)

	res, err := verifier.VerifyAndResolve(context.Background(), header)
	require.NoError(t, err)
	assert.Equal(t, StaleAccount, res.Outcome)

	accounts.remove(5)
	res, err = verifier.VerifyAndResolve(context.Background(), header)
	require.NoError(t, err)
	assert.Equal(t, StaleAccount, res.Outcome)
}

func TestVerifier_StoreFailureIsAnError(t *testing.T) {
	tokens := newTestManager(24 * time.Hour)
	accounts := newFakeAccounts(activeAccount(1, models.RoleCustomer))
	verifier := NewVerifier(tokens, accounts)
	header := bearer(t, tokens, activeAccount(1, models.RoleCustomer))

	boom := errors.New("connection refused")
	accounts.err = boom

	_, err := verifier.VerifyAndResolve(context.Background(), header)
	assert.ErrorIs(t, err, boom)
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		token  string
		ok     bool
	}{
		{header: "Bearer abc", token: "abc", ok: true},
		{header: "  Bearer   abc  ", token: "abc", ok: true},
		{header: "BEARER abc", token: "abc", ok: true},
		{header: "Bearer", ok: false},
		{header: "Token abc", ok: false},
		{header: "", ok: false},
	}
	for _, tt := range tests {
		token, ok := BearerToken(tt.header)
		assert.Equal(t, tt.ok, ok, tt.header)
		assert.Equal(t, tt.token, token, tt.header)
	}
}

func TestOutcome_String(t *testing.T) {
	assert.Equal(t, "stale_account", StaleAccount.String())
	assert.Equal(t, "outcome(42)", Outcome(42).String())
}
