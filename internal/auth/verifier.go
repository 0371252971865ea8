package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/garoui/electricite-be/internal/models"
	"github.com/garoui/electricite-be/internal/storage"
)

// Outcome classifies the result of verifying a bearer credential.
type Outcome int

const (
	// Unauthenticated means no bearer credential was presented.
	Unauthenticated Outcome = iota
	// Expired means the credential is signed correctly but past its expiry.
	Expired
	// Invalid means the credential failed signature or structure checks.
	Invalid
	// StaleAccount means the credential is valid but its account is gone or not active.
	StaleAccount
	// Resolved means the credential maps to a live, active account.
	Resolved
)

func (o Outcome) String() string {
	switch o {
	case Unauthenticated:
		return "unauthenticated"
	case Expired:
		return "expired"
	case Invalid:
		return "invalid"
	case StaleAccount:
		return "stale_account"
	case Resolved:
		return "resolved"
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

// Result is what VerifyAndResolve learned about a request.
type Result struct {
	Outcome Outcome
	// Account is set only when Outcome is Resolved and always reflects the
	// stored record, not the token claims.
	Account models.Account
}

// AccountReader is the slice of the account store needed to authenticate.
type AccountReader interface {
	FindAccountByID(ctx context.Context, id int64) (models.Account, error)
	FindAccountByEmail(ctx context.Context, email string) (models.Account, error)
}

// Verifier turns an Authorization header into a live account.
type Verifier struct {
	tokens   *TokenManager
	accounts AccountReader
}

// NewVerifier constructs a verifier.
func NewVerifier(tokens *TokenManager, accounts AccountReader) *Verifier {
	return &Verifier{tokens: tokens, accounts: accounts}
}

// VerifyAndResolve checks the bearer token in header and re-reads the account
// it names. The returned error is non-nil only when the account store fails;
// every expected rejection is reported through Result.Outcome.
func (v *Verifier) VerifyAndResolve(ctx context.Context, header string) (Result, error) {
	raw, ok := BearerToken(header)
	if !ok {
		return Result{Outcome: Unauthenticated}, nil
	}

	claims, err := v.tokens.Parse(raw)
	switch {
	case errors.Is(err, ErrTokenExpired):
		return Result{Outcome: Expired}, nil
	case err != nil:
		return Result{Outcome: Invalid}, nil
	}
	id, err := claims.AccountID()
	if err != nil {
		return Result{Outcome: Invalid}, nil
	}

	account, err := v.accounts.FindAccountByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return Result{Outcome: StaleAccount}, nil
		}
		return Result{}, fmt.Errorf("resolve account %d: %w", id, err)
	}
	if !account.IsActive() {
		return Result{Outcome: StaleAccount}, nil
	}
	return Result{Outcome: Resolved, Account: account}, nil
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" value.
func BearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", false
	}
	return token, true
}
