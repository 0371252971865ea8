package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/garoui/electricite-be/internal/models"
	"github.com/garoui/electricite-be/internal/storage"
)

var (
	// ErrInvalidCredentials covers both unknown emails and wrong passwords.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrAccountDisabled is returned when an inactive account tries to log in.
	ErrAccountDisabled = errors.New("account disabled")
)

// Authenticator validates email/password credentials and issues tokens.
type Authenticator struct {
	accounts AccountReader
	tokens   *TokenManager
}

// NewAuthenticator constructs an Authenticator.
func NewAuthenticator(accounts AccountReader, tokens *TokenManager) *Authenticator {
	return &Authenticator{accounts: accounts, tokens: tokens}
}

// Login checks the password and returns the account with a fresh token.
// Pending accounts may log in; inactive ones may not.
func (a *Authenticator) Login(ctx context.Context, email, password string) (models.Account, string, error) {
	account, err := a.accounts.FindAccountByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return models.Account{}, "", ErrInvalidCredentials
		}
		return models.Account{}, "", fmt.Errorf("find account: %w", err)
	}
	if err := CheckPassword(account.PasswordHash, password); err != nil {
		return models.Account{}, "", err
	}
	if account.Status == models.StatusInactive {
		return models.Account{}, "", ErrAccountDisabled
	}
	token, err := a.Issue(account)
	if err != nil {
		return models.Account{}, "", err
	}
	return account, token, nil
}

// Issue signs a token for an already-verified account.
func (a *Authenticator) Issue(account models.Account) (string, error) {
	return a.tokens.Issue(account.ID, account.Email, account.Role)
}
