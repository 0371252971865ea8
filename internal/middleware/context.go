package middleware

import (
	"context"

	"github.com/garoui/electricite-be/internal/models"
)

type ctxKey int

const (
	accountKey ctxKey = iota
	accountHolderKey
	requestIDKey
)

type accountHolder struct {
	set       bool
	accountID int64
}

func withAccountHolder(ctx context.Context, h *accountHolder) context.Context {
	return context.WithValue(ctx, accountHolderKey, h)
}

// WithAccount stores the resolved account on ctx.
func WithAccount(ctx context.Context, account models.Account) context.Context {
	if h, ok := ctx.Value(accountHolderKey).(*accountHolder); ok {
		h.set = true
		h.accountID = account.ID
	}
	return context.WithValue(ctx, accountKey, account)
}

// AccountFromContext returns the account resolved earlier in the chain.
func AccountFromContext(ctx context.Context) (models.Account, bool) {
	account, ok := ctx.Value(accountKey).(models.Account)
	return account, ok
}

// RequestIDFromContext returns the request id assigned by RequestID.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}
