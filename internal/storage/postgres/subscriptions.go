package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/garoui/electricite-be/internal/models"
)

const subscriptionColumns = `id, account_id, plan, status, starts_at, ends_at, cancelled_at, created_at`

// CreateSubscription inserts a new subscription row.
func (s *Store) CreateSubscription(ctx context.Context, sub models.Subscription) (models.Subscription, error) {
	query := `
		INSERT INTO subscriptions (account_id, plan, status, starts_at, ends_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + subscriptionColumns
	row := s.pool.QueryRow(ctx, query, sub.AccountID, string(sub.Plan), string(sub.Status), sub.StartsAt, sub.EndsAt)
	created, err := scanSubscription(row)
	if err != nil {
		return models.Subscription{}, fmt.Errorf("insert subscription: %w", err)
	}
	return created, nil
}

// FindLatestSubscription returns the subscription with the latest end date.
func (s *Store) FindLatestSubscription(ctx context.Context, accountID int64) (models.Subscription, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+subscriptionColumns+`
		FROM subscriptions
		WHERE account_id = $1
		ORDER BY ends_at DESC, id DESC
		LIMIT 1`, accountID)
	return scanSubscription(row)
}

// CancelActiveSubscriptions marks every active subscription of the account
// cancelled and reports how many rows changed.
func (s *Store) CancelActiveSubscriptions(ctx context.Context, accountID int64, at time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx, `
		UPDATE subscriptions SET status = 'cancelled', cancelled_at = $2
		WHERE account_id = $1 AND status = 'active'`,
		accountID, at,
	)
	if err != nil {
		return 0, fmt.Errorf("cancel subscriptions: %w", err)
	}
	return tag.RowsAffected(), nil
}

// ListSubscriptions lists subscriptions newest first, all of them when
// accountID is nil.
func (s *Store) ListSubscriptions(ctx context.Context, accountID *int64) ([]models.Subscription, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+subscriptionColumns+`
		FROM subscriptions
		WHERE $1::BIGINT IS NULL OR account_id = $1
		ORDER BY created_at DESC, id DESC`, accountID)
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	defer rows.Close()

	subs := make([]models.Subscription, 0)
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	return subs, nil
}

// ListActiveSubscriptions returns each account's latest subscription when it
// is active and ends after at, soonest expiry first.
func (s *Store) ListActiveSubscriptions(ctx context.Context, at time.Time) ([]models.Subscription, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+subscriptionColumns+`
		FROM (
			SELECT DISTINCT ON (account_id) `+subscriptionColumns+`
			FROM subscriptions
			ORDER BY account_id, ends_at DESC, id DESC
		) latest
		WHERE status = 'active' AND ends_at > $1
		ORDER BY ends_at ASC, id ASC`, at)
	if err != nil {
		return nil, fmt.Errorf("list active subscriptions: %w", err)
	}
	defer rows.Close()

	subs := make([]models.Subscription, 0)
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list active subscriptions: %w", err)
	}
	return subs, nil
}

func scanSubscription(row pgx.Row) (models.Subscription, error) {
	var (
		sub    models.Subscription
		plan   string
		status string
	)
	if err := row.Scan(&sub.ID, &sub.AccountID, &plan, &status, &sub.StartsAt, &sub.EndsAt, &sub.CancelledAt, &sub.CreatedAt); err != nil {
		return models.Subscription{}, notFound(err)
	}
	sub.Plan = models.Plan(plan)
	sub.Status = models.SubscriptionStatus(status)
	return sub, nil
}
