package storage

import (
	"context"
	"errors"
	"time"

	"github.com/garoui/electricite-be/internal/models"
)

// ErrNotFound indicates a record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrAlreadyExists indicates a uniqueness conflict.
var ErrAlreadyExists = errors.New("record already exists")

// AccountFilter narrows an account listing. Zero values mean "any".
type AccountFilter struct {
	Role   models.Role
	Status models.Status
	Limit  int
	Offset int
}

// ProfileUpdate carries the self-service editable account fields. Empty
// strings leave the stored value untouched.
type ProfileUpdate struct {
	FirstName string
	LastName  string
	Phone     string
}

// AccountStore captures account persistence needed by handlers and the verifier.
type AccountStore interface {
	CreateAccount(ctx context.Context, account models.Account) (models.Account, error)
	FindAccountByID(ctx context.Context, id int64) (models.Account, error)
	FindAccountByEmail(ctx context.Context, email string) (models.Account, error)
	ListAccounts(ctx context.Context, filter AccountFilter) ([]models.Account, int, error)
	UpdateProfile(ctx context.Context, id int64, update ProfileUpdate) error
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	UpdateStatusRole(ctx context.Context, id int64, status models.Status, role *models.Role) error
	DeleteAccount(ctx context.Context, id int64) error
}

// SubscriptionStore captures subscription persistence.
type SubscriptionStore interface {
	CreateSubscription(ctx context.Context, sub models.Subscription) (models.Subscription, error)
	// FindLatestSubscription returns the account's subscription with the
	// latest end date, or ErrNotFound when it never subscribed.
	FindLatestSubscription(ctx context.Context, accountID int64) (models.Subscription, error)
	CancelActiveSubscriptions(ctx context.Context, accountID int64, at time.Time) (int64, error)
	// ListSubscriptions lists every subscription when accountID is nil.
	ListSubscriptions(ctx context.Context, accountID *int64) ([]models.Subscription, error)
	// ListActiveSubscriptions returns, per account, the latest subscription
	// when it grants premium access at the given instant.
	ListActiveSubscriptions(ctx context.Context, at time.Time) ([]models.Subscription, error)
}

// ApplicationFilter narrows the staff application listing.
type ApplicationFilter struct {
	Status models.ApplicationStatus
	Limit  int
	Offset int
}

// ApplicationStore captures job application persistence.
type ApplicationStore interface {
	CreateApplication(ctx context.Context, app models.Application) (models.Application, error)
	FindApplicationByID(ctx context.Context, id int64) (models.Application, error)
	ListApplicationsByAccount(ctx context.Context, accountID int64) ([]models.Application, error)
	ListApplications(ctx context.Context, filter ApplicationFilter) ([]models.Application, error)
	UpdateApplicationStatus(ctx context.Context, id int64, status models.ApplicationStatus, comment string) error
	DeleteApplication(ctx context.Context, id int64) error
}

// Store is the full persistence surface used by the server.
type Store interface {
	AccountStore
	SubscriptionStore
	ApplicationStore
	Ping(ctx context.Context) error
}
