// Package storagetest provides an in-memory storage.Store for tests.
package storagetest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/garoui/electricite-be/internal/models"
	"github.com/garoui/electricite-be/internal/storage"
)

var _ storage.Store = (*Memory)(nil)

// Memory is a goroutine-safe in-memory store. Setting Err makes every call
// fail with it.
type Memory struct {
	mu     sync.Mutex
	nextID int64
	now    func() time.Time

	accounts map[int64]models.Account
	subs     map[int64]models.Subscription
	apps     map[int64]models.Application

	Err error
}

// NewMemory returns an empty store stamping rows with now (time.Now when nil).
func NewMemory(now func() time.Time) *Memory {
	if now == nil {
		now = time.Now
	}
	return &Memory{
		now:      now,
		accounts: make(map[int64]models.Account),
		subs:     make(map[int64]models.Subscription),
		apps:     make(map[int64]models.Application),
	}
}

// SetErr makes subsequent calls fail with err, or succeed again when nil.
func (m *Memory) SetErr(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Err = err
}

func (m *Memory) id() int64 {
	m.nextID++
	return m.nextID
}

func (m *Memory) Ping(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Err
}

func (m *Memory) CreateAccount(_ context.Context, a models.Account) (models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return models.Account{}, m.Err
	}
	for _, existing := range m.accounts {
		if existing.Email == a.Email {
			return models.Account{}, storage.ErrAlreadyExists
		}
	}
	if a.ID == 0 {
		a.ID = m.id()
	} else if a.ID > m.nextID {
		m.nextID = a.ID
	}
	now := m.now()
	a.CreatedAt, a.UpdatedAt = now, now
	m.accounts[a.ID] = a
	return a, nil
}

func (m *Memory) FindAccountByID(_ context.Context, id int64) (models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return models.Account{}, m.Err
	}
	a, ok := m.accounts[id]
	if !ok {
		return models.Account{}, storage.ErrNotFound
	}
	return a, nil
}

func (m *Memory) FindAccountByEmail(_ context.Context, email string) (models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return models.Account{}, m.Err
	}
	for _, a := range m.accounts {
		if a.Email == email {
			return a, nil
		}
	}
	return models.Account{}, storage.ErrNotFound
}

func (m *Memory) ListAccounts(_ context.Context, f storage.AccountFilter) ([]models.Account, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, 0, m.Err
	}
	matched := make([]models.Account, 0)
	for _, a := range m.accounts {
		if (f.Role == "" || a.Role == f.Role) && (f.Status == "" || a.Status == f.Status) {
			matched = append(matched, a)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID > matched[j].ID })
	return page(matched, f.Offset, f.Limit), len(matched), nil
}

func (m *Memory) UpdateProfile(_ context.Context, id int64, u storage.ProfileUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	a, ok := m.accounts[id]
	if !ok {
		return storage.ErrNotFound
	}
	if u.FirstName != "" {
		a.FirstName = u.FirstName
	}
	if u.LastName != "" {
		a.LastName = u.LastName
	}
	if u.Phone != "" {
		a.Phone = u.Phone
	}
	a.UpdatedAt = m.now()
	m.accounts[id] = a
	return nil
}

func (m *Memory) UpdatePassword(_ context.Context, id int64, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	a, ok := m.accounts[id]
	if !ok {
		return storage.ErrNotFound
	}
	a.PasswordHash = hash
	m.accounts[id] = a
	return nil
}

func (m *Memory) UpdateStatusRole(_ context.Context, id int64, status models.Status, role *models.Role) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	a, ok := m.accounts[id]
	if !ok {
		return storage.ErrNotFound
	}
	a.Status = status
	if role != nil {
		a.Role = *role
	}
	m.accounts[id] = a
	return nil
}

func (m *Memory) DeleteAccount(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if _, ok := m.accounts[id]; !ok {
		return storage.ErrNotFound
	}
	delete(m.accounts, id)
	for sid, s := range m.subs {
		if s.AccountID == id {
			delete(m.subs, sid)
		}
	}
	for aid, app := range m.apps {
		if app.AccountID == id {
			delete(m.apps, aid)
		}
	}
	return nil
}

func (m *Memory) CreateSubscription(_ context.Context, s models.Subscription) (models.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return models.Subscription{}, m.Err
	}
	s.ID = m.id()
	s.CreatedAt = m.now()
	m.subs[s.ID] = s
	return s, nil
}

func (m *Memory) FindLatestSubscription(_ context.Context, accountID int64) (models.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return models.Subscription{}, m.Err
	}
	var (
		latest models.Subscription
		found  bool
	)
	for _, s := range m.subs {
		if s.AccountID != accountID {
			continue
		}
		if !found || s.EndsAt.After(latest.EndsAt) || (s.EndsAt.Equal(latest.EndsAt) && s.ID > latest.ID) {
			latest, found = s, true
		}
	}
	if !found {
		return models.Subscription{}, storage.ErrNotFound
	}
	return latest, nil
}

func (m *Memory) CancelActiveSubscriptions(_ context.Context, accountID int64, at time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return 0, m.Err
	}
	var n int64
	for id, s := range m.subs {
		if s.AccountID == accountID && s.Status == models.SubscriptionActive {
			cancelledAt := at
			s.Status = models.SubscriptionCancelled
			s.CancelledAt = &cancelledAt
			m.subs[id] = s
			n++
		}
	}
	return n, nil
}

func (m *Memory) ListSubscriptions(_ context.Context, accountID *int64) ([]models.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	out := make([]models.Subscription, 0)
	for _, s := range m.subs {
		if accountID == nil || s.AccountID == *accountID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (m *Memory) ListActiveSubscriptions(_ context.Context, at time.Time) ([]models.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	latest := make(map[int64]models.Subscription)
	for _, s := range m.subs {
		cur, ok := latest[s.AccountID]
		if !ok || s.EndsAt.After(cur.EndsAt) || (s.EndsAt.Equal(cur.EndsAt) && s.ID > cur.ID) {
			latest[s.AccountID] = s
		}
	}
	out := make([]models.Subscription, 0, len(latest))
	for _, s := range latest {
		if s.PremiumAt(at) {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].EndsAt.Equal(out[j].EndsAt) {
			return out[i].EndsAt.Before(out[j].EndsAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *Memory) CreateApplication(_ context.Context, app models.Application) (models.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return models.Application{}, m.Err
	}
	app.ID = m.id()
	if app.Status == "" {
		app.Status = models.ApplicationPending
	}
	now := m.now()
	app.CreatedAt, app.UpdatedAt = now, now
	m.apps[app.ID] = app
	return app, nil
}

func (m *Memory) FindApplicationByID(_ context.Context, id int64) (models.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return models.Application{}, m.Err
	}
	app, ok := m.apps[id]
	if !ok {
		return models.Application{}, storage.ErrNotFound
	}
	return app, nil
}

func (m *Memory) ListApplicationsByAccount(_ context.Context, accountID int64) ([]models.Application, error) {
	return m.listApplications(func(app models.Application) bool { return app.AccountID == accountID }, 0, 0)
}

func (m *Memory) ListApplications(_ context.Context, f storage.ApplicationFilter) ([]models.Application, error) {
	return m.listApplications(func(app models.Application) bool {
		return f.Status == "" || app.Status == f.Status
	}, f.Offset, f.Limit)
}

func (m *Memory) listApplications(keep func(models.Application) bool, offset, limit int) ([]models.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	out := make([]models.Application, 0)
	for _, app := range m.apps {
		if keep(app) {
			out = append(out, app)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return page(out, offset, limit), nil
}

func (m *Memory) UpdateApplicationStatus(_ context.Context, id int64, status models.ApplicationStatus, comment string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	app, ok := m.apps[id]
	if !ok {
		return storage.ErrNotFound
	}
	app.Status = status
	app.AdminComment = comment
	app.UpdatedAt = m.now()
	m.apps[id] = app
	return nil
}

func (m *Memory) DeleteApplication(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if _, ok := m.apps[id]; !ok {
		return storage.ErrNotFound
	}
	delete(m.apps, id)
	return nil
}

func page[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return items[:0]
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
