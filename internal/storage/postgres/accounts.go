package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/garoui/electricite-be/internal/models"
	"github.com/garoui/electricite-be/internal/storage"
)

const accountColumns = `id, email, password_hash, first_name, last_name,
	COALESCE(phone, ''), COALESCE(profession, ''), experience,
	role, status, created_at, updated_at`

// CreateAccount inserts a new account row.
func (s *Store) CreateAccount(ctx context.Context, account models.Account) (models.Account, error) {
	query := `
		INSERT INTO accounts (email, password_hash, first_name, last_name, phone, profession, experience, role, status)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), NULLIF($6, ''), $7, $8, $9)
		RETURNING ` + accountColumns
	row := s.pool.QueryRow(ctx, query,
		account.Email, account.PasswordHash, account.FirstName, account.LastName,
		account.Phone, account.Profession, account.Experience,
		string(account.Role), string(account.Status),
	)
	created, err := scanAccount(row)
	if err != nil {
		if isUniqueViolation(err) {
			return models.Account{}, storage.ErrAlreadyExists
		}
		return models.Account{}, fmt.Errorf("insert account: %w", err)
	}
	return created, nil
}

// FindAccountByID fetches an account by primary key.
func (s *Store) FindAccountByID(ctx context.Context, id int64) (models.Account, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id)
	return scanAccount(row)
}

// FindAccountByEmail fetches an account by email address.
func (s *Store) FindAccountByEmail(ctx context.Context, email string) (models.Account, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE email = $1`, email)
	return scanAccount(row)
}

// ListAccounts returns one page of accounts, newest first, together with the
// number of rows matching the filter.
func (s *Store) ListAccounts(ctx context.Context, filter storage.AccountFilter) ([]models.Account, int, error) {
	query := `
		SELECT ` + accountColumns + `, COUNT(*) OVER()
		FROM accounts
		WHERE ($1::TEXT = '' OR role = $1) AND ($2::TEXT = '' OR status = $2)
		ORDER BY created_at DESC, id DESC
		LIMIT $3 OFFSET $4`
	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.pool.Query(ctx, query, string(filter.Role), string(filter.Status), limit, filter.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	accounts := make([]models.Account, 0)
	total := 0
	for rows.Next() {
		account, err := scanAccount(rows, &total)
		if err != nil {
			return nil, 0, err
		}
		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list accounts: %w", err)
	}
	if len(accounts) == 0 && filter.Offset > 0 {
		// A page past the end still reports the real total.
		err := s.pool.QueryRow(ctx,
			`SELECT COUNT(*) FROM accounts WHERE ($1::TEXT = '' OR role = $1) AND ($2::TEXT = '' OR status = $2)`,
			string(filter.Role), string(filter.Status),
		).Scan(&total)
		if err != nil {
			return nil, 0, fmt.Errorf("count accounts: %w", err)
		}
	}
	return accounts, total, nil
}

// UpdateProfile changes the self-service fields. Empty values keep the stored ones.
func (s *Store) UpdateProfile(ctx context.Context, id int64, update storage.ProfileUpdate) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE accounts SET
			first_name = COALESCE(NULLIF($2, ''), first_name),
			last_name  = COALESCE(NULLIF($3, ''), last_name),
			phone      = COALESCE(NULLIF($4, ''), phone),
			updated_at = NOW()
		WHERE id = $1`,
		id, update.FirstName, update.LastName, update.Phone,
	)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	return affected(tag)
}

// UpdatePassword replaces the stored password hash.
func (s *Store) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE accounts SET password_hash = $2, updated_at = NOW() WHERE id = $1`,
		id, passwordHash,
	)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return affected(tag)
}

// UpdateStatusRole sets the status and, when role is non-nil, the role.
func (s *Store) UpdateStatusRole(ctx context.Context, id int64, status models.Status, role *models.Role) error {
	var roleArg *string
	if role != nil {
		r := string(*role)
		roleArg = &r
	}
	tag, err := s.pool.Exec(ctx, `
		UPDATE accounts SET
			status = $2,
			role = COALESCE($3, role),
			updated_at = NOW()
		WHERE id = $1`,
		id, string(status), roleArg,
	)
	if err != nil {
		return fmt.Errorf("update account status: %w", err)
	}
	return affected(tag)
}

// DeleteAccount removes the account; subscriptions and applications cascade.
func (s *Store) DeleteAccount(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM accounts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	return affected(tag)
}

// scanAccount reads accountColumns followed by any extra destinations.
func scanAccount(row pgx.Row, extra ...any) (models.Account, error) {
	var (
		account models.Account
		role    string
		status  string
	)
	dest := []any{
		&account.ID, &account.Email, &account.PasswordHash, &account.FirstName, &account.LastName,
		&account.Phone, &account.Profession, &account.Experience,
		&role, &status, &account.CreatedAt, &account.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return models.Account{}, notFound(err)
	}

	var err error
	if account.Role, err = models.ParseRole(role); err != nil {
		return models.Account{}, fmt.Errorf("account %d: %w", account.ID, err)
	}
	if account.Status, err = models.ParseStatus(status); err != nil {
		return models.Account{}, fmt.Errorf("account %d: %w", account.ID, err)
	}
	return account, nil
}
