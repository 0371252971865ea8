package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/garoui/electricite-be/internal/models"
	"github.com/garoui/electricite-be/internal/storage"
)

const applicationColumns = `id, account_id, position, experience, education, motivation,
	available_from, desired_salary::FLOAT8, status, COALESCE(admin_comment, ''), created_at, updated_at`

// CreateApplication inserts a new job application.
func (s *Store) CreateApplication(ctx context.Context, app models.Application) (models.Application, error) {
	query := `
		INSERT INTO applications (account_id, position, experience, education, motivation, available_from, desired_salary, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + applicationColumns
	status := app.Status
	if status == "" {
		status = models.ApplicationPending
	}
	row := s.pool.QueryRow(ctx, query,
		app.AccountID, app.Position, app.Experience, app.Education, app.Motivation,
		app.AvailableFrom, app.DesiredSalary, string(status),
	)
	created, err := scanApplication(row)
	if err != nil {
		return models.Application{}, fmt.Errorf("insert application: %w", err)
	}
	return created, nil
}

// FindApplicationByID fetches one application.
func (s *Store) FindApplicationByID(ctx context.Context, id int64) (models.Application, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+applicationColumns+` FROM applications WHERE id = $1`, id)
	return scanApplication(row)
}

// ListApplicationsByAccount lists an account's applications, newest first.
func (s *Store) ListApplicationsByAccount(ctx context.Context, accountID int64) ([]models.Application, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+applicationColumns+`
		FROM applications
		WHERE account_id = $1
		ORDER BY created_at DESC, id DESC`, accountID)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	return collectApplications(rows)
}

// ListApplications lists applications for staff review, newest first.
func (s *Store) ListApplications(ctx context.Context, filter storage.ApplicationFilter) ([]models.Application, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.pool.Query(ctx, `
		SELECT `+applicationColumns+`
		FROM applications
		WHERE $1::TEXT = '' OR status = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`, string(filter.Status), limit, filter.Offset)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	return collectApplications(rows)
}

// UpdateApplicationStatus records a review decision and its comment.
func (s *Store) UpdateApplicationStatus(ctx context.Context, id int64, status models.ApplicationStatus, comment string) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE applications SET
			status = $2,
			admin_comment = NULLIF($3, ''),
			updated_at = NOW()
		WHERE id = $1`,
		id, string(status), comment,
	)
	if err != nil {
		return fmt.Errorf("update application status: %w", err)
	}
	return affected(tag)
}

// DeleteApplication removes one application.
func (s *Store) DeleteApplication(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM applications WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete application: %w", err)
	}
	return affected(tag)
}

func collectApplications(rows pgx.Rows) ([]models.Application, error) {
	defer rows.Close()
	apps := make([]models.Application, 0)
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		apps = append(apps, app)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	return apps, nil
}

func scanApplication(row pgx.Row) (models.Application, error) {
	var (
		app    models.Application
		status string
	)
	err := row.Scan(&app.ID, &app.AccountID, &app.Position, &app.Experience, &app.Education, &app.Motivation,
		&app.AvailableFrom, &app.DesiredSalary, &status, &app.AdminComment, &app.CreatedAt, &app.UpdatedAt)
	if err != nil {
		return models.Application{}, notFound(err)
	}
	app.Status = models.ApplicationStatus(status)
	return app, nil
}
