package postgres

import (
	"context"
	"errors"
	"time"

	"go-jobboard-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type applicationRepo struct {
	db *pgxpool.Pool
}

func NewApplicationRepository(db *pgxpool.Pool) domain.ApplicationRepository {
	return &applicationRepo{db: db}
}

const applicationSelect = `
	SELECT
		a.id, a.job_id, a.candidate_user_id, a.cv_url, a.cv_from_profile,
		a.cover_letter, a.status, a.note, a.application_date, a.last_status_update,
		COALESCE(cp.full_name, '') AS candidate_name,
		j.title AS job_title
	FROM job_applications a
	LEFT JOIN candidate_profiles cp ON a.candidate_user_id = cp.user_id
	LEFT JOIN jobs j ON a.job_id = j.id`

func (r *applicationRepo) Create(ctx context.Context, app *domain.JobApplication) error {
	query := `
		INSERT INTO job_applications
			(job_id, candidate_user_id, cv_url, cv_from_profile, cover_letter, status, application_date, last_status_update)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`

	return r.db.QueryRow(ctx, query,
		app.JobID,
		app.CandidateUserID,
		app.CvURL,
		app.CvFromProfile,
		app.CoverLetter,
		string(app.Status),
		app.ApplicationDate,
		app.LastStatusUpdate,
	).Scan(&app.ID)
}

func (r *applicationRepo) GetByID(ctx context.Context, id int64) (*domain.JobApplication, error) {
	row := r.db.QueryRow(ctx, applicationSelect+" WHERE a.id = $1", id)
	app, err := scanApplication(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return app, nil
}

func (r *applicationRepo) GetByJobID(ctx context.Context, jobID int64) ([]domain.JobApplication, error) {
	rows, err := r.db.Query(ctx, applicationSelect+" WHERE a.job_id = $1 ORDER BY a.application_date DESC", jobID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanApplications(rows)
}

func (r *applicationRepo) GetByUserID(ctx context.Context, userID string) ([]domain.JobApplication, error) {
	rows, err := r.db.Query(ctx, applicationSelect+" WHERE a.candidate_user_id = $1 ORDER BY a.application_date DESC", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanApplications(rows)
}

func (r *applicationRepo) Exists(ctx context.Context, jobID int64, userID string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM job_applications WHERE job_id = $1 AND candidate_user_id = $2)`,
		jobID, userID,
	).Scan(&exists)
	return exists, err
}

// UpdateStatus persists a validated transition. COALESCE keeps the stored
// note when the employer submitted the change without one.
func (r *applicationRepo) UpdateStatus(ctx context.Context, id int64, status domain.ApplicationStatus, note *string, at time.Time) error {
	query := `
		UPDATE job_applications
		SET status = $1, note = COALESCE($2, note), last_status_update = $3
		WHERE id = $4`
	tag, err := r.db.Exec(ctx, query, string(status), note, at, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanApplication(row pgx.Row) (*domain.JobApplication, error) {
	var (
		app    domain.JobApplication
		status string
	)
	err := row.Scan(
		&app.ID, &app.JobID, &app.CandidateUserID, &app.CvURL, &app.CvFromProfile,
		&app.CoverLetter, &status, &app.Note, &app.ApplicationDate, &app.LastStatusUpdate,
		&app.CandidateName, &app.JobTitle,
	)
	if err != nil {
		return nil, err
	}
	app.Status = domain.ApplicationStatus(status)
	return &app, nil
}

func scanApplications(rows pgx.Rows) ([]domain.JobApplication, error) {
	apps := []domain.JobApplication{}
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		apps = append(apps, *app)
	}
	return apps, rows.Err()
}
