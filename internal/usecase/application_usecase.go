package usecase

import (
	"context"
	"time"

	"go-jobboard-backend/internal/domain"
	"go-jobboard-backend/pkg/apperror"
)

type applicationUsecase struct {
	applicationRepo domain.ApplicationRepository
	candidateRepo   domain.CandidateRepository
	jobRepo         domain.JobRepository
	now             func() time.Time
}

// NewApplicationUsecase creates the application usecase. now is injectable
// for tests; pass nil for the wall clock.
func NewApplicationUsecase(
	appRepo domain.ApplicationRepository,
	candidateRepo domain.CandidateRepository,
	jobRepo domain.JobRepository,
	now func() time.Time,
) domain.ApplicationUsecase {
	if now == nil {
		now = time.Now
	}
	return &applicationUsecase{
		applicationRepo: appRepo,
		candidateRepo:   candidateRepo,
		jobRepo:         jobRepo,
		now:             now,
	}
}

// CheckEligibility runs the gate without side effects, so the UI can show
// the "complete your profile" prompt before the candidate fills the form.
func (uc *applicationUsecase) CheckEligibility(ctx context.Context, userID string, selectedCV string) (*domain.Eligibility, error) {
	profile, err := uc.candidateRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	eligibility := CanApply(profile, selectedCV)
	return &eligibility, nil
}

// ApplyToJob is the gated submission flow. The gate runs before anything
// is written; a rejected submission creates no record.
func (uc *applicationUsecase) ApplyToJob(ctx context.Context, userID string, in domain.ApplyInput) (*domain.JobApplication, error) {
	// 1. Eligibility gate: completion threshold, then CV presence.
	profile, err := uc.candidateRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	eligibility := CanApply(profile, in.ResumeURL)
	if !eligibility.Allowed {
		return nil, apperror.Forbidden(EligibilityMessage(eligibility))
	}

	// 2. The job must exist and still be open.
	job, err := uc.jobRepo.GetByID(ctx, in.JobID)
	if err != nil || job == nil {
		return nil, apperror.NotFound("Job not found")
	}
	if job.Status != domain.JobStatusActive {
		return nil, apperror.BadRequest("This job is no longer accepting applications")
	}

	// 3. One application per (candidate, job).
	exists, err := uc.applicationRepo.Exists(ctx, in.JobID, userID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if exists {
		return nil, apperror.Conflict("You have already applied to this job")
	}

	// 4. Resolve the CV: ad-hoc upload wins, otherwise the profile CV.
	cvURL := in.ResumeURL
	cvFromProfile := false
	if cvURL == "" {
		cvURL = profile.CvURL
		cvFromProfile = true
	}

	var coverLetter *string
	if in.CoverLetter != "" {
		coverLetter = &in.CoverLetter
	}

	now := uc.now()
	app := &domain.JobApplication{
		JobID:            in.JobID,
		CandidateUserID:  userID,
		CvURL:            cvURL,
		CvFromProfile:    cvFromProfile,
		CoverLetter:      coverLetter,
		Status:           domain.StatusPending,
		ApplicationDate:  now,
		LastStatusUpdate: now,
	}
	if err := uc.applicationRepo.Create(ctx, app); err != nil {
		return nil, apperror.Internal(err)
	}
	return app, nil
}

func (uc *applicationUsecase) GetMyApplications(ctx context.Context, userID string) ([]domain.JobApplication, error) {
	return uc.applicationRepo.GetByUserID(ctx, userID)
}

// ListByJobID returns a job's applications for the employer review screen.
func (uc *applicationUsecase) ListByJobID(ctx context.Context, userID string, jobID int64) ([]domain.JobApplication, error) {
	if err := uc.requireJobOwner(ctx, userID, jobID); err != nil {
		return nil, err
	}
	return uc.applicationRepo.GetByJobID(ctx, jobID)
}

// UpdateApplicationStatus drives the review state machine. The transition
// is validated in the domain before anything is persisted.
func (uc *applicationUsecase) UpdateApplicationStatus(ctx context.Context, userID string, applicationID int64, status, note string) (*domain.JobApplication, error) {
	next, err := domain.ParseApplicationStatus(status)
	if err != nil {
		return nil, apperror.BadRequest("Invalid status. Must be one of: Pending, Reviewed, Interviewing, Offer, Rejected, Hired")
	}

	app, err := uc.applicationRepo.GetByID(ctx, applicationID)
	if err != nil || app == nil {
		return nil, apperror.NotFound("Application not found")
	}

	if err := uc.requireJobOwner(ctx, userID, app.JobID); err != nil {
		return nil, err
	}

	if err := app.Transition(next, note, uc.now()); err != nil {
		return nil, apperror.BadRequest(err.Error())
	}

	// A nil note keeps whatever the employer wrote on an earlier step.
	var notePtr *string
	if note != "" {
		notePtr = &note
	}
	if err := uc.applicationRepo.UpdateStatus(ctx, app.ID, app.Status, notePtr, app.LastStatusUpdate); err != nil {
		return nil, apperror.Internal(err)
	}
	return app, nil
}

// requireJobOwner checks the job exists and the caller posted it.
func (uc *applicationUsecase) requireJobOwner(ctx context.Context, userID string, jobID int64) error {
	job, err := uc.jobRepo.GetByID(ctx, jobID)
	if err != nil || job == nil {
		return apperror.NotFound("Job not found")
	}
	if job.EmployerUserID != userID {
		return apperror.Forbidden("You can only manage applications for your own jobs")
	}
	return nil
}
