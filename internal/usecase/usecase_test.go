package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"go-jobboard-backend/internal/autosave"
	"go-jobboard-backend/internal/domain"
	"go-jobboard-backend/internal/usecase"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// Mock repositories

type MockCandidateRepo struct {
	mock.Mock
}

func (m *MockCandidateRepo) GetByUserID(ctx context.Context, userID string) (*domain.CandidateProfile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CandidateProfile), args.Error(1)
}

func (m *MockCandidateRepo) Create(ctx context.Context, profile *domain.CandidateProfile) error {
	return m.Called(ctx, profile).Error(0)
}

func (m *MockCandidateRepo) UpdateFields(ctx context.Context, userID string, fields map[string]any) error {
	return m.Called(ctx, userID, fields).Error(0)
}

type MockApplicationRepo struct {
	mock.Mock
}

func (m *MockApplicationRepo) Create(ctx context.Context, app *domain.JobApplication) error {
	return m.Called(ctx, app).Error(0)
}

func (m *MockApplicationRepo) GetByID(ctx context.Context, id int64) (*domain.JobApplication, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JobApplication), args.Error(1)
}

func (m *MockApplicationRepo) GetByJobID(ctx context.Context, jobID int64) ([]domain.JobApplication, error) {
	args := m.Called(ctx, jobID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.JobApplication), args.Error(1)
}

func (m *MockApplicationRepo) GetByUserID(ctx context.Context, userID string) ([]domain.JobApplication, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.JobApplication), args.Error(1)
}

func (m *MockApplicationRepo) Exists(ctx context.Context, jobID int64, userID string) (bool, error) {
	args := m.Called(ctx, jobID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockApplicationRepo) UpdateStatus(ctx context.Context, id int64, status domain.ApplicationStatus, note *string, at time.Time) error {
	return m.Called(ctx, id, status, note, at).Error(0)
}

type MockJobRepo struct {
	mock.Mock
}

func (m *MockJobRepo) GetByID(ctx context.Context, id int64) (*domain.Job, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Job), args.Error(1)
}

func authedCtx(userID string) context.Context {
	return context.WithValue(context.Background(), domain.KeyUserID, userID)
}

func fixedNow() time.Time {
	return time.Date(2025, 6, 2, 9, 30, 0, 0, time.UTC)
}

func TestProfileOwnership(t *testing.T) {
	mockRepo := new(MockCandidateRepo)
	uc := usecase.NewCandidateUsecase(mockRepo, validator.New(), autosave.NewManager())

	t.Run("Should fail when context user does not match argument user", func(t *testing.T) {
		_, err := uc.GetProfile(authedCtx("user1"), "user2")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "only access your own profile")
	})

	t.Run("Should fail safely when context user is missing", func(t *testing.T) {
		_, err := uc.GetProfile(context.Background(), "user1")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "User not authenticated")
	})
}

func TestGetProfileComputesCompletion(t *testing.T) {
	mockRepo := new(MockCandidateRepo)
	uc := usecase.NewCandidateUsecase(mockRepo, validator.New(), autosave.NewManager())

	profile := &domain.CandidateProfile{
		UserID:      "user1",
		FullName:    "Nguyen Van A",
		Email:       "a@example.com",
		PhoneNumber: "+84901234567",
	}
	mockRepo.On("GetByUserID", mock.Anything, "user1").Return(profile, nil)

	view, err := uc.GetProfile(authedCtx("user1"), "user1")
	assert.NoError(t, err)
	assert.Equal(t, 15, view.Completion, "completion derived on read")
	assert.Same(t, profile, view.Profile)
}

func TestPatchProfile(t *testing.T) {
	newUC := func(repo *MockCandidateRepo) domain.CandidateUsecase {
		sessions := autosave.NewManager(autosave.WithDebounce(10 * time.Millisecond))
		return usecase.NewCandidateUsecase(repo, validator.New(), sessions)
	}

	t.Run("Should reject unknown fields", func(t *testing.T) {
		repo := new(MockCandidateRepo)
		repo.On("GetByUserID", mock.Anything, "user1").Return(&domain.CandidateProfile{UserID: "user1"}, nil)
		uc := newUC(repo)

		_, err := uc.PatchProfile(authedCtx("user1"), "user1", map[string]any{"isAdmin": true})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "Unknown profile field")
	})

	t.Run("Should reject an inverted salary range", func(t *testing.T) {
		repo := new(MockCandidateRepo)
		repo.On("GetByUserID", mock.Anything, "user1").Return(&domain.CandidateProfile{UserID: "user1"}, nil)
		uc := newUC(repo)

		_, err := uc.PatchProfile(authedCtx("user1"), "user1", map[string]any{
			"expectedSalaryMin": float64(3000),
			"expectedSalaryMax": float64(1000),
		})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "salary")
	})

	t.Run("Salary check holds against the merged state", func(t *testing.T) {
		max := int64(1000)
		repo := new(MockCandidateRepo)
		repo.On("GetByUserID", mock.Anything, "user1").
			Return(&domain.CandidateProfile{UserID: "user1", ExpectedSalaryMax: &max}, nil)
		uc := newUC(repo)

		// Incoming min conflicts with the max already on the profile
		_, err := uc.PatchProfile(authedCtx("user1"), "user1", map[string]any{
			"expectedSalaryMin": float64(2000),
		})
		assert.Error(t, err)
	})

	t.Run("Valid patch is applied optimistically and persisted once", func(t *testing.T) {
		repo := new(MockCandidateRepo)
		repo.On("GetByUserID", mock.Anything, "user1").Return(&domain.CandidateProfile{UserID: "user1", Bio: "old"}, nil)
		repo.On("UpdateFields", mock.Anything, "user1", map[string]any{"bio": "new bio"}).Return(nil).Once()
		uc := newUC(repo)

		snapshot, err := uc.PatchProfile(authedCtx("user1"), "user1", map[string]any{"bio": "new bio"})
		assert.NoError(t, err)
		assert.Equal(t, "new bio", snapshot["bio"], "snapshot reflects the edit immediately")

		time.Sleep(200 * time.Millisecond)
		repo.AssertExpectations(t)
	})
}

func TestApplyToJob(t *testing.T) {
	completeProfile := fullProfile() // from completion_test.go

	newUC := func(appRepo *MockApplicationRepo, candRepo *MockCandidateRepo, jobRepo *MockJobRepo) domain.ApplicationUsecase {
		return usecase.NewApplicationUsecase(appRepo, candRepo, jobRepo, fixedNow)
	}

	t.Run("Incomplete profile is rejected before any write", func(t *testing.T) {
		appRepo := new(MockApplicationRepo)
		candRepo := new(MockCandidateRepo)
		jobRepo := new(MockJobRepo)
		candRepo.On("GetByUserID", mock.Anything, "user1").Return(&domain.CandidateProfile{FullName: "A"}, nil)

		_, err := newUC(appRepo, candRepo, jobRepo).ApplyToJob(context.Background(), "user1", domain.ApplyInput{JobID: 7})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "complete")
		appRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("Missing CV is rejected", func(t *testing.T) {
		p := fullProfile()
		p.CvURL = ""
		appRepo := new(MockApplicationRepo)
		candRepo := new(MockCandidateRepo)
		jobRepo := new(MockJobRepo)
		candRepo.On("GetByUserID", mock.Anything, "user1").Return(p, nil)

		_, err := newUC(appRepo, candRepo, jobRepo).ApplyToJob(context.Background(), "user1", domain.ApplyInput{JobID: 7})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "CV")
	})

	t.Run("Closed job is rejected", func(t *testing.T) {
		appRepo := new(MockApplicationRepo)
		candRepo := new(MockCandidateRepo)
		jobRepo := new(MockJobRepo)
		candRepo.On("GetByUserID", mock.Anything, "user1").Return(completeProfile, nil)
		jobRepo.On("GetByID", mock.Anything, int64(7)).Return(&domain.Job{ID: 7, Status: domain.JobStatusClosed}, nil)

		_, err := newUC(appRepo, candRepo, jobRepo).ApplyToJob(context.Background(), "user1", domain.ApplyInput{JobID: 7})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "no longer accepting")
	})

	t.Run("Duplicate application is rejected", func(t *testing.T) {
		appRepo := new(MockApplicationRepo)
		candRepo := new(MockCandidateRepo)
		jobRepo := new(MockJobRepo)
		candRepo.On("GetByUserID", mock.Anything, "user1").Return(completeProfile, nil)
		jobRepo.On("GetByID", mock.Anything, int64(7)).Return(&domain.Job{ID: 7, Status: domain.JobStatusActive}, nil)
		appRepo.On("Exists", mock.Anything, int64(7), "user1").Return(true, nil)

		_, err := newUC(appRepo, candRepo, jobRepo).ApplyToJob(context.Background(), "user1", domain.ApplyInput{JobID: 7})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "already applied")
	})

	t.Run("Successful submission starts Pending with the profile CV", func(t *testing.T) {
		appRepo := new(MockApplicationRepo)
		candRepo := new(MockCandidateRepo)
		jobRepo := new(MockJobRepo)
		candRepo.On("GetByUserID", mock.Anything, "user1").Return(completeProfile, nil)
		jobRepo.On("GetByID", mock.Anything, int64(7)).Return(&domain.Job{ID: 7, Status: domain.JobStatusActive}, nil)
		appRepo.On("Exists", mock.Anything, int64(7), "user1").Return(false, nil)
		appRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.JobApplication")).Return(nil)

		app, err := newUC(appRepo, candRepo, jobRepo).ApplyToJob(context.Background(), "user1", domain.ApplyInput{JobID: 7})
		assert.NoError(t, err)
		assert.Equal(t, domain.StatusPending, app.Status)
		assert.True(t, app.CvFromProfile)
		assert.Equal(t, completeProfile.CvURL, app.CvURL)
		assert.Equal(t, fixedNow(), app.ApplicationDate)
	})

	t.Run("Ad-hoc resume wins over the profile CV", func(t *testing.T) {
		appRepo := new(MockApplicationRepo)
		candRepo := new(MockCandidateRepo)
		jobRepo := new(MockJobRepo)
		candRepo.On("GetByUserID", mock.Anything, "user1").Return(completeProfile, nil)
		jobRepo.On("GetByID", mock.Anything, int64(7)).Return(&domain.Job{ID: 7, Status: domain.JobStatusActive}, nil)
		appRepo.On("Exists", mock.Anything, int64(7), "user1").Return(false, nil)
		appRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

		app, err := newUC(appRepo, candRepo, jobRepo).ApplyToJob(context.Background(), "user1",
			domain.ApplyInput{JobID: 7, ResumeURL: "https://cdn.example.com/adhoc.pdf"})
		assert.NoError(t, err)
		assert.False(t, app.CvFromProfile)
		assert.Equal(t, "https://cdn.example.com/adhoc.pdf", app.CvURL)
	})
}

func TestUpdateApplicationStatus(t *testing.T) {
	job := &domain.Job{ID: 7, EmployerUserID: "employer1", Status: domain.JobStatusActive}

	newUC := func(appRepo *MockApplicationRepo, jobRepo *MockJobRepo) domain.ApplicationUsecase {
		return usecase.NewApplicationUsecase(appRepo, new(MockCandidateRepo), jobRepo, fixedNow)
	}

	t.Run("Unknown status string is rejected", func(t *testing.T) {
		uc := newUC(new(MockApplicationRepo), new(MockJobRepo))
		_, err := uc.UpdateApplicationStatus(context.Background(), "employer1", 1, "archived", "")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "Invalid status")
	})

	t.Run("Only the job owner may update", func(t *testing.T) {
		appRepo := new(MockApplicationRepo)
		jobRepo := new(MockJobRepo)
		appRepo.On("GetByID", mock.Anything, int64(1)).
			Return(&domain.JobApplication{ID: 1, JobID: 7, Status: domain.StatusPending}, nil)
		jobRepo.On("GetByID", mock.Anything, int64(7)).Return(job, nil)

		_, err := newUC(appRepo, jobRepo).UpdateApplicationStatus(context.Background(), "intruder", 1, "Reviewed", "")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "your own jobs")
	})

	t.Run("Invalid transition is rejected without persisting", func(t *testing.T) {
		appRepo := new(MockApplicationRepo)
		jobRepo := new(MockJobRepo)
		appRepo.On("GetByID", mock.Anything, int64(1)).
			Return(&domain.JobApplication{ID: 1, JobID: 7, Status: domain.StatusHired}, nil)
		jobRepo.On("GetByID", mock.Anything, int64(7)).Return(job, nil)

		_, err := newUC(appRepo, jobRepo).UpdateApplicationStatus(context.Background(), "employer1", 1, "Rejected", "")
		assert.Error(t, err)
		appRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Valid transition persists status, note and timestamp", func(t *testing.T) {
		appRepo := new(MockApplicationRepo)
		jobRepo := new(MockJobRepo)
		appRepo.On("GetByID", mock.Anything, int64(1)).
			Return(&domain.JobApplication{ID: 1, JobID: 7, Status: domain.StatusPending}, nil)
		jobRepo.On("GetByID", mock.Anything, int64(7)).Return(job, nil)
		note := "Scheduled for Friday"
		appRepo.On("UpdateStatus", mock.Anything, int64(1), domain.StatusInterviewing, &note, fixedNow()).Return(nil)

		app, err := newUC(appRepo, jobRepo).UpdateApplicationStatus(context.Background(), "employer1", 1, "Interviewing", note)
		assert.NoError(t, err)
		assert.Equal(t, domain.StatusInterviewing, app.Status)
		assert.Equal(t, fixedNow(), app.LastStatusUpdate)
		appRepo.AssertExpectations(t)
	})

	t.Run("Empty note persists as nil so the stored note survives", func(t *testing.T) {
		appRepo := new(MockApplicationRepo)
		jobRepo := new(MockJobRepo)
		appRepo.On("GetByID", mock.Anything, int64(1)).
			Return(&domain.JobApplication{ID: 1, JobID: 7, Status: domain.StatusReviewed}, nil)
		jobRepo.On("GetByID", mock.Anything, int64(7)).Return(job, nil)
		appRepo.On("UpdateStatus", mock.Anything, int64(1), domain.StatusInterviewing, (*string)(nil), fixedNow()).Return(nil)

		_, err := newUC(appRepo, jobRepo).UpdateApplicationStatus(context.Background(), "employer1", 1, "Interviewing", "")
		assert.NoError(t, err)
		appRepo.AssertExpectations(t)
	})
}

func TestCheckEligibility(t *testing.T) {
	candRepo := new(MockCandidateRepo)
	uc := usecase.NewApplicationUsecase(new(MockApplicationRepo), candRepo, new(MockJobRepo), fixedNow)

	t.Run("Missing profile reports zero completion", func(t *testing.T) {
		candRepo.On("GetByUserID", mock.Anything, "ghost").Return(nil, nil).Once()
		e, err := uc.CheckEligibility(context.Background(), "ghost", "")
		assert.NoError(t, err)
		assert.False(t, e.Allowed)
		assert.Equal(t, 0, e.Score)
	})

	t.Run("Repository failure surfaces as an error", func(t *testing.T) {
		candRepo.On("GetByUserID", mock.Anything, "user1").Return(nil, errors.New("db down")).Once()
		_, err := uc.CheckEligibility(context.Background(), "user1", "")
		assert.Error(t, err)
	})
}
