package domain

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ApplicationStatus is the review state of a submitted application. The
// string values round-trip as-is through persistence and the API.
type ApplicationStatus string

const (
	StatusPending      ApplicationStatus = "Pending"
	StatusReviewed     ApplicationStatus = "Reviewed"
	StatusInterviewing ApplicationStatus = "Interviewing"
	StatusOffer        ApplicationStatus = "Offer"
	StatusRejected     ApplicationStatus = "Rejected"
	StatusHired        ApplicationStatus = "Hired"
)

// statusOrder positions each status in the review pipeline. Rejected sits
// outside the pipeline and is handled separately.
var statusOrder = map[ApplicationStatus]int{
	StatusPending:      0,
	StatusReviewed:     1,
	StatusInterviewing: 2,
	StatusOffer:        3,
	StatusHired:        4,
}

var ErrInvalidTransition = errors.New("invalid application status transition")

// ParseApplicationStatus converts a wire string into a status.
func ParseApplicationStatus(s string) (ApplicationStatus, error) {
	st := ApplicationStatus(s)
	if !st.Valid() {
		return "", fmt.Errorf("unknown application status %q", s)
	}
	return st, nil
}

func (s ApplicationStatus) Valid() bool {
	if s == StatusRejected {
		return true
	}
	_, ok := statusOrder[s]
	return ok
}

// Terminal reports whether the status has no further transitions.
func (s ApplicationStatus) Terminal() bool {
	return s == StatusHired || s == StatusRejected
}

// CanTransitionTo reports whether the review pipeline permits moving from
// s to next: forward moves only (skipping stages is allowed, an employer
// may jump straight to an offer), Rejected reachable from any non-terminal
// state, and no way out of a terminal state.
func (s ApplicationStatus) CanTransitionTo(next ApplicationStatus) bool {
	if !s.Valid() || !next.Valid() || s.Terminal() {
		return false
	}
	if next == StatusRejected {
		return true
	}
	return statusOrder[next] > statusOrder[s]
}

// JobApplication is created once per (candidate, job) submission. Identity
// is immutable; only the status, note and status timestamp change, and only
// through Transition. Applications are never deleted.
type JobApplication struct {
	ID               int64             `json:"id"`
	JobID            int64             `json:"jobId"`
	CandidateUserID  string            `json:"candidateId"`
	CvURL            string            `json:"cvUrl"`
	CvFromProfile    bool              `json:"cvFromProfile"`
	CoverLetter      *string           `json:"coverLetter,omitempty"`
	Status           ApplicationStatus `json:"status"`
	Note             *string           `json:"note,omitempty"`
	ApplicationDate  time.Time         `json:"applicationDate"`
	LastStatusUpdate time.Time         `json:"lastStatusUpdate"`

	// Joined data for review listings
	CandidateName *string `json:"candidateName,omitempty"`
	JobTitle      *string `json:"jobTitle,omitempty"`
}

// Transition moves the application to next, stamping lastStatusUpdate.
// An empty note preserves whatever note was stored previously.
func (a *JobApplication) Transition(next ApplicationStatus, note string, now time.Time) error {
	if !a.Status.CanTransitionTo(next) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, a.Status, next)
	}
	a.Status = next
	a.LastStatusUpdate = now
	if note != "" {
		a.Note = &note
	}
	return nil
}

type ApplicationRepository interface {
	Create(ctx context.Context, app *JobApplication) error
	GetByID(ctx context.Context, id int64) (*JobApplication, error)
	GetByJobID(ctx context.Context, jobID int64) ([]JobApplication, error)
	GetByUserID(ctx context.Context, userID string) ([]JobApplication, error)
	Exists(ctx context.Context, jobID int64, userID string) (bool, error)
	// UpdateStatus persists the result of a Transition. A nil note leaves
	// the stored note untouched.
	UpdateStatus(ctx context.Context, id int64, status ApplicationStatus, note *string, at time.Time) error
}

// ApplyInput carries a candidate's submission.
type ApplyInput struct {
	JobID         int64  `json:"jobId" validate:"required"`
	ResumeURL     string `json:"resumeUrl"` // ad-hoc CV; empty = use profile CV
	CoverLetter   string `json:"coverLetter" validate:"max=4000"`
	CvFromProfile bool   `json:"cvFromProfile"`
}

type ApplicationUsecase interface {
	// Candidate operations
	CheckEligibility(ctx context.Context, userID string, selectedCV string) (*Eligibility, error)
	ApplyToJob(ctx context.Context, userID string, in ApplyInput) (*JobApplication, error)
	GetMyApplications(ctx context.Context, userID string) ([]JobApplication, error)

	// Employer operations
	ListByJobID(ctx context.Context, userID string, jobID int64) ([]JobApplication, error)
	UpdateApplicationStatus(ctx context.Context, userID string, applicationID int64, status, note string) (*JobApplication, error)
}
