package domain

import (
	"context"
	"errors"
	"time"
)

// Common domain errors
var ErrNotFound = errors.New("resource not found")

const (
	JobStatusActive = "active"
	JobStatusClosed = "closed"
)

// Job is the posting an application targets. Listing/search is served
// elsewhere; the core only needs enough to validate a submission.
type Job struct {
	ID             int64     `json:"id"`
	EmployerUserID string    `json:"employerId"`
	Title          string    `json:"title"`
	Status         string    `json:"status"` // active | closed
	CreatedAt      time.Time `json:"createdAt"`
}

type JobRepository interface {
	GetByID(ctx context.Context, id int64) (*Job, error)
}
