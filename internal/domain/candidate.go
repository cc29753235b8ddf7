package domain

import (
	"context"
	"time"
)

// Experience is one entry of a candidate's work history.
type Experience struct {
	CompanyName string `json:"companyName"`
	Position    string `json:"position"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate,omitempty"` // empty = current position
	Description string `json:"description,omitempty"`
}

type Education struct {
	School       string `json:"school"`
	Degree       string `json:"degree"`
	FieldOfStudy string `json:"fieldOfStudy"`
	StartDate    string `json:"startDate"`
	EndDate      string `json:"endDate,omitempty"`
	Description  string `json:"description,omitempty"`
}

type Language struct {
	Language    string `json:"language"`
	Proficiency string `json:"proficiency"`
}

type Certification struct {
	Name        string `json:"name"`
	Issuer      string `json:"issuer"`
	Date        string `json:"date"`
	Description string `json:"description,omitempty"`
}

// SocialLinks is stored as one nested record; a change to any sub-field
// persists the whole object.
type SocialLinks struct {
	LinkedIn string `json:"linkedin,omitempty"`
	GitHub   string `json:"github,omitempty"`
	Website  string `json:"website,omitempty"`
}

// CandidateProfile is the candidate's profile document. Every field is
// optional at the data level; completion is derived on read, never stored.
type CandidateProfile struct {
	ID     int64  `json:"id"`
	UserID string `json:"userId"`

	FullName    string `json:"fullName,omitempty" validate:"omitempty,max=100"`
	Email       string `json:"email,omitempty" validate:"omitempty,email"`
	PhoneNumber string `json:"phoneNumber,omitempty" validate:"omitempty,valid_phone"`
	DateOfBirth string `json:"dateOfBirth,omitempty"`
	Gender      string `json:"gender,omitempty"`

	AvatarURL string `json:"avatarUrl,omitempty"`
	CvURL     string `json:"cvUrl,omitempty"`

	City            string `json:"city,omitempty"`
	District        string `json:"district,omitempty"`
	Ward            string `json:"ward,omitempty"`
	SpecificAddress string `json:"specificAddress,omitempty"`

	Bio string `json:"bio,omitempty" validate:"omitempty,max=2000"`

	Skills         []string        `json:"skills,omitempty"`
	Experience     []Experience    `json:"experience,omitempty"`
	Education      []Education     `json:"education,omitempty"`
	Languages      []Language      `json:"languages,omitempty"`
	Certifications []Certification `json:"certifications,omitempty"`

	ExpectedSalaryMin  *int64      `json:"expectedSalaryMin,omitempty" validate:"omitempty,min=0"`
	ExpectedSalaryMax  *int64      `json:"expectedSalaryMax,omitempty" validate:"omitempty,min=0"`
	PreferredJobTypes  []string    `json:"preferredJobTypes,omitempty"`
	PreferredLocations []string    `json:"preferredLocations,omitempty"`
	SocialLinks        SocialLinks `json:"socialLinks"`

	IsAvailable bool `json:"isAvailable"`
	IsPublic    bool `json:"isPublic"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ProfileFields is the set of field names accepted by the partial-update
// path. Keys match the JSON wire names exactly.
var ProfileFields = map[string]bool{
	"fullName": true, "email": true, "phoneNumber": true, "dateOfBirth": true,
	"gender": true, "avatarUrl": true, "cvUrl": true,
	"city": true, "district": true, "ward": true, "specificAddress": true,
	"bio":    true,
	"skills": true, "experience": true, "education": true,
	"languages": true, "certifications": true,
	"expectedSalaryMin": true, "expectedSalaryMax": true,
	"preferredJobTypes": true, "preferredLocations": true,
	"socialLinks": true,
	"isAvailable": true, "isPublic": true,
}

// Eligibility is the result of the application gate.
type Eligibility struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
	Score   int    `json:"score"`
}

// ProfileView pairs a profile with its derived completion percentage.
type ProfileView struct {
	Profile    *CandidateProfile `json:"profile"`
	Completion int               `json:"completion"`
}

type CandidateRepository interface {
	GetByUserID(ctx context.Context, userID string) (*CandidateProfile, error)
	Create(ctx context.Context, profile *CandidateProfile) error
	// UpdateFields persists only the given fields (JSON wire names).
	UpdateFields(ctx context.Context, userID string, fields map[string]any) error
}

type CandidateUsecase interface {
	GetProfile(ctx context.Context, userID string) (*ProfileView, error)
	// PatchProfile applies a partial edit through the debounced autosave
	// path and returns the optimistic field snapshot.
	PatchProfile(ctx context.Context, userID string, fields map[string]any) (map[string]any, error)
	// FlushProfile persists any pending edits immediately.
	FlushProfile(ctx context.Context, userID string) error
	// EndProfileSession cancels pending saves and releases session state.
	EndProfileSession(ctx context.Context, userID string)
}
