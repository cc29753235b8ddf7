package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go-jobboard-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

type candidateRepository struct {
	db *pgxpool.Pool
}

func NewCandidateRepository(db *pgxpool.Pool) domain.CandidateRepository {
	return &candidateRepository{db: db}
}

// profileColumns maps JSON wire field names to columns. Only fields listed
// here can be patched; the partial-update builder refuses anything else.
var profileColumns = map[string]string{
	"fullName":           "full_name",
	"email":              "email",
	"phoneNumber":        "phone_number",
	"dateOfBirth":        "date_of_birth",
	"gender":             "gender",
	"avatarUrl":          "avatar_url",
	"cvUrl":              "cv_url",
	"city":               "city",
	"district":           "district",
	"ward":               "ward",
	"specificAddress":    "specific_address",
	"bio":                "bio",
	"skills":             "skills",
	"experience":         "experience",
	"education":          "education",
	"languages":          "languages",
	"certifications":     "certifications",
	"expectedSalaryMin":  "expected_salary_min",
	"expectedSalaryMax":  "expected_salary_max",
	"preferredJobTypes":  "preferred_job_types",
	"preferredLocations": "preferred_locations",
	"socialLinks":        "social_links",
	"isAvailable":        "is_available",
	"isPublic":           "is_public",
}

// jsonbFields are stored as JSONB documents.
var jsonbFields = map[string]bool{
	"experience": true, "education": true, "languages": true,
	"certifications": true, "socialLinks": true,
}

// arrayFields are stored as text[].
var arrayFields = map[string]bool{
	"skills": true, "preferredJobTypes": true, "preferredLocations": true,
}

func (r *candidateRepository) GetByUserID(ctx context.Context, userID string) (*domain.CandidateProfile, error) {
	query := `
		SELECT
			id, user_id,
			COALESCE(full_name, ''), COALESCE(email, ''), COALESCE(phone_number, ''),
			COALESCE(date_of_birth, ''), COALESCE(gender, ''),
			COALESCE(avatar_url, ''), COALESCE(cv_url, ''),
			COALESCE(city, ''), COALESCE(district, ''), COALESCE(ward, ''),
			COALESCE(specific_address, ''), COALESCE(bio, ''),
			skills,
			COALESCE(experience, '[]'::jsonb), COALESCE(education, '[]'::jsonb),
			COALESCE(languages, '[]'::jsonb), COALESCE(certifications, '[]'::jsonb),
			expected_salary_min, expected_salary_max,
			preferred_job_types, preferred_locations,
			COALESCE(social_links, '{}'::jsonb),
			is_available, is_public,
			created_at, updated_at
		FROM candidate_profiles WHERE user_id = $1`

	var (
		p                                domain.CandidateProfile
		skills, jobTypes, locations      []string
		expRaw, eduRaw, langRaw, certRaw []byte
		linksRaw                         []byte
	)

	err := r.db.QueryRow(ctx, query, userID).Scan(
		&p.ID, &p.UserID,
		&p.FullName, &p.Email, &p.PhoneNumber,
		&p.DateOfBirth, &p.Gender,
		&p.AvatarURL, &p.CvURL,
		&p.City, &p.District, &p.Ward,
		&p.SpecificAddress, &p.Bio,
		pq.Array(&skills),
		&expRaw, &eduRaw, &langRaw, &certRaw,
		&p.ExpectedSalaryMin, &p.ExpectedSalaryMax,
		pq.Array(&jobTypes), pq.Array(&locations),
		&linksRaw,
		&p.IsAvailable, &p.IsPublic,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	p.Skills = skills
	p.PreferredJobTypes = jobTypes
	p.PreferredLocations = locations

	for _, section := range []struct {
		raw []byte
		dst any
	}{
		{expRaw, &p.Experience},
		{eduRaw, &p.Education},
		{langRaw, &p.Languages},
		{certRaw, &p.Certifications},
		{linksRaw, &p.SocialLinks},
	} {
		if len(section.raw) > 0 {
			if err := json.Unmarshal(section.raw, section.dst); err != nil {
				return nil, fmt.Errorf("decode profile section: %w", err)
			}
		}
	}

	return &p, nil
}

func (r *candidateRepository) Create(ctx context.Context, profile *domain.CandidateProfile) error {
	query := `
		INSERT INTO candidate_profiles (user_id, full_name, email, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		RETURNING id`
	return r.db.QueryRow(ctx, query, profile.UserID, profile.FullName, profile.Email).Scan(&profile.ID)
}

// UpdateFields issues a partial UPDATE carrying only the changed columns.
// This is the sole persistence path used by the autosave flow.
func (r *candidateRepository) UpdateFields(ctx context.Context, userID string, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}

	sets := make([]string, 0, len(fields)+1)
	args := make([]any, 0, len(fields)+1)

	for field, value := range fields {
		column, ok := profileColumns[field]
		if !ok {
			return fmt.Errorf("unknown profile field %q", field)
		}
		encoded, err := encodeFieldValue(field, value)
		if err != nil {
			return err
		}
		args = append(args, encoded)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	sets = append(sets, "updated_at = NOW()")
	args = append(args, userID)

	query := fmt.Sprintf(
		"UPDATE candidate_profiles SET %s WHERE user_id = $%d",
		strings.Join(sets, ", "), len(args),
	)

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// encodeFieldValue converts a decoded JSON value into its column
// representation: JSONB sections marshal back to bytes, string lists go
// through pq.Array, scalars pass through.
func encodeFieldValue(field string, value any) (any, error) {
	switch {
	case jsonbFields[field]:
		raw, err := json.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", field, err)
		}
		return raw, nil
	case arrayFields[field]:
		items, err := toStringSlice(value)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", field, err)
		}
		return pq.Array(items), nil
	default:
		return value, nil
	}
}

func toStringSlice(value any) ([]string, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case []string:
		return v, nil
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("expected string element, got %T", item)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("expected string list, got %T", value)
	}
}
