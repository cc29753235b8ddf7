package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"go-jobboard-backend/internal/autosave"
	"go-jobboard-backend/internal/domain"
	"go-jobboard-backend/pkg/apperror"
	"go-jobboard-backend/pkg/validation"

	"github.com/go-playground/validator/v10"
)

type candidateUsecase struct {
	repo     domain.CandidateRepository
	validate *validator.Validate
	sessions *autosave.Manager
}

func NewCandidateUsecase(repo domain.CandidateRepository, validate *validator.Validate, sessions *autosave.Manager) domain.CandidateUsecase {
	validation.RegisterValidators(validate)
	return &candidateUsecase{
		repo:     repo,
		validate: validate,
		sessions: sessions,
	}
}

// GetProfile returns the profile with its completion percentage. The
// percentage is derived here on every read, never cached or stored.
func (u *candidateUsecase) GetProfile(ctx context.Context, userID string) (*domain.ProfileView, error) {
	if err := requireOwner(ctx, userID); err != nil {
		return nil, err
	}

	profile, err := u.repo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, apperror.NotFound("Candidate profile not found")
	}

	return &domain.ProfileView{
		Profile:    profile,
		Completion: ProfileCompletion(profile),
	}, nil
}

// PatchProfile validates a partial edit and hands it to the session's
// autosave coordinator. The edit is visible in the returned snapshot
// immediately; persistence happens after the debounce window.
func (u *candidateUsecase) PatchProfile(ctx context.Context, userID string, fields map[string]any) (map[string]any, error) {
	if err := requireOwner(ctx, userID); err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, apperror.BadRequest("No fields to update")
	}

	coord, err := u.session(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := u.validatePatch(coord, fields); err != nil {
		return nil, err
	}

	for field, value := range fields {
		coord.ScheduleSave(field, value)
	}
	return coord.Snapshot(), nil
}

func (u *candidateUsecase) FlushProfile(ctx context.Context, userID string) error {
	if err := requireOwner(ctx, userID); err != nil {
		return err
	}
	coord := u.sessions.Get(userID)
	if coord == nil {
		return nil
	}
	if err := coord.Flush(ctx); err != nil {
		return apperror.New(http.StatusBadGateway, "Failed to save profile changes", err)
	}
	return nil
}

func (u *candidateUsecase) EndProfileSession(_ context.Context, userID string) {
	u.sessions.End(userID)
}

// session returns the user's coordinator, seeding a new one from the
// stored profile on first use.
func (u *candidateUsecase) session(ctx context.Context, userID string) (*autosave.Coordinator, error) {
	if coord := u.sessions.Get(userID); coord != nil {
		return coord, nil
	}

	profile, err := u.repo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, apperror.NotFound("Candidate profile not found")
	}

	seed, err := profileFieldMap(profile)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	persist := func(ctx context.Context, fields map[string]any) error {
		return u.repo.UpdateFields(ctx, userID, fields)
	}
	return u.sessions.GetOrCreate(userID, seed, persist), nil
}

// validatePatch rejects a patch before it touches the coordinator, so a
// failed validation never needs a rollback.
func (u *candidateUsecase) validatePatch(coord *autosave.Coordinator, fields map[string]any) error {
	for field, value := range fields {
		name := field
		if sub, ok := strings.CutPrefix(field, "socialLinks."); ok {
			if sub != "linkedin" && sub != "github" && sub != "website" {
				return apperror.BadRequest(fmt.Sprintf("Unknown social link %q", sub))
			}
			name = "socialLinks"
		} else if !domain.ProfileFields[field] {
			return apperror.BadRequest(fmt.Sprintf("Unknown profile field %q", field))
		}

		switch name {
		case "avatarUrl":
			if s, ok := value.(string); ok && strings.HasPrefix(s, "data:") && !validation.IsDataURIImage(s) {
				return apperror.BadRequest("Avatar must be a valid png, jpeg, gif or webp image")
			}
		case "email":
			if s, ok := value.(string); ok && s != "" {
				if err := u.validate.Var(s, "email"); err != nil {
					return apperror.BadRequest("Invalid email address")
				}
			}
		case "phoneNumber":
			if s, ok := value.(string); ok && s != "" {
				if err := u.validate.Var(s, "valid_phone"); err != nil {
					return apperror.BadRequest("Invalid phone number")
				}
			}
		}
	}

	// Salary range holds against the merged optimistic state, not just the
	// patch: editing one bound must not silently invert the range.
	min := salaryBound(coord, fields, "expectedSalaryMin")
	max := salaryBound(coord, fields, "expectedSalaryMax")
	if min != nil && max != nil && *min > *max {
		return apperror.BadRequest("Minimum expected salary cannot exceed the maximum")
	}
	return nil
}

func salaryBound(coord *autosave.Coordinator, fields map[string]any, name string) *float64 {
	v, ok := fields[name]
	if !ok {
		v, ok = coord.Field(name)
	}
	if !ok || v == nil {
		return nil
	}
	switch n := v.(type) {
	case float64:
		return &n
	case int64:
		f := float64(n)
		return &f
	case json.Number:
		if f, err := n.Float64(); err == nil {
			return &f
		}
	}
	return nil
}

// profileFieldMap flattens a profile into wire-named field values for the
// coordinator seed.
func profileFieldMap(p *domain.CandidateProfile) (map[string]any, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	var all map[string]any
	if err := json.Unmarshal(raw, &all); err != nil {
		return nil, err
	}
	seed := make(map[string]any, len(all))
	for k, v := range all {
		if domain.ProfileFields[k] {
			seed[k] = v
		}
	}
	return seed, nil
}

// requireOwner enforces that the authenticated user acts on their own
// profile (IDOR prevention).
func requireOwner(ctx context.Context, userID string) error {
	ctxUserID, ok := ctx.Value(domain.KeyUserID).(string)
	if !ok || ctxUserID == "" {
		return apperror.Unauthorized("User not authenticated")
	}
	if ctxUserID != userID {
		return apperror.Forbidden("You can only access your own profile")
	}
	return nil
}
