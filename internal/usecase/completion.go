package usecase

import (
	"fmt"
	"math"
	"strings"

	"go-jobboard-backend/internal/domain"
)

// MinCompletionToApply is the completion percentage a profile must reach
// before the candidate may submit any application. Hard business rule, not
// configurable per job or employer.
const MinCompletionToApply = 50

// Gate reasons surfaced by CanApply.
const (
	ReasonProfileIncomplete = "profile incomplete"
	ReasonMissingCV         = "missing CV"
)

type completionWeight struct {
	field   string
	weight  int
	present func(p *domain.CandidateProfile) bool
}

func filled(s string) bool { return strings.TrimSpace(s) != "" }

// completionWeights is the fixed scoring table. Weights total 100.
// Sequence-valued fields count as present at length >= 1; entry content is
// not inspected.
var completionWeights = []completionWeight{
	{"fullName", 5, func(p *domain.CandidateProfile) bool { return filled(p.FullName) }},
	{"email", 5, func(p *domain.CandidateProfile) bool { return filled(p.Email) }},
	{"phoneNumber", 5, func(p *domain.CandidateProfile) bool { return filled(p.PhoneNumber) }},
	{"dateOfBirth", 5, func(p *domain.CandidateProfile) bool { return filled(p.DateOfBirth) }},
	{"gender", 5, func(p *domain.CandidateProfile) bool { return filled(p.Gender) }},
	{"avatarUrl", 10, func(p *domain.CandidateProfile) bool { return filled(p.AvatarURL) }},
	{"cvUrl", 15, func(p *domain.CandidateProfile) bool { return filled(p.CvURL) }},
	{"city", 5, func(p *domain.CandidateProfile) bool { return filled(p.City) }},
	{"district", 5, func(p *domain.CandidateProfile) bool { return filled(p.District) }},
	{"ward", 5, func(p *domain.CandidateProfile) bool { return filled(p.Ward) }},
	{"bio", 10, func(p *domain.CandidateProfile) bool { return filled(p.Bio) }},
	{"skills", 10, func(p *domain.CandidateProfile) bool { return len(p.Skills) > 0 }},
	{"experience", 5, func(p *domain.CandidateProfile) bool { return len(p.Experience) > 0 }},
	{"education", 5, func(p *domain.CandidateProfile) bool { return len(p.Education) > 0 }},
	{"languages", 3, func(p *domain.CandidateProfile) bool { return len(p.Languages) > 0 }},
	{"certifications", 2, func(p *domain.CandidateProfile) bool { return len(p.Certifications) > 0 }},
}

// ProfileCompletion returns the completion percentage of a profile in
// [0,100]. Pure and deterministic; callers recompute on every read since
// the profile can change between calls.
func ProfileCompletion(p *domain.CandidateProfile) int {
	if p == nil {
		return 0
	}
	total, earned := 0, 0
	for _, w := range completionWeights {
		total += w.weight
		if w.present(p) {
			earned += w.weight
		}
	}
	// Round half up. Weights currently total 100 so this is exact, but the
	// formula keeps a future reweighting correct.
	return int(math.Floor(float64(earned)*100/float64(total) + 0.5))
}

// CanApply decides whether a candidate may open the submission flow.
// selectedCV is an ad-hoc resume reference chosen for this application;
// empty means the profile CV (if any) is used. Rules run in order: the
// completion threshold first, then CV presence.
func CanApply(p *domain.CandidateProfile, selectedCV string) domain.Eligibility {
	score := ProfileCompletion(p)
	if score < MinCompletionToApply {
		return domain.Eligibility{Allowed: false, Reason: ReasonProfileIncomplete, Score: score}
	}
	if (p == nil || !filled(p.CvURL)) && !filled(selectedCV) {
		return domain.Eligibility{Allowed: false, Reason: ReasonMissingCV, Score: score}
	}
	return domain.Eligibility{Allowed: true, Score: score}
}

// EligibilityMessage renders a user-facing explanation for a failed gate.
func EligibilityMessage(e domain.Eligibility) string {
	switch e.Reason {
	case ReasonProfileIncomplete:
		return fmt.Sprintf("Your profile is %d%% complete. It must reach %d%% before you can apply.", e.Score, MinCompletionToApply)
	case ReasonMissingCV:
		return "A CV is required to apply. Upload one to your profile or attach one to this application."
	default:
		return ""
	}
}
