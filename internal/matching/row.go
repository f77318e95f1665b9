package matching

import (
	"github.com/google/uuid"

	"sharespace/internal/domain/user"
)

// Column names of a candidate row, in training order. The counterpart
// side carries the same attributes minus role and city. This is a fixed
// enumeration on purpose: an artifact trained on a different column set
// is rejected at load time instead of silently mis-scoring.
const (
	ColRoleSeeker             = "role_seeker"
	ColCitySeeker             = "city_seeker"
	ColBudgetSeeker           = "budget_seeker"
	ColCleanlinessSeeker      = "cleanliness_seeker"
	ColNoiseLevelSeeker       = "noise_level_seeker"
	ColSleepScheduleSeeker    = "sleep_schedule_seeker"
	ColSmokingSeeker          = "smoking_seeker"
	ColSocialLevelSeeker      = "social_level_seeker"
	ColHasPetsSeeker          = "has_pets_seeker"
	ColGenderPreferenceSeeker = "gender_preference_seeker"
	ColWorkScheduleSeeker     = "work_schedule_seeker"
	ColOccupationSeeker       = "occupation_seeker"
	ColMBTITypeSeeker         = "mbti_type_seeker"

	ColBudgetLister           = "budget_lister"
	ColCleanlinessLister      = "cleanliness_lister"
	ColNoiseLevelLister       = "noise_level_lister"
	ColSleepScheduleLister    = "sleep_schedule_lister"
	ColSmokingLister          = "smoking_lister"
	ColSocialLevelLister      = "social_level_lister"
	ColHasPetsLister          = "has_pets_lister"
	ColGenderPreferenceLister = "gender_preference_lister"
	ColWorkScheduleLister     = "work_schedule_lister"
	ColOccupationLister       = "occupation_lister"
	ColMBTITypeLister         = "mbti_type_lister"
)

func Columns() []string {
	return []string{
		ColRoleSeeker,
		ColCitySeeker,
		ColBudgetSeeker,
		ColCleanlinessSeeker,
		ColNoiseLevelSeeker,
		ColSleepScheduleSeeker,
		ColSmokingSeeker,
		ColSocialLevelSeeker,
		ColHasPetsSeeker,
		ColGenderPreferenceSeeker,
		ColWorkScheduleSeeker,
		ColOccupationSeeker,
		ColMBTITypeSeeker,
		ColBudgetLister,
		ColCleanlinessLister,
		ColNoiseLevelLister,
		ColSleepScheduleLister,
		ColSmokingLister,
		ColSocialLevelLister,
		ColHasPetsLister,
		ColGenderPreferenceLister,
		ColWorkScheduleLister,
		ColOccupationLister,
		ColMBTITypeLister,
	}
}

type valueKind int

const (
	kindNull valueKind = iota
	kindNumber
	kindCategory
)

// FeatureValue is one cell of a candidate row: a number, a category
// label, or null for an unset profile field. Nulls survive assembly and
// are resolved to zero only inside the scoring transform.
type FeatureValue struct {
	kind valueKind
	num  float64
	str  string
}

func Null() FeatureValue                { return FeatureValue{kind: kindNull} }
func Number(v float64) FeatureValue     { return FeatureValue{kind: kindNumber, num: v} }
func Category(label string) FeatureValue {
	return FeatureValue{kind: kindCategory, str: label}
}

func Flag(b bool) FeatureValue {
	if b {
		return Number(1)
	}
	return Number(0)
}

func (v FeatureValue) IsNull() bool { return v.kind == kindNull }

// Num returns the numeric value, applying the zero-fill policy for
// nulls. Category cells report ok=false.
func (v FeatureValue) Num() (float64, bool) {
	switch v.kind {
	case kindNumber:
		return v.num, true
	case kindNull:
		return 0, true
	default:
		return 0, false
	}
}

// Label returns the category label. Null cells report ok=false: a
// missing categorical matches no one-hot bucket, which encodes as all
// zeros.
func (v FeatureValue) Label() (string, bool) {
	if v.kind != kindCategory {
		return "", false
	}
	return v.str, true
}

// Row is one assembled (seeker, counterpart) feature vector keyed by
// column name. Every row holds all columns of Columns().
type Row map[string]FeatureValue

// CandidateRow ties a feature row to the listing it was emitted for.
type CandidateRow struct {
	ListingID uuid.UUID
	Features  Row
}

func numOrNull(p *int) FeatureValue {
	if p == nil {
		return Null()
	}
	return Number(float64(*p))
}

func catOrNull(p *string) FeatureValue {
	if p == nil || *p == "" {
		return Null()
	}
	return Category(*p)
}

func flagOrNull(p *bool) FeatureValue {
	if p == nil {
		return Null()
	}
	return Flag(*p)
}

func seekerSide(p user.Profile) Row {
	return Row{
		ColRoleSeeker:             Category(p.Role),
		ColCitySeeker:             catOrNull(p.City),
		ColBudgetSeeker:           numOrNull(p.Budget),
		ColCleanlinessSeeker:      numOrNull(p.Cleanliness),
		ColNoiseLevelSeeker:       numOrNull(p.NoiseLevel),
		ColSleepScheduleSeeker:    catOrNull(p.SleepSchedule),
		ColSmokingSeeker:          catOrNull(p.Smoking),
		ColSocialLevelSeeker:      catOrNull(p.SocialLevel),
		ColHasPetsSeeker:          flagOrNull(p.HasPets),
		ColGenderPreferenceSeeker: catOrNull(p.GenderPreference),
		ColWorkScheduleSeeker:     catOrNull(p.WorkSchedule),
		ColOccupationSeeker:       catOrNull(p.Occupation),
		ColMBTITypeSeeker:         catOrNull(p.MBTIType),
	}
}

func listerSide(p user.Profile) Row {
	return Row{
		ColBudgetLister:           numOrNull(p.Budget),
		ColCleanlinessLister:      numOrNull(p.Cleanliness),
		ColNoiseLevelLister:       numOrNull(p.NoiseLevel),
		ColSleepScheduleLister:    catOrNull(p.SleepSchedule),
		ColSmokingLister:          catOrNull(p.Smoking),
		ColSocialLevelLister:      catOrNull(p.SocialLevel),
		ColHasPetsLister:          flagOrNull(p.HasPets),
		ColGenderPreferenceLister: catOrNull(p.GenderPreference),
		ColWorkScheduleLister:     catOrNull(p.WorkSchedule),
		ColOccupationLister:       catOrNull(p.Occupation),
		ColMBTITypeLister:         catOrNull(p.MBTIType),
	}
}
