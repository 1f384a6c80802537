package enums

import "fmt"

// ChallengeCategory maps to the challenge_category enum in Postgres.
type ChallengeCategory string

const (
	CategoryRecycling        ChallengeCategory = "recycling"
	CategoryPlasticReduction ChallengeCategory = "plastic_reduction"
	CategoryWasteReduction   ChallengeCategory = "waste_reduction"
	CategoryConservation     ChallengeCategory = "conservation"
	CategoryCarbonReduction  ChallengeCategory = "carbon_reduction"
	CategoryEducation        ChallengeCategory = "education"
	CategoryCommunity        ChallengeCategory = "community"
	CategoryEnergy           ChallengeCategory = "energy"
	CategoryWater            ChallengeCategory = "water"
)

var validChallengeCategories = []ChallengeCategory{
	CategoryRecycling,
	CategoryPlasticReduction,
	CategoryWasteReduction,
	CategoryConservation,
	CategoryCarbonReduction,
	CategoryEducation,
	CategoryCommunity,
	CategoryEnergy,
	CategoryWater,
}

// IsValid reports whether the value matches the canonical enum.
func (c ChallengeCategory) IsValid() bool {
	for _, candidate := range validChallengeCategories {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseChallengeCategory converts raw input into ChallengeCategory.
func ParseChallengeCategory(value string) (ChallengeCategory, error) {
	for _, candidate := range validChallengeCategories {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid challenge category %q", value)
}

// ChallengeStatus is the derived lifecycle phase of a challenge. It is never
// stored; every call site derives it from the time window.
type ChallengeStatus string

const (
	ChallengeUpcoming  ChallengeStatus = "upcoming"
	ChallengeActive    ChallengeStatus = "active"
	ChallengeCompleted ChallengeStatus = "completed"
)
