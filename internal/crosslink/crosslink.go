package crosslink

import (
	"time"

	"github.com/ceijey/greenguardian-backend/internal/challenges"
	"github.com/ceijey/greenguardian-backend/pkg/db/models"
	"github.com/ceijey/greenguardian-backend/pkg/enums"
)

// eventCategories is the hand-authored mapping between volunteer event types
// and the challenge categories they advance.
var eventCategories = map[enums.EventType][]enums.ChallengeCategory{
	enums.EventTypeCleanup: {
		enums.CategoryRecycling,
		enums.CategoryPlasticReduction,
		enums.CategoryWasteReduction,
	},
	enums.EventTypeTreePlanting: {
		enums.CategoryConservation,
		enums.CategoryCarbonReduction,
	},
	enums.EventTypeWorkshop: {
		enums.CategoryEducation,
		enums.CategoryRecycling,
	},
	enums.EventTypeCommunityService: {
		enums.CategoryCommunity,
		enums.CategoryConservation,
	},
}

// Categories returns the challenge categories mapped from the event type.
// Unknown types yield nil.
func Categories(eventType enums.EventType) []enums.ChallengeCategory {
	return eventCategories[eventType]
}

// RelatedChallenges filters challenges down to those whose category is mapped
// from the event's type and which are active at now. Collections are small,
// so this is a plain scan per call.
func RelatedChallenges(event models.VolunteerEvent, candidates []models.Challenge, now time.Time) []models.Challenge {
	categories := Categories(event.Type)
	if len(categories) == 0 {
		return nil
	}

	wanted := make(map[enums.ChallengeCategory]struct{}, len(categories))
	for _, category := range categories {
		wanted[category] = struct{}{}
	}

	var related []models.Challenge
	for _, challenge := range candidates {
		if _, ok := wanted[challenge.Category]; !ok {
			continue
		}
		if challenges.Status(now, challenge.StartDate, challenge.EndDate) != enums.ChallengeActive {
			continue
		}
		related = append(related, challenge)
	}
	return related
}

// RelatedEvents filters events down to those whose type maps to the
// challenge's category.
func RelatedEvents(challenge models.Challenge, candidates []models.VolunteerEvent) []models.VolunteerEvent {
	var related []models.VolunteerEvent
	for _, event := range candidates {
		for _, category := range Categories(event.Type) {
			if category == challenge.Category {
				related = append(related, event)
				break
			}
		}
	}
	return related
}
