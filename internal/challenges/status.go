package challenges

import (
	"time"

	"github.com/ceijey/greenguardian-backend/pkg/enums"
)

// Status derives the lifecycle state of a challenge window at now. Every call
// site derives status through this function; it is never stored.
//
// A challenge is upcoming while now < start, active while
// start <= now <= end (both endpoints inclusive), and completed once
// end < now. A nil start means active immediately; a nil end means the
// challenge never completes.
func Status(now time.Time, start, end *time.Time) enums.ChallengeStatus {
	if start != nil && now.Before(*start) {
		return enums.ChallengeUpcoming
	}
	if end != nil && end.Before(now) {
		return enums.ChallengeCompleted
	}
	return enums.ChallengeActive
}
