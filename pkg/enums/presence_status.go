package enums

// PresenceStatus is derived from a heartbeat's age at read time; it is never
// stored.
type PresenceStatus string

const (
	PresenceOnline  PresenceStatus = "online"
	PresenceAway    PresenceStatus = "away"
	PresenceOffline PresenceStatus = "offline"
)
