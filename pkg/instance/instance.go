package instance

import "os"

// GetID returns the process instance identifier used in log fields.
// Heroku sets DYNO; other deployments can set WORKER_ID explicitly.
func GetID() string {
	if id := os.Getenv("WORKER_ID"); id != "" {
		return id
	}
	if id := os.Getenv("DYNO"); id != "" {
		return id
	}
	return "worker-0"
}
