package core

import "time"

// Worker is a periodic job run by the Orchestrator.
type Worker interface {
	Name() string
	Schedule() string
	Ready(now time.Time) bool
	Execute()
}
