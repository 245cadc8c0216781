package model

import "time"

// CircuitBrokenEvent is raised when a downstream breaker starts blocking calls.
type CircuitBrokenEvent struct {
	Breaker  string
	From     string
	BrokenAt time.Time
}

// CircuitRecoveredEvent is raised when a blocking breaker lets calls through
// again.
type CircuitRecoveredEvent struct {
	Breaker     string
	RecoveredAt time.Time
	// BlockedFor is zero when the trip was not observed by this process.
	BlockedFor time.Duration
}
