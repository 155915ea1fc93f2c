package sse

// SSE event type constants
const (
	EventStateChanged = "state-changed"
	EventState        = "state" // the receiving player's own state view
	EventScoreUpdate  = "score-update"
	EventReset        = "event-reset"
)
