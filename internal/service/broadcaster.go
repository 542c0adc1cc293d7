package service

// Broadcaster pushes events to a user's live connections (avoids import cycle with ws)
type Broadcaster interface {
	BroadcastToUser(userID string, msgType string, payload interface{})
}

const (
	EventProgressUpdate   = "progress_update"
	EventSessionCommitted = "session_committed"
)
