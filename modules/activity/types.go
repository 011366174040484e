package activity

import "time"

// ServiceSummary is the request-reply service exposing the activity summary.
const ServiceSummary = "activity-summary"

// Entry kinds
const (
	KindJoin       = "join"
	KindChat       = "chat"
	KindDisconnect = "disconnect"
)

// Entry is one line of the recent activity log.
type Entry struct {
	Kind      string    `json:"kind"`
	Room      string    `json:"room,omitempty"`
	Conn      string    `json:"conn"`
	Detail    string    `json:"detail,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Summary aggregates relay events since start.
type Summary struct {
	Joins        int64   `json:"joins"`
	ChatMessages int64   `json:"chat_messages"`
	ChatBytes    int64   `json:"chat_bytes"`
	Disconnects  int64   `json:"disconnects"`
	OnlineMillis int64   `json:"online_ms"`
	Recent       []Entry `json:"recent"`
}

// SummaryRequest is the request for the activity-summary service. Limit caps
// the number of recent entries returned, newest first; zero returns all.
type SummaryRequest struct {
	Limit int `json:"limit"`
}

// SummaryResponse is the response for the activity-summary service.
type SummaryResponse struct {
	Summary Summary `json:"summary"`
}
