package logs

import "time"

// Event is one timestamped line of container output bound for the sink.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message"`
}
