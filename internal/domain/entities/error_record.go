package entities

import "time"

// ErrorRecord is one tracked search failure, kept in a bounded buffer and
// aggregated by its "type:message" composite key.
type ErrorRecord struct {
	ID        string                 `json:"id"`
	Message   string                 `json:"message"`
	Type      string                 `json:"type"`
	Context   map[string]interface{} `json:"context,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

// AggregateKey is the composite key errors are counted under.
func (r ErrorRecord) AggregateKey() string {
	return r.Type + ":" + r.Message
}
