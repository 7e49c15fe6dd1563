package entities

import "time"

// ABTest is one registered experiment.
type ABTest struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Variants     []Variant `json:"variants"`
	TrafficSplit float64   `json:"traffic_split"`
	Active       bool      `json:"active"`
	Metrics      []string  `json:"metrics,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// ControlVariant returns the first variant, the safe default for inactive or
// unknown tests.
func (t *ABTest) ControlVariant() Variant {
	if t == nil || len(t.Variants) == 0 {
		return Variant{}
	}
	return t.Variants[0]
}

// Variant is one arm of an A/B test.
type Variant struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ABTestEvent is an event recorded under a user's assigned variant.
type ABTestEvent struct {
	Type      string                 `json:"type"`
	Payload   map[string]interface{} `json:"payload,omitempty"`
	UserID    string                 `json:"user_id"`
	Timestamp time.Time              `json:"timestamp"`
}

// VariantResult accumulates the events and derived metrics of one variant.
type VariantResult struct {
	Events  []ABTestEvent      `json:"events"`
	Metrics map[string]float64 `json:"metrics"`
	Users   map[string]bool    `json:"users"`
}

// ABTestResults is the per-test report returned to experimenters.
type ABTestResults struct {
	TestID        string                    `json:"test_id"`
	Name          string                    `json:"name"`
	Variants      map[string]*VariantResult `json:"variants"`
	AssignedUsers int                       `json:"assigned_users"`
	Duration      time.Duration             `json:"duration"`
}
