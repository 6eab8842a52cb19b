package model

// Violation describes a single failed field constraint.
type Violation struct {
	Property string `json:"property"`
	Message  string `json:"message"`
}
