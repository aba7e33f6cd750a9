package models

// Breach is an immutable audit record of a zone exit (or manual/simulated
// report). Only the Notified flag ever changes, and at most once.
type Breach struct {
	ID        string   `dynamodbav:"id" json:"id"`
	User      string   `dynamodbav:"user" json:"user"`
	Session   string   `dynamodbav:"session" json:"session"`
	Latitude  *float64 `dynamodbav:"latitude" json:"latitude"`
	Longitude *float64 `dynamodbav:"longitude" json:"longitude"`
	Type      string   `dynamodbav:"type" json:"type"`
	Timestamp string   `dynamodbav:"timestamp" json:"timestamp"`
	Notified  bool     `dynamodbav:"notified" json:"notified"`
	CreatedAt string   `dynamodbav:"createdAt" json:"createdAt"`
}

// BreachEventPayload is the wire shape broadcast to the session room and
// echoed back in the HTTP response.
type BreachEventPayload struct {
	User      string   `json:"user"`
	Session   string   `json:"session"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Timestamp string   `json:"timestamp"`
	Type      string   `json:"type"`
	BreachID  string   `json:"breachId,omitempty"`
}

// BreachOutcome aggregates the result of each effect in the breach pipeline.
// The three effects are failure-isolated; a false here never failed the call
// that produced it.
type BreachOutcome struct {
	Payload      BreachEventPayload `json:"payload"`
	Persisted    bool               `json:"persisted"`
	PersistError string             `json:"persistError,omitempty"`
	Broadcast    bool               `json:"broadcast"`
	Notify       NotifyResult       `json:"notify"`
	Notified     bool               `json:"notified"`
}
