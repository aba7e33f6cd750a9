package models

// Coordinate is one live location sample. Append-only: samples are never
// mutated or deleted. Keyed by (user, timestamp) so the newest sample per
// identity is a descending query.
type Coordinate struct {
	ID        string  `dynamodbav:"id" json:"id"`
	User      string  `dynamodbav:"user" json:"user"`
	Latitude  float64 `dynamodbav:"latitude" json:"latitude"`
	Longitude float64 `dynamodbav:"longitude" json:"longitude"`
	Timestamp string  `dynamodbav:"timestamp" json:"timestamp"`
	Session   string  `dynamodbav:"session,omitempty" json:"session,omitempty"`
}

// GeoPoint is a bare lat/lon pair.
type GeoPoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// CompanionStatus is one row of a proximity lookup: a session member's
// last-known location and distance from the requester. Fields stay null when
// no sample exists or distance could not be computed for that member.
type CompanionStatus struct {
	User           string   `json:"user"`
	Latitude       *float64 `json:"latitude"`
	Longitude      *float64 `json:"longitude"`
	LastSeen       *string  `json:"lastSeen"`
	HasLocation    bool     `json:"hasLocation"`
	DistanceMeters *float64 `json:"distanceMeters"`
}
