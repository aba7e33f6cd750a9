package models

// SafeZone is a circular geofence owned by a scope key: the session code when
// the zone is session-wide, otherwise the owning identity. At most one active
// zone exists per scope key; sets after the first upsert in place.
type SafeZone struct {
	ScopeKey     string  `dynamodbav:"scopeKey" json:"-"`
	Session      string  `dynamodbav:"session,omitempty" json:"session,omitempty"`
	User         string  `dynamodbav:"user" json:"user"`
	Latitude     float64 `dynamodbav:"latitude" json:"latitude"`
	Longitude    float64 `dynamodbav:"longitude" json:"longitude"`
	RadiusMeters float64 `dynamodbav:"radiusMeters" json:"radiusMeters"`
	CreatedAt    string  `dynamodbav:"createdAt" json:"createdAt"`
	UpdatedAt    string  `dynamodbav:"updatedAt" json:"updatedAt"`
}

// ZoneScopeKey derives the owning scope key for a zone lookup or upsert.
func ZoneScopeKey(session, user string) string {
	if session != "" {
		return session
	}
	return user
}
