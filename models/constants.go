package models

// DynamoDB table names
const (
	SessionsTable      = "Sessions"
	CoordinatesTable   = "Coordinates"
	SafeZonesTable     = "SafeZones"
	BreachesTable      = "Breaches"
	RelationshipsTable = "Relationships"
	UsersTable         = "Users"
	ContactsTable      = "Contacts"
	AlertsTable        = "Alerts"
)

// Relationship statuses
const (
	RelationshipPending  = "pending"
	RelationshipAccepted = "accepted"
	RelationshipRejected = "rejected"
	RelationshipRevoked  = "revoked"
)

// Relationship categories
const (
	RelationGuardian = "guardian"
	RelationSpouse   = "spouse"
	RelationParent   = "parent"
	RelationChild    = "child"
	RelationFriend   = "friend"
)

// Grant capabilities
const (
	CapEditSafeZone  = "editSafeZone"
	CapViewLocation  = "viewLocation"
	CapReceiveAlerts = "receiveAlerts"
	CapSOSOnBreach   = "sosOnBreach"
)

// Breach types
const (
	BreachTypeExit      = "exit"
	BreachTypeRecovered = "recovered"
	BreachTypeManual    = "manual"
	BreachTypeSimulated = "simulated"
)
