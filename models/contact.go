package models

// Contact holds the emergency contact numbers for an identity. Managed by an
// external surface; read here when fanning out alerts.
type Contact struct {
	User     string   `dynamodbav:"user" json:"user"`
	Contacts []string `dynamodbav:"contacts,stringset" json:"contacts"`
}
