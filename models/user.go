package models

// User is the durable identity record. Only existence matters to this
// service; credential handling lives elsewhere.
type User struct {
	User  string `dynamodbav:"user" json:"user"`
	SMPin string `dynamodbav:"smPIN,omitempty" json:"-"`
}
