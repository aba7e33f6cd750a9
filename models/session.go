package models

// Session is an ephemeral group of identities sharing live location.
// ExpiresAt carries the DynamoDB TTL epoch; reads treat expired rows as gone.
type Session struct {
	Code      string   `dynamodbav:"code" json:"code"`
	Users     []string `dynamodbav:"users,stringset" json:"users"`
	CreatedAt string   `dynamodbav:"createdAt" json:"createdAt"`
	ExpiresAt int64    `dynamodbav:"expiresAt" json:"expiresAt"`
}

// HasUser reports whether the identity is already a member.
func (s *Session) HasUser(user string) bool {
	for _, u := range s.Users {
		if u == user {
			return true
		}
	}
	return false
}
