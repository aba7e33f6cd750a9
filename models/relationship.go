package models

// Grants is the capability set an accepted relationship confers. ExpiresAt is
// carried as data but not evaluated during authorization.
type Grants struct {
	EditSafeZone  bool   `dynamodbav:"editSafeZone" json:"editSafeZone"`
	ViewLocation  bool   `dynamodbav:"viewLocation" json:"viewLocation"`
	ReceiveAlerts bool   `dynamodbav:"receiveAlerts" json:"receiveAlerts"`
	SOSOnBreach   bool   `dynamodbav:"sosOnBreach" json:"sosOnBreach"`
	ExpiresAt     string `dynamodbav:"expiresAt,omitempty" json:"expiresAt,omitempty"`
}

// Has reports whether the named capability is granted.
func (g Grants) Has(capability string) bool {
	switch capability {
	case CapEditSafeZone:
		return g.EditSafeZone
	case CapViewLocation:
		return g.ViewLocation
	case CapReceiveAlerts:
		return g.ReceiveAlerts
	case CapSOSOnBreach:
		return g.SOSOnBreach
	}
	return false
}

// Merge widens g by OR-ing in another grant set. Widening is monotonic:
// accepting with fewer flags never narrows what was already requested.
func (g Grants) Merge(other Grants) Grants {
	merged := Grants{
		EditSafeZone:  g.EditSafeZone || other.EditSafeZone,
		ViewLocation:  g.ViewLocation || other.ViewLocation,
		ReceiveAlerts: g.ReceiveAlerts || other.ReceiveAlerts,
		SOSOnBreach:   g.SOSOnBreach || other.SOSOnBreach,
		ExpiresAt:     g.ExpiresAt,
	}
	if other.ExpiresAt != "" {
		merged.ExpiresAt = other.ExpiresAt
	}
	return merged
}

// Relationship is a permission-grant edge between two identities.
// Status moves pending -> accepted|rejected, accepted -> revoked; rejected and
// revoked are terminal.
type Relationship struct {
	ID          string `dynamodbav:"id" json:"id"`
	From        string `dynamodbav:"from" json:"from"`
	To          string `dynamodbav:"to" json:"to"`
	Type        string `dynamodbav:"type" json:"type"`
	Directional bool   `dynamodbav:"directional" json:"directional"`
	Status      string `dynamodbav:"status" json:"status"`
	Grants      Grants `dynamodbav:"grants" json:"grants"`
	CreatedAt   string `dynamodbav:"createdAt" json:"createdAt"`
	UpdatedAt   string `dynamodbav:"updatedAt" json:"updatedAt"`
	CreatedBy   string `dynamodbav:"createdBy" json:"createdBy"`
}

// DirectionalByDefault reports the default directionality for a category.
// Guardian-style links point from the role holder to the dependent; spouse and
// other inherently symmetric categories are non-directional.
func DirectionalByDefault(relType string) bool {
	switch relType {
	case RelationGuardian, RelationParent, RelationChild, RelationFriend:
		return true
	}
	return false
}
