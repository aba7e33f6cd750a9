package models

// SMSResult records one delivery attempt to a single recipient.
type SMSResult struct {
	To     string `dynamodbav:"to" json:"to"`
	Sid    string `dynamodbav:"sid,omitempty" json:"sid,omitempty"`
	Status string `dynamodbav:"status,omitempty" json:"status,omitempty"`
	Error  string `dynamodbav:"error,omitempty" json:"error,omitempty"`
}

// Alert is the audit record persisted for every notify attempt.
type Alert struct {
	ID         string      `dynamodbav:"id" json:"id"`
	AlertType  string      `dynamodbav:"alertType" json:"alertType"`
	Msg        string      `dynamodbav:"msg" json:"msg"`
	VideoURL   string      `dynamodbav:"videoUrl,omitempty" json:"videoUrl,omitempty"`
	VoiceURL   string      `dynamodbav:"voiceUrl,omitempty" json:"voiceUrl,omitempty"`
	Latitude   float64     `dynamodbav:"latitude" json:"latitude"`
	Longitude  float64     `dynamodbav:"longitude" json:"longitude"`
	Recipients []string    `dynamodbav:"recipients,omitempty" json:"recipients,omitempty"`
	SMSResults []SMSResult `dynamodbav:"smsResults,omitempty" json:"smsResults,omitempty"`
	CreatedAt  string      `dynamodbav:"createdAt" json:"createdAt"`
}

// NotifyResult is the alert collaborator's outcome report. The collaborator
// never fails its caller; absence of configuration degrades to ok:false with
// a notice.
type NotifyResult struct {
	OK            bool        `json:"ok"`
	Error         string      `json:"error,omitempty"`
	Notice        string      `json:"notice,omitempty"`
	StoredAlertID string      `json:"storedAlertId,omitempty"`
	Recipients    []string    `json:"recipients"`
	SMSResults    []SMSResult `json:"smsResults,omitempty"`
}
