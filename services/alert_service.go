package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"raksha_server/models"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/google/uuid"
	"github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"
)

// SMSSender delivers one text message. TwilioSender is the real gateway; a
// nil sender on AlertService means SMS is disabled.
type SMSSender interface {
	Send(ctx context.Context, to, body string) (sid, status string, err error)
}

// TwilioSender sends SMS through the Twilio REST API.
type TwilioSender struct {
	client *twilio.RestClient
	from   string
}

// NewTwilioSender builds a TwilioSender from account credentials.
func NewTwilioSender(accountSID, authToken, from string) *TwilioSender {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return &TwilioSender{client: client, from: from}
}

func (ts *TwilioSender) Send(ctx context.Context, to, body string) (string, string, error) {
	params := &openapi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(ts.from)
	params.SetBody(body)
	message, err := ts.client.Api.CreateMessage(params)
	if err != nil {
		return "", "", err
	}
	sid, status := "", ""
	if message.Sid != nil {
		sid = *message.Sid
	}
	if message.Status != nil {
		status = *message.Status
	}
	return sid, status, nil
}

// AlertService is the alert-notification collaborator. Notify persists an
// audit record and fans an SMS out to the identity's stored contacts. It
// never fails its caller: every outcome, including missing configuration, is
// reported through the result object.
type AlertService struct {
	Dynamo DynamoAPI
	Sender SMSSender

	now func() time.Time
}

// NewAlertService builds an AlertService. Sender may be nil, in which case
// notifications degrade to ok:false with a notice.
func NewAlertService(dynamo DynamoAPI, sender SMSSender) *AlertService {
	return &AlertService{Dynamo: dynamo, Sender: sender, now: time.Now}
}

// Notify records an alert for the identity and attempts SMS delivery to each
// stored contact.
func (as *AlertService) Notify(ctx context.Context, user string, point *models.GeoPoint, message string) models.NotifyResult {
	result := models.NotifyResult{Recipients: []string{}}
	if user == "" || message == "" || point == nil {
		result.Error = "user, location and message are required"
		return result
	}

	result.Recipients = as.contactsFor(ctx, user)

	alert := models.Alert{
		ID:         uuid.NewString(),
		AlertType:  "SOS",
		Msg:        message,
		Latitude:   point.Latitude,
		Longitude:  point.Longitude,
		Recipients: result.Recipients,
		CreatedAt:  as.now().UTC().Format(time.RFC3339),
	}

	if as.Sender == nil {
		result.Notice = "sms sender not configured; delivery skipped"
		as.storeAlert(ctx, &alert, &result)
		return result
	}

	body := fmt.Sprintf("%s\nLocation: https://maps.google.com/?q=%f,%f", message, point.Latitude, point.Longitude)
	for _, recipient := range result.Recipients {
		sid, status, err := as.Sender.Send(ctx, recipient, body)
		if err != nil {
			log.Printf("sms send failed for %s: %v", recipient, err)
			result.SMSResults = append(result.SMSResults, models.SMSResult{To: recipient, Error: err.Error()})
			continue
		}
		result.SMSResults = append(result.SMSResults, models.SMSResult{To: recipient, Sid: sid, Status: status})
	}

	alert.SMSResults = result.SMSResults
	as.storeAlert(ctx, &alert, &result)
	if result.Error == "" {
		result.OK = true
	}
	return result
}

func (as *AlertService) storeAlert(ctx context.Context, alert *models.Alert, result *models.NotifyResult) {
	if err := as.Dynamo.PutItem(ctx, models.AlertsTable, alert); err != nil {
		log.Printf("failed to store alert: %v", err)
		result.Error = err.Error()
		return
	}
	result.StoredAlertID = alert.ID
}

func (as *AlertService) contactsFor(ctx context.Context, user string) []string {
	item, err := as.Dynamo.GetItem(ctx, models.ContactsTable, StringKey("user", user))
	if err != nil {
		log.Printf("contact lookup failed for %s: %v", user, err)
		return []string{}
	}
	if item == nil {
		return []string{}
	}
	var contact models.Contact
	if err := attributevalue.UnmarshalMap(item, &contact); err != nil {
		return []string{}
	}
	if contact.Contacts == nil {
		return []string{}
	}
	return contact.Contacts
}
