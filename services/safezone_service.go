package services

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"raksha_server/models"
	"raksha_server/utils"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
)

// AlertNotifier is the alert collaborator contract: best-effort, never fails
// the caller. *AlertService is the real implementation.
type AlertNotifier interface {
	Notify(ctx context.Context, user string, point *models.GeoPoint, message string) models.NotifyResult
}

// SafeZoneService owns geofence definition, breach evaluation, and the
// persist/broadcast/notify breach pipeline.
type SafeZoneService struct {
	Dynamo        DynamoAPI
	Relationships *RelationshipService
	Broadcaster   Broadcaster
	Alerts        AlertNotifier

	now func() time.Time
}

// NewSafeZoneService builds a SafeZoneService.
func NewSafeZoneService(dynamo DynamoAPI, relationships *RelationshipService, broadcaster Broadcaster, alerts AlertNotifier) *SafeZoneService {
	return &SafeZoneService{
		Dynamo:        dynamo,
		Relationships: relationships,
		Broadcaster:   broadcaster,
		Alerts:        alerts,
		now:           time.Now,
	}
}

// SetZone upserts the zone for a scope. The actor must be the owning identity
// or hold an accepted editSafeZone grant toward it.
func (zs *SafeZoneService) SetZone(ctx context.Context, user, session string, latitude, longitude, radiusMeters float64, actor string) (*models.SafeZone, error) {
	if user == "" {
		return nil, fmt.Errorf("user is required: %w", models.ErrValidation)
	}
	if err := ValidatePoint(latitude, longitude); err != nil {
		return nil, err
	}
	if radiusMeters <= 0 {
		return nil, fmt.Errorf("radiusMeters must be positive: %w", models.ErrValidation)
	}
	if actor == "" {
		return nil, fmt.Errorf("actor required to modify safe zone: %w", models.ErrForbidden)
	}
	allowed, err := zs.Relationships.Authorize(ctx, actor, models.CapEditSafeZone, user)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, fmt.Errorf("actor not allowed to edit safe zone for this user: %w", models.ErrForbidden)
	}

	now := zs.now().UTC().Format(time.RFC3339)
	zone := &models.SafeZone{
		ScopeKey:     models.ZoneScopeKey(session, user),
		Session:      session,
		User:         user,
		Latitude:     latitude,
		Longitude:    longitude,
		RadiusMeters: radiusMeters,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if existing, err := zs.GetZone(ctx, session, user); err == nil && existing != nil {
		zone.CreatedAt = existing.CreatedAt
	}
	if err := zs.Dynamo.PutItem(ctx, models.SafeZonesTable, zone); err != nil {
		return nil, err
	}
	return zone, nil
}

// GetZone fetches the active zone for a scope. Returns (nil, nil) when no
// zone is configured.
func (zs *SafeZoneService) GetZone(ctx context.Context, session, user string) (*models.SafeZone, error) {
	scopeKey := models.ZoneScopeKey(session, user)
	if scopeKey == "" {
		return nil, fmt.Errorf("session or user is required: %w", models.ErrValidation)
	}
	item, err := zs.Dynamo.GetItem(ctx, models.SafeZonesTable, StringKey("scopeKey", scopeKey))
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, nil
	}
	var zone models.SafeZone
	if err := attributevalue.UnmarshalMap(item, &zone); err != nil {
		return nil, fmt.Errorf("failed to unmarshal safe zone %q: %w", scopeKey, err)
	}
	return &zone, nil
}

// EvaluateBreach computes the great-circle distance from a point to the zone
// center. The point breaches when the distance exceeds the zone radius.
func (zs *SafeZoneService) EvaluateBreach(point models.GeoPoint, zone *models.SafeZone) (distance float64, breached bool) {
	distance = utils.Haversine(point.Latitude, point.Longitude, zone.Latitude, zone.Longitude)
	return distance, distance > zone.RadiusMeters
}

// ReportBreach runs the breach pipeline: persist the event, rebroadcast it to
// the session room, and invoke the alert collaborator. The three effects are
// failure-isolated; any one failing never prevents the others, and the
// outcome report carries per-effect results. When notification succeeded and
// the event was persisted, the record's notified flag flips exactly once.
func (zs *SafeZoneService) ReportBreach(ctx context.Context, user, session string, latitude, longitude *float64, timestamp, breachType string) (*models.BreachOutcome, error) {
	if user == "" || session == "" {
		return nil, fmt.Errorf("user and session are required: %w", models.ErrValidation)
	}
	if timestamp == "" {
		timestamp = zs.now().UTC().Format(time.RFC3339)
	}
	if breachType == "" {
		breachType = models.BreachTypeExit
	}

	outcome := &models.BreachOutcome{
		Payload: models.BreachEventPayload{
			User:      user,
			Session:   session,
			Latitude:  latitude,
			Longitude: longitude,
			Timestamp: timestamp,
			Type:      breachType,
		},
	}

	// 1) persist the breach record
	breach := models.Breach{
		ID:        uuid.NewString(),
		User:      user,
		Session:   session,
		Latitude:  latitude,
		Longitude: longitude,
		Type:      breachType,
		Timestamp: timestamp,
		Notified:  false,
		CreatedAt: zs.now().UTC().Format(time.RFC3339),
	}
	if err := zs.Dynamo.PutItem(ctx, models.BreachesTable, breach); err != nil {
		log.Printf("failed to save breach record: %v", err)
		outcome.PersistError = err.Error()
	} else {
		outcome.Persisted = true
		outcome.Payload.BreachID = breach.ID
	}

	// 2) broadcast to the session room, best-effort
	if zs.Broadcaster != nil {
		zs.Broadcaster.BroadcastToRoom(session, "safezone_breach", outcome.Payload)
		outcome.Broadcast = true
	} else {
		log.Println("no broadcaster attached, skipping safezone_breach fan-out")
	}

	// 3) notify the alert collaborator, best-effort
	message := fmt.Sprintf("Auto-alert: %s breached safe zone at %s,%s (session %s).",
		user, formatCoord(latitude), formatCoord(longitude), session)
	var point *models.GeoPoint
	if latitude != nil && longitude != nil {
		point = &models.GeoPoint{Latitude: *latitude, Longitude: *longitude}
	}
	outcome.Notify = zs.Alerts.Notify(ctx, user, point, message)

	if outcome.Notify.OK && outcome.Payload.BreachID != "" {
		err := zs.Dynamo.UpdateFieldIf(ctx, models.BreachesTable,
			StringKey("id", outcome.Payload.BreachID), "notified",
			&types.AttributeValueMemberBOOL{Value: true},
			&types.AttributeValueMemberBOOL{Value: false})
		if err != nil {
			log.Printf("failed to mark breach %s as notified: %v", outcome.Payload.BreachID, err)
		} else {
			outcome.Notified = true
		}
	}

	return outcome, nil
}

// ListBreaches returns recent breach events matching the optional session and
// user filters, newest first. Limit is capped at 100; page is zero-based.
func (zs *SafeZoneService) ListBreaches(ctx context.Context, session, user string, limit, page int) ([]models.Breach, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if page < 0 {
		page = 0
	}

	items, err := zs.Dynamo.ScanItems(ctx, models.BreachesTable)
	if err != nil {
		return nil, err
	}
	breaches := []models.Breach{}
	for _, item := range items {
		var b models.Breach
		if err := attributevalue.UnmarshalMap(item, &b); err != nil {
			continue
		}
		if session != "" && b.Session != session {
			continue
		}
		if user != "" && b.User != user {
			continue
		}
		breaches = append(breaches, b)
	}
	sort.Slice(breaches, func(i, j int) bool { return breaches[i].CreatedAt > breaches[j].CreatedAt })

	start := page * limit
	if start >= len(breaches) {
		return []models.Breach{}, nil
	}
	end := start + limit
	if end > len(breaches) {
		end = len(breaches)
	}
	return breaches[start:end], nil
}

func formatCoord(v *float64) string {
	if v == nil {
		return "unknown"
	}
	return fmt.Sprintf("%.6f", *v)
}
