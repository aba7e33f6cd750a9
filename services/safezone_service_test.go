package services

import (
	"context"
	"errors"
	"testing"

	"raksha_server/models"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newZoneFixture() (*fakeDynamo, *RelationshipService, *recordingBroadcaster, *fakeNotifier, *SafeZoneService) {
	fake := newFakeDynamo()
	rels := NewRelationshipService(fake)
	broadcaster := &recordingBroadcaster{}
	alerts := &fakeNotifier{result: models.NotifyResult{OK: true}}
	zones := NewSafeZoneService(fake, rels, broadcaster, alerts)
	return fake, rels, broadcaster, alerts, zones
}

func fptr(v float64) *float64 { return &v }

func TestSetZoneByOwner(t *testing.T) {
	_, _, _, _, zones := newZoneFixture()

	zone, err := zones.SetZone(context.Background(), "111", "", 12.90, 77.50, 100, "111")
	require.NoError(t, err)
	assert.Equal(t, "111", zone.User)
	assert.Equal(t, 100.0, zone.RadiusMeters)

	fetched, err := zones.GetZone(context.Background(), "", "111")
	require.NoError(t, err)
	require.NotNil(t, fetched)
	assert.Equal(t, 12.90, fetched.Latitude)
}

func TestSetZoneUpsertsInPlace(t *testing.T) {
	_, _, _, _, zones := newZoneFixture()
	ctx := context.Background()

	first, err := zones.SetZone(ctx, "111", "", 12.90, 77.50, 100, "111")
	require.NoError(t, err)

	second, err := zones.SetZone(ctx, "111", "", 13.00, 77.60, 250, "111")
	require.NoError(t, err)
	assert.Equal(t, first.CreatedAt, second.CreatedAt)

	fetched, err := zones.GetZone(ctx, "", "111")
	require.NoError(t, err)
	require.NotNil(t, fetched)
	assert.Equal(t, 250.0, fetched.RadiusMeters)
}

func TestSetZoneForbiddenWithoutGrant(t *testing.T) {
	_, _, _, _, zones := newZoneFixture()

	_, err := zones.SetZone(context.Background(), "111", "", 12.90, 77.50, 100, "222")
	require.ErrorIs(t, err, models.ErrForbidden)

	_, err = zones.SetZone(context.Background(), "111", "", 12.90, 77.50, 100, "")
	require.ErrorIs(t, err, models.ErrForbidden)
}

func TestSetZoneAllowedWithAcceptedGrant(t *testing.T) {
	_, rels, _, _, zones := newZoneFixture()
	ctx := context.Background()

	// no edge yet: B cannot edit A's zone
	_, err := zones.SetZone(ctx, "A", "", 12.90, 77.50, 100, "B")
	require.ErrorIs(t, err, models.ErrForbidden)

	rel, err := rels.Request(ctx, "B", "A", models.RelationGuardian,
		models.Grants{EditSafeZone: true})
	require.NoError(t, err)
	_, err = rels.Respond(ctx, rel.ID, "A", "accept", models.Grants{})
	require.NoError(t, err)

	_, err = zones.SetZone(ctx, "A", "", 12.90, 77.50, 100, "B")
	require.NoError(t, err)
}

func TestSetZoneValidation(t *testing.T) {
	_, _, _, _, zones := newZoneFixture()
	ctx := context.Background()

	_, err := zones.SetZone(ctx, "", "", 12.90, 77.50, 100, "111")
	require.ErrorIs(t, err, models.ErrValidation)

	_, err = zones.SetZone(ctx, "111", "", 12.90, 77.50, 0, "111")
	require.ErrorIs(t, err, models.ErrValidation)

	_, err = zones.SetZone(ctx, "111", "", 12.90, 77.50, -5, "111")
	require.ErrorIs(t, err, models.ErrValidation)
}

func TestEvaluateBreach(t *testing.T) {
	_, _, _, _, zones := newZoneFixture()

	zone := &models.SafeZone{Latitude: 12.9716, Longitude: 77.5946, RadiusMeters: 500}

	distance, breached := zones.EvaluateBreach(models.GeoPoint{Latitude: 12.9716, Longitude: 77.5946}, zone)
	assert.Zero(t, distance)
	assert.False(t, breached)

	// ~1.1km east of the center, well past a 500m radius
	distance, breached = zones.EvaluateBreach(models.GeoPoint{Latitude: 12.9716, Longitude: 77.6046}, zone)
	assert.True(t, breached)
	assert.InEpsilon(t, 1085.0, distance, 0.03)
}

func TestReportBreachPipeline(t *testing.T) {
	fake, _, broadcaster, alerts, zones := newZoneFixture()
	ctx := context.Background()

	outcome, err := zones.ReportBreach(ctx, "111", "demo", fptr(12.98), fptr(77.61), "", "")
	require.NoError(t, err)

	assert.True(t, outcome.Persisted)
	assert.NotEmpty(t, outcome.Payload.BreachID)
	assert.Equal(t, models.BreachTypeExit, outcome.Payload.Type)
	assert.True(t, outcome.Broadcast)
	require.Len(t, broadcaster.broadcasts, 1)
	assert.Equal(t, "demo", broadcaster.broadcasts[0].Room)
	assert.Equal(t, "safezone_breach", broadcaster.broadcasts[0].Event)
	assert.Equal(t, 1, alerts.calls)
	assert.True(t, outcome.Notified)

	// the stored record's notified flag flipped
	item, err := fake.GetItem(ctx, models.BreachesTable, StringKey("id", outcome.Payload.BreachID))
	require.NoError(t, err)
	require.NotNil(t, item)
	var stored models.Breach
	require.NoError(t, attributevalue.UnmarshalMap(item, &stored))
	assert.True(t, stored.Notified)

	// the conditional guard refuses a second flip
	err = fake.UpdateFieldIf(ctx, models.BreachesTable, StringKey("id", stored.ID), "notified",
		&types.AttributeValueMemberBOOL{Value: true},
		&types.AttributeValueMemberBOOL{Value: false})
	require.ErrorIs(t, err, models.ErrConflict)
}

func TestReportBreachPersistFailureIsIsolated(t *testing.T) {
	fake, _, broadcaster, alerts, zones := newZoneFixture()
	fake.failPut[models.BreachesTable] = errors.New("disk full")

	outcome, err := zones.ReportBreach(context.Background(), "111", "demo", fptr(12.98), fptr(77.61), "", "")
	require.NoError(t, err, "persistence failure must not fail the call")

	assert.False(t, outcome.Persisted)
	assert.Contains(t, outcome.PersistError, "disk full")
	assert.Empty(t, outcome.Payload.BreachID)

	// broadcast and notify still ran
	assert.Len(t, broadcaster.broadcasts, 1)
	assert.Equal(t, 1, alerts.calls)
	assert.True(t, outcome.Notify.OK)

	// nothing persisted, so nothing to flip
	assert.False(t, outcome.Notified)
}

func TestReportBreachNotifyFailureLeavesFlagUnset(t *testing.T) {
	fake, _, _, alerts, zones := newZoneFixture()
	alerts.result = models.NotifyResult{OK: false, Notice: "sms sender not configured; delivery skipped"}

	outcome, err := zones.ReportBreach(context.Background(), "111", "demo", fptr(12.98), fptr(77.61), "", "")
	require.NoError(t, err)
	assert.True(t, outcome.Persisted)
	assert.False(t, outcome.Notified)

	item, err := fake.GetItem(context.Background(), models.BreachesTable, StringKey("id", outcome.Payload.BreachID))
	require.NoError(t, err)
	var stored models.Breach
	require.NoError(t, attributevalue.UnmarshalMap(item, &stored))
	assert.False(t, stored.Notified)
}

func TestReportBreachValidation(t *testing.T) {
	_, _, _, _, zones := newZoneFixture()

	_, err := zones.ReportBreach(context.Background(), "", "demo", nil, nil, "", "")
	require.ErrorIs(t, err, models.ErrValidation)

	_, err = zones.ReportBreach(context.Background(), "111", "", nil, nil, "", "")
	require.ErrorIs(t, err, models.ErrValidation)
}

func TestListBreachesFiltersAndPages(t *testing.T) {
	_, _, _, _, zones := newZoneFixture()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := zones.ReportBreach(ctx, "111", "demo", fptr(12.98), fptr(77.61), "", "")
		require.NoError(t, err)
	}
	_, err := zones.ReportBreach(ctx, "222", "other", fptr(12.98), fptr(77.61), "", models.BreachTypeManual)
	require.NoError(t, err)

	breaches, err := zones.ListBreaches(ctx, "demo", "", 0, 0)
	require.NoError(t, err)
	assert.Len(t, breaches, 3)

	breaches, err = zones.ListBreaches(ctx, "", "222", 0, 0)
	require.NoError(t, err)
	require.Len(t, breaches, 1)
	assert.Equal(t, models.BreachTypeManual, breaches[0].Type)

	breaches, err = zones.ListBreaches(ctx, "demo", "", 2, 1)
	require.NoError(t, err)
	assert.Len(t, breaches, 1)

	breaches, err = zones.ListBreaches(ctx, "demo", "", 2, 5)
	require.NoError(t, err)
	assert.Empty(t, breaches)
}
