package services

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"raksha_server/models"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// fakeDynamo is an in-memory DynamoAPI for service tests. It mirrors the key
// schema of each table and the conditional-write semantics the services rely
// on.
type fakeDynamo struct {
	mu     sync.Mutex
	tables map[string]map[string]map[string]types.AttributeValue

	// failPut, when set for a table, makes PutItem fail with that error.
	failPut map[string]error
}

var fakeKeySchemas = map[string][2]string{
	models.SessionsTable:      {"code", ""},
	models.CoordinatesTable:   {"user", "timestamp"},
	models.SafeZonesTable:     {"scopeKey", ""},
	models.BreachesTable:      {"id", ""},
	models.RelationshipsTable: {"id", ""},
	models.UsersTable:         {"user", ""},
	models.ContactsTable:      {"user", ""},
	models.AlertsTable:        {"id", ""},
}

func newFakeDynamo() *fakeDynamo {
	return &fakeDynamo{
		tables:  map[string]map[string]map[string]types.AttributeValue{},
		failPut: map[string]error{},
	}
}

func (f *fakeDynamo) table(name string) map[string]map[string]types.AttributeValue {
	if f.tables[name] == nil {
		f.tables[name] = map[string]map[string]types.AttributeValue{}
	}
	return f.tables[name]
}

func (f *fakeDynamo) itemKey(tableName string, item map[string]types.AttributeValue) string {
	schema := fakeKeySchemas[tableName]
	key := avString(item[schema[0]])
	if schema[1] != "" {
		key += "|" + avString(item[schema[1]])
	}
	return key
}

func (f *fakeDynamo) PutItem(_ context.Context, tableName string, item interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failPut[tableName]; err != nil {
		return err
	}
	marshaled, err := attributevalue.MarshalMap(item)
	if err != nil {
		return err
	}
	f.table(tableName)[f.itemKey(tableName, marshaled)] = marshaled
	return nil
}

func (f *fakeDynamo) PutItemIfAbsent(_ context.Context, tableName string, item interface{}, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failPut[tableName]; err != nil {
		return err
	}
	marshaled, err := attributevalue.MarshalMap(item)
	if err != nil {
		return err
	}
	key := f.itemKey(tableName, marshaled)
	if _, exists := f.table(tableName)[key]; exists {
		return fmt.Errorf("item already exists in table '%s': %w", tableName, models.ErrConflict)
	}
	f.table(tableName)[key] = marshaled
	return nil
}

func (f *fakeDynamo) GetItem(_ context.Context, tableName string, key map[string]types.AttributeValue) (map[string]types.AttributeValue, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	item, ok := f.table(tableName)[f.itemKey(tableName, key)]
	if !ok {
		return nil, nil
	}
	return item, nil
}

func (f *fakeDynamo) QueryItemsDesc(_ context.Context, tableName, keyName, keyValue string, limit int32) ([]map[string]types.AttributeValue, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	sortAttr := fakeKeySchemas[tableName][1]
	var matched []map[string]types.AttributeValue
	for _, item := range f.table(tableName) {
		if avString(item[keyName]) == keyValue {
			matched = append(matched, item)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return avString(matched[i][sortAttr]) > avString(matched[j][sortAttr])
	})
	if int32(len(matched)) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

func (f *fakeDynamo) UpdateFieldIf(_ context.Context, tableName string, key map[string]types.AttributeValue, field string, value, expected types.AttributeValue) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	item, ok := f.table(tableName)[f.itemKey(tableName, key)]
	if !ok {
		return fmt.Errorf("item not found in table '%s'", tableName)
	}
	if expected != nil && avString(item[field]) != avString(expected) {
		return fmt.Errorf("field '%s' no longer holds expected value in table '%s': %w", field, tableName, models.ErrConflict)
	}
	item[field] = value
	return nil
}

func (f *fakeDynamo) DeleteItem(_ context.Context, tableName string, key map[string]types.AttributeValue) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.table(tableName), f.itemKey(tableName, key))
	return nil
}

func (f *fakeDynamo) ScanItems(_ context.Context, tableName string) ([]map[string]types.AttributeValue, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var items []map[string]types.AttributeValue
	for _, item := range f.table(tableName) {
		items = append(items, item)
	}
	return items, nil
}

func avString(v types.AttributeValue) string {
	switch m := v.(type) {
	case *types.AttributeValueMemberS:
		return m.Value
	case *types.AttributeValueMemberN:
		return m.Value
	case *types.AttributeValueMemberBOOL:
		if m.Value {
			return "true"
		}
		return "false"
	}
	return ""
}

// recordedBroadcast captures one fan-out for assertions.
type recordedBroadcast struct {
	Room    string
	Event   string
	Payload interface{}
}

type recordingBroadcaster struct {
	broadcasts []recordedBroadcast
}

func (rb *recordingBroadcaster) BroadcastToRoom(room, event string, payload interface{}) {
	rb.broadcasts = append(rb.broadcasts, recordedBroadcast{Room: room, Event: event, Payload: payload})
}

// fakeNotifier returns a canned result and records calls.
type fakeNotifier struct {
	result models.NotifyResult
	calls  int
	users  []string
}

func (fn *fakeNotifier) Notify(_ context.Context, user string, _ *models.GeoPoint, _ string) models.NotifyResult {
	fn.calls++
	fn.users = append(fn.users, user)
	return fn.result
}

// fakeSMSSender records sends; numbers listed in fail get an error.
type fakeSMSSender struct {
	sent []string
	fail map[string]error
}

func (fs *fakeSMSSender) Send(_ context.Context, to, _ string) (string, string, error) {
	if err := fs.fail[to]; err != nil {
		return "", "", err
	}
	fs.sent = append(fs.sent, to)
	return "SM" + to, "queued", nil
}
