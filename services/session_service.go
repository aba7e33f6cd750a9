package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"raksha_server/models"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
)

const sessionCodeRetries = 6

// SessionService creates and joins ephemeral location-sharing sessions.
// Sessions expire TTL after creation; expired sessions behave as unknown.
type SessionService struct {
	Dynamo DynamoAPI
	TTL    time.Duration

	now    func() time.Time
	codeFn func(length int) string
}

// NewSessionService builds a SessionService with the given TTL.
func NewSessionService(dynamo DynamoAPI, ttl time.Duration) *SessionService {
	return &SessionService{
		Dynamo: dynamo,
		TTL:    ttl,
		now:    time.Now,
		codeFn: generateCode,
	}
}

// CreateSession generates a unique short code and persists a session owned by
// the caller. Code uniqueness is enforced by conditional insert; after a
// bounded number of collisions a longer code makes further collision
// negligible.
func (ss *SessionService) CreateSession(ctx context.Context, owner string) (*models.Session, error) {
	if owner == "" {
		return nil, fmt.Errorf("user is required: %w", models.ErrValidation)
	}

	for attempt := 0; attempt < sessionCodeRetries; attempt++ {
		session, err := ss.insertSession(ctx, ss.codeFn(8), owner)
		if err == nil {
			return session, nil
		}
		if !isConflict(err) {
			return nil, err
		}
	}

	// all short codes collided; fall back to a longer one
	return ss.insertSession(ctx, ss.codeFn(12), owner)
}

func (ss *SessionService) insertSession(ctx context.Context, code, owner string) (*models.Session, error) {
	now := ss.now()
	session := &models.Session{
		Code:      code,
		Users:     []string{owner},
		CreatedAt: now.UTC().Format(time.RFC3339),
		ExpiresAt: now.Add(ss.TTL).Unix(),
	}
	if err := ss.Dynamo.PutItemIfAbsent(ctx, models.SessionsTable, session, "code"); err != nil {
		return nil, err
	}
	return session, nil
}

// GetSession looks up a live session by code. Unknown or expired codes are
// NotFound.
func (ss *SessionService) GetSession(ctx context.Context, code string) (*models.Session, error) {
	if code == "" {
		return nil, fmt.Errorf("session code is required: %w", models.ErrValidation)
	}
	item, err := ss.Dynamo.GetItem(ctx, models.SessionsTable, StringKey("code", code))
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, fmt.Errorf("session %q: %w", code, models.ErrNotFound)
	}
	var session models.Session
	if err := attributevalue.UnmarshalMap(item, &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session %q: %w", code, err)
	}
	if session.ExpiresAt <= ss.now().Unix() {
		return nil, fmt.Errorf("session %q expired: %w", code, models.ErrNotFound)
	}
	return &session, nil
}

// JoinSession adds an identity to a session's membership. Joining twice is a
// no-op.
func (ss *SessionService) JoinSession(ctx context.Context, user, code string) (*models.Session, error) {
	if user == "" {
		return nil, fmt.Errorf("user is required: %w", models.ErrValidation)
	}
	session, err := ss.GetSession(ctx, code)
	if err != nil {
		return nil, err
	}
	if session.HasUser(user) {
		return session, nil
	}
	session.Users = append(session.Users, user)
	if err := ss.Dynamo.PutItem(ctx, models.SessionsTable, session); err != nil {
		return nil, err
	}
	return session, nil
}

func isConflict(err error) bool {
	return errors.Is(err, models.ErrConflict)
}

func generateCode(length int) string {
	buf := make([]byte, (length+1)/2)
	if _, err := rand.Read(buf); err != nil {
		panic(fmt.Sprintf("crypto/rand unavailable: %v", err))
	}
	return hex.EncodeToString(buf)[:length]
}
