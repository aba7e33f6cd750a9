package services

import (
	"context"
	"testing"
	"time"

	"raksha_server/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateSessionGeneratesUniqueCodes(t *testing.T) {
	ss := NewSessionService(newFakeDynamo(), 24*time.Hour)

	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		session, err := ss.CreateSession(context.Background(), "111")
		require.NoError(t, err)
		require.Len(t, session.Code, 8)
		require.False(t, seen[session.Code], "duplicate code %s", session.Code)
		seen[session.Code] = true
	}
}

func TestCreateSessionRequiresOwner(t *testing.T) {
	ss := NewSessionService(newFakeDynamo(), 24*time.Hour)

	_, err := ss.CreateSession(context.Background(), "")
	require.ErrorIs(t, err, models.ErrValidation)
}

func TestCreateSessionRetriesOnCollision(t *testing.T) {
	fake := newFakeDynamo()
	ss := NewSessionService(fake, 24*time.Hour)

	codes := []string{"aaaaaaaa", "bbbbbbbb"}
	ss.codeFn = func(length int) string {
		code := codes[0]
		codes = codes[1:]
		return code
	}

	_, err := ss.insertSession(context.Background(), "aaaaaaaa", "999")
	require.NoError(t, err)
	codes = []string{"aaaaaaaa", "bbbbbbbb"}

	session, err := ss.CreateSession(context.Background(), "111")
	require.NoError(t, err)
	assert.Equal(t, "bbbbbbbb", session.Code)
}

func TestCreateSessionFallsBackToLongCode(t *testing.T) {
	fake := newFakeDynamo()
	ss := NewSessionService(fake, 24*time.Hour)
	ss.codeFn = func(length int) string {
		if length == 12 {
			return "dddddddddddd"
		}
		return "cccccccc"
	}

	_, err := ss.insertSession(context.Background(), "cccccccc", "999")
	require.NoError(t, err)

	session, err := ss.CreateSession(context.Background(), "111")
	require.NoError(t, err)
	assert.Equal(t, "dddddddddddd", session.Code)
}

func TestJoinSessionIdempotent(t *testing.T) {
	ss := NewSessionService(newFakeDynamo(), 24*time.Hour)

	session, err := ss.CreateSession(context.Background(), "111")
	require.NoError(t, err)

	joined, err := ss.JoinSession(context.Background(), "222", session.Code)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"111", "222"}, joined.Users)

	joined, err = ss.JoinSession(context.Background(), "222", session.Code)
	require.NoError(t, err)
	assert.Len(t, joined.Users, 2)
}

func TestJoinUnknownSession(t *testing.T) {
	ss := NewSessionService(newFakeDynamo(), 24*time.Hour)

	_, err := ss.JoinSession(context.Background(), "222", "nosuch")
	require.ErrorIs(t, err, models.ErrNotFound)
}

func TestSessionExpiresAfterTTL(t *testing.T) {
	ss := NewSessionService(newFakeDynamo(), 24*time.Hour)

	session, err := ss.CreateSession(context.Background(), "111")
	require.NoError(t, err)

	_, err = ss.GetSession(context.Background(), session.Code)
	require.NoError(t, err)

	ss.now = func() time.Time { return time.Now().Add(25 * time.Hour) }

	_, err = ss.GetSession(context.Background(), session.Code)
	require.ErrorIs(t, err, models.ErrNotFound)

	_, err = ss.JoinSession(context.Background(), "222", session.Code)
	require.ErrorIs(t, err, models.ErrNotFound)
}

func TestScenarioCreateAndJoin(t *testing.T) {
	ss := NewSessionService(newFakeDynamo(), 24*time.Hour)

	created, err := ss.CreateSession(context.Background(), "A")
	require.NoError(t, err)

	joined, err := ss.JoinSession(context.Background(), "B", created.Code)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"A", "B"}, joined.Users)
}
