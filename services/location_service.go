package services

import (
	"context"
	"fmt"
	"log"
	"math"
	"time"

	"raksha_server/models"
	"raksha_server/utils"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/google/uuid"
)

// latestSampleWindow bounds how many recent samples per identity are examined
// when resolving the newest one for a session scope.
const latestSampleWindow = 50

// LocationService persists coordinate samples and answers "where is everyone
// in my session" queries from the durable history, independent of the live
// feed.
type LocationService struct {
	Dynamo   DynamoAPI
	Sessions *SessionService
}

// ValidatePoint rejects non-finite coordinates.
func ValidatePoint(latitude, longitude float64) error {
	if math.IsNaN(latitude) || math.IsInf(latitude, 0) ||
		math.IsNaN(longitude) || math.IsInf(longitude, 0) {
		return fmt.Errorf("latitude and longitude must be finite: %w", models.ErrValidation)
	}
	return nil
}

// SaveLocation appends one coordinate sample and returns the persisted record
// id.
func (ls *LocationService) SaveLocation(ctx context.Context, user string, latitude, longitude float64, timestamp, session string) (string, error) {
	if user == "" {
		return "", fmt.Errorf("user is required: %w", models.ErrValidation)
	}
	if err := ValidatePoint(latitude, longitude); err != nil {
		return "", err
	}
	if timestamp == "" {
		timestamp = time.Now().UTC().Format(time.RFC3339)
	}
	coord := models.Coordinate{
		ID:        uuid.NewString(),
		User:      user,
		Latitude:  latitude,
		Longitude: longitude,
		Timestamp: timestamp,
		Session:   session,
	}
	if err := ls.Dynamo.PutItem(ctx, models.CoordinatesTable, coord); err != nil {
		return "", err
	}
	return coord.ID, nil
}

// LatestCoordinate returns the newest sample for a user, preferring samples
// scoped to the given session and falling back to the newest of any scope.
// Returns (nil, nil) when the user has no samples at all.
func (ls *LocationService) LatestCoordinate(ctx context.Context, user, session string) (*models.Coordinate, error) {
	items, err := ls.Dynamo.QueryItemsDesc(ctx, models.CoordinatesTable, "user", user, latestSampleWindow)
	if err != nil {
		return nil, err
	}
	var newestAny *models.Coordinate
	for _, item := range items {
		var coord models.Coordinate
		if err := attributevalue.UnmarshalMap(item, &coord); err != nil {
			continue
		}
		if newestAny == nil {
			c := coord
			newestAny = &c
		}
		if session != "" && coord.Session == session {
			c := coord
			return &c, nil
		}
	}
	return newestAny, nil
}

// FindCompanions resolves the last-known location of every other member of a
// session, with distance from the requester when a reference point was
// supplied. A lookup failure for one companion degrades that companion's row
// to nulls without affecting the rest.
func (ls *LocationService) FindCompanions(ctx context.Context, requester, code string, point *models.GeoPoint) ([]models.CompanionStatus, error) {
	if requester == "" {
		return nil, fmt.Errorf("user is required: %w", models.ErrValidation)
	}
	session, err := ls.Sessions.GetSession(ctx, code)
	if err != nil {
		return nil, err
	}

	results := []models.CompanionStatus{}
	for _, companion := range session.Users {
		if companion == requester {
			continue
		}
		results = append(results, ls.companionStatus(ctx, companion, code, point))
	}
	return results, nil
}

func (ls *LocationService) companionStatus(ctx context.Context, companion, code string, point *models.GeoPoint) models.CompanionStatus {
	status := models.CompanionStatus{User: companion}

	latest, err := ls.LatestCoordinate(ctx, companion, code)
	if err != nil {
		log.Printf("findCompanion: lookup failed for %s: %v", companion, err)
		return status
	}
	if latest == nil {
		return status
	}

	lat, lng := latest.Latitude, latest.Longitude
	lastSeen := latest.Timestamp
	if lastSeen == "" {
		lastSeen = time.Now().UTC().Format(time.RFC3339)
	}
	status.Latitude = &lat
	status.Longitude = &lng
	status.LastSeen = &lastSeen
	status.HasLocation = true

	if point != nil {
		if ValidatePoint(point.Latitude, point.Longitude) == nil {
			d := utils.Haversine(point.Latitude, point.Longitude, lat, lng)
			if !math.IsNaN(d) {
				status.DistanceMeters = &d
			}
		}
	}
	return status
}
