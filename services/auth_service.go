package services

import (
	"context"
	"fmt"
	"log"

	"raksha_server/models"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/golang-jwt/jwt/v5"
)

// AuthUser is the identity bound to a persistent connection after a
// successful handshake.
type AuthUser struct {
	User   string `json:"user"`
	Method string `json:"method"`
}

// Auth strategy names, reported on the bound identity.
const (
	AuthMethodToken  = "token"
	AuthMethodLegacy = "legacy"
)

type authStrategy struct {
	name    string
	resolve func(ctx context.Context, credential string) (string, bool)
}

// AuthService resolves an identity for a persistent connection from a bearer
// credential, trying an ordered chain of strategies: a signed expiring token
// first, then the raw credential as a legacy plain identity.
//
// The legacy fallback is a deliberate trust downgrade kept for old clients:
// any known identity string grants access. It is not a security guarantee.
type AuthService struct {
	Dynamo DynamoAPI
	Secret []byte

	strategies []authStrategy
}

// NewAuthService builds an AuthService verifying tokens with the given HMAC
// secret.
func NewAuthService(dynamo DynamoAPI, secret []byte) *AuthService {
	as := &AuthService{Dynamo: dynamo, Secret: secret}
	as.strategies = []authStrategy{
		{name: AuthMethodToken, resolve: as.resolveSignedToken},
		{name: AuthMethodLegacy, resolve: as.resolveLegacyIdentity},
	}
	return as
}

// Authenticate resolves a credential to a known identity, or fails with
// Unauthorized. A missing credential is rejected before any strategy runs.
func (as *AuthService) Authenticate(ctx context.Context, credential string) (*AuthUser, error) {
	if credential == "" {
		return nil, fmt.Errorf("missing token: %w", models.ErrUnauthorized)
	}
	for _, strategy := range as.strategies {
		if user, ok := strategy.resolve(ctx, credential); ok {
			return &AuthUser{User: user, Method: strategy.name}, nil
		}
	}
	return nil, fmt.Errorf("invalid token: %w", models.ErrUnauthorized)
}

// resolveSignedToken verifies the credential as an HMAC-signed expiring token
// and confirms the identity claim exists in the user store.
func (as *AuthService) resolveSignedToken(ctx context.Context, credential string) (string, bool) {
	token, err := jwt.Parse(credential, func(t *jwt.Token) (interface{}, error) {
		return as.Secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !token.Valid {
		return "", false
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", false
	}
	user := firstClaimString(claims, "user", "username", "u")
	if user == "" {
		log.Println("socket auth: token valid but carries no user claim")
		return "", false
	}
	if !as.userExists(ctx, user) {
		log.Printf("socket auth: token user %q not found", user)
		return "", false
	}
	return user, true
}

// resolveLegacyIdentity treats the raw credential as a plain identity string.
func (as *AuthService) resolveLegacyIdentity(ctx context.Context, credential string) (string, bool) {
	if !as.userExists(ctx, credential) {
		return "", false
	}
	return credential, true
}

func (as *AuthService) userExists(ctx context.Context, user string) bool {
	item, err := as.Dynamo.GetItem(ctx, models.UsersTable, StringKey("user", user))
	if err != nil {
		log.Printf("socket auth: user lookup failed for %q: %v", user, err)
		return false
	}
	if item == nil {
		return false
	}
	var record models.User
	if err := attributevalue.UnmarshalMap(item, &record); err != nil {
		return false
	}
	return record.User != ""
}

func firstClaimString(claims jwt.MapClaims, keys ...string) string {
	for _, key := range keys {
		if v, ok := claims[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}
