// Package auth issues and verifies access tokens and password hashes.
package auth

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"

	"github.com/iuristatech/legalchat/store"
)

const (
	issuer = "legalchat"
	// CookieName carries the access token for browser clients.
	CookieName = "legalchat.access-token"
	// AccessTokenDuration is how long an issued token stays valid.
	AccessTokenDuration = 7 * 24 * time.Hour
)

// Authenticator resolves request credentials to a stored user.
type Authenticator struct {
	store  *store.Store
	secret string
}

func NewAuthenticator(s *store.Store, secret string) *Authenticator {
	return &Authenticator{store: s, secret: secret}
}

// GenerateAccessToken signs a token for the given user.
func GenerateAccessToken(userID int32, secret string, now time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   strconv.Itoa(int(userID)),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(AccessTokenDuration)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// verifyAccessToken parses and validates a token, returning the user ID.
func verifyAccessToken(tokenString, secret string) (int32, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	}, jwt.WithIssuer(issuer), jwt.WithExpirationRequired())
	if err != nil {
		return 0, errors.Wrap(err, "invalid access token")
	}
	userID, err := strconv.Atoi(claims.Subject)
	if err != nil {
		return 0, errors.Wrap(err, "malformed token subject")
	}
	return int32(userID), nil
}

// AuthenticateToUser resolves the Authorization header (Bearer token) or the
// access-token cookie to a stored user. Returns an error when neither carries
// a valid token or the user no longer exists.
func (a *Authenticator) AuthenticateToUser(ctx context.Context, authHeader, cookieHeader string) (*store.User, error) {
	tokenString := tokenFromHeaders(authHeader, cookieHeader)
	if tokenString == "" {
		return nil, errors.New("no credentials provided")
	}
	userID, err := verifyAccessToken(tokenString, a.secret)
	if err != nil {
		return nil, err
	}
	user, err := a.store.GetUser(ctx, &store.FindUser{ID: &userID})
	if err != nil {
		return nil, errors.Wrap(err, "failed to look up user")
	}
	if user == nil {
		return nil, errors.Errorf("user %d not found", userID)
	}
	return user, nil
}

func tokenFromHeaders(authHeader, cookieHeader string) string {
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	// Fall back to the cookie for browser sessions.
	request := http.Request{Header: http.Header{"Cookie": {cookieHeader}}}
	if cookie, err := request.Cookie(CookieName); err == nil {
		return cookie.Value
	}
	return ""
}
