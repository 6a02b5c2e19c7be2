package jwt

import (
	"errors"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

const (
	TypeAccess = "access"
	TypeSSE    = "sse"

	sseTokenTTL = 5 * time.Minute
)

var ErrInvalidTokenType = errors.New("invalid token type")

// Claims identifies the caller of the compensation API.
type Claims struct {
	UserID    string
	CompanyID string
	Role      string
}

type Service interface {
	GenerateAccessToken(claims Claims) (token string, expiresAt int64, err error)
	GenerateSSEToken(claims Claims) (token string, expiresIn int, err error)
	ValidateSSEToken(tokenString string) (jwt.Token, error)
	JWTAuth() *jwtauth.JWTAuth
}

type JWTService struct {
	accessTokenExpirationTime time.Duration
	tokenAuth                 *jwtauth.JWTAuth
	now                       func() time.Time
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

// NewJWTService parses the access token lifetime (a Go duration such as "1h").
func NewJWTService(secretKey string, accessTokenExpirationTime string) (Service, error) {
	exp, err := time.ParseDuration(accessTokenExpirationTime)
	if err != nil {
		return nil, err
	}
	return &JWTService{
		accessTokenExpirationTime: exp,
		tokenAuth:                 jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
		now:                       time.Now,
	}, nil
}

func (j *JWTService) GenerateAccessToken(claims Claims) (token string, expiresAt int64, err error) {
	expiresAt = j.now().Add(j.accessTokenExpirationTime).Unix()
	_, tokenString, err := j.tokenAuth.Encode(j.claimsMap(claims, TypeAccess, expiresAt))
	return tokenString, expiresAt, err
}

// GenerateSSEToken issues a short-lived token for EventSource clients, which
// cannot send an Authorization header.
func (j *JWTService) GenerateSSEToken(claims Claims) (token string, expiresIn int, err error) {
	expiresAt := j.now().Add(sseTokenTTL).Unix()
	_, tokenString, err := j.tokenAuth.Encode(j.claimsMap(claims, TypeSSE, expiresAt))
	if err != nil {
		return "", 0, err
	}
	return tokenString, int(sseTokenTTL.Seconds()), nil
}

// ValidateSSEToken verifies signature, expiry and token type.
func (j *JWTService) ValidateSSEToken(tokenString string) (jwt.Token, error) {
	token, err := jwtauth.VerifyToken(j.tokenAuth, tokenString)
	if err != nil {
		return nil, err
	}
	tokenType, ok := token.Get("type")
	if !ok || tokenType != TypeSSE {
		return nil, ErrInvalidTokenType
	}
	return token, nil
}

func (j *JWTService) claimsMap(c Claims, tokenType string, expiresAt int64) map[string]interface{} {
	return map[string]interface{}{
		"user_id":    c.UserID,
		"company_id": c.CompanyID,
		"role":       c.Role,
		"type":       tokenType,
		"exp":        expiresAt,
	}
}
