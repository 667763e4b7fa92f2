// Package jwt issues and checks the bearer tokens field devices send to the API.
package jwt

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

const (
	TokenTypeDevice = "device"
	// DefaultDeviceTTL is used when IssueDeviceToken gets a zero ttl
	DefaultDeviceTTL = 90 * 24 * time.Hour
)

var (
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrTokenRevoked = errors.New("token has been revoked")
)

type Service interface {
	// IssueDeviceToken signs a token identifying a field device
	IssueDeviceToken(deviceID string, ttl time.Duration) (token string, expiresAt int64, err error)
	// Verify decodes token and returns the device id it was issued to
	Verify(token string) (deviceID string, err error)
	JWTAuth() *jwtauth.JWTAuth
	RevokeToken(token string)
	IsTokenRevoked(token string) bool
}

type JWTService struct {
	tokenAuth     *jwtauth.JWTAuth
	revokedTokens map[string]int64
	mu            sync.RWMutex
}

func NewJWTService(secretKey string) Service {
	return &JWTService{
		tokenAuth:     jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
		revokedTokens: make(map[string]int64),
	}
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

func (j *JWTService) IssueDeviceToken(deviceID string, ttl time.Duration) (string, int64, error) {
	if deviceID == "" {
		return "", 0, fmt.Errorf("device id is required")
	}
	if ttl <= 0 {
		ttl = DefaultDeviceTTL
	}

	now := time.Now()
	expiresAt := now.Add(ttl).Unix()
	_, token, err := j.tokenAuth.Encode(map[string]interface{}{
		"sub":  deviceID,
		"type": TokenTypeDevice,
		"iat":  now.Unix(),
		"exp":  expiresAt,
	})
	return token, expiresAt, err
}

func (j *JWTService) Verify(tokenString string) (string, error) {
	if j.IsTokenRevoked(tokenString) {
		return "", ErrTokenRevoked
	}

	token, err := jwtauth.VerifyToken(j.tokenAuth, tokenString)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return DeviceID(token)
}

// DeviceID extracts the device id from a verified device token.
func DeviceID(token jwt.Token) (string, error) {
	if token == nil {
		return "", ErrInvalidToken
	}
	tokenType, ok := token.PrivateClaims()["type"].(string)
	if !ok || tokenType != TokenTypeDevice || token.Subject() == "" {
		return "", ErrInvalidToken
	}
	return token.Subject(), nil
}

func (j *JWTService) RevokeToken(token string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.revokedTokens[token] = time.Now().Unix()
}

func (j *JWTService) IsTokenRevoked(token string) bool {
	j.mu.RLock()
	defer j.mu.RUnlock()
	_, revoked := j.revokedTokens[token]
	return revoked
}
