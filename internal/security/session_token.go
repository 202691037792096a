package security

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const sessionTokenPurpose = "session"

var (
	ErrSessionTokenInvalid = errors.New("session token invalid")
	ErrSessionTokenExpired = errors.New("session token expired")
	errSecretTooShort      = errors.New("session secret must be at least 32 bytes")
)

const MinSecretLength = 32

// SessionClaims identifies the caller of a gateway command. The role is a
// hint only; authorization always reloads the user from storage.
type SessionClaims struct {
	UserID  uint   `json:"uid"`
	Role    string `json:"role"`
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenIssuer(secret []byte, ttl time.Duration) (*TokenIssuer, error) {
	if len(secret) < MinSecretLength {
		return nil, errSecretTooShort
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("session ttl must be positive, got %s", ttl)
	}
	return &TokenIssuer{
		secret: append([]byte(nil), secret...),
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

func (issuer *TokenIssuer) TTL() time.Duration {
	return issuer.ttl
}

func (issuer *TokenIssuer) Issue(userID uint, role string) (string, time.Time, error) {
	now := issuer.now()
	expiresAt := now.Add(issuer.ttl)

	claims := SessionClaims{
		UserID:  userID,
		Role:    role,
		Purpose: sessionTokenPurpose,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(issuer.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign session token: %w", err)
	}
	return signed, expiresAt, nil
}

func (issuer *TokenIssuer) Parse(raw string) (SessionClaims, error) {
	claims := SessionClaims{}
	token, err := jwt.ParseWithClaims(raw, &claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return issuer.secret, nil
	}, jwt.WithTimeFunc(issuer.now), jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return SessionClaims{}, ErrSessionTokenExpired
		}
		return SessionClaims{}, ErrSessionTokenInvalid
	}
	if !token.Valid || claims.Purpose != sessionTokenPurpose || claims.UserID == 0 {
		return SessionClaims{}, ErrSessionTokenInvalid
	}
	return claims, nil
}
