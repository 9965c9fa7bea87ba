package service

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/looking-sharp/User-Authentication-Microservice/config"
)

var (
	// ErrExpiredToken means the signature checked out but exp has passed
	ErrExpiredToken = errors.New("token expired")
	// ErrMalformedToken covers bad signatures, wrong algorithms, broken
	// structure and missing claims
	ErrMalformedToken = errors.New("invalid token")
)

// Claims is the token payload
type Claims struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	jwt.RegisteredClaims
}

// JTI returns the token id
func (c *Claims) JTI() string {
	return c.ID
}

// ExpiresAtTime returns exp, or the zero time when absent
func (c *Claims) ExpiresAtTime() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}

type JWTService struct {
	secretKey []byte
	ttl       time.Duration
	now       func() time.Time
}

type JWTOption func(*JWTService)

// WithClock overrides the time source used for iat, exp and validation
func WithClock(now func() time.Time) JWTOption {
	return func(s *JWTService) {
		s.now = now
	}
}

func NewJWTService(cfg config.JWTConfig, opts ...JWTOption) *JWTService {
	s := &JWTService{
		secretKey: []byte(cfg.Secret),
		ttl:       cfg.ExpirationTime,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Issue signs a new HS256 token for the user with a fresh jti
func (s *JWTService) Issue(userID uint, email, name string) (string, *Claims, error) {
	issuedAt := s.now().UTC().Truncate(time.Second)

	claims := &Claims{
		UserID: userID,
		Email:  email,
		Name:   name,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        newJTI(),
			Subject:   strconv.FormatUint(uint64(userID), 10),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(s.ttl)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secretKey)
	if err != nil {
		return "", nil, err
	}

	return token, claims, nil
}

// Verify checks signature, algorithm, expiry and required claims. It does not
// consult the revocation list.
func (s *JWTService) Verify(tokenString string) (*Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)

	claims := &Claims{}
	_, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.secretKey, nil
	})
	if err != nil {
		// claims are validated only after the signature, so expiry implies
		// an authentic token
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrMalformedToken
	}

	if claims.ID == "" || claims.UserID == 0 || claims.Email == "" {
		return nil, ErrMalformedToken
	}

	return claims, nil
}

// newJTI is a v4 uuid in hex without dashes
func newJTI() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
