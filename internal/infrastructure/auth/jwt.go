package auth

import (
	"errors"
	"time"

	"github.com/farmacia/backend/internal/domain/shared"
	"github.com/farmacia/backend/internal/infrastructure/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/zoobzio/clockz"
)

var (
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("token has expired")
	ErrTokenNotYetValid = errors.New("token is not yet valid")
	ErrInvalidClaims    = errors.New("invalid token claims")
	ErrMissingUserID    = errors.New("missing user_id in claims")
	ErrInvalidRole      = errors.New("invalid role in claims")
)

// Claims are the access token claims. Tokens are minted by the identity
// provider; this service only needs the caller id and role.
type Claims struct {
	jwt.RegisteredClaims
	UserID string      `json:"user_id"`
	Role   shared.Role `json:"role"`
}

// Actor converts the claims into the caller the application layer expects
func (c *Claims) Actor() (shared.Actor, error) {
	id, err := uuid.Parse(c.UserID)
	if err != nil {
		return shared.Actor{}, ErrInvalidClaims
	}
	return shared.Actor{UserID: id, Role: c.Role}, nil
}

// IssuedToken is a signed access token and its expiry
type IssuedToken struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
	TokenType   string    `json:"token_type"`
}

// JWTService signs and verifies HS256 access tokens
type JWTService struct {
	secret     []byte
	expiration time.Duration
	issuer     string
	clock      clockz.Clock
}

// NewJWTService creates a new JWT service
func NewJWTService(cfg config.JWTConfig, clock clockz.Clock) *JWTService {
	if clock == nil {
		clock = clockz.RealClock
	}
	return &JWTService{
		secret:     []byte(cfg.Secret),
		expiration: cfg.AccessTokenExpiration,
		issuer:     cfg.Issuer,
		clock:      clock,
	}
}

// GenerateAccessToken issues a token for userID with role. Used by operator
// tooling and tests; customers get their tokens from the identity provider.
func (s *JWTService) GenerateAccessToken(userID uuid.UUID, role shared.Role) (*IssuedToken, error) {
	if !role.IsValid() {
		return nil, ErrInvalidRole
	}
	now := s.clock.Now()
	expiresAt := now.Add(s.expiration)

	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    s.issuer,
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		UserID: userID.String(),
		Role:   role,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, err
	}
	return &IssuedToken{AccessToken: signed, ExpiresAt: expiresAt, TokenType: "Bearer"}, nil
}

// ValidateAccessToken verifies the signature, time window and required claims
func (s *JWTService) ValidateAccessToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, ErrInvalidToken
			}
			return s.secret, nil
		},
		jwt.WithTimeFunc(s.clock.Now),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpiredToken
		case errors.Is(err, jwt.ErrTokenNotValidYet):
			return nil, ErrTokenNotYetValid
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidClaims
	}
	if claims.UserID == "" {
		return nil, ErrMissingUserID
	}
	if !claims.Role.IsValid() {
		return nil, ErrInvalidRole
	}
	return claims, nil
}

// AccessTokenExpiration returns the configured token lifetime
func (s *JWTService) AccessTokenExpiration() time.Duration {
	return s.expiration
}
