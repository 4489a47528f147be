package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pos/backend/internal/infrastructure/config"
)

// Common errors
var (
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("token has expired")
	ErrInvalidClaims    = errors.New("invalid token claims")
	ErrTokenNotYetValid = errors.New("token is not yet valid")
	ErrMissingTenantID  = errors.New("missing tenant_id in claims")
	ErrMissingUserID    = errors.New("missing user_id in claims")
)

// Principal is the authenticated actor a verified token carries: the cashier
// or manager, the tenant they act for, and optionally the store the terminal
// is bound to.
type Principal struct {
	UserID   uuid.UUID
	TenantID uuid.UUID
	StoreID  *uuid.UUID
	Username string
	Roles    []string
}

// Claims represents custom JWT claims. Token issuance is handled by an
// external identity collaborator; this service only verifies.
type Claims struct {
	jwt.RegisteredClaims
	TenantID string   `json:"tenant_id"`
	UserID   string   `json:"user_id"`
	StoreID  string   `json:"store_id,omitempty"`
	Username string   `json:"username"`
	Roles    []string `json:"roles,omitempty"`
}

// JWTService verifies bearer tokens and extracts the principal
type JWTService struct {
	secret     []byte
	expiration time.Duration
	issuer     string
}

// NewJWTService creates a new JWT service
func NewJWTService(cfg config.JWTConfig) *JWTService {
	return &JWTService{
		secret:     []byte(cfg.Secret),
		expiration: cfg.AccessTokenExpiration,
		issuer:     cfg.Issuer,
	}
}

// GenerateToken signs a token for the principal. Used by tests and by
// deployments that run without the external identity service.
func (s *JWTService) GenerateToken(p Principal) (string, error) {
	if p.UserID == uuid.Nil {
		return "", ErrMissingUserID
	}
	if p.TenantID == uuid.Nil {
		return "", ErrMissingTenantID
	}

	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Issuer:    s.issuer,
			Subject:   p.UserID.String(),
			Audience:  jwt.ClaimStrings{s.issuer},
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiration)),
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		TenantID: p.TenantID.String(),
		UserID:   p.UserID.String(),
		Username: p.Username,
		Roles:    p.Roles,
	}
	if p.StoreID != nil {
		claims.StoreID = p.StoreID.String()
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// VerifyToken parses and validates a token, returning the principal it carries
func (s *JWTService) VerifyToken(tokenString string) (*Principal, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpiredToken
		case errors.Is(err, jwt.ErrTokenNotValidYet):
			return nil, ErrTokenNotYetValid
		default:
			return nil, ErrInvalidToken
		}
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidClaims
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil || userID == uuid.Nil {
		return nil, ErrMissingUserID
	}
	tenantID, err := uuid.Parse(claims.TenantID)
	if err != nil || tenantID == uuid.Nil {
		return nil, ErrMissingTenantID
	}

	principal := &Principal{
		UserID:   userID,
		TenantID: tenantID,
		Username: claims.Username,
		Roles:    claims.Roles,
	}
	if claims.StoreID != "" {
		storeID, err := uuid.Parse(claims.StoreID)
		if err != nil {
			return nil, ErrInvalidClaims
		}
		principal.StoreID = &storeID
	}
	return principal, nil
}
