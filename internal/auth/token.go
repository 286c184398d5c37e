package auth

import (
	"errors"
	"strconv"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/travel-desk/itinerary-service/internal/domain"
)

var (
	ErrTokenInvalid   = errors.New("token invalid")
	ErrTokenExpired   = errors.New("token expired")
	ErrWrongTokenType = errors.New("unexpected token type")
)

// TokenManager handles issuing and validating JWT tokens.
type TokenManager struct {
	secret     []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// NewTokenManager builds a new manager.
func NewTokenManager(secret, issuer string, accessTTL, refreshTTL time.Duration) *TokenManager {
	if accessTTL <= 0 {
		accessTTL = 5 * time.Minute
	}
	if refreshTTL <= 0 {
		refreshTTL = 24 * time.Hour
	}
	return &TokenManager{
		secret:     []byte(secret),
		issuer:     issuer,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

// Claims describes JWT payload.
type Claims struct {
	UserID    int64            `json:"user_id"`
	TokenType domain.TokenType `json:"token_type"`
	jwt.RegisteredClaims
}

// GeneratePair issues an access and a refresh token for the identity.
func (tm *TokenManager) GeneratePair(userID int64) (domain.TokenPair, error) {
	access, _, err := tm.generate(userID, domain.TokenTypeAccess, tm.accessTTL)
	if err != nil {
		return domain.TokenPair{}, err
	}
	refresh, _, err := tm.generate(userID, domain.TokenTypeRefresh, tm.refreshTTL)
	if err != nil {
		return domain.TokenPair{}, err
	}
	return domain.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// GenerateAccessToken issues a standalone access token.
func (tm *TokenManager) GenerateAccessToken(userID int64) (string, time.Time, error) {
	return tm.generate(userID, domain.TokenTypeAccess, tm.accessTTL)
}

func (tm *TokenManager) generate(userID int64, tokenType domain.TokenType, ttl time.Duration) (string, time.Time, error) {
	now := tm.now()
	expiresAt := now.Add(ttl)
	claims := &Claims{
		UserID:    userID,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatInt(userID, 10),
			Issuer:    tm.issuer,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(tm.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// ParseToken validates signature and expiry and returns claims.
func (tm *TokenManager) ParseToken(tokenStr string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, ErrTokenInvalid
		}
		return tm.secret, nil
	}, jwt.WithTimeFunc(tm.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.ID == "" {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

// ParseTyped parses a token and requires the given token type.
func (tm *TokenManager) ParseTyped(tokenStr string, want domain.TokenType) (*Claims, error) {
	claims, err := tm.ParseToken(tokenStr)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != want {
		return nil, ErrWrongTokenType
	}
	return claims, nil
}

// RemainingTTL reports how long the claims stay valid.
func (tm *TokenManager) RemainingTTL(claims *Claims) time.Duration {
	if claims == nil || claims.ExpiresAt == nil {
		return 0
	}
	return claims.ExpiresAt.Time.Sub(tm.now())
}
