package services

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"storefront/config"
	"storefront/model"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type TokenService struct {
	secret        []byte
	refreshSecret []byte
	issuer        string
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
}

func NewTokenService(cfg config.JWTConfig) *TokenService {
	return &TokenService{
		secret:        []byte(cfg.Secret),
		refreshSecret: []byte(cfg.RefreshSecret),
		issuer:        cfg.Issuer,
		accessTTL:     cfg.AccessTTL,
		refreshTTL:    cfg.RefreshTTL,
		now:           time.Now,
	}
}

func (s *TokenService) RefreshTTL() time.Duration {
	return s.refreshTTL
}

func (s *TokenService) CreateAccessToken(session model.Session) (string, error) {
	now := s.now()
	claims := &model.AccessClaims{
		UserID:  session.UID,
		Email:   session.Email,
		Role:    session.Role,
		TokenID: session.TokenID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   session.UID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func (s *TokenService) CreateRefreshToken(userID, tokenID string) (string, error) {
	now := s.now()
	claims := &model.AccessRefresh{
		UserID:  userID,
		TokenID: tokenID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.refreshTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.refreshSecret)
}

func (s *TokenService) ParseAccessToken(tokenString string) (*model.AccessClaims, error) {
	claims := &model.AccessClaims{}
	if err := s.parse(tokenString, claims, s.secret); err != nil {
		return nil, err
	}
	if claims.UserID == "" {
		return nil, errors.New("invalid userId in token claims")
	}
	return claims, nil
}

func (s *TokenService) ParseRefreshToken(tokenString string) (*model.AccessRefresh, error) {
	claims := &model.AccessRefresh{}
	if err := s.parse(tokenString, claims, s.refreshSecret); err != nil {
		return nil, err
	}
	if claims.UserID == "" {
		return nil, errors.New("invalid token claims: userId not found")
	}
	return claims, nil
}

func (s *TokenService) parse(tokenString string, claims jwt.Claims, key []byte) error {
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return key, nil
	},
		jwt.WithIssuer(s.issuer),
		jwt.WithTimeFunc(s.now),
	)
	return err
}

// NewTokenID identifies one sign-in; logout forgets it and every token carrying it stops working.
func NewTokenID() string {
	return uuid.New().String()
}

// HashRefreshToken pre-hashes with SHA-256 so the input stays under bcrypt's 72-byte limit.
func HashRefreshToken(token string) (string, error) {
	hash := sha256.Sum256([]byte(token))
	hashedToken, err := bcrypt.GenerateFromPassword(hash[:], bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashedToken), nil
}

func CompareRefreshToken(hashed, token string) bool {
	hash := sha256.Sum256([]byte(token))
	return bcrypt.CompareHashAndPassword([]byte(hashed), hash[:]) == nil
}
