package model

import "github.com/golang-jwt/jwt/v5"

// TokenResponse is the stored refresh-token record, one per user.
type TokenResponse struct {
	UserID       string `firestore:"userId" json:"userId"`
	TokenID      string `firestore:"tokenId" json:"tokenId"`
	RefreshToken string `firestore:"refreshToken" json:"refreshToken"` // hashed
	CreatedAt    int64  `firestore:"createdAt" json:"createdAt"`       // creation time in seconds
	Revoked      bool   `firestore:"revoked" json:"revoked"`
	ExpiresIn    int64  `firestore:"expiresIn" json:"expiresIn"` // expiration in seconds
}

type AccessClaims struct {
	UserID  string `json:"userId"`
	Email   string `json:"email"`
	Role    string `json:"role,omitempty"`
	TokenID string `json:"tokenId,omitempty"`
	jwt.RegisteredClaims
}

type AccessRefresh struct {
	UserID  string `json:"userId"`
	TokenID string `json:"tokenId,omitempty"`
	jwt.RegisteredClaims
}

// TokenPair is returned to the client after any successful sign-in.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int64  `json:"expiresIn"`
}
