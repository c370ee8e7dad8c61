package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ActorClaims identifies the actor performing a request.
type ActorClaims struct {
	ActorID uint `json:"actor_id"`
	jwt.RegisteredClaims
}

type JWTManager struct {
	secretKey     []byte
	tokenDuration time.Duration
}

func NewJWTManager(secret string, expireHour int) *JWTManager {
	return &JWTManager{
		secretKey:     []byte(secret),
		tokenDuration: time.Duration(expireHour) * time.Hour,
	}
}

func (m *JWTManager) GenerateToken(actorID uint) (string, error) {
	now := time.Now()
	claims := ActorClaims{
		ActorID: actorID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprintf("%d", actorID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.tokenDuration)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secretKey)
}

func (m *JWTManager) ValidateToken(tokenString string) (*ActorClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &ActorClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secretKey, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*ActorClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.ActorID == 0 {
		return nil, errors.New("token carries no actor")
	}
	return claims, nil
}
