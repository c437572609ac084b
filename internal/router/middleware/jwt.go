package middleware

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type JWTMaker struct {
	secretKey []byte
}

func NewJWTMaker(secretKey string) *JWTMaker {
	return &JWTMaker{secretKey: []byte(secretKey)}
}

func (maker *JWTMaker) CreateToken(subject string, duration time.Duration) (string, *ViewerClaims, error) {
	claims := NewViewerClaims(subject, duration)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(maker.secretKey)
	if err != nil {
		return "", nil, fmt.Errorf("error signing token: %w", err)
	}
	return signed, claims, nil
}

func (maker *JWTMaker) VerifyToken(tokenStr string) (*ViewerClaims, error) {
	claims := &ViewerClaims{}
	_, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		return maker.secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}
	if claims.Scope != ScopeBookRead {
		return nil, errors.New("token does not grant book access")
	}
	return claims, nil
}
