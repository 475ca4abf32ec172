package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type Claims struct {
	SiteKeyID int64  `json:"site_key_id"`
	TenantID  int64  `json:"tenant_id"`
	SiteKey   string `json:"site_key"`
	jwt.RegisteredClaims
}

func GenerateToken(siteKeyID, tenantID int64, siteKey, secret string) (string, error) {
	claims := &Claims{
		SiteKeyID: siteKeyID,
		TenantID:  tenantID,
		SiteKey:   siteKey,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func ValidateToken(tokenString, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, errors.New("invalid token")
}
