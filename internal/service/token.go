package service

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/nocodecorp/portal-api/internal/models"
)

// ============================================
// Session tokens
// ============================================
//
// The browser holds a signed token referencing the server-side session
// record. The JWT's own expiry is a loose outer bound; the real timeout is
// the session store's 30-minute idle window.

const tokenLifetime = 24 * time.Hour

type Tokenizer struct {
	secret []byte
}

func NewTokenizer(secret string) *Tokenizer {
	return &Tokenizer{secret: []byte(secret)}
}

// Sign issues a token for a freshly created session.
func (t *Tokenizer) Sign(s *models.Session) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": s.Token,
		"cli": s.ClientID,
		"exp": time.Now().Add(tokenLifetime).Unix(),
		"iat": time.Now().Unix(),
	})
	return token.SignedString(t.secret)
}

// Parse validates a token and returns the session store key and client id
// embedded in it.
func (t *Tokenizer) Parse(tokenString string) (sessionToken, clientID string, err error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return t.secret, nil
	})
	if err != nil || !token.Valid {
		return "", "", ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", "", ErrInvalidToken
	}
	sessionToken, ok = claims["sub"].(string)
	if !ok || sessionToken == "" {
		return "", "", ErrInvalidToken
	}
	clientID, _ = claims["cli"].(string)
	return sessionToken, clientID, nil
}
