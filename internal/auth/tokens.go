package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/tajious/parkify/internal/models"
)

// PasswordChangeTTL bounds how long a verified password unlocks a change.
const PasswordChangeTTL = 5 * time.Minute

var ErrInvalidToken = errors.New("invalid token")

// TokenIssuer signs and verifies HS256 tokens for every kind of session subject.
type TokenIssuer struct {
	secret  []byte
	ttl     time.Duration
	issuer  string
	nowFunc func() time.Time
}

func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &TokenIssuer{
		secret:  []byte(secret),
		ttl:     ttl,
		issuer:  "parkify",
		nowFunc: time.Now,
	}
}

func (t *TokenIssuer) TTL() time.Duration {
	return t.ttl
}

// IssueSession returns a session token for the subject.
func (t *TokenIssuer) IssueSession(role models.Role, id uint, email string) (string, error) {
	return t.issue(role, id, email, models.PurposeSession, "", t.ttl)
}

// IssuePasswordChange returns a short-lived token that proves the lessor just re-entered their password.
// Each grant carries a unique ID so it can be spent once.
func (t *TokenIssuer) IssuePasswordChange(id uint, email string) (string, error) {
	return t.issue(models.RoleLessor, id, email, models.PurposePasswordChange, uuid.NewString(), PasswordChangeTTL)
}

func (t *TokenIssuer) issue(role models.Role, id uint, email string, purpose models.Purpose, jti string, ttl time.Duration) (string, error) {
	now := t.nowFunc()
	claims := models.Claims{
		SubjectID: id,
		Email:     email,
		Role:      role,
		Purpose:   purpose,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Issuer:    t.issuer,
			Subject:   strconv.FormatUint(uint64(id), 10),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

// Parse verifies signature, expiry and purpose.
func (t *TokenIssuer) Parse(tokenString string, purpose models.Purpose) (*models.Claims, error) {
	claims := &models.Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(t.issuer),
		jwt.WithTimeFunc(t.nowFunc),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Purpose != purpose {
		return nil, fmt.Errorf("%w: wrong purpose %q", ErrInvalidToken, claims.Purpose)
	}
	return claims, nil
}
