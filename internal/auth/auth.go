package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrCredentialMissing is returned when no token was supplied at all.
	ErrCredentialMissing = errors.New("credential missing")
	// ErrInvalidCredential covers bad signatures, expired tokens and malformed claims.
	ErrInvalidCredential = errors.New("invalid credential")
)

type Claims struct {
	jwt.RegisteredClaims
	Name string `json:"name,omitempty"`
}

// UserID is the subject of the token.
func (c *Claims) UserID() string {
	return c.Subject
}

// Authenticator verifies HS256 credentials against a shared secret.
type Authenticator struct {
	secret []byte
	issuer string
	now    func() time.Time
}

func NewAuthenticator(secret, issuer string) (*Authenticator, error) {
	if secret == "" {
		return nil, errors.New("signing secret cannot be empty")
	}
	return &Authenticator{
		secret: []byte(secret),
		issuer: issuer,
		now:    time.Now,
	}, nil
}

// Validate parses and verifies a token. A "Bearer " prefix is tolerated.
func (a *Authenticator) Validate(tokenString string) (*Claims, error) {
	tokenString = strings.TrimSpace(strings.TrimPrefix(tokenString, "Bearer "))
	if tokenString == "" {
		return nil, ErrCredentialMissing
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(a.now),
	}
	if a.issuer != "" {
		opts = append(opts, jwt.WithIssuer(a.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return a.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCredential, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%w: invalid token claims", ErrInvalidCredential)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: subject is empty", ErrInvalidCredential)
	}

	return claims, nil
}

// Issue signs a token for userID valid for ttl.
func (a *Authenticator) Issue(userID, name string, ttl time.Duration) (string, error) {
	if userID == "" {
		return "", errors.New("user id is required")
	}
	now := a.now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    a.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Name: name,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ExtractToken pulls the credential from the request. Browsers cannot set
// headers on a websocket upgrade, so query parameters are checked first.
func ExtractToken(r *http.Request) string {
	q := r.URL.Query()
	if token := q.Get("token"); token != "" {
		return token
	}
	if token := q.Get("auth"); token != "" {
		return token
	}

	authHeader := r.Header.Get("Authorization")
	if authHeader != "" {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}

	return ""
}
