package auth

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTokenTTL is the session token lifetime.
const DefaultTokenTTL = 60 * time.Minute

// Validation failure kinds. All of them surface as 401 at the HTTP
// boundary; they stay distinct here so the guard can log which one hit.
var (
	ErrTokenExpired   = errors.New("token expired")
	ErrTokenMalformed = errors.New("token malformed")
	ErrTokenInvalid   = errors.New("token invalid")
)

// Claims is the session-token payload: the user's identity plus the
// registered timestamp claims. UserID is duplicated into the standard
// "sub" claim at issuance so generic JWT tooling can read the subject.
type Claims struct {
	UserID int    `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// TokenService signs and validates session tokens with an HMAC-SHA256
// server secret. Tokens are self-contained; there is no revocation list.
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenService(secret string) *TokenService {
	return &TokenService{secret: []byte(secret), ttl: DefaultTokenTTL}
}

// NewTokenServiceWithTTL is intended for tests that need short-lived or
// already-expired tokens.
func NewTokenServiceWithTTL(secret string, ttl time.Duration) *TokenService {
	return &TokenService{secret: []byte(secret), ttl: ttl}
}

// Issue signs a token carrying the user's id, email and role.
func (s *TokenService) Issue(userID int, email, role string) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: userID,
		Email:  email,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.Itoa(userID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Validate parses and verifies a token string and returns its claims.
// Failures map to ErrTokenExpired, ErrTokenMalformed or ErrTokenInvalid.
func (s *TokenService) Validate(tokenString string) (Claims, error) {
	claims := Claims{}
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return s.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}), jwt.WithExpirationRequired())
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return Claims{}, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenMalformed):
			return Claims{}, ErrTokenMalformed
		default:
			return Claims{}, ErrTokenInvalid
		}
	}
	if !token.Valid {
		return Claims{}, ErrTokenInvalid
	}

	// Older tokens may carry only the subject; mirror it back into
	// UserID so callers have a single canonical field.
	if claims.UserID == 0 && claims.Subject != "" {
		if id, convErr := strconv.Atoi(claims.Subject); convErr == nil {
			claims.UserID = id
		}
	}
	if claims.UserID < 1 {
		return Claims{}, ErrTokenInvalid
	}

	return claims, nil
}
