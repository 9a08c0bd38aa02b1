package utils

import (
	"errors"
	"time"

	"github.com/Pushkar2103/parkezy-new/config"

	"github.com/golang-jwt/jwt"
)

// Roles carried in the "role" claim.
const (
	RoleUser  = "user"
	RoleOwner = "owner"
)

// Identity is the caller established by a bearer token.
type Identity struct {
	UserID string
	Role   string
}

func secretKey() []byte {
	secret := config.AppConfig.JWTSecret
	if secret == "" {
		secret = "PARKEZY"
	}
	return []byte(secret)
}

// GenerateToken creates a signed JWT token with the given subject and role.
// Tokens are normally issued by the identity service; this is for tooling and tests.
func GenerateToken(subject, role string, duration time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"sub":  subject,
		"role": role,
		"iat":  time.Now().Unix(),
		"exp":  time.Now().Add(duration).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secretKey())
}

// ValidateToken parses and validates a token string and returns the token if valid.
func ValidateToken(tokenString string) (*jwt.Token, error) {
	return jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// Ensure that the token's signing method is HMAC.
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secretKey(), nil
	})
}

// ExtractIdentity returns the subject and role of a valid token.
func ExtractIdentity(tokenString string) (*Identity, error) {
	token, err := ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return nil, errors.New("token does not contain a valid 'sub' claim")
	}

	role, _ := claims["role"].(string)
	switch role {
	case RoleUser, RoleOwner:
	case "":
		role = RoleUser
	default:
		return nil, errors.New("token carries an unknown role")
	}

	return &Identity{UserID: sub, Role: role}, nil
}
