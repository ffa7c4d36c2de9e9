package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
)

const (
	// HeaderUserID carries the caller identity for cart and order routes
	HeaderUserID = "uid"

	// UserIDKey is the gin context key holding the resolved user id
	UserIDKey = "user_id"
)

var (
	// ErrMissingToken is returned when no bearer token was presented
	ErrMissingToken = errors.New("authorization header is required")

	// ErrMalformedToken is returned for headers not in "Bearer <token>" form
	ErrMalformedToken = errors.New("invalid authorization header format, expected: Bearer <token>")
)

// Claims represents JWT claims
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// AuthConfig holds authentication configuration
type AuthConfig struct {
	JWTSecret     string
	TokenDuration time.Duration
	Issuer        string
}

// AuthService issues and verifies bearer tokens
type AuthService struct {
	config *AuthConfig
}

// NewAuthService creates a new authentication service
func NewAuthService(config *AuthConfig) *AuthService {
	if config.TokenDuration == 0 {
		config.TokenDuration = 24 * time.Hour
	}
	if config.Issuer == "" {
		config.Issuer = "storefront-functions"
	}
	return &AuthService{config: config}
}

// GenerateToken generates a JWT token for a user
func (a *AuthService) GenerateToken(userID, email string) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(a.config.TokenDuration)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    a.config.Issuer,
			Subject:   userID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(a.config.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// ValidateToken validates a JWT token and returns the claims
func (a *AuthService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(a.config.JWTSecret), nil
	}, jwt.WithIssuer(a.config.Issuer))

	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, fmt.Errorf("invalid token")
}

// FromAuthorizationHeader verifies a "Bearer <token>" header value
func (a *AuthService) FromAuthorizationHeader(header string) (*Claims, error) {
	if header == "" {
		return nil, ErrMissingToken
	}

	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return nil, ErrMalformedToken
	}

	return a.ValidateToken(parts[1])
}

// Authentication validates bearer tokens. With required unset a missing or
// bad token is tolerated and the request continues anonymously.
func Authentication(authService *AuthService, required bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := authService.FromAuthorizationHeader(c.GetHeader("Authorization"))
		if err != nil {
			if !required {
				if !errors.Is(err, ErrMissingToken) {
					logrus.WithError(err).WithField("path", c.Request.URL.Path).Debug("Optional token validation failed")
				}
				c.Next()
				return
			}

			logrus.WithFields(logrus.Fields{
				"error": err.Error(),
				"path":  c.Request.URL.Path,
			}).Warn("Token validation failed")

			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid or expired token"})
			return
		}

		if claims.UserID != "" {
			c.Set(UserIDKey, claims.UserID)
		}

		logrus.WithFields(logrus.Fields{
			"user_id": claims.UserID,
			"path":    c.Request.URL.Path,
		}).Debug("User authenticated successfully")

		c.Next()
	}
}

// RequireUser resolves the caller from the uid header, falling back to the
// verified token subject, and rejects the request with 403 when neither is set
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetHeader(HeaderUserID)
		if userID == "" {
			userID = c.GetString(UserIDKey)
		}

		if userID == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "No User"})
			return
		}

		c.Set(UserIDKey, userID)
		c.Next()
	}
}

// GetUserID returns the user resolved by RequireUser or Authentication
func GetUserID(c *gin.Context) (string, bool) {
	userID := c.GetString(UserIDKey)
	return userID, userID != ""
}
