package middlewares

import (
	"fmt"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt"
	"it-solutions-hub/internal/api"
	"it-solutions-hub/internal/constants"
	"net/http"
	"strings"
	"time"
)

const (
	bearerPrefix = "Bearer "
	issuer       = "it-solutions-hub"
)

// AdminClaims identify the admin user a token was issued to.
type AdminClaims struct {
	UserId   uint   `json:"user_id"`
	Username string `json:"username"`
	jwt.StandardClaims
}

// AuthHandler rejects requests without a valid bearer token signed with signingKey
// and stores the token claims in the context under constants.ClaimsKey.
func AuthHandler(signingKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := BearerToken(c)
		if !ok {
			if len(c.GetHeader("Authorization")) == 0 {
				c.AbortWithStatusJSON(http.StatusUnauthorized, api.NewErrorResponse("Your request is not authorized."))
			} else {
				c.AbortWithStatusJSON(http.StatusUnauthorized, api.NewErrorResponse("Your request is not authorized. Are you missing the prefix 'Bearer'?"))
			}
			return
		}

		token, err := ValidateToken(tokenString, signingKey)
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, api.NewErrorResponse("Invalid authorization token"))
			return
		}

		c.Set(constants.ClaimsKey, token.Claims.(*AdminClaims))
		c.Next()
	}
}

// BearerToken extracts the token of an "Authorization: Bearer <token>" header.
func BearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	token, ok := strings.CutPrefix(header, bearerPrefix)
	if !ok || len(strings.TrimSpace(token)) == 0 {
		return "", false
	}
	return strings.TrimSpace(token), true
}

// ClaimsFrom returns the claims AuthHandler stored in the context.
func ClaimsFrom(c *gin.Context) (*AdminClaims, bool) {
	v, ok := c.Get(constants.ClaimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*AdminClaims)
	return claims, ok
}

// GenerateToken issues a token for the admin user that expires after ttl.
func GenerateToken(key []byte, ttl time.Duration, userId uint, username string) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(ttl)
	claims := AdminClaims{
		userId,
		username,
		jwt.StandardClaims{
			ExpiresAt: expiresAt.Unix(),
			IssuedAt:  now.Unix(),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString(key)
	return tokenString, expiresAt, err
}

func ValidateToken(tokenString string, key string) (*jwt.Token, error) {
	token, err := jwt.ParseWithClaims(tokenString, &AdminClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(key), nil
	})

	return token, err
}
