package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go-patrol/internal/shared/apperror"
	"go-patrol/internal/shared/contextutil"
	"go-patrol/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrTokenNotFound = apperror.New(apperror.CodeUnauthorized, "Token not found", http.StatusUnauthorized)
	ErrInvalidToken  = apperror.New("INVALID_TOKEN", "Invalid token", http.StatusUnauthorized)
	ErrTokenExpired  = apperror.New("TOKEN_EXPIRED", "Token has expired", http.StatusUnauthorized)
)

// AuthMiddleware validates the HMAC access token issued by the identity provider and
// exposes guard_id and role to the handlers.
func AuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, found := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !found {
			tokenString = ""
		}
		if tokenString == "" {
			if cookie, err := c.Cookie("access_token"); err == nil {
				tokenString = cookie
			}
		}
		// browsers cannot set headers on a websocket upgrade
		if tokenString == "" && c.IsWebsocket() {
			tokenString = c.Query("access_token")
		}

		if tokenString == "" {
			response.AbortWithError(c, ErrTokenNotFound)
			return
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method")
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			errObj := ErrInvalidToken
			if errors.Is(err, jwt.ErrTokenExpired) {
				errObj = ErrTokenExpired
			}
			response.AbortWithError(c, errObj)
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			response.Error(c, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid token claims", nil)
			c.Abort()
			return
		}

		guardID, ok := claims["guard_id"].(string)
		if !ok || guardID == "" {
			guardID, _ = claims["sub"].(string)
		}
		if guardID == "" {
			response.Error(c, http.StatusUnauthorized, "INVALID_TOKEN", "Guard ID not found in token", nil)
			c.Abort()
			return
		}

		role, _ := claims["role"].(string)

		c.Set("guard_id", guardID)
		c.Set("role", strings.ToLower(strings.TrimSpace(role)))
		c.Request = c.Request.WithContext(contextutil.WithGuardID(c.Request.Context(), guardID))

		c.Next()
	}
}
