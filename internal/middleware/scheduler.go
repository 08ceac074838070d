package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
)

const SchedulerTokenHeader = "X-Scheduler-Token"

// CORS answers preflight requests with permissive headers before any auth runs.
func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "authorization, x-client-info, apikey, content-type, "+SchedulerTokenHeader)

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// SchedulerToken admits only the trusted scheduler. An empty token disables the endpoint.
func SchedulerToken(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		got := c.GetHeader(SchedulerTokenHeader)
		if token == "" || subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid scheduler token"})
			return
		}
		c.Next()
	}
}
