package api

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	operatorHeader = "X-Operator-ID"
	operatorKey    = "operator"
)

// requireOperator checks the admin bearer token and records who is acting.
func (s *Server) requireOperator() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !ok || s.adminToken == "" || subtle.ConstantTimeCompare([]byte(token), []byte(s.adminToken)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		operator := strings.TrimSpace(c.GetHeader(operatorHeader))
		if operator == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "operator id required"})
			return
		}

		c.Set(operatorKey, operator)
		c.Next()
	}
}

func operatorFrom(c *gin.Context) string {
	return c.GetString(operatorKey)
}
