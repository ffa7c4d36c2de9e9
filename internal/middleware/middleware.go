package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const (
	corsAllowHeaders = "authorization, x-client-info, apikey, content-type, uid"
	corsAllowMethods = "GET, POST, PUT, DELETE, OPTIONS"
)

// CORS attaches the storefront CORS headers and answers preflight requests
// with a plain "ok"
func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", corsAllowMethods)
		c.Header("Access-Control-Allow-Headers", corsAllowHeaders)

		if c.Request.Method == http.MethodOptions {
			c.String(http.StatusOK, "ok")
			c.Abort()
			return
		}

		c.Next()
	}
}

// Recovery converts panics into a 500 response with a message body
func Recovery(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				logger.WithFields(logrus.Fields{
					"method":     c.Request.Method,
					"path":       c.Request.URL.Path,
					"request_id": c.GetString(RequestIDKey),
					"panic":      rec,
				}).Error("Handler panicked")

				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": fmt.Sprint(rec)})
			}
		}()

		c.Next()
	}
}

// NoRoute answers unknown paths
func NoRoute() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Not found"})
	}
}

// NoMethod answers known paths requested with an unsupported verb
func NoMethod() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusForbidden, gin.H{"message": "Invalid method"})
	}
}
