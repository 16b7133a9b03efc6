package middleware

import (
	"net/http"
	"strings"

	gmw "github.com/Laisky/gin-middlewares/v6"
	"github.com/Laisky/zap"
	"github.com/gin-gonic/gin"

	"github.com/Chyrain/LLMGateway/common/config"
	"github.com/Chyrain/LLMGateway/common/helper"
)

func abortWithMissingCredential(c *gin.Context, message string) {
	gmw.GetLogger(c).Warn("rejected request",
		zap.String("path", c.Request.URL.Path),
		zap.String("reason", message))
	c.JSON(http.StatusUnauthorized, gin.H{
		"error": gin.H{
			"message": helper.MessageWithRequestId(message, c.GetString(helper.RequestIdKey)),
			"type":    "llm_gateway_error",
			"code":    "missing_credential",
		},
	})
	c.Abort()
}

// GatewayAuth requires "Authorization: Bearer <key>". When GATEWAY_API_KEY
// is unset any non-empty token passes, which suits single-operator
// deployments behind a private network.
func GatewayAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.Request.Header.Get("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") {
			abortWithMissingCredential(c, "missing or malformed Authorization header")
			return
		}
		key := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
		if key == "" {
			abortWithMissingCredential(c, "empty bearer token")
			return
		}
		if config.GatewayAPIKey != "" && key != config.GatewayAPIKey {
			abortWithMissingCredential(c, "invalid bearer token")
			return
		}
		c.Next()
	}
}
