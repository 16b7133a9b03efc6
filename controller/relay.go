package controller

import (
	"net/http"

	gmw "github.com/Laisky/gin-middlewares/v6"
	"github.com/Laisky/zap"
	"github.com/gin-gonic/gin"

	"github.com/Chyrain/LLMGateway/common/helper"
	relaycontroller "github.com/Chyrain/LLMGateway/relay/controller"
)

// Relay serves POST /v1/chat/completions. Dispatch writes the response
// itself on success; only terminal errors come back here.
func Relay(c *gin.Context) {
	relayErr := relaycontroller.Dispatch(c)
	if relayErr == nil {
		return
	}

	gmw.GetLogger(c).Error("relay failed",
		zap.Int("status", relayErr.StatusCode),
		zap.Any("code", relayErr.Error.Code),
		zap.String("message", relayErr.Error.Message))

	requestId := c.GetString(helper.RequestIdKey)
	relayErr.Error.Message = helper.MessageWithRequestId(relayErr.Error.Message, requestId)
	c.JSON(relayErr.StatusCode, gin.H{"error": relayErr.Error})
}

// RelayNotImplemented answers OpenAI-shaped endpoints the gateway does not
// translate (embeddings, images and the rest of the suite).
func RelayNotImplemented(c *gin.Context) {
	c.JSON(http.StatusNotImplemented, gin.H{
		"error": gin.H{
			"message": "api not implemented",
			"type":    "llm_gateway_error",
			"code":    "api_not_implemented",
		},
	})
}
