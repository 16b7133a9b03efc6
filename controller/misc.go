package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Chyrain/LLMGateway/common/helper"
)

// Health is the liveness endpoint.
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   helper.GetTimestamp(),
	})
}
