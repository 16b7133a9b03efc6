package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/Chyrain/LLMGateway/common"
	"github.com/Chyrain/LLMGateway/common/ctxkey"
)

// Distributor peeks the requested model name into the context so logging
// and metrics can see it without re-reading the body.
func Distributor() gin.HandlerFunc {
	return func(c *gin.Context) {
		var peek struct {
			Model string `json:"model"`
		}
		if err := common.UnmarshalBodyReusable(c, &peek); err == nil {
			c.Set(ctxkey.RequestModel, peek.Model)
		}
		c.Next()
	}
}
