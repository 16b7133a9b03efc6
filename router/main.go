package router

import (
	"github.com/gin-gonic/gin"

	"github.com/Chyrain/LLMGateway/controller"
	"github.com/Chyrain/LLMGateway/middleware"
)

// SetRouter wires the OpenAI-compatible relay surface and the management
// API onto the server.
func SetRouter(server *gin.Engine) {
	setRelayRouter(server)
	setApiRouter(server)
}

func setRelayRouter(server *gin.Engine) {
	server.GET("/health", controller.Health)

	v1 := server.Group("/v1")
	v1.Use(middleware.GatewayAuth())
	{
		v1.GET("/models", controller.ListOpenAIModels)

		relay := v1.Group("")
		relay.Use(middleware.RelayPanicRecover(), middleware.Distributor())
		{
			relay.POST("/chat/completions", controller.Relay)
			relay.POST("/completions", controller.RelayNotImplemented)
			relay.POST("/embeddings", controller.RelayNotImplemented)
			relay.POST("/images/generations", controller.RelayNotImplemented)
		}
	}
}

func setApiRouter(server *gin.Engine) {
	api := server.Group("/api")
	api.Use(middleware.CORS(), middleware.GatewayAuth())
	{
		modelRoute := api.Group("/model")
		{
			modelRoute.GET("/", controller.ListModelConfigs)
			modelRoute.GET("/:id", controller.GetModelConfig)
			modelRoute.POST("/", controller.CreateModelConfig)
			modelRoute.PUT("/", controller.UpdateModelConfig)
			modelRoute.DELETE("/:id", controller.DeleteModelConfig)
			modelRoute.POST("/:id/enable", controller.EnableModelConfig)
			modelRoute.POST("/:id/disable", controller.DisableModelConfig)
			modelRoute.POST("/:id/probe", controller.ProbeModelConfig)
		}

		vendorRoute := api.Group("/vendor")
		{
			vendorRoute.GET("/", controller.ListVendors)
			vendorRoute.POST("/models", controller.DiscoverVendorModels)
		}

		quotaRoute := api.Group("/quota")
		{
			quotaRoute.GET("/", controller.ListQuotaStats)
			quotaRoute.POST("/sync", controller.SyncQuota)
		}

		api.GET("/log/", controller.ListLogs)
	}
}
