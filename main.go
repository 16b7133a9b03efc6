package main

import (
	"context"
	"strconv"

	gmw "github.com/Laisky/gin-middlewares/v6"
	glog "github.com/Laisky/go-utils/v5/log"
	"github.com/Laisky/zap"
	"github.com/gin-gonic/gin"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Chyrain/LLMGateway/common"
	"github.com/Chyrain/LLMGateway/common/client"
	"github.com/Chyrain/LLMGateway/common/config"
	"github.com/Chyrain/LLMGateway/common/logger"
	"github.com/Chyrain/LLMGateway/middleware"
	"github.com/Chyrain/LLMGateway/model"
	relaycontroller "github.com/Chyrain/LLMGateway/relay/controller"
	"github.com/Chyrain/LLMGateway/router"
)

func main() {
	ctx := context.Background()

	logger.Logger.Info("LLM gateway starting")

	if config.GinMode != gin.DebugMode {
		gin.SetMode(gin.ReleaseMode)
	}

	model.InitDB()
	defer func() {
		if err := model.CloseDB(); err != nil {
			logger.Logger.Error("failed to close database", zap.Error(err))
		}
	}()

	if err := common.InitRedisClient(); err != nil {
		logger.Logger.Fatal("failed to initialize Redis", zap.Error(err))
	}

	client.Init()
	relaycontroller.StartPeriodicProbe(ctx)

	logLevel := glog.LevelInfo
	if config.DebugEnabled {
		logLevel = glog.LevelDebug
	}

	server := gin.New()
	server.RedirectTrailingSlash = false
	server.Use(
		gin.Recovery(),
		gmw.NewLoggerMiddleware(
			gmw.WithLoggerMwColored(),
			gmw.WithLevel(logLevel.String()),
			gmw.WithLogger(logger.Logger.Named("gin")),
		),
	)
	// gzip would break SSE, do not add it here
	server.Use(middleware.RequestId())

	if config.EnablePrometheusMetrics {
		server.GET("/metrics", gin.WrapH(promhttp.Handler()))
		logger.Logger.Info("Prometheus metrics endpoint available at /metrics")
	}

	router.SetRouter(server)

	port := strconv.Itoa(config.GatewayPort)
	logger.Logger.Info("server started", zap.String("address", "http://localhost:"+port))
	if err := server.Run(":" + port); err != nil {
		logger.Logger.Fatal("failed to start HTTP server", zap.Error(err))
	}
}
