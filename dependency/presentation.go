package dependency

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kujilab/kuji/infrastructure/cache"
	"github.com/kujilab/kuji/infrastructure/config"
	"github.com/kujilab/kuji/infrastructure/metrics"
	"github.com/kujilab/kuji/presentation/controllers/room"
	wsCtrl "github.com/kujilab/kuji/presentation/controllers/websocket"
	"github.com/kujilab/kuji/presentation/middlewares"
	"github.com/kujilab/kuji/presentation/routes"
	"go.uber.org/zap"
)

func (c *Container) initControllers() {
	c.RoomController = room.NewRoomController(c.RoomUC)
	c.WebsocketController = wsCtrl.NewWebSocketController(c.RoomUC, c.WSRegistry, c.WSCore, c.Logger)

	c.Logger.Info("Controllers initialized successfully")
}

func (c *Container) SetupRouter() *gin.Engine {
	switch c.Config.Server.RunMode {
	case "release", "production":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())

	router.Use(middlewares.GinLogger(c.Logger))
	router.Use(middlewares.CorsMiddleware(c.Config))

	router.GET("/health", c.healthCheckHandler)

	metrics.GetHandler(router)

	c.registerAPIRoutes(router)

	c.Logger.Info("Router configured successfully")

	return router
}

func (c *Container) registerAPIRoutes(router *gin.Engine) {
	v1 := router.Group("/api/v1")
	{
		// The limiter needs redis; skip it when the volatile store is
		// the active backend.
		if c.Backend == config.BackendRedis {
			v1.Use(middlewares.RateLimiterMiddleware(cache.GetRedis(), c.Logger, middlewares.DefaultRateLimiterConfig()))
		}

		routes.RoomRoutes(v1, c.RoomController)
		routes.WebsocketRoutes(v1, c.WebsocketController)
	}
}

func (c *Container) healthCheckHandler(ctx *gin.Context) {
	ctx.JSON(200, gin.H{
		"status":              "healthy",
		"backend":             c.Backend,
		"pollIntervalSeconds": int(c.Config.Room.PollInterval.Seconds()),
		"time":                time.Now().Format(time.RFC3339),
	})
}

func (c *Container) Shutdown() error {
	c.Logger.Info("Shutting down dependencies...")

	if c.SweepJob != nil {
		c.SweepJob.Stop()
	}

	if c.cancel != nil {
		c.cancel()
	}

	c.WSCore.Shutdown()

	if err := c.RoomStore.Close(); err != nil {
		c.Logger.Error("failed to close room store", zap.Error(err))
	}

	if c.Backend == config.BackendRedis {
		cache.CloseRedis()
	}

	if err := c.Logger.Log.Sync(); err != nil {
		c.Logger.Error("failed to sync logger", zap.Error(err))
	}

	c.Logger.Info("Dependencies shut down successfully")

	return nil
}
