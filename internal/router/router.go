package router

import (
	"github.com/gin-gonic/gin"

	"github.com/ccotek/cocoti-pool-flow/internal/backend"
	"github.com/ccotek/cocoti-pool-flow/internal/checkout"
	"github.com/ccotek/cocoti-pool-flow/internal/flow"
	"github.com/ccotek/cocoti-pool-flow/internal/handler"
	"github.com/ccotek/cocoti-pool-flow/internal/token"
)

// Deps everything the routes need
type Deps struct {
	Backend          *backend.Client
	Tokens           token.Store
	Bridge           *checkout.Bridge
	Sessions         *flow.Registry
	ContributionFlow *flow.ContributionFlow
	CreationFlow     *flow.CreationFlow
}

func Setup(deps Deps) *gin.Engine {
	r := gin.New()

	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(corsMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": "cocoti-pool-flow",
		})
	})

	v1 := r.Group("/api/v1")
	{
		contributionHandler := handler.NewContributionHandler(deps.ContributionFlow)
		creationHandler := handler.NewCreationHandler(deps.CreationFlow)
		sessionHandler := handler.NewSessionHandler(deps.Sessions, deps.ContributionFlow, deps.CreationFlow)
		checkoutHandler := handler.NewCheckoutHandler(deps.Bridge)
		catalogHandler := handler.NewCatalogHandler(deps.Backend)
		authHandler := handler.NewAuthHandler(deps.Backend, deps.Tokens)

		flows := v1.Group("/flows")
		{
			flows.POST("/contribution", contributionHandler.Start)
			flows.POST("/contribution/:sid/details", contributionHandler.SubmitDetails)
			flows.POST("/contribution/:sid/payment", contributionHandler.SubmitPayment)

			flows.POST("/creation", creationHandler.Start)
			flows.POST("/creation/:sid/info", creationHandler.SubmitInfo)
			flows.POST("/creation/:sid/otp/send", creationHandler.SendOTP)
			flows.POST("/creation/:sid/otp/verify", creationHandler.VerifyOTP)
			flows.POST("/creation/:sid/complete", creationHandler.Complete)
			flows.POST("/creation/:sid/activate", creationHandler.Activate)
			flows.POST("/creation/:sid/media", creationHandler.UploadMedia)

			flows.GET("/:sid", sessionHandler.Get)
			flows.POST("/:sid/retreat", sessionHandler.Retreat)
			flows.DELETE("/:sid", sessionHandler.Cancel)
		}

		v1.POST("/checkout/callback", checkoutHandler.Callback)

		v1.GET("/me", authHandler.Me)
		v1.GET("/countries", catalogHandler.Countries)
		pools := v1.Group("/pools")
		{
			pools.GET("", catalogHandler.ListPools)
			pools.GET("/:id", catalogHandler.GetPool)
			pools.GET("/:id/contributions", catalogHandler.PoolContributions)
		}
	}

	return r
}

// CORS middleware
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Content-Length, Accept-Encoding, X-Client-ID, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
