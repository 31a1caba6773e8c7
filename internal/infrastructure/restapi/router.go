package restapi

import (
	"net/http"

	"soroban_portfolio/internal/pkg/logger"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// RouterConfig holds optional router settings.
type RouterConfig struct {
	AllowedOrigins []string
}

// SetupRouter builds the gin engine with all API routes.
func SetupRouter(portfolioHandler *PortfolioHandler, networkHandler *NetworkHandler, zl *zap.Logger, cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	if zl != nil {
		router.Use(logger.GinMiddleware(zl))
	}

	corsCfg := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsCfg.AllowAllOrigins = true
	}
	router.Use(cors.New(corsCfg))

	router.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/portfolio", portfolioHandler.GetCurrentPortfolio)
		v1.POST("/portfolio/refresh", portfolioHandler.RefreshPortfolio)
		v1.GET("/portfolio/:address", portfolioHandler.LoadPortfolio)
		v1.PUT("/portfolio/tokens/:symbol/balance", portfolioHandler.UpdateTokenBalance)

		v1.GET("/tokens/:symbol/metadata", portfolioHandler.TokenMetadata)
		v1.GET("/tokens/:symbol/balance/:address", portfolioHandler.TokenBalance)
		v1.GET("/tokens/:symbol/allowance", portfolioHandler.Allowance)
		v1.POST("/tokens/:symbol/transfer", portfolioHandler.Transfer)
		v1.POST("/tokens/:symbol/approve", portfolioHandler.Approve)

		v1.GET("/prices", portfolioHandler.Prices)

		v1.GET("/accounts/:publicKey", networkHandler.GetAccount)
		v1.GET("/networks", networkHandler.ListNetworks)
		v1.GET("/network/status", networkHandler.Status)
		v1.POST("/network/switch", networkHandler.Switch)
	}

	return router
}
