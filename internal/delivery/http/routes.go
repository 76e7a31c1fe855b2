package http

import (
	"github.com/gin-gonic/gin"

	"github.com/christinAjohnsom/zillow-scrape-address-url-zpid/config"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler) *gin.Engine {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(gin.Logger())

	router.GET("/health", handler.HealthCheck)

	v1 := router.Group("/api/v1")
	{
		properties := v1.Group("/properties")
		{
			properties.POST("/lookup", handler.LookupProperties)
		}
	}

	return router
}
