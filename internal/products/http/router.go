package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type HealthChecker interface {
	Health() error
}

type healthResponse struct {
	Status string `json:"status"`
}

// RegisterRoutes mounts the catalog API and the operational endpoints.
func RegisterRoutes(router *gin.Engine, handler *Handler, checker HealthChecker) {
	router.HandleMethodNotAllowed = true

	catalog := router.Group("/products")
	{
		catalog.GET("", handler.ListProducts)
		catalog.POST("", handler.CreateProduct)
		catalog.GET("/:id", handler.GetProduct)
		catalog.PUT("/:id", handler.UpdateProduct)
		catalog.DELETE("/:id", handler.DeleteProduct)
	}

	router.GET("/healthz", healthz(checker))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}

func healthz(checker HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := checker.Health(); err != nil {
			c.JSON(http.StatusServiceUnavailable, healthResponse{Status: "unhealthy"})
			return
		}
		c.JSON(http.StatusOK, healthResponse{Status: "ok"})
	}
}
