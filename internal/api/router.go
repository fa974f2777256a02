package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRouter configures the gin router with all routes
func SetupRouter(h *Handler) *gin.Engine {
	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(LoggerMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "hh-vacancy-parser",
		})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		tasks := api.Group("/tasks")
		{
			tasks.GET("", h.ListTasks)
			tasks.GET("/active", h.ListActiveTasks)
			tasks.POST("/run", h.RunActiveTasks)
			tasks.POST("/:id/run", h.RunTask)
		}

		vacancies := api.Group("/vacancies")
		{
			vacancies.GET("/latest", h.LatestVacancies)
			vacancies.GET("/stats", h.VacancyStats)
			vacancies.GET("/:external_id", h.GetVacancy)
		}
	}

	return r
}
