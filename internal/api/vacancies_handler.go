package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/maxaizer/hh-vacancy-parser/internal/entities"
	"github.com/samber/lo"
)

// LatestVacancies handles GET /api/vacancies/latest?limit=N
func (h *Handler) LatestVacancies(c *gin.Context) {
	limit := defaultLatestLimit
	if value := c.Query("limit"); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = min(parsed, maxLatestLimit)
	}

	vacancies, err := h.vacancies.Latest(c.Request.Context(), limit)
	if err != nil {
		h.internalError(c, "Failed to get latest vacancies", err)
		return
	}

	c.JSON(http.StatusOK, lo.Map(vacancies, func(v entities.Vacancy, _ int) vacancyResponse {
		return newVacancyResponse(v)
	}))
}

// GetVacancy handles GET /api/vacancies/:external_id
func (h *Handler) GetVacancy(c *gin.Context) {
	externalID := c.Param("external_id")

	vacancy, err := h.vacancies.GetByExternalID(c.Request.Context(), externalID)
	if err != nil {
		h.internalError(c, "Failed to get vacancy", err)
		return
	}
	if vacancy == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Vacancy not found"})
		return
	}

	c.JSON(http.StatusOK, newVacancyResponse(*vacancy))
}

// VacancyStats handles GET /api/vacancies/stats
func (h *Handler) VacancyStats(c *gin.Context) {
	if cached, ok := h.cache.Get(statsCacheKey); ok {
		c.JSON(http.StatusOK, cached)
		return
	}

	stats, err := h.vacancies.Stats(c.Request.Context())
	if err != nil {
		h.internalError(c, "Failed to get vacancy stats", err)
		return
	}

	h.cache.SetDefault(statsCacheKey, stats)
	c.JSON(http.StatusOK, stats)
}
