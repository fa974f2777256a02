package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/maxaizer/hh-vacancy-parser/internal/entities"
	"github.com/maxaizer/hh-vacancy-parser/internal/logger"
	"github.com/maxaizer/hh-vacancy-parser/internal/services"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
)

// ListTasks handles GET /api/tasks
func (h *Handler) ListTasks(c *gin.Context) {
	tasks, err := h.tasks.GetAll(c.Request.Context())
	if err != nil {
		h.internalError(c, "Failed to get tasks", err)
		return
	}
	h.respondTasks(c, tasks)
}

// ListActiveTasks handles GET /api/tasks/active
func (h *Handler) ListActiveTasks(c *gin.Context) {
	tasks, err := h.tasks.GetActive(c.Request.Context())
	if err != nil {
		h.internalError(c, "Failed to get active tasks", err)
		return
	}
	h.respondTasks(c, tasks)
}

func (h *Handler) respondTasks(c *gin.Context, tasks []entities.ParseTask) {
	counts, err := h.tasks.VacanciesCount(c.Request.Context())
	if err != nil {
		h.internalError(c, "Failed to count vacancies", err)
		return
	}

	c.JSON(http.StatusOK, lo.Map(tasks, func(task entities.ParseTask, _ int) taskResponse {
		return newTaskResponse(task, counts)
	}))
}

// RunTask handles POST /api/tasks/:id/run
// The run is synchronous, the response carries its stats.
func (h *Handler) RunTask(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id must be a positive integer"})
		return
	}

	run, err := h.runner.RunByID(c.Request.Context(), id)
	if errors.Is(err, services.ErrTaskNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		h.internalError(c, "Failed to run task", err)
		return
	}

	c.JSON(http.StatusOK, newRunResponse(run))
}

// RunActiveTasks handles POST /api/tasks/run
func (h *Handler) RunActiveTasks(c *gin.Context) {
	runs, err := h.runner.RunActive(c.Request.Context(), nil)
	if err != nil {
		h.internalError(c, "Failed to run active tasks", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"results": lo.Map(runs, func(run services.TaskRun, _ int) runResponse { return newRunResponse(run) }),
	})
}

func (h *Handler) internalError(c *gin.Context, message string, err error) {
	log.WithField(logger.ErrorTypeField, logger.ErrorTypeApi).Errorf("%s: %v", message, err)
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": message})
}
