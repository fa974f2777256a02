package api

import (
	"context"
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/maxaizer/hh-vacancy-parser/internal/entities"
	"github.com/maxaizer/hh-vacancy-parser/internal/events"
	"github.com/maxaizer/hh-vacancy-parser/internal/repositories"
	"github.com/maxaizer/hh-vacancy-parser/internal/services"
	"github.com/patrickmn/go-cache"
)

const (
	statsCacheKey        = "vacancy_stats"
	defaultStatsCacheTTL = 5 * time.Minute
	defaultLatestLimit   = 10
	maxLatestLimit       = 100
)

type TaskStore interface {
	GetAll(ctx context.Context) ([]entities.ParseTask, error)
	GetActive(ctx context.Context) ([]entities.ParseTask, error)
	VacanciesCount(ctx context.Context) (map[int]int64, error)
}

type VacancyStore interface {
	Latest(ctx context.Context, limit int) ([]entities.Vacancy, error)
	GetByExternalID(ctx context.Context, externalID string) (*entities.Vacancy, error)
	Stats(ctx context.Context) (repositories.VacancyStats, error)
}

type TaskRunner interface {
	RunByID(ctx context.Context, taskID int) (services.TaskRun, error)
	RunActive(ctx context.Context, onFinished func(services.TaskRun)) ([]services.TaskRun, error)
}

// Dependencies holds everything the handlers need
type Dependencies struct {
	Tasks         TaskStore
	Vacancies     VacancyStore
	Runner        TaskRunner
	Bus           EventBus.Bus
	StatsCacheTTL time.Duration
}

type Handler struct {
	tasks     TaskStore
	vacancies VacancyStore
	runner    TaskRunner
	cache     *cache.Cache
}

// NewHandler creates the handler. Cached stats are dropped whenever a task run finishes
// or the cleaner removes vacancies.
func NewHandler(deps *Dependencies) (*Handler, error) {
	ttl := deps.StatsCacheTTL
	if ttl <= 0 {
		ttl = defaultStatsCacheTTL
	}

	h := &Handler{
		tasks:     deps.Tasks,
		vacancies: deps.Vacancies,
		runner:    deps.Runner,
		cache:     cache.New(ttl, 2*ttl),
	}

	if deps.Bus != nil {
		if err := deps.Bus.Subscribe(events.TaskRunFinishedTopic, h.onTaskRunFinished); err != nil {
			return nil, err
		}
		if err := deps.Bus.Subscribe(events.VacanciesRemovedTopic, h.onVacanciesRemoved); err != nil {
			return nil, err
		}
	}
	return h, nil
}

func (h *Handler) onTaskRunFinished(_ events.TaskRunFinished) {
	h.cache.Delete(statsCacheKey)
}

func (h *Handler) onVacanciesRemoved(_ events.VacanciesRemoved) {
	h.cache.Delete(statsCacheKey)
}

type taskResponse struct {
	entities.ParseTask
	SourceDisplay  string `json:"source_display"`
	VacanciesCount int64  `json:"vacancies_count"`
}

type vacancyResponse struct {
	entities.Vacancy
	SalaryDisplay string `json:"salary_display"`
}

type runResponse struct {
	Status string            `json:"status"`
	Task   string            `json:"task"`
	Stats  entities.RunStats `json:"stats"`
}

func newTaskResponse(task entities.ParseTask, counts map[int]int64) taskResponse {
	return taskResponse{
		ParseTask:      task,
		SourceDisplay:  task.Source.DisplayName(),
		VacanciesCount: counts[task.ID],
	}
}

func newVacancyResponse(vacancy entities.Vacancy) vacancyResponse {
	return vacancyResponse{Vacancy: vacancy, SalaryDisplay: vacancy.SalaryDisplay()}
}

func newRunResponse(run services.TaskRun) runResponse {
	return runResponse{Status: "success", Task: run.Task.Name, Stats: run.Stats}
}
