package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/maxaizer/hh-vacancy-parser/internal/clients/hh"
	"github.com/maxaizer/hh-vacancy-parser/internal/entities"
	"github.com/maxaizer/hh-vacancy-parser/internal/events"
	"github.com/maxaizer/hh-vacancy-parser/internal/logger"
	"github.com/maxaizer/hh-vacancy-parser/internal/metrics"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

var (
	ErrTaskNotFound      = errors.New("Task not found or inactive")
	ErrUnsupportedSource = errors.New("unsupported vacancy source")
)

const DefaultPageDelay = 500 * time.Millisecond

type vacancySource interface {
	SearchVacancies(ctx context.Context, parameters hh.SearchParameters) (*hh.SearchPage, error)
	GetVacancy(ctx context.Context, id string) (*hh.RawVacancy, error)
}

type taskRepository interface {
	GetActiveByID(ctx context.Context, id int) (*entities.ParseTask, error)
	GetActive(ctx context.Context) ([]entities.ParseTask, error)
	UpdateLastRun(ctx context.Context, id int, lastRun time.Time) error
}

type vacancyRepository interface {
	Upsert(ctx context.Context, fields entities.NormalizedVacancy, taskID int) (bool, error)
}

type TaskRun struct {
	Task  entities.ParseTask
	Stats entities.RunStats
}

// Parser runs parse tasks: it walks the search pages of a task, enriches previews
// that lack salary or description, and upserts every vacancy it sees.
type Parser struct {
	sources   map[entities.Source]vacancySource
	tasks     taskRepository
	vacancies vacancyRepository
	bus       EventBus.Bus
	pageDelay time.Duration
	now       func() time.Time
}

func NewParser(tasks taskRepository, vacancies vacancyRepository, bus EventBus.Bus) *Parser {
	return &Parser{
		sources:   make(map[entities.Source]vacancySource),
		tasks:     tasks,
		vacancies: vacancies,
		bus:       bus,
		pageDelay: DefaultPageDelay,
		now:       time.Now,
	}
}

func (p *Parser) RegisterSource(source entities.Source, client vacancySource) {
	p.sources[source] = client
}

func (p *Parser) SetPageDelay(delay time.Duration) {
	p.pageDelay = delay
}

// RunByID runs the task with the given id. ErrTaskNotFound is returned, before any
// request is made, when the task is missing or inactive.
func (p *Parser) RunByID(ctx context.Context, taskID int) (TaskRun, error) {
	task, err := p.tasks.GetActiveByID(ctx, taskID)
	if err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).Errorf("failed to load parse task %d: %v", taskID, err)
		return TaskRun{}, err
	}
	if task == nil {
		log.Errorf("parse task %d not found or inactive", taskID)
		return TaskRun{}, ErrTaskNotFound
	}
	return TaskRun{Task: *task, Stats: p.Run(ctx, *task)}, nil
}

// RunActive runs every active task one after another. onFinished, if set, is called
// after each task.
func (p *Parser) RunActive(ctx context.Context, onFinished func(TaskRun)) ([]TaskRun, error) {
	tasks, err := p.tasks.GetActive(ctx)
	if err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).Errorf("failed to load active parse tasks: %v", err)
		return nil, err
	}

	runs := make([]TaskRun, 0, len(tasks))
	for _, task := range tasks {
		if ctx.Err() != nil {
			break
		}
		run := TaskRun{Task: task, Stats: p.Run(ctx, task)}
		runs = append(runs, run)
		if onFinished != nil {
			onFinished(run)
		}
	}
	return runs, nil
}

// Run executes task across all of its pages. It never fails: every problem is
// logged and counted in the returned stats.
func (p *Parser) Run(ctx context.Context, task entities.ParseTask) (result entities.RunStats) {
	var stats runStats
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			stats.Errors++
			log.WithField(logger.ErrorTypeField, logger.ErrorTypeParser).
				Errorf("critical error while parsing task %d: %v", task.ID, r)
		}
		metrics.RunDuration.Observe(time.Since(start).Seconds())
		result = entities.RunStats(stats)
		p.publish(task, result)
	}()

	log.Infof("starting parse task %q (id %d)", task.Name, task.ID)

	source, ok := p.sources[task.Source]
	if !ok {
		stats.Errors++
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeParser).
			Errorf("task %d: %v: %q", task.ID, ErrUnsupportedSource, task.Source)
		return entities.RunStats(stats)
	}

	for page := 0; page < task.Pages; page++ {
		if err := ctx.Err(); err != nil {
			stats.Errors++
			log.Warnf("parse task %d interrupted before page %d: %v", task.ID, page+1, err)
			break
		}

		log.Infof("processing page %d/%d of task %d", page+1, task.Pages, task.ID)
		stats.recordPage(p.processPage(ctx, source, task, page))

		if page < task.Pages-1 {
			if err := sleep(ctx, p.pageDelay); err != nil {
				stats.Errors++
				log.Warnf("parse task %d interrupted after page %d: %v", task.ID, page+1, err)
				break
			}
		}
	}

	// last_run records the attempt, so it is written even when the run was cancelled.
	if err := p.tasks.UpdateLastRun(context.WithoutCancel(ctx), task.ID, p.now()); err != nil {
		stats.Errors++
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).
			Errorf("failed to update last run of task %d: %v", task.ID, err)
	}

	log.Infof("parse task %d finished: %v", task.ID, entities.RunStats(stats))
	return entities.RunStats(stats)
}

func (p *Parser) processPage(ctx context.Context, source vacancySource, task entities.ParseTask, page int) pageResult {

	params := hh.SearchParameters{
		Text:    task.SearchQuery,
		AreaID:  task.Area,
		Page:    page,
		PerPage: task.PerPage,
	}

	searchPage, err := source.SearchVacancies(ctx, params)
	if err != nil {
		log.Warnf("failed to get page %d of task %d: %v", page, task.ID, err)
		return pageResult{err: err}
	}

	result := pageResult{found: searchPage.Found}
	for _, item := range searchPage.Items {
		if ctx.Err() != nil {
			break
		}
		result.items = append(result.items, p.safeProcessItem(ctx, source, item, task))
	}
	return result
}

func (p *Parser) safeProcessItem(ctx context.Context, source vacancySource, item json.RawMessage,
	task entities.ParseTask) (result itemResult) {

	defer func() {
		if r := recover(); r != nil {
			result = itemResult{externalID: result.externalID, outcome: itemFailed, err: fmt.Errorf("panic: %v", r)}
		}
		if result.err != nil {
			log.WithField(logger.ErrorTypeField, logger.ErrorTypeParser).
				Errorf("failed to process vacancy %v: %v", result.externalID, result.err)
		}
	}()

	raw, err := hh.DecodeVacancy(item)
	result.externalID = raw.ID
	if err != nil {
		result.outcome, result.err = itemFailed, err
		return result
	}

	result.outcome, result.err = p.processItem(ctx, source, raw, task)
	return result
}

func (p *Parser) processItem(ctx context.Context, source vacancySource, raw hh.RawVacancy,
	task entities.ParseTask) (itemOutcome, error) {

	if raw.ID == "" {
		log.Warn("vacancy without id, skipping")
		return itemSkipped, nil
	}

	if raw.NeedsDetails() {
		detail, err := source.GetVacancy(ctx, raw.ID)
		if err == nil {
			raw = raw.Merge(*detail)
		}
	}

	fields := hh.Normalize(raw, p.now())
	if fields.ExternalID == "" {
		log.Warnf("failed to normalize vacancy %v, skipping", raw.ID)
		return itemSkipped, nil
	}

	created, err := p.vacancies.Upsert(ctx, fields, task.ID)
	if err != nil {
		return itemFailed, err
	}
	if created {
		return itemAdded, nil
	}
	return itemUpdated, nil
}

func (p *Parser) publish(task entities.ParseTask, stats entities.RunStats) {
	if p.bus != nil {
		p.bus.Publish(events.TaskRunFinishedTopic, events.TaskRunFinished{Task: task, Stats: stats})
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
