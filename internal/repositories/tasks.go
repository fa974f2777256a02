package repositories

import (
	"context"
	"time"

	"github.com/maxaizer/hh-vacancy-parser/internal/entities"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type Tasks struct {
	db *gorm.DB
}

func NewTasksRepository(db *gorm.DB) *Tasks {
	return &Tasks{db: db}
}

func (repo *Tasks) Add(ctx context.Context, task *entities.ParseTask) error {
	if err := task.Validate(); err != nil {
		return errors.Wrap(err, "invalid parse task")
	}
	return repo.db.WithContext(ctx).Create(task).Error
}

// GetActiveByID returns nil without an error when the task is missing or inactive.
func (repo *Tasks) GetActiveByID(ctx context.Context, id int) (*entities.ParseTask, error) {

	var tasks []entities.ParseTask
	if err := repo.db.WithContext(ctx).
		Where("id = ? AND is_active = ?", id, true).
		Limit(1).
		Find(&tasks).Error; err != nil {
		return nil, errors.Wrapf(err, "failed to get task %d", id)
	}
	if len(tasks) == 0 {
		return nil, nil
	}
	return &tasks[0], nil
}

func (repo *Tasks) GetActive(ctx context.Context) ([]entities.ParseTask, error) {

	var tasks []entities.ParseTask
	if err := repo.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("id").
		Find(&tasks).Error; err != nil {
		return nil, errors.Wrap(err, "failed to get active tasks")
	}
	return tasks, nil
}

func (repo *Tasks) GetAll(ctx context.Context) ([]entities.ParseTask, error) {

	var tasks []entities.ParseTask
	if err := repo.db.WithContext(ctx).Order("id").Find(&tasks).Error; err != nil {
		return nil, errors.Wrap(err, "failed to get tasks")
	}
	return tasks, nil
}

// VacanciesCount returns the number of vacancies currently owned by each task.
func (repo *Tasks) VacanciesCount(ctx context.Context) (map[int]int64, error) {

	var rows []struct {
		ParseTaskID int
		Count       int64
	}
	if err := repo.db.WithContext(ctx).
		Model(&entities.Vacancy{}).
		Select("parse_task_id, COUNT(*) AS count").
		Group("parse_task_id").
		Scan(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "failed to count vacancies per task")
	}

	counts := make(map[int]int64, len(rows))
	for _, row := range rows {
		counts[row.ParseTaskID] = row.Count
	}
	return counts, nil
}

func (repo *Tasks) UpdateLastRun(ctx context.Context, id int, lastRun time.Time) error {
	return repo.db.WithContext(ctx).
		Model(&entities.ParseTask{}).
		Where("id = ?", id).
		Update("last_run", lastRun).Error
}
