package repositories

import (
	"context"
	"time"

	"github.com/maxaizer/hh-vacancy-parser/internal/entities"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type VacancyStats struct {
	Total      int64 `json:"total"`
	WithSalary int64 `json:"with_salary"`
	Companies  int64 `json:"companies"`
	Areas      int64 `json:"areas"`
}

type Vacancies struct {
	db *gorm.DB
}

func NewVacanciesRepository(db *gorm.DB) *Vacancies {
	return &Vacancies{db: db}
}

// Upsert creates the vacancy or overwrites every field of the stored one except its
// external id, assigning it to taskID either way. It runs in a single transaction.
func (v *Vacancies) Upsert(ctx context.Context, fields entities.NormalizedVacancy, taskID int) (created bool, err error) {

	err = v.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {

		var existing []entities.Vacancy
		if err := tx.Where("external_id = ?", fields.ExternalID).Limit(1).Find(&existing).Error; err != nil {
			return err
		}

		if len(existing) == 0 {
			vacancy := entities.NewVacancy(fields, taskID)
			created = true
			return tx.Create(&vacancy).Error
		}

		vacancy := existing[0]
		vacancy.Apply(fields, taskID)
		return tx.Save(&vacancy).Error
	})

	if err != nil {
		return false, errors.Wrapf(err, "failed to upsert vacancy %s", fields.ExternalID)
	}
	return created, nil
}

func (v *Vacancies) GetByExternalID(ctx context.Context, externalID string) (*entities.Vacancy, error) {

	var vacancies []entities.Vacancy
	if err := v.db.WithContext(ctx).Where("external_id = ?", externalID).Limit(1).Find(&vacancies).Error; err != nil {
		return nil, errors.Wrapf(err, "failed to get vacancy %s", externalID)
	}
	if len(vacancies) == 0 {
		return nil, nil
	}
	return &vacancies[0], nil
}

func (v *Vacancies) Latest(ctx context.Context, limit int) ([]entities.Vacancy, error) {

	var vacancies []entities.Vacancy
	if err := v.db.WithContext(ctx).Order("published_at DESC").Limit(limit).Find(&vacancies).Error; err != nil {
		return nil, errors.Wrap(err, "failed to get latest vacancies")
	}
	return vacancies, nil
}

func (v *Vacancies) Stats(ctx context.Context) (VacancyStats, error) {

	var stats VacancyStats
	db := v.db.WithContext(ctx)

	if err := db.Model(&entities.Vacancy{}).Count(&stats.Total).Error; err != nil {
		return stats, errors.Wrap(err, "failed to count vacancies")
	}
	if err := db.Model(&entities.Vacancy{}).
		Where("salary_from IS NOT NULL OR salary_to IS NOT NULL").
		Count(&stats.WithSalary).Error; err != nil {
		return stats, errors.Wrap(err, "failed to count vacancies with salary")
	}
	if err := db.Model(&entities.Vacancy{}).Distinct("company").Count(&stats.Companies).Error; err != nil {
		return stats, errors.Wrap(err, "failed to count companies")
	}
	if err := db.Model(&entities.Vacancy{}).Distinct("area").Count(&stats.Areas).Error; err != nil {
		return stats, errors.Wrap(err, "failed to count areas")
	}

	return stats, nil
}

func (v *Vacancies) RemoveOldVacancies(ctx context.Context, expirationTime time.Time) (int64, error) {
	res := v.db.WithContext(ctx).Delete(&entities.Vacancy{}, "published_at < ?", expirationTime)
	return res.RowsAffected, res.Error
}
