package services

import (
	"context"
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/maxaizer/hh-vacancy-parser/internal/events"
	"github.com/maxaizer/hh-vacancy-parser/internal/logger"
	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

type VacancyCleanupRepository interface {
	RemoveOldVacancies(ctx context.Context, expirationTime time.Time) (int64, error)
}

// VacanciesCleaner periodically removes vacancies published more than
// expirationInDays ago and publishes VacanciesRemoved when anything was deleted.
type VacanciesCleaner struct {
	vacancies            VacancyCleanupRepository
	bus                  EventBus.Bus
	cron                 *cron.Cron
	expirationTimeInDays int
	now                  func() time.Time
}

func NewVacanciesCleaner(vacancies VacancyCleanupRepository, bus EventBus.Bus, expirationInDays int,
	schedule string) (*VacanciesCleaner, error) {

	if expirationInDays <= 0 {
		return nil, errors.New("expiration in days must be greater than zero")
	}

	vc := &VacanciesCleaner{
		vacancies:            vacancies,
		bus:                  bus,
		cron:                 cron.New(),
		expirationTimeInDays: expirationInDays,
		now:                  time.Now,
	}

	_, err := vc.cron.AddFunc(schedule, vc.cleanOldVacancies)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid cleaner schedule %q", schedule)
	}

	return vc, nil
}

func (vc *VacanciesCleaner) Start() {
	vc.cron.Start()
	log.Infof("vacancies cleaner started, expiration in days: %d", vc.expirationTimeInDays)
}

func (vc *VacanciesCleaner) Stop() {
	<-vc.cron.Stop().Done()
}

func (vc *VacanciesCleaner) cleanOldVacancies() {
	expirationTime := vc.now().Add(-time.Duration(vc.expirationTimeInDays) * 24 * time.Hour)
	rowsAffected, err := vc.vacancies.RemoveOldVacancies(context.Background(), expirationTime)
	if err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).Errorf("Failed to clean old vacancies: %v", err)
		return
	}

	log.Infof("Old vacancies published before %v were cleaned, affected rows: %v", expirationTime, rowsAffected)
	if rowsAffected > 0 && vc.bus != nil {
		vc.bus.Publish(events.VacanciesRemovedTopic, events.VacanciesRemoved{Count: rowsAffected})
	}
}
