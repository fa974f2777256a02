package services

import (
	"github.com/maxaizer/hh-vacancy-parser/internal/entities"
	"github.com/maxaizer/hh-vacancy-parser/internal/metrics"
)

type itemOutcome int

const (
	itemSkipped itemOutcome = iota
	itemAdded
	itemUpdated
	itemFailed
)

func (o itemOutcome) String() string {
	switch o {
	case itemAdded:
		return "added"
	case itemUpdated:
		return "updated"
	case itemFailed:
		return "failed"
	default:
		return "skipped"
	}
}

type itemResult struct {
	externalID string
	outcome    itemOutcome
	err        error
}

type pageResult struct {
	found int
	items []itemResult
	err   error
}

type runStats entities.RunStats

// recordPage folds one page into the counters. A failed page counts one error and no
// items, but still counts as processed.
func (s *runStats) recordPage(page pageResult) {
	s.PagesProcessed++

	if page.err != nil {
		s.Errors++
		metrics.PagesCounter.WithLabelValues("failed").Inc()
		return
	}
	metrics.PagesCounter.WithLabelValues("ok").Inc()

	s.TotalFound = page.found
	for _, item := range page.items {
		s.recordItem(item)
	}
}

func (s *runStats) recordItem(item itemResult) {
	s.Parsed++
	metrics.VacanciesCounter.WithLabelValues(item.outcome.String()).Inc()

	switch item.outcome {
	case itemAdded:
		s.Added++
	case itemUpdated:
		s.Updated++
	case itemFailed:
		s.Errors++
	}
}
