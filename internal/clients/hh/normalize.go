package hh

import (
	"time"

	"github.com/maxaizer/hh-vacancy-parser/internal/entities"
	"github.com/samber/lo"
)

const notSpecified = "Не указано"

// hh.ru publishes offsets without a colon, e.g. 2024-05-01T10:00:00+0300.
var publishedAtLayouts = []string{
	"2006-01-02T15:04:05-0700",
	time.RFC3339,
	time.RFC3339Nano,
}

// Normalize maps a raw hh.ru record to the canonical vacancy shape. now is used
// when the publication time is absent or unparseable.
func Normalize(raw RawVacancy, now time.Time) entities.NormalizedVacancy {

	fields := entities.NormalizedVacancy{
		ExternalID:  raw.ID,
		Name:        raw.Name,
		Company:     lo.FromPtrOr(raw.Employer.name(), notSpecified),
		Experience:  raw.Experience.name(),
		Schedule:    raw.Schedule.name(),
		Employment:  raw.Employment.name(),
		Description: raw.Description,
		Area:        lo.FromPtrOr(raw.Area.name(), notSpecified),
		URL:         raw.AlternateURL,
		PublishedAt: parsePublishedAt(raw.PublishedAt, now),
		Skills: lo.Map(raw.KeySkills, func(skill KeySkill, _ int) string {
			return skill.Name
		}),
	}

	if raw.Salary != nil {
		fields.SalaryFrom = raw.Salary.From
		fields.SalaryTo = raw.Salary.To
		fields.SalaryGross = raw.Salary.Gross
		if raw.Salary.Currency != nil && *raw.Salary.Currency != "" {
			currency := entities.Currency(*raw.Salary.Currency)
			fields.SalaryCurrency = &currency
		}
	}

	return fields
}

func parsePublishedAt(value string, now time.Time) time.Time {
	if value == "" {
		return now
	}
	for _, layout := range publishedAtLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return now
}
