package entities

import (
	"strconv"
	"strings"
	"time"
)

type Currency string

const (
	CurrencyRUR Currency = "RUR"
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
)

func (c Currency) Symbol() string {
	switch c {
	case CurrencyRUR:
		return "₽"
	case CurrencyUSD:
		return "$"
	case CurrencyEUR:
		return "€"
	default:
		return string(c)
	}
}

// NormalizedVacancy is a source record mapped to the canonical vacancy shape.
type NormalizedVacancy struct {
	ExternalID     string
	Name           string
	Company        string
	SalaryFrom     *int
	SalaryTo       *int
	SalaryCurrency *Currency
	SalaryGross    *bool
	Experience     *string
	Schedule       *string
	Employment     *string
	Description    *string
	Skills         []string
	Area           string
	URL            string
	PublishedAt    time.Time
}

type Vacancy struct {
	ID             int       `json:"id"`
	ExternalID     string    `json:"external_id" gorm:"size:50;uniqueIndex;not null"`
	Name           string    `json:"name" gorm:"size:500"`
	Company        string    `json:"company" gorm:"size:500"`
	SalaryFrom     *int      `json:"salary_from"`
	SalaryTo       *int      `json:"salary_to"`
	SalaryCurrency *Currency `json:"salary_currency" gorm:"size:10"`
	SalaryGross    *bool     `json:"salary_gross"`
	Experience     *string   `json:"experience" gorm:"size:100"`
	Schedule       *string   `json:"schedule" gorm:"size:100"`
	Employment     *string   `json:"employment" gorm:"size:100"`
	Description    *string   `json:"description"`
	Skills         []string  `json:"skills" gorm:"serializer:json"`
	Area           string    `json:"area" gorm:"size:200"`
	URL            string    `json:"url" gorm:"size:500"`
	PublishedAt    time.Time `json:"published_at" gorm:"index"`
	CreatedAt      time.Time `json:"created_at"`
	ParseTaskID    int       `json:"parse_task" gorm:"index;not null"`
}

func NewVacancy(fields NormalizedVacancy, taskID int) Vacancy {
	v := Vacancy{ExternalID: fields.ExternalID}
	v.Apply(fields, taskID)
	return v
}

// Apply overwrites every mutable field with fields and reassigns the owning task.
// ExternalID and CreatedAt are left untouched.
func (v *Vacancy) Apply(fields NormalizedVacancy, taskID int) {
	v.Name = fields.Name
	v.Company = fields.Company
	v.SalaryFrom = fields.SalaryFrom
	v.SalaryTo = fields.SalaryTo
	v.SalaryCurrency = fields.SalaryCurrency
	v.SalaryGross = fields.SalaryGross
	v.Experience = fields.Experience
	v.Schedule = fields.Schedule
	v.Employment = fields.Employment
	v.Description = fields.Description
	v.Skills = fields.Skills
	if v.Skills == nil {
		v.Skills = []string{}
	}
	v.Area = fields.Area
	v.URL = fields.URL
	v.PublishedAt = fields.PublishedAt
	v.ParseTaskID = taskID
}

func (v Vacancy) HasSalary() bool {
	return v.SalaryFrom != nil || v.SalaryTo != nil
}

// SalaryDisplay renders the salary fork, e.g. "от 100 000 до 150 000 ₽ (на руки)".
func (v Vacancy) SalaryDisplay() string {
	if !v.HasSalary() {
		return ""
	}

	var parts []string
	if v.SalaryFrom != nil && *v.SalaryFrom != 0 {
		parts = append(parts, "от "+groupThousands(*v.SalaryFrom))
	}
	if v.SalaryTo != nil && *v.SalaryTo != 0 {
		parts = append(parts, "до "+groupThousands(*v.SalaryTo))
	}
	if len(parts) == 0 {
		return ""
	}

	result := strings.Join(parts, " ")
	if v.SalaryCurrency != nil && *v.SalaryCurrency != "" {
		result += " " + v.SalaryCurrency.Symbol()
		if v.SalaryGross != nil {
			if *v.SalaryGross {
				result += " (до вычета налогов)"
			} else {
				result += " (на руки)"
			}
		}
	}
	return result
}

func groupThousands(n int) string {
	s := strconv.Itoa(n)
	sign := ""
	if n < 0 {
		sign, s = "-", s[1:]
	}

	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return sign + b.String()
}
