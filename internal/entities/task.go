package entities

import (
	"time"

	"github.com/go-playground/validator/v10"
)

type Source string

const (
	SourceHH   Source = "hh"
	SourceHabr Source = "habr"
)

func (s Source) DisplayName() string {
	switch s {
	case SourceHH:
		return "HeadHunter"
	case SourceHabr:
		return "Habr Career"
	default:
		return string(s)
	}
}

type ParseTask struct {
	ID          int        `json:"id"`
	Name        string     `json:"name" gorm:"size:255;not null" validate:"required,max=255"`
	Source      Source     `json:"source" gorm:"size:50;default:hh" validate:"oneof=hh habr"`
	SearchQuery string     `json:"search_query" gorm:"size:255;default:python"`
	Area        string     `json:"area" gorm:"size:100;default:1"`
	PerPage     int        `json:"per_page" gorm:"default:50" validate:"gt=0,lte=100"`
	Pages       int        `json:"pages" gorm:"default:1" validate:"gte=1"`
	IsActive    bool       `json:"is_active" gorm:"index"`
	CreatedAt   time.Time  `json:"created_at"`
	LastRun     *time.Time `json:"last_run"`
	Vacancies   []Vacancy  `json:"-" gorm:"constraint:OnDelete:CASCADE"`
}

// NewParseTask returns a task filled with the defaults an operator gets when only a name is given.
func NewParseTask(name string) ParseTask {
	return ParseTask{
		Name:        name,
		Source:      SourceHH,
		SearchQuery: "python",
		Area:        "1",
		PerPage:     50,
		Pages:       1,
		IsActive:    true,
	}
}

func (t ParseTask) Validate() error {
	return validator.New().Struct(t)
}

func (t ParseTask) String() string {
	return t.Name + " (" + t.Source.DisplayName() + ")"
}
