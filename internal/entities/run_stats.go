package entities

import "fmt"

// RunStats is the outcome of one parse task run. Its json keys are the public
// contract of the CLI and the API.
type RunStats struct {
	TotalFound     int `json:"total_found"`
	Parsed         int `json:"parsed"`
	Added          int `json:"added"`
	Updated        int `json:"updated"`
	Errors         int `json:"errors"`
	PagesProcessed int `json:"pages_processed"`
}

func (s RunStats) String() string {
	return fmt.Sprintf("найдено %d, обработано %d, добавлено %d, обновлено %d, ошибок %d, страниц %d",
		s.TotalFound, s.Parsed, s.Added, s.Updated, s.Errors, s.PagesProcessed)
}
