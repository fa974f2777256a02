package events

var VacanciesRemovedTopic = "VacanciesRemovedEvent"

type VacanciesRemoved struct {
	Count int64
}
