package events

import "github.com/maxaizer/hh-vacancy-parser/internal/entities"

var TaskRunFinishedTopic = "TaskRunFinishedEvent"

type TaskRunFinished struct {
	Task  entities.ParseTask
	Stats entities.RunStats
}
