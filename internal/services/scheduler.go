package services

import (
	"context"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

type activeTasksRunner interface {
	RunActive(ctx context.Context, onFinished func(TaskRun)) ([]TaskRun, error)
}

// RunScheduler triggers a run of all active tasks on a cron schedule. A tick that
// fires while the previous run is still going is skipped.
type RunScheduler struct {
	runner activeTasksRunner
	cron   *cron.Cron
	ctx    context.Context
	cancel context.CancelFunc
}

func NewRunScheduler(runner activeTasksRunner, schedule string) (*RunScheduler, error) {
	ctx, cancel := context.WithCancel(context.Background())

	s := &RunScheduler{
		runner: runner,
		cron:   cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		ctx:    ctx,
		cancel: cancel,
	}

	if _, err := s.cron.AddFunc(schedule, s.runActive); err != nil {
		cancel()
		return nil, errors.Wrapf(err, "invalid run schedule %q", schedule)
	}
	return s, nil
}

func (s *RunScheduler) Start() {
	s.cron.Start()
	log.Info("parse tasks scheduler started")
}

// Stop cancels the run in progress, if any, and waits for it to return.
func (s *RunScheduler) Stop() {
	s.cancel()
	<-s.cron.Stop().Done()
}

func (s *RunScheduler) runActive() {
	runs, err := s.runner.RunActive(s.ctx, func(run TaskRun) {
		log.Infof("scheduled run of task %q finished: %v", run.Task.Name, run.Stats)
	})
	if err != nil {
		log.Errorf("scheduled run failed: %v", err)
		return
	}
	log.Infof("scheduled run finished, tasks processed: %d", len(runs))
}
