package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/maxaizer/hh-vacancy-parser/internal/api"
	"github.com/maxaizer/hh-vacancy-parser/internal/events"
	"github.com/maxaizer/hh-vacancy-parser/internal/metrics"
	"github.com/maxaizer/hh-vacancy-parser/internal/services"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long:  "Serves the task and vacancy API; blocks until SIGINT/SIGTERM.",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	metrics.Register()

	if err := a.bus.Subscribe(events.TaskRunFinishedTopic, func(event events.TaskRunFinished) {
		log.Infof("task %v finished: %v", event.Task, event.Stats)
	}); err != nil {
		return err
	}

	if a.cfg.Cleaner.VacancyExpirationDays > 0 {
		cleaner, err := services.NewVacanciesCleaner(a.vacancies, a.bus, a.cfg.Cleaner.VacancyExpirationDays,
			a.cfg.Cleaner.Schedule)
		if err != nil {
			return errors.Wrap(err, "can't create cleaner")
		}
		cleaner.Start()
		defer cleaner.Stop()
	}

	if a.cfg.Server.RunSchedule != "" {
		scheduler, err := services.NewRunScheduler(a.parser, a.cfg.Server.RunSchedule)
		if err != nil {
			return errors.Wrap(err, "can't create scheduler")
		}
		scheduler.Start()
		defer scheduler.Stop()
	}

	handler, err := api.NewHandler(&api.Dependencies{
		Tasks:         a.tasks,
		Vacancies:     a.vacancies,
		Runner:        a.parser,
		Bus:           a.bus,
		StatsCacheTTL: a.cfg.Server.StatsCacheTTL,
	})
	if err != nil {
		return err
	}

	server := api.NewServer(a.cfg.Server.Port, api.SetupRouter(handler))
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Run()
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down services...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Info("Services stopped.")
	return nil
}
