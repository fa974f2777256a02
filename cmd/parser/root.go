package main

import (
	"context"

	"github.com/asaskevich/EventBus"
	"github.com/maxaizer/hh-vacancy-parser/internal/clients/hh"
	"github.com/maxaizer/hh-vacancy-parser/internal/config"
	"github.com/maxaizer/hh-vacancy-parser/internal/entities"
	"github.com/maxaizer/hh-vacancy-parser/internal/logger"
	"github.com/maxaizer/hh-vacancy-parser/internal/repositories"
	"github.com/maxaizer/hh-vacancy-parser/internal/services"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:          "parser",
	Short:        "hh.ru vacancy parser",
	Long:         "Fetches vacancies for the configured parse tasks from hh.ru and keeps them in a local database.",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "",
		"path to config file (default: CONFIG_PATH env var or ./configs/config.yaml)")
}

// loadConfig parses the --config file when given, otherwise CONFIG_PATH or
// ./configs/config.yaml via config.Get.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Get(), nil
	}
	return config.Load(path)
}

type app struct {
	cfg       *config.Config
	db        *repositories.DbContext
	tasks     *repositories.Tasks
	vacancies *repositories.Vacancies
	hhClient  *hh.Client
	bus       EventBus.Bus
	parser    *services.Parser
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return nil, err
	}

	if err := logger.Setup(ctx, cfg.Logger); err != nil {
		return nil, errors.Wrap(err, "can't set up logger")
	}

	dbContext, err := repositories.NewDbContext(cfg.DB.ConnectionString, cfg.DB.LogQueries)
	if err != nil {
		logger.Cleanup()
		return nil, errors.Wrap(err, "can't create db context")
	}

	if err := dbContext.Migrate(); err != nil {
		_ = dbContext.Close()
		logger.Cleanup()
		return nil, errors.Wrap(err, "can't migrate db context")
	}

	hhClient := hh.NewClient()
	hhClient.SetBaseURL(cfg.HH.BaseURL)
	hhClient.SetUserAgent(cfg.HH.UserAgent)
	hhClient.SetTimeout(cfg.HH.Timeout)
	hhClient.SetRateLimit(cfg.HH.MaxRequestsPerSecond)

	a := &app{
		cfg:       cfg,
		db:        dbContext,
		tasks:     repositories.NewTasksRepository(dbContext.DB),
		vacancies: repositories.NewVacanciesRepository(dbContext.DB),
		hhClient:  hhClient,
		bus:       EventBus.New(),
	}

	a.parser = services.NewParser(a.tasks, a.vacancies, a.bus)
	a.parser.RegisterSource(entities.SourceHH, hhClient)
	a.parser.SetPageDelay(cfg.HH.PageDelay)

	return a, nil
}

func (a *app) Close() {
	a.hhClient.Close()
	_ = a.db.Close()
	logger.Cleanup()
}
