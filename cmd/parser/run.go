package main

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/maxaizer/hh-vacancy-parser/internal/entities"
	"github.com/spf13/cobra"
)

var (
	runTaskID int
	runAll    bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Запуск парсинга вакансий",
	Long:  "Runs one parse task (--task-id) or every active task (--all) and prints the run statistics.",
	RunE:  runParse,
}

func init() {
	runCmd.Flags().IntVar(&runTaskID, "task-id", 0, "ID конкретной задачи для парсинга")
	runCmd.Flags().BoolVar(&runAll, "all", false, "Запустить все активные задачи")
	rootCmd.AddCommand(runCmd)
}

func runParse(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()

	if runTaskID <= 0 && !runAll {
		fmt.Fprintln(out, "Укажите параметры: --task-id ID или --all для запуска всех задач")
		fmt.Fprintln(out, "Пример: parser run --all")
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if runTaskID > 0 {
		fmt.Fprintf(out, "Запуск парсинга задачи ID: %d\n", runTaskID)
		run, err := a.parser.RunByID(ctx, runTaskID)
		printStats(out, run.Stats, err)
		return nil
	}

	tasks, err := a.tasks.GetActive(ctx)
	if err != nil {
		printStats(out, entities.RunStats{}, err)
		return nil
	}

	fmt.Fprintf(out, "Найдено активных задач: %d\n", len(tasks))
	for _, task := range tasks {
		if ctx.Err() != nil {
			break
		}
		fmt.Fprintf(out, "\nОбработка задачи: %s (ID: %d)\n", task.Name, task.ID)
		printStats(out, a.parser.Run(ctx, task), nil)
	}
	return nil
}

func printStats(out io.Writer, stats entities.RunStats, err error) {
	if err != nil {
		fmt.Fprintf(out, "Ошибка: %v\n", err)
		return
	}
	fmt.Fprintf(out, "Статистика: %v\n", stats)
}
