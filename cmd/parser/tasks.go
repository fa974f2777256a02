package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/maxaizer/hh-vacancy-parser/internal/entities"
	"github.com/spf13/cobra"
)

var tasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "Manage parse tasks",
}

var tasksListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all parse tasks",
	RunE:  runTasksList,
}

var newTask = entities.NewParseTask("")
var newTaskInactive bool

var tasksAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a parse task",
	RunE:  runTasksAdd,
}

func init() {
	flags := tasksAddCmd.Flags()
	flags.StringVar(&newTask.Name, "name", "", "task name")
	flags.StringVar((*string)(&newTask.Source), "source", string(newTask.Source), "vacancy source (hh, habr)")
	flags.StringVar(&newTask.SearchQuery, "query", newTask.SearchQuery, "search query")
	flags.StringVar(&newTask.Area, "area", newTask.Area, "hh.ru area id (1 is Moscow)")
	flags.IntVar(&newTask.PerPage, "per-page", newTask.PerPage, "vacancies per page (max 100)")
	flags.IntVar(&newTask.Pages, "pages", newTask.Pages, "number of pages to fetch")
	flags.BoolVar(&newTaskInactive, "inactive", false, "create the task disabled")
	_ = tasksAddCmd.MarkFlagRequired("name")

	tasksCmd.AddCommand(tasksListCmd, tasksAddCmd)
	rootCmd.AddCommand(tasksCmd)
}

func runTasksList(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	tasks, err := a.tasks.GetAll(ctx)
	if err != nil {
		return err
	}
	counts, err := a.tasks.VacanciesCount(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%-5s %-30s %-12s %-20s %-6s %-9s %-8s %-10s %s\n",
		"ID", "Name", "Source", "Query", "Area", "Pages", "Active", "Vacancies", "Last run")
	fmt.Fprintln(out, strings.Repeat("─", 120))

	for _, task := range tasks {
		lastRun := "never"
		if task.LastRun != nil {
			lastRun = task.LastRun.Local().Format("2006-01-02 15:04:05")
		}
		fmt.Fprintf(out, "%-5d %-30s %-12s %-20s %-6s %-9s %-8t %-10d %s\n",
			task.ID, task.Name, task.Source.DisplayName(), task.SearchQuery, task.Area,
			fmt.Sprintf("%dx%d", task.Pages, task.PerPage), task.IsActive, counts[task.ID], lastRun)
	}

	fmt.Fprintf(out, "\nTotal: %d tasks\n", len(tasks))
	return nil
}

func runTasksAdd(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	task := newTask
	task.IsActive = !newTaskInactive
	if err := a.tasks.Add(ctx, &task); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created task %d: %v\n", task.ID, task)
	return nil
}
