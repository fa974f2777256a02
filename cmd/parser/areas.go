package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var areasCmd = &cobra.Command{
	Use:   "areas <query>",
	Short: "Find hh.ru area ids by name",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAreas,
}

func init() {
	rootCmd.AddCommand(areasCmd)
}

func runAreas(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	areas, err := a.hhClient.FindAreas(ctx, strings.Join(args, " "))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(areas) == 0 {
		fmt.Fprintln(out, "No areas found")
		return nil
	}
	for _, area := range areas {
		fmt.Fprintf(out, "%-8s %s\n", area.ID, area.Name)
	}
	return nil
}
