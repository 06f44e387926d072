package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dori/tasksrus/internal/app"
	"github.com/dori/tasksrus/internal/model"
	"github.com/spf13/cobra"
)

func newAddCmd(configPath *string) *cobra.Command {
	var when string
	cmd := &cobra.Command{
		Use:   "add <title...>",
		Short: "Quick add a task",
		Example: `  tasksrus add Buy groceries
  tasksrus add --when someday Learn the cello
  tasksrus add --when 2026-11-02 Dentist`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			scheduled, err := model.ParseScheduled(when)
			if err != nil {
				return err
			}
			title := strings.TrimSpace(strings.Join(args, " "))
			if title == "" {
				return fmt.Errorf("title cannot be empty")
			}

			application, err := openApp(*configPath)
			if err != nil {
				return err
			}
			defer application.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), application.Config.Store.Timeout)
			defer cancel()

			task, err := application.DB.CreateTask(ctx)
			if err != nil {
				return fmt.Errorf("failed to create task: %w", err)
			}
			task.Title = title
			task.Scheduled = scheduled
			if err := application.DB.UpdateTask(ctx, *task); err != nil {
				return fmt.Errorf("failed to save task: %w", err)
			}
			application.Logger.Info("quick add", "task", task.ID)

			fmt.Fprintf(cmd.OutOrStdout(), "Created: %s (%s)\n", task.Title, task.Bucket(time.Now()))
			return nil
		},
	}
	cmd.Flags().StringVar(&when, "when", "", "Schedule: anytime, someday or YYYY-MM-DD (default Inbox)")
	return cmd
}

func newSearchCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Print tasks whose title matches",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := openApp(*configPath)
			if err != nil {
				return err
			}
			defer application.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), application.Config.Store.Timeout)
			defer cancel()

			tasks, err := application.DB.Search(ctx, strings.Join(args, " "))
			if err != nil {
				return err
			}
			now := time.Now()
			for _, t := range tasks {
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%s\n", t.ID, t.Bucket(now), model.DisplayTitle(t))
			}
			return nil
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "tasksrus v%s\n", version)
		},
	}
}

// openApp opens the database without the single-instance lock; the
// one-shot commands only insert or read
func openApp(configPath string) (*app.App, error) {
	cfg, path, err := loadConfig(configPath)
	if err != nil {
		return nil, err
	}
	return app.New(cfg, path, app.Options{})
}
