package main

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dori/tasksrus/internal/app"
	"github.com/dori/tasksrus/internal/config"
	"github.com/dori/tasksrus/internal/model"
	"github.com/dori/tasksrus/internal/ui"
	"github.com/dori/tasksrus/internal/ui/theme"
	"github.com/spf13/cobra"
)

// drainTimeout bounds the final flush of unsaved edits on exit
const drainTimeout = 10 * time.Second

func newRootCmd() *cobra.Command {
	var (
		configPath string
		viewFlag   string
		themeFlag  string
	)

	root := &cobra.Command{
		Use:           "tasksrus",
		Short:         "A keyboard-driven personal task manager",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			if viewFlag != "" {
				cfg.StartView = viewFlag
			}
			if themeFlag != "" {
				cfg.Theme = themeFlag
			}
			return runTUI(cfg, path)
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default is the user config dir)")
	root.Flags().StringVar(&viewFlag, "view", "", "Starting view (inbox, today, upcoming, anytime, someday, logbook, trash)")
	root.Flags().StringVar(&themeFlag, "theme", "", "Theme name (nord, dracula, gruvbox, catppuccin)")

	root.AddCommand(
		newAddCmd(&configPath),
		newSearchCmd(&configPath),
		newVersionCmd(),
	)
	return root
}

// loadConfig reads the config file, falling back to the default location
func loadConfig(path string) (*config.Config, string, error) {
	if path == "" {
		p, err := config.DefaultPath()
		if err != nil {
			return nil, "", err
		}
		path = p
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func runTUI(cfg *config.Config, configPath string) error {
	start, err := model.ParseCategory(cfg.StartView)
	if err != nil {
		return fmt.Errorf("invalid start view: %w", err)
	}
	if cfg.Theme != "" {
		t, ok := theme.ByName(cfg.Theme)
		if !ok {
			return fmt.Errorf("unknown theme %q", cfg.Theme)
		}
		theme.SetTheme(t)
	}

	application, err := app.New(cfg, configPath, app.Options{Exclusive: true})
	if err != nil {
		return err
	}
	defer application.Close()

	m := ui.NewRootModel(application.DB, ui.Options{
		StartView:     model.CategoryView(start),
		Debounce:      cfg.Persist.Debounce,
		Timeout:       cfg.Store.Timeout,
		Logger:        application.Logger,
		Notifier:      application.Notifier,
		OnThemeChange: application.SaveTheme,
	})

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	final, err := p.Run()
	if err != nil {
		return err
	}

	root, ok := final.(ui.RootModel)
	if !ok || root.PendingWrites() == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), drainTimeout)
	defer cancel()
	if err := root.Drain(ctx); err != nil {
		application.Logger.Error("unsaved edits on exit", "err", err)
		return fmt.Errorf("some edits were not saved: %w", err)
	}
	return nil
}
