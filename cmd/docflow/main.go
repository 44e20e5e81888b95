package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/csheth/docflow/internal/config"
	"github.com/csheth/docflow/internal/logger"
	"github.com/csheth/docflow/internal/tui"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "docflow:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := viper.New()
	var configPath string

	root := &cobra.Command{
		Use:           "docflow",
		Short:         "Upload documents to a docflow backend and chat with them",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(v, configPath)
			if err != nil {
				return err
			}
			closer, err := logger.Init(cfg.Log.Level, cfg.Log.Format, cfg.Log.File)
			if err != nil {
				return fmt.Errorf("init logging: %w", err)
			}
			defer closer.Close()
			return run(cfg)
		},
	}

	flags := root.Flags()
	flags.StringVar(&configPath, "config", "", "path to a YAML config file")
	flags.String("backend", "", "backend base URL (default http://localhost:5000)")
	flags.String("log-level", "", "debug, info, warn or error")
	flags.String("log-file", "", "log file path (default docflow.log in the temp dir)")
	flags.Bool("no-alt-screen", false, "disable the alternate screen buffer")

	bindings := map[string]string{
		"backend.url": "backend",
		"log.level":   "log-level",
		"log.file":    "log-file",
	}
	for key, flag := range bindings {
		_ = v.BindPFlag(key, flags.Lookup(flag))
	}
	root.PreRun = func(cmd *cobra.Command, _ []string) {
		if noAlt, _ := cmd.Flags().GetBool("no-alt-screen"); noAlt {
			v.Set("ui.alt_screen", false)
		}
	}

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the docflow version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "docflow", version)
		},
	})
	return root
}

func run(cfg *config.Config) error {
	session := tui.NewSession(cfg, nil)
	opts := []tea.ProgramOption{tea.WithMouseCellMotion()}
	if cfg.UI.AltScreen {
		opts = append(opts, tea.WithAltScreen())
	}
	program := tea.NewProgram(tui.New(session), opts...)
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("program error: %w", err)
	}
	logger.Infof("session %s closed", session.ID)
	return nil
}
