// Package cli wires configuration, storage and the API client into the
// taskr command tree. With no subcommand taskr opens the interactive UI.
package cli

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/sadopc/taskr/internal/tui"
)

var (
	verbose    bool
	configFile string
	envFile    string
	rootCmd    *cobra.Command
)

func init() {
	rootCmd = &cobra.Command{
		Use:   "taskr",
		Short: "taskr - a terminal client for your task list",
		Long: `taskr keeps a personal task list on a remote server.

Run without arguments to open the interactive UI, or use the subcommands
to script common operations.`,
		RunE:          runTUI,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log to stderr at debug level")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file (default is <user config dir>/taskr/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "Environment file to load (default .env)")
}

// Execute runs the root command.
func Execute(version string) error {
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(toggleCmd)
	rootCmd.AddCommand(rmCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.Version = version
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

func runTUI(cmd *cobra.Command, args []string) error {
	// The UI owns the terminal; console logging would corrupt it.
	e, err := openEnv(false)
	if err != nil {
		return err
	}
	defer e.Close()

	home, _ := os.UserHomeDir()
	app := tui.NewApp(tui.Options{
		Session:   e.session,
		Gateway:   e.client,
		Log:       e.log,
		APIURL:    e.cfg.APIURL,
		ExportDir: home,
		NotifyTTL: e.cfg.NotifyTTL,
	})

	e.log.Info().Str("api_url", e.cfg.APIURL).Msg("starting ui")
	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run ui: %w", err)
	}
	return nil
}
