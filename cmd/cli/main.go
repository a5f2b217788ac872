package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/yourusername/ncea-extract-go/internal/app"
	"github.com/yourusername/ncea-extract-go/internal/domain"
)

var (
	configPath string
	rootCmd    = &cobra.Command{
		Use:   "ncea-extract",
		Short: "NCEA extract - bulk downloader for NCEA past papers",
		Long: `A command-line tool that downloads NCEA assessment papers, marking schedules
and exemplars for a list of achievement standards, falling back to mirror sites
when NZQA does not have a file.`,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file")

	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(configCmd)
}

// loadRuntime loads the configuration and wires the application
func loadRuntime() (*app.Runtime, error) {
	config, err := app.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	return app.NewRuntime(config)
}

// openHistory loads the runtime for commands that need the run history
func openHistory() (*app.Runtime, domain.RunRepository) {
	rt, err := loadRuntime()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	repo := rt.HistoryRepository()
	if repo == nil {
		rt.Close()
		fmt.Fprintln(os.Stderr, "Error: run history is disabled (history.enabled: false)")
		os.Exit(1)
	}
	return rt, repo
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
