// Package cmd implements the pcb-netlist command line.
package cmd

import (
	"fmt"
	"os"

	"pcb-netlist/internal/app"
	"pcb-netlist/internal/config"
	"pcb-netlist/internal/version"

	"github.com/spf13/cobra"
)

var (
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "pcb-netlist",
	Short: "Recover nets from traced PCB artwork",
	Long: `pcb-netlist reads a traced board (traces, vias, pads, copper pours and
airwires) and groups every primitive into electrically connected nets.`,
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default "+config.DefaultPath()+")")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log progress while building nets")
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads the config file named by --config, or the default one.
func loadConfig() (*config.Config, error) {
	path := configPath
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if verbose {
		cfg.Log.Verbose = true
	}
	return cfg, nil
}

// openProject loads the config and the project at path.
func openProject(path string) (*app.State, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	s := app.NewState(cfg)
	if err := s.LoadProject(path); err != nil {
		return nil, err
	}
	return s, nil
}
