// Command aslharness is the local CLI entry point for the ASL interpreter
// and mock test harness, grounded on the teacher's cobra root-command
// convention (cmd/main/main.go).
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"aslharness/internal/config"
	"aslharness/internal/logging"
)

var (
	cfgFile string
	debug   bool

	rootCmd = &cobra.Command{
		Use:   "aslharness",
		Short: "Local Amazon States Language interpreter and mock test harness",
		Long: `aslharness executes Amazon States Language state machines locally,
substituting mocked Task responses for real AWS service calls so workflows
can be tested without deploying anything.`,
	}
)

func main() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./aslharness.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(testCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig() *config.Config {
	if err := config.InitViper(cfgFile); err != nil {
		fmt.Fprintf(os.Stderr, "warning: config: %v\n", err)
	}
	cfg := config.Load()
	cfg.Debug = cfg.Debug || debug
	logging.Initialize(cfg.Debug)
	return cfg
}
