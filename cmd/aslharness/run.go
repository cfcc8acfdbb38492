package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"aslharness/internal/exec"
	"aslharness/internal/expr"
	"aslharness/internal/fsutil"
	"aslharness/internal/mock"
	"aslharness/internal/states"
)

var (
	mockFile  string
	inputFile string
)

var runCmd = &cobra.Command{
	Use:   "run <state-machine.json>",
	Short: "Execute a state machine definition once against an input document",
	Args:  cobra.ExactArgs(1),
	RunE:  runMachine,
}

func init() {
	runCmd.Flags().StringVar(&mockFile, "mocks", "", "mock configuration file (JSON or YAML)")
	runCmd.Flags().StringVar(&inputFile, "input", "", "input JSON document (default: {})")
}

func runMachine(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()

	def, err := states.LoadDefinition(args[0])
	if err != nil {
		return err
	}

	mockCfg := &mock.Config{}
	if mockFile != "" {
		mockCfg, err = mock.LoadConfig(mockFile)
		if err != nil {
			return err
		}
	}
	mock.SetBasePath(cfg.BasePath)

	input, err := readInput(inputFile)
	if err != nil {
		return err
	}

	env := &exec.Env{
		Mock:      mock.New(mockCfg),
		JSONata:   expr.NewJSONataEngine(),
		StepLimit: cfg.TopLevelStepLimit,
	}

	machine := exec.New(def, env)
	result := machine.Run(context.Background(), input)

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))

	if !result.Success {
		os.Exit(1)
	}
	return nil
}

func readInput(path string) (interface{}, error) {
	if path == "" {
		return map[string]interface{}{}, nil
	}
	raw, err := fsutil.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading input %q: %w", path, err)
	}
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("parsing input %q: %w", path, err)
	}
	return v, nil
}
