package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"aslharness/internal/exec"
	"aslharness/internal/expr"
	"aslharness/internal/fsutil"
	"aslharness/internal/harness"
	"aslharness/internal/mock"
	"aslharness/internal/states"
)

var testMockFile string

var testCmd = &cobra.Command{
	Use:   "test <state-machine.json> <test-cases.json>",
	Short: "Run a suite of named test cases against a state machine definition",
	Args:  cobra.ExactArgs(2),
	RunE:  runTestSuite,
}

func init() {
	testCmd.Flags().StringVar(&testMockFile, "mocks", "", "mock configuration file (JSON or YAML)")
}

// testCaseDoc is the on-disk shape of a test-cases file: a list of named
// scenarios, each with an input, optional expectations, and optional
// per-case mock overrides (harness.TestCase, minus its Go-only fields).
type testCaseDoc struct {
	Cases []struct {
		Name           string                   `json:"name"`
		Input          interface{}              `json:"input"`
		ExpectedOutput interface{}               `json:"expectedOutput,omitempty"`
		ExpectedPath   []string                  `json:"expectedPath,omitempty"`
		ExpectSuccess  *bool                     `json:"expectSuccess,omitempty"`
		MockOverrides  map[string]mock.MockSpec  `json:"mockOverrides,omitempty"`
	} `json:"cases"`
}

func runTestSuite(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()

	def, err := states.LoadDefinition(args[0])
	if err != nil {
		return err
	}

	doc, err := loadTestCaseDoc(args[1])
	if err != nil {
		return err
	}

	mockCfg := &mock.Config{}
	if testMockFile != "" {
		mockCfg, err = mock.LoadConfig(testMockFile)
		if err != nil {
			return err
		}
	}
	mock.SetBasePath(cfg.BasePath)

	env := &exec.Env{
		Mock:      mock.New(mockCfg),
		JSONata:   expr.NewJSONataEngine(),
		StepLimit: cfg.TopLevelStepLimit,
	}

	cases := make([]harness.TestCase, 0, len(doc.Cases))
	for _, c := range doc.Cases {
		cases = append(cases, harness.TestCase{
			Name:           c.Name,
			Input:          c.Input,
			ExpectedOutput: c.ExpectedOutput,
			ExpectedPath:   c.ExpectedPath,
			ExpectSuccess:  c.ExpectSuccess,
			MockOverrides:  c.MockOverrides,
		})
	}

	suite := harness.NewSuite(def, env)
	results := suite.Run(context.Background(), cases)

	failed := 0
	for _, r := range results {
		status := "PASS"
		if !r.Passed {
			status = "FAIL"
			failed++
		}
		fmt.Printf("[%s] %s\n", status, r.Name)
		for _, reason := range r.Reasons {
			fmt.Printf("       %s\n", reason)
		}
	}
	fmt.Printf("\n%d/%d passed\n", len(results)-failed, len(results))

	if failed > 0 {
		os.Exit(1)
	}
	return nil
}

func loadTestCaseDoc(path string) (*testCaseDoc, error) {
	raw, err := fsutil.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading test cases %q: %w", path, err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".yaml" || ext == ".yml" {
		var generic interface{}
		if err := yaml.Unmarshal(raw, &generic); err != nil {
			return nil, fmt.Errorf("parsing test cases %q: %w", path, err)
		}
		converted, err := json.Marshal(convertYAMLValue(generic))
		if err != nil {
			return nil, err
		}
		raw = converted
	}

	var doc testCaseDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parsing test cases %q: %w", path, err)
	}
	return &doc, nil
}

// convertYAMLValue normalizes yaml.v3's decoded values into plain
// JSON-compatible ones, mirroring the same helper in states/load.go and
// mock/loader.go.
func convertYAMLValue(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(val))
		for k, child := range val {
			out[k] = convertYAMLValue(child)
		}
		return out
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(val))
		for k, child := range val {
			out[fmt.Sprintf("%v", k)] = convertYAMLValue(child)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, child := range val {
			out[i] = convertYAMLValue(child)
		}
		return out
	default:
		return val
	}
}
