package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newRunCmd(gs *globalState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [scenario.yaml]...",
		Short: "replay one or more scenario files through the harness",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFiles(gs, args)
		},
	}
	return cmd
}

func runFiles(gs *globalState, paths []string) error {
	passColor := getColor(gs.noColor, color.FgGreen)
	failColor := getColor(gs.noColor, color.FgRed)

	total, failed := 0, 0
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		scenarios, err := loadScenarios(data)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		for _, sc := range scenarios {
			total++
			result := runScenario(sc)
			if result.Passed() {
				fmt.Fprintf(gs.stdOut, "%s %s\n", passColor.Sprint("PASS"), sc.Name)
				continue
			}
			failed++
			fmt.Fprintf(gs.stdOut, "%s %s\n", failColor.Sprint("FAIL"), sc.Name)
			printFailure(gs, result)
		}
	}

	fmt.Fprintf(gs.stdOut, "\n%d scenarios, %d failed\n", total, failed)
	if failed > 0 {
		gs.exitCode = 1
	}
	return nil
}

func printFailure(gs *globalState, result ScenarioResult) {
	if result.SetupErr != nil {
		fmt.Fprintf(gs.stdOut, "  from_html: %s\n", result.SetupErr)
		return
	}
	for i, step := range result.Steps {
		if step.Err != nil {
			fmt.Fprintf(gs.stdOut, "  step %d (%s): %s\n", i, step.Step.Op, step.Err)
		}
	}
}
