package main

import (
	"fmt"

	"github.com/domharness/domharness/harness"
)

// StepResult records the outcome of one Step within a Scenario.
type StepResult struct {
	Step Step
	Err  error
}

// Passed reports whether the step completed without error.
func (r StepResult) Passed() bool { return r.Err == nil }

// ScenarioResult is the full run of one Scenario: the harness
// construction outcome (from_html can itself fail) plus one StepResult
// per step actually attempted.
type ScenarioResult struct {
	Scenario Scenario
	SetupErr error
	Steps    []StepResult
}

// Passed reports whether setup and every step succeeded.
func (r ScenarioResult) Passed() bool {
	if r.SetupErr != nil {
		return false
	}
	for _, s := range r.Steps {
		if !s.Passed() {
			return false
		}
	}
	return true
}

// runScenario constructs a Harness from_html and replays each step in
// order, stopping at the first step that errors — later steps in the
// same scenario are reported as skipped by their absence from the
// result, the same way a test author would abandon a broken fixture
// rather than keep driving it.
func runScenario(sc Scenario) ScenarioResult {
	result := ScenarioResult{Scenario: sc}

	h, err := harness.New(sc.HTML)
	if err != nil {
		result.SetupErr = err
		return result
	}

	for _, step := range sc.Steps {
		err := runStep(h, step)
		if step.ExpectError {
			if err == nil {
				err = fmt.Errorf("expected an error from op %q, got none", step.Op)
			} else {
				err = nil
			}
		}
		result.Steps = append(result.Steps, StepResult{Step: step, Err: err})
		if err != nil {
			break
		}
	}
	return result
}

func runStep(h *harness.Harness, step Step) error {
	switch step.Op {
	case "click":
		return h.Click(step.Selector)
	case "assert_text":
		return h.AssertText(step.Selector, step.Expected)
	case "advance_time":
		h.AdvanceTime(step.Ms)
		return nil
	case "run_due_timers":
		h.RunDueTimers()
		return nil
	default:
		return fmt.Errorf("unknown step op %q", step.Op)
	}
}
