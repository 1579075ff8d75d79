package main

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadScenariosRejectsEmptyFile(t *testing.T) {
	_, err := loadScenarios([]byte("scenarios: []\n"))
	require.Error(t, err)
}

func TestLoadScenariosRejectsMissingHTML(t *testing.T) {
	_, err := loadScenarios([]byte(`
scenarios:
  - name: broken
    steps: []
`))
	require.ErrorContains(t, err, "missing html")
}

func TestLoadScenariosParsesStepsAndAssertions(t *testing.T) {
	scenarios, err := loadScenarios([]byte(`
scenarios:
  - name: counter
    html: "<button id=\"b\">x</button><p id=\"out\">0</p>"
    steps:
      - op: click
        selector: "#b"
      - op: assert_text
        selector: "#out"
        expected: "1"
`))
	require.NoError(t, err)
	require.Len(t, scenarios, 1)
	require.Len(t, scenarios[0].Steps, 2)
	require.Equal(t, "assert_text", scenarios[0].Steps[1].Op)
	require.Equal(t, "1", scenarios[0].Steps[1].Expected)
}

func TestRunScenarioReportsStepFailure(t *testing.T) {
	sc := Scenario{
		Name: "mismatch",
		HTML: `<p id="out">hello</p>`,
		Steps: []Step{
			{Op: "assert_text", Selector: "#out", Expected: "goodbye"},
		},
	}
	result := runScenario(sc)
	require.False(t, result.Passed())
	require.Len(t, result.Steps, 1)
	require.Error(t, result.Steps[0].Err)
}

func TestRunScenarioPassesOnMatch(t *testing.T) {
	sc := Scenario{
		Name: "match",
		HTML: `<p id="out">hello</p>`,
		Steps: []Step{
			{Op: "assert_text", Selector: "#out", Expected: "hello"},
		},
	}
	result := runScenario(sc)
	require.True(t, result.Passed())
}

func TestRunScenarioExpectErrorSwallowsTheErrorAndKeepsCommittedState(t *testing.T) {
	sc := Scenario{
		Name: "boom",
		HTML: `
<button id="boom"></button>
<button id="check"></button>
<p id="result"></p>
<script>
var x = 0;
document.getElementById('boom').addEventListener('click', function() {
  x = 1;
  unknown_fn();
});
document.getElementById('check').addEventListener('click', function() {
  document.getElementById('result').textContent = String(x);
});
</script>`,
		Steps: []Step{
			{Op: "click", Selector: "#boom", ExpectError: true},
			{Op: "click", Selector: "#check"},
			{Op: "assert_text", Selector: "#result", Expected: "1"},
		},
	}
	result := runScenario(sc)
	require.True(t, result.Passed())
}

func TestRunScenarioExpectErrorFailsWhenNoErrorOccurs(t *testing.T) {
	sc := Scenario{
		Name: "no-op",
		HTML: `<p id="out">hi</p>`,
		Steps: []Step{
			{Op: "assert_text", Selector: "#out", Expected: "hi", ExpectError: true},
		},
	}
	result := runScenario(sc)
	require.False(t, result.Passed())
	require.ErrorContains(t, result.Steps[0].Err, "expected an error")
}

func TestRunScenarioUnknownOp(t *testing.T) {
	sc := Scenario{
		Name:  "bogus",
		HTML:  `<p></p>`,
		Steps: []Step{{Op: "fly"}},
	}
	result := runScenario(sc)
	require.False(t, result.Passed())
	require.ErrorContains(t, result.Steps[0].Err, "unknown step op")
}
