package types

import "fmt"

// Scenario names one irradiance decomposition assumption.
type Scenario string

const (
	// ScenarioClearSky uses the theoretical clear-sky DNI and DHI.
	ScenarioClearSky Scenario = "clearsky"
	// ScenarioDisc uses DISC for DNI and ERBS for DHI.
	ScenarioDisc Scenario = "disc"
	// ScenarioDirindex uses DIRINDEX for DNI and ERBS for DHI.
	ScenarioDirindex Scenario = "dirindex"
)

// Scenarios is the fixed enumeration order. Every loop over scenarios uses it
// so that repeated runs produce identical output.
var Scenarios = []Scenario{ScenarioClearSky, ScenarioDisc, ScenarioDirindex}

// ParseScenario maps a configured name onto a Scenario.
func ParseScenario(name string) (Scenario, error) {
	for _, s := range Scenarios {
		if string(s) == name {
			return s, nil
		}
	}
	return "", fmt.Errorf("%w: unknown scenario %q", ErrInputValidation, name)
}

func (s Scenario) String() string { return string(s) }
