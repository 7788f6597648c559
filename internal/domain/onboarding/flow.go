package onboarding

import "slices"

type Flow string

const (
	FlowFind Flow = "find"
	FlowPro  Flow = "pro"
)

type Step string

const (
	StepWelcome          Step = "welcome"
	StepServiceSelection Step = "service_selection"
	StepLocationInput    Step = "location_input"
	StepTimingInput      Step = "timing_input"
	StepSearchResults    Step = "search_results"

	StepAccountCreation  Step = "account_creation"
	StepServiceOfferings Step = "service_offerings"
	StepPricingInput     Step = "pricing_input"
	StepServiceLocation  Step = "service_location"
	StepProPreview       Step = "pro_preview"
)

var flowSteps = map[Flow][]Step{
	FlowFind: {StepWelcome, StepServiceSelection, StepLocationInput, StepTimingInput, StepSearchResults},
	FlowPro:  {StepWelcome, StepAccountCreation, StepServiceOfferings, StepPricingInput, StepServiceLocation, StepProPreview},
}

// requiredKeys must be present in the bag before the wizard moves past a step.
// location_input accepts any one of its keys.
var requiredKeys = map[Step][]string{
	StepServiceSelection: {"service"},
	StepTimingInput:      {"timing"},
	StepAccountCreation:  {"full_name"},
	StepServiceOfferings: {"services"},
	StepPricingInput:     {"hourly_rate"},
	StepServiceLocation:  {"city"},
}

var locationKeys = []string{"location", "lat", "use_my_location"}

func (f Flow) Valid() bool {
	_, ok := flowSteps[f]
	return ok
}

func (f Flow) Steps() []Step {
	return flowSteps[f]
}

func (f Flow) Last() Step {
	steps := flowSteps[f]
	return steps[len(steps)-1]
}

func (f Flow) index(s Step) int {
	return slices.Index(flowSteps[f], s)
}

// missingKeys lists what the bag lacks to leave step.
func missingKeys(step Step, data map[string]any) []string {
	if step == StepLocationInput {
		for _, k := range locationKeys {
			if present(data, k) {
				return nil
			}
		}
		return []string{"location"}
	}

	var missing []string
	for _, k := range requiredKeys[step] {
		if !present(data, k) {
			missing = append(missing, k)
		}
	}
	return missing
}

func present(data map[string]any, key string) bool {
	switch v := data[key].(type) {
	case nil:
		return false
	case string:
		return v != ""
	case []any:
		return len(v) > 0
	case []string:
		return len(v) > 0
	case bool:
		return v
	default:
		return true
	}
}
