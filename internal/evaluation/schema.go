package evaluation

import (
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/devschro/next-precedent/internal/generation"
)

// outputSchema is the structural contract for the current evaluation
// schema. Numeric range and ordering invariants are checked separately by
// Output.Validate so their failures can be distinguished and absorbed by
// the legacy adapter.
const outputSchema = `{
	"type": "object",
	"required": [
		"settleProbability",
		"dismissalProbability",
		"winAtTrialProbability",
		"lossAtTrialProbability",
		"damages"
	],
	"properties": {
		"settleProbability": {"type": "number"},
		"dismissalProbability": {"type": "number"},
		"winAtTrialProbability": {"type": "number"},
		"lossAtTrialProbability": {"type": "number"},
		"riskScore": {"type": "number"},
		"damages": {
			"type": "object",
			"required": ["min", "median", "max"],
			"properties": {
				"min": {"type": "number"},
				"median": {"type": "number"},
				"max": {"type": "number"},
				"currency": {"type": "string"}
			}
		},
		"explanation": {
			"type": "object",
			"properties": {
				"keyFactors": {"type": "array", "items": {"type": "string"}}
			}
		},
		"precedents": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["caseName"],
				"properties": {
					"caseName": {"type": "string"},
					"citation": {"type": "string"},
					"authority": {"type": "string"},
					"similarityScore": {"type": "number"}
				}
			}
		}
	}
}`

var compiledOutputSchema = jsonschema.MustCompileString("evaluation-output.json", outputSchema)

// legacyOutput is the earlier schema version: a single win/settle/trial
// probability triple that was required to sum to 1.
type legacyOutput struct {
	WinProbability    float64 `json:"winProbability"`
	SettleProbability float64 `json:"settleProbability"`
	TrialProbability  float64 `json:"trialProbability"`
}

// ParseOutput reads raw model output into a validated Output. It first
// tries the current schema (structure, then numeric invariants); if that
// fails it applies the legacy adapter, which renormalizes the old
// win/settle/trial triple to sum to 1 and maps it into the current schema.
// The returned corrected flag reports whether the adapter ran.
//
// Non-JSON input is a generation.ErrInvalidResponse. A JSON document that
// fits neither schema version returns the current-schema validation error.
func ParseOutput(raw []byte) (out *Output, corrected bool, err error) {
	var doc any
	if jsonErr := json.Unmarshal(raw, &doc); jsonErr != nil {
		return nil, false, fmt.Errorf("%w: not valid JSON: %v", generation.ErrInvalidResponse, jsonErr)
	}

	currentErr := validateCurrent(doc)
	if currentErr == nil {
		var parsed Output
		if jsonErr := json.Unmarshal(raw, &parsed); jsonErr != nil {
			return nil, false, fmt.Errorf("%w: %v", generation.ErrInvalidResponse, jsonErr)
		}
		if invErr := parsed.Validate(); invErr == nil {
			return &parsed, false, nil
		}
		// Structural match but out-of-range values: fall through to the
		// legacy adapter like any other validation failure.
	}

	adapted, adaptErr := adaptLegacy(raw)
	if adaptErr != nil {
		if currentErr != nil {
			return nil, false, currentErr
		}
		return nil, false, adaptErr
	}

	return adapted, true, nil
}

func validateCurrent(doc any) error {
	if err := compiledOutputSchema.Validate(doc); err != nil {
		return fmt.Errorf("output does not match current schema: %w", err)
	}
	return nil
}

// adaptLegacy reads the legacy triple, renormalizes it to sum to 1, and
// maps it into the current schema: win becomes win-at-trial, settle stays
// settlement, trial becomes loss-at-trial, and dismissal defaults to 0.
// All other fields the response carries (riskScore, damages, explanation,
// precedents) are kept; only a malformed damages band is dropped.
func adaptLegacy(raw []byte) (*Output, error) {
	var legacy legacyOutput
	if err := json.Unmarshal(raw, &legacy); err != nil {
		return nil, fmt.Errorf("legacy schema read failed: %w", err)
	}

	sum := legacy.WinProbability + legacy.SettleProbability + legacy.TrialProbability
	if sum <= 0 {
		sum = 1
	}

	var adapted Output
	if err := json.Unmarshal(raw, &adapted); err != nil {
		adapted = Output{}
	}

	adapted.SettleProbability = legacy.SettleProbability / sum
	adapted.DismissalProbability = 0
	adapted.WinAtTrialProbability = legacy.WinProbability / sum
	adapted.LossAtTrialProbability = legacy.TrialProbability / sum

	if d := adapted.Damages; !(d.Min <= d.Median && d.Median <= d.Max) {
		adapted.Damages = Damages{}
	}

	if err := adapted.Validate(); err != nil {
		return nil, fmt.Errorf("legacy adapter produced invalid output: %w", err)
	}

	return &adapted, nil
}
