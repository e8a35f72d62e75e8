package evaluation

import (
	"errors"
	"math"
)

// Validation errors for evaluation output.
var (
	ErrProbabilityOutOfRange = errors.New("probability must lie in [0,1]")
	ErrDamagesUnordered      = errors.New("damages bands must satisfy min <= median <= max")
)

// Output is the current evaluation schema. The four probabilities are
// independent scenario estimates and are not required to sum to 1.
type Output struct {
	SettleProbability      float64     `json:"settleProbability"`
	DismissalProbability   float64     `json:"dismissalProbability"`
	WinAtTrialProbability  float64     `json:"winAtTrialProbability"`
	LossAtTrialProbability float64     `json:"lossAtTrialProbability"`
	RiskScore              float64     `json:"riskScore"`
	Damages                Damages     `json:"damages"`
	Explanation            Explanation `json:"explanation"`
	Precedents             []Precedent `json:"precedents"`
}

// Damages is the estimated damages band in the stated currency.
type Damages struct {
	Min      float64 `json:"min"`
	Median   float64 `json:"median"`
	Max      float64 `json:"max"`
	Currency string  `json:"currency,omitempty"`
}

// Explanation carries the model's reasoning summary.
type Explanation struct {
	KeyFactors []string `json:"keyFactors"`
}

// Precedent is a cited prior case supporting the evaluation.
type Precedent struct {
	CaseName        string  `json:"caseName"`
	Citation        string  `json:"citation,omitempty"`
	Authority       string  `json:"authority,omitempty"`
	SimilarityScore float64 `json:"similarityScore,omitempty"`
}

// Validate checks the numeric invariants of the output: each of the four
// probabilities must lie in [0,1] and the damages band must be ordered.
func (o *Output) Validate() error {
	probs := []float64{
		o.SettleProbability,
		o.DismissalProbability,
		o.WinAtTrialProbability,
		o.LossAtTrialProbability,
	}
	for _, p := range probs {
		if math.IsNaN(p) || p < 0 || p > 1 {
			return ErrProbabilityOutOfRange
		}
	}

	if !(o.Damages.Min <= o.Damages.Median && o.Damages.Median <= o.Damages.Max) {
		return ErrDamagesUnordered
	}

	return nil
}
