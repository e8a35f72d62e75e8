package evaluation

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
)

// promptTemplate instructs the model to return strict JSON in the current
// evaluation schema. The probabilities are independent scenario estimates,
// not a distribution.
const promptTemplate = `You are a legal evaluation assistant. Using only the provided context snippets, return STRICT JSON with:

settleProbability: number (0..1),
dismissalProbability: number (0..1),
winAtTrialProbability: number (0..1),
lossAtTrialProbability: number (0..1),
riskScore: number (0..100),

damages: { min: number, median: number, max: number, currency: "USD" },

explanation: { keyFactors: string[] },

precedents: [
  { caseName: string, citation?: string, authority?: string, similarityScore?: number }
]

Rules:
- JSON only, no prose.
- If uncertain, give best numeric estimates; do NOT return null.
- Probabilities DO NOT have to sum to 1.0. They are independent scenario estimates.
- explanation.keyFactors must contain at least 3 entries.
- Provide at least 2 precedents. Use plausible placeholders if none are found.

Case: {{.CaseName}}

Context:
{{.Context}}`

type promptData struct {
	CaseName string
	Context  string
}

var parsedPromptTemplate = template.Must(template.New("evaluation").Parse(promptTemplate))

// BuildPrompt renders the evaluation prompt for the given case and context
// snippets. The output is deterministic for identical inputs.
func BuildPrompt(caseName string, snippets []string) (string, error) {
	var buf bytes.Buffer
	err := parsedPromptTemplate.Execute(&buf, promptData{
		CaseName: caseName,
		Context:  joinContext(snippets),
	})
	if err != nil {
		return "", fmt.Errorf("failed to execute prompt template: %w", err)
	}
	return buf.String(), nil
}

// joinContext renders retrieval snippets into the prompt's context block.
func joinContext(snippets []string) string {
	return strings.Join(snippets, "\n---\n")
}
