package docs

import (
	_ "embed"
)

// FraudAnalysisPrompt is the text/template used by the narrative analyzer.
// It is rendered with the claim, the graph verdict and the triggered patterns.
//
//go:embed prompts/fraud_analysis.md
var FraudAnalysisPrompt string
