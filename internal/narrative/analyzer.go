package narrative

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"text/template"

	"github.com/mkd-neo4j/neo4j-claims-fraud/docs"
	"github.com/mkd-neo4j/neo4j-claims-fraud/internal/claims"
	"github.com/sashabaranov/go-openai"
)

// ConfidenceLevel is the analyst's confidence in the verdict.
type ConfidenceLevel string

const (
	ConfidenceHigh   ConfidenceLevel = "HIGH"
	ConfidenceMedium ConfidenceLevel = "MEDIUM"
	ConfidenceLow    ConfidenceLevel = "LOW"
)

// PatternEvidence is one graph finding handed to the analyst.
type PatternEvidence struct {
	Type       string   `json:"pattern_type"`
	Confidence string   `json:"confidence"`
	Evidence   []string `json:"evidence"`
}

// AnalysisRequest carries the claim and the graph verdict.
type AnalysisRequest struct {
	Claim          claims.Record
	IsFraudulent   bool
	FraudScore     int
	Recommendation string
	Patterns       []PatternEvidence
}

// Analysis is the narrative assessment of a claim.
type Analysis struct {
	IsFraudulent      bool            `json:"is_fraudulent"`
	ConfidenceLevel   ConfidenceLevel `json:"confidence_level"`
	RiskScore         float64         `json:"risk_score"`
	Summary           string          `json:"summary"`
	DetailedReasoning string          `json:"detailed_reasoning"`
	Recommendations   []string        `json:"recommendations"`
	RedFlags          []string        `json:"red_flags"`
	MitigatingFactors []string        `json:"mitigating_factors"`
}

// Analyzer produces a narrative assessment from a claim and its graph results.
type Analyzer interface {
	Analyze(ctx context.Context, req AnalysisRequest) (*Analysis, error)
}

// ChatCompleter is the part of the OpenAI client the analyzer needs.
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// NewClient builds an OpenAI-compatible client. baseURL may be empty.
func NewClient(apiKey, baseURL string) *openai.Client {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	return openai.NewClientWithConfig(config)
}

// OpenAIAnalyzer asks a chat model for a JSON assessment.
type OpenAIAnalyzer struct {
	client ChatCompleter
	model  string
	prompt *template.Template
}

func NewOpenAIAnalyzer(client ChatCompleter, model string) (*OpenAIAnalyzer, error) {
	if client == nil {
		return nil, errors.New("chat client cannot be nil")
	}
	prompt, err := template.New("fraud_analysis").
		Funcs(template.FuncMap{"join": strings.Join}).
		Parse(docs.FraudAnalysisPrompt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse analysis prompt: %w", err)
	}
	return &OpenAIAnalyzer{client: client, model: model, prompt: prompt}, nil
}

func (a *OpenAIAnalyzer) Analyze(ctx context.Context, req AnalysisRequest) (*Analysis, error) {
	prompt, err := a.render(req)
	if err != nil {
		return nil, err
	}

	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject},
	})
	if err != nil {
		return nil, fmt.Errorf("narrative analysis failed for claim %s: %w", req.Claim.TransactionID, err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("narrative analysis returned no choices for claim %s", req.Claim.TransactionID)
	}

	analysis, err := parseAnalysis(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, fmt.Errorf("narrative analysis for claim %s: %w", req.Claim.TransactionID, err)
	}

	slog.Info("claim analyzed",
		"transactionId", req.Claim.TransactionID,
		"riskScore", analysis.RiskScore,
		"confidence", analysis.ConfidenceLevel,
		"tokens", resp.Usage.TotalTokens)
	return analysis, nil
}

func (a *OpenAIAnalyzer) render(req AnalysisRequest) (string, error) {
	claimJSON, err := json.MarshalIndent(req.Claim, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode claim: %w", err)
	}

	var buf bytes.Buffer
	err = a.prompt.Execute(&buf, map[string]any{
		"ClaimJSON":      string(claimJSON),
		"IsFraudulent":   req.IsFraudulent,
		"FraudScore":     req.FraudScore,
		"Recommendation": req.Recommendation,
		"Patterns":       req.Patterns,
	})
	if err != nil {
		return "", fmt.Errorf("failed to render analysis prompt: %w", err)
	}
	return buf.String(), nil
}

// parseAnalysis decodes the model output, clamps the risk score to [0, 100]
// and rejects unknown confidence levels.
func parseAnalysis(content string) (*Analysis, error) {
	var analysis Analysis
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &analysis); err != nil {
		return nil, fmt.Errorf("invalid analysis response: %w", err)
	}

	analysis.ConfidenceLevel = ConfidenceLevel(strings.ToUpper(string(analysis.ConfidenceLevel)))
	switch analysis.ConfidenceLevel {
	case ConfidenceHigh, ConfidenceMedium, ConfidenceLow:
	default:
		return nil, fmt.Errorf("invalid confidence level %q", analysis.ConfidenceLevel)
	}

	analysis.RiskScore = min(max(analysis.RiskScore, 0), 100)
	if analysis.Recommendations == nil {
		analysis.Recommendations = []string{}
	}
	if analysis.RedFlags == nil {
		analysis.RedFlags = []string{}
	}
	if analysis.MitigatingFactors == nil {
		analysis.MitigatingFactors = []string{}
	}
	return &analysis, nil
}
