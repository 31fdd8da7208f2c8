package scoring

import (
	"testing"

	"github.com/mkd-neo4j/neo4j-claims-fraud/internal/fraud/patterns"
	"github.com/stretchr/testify/assert"
)

func flags(rules ...patterns.Rule) []patterns.Flag {
	out := make([]patterns.Flag, 0, len(rules))
	for _, r := range rules {
		out = append(out, patterns.Flag{Rule: r, Message: string(r)})
	}
	return out
}

func TestScore(t *testing.T) {
	tests := []struct {
		name  string
		rules []patterns.Rule
		want  int
	}{
		{name: "no flags", want: 0},
		{name: "high value only", rules: []patterns.Rule{patterns.RuleHighValue}, want: 15},
		{name: "shared pii only", rules: []patterns.Rule{patterns.RuleSharedPII}, want: 40},
		{name: "velocity and collusion", rules: []patterns.Rule{patterns.RuleVelocity, patterns.RuleCollusion}, want: 50},
		{name: "every rule is clamped", rules: []patterns.Rule{
			patterns.RuleVelocity, patterns.RuleSharedPII, patterns.RuleCollusion,
			patterns.RuleHighValue, patterns.RuleAssetRecycling, patterns.RuleDoubleDipping,
		}, want: 100},
		{name: "duplicate rule counts once", rules: []patterns.Rule{patterns.RuleHighValue, patterns.RuleHighValue}, want: 15},
		{name: "unknown rule adds nothing", rules: []patterns.Rule{"MADE_UP"}, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Score(flags(tt.rules...))
			assert.Equal(t, tt.want, got)
			assert.GreaterOrEqual(t, got, 0)
			assert.LessOrEqual(t, got, MaxScore)
		})
	}
}

func TestRecommendationFor(t *testing.T) {
	tests := []struct {
		score      int
		want       Recommendation
		fraudulent bool
	}{
		{score: 100, want: Reject, fraudulent: true},
		{score: 75, want: Reject, fraudulent: true},
		{score: 74, want: ManualReview, fraudulent: true},
		{score: 40, want: ManualReview, fraudulent: true},
		{score: 39, want: Approve, fraudulent: false},
		{score: 0, want: Approve, fraudulent: false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, RecommendationFor(tt.score), "score %d", tt.score)
		assert.Equal(t, tt.fraudulent, IsFraudulent(tt.score), "score %d", tt.score)
	}
}

func TestAssess(t *testing.T) {
	t.Run("velocity plus shared pii plus high value", func(t *testing.T) {
		a := Assess(flags(patterns.RuleVelocity, patterns.RuleSharedPII, patterns.RuleHighValue))

		assert.Equal(t, 80, a.Score)
		assert.True(t, a.IsFraudulent)
		assert.Equal(t, Reject, a.Recommendation)
		assert.Equal(t, []patterns.Rule{patterns.RuleVelocity, patterns.RuleSharedPII, patterns.RuleHighValue}, a.RulesTriggered)
		assert.Equal(t, []string{"VELOCITY_FRAUD", "SHARED_PII", "HIGH_VALUE"}, a.Messages)
	})

	t.Run("clean claim", func(t *testing.T) {
		a := Assess(nil)
		assert.Equal(t, 0, a.Score)
		assert.False(t, a.IsFraudulent)
		assert.Equal(t, Approve, a.Recommendation)
		assert.NotNil(t, a.RulesTriggered)
		assert.NotNil(t, a.Messages)
	})
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 0, Clamp(-5))
	assert.Equal(t, 100, Clamp(180))
	assert.Equal(t, 55, Clamp(55))
}
