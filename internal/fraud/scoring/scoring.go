package scoring

import (
	"github.com/mkd-neo4j/neo4j-claims-fraud/internal/fraud/patterns"
)

// Recommendation is the disposition suggested for a claim.
type Recommendation string

const (
	Approve      Recommendation = "APPROVE"
	ManualReview Recommendation = "MANUAL_REVIEW"
	Reject       Recommendation = "REJECT"
)

const (
	MaxScore = 100
	// FraudThreshold is the lowest score treated as fraudulent and sent to review.
	FraudThreshold = 40
	// RejectThreshold is the lowest score rejected outright.
	RejectThreshold = 75
)

// Weights are the points each triggered rule contributes.
var Weights = map[patterns.Rule]int{
	patterns.RuleVelocity:       25,
	patterns.RuleSharedPII:      40,
	patterns.RuleCollusion:      25,
	patterns.RuleHighValue:      15,
	patterns.RuleAssetRecycling: 30,
	patterns.RuleDoubleDipping:  45,
}

// Assessment is the scored outcome of a set of flags.
type Assessment struct {
	Score          int
	IsFraudulent   bool
	RulesTriggered []patterns.Rule
	Messages       []string
	Recommendation Recommendation
}

// Score sums the weights of the distinct rules in flags, clamped to [0, MaxScore].
func Score(flags []patterns.Flag) int {
	seen := make(map[patterns.Rule]bool, len(flags))
	total := 0
	for _, f := range flags {
		if seen[f.Rule] {
			continue
		}
		seen[f.Rule] = true
		total += Weights[f.Rule]
	}
	return Clamp(total)
}

func Clamp(score int) int {
	if score < 0 {
		return 0
	}
	if score > MaxScore {
		return MaxScore
	}
	return score
}

// RecommendationFor maps a score onto a tier.
func RecommendationFor(score int) Recommendation {
	switch {
	case score >= RejectThreshold:
		return Reject
	case score >= FraudThreshold:
		return ManualReview
	default:
		return Approve
	}
}

func IsFraudulent(score int) bool {
	return score >= FraudThreshold
}

// Assess scores flags. Rules and messages keep flag order.
func Assess(flags []patterns.Flag) Assessment {
	score := Score(flags)
	a := Assessment{
		Score:          score,
		IsFraudulent:   IsFraudulent(score),
		RulesTriggered: make([]patterns.Rule, 0, len(flags)),
		Messages:       make([]string, 0, len(flags)),
		Recommendation: RecommendationFor(score),
	}
	for _, f := range flags {
		a.RulesTriggered = append(a.RulesTriggered, f.Rule)
		a.Messages = append(a.Messages, f.Message)
	}
	return a
}
