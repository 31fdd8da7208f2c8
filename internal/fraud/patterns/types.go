package patterns

import (
	"context"
)

// Severity ranks how strongly a pattern indicates fraud.
type Severity string

const (
	SeverityCritical Severity = "CRITICAL"
	SeverityHigh     Severity = "HIGH"
	SeverityMedium   Severity = "MEDIUM"
)

// Rule names a real-time check.
type Rule string

const (
	RuleVelocity       Rule = "VELOCITY_FRAUD"
	RuleSharedPII      Rule = "SHARED_PII"
	RuleCollusion      Rule = "COLLUSION"
	RuleHighValue      Rule = "HIGH_VALUE"
	RuleAssetRecycling Rule = "ASSET_RECYCLING"
	RuleDoubleDipping  Rule = "DOUBLE_DIPPING"
)

// Flag is one triggered real-time rule.
type Flag struct {
	Rule     Rule     `json:"rule"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

// PatternResult is one detector's batch output. Cases holds the detector's typed rows.
type PatternResult struct {
	PatternName string   `json:"pattern_name"`
	RiskLevel   Severity `json:"risk_level"`
	Description string   `json:"description"`
	Cases       []any    `json:"cases"`
}

// Detector runs a global scan for one fraud topology.
type Detector interface {
	Name() string
	Risk() Severity
	Description() string
	// Detect returns nil when the pattern has no matches.
	Detect(ctx context.Context) (*PatternResult, error)
}

// Thresholds tunes the detectors.
type Thresholds struct {
	// CollusionBatch and CollusionRealtime are exclusive lower bounds on WORKS_WITH.count.
	CollusionBatch    int64
	CollusionRealtime int64
	// VelocityBatch is an inclusive lower bound, VelocityRealtime an exclusive one.
	VelocityBatch    int64
	VelocityRealtime int64
	// HighValueAmount is an exclusive lower bound on the claim amount.
	HighValueAmount    float64
	ResultLimit        int64
	DoubleDippingLimit int64
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		CollusionBatch:     5,
		CollusionRealtime:  10,
		VelocityBatch:      3,
		VelocityRealtime:   2,
		HighValueAmount:    50000,
		ResultLimit:        10,
		DoubleDippingLimit: 5,
	}
}

// SharedPIIRing is a set of persons using one SSN.
type SharedPIIRing struct {
	SharedSSN   string   `json:"shared_ssn"`
	Fraudsters  []string `json:"fraudsters"`
	CustomerIDs []string `json:"customer_ids"`
	RingSize    int64    `json:"ring_size"`
}

// CollusionCase is an agent-vendor pair with a high shared-claim count.
type CollusionCase struct {
	AgentID      string `json:"agent_id"`
	VendorID     string `json:"vendor_id"`
	SharedClaims int64  `json:"shared_claims"`
}

// AssetRecyclingCase is an asset referenced by several claims.
type AssetRecyclingCase struct {
	AssetType  string   `json:"asset_type"`
	AssetID    string   `json:"asset_id"`
	ClaimCount int64    `json:"claim_count"`
	ClaimIDs   []string `json:"claim_ids"`
}

// VelocityCase is a claimant with many claims.
type VelocityCase struct {
	CustomerID   string   `json:"customer_id"`
	CustomerName string   `json:"customer_name"`
	ClaimCount   int64    `json:"claim_count"`
	TotalClaimed float64  `json:"total_claimed"`
	Claims       []string `json:"claims"`
}

// DoubleDippingCase is a pair of claims with identical amount, loss date and type.
type DoubleDippingCase struct {
	Claim1 string  `json:"claim1"`
	Claim2 string  `json:"claim2"`
	Amount float64 `json:"amount"`
	Date   string  `json:"date"`
	Type   string  `json:"type"`
}

// SharedAddressCase is an address shared by several claimants.
type SharedAddressCase struct {
	Address     string   `json:"address"`
	City        string   `json:"city"`
	State       string   `json:"state"`
	PersonCount int64    `json:"person_count"`
	ClaimCount  int64    `json:"claim_count"`
	People      []string `json:"people"`
}
