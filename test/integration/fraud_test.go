//go:build integration

package integration

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mkd-neo4j/neo4j-claims-fraud/internal/claims"
	"github.com/mkd-neo4j/neo4j-claims-fraud/internal/fraud"
	"github.com/mkd-neo4j/neo4j-claims-fraud/internal/fraud/patterns"
	"github.com/mkd-neo4j/neo4j-claims-fraud/internal/fraud/scoring"
	"github.com/mkd-neo4j/neo4j-claims-fraud/internal/tools/fraud/ingest_claim"
	"github.com/mkd-neo4j/neo4j-claims-fraud/test/integration/helpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func motorClaim(transactionID, customerID string, amount float64) claims.Record {
	return claims.Record{
		TransactionID: transactionID,
		CustomerID:    customerID,
		CustomerName:  "Customer " + customerID,
		InsuranceType: claims.TypeMotor,
		ClaimAmount:   amount,
		LossDate:      "2024-03-01",
	}
}

func TestIngestIsIdempotent(t *testing.T) {
	tc := helpers.NewTestContext(t, dbs.GetDriver())

	rec := motorClaim("T-1", "C-1", 1200)
	rec.SSN = "111-22-3333"
	rec.AddressLine1 = "1 Main St"
	rec.City = "Springfield"
	rec.PostalCode = "12345"
	rec.PolicyNumber = "P-1"
	rec.VIN = "VIN-1"

	require.NoError(t, tc.Fraud.Ingest(tc.Ctx, rec))
	require.NoError(t, tc.Fraud.Ingest(tc.Ctx, rec))

	for label, want := range map[string]int64{
		"Person": 1, "Claim": 1, "SSN": 1, "Address": 1, "Policy": 1, "Asset": 1,
	} {
		assert.Equal(t, want, tc.Count(fmt.Sprintf("MATCH (n:%s) RETURN count(n) AS n", label), nil), label)
	}
	for _, rel := range []string{"FILED", "HAS_SSN", "LIVES_AT", "OWNS_POLICY", "COVERED_BY", "INVOLVES"} {
		assert.Equal(t, int64(1), tc.Count(fmt.Sprintf("MATCH ()-[r:%s]->() RETURN count(r) AS n", rel), nil), rel)
	}
}

func TestWorksWithCountsClaims(t *testing.T) {
	tc := helpers.NewTestContext(t, dbs.GetDriver())

	const claimCount = 4
	for i := 0; i < claimCount; i++ {
		rec := motorClaim(fmt.Sprintf("T-%d", i), fmt.Sprintf("C-%d", i), 500)
		rec.AgentID = "A-1"
		rec.VendorID = "V-1"
		require.NoError(t, tc.Fraud.Ingest(tc.Ctx, rec))
	}

	assert.Equal(t, int64(1), tc.Count("MATCH (:Agent)-[r:WORKS_WITH]->(:Vendor) RETURN count(r) AS n", nil))
	assert.Equal(t, int64(claimCount), tc.Count("MATCH (:Agent {agent_id: 'A-1'})-[r:WORKS_WITH]->(:Vendor {vendor_id: 'V-1'}) RETURN r.count AS n", nil))
}

func TestSharedSSNFlagsClaimant(t *testing.T) {
	tc := helpers.NewTestContext(t, dbs.GetDriver())

	first := motorClaim("T-1", "C-1", 900)
	first.SSN = "999-00-1111"
	first.LossDate = "2024-01-01"
	second := motorClaim("T-2", "C-2", 700)
	second.SSN = "999-00-1111"
	second.LossDate = "2024-02-01"

	result, err := tc.Fraud.IngestAndCheck(tc.Ctx, first)
	require.NoError(t, err)
	assert.NotContains(t, result.Check.RulesTriggered, patterns.RuleSharedPII)

	result, err = tc.Fraud.IngestAndCheck(tc.Ctx, second)
	require.NoError(t, err)
	assert.Equal(t, []patterns.Rule{patterns.RuleSharedPII}, result.Check.RulesTriggered)
	assert.Equal(t, 40, result.Check.FraudScore)
	assert.Equal(t, scoring.ManualReview, result.Check.Recommendation)
	assert.True(t, result.Check.IsFraudulent)

	scan, err := tc.Fraud.DetectPattern(tc.Ctx, patterns.SharedPIIPattern)
	require.NoError(t, err)
	require.Len(t, scan.Cases, 1)
	ring := scan.Cases[0].(patterns.SharedPIIRing)
	assert.ElementsMatch(t, []string{"C-1", "C-2"}, ring.CustomerIDs)
}

func TestAssetRecyclingExcludesOwnClaim(t *testing.T) {
	tc := helpers.NewTestContext(t, dbs.GetDriver())

	first := motorClaim("T-1", "C-1", 800)
	first.VIN = "VIN-42"
	first.LossDate = "2024-01-01"

	result, err := tc.Fraud.IngestAndCheck(tc.Ctx, first)
	require.NoError(t, err)
	assert.Empty(t, result.Check.RulesTriggered)

	// re-ingesting the same claim does not make the asset look recycled
	result, err = tc.Fraud.IngestAndCheck(tc.Ctx, first)
	require.NoError(t, err)
	assert.Empty(t, result.Check.RulesTriggered)

	second := motorClaim("T-2", "C-2", 600)
	second.VIN = "VIN-42"
	second.LossDate = "2024-02-01"

	result, err = tc.Fraud.IngestAndCheck(tc.Ctx, second)
	require.NoError(t, err)
	assert.Equal(t, []patterns.Rule{patterns.RuleAssetRecycling}, result.Check.RulesTriggered)
	assert.Equal(t, 30, result.Check.FraudScore)
	assert.Equal(t, scoring.Approve, result.Check.Recommendation)
}

func TestDoubleDippingIsSymmetric(t *testing.T) {
	tc := helpers.NewTestContext(t, dbs.GetDriver())

	first := motorClaim("T-1", "C-1", 4200)
	second := motorClaim("T-2", "C-2", 4200)
	unrelated := motorClaim("T-3", "C-3", 4300)
	for _, rec := range []claims.Record{first, second, unrelated} {
		require.NoError(t, tc.Fraud.Ingest(tc.Ctx, rec))
	}

	for rec, duplicate := range map[*claims.Record]string{&first: "T-2", &second: "T-1"} {
		check, err := tc.Fraud.Check(tc.Ctx, *rec)
		require.NoError(t, err)
		assert.Equal(t, []patterns.Rule{patterns.RuleDoubleDipping}, check.RulesTriggered, rec.TransactionID)
		assert.Equal(t, []string{"Potential duplicate claim found: " + duplicate}, check.Messages, rec.TransactionID)
		assert.Equal(t, 45, check.FraudScore)
	}

	check, err := tc.Fraud.Check(tc.Ctx, unrelated)
	require.NoError(t, err)
	assert.Empty(t, check.RulesTriggered)
	assert.Equal(t, 0, check.FraudScore)

	scan, err := tc.Fraud.DetectPattern(tc.Ctx, patterns.DoubleDippingPattern)
	require.NoError(t, err)
	require.Len(t, scan.Cases, 1)
	assert.Equal(t, patterns.DoubleDippingCase{
		Claim1: "T-1",
		Claim2: "T-2",
		Amount: 4200,
		Date:   "2024-03-01",
		Type:   claims.TypeMotor,
	}, scan.Cases[0])
}

func TestAssetRecyclingReportsTheOtherClaimBothWays(t *testing.T) {
	tc := helpers.NewTestContext(t, dbs.GetDriver())

	first := motorClaim("T-1", "C-1", 800)
	first.VIN = "RECYCLEDVIN0001"
	first.LossDate = "2024-01-01"
	second := motorClaim("T-2", "C-2", 600)
	second.VIN = "RECYCLEDVIN0001"
	second.LossDate = "2024-02-01"
	require.NoError(t, tc.Fraud.Ingest(tc.Ctx, first))
	require.NoError(t, tc.Fraud.Ingest(tc.Ctx, second))

	for id, other := range map[string]string{"T-1": "T-2", "T-2": "T-1"} {
		check, err := tc.Fraud.CheckByID(tc.Ctx, id)
		require.NoError(t, err)
		assert.Equal(t, []patterns.Rule{patterns.RuleAssetRecycling}, check.RulesTriggered, id)
		assert.Equal(t, []string{"Asset RECYCLEDVIN0001 used in 1 previous claims: [" + other + "]"}, check.Messages, id)
		assert.Equal(t, 30, check.FraudScore)
	}
}

func TestVelocityFlagsOnlyTheThirdClaim(t *testing.T) {
	tc := helpers.NewTestContext(t, dbs.GetDriver())

	for i, lossDate := range []string{"2024-01-01", "2024-02-01", "2024-03-01"} {
		rec := motorClaim(fmt.Sprintf("T-%d", i+1), "C-1", float64(100*(i+1)))
		rec.LossDate = lossDate

		result, err := tc.Fraud.IngestAndCheck(tc.Ctx, rec)
		require.NoError(t, err)

		if i < 2 {
			assert.Empty(t, result.Check.RulesTriggered, rec.TransactionID)
			continue
		}
		assert.Equal(t, []patterns.Rule{patterns.RuleVelocity}, result.Check.RulesTriggered)
		assert.Equal(t, []string{"Customer has 3 claims on record"}, result.Check.Messages)
		assert.Equal(t, 25, result.Check.FraudScore)
		assert.Equal(t, scoring.Approve, result.Check.Recommendation)
	}
}

func TestEndToEndRecycledVehicle(t *testing.T) {
	original := claims.Record{
		CustomerID:    "C1",
		TransactionID: "T1",
		SSN:           "999-99-9999",
		ClaimAmount:   60000,
		InsuranceType: claims.TypeMotor,
		VIN:           "ABC123",
		AgentID:       "A1",
		VendorID:      "V1",
	}

	tests := []struct {
		name           string
		amount         float64
		wantRules      []patterns.Rule
		wantScore      int
		wantDecision   scoring.Recommendation
		wantFraudulent bool
	}{
		{
			name:           "high value repeat",
			amount:         60000,
			wantRules:      []patterns.Rule{patterns.RuleHighValue, patterns.RuleAssetRecycling},
			wantScore:      45,
			wantDecision:   scoring.ManualReview,
			wantFraudulent: true,
		},
		{
			name:         "ordinary repeat",
			amount:       5000,
			wantRules:    []patterns.Rule{patterns.RuleAssetRecycling},
			wantScore:    30,
			wantDecision: scoring.Approve,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tc := helpers.NewTestContext(t, dbs.GetDriver())

			first, err := tc.Fraud.IngestAndCheck(tc.Ctx, original)
			require.NoError(t, err)
			assert.Equal(t, []patterns.Rule{patterns.RuleHighValue}, first.Check.RulesTriggered)
			assert.Equal(t, 15, first.Check.FraudScore)
			assert.Equal(t, scoring.Approve, first.Check.Recommendation)

			repeat := original
			repeat.TransactionID = "T2"
			repeat.ClaimAmount = tt.amount

			result, err := tc.Fraud.IngestAndCheck(tc.Ctx, repeat)
			require.NoError(t, err)
			assert.Equal(t, tt.wantRules, result.Check.RulesTriggered)
			assert.Equal(t, tt.wantScore, result.Check.FraudScore)
			assert.Equal(t, tt.wantDecision, result.Check.Recommendation)
			assert.Equal(t, tt.wantFraudulent, result.Check.IsFraudulent)
			assert.Contains(t, result.Check.Messages, "Asset ABC123 used in 1 previous claims: [T1]")

			assert.Equal(t, int64(2), tc.Count("MATCH (:Agent {agent_id: 'A1'})-[r:WORKS_WITH]->(:Vendor {vendor_id: 'V1'}) RETURN r.count AS n", nil))
		})
	}
}

func TestEvaluateOverStoredClaims(t *testing.T) {
	tc := helpers.NewTestContext(t, dbs.GetDriver())

	first := motorClaim("T-1", "C-1", 4200)
	second := motorClaim("T-2", "C-2", 4200)
	big := motorClaim("T-3", "C-3", 90000)
	big.LossDate = "2024-04-01"
	for _, rec := range []claims.Record{first, second, big} {
		require.NoError(t, tc.Fraud.Ingest(tc.Ctx, rec))
	}

	result, err := tc.Fraud.Evaluate(tc.Ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 3, result.TotalClaimsEvaluated)
	assert.Equal(t, 0, result.FailedClaims)
	assert.Equal(t, 2, result.FraudDetected)
	assert.Equal(t, 66.67, result.FraudRate)
	assert.Equal(t, 2, result.ScoreDistribution["40-60"])
	assert.Equal(t, 1, result.ScoreDistribution["0-20"])

	require.Len(t, result.TopRiskClaims, 3)
	assert.Equal(t, 45, result.TopRiskClaims[0].FraudScore)
	assert.Equal(t, "T-3", result.TopRiskClaims[2].ClaimID)

	require.Len(t, result.PatternSummary, 1)
	assert.Equal(t, patterns.DoubleDippingPattern, result.PatternSummary[0].PatternName)
	assert.Equal(t, 1, result.PatternSummary[0].CasesFound)
}

func TestCombinedRulesReject(t *testing.T) {
	tc := helpers.NewTestContext(t, dbs.GetDriver())

	prior := motorClaim("T-1", "C-1", 300)
	prior.SSN = "555-55-5555"
	prior.VIN = "VIN-7"
	prior.LossDate = "2023-06-01"
	require.NoError(t, tc.Fraud.Ingest(tc.Ctx, prior))

	suspect := motorClaim("T-2", "C-2", 60000)
	suspect.SSN = "555-55-5555"
	suspect.VIN = "VIN-7"

	result, err := tc.Fraud.IngestAndCheck(tc.Ctx, suspect)
	require.NoError(t, err)

	check := result.Check
	assert.ElementsMatch(t, []patterns.Rule{
		patterns.RuleSharedPII, patterns.RuleHighValue, patterns.RuleAssetRecycling,
	}, check.RulesTriggered)
	assert.Equal(t, 85, check.FraudScore)
	assert.Equal(t, scoring.Reject, check.Recommendation)
	assert.True(t, check.IsFraudulent)
	require.NotNil(t, check.GraphVisualization)
	assert.NotEmpty(t, check.GraphVisualization.Edges)

	graph, err := tc.Fraud.Graph(tc.Ctx, "T-2")
	require.NoError(t, err)
	assert.NotEmpty(t, graph.Nodes)
}

func TestIngestClaimTool(t *testing.T) {
	tc := helpers.NewTestContext(t, dbs.GetDriver())

	result := tc.CallTool(ingest_claim.Handler(tc.Deps), map[string]any{
		"claim": map[string]any{
			"TRANSACTION_ID": "T-100",
			"CUSTOMER_ID":    "C-100",
			"INSURANCE_TYPE": "motor",
			"CLAIM_AMOUNT":   "75000",
			"VIN":            "VIN-100",
		},
	})

	var ingested fraud.IngestResult
	require.NoError(t, json.Unmarshal([]byte(result.Content[0].(mcp.TextContent).Text), &ingested))
	assert.True(t, ingested.Success)
	assert.Equal(t, "T-100", ingested.ClaimID)
	assert.Equal(t, 15, ingested.FraudScore)
	assert.Equal(t, scoring.Approve, ingested.Check.Recommendation)

	assert.Equal(t, int64(1), tc.Count("MATCH (c:Claim {transaction_id: $id})-[:INVOLVES]->(:Asset {type: 'Vehicle'}) RETURN count(c) AS n", map[string]any{"id": "T-100"}))
}
