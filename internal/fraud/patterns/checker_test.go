package patterns

import (
	"context"
	"errors"
	"testing"

	"github.com/mkd-neo4j/neo4j-claims-fraud/internal/claims"
	db "github.com/mkd-neo4j/neo4j-claims-fraud/internal/database/mocks"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

// graphState answers the real-time queries from canned rows keyed by query.
type graphState map[string][]*neo4j.Record

func (s graphState) expect(mockDB *db.MockService) {
	mockDB.EXPECT().
		ExecuteReadQuery(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, cypher string, _ map[string]any) ([]*neo4j.Record, error) {
			return s[cypher], nil
		}).
		AnyTimes()
}

func countRecord(count int64, ids ...any) *neo4j.Record {
	return row([]string{"claim_count", "claim_ids"}, count, ids)
}

func checkedClaim() claims.Record {
	return claims.Record{
		CustomerID:    "C1",
		TransactionID: "T9",
		SSN:           "123-45-6789",
		ClaimAmount:   60000,
		LossDate:      "2024-05-01",
		InsuranceType: claims.TypeMotor,
		VIN:           "VIN-1",
		AgentID:       "A1",
		VendorID:      "V1",
	}
}

func TestCheckerAllRulesFire(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockDB := db.NewMockService(ctrl)
	graphState{
		claimBaseQuery: {row([]string{"person", "claim"},
			map[string]any{"customer_id": "C1", "name": "Ada"},
			map[string]any{"transaction_id": "T9", "amount": 60000.0})},
		claimVelocityQuery:      {countRecord(3, "T1", "T2", "T9")},
		claimSharedPIIQuery:     {row([]string{"person_count", "customer_ids"}, int64(3), []any{"C1", "C2", "C3"})},
		claimCollusionQuery:     {row([]string{"shared_claims"}, int64(11))},
		claimAssetQuery:         {countRecord(2, "T1", "T2")},
		claimDoubleDippingQuery: {countRecord(1, "T4")},
	}.expect(mockDB)

	checker, err := NewChecker(mockDB, DefaultThresholds())
	require.NoError(t, err)

	eval, err := checker.Check(context.Background(), checkedClaim())
	require.NoError(t, err)

	assert.Equal(t, []Flag{
		{Rule: RuleVelocity, Severity: SeverityHigh, Message: "Customer has 3 claims on record"},
		{Rule: RuleSharedPII, Severity: SeverityCritical, Message: "SSN shared by 3 people"},
		{Rule: RuleCollusion, Severity: SeverityHigh, Message: "Agent-Vendor worked on 11 claims together"},
		{Rule: RuleHighValue, Severity: SeverityMedium, Message: "High value claim: $60,000.00"},
		{Rule: RuleAssetRecycling, Severity: SeverityHigh, Message: "Asset VIN-1 used in 2 previous claims: [T1, T2]"},
		{Rule: RuleDoubleDipping, Severity: SeverityHigh, Message: "Potential duplicate claim found: T4"},
	}, eval.Flags)

	ids := map[string]string{}
	for _, n := range eval.Evidence.Nodes {
		ids[n.ID] = n.Label
	}
	assert.Equal(t, "Person", ids["C1"])
	assert.Equal(t, "Claim", ids["T9"])
	assert.Equal(t, "SSN", ids["123-45-6789"])
	assert.Equal(t, "Person", ids["C2"])
	assert.Equal(t, "Asset", ids["VIN-1"])
	assert.Equal(t, "Claim", ids["T4"])
	assert.Equal(t, "Agent", ids["A1"])

	var worksWithCount any
	for _, e := range eval.Evidence.Edges {
		if e.Label == "WORKS_WITH" {
			worksWithCount = e.Data["count"]
		}
	}
	assert.Equal(t, int64(11), worksWithCount)
}

func TestCheckerEvidenceKeepsCollidingKeysApart(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockDB := db.NewMockService(ctrl)
	graphState{
		claimVelocityQuery:      {countRecord(3, "K1", "T2", "T3")},
		claimSharedPIIQuery:     {row([]string{"person_count", "customer_ids"}, int64(1), []any{"K1"})},
		claimCollusionQuery:     {row([]string{"shared_claims"}, int64(0))},
		claimAssetQuery:         {countRecord(1, "T2")},
		claimDoubleDippingQuery: {countRecord(0)},
	}.expect(mockDB)

	checker, err := NewChecker(mockDB, DefaultThresholds())
	require.NoError(t, err)

	eval, err := checker.Check(context.Background(), claims.Record{
		CustomerID:    "K1",
		TransactionID: "K1",
		ClaimAmount:   100,
		InsuranceType: claims.TypeMotor,
		VIN:           "K1",
	})
	require.NoError(t, err)

	labels := map[string]string{}
	for _, n := range eval.Evidence.Nodes {
		labels[n.ID] = n.Label
	}
	assert.Equal(t, map[string]string{
		"K1":       "Person",
		"Claim:K1": "Claim",
		"T2":       "Claim",
		"T3":       "Claim",
		"Asset:K1": "Asset",
	}, labels)

	edges := make([]string, 0, len(eval.Evidence.Edges))
	for _, e := range eval.Evidence.Edges {
		edges = append(edges, e.Source+" -"+e.Label+"-> "+e.Target)
	}
	assert.ElementsMatch(t, []string{
		"K1 -FILED-> Claim:K1",
		"K1 -FILED-> T2",
		"K1 -FILED-> T3",
		"Claim:K1 -INVOLVES-> Asset:K1",
		"T2 -INVOLVES-> Asset:K1",
	}, edges)
}

func TestCheckerBoundaries(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockDB := db.NewMockService(ctrl)
	graphState{
		claimVelocityQuery:      {countRecord(2, "T1", "T9")},
		claimSharedPIIQuery:     {row([]string{"person_count", "customer_ids"}, int64(1), []any{"C1"})},
		claimCollusionQuery:     {row([]string{"shared_claims"}, int64(10))},
		claimAssetQuery:         {countRecord(0)},
		claimDoubleDippingQuery: {countRecord(0)},
	}.expect(mockDB)

	checker, err := NewChecker(mockDB, DefaultThresholds())
	require.NoError(t, err)

	rec := checkedClaim()
	rec.ClaimAmount = 50000

	eval, err := checker.Check(context.Background(), rec)
	require.NoError(t, err)
	assert.Empty(t, eval.Flags)

	require.Len(t, eval.Evidence.Nodes, 2)
	require.Len(t, eval.Evidence.Edges, 1)
	assert.Equal(t, "FILED", eval.Evidence.Edges[0].Label)
}

func TestCheckerSkipsConditionalQueries(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockDB := db.NewMockService(ctrl)
	mockDB.EXPECT().ExecuteReadQuery(gomock.Any(), claimBaseQuery, gomock.Any()).Return(nil, nil)
	mockDB.EXPECT().ExecuteReadQuery(gomock.Any(), claimVelocityQuery, gomock.Any()).Return([]*neo4j.Record{countRecord(1, "T9")}, nil)

	checker, err := NewChecker(mockDB, DefaultThresholds())
	require.NoError(t, err)

	eval, err := checker.Check(context.Background(), claims.Record{CustomerID: "C1", TransactionID: "T9", InsuranceType: "Health"})
	require.NoError(t, err)
	assert.Empty(t, eval.Flags)
}

func TestCheckerErrors(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	t.Run("missing customer id", func(t *testing.T) {
		mockDB := db.NewMockService(ctrl)
		checker, err := NewChecker(mockDB, DefaultThresholds())
		require.NoError(t, err)

		rec := checkedClaim()
		rec.CustomerID = ""
		_, err = checker.Check(context.Background(), rec)

		var missing *claims.MissingIdentifierError
		assert.True(t, errors.As(err, &missing))
	})

	t.Run("query failure aborts the check", func(t *testing.T) {
		mockDB := db.NewMockService(ctrl)
		mockDB.EXPECT().ExecuteReadQuery(gomock.Any(), claimBaseQuery, gomock.Any()).Return(nil, nil)
		mockDB.EXPECT().ExecuteReadQuery(gomock.Any(), claimVelocityQuery, gomock.Any()).Return(nil, errors.New("connection reset"))

		checker, err := NewChecker(mockDB, DefaultThresholds())
		require.NoError(t, err)

		_, err = checker.Check(context.Background(), checkedClaim())
		assert.ErrorContains(t, err, "VELOCITY_FRAUD check failed")
		assert.ErrorContains(t, err, "connection reset")
	})
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "$60,000.00", FormatAmount(60000))
	assert.Equal(t, "$1,234,567.89", FormatAmount(1234567.89))
	assert.Equal(t, "$50,000.01", FormatAmount(50000.01))
}
