package patterns

import (
	"context"
	"errors"
	"testing"

	db "github.com/mkd-neo4j/neo4j-claims-fraud/internal/database/mocks"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func row(keys []string, values ...any) *neo4j.Record {
	return &neo4j.Record{Keys: keys, Values: values}
}

func TestDetectors(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	thresholds := DefaultThresholds()

	tests := []struct {
		name       string
		build      func(d *db.MockService) Detector
		query      string
		params     map[string]any
		records    []*neo4j.Record
		wantName   string
		wantRisk   Severity
		wantFirst  any
		wantLength int
	}{
		{
			name:   "shared pii ring",
			build:  func(d *db.MockService) Detector { return NewSharedPIIDetector(d, thresholds) },
			query:  sharedPIIQuery,
			params: map[string]any{"limit": int64(10)},
			records: []*neo4j.Record{
				row([]string{"shared_ssn", "fraudsters", "customer_ids", "ring_size"},
					"123-45-6789", []any{"Ada", "Bob", "Cy"}, []any{"C1", "C2", "C3"}, int64(3)),
			},
			wantName:   SharedPIIPattern,
			wantRisk:   SeverityCritical,
			wantFirst:  SharedPIIRing{SharedSSN: "123-45-6789", Fraudsters: []string{"Ada", "Bob", "Cy"}, CustomerIDs: []string{"C1", "C2", "C3"}, RingSize: 3},
			wantLength: 1,
		},
		{
			name:   "collusion uses batch threshold",
			build:  func(d *db.MockService) Detector { return NewCollusionDetector(d, thresholds) },
			query:  collusionQuery,
			params: map[string]any{"threshold": int64(5), "limit": int64(10)},
			records: []*neo4j.Record{
				row([]string{"agent_id", "vendor_id", "shared_claims"}, "A1", "V1", int64(6)),
				row([]string{"agent_id", "vendor_id", "shared_claims"}, "A2", "V9", int64(6)),
			},
			wantName:   CollusionPattern,
			wantRisk:   SeverityHigh,
			wantFirst:  CollusionCase{AgentID: "A1", VendorID: "V1", SharedClaims: 6},
			wantLength: 2,
		},
		{
			name:   "asset recycling",
			build:  func(d *db.MockService) Detector { return NewAssetRecyclingDetector(d, thresholds) },
			query:  assetRecyclingQuery,
			params: map[string]any{"limit": int64(10)},
			records: []*neo4j.Record{
				row([]string{"asset_type", "asset_id", "claim_count", "claim_ids"}, "Vehicle", "VIN-9", int64(2), []any{"T1", "T2"}),
			},
			wantName:   AssetRecyclingPattern,
			wantRisk:   SeverityHigh,
			wantFirst:  AssetRecyclingCase{AssetType: "Vehicle", AssetID: "VIN-9", ClaimCount: 2, ClaimIDs: []string{"T1", "T2"}},
			wantLength: 1,
		},
		{
			name:   "velocity carries total claimed",
			build:  func(d *db.MockService) Detector { return NewVelocityDetector(d, thresholds) },
			query:  velocityQuery,
			params: map[string]any{"threshold": int64(3), "limit": int64(10)},
			records: []*neo4j.Record{
				row([]string{"customer_id", "customer_name", "claim_count", "total_claimed", "claims"}, "C1", nil, int64(3), 4500.0, []any{"T1", "T2", "T3"}),
			},
			wantName:   VelocityPattern,
			wantRisk:   SeverityHigh,
			wantFirst:  VelocityCase{CustomerID: "C1", ClaimCount: 3, TotalClaimed: 4500, Claims: []string{"T1", "T2", "T3"}},
			wantLength: 1,
		},
		{
			name:   "double dipping uses its own limit",
			build:  func(d *db.MockService) Detector { return NewDoubleDippingDetector(d, thresholds) },
			query:  doubleDippingQuery,
			params: map[string]any{"limit": int64(5)},
			records: []*neo4j.Record{
				row([]string{"claim1", "claim2", "amount", "date", "type"}, "T1", "T2", 5000.0, "2024-01-01", "Motor"),
			},
			wantName:   DoubleDippingPattern,
			wantRisk:   SeverityHigh,
			wantFirst:  DoubleDippingCase{Claim1: "T1", Claim2: "T2", Amount: 5000, Date: "2024-01-01", Type: "Motor"},
			wantLength: 1,
		},
		{
			name:   "shared address",
			build:  func(d *db.MockService) Detector { return NewSharedAddressDetector(d, thresholds) },
			query:  sharedAddressQuery,
			params: map[string]any{"limit": int64(10)},
			records: []*neo4j.Record{
				row([]string{"address", "city", "state", "person_count", "claim_count", "people"}, "1 Main", "Springfield", "IL", int64(2), int64(3), []any{"Ada", "Bob"}),
			},
			wantName:   SharedAddressPattern,
			wantRisk:   SeverityMedium,
			wantFirst:  SharedAddressCase{Address: "1 Main", City: "Springfield", State: "IL", PersonCount: 2, ClaimCount: 3, People: []string{"Ada", "Bob"}},
			wantLength: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockDB := db.NewMockService(ctrl)
			mockDB.EXPECT().ExecuteReadQuery(gomock.Any(), tt.query, tt.params).Return(tt.records, nil)

			detector := tt.build(mockDB)
			assert.Equal(t, tt.wantName, detector.Name())
			assert.Equal(t, tt.wantRisk, detector.Risk())
			assert.NotEmpty(t, detector.Description())

			result, err := detector.Detect(context.Background())
			require.NoError(t, err)
			require.NotNil(t, result)
			assert.Equal(t, tt.wantName, result.PatternName)
			assert.Equal(t, tt.wantRisk, result.RiskLevel)
			require.Len(t, result.Cases, tt.wantLength)
			assert.Equal(t, tt.wantFirst, result.Cases[0])
		})
	}
}

func TestDetectorNoMatches(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockDB := db.NewMockService(ctrl)
	mockDB.EXPECT().ExecuteReadQuery(gomock.Any(), gomock.Any(), gomock.Any()).Return([]*neo4j.Record{}, nil)

	result, err := NewVelocityDetector(mockDB, DefaultThresholds()).Detect(context.Background())
	require.NoError(t, err)
	assert.Nil(t, result)
}

func TestDetectorErrors(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	t.Run("query failure names the pattern", func(t *testing.T) {
		mockDB := db.NewMockService(ctrl)
		mockDB.EXPECT().ExecuteReadQuery(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, errors.New("timeout"))

		_, err := NewCollusionDetector(mockDB, DefaultThresholds()).Detect(context.Background())
		assert.ErrorContains(t, err, CollusionPattern)
		assert.ErrorContains(t, err, "timeout")
	})

	t.Run("unexpected column type", func(t *testing.T) {
		mockDB := db.NewMockService(ctrl)
		mockDB.EXPECT().ExecuteReadQuery(gomock.Any(), gomock.Any(), gomock.Any()).Return([]*neo4j.Record{
			row([]string{"agent_id", "vendor_id", "shared_claims"}, "A1", "V1", "many"),
		}, nil)

		_, err := NewCollusionDetector(mockDB, DefaultThresholds()).Detect(context.Background())
		assert.ErrorContains(t, err, "shared_claims")
	})

	t.Run("missing column", func(t *testing.T) {
		mockDB := db.NewMockService(ctrl)
		mockDB.EXPECT().ExecuteReadQuery(gomock.Any(), gomock.Any(), gomock.Any()).Return([]*neo4j.Record{
			row([]string{"agent_id"}, "A1"),
		}, nil)

		_, err := NewCollusionDetector(mockDB, DefaultThresholds()).Detect(context.Background())
		assert.ErrorContains(t, err, "vendor_id")
	})
}
