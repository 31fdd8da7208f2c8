package patterns

import (
	"context"
	"fmt"

	"github.com/mkd-neo4j/neo4j-claims-fraud/internal/database"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// queryDetector runs one read query and decodes each row into a case.
type queryDetector struct {
	db          database.Service
	name        string
	risk        Severity
	description string
	query       string
	params      map[string]any
	decode      func(r *database.RowReader) any
}

func (d *queryDetector) Name() string        { return d.name }
func (d *queryDetector) Risk() Severity      { return d.risk }
func (d *queryDetector) Description() string { return d.description }

func (d *queryDetector) Detect(ctx context.Context) (*PatternResult, error) {
	records, err := d.db.ExecuteReadQuery(ctx, d.query, d.params)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", d.name, err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	cases := make([]any, 0, len(records))
	for _, record := range records {
		c, err := decodeRow(record, d.decode)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", d.name, err)
		}
		cases = append(cases, c)
	}

	return &PatternResult{
		PatternName: d.name,
		RiskLevel:   d.risk,
		Description: d.description,
		Cases:       cases,
	}, nil
}

func decodeRow(record *neo4j.Record, decode func(r *database.RowReader) any) (any, error) {
	r := database.NewRowReader(record)
	c := decode(r)
	if r.Err() != nil {
		return nil, r.Err()
	}
	return c, nil
}

// Pattern names as reported by the batch scan.
const (
	SharedPIIPattern      = "Shared PII Rings (Same SSN)"
	CollusionPattern      = "Collusive Provider Rings"
	AssetRecyclingPattern = "Asset Recycling"
	VelocityPattern       = "Velocity Fraud"
	DoubleDippingPattern  = "Double Dipping"
	SharedAddressPattern  = "Multiple Claimants at Same Address"
)

func NewSharedPIIDetector(db database.Service, t Thresholds) Detector {
	return &queryDetector{
		db:          db,
		name:        SharedPIIPattern,
		risk:        SeverityCritical,
		description: "Multiple people using the same Social Security Number. Strong indicator of identity theft or a synthetic identity ring.",
		query:       sharedPIIQuery,
		params:      map[string]any{"limit": t.ResultLimit},
		decode: func(r *database.RowReader) any {
			return SharedPIIRing{
				SharedSSN:   r.Str("shared_ssn"),
				Fraudsters:  r.Strings("fraudsters"),
				CustomerIDs: r.Strings("customer_ids"),
				RingSize:    r.Int("ring_size"),
			}
		},
	}
}

func NewCollusionDetector(db database.Service, t Thresholds) Detector {
	return &queryDetector{
		db:          db,
		name:        CollusionPattern,
		risk:        SeverityHigh,
		description: "Agent and vendor pairs that appear together on an unusually high number of claims. Indicates possible kickbacks or staged repairs.",
		query:       collusionQuery,
		params:      map[string]any{"threshold": t.CollusionBatch, "limit": t.ResultLimit},
		decode: func(r *database.RowReader) any {
			return CollusionCase{
				AgentID:      r.Str("agent_id"),
				VendorID:     r.Str("vendor_id"),
				SharedClaims: r.Int("shared_claims"),
			}
		},
	}
}

func NewAssetRecyclingDetector(db database.Service, t Thresholds) Detector {
	return &queryDetector{
		db:          db,
		name:        AssetRecyclingPattern,
		risk:        SeverityHigh,
		description: "The same vehicle, device or property claimed more than once. The asset may have been sold on or the loss staged repeatedly.",
		query:       assetRecyclingQuery,
		params:      map[string]any{"limit": t.ResultLimit},
		decode: func(r *database.RowReader) any {
			return AssetRecyclingCase{
				AssetType:  r.Str("asset_type"),
				AssetID:    r.Str("asset_id"),
				ClaimCount: r.Int("claim_count"),
				ClaimIDs:   r.Strings("claim_ids"),
			}
		},
	}
}

func NewVelocityDetector(db database.Service, t Thresholds) Detector {
	return &queryDetector{
		db:          db,
		name:        VelocityPattern,
		risk:        SeverityHigh,
		description: "Claimants filing an unusually high number of claims.",
		query:       velocityQuery,
		params:      map[string]any{"threshold": t.VelocityBatch, "limit": t.ResultLimit},
		decode: func(r *database.RowReader) any {
			return VelocityCase{
				CustomerID:   r.Str("customer_id"),
				CustomerName: r.Str("customer_name"),
				ClaimCount:   r.Int("claim_count"),
				TotalClaimed: r.Float("total_claimed"),
				Claims:       r.Strings("claims"),
			}
		},
	}
}

func NewDoubleDippingDetector(db database.Service, t Thresholds) Detector {
	return &queryDetector{
		db:          db,
		name:        DoubleDippingPattern,
		risk:        SeverityHigh,
		description: "Distinct claims with the same amount, loss date and insurance type. The same loss may have been claimed twice.",
		query:       doubleDippingQuery,
		params:      map[string]any{"limit": t.DoubleDippingLimit},
		decode: func(r *database.RowReader) any {
			return DoubleDippingCase{
				Claim1: r.Str("claim1"),
				Claim2: r.Str("claim2"),
				Amount: r.Float("amount"),
				Date:   r.Str("date"),
				Type:   r.Str("type"),
			}
		},
	}
}

func NewSharedAddressDetector(db database.Service, t Thresholds) Detector {
	return &queryDetector{
		db:          db,
		name:        SharedAddressPattern,
		risk:        SeverityMedium,
		description: "Several claimants at one address filing many claims between them. May indicate a fraud ring operating from one location.",
		query:       sharedAddressQuery,
		params:      map[string]any{"limit": t.ResultLimit},
		decode: func(r *database.RowReader) any {
			return SharedAddressCase{
				Address:     r.Str("address"),
				City:        r.Str("city"),
				State:       r.Str("state"),
				PersonCount: r.Int("person_count"),
				ClaimCount:  r.Int("claim_count"),
				People:      r.Strings("people"),
			}
		},
	}
}

// DefaultDetectors returns the six detectors in reporting order.
func DefaultDetectors(db database.Service, t Thresholds) []Detector {
	return []Detector{
		NewSharedPIIDetector(db, t),
		NewCollusionDetector(db, t),
		NewAssetRecyclingDetector(db, t),
		NewVelocityDetector(db, t),
		NewDoubleDippingDetector(db, t),
		NewSharedAddressDetector(db, t),
	}
}
