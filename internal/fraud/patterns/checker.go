package patterns

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/mkd-neo4j/neo4j-claims-fraud/internal/claims"
	"github.com/mkd-neo4j/neo4j-claims-fraud/internal/database"
	"github.com/mkd-neo4j/neo4j-claims-fraud/internal/fraud/visualization"
)

// ClaimCheck evaluates one rule for a single claim.
// A hit returns a flag and records its evidence in g; a miss returns nil.
type ClaimCheck interface {
	Rule() Rule
	Check(ctx context.Context, rec claims.Record, g *visualization.Builder) (*Flag, error)
}

// Evaluation is the outcome of a real-time check.
type Evaluation struct {
	Flags    []Flag
	Evidence *visualization.Graph
}

// Checker runs the real-time checks in a fixed order.
type Checker struct {
	db     database.Service
	checks []ClaimCheck
}

func NewChecker(db database.Service, t Thresholds) (*Checker, error) {
	if db == nil {
		return nil, errors.New("database service cannot be nil")
	}
	return &Checker{
		db: db,
		checks: []ClaimCheck{
			&velocityCheck{db: db, threshold: t.VelocityRealtime},
			&sharedPIICheck{db: db},
			&collusionCheck{db: db, threshold: t.CollusionRealtime},
			&highValueCheck{threshold: t.HighValueAmount},
			&assetRecyclingCheck{db: db},
			&doubleDippingCheck{db: db},
		},
	}, nil
}

// Check evaluates every rule for rec. Any query failure aborts the check.
func (c *Checker) Check(ctx context.Context, rec claims.Record) (*Evaluation, error) {
	if err := rec.Validate(); err != nil {
		return nil, err
	}

	g := visualization.NewBuilder()
	if err := c.addBase(ctx, rec, g); err != nil {
		return nil, err
	}

	flags := make([]Flag, 0, len(c.checks))
	for _, check := range c.checks {
		flag, err := check.Check(ctx, rec, g)
		if err != nil {
			return nil, fmt.Errorf("%s check failed for claim %s: %w", check.Rule(), rec.TransactionID, err)
		}
		if flag != nil {
			flags = append(flags, *flag)
		}
	}

	slog.Debug("claim checked", "transactionId", rec.TransactionID, "flags", len(flags))
	return &Evaluation{Flags: flags, Evidence: g.Graph()}, nil
}

// addBase seeds the evidence graph with the claimant, the claim and the FILED edge.
func (c *Checker) addBase(ctx context.Context, rec claims.Record, g *visualization.Builder) error {
	records, err := c.db.ExecuteReadQuery(ctx, claimBaseQuery, map[string]any{"transaction_id": rec.TransactionID})
	if err != nil {
		return fmt.Errorf("failed to load claim %s: %w", rec.TransactionID, err)
	}

	personData := map[string]any{"customer_id": rec.CustomerID}
	claimData := map[string]any{"transaction_id": rec.TransactionID}
	if len(records) > 0 {
		if p, ok := records[0].Get("person"); ok {
			if props, ok := p.(map[string]any); ok {
				personData = database.SanitizeProps(props)
			}
		}
		if cl, ok := records[0].Get("claim"); ok {
			if props, ok := cl.(map[string]any); ok {
				claimData = database.SanitizeProps(props)
			}
		}
	}

	person := g.AddNode(rec.CustomerID, "Person", personData)
	claim := g.AddNode(rec.TransactionID, "Claim", claimData)
	g.AddEdge(person, claim, "FILED", nil)
	return nil
}

// countRow reads the claim_count / claim_ids row shared by several checks.
func countRow(ctx context.Context, db database.Service, query string, params map[string]any) (int64, []string, error) {
	records, err := db.ExecuteReadQuery(ctx, query, params)
	if err != nil {
		return 0, nil, err
	}
	if len(records) == 0 {
		return 0, nil, nil
	}
	r := database.NewRowReader(records[0])
	count, ids := r.Int("claim_count"), r.Strings("claim_ids")
	return count, ids, r.Err()
}

type velocityCheck struct {
	db        database.Service
	threshold int64
}

func (c *velocityCheck) Rule() Rule { return RuleVelocity }

func (c *velocityCheck) Check(ctx context.Context, rec claims.Record, g *visualization.Builder) (*Flag, error) {
	count, ids, err := countRow(ctx, c.db, claimVelocityQuery, map[string]any{"customer_id": rec.CustomerID})
	if err != nil {
		return nil, err
	}
	if count <= c.threshold {
		return nil, nil
	}

	for _, id := range ids {
		if id == rec.TransactionID {
			continue
		}
		other := g.AddNode(id, "Claim", map[string]any{"transaction_id": id})
		g.AddEdge(g.ID("Person", rec.CustomerID), other, "FILED", nil)
	}
	return &Flag{
		Rule:     RuleVelocity,
		Severity: SeverityHigh,
		Message:  fmt.Sprintf("Customer has %d claims on record", count),
	}, nil
}

type sharedPIICheck struct {
	db database.Service
}

func (c *sharedPIICheck) Rule() Rule { return RuleSharedPII }

func (c *sharedPIICheck) Check(ctx context.Context, rec claims.Record, g *visualization.Builder) (*Flag, error) {
	if rec.SSN == "" {
		return nil, nil
	}
	records, err := c.db.ExecuteReadQuery(ctx, claimSharedPIIQuery, map[string]any{"ssn": rec.SSN})
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}

	r := database.NewRowReader(records[0])
	count, customers := r.Int("person_count"), r.Strings("customer_ids")
	if r.Err() != nil {
		return nil, r.Err()
	}
	if count <= 1 {
		return nil, nil
	}

	ssn := g.AddNode(rec.SSN, "SSN", map[string]any{"value": rec.SSN})
	g.AddEdge(g.ID("Person", rec.CustomerID), ssn, "HAS_SSN", nil)
	for _, id := range customers {
		if id == rec.CustomerID {
			continue
		}
		other := g.AddNode(id, "Person", map[string]any{"customer_id": id})
		g.AddEdge(other, ssn, "HAS_SSN", nil)
	}
	return &Flag{
		Rule:     RuleSharedPII,
		Severity: SeverityCritical,
		Message:  fmt.Sprintf("SSN shared by %d people", count),
	}, nil
}

type collusionCheck struct {
	db        database.Service
	threshold int64
}

func (c *collusionCheck) Rule() Rule { return RuleCollusion }

func (c *collusionCheck) Check(ctx context.Context, rec claims.Record, g *visualization.Builder) (*Flag, error) {
	if rec.AgentID == "" || rec.VendorID == "" {
		return nil, nil
	}
	records, err := c.db.ExecuteReadQuery(ctx, claimCollusionQuery, map[string]any{
		"agent_id":  rec.AgentID,
		"vendor_id": rec.VendorID,
	})
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}

	r := database.NewRowReader(records[0])
	shared := r.Int("shared_claims")
	if r.Err() != nil {
		return nil, r.Err()
	}
	if shared <= c.threshold {
		return nil, nil
	}

	agent := g.AddNode(rec.AgentID, "Agent", map[string]any{"agent_id": rec.AgentID})
	vendor := g.AddNode(rec.VendorID, "Vendor", map[string]any{"vendor_id": rec.VendorID})
	claim := g.ID("Claim", rec.TransactionID)
	g.AddEdge(agent, claim, "HANDLED", nil)
	g.AddEdge(claim, vendor, "REPAIRED_BY", nil)
	g.AddEdge(agent, vendor, "WORKS_WITH", map[string]any{"count": shared})
	return &Flag{
		Rule:     RuleCollusion,
		Severity: SeverityHigh,
		Message:  fmt.Sprintf("Agent-Vendor worked on %d claims together", shared),
	}, nil
}

type highValueCheck struct {
	threshold float64
}

func (c *highValueCheck) Rule() Rule { return RuleHighValue }

func (c *highValueCheck) Check(_ context.Context, rec claims.Record, _ *visualization.Builder) (*Flag, error) {
	if rec.ClaimAmount <= c.threshold {
		return nil, nil
	}
	return &Flag{
		Rule:     RuleHighValue,
		Severity: SeverityMedium,
		Message:  "High value claim: " + FormatAmount(rec.ClaimAmount),
	}, nil
}

type assetRecyclingCheck struct {
	db database.Service
}

func (c *assetRecyclingCheck) Rule() Rule { return RuleAssetRecycling }

func (c *assetRecyclingCheck) Check(ctx context.Context, rec claims.Record, g *visualization.Builder) (*Flag, error) {
	asset, assetType, ok := rec.Asset()
	if !ok {
		return nil, nil
	}
	count, ids, err := countRow(ctx, c.db, claimAssetQuery, map[string]any{
		"asset_value":    asset,
		"transaction_id": rec.TransactionID,
	})
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, nil
	}

	assetID := g.AddNode(asset, "Asset", map[string]any{"value": asset, "type": assetType})
	g.AddEdge(g.ID("Claim", rec.TransactionID), assetID, "INVOLVES", nil)
	for _, id := range ids {
		other := g.AddNode(id, "Claim", map[string]any{"transaction_id": id})
		g.AddEdge(other, assetID, "INVOLVES", nil)
	}
	return &Flag{
		Rule:     RuleAssetRecycling,
		Severity: SeverityHigh,
		Message:  fmt.Sprintf("Asset %s used in %d previous claims: [%s]", asset, count, strings.Join(ids, ", ")),
	}, nil
}

type doubleDippingCheck struct {
	db database.Service
}

func (c *doubleDippingCheck) Rule() Rule { return RuleDoubleDipping }

func (c *doubleDippingCheck) Check(ctx context.Context, rec claims.Record, g *visualization.Builder) (*Flag, error) {
	if rec.LossDate == "" || rec.ClaimAmount <= 0 {
		return nil, nil
	}
	var insuranceType any
	if rec.InsuranceType != "" {
		insuranceType = rec.InsuranceType
	}
	count, ids, err := countRow(ctx, c.db, claimDoubleDippingQuery, map[string]any{
		"transaction_id": rec.TransactionID,
		"amount":         rec.ClaimAmount,
		"loss_date":      rec.LossDate,
		"insurance_type": insuranceType,
	})
	if err != nil {
		return nil, err
	}
	if count == 0 || len(ids) == 0 {
		return nil, nil
	}

	for _, id := range ids {
		g.AddNode(id, "Claim", map[string]any{"transaction_id": id})
	}
	return &Flag{
		Rule:     RuleDoubleDipping,
		Severity: SeverityHigh,
		Message:  "Potential duplicate claim found: " + ids[0],
	}, nil
}

// FormatAmount renders a currency amount as $1,234.56.
func FormatAmount(amount float64) string {
	return "$" + humanize.FormatFloat("#,###.##", amount)
}
