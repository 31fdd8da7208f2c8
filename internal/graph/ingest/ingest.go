package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mkd-neo4j/neo4j-claims-fraud/internal/claims"
	"github.com/mkd-neo4j/neo4j-claims-fraud/internal/database"
)

// Ingestor merges claim records into the graph.
type Ingestor struct {
	db database.Service
}

func NewIngestor(db database.Service) (*Ingestor, error) {
	if db == nil {
		return nil, errors.New("database service cannot be nil")
	}
	return &Ingestor{db: db}, nil
}

// Bootstrap creates the uniqueness constraints and indexes the merge relies on.
// A failing statement is logged and skipped so one unsupported index does not block the rest.
func (i *Ingestor) Bootstrap(ctx context.Context) error {
	applied := 0
	for _, stmt := range schemaStatements {
		if _, err := i.db.ExecuteWriteQuery(ctx, stmt, nil); err != nil {
			var connErr *database.StoreConnectionError
			if errors.As(err, &connErr) {
				return fmt.Errorf("failed to bootstrap graph schema: %w", err)
			}
			slog.Warn("schema statement failed", "statement", stmt, "error", err)
			continue
		}
		applied++
	}
	slog.Info("graph schema bootstrapped", "applied", applied, "total", len(schemaStatements))
	return nil
}

// Ingest validates rec and merges it in one write transaction.
// Nothing is written when validation fails.
func (i *Ingestor) Ingest(ctx context.Context, rec claims.Record) error {
	if err := rec.Validate(); err != nil {
		return err
	}

	if _, err := i.db.ExecuteWriteQuery(ctx, mergeClaimQuery, Params(rec)); err != nil {
		return fmt.Errorf("failed to ingest claim %s: %w", rec.TransactionID, err)
	}

	slog.Debug("claim ingested", "transactionId", rec.TransactionID, "customerId", rec.CustomerID)
	return nil
}

// BatchFailure describes one record that could not be loaded.
type BatchFailure struct {
	Index         int    `json:"index"`
	TransactionID string `json:"transaction_id,omitempty"`
	Error         string `json:"error"`
}

// BatchResult summarises a batch load.
type BatchResult struct {
	Loaded   int            `json:"loaded"`
	Failed   []BatchFailure `json:"failed,omitempty"`
	Canceled bool           `json:"canceled,omitempty"`
}

// IngestBatch loads records in order. A failing record is recorded and the batch continues;
// a cancelled context or an unreachable store stops it.
func (i *Ingestor) IngestBatch(ctx context.Context, recs []claims.Record) *BatchResult {
	result := &BatchResult{}
	for idx, rec := range recs {
		if ctx.Err() != nil {
			result.Canceled = true
			break
		}

		err := i.Ingest(ctx, rec)
		if err == nil {
			result.Loaded++
			continue
		}

		result.Failed = append(result.Failed, BatchFailure{Index: idx, TransactionID: rec.TransactionID, Error: err.Error()})
		slog.Warn("failed to ingest claim", "index", idx, "transactionId", rec.TransactionID, "error", err)

		var connErr *database.StoreConnectionError
		if errors.As(err, &connErr) {
			for rest := idx + 1; rest < len(recs); rest++ {
				result.Failed = append(result.Failed, BatchFailure{Index: rest, TransactionID: recs[rest].TransactionID, Error: err.Error()})
			}
			break
		}
	}

	slog.Info("claim batch ingested", "loaded", result.Loaded, "failed", len(result.Failed), "total", len(recs))
	return result
}

// Params maps a record onto the merge statement parameters. Absent values become nil.
func Params(rec claims.Record) map[string]any {
	params := map[string]any{
		"customer_id":           rec.CustomerID,
		"customer_name":         optional(rec.CustomerName),
		"ssn":                   optional(rec.SSN),
		"age":                   optionalInt(rec.Age),
		"marital_status":        optional(rec.MaritalStatus),
		"employment_status":     optional(rec.EmploymentStatus),
		"education":             optional(rec.Education),
		"social_class":          optional(rec.SocialClass),
		"family_members":        optionalInt(rec.FamilyMembers),
		"address_key":           optional(rec.AddressKey()),
		"address_line1":         optional(rec.AddressLine1),
		"address_line2":         optional(rec.AddressLine2),
		"city":                  optional(rec.City),
		"state":                 optional(rec.State),
		"postal_code":           optional(rec.PostalCode),
		"policy_number":         optional(rec.PolicyNumber),
		"insurance_type":        optional(rec.InsuranceType),
		"premium_amount":        optionalFloat(rec.PremiumAmount),
		"policy_effective_date": optional(rec.PolicyEffectiveDate),
		"risk_segment":          optional(rec.RiskSegment),
		"house_type":            optional(rec.HouseType),
		"transaction_id":        rec.TransactionID,
		"claim_amount":          rec.ClaimAmount,
		"loss_date":             optional(rec.LossDate),
		"report_date":           optional(rec.ReportDate),
		"severity":              optional(rec.Severity),
		"claim_status":          rec.Status(),
		"incident_city":         optional(rec.IncidentCity),
		"incident_state":        optional(rec.IncidentState),
		"incident_hour":         optionalInt(rec.IncidentHour),
		"authority_contacted":   optional(rec.AuthorityContacted),
		"any_injury":            optional(rec.AnyInjury),
		"police_report":         optional(rec.PoliceReport),
		"agent_id":              optional(rec.AgentID),
		"vendor_id":             optional(rec.VendorID),
		"asset_value":           nil,
		"asset_type":            nil,
	}
	if value, assetType, ok := rec.Asset(); ok {
		params["asset_value"] = value
		params["asset_type"] = assetType
	}
	return params
}

func optional(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func optionalInt(i *int64) any {
	if i == nil {
		return nil
	}
	return *i
}

func optionalFloat(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}
