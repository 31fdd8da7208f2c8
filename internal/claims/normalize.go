package claims

import (
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
)

// nestedSections are the extraction sub-objects folded into the flat record.
var nestedSections = []string{
	"policyholder_info",
	"claim_summary",
	"incident_details",
	"vehicle_details",
	"device_details",
	"property_details",
}

// fieldAliases lists, per record field, the lower-cased source keys accepted for it in priority order.
var fieldAliases = map[string][]string{
	"customer_id":           {"customer_id", "customerid"},
	"customer_name":         {"customer_name", "name"},
	"ssn":                   {"ssn", "ssn_masked"},
	"age":                   {"age"},
	"marital_status":        {"marital_status", "marital"},
	"employment_status":     {"employment_status", "employed", "employment"},
	"education":             {"education", "customer_education_level"},
	"social_class":          {"social_class"},
	"family_members":        {"family_members", "no_of_family_members"},
	"address_line1":         {"address_line1", "address"},
	"address_line2":         {"address_line2"},
	"city":                  {"city"},
	"state":                 {"state"},
	"postal_code":           {"postal_code", "zip_code", "zip"},
	"policy_number":         {"policy_number"},
	"insurance_type":        {"insurance_type"},
	"premium_amount":        {"premium_amount", "premium"},
	"policy_effective_date": {"policy_effective_date", "policy_eff_dt"},
	"risk_segment":          {"risk_segment", "risk_segmentation"},
	"house_type":            {"house_type"},
	"transaction_id":        {"transaction_id", "transactionid"},
	"claim_amount":          {"claim_amount", "amount"},
	"loss_date":             {"loss_date", "loss_dt", "date_of_loss"},
	"report_date":           {"report_date", "report_dt", "reported_date"},
	"severity":              {"severity", "incident_severity"},
	"claim_status":          {"claim_status", "status"},
	"incident_city":         {"incident_city"},
	"incident_state":        {"incident_state"},
	"incident_hour":         {"incident_hour", "incident_hour_of_the_day"},
	"authority_contacted":   {"authority_contacted"},
	"any_injury":            {"any_injury"},
	"police_report":         {"police_report", "police_report_available"},
	"agent_id":              {"agent_id"},
	"vendor_id":             {"vendor_id"},
	"vin":                   {"vin"},
	"imei":                  {"imei"},
	"property_address":      {"property_address"},
}

// FromMap normalizes a raw claim payload into a Record.
// It accepts flat maps in any key casing, extraction envelopes ("extraction.data", "result")
// and nested section objects. The result is validated before it is returned.
func FromMap(payload map[string]any) (Record, error) {
	flat := flatten(unwrap(payload))
	n := &normalizer{flat: flat}

	rec := Record{
		CustomerID:          n.str("customer_id"),
		CustomerName:        n.str("customer_name"),
		SSN:                 n.str("ssn"),
		Age:                 n.optionalInteger("age"),
		MaritalStatus:       n.str("marital_status"),
		EmploymentStatus:    n.str("employment_status"),
		Education:           n.str("education"),
		SocialClass:         n.str("social_class"),
		FamilyMembers:       n.optionalInteger("family_members"),
		AddressLine1:        n.str("address_line1"),
		AddressLine2:        n.str("address_line2"),
		City:                n.str("city"),
		State:               n.str("state"),
		PostalCode:          n.str("postal_code"),
		PolicyNumber:        n.str("policy_number"),
		InsuranceType:       canonicalInsuranceType(n.str("insurance_type")),
		PremiumAmount:       n.optionalFloat("premium_amount"),
		PolicyEffectiveDate: n.str("policy_effective_date"),
		RiskSegment:         n.str("risk_segment"),
		HouseType:           n.str("house_type"),
		TransactionID:       n.str("transaction_id"),
		LossDate:            n.str("loss_date"),
		ReportDate:          n.str("report_date"),
		Severity:            n.str("severity"),
		ClaimStatus:         n.str("claim_status"),
		IncidentCity:        n.str("incident_city"),
		IncidentState:       n.str("incident_state"),
		IncidentHour:        n.hour("incident_hour"),
		AuthorityContacted:  n.str("authority_contacted"),
		AnyInjury:           n.str("any_injury"),
		PoliceReport:        n.str("police_report"),
		AgentID:             n.str("agent_id"),
		VendorID:            n.str("vendor_id"),
		VIN:                 n.str("vin"),
		IMEI:                n.str("imei"),
		PropertyAddress:     n.str("property_address"),
	}
	if amount := n.float("claim_amount"); amount != nil {
		rec.ClaimAmount = *amount
	}

	if len(n.invalid) > 0 {
		return rec, &InvalidFieldError{Fields: n.invalid, TransactionID: rec.TransactionID}
	}
	if err := rec.Validate(); err != nil {
		return rec, err
	}
	return rec, nil
}

// unwrap strips the extraction envelopes produced by document pipelines.
func unwrap(payload map[string]any) map[string]any {
	if extraction, ok := asMap(lookupFold(payload, "extraction")); ok {
		if data, ok := asMap(lookupFold(extraction, "data")); ok {
			return data
		}
	}
	if result, ok := asMap(lookupFold(payload, "result")); ok {
		if data, ok := asMap(lookupFold(result, "data")); ok {
			return data
		}
		return result
	}
	return payload
}

// flatten lower-cases keys and folds nested sections in. Top-level keys win over nested ones.
func flatten(payload map[string]any) map[string]any {
	flat := make(map[string]any, len(payload))
	for _, section := range nestedSections {
		nested, ok := asMap(lookupFold(payload, section))
		if !ok {
			continue
		}
		for k, v := range nested {
			flat[strings.ToLower(k)] = v
		}
	}
	for k, v := range payload {
		if _, isMap := v.(map[string]any); isMap {
			continue
		}
		key := strings.ToLower(k)
		if v == nil {
			if _, exists := flat[key]; exists {
				continue
			}
		}
		flat[key] = v
	}
	return flat
}

type normalizer struct {
	flat    map[string]any
	invalid []string
}

func (n *normalizer) raw(field string) (any, bool) {
	for _, alias := range fieldAliases[field] {
		if v, ok := n.flat[alias]; ok && v != nil {
			if s, isString := v.(string); isString && strings.TrimSpace(s) == "" {
				continue
			}
			return v, true
		}
	}
	return nil, false
}

func (n *normalizer) str(field string) string {
	v, ok := n.raw(field)
	if !ok {
		return ""
	}
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case float64:
		if val == math.Trunc(val) {
			return strconv.FormatFloat(val, 'f', 0, 64)
		}
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return strings.TrimSpace(fmt.Sprint(val))
	}
}

func (n *normalizer) float(field string) *float64 {
	v, ok := n.raw(field)
	if !ok {
		return nil
	}
	f, err := toFloat(v)
	if err != nil {
		n.invalid = append(n.invalid, fmt.Sprintf("%s: %v", field, err))
		return nil
	}
	return &f
}

// optionalFloat parses a descriptive numeric field. Unparseable values are
// dropped so that one bad extraction field does not reject the claim.
func (n *normalizer) optionalFloat(field string) *float64 {
	v, ok := n.raw(field)
	if !ok {
		return nil
	}
	f, err := toFloat(v)
	if err != nil {
		slog.Warn("dropping unparseable claim field", "field", field, "error", err)
		return nil
	}
	return &f
}

func (n *normalizer) optionalInteger(field string) *int64 {
	f := n.optionalFloat(field)
	if f == nil {
		return nil
	}
	i := int64(*f)
	return &i
}

// hour reads an hour of day given as a number or as a clock time like "14:30".
func (n *normalizer) hour(field string) *int64 {
	if v, ok := n.raw(field); ok {
		if s, isString := v.(string); isString {
			if h, _, found := strings.Cut(strings.TrimSpace(s), ":"); found {
				i, err := strconv.ParseInt(h, 10, 64)
				if err != nil || i < 0 || i > 23 {
					slog.Warn("dropping unparseable claim field", "field", field, "value", s)
					return nil
				}
				return &i
			}
		}
	}
	i := n.optionalInteger(field)
	if i != nil && (*i < 0 || *i > 23) {
		slog.Warn("dropping out of range claim field", "field", field, "value", *i)
		return nil
	}
	return i
}

// toFloat accepts numbers and currency strings such as "$12,500.00".
func toFloat(v any) (float64, error) {
	switch val := v.(type) {
	case float64:
		return val, nil
	case float32:
		return float64(val), nil
	case int:
		return float64(val), nil
	case int64:
		return float64(val), nil
	case int32:
		return float64(val), nil
	case string:
		cleaned := strings.NewReplacer("$", "", ",", "", " ", "").Replace(val)
		f, err := strconv.ParseFloat(cleaned, 64)
		if err != nil {
			return 0, fmt.Errorf("not a number: %q", val)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("unsupported type %T", v)
	}
}

// canonicalInsuranceType maps case variants onto the known type names.
func canonicalInsuranceType(t string) string {
	for _, known := range []string{TypeMotor, TypeAuto, TypeMobile, TypeProperty} {
		if strings.EqualFold(t, known) {
			return known
		}
	}
	return t
}

func lookupFold(m map[string]any, key string) any {
	if v, ok := m[key]; ok {
		return v
	}
	for k, v := range m {
		if strings.EqualFold(k, key) {
			return v
		}
	}
	return nil
}

func asMap(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	return m, ok
}
