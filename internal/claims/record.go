package claims

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Insurance types that carry an asset identifier.
const (
	TypeMotor    = "Motor"
	TypeAuto     = "Auto"
	TypeMobile   = "Mobile"
	TypeProperty = "Property"
)

// Asset types stored on Asset nodes.
const (
	AssetVehicle    = "Vehicle"
	AssetDevice     = "Device"
	AssetRealEstate = "RealEstate"
)

const DefaultClaimStatus = "PENDING"

// Record is one flattened claim as it enters the graph.
type Record struct {
	CustomerID       string `json:"customer_id" validate:"required"`
	CustomerName     string `json:"customer_name,omitempty"`
	SSN              string `json:"ssn,omitempty"`
	Age              *int64 `json:"age,omitempty" validate:"omitempty,gte=0,lte=130"`
	MaritalStatus    string `json:"marital_status,omitempty"`
	EmploymentStatus string `json:"employment_status,omitempty"`
	Education        string `json:"education,omitempty"`
	SocialClass      string `json:"social_class,omitempty"`
	FamilyMembers    *int64 `json:"family_members,omitempty" validate:"omitempty,gte=0"`

	AddressLine1 string `json:"address_line1,omitempty"`
	AddressLine2 string `json:"address_line2,omitempty"`
	City         string `json:"city,omitempty"`
	State        string `json:"state,omitempty"`
	PostalCode   string `json:"postal_code,omitempty"`

	PolicyNumber        string   `json:"policy_number,omitempty"`
	InsuranceType       string   `json:"insurance_type,omitempty"`
	PremiumAmount       *float64 `json:"premium_amount,omitempty" validate:"omitempty,gte=0"`
	PolicyEffectiveDate string   `json:"policy_effective_date,omitempty"`
	RiskSegment         string   `json:"risk_segment,omitempty"`
	HouseType           string   `json:"house_type,omitempty"`

	TransactionID      string  `json:"transaction_id" validate:"required"`
	ClaimAmount        float64 `json:"claim_amount" validate:"gte=0"`
	LossDate           string  `json:"loss_date,omitempty"`
	ReportDate         string  `json:"report_date,omitempty"`
	Severity           string  `json:"severity,omitempty"`
	ClaimStatus        string  `json:"claim_status,omitempty"`
	IncidentCity       string  `json:"incident_city,omitempty"`
	IncidentState      string  `json:"incident_state,omitempty"`
	IncidentHour       *int64  `json:"incident_hour,omitempty" validate:"omitempty,gte=0,lte=23"`
	AuthorityContacted string  `json:"authority_contacted,omitempty"`
	AnyInjury          string  `json:"any_injury,omitempty"`
	PoliceReport       string  `json:"police_report,omitempty"`

	AgentID  string `json:"agent_id,omitempty"`
	VendorID string `json:"vendor_id,omitempty"`

	VIN             string `json:"vin,omitempty"`
	IMEI            string `json:"imei,omitempty"`
	PropertyAddress string `json:"property_address,omitempty"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate rejects records that cannot be keyed in the graph or carry out-of-range values.
// A missing identifier is reported as a MissingIdentifierError.
func (r Record) Validate() error {
	err := validate.Struct(r)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return fmt.Errorf("failed to validate claim record: %w", err)
	}

	for _, fe := range validationErrors {
		if fe.Tag() == "required" {
			return &MissingIdentifierError{Field: fe.Field(), TransactionID: r.TransactionID}
		}
	}

	fields := make([]string, 0, len(validationErrors))
	for _, fe := range validationErrors {
		fields = append(fields, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
	}
	return &InvalidFieldError{Fields: fields, TransactionID: r.TransactionID}
}

// Asset returns the asset identifier and type implied by the insurance type.
// ok is false when the type carries no asset or the identifier is absent.
func (r Record) Asset() (value, assetType string, ok bool) {
	switch r.InsuranceType {
	case TypeMotor, TypeAuto:
		value, assetType = r.VIN, AssetVehicle
	case TypeMobile:
		value, assetType = r.IMEI, AssetDevice
	case TypeProperty:
		value, assetType = r.PropertyAddress, AssetRealEstate
		if value == "" {
			value = r.AddressLine1
		}
	default:
		return "", "", false
	}
	if value == "" {
		return "", "", false
	}
	return value, assetType, true
}

// SetAsset stores an asset identifier on the field matching the insurance type.
func (r *Record) SetAsset(value string) {
	switch r.InsuranceType {
	case TypeMotor, TypeAuto:
		r.VIN = value
	case TypeMobile:
		r.IMEI = value
	case TypeProperty:
		r.PropertyAddress = value
	}
}

// AddressKey is the natural key of the claimant's address, empty when no component is known.
func (r Record) AddressKey() string {
	if r.AddressLine1 == "" && r.City == "" && r.PostalCode == "" {
		return ""
	}
	return r.AddressLine1 + "_" + r.City + "_" + r.PostalCode
}

// Status returns the claim status, defaulting to PENDING.
func (r Record) Status() string {
	if r.ClaimStatus == "" {
		return DefaultClaimStatus
	}
	return r.ClaimStatus
}
