package ingest

// mergeClaimQuery writes one claim and its neighborhood in a single statement.
// Optional entities are guarded with FOREACH so a null key never reaches a MERGE.
const mergeClaimQuery = `
MERGE (person:Person {customer_id: $customer_id})
SET person.name = $customer_name,
    person.age = $age,
    person.marital_status = $marital_status,
    person.employment_status = $employment_status,
    person.education = $education,
    person.social_class = $social_class,
    person.family_members = $family_members

FOREACH (_ IN CASE WHEN $ssn IS NOT NULL THEN [1] ELSE [] END |
    MERGE (ssn:SSN {value: $ssn})
    MERGE (person)-[:HAS_SSN]->(ssn)
)

FOREACH (_ IN CASE WHEN $address_key IS NOT NULL THEN [1] ELSE [] END |
    MERGE (addr:Address {address_key: $address_key})
    SET addr.line1 = $address_line1,
        addr.line2 = $address_line2,
        addr.city = $city,
        addr.state = $state,
        addr.postal_code = $postal_code
    MERGE (person)-[:LIVES_AT]->(addr)
)

MERGE (claim:Claim {transaction_id: $transaction_id})
SET claim.amount = $claim_amount,
    claim.loss_date = $loss_date,
    claim.report_date = $report_date,
    claim.severity = $severity,
    claim.status = $claim_status,
    claim.incident_city = $incident_city,
    claim.incident_state = $incident_state,
    claim.incident_hour = $incident_hour,
    claim.authority_contacted = $authority_contacted,
    claim.any_injury = $any_injury,
    claim.police_report = $police_report,
    claim.type = $insurance_type
MERGE (person)-[:FILED]->(claim)

FOREACH (_ IN CASE WHEN $policy_number IS NOT NULL THEN [1] ELSE [] END |
    MERGE (policy:Policy {policy_number: $policy_number})
    SET policy.type = $insurance_type,
        policy.premium = $premium_amount,
        policy.effective_date = $policy_effective_date,
        policy.risk_segment = $risk_segment,
        policy.house_type = $house_type
    MERGE (person)-[:OWNS_POLICY]->(policy)
    MERGE (claim)-[:COVERED_BY]->(policy)
)

FOREACH (_ IN CASE WHEN $agent_id IS NOT NULL THEN [1] ELSE [] END |
    MERGE (agent:Agent {agent_id: $agent_id})
    MERGE (agent)-[:HANDLED]->(claim)
)

FOREACH (_ IN CASE WHEN $vendor_id IS NOT NULL THEN [1] ELSE [] END |
    MERGE (vendor:Vendor {vendor_id: $vendor_id})
    MERGE (claim)-[:REPAIRED_BY]->(vendor)
)

FOREACH (_ IN CASE WHEN $agent_id IS NOT NULL AND $vendor_id IS NOT NULL THEN [1] ELSE [] END |
    MERGE (agent:Agent {agent_id: $agent_id})
    MERGE (vendor:Vendor {vendor_id: $vendor_id})
    MERGE (agent)-[ww:WORKS_WITH]->(vendor)
    ON CREATE SET ww.count = 0
    SET ww.count = ww.count + 1
)

FOREACH (_ IN CASE WHEN $asset_value IS NOT NULL THEN [1] ELSE [] END |
    MERGE (asset:Asset {value: $asset_value})
    SET asset.type = $asset_type
    MERGE (claim)-[:INVOLVES]->(asset)
)

RETURN claim.transaction_id AS transaction_id
`

// schemaStatements are issued by Bootstrap. Each is idempotent.
var schemaStatements = []string{
	"CREATE CONSTRAINT person_customer_id IF NOT EXISTS FOR (p:Person) REQUIRE p.customer_id IS UNIQUE",
	"CREATE CONSTRAINT policy_number IF NOT EXISTS FOR (p:Policy) REQUIRE p.policy_number IS UNIQUE",
	"CREATE CONSTRAINT claim_transaction_id IF NOT EXISTS FOR (c:Claim) REQUIRE c.transaction_id IS UNIQUE",
	"CREATE CONSTRAINT agent_id IF NOT EXISTS FOR (a:Agent) REQUIRE a.agent_id IS UNIQUE",
	"CREATE CONSTRAINT vendor_id IF NOT EXISTS FOR (v:Vendor) REQUIRE v.vendor_id IS UNIQUE",
	"CREATE CONSTRAINT address_key IF NOT EXISTS FOR (a:Address) REQUIRE a.address_key IS UNIQUE",
	"CREATE CONSTRAINT ssn_value IF NOT EXISTS FOR (s:SSN) REQUIRE s.value IS UNIQUE",
	"CREATE CONSTRAINT asset_value IF NOT EXISTS FOR (a:Asset) REQUIRE a.value IS UNIQUE",
	"CREATE INDEX person_name IF NOT EXISTS FOR (p:Person) ON (p.name)",
	"CREATE INDEX claim_amount IF NOT EXISTS FOR (c:Claim) ON (c.amount)",
	"CREATE INDEX claim_loss_date IF NOT EXISTS FOR (c:Claim) ON (c.loss_date)",
}
