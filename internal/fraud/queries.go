package fraud

// claimRecordQuery rebuilds the fields the real-time checks read from a stored claim.
const claimRecordQuery = `
MATCH (p:Person)-[:FILED]->(c:Claim {transaction_id: $transaction_id})
OPTIONAL MATCH (p)-[:HAS_SSN]->(s:SSN)
OPTIONAL MATCH (a:Agent)-[:HANDLED]->(c)
OPTIONAL MATCH (c)-[:REPAIRED_BY]->(v:Vendor)
OPTIONAL MATCH (c)-[:INVOLVES]->(asset:Asset)
RETURN p.customer_id AS customer_id,
       p.name AS customer_name,
       s.value AS ssn,
       c.transaction_id AS transaction_id,
       c.amount AS claim_amount,
       c.loss_date AS loss_date,
       c.report_date AS report_date,
       c.severity AS severity,
       c.status AS claim_status,
       c.type AS insurance_type,
       a.agent_id AS agent_id,
       v.vendor_id AS vendor_id,
       asset.value AS asset_value
LIMIT 1
`

const statsQuery = `
RETURN COUNT { (:Person) } AS total_persons,
       COUNT { (:Claim) } AS total_claims,
       COUNT { (:Policy) } AS total_policies,
       COUNT { (:Address) } AS total_addresses,
       COUNT { (:Agent) } AS total_agents,
       COUNT { (:Vendor) } AS total_vendors,
       COUNT { (:SSN) } AS total_ssns,
       COUNT { (:Asset) } AS total_assets
`

// dashboardQuery counts claims touching a shared SSN, a recycled asset, a claimant
// with at least two other claims, or an amount above the high value threshold.
const dashboardQuery = `
MATCH (c:Claim)
OPTIONAL MATCH (c)<-[:FILED]-(p:Person)
WITH c, p,
     EXISTS { (p)-[:HAS_SSN]->(:SSN)<-[:HAS_SSN]-(other:Person) WHERE other <> p } AS shared_ssn,
     EXISTS { (c)-[:INVOLVES]->(:Asset)<-[:INVOLVES]-(c2:Claim) WHERE c2 <> c } AS recycled_asset,
     COUNT { (p)-[:FILED]->(c3:Claim) WHERE c3 <> c } >= 2 AS high_velocity
WITH c, shared_ssn OR recycled_asset OR high_velocity OR coalesce(toFloat(c.amount), 0.0) > $high_value AS suspicious
RETURN count(c) AS total_claims,
       sum(CASE WHEN suspicious THEN 1 ELSE 0 END) AS fraud_detected,
       sum(CASE WHEN suspicious THEN coalesce(toFloat(c.amount), 0.0) ELSE 0.0 END) AS estimated_fraud_value
`

// evaluationSampleQuery draws a random sample of stored claims.
const evaluationSampleQuery = `
MATCH (c:Claim)
WHERE c.transaction_id IS NOT NULL
RETURN c.transaction_id AS transaction_id
ORDER BY rand()
LIMIT $limit
`
