package patterns

// Batch scans.

const sharedPIIQuery = `
MATCH (p1:Person)-[:HAS_SSN]->(s:SSN)<-[:HAS_SSN]-(p2:Person)
WHERE p1.customer_id < p2.customer_id
WITH s, collect(DISTINCT p1) + collect(DISTINCT p2) AS members
UNWIND members AS member
WITH s, collect(DISTINCT member) AS persons
WHERE size(persons) >= 2
RETURN s.value AS shared_ssn,
       [p IN persons | coalesce(p.name, p.customer_id)] AS fraudsters,
       [p IN persons | p.customer_id] AS customer_ids,
       size(persons) AS ring_size
ORDER BY ring_size DESC, shared_ssn
LIMIT $limit
`

const collusionQuery = `
MATCH (a:Agent)-[r:WORKS_WITH]->(v:Vendor)
WHERE r.count > $threshold
RETURN a.agent_id AS agent_id, v.vendor_id AS vendor_id, r.count AS shared_claims
ORDER BY shared_claims DESC, agent_id, vendor_id
LIMIT $limit
`

const assetRecyclingQuery = `
MATCH (c:Claim)-[:INVOLVES]->(a:Asset)
WITH a, count(DISTINCT c) AS claim_count, collect(DISTINCT c.transaction_id) AS claim_ids
WHERE claim_count > 1
RETURN a.type AS asset_type, a.value AS asset_id, claim_count, claim_ids
ORDER BY claim_count DESC, asset_id
LIMIT $limit
`

const velocityQuery = `
MATCH (p:Person)-[:FILED]->(c:Claim)
WITH p, count(c) AS claim_count, sum(toFloat(c.amount)) AS total_claimed, collect(c.transaction_id) AS claims
WHERE claim_count >= $threshold
RETURN p.customer_id AS customer_id, p.name AS customer_name, claim_count, total_claimed, claims
ORDER BY claim_count DESC, customer_id
LIMIT $limit
`

const doubleDippingQuery = `
MATCH (c1:Claim), (c2:Claim)
WHERE c1.transaction_id < c2.transaction_id
  AND c1.amount = c2.amount
  AND c1.loss_date = c2.loss_date
  AND c1.type = c2.type
RETURN c1.transaction_id AS claim1, c2.transaction_id AS claim2,
       c1.amount AS amount, c1.loss_date AS date, c1.type AS type
ORDER BY amount DESC, claim1, claim2
LIMIT $limit
`

const sharedAddressQuery = `
MATCH (p:Person)-[:LIVES_AT]->(addr:Address)
MATCH (p)-[:FILED]->(c:Claim)
WITH addr, count(DISTINCT p) AS person_count, count(DISTINCT c) AS claim_count,
     collect(DISTINCT coalesce(p.name, p.customer_id)) AS people
WHERE person_count > 1 AND claim_count > 2
RETURN addr.line1 AS address, addr.city AS city, addr.state AS state, person_count, claim_count, people
ORDER BY claim_count DESC, person_count DESC, address
LIMIT $limit
`

// Real-time checks for one claim.

const claimVelocityQuery = `
MATCH (:Person {customer_id: $customer_id})-[:FILED]->(c:Claim)
WITH c ORDER BY c.transaction_id
RETURN count(c) AS claim_count, collect(c.transaction_id) AS claim_ids
`

const claimSharedPIIQuery = `
MATCH (p:Person)-[:HAS_SSN]->(:SSN {value: $ssn})
WITH DISTINCT p ORDER BY p.customer_id
RETURN count(p) AS person_count, collect(p.customer_id) AS customer_ids
`

const claimBaseQuery = `
MATCH (p:Person)-[:FILED]->(c:Claim {transaction_id: $transaction_id})
RETURN properties(p) AS person, properties(c) AS claim
LIMIT 1
`

const claimCollusionQuery = `
MATCH (:Agent {agent_id: $agent_id})-[r:WORKS_WITH]->(:Vendor {vendor_id: $vendor_id})
RETURN r.count AS shared_claims
`

const claimAssetQuery = `
MATCH (c:Claim)-[:INVOLVES]->(:Asset {value: $asset_value})
WHERE c.transaction_id <> $transaction_id
WITH c ORDER BY c.transaction_id
RETURN count(c) AS claim_count, collect(c.transaction_id) AS claim_ids
`

const claimDoubleDippingQuery = `
MATCH (c:Claim)
WHERE c.transaction_id <> $transaction_id
  AND c.amount = $amount
  AND c.loss_date = $loss_date
  AND c.type = $insurance_type
WITH c ORDER BY c.transaction_id
RETURN count(c) AS claim_count, collect(c.transaction_id) AS claim_ids
`
