// internal/workers/persistence/store-records/queries.go
package storerecords

const insertRunQuery = `
INSERT INTO generation_runs (
	id, form_url, sink_url, speed, requested, produced, submitted, failed,
	sink_delivered, sink_failed, status, started_at, finished_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

const insertRecordQuery = `
INSERT INTO generated_records (run_id, record_id, payload)
VALUES ($1, $2, $3)
ON CONFLICT (run_id, record_id) DO NOTHING`

const recentRunsQuery = `
SELECT id, form_url, sink_url, speed, requested, produced, submitted, failed,
	sink_delivered, sink_failed, status, started_at, finished_at
FROM generation_runs
ORDER BY started_at DESC
LIMIT $1`
