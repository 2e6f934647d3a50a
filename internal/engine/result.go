package engine

import "cleanse/internal/lineage"

// Result is the aggregate output of one pipeline run: the cleaned dataset and
// its full audit trail. The core never persists it; the load boundary does.
type Result struct {
	// RunID uniquely identifies this run in logs and metrics.
	RunID string

	// Cleaned holds the surviving rows in original input order.
	Cleaned []Row

	// Lineage holds every field change, sorted by (row_id, seq).
	Lineage []lineage.Entry

	// Anomalies holds every rule violation, sorted by row_id.
	Anomalies []lineage.Anomaly

	// Drops holds one reason per removed row, in drop order: ingestion and
	// dedup drops first, then rule-stage drops in input order.
	Drops []lineage.Drop

	Summary Summary
}

// Summary carries the counts an external logger reports.
type Summary struct {
	RowsIn              int
	RowsOut             int
	LineageEntries      int
	DroppedByStage      map[string]int
	AnomaliesBySeverity map[string]int
}
