package domain

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// PostedEntryStatus is the approval state of a sealed batch.
// Transitions are one-directional: PENDING -> APPROVED or PENDING -> REJECTED.
type PostedEntryStatus string

const (
	Pending  PostedEntryStatus = "PENDING"
	Approved PostedEntryStatus = "APPROVED"
	Rejected PostedEntryStatus = "REJECTED"
)

// PostedEntry is a sealed batch of staged lines sharing one reference,
// carrying exactly one approval decision.
type PostedEntry struct {
	Reference   string            `json:"reference"` // Primary Key: the shared line reference
	TotalDebit  decimal.Decimal   `json:"totalDebit"`
	Description string            `json:"description"`
	Source      EntrySource       `json:"source"`
	Status      PostedEntryStatus `json:"status"`
	Validated   bool              `json:"validated"`
	ApprovedBy  *string           `json:"approvedBy"`
	ApprovedAt  *time.Time        `json:"approvedAt"`
	BranchID    string            `json:"branchID"`
	EntryDetail json.RawMessage   `json:"entryDetail"` // Frozen copy of the member lines; the audit record
	AuditFields
}

// IsResolved reports whether the batch has left the PENDING state.
func (p *PostedEntry) IsResolved() bool {
	return p.Status != Pending
}

// SnapshotEntries serializes the given lines into the EntryDetail audit blob.
// The snapshot is taken at seal time and refreshed at resolution time; it is
// never recomputed from live rows afterwards.
func SnapshotEntries(entries []StagedEntry) (json.RawMessage, error) {
	return json.Marshal(entries)
}
