package domain

import "time"

// AuditFields holds standard audit information for domain entities.
type AuditFields struct {
	CreatedAt     time.Time `json:"createdAt"`
	CreatedBy     string    `json:"createdBy"` // acting user reference
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
	LastUpdatedBy string    `json:"lastUpdatedBy"`
}

// Branch is the minimal branch identity the engine needs: the id that owns
// accounts and entries, and the short code embedded in account numbers.
type Branch struct {
	BranchID string `json:"branchID"`
	Code     string `json:"code"`
}
