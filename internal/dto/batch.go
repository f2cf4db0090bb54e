package dto

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/corebank/posting-engine/internal/core/domain"
)

// SealBatchRequest is the payload for sealing the staged lines of a reference.
type SealBatchRequest struct {
	Reference   string `json:"reference" binding:"required"`
	Description string `json:"description" binding:"required"`
	Source      string `json:"source" binding:"omitempty,oneof=USER SYSTEM"`
}

// ResolveBatchRequest is the payload for one approval or rejection decision.
type ResolveBatchRequest struct {
	Approve     bool       `json:"approve"`
	PostingDate *time.Time `json:"postingDate"`

	// SkipSelfCheck is honored only for requests carrying a valid service
	// token; for everyone else it is ignored.
	SkipSelfCheck bool `json:"skipSelfCheck"`
}

// PostedEntryResponse defines the data returned for a sealed batch.
type PostedEntryResponse struct {
	Reference   string          `json:"reference"`
	TotalDebit  decimal.Decimal `json:"totalDebit"`
	Description string          `json:"description"`
	Source      string          `json:"source"`
	Status      string          `json:"status"`
	Validated   bool            `json:"validated"`
	ApprovedBy  *string         `json:"approvedBy,omitempty"`
	ApprovedAt  *time.Time      `json:"approvedAt,omitempty"`
	BranchID    string          `json:"branchID"`
	EntryDetail json.RawMessage `json:"entryDetail,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	CreatedBy   string          `json:"createdBy"`
}

// ToPostedEntryResponse converts a domain.PostedEntry to its response DTO.
func ToPostedEntryResponse(p *domain.PostedEntry) PostedEntryResponse {
	return PostedEntryResponse{
		Reference:   p.Reference,
		TotalDebit:  p.TotalDebit,
		Description: p.Description,
		Source:      string(p.Source),
		Status:      string(p.Status),
		Validated:   p.Validated,
		ApprovedBy:  p.ApprovedBy,
		ApprovedAt:  p.ApprovedAt,
		BranchID:    p.BranchID,
		EntryDetail: p.EntryDetail,
		CreatedAt:   p.CreatedAt,
		CreatedBy:   p.CreatedBy,
	}
}
