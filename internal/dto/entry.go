package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/corebank/posting-engine/internal/core/domain"
)

// StageEntryRequest is the payload for staging one proposed movement.
type StageEntryRequest struct {
	AccountID string          `json:"accountID" binding:"required"`
	Amount    decimal.Decimal `json:"amount" binding:"required"`
	Direction string          `json:"direction" binding:"required,direction"`
	Reference string          `json:"reference" binding:"required"`
	EventCode string          `json:"eventCode"`
	Narrative string          `json:"narrative"`
}

// StagedEntryResponse defines the data returned for a staged line.
type StagedEntryResponse struct {
	EntryID   string          `json:"entryID"`
	AccountID string          `json:"accountID"`
	Amount    decimal.Decimal `json:"amount"`
	Direction string          `json:"direction"`
	Reference string          `json:"reference"`
	EventCode string          `json:"eventCode,omitempty"`
	Source    string          `json:"source"`
	Status    string          `json:"status"`
	BranchID  string          `json:"branchID"`
	Narrative string          `json:"narrative,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
	CreatedBy string          `json:"createdBy"`
}

// ToStagedEntryResponse converts a domain.StagedEntry to its response DTO.
func ToStagedEntryResponse(e *domain.StagedEntry) StagedEntryResponse {
	return StagedEntryResponse{
		EntryID:   e.EntryID,
		AccountID: e.AccountID,
		Amount:    e.Amount,
		Direction: string(e.Direction),
		Reference: e.Reference,
		EventCode: e.EventCode,
		Source:    string(e.Source),
		Status:    string(e.Status),
		BranchID:  e.BranchID,
		Narrative: e.Narrative,
		CreatedAt: e.CreatedAt,
		CreatedBy: e.CreatedBy,
	}
}

// ToStagedEntryResponses converts a slice of domain.StagedEntry.
func ToStagedEntryResponses(entries []domain.StagedEntry) []StagedEntryResponse {
	responses := make([]StagedEntryResponse, len(entries))
	for i := range entries {
		responses[i] = ToStagedEntryResponse(&entries[i])
	}
	return responses
}
