package dto

import (
	portssvc "github.com/corebank/posting-engine/internal/core/ports/services"
)

// BranchRef names one eligible branch for an expansion.
type BranchRef struct {
	BranchID string `json:"branchID" binding:"required"`
	Code     string `json:"code" binding:"required"`
}

// ExpandRequest is the payload for fanning a business event out across branches.
type ExpandRequest struct {
	Reference    string      `json:"reference" binding:"required"`
	EventCode    string      `json:"eventCode" binding:"required"`
	Branches     []BranchRef `json:"branches" binding:"required,min=1,dive"`
	ActingBranch BranchRef   `json:"actingBranch" binding:"required"`
}

// BranchExpansionResponse is one branch's share of an expansion: a fresh
// reference and its system-staged lines, ready to be sealed independently.
type BranchExpansionResponse struct {
	BranchID  string                `json:"branchID"`
	Reference string                `json:"reference"`
	Entries   []StagedEntryResponse `json:"entries"`
}

// ToBranchExpansionResponses converts the service output.
func ToBranchExpansionResponses(expansions []portssvc.BranchExpansion) []BranchExpansionResponse {
	responses := make([]BranchExpansionResponse, len(expansions))
	for i, ex := range expansions {
		responses[i] = BranchExpansionResponse{
			BranchID:  ex.Branch.BranchID,
			Reference: ex.Reference,
			Entries:   ToStagedEntryResponses(ex.Entries),
		}
	}
	return responses
}
