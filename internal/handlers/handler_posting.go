package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/corebank/posting-engine/internal/apperrors"
	"github.com/corebank/posting-engine/internal/core/domain"
	portssvc "github.com/corebank/posting-engine/internal/core/ports/services"
	"github.com/corebank/posting-engine/internal/core/services"
	"github.com/corebank/posting-engine/internal/dto"
	"github.com/corebank/posting-engine/internal/middleware"
)

// postingHandler handles HTTP requests for the staging/sealing/approval pipeline.
type postingHandler struct {
	staging     portssvc.StagingSvcFacade
	batch       portssvc.BatchSvcFacade
	approval    portssvc.ApprovalSvcFacade
	propagation portssvc.PropagationSvcFacade
}

// newPostingHandler creates a new postingHandler.
func newPostingHandler(svcs *portssvc.ServiceContainer) *postingHandler {
	return &postingHandler{
		staging:     svcs.Staging,
		batch:       svcs.Batch,
		approval:    svcs.Approval,
		propagation: svcs.Propagation,
	}
}

// callerContext pulls the explicit caller identity; the engine refuses
// requests without it rather than assuming any ambient user.
func callerContext(c *gin.Context) (userID, branchID string, ok bool) {
	userID, okUser := middleware.GetUserIDFromContext(c)
	branchID, okBranch := middleware.GetBranchIDFromContext(c)
	if !okUser || !okBranch {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "caller identity (X-User-ID, X-Branch-ID) is required"})
		return "", "", false
	}
	return userID, branchID, true
}

// writeServiceError maps error kinds onto HTTP statuses, always surfacing the
// rule that failed; a ledger system must never answer with a bare "error".
func writeServiceError(c *gin.Context, logger *slog.Logger, err error, action string) {
	switch {
	case errors.Is(err, apperrors.ErrValidation):
		logger.Warn("Validation failure", slog.String("action", action), slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrUnbalanced):
		logger.Warn("Double-entry violation", slog.String("action", action), slog.String("error", err.Error()))
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrConflict):
		logger.Warn("Conflict", slog.String("action", action), slog.String("error", err.Error()))
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrNotFound):
		logger.Warn("Not found", slog.String("action", action), slog.String("error", err.Error()))
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		logger.Error("Internal failure", slog.String("action", action), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error, the operation was not applied"})
	}
}

// stageEntry handles POST /entries.
func (h *postingHandler) stageEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	req := dto.StageEntryRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for stageEntry", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request format: " + err.Error()})
		return
	}
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "amount must be positive"})
		return
	}

	userID, branchID, ok := callerContext(c)
	if !ok {
		return
	}

	source := domain.SourceUser
	if middleware.IsSystemCaller(c) {
		source = domain.SourceSystem
	}

	entry, err := h.staging.StageEntry(c.Request.Context(), portssvc.StageEntryInput{
		AccountID: req.AccountID,
		Amount:    req.Amount,
		Direction: domain.EntryDirection(req.Direction),
		Reference: req.Reference,
		EventCode: req.EventCode,
		Narrative: req.Narrative,
		Source:    source,
		CreatorID: userID,
		BranchID:  branchID,
	})
	if err != nil {
		writeServiceError(c, logger, err, "stage_entry")
		return
	}

	c.JSON(http.StatusCreated, dto.ToStagedEntryResponse(entry))
}

// listEntries handles GET /entries/:reference.
func (h *postingHandler) listEntries(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	reference := c.Param("reference")

	entries, err := h.staging.ListEntriesByReference(c.Request.Context(), reference)
	if err != nil {
		writeServiceError(c, logger, err, "list_entries")
		return
	}
	c.JSON(http.StatusOK, gin.H{"reference": reference, "entries": dto.ToStagedEntryResponses(entries)})
}

// sealBatch handles POST /batches.
func (h *postingHandler) sealBatch(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	req := dto.SealBatchRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for sealBatch", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request format: " + err.Error()})
		return
	}

	userID, branchID, ok := callerContext(c)
	if !ok {
		return
	}

	source := domain.EntrySource(req.Source)
	if source == "" {
		source = domain.SourceUser
	}

	posted, err := h.batch.SealBatch(c.Request.Context(), req.Reference, userID, branchID, req.Description, source)
	if err != nil {
		writeServiceError(c, logger, err, "seal_batch")
		return
	}

	c.JSON(http.StatusCreated, dto.ToPostedEntryResponse(posted))
}

// getBatch handles GET /batches/:reference.
func (h *postingHandler) getBatch(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	reference := c.Param("reference")

	posted, err := h.batch.GetPostedEntry(c.Request.Context(), reference)
	if err != nil {
		writeServiceError(c, logger, err, "get_batch")
		return
	}
	c.JSON(http.StatusOK, dto.ToPostedEntryResponse(posted))
}

// resolveBatch handles POST /batches/:reference/resolution.
func (h *postingHandler) resolveBatch(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	reference := c.Param("reference")

	req := dto.ResolveBatchRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for resolveBatch", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request format: " + err.Error()})
		return
	}

	userID, _, ok := callerContext(c)
	if !ok {
		return
	}

	// The self-approval override is reserved for trusted system callers;
	// a plain user asking for it is simply ignored.
	skipSelfCheck := req.SkipSelfCheck && middleware.IsSystemCaller(c)

	postingDate := time.Now().UTC()
	if req.PostingDate != nil {
		postingDate = *req.PostingDate
	}

	posted, err := h.approval.Resolve(c.Request.Context(), portssvc.ResolveInput{
		Reference:     reference,
		ApproverID:    userID,
		Approve:       req.Approve,
		PostingDate:   postingDate,
		SkipSelfCheck: skipSelfCheck,
	})
	if err != nil {
		writeServiceError(c, logger, err, "resolve_batch")
		return
	}

	c.JSON(http.StatusOK, dto.ToPostedEntryResponse(posted))
}

// expand handles POST /expansions.
func (h *postingHandler) expand(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	req := dto.ExpandRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for expand", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request format: " + err.Error()})
		return
	}

	userID, _, ok := callerContext(c)
	if !ok {
		return
	}

	sourceEntries, err := h.staging.ListEntriesByReference(c.Request.Context(), req.Reference)
	if err != nil {
		writeServiceError(c, logger, err, "expand")
		return
	}

	branches := make([]domain.Branch, len(req.Branches))
	for i, b := range req.Branches {
		branches[i] = domain.Branch{BranchID: b.BranchID, Code: b.Code}
	}

	expansions, err := h.propagation.ExpandAcrossBranches(c.Request.Context(), portssvc.ExpandInput{
		SourceEntries: sourceEntries,
		EventCode:     req.EventCode,
		Branches:      branches,
		ActingBranch:  domain.Branch{BranchID: req.ActingBranch.BranchID, Code: req.ActingBranch.Code},
		CreatorID:     userID,
		PostingDate:   time.Now().UTC(),
	})
	if err != nil {
		writeServiceError(c, logger, err, "expand")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"expansions": dto.ToBranchExpansionResponses(expansions)})
}
