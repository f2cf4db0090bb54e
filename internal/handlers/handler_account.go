package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/corebank/posting-engine/internal/core/domain"
	portssvc "github.com/corebank/posting-engine/internal/core/ports/services"
	"github.com/corebank/posting-engine/internal/dto"
	"github.com/corebank/posting-engine/internal/middleware"
)

// accountHandler serves the account query surface.
type accountHandler struct {
	account  portssvc.AccountSvcFacade
	resolver portssvc.AccountResolverSvcFacade
}

func newAccountHandler(svcs *portssvc.ServiceContainer) *accountHandler {
	return &accountHandler{account: svcs.Account, resolver: svcs.Resolver}
}

// getAccount handles GET /accounts/:id.
func (h *accountHandler) getAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountID := c.Param("id")

	account, err := h.account.GetAccountByID(c.Request.Context(), accountID)
	if err != nil {
		writeServiceError(c, logger, err, "get_account")
		return
	}
	c.JSON(http.StatusOK, dto.ToAccountResponse(account))
}

// listLedger handles GET /accounts/:id/ledger.
func (h *accountHandler) listLedger(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountID := c.Param("id")

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = parsed
	}

	var nextToken *string
	if raw := c.Query("nextToken"); raw != "" {
		nextToken = &raw
	}

	entries, next, err := h.account.ListLedgerEntries(c.Request.Context(), accountID, limit, nextToken)
	if err != nil {
		writeServiceError(c, logger, err, "list_ledger")
		return
	}

	c.JSON(http.StatusOK, dto.ListLedgerEntriesResponse{
		Entries:   dto.ToLedgerEntryResponses(entries),
		NextToken: next,
	})
}

// resolveAccount handles POST /accounts/resolution. It locates or provisions
// the concrete account for a chart position / branch pair.
func (h *accountHandler) resolveAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	req := dto.ResolveAccountRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for resolveAccount", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request format: " + err.Error()})
		return
	}

	owner := domain.Branch{BranchID: req.OwnerBranchID, Code: req.OwnerBranchCode}
	account, err := h.resolver.ResolveAccount(c.Request.Context(), req.ChartPositionID, owner, req.LiaisonBranchID)
	if err != nil {
		writeServiceError(c, logger, err, "resolve_account")
		return
	}
	c.JSON(http.StatusOK, dto.ToAccountResponse(account))
}
