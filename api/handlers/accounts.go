package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/caseflowhq/mailroom/interfaces"
	"github.com/caseflowhq/mailroom/internal/enum"
	"github.com/caseflowhq/mailroom/internal/models"
	"github.com/caseflowhq/mailroom/internal/repository"
	"github.com/caseflowhq/mailroom/internal/tracing"
	"github.com/caseflowhq/mailroom/internal/utils"
)

type AccountsHandler struct {
	repos     *repository.Repositories
	ingestion interfaces.IngestionService
}

func NewAccountsHandler(repos *repository.Repositories, ingestion interfaces.IngestionService) *AccountsHandler {
	return &AccountsHandler{repos: repos, ingestion: ingestion}
}

// List returns the firm's connected mailbox accounts
func (h *AccountsHandler) List() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		span, ctx := tracing.StartTracerSpan(ctx, "AccountsHandler.List")
		defer span.Finish()
		tracing.TagComponentRest(span)

		firmID := utils.GetTenantFromContext(ctx)
		accounts, err := h.repos.MailboxAccountRepository.ListByFirm(ctx, firmID)
		if err != nil {
			tracing.TraceErr(span, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{"accounts": accounts})
	}
}

// Create registers a new mailbox account for the firm
func (h *AccountsHandler) Create() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		span, ctx := tracing.StartTracerSpan(ctx, "AccountsHandler.Create")
		defer span.Finish()
		tracing.TagComponentRest(span)

		var account models.MailboxAccount
		if err := c.ShouldBindJSON(&account); err != nil {
			tracing.TraceErr(span, err)
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		account.FirmID = utils.GetTenantFromContext(ctx)
		account.UserID = utils.GetUserIdFromContext(ctx)
		if account.Status == "" {
			account.Status = enum.AccountStatusConnected
		}

		if err := h.repos.MailboxAccountRepository.Create(ctx, &account); err != nil {
			tracing.TraceErr(span, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusCreated, gin.H{"status": "account added", "id": account.ID})
	}
}

// Poll triggers one synchronous ingestion run for an account and returns
// its summary. Used for reconnect verification and support triage; the
// scheduler drives routine polling.
func (h *AccountsHandler) Poll() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		span, ctx := tracing.StartTracerSpan(ctx, "AccountsHandler.Poll")
		defer span.Finish()
		tracing.TagComponentRest(span)

		accountID := c.Param("id")
		tracing.TagAccount(span, accountID)

		summary, err := h.ingestion.Poll(ctx, accountID, utils.GetTenantFromContext(ctx))
		if err != nil {
			tracing.TraceErr(span, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		status := http.StatusOK
		if summary.AuthFailure {
			status = http.StatusConflict
		}
		c.JSON(status, summary)
	}
}
