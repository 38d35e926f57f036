package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/caseflowhq/mailroom/internal/repository"
	"github.com/caseflowhq/mailroom/internal/tracing"
	"github.com/caseflowhq/mailroom/internal/utils"
)

type ImportsHandler struct {
	repos *repository.Repositories
}

func NewImportsHandler(repos *repository.Repositories) *ImportsHandler {
	return &ImportsHandler{repos: repos}
}

// ListUnmatched pages through imports no strategy could attach to a
// matter, for manual triage.
func (h *ImportsHandler) ListUnmatched() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		span, ctx := tracing.StartTracerSpan(ctx, "ImportsHandler.ListUnmatched")
		defer span.Finish()
		tracing.TagComponentRest(span)

		limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
		if err != nil || limit < 1 || limit > 200 {
			limit = 50
		}
		offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
		if err != nil || offset < 0 {
			offset = 0
		}

		firmID := utils.GetTenantFromContext(ctx)
		imports, total, err := h.repos.EmailImportRepository.ListUnmatched(ctx, firmID, limit, offset)
		if err != nil {
			tracing.TraceErr(span, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"imports": imports,
			"total":   total,
			"limit":   limit,
			"offset":  offset,
		})
	}
}
