package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/splitkit/settlement_app/internal/apperrors"
	portssvc "github.com/splitkit/settlement_app/internal/core/ports/services"
	"github.com/splitkit/settlement_app/internal/dto"
	"github.com/splitkit/settlement_app/internal/middleware"
)

// balanceHandler handles HTTP requests for group balances.
type balanceHandler struct {
	balanceService portssvc.BalanceSvcFacade
	memberService  portssvc.MemberDirectorySvc
}

func newBalanceHandler(bs portssvc.BalanceSvcFacade, ms portssvc.MemberDirectorySvc) *balanceHandler {
	return &balanceHandler{
		balanceService: bs,
		memberService:  ms,
	}
}

// registerBalanceRoutes registers routes related to balances.
func registerBalanceRoutes(rg *gin.RouterGroup, balanceService portssvc.BalanceSvcFacade, memberService portssvc.MemberDirectorySvc) {
	h := newBalanceHandler(balanceService, memberService)
	rg.GET("/balances", h.getGroupBalances)
}

// getGroupBalances recomputes and returns the group's current balances.
func (h *balanceHandler) getGroupBalances(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	groupID := c.Param("groupID")
	logger = logger.With(slog.String("group_id", groupID))

	balances, currencyCode, err := h.balanceService.GetGroupBalances(c.Request.Context(), groupID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Group not found for balance read")
			c.JSON(http.StatusNotFound, gin.H{"error": "Group not found"})
		} else {
			logger.Error("Failed to compute group balances", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute balances"})
		}
		return
	}

	names := h.displayNames(c, groupID)
	resp := dto.GroupBalancesResponse{
		GroupID:      groupID,
		CurrencyCode: currencyCode,
		Balances:     make([]dto.BalanceDetailResponse, len(balances)),
	}
	for i, b := range balances {
		resp.Balances[i] = dto.ToBalanceDetailResponse(b, currencyCode, names)
	}
	c.JSON(http.StatusOK, resp)
}

// displayNames builds a memberID -> display name map for response
// enrichment. A directory failure degrades to bare ids rather than
// failing the balance read.
func (h *balanceHandler) displayNames(c *gin.Context, groupID string) map[string]string {
	members, err := h.memberService.ListGroupMembers(c.Request.Context(), groupID)
	if err != nil {
		middleware.GetLoggerFromCtx(c.Request.Context()).Warn("Failed to enrich balances with member names",
			slog.String("group_id", groupID), slog.String("error", err.Error()))
		return nil
	}
	names := make(map[string]string, len(members))
	for _, m := range members {
		names[m.MemberID] = m.DisplayName
	}
	return names
}
