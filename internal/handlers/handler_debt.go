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

// debtHandler accepts pre-aggregated debt batches from the upstream
// expense system.
type debtHandler struct {
	balanceService portssvc.BalanceSvcFacade
}

func newDebtHandler(bs portssvc.BalanceSvcFacade) *debtHandler {
	return &debtHandler{balanceService: bs}
}

// registerDebtRoutes registers routes related to raw debt ingestion.
func registerDebtRoutes(rg *gin.RouterGroup, balanceService portssvc.BalanceSvcFacade) {
	h := newDebtHandler(balanceService)
	rg.PUT("/debts", h.replaceGroupDebts)
}

// replaceGroupDebts atomically swaps the group's raw debt set. The whole
// batch is rejected on the first malformed debt.
func (h *debtHandler) replaceGroupDebts(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	groupID := c.Param("groupID")

	var req dto.ReplaceDebtsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for ReplaceGroupDebts", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actorMemberID, ok := middleware.GetMemberIDFromContext(c)
	if !ok {
		logger.Error("Member ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	logger = logger.With(slog.String("group_id", groupID), slog.String("actor_member_id", actorMemberID))

	debts, err := req.ToDomainDebts(groupID)
	if err != nil {
		logger.Warn("Invalid debt amounts in batch", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.balanceService.ReplaceGroupDebts(c.Request.Context(), groupID, debts, actorMemberID); err != nil {
		switch {
		case errors.Is(err, apperrors.ErrInvalidDebt), errors.Is(err, apperrors.ErrValidation):
			logger.Warn("Rejected debt batch", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrNotFound):
			logger.Warn("Group not found for debt replace")
			c.JSON(http.StatusNotFound, gin.H{"error": "Group not found"})
		default:
			logger.Error("Failed to replace group debts", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to replace debts"})
		}
		return
	}

	logger.Info("Group debts replaced", slog.Int("debt_count", len(debts)))
	c.Status(http.StatusNoContent)
}
