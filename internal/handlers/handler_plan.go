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

// planHandler handles optimization plans: computing them and applying
// them.
type planHandler struct {
	coordinatorService portssvc.CoordinatorSvc
}

func newPlanHandler(cs portssvc.CoordinatorSvc) *planHandler {
	return &planHandler{coordinatorService: cs}
}

// registerPlanRoutes registers routes related to settlement plans.
func registerPlanRoutes(rg *gin.RouterGroup, coordinatorService portssvc.CoordinatorSvc) {
	h := newPlanHandler(coordinatorService)

	plan := rg.Group("/plan")
	{
		plan.GET("", h.getPlan)
		plan.POST("/apply", h.applyPlan)
	}
}

// getPlan computes an optimized settlement plan from live balances.
func (h *planHandler) getPlan(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	groupID := c.Param("groupID")

	plan, currencyCode, err := h.coordinatorService.OptimizeGroup(c.Request.Context(), groupID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Group not found"})
		case errors.Is(err, apperrors.ErrImbalancedLedger):
			// Upstream bug: surfaced, logged, never auto-retried.
			logger.Error("Imbalanced ledger detected during optimization", slog.String("group_id", groupID), slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ledger is imbalanced; optimization aborted"})
		default:
			logger.Error("Failed to optimize group", slog.String("group_id", groupID), slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute settlement plan"})
		}
		return
	}
	c.JSON(http.StatusOK, dto.ToSettlementPlanResponse(plan, currencyCode))
}

// applyPlan revalidates a presented plan against live balances and
// initiates every planned transfer.
func (h *planHandler) applyPlan(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	groupID := c.Param("groupID")

	var req dto.ApplyPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for ApplyPlan", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	initiatorMemberID, ok := middleware.GetMemberIDFromContext(c)
	if !ok {
		logger.Error("Member ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	logger = logger.With(
		slog.String("group_id", groupID),
		slog.String("initiator_member_id", initiatorMemberID),
	)
	logger.Info("Received request to apply settlement plan", slog.Int("transfer_count", len(req.Transfers)))

	results, err := h.coordinatorService.ApplyPlan(c.Request.Context(), groupID, req, initiatorMemberID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrValidation):
			logger.Warn("Plan application rejected", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Group not found"})
		case errors.Is(err, apperrors.ErrImbalancedLedger):
			logger.Error("Imbalanced ledger detected during plan application", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ledger is imbalanced; plan application aborted"})
		default:
			logger.Error("Failed to apply settlement plan", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to apply settlement plan"})
		}
		return
	}

	logger.Info("Settlement plan applied", slog.Int("transfer_count", len(results)))
	c.JSON(http.StatusOK, gin.H{"results": results})
}
