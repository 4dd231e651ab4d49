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

// settlementHandler handles HTTP requests for the settlement lifecycle.
type settlementHandler struct {
	settlementService  portssvc.SettlementSvcFacade
	coordinatorService portssvc.CoordinatorSvc
}

func newSettlementHandler(ss portssvc.SettlementSvcFacade, cs portssvc.CoordinatorSvc) *settlementHandler {
	return &settlementHandler{
		settlementService:  ss,
		coordinatorService: cs,
	}
}

// registerSettlementRoutes registers routes related to settlements.
func registerSettlementRoutes(rg *gin.RouterGroup, settlementService portssvc.SettlementSvcFacade, coordinatorService portssvc.CoordinatorSvc) {
	h := newSettlementHandler(settlementService, coordinatorService)

	settlements := rg.Group("/settlements")
	{
		settlements.GET("", h.listSettlements)
		settlements.POST("", h.initiateSettlement)
		settlements.GET("/:settlementID", h.getSettlement)
		settlements.POST("/:settlementID/cancel", h.cancelSettlement)
	}
}

// initiateSettlement runs a manual payment end to end and returns the
// settlement in its terminal state.
func (h *settlementHandler) initiateSettlement(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	groupID := c.Param("groupID")

	var req dto.CreateSettlementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for InitiateSettlement", slog.String("error", err.Error()))
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
	logger.Info("Received request to initiate settlement",
		slog.String("from_member_id", req.FromMemberID),
		slog.String("to_member_id", req.ToMemberID),
	)

	settlement, err := h.coordinatorService.Initiate(c.Request.Context(), groupID, req, initiatorMemberID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrSettlementInFlight):
			logger.Warn("Settlement already in flight for pair")
			c.JSON(http.StatusConflict, gin.H{"error": "A payment between these members is already in progress"})
		case errors.Is(err, apperrors.ErrValidation):
			logger.Warn("Settlement validation failed", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrNotFound):
			logger.Warn("Settlement references unknown member or group", slog.String("error", err.Error()))
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to initiate settlement", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to initiate settlement"})
		}
		return
	}

	logger.Info("Settlement finished",
		slog.String("settlement_id", settlement.SettlementID),
		slog.String("status", string(settlement.Status)),
	)
	c.JSON(http.StatusCreated, dto.ToSettlementResponse(settlement))
}

// getSettlement retrieves a single settlement.
func (h *settlementHandler) getSettlement(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	groupID := c.Param("groupID")
	settlementID := c.Param("settlementID")

	settlement, err := h.settlementService.GetSettlementByID(c.Request.Context(), groupID, settlementID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Settlement not found"})
		} else {
			logger.Error("Failed to get settlement", slog.String("settlement_id", settlementID), slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve settlement"})
		}
		return
	}
	c.JSON(http.StatusOK, dto.ToSettlementResponse(settlement))
}

// listSettlements retrieves a page of the group's settlements, newest
// first, optionally filtered by status.
func (h *settlementHandler) listSettlements(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	groupID := c.Param("groupID")

	var params dto.ListSettlementsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query for ListSettlements", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	resp, err := h.settlementService.ListSettlements(c.Request.Context(), groupID, params)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to list settlements", slog.String("group_id", groupID), slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list settlements"})
		}
		return
	}
	c.JSON(http.StatusOK, resp)
}

// cancelSettlement cancels a pending settlement at the payer's request.
func (h *settlementHandler) cancelSettlement(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	settlementID := c.Param("settlementID")

	var req dto.CancelSettlementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CancelSettlement", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	requestingMemberID, ok := middleware.GetMemberIDFromContext(c)
	if !ok {
		logger.Error("Member ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	logger = logger.With(
		slog.String("settlement_id", settlementID),
		slog.String("requesting_member_id", requestingMemberID),
	)

	err := h.settlementService.CancelSettlement(c.Request.Context(), settlementID, req.Reason, requestingMemberID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Settlement not found"})
		case errors.Is(err, apperrors.ErrInvalidTransition):
			logger.Warn("Cancellation rejected, settlement already progressed")
			c.JSON(http.StatusConflict, gin.H{"error": "Settlement can no longer be cancelled; refetch its current state"})
		case errors.Is(err, apperrors.ErrForbidden):
			logger.Warn("Cancellation rejected, requester is not the payer")
			c.JSON(http.StatusForbidden, gin.H{"error": "Only the payer can cancel a settlement"})
		default:
			logger.Error("Failed to cancel settlement", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to cancel settlement"})
		}
		return
	}

	logger.Info("Settlement cancelled")
	c.Status(http.StatusNoContent)
}
