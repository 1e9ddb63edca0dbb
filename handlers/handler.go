package handlers

import (
	"errors"
	"log/slog"

	"tripsplit-backend/services"
	"tripsplit-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Handler struct {
	stats          services.StatsProvider
	transactions   *services.TransactionService
	reconciliation *services.ReconciliationService
	logger         *slog.Logger
}

func New(stats services.StatsProvider, transactions *services.TransactionService, reconciliation *services.ReconciliationService, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		stats:          stats,
		transactions:   transactions,
		reconciliation: reconciliation,
		logger:         logger,
	}
}

// Register mounts every API route under api.
func (h *Handler) Register(api *gin.RouterGroup) {
	// Stats
	api.GET("/stats/trips/:id", h.GetTripStats)
	api.GET("/stats/trips/:id/members", h.GetMemberStats)
	api.GET("/stats/trips/:id/wallets", h.GetWalletStats)
	api.POST("/stats/trips/:id/refresh", h.RefreshTripStats)

	// Reconciliation
	api.GET("/reconciliation/wallets/:id", h.GetWalletReconciliation)
	api.GET("/reconciliation/wallets/:id/settlements", h.GetWalletSettlements)
	api.GET("/reconciliation/trips/:id", h.GetTripReconciliation)
	api.POST("/settlements/compute", h.ComputeSettlements)

	// Ledger
	api.POST("/trips/:id/transactions", h.CreateTransaction)
	api.PUT("/transactions/:id", h.UpdateTransaction)
	api.DELETE("/transactions/:id", h.DeleteTransaction)
	api.PUT("/wallets/:id/members", h.SetWalletMembers)
}

// pathID parses the :id parameter, answering 400 when it is not a UUID.
func pathID(c *gin.Context, what string) (uuid.UUID, bool) {
	id, err := utils.ParseUUID(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid "+what+" ID")
		return uuid.Nil, false
	}
	return id, true
}

// respondError maps service errors to status codes. Anything unclassified
// is logged and answered with fallback.
func (h *Handler) respondError(c *gin.Context, err error, fallback string) {
	_ = c.Error(err)
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		utils.BadRequest(c, err.Error())
	case services.IsNotFound(err):
		utils.NotFound(c, err.Error())
	case services.IsComputation(err):
		utils.UnprocessableEntity(c, err.Error())
	default:
		h.logger.Error(fallback, "path", c.FullPath(), "error", err)
		utils.InternalError(c, fallback)
	}
}
