package handlers

import (
	"net/http"

	"tripsplit-backend/models"
	"tripsplit-backend/services"
	"tripsplit-backend/utils"

	"github.com/gin-gonic/gin"
)

// GET /api/reconciliation/wallets/:id/settlements
func (h *Handler) GetWalletSettlements(c *gin.Context) {
	walletID, ok := pathID(c, "wallet")
	if !ok {
		return
	}

	transfers, err := h.reconciliation.WalletSettlements(c.Request.Context(), walletID)
	if err != nil {
		h.respondError(c, err, "Failed to compute settlements")
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", transfers)
}

// POST /api/settlements/compute, transfers for an ad hoc list of balances
func (h *Handler) ComputeSettlements(c *gin.Context) {
	var req models.ComputeSettlementsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	balances := make([]models.ParticipantBalance, 0, len(req.Balances))
	for _, b := range req.Balances {
		id, err := utils.ParseUUID(b.ParticipantID)
		if err != nil {
			utils.BadRequest(c, "Invalid participant ID: "+b.ParticipantID)
			return
		}
		balances = append(balances, models.ParticipantBalance{ParticipantID: id, Balance: b.Balance})
	}

	utils.SuccessResponse(c, http.StatusOK, "", services.ComputeSettlements(balances))
}
