package handlers

import (
	"net/http"

	"tripsplit-backend/utils"

	"github.com/gin-gonic/gin"
)

// GET /api/reconciliation/wallets/:id
func (h *Handler) GetWalletReconciliation(c *gin.Context) {
	walletID, ok := pathID(c, "wallet")
	if !ok {
		return
	}

	rec, err := h.reconciliation.Wallet(c.Request.Context(), walletID)
	if err != nil {
		h.respondError(c, err, "Failed to reconcile wallet")
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", rec)
}

// GET /api/reconciliation/trips/:id
func (h *Handler) GetTripReconciliation(c *gin.Context) {
	tripID, ok := pathID(c, "trip")
	if !ok {
		return
	}

	report, err := h.reconciliation.Trip(c.Request.Context(), tripID)
	if err != nil {
		h.respondError(c, err, "Failed to reconcile trip")
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", report)
}
