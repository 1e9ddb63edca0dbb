package handlers

import (
	"net/http"

	"tripsplit-backend/models"
	"tripsplit-backend/utils"

	"github.com/gin-gonic/gin"
)

// GET /api/stats/trips/:id
func (h *Handler) GetTripStats(c *gin.Context) {
	tripID, ok := pathID(c, "trip")
	if !ok {
		return
	}

	trip, err := h.stats.TripStats(c.Request.Context(), tripID)
	if err != nil {
		h.respondError(c, err, "Failed to load trip stats")
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", trip.Rounded())
}

// GET /api/stats/trips/:id/members
func (h *Handler) GetMemberStats(c *gin.Context) {
	tripID, ok := pathID(c, "trip")
	if !ok {
		return
	}

	members, err := h.stats.MemberStats(c.Request.Context(), tripID)
	if err != nil {
		h.respondError(c, err, "Failed to load member stats")
		return
	}

	out := make([]models.MemberAggregate, 0, len(members))
	for _, m := range members {
		out = append(out, m.Rounded())
	}
	utils.SuccessResponse(c, http.StatusOK, "", out)
}

// GET /api/stats/trips/:id/wallets
func (h *Handler) GetWalletStats(c *gin.Context) {
	tripID, ok := pathID(c, "trip")
	if !ok {
		return
	}

	wallets, err := h.stats.WalletStats(c.Request.Context(), tripID)
	if err != nil {
		h.respondError(c, err, "Failed to load wallet stats")
		return
	}

	out := make([]models.WalletAggregate, 0, len(wallets))
	for _, w := range wallets {
		out = append(out, w.Rounded())
	}
	utils.SuccessResponse(c, http.StatusOK, "", out)
}

// POST /api/stats/trips/:id/refresh, recomputes regardless of policy
func (h *Handler) RefreshTripStats(c *gin.Context) {
	tripID, ok := pathID(c, "trip")
	if !ok {
		return
	}

	if err := h.stats.ForceRefresh(c.Request.Context(), tripID); err != nil {
		h.respondError(c, err, "Failed to refresh trip stats")
		return
	}
	trip, err := h.stats.TripStats(c.Request.Context(), tripID)
	if err != nil {
		h.respondError(c, err, "Failed to load trip stats")
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Stats refreshed", trip.Rounded())
}
