package handlers

import (
	"net/http"

	"tripsplit-backend/models"
	"tripsplit-backend/utils"

	"github.com/gin-gonic/gin"
)

// POST /api/trips/:id/transactions
func (h *Handler) CreateTransaction(c *gin.Context) {
	tripID, ok := pathID(c, "trip")
	if !ok {
		return
	}

	var req models.CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	txn, err := h.transactions.Create(c.Request.Context(), tripID, req)
	if err != nil {
		h.respondError(c, err, "Failed to create transaction")
		return
	}

	utils.SuccessResponse(c, http.StatusCreated, "Transaction created", txn)
}

// PUT /api/transactions/:id
func (h *Handler) UpdateTransaction(c *gin.Context) {
	txnID, ok := pathID(c, "transaction")
	if !ok {
		return
	}

	var req models.UpdateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	txn, err := h.transactions.Update(c.Request.Context(), txnID, req)
	if err != nil {
		h.respondError(c, err, "Failed to update transaction")
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Transaction updated", txn)
}

// DELETE /api/transactions/:id
func (h *Handler) DeleteTransaction(c *gin.Context) {
	txnID, ok := pathID(c, "transaction")
	if !ok {
		return
	}

	if err := h.transactions.Delete(c.Request.Context(), txnID); err != nil {
		h.respondError(c, err, "Failed to delete transaction")
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Transaction deleted", nil)
}

// PUT /api/wallets/:id/members
func (h *Handler) SetWalletMembers(c *gin.Context) {
	walletID, ok := pathID(c, "wallet")
	if !ok {
		return
	}

	var req models.SetWalletMembersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	if err := h.transactions.SetWalletBalances(c.Request.Context(), walletID, req); err != nil {
		h.respondError(c, err, "Failed to update wallet balances")
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Wallet balances updated", nil)
}
