package handlers

import (
	"net/http"
	"strconv"

	"github.com/alienworld1/data-dex/internal/funds"
	"github.com/alienworld1/data-dex/internal/ledger"
	"github.com/alienworld1/data-dex/internal/middleware"
	"github.com/gin-gonic/gin"
)

// MarketHandler handles purchases, balances and per-user statistics.
type MarketHandler struct {
	ledger *ledger.Ledger
	bank   *funds.Bank
}

// NewMarketHandler creates a new market handler.
func NewMarketHandler(l *ledger.Ledger, bank *funds.Bank) *MarketHandler {
	return &MarketHandler{ledger: l, bank: bank}
}

// Purchase buys the dataset for the authenticated caller.
func (h *MarketHandler) Purchase(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		respondBadRequest(c, "invalid dataset id")
		return
	}

	purchase, err := h.ledger.ExecutePurchase(middleware.GetAddress(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, purchase, "purchase complete")
}

// MyStats returns the caller's lifetime counters. An address that never
// uploaded or purchased has no record yet; that is reported as zeros, not an
// error.
func (h *MarketHandler) MyStats(c *gin.Context) {
	addr := middleware.GetAddress(c)
	stats := h.ledger.GetStats(addr)
	if stats == nil {
		respond(c, http.StatusOK, gin.H{"address": addr, "uploaded": 0, "purchased": 0, "earned": 0, "spent": 0}, "")
		return
	}
	respond(c, http.StatusOK, stats, "")
}

// MyAchievements returns the caller's milestone achievements.
func (h *MarketHandler) MyAchievements(c *gin.Context) {
	addr := middleware.GetAddress(c)
	ach := h.ledger.GetAchievements(addr)
	if ach == nil {
		respond(c, http.StatusOK, gin.H{"address": addr, "achieved": []uint64{}, "rewarded": []uint64{}}, "")
		return
	}
	respond(c, http.StatusOK, ach, "")
}

// Balance returns the caller's account balance.
func (h *MarketHandler) Balance(c *gin.Context) {
	addr := middleware.GetAddress(c)
	respond(c, http.StatusOK, gin.H{"address": addr, "balance": h.bank.Balance(addr)}, "")
}

// DepositRequest represents a balance top-up request.
type DepositRequest struct {
	Amount int64 `json:"amount" binding:"required,min=1"`
}

// Deposit credits the caller's account. Local on-ramp mock for development
// deployments backed by the in-memory bank.
func (h *MarketHandler) Deposit(c *gin.Context) {
	var req DepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	addr := middleware.GetAddress(c)
	if err := h.bank.Deposit(addr, req.Amount); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"address": addr, "balance": h.bank.Balance(addr)}, "deposit complete")
}

// Purchases lists all purchases of one dataset.
func (h *MarketHandler) Purchases(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		respondBadRequest(c, "invalid dataset id")
		return
	}
	respond(c, http.StatusOK, h.ledger.ListPurchasesByDataset(id), "")
}

// Events returns the ledger event feed, for pollers and debugging.
func (h *MarketHandler) Events(c *gin.Context) {
	after, _ := strconv.ParseUint(c.DefaultQuery("after", "0"), 10, 64)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	respond(c, http.StatusOK, h.ledger.Events().Events(after, limit), "")
}
