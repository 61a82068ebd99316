package handlers

import (
	"net/http"
	"strconv"

	"github.com/alienworld1/data-dex/internal/ledger"
	"github.com/alienworld1/data-dex/internal/models"
	"github.com/gin-gonic/gin"
)

// RewardHandler handles reward pool administration. Routes using it sit
// behind the admin guard; the ledger still checks the admin address itself.
type RewardHandler struct {
	ledger *ledger.Ledger
	admin  models.Address
}

// NewRewardHandler creates a new reward handler. admin is the platform admin
// address admin accounts act for.
func NewRewardHandler(l *ledger.Ledger, admin models.Address) *RewardHandler {
	return &RewardHandler{ledger: l, admin: admin}
}

// Pool returns the reward pool snapshot.
func (h *RewardHandler) Pool(c *gin.Context) {
	pool := h.ledger.GetPool()
	if pool == nil {
		c.JSON(http.StatusNotFound, Envelope{Success: false, Error: "not_found", Message: "reward pool not initialized"})
		return
	}
	respond(c, http.StatusOK, pool, "")
}

// ReplenishRequest represents a pool top-up request.
type ReplenishRequest struct {
	Amount int64 `json:"amount" binding:"required"`
}

// Replenish tops up the pool from the admin account.
func (h *RewardHandler) Replenish(c *gin.Context) {
	var req ReplenishRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	if err := h.ledger.ReplenishPool(h.admin, req.Amount); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, h.ledger.GetPool(), "pool replenished")
}

// BonusRequest represents a discretionary bonus payout request.
type BonusRequest struct {
	Recipient string `json:"recipient" binding:"required"`
	Amount    int64  `json:"amount" binding:"required"`
	Reason    string `json:"reason"`
}

// PayBonus pays a bonus from the pool.
func (h *RewardHandler) PayBonus(c *gin.Context) {
	var req BonusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	if err := h.ledger.PayBonus(h.admin, req.Recipient, req.Amount, req.Reason); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"recipient": req.Recipient, "amount": req.Amount}, "bonus paid")
}

// AddMilestoneRequest represents a new milestone definition.
type AddMilestoneRequest struct {
	Name         string `json:"name" binding:"required"`
	Description  string `json:"description"`
	Requirement  int64  `json:"requirement" binding:"required"`
	RewardAmount int64  `json:"reward_amount" binding:"required"`
}

// AddMilestone appends a milestone to the pool.
func (h *RewardHandler) AddMilestone(c *gin.Context) {
	var req AddMilestoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	id, err := h.ledger.AddMilestone(h.admin, ledger.MilestoneSpec{
		Name:         req.Name,
		Description:  req.Description,
		Requirement:  req.Requirement,
		RewardAmount: req.RewardAmount,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, gin.H{"milestone_id": id}, "milestone added")
}

// DeactivateMilestone marks a milestone inactive.
func (h *RewardHandler) DeactivateMilestone(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		respondBadRequest(c, "invalid milestone id")
		return
	}

	if err := h.ledger.DeactivateMilestone(h.admin, id); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"milestone_id": id}, "milestone deactivated")
}

// TransferRewardRequest represents the second phase of a milestone payout.
type TransferRewardRequest struct {
	Recipient   string `json:"recipient" binding:"required"`
	MilestoneID uint64 `json:"milestone_id" binding:"required"`
}

// TransferReward moves an achieved milestone's reward to its recipient.
func (h *RewardHandler) TransferReward(c *gin.Context) {
	var req TransferRewardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	if err := h.ledger.TransferMilestoneReward(h.admin, req.Recipient, req.MilestoneID); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"recipient": req.Recipient, "milestone_id": req.MilestoneID}, "reward transferred")
}

// EvaluateRequest triggers milestone evaluation for a user, typically after a
// backfill or imported upload history. A zero count is a valid evaluation.
type EvaluateRequest struct {
	User          string `json:"user" binding:"required"`
	UploadedCount int64  `json:"uploaded_count" binding:"min=0"`
}

// Evaluate runs milestone evaluation for an arbitrary user and count.
func (h *RewardHandler) Evaluate(c *gin.Context) {
	var req EvaluateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	achieved, err := h.ledger.EvaluateMilestones(req.User, req.UploadedCount)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"user": req.User, "achieved": achieved}, "")
}
