package handlers

import (
	"net/http"
	"strconv"

	"github.com/alienworld1/data-dex/internal/ledger"
	"github.com/alienworld1/data-dex/internal/middleware"
	"github.com/gin-gonic/gin"
)

// DatasetHandler handles dataset listing requests.
type DatasetHandler struct {
	ledger *ledger.Ledger
}

// NewDatasetHandler creates a new dataset handler.
func NewDatasetHandler(l *ledger.Ledger) *DatasetHandler {
	return &DatasetHandler{ledger: l}
}

// CreateDatasetRequest represents a dataset listing request.
type CreateDatasetRequest struct {
	ContentRef  string `json:"content_ref" binding:"required"`
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Price       int64  `json:"price" binding:"required"`
}

// Create lists a new dataset owned by the caller, then re-evaluates the
// caller's milestones against the bumped upload count.
func (h *DatasetHandler) Create(c *gin.Context) {
	var req CreateDatasetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	owner := middleware.GetAddress(c)
	id, err := h.ledger.CreateDataset(owner, req.ContentRef, req.Title, req.Description, req.Category, req.Price)
	if err != nil {
		respondError(c, err)
		return
	}

	var achieved []uint64
	if stats := h.ledger.GetStats(owner); stats != nil {
		achieved, _ = h.ledger.EvaluateMilestones(owner, stats.Uploaded)
	}

	respond(c, http.StatusCreated, gin.H{
		"dataset_id":          id,
		"milestones_achieved": achieved,
	}, "dataset listed")
}

// List returns all active datasets.
func (h *DatasetHandler) List(c *gin.Context) {
	respond(c, http.StatusOK, h.ledger.ListActive(), "")
}

// ListMine returns the caller's datasets, active or not.
func (h *DatasetHandler) ListMine(c *gin.Context) {
	respond(c, http.StatusOK, h.ledger.ListByOwner(middleware.GetAddress(c)), "")
}

// Get returns one dataset by id.
func (h *DatasetHandler) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		respondBadRequest(c, "invalid dataset id")
		return
	}

	ds := h.ledger.GetDataset(id)
	if ds == nil {
		c.JSON(http.StatusNotFound, Envelope{Success: false, Error: "not_found", Message: "dataset not found"})
		return
	}
	respond(c, http.StatusOK, ds, "")
}

// SetPriceRequest represents a reprice request.
type SetPriceRequest struct {
	Price int64 `json:"price" binding:"required"`
}

// SetPrice changes the price of a dataset owned by the caller.
func (h *DatasetHandler) SetPrice(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		respondBadRequest(c, "invalid dataset id")
		return
	}
	var req SetPriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	if err := h.ledger.SetPrice(middleware.GetAddress(c), id, req.Price); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"dataset_id": id, "price": req.Price}, "price updated")
}

// Deactivate soft-deletes a dataset owned by the caller.
func (h *DatasetHandler) Deactivate(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		respondBadRequest(c, "invalid dataset id")
		return
	}

	if err := h.ledger.Deactivate(middleware.GetAddress(c), id); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"dataset_id": id}, "dataset deactivated")
}
