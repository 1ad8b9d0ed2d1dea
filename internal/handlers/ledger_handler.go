package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "khata/internal/errors"
	"khata/internal/models"
	"khata/internal/pagination"
	"khata/internal/services"
)

// LedgerHandler handles ledger entry requests.
type LedgerHandler struct {
	ledgerService services.LedgerServicer
	dedupService  services.DedupServicer
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(ledgerService services.LedgerServicer, dedupService services.DedupServicer) *LedgerHandler {
	return &LedgerHandler{ledgerService: ledgerService, dedupService: dedupService}
}

// ListEntriesQuery holds pagination and filter query parameters.
type ListEntriesQuery struct {
	pagination.PageRequest
	Type           *string `form:"type" binding:"omitempty,transaction_type"`
	Direction      *string `form:"direction" binding:"omitempty,direction"`
	From           *string `form:"from"`
	To             *string `form:"to"`
	RequiresReview *bool   `form:"requires_review"`
}

// ListEntries returns a paginated, filtered list of ledger entries.
func (h *LedgerHandler) ListEntries(c *gin.Context) {
	var query ListEntriesQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	filter := services.EntryFilter{RequiresReview: query.RequiresReview}
	if query.Type != nil {
		t := models.TransactionType(*query.Type)
		filter.Type = &t
	}
	if query.Direction != nil {
		d := models.Direction(*query.Direction)
		filter.Direction = &d
	}
	if query.From != nil && *query.From != "" {
		from, err := parseFlexibleTime(*query.From)
		if err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
			return
		}
		filter.FromDate = &from
	}
	if query.To != nil && *query.To != "" {
		to, err := parseFlexibleTime(*query.To)
		if err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
			return
		}
		filter.ToDate = &to
	}

	entries, err := h.ledgerService.ListEntries(query.PageRequest, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

// GetEntryByID returns a single ledger entry.
func (h *LedgerHandler) GetEntryByID(c *gin.Context) {
	entryID, err := parseEntryID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	entry, err := h.ledgerService.GetEntryByID(entryID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entry": entry})
}

// DeleteEntry soft-deletes a ledger entry.
func (h *LedgerHandler) DeleteEntry(c *gin.Context) {
	entryID, err := parseEntryID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.ledgerService.SoftDeleteEntry(entryID); err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Entry deleted"})
}

// OverrideEntryRequest carries a confirmed user correction.
type OverrideEntryRequest struct {
	CorrectedType     string `json:"corrected_type" binding:"required,transaction_type"`
	CorrectedCategory string `json:"corrected_category"`
	Note              string `json:"note" binding:"max=500"`
	Source            string `json:"source"`
}

// OverrideEntry records a user correction and applies it to the entry.
func (h *LedgerHandler) OverrideEntry(c *gin.Context) {
	entryID, err := parseEntryID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req OverrideEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	source := req.Source
	if source == "" {
		source = "api"
	}

	override, err := h.ledgerService.OverrideEntry(entryID,
		models.TransactionType(req.CorrectedType), req.CorrectedCategory, req.Note, source)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"override": override})
}

// RepairLedger runs the dedup repair pass.
func (h *LedgerHandler) RepairLedger(c *gin.Context) {
	summary, err := h.dedupService.Repair()
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"scanned":            summary.Scanned,
		"hashed":             summary.Hashed,
		"duplicates_removed": summary.DuplicatesRemoved,
	})
}
