package services

import (
	"errors"

	"gorm.io/gorm"

	apperrors "khata/internal/errors"
	"khata/internal/models"
	"khata/internal/pagination"
)

// ledgerService reads and corrects persisted ledger entries.
type ledgerService struct {
	db *gorm.DB
}

// NewLedgerService creates a new LedgerServicer.
func NewLedgerService(db *gorm.DB) LedgerServicer {
	return &ledgerService{db: db}
}

// ListEntries retrieves a paginated, filtered list of non-deleted entries,
// newest first.
func (s *ledgerService) ListEntries(page pagination.PageRequest, filter EntryFilter) (*pagination.PageResponse[models.LedgerEntry], error) {
	page.Defaults()

	base := s.db.Model(&models.LedgerEntry{})
	base = applyEntryFilters(base, filter)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var entries []models.LedgerEntry
	if err := base.Scopes(pagination.Paginate(page)).
		Order("occurred_at DESC").
		Find(&entries).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(entries, page.Page, page.PageSize, totalItems)
	return &result, nil
}

func applyEntryFilters(q *gorm.DB, f EntryFilter) *gorm.DB {
	if f.Type != nil {
		q = q.Where("type = ?", *f.Type)
	}
	if f.Direction != nil {
		q = q.Where("direction = ?", *f.Direction)
	}
	if f.FromDate != nil {
		q = q.Where("occurred_at >= ?", *f.FromDate)
	}
	if f.ToDate != nil {
		q = q.Where("occurred_at <= ?", *f.ToDate)
	}
	if f.RequiresReview != nil {
		q = q.Where("requires_review = ?", *f.RequiresReview)
	}
	return q
}

// GetEntryByID retrieves a non-deleted entry by id.
func (s *ledgerService) GetEntryByID(entryID string) (*models.LedgerEntry, error) {
	var entry models.LedgerEntry
	if err := s.db.Where("id = ?", entryID).First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrEntryNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &entry, nil
}

// SoftDeleteEntry soft-deletes an entry. The row and its trace remain
// available for audit.
func (s *ledgerService) SoftDeleteEntry(entryID string) error {
	entry, err := s.GetEntryByID(entryID)
	if err != nil {
		return err
	}
	if err := s.db.Delete(entry).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// OverrideEntry records a confirmed user correction and applies it to the
// entry. The machine-assigned values survive in the override record for the
// learning loop.
func (s *ledgerService) OverrideEntry(entryID string, correctedType models.TransactionType, correctedCategory, note, source string) (*models.UserOverride, error) {
	if !correctedType.Persistable() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidType, "corrected type must be persistable")
	}

	entry, err := s.GetEntryByID(entryID)
	if err != nil {
		return nil, err
	}
	if entry.Type == correctedType && (correctedCategory == "" || entry.CategoryName == correctedCategory) {
		return nil, apperrors.ErrOverrideSameType
	}

	override := &models.UserOverride{
		EntryID:           entry.ID,
		PreviousType:      entry.Type,
		CorrectedType:     correctedType,
		PreviousCategory:  entry.CategoryName,
		CorrectedCategory: correctedCategory,
		Note:              note,
		Source:            source,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(override).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		updates := map[string]any{
			"type":            correctedType,
			"requires_review": false,
		}
		if correctedCategory != "" {
			updates["category_name"] = correctedCategory
		}
		if err := tx.Model(entry).Updates(updates).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return override, nil
}
