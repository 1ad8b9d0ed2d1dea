package services

import (
	"errors"

	"gorm.io/gorm"

	"khata/internal/classify"
	apperrors "khata/internal/errors"
	"khata/internal/logger"
)

// dedupService is the repair pass over already-persisted rows: it backfills
// missing content hashes and soft-deletes duplicates.
type dedupService struct {
	db *gorm.DB
}

// NewDedupService creates a new DedupServicer.
func NewDedupService(db *gorm.DB) DedupServicer {
	return &dedupService{db: db}
}

// entryDigest is the slim projection the repair pass scans.
type entryDigest struct {
	ID          string
	Body        string
	ContentHash string
}

// Repair scans non-deleted rows oldest-first, computes missing hashes, and
// soft-deletes any row whose hash was already seen: the later row, never
// the earlier. A second run over a repaired ledger performs no mutations.
func (s *dedupService) Repair() (*RepairSummary, error) {
	var rows []entryDigest
	err := s.db.Table("ledger_entries").
		Select("id", "body", "content_hash").
		Where("deleted_at IS NULL").
		Order("occurred_at ASC, created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	summary := &RepairSummary{Scanned: len(rows)}
	seen := make(map[string]string, len(rows)) // hash -> canonical row id
	removed := make(map[string]bool)           // ids soft-deleted mid-pass

	for _, row := range rows {
		if removed[row.ID] {
			continue
		}
		hash := row.ContentHash
		backfilled := false
		if hash == "" {
			hash = classify.ContentHash(row.Body)
			backfilled = true
		}

		if canonicalID, dup := seen[hash]; dup {
			// This row sorts after the canonical one; soft-delete it. A
			// backfilled hash is written in the same UPDATE: the partial
			// unique index forbids a second live row with the canonical
			// row's hash, so the hash may never land before the delete.
			updates := map[string]interface{}{"deleted_at": gorm.Expr("CURRENT_TIMESTAMP")}
			if backfilled {
				updates["content_hash"] = hash
			}
			if err := s.db.Table("ledger_entries").
				Where("id = ?", row.ID).
				Updates(updates).Error; err != nil {
				return summary, apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
			if backfilled {
				summary.Hashed++
			}
			summary.DuplicatesRemoved++
			logger.Get().Infow("repair pass soft-deleted duplicate",
				"entry_id", row.ID,
				"canonical_id", canonicalID,
				"content_hash", hash,
			)
			continue
		}

		if backfilled {
			err := s.db.Table("ledger_entries").
				Where("id = ?", row.ID).
				Update("content_hash", hash).Error
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				// A row later in the scan already carries this hash live.
				// The older row wins; soft-delete the holder, then the
				// backfill goes through.
				err = s.removeLiveHolder(hash, summary, removed)
				if err == nil {
					err = s.db.Table("ledger_entries").
						Where("id = ?", row.ID).
						Update("content_hash", hash).Error
				}
			}
			if err != nil {
				return summary, apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
			summary.Hashed++
		}
		seen[hash] = row.ID
	}

	return summary, nil
}

// removeLiveHolder soft-deletes the live row currently holding hash and
// marks it so the scan loop skips it.
func (s *dedupService) removeLiveHolder(hash string, summary *RepairSummary, removed map[string]bool) error {
	var holder entryDigest
	err := s.db.Table("ledger_entries").
		Select("id").
		Where("content_hash = ? AND deleted_at IS NULL", hash).
		Take(&holder).Error
	if err != nil {
		return err
	}
	err = s.db.Table("ledger_entries").
		Where("id = ?", holder.ID).
		Update("deleted_at", gorm.Expr("CURRENT_TIMESTAMP")).Error
	if err != nil {
		return err
	}
	removed[holder.ID] = true
	summary.DuplicatesRemoved++
	logger.Get().Infow("repair pass soft-deleted duplicate",
		"entry_id", holder.ID,
		"content_hash", hash,
	)
	return nil
}
