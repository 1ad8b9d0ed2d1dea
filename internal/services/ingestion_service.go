package services

import (
	"errors"
	"sort"
	"time"

	"gorm.io/gorm"

	"khata/internal/classify"
	apperrors "khata/internal/errors"
	"khata/internal/logger"
	"khata/internal/merchant"
	"khata/internal/models"
	"khata/internal/trace"
	"khata/internal/uuid"
)

// ingestionService runs the classification pipeline and persists admitted
// decisions. Merchant normalization is independent of classification and
// runs after the decision settles.
type ingestionService struct {
	db         *gorm.DB
	classifier *classify.Classifier
	normalizer *merchant.Normalizer
}

// NewIngestionService creates a new IngestionServicer.
func NewIngestionService(db *gorm.DB, classifier *classify.Classifier, normalizer *merchant.Normalizer) IngestionServicer {
	return &ingestionService{db: db, classifier: classifier, normalizer: normalizer}
}

// ClassifyMessage resolves one message to a definite decision, writes the
// ledger row for persistable inserts, and records the trace on the session.
// Only storage failures propagate; the decision itself never fails.
func (s *ingestionService) ClassifyMessage(msg classify.RawMessage, session *trace.Session) (*IngestOutcome, error) {
	transactionID := uuid.New()
	result := s.classifier.Classify(msg)
	if result.Err != "" {
		logger.Get().Warnw("classification degraded",
			"transaction_id", transactionID,
			"sender", msg.Sender,
			"error", result.Err,
		)
	}

	log := trace.NewLog(transactionID, msg, result)
	outcome := &IngestOutcome{TransactionID: transactionID, Decision: result.Decision}

	if result.Decision.IsInsert() {
		outcome.Merchant = s.normalizer.Normalize(result.Parsed.RawCounterparty)
		outcome.CategoryName = merchant.Categorize(outcome.Merchant.NormalizedName, msg.Body)
		log.SetMerchant(outcome.Merchant.NormalizedName, outcome.CategoryName)

		ins := result.Decision.Insert
		if ins.Persistable {
			entry, duplicate, err := s.persistEntry(transactionID, msg, result, outcome)
			if err != nil {
				session.Record(log)
				return nil, err
			}
			outcome.Entry = entry
			outcome.Duplicate = duplicate
			log.SetPersisted(!duplicate)
		} else {
			log.SetPersisted(false)
		}
	}

	session.Record(log)
	return outcome, nil
}

// ScanMessages ingests a batch oldest-first. Messages are re-sorted by
// received timestamp so the dedup registry's oldest-first invariant holds
// regardless of input order; processing is strictly sequential.
func (s *ingestionService) ScanMessages(msgs []classify.RawMessage, session *trace.Session) (*ScanSummary, error) {
	ordered := make([]classify.RawMessage, len(msgs))
	copy(ordered, msgs)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].ReceivedAt.Before(ordered[j].ReceivedAt)
	})

	summary := &ScanSummary{Outcomes: make([]IngestOutcome, 0, len(ordered))}
	for _, msg := range ordered {
		outcome, err := s.ClassifyMessage(msg, session)
		if err != nil {
			return summary, err
		}
		summary.Processed++
		switch {
		case outcome.Duplicate:
			summary.Duplicates++
		case outcome.Decision.IsInsert() && outcome.Entry != nil:
			summary.Inserted++
		default:
			summary.Dropped++
		}
		summary.Outcomes = append(summary.Outcomes, *outcome)
	}
	return summary, nil
}

// persistEntry writes the ledger row for an admitted message. A content-hash
// collision means duplicate ingestion: the later row is stored soft-deleted
// so the earlier row stays canonical. Deletion is the safe default under
// ambiguity; there is no retry, the conflict is semantic.
func (s *ingestionService) persistEntry(transactionID string, msg classify.RawMessage, result classify.Result, outcome *IngestOutcome) (*models.LedgerEntry, bool, error) {
	ins := result.Decision.Insert
	entry := &models.LedgerEntry{
		Base:                    models.Base{ID: transactionID},
		OccurredAt:              msg.ReceivedAt,
		Sender:                  msg.Sender,
		Body:                    msg.Body,
		ContentHash:             classify.ContentHash(msg.Body),
		Direction:               result.Parsed.Direction,
		Nature:                  ins.Nature,
		Type:                    ins.Type,
		Amount:                  result.Parsed.Amount,
		Counterparty:            outcome.Merchant.NormalizedName,
		CategoryName:            outcome.CategoryName,
		AccountType:             ins.AccountType,
		Confidence:              ins.Confidence,
		Reasoning:               ins.Reasoning,
		EligibleForExpenseTotal: ins.EligibleForExpenseTotal,
		RequiresReview:          ins.RequiresReview,
	}

	var existing models.LedgerEntry
	err := s.db.Where("content_hash = ?", entry.ContentHash).First(&existing).Error
	switch {
	case err == nil:
		return s.storeDuplicate(entry, existing.ID)
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, false, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if err := s.db.Create(entry).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Lost the race against a concurrent writer; same policy.
			return s.storeDuplicate(entry, "")
		}
		return nil, false, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return entry, false, nil
}

// storeDuplicate keeps an audit copy of the later row, born soft-deleted.
func (s *ingestionService) storeDuplicate(entry *models.LedgerEntry, canonicalID string) (*models.LedgerEntry, bool, error) {
	entry.DeletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	if err := s.db.Create(entry).Error; err != nil {
		return nil, false, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	logger.Get().Infow("duplicate message soft-deleted",
		"entry_id", entry.ID,
		"canonical_id", canonicalID,
		"content_hash", entry.ContentHash,
	)
	return entry, true, nil
}
