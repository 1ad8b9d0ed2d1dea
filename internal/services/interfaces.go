package services

import (
	"time"

	"khata/internal/classify"
	"khata/internal/merchant"
	"khata/internal/models"
	"khata/internal/pagination"
	"khata/internal/trace"
)

// IngestOutcome is the result of ingesting one message: the decision, the
// normalized counterparty, and the written row when one was admitted.
type IngestOutcome struct {
	TransactionID string
	Decision      classify.Decision
	Merchant      merchant.Candidate
	CategoryName  string
	Entry         *models.LedgerEntry
	Duplicate     bool
}

// ScanSummary aggregates a batch ingestion run.
type ScanSummary struct {
	Processed  int
	Inserted   int
	Dropped    int
	Duplicates int
	Outcomes   []IngestOutcome
}

// IngestionServicer classifies messages and persists admitted decisions.
type IngestionServicer interface {
	ClassifyMessage(msg classify.RawMessage, session *trace.Session) (*IngestOutcome, error)
	ScanMessages(msgs []classify.RawMessage, session *trace.Session) (*ScanSummary, error)
}

// EntryFilter holds optional filter parameters for listing ledger entries.
type EntryFilter struct {
	Type           *models.TransactionType
	Direction      *models.Direction
	FromDate       *time.Time
	ToDate         *time.Time
	RequiresReview *bool
}

// LedgerServicer reads and corrects persisted ledger entries.
type LedgerServicer interface {
	ListEntries(page pagination.PageRequest, filter EntryFilter) (*pagination.PageResponse[models.LedgerEntry], error)
	GetEntryByID(entryID string) (*models.LedgerEntry, error)
	SoftDeleteEntry(entryID string) error
	OverrideEntry(entryID string, correctedType models.TransactionType, correctedCategory, note, source string) (*models.UserOverride, error)
}

// RepairSummary reports what one dedup repair pass changed.
type RepairSummary struct {
	Scanned           int
	Hashed            int
	DuplicatesRemoved int
}

// DedupServicer backfills content hashes and soft-deletes duplicate rows.
type DedupServicer interface {
	Repair() (*RepairSummary, error)
}
