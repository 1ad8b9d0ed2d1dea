package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"khata/internal/classify"
	"khata/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// DebitMessage builds a typical UPI debit notification.
func DebitMessage() classify.RawMessage {
	n := nextID()
	return classify.RawMessage{
		Sender:     "VM-HDFCBK",
		Body:       fmt.Sprintf("Rs.%d.00 debited from A/c XX1234 on 12-Aug-26 at SWIGGY via UPI. Ref %d.", 100+n, 900000+n),
		ReceivedAt: time.Now(),
	}
}

// CreditMessage builds a typical salary credit notification.
func CreditMessage() classify.RawMessage {
	n := nextID()
	return classify.RawMessage{
		Sender:     "VM-ICICIB",
		Body:       fmt.Sprintf("Rs.%d.00 credited to A/c XX5678 towards SALARY on 01-Aug-26. Ref %d.", 50000+n, 800000+n),
		ReceivedAt: time.Now(),
	}
}

// CreateTestEntry persists a minimal expense entry with a unique body and hash.
func CreateTestEntry(t *testing.T, db *gorm.DB) *models.LedgerEntry {
	t.Helper()

	body := fmt.Sprintf("Rs.250.00 debited from A/c XX1234 at Test Merchant %d via UPI.", nextID())
	return CreateTestEntryWithBody(t, db, body)
}

// CreateTestEntryWithBody persists an expense entry for the given message body.
func CreateTestEntryWithBody(t *testing.T, db *gorm.DB, body string) *models.LedgerEntry {
	t.Helper()

	entry := &models.LedgerEntry{
		OccurredAt:              time.Now(),
		Sender:                  "VM-HDFCBK",
		Body:                    body,
		ContentHash:             classify.ContentHash(body),
		Direction:               models.DirectionDebit,
		Nature:                  models.NatureExpense,
		Type:                    models.TypeExpense,
		Amount:                  decimal.NewFromFloat(250.00),
		Counterparty:            "Test Merchant",
		CategoryName:            "Other",
		AccountType:             models.AccountGuessBank,
		Confidence:              0.7,
		Reasoning:               "TREE_L6_EXPENSE",
		EligibleForExpenseTotal: true,
	}
	if err := db.Create(entry).Error; err != nil {
		t.Fatalf("failed to create test entry: %v", err)
	}
	return entry
}

// CreateTestOverride persists an override correcting the given entry to TRANSFER.
func CreateTestOverride(t *testing.T, db *gorm.DB, entryID string) *models.UserOverride {
	t.Helper()

	override := &models.UserOverride{
		EntryID:       entryID,
		PreviousType:  models.TypeExpense,
		CorrectedType: models.TypeTransfer,
		Source:        "test",
	}
	if err := db.Create(override).Error; err != nil {
		t.Fatalf("failed to create test override: %v", err)
	}
	return override
}
