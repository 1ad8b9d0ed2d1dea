package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerEntry is one admitted transaction derived from a notification message.
// ContentHash is unique among rows that are not soft-deleted; the partial
// index lives in the SQL migration since GORM cannot express the WHERE clause.
type LedgerEntry struct {
	Base
	OccurredAt   time.Time           `gorm:"not null;index" json:"occurred_at"`
	Sender       string              `gorm:"not null" json:"sender"`
	Body         string              `gorm:"not null" json:"body"`
	ContentHash  string              `gorm:"size:16;index" json:"content_hash"`
	Direction    Direction           `gorm:"not null" json:"direction"`
	Nature       TransactionNature   `json:"nature"`
	Type         TransactionType     `gorm:"not null;index" json:"type"`
	Amount       decimal.Decimal     `gorm:"type:numeric(14,2)" json:"amount"`
	Counterparty string              `json:"counterparty"`
	CategoryName string              `json:"category_name"`
	AccountType  AccountTypeGuess    `json:"account_type"`
	Confidence   float64             `gorm:"not null" json:"confidence"`
	Reasoning    string              `json:"reasoning"`

	// EligibleForExpenseTotal marks rows that count toward spend aggregates.
	// Transfers and liability payments stay false to avoid double counting.
	EligibleForExpenseTotal bool `json:"eligible_for_expense_total"`

	// RequiresReview marks fallback or force-corrected decisions so a human
	// can confirm them downstream.
	RequiresReview bool `gorm:"index" json:"requires_review"`
}
