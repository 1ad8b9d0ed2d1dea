package models

// UserOverride records a confirmed human correction to a classified entry.
// Overrides feed the downstream learning loop; the original entry keeps its
// machine-assigned values in Reasoning for comparison.
type UserOverride struct {
	Base
	EntryID           string          `gorm:"type:uuid;not null;index" json:"entry_id"`
	PreviousType      TransactionType `gorm:"not null" json:"previous_type"`
	CorrectedType     TransactionType `gorm:"not null" json:"corrected_type"`
	PreviousCategory  string          `json:"previous_category"`
	CorrectedCategory string          `json:"corrected_category"`
	Note              string          `json:"note"`
	Source            string          `gorm:"not null" json:"source"`
}
