package models

// Direction is the money-flow direction detected from a message body.
type Direction string

const (
	DirectionDebit   Direction = "DEBIT"
	DirectionCredit  Direction = "CREDIT"
	DirectionUnknown Direction = "UNKNOWN"
)

// TransactionNature is the semantic classification of a financial event,
// assigned before any type mapping.
type TransactionNature string

const (
	NaturePending           TransactionNature = "PENDING"
	NatureCreditCardPayment TransactionNature = "CREDIT_CARD_PAYMENT"
	NatureCreditCardSpend   TransactionNature = "CREDIT_CARD_SPEND"
	NatureSelfTransfer      TransactionNature = "SELF_TRANSFER"
	NatureIncome            TransactionNature = "INCOME"
	NatureExpense           TransactionNature = "EXPENSE"
)

// TransactionType is the ledger type derived from a nature by a fixed mapping.
type TransactionType string

const (
	TypeIncome            TransactionType = "INCOME"
	TypeExpense           TransactionType = "EXPENSE"
	TypeTransfer          TransactionType = "TRANSFER"
	TypeLiabilityPayment  TransactionType = "LIABILITY_PAYMENT"
	TypePending           TransactionType = "PENDING"
	TypeIgnore            TransactionType = "IGNORE"
	TypeCashback          TransactionType = "CASHBACK"
	TypeRefund            TransactionType = "REFUND"
	TypeInvestmentOutflow TransactionType = "INVESTMENT_OUTFLOW"
)

// Persistable reports whether a ledger row may be written for this type.
// PENDING and IGNORE describe events that have not (or will never) become
// real ledger entries.
func (t TransactionType) Persistable() bool {
	return t != TypePending && t != TypeIgnore
}

// AccountTypeGuess is the inferred destination account kind for a message.
type AccountTypeGuess string

const (
	AccountGuessBank       AccountTypeGuess = "BANK"
	AccountGuessCreditCard AccountTypeGuess = "CREDIT_CARD"
	AccountGuessWallet     AccountTypeGuess = "WALLET"
	AccountGuessUnknown    AccountTypeGuess = "UNKNOWN"
)
