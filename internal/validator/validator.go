// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("transaction_type", validateTransactionType)
		_ = v.RegisterValidation("direction", validateDirection)
		_ = v.RegisterValidation("nature", validateNature)
	}
}

func validateTransactionType(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "INCOME", "EXPENSE", "TRANSFER", "LIABILITY_PAYMENT",
		"PENDING", "IGNORE", "CASHBACK", "REFUND", "INVESTMENT_OUTFLOW":
		return true
	}
	return false
}

func validateDirection(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "DEBIT", "CREDIT", "UNKNOWN":
		return true
	}
	return false
}

func validateNature(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "PENDING", "CREDIT_CARD_PAYMENT", "CREDIT_CARD_SPEND",
		"SELF_TRANSFER", "INCOME", "EXPENSE":
		return true
	}
	return false
}
