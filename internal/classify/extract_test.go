package classify

import (
	"testing"

	"github.com/shopspring/decimal"

	"khata/internal/models"
)

func TestExtractAmount(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    string
		wantHit bool
	}{
		{"rs_dot", "Rs.500 debited from A/c", "500", true},
		{"rs_space", "Rs 5,296.00 has been received", "5296", true},
		{"inr", "payment of INR 79.00 for Amazon", "79", true},
		{"comma_grouping", "Rs.1,23,456.78 credited", "123456.78", true},
		{"lowercase", "rs. 250.50 spent at cafe", "250.5", true},
		{"no_amount", "your OTP is 482913", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			amt, ok := ExtractAmount(tt.body)
			if ok != tt.wantHit {
				t.Fatalf("ExtractAmount(%q) hit = %v, want %v", tt.body, ok, tt.wantHit)
			}
			if ok && !amt.Equal(decimal.RequireFromString(tt.want)) {
				t.Errorf("ExtractAmount(%q) = %s, want %s", tt.body, amt.String(), tt.want)
			}
		})
	}
}

func TestExtractCounterparty(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"at_merchant", "Rs.250 spent at SWIGGY on 12-Aug-26", "SWIGGY"},
		{"info_star", "Card used. Info: AMAZON PAY*", "AMAZON PAY"},
		{"upi_vpa", "Rs.500 debited to swiggy@paytm for order", "swiggy"},
		{"to_on", "Rs.1200 sent To Ravi Kumar On 12-Aug", "Ravi Kumar"},
		{"ist_avl_limit", "Txn at 14:02 IST BIGBASKET Avl Limit Rs.40000", "BIGBASKET"},
		{"digit_start_rejected", "Rs.250 spent at 12345 on 12-Aug", ""},
		{"slash_rejected", "Rs.250 spent at 12/08/26 for bill", ""},
		{"none", "your account statement is ready", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractCounterparty(tt.body); got != tt.want {
				t.Errorf("ExtractCounterparty(%q) = %q, want %q", tt.body, got, tt.want)
			}
		})
	}
}

func TestGuessAccountType(t *testing.T) {
	tests := []struct {
		name string
		body string
		want models.AccountTypeGuess
	}{
		{"credit_card", "spent on your hdfc credit card xx2008", models.AccountGuessCreditCard},
		{"wallet", "rs.200 loaded to your paytm wallet", models.AccountGuessWallet},
		{"bank_ac", "rs.500 debited from a/c xx1234", models.AccountGuessBank},
		{"bank_acct", "icici bank acct xx294 debited", models.AccountGuessBank},
		{"unknown", "rs.500 debited via upi", models.AccountGuessUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GuessAccountType(tt.body); got != tt.want {
				t.Errorf("GuessAccountType(%q) = %s, want %s", tt.body, got, tt.want)
			}
		})
	}
}

func TestContentHash(t *testing.T) {
	t.Run("sixteen_hex_chars", func(t *testing.T) {
		h := ContentHash("Rs.500 debited from A/c XX1234")
		if len(h) != 16 {
			t.Fatalf("expected 16-char hash, got %d: %q", len(h), h)
		}
		for _, r := range h {
			if !((r >= '0' && r <= '9') || (r >= 'a' && r <= 'f')) {
				t.Fatalf("hash contains non-hex rune %q", r)
			}
		}
	})

	t.Run("deterministic", func(t *testing.T) {
		body := "Payment of Rs 5,296.00 has been received"
		if ContentHash(body) != ContentHash(body) {
			t.Error("same body must hash identically")
		}
	})

	t.Run("body_sensitive", func(t *testing.T) {
		if ContentHash("Rs.500 debited") == ContentHash("Rs.501 debited") {
			t.Error("different bodies must hash differently")
		}
	})
}
