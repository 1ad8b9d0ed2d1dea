package classify

import (
	"testing"

	"khata/internal/models"
)

func TestDetectDirection(t *testing.T) {
	tests := []struct {
		name string
		body string
		want models.Direction
	}{
		{"debited", "rs.500 debited from a/c xx1234", models.DirectionDebit},
		{"spent", "you spent rs.250 at amazon", models.DirectionDebit},
		{"paid", "rs.120 paid to swiggy via upi", models.DirectionDebit},
		{"sent", "rs.1000 sent to ravi via upi", models.DirectionDebit},
		{"withdrawn", "rs.2000 withdrawn at atm", models.DirectionDebit},
		{"credited", "rs.50000 credited to a/c xx5678", models.DirectionCredit},
		{"received", "payment of rs.5296 has been received", models.DirectionCredit},
		{"deposited", "rs.10000 deposited to your account", models.DirectionCredit},
		{"no_cue", "your account statement is ready", models.DirectionUnknown},
		{"empty", "", models.DirectionUnknown},
		// Debit wins when a body carries both claims.
		{"dual_claim", "rs.500 debited from a/c and credited to beneficiary", models.DirectionDebit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectDirection(tt.body); got != tt.want {
				t.Errorf("DetectDirection(%q) = %s, want %s", tt.body, got, tt.want)
			}
		})
	}
}
