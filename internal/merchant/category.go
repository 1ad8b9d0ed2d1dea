package merchant

import "strings"

// categoryRules map keyword cues to expense categories, checked in order
// against the merchant name and the message body. These are coarse labels
// for the trace and downstream model training, not budget rules.
var categoryRules = []struct {
	category string
	keywords []string
}{
	{"Food & Dining", []string{"zomato", "swiggy", "dominos", "mcdonald", "restaurant", "cafe"}},
	{"Transport", []string{"uber", "ola", "rapido", "irctc", "redbus"}},
	{"Recharge/Bill", []string{"jio", "airtel", "vi ", "vodafone", "bsnl", "electricity", "broadband"}},
	{"Shopping", []string{"amazon", "flipkart", "myntra", "ajio", "meesho"}},
	{"Groceries", []string{"bigbasket", "blinkit", "zepto", "instamart", "grofers"}},
	{"Investment", []string{"zerodha", "upstox", "groww", "mutual fund", "sip purchase", "folio"}},
	{"Salary", []string{"salary", "payroll"}},
	{"Credit Card Payment", []string{"credit card"}},
}

// CategoryFallback is assigned when no rule matches.
const CategoryFallback = "Other"

// Categorize assigns a coarse expense category from the normalized merchant
// name and the raw body. First matching rule wins.
func Categorize(merchantName, body string) string {
	haystack := strings.ToLower(merchantName + " " + body)
	for _, rule := range categoryRules {
		for _, kw := range rule.keywords {
			if strings.Contains(haystack, kw) {
				return rule.category
			}
		}
	}
	return CategoryFallback
}
