// Package classify holds lightweight content classification over extracted text.
package classify

import "strings"

// financialKeywords is the fixed list matched against document samples.
var financialKeywords = []string{
	"balance sheet", "cash flow", "profit and loss", "p&l",
	"income statement", "assets", "liabilities", "equity",
	"depreciation", "amortization", "ebitda", "revenue",
	"dividend", "operating profit", "financial statement",
}

// ContainsFinancialKeywords reports whether text mentions any financial term.
// Case-insensitive substring match; pure and total.
func ContainsFinancialKeywords(text string) bool {
	t := strings.ToLower(text)
	for _, kw := range financialKeywords {
		if strings.Contains(t, kw) {
			return true
		}
	}
	return false
}
