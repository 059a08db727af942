// Package receipt extracts expense fields from OCR'd receipt text. The text
// extraction itself happens outside this service; we only parse lines.
package receipt

import (
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Extracted is what a receipt scan yields: enough to prefill an expense
// form, never enough to create one unattended.
type Extracted struct {
	MerchantName string          `json:"merchantName"`
	Date         string          `json:"date"`
	Total        decimal.Decimal `json:"total"`
}

var (
	dateRe   = regexp.MustCompile(`(\d{1,2}[-/]\d{1,2}[-/]\d{2,4}|\d{4}[-/]\d{1,2}[-/]\d{1,2})`)
	amountRe = regexp.MustCompile(`(\d+[.,]\d{2})`)
	totalRe  = regexp.MustCompile(`(?i)\btotal\b`)
)

// ParseText scrapes merchant, date, and total out of raw receipt text.
// The first non-blank line is taken as the merchant. The first line with a
// date-looking token wins; missing dates default to today. The total comes
// from the last amount on the first line with "total" as its own word, so
// "Subtotal" lines do not count, and tax amounts earlier on the line lose to
// the figure after them.
func ParseText(text string) Extracted {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}

	out := Extracted{
		MerchantName: "Unknown merchant",
		Date:         time.Now().Format("2006-01-02"),
		Total:        decimal.Zero,
	}
	if len(lines) > 0 {
		out.MerchantName = lines[0]
	}

	for _, line := range lines {
		if m := dateRe.FindString(line); m != "" {
			out.Date = m
			break
		}
	}

	for _, line := range lines {
		if !totalRe.MatchString(line) {
			continue
		}
		amounts := amountRe.FindAllString(line, -1)
		if len(amounts) == 0 {
			continue
		}
		raw := strings.ReplaceAll(amounts[len(amounts)-1], ",", ".")
		if total, err := decimal.NewFromString(raw); err == nil {
			out.Total = total
		}
		break
	}

	return out
}
