// ABOUTME: Plain-text rendering of store records for tool results
// ABOUTME: Deterministic ordering so identical requests produce identical text

package mcp

import (
	"fmt"
	"sort"
	"strings"

	"github.com/taxhelper/tax-gateway/internal/store"
)

func money(amount float64) string {
	return fmt.Sprintf("$%.2f", amount)
}

func renderProfile(p *store.TaxpayerProfile) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Taxpayer profile for %s\n", p.Name)
	fmt.Fprintf(&b, "  Email: %s\n", p.Email)
	fmt.Fprintf(&b, "  Phone: %s\n", p.Phone)
	fmt.Fprintf(&b, "  Address: %s\n", p.Address)
	fmt.Fprintf(&b, "  SSN (last 4): %s\n", p.SSNLast4)
	fmt.Fprintf(&b, "  Filing status: %s\n", p.FilingStatus)
	fmt.Fprintf(&b, "  Profile created: %s\n", p.CreatedAt.Format("2006-01-02"))
	return b.String()
}

func renderReturn(r *store.TaxReturn) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Tax return for %d (%s)\n", r.TaxYear, r.Status)
	fmt.Fprintf(&b, "  Filing status: %s\n", r.FilingStatus)
	fmt.Fprintf(&b, "  Adjusted gross income: %s\n", money(r.AdjustedGrossIncome))
	fmt.Fprintf(&b, "  Taxable income: %s\n", money(r.TaxableIncome))
	fmt.Fprintf(&b, "  Total tax: %s\n", money(r.TotalTax))
	fmt.Fprintf(&b, "  Total deductions: %s\n", money(r.TotalDeductions))
	if r.FilingDate != nil {
		fmt.Fprintf(&b, "  Filed: %s\n", r.FilingDate.Format("2006-01-02"))
	} else {
		b.WriteString("  Filed: not yet filed\n")
	}
	if r.Notes != "" {
		fmt.Fprintf(&b, "  Notes: %s\n", r.Notes)
	}
	return b.String()
}

func renderReturns(returns []store.TaxReturn) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Found %d tax return(s):\n\n", len(returns))
	for i, r := range returns {
		b.WriteString(renderReturn(&r))
		if i+1 < len(returns) {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func renderDeductions(heading string, deductions []store.Deduction) string {
	var b strings.Builder
	var total float64
	fmt.Fprintf(&b, "%s (%d item(s)):\n", heading, len(deductions))
	for _, d := range deductions {
		fmt.Fprintf(&b, "  - %d %s: %s for %q (%s", d.TaxYear, d.Category, money(d.Amount), d.Description, d.Type)
		if d.DocumentRef != "" {
			fmt.Fprintf(&b, ", ref %s", d.DocumentRef)
		}
		b.WriteString(")\n")
		total += d.Amount
	}
	fmt.Fprintf(&b, "Total: %s\n", money(total))
	return b.String()
}

// renderTotals lists per-category sums sorted by category name, then the
// grand total.
func renderTotals(year int, totals map[store.DeductionCategory]float64) string {
	categories := make([]string, 0, len(totals))
	for c := range totals {
		categories = append(categories, string(c))
	}
	sort.Strings(categories)

	var b strings.Builder
	var grand float64
	fmt.Fprintf(&b, "Deduction totals by category for %d:\n", year)
	for _, c := range categories {
		amount := totals[store.DeductionCategory(c)]
		fmt.Fprintf(&b, "  %s: %s\n", c, money(amount))
		grand += amount
	}
	fmt.Fprintf(&b, "Grand total: %s\n", money(grand))
	return b.String()
}

func yearTotal(deductions []store.Deduction) float64 {
	var total float64
	for _, d := range deductions {
		total += d.Amount
	}
	return total
}

// renderComparison shows each year's deductions, then the difference and
// percent change from year1 to year2. Percent change is omitted when year1
// has no deductions.
func renderComparison(year1, year2 int, byYear map[int][]store.Deduction) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Deduction comparison: %d vs %d\n\n", year1, year2)

	for _, year := range []int{year1, year2} {
		deductions, ok := byYear[year]
		if !ok {
			fmt.Fprintf(&b, "No deductions found for %d.\n\n", year)
			continue
		}
		b.WriteString(renderDeductions(fmt.Sprintf("Deductions for %d", year), deductions))
		b.WriteString("\n")
	}

	total1 := yearTotal(byYear[year1])
	total2 := yearTotal(byYear[year2])
	diff := total2 - total1
	fmt.Fprintf(&b, "Difference (%d minus %d): %s\n", year2, year1, money(diff))
	if total1 != 0 {
		fmt.Fprintf(&b, "Change: %.1f%%\n", diff/total1*100)
	}
	return b.String()
}

func renderDocuments(heading string, documents []store.Document) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%d item(s)):\n", heading, len(documents))
	for _, d := range documents {
		fmt.Fprintf(&b, "  - %s (%s, tax year %d, uploaded %s, %d bytes)",
			d.FileName, d.Type, d.TaxYear, d.UploadedAt.Format("2006-01-02"), d.SizeBytes)
		if d.Notes != "" {
			fmt.Fprintf(&b, " [%s]", d.Notes)
		}
		b.WriteString("\n")
	}
	return b.String()
}
