// ABOUTME: Static reference definitions for published tax years and forms
// ABOUTME: Bracket, deduction, and instruction data consumed by the Provider

package refdata

import "fmt"

// TaxBracket is one marginal rate band. UpperBound 0 means no ceiling.
type TaxBracket struct {
	FilingStatus string  `json:"filingStatus"`
	Rate         float64 `json:"rate"`
	LowerBound   float64 `json:"lowerBound"`
	UpperBound   float64 `json:"upperBound,omitempty"`
}

// StandardDeduction is the standard deduction for one filing status.
type StandardDeduction struct {
	FilingStatus string  `json:"filingStatus"`
	Amount       float64 `json:"amount"`
}

// DeductionRule describes when a deduction category may be claimed.
type DeductionRule struct {
	Category            string `json:"category"`
	Description         string `json:"description"`
	RequiresItemization bool   `json:"requiresItemization"`
}

// DeductionLimit is a cap or floor on a deduction category.
type DeductionLimit struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount,omitempty"`
	AGIPercent  float64 `json:"agiPercent,omitempty"`
}

// EligibilityCriterion is a qualification rule for a credit or deduction.
type EligibilityCriterion struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ReferenceYear bundles all public knowledge for one tax year.
type ReferenceYear struct {
	Year                int                    `json:"year"`
	Brackets            []TaxBracket           `json:"brackets"`
	StandardDeductions  []StandardDeduction    `json:"standardDeductions"`
	DeductionRules      []DeductionRule        `json:"deductionRules"`
	DeductionLimits     []DeductionLimit       `json:"deductionLimits"`
	EligibilityCriteria []EligibilityCriterion `json:"eligibilityCriteria"`
}

// FormSection is one section of a form's instructions.
type FormSection struct {
	Title    string `json:"title"`
	Guidance string `json:"guidance"`
}

// FormInstructions is guidance for completing one form.
type FormInstructions struct {
	FormNumber     string        `json:"formNumber"`
	Title          string        `json:"title"`
	Year           int           `json:"year"`
	Sections       []FormSection `json:"sections"`
	CommonMistakes []string      `json:"commonMistakes"`
	FilingDeadline string        `json:"filingDeadline"`
}

var supportedYears = []int{2022, 2023, 2024}

var knownForms = []string{"1040", "schedule-a", "schedule-c", "w-2", "1099-nec"}

// singleBrackets and jointBrackets hold the lower bound of each band per
// year, for the fixed federal rate schedule.
var bracketRates = []float64{0.10, 0.12, 0.22, 0.24, 0.32, 0.35, 0.37}

var singleBounds = map[int][]float64{
	2022: {0, 10275, 41775, 89075, 170050, 215950, 539900},
	2023: {0, 11000, 44725, 95375, 182100, 231250, 578125},
	2024: {0, 11600, 47150, 100525, 191950, 243725, 609350},
}

var jointBounds = map[int][]float64{
	2022: {0, 20550, 83550, 178150, 340100, 431900, 647850},
	2023: {0, 22000, 89450, 190750, 364200, 462500, 693750},
	2024: {0, 23200, 94300, 201050, 383900, 487450, 731200},
}

var standardDeductions = map[int]map[string]float64{
	2022: {"Single": 12950, "MarriedFilingJointly": 25900, "HeadOfHousehold": 19400},
	2023: {"Single": 13850, "MarriedFilingJointly": 27700, "HeadOfHousehold": 20800},
	2024: {"Single": 14600, "MarriedFilingJointly": 29200, "HeadOfHousehold": 21900},
}

func bracketsFor(year int) []TaxBracket {
	var brackets []TaxBracket
	appendStatus := func(status string, bounds []float64) {
		for i, rate := range bracketRates {
			b := TaxBracket{FilingStatus: status, Rate: rate, LowerBound: bounds[i]}
			if i+1 < len(bounds) {
				b.UpperBound = bounds[i+1]
			}
			brackets = append(brackets, b)
		}
	}
	appendStatus("Single", singleBounds[year])
	appendStatus("MarriedFilingJointly", jointBounds[year])
	return brackets
}

// buildReferenceYear assembles the bundle for a supported year, or nil.
func buildReferenceYear(year int) *ReferenceYear {
	byStatus, ok := standardDeductions[year]
	if !ok {
		return nil
	}

	stdDeductions := []StandardDeduction{
		{FilingStatus: "Single", Amount: byStatus["Single"]},
		{FilingStatus: "MarriedFilingJointly", Amount: byStatus["MarriedFilingJointly"]},
		{FilingStatus: "HeadOfHousehold", Amount: byStatus["HeadOfHousehold"]},
	}

	return &ReferenceYear{
		Year:               year,
		Brackets:           bracketsFor(year),
		StandardDeductions: stdDeductions,
		DeductionRules: []DeductionRule{
			{Category: "MedicalExpenses", Description: "Unreimbursed medical and dental expenses above the AGI floor.", RequiresItemization: true},
			{Category: "CharitableDonations", Description: "Gifts of cash or property to qualified organizations, with receipts.", RequiresItemization: true},
			{Category: "MortgageInterest", Description: "Interest on acquisition debt for a primary or secondary residence.", RequiresItemization: true},
			{Category: "PropertyTaxes", Description: "State and local real property taxes, subject to the SALT cap.", RequiresItemization: true},
			{Category: "BusinessExpenses", Description: "Ordinary and necessary expenses for self-employment income.", RequiresItemization: false},
			{Category: "EducationExpenses", Description: "Qualified tuition and related expenses, subject to income phase-outs.", RequiresItemization: false},
			{Category: "StateLocalTaxes", Description: "State and local income or sales taxes, subject to the SALT cap.", RequiresItemization: true},
		},
		DeductionLimits: []DeductionLimit{
			{Name: "SALT cap", Description: "Combined state and local tax deduction ceiling.", Amount: 10000},
			{Name: "Mortgage principal cap", Description: "Interest deductible on acquisition debt up to this principal.", Amount: 750000},
			{Name: "Charitable AGI limit", Description: "Cash contributions deductible up to this share of AGI.", AGIPercent: 60},
			{Name: "Medical AGI floor", Description: "Only expenses above this share of AGI are deductible.", AGIPercent: 7.5},
		},
		EligibilityCriteria: []EligibilityCriterion{
			{Name: "Itemization", Description: "Itemized deductions must exceed the standard deduction to be worthwhile."},
			{Name: "Qualified organization", Description: "Charitable donations count only toward IRS-qualified organizations."},
			{Name: "Substantiation", Description: "Deductions of $250 or more require written acknowledgment."},
		},
	}
}

// buildFormInstructions assembles instructions for a known form, or nil.
// The key must already be normalized (lowercase, trimmed).
func buildFormInstructions(key string) *FormInstructions {
	latest := supportedYears[len(supportedYears)-1]
	deadline := fmt.Sprintf("April 15, %d", latest+1)

	switch key {
	case "1040":
		return &FormInstructions{
			FormNumber: "1040",
			Title:      "U.S. Individual Income Tax Return",
			Year:       latest,
			Sections: []FormSection{
				{Title: "Filing status", Guidance: "Check exactly one box; it drives your standard deduction and brackets."},
				{Title: "Income", Guidance: "Report wages from W-2 box 1 and all 1099 income, including amounts without a form."},
				{Title: "Deductions", Guidance: "Take the standard deduction or attach Schedule A, whichever is larger."},
				{Title: "Payments and refund", Guidance: "Include withholding and estimated payments before computing balance due."},
			},
			CommonMistakes: []string{
				"Mismatched SSN and name with Social Security records",
				"Forgetting to sign and date the return",
				"Using the wrong filing status after a mid-year marriage or divorce",
			},
			FilingDeadline: deadline,
		}
	case "schedule-a":
		return &FormInstructions{
			FormNumber: "Schedule A",
			Title:      "Itemized Deductions",
			Year:       latest,
			Sections: []FormSection{
				{Title: "Medical and dental", Guidance: "Only the portion above 7.5% of AGI counts."},
				{Title: "Taxes you paid", Guidance: "State and local taxes are capped at $10,000 combined."},
				{Title: "Interest you paid", Guidance: "Home mortgage interest from Form 1098, subject to the principal cap."},
				{Title: "Gifts to charity", Guidance: "Keep receipts; gifts of $250 or more need written acknowledgment."},
			},
			CommonMistakes: []string{
				"Claiming the full SALT amount above the cap",
				"Itemizing when the standard deduction is larger",
			},
			FilingDeadline: deadline,
		}
	case "schedule-c":
		return &FormInstructions{
			FormNumber: "Schedule C",
			Title:      "Profit or Loss From Business",
			Year:       latest,
			Sections: []FormSection{
				{Title: "Income", Guidance: "Report gross receipts including amounts not on a 1099-NEC."},
				{Title: "Expenses", Guidance: "Deduct ordinary and necessary business expenses by category."},
				{Title: "Home office", Guidance: "Use the simplified method or Form 8829 for actual expenses."},
			},
			CommonMistakes: []string{
				"Mixing personal and business expenses",
				"Skipping self-employment tax on Schedule SE",
			},
			FilingDeadline: deadline,
		}
	case "w-2":
		return &FormInstructions{
			FormNumber: "W-2",
			Title:      "Wage and Tax Statement",
			Year:       latest,
			Sections: []FormSection{
				{Title: "Box 1", Guidance: "Taxable wages; this feeds Form 1040 line 1."},
				{Title: "Box 2", Guidance: "Federal income tax withheld; counts as a payment."},
				{Title: "Box 12", Guidance: "Coded amounts such as 401(k) deferrals; some affect deductions."},
			},
			CommonMistakes: []string{
				"Filing before receiving every employer's W-2",
				"Ignoring a corrected W-2c issued after filing",
			},
			FilingDeadline: deadline,
		}
	case "1099-nec":
		return &FormInstructions{
			FormNumber: "1099-NEC",
			Title:      "Nonemployee Compensation",
			Year:       latest,
			Sections: []FormSection{
				{Title: "Box 1", Guidance: "Nonemployee compensation; report on Schedule C, not as other income."},
				{Title: "Withholding", Guidance: "Backup withholding in box 4 counts as a tax payment."},
			},
			CommonMistakes: []string{
				"Omitting income below the $600 reporting threshold",
				"Forgetting quarterly estimated payments on 1099 income",
			},
			FilingDeadline: deadline,
		}
	default:
		return nil
	}
}
