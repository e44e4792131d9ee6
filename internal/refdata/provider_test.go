// ABOUTME: Tests for the reference data provider
// ABOUTME: Covers supported years, form lookup normalization, and caching

package refdata

import (
	"testing"
)

func TestYearData_SupportedYears(t *testing.T) {
	p := New(nil)

	for _, year := range p.SupportedYears() {
		data, ok := p.YearData(year)
		if !ok {
			t.Fatalf("YearData(%d) reported unsupported", year)
		}
		if data.Year != year {
			t.Errorf("expected year %d, got %d", year, data.Year)
		}
		if len(data.Brackets) == 0 {
			t.Errorf("year %d has no brackets", year)
		}
		if len(data.StandardDeductions) == 0 {
			t.Errorf("year %d has no standard deductions", year)
		}
		if len(data.DeductionRules) == 0 {
			t.Errorf("year %d has no deduction rules", year)
		}
		if len(data.DeductionLimits) == 0 {
			t.Errorf("year %d has no deduction limits", year)
		}
		if len(data.EligibilityCriteria) == 0 {
			t.Errorf("year %d has no eligibility criteria", year)
		}
	}
}

func TestYearData_UnsupportedYear(t *testing.T) {
	p := New(nil)

	for _, year := range []int{1999, 2021, 2025, 0} {
		if _, ok := p.YearData(year); ok {
			t.Errorf("YearData(%d) unexpectedly supported", year)
		}
	}
}

func TestYearData_CachedInstance(t *testing.T) {
	p := New(nil)

	first, ok := p.YearData(2023)
	if !ok {
		t.Fatal("YearData(2023) reported unsupported")
	}
	second, ok := p.YearData(2023)
	if !ok {
		t.Fatal("second YearData(2023) reported unsupported")
	}
	if first != second {
		t.Error("expected the cached instance on repeat lookup")
	}
}

func TestYearData_BracketsAreOrdered(t *testing.T) {
	p := New(nil)

	data, ok := p.YearData(2024)
	if !ok {
		t.Fatal("YearData(2024) reported unsupported")
	}

	// Within each filing status the bands must ascend with rate and bound.
	byStatus := make(map[string][]TaxBracket)
	for _, b := range data.Brackets {
		byStatus[b.FilingStatus] = append(byStatus[b.FilingStatus], b)
	}
	for status, brackets := range byStatus {
		for i := 1; i < len(brackets); i++ {
			if brackets[i].Rate <= brackets[i-1].Rate {
				t.Errorf("%s: rates not ascending at index %d", status, i)
			}
			if brackets[i].LowerBound != brackets[i-1].UpperBound {
				t.Errorf("%s: band %d does not start where band %d ends", status, i, i-1)
			}
		}
		if top := brackets[len(brackets)-1]; top.UpperBound != 0 {
			t.Errorf("%s: top band should have no ceiling, got %v", status, top.UpperBound)
		}
	}
}

func TestFormInstructions(t *testing.T) {
	p := New(nil)

	for _, form := range p.Forms() {
		instructions, ok := p.FormInstructions(form)
		if !ok {
			t.Fatalf("FormInstructions(%q) reported unknown", form)
		}
		if len(instructions.Sections) == 0 {
			t.Errorf("form %q has no sections", form)
		}
		if instructions.FilingDeadline == "" {
			t.Errorf("form %q has no filing deadline", form)
		}
	}
}

func TestFormInstructions_CaseInsensitive(t *testing.T) {
	p := New(nil)

	lower, ok := p.FormInstructions("schedule-a")
	if !ok {
		t.Fatal("FormInstructions(schedule-a) reported unknown")
	}
	upper, ok := p.FormInstructions("  SCHEDULE-A ")
	if !ok {
		t.Fatal("FormInstructions(SCHEDULE-A) reported unknown")
	}
	if lower != upper {
		t.Error("expected the same cached instance regardless of case")
	}
}

func TestFormInstructions_Unknown(t *testing.T) {
	p := New(nil)

	if _, ok := p.FormInstructions("form-9999"); ok {
		t.Error("FormInstructions(form-9999) unexpectedly known")
	}
}
