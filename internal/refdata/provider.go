// ABOUTME: Public tax reference data provider with a lazy process-lifetime cache
// ABOUTME: Same data for all callers; no identity dependency

package refdata

import (
	"log/slog"
	"sort"
	"strings"
	"sync"
)

// Provider serves public tax knowledge (brackets, standard deductions,
// deduction rules and limits, form instructions) keyed by year or form.
// Entries are built lazily on first access and cached for the process
// lifetime; the underlying data is versioned per tax year and immutable
// once published. Duplicate builds on a racing first access are harmless.
type Provider struct {
	mu     sync.RWMutex
	years  map[int]*ReferenceYear
	forms  map[string]*FormInstructions
	logger *slog.Logger
}

// New creates a provider with an empty cache. Each instance owns its cache,
// so tests can construct isolated providers.
func New(logger *slog.Logger) *Provider {
	if logger == nil {
		logger = slog.Default()
	}
	return &Provider{
		years:  make(map[int]*ReferenceYear),
		forms:  make(map[string]*FormInstructions),
		logger: logger.With("component", "refdata"),
	}
}

// YearData returns the reference bundle for a tax year, or false when the
// year is not published.
func (p *Provider) YearData(year int) (*ReferenceYear, bool) {
	p.mu.RLock()
	cached, ok := p.years[year]
	p.mu.RUnlock()
	if ok {
		return cached, true
	}

	built := buildReferenceYear(year)
	if built == nil {
		return nil, false
	}

	p.mu.Lock()
	if existing, ok := p.years[year]; ok {
		built = existing
	} else {
		p.years[year] = built
	}
	p.mu.Unlock()

	p.logger.Debug("reference year loaded", "year", year)
	return built, true
}

// FormInstructions returns instructions for a form number, or false when
// the form is unknown. Lookup is case-insensitive.
func (p *Provider) FormInstructions(formNumber string) (*FormInstructions, bool) {
	key := normalizeFormKey(formNumber)

	p.mu.RLock()
	cached, ok := p.forms[key]
	p.mu.RUnlock()
	if ok {
		return cached, true
	}

	built := buildFormInstructions(key)
	if built == nil {
		return nil, false
	}

	p.mu.Lock()
	if existing, ok := p.forms[key]; ok {
		built = existing
	} else {
		p.forms[key] = built
	}
	p.mu.Unlock()

	return built, true
}

// SupportedYears lists the published tax years, ascending.
func (p *Provider) SupportedYears() []int {
	years := make([]int, len(supportedYears))
	copy(years, supportedYears)
	sort.Ints(years)
	return years
}

// Forms lists the known form numbers in a stable order.
func (p *Provider) Forms() []string {
	forms := make([]string, len(knownForms))
	copy(forms, knownForms)
	return forms
}

func normalizeFormKey(formNumber string) string {
	return strings.ToLower(strings.TrimSpace(formNumber))
}
