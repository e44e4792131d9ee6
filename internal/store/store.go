// ABOUTME: Store interface and data types for tenant-scoped tax records
// ABOUTME: Defines profile/return/deduction/document structs and the TaxStore interface

package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrNotFound is returned when a requested entity does not exist.
// Absence of data is a valid outcome, distinct from a store failure.
var ErrNotFound = errors.New("not found")

// ErrUnavailable is returned when the backing store fails. Callers own any
// retry policy; the store never retries internally.
var ErrUnavailable = errors.New("store unavailable")

// Domain validation errors. Messages carry the valid options so callers can
// surface them verbatim.
var (
	ErrInvalidYear     = errors.New("invalid year")
	ErrInvalidCategory = errors.New("invalid deduction category")
	ErrInvalidDocType  = errors.New("invalid document type")
)

// MinYear is the earliest tax year any query will accept.
const MinYear = 1900

// ValidateYear checks that a tax year is within [MinYear, currentYear].
func ValidateYear(year int) error {
	current := time.Now().Year()
	if year < MinYear || year > current {
		return fmt.Errorf("%w: %d (must be between %d and %d)", ErrInvalidYear, year, MinYear, current)
	}
	return nil
}

// FilingStatus is a taxpayer's filing status.
type FilingStatus string

const (
	FilingSingle                  FilingStatus = "Single"
	FilingMarriedFilingJointly    FilingStatus = "MarriedFilingJointly"
	FilingMarriedFilingSeparately FilingStatus = "MarriedFilingSeparately"
	FilingHeadOfHousehold         FilingStatus = "HeadOfHousehold"
)

// ReturnStatus tracks where a tax return is in its lifecycle.
type ReturnStatus string

const (
	ReturnDraft    ReturnStatus = "Draft"
	ReturnFiled    ReturnStatus = "Filed"
	ReturnAmended  ReturnStatus = "Amended"
	ReturnAccepted ReturnStatus = "Accepted"
	ReturnRejected ReturnStatus = "Rejected"
)

// DeductionType distinguishes standard from itemized deductions.
type DeductionType string

const (
	DeductionStandard DeductionType = "Standard"
	DeductionItemized DeductionType = "Itemized"
)

// DeductionCategory classifies a deduction.
type DeductionCategory string

const (
	CategoryMedicalExpenses     DeductionCategory = "MedicalExpenses"
	CategoryCharitableDonations DeductionCategory = "CharitableDonations"
	CategoryMortgageInterest    DeductionCategory = "MortgageInterest"
	CategoryPropertyTaxes       DeductionCategory = "PropertyTaxes"
	CategoryBusinessExpenses    DeductionCategory = "BusinessExpenses"
	CategoryEducationExpenses   DeductionCategory = "EducationExpenses"
	CategoryStateLocalTaxes     DeductionCategory = "StateLocalTaxes"
	CategoryOther               DeductionCategory = "Other"
)

// ValidCategories returns the accepted category names in a stable order.
func ValidCategories() []string {
	return []string{
		string(CategoryMedicalExpenses),
		string(CategoryCharitableDonations),
		string(CategoryMortgageInterest),
		string(CategoryPropertyTaxes),
		string(CategoryBusinessExpenses),
		string(CategoryEducationExpenses),
		string(CategoryStateLocalTaxes),
		string(CategoryOther),
	}
}

// ParseCategory maps a string to a DeductionCategory, case-insensitively.
func ParseCategory(s string) (DeductionCategory, error) {
	needle := strings.ToLower(strings.TrimSpace(s))
	for _, name := range ValidCategories() {
		if strings.ToLower(name) == needle {
			return DeductionCategory(name), nil
		}
	}
	return "", fmt.Errorf("%w: %q (valid options are: %s)", ErrInvalidCategory, s, strings.Join(ValidCategories(), ", "))
}

// DocumentType classifies a stored document's metadata.
type DocumentType string

const (
	DocW2                DocumentType = "W2"
	DocForm1099          DocumentType = "Form1099"
	DocReceipt           DocumentType = "Receipt"
	DocInvoice           DocumentType = "Invoice"
	DocBankStatement     DocumentType = "BankStatement"
	DocMortgageStatement DocumentType = "MortgageStatement"
	DocDonationReceipt   DocumentType = "DonationReceipt"
	DocMedicalBill       DocumentType = "MedicalBill"
	DocPropertyTaxBill   DocumentType = "PropertyTaxBill"
	DocOther             DocumentType = "Other"
)

// ValidDocumentTypes returns the accepted document type names in a stable order.
func ValidDocumentTypes() []string {
	return []string{
		string(DocW2),
		string(DocForm1099),
		string(DocReceipt),
		string(DocInvoice),
		string(DocBankStatement),
		string(DocMortgageStatement),
		string(DocDonationReceipt),
		string(DocMedicalBill),
		string(DocPropertyTaxBill),
		string(DocOther),
	}
}

// ParseDocumentType maps a string to a DocumentType, case-insensitively.
func ParseDocumentType(s string) (DocumentType, error) {
	needle := strings.ToLower(strings.TrimSpace(s))
	for _, name := range ValidDocumentTypes() {
		if strings.ToLower(name) == needle {
			return DocumentType(name), nil
		}
	}
	return "", fmt.Errorf("%w: %q (valid options are: %s)", ErrInvalidDocType, s, strings.Join(ValidDocumentTypes(), ", "))
}

// TaxpayerProfile is a taxpayer's identity record. At most one per owner.
type TaxpayerProfile struct {
	TaxpayerID   string
	OwnerID      string
	Name         string
	Email        string
	SSNLast4     string
	Address      string
	Phone        string
	FilingStatus FilingStatus
	CreatedAt    time.Time
}

// TaxReturn is one filed or draft return. By seed convention there is at
// most one per (owner, tax year), though the schema does not enforce it.
type TaxReturn struct {
	ReturnID            string
	OwnerID             string
	TaxpayerID          string
	TaxYear             int
	FilingStatus        FilingStatus
	AdjustedGrossIncome float64
	TaxableIncome       float64
	TotalTax            float64
	TotalDeductions     float64
	FilingDate          *time.Time
	Status              ReturnStatus
	Notes               string
}

// Deduction is a single claimed deduction.
type Deduction struct {
	DeductionID  string
	OwnerID      string
	TaxpayerID   string
	TaxYear      int
	Category     DeductionCategory
	Description  string
	Amount       float64
	DateIncurred time.Time
	DocumentRef  string
	Type         DeductionType
}

// Document is uploaded-document metadata. File contents are never read here.
type Document struct {
	DocumentID string
	OwnerID    string
	TaxpayerID string
	TaxYear    int
	Type       DocumentType
	FileName   string
	FilePath   string
	UploadedAt time.Time
	Category   string
	SizeBytes  int64
	Notes      string
}

// TaxStore is the tenant-scoped read interface over tax records. Every
// method filters by the identity bound to ctx; none accepts an owner id.
type TaxStore interface {
	// GetProfile returns the caller's profile, or ErrNotFound.
	GetProfile(ctx context.Context) (*TaxpayerProfile, error)
	// GetReturns returns all returns, ordered by tax year descending.
	GetReturns(ctx context.Context) ([]TaxReturn, error)
	// GetReturnByYear returns the return for a year, or ErrNotFound.
	GetReturnByYear(ctx context.Context, year int) (*TaxReturn, error)
	// GetDeductionsByYear returns deductions for a year, ordered by
	// category then description.
	GetDeductionsByYear(ctx context.Context, year int) ([]Deduction, error)
	// GetDeductionsByCategory returns deductions in a category, ordered by
	// tax year descending then description.
	GetDeductionsByCategory(ctx context.Context, category DeductionCategory) ([]Deduction, error)
	// GetDeductionTotalsByCategory sums amounts per category for a year.
	// Categories with no deductions are absent from the map.
	GetDeductionTotalsByCategory(ctx context.Context, year int) (map[DeductionCategory]float64, error)
	// CompareDeductionsYearly returns deductions keyed by the two requested
	// years; a year appears only if it has at least one deduction.
	CompareDeductionsYearly(ctx context.Context, year1, year2 int) (map[int][]Deduction, error)
	// GetDocumentsByType returns documents of a type, newest upload first.
	GetDocumentsByType(ctx context.Context, docType DocumentType) ([]Document, error)
	// GetDocumentsByYear returns documents for a year, ordered by type then
	// newest upload first.
	GetDocumentsByYear(ctx context.Context, year int) ([]Document, error)
}
