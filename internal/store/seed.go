// ABOUTME: Startup seeding of sample tenant data for two owners
// ABOUTME: Idempotent; inserts nothing when profiles already exist

package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Sample owner ids. These match the subjects dev tokens are minted for.
const (
	SeedOwnerJohn = "user-123"
	SeedOwnerJane = "another-user"
)

func date(year, month, day int) time.Time {
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

// SeedSampleData populates the store with two sample taxpayers. It is a
// no-op when any profile already exists, so restarts keep existing data.
func (s *SQLiteStore) SeedSampleData() error {
	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM taxpayer_profiles`).Scan(&count); err != nil {
		return fmt.Errorf("checking seed state: %w", err)
	}
	if count > 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning seed transaction: %w", err)
	}
	defer tx.Rollback()

	johnID := uuid.New().String()
	janeID := uuid.New().String()

	profiles := []TaxpayerProfile{
		{
			TaxpayerID:   johnID,
			OwnerID:      SeedOwnerJohn,
			Name:         "John Doe",
			Email:        "john.doe@example.com",
			SSNLast4:     "6789",
			Address:      "42 Maple Street, Springfield, IL 62704",
			Phone:        "+1-217-555-0142",
			FilingStatus: FilingMarriedFilingJointly,
			CreatedAt:    date(2022, 1, 15),
		},
		{
			TaxpayerID:   janeID,
			OwnerID:      SeedOwnerJane,
			Name:         "Jane Smith",
			Email:        "jane.smith@example.com",
			SSNLast4:     "4321",
			Address:      "7 Birch Lane, Portland, OR 97201",
			Phone:        "+1-503-555-0178",
			FilingStatus: FilingSingle,
			CreatedAt:    date(2023, 3, 2),
		},
	}
	for _, p := range profiles {
		if _, err := tx.Exec(
			`INSERT INTO taxpayer_profiles (taxpayer_id, owner_id, name, email, ssn_last4, address, phone, filing_status, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			p.TaxpayerID, p.OwnerID, p.Name, p.Email, p.SSNLast4, p.Address, p.Phone, string(p.FilingStatus), p.CreatedAt.UTC().Format(time.RFC3339),
		); err != nil {
			return fmt.Errorf("seeding profile %s: %w", p.Name, err)
		}
	}

	filed2022 := date(2023, 4, 10)
	filed2023 := date(2024, 4, 12)
	janeFiled := date(2024, 4, 2)

	returns := []TaxReturn{
		{
			OwnerID: SeedOwnerJohn, TaxpayerID: johnID, TaxYear: 2022,
			FilingStatus: FilingMarriedFilingJointly, AdjustedGrossIncome: 112000,
			TaxableIncome: 86100, TotalTax: 10200, TotalDeductions: 25900,
			FilingDate: &filed2022, Status: ReturnAccepted,
		},
		{
			OwnerID: SeedOwnerJohn, TaxpayerID: johnID, TaxYear: 2023,
			FilingStatus: FilingMarriedFilingJointly, AdjustedGrossIncome: 125000,
			TaxableIncome: 95000, TotalTax: 12615, TotalDeductions: 30000,
			FilingDate: &filed2023, Status: ReturnAccepted,
			Notes: "Itemized; includes carryover charitable contributions.",
		},
		{
			OwnerID: SeedOwnerJohn, TaxpayerID: johnID, TaxYear: 2024,
			FilingStatus: FilingMarriedFilingJointly, AdjustedGrossIncome: 131000,
			TaxableIncome: 116000, TotalTax: 0, TotalDeductions: 15000,
			Status: ReturnDraft, Notes: "Draft pending final 1099 figures.",
		},
		{
			OwnerID: SeedOwnerJane, TaxpayerID: janeID, TaxYear: 2023,
			FilingStatus: FilingSingle, AdjustedGrossIncome: 68000,
			TaxableIncome: 54150, TotalTax: 7600, TotalDeductions: 13850,
			FilingDate: &janeFiled, Status: ReturnFiled,
		},
	}
	for _, r := range returns {
		var filingDate sql.NullString
		if r.FilingDate != nil {
			filingDate = sql.NullString{String: r.FilingDate.UTC().Format(time.RFC3339), Valid: true}
		}
		if _, err := tx.Exec(
			`INSERT INTO tax_returns (return_id, owner_id, taxpayer_id, tax_year, filing_status,
			 adjusted_gross_income, taxable_income, total_tax, total_deductions, filing_date, status, notes)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			uuid.New().String(), r.OwnerID, r.TaxpayerID, r.TaxYear, string(r.FilingStatus),
			r.AdjustedGrossIncome, r.TaxableIncome, r.TotalTax, r.TotalDeductions,
			filingDate, string(r.Status), r.Notes,
		); err != nil {
			return fmt.Errorf("seeding return %d/%s: %w", r.TaxYear, r.OwnerID, err)
		}
	}

	deductions := []Deduction{
		// John 2022
		{OwnerID: SeedOwnerJohn, TaxpayerID: johnID, TaxYear: 2022, Category: CategoryMortgageInterest, Description: "Primary residence mortgage interest", Amount: 11900, DateIncurred: date(2022, 12, 31), Type: DeductionItemized},
		{OwnerID: SeedOwnerJohn, TaxpayerID: johnID, TaxYear: 2022, Category: CategoryCharitableDonations, Description: "Springfield food bank donation", Amount: 1500, DateIncurred: date(2022, 11, 20), Type: DeductionItemized},
		// John 2023: totals to 30000
		{OwnerID: SeedOwnerJohn, TaxpayerID: johnID, TaxYear: 2023, Category: CategoryMortgageInterest, Description: "Primary residence mortgage interest", Amount: 12400, DateIncurred: date(2023, 12, 31), DocumentRef: "mortgage-1098-2023", Type: DeductionItemized},
		{OwnerID: SeedOwnerJohn, TaxpayerID: johnID, TaxYear: 2023, Category: CategoryPropertyTaxes, Description: "Sangamon County property tax", Amount: 7600, DateIncurred: date(2023, 6, 15), Type: DeductionItemized},
		{OwnerID: SeedOwnerJohn, TaxpayerID: johnID, TaxYear: 2023, Category: CategoryCharitableDonations, Description: "United Way annual pledge", Amount: 4800, DateIncurred: date(2023, 12, 28), DocumentRef: "donation-receipt-2023", Type: DeductionItemized},
		{OwnerID: SeedOwnerJohn, TaxpayerID: johnID, TaxYear: 2023, Category: CategoryMedicalExpenses, Description: "Out-of-pocket surgery costs", Amount: 3200, DateIncurred: date(2023, 8, 3), Type: DeductionItemized},
		{OwnerID: SeedOwnerJohn, TaxpayerID: johnID, TaxYear: 2023, Category: CategoryBusinessExpenses, Description: "Home office equipment", Amount: 2000, DateIncurred: date(2023, 3, 11), Type: DeductionItemized},
		// John 2024: totals to 15000
		{OwnerID: SeedOwnerJohn, TaxpayerID: johnID, TaxYear: 2024, Category: CategoryMortgageInterest, Description: "Primary residence mortgage interest", Amount: 9000, DateIncurred: date(2024, 12, 31), Type: DeductionItemized},
		{OwnerID: SeedOwnerJohn, TaxpayerID: johnID, TaxYear: 2024, Category: CategoryStateLocalTaxes, Description: "State income tax withheld", Amount: 3500, DateIncurred: date(2024, 12, 31), Type: DeductionItemized},
		{OwnerID: SeedOwnerJohn, TaxpayerID: johnID, TaxYear: 2024, Category: CategoryCharitableDonations, Description: "Disaster relief donation", Amount: 2500, DateIncurred: date(2024, 10, 9), Type: DeductionItemized},
		// Jane 2023
		{OwnerID: SeedOwnerJane, TaxpayerID: janeID, TaxYear: 2023, Category: CategoryCharitableDonations, Description: "Animal shelter donation", Amount: 1200, DateIncurred: date(2023, 9, 14), Type: DeductionItemized},
	}
	for _, d := range deductions {
		if _, err := tx.Exec(
			`INSERT INTO deductions (deduction_id, owner_id, taxpayer_id, tax_year, category,
			 description, amount, date_incurred, document_ref, type)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			uuid.New().String(), d.OwnerID, d.TaxpayerID, d.TaxYear, string(d.Category),
			d.Description, d.Amount, d.DateIncurred.UTC().Format(time.RFC3339), d.DocumentRef, string(d.Type),
		); err != nil {
			return fmt.Errorf("seeding deduction %q: %w", d.Description, err)
		}
	}

	documents := []Document{
		{OwnerID: SeedOwnerJohn, TaxpayerID: johnID, TaxYear: 2022, Type: DocReceipt, FileName: "foodbank-receipt-2022.pdf", FilePath: "/documents/user-123/foodbank-receipt-2022.pdf", UploadedAt: date(2022, 11, 21), Category: "charity", SizeBytes: 48230},
		{OwnerID: SeedOwnerJohn, TaxpayerID: johnID, TaxYear: 2023, Type: DocW2, FileName: "w2-2023.pdf", FilePath: "/documents/user-123/w2-2023.pdf", UploadedAt: date(2024, 1, 31), Category: "income", SizeBytes: 102400},
		{OwnerID: SeedOwnerJohn, TaxpayerID: johnID, TaxYear: 2023, Type: DocForm1099, FileName: "1099-nec-2023.pdf", FilePath: "/documents/user-123/1099-nec-2023.pdf", UploadedAt: date(2024, 2, 5), Category: "income", SizeBytes: 88064},
		{OwnerID: SeedOwnerJohn, TaxpayerID: johnID, TaxYear: 2023, Type: DocDonationReceipt, FileName: "unitedway-pledge-2023.pdf", FilePath: "/documents/user-123/unitedway-pledge-2023.pdf", UploadedAt: date(2023, 12, 29), Category: "charity", SizeBytes: 35012, Notes: "Matches CharitableDonations deduction."},
		{OwnerID: SeedOwnerJohn, TaxpayerID: johnID, TaxYear: 2024, Type: DocMortgageStatement, FileName: "mortgage-1098-2024.pdf", FilePath: "/documents/user-123/mortgage-1098-2024.pdf", UploadedAt: date(2025, 1, 15), Category: "housing", SizeBytes: 120833},
		{OwnerID: SeedOwnerJane, TaxpayerID: janeID, TaxYear: 2023, Type: DocW2, FileName: "w2-2023.pdf", FilePath: "/documents/another-user/w2-2023.pdf", UploadedAt: date(2024, 1, 28), Category: "income", SizeBytes: 99012},
	}
	for _, d := range documents {
		if _, err := tx.Exec(
			`INSERT INTO documents (document_id, owner_id, taxpayer_id, tax_year, type,
			 file_name, file_path, uploaded_at, category, size_bytes, notes)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			uuid.New().String(), d.OwnerID, d.TaxpayerID, d.TaxYear, string(d.Type),
			d.FileName, d.FilePath, d.UploadedAt.UTC().Format(time.RFC3339), d.Category, d.SizeBytes, d.Notes,
		); err != nil {
			return fmt.Errorf("seeding document %q: %w", d.FileName, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing seed transaction: %w", err)
	}

	s.logger.Info("seeded sample data", "profiles", len(profiles), "returns", len(returns), "deductions", len(deductions), "documents", len(documents))
	return nil
}
