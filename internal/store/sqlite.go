// ABOUTME: SQLite implementation of the TaxStore interface using modernc.org/sqlite
// ABOUTME: Every tenant query is filtered by the identity bound to the request context

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/taxhelper/tax-gateway/internal/auth"
)

// SQLiteStore implements the TaxStore interface using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteStore creates a new SQLite store at the given path.
// The schema is automatically created if it doesn't exist.
// Parent directories are created if needed.
func NewSQLiteStore(path string, logger *slog.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "store")

	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable WAL mode for better concurrent performance
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	s := &SQLiteStore{
		db:     db,
		logger: logger,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	logger.Info("SQLite store initialized", "path", path)
	return s, nil
}

// createSchema creates the database tables if they don't exist.
func (s *SQLiteStore) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS taxpayer_profiles (
			taxpayer_id   TEXT PRIMARY KEY,
			owner_id      TEXT NOT NULL UNIQUE,
			name          TEXT NOT NULL,
			email         TEXT NOT NULL,
			ssn_last4     TEXT NOT NULL,
			address       TEXT NOT NULL,
			phone         TEXT NOT NULL,
			filing_status TEXT NOT NULL,
			created_at    TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS tax_returns (
			return_id             TEXT PRIMARY KEY,
			owner_id              TEXT NOT NULL,
			taxpayer_id           TEXT NOT NULL,
			tax_year              INTEGER NOT NULL,
			filing_status         TEXT NOT NULL,
			adjusted_gross_income REAL NOT NULL,
			taxable_income        REAL NOT NULL,
			total_tax             REAL NOT NULL,
			total_deductions      REAL NOT NULL,
			filing_date           TEXT,
			status                TEXT NOT NULL,
			notes                 TEXT NOT NULL DEFAULT ''
		);

		CREATE INDEX IF NOT EXISTS idx_returns_owner_year
			ON tax_returns(owner_id, tax_year);

		CREATE TABLE IF NOT EXISTS deductions (
			deduction_id  TEXT PRIMARY KEY,
			owner_id      TEXT NOT NULL,
			taxpayer_id   TEXT NOT NULL,
			tax_year      INTEGER NOT NULL,
			category      TEXT NOT NULL,
			description   TEXT NOT NULL,
			amount        REAL NOT NULL,
			date_incurred TEXT NOT NULL,
			document_ref  TEXT NOT NULL DEFAULT '',
			type          TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_deductions_owner_year
			ON deductions(owner_id, tax_year);

		CREATE INDEX IF NOT EXISTS idx_deductions_owner_category
			ON deductions(owner_id, category);

		CREATE TABLE IF NOT EXISTS documents (
			document_id TEXT PRIMARY KEY,
			owner_id    TEXT NOT NULL,
			taxpayer_id TEXT NOT NULL,
			tax_year    INTEGER NOT NULL,
			type        TEXT NOT NULL,
			file_name   TEXT NOT NULL,
			file_path   TEXT NOT NULL,
			uploaded_at TEXT NOT NULL,
			category    TEXT NOT NULL DEFAULT '',
			size_bytes  INTEGER NOT NULL DEFAULT 0,
			notes       TEXT NOT NULL DEFAULT ''
		);

		CREATE INDEX IF NOT EXISTS idx_documents_owner_year
			ON documents(owner_id, tax_year);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return err
	}
	return nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Ping verifies the backing store is reachable.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// owner resolves the caller's owner id from the bound identity.
func owner(ctx context.Context) (string, error) {
	id, err := auth.IdentityFromContext(ctx)
	if err != nil {
		return "", err
	}
	return id.UserID, nil
}

// storeErr wraps a database failure as ErrUnavailable.
func storeErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrUnavailable, op, err)
}

// GetProfile returns the caller's taxpayer profile, or ErrNotFound.
func (s *SQLiteStore) GetProfile(ctx context.Context) (*TaxpayerProfile, error) {
	ownerID, err := owner(ctx)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT taxpayer_id, owner_id, name, email, ssn_last4, address, phone, filing_status, created_at
		FROM taxpayer_profiles
		WHERE owner_id = ?
	`

	var p TaxpayerProfile
	var createdAtStr string
	err = s.db.QueryRowContext(ctx, query, ownerID).Scan(
		&p.TaxpayerID, &p.OwnerID, &p.Name, &p.Email, &p.SSNLast4,
		&p.Address, &p.Phone, &p.FilingStatus, &createdAtStr,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, storeErr("querying profile", err)
	}

	p.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr)
	if err != nil {
		return nil, storeErr("parsing created_at", err)
	}
	return &p, nil
}

const returnColumns = `return_id, owner_id, taxpayer_id, tax_year, filing_status,
	adjusted_gross_income, taxable_income, total_tax, total_deductions,
	filing_date, status, notes`

// scanReturn scans one tax_returns row.
func scanReturn(scan func(dest ...any) error) (TaxReturn, error) {
	var r TaxReturn
	var filingDate sql.NullString
	if err := scan(
		&r.ReturnID, &r.OwnerID, &r.TaxpayerID, &r.TaxYear, &r.FilingStatus,
		&r.AdjustedGrossIncome, &r.TaxableIncome, &r.TotalTax, &r.TotalDeductions,
		&filingDate, &r.Status, &r.Notes,
	); err != nil {
		return TaxReturn{}, err
	}
	if filingDate.Valid {
		t, err := time.Parse(time.RFC3339, filingDate.String)
		if err != nil {
			return TaxReturn{}, err
		}
		r.FilingDate = &t
	}
	return r, nil
}

// GetReturns returns all of the caller's returns, newest tax year first.
func (s *SQLiteStore) GetReturns(ctx context.Context) ([]TaxReturn, error) {
	ownerID, err := owner(ctx)
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + returnColumns + ` FROM tax_returns WHERE owner_id = ? ORDER BY tax_year DESC`
	rows, err := s.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, storeErr("querying returns", err)
	}
	defer rows.Close()

	var returns []TaxReturn
	for rows.Next() {
		r, err := scanReturn(rows.Scan)
		if err != nil {
			return nil, storeErr("scanning return", err)
		}
		returns = append(returns, r)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("iterating returns", err)
	}
	return returns, nil
}

// GetReturnByYear returns the caller's return for a year, or ErrNotFound.
func (s *SQLiteStore) GetReturnByYear(ctx context.Context, year int) (*TaxReturn, error) {
	if err := ValidateYear(year); err != nil {
		return nil, err
	}
	ownerID, err := owner(ctx)
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + returnColumns + ` FROM tax_returns WHERE owner_id = ? AND tax_year = ? ORDER BY filing_date DESC LIMIT 1`
	r, err := scanReturn(s.db.QueryRowContext(ctx, query, ownerID, year).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, storeErr("querying return", err)
	}
	return &r, nil
}

const deductionColumns = `deduction_id, owner_id, taxpayer_id, tax_year, category,
	description, amount, date_incurred, document_ref, type`

// queryDeductions runs a deduction query and scans all rows.
func (s *SQLiteStore) queryDeductions(ctx context.Context, query string, args ...any) ([]Deduction, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storeErr("querying deductions", err)
	}
	defer rows.Close()

	var deductions []Deduction
	for rows.Next() {
		var d Deduction
		var dateStr string
		if err := rows.Scan(
			&d.DeductionID, &d.OwnerID, &d.TaxpayerID, &d.TaxYear, &d.Category,
			&d.Description, &d.Amount, &dateStr, &d.DocumentRef, &d.Type,
		); err != nil {
			return nil, storeErr("scanning deduction", err)
		}
		d.DateIncurred, err = time.Parse(time.RFC3339, dateStr)
		if err != nil {
			return nil, storeErr("parsing date_incurred", err)
		}
		deductions = append(deductions, d)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("iterating deductions", err)
	}
	return deductions, nil
}

// GetDeductionsByYear returns the caller's deductions for a year, ordered by
// category then description.
func (s *SQLiteStore) GetDeductionsByYear(ctx context.Context, year int) ([]Deduction, error) {
	if err := ValidateYear(year); err != nil {
		return nil, err
	}
	ownerID, err := owner(ctx)
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + deductionColumns + ` FROM deductions
		WHERE owner_id = ? AND tax_year = ?
		ORDER BY category ASC, description ASC`
	return s.queryDeductions(ctx, query, ownerID, year)
}

// GetDeductionsByCategory returns the caller's deductions in a category,
// ordered by tax year descending then description.
func (s *SQLiteStore) GetDeductionsByCategory(ctx context.Context, category DeductionCategory) ([]Deduction, error) {
	ownerID, err := owner(ctx)
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + deductionColumns + ` FROM deductions
		WHERE owner_id = ? AND category = ?
		ORDER BY tax_year DESC, description ASC`
	return s.queryDeductions(ctx, query, ownerID, string(category))
}

// GetDeductionTotalsByCategory sums the caller's deduction amounts per
// category for a year. Categories without deductions are absent.
func (s *SQLiteStore) GetDeductionTotalsByCategory(ctx context.Context, year int) (map[DeductionCategory]float64, error) {
	if err := ValidateYear(year); err != nil {
		return nil, err
	}
	ownerID, err := owner(ctx)
	if err != nil {
		return nil, err
	}

	query := `SELECT category, SUM(amount) FROM deductions
		WHERE owner_id = ? AND tax_year = ?
		GROUP BY category`
	rows, err := s.db.QueryContext(ctx, query, ownerID, year)
	if err != nil {
		return nil, storeErr("querying deduction totals", err)
	}
	defer rows.Close()

	totals := make(map[DeductionCategory]float64)
	for rows.Next() {
		var category DeductionCategory
		var total float64
		if err := rows.Scan(&category, &total); err != nil {
			return nil, storeErr("scanning deduction total", err)
		}
		totals[category] = total
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("iterating deduction totals", err)
	}
	return totals, nil
}

// CompareDeductionsYearly returns the caller's deductions for the two
// requested years. A year is present only if it has deductions.
func (s *SQLiteStore) CompareDeductionsYearly(ctx context.Context, year1, year2 int) (map[int][]Deduction, error) {
	if err := ValidateYear(year1); err != nil {
		return nil, err
	}
	if err := ValidateYear(year2); err != nil {
		return nil, err
	}

	result := make(map[int][]Deduction)
	for _, year := range []int{year1, year2} {
		if _, ok := result[year]; ok {
			continue
		}
		deductions, err := s.GetDeductionsByYear(ctx, year)
		if err != nil {
			return nil, err
		}
		if len(deductions) > 0 {
			result[year] = deductions
		}
	}
	return result, nil
}

const documentColumns = `document_id, owner_id, taxpayer_id, tax_year, type,
	file_name, file_path, uploaded_at, category, size_bytes, notes`

// queryDocuments runs a document query and scans all rows.
func (s *SQLiteStore) queryDocuments(ctx context.Context, query string, args ...any) ([]Document, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storeErr("querying documents", err)
	}
	defer rows.Close()

	var documents []Document
	for rows.Next() {
		var d Document
		var uploadedStr string
		if err := rows.Scan(
			&d.DocumentID, &d.OwnerID, &d.TaxpayerID, &d.TaxYear, &d.Type,
			&d.FileName, &d.FilePath, &uploadedStr, &d.Category, &d.SizeBytes, &d.Notes,
		); err != nil {
			return nil, storeErr("scanning document", err)
		}
		d.UploadedAt, err = time.Parse(time.RFC3339, uploadedStr)
		if err != nil {
			return nil, storeErr("parsing uploaded_at", err)
		}
		documents = append(documents, d)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("iterating documents", err)
	}
	return documents, nil
}

// GetDocumentsByType returns the caller's documents of a type, newest first.
func (s *SQLiteStore) GetDocumentsByType(ctx context.Context, docType DocumentType) ([]Document, error) {
	ownerID, err := owner(ctx)
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + documentColumns + ` FROM documents
		WHERE owner_id = ? AND type = ?
		ORDER BY uploaded_at DESC`
	return s.queryDocuments(ctx, query, ownerID, string(docType))
}

// GetDocumentsByYear returns the caller's documents for a year, ordered by
// type then newest upload first.
func (s *SQLiteStore) GetDocumentsByYear(ctx context.Context, year int) ([]Document, error) {
	if err := ValidateYear(year); err != nil {
		return nil, err
	}
	ownerID, err := owner(ctx)
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + documentColumns + ` FROM documents
		WHERE owner_id = ? AND tax_year = ?
		ORDER BY type ASC, uploaded_at DESC`
	return s.queryDocuments(ctx, query, ownerID, year)
}
