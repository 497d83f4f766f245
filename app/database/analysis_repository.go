package database

import (
	"database/sql"
	"fmt"
	"strings"
	"time"
)

const searchResultLimit = 50

var _ AnalysisRepository = (*analysisRepository)(nil)

// analysisRepository handles database operations for analysis records
type analysisRepository struct {
	db *DB
}

// NewAnalysisRepository creates a new analysis repository
func NewAnalysisRepository(db *DB) AnalysisRepository {
	return &analysisRepository{db: db}
}

func nowString() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// Create inserts a new analysis record. An existing record under the same
// hostname is replaced (last write wins).
func (r *analysisRepository) Create(a Analysis) error {
	if a.CreatedAt == "" {
		a.CreatedAt = nowString()
	}
	if a.UpdatedAt == "" {
		a.UpdatedAt = a.CreatedAt
	}
	if a.Status == "" {
		a.Status = StatusPending
	}

	_, err := r.db.Exec(`
		INSERT OR REPLACE INTO analyses
			(hostname, company_domain, company_name, status, username, profile_image_url,
			 created_at, updated_at, visits, result, error,
			 category, business_description, industry_sector, keywords)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, a.Hostname, a.CompanyDomain, a.CompanyName, a.Status, a.Username, a.ProfileImageURL,
		a.CreatedAt, a.UpdatedAt, a.Visits, a.Result, a.Error,
		nullable(a.Category), nullable(a.BusinessDescription), nullable(a.IndustrySector), nullable(a.Keywords))

	if err != nil {
		return fmt.Errorf("failed to create analysis: %w", err)
	}

	return nil
}

// Get returns the analysis for the given hostname, or nil if absent
func (r *analysisRepository) Get(hostname string) (*Analysis, error) {
	row := r.db.QueryRow(selectColumns+` FROM analyses WHERE hostname = ?`, hostname)

	a, err := scanAnalysis(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get analysis: %w", err)
	}

	return a, nil
}

// Delete removes the analysis for the given hostname
func (r *analysisRepository) Delete(hostname string) error {
	_, err := r.db.Exec(`DELETE FROM analyses WHERE hostname = ?`, hostname)
	if err != nil {
		return fmt.Errorf("failed to delete analysis: %w", err)
	}
	return nil
}

// CountByUsername returns the number of records created by the given identity
func (r *analysisRepository) CountByUsername(username string) (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM analyses WHERE username = ?`, username).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count analyses: %w", err)
	}
	return count, nil
}

// SetResult marks the analysis done with a successful result and patches the
// denormalized search fields. Empty strings in extra leave the existing
// column values untouched. Idempotent: a repeat call is a plain UPDATE.
func (r *analysisRepository) SetResult(hostname string, result string, extra DenormalizedFields) error {
	_, err := r.db.Exec(`
		UPDATE analyses
		SET status = ?, result = ?, error = NULL, updated_at = ?,
		    company_name = COALESCE(NULLIF(?, ''), company_name),
		    category = COALESCE(NULLIF(?, ''), category),
		    business_description = COALESCE(NULLIF(?, ''), business_description),
		    industry_sector = COALESCE(NULLIF(?, ''), industry_sector),
		    keywords = COALESCE(NULLIF(?, ''), keywords)
		WHERE hostname = ?
	`, StatusDone, result, nowString(),
		extra.CompanyName, extra.Category, extra.BusinessDescription, extra.IndustrySector, extra.Keywords,
		hostname)

	if err != nil {
		return fmt.Errorf("failed to set analysis result: %w", err)
	}

	return nil
}

// SetError marks the analysis done with a terminal error. A non-nil result
// still stores the payload (quality failures keep the blob for inspection);
// nil leaves any previously stored payload untouched.
func (r *analysisRepository) SetError(hostname string, message string, result *string) error {
	var err error
	if result != nil {
		_, err = r.db.Exec(`
			UPDATE analyses SET status = ?, error = ?, result = ?, updated_at = ? WHERE hostname = ?
		`, StatusDone, message, *result, nowString(), hostname)
	} else {
		_, err = r.db.Exec(`
			UPDATE analyses SET status = ?, error = ?, updated_at = ? WHERE hostname = ?
		`, StatusDone, message, nowString(), hostname)
	}

	if err != nil {
		return fmt.Errorf("failed to set analysis error: %w", err)
	}

	return nil
}

// IncrementVisits bumps the visit counter for a successful record
func (r *analysisRepository) IncrementVisits(hostname string) error {
	_, err := r.db.Exec(`
		UPDATE analyses SET visits = visits + 1, updated_at = ? WHERE hostname = ?
	`, nowString(), hostname)
	if err != nil {
		return fmt.Errorf("failed to increment visits: %w", err)
	}
	return nil
}

// ListPopular returns successful records ordered by visit count
func (r *analysisRepository) ListPopular(limit int) ([]Analysis, error) {
	rows, err := r.db.Query(selectColumns+`
		FROM analyses
		WHERE status = ? AND error IS NULL
		ORDER BY visits DESC, created_at DESC
		LIMIT ?
	`, StatusDone, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list popular analyses: %w", err)
	}
	defer rows.Close()

	return collectAnalyses(rows)
}

// ListRecent returns successful records ordered by creation time
func (r *analysisRepository) ListRecent(limit int) ([]Analysis, error) {
	rows, err := r.db.Query(selectColumns+`
		FROM analyses
		WHERE status = ? AND error IS NULL
		ORDER BY created_at DESC
		LIMIT ?
	`, StatusDone, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent analyses: %w", err)
	}
	defer rows.Close()

	return collectAnalyses(rows)
}

// Search finds records matching the query across hostname, company name and
// the denormalized fields. Ranking: exact hostname match first, exact company
// name next, then prefix matches, then substring matches.
func (r *analysisRepository) Search(query string) ([]Analysis, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil, nil
	}
	prefix := q + "%"
	substring := "%" + q + "%"

	rows, err := r.db.Query(selectColumns+`
		FROM analyses
		WHERE hostname = ?
		   OR lower(company_name) = ?
		   OR hostname LIKE ?
		   OR lower(company_name) LIKE ?
		   OR lower(company_name) LIKE ?
		   OR lower(COALESCE(category, '')) LIKE ?
		   OR lower(COALESCE(industry_sector, '')) LIKE ?
		   OR lower(COALESCE(keywords, '')) LIKE ?
		ORDER BY CASE
		    WHEN hostname = ? THEN 0
		    WHEN lower(company_name) = ? THEN 1
		    WHEN hostname LIKE ? THEN 2
		    WHEN lower(company_name) LIKE ? THEN 3
		    ELSE 4
		  END,
		  visits DESC, created_at DESC
		LIMIT ?
	`, q, q, prefix, prefix, substring, substring, substring, substring,
		q, q, prefix, prefix, searchResultLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to search analyses: %w", err)
	}
	defer rows.Close()

	return collectAnalyses(rows)
}

// GetAll returns a page of all records ordered by creation time
func (r *analysisRepository) GetAll(offset, limit int) ([]Analysis, error) {
	rows, err := r.db.Query(selectColumns+`
		FROM analyses
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to get analyses: %w", err)
	}
	defer rows.Close()

	return collectAnalyses(rows)
}

// Count returns the total number of records
func (r *analysisRepository) Count() (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM analyses`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count analyses: %w", err)
	}
	return count, nil
}

const selectColumns = `
	SELECT hostname, company_domain, company_name, status, username, profile_image_url,
	       created_at, updated_at, visits, result, error,
	       category, business_description, industry_sector, keywords`

type scannable interface {
	Scan(dest ...interface{}) error
}

func scanAnalysis(row scannable) (*Analysis, error) {
	var a Analysis
	var result, errMsg, category, description, sector, keywords sql.NullString

	err := row.Scan(&a.Hostname, &a.CompanyDomain, &a.CompanyName, &a.Status,
		&a.Username, &a.ProfileImageURL, &a.CreatedAt, &a.UpdatedAt, &a.Visits,
		&result, &errMsg, &category, &description, &sector, &keywords)
	if err != nil {
		return nil, err
	}

	if result.Valid {
		a.Result = &result.String
	}
	if errMsg.Valid {
		a.Error = &errMsg.String
	}
	a.Category = category.String
	a.BusinessDescription = description.String
	a.IndustrySector = sector.String
	a.Keywords = keywords.String

	return &a, nil
}

func collectAnalyses(rows *sql.Rows) ([]Analysis, error) {
	var analyses []Analysis
	for rows.Next() {
		a, err := scanAnalysis(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan analysis: %w", err)
		}
		analyses = append(analyses, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate analyses: %w", err)
	}
	return analyses, nil
}

func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
