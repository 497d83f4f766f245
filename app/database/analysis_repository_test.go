package database

import (
	"testing"
)

func newTestRepo(t *testing.T) AnalysisRepository {
	t.Helper()

	db, err := NewConnection(":memory:")
	if err != nil {
		t.Fatalf("Failed to open in-memory database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if _, _, err := RunMigrations(db); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	return NewAnalysisRepository(db)
}

func TestCreateAndGet(t *testing.T) {
	repo := newTestRepo(t)

	a := Analysis{
		Hostname:      "example.com",
		CompanyDomain: "example.com",
		CompanyName:   "Example",
		Username:      "alice",
	}
	if err := repo.Create(a); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := repo.Get("example.com")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got == nil {
		t.Fatal("Expected record, got nil")
	}
	if got.Status != StatusPending {
		t.Errorf("Expected status pending, got %s", got.Status)
	}
	if got.CreatedAt == "" || got.UpdatedAt == "" {
		t.Error("Expected timestamps to be set at creation")
	}
	if got.Result != nil || got.Error != nil {
		t.Error("New record should have no result or error")
	}

	missing, err := repo.Get("missing.com")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if missing != nil {
		t.Error("Expected nil for unknown hostname")
	}
}

func TestCreateReplacesExisting(t *testing.T) {
	repo := newTestRepo(t)

	if err := repo.Create(Analysis{Hostname: "example.com", CompanyName: "Old", Username: "alice"}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := repo.Create(Analysis{Hostname: "example.com", CompanyName: "New", Username: "bob"}); err != nil {
		t.Fatalf("Second create failed: %v", err)
	}

	got, _ := repo.Get("example.com")
	if got.CompanyName != "New" || got.Username != "bob" {
		t.Errorf("Expected last write to win, got %+v", got)
	}
}

func TestDelete(t *testing.T) {
	repo := newTestRepo(t)

	repo.Create(Analysis{Hostname: "example.com"})
	if err := repo.Delete("example.com"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	got, _ := repo.Get("example.com")
	if got != nil {
		t.Error("Expected record to be deleted")
	}

	// Deleting a missing record is not an error
	if err := repo.Delete("missing.com"); err != nil {
		t.Errorf("Delete of missing record failed: %v", err)
	}
}

func TestCountByUsername(t *testing.T) {
	repo := newTestRepo(t)

	repo.Create(Analysis{Hostname: "a.com", Username: "alice"})
	repo.Create(Analysis{Hostname: "b.com", Username: "alice"})
	repo.Create(Analysis{Hostname: "c.com", Username: "bob"})

	count, err := repo.CountByUsername("alice")
	if err != nil {
		t.Fatalf("CountByUsername failed: %v", err)
	}
	if count != 2 {
		t.Errorf("Expected 2 records for alice, got %d", count)
	}

	count, _ = repo.CountByUsername("nobody")
	if count != 0 {
		t.Errorf("Expected 0 records for nobody, got %d", count)
	}
}

func TestSetResult(t *testing.T) {
	repo := newTestRepo(t)

	repo.Create(Analysis{Hostname: "example.com", CompanyName: "Example"})

	err := repo.SetResult("example.com", `{"company_name":"Example Inc"}`, DenormalizedFields{
		CompanyName: "Example Inc",
		Category:    "SaaS",
		Keywords:    "analytics, dashboards",
	})
	if err != nil {
		t.Fatalf("SetResult failed: %v", err)
	}

	got, _ := repo.Get("example.com")
	if !got.Succeeded() {
		t.Errorf("Expected successful terminal state, got status=%s error=%v", got.Status, got.Error)
	}
	if got.Result == nil {
		t.Fatal("Expected result blob to be stored")
	}
	if got.CompanyName != "Example Inc" {
		t.Errorf("Expected corrected company name, got %s", got.CompanyName)
	}
	if got.Category != "SaaS" || got.Keywords != "analytics, dashboards" {
		t.Errorf("Expected denormalized fields, got %+v", got)
	}
}

func TestSetResultPartialPatch(t *testing.T) {
	repo := newTestRepo(t)

	repo.Create(Analysis{Hostname: "example.com", CompanyName: "Example"})
	repo.SetResult("example.com", "{}", DenormalizedFields{Category: "SaaS", IndustrySector: "Software"})

	// A second update with absent fields must not null out the earlier values
	if err := repo.SetResult("example.com", "{}", DenormalizedFields{Keywords: "crm"}); err != nil {
		t.Fatalf("SetResult failed: %v", err)
	}

	got, _ := repo.Get("example.com")
	if got.Category != "SaaS" || got.IndustrySector != "Software" {
		t.Errorf("Partial patch nulled out earlier fields: %+v", got)
	}
	if got.Keywords != "crm" {
		t.Errorf("Expected keywords to be patched, got %q", got.Keywords)
	}
}

func TestSetError(t *testing.T) {
	repo := newTestRepo(t)

	repo.Create(Analysis{Hostname: "example.com"})

	if err := repo.SetError("example.com", "task failed", nil); err != nil {
		t.Fatalf("SetError failed: %v", err)
	}

	got, _ := repo.Get("example.com")
	if !got.Failed() {
		t.Errorf("Expected failed terminal state, got status=%s error=%v", got.Status, got.Error)
	}
	if *got.Error != "task failed" {
		t.Errorf("Expected error message, got %q", *got.Error)
	}
	if got.Result != nil {
		t.Error("Expected no result blob")
	}
}

func TestSetErrorWithResultBlob(t *testing.T) {
	repo := newTestRepo(t)

	repo.Create(Analysis{Hostname: "example.com"})

	blob := `{"executive_summary":""}`
	if err := repo.SetError("example.com", "result contains empty strings, please retry", &blob); err != nil {
		t.Fatalf("SetError failed: %v", err)
	}

	got, _ := repo.Get("example.com")
	if !got.Failed() {
		t.Error("Expected failed terminal state")
	}
	if got.Result == nil || *got.Result != blob {
		t.Error("Expected result blob to be stored alongside the error")
	}
}

func TestIncrementVisits(t *testing.T) {
	repo := newTestRepo(t)

	repo.Create(Analysis{Hostname: "example.com"})
	repo.IncrementVisits("example.com")
	repo.IncrementVisits("example.com")

	got, _ := repo.Get("example.com")
	if got.Visits != 2 {
		t.Errorf("Expected 2 visits, got %d", got.Visits)
	}
}

func TestListPopularAndRecent(t *testing.T) {
	repo := newTestRepo(t)

	repo.Create(Analysis{Hostname: "a.com", CreatedAt: "2026-01-01T00:00:00Z", UpdatedAt: "2026-01-01T00:00:00Z"})
	repo.Create(Analysis{Hostname: "b.com", CreatedAt: "2026-01-02T00:00:00Z", UpdatedAt: "2026-01-02T00:00:00Z"})
	repo.Create(Analysis{Hostname: "c.com", CreatedAt: "2026-01-03T00:00:00Z", UpdatedAt: "2026-01-03T00:00:00Z"})

	repo.SetResult("a.com", "{}", DenormalizedFields{})
	repo.SetResult("b.com", "{}", DenormalizedFields{})
	repo.SetError("c.com", "failed", nil)

	repo.IncrementVisits("a.com")
	repo.IncrementVisits("a.com")
	repo.IncrementVisits("b.com")

	popular, err := repo.ListPopular(10)
	if err != nil {
		t.Fatalf("ListPopular failed: %v", err)
	}
	if len(popular) != 2 {
		t.Fatalf("Expected 2 popular records (errored excluded), got %d", len(popular))
	}
	if popular[0].Hostname != "a.com" {
		t.Errorf("Expected a.com first by visits, got %s", popular[0].Hostname)
	}

	recent, err := repo.ListRecent(10)
	if err != nil {
		t.Fatalf("ListRecent failed: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("Expected 2 recent records, got %d", len(recent))
	}
	if recent[0].Hostname != "b.com" {
		t.Errorf("Expected b.com first by creation time, got %s", recent[0].Hostname)
	}
}

func TestSearchRanking(t *testing.T) {
	repo := newTestRepo(t)

	// acme.com matches the query exactly by hostname; the others match
	// only through keywords or name substrings.
	repo.Create(Analysis{Hostname: "acme.com", CompanyName: "Acme"})
	repo.SetResult("acme.com", "{}", DenormalizedFields{Keywords: "widgets"})

	repo.Create(Analysis{Hostname: "other.com", CompanyName: "Other"})
	repo.SetResult("other.com", "{}", DenormalizedFields{Keywords: "acme.com integrations, widgets"})

	repo.Create(Analysis{Hostname: "acmetools.io", CompanyName: "Acmetools"})
	repo.SetResult("acmetools.io", "{}", DenormalizedFields{})

	results, err := repo.Search("acme.com")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) < 2 {
		t.Fatalf("Expected at least 2 results, got %d", len(results))
	}
	if results[0].Hostname != "acme.com" {
		t.Errorf("Expected exact hostname match first, got %s", results[0].Hostname)
	}

	// Prefix match on hostname ranks above substring-only matches
	results, err = repo.Search("acme")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("Expected 3 results, got %d", len(results))
	}
	if results[len(results)-1].Hostname != "other.com" {
		t.Errorf("Expected substring-only match last, got %s", results[len(results)-1].Hostname)
	}

	empty, err := repo.Search("   ")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if empty != nil {
		t.Error("Expected no results for blank query")
	}
}

func TestGetAllPagination(t *testing.T) {
	repo := newTestRepo(t)

	repo.Create(Analysis{Hostname: "a.com", CreatedAt: "2026-01-01T00:00:00Z", UpdatedAt: "2026-01-01T00:00:00Z"})
	repo.Create(Analysis{Hostname: "b.com", CreatedAt: "2026-01-02T00:00:00Z", UpdatedAt: "2026-01-02T00:00:00Z"})
	repo.Create(Analysis{Hostname: "c.com", CreatedAt: "2026-01-03T00:00:00Z", UpdatedAt: "2026-01-03T00:00:00Z"})

	page, err := repo.GetAll(0, 2)
	if err != nil {
		t.Fatalf("GetAll failed: %v", err)
	}
	if len(page) != 2 {
		t.Fatalf("Expected 2 records on first page, got %d", len(page))
	}

	page, _ = repo.GetAll(2, 2)
	if len(page) != 1 {
		t.Fatalf("Expected 1 record on second page, got %d", len(page))
	}

	count, err := repo.Count()
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 3 {
		t.Errorf("Expected count 3, got %d", count)
	}
}
