package database

// Analysis status values
const (
	StatusPending = "pending"
	StatusDone    = "done"
)

// Analysis is the persisted unit of research state for one company hostname.
// Timestamps are stored as RFC 3339 strings.
type Analysis struct {
	Hostname            string
	CompanyDomain       string
	CompanyName         string
	Status              string
	Username            string
	ProfileImageURL     string
	CreatedAt           string
	UpdatedAt           string
	Visits              int
	Result              *string // serialized result payload, set on success or quality failure
	Error               *string // terminal failure reason; non-nil means "failed done"
	Category            string
	BusinessDescription string
	IndustrySector      string
	Keywords            string
}

// Failed reports whether the analysis ended in a terminal error.
func (a *Analysis) Failed() bool {
	return a.Status == StatusDone && a.Error != nil
}

// Succeeded reports whether the analysis completed without error.
func (a *Analysis) Succeeded() bool {
	return a.Status == StatusDone && a.Error == nil
}

// DenormalizedFields are extracted from the result payload for search
// indexing. Empty strings are treated as "not supplied" and leave the
// existing column values untouched.
type DenormalizedFields struct {
	CompanyName         string
	Category            string
	BusinessDescription string
	IndustrySector      string
	Keywords            string
}
