package database

type AnalysisRepository interface {
	Create(a Analysis) error
	Get(hostname string) (*Analysis, error)
	Delete(hostname string) error
	CountByUsername(username string) (int, error)

	SetResult(hostname string, result string, extra DenormalizedFields) error
	SetError(hostname string, message string, result *string) error
	IncrementVisits(hostname string) error

	ListPopular(limit int) ([]Analysis, error)
	ListRecent(limit int) ([]Analysis, error)
	Search(query string) ([]Analysis, error)

	GetAll(offset, limit int) ([]Analysis, error)
	Count() (int, error)
}
