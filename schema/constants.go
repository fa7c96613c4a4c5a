package schema

// Custom string types for type safety.
type (
	// StoreFormat represents the encoding of the append-only output store.
	StoreFormat string

	// OutputMode represents the format of console output.
	OutputMode string

	// RepoStatus represents the outcome of one repository.
	RepoStatus string

	// DatabaseBackend represents the database backend for the run ledger.
	DatabaseBackend string
)

// All store formats supported.
const (
	CSVStore   StoreFormat = "csv" // default
	JSONLStore StoreFormat = "jsonl"
)

// All console output modes supported.
const (
	TextOut OutputMode = "text" // default
	JSONOut OutputMode = "json"
)

// All repository outcomes.
const (
	StatusOK     RepoStatus = "ok"
	StatusFailed RepoStatus = "failed"
)

// All ledger backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite"
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none" // default
)

// Stage names as they appear in diagnostics and the run ledger.
const (
	StageLanguageSize  = "language-size"
	StageCodeMetrics   = "code-metrics"
	StageCommitCount   = "commit-count"
	StageCommitHistory = "commit-history"
	StageContributors  = "contributors"
)


// Reserved keys in the line counter's JSON output.
const (
	CounterHeaderKey  = "header"
	CounterSummaryKey = "SUM"
)

// Defaults for the remote endpoints and the line counter.
const (
	DefaultAPIURL         = "https://api.github.com"
	DefaultSiteURL        = "https://github.com"
	DefaultCounterCommand = "cloc"
	DefaultCommitSelector = ".numbers-summary .commits .num"
	DefaultOutputFile     = "repo-metrics.csv"
)

// DefaultCounterArgs are passed to the line counter ahead of the repository URL.
var DefaultCounterArgs = []string{"--json", "--quiet"}

// ValidStoreFormats lists all valid store formats.
var ValidStoreFormats = map[StoreFormat]struct{}{
	CSVStore:   {},
	JSONLStore: {},
}

// ValidOutputModes lists all valid console output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	TextOut: {},
	JSONOut: {},
}

// ValidDatabaseBackends lists all valid ledger backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}
