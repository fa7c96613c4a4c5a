// Package schema has models, constants and formatting helpers for all parts of repometrics.
package schema

import (
	"fmt"
	"strings"
	"time"
)

// ColumnCount is the width of every data row and of the header.
const ColumnCount = 11

// Header is the fixed column order of the output store.
var Header = []string{
	"repo size",
	"size by language",
	"file count",
	"LoC count",
	"file count by language",
	"LoC count by language",
	"commit count",
	"first commit date",
	"last commit date",
	"contributor count",
	"contributor commit breakdown",
}

// RepositoryRef identifies one repository on the hosting service.
type RepositoryRef struct {
	Owner string `json:"owner"`
	Name  string `json:"name"`
}

// String returns the owner/name form.
func (r RepositoryRef) String() string {
	return r.Owner + "/" + r.Name
}

// ParseRepositoryRef parses the owner/name form used on the command line.
func ParseRepositoryRef(s string) (RepositoryRef, error) {
	owner, name, ok := strings.Cut(strings.TrimSpace(s), "/")
	owner, name = strings.TrimSpace(owner), strings.TrimSpace(name)
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return RepositoryRef{}, fmt.Errorf("invalid repository %q: expected owner/name", s)
	}
	return RepositoryRef{Owner: owner, Name: name}, nil
}

// WebURL returns the repository landing page under the given site URL.
func (r RepositoryRef) WebURL(siteURL string) string {
	return strings.TrimRight(siteURL, "/") + "/" + r.Owner + "/" + r.Name
}

// CloneURL returns the clonable location handed to the code counter.
func (r RepositoryRef) CloneURL(siteURL string) string {
	return r.WebURL(siteURL) + ".git"
}

// Record is an ordered row of already-formatted fields. It grows stage by stage
// until it reaches ColumnCount.
type Record []string

// Complete reports whether the record has exactly one value per header column.
func (r Record) Complete() bool {
	return len(r) == ColumnCount
}

// AsMap keys each value by its header column.
func (r Record) AsMap() map[string]string {
	out := make(map[string]string, len(r))
	for i, v := range r {
		if i < len(Header) {
			out[Header[i]] = v
		}
	}
	return out
}

// LanguageBreakdown maps a language name to its byte count.
type LanguageBreakdown map[string]int64

// Total sums the byte counts of all languages.
func (b LanguageBreakdown) Total() int64 {
	var total int64
	for _, n := range b {
		total += n
	}
	return total
}

// LanguageCount holds the code line and file counts for one language.
type LanguageCount struct {
	Code  int `json:"code"`
	Files int `json:"nFiles"`
}

// CodeMetrics is the decoded output of the external line counter.
type CodeMetrics struct {
	Languages map[string]LanguageCount // Never contains the tool's reserved keys
	Total     LanguageCount            // Taken from the tool's summary entry
}

// RepositoryInfo holds the repository metadata fields consumed by the pipeline.
type RepositoryInfo struct {
	FullName  string
	CreatedAt time.Time
}

// CommitInfo is one entry of the commit listing, newest first.
type CommitInfo struct {
	SHA           string
	CommitterDate time.Time
}

// CommitSummary holds the first and last activity timestamps of a repository.
type CommitSummary struct {
	Created    time.Time
	LastCommit time.Time
}

// ContributorStat is one element of the contributor statistics listing.
type ContributorStat struct {
	Login string `json:"login"`
	Total int    `json:"total"`
}

// ContributorSummary is the flattened contributor view written to the row.
type ContributorSummary struct {
	Count     int
	Breakdown string
}

// RepoResult is the outcome of aggregating a single repository.
type RepoResult struct {
	Position   int           `json:"position"`
	Ref        RepositoryRef `json:"repo"`
	Status     RepoStatus    `json:"status"`
	Stage      string        `json:"stage,omitempty"`
	ErrorKind  string        `json:"error_kind,omitempty"`
	Error      string        `json:"error,omitempty"`
	Record     Record        `json:"record,omitempty"`
	RecordedAt time.Time     `json:"recorded_at"`
}

// BatchSummary is what a batch run reports once it reaches its final state.
type BatchSummary struct {
	Total     int           `json:"total"`
	Succeeded int           `json:"succeeded"`
	Failed    int           `json:"failed"`
	Results   []RepoResult  `json:"results"`
	Duration  time.Duration `json:"-"`
}
