package core

import (
	"bytes"
	"context"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/huangsam/repometrics/internal/contract"
	"github.com/huangsam/repometrics/schema"
)

// Adapters binds the metric sources to stage functions. Each stage appends a
// fixed number of formatted fields to the record it receives.
type Adapters struct {
	Repos    contract.RepoSource
	Pages    contract.PageSource
	Counter  contract.CodeCounter
	SiteURL  string
	Selector string
}

// Stages returns the five stages in output column order.
func (a *Adapters) Stages() []Stage {
	return []Stage{
		{Name: schema.StageLanguageSize, Run: a.LanguageSizes},
		{Name: schema.StageCodeMetrics, Run: a.CodeMetrics},
		{Name: schema.StageCommitCount, Run: a.CommitCount},
		{Name: schema.StageCommitHistory, Run: a.CommitHistory},
		{Name: schema.StageContributors, Run: a.Contributors},
	}
}

// LanguageSizes appends the formatted total size and the per-language sizes.
func (a *Adapters) LanguageSizes(ctx context.Context, ref schema.RepositoryRef, rec schema.Record) (schema.Record, error) {
	langs, err := a.Repos.ListLanguages(ctx, ref.Owner, ref.Name)
	if err != nil {
		return nil, err
	}
	return append(rec, schema.FormatBytes(langs.Total()), schema.FormatLanguageSizes(langs)), nil
}

// CodeMetrics appends total files, total code lines, files per language and lines per language.
func (a *Adapters) CodeMetrics(ctx context.Context, ref schema.RepositoryRef, rec schema.Record) (schema.Record, error) {
	metrics, err := a.Counter.Count(ctx, ref.CloneURL(a.SiteURL))
	if err != nil {
		return nil, err
	}
	return append(rec,
		strconv.Itoa(metrics.Total.Files),
		strconv.Itoa(metrics.Total.Code),
		schema.FormatFileCounts(metrics.Languages),
		schema.FormatLineCounts(metrics.Languages),
	), nil
}

// CommitCount appends the commit total scraped from the repository landing page.
// It depends on third-party markup and breaks whenever that markup changes;
// the selector is configurable for that reason.
func (a *Adapters) CommitCount(ctx context.Context, ref schema.RepositoryRef, rec schema.Record) (schema.Record, error) {
	pageURL := ref.WebURL(a.SiteURL)
	body, err := a.Pages.FetchPage(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	count, err := scrapeCommitCount(body, a.selector(), pageURL)
	if err != nil {
		return nil, err
	}
	return append(rec, strconv.Itoa(count)), nil
}

// CommitHistory appends the creation date and the newest commit's committer date.
func (a *Adapters) CommitHistory(ctx context.Context, ref schema.RepositoryRef, rec schema.Record) (schema.Record, error) {
	info, err := a.Repos.GetRepository(ctx, ref.Owner, ref.Name)
	if err != nil {
		return nil, err
	}
	commits, err := a.Repos.ListCommits(ctx, ref.Owner, ref.Name)
	if err != nil {
		return nil, err
	}
	if len(commits) == 0 {
		return nil, contract.NewShapeError(ref.String()+" commits", "empty commit list", nil)
	}
	summary := schema.CommitSummary{Created: info.CreatedAt, LastCommit: commits[0].CommitterDate}
	return append(rec, schema.FormatDate(summary.Created), schema.FormatDate(summary.LastCommit)), nil
}

// Contributors appends the contributor count and the "login: total; " breakdown.
func (a *Adapters) Contributors(ctx context.Context, ref schema.RepositoryRef, rec schema.Record) (schema.Record, error) {
	stats, err := a.Repos.ListContributorStats(ctx, ref.Owner, ref.Name)
	if err != nil {
		return nil, err
	}
	summary := schema.SummarizeContributors(stats)
	return append(rec, strconv.Itoa(summary.Count), summary.Breakdown), nil
}

func (a *Adapters) selector() string {
	if a.Selector == "" {
		return schema.DefaultCommitSelector
	}
	return a.Selector
}

// thousandsSeparators are stripped before the commit count is parsed.
var thousandsSeparators = strings.NewReplacer(",", "", ".", "", " ", "", " ", "", " ", "", "'", "")

// scrapeCommitCount selects the first element matching selector and parses its text.
func scrapeCommitCount(body []byte, selector, source string) (int, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return 0, contract.NewShapeError(source, "unparseable HTML", err)
	}
	sel := doc.Find(selector).First()
	if sel.Length() == 0 {
		return 0, contract.NewShapeError(source, "no element matches "+selector, nil)
	}
	return parseCommitCount(sel.Text(), source)
}

// parseCommitCount accepts digits with optional thousands separators, e.g. "1,234".
func parseCommitCount(text, source string) (int, error) {
	digits := thousandsSeparators.Replace(strings.TrimSpace(text))
	if digits == "" {
		return 0, contract.NewShapeError(source, "commit count element is empty", nil)
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return 0, contract.NewShapeError(source, "commit count is not numeric: "+strings.TrimSpace(text), nil)
		}
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0, contract.NewShapeError(source, "commit count out of range", err)
	}
	return n, nil
}
